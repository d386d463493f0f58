package openai

import (
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestEmbeddingModelPassesConfiguredName(t *testing.T) {
	got := embeddingModel("text-embedding-3-large")
	if got != openai.EmbeddingModel("text-embedding-3-large") {
		t.Errorf("embeddingModel() = %q, want configured name passed through", got)
	}
}

func TestEmbeddingModelDefaultsToSmall(t *testing.T) {
	if got := embeddingModel(""); got != openai.SmallEmbedding3 {
		t.Errorf("embeddingModel(\"\") = %q, want %q", got, openai.SmallEmbedding3)
	}
}
