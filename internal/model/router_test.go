package model

import (
	"context"
	"testing"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/model/contract"
)

func TestFamilyOf(t *testing.T) {
	cases := map[string]string{
		"gpt-5.2":                "openai",
		"o1-mini":                "openai",
		"text-embedding-3-small": "openai",
		"claude-sonnet-4":        "anthropic",
		"gemini-2.0-flash":       "gemini",
		"llama-3":                "",
		"":                       "",
	}
	for model, want := range cases {
		if got := familyOf(model); got != want {
			t.Errorf("familyOf(%q) = %q, want %q", model, got, want)
		}
	}
}

func TestRouteRejectsUnknownModel(t *testing.T) {
	r := NewRouter()

	_, err := r.Route(context.Background(), "llama-3", contract.CompletionRequest{})
	if !serrors.IsCategory(err, serrors.ErrNotFound) {
		t.Errorf("expected not found for unknown family, got %v", err)
	}

	_, err = r.Route(context.Background(), "", contract.CompletionRequest{})
	if !serrors.IsCategory(err, serrors.ErrInvalidInput) {
		t.Errorf("expected invalid input for empty model, got %v", err)
	}
}

func TestProviderIsCachedPerFamily(t *testing.T) {
	r := NewRouter()

	first, err := r.providerFor("gpt-5.2")
	if err != nil {
		t.Fatalf("providerFor failed: %v", err)
	}
	second, err := r.providerFor("gpt-4.1")
	if err != nil {
		t.Fatalf("providerFor failed: %v", err)
	}
	if first != second {
		t.Error("expected one provider instance per family")
	}
	if first.Name() != "openai" {
		t.Errorf("wrong provider: %q", first.Name())
	}
}
