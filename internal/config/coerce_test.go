package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceValue(t *testing.T) {
	assert.Equal(t, `5`, string(coerceValue("5")))
	assert.Equal(t, `true`, string(coerceValue("true")))
	assert.Equal(t, `["a","b"]`, string(coerceValue(`["a","b"]`)))
	assert.Equal(t, `"#standup"`, string(coerceValue("#standup")))
	assert.Equal(t, `"plain text"`, string(coerceValue("plain text")))

	// Objects are not settable from the CLI and fall back to strings.
	assert.Equal(t, `"{\"a\":1}"`, string(coerceValue(`{"a":1}`)))
}

func TestSettableKeysSortedAndComplete(t *testing.T) {
	keys := SettableKeys()
	require.NotEmpty(t, keys)

	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "github_username")
	assert.Contains(t, keys, "slack_channel")
	assert.Contains(t, keys, "summarizer_model")
	assert.NotContains(t, keys, "base_dir")
}
