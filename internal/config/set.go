package config

import (
	"bytes"
	gojson "encoding/json"
	"fmt"
	"os"
	"sort"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/store"

	"github.com/natefinch/atomic"
)

// Keys accepted by SetKey. Unknown keys already present in the file are still
// preserved verbatim on rewrite, they just cannot be set from the CLI.
var settableKeys = map[string]bool{
	"github_username":      true,
	"coordinator_model":    true,
	"data_gatherer_model":  true,
	"summarizer_model":     true,
	"embedding_model":      true,
	"slack_channel":        true,
	"style_instructions":   true,
	"default_days_back":    true,
	"history_days_to_keep": true,
	"include_repos":        true,
	"exclude_repos":        true,
	"reminder_schedule":    true,
	"log_level":            true,
}

// SettableKeys returns the recognized config keys, sorted.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetKey sets one key in the persisted config with read-merge-write
// semantics: the existing JSON object is read, the single key is updated, and
// the whole object is written back atomically. Every other field, including
// keys this version does not recognize, survives untouched.
func SetKey(baseDir, key, value string) error {
	if !settableKeys[key] {
		return serrors.InvalidInput(fmt.Sprintf("unknown config key %q", key))
	}

	obj, err := readRaw(baseDir)
	if err != nil {
		return err
	}

	obj[key] = coerceValue(value)

	return writeRaw(baseDir, obj)
}

// UnsetKey removes one key from the persisted config, leaving the rest of the
// object intact.
func UnsetKey(baseDir, key string) error {
	obj, err := readRaw(baseDir)
	if err != nil {
		return err
	}

	if _, ok := obj[key]; !ok {
		return serrors.NotFound(fmt.Sprintf("config key %q is not set", key))
	}
	delete(obj, key)

	return writeRaw(baseDir, obj)
}

func readRaw(baseDir string) (map[string]gojson.RawMessage, error) {
	obj := make(map[string]gojson.RawMessage)

	data, err := os.ReadFile(store.ConfigPath(baseDir))
	if err != nil {
		if os.IsNotExist(err) {
			return obj, nil
		}
		return nil, serrors.Wrap(err, "read config file")
	}

	if err := gojson.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("invalid config file: %v: %w", err, serrors.ErrConfig)
	}
	return obj, nil
}

func writeRaw(baseDir string, obj map[string]gojson.RawMessage) error {
	if err := store.EnsureDir(baseDir); err != nil {
		return serrors.Wrap(err, "create config dir")
	}

	data, err := gojson.MarshalIndent(obj, "", "  ")
	if err != nil {
		return serrors.Wrap(err, "marshal config")
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(store.ConfigPath(baseDir), bytes.NewReader(data)); err != nil {
		return serrors.Wrap(err, "write config file")
	}
	return nil
}

// coerceValue keeps numeric, boolean, and array values typed in the persisted
// JSON; everything else is stored as a string.
func coerceValue(value string) gojson.RawMessage {
	var parsed interface{}
	if err := gojson.Unmarshal([]byte(value), &parsed); err == nil {
		switch parsed.(type) {
		case float64, bool, []interface{}:
			return gojson.RawMessage(value)
		}
	}
	quoted, _ := gojson.Marshal(value)
	return gojson.RawMessage(quoted)
}
