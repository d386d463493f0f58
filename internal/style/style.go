// Package style resolves the instruction bundle that steers summary
// formatting: a long-form style document, the quick style string from config,
// and a few-shot examples document, concatenated in that fixed order.
package style

import (
	"os"
	"path/filepath"
	"strings"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/store"
)

const (
	StyleFileName    = "style.md"
	ExamplesFileName = "examples.md"
)

// Resolve builds the style bundle for one run. Files in the working directory
// override same-named files in the global config dir; a missing file is
// treated as empty. Quick style strings (the persisted config value, a
// per-run hint) land between the style document and the examples, in the
// order given. The bundle is recomputed each run and never cached.
func Resolve(baseDir string, quickStyles ...string) string {
	var parts []string

	if content := readFound(baseDir, StyleFileName); content != "" {
		parts = append(parts, content)
	}

	for _, quick := range quickStyles {
		if quick = strings.TrimSpace(quick); quick != "" {
			parts = append(parts, quick)
		}
	}

	if examples := readFound(baseDir, ExamplesFileName); examples != "" {
		section := "## Example Standups\n\nUse these as reference for tone and format:\n\n" + examples
		parts = append(parts, section)
	}

	return strings.Join(parts, "\n\n")
}

// FindFile locates a style document, checking the working directory before
// the global config dir. Empty string means not found.
func FindFile(baseDir, name string) string {
	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, name)
		if fileExists(local) {
			return local
		}
	}

	global := filepath.Join(baseDir, name)
	if fileExists(global) {
		return global
	}
	return ""
}

// InitStyle writes the default style.md template into the global config dir.
// It never clobbers an existing file: the returned bool reports whether the
// file was created by this call.
func InitStyle(baseDir string) (string, bool, error) {
	return initTemplate(baseDir, StyleFileName, defaultStyleTemplate)
}

// InitExamples writes the default examples.md template into the global config
// dir, with the same idempotent-create contract as InitStyle.
func InitExamples(baseDir string) (string, bool, error) {
	return initTemplate(baseDir, ExamplesFileName, defaultExamplesTemplate)
}

func initTemplate(baseDir, name, content string) (string, bool, error) {
	if err := store.EnsureDir(baseDir); err != nil {
		return "", false, serrors.Wrap(err, "create config dir")
	}

	path := filepath.Join(baseDir, name)
	if fileExists(path) {
		return path, false, nil
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", false, serrors.Wrap(err, "write "+name)
	}
	return path, true, nil
}

func readFound(baseDir, name string) string {
	path := FindFile(baseDir, name)
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
