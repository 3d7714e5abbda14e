package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"langid/internal/bayes"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("Find = %q, want %q", got, want)
	}
}

func TestDiscoverWithoutFileReturnsDefaults(t *testing.T) {
	cfg, ok, err := Discover(t.TempDir())
	if err != nil || ok {
		t.Fatalf("Discover: ok=%v err=%v", ok, err)
	}
	if cfg.Classify.Format != "pretty" || !cfg.Batch.Cache || cfg.Model.Symbols != "runes" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFullFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[model]
path = "models/langid.bin"
norm_probs = true
symbols = "bytes"

[classify]
languages = ["en", "fr", "de"]
normalize = "nfkc"
format = "json"
top = 2

[batch]
jobs = 3
cache = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model.Path != filepath.Join(dir, "models", "langid.bin") {
		t.Fatalf("model path = %q", cfg.Model.Path)
	}
	if cfg.Normalizer().Name() != (bayes.Softmax{}).Name() {
		t.Fatal("norm_probs did not select softmax")
	}
	if len(cfg.Classify.Languages) != 3 || cfg.Classify.Top != 2 || cfg.Batch.Jobs != 3 || cfg.Batch.Cache {
		t.Fatalf("unexpected values %+v", cfg)
	}
	for _, key := range []string{"model.path", "batch.cache", "classify.top"} {
		if !cfg.IsSet(key) {
			t.Fatalf("%s should be marked as set", key)
		}
	}
	if cfg.IsSet("model.missing") {
		t.Fatal("unexpected key marked as set")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad symbols":   "[model]\nsymbols = \"words\"\n",
		"empty path":    "[model]\npath = \"  \"\n",
		"bad format":    "[classify]\nformat = \"xml\"\n",
		"bad normalize": "[classify]\nnormalize = \"nfd\"\n",
		"negative top":  "[classify]\ntop = -1\n",
		"one language":  "[classify]\nlanguages = [\"en\"]\n",
		"negative jobs": "[batch]\njobs = -2\n",
		"unknown key":   "[model]\nweights = 1\n",
		"not toml":      "[model\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), body)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
}

func TestLoadOneLanguageWrapsNoLanguage(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[classify]\nlanguages = [\"en\"]\n")
	_, err := Load(path)
	if !errors.Is(err, bayes.ErrNoLanguage) {
		t.Fatalf("expected ErrNoLanguage, got %v", err)
	}
	if !strings.Contains(err.Error(), FileName) {
		t.Fatalf("error should name the file: %v", err)
	}
}
