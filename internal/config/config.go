// Package config reads langid.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"langid/internal/automaton"
	"langid/internal/bayes"
	"langid/internal/textnorm"
)

// FileName is the configuration file looked up from the working directory upwards.
const FileName = "langid.toml"

// ErrModelPathMissing indicates [model].path is empty after decoding.
var ErrModelPathMissing = errors.New("missing [model].path")

// File is the decoded content of langid.toml.
type File struct {
	Path     string         `toml:"-"`
	Model    ModelConfig    `toml:"model"`
	Classify ClassifyConfig `toml:"classify"`
	Batch    BatchConfig    `toml:"batch"`

	// Set lists the dotted keys present in the file, e.g. "batch.cache".
	Set map[string]bool `toml:"-"`
}

type ModelConfig struct {
	Path      string `toml:"path"`
	NormProbs bool   `toml:"norm_probs"`
	Symbols   string `toml:"symbols"`
}

type ClassifyConfig struct {
	Languages []string `toml:"languages"`
	Normalize string   `toml:"normalize"`
	Format    string   `toml:"format"`
	Top       int      `toml:"top"`
}

type BatchConfig struct {
	Jobs  int  `toml:"jobs"`
	Cache bool `toml:"cache"`
}

// Default returns the settings used when no file is found.
func Default() File {
	return File{
		Model:    ModelConfig{Symbols: automaton.SymbolRunes.String()},
		Classify: ClassifyConfig{Normalize: textnorm.FormNone.String(), Format: "pretty"},
		Batch:    BatchConfig{Cache: true},
		Set:      map[string]bool{},
	}
}

// IsSet reports whether the dotted key was present in the file.
func (f *File) IsSet(key string) bool {
	return f != nil && f.Set[key]
}

// Find walks up from startDir to locate langid.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads langid.toml above startDir. Without a file it
// returns Default and ok == false.
func Discover(startDir string) (cfg File, ok bool, err error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), ok, err
	}
	cfg, err = Load(path)
	if err != nil {
		return Default(), true, err
	}
	return cfg, true, nil
}

// Load decodes and validates one configuration file. A relative
// [model].path is resolved against the file's directory.
func Load(path string) (File, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return File{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return File{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Path = path
	for _, key := range meta.Keys() {
		cfg.Set[key.String()] = true
	}

	if meta.IsDefined("model", "path") {
		p := strings.TrimSpace(cfg.Model.Path)
		if p == "" {
			return File{}, fmt.Errorf("%s: %w", path, ErrModelPathMissing)
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), filepath.FromSlash(p))
		}
		cfg.Model.Path = p
	}
	if err := cfg.validate(); err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (f *File) validate() error {
	if _, err := automaton.ParseSymbolMode(f.Model.Symbols); err != nil {
		return fmt.Errorf("[model].symbols: %w", err)
	}
	if _, err := textnorm.ParseForm(f.Classify.Normalize); err != nil {
		return fmt.Errorf("[classify].normalize: %w", err)
	}
	switch f.Classify.Format {
	case "pretty", "json", "msgpack":
	default:
		return fmt.Errorf("[classify].format: invalid format %q (expected: pretty|json|msgpack)", f.Classify.Format)
	}
	if f.Classify.Top < 0 {
		return fmt.Errorf("[classify].top must not be negative, got %d", f.Classify.Top)
	}
	if f.Batch.Jobs < 0 {
		return fmt.Errorf("[batch].jobs must not be negative, got %d", f.Batch.Jobs)
	}
	if f.Classify.Languages != nil && len(f.Classify.Languages) < 2 {
		return fmt.Errorf("[classify].languages: %w", bayes.ErrNoLanguage)
	}
	return nil
}

// Normalizer returns the score normalizer selected by [model].norm_probs.
func (f *File) Normalizer() bayes.Normalizer {
	if f.Model.NormProbs {
		return bayes.Softmax{}
	}
	return bayes.Identity{}
}
