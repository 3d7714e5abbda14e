package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"langid/internal/automaton"
	"langid/internal/bayes"
	"langid/internal/config"
	"langid/internal/report"
	"langid/internal/textnorm"
)

// modelEnvVar names the fallback model location.
const modelEnvVar = "LANGID_MODEL"

const noModelMessage = "no model given\nplease pass --model, set " + modelEnvVar + " or add [model].path to " + config.FileName

// runSettings merges langid.toml with command line flags; flags win.
type runSettings struct {
	ConfigPath string
	ModelPath  string
	Langs      []string
	Normalizer bayes.Normalizer
	Symbols    automaton.SymbolMode
	Form       textnorm.Form
	Format     report.Format
	Top        int
	Names      bool
	Color      bool
	Timings    bool
	File       config.File
}

func resolveSettings(cmd *cobra.Command, needModel bool) (runSettings, error) {
	flags := cmd.Flags()
	var s runSettings

	cfg, err := loadConfig(flags)
	if err != nil {
		return s, err
	}
	s.File = cfg
	s.ConfigPath = cfg.Path

	if s.ModelPath, err = stringSetting(flags, "model", cfg.Model.Path); err != nil {
		return s, err
	}
	if s.ModelPath == "" {
		s.ModelPath = strings.TrimSpace(os.Getenv(modelEnvVar))
	}
	if needModel && s.ModelPath == "" {
		return s, errors.New(noModelMessage)
	}

	s.Langs = cfg.Classify.Languages
	if flags.Changed("langs") {
		if s.Langs, err = flags.GetStringSlice("langs"); err != nil {
			return s, fmt.Errorf("failed to get langs flag: %w", err)
		}
	}

	s.Normalizer = cfg.Normalizer()
	if flags.Changed("norm-probs") {
		on, err := flags.GetBool("norm-probs")
		if err != nil {
			return s, fmt.Errorf("failed to get norm-probs flag: %w", err)
		}
		s.Normalizer = bayes.Identity{}
		if on {
			s.Normalizer = bayes.Softmax{}
		}
	}

	symbols, err := stringSetting(flags, "symbols", cfg.Model.Symbols)
	if err != nil {
		return s, err
	}
	if s.Symbols, err = automaton.ParseSymbolMode(symbols); err != nil {
		return s, err
	}

	form, err := stringSetting(flags, "normalize", cfg.Classify.Normalize)
	if err != nil {
		return s, err
	}
	if s.Form, err = textnorm.ParseForm(form); err != nil {
		return s, err
	}

	format, err := stringSetting(flags, "format", cfg.Classify.Format)
	if err != nil {
		return s, err
	}
	if s.Format, err = report.ParseFormat(format); err != nil {
		return s, err
	}

	s.Top = cfg.Classify.Top
	if flags.Changed("top") {
		if s.Top, err = flags.GetInt("top"); err != nil {
			return s, fmt.Errorf("failed to get top flag: %w", err)
		}
		if s.Top < 0 {
			return s, fmt.Errorf("--top must not be negative")
		}
	}

	if s.Names, err = flags.GetBool("names"); err != nil {
		return s, fmt.Errorf("failed to get names flag: %w", err)
	}
	if s.Timings, err = flags.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return s, fmt.Errorf("failed to get color flag: %w", err)
	}
	colorMode, err := readUIMode("color", colorFlag)
	if err != nil {
		return s, err
	}
	s.Color = resolveMode(colorMode, cmd.OutOrStdout())
	return s, nil
}

func loadConfig(flags *pflag.FlagSet) (config.File, error) {
	path, err := flags.GetString("config")
	if err != nil {
		return config.File{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	cfg, _, err := config.Discover(".")
	return cfg, err
}

func stringSetting(flags *pflag.FlagSet, name, fromConfig string) (string, error) {
	if !flags.Changed(name) && fromConfig != "" {
		return fromConfig, nil
	}
	v, err := flags.GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	return v, nil
}
