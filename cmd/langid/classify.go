package main

import (
	"errors"

	"github.com/spf13/cobra"

	"langid/internal/report"
)

var errNoActiveClass = errors.New("no active language to choose from")

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text...|-]",
		Short: "Print the most likely language of a text",
		Long: `Classify scores the text against every active language and prints the best one.
Without arguments, or with a single "-", the text is read from stdin.`,
		RunE: runClassify,
	}
}

func newRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank [text...|-]",
		Short: "Rank all active languages for a text",
		Long: `Rank scores the text against every active language and prints them
from most to least likely. Use --top to shorten the list.`,
		RunE: runRank,
	}
}

func runClassify(cmd *cobra.Command, args []string) error {
	return scoreText(cmd, args, true)
}

func runRank(cmd *cobra.Command, args []string) error {
	return scoreText(cmd, args, false)
}

func scoreText(cmd *cobra.Command, args []string, best bool) error {
	env, err := prepare(cmd, true)
	if err != nil {
		return err
	}
	defer env.close()

	text, err := readText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	m, err := env.loadModel()
	if err != nil {
		return err
	}

	var entry report.Entry
	if best {
		idx := env.timer.Begin("classify")
		res, ok := m.Classify(text)
		env.timer.End(idx, res.Class)
		if !ok {
			return errNoActiveClass
		}
		entry.Ranked = []report.Result{res}
	} else {
		idx := env.timer.Begin("rank")
		entry.Ranked = m.Rank(text)
		env.timer.End(idx, "")
	}

	opts := report.Options{
		Format: env.settings.Format,
		Top:    env.settings.Top,
		Names:  env.settings.Names,
		Color:  env.settings.Color,
	}
	return report.Write(cmd.OutOrStdout(), []report.Entry{entry}, opts)
}
