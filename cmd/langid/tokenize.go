package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"langid/internal/automaton"
	"langid/internal/report"
)

type tokenStep struct {
	Symbol  string  `json:"symbol" msgpack:"symbol"`
	State   uint16  `json:"state" msgpack:"state"`
	Emits   []int32 `json:"emits,omitempty" msgpack:"emits,omitempty"`
	Skipped bool    `json:"skipped,omitempty" msgpack:"skipped,omitempty"`
}

type featureCount struct {
	Feature int    `json:"feature" msgpack:"feature"`
	Count   uint32 `json:"count" msgpack:"count"`
}

type tokenizeOutput struct {
	Features int            `json:"features" msgpack:"features"`
	Hits     []featureCount `json:"hits" msgpack:"hits"`
	Steps    []tokenStep    `json:"steps,omitempty" msgpack:"steps,omitempty"`
}

func newTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [flags] [text...|-]",
		Short: "Show the features a text fires in the model automaton",
		Long: `Tokenize walks the model automaton over the text and prints the non-zero
entries of the resulting feature vector. With --steps every transition is shown.`,
		RunE: runTokenize,
	}
	cmd.Flags().Bool("steps", false, "print every automaton step")
	return cmd
}

func runTokenize(cmd *cobra.Command, args []string) error {
	env, err := prepare(cmd, true)
	if err != nil {
		return err
	}
	defer env.close()

	showSteps, err := cmd.Flags().GetBool("steps")
	if err != nil {
		return fmt.Errorf("failed to get steps flag: %w", err)
	}
	text, err := readText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	m, err := env.loadModel()
	if err != nil {
		return err
	}

	idx := env.timer.Begin("tokenize")
	out := tokenizeOutput{Features: m.NumFeatures()}
	for f, c := range m.Tokenize(text) {
		if c > 0 {
			out.Hits = append(out.Hits, featureCount{Feature: f, Count: c})
		}
	}
	if showSteps {
		m.Walk(text, func(h automaton.Hit) {
			out.Steps = append(out.Steps, tokenStep{
				Symbol:  describeSymbol(h.Symbol),
				State:   h.State,
				Emits:   h.Emits,
				Skipped: h.Skipped,
			})
		})
	}
	env.timer.End(idx, fmt.Sprintf("%d features hit", len(out.Hits)))

	w := cmd.OutOrStdout()
	switch env.settings.Format {
	case report.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case report.FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(out)
	default:
		return writeTokensPretty(w, out)
	}
}

func describeSymbol(r rune) string {
	if r >= 0x20 && r < 0x7f {
		return fmt.Sprintf("%q", string(r))
	}
	return fmt.Sprintf("U+%04X", r)
}

func writeTokensPretty(w io.Writer, out tokenizeOutput) error {
	var b strings.Builder
	if len(out.Steps) > 0 {
		b.WriteString("steps:\n")
		for _, s := range out.Steps {
			if s.Skipped {
				fmt.Fprintf(&b, "  %-8s skipped\n", s.Symbol)
				continue
			}
			fmt.Fprintf(&b, "  %-8s -> %5d", s.Symbol, s.State)
			if len(s.Emits) > 0 {
				fmt.Fprintf(&b, "  %v", s.Emits)
			}
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "features: %d, hit: %d\n", out.Features, len(out.Hits))
	for _, h := range out.Hits {
		fmt.Fprintf(&b, "  %6d  x%d\n", h.Feature, h.Count)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
