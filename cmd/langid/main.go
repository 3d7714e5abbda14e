package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"langid/internal/version"
)

// main builds the command tree and executes it.
// If command execution returns an error, the process exits with status code 1.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "langid",
		Short: "Identify the language of a text",
		Long: `langid scores text against a pretrained n-gram Naive Bayes model
and reports the most likely language or a ranking of all candidates.`,
		Version:      version.Version,
		SilenceUsage: true,
	}

	root.AddCommand(newClassifyCmd())
	root.AddCommand(newRankCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newTokenizeCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newVersionCmd())

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.String("model", "", "path to the model file (overrides [model].path and $LANGID_MODEL)")
	pf.String("config", "", "path to langid.toml (default: search upwards from the working directory)")
	pf.StringSlice("langs", nil, "restrict classification to these language codes (at least two)")
	pf.Bool("norm-probs", false, "report normalized probabilities instead of log scores")
	pf.String("symbols", "runes", "automaton input symbols (runes|bytes)")
	pf.String("normalize", "none", "Unicode normalization before tokenizing (none|nfc|nfkc)")
	pf.String("format", "pretty", "output format (pretty|json|msgpack)")
	pf.Int("top", 0, "show only the first N ranked languages (0 = all)")
	pf.Bool("names", false, "show English language names next to codes")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("timings", false, "show timing information")

	pf.String("trace", "", "write trace events to file (- for stderr)")
	pf.String("trace-level", "phase", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept in ring mode")

	pf.String("cpu-profile", "", "write CPU profile to file")
	pf.String("mem-profile", "", "write heap profile to file on exit")
	pf.String("runtime-trace", "", "write Go runtime trace to file")

	return root
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
