// Package report renders classification results.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"langid/internal/bayes"
)

// Format selects the output encoding.
type Format string

const (
	FormatPretty  Format = "pretty"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat converts a string to Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPretty:
		return FormatPretty, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	default:
		return FormatPretty, fmt.Errorf("invalid format: %q (expected: pretty|json|msgpack)", s)
	}
}

// Result is one scored class.
type Result = bayes.Result

// Entry is the result for one input.
type Entry struct {
	Label  string         `json:"input,omitempty" msgpack:"input,omitempty"`
	Ranked []bayes.Result `json:"ranked" msgpack:"ranked"`
	Cached bool           `json:"cached,omitempty" msgpack:"cached,omitempty"`
	Error  string         `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Options control rendering.
type Options struct {
	Format Format
	Top    int  // keep only the first Top results; 0 keeps all
	Names  bool // add English language names (pretty only)
	Color  bool
	Labels bool // print Entry.Label headers (pretty only)
}

// Write renders entries to w.
func Write(w io.Writer, entries []Entry, opts Options) error {
	trimmed := make([]Entry, len(entries))
	for i, e := range entries {
		e.Ranked = Top(e.Ranked, opts.Top)
		trimmed[i] = e
	}

	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(trimmed) == 1 && !opts.Labels {
			return enc.Encode(trimmed[0])
		}
		return enc.Encode(trimmed)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(trimmed)
	case FormatPretty, "":
		return writePretty(w, trimmed, opts)
	default:
		return fmt.Errorf("invalid format: %q", opts.Format)
	}
}

// Top returns at most n leading results; n <= 0 keeps all.
func Top(ranked []bayes.Result, n int) []bayes.Result {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

// LanguageName returns the English name of a language code, or "".
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	return display.English.Languages().Name(tag)
}

func writePretty(w io.Writer, entries []Entry, opts Options) error {
	best := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.Faint)
	label := color.New(color.Bold)
	bad := color.New(color.FgRed)
	for _, c := range []*color.Color{best, dim, label, bad} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var b strings.Builder
	for i, e := range entries {
		if opts.Labels {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(label.Sprint(e.Label))
			if e.Cached {
				b.WriteString(dim.Sprint(" (cached)"))
			}
			b.WriteString("\n")
		}
		if e.Error != "" {
			b.WriteString("  ")
			b.WriteString(bad.Sprint("error: " + e.Error))
			b.WriteString("\n")
			continue
		}

		codeWidth, nameWidth := 0, 0
		names := make([]string, len(e.Ranked))
		for j, r := range e.Ranked {
			codeWidth = max(codeWidth, runewidth.StringWidth(r.Class))
			if opts.Names {
				names[j] = LanguageName(r.Class)
				nameWidth = max(nameWidth, runewidth.StringWidth(names[j]))
			}
		}
		for j, r := range e.Ranked {
			line := pad(r.Class, codeWidth)
			if opts.Names {
				line += "  " + pad(names[j], nameWidth)
			}
			line += fmt.Sprintf("  %12.4f", r.Score)
			if j == 0 {
				line = best.Sprint(line)
			}
			fmt.Fprintf(&b, "  %2d. %s\n", j+1, line)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}
