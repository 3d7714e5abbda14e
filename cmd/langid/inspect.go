package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"langid/internal/langid"
	"langid/internal/modelfile"
	"langid/internal/report"
)

var errReencodeMismatch = errors.New("re-encoded model differs from the file")

type classInfo struct {
	Code  string  `json:"code" msgpack:"code"`
	Name  string  `json:"name,omitempty" msgpack:"name,omitempty"`
	Prior float32 `json:"prior" msgpack:"prior"`
}

type inspectOutput struct {
	Path          string      `json:"path" msgpack:"path"`
	Size          int         `json:"size" msgpack:"size"`
	Digest        string      `json:"sha256" msgpack:"sha256"`
	Features      int         `json:"features" msgpack:"features"`
	States        int         `json:"states" msgpack:"states"`
	EmitStates    int         `json:"emitting_states" msgpack:"emitting_states"`
	Emissions     int         `json:"emissions" msgpack:"emissions"`
	Classes       []classInfo `json:"classes" msgpack:"classes"`
	ReencodeMatch *bool       `json:"reencode_match,omitempty" msgpack:"reencode_match,omitempty"`
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [flags] [model]",
		Short: "Describe a model file",
		Long: `Inspect decodes a model file, validates its automaton and prints its dimensions,
class list and SHA-256. With --reencode it also checks that writing the decoded
tables back reproduces the file byte for byte.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInspect,
	}
	cmd.Flags().Bool("reencode", false, "verify that re-encoding reproduces the file")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	env, err := prepare(cmd, len(args) == 0)
	if err != nil {
		return err
	}
	defer env.close()

	path := env.settings.ModelPath
	if len(args) == 1 {
		path = args[0]
	}
	reencode, err := cmd.Flags().GetBool("reencode")
	if err != nil {
		return fmt.Errorf("failed to get reencode flag: %w", err)
	}

	idx := env.timer.Begin("read")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model: %w", err)
	}
	env.timer.End(idx, fmt.Sprintf("%d bytes", len(data)))

	idx = env.timer.Begin("decode")
	tables, err := modelfile.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	// та же проверка, что и при загрузке модели
	if _, err := langid.FromTables(tables); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	env.timer.End(idx, "")

	out := describeTables(path, data, tables, env.settings.Names)
	if reencode {
		idx = env.timer.Begin("reencode")
		var buf bytes.Buffer
		if err := modelfile.Encode(&buf, tables); err != nil {
			return fmt.Errorf("re-encode: %w", err)
		}
		match := bytes.Equal(buf.Bytes(), data)
		out.ReencodeMatch = &match
		env.timer.End(idx, "")
	}

	w := cmd.OutOrStdout()
	switch env.settings.Format {
	case report.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(out)
	case report.FormatMsgpack:
		err = msgpack.NewEncoder(w).Encode(out)
	default:
		err = writeInspectPretty(w, out)
	}
	if err != nil {
		return err
	}
	if out.ReencodeMatch != nil && !*out.ReencodeMatch {
		return errReencodeMismatch
	}
	return nil
}

func describeTables(path string, data []byte, t *modelfile.Tables, names bool) inspectOutput {
	out := inspectOutput{
		Path:       path,
		Size:       len(data),
		Digest:     modelfile.DigestOf(data).String(),
		Features:   t.NumFeats(),
		States:     t.NumStates(),
		EmitStates: len(t.Output),
	}
	for _, fs := range t.Output {
		out.Emissions += len(fs)
	}
	out.Classes = make([]classInfo, len(t.Classes))
	for i, c := range t.Classes {
		out.Classes[i] = classInfo{Code: c, Prior: t.PC[i]}
		if names {
			out.Classes[i].Name = report.LanguageName(c)
		}
	}
	return out
}

func writeInspectPretty(w io.Writer, out inspectOutput) error {
	var b strings.Builder
	fmt.Fprintf(&b, "model:     %s\n", out.Path)
	fmt.Fprintf(&b, "size:      %d bytes\n", out.Size)
	fmt.Fprintf(&b, "sha256:    %s\n", out.Digest)
	fmt.Fprintf(&b, "features:  %d\n", out.Features)
	fmt.Fprintf(&b, "states:    %d (%d emitting, %d emissions)\n", out.States, out.EmitStates, out.Emissions)
	fmt.Fprintf(&b, "classes:   %d\n", len(out.Classes))
	for _, c := range out.Classes {
		fmt.Fprintf(&b, "  %-6s %10.4f", c.Code, c.Prior)
		if c.Name != "" {
			b.WriteString("  " + c.Name)
		}
		b.WriteString("\n")
	}
	if out.ReencodeMatch != nil {
		if *out.ReencodeMatch {
			b.WriteString("re-encode: identical\n")
		} else {
			b.WriteString("re-encode: MISMATCH\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
