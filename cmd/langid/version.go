package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"langid/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show langid build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}
			colorFlag, err := cmd.Flags().GetString("color")
			if err != nil {
				return fmt.Errorf("failed to get color flag: %w", err)
			}
			colorMode, err := readUIMode("color", colorFlag)
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(versionPayload{
					Tool:      "langid",
					Version:   strings.TrimSpace(version.Version),
					GitCommit: strings.TrimSpace(version.GitCommit),
					BuildDate: strings.TrimSpace(version.BuildDate),
					GoVersion: runtime.Version(),
				})
			case "pretty", "":
				_, err := fmt.Fprint(cmd.OutOrStdout(), version.Info(resolveMode(colorMode, cmd.OutOrStdout())))
				return err
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
}
