// Package version carries build metadata for the langid CLI.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"
)

// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var partColors = [3]color.Attribute{color.FgYellow, color.FgGreen, color.FgBlue}

// Colored renders Version with major, minor and patch in separate colors.
// Anything that is not major.minor.patch[-suffix] is returned unchanged.
func Colored(useColor bool) string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version
	}
	for i := range parts {
		c := color.New(partColors[i], color.Bold)
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		parts[i] = c.Sprint(parts[i])
	}
	out := strings.Join(parts, ".")
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Info returns the multi-line description printed by `langid version`.
func Info(useColor bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "langid %s\n", Colored(useColor))
	if GitCommit != "" {
		fmt.Fprintf(&b, "commit: %s\n", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&b, "built:  %s\n", BuildDate)
	}
	fmt.Fprintf(&b, "go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return b.String()
}
