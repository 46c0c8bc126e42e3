package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the jitscript CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// OpsetVersion tags builtin operator calls when no other version is configured.
	OpsetVersion = "1"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var componentColors = [3]color.Attribute{color.FgYellow, color.FgGreen, color.FgBlue}

// Colored renders Version with each numeric component highlighted. Suffixes
// such as "-dev" stay plain.
func Colored(enabled bool) string {
	v := strings.TrimSpace(Version)
	core, suffix, _ := strings.Cut(v, "-")
	if suffix != "" {
		suffix = "-" + suffix
	}
	parts := strings.SplitN(core, ".", 3)
	if !enabled || len(parts) != 3 {
		return v
	}
	for i, p := range parts {
		c := color.New(componentColors[i], color.Bold)
		c.EnableColor()
		parts[i] = c.Sprint(p)
	}
	return strings.Join(parts, ".") + suffix
}
