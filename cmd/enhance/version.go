package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Version information - these can be set during build with ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	styleTitle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "5", Dark: "5"}).Bold(true)
	styleKey   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "8", Dark: "8"})
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "2"}).Bold(true)
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Display version information",
	Aliases: []string{"v"},
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, styleTitle.Render("enhance")+" - video enhancement client")
		fmt.Fprintln(out)
		fmt.Fprintln(out, keyValue("Version", Version))
		fmt.Fprintln(out, keyValue("Commit", GitCommit))
		fmt.Fprintln(out, keyValue("Build Date", BuildDate))
	},
}

func keyValue(k, v string) string {
	return styleKey.Render(fmt.Sprintf("%-12s", k+":")) + " " + v
}
