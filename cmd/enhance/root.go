package main

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ultraview/enhancer/internal/log"
	"github.com/ultraview/enhancer/internal/orchestrator"
)

var (
	// appFs is where input files are read and downloads are written.
	appFs afero.Fs = afero.NewOsFs()

	// progressScript overrides the default progress script when set.
	progressScript []orchestrator.Stage

	serverURL string
	logLevel  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Upload videos to the enhancer and fetch the results",
	Long: styleTitle.Render("enhance") + " - video enhancement client\n\n" +
		"Uploads a video with the chosen enhancement settings, shows the\n" +
		"processing progress and downloads the enhanced file.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetLevel(logLevel)
	},
}

func init() {
	defaultServer := os.Getenv("ENHANCER_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "enhancer server URL (env ENHANCER_SERVER)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
