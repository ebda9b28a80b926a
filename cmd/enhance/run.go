package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ultraview/enhancer/internal/client"
	"github.com/ultraview/enhancer/internal/orchestrator"
	"github.com/ultraview/enhancer/internal/transform"
	"github.com/ultraview/enhancer/internal/tui"
)

var runOpts struct {
	settingsFile string
	resolution   string
	sharpening   int
	toggles      transform.Settings
	output       string
	plain        bool
}

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Upload a video, follow its progress and download the result",
	Long: `Upload a video to the enhancer with the chosen settings.

Settings start from the defaults (2040p, every toggle on, sharpening 75),
then the --settings YAML file, then any flag given explicitly.

Keys (interactive mode):
  r           Retry after a failure
  q, Ctrl+C   Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runEnhance,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOpts.settingsFile, "settings", "", "YAML file with enhancement settings")
	f.StringVarP(&runOpts.resolution, "resolution", "r", string(transform.Resolution2040p), "target resolution (1080p, 1440p, 2040p, 4K)")
	f.IntVar(&runOpts.sharpening, "sharpening", 75, "sharpening level 0..100")
	f.BoolVar(&runOpts.toggles.AIUpscaling, "ai-upscaling", true, "AI upscaling")
	f.BoolVar(&runOpts.toggles.NoiseReduction, "noise-reduction", true, "noise reduction")
	f.BoolVar(&runOpts.toggles.ColorEnhancement, "color-enhancement", true, "color enhancement")
	f.BoolVar(&runOpts.toggles.MotionStabilization, "motion-stabilization", true, "motion stabilization")
	f.BoolVar(&runOpts.toggles.AudioEnhancement, "audio-enhancement", true, "audio enhancement")
	f.BoolVar(&runOpts.toggles.HDRProcessing, "hdr", true, "HDR processing")
	f.StringVarP(&runOpts.output, "output", "o", "", "download the result into this directory")
	f.BoolVar(&runOpts.plain, "plain", false, "print progress lines instead of the interactive view")
}

// resolveSettings layers defaults, the settings file and explicitly set flags.
func resolveSettings(flags *pflag.FlagSet) (transform.Settings, error) {
	settings := transform.DefaultSettings()
	if runOpts.settingsFile != "" {
		var err error
		if settings, err = transform.LoadSettingsFile(runOpts.settingsFile); err != nil {
			return settings, err
		}
	}

	if flags.Changed("resolution") {
		settings.Resolution = transform.Resolution(runOpts.resolution)
	}
	if flags.Changed("sharpening") {
		settings.Sharpening = runOpts.sharpening
	}
	toggles := map[string]*bool{
		"ai-upscaling":         &settings.AIUpscaling,
		"noise-reduction":      &settings.NoiseReduction,
		"color-enhancement":    &settings.ColorEnhancement,
		"motion-stabilization": &settings.MotionStabilization,
		"audio-enhancement":    &settings.AudioEnhancement,
		"hdr":                  &settings.HDRProcessing,
	}
	for name, dst := range toggles {
		if flags.Changed(name) {
			v, _ := flags.GetBool(name)
			*dst = v
		}
	}
	return settings, settings.Validate()
}

// fileOpener opens path afresh for every attempt and closes the previous
// handle.
type fileOpener struct {
	path string
	mu   sync.Mutex
	cur  io.Closer
}

func (o *fileOpener) Open() (orchestrator.Upload, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur != nil {
		o.cur.Close()
		o.cur = nil
	}
	f, err := appFs.Open(o.path)
	if err != nil {
		return orchestrator.Upload{}, err
	}
	o.cur = f
	return orchestrator.Upload{Name: filepath.Base(o.path), Reader: f}, nil
}

func (o *fileOpener) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur != nil {
		o.cur.Close()
		o.cur = nil
	}
}

func runEnhance(cmd *cobra.Command, args []string) error {
	settings, err := resolveSettings(cmd.Flags())
	if err != nil {
		return err
	}
	if _, err := appFs.Stat(args[0]); err != nil {
		return err
	}

	c, err := client.New(serverURL)
	if err != nil {
		return err
	}
	var opts []orchestrator.Option
	if progressScript != nil {
		opts = append(opts, orchestrator.WithScript(progressScript))
	}
	orch := orchestrator.New(c, opts...)

	opener := &fileOpener{path: args[0]}
	defer opener.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var result orchestrator.Update
	if runOpts.plain {
		result, err = runPlain(ctx, cmd.OutOrStdout(), orch, opener, settings)
		if err != nil {
			return err
		}
	} else {
		final, err := tea.NewProgram(tui.New(ctx, orch, opener.Open, settings, serverURL)).Run()
		if err != nil {
			return fmt.Errorf("error running progress view: %w", err)
		}
		result = final.(tui.Model).Result()
	}

	if result.State != orchestrator.Done {
		return errors.New("enhancement did not finish")
	}
	if runOpts.output == "" {
		return nil
	}
	path, err := download(ctx, c, result.DownloadURL, runOpts.output)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), styleOK.Render("✔")+" saved "+path)
	return nil
}

func runPlain(ctx context.Context, out io.Writer, orch *orchestrator.Orchestrator, opener *fileOpener, settings transform.Settings) (orchestrator.Update, error) {
	up, err := opener.Open()
	if err != nil {
		return orchestrator.Update{}, err
	}
	updates, err := orch.Start(ctx, up, settings)
	if err != nil {
		return orchestrator.Update{}, err
	}

	var last orchestrator.Update
	for u := range updates {
		last = u
		fmt.Fprintf(out, "[%3d%%] %s\n", u.Progress, u.Stage)
	}

	switch last.State {
	case orchestrator.Done:
		fmt.Fprintln(out, "Download: "+strings.TrimSuffix(serverURL, "/")+last.DownloadURL)
		return last, nil
	case orchestrator.Failed:
		var apiErr *client.APIError
		if errors.As(last.Err, &apiErr) {
			return last, fmt.Errorf("enhancement failed: %s", apiErr.Message)
		}
		return last, fmt.Errorf("enhancement failed: %w", last.Err)
	default:
		return last, errors.New("enhancement ended without a result")
	}
}
