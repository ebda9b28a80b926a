package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultraview/enhancer/internal/enhance"
	"github.com/ultraview/enhancer/internal/orchestrator"
	"github.com/ultraview/enhancer/internal/response"
	"github.com/ultraview/enhancer/internal/storage"
	"github.com/ultraview/enhancer/internal/transform"
)

// TestCommandStructure verifies that all commands are properly registered
func TestCommandStructure(t *testing.T) {
	for _, name := range []string{"run", "download", "version"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, cmd)
			assert.NotEmpty(t, cmd.Use)
			assert.NotEmpty(t, cmd.Short)
		})
	}
}

func TestResolveSettings(t *testing.T) {
	saved := runOpts
	t.Cleanup(func() { runOpts = saved })

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sharpening: 10\nnoiseReduction: false\n"), 0o644))
	runOpts.settingsFile = path

	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.StringVar(&runOpts.resolution, "resolution", "2040p", "")
	fs.BoolVar(&runOpts.toggles.HDRProcessing, "hdr", true, "")
	require.NoError(t, fs.Parse([]string{"--resolution", "4K", "--hdr=false"}))

	s, err := resolveSettings(fs)
	require.NoError(t, err)
	assert.Equal(t, transform.Resolution4K, s.Resolution)
	assert.Equal(t, 10, s.Sharpening)
	assert.False(t, s.NoiseReduction)
	assert.False(t, s.HDRProcessing)
	assert.True(t, s.AIUpscaling)
}

func TestResolveSettingsRejectsInvalid(t *testing.T) {
	saved := runOpts
	t.Cleanup(func() { runOpts = saved })
	runOpts.settingsFile = ""

	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.IntVar(&runOpts.sharpening, "sharpening", 75, "")
	require.NoError(t, fs.Parse([]string{"--sharpening", "250"}))

	_, err := resolveSettings(fs)
	assert.ErrorIs(t, err, transform.ErrInvalidSettings)
}

func TestRunPlainDownloadsResult(t *testing.T) {
	store, err := storage.NewLocalStorageFs(afero.NewMemMapFs(), "/uploads")
	require.NoError(t, err)
	r := chi.NewRouter()
	r.MethodNotAllowed(response.MethodNotAllowed)
	enhance.NewHandler(enhance.NewService(store), 0).Routes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	oldFs, oldScript := appFs, progressScript
	t.Cleanup(func() { appFs, progressScript = oldFs, oldScript })
	appFs = afero.NewMemMapFs()
	progressScript = []orchestrator.Stage{
		{Label: "working", Duration: time.Millisecond, Progress: 50},
		{Label: "Final encoding...", Duration: time.Millisecond, Progress: 100},
	}
	require.NoError(t, afero.WriteFile(appFs, "/in/clip.mp4", []byte("video bytes"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs([]string{"run", "--plain", "--server", srv.URL, "--output", "/out", "/in/clip.mp4"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "[100%] Enhancement completed successfully!")
	assert.Contains(t, out.String(), srv.URL+"/api/download?file=")

	entries, err := afero.ReadDir(appFs, "/out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "_clip.mp4"), entries[0].Name())

	got, err := afero.ReadFile(appFs, filepath.Join("/out", entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(got))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), Version)
}
