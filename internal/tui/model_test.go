package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultraview/enhancer/internal/client"
	"github.com/ultraview/enhancer/internal/orchestrator"
	"github.com/ultraview/enhancer/internal/transform"
)

type stubUploader struct {
	err error
}

func (s stubUploader) Enhance(_ context.Context, _ string, r io.Reader, _ *transform.Settings) (*client.EnhanceResult, error) {
	_, _ = io.Copy(io.Discard, r)
	if s.err != nil {
		return nil, s.err
	}
	return &client.EnhanceResult{DownloadURL: "/api/download?file=1_clip.mp4"}, nil
}

var script = []orchestrator.Stage{
	{Label: "first", Duration: time.Millisecond, Progress: 50},
	{Label: "last", Duration: time.Millisecond, Progress: 100},
}

func newModel(t *testing.T, up orchestrator.Uploader) Model {
	t.Helper()
	orch := orchestrator.New(up, orchestrator.WithScript(script))
	open := func() (orchestrator.Upload, error) {
		return orchestrator.Upload{Name: "clip.mp4", Reader: strings.NewReader("data")}, nil
	}
	return New(context.Background(), orch, open, transform.DefaultSettings(), "http://localhost:8080/")
}

// run feeds commands back into the model until it quits or settles.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, bool) {
	t.Helper()
	for i := 0; i < 50 && cmd != nil; i++ {
		msg := cmd()
		if _, ok := msg.(tea.QuitMsg); ok {
			return m, true
		}
		next, c := m.Update(msg)
		m = next.(Model)
		cmd = c
	}
	return m, false
}

func TestModel_RunsToDone(t *testing.T) {
	m := newModel(t, stubUploader{})

	m, quit := run(t, m, m.start())
	require.True(t, quit)

	res := m.Result()
	assert.Equal(t, orchestrator.Done, res.State)
	assert.Equal(t, "/api/download?file=1_clip.mp4", res.DownloadURL)

	view := m.View()
	assert.Contains(t, view, "Enhancement completed successfully!")
	assert.Contains(t, view, "http://localhost:8080/api/download?file=1_clip.mp4")
}

func TestModel_FailureThenRetry(t *testing.T) {
	m := newModel(t, stubUploader{err: &client.APIError{StatusCode: 500, Message: "disk full"}})

	m, quit := run(t, m, m.start())
	require.False(t, quit)
	assert.Equal(t, orchestrator.Failed, m.Result().State)
	assert.Contains(t, m.View(), "Enhancement failed: disk full")
	assert.Contains(t, m.View(), "r retry")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(Model)
	require.NotNil(t, cmd, "retry should start a new attempt")
	assert.Equal(t, orchestrator.Idle, m.Result().State)
}

func TestModel_StartError(t *testing.T) {
	orch := orchestrator.New(stubUploader{}, orchestrator.WithScript(script))
	open := func() (orchestrator.Upload, error) { return orchestrator.Upload{}, errors.New("open clip.mp4: no such file") }
	m := New(context.Background(), orch, open, transform.DefaultSettings(), "")

	m, _ = run(t, m, m.start())
	assert.Contains(t, m.View(), "no such file")
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t, stubUploader{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_RetryIgnoredWhileRunning(t *testing.T) {
	m := newModel(t, stubUploader{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Nil(t, cmd)
}

func TestModel_StaleCloseKeepsCurrentAttempt(t *testing.T) {
	m := newModel(t, stubUploader{})

	previous := make(chan orchestrator.Update)
	close(previous)
	current := make(chan orchestrator.Update)

	next, _ := m.Update(startedMsg{updates: current})
	m = next.(Model)
	next, _ = m.Update(waitForUpdate(previous)())
	m = next.(Model)
	assert.Equal(t, (<-chan orchestrator.Update)(current), m.updates)

	close(current)
	next, _ = m.Update(waitForUpdate(m.updates)())
	m = next.(Model)
	assert.Nil(t, m.updates)
}
