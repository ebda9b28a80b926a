// Package tui renders an enhancement attempt in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ultraview/enhancer/internal/client"
	"github.com/ultraview/enhancer/internal/orchestrator"
	"github.com/ultraview/enhancer/internal/transform"
)

// Opener yields a fresh Upload for every attempt, so a retry can re-read
// the file from the start.
type Opener func() (orchestrator.Upload, error)

type startedMsg struct{ updates <-chan orchestrator.Update }

type startFailedMsg struct{ err error }

type updateMsg orchestrator.Update

// closedMsg reports that the updates channel of one attempt was closed.
type closedMsg struct{ updates <-chan orchestrator.Update }

// Model is the bubbletea model of one enhancement session.
type Model struct {
	ctx      context.Context
	orch     *orchestrator.Orchestrator
	open     Opener
	settings transform.Settings
	server   string

	updates <-chan orchestrator.Update
	last    orchestrator.Update
	err     error

	bar     progress.Model
	spinner spinner.Model
}

// New builds the model. server prefixes the relative download link shown
// once the attempt is done.
func New(ctx context.Context, orch *orchestrator.Orchestrator, open Opener, settings transform.Settings, server string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleStage

	return Model{
		ctx:      ctx,
		orch:     orch,
		open:     open,
		settings: settings,
		server:   strings.TrimSuffix(server, "/"),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(48)),
		spinner:  s,
	}
}

// Result is the last update received; after the program exits its State
// tells whether the attempt finished.
func (m Model) Result() orchestrator.Update {
	return m.last
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start())
}

func (m Model) start() tea.Cmd {
	return func() tea.Msg {
		up, err := m.open()
		if err != nil {
			return startFailedMsg{err: err}
		}
		ch, err := m.orch.Start(m.ctx, up, m.settings)
		if err != nil {
			return startFailedMsg{err: err}
		}
		return startedMsg{updates: ch}
	}
}

func waitForUpdate(ch <-chan orchestrator.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return closedMsg{updates: ch}
		}
		return updateMsg(u)
	}
}

func (m Model) retryable() bool {
	return m.err != nil || m.last.State == orchestrator.Failed
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.retryable() && !m.orch.Busy() {
				m.err = nil
				m.last = orchestrator.Update{}
				return m, m.start()
			}
		}
		return m, nil

	case startedMsg:
		m.updates = msg.updates
		return m, waitForUpdate(m.updates)

	case startFailedMsg:
		m.err = msg.err
		return m, nil

	case updateMsg:
		m.last = orchestrator.Update(msg)
		if m.last.State == orchestrator.Done {
			return m, tea.Quit
		}
		return m, waitForUpdate(m.updates)

	case closedMsg:
		// A retry may already have replaced the channel.
		if msg.updates == m.updates {
			m.updates = nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Video Enhancement") + "\n\n")

	if m.err != nil {
		b.WriteString(styleError.Render(iconError+" "+describeError(m.err)) + "\n\n")
		b.WriteString(styleMuted.Render("r retry • q quit"))
		return styleBox.Render(b.String())
	}

	stage := m.last.Stage
	if stage == "" {
		stage = "Waiting to start..."
	}
	switch m.last.State {
	case orchestrator.Done:
		b.WriteString(styleSuccess.Render(iconCompleted+" "+stage) + "\n")
	case orchestrator.Failed:
		b.WriteString(styleError.Render(iconError+" "+stage) + "\n")
	default:
		b.WriteString(m.spinner.View() + " " + styleStage.Render(stage) + "\n")
	}
	b.WriteString(m.bar.ViewAs(float64(m.last.Progress)/100) + "\n\n")

	steps := m.last.Steps
	if steps == nil {
		steps = orchestrator.Steps(0, orchestrator.Idle)
	}
	for _, st := range steps {
		b.WriteString(m.stepRow(st) + "\n")
	}
	b.WriteString("\n")

	switch m.last.State {
	case orchestrator.Done:
		b.WriteString("Download: " + styleLink.Render(m.server+m.last.DownloadURL) + "\n")
	case orchestrator.Failed:
		b.WriteString(styleError.Render(describeError(m.last.Err)) + "\n\n")
		b.WriteString(styleMuted.Render("r retry • q quit"))
	default:
		b.WriteString(styleMuted.Render("q quit"))
	}
	return styleBox.Render(b.String())
}

func (m Model) stepRow(st orchestrator.Step) string {
	var icon string
	switch st.Status {
	case orchestrator.StepCompleted:
		icon = styleSuccess.Render(iconCompleted)
	case orchestrator.StepError:
		icon = styleError.Render(iconError)
	case orchestrator.StepProcessing:
		icon = m.spinner.View()
	default:
		icon = styleMuted.Render(iconPending)
	}
	row := fmt.Sprintf("%s %-20s", icon, st.Name)
	if st.Status == orchestrator.StepProcessing {
		row += fmt.Sprintf(" %3d%%", st.Progress)
	}
	return row + "  " + styleMuted.Render(st.Description)
}

func describeError(err error) string {
	if err == nil {
		return "Enhancement failed"
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("Enhancement failed: %s", apiErr.Message)
	}
	return fmt.Sprintf("Enhancement failed: %v", err)
}
