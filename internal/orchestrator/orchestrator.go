// Package orchestrator drives a single enhancement attempt on the client:
// it issues the upload, plays the scripted progress stages meanwhile and
// reveals the download link once both the script and the request are done.
//
// State machine:
//
//	Idle → Uploading → Revealing → Done
//	            ↘ Failed (retryable)
//
// The progress shown is cosmetic. Stages before the last one play while
// the request is outstanding; the last stage and Done only follow a
// successful response, so Done never precedes the real request.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/ultraview/enhancer/internal/client"
	"github.com/ultraview/enhancer/internal/transform"
)

var (
	// ErrBusy is returned by Start while another attempt is in flight.
	ErrBusy = errors.New("an enhancement is already in progress")
	// ErrNoFile is returned by Start when no file was selected.
	ErrNoFile = errors.New("no file selected")
	// ErrEmptyScript is returned by Start when the progress script is empty.
	ErrEmptyScript = errors.New("progress script has no stages")
)

const (
	initialLabel  = "Initializing enhancement process..."
	finishedLabel = "Enhancement completed successfully!"
)

// State of an enhancement attempt.
type State int

const (
	Idle State = iota
	Uploading
	Revealing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Uploading:
		return "uploading"
	case Revealing:
		return "revealing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further updates follow s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

// Stage is one scripted progress step: Label is shown and Progress reached
// once Duration has elapsed.
type Stage struct {
	Label    string
	Duration time.Duration
	Progress int
}

// DefaultScript returns the stock progress script for settings.
func DefaultScript(settings transform.Settings) []Stage {
	return []Stage{
		{"Analyzing video...", 1000 * time.Millisecond, 10},
		{"Preparing AI models...", 1500 * time.Millisecond, 20},
		{fmt.Sprintf("Upscaling to %s...", settings.Resolution), 3000 * time.Millisecond, 40},
		{"Applying noise reduction...", 2000 * time.Millisecond, 60},
		{"Enhancing sharpness...", 1500 * time.Millisecond, 75},
		{"Color enhancement...", 1000 * time.Millisecond, 85},
		{"Audio processing...", 1000 * time.Millisecond, 95},
		{"Final encoding...", 1000 * time.Millisecond, 100},
	}
}

// Update is a snapshot of the attempt, sent on every transition.
type Update struct {
	State       State
	Stage       string
	Progress    int
	Steps       []Step
	DownloadURL string
	Err         error
}

// Uploader performs the real request. *client.Client implements it.
type Uploader interface {
	Enhance(ctx context.Context, name string, r io.Reader, settings *transform.Settings) (*client.EnhanceResult, error)
}

// Upload is the selected file.
type Upload struct {
	Name   string
	Reader io.Reader
}

// Orchestrator runs at most one attempt at a time.
type Orchestrator struct {
	uploader Uploader
	script   func(transform.Settings) []Stage
	busy     atomic.Bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithScript replaces DefaultScript with a fixed script.
func WithScript(stages []Stage) Option {
	return func(o *Orchestrator) {
		o.script = func(transform.Settings) []Stage { return stages }
	}
}

// New creates an Orchestrator that uploads through u.
func New(u Uploader, opts ...Option) *Orchestrator {
	o := &Orchestrator{uploader: u, script: DefaultScript}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Busy reports whether an attempt is in flight.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Start issues exactly one upload of up and returns the channel of
// updates for this attempt. The channel is closed after the terminal
// Done or Failed update; the busy flag is already cleared when that
// update is delivered, so the caller may retry right away.
func (o *Orchestrator) Start(ctx context.Context, up Upload, settings transform.Settings) (<-chan Update, error) {
	if up.Reader == nil {
		return nil, ErrNoFile
	}
	script := o.script(settings)
	if len(script) == 0 {
		return nil, ErrEmptyScript
	}
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	// Sized for every update of one attempt so the run never blocks on a
	// consumer that stopped listening.
	ch := make(chan Update, len(script)+2)
	go o.run(ctx, up, settings, script, ch)
	return ch, nil
}

type outcome struct {
	res *client.EnhanceResult
	err error
}

func (o *Orchestrator) run(ctx context.Context, up Upload, settings transform.Settings, script []Stage, ch chan<- Update) {
	defer close(ch)

	results := make(chan outcome, 1)
	go func() {
		res, err := o.uploader.Enhance(ctx, up.Name, up.Reader, &settings)
		results <- outcome{res: res, err: err}
	}()

	state, label, progress := Uploading, initialLabel, 0
	ch <- snapshot(state, label, progress)

	fail := func(err error) {
		o.busy.Store(false)
		u := snapshot(Failed, label, progress)
		u.Err = err
		ch <- u
	}

	var result *client.EnhanceResult
	// accept consumes the request outcome; false means the attempt failed.
	accept := func(out outcome) bool {
		if out.err != nil {
			fail(out.err)
			return false
		}
		if out.res == nil {
			fail(errors.New("empty response"))
			return false
		}
		result, state = out.res, Revealing
		return true
	}

	for _, stage := range script[:len(script)-1] {
		timer := time.NewTimer(stage.Duration)
	wait:
		for {
			select {
			case out := <-results:
				if !accept(out) {
					timer.Stop()
					return
				}
				results = nil
			case <-ctx.Done():
				timer.Stop()
				fail(ctx.Err())
				return
			case <-timer.C:
				break wait
			}
		}
		label, progress = stage.Label, stage.Progress
		ch <- snapshot(state, label, progress)
	}

	if result == nil {
		select {
		case out := <-results:
			if !accept(out) {
				return
			}
		case <-ctx.Done():
			fail(ctx.Err())
			return
		}
	}

	final := script[len(script)-1]
	label = final.Label
	ch <- snapshot(Revealing, label, progress)

	timer := time.NewTimer(final.Duration)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
		fail(ctx.Err())
		return
	}

	o.busy.Store(false)
	done := snapshot(Done, finishedLabel, 100)
	done.DownloadURL = result.DownloadURL
	ch <- done
}

func snapshot(state State, label string, progress int) Update {
	return Update{
		State:    state,
		Stage:    label,
		Progress: progress,
		Steps:    Steps(progress, state),
	}
}
