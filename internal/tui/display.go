package tui

import (
	"context"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/contactform/internal/clock"
	"github.com/smileynet/contactform/internal/form"
)

// Host runs the contact form until it is sent or the user leaves.
type Host interface {
	Run(ctx context.Context) error
}

// HostOptions configures host creation.
type HostOptions struct {
	Reader       io.Reader       // Input source (default: os.Stdin).
	Writer       io.Writer       // Output destination (default: os.Stdout).
	ForcePlain   bool            // Force line prompts even if TTY.
	Title        string          // Heading above the form.
	Banner       string          // Success banner text.
	Services     []string        // Options for the service field.
	SuccessDelay time.Duration   // Banner duration (default: form.DefaultSuccessDelay).
	SubmitHook   form.SubmitHook // Receives accepted submissions.
}

func (o HostOptions) withDefaults() HostOptions {
	if o.Reader == nil {
		o.Reader = os.Stdin
	}
	if o.Writer == nil {
		o.Writer = os.Stdout
	}
	if o.SuccessDelay <= 0 {
		o.SuccessDelay = form.DefaultSuccessDelay
	}
	return o
}

func (o HostOptions) validatorOptions(d form.Display, s clock.Scheduler) []form.Option {
	return []form.Option{
		form.WithDisplay(d),
		form.WithScheduler(s),
		form.WithSuccessDelay(o.SuccessDelay),
		form.WithSubmitHook(o.SubmitHook),
	}
}

// UseTUI reports whether NewHost would start the Bubble Tea form.
func UseTUI(opts HostOptions) bool {
	opts = opts.withDefaults()
	return !opts.ForcePlain && isTTY(opts.Writer)
}

// NewHost returns a TUI host when the writer is a TTY, or a line-prompt
// host otherwise. ForcePlain overrides TTY detection.
func NewHost(opts HostOptions) Host {
	opts = opts.withDefaults()
	if UseTUI(opts) {
		return &TUIHost{opts: opts}
	}
	return &PlainHost{opts: opts}
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PlainHost runs the form as line prompts on real timers.
type PlainHost struct {
	opts HostOptions
}

// Run prompts until the form is sent. A pending banner revert is cancelled
// on return.
func (h *PlainHost) Run(ctx context.Context) error {
	timers := clock.NewTimers()
	defer timers.Stop()

	display := NewWriterDisplay(h.opts.Writer, h.opts.Banner)
	v := form.New(h.opts.validatorOptions(display, timers)...)
	defer v.Close()

	return NewPlainSession(v, display, h.opts.Reader, h.opts.Writer, h.opts.Title, h.opts.Services).Run(ctx)
}

// TUIHost runs the form as a Bubble Tea program.
// Falls back to PlainHost if the program fails to start.
type TUIHost struct {
	opts HostOptions
}

// Run starts the Bubble Tea program and blocks until the user quits.
func (h *TUIHost) Run(ctx context.Context) error {
	sched := NewScheduler()
	v := form.New(h.opts.validatorOptions(nil, sched)...)
	defer v.Close()

	model := NewModel(v, sched,
		WithTitle(h.opts.Title),
		WithBanner(h.opts.Banner),
		WithServices(h.opts.Services),
	)
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(h.opts.Reader),
		tea.WithOutput(h.opts.Writer),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		plain := &PlainHost{opts: h.opts}
		return plain.Run(ctx)
	}
	return nil
}
