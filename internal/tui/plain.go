package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/smileynet/contactform/internal/form"
)

// ErrInputClosed is returned when input ends before a valid submission.
var ErrInputClosed = errors.New("input ended before the form was sent")

// WriterDisplay is a form.Display that prints errors and the success
// banner as text lines. Clearing is a no-op: printed lines stay printed.
type WriterDisplay struct {
	w          io.Writer
	banner     string
	holdErrors bool
}

// NewWriterDisplay creates a WriterDisplay printing to w.
func NewWriterDisplay(w io.Writer, banner string) *WriterDisplay {
	return &WriterDisplay{w: w, banner: banner}
}

// HoldErrors suppresses field errors while on. The success banner still
// prints.
func (d *WriterDisplay) HoldErrors(on bool) {
	d.holdErrors = on
}

func (d *WriterDisplay) ShowFieldError(name form.FieldName, message string) {
	if d.holdErrors {
		return
	}
	label := string(name)
	if spec, ok := form.Lookup(name); ok {
		label = spec.Label
	}
	_, _ = fmt.Fprintf(d.w, "  ✗ %s: %s\n", label, message)
}

func (d *WriterDisplay) ClearFieldError(form.FieldName) {}

func (d *WriterDisplay) ShowSuccess() {
	_, _ = fmt.Fprintf(d.w, "%s\n", d.banner)
}

func (d *WriterDisplay) ShowForm() {}

func (d *WriterDisplay) ResetValues() {}

// PlainSession runs the form as line prompts. Each answer is an input
// event followed by a blur; after the last field the form is submitted and
// invalid fields are asked again until the submit succeeds.
type PlainSession struct {
	validator *form.Validator
	display   *WriterDisplay
	in        *bufio.Scanner
	w         io.Writer
	title     string
	services  []string
}

// NewPlainSession creates a PlainSession reading answers from r. d is the
// display v reports to; it may be nil when v prints elsewhere.
func NewPlainSession(v *form.Validator, d *WriterDisplay, r io.Reader, w io.Writer, title string, services []string) *PlainSession {
	return &PlainSession{
		validator: v,
		display:   d,
		in:        bufio.NewScanner(r),
		w:         w,
		title:     title,
		services:  services,
	}
}

// readResult is one scanned line, or the reason scanning stopped.
type readResult struct {
	line string
	err  error
}

// readLines scans input on its own goroutine so a pending read never
// blocks cancellation. It stops once done is closed.
func (p *PlainSession) readLines(lines chan<- readResult, done <-chan struct{}) {
	for p.in.Scan() {
		select {
		case lines <- readResult{line: p.in.Text()}:
		case <-done:
			return
		}
	}
	err := p.in.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case lines <- readResult{err: err}:
	case <-done:
	}
}

// Run prompts until the form is sent, input ends, or ctx is cancelled.
// Cancellation is honored while waiting for an answer.
func (p *PlainSession) Run(ctx context.Context) error {
	_, _ = fmt.Fprintf(p.w, "%s\n\n", p.title)

	lines := make(chan readResult)
	done := make(chan struct{})
	defer close(done)
	go p.readLines(lines, done)

	pending := form.Fields()
	for {
		for _, spec := range pending {
			if err := ctx.Err(); err != nil {
				return err
			}
			value, err := p.ask(ctx, lines, spec)
			if err != nil {
				return err
			}
			// OnInput already re-validates a field that is marked invalid.
			revalidated := p.validator.Invalid(spec.Name)
			p.validator.OnInput(spec.Name, value)
			if !revalidated {
				p.validator.OnBlur(spec.Name)
			}
		}

		_, _ = fmt.Fprintln(p.w)
		if p.submit() {
			return nil
		}

		_, _ = fmt.Fprintln(p.w, "Please fix the fields above.")
		pending = pending[:0]
		for _, spec := range form.Fields() {
			if p.validator.Invalid(spec.Name) {
				pending = append(pending, spec)
			}
		}
	}
}

// submit sends the form. Every answer was already validated on blur with
// the same value, so the submit pass would only repeat printed errors.
func (p *PlainSession) submit() bool {
	if p.display != nil {
		p.display.HoldErrors(true)
		defer p.display.HoldErrors(false)
	}
	return p.validator.OnSubmit()
}

// ask prompts for one field and returns the raw answer.
func (p *PlainSession) ask(ctx context.Context, lines <-chan readResult, spec form.FieldSpec) (string, error) {
	if spec.Kind == form.KindSelect {
		for i, s := range p.services {
			_, _ = fmt.Fprintf(p.w, "  %d) %s\n", i+1, s)
		}
	}
	_, _ = fmt.Fprintf(p.w, "%s: ", spec.Label)

	var res readResult
	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(p.w)
		return "", ctx.Err()
	case res = <-lines:
	}
	if errors.Is(res.err, io.EOF) {
		return "", ErrInputClosed
	}
	if res.err != nil {
		return "", fmt.Errorf("reading %s: %w", spec.Name, res.err)
	}
	answer := res.line
	if spec.Kind == form.KindSelect {
		return p.chooseService(answer), nil
	}
	return answer, nil
}

// chooseService maps an answer to a service by number or by name
// (case-insensitive). Anything else selects nothing.
func (p *PlainSession) chooseService(answer string) string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ""
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(p.services) {
			return p.services[n-1]
		}
		return ""
	}
	for _, s := range p.services {
		if strings.EqualFold(s, answer) {
			return s
		}
	}
	return ""
}
