// Package tui hosts the contact form in a terminal: a Bubble Tea form when
// stdout is a TTY, line-oriented prompts otherwise.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contactform/internal/form"
)

// Model is the Bubble Tea model for the contact form. Every edit is
// forwarded to the validator as an input event and every focus change as
// a blur event; errors and the success banner are drawn from the
// validator's snapshot.
type Model struct {
	validator  *form.Validator
	sched      *Scheduler
	specs      []form.FieldSpec
	inputs     []textinput.Model // Parallel to specs; the select field stores its choice here.
	services   []string
	serviceIdx int // -1 until a service is chosen.
	focus      int
	title      string
	banner     string
	keys       formKeys
	help       help.Model
	quitting   bool
}

// ModelOption configures optional Model behavior.
type ModelOption func(*Model)

// WithServices sets the options offered for the service field.
func WithServices(services []string) ModelOption {
	return func(m *Model) { m.services = append([]string(nil), services...) }
}

// WithTitle sets the heading above the form.
func WithTitle(title string) ModelOption {
	return func(m *Model) { m.title = title }
}

// WithBanner sets the text shown in the success banner.
func WithBanner(banner string) ModelOption {
	return func(m *Model) { m.banner = banner }
}

// NewModel creates a Model for v. The validator must schedule its revert
// on sched so the banner timeout runs on the update loop.
func NewModel(v *form.Validator, sched *Scheduler, opts ...ModelOption) Model {
	specs := form.Fields()
	inputs := make([]textinput.Model, len(specs))
	for i, spec := range specs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholder(spec)
		ti.CharLimit = 0
		ti.SetValue(v.Value(spec.Name))
		inputs[i] = ti
	}

	m := Model{
		validator:  v,
		sched:      sched,
		specs:      specs,
		inputs:     inputs,
		serviceIdx: -1,
		title:      "Contact us",
		banner:     "Thank you! Your message has been sent.",
		keys:       FormKeyMap(),
		help:       help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.inputs[0].Focus()
	return m
}

func placeholder(spec form.FieldSpec) string {
	switch spec.Kind {
	case form.KindEmail:
		return "you@example.com"
	case form.KindPhone:
		return "(973) 555-0100"
	}
	return ""
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case TimerFiredMsg:
		m.sched.Fire(msg.Handle)
		var cmd tea.Cmd
		if m.validator.State() == form.Editing {
			cmd = m.inputs[m.focus].Focus()
		}
		return m, tea.Batch(cmd, m.sched.Cmd())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// handleKey routes key presses. Only quit is honored while the success
// banner is showing.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		m.validator.Close()
		return m, tea.Quit
	}
	if m.validator.State() == form.Success {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Next):
		return m.moveFocus(m.focus + 1)
	case key.Matches(msg, m.keys.Prev):
		return m.moveFocus(m.focus - 1)
	case key.Matches(msg, m.keys.Enter):
		if m.focus == len(m.specs)-1 {
			return m.submit()
		}
		return m.moveFocus(m.focus + 1)
	}

	if m.specs[m.focus].Kind == form.KindSelect {
		switch {
		case key.Matches(msg, m.keys.Left):
			m.cycleService(-1)
		case key.Matches(msg, m.keys.Right):
			m.cycleService(1)
		}
		return m, nil
	}

	name := m.specs[m.focus].Name
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if after := m.inputs[m.focus].Value(); after != before {
		m.validator.OnInput(name, after)
	}
	return m, cmd
}

// moveFocus blurs the focused field, validating it, and focuses idx
// (wrapping at both ends).
func (m Model) moveFocus(idx int) (tea.Model, tea.Cmd) {
	m.validator.OnBlur(m.specs[m.focus].Name)
	return m, m.focusField(idx)
}

func (m *Model) focusField(idx int) tea.Cmd {
	n := len(m.inputs)
	m.inputs[m.focus].Blur()
	m.focus = ((idx % n) + n) % n
	return m.inputs[m.focus].Focus()
}

func (m *Model) cycleService(delta int) {
	n := len(m.services)
	if n == 0 {
		return
	}
	switch {
	case m.serviceIdx < 0 && delta > 0:
		m.serviceIdx = 0
	case m.serviceIdx < 0:
		m.serviceIdx = n - 1
	default:
		m.serviceIdx = ((m.serviceIdx+delta)%n + n) % n
	}
	value := m.services[m.serviceIdx]
	m.inputs[m.focus].SetValue(value)
	m.validator.OnInput(form.Service, value)
}

// submit runs a full validation. On failure focus moves to the first
// invalid field; on success the inputs are emptied and the revert tick is
// started.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.validator.OnSubmit() {
		for i, spec := range m.specs {
			if m.validator.Invalid(spec.Name) {
				return m, m.focusField(i)
			}
		}
		return m, nil
	}

	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	m.serviceIdx = -1
	m.focus = 0
	return m, m.sched.Cmd()
}

// View renders the form, or the success banner after a submit.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	snap := m.validator.Snapshot()
	if snap.Success {
		b.WriteString(SuccessBox().Render(m.banner))
		b.WriteString("\n")
		return b.String()
	}

	for i, f := range snap.Fields {
		b.WriteString(FieldLabel(f.Label, i == m.focus, f.Invalid))
		b.WriteString("\n    ")
		if m.specs[i].Kind == form.KindSelect {
			b.WriteString(m.selectView())
		} else {
			b.WriteString(m.inputs[i].View())
		}
		b.WriteString("\n")
		if f.Invalid {
			b.WriteString("    " + errorStyle.Render(f.Error) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) selectView() string {
	if m.serviceIdx < 0 {
		return placeholderStyle.Render("‹ choose a service ›")
	}
	return "‹ " + m.services[m.serviceIdx] + " ›"
}
