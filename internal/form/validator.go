package form

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smileynet/contactform/internal/clock"
)

// DefaultSuccessDelay is how long the success banner shows before the form
// returns.
const DefaultSuccessDelay = 5 * time.Second

// State is the form's submission state.
type State int

const (
	Editing State = iota // Form visible, accepting input.
	Success              // Success banner visible, form hidden.
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}

// Submission is a fully valid form captured at submit time.
type Submission struct {
	ID          string    `json:"id"`
	Values      Values    `json:"values"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SubmitHook receives each accepted submission. It is called without the
// validator's lock held.
type SubmitHook func(Submission)

// FieldView is the rendered state of one field.
type FieldView struct {
	Name    FieldName
	Label   string
	Value   string
	Error   string
	Invalid bool
}

// Snapshot is everything a host needs to draw the form.
type Snapshot struct {
	Fields  []FieldView
	State   State
	Success bool
}

// Validator validates the contact form fields and drives the
// editing/success state machine. It is safe for concurrent use; scheduled
// reverts may fire on another goroutine.
type Validator struct {
	mu        sync.Mutex
	display   Display
	scheduler clock.Scheduler
	delay     time.Duration
	hook      SubmitHook
	now       func() time.Time

	values Values
	errors map[FieldName]string
	state  State
	revert clock.Handle
}

// Option configures a Validator.
type Option func(*Validator)

// New creates a Validator in the Editing state with empty values.
// Without WithScheduler it uses real timers.
func New(opts ...Option) *Validator {
	v := &Validator{
		display: nopDisplay{},
		delay:   DefaultSuccessDelay,
		hook:    func(Submission) {},
		now:     time.Now,
		values:  make(Values),
		errors:  make(map[FieldName]string),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.scheduler == nil {
		v.scheduler = clock.NewTimers()
	}
	return v
}

// WithDisplay sets the display notified of every change.
func WithDisplay(d Display) Option {
	return func(v *Validator) {
		if d != nil {
			v.display = d
		}
	}
}

// WithScheduler sets the scheduler used for the success revert.
func WithScheduler(s clock.Scheduler) Option {
	return func(v *Validator) { v.scheduler = s }
}

// WithSuccessDelay overrides how long the success banner shows.
func WithSuccessDelay(d time.Duration) Option {
	return func(v *Validator) { v.delay = d }
}

// WithSubmitHook sets the callback for accepted submissions.
func WithSubmitHook(h SubmitHook) Option {
	return func(v *Validator) {
		if h != nil {
			v.hook = h
		}
	}
}

// WithNow overrides the submission timestamp source.
func WithNow(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// SetValues replaces the current values without validating. Unknown
// field names are dropped.
func (v *Validator) SetValues(values Values) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.values = make(Values, len(fields))
	for name, val := range values {
		if _, ok := Lookup(name); ok {
			v.values[name] = val
		}
	}
}

// Value returns the current raw value of a field.
func (v *Validator) Value(name FieldName) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.values[name]
}

// Values returns a copy of the current values.
func (v *Validator) Values() Values {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.values.Clone()
}

// OnInput records a value change. The field is re-validated only when it
// is already marked invalid, so errors clear as soon as input is fixed
// without nagging before the first blur. Reports whether the field is
// currently free of errors.
func (v *Validator) OnInput(name FieldName, value string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	spec, ok := Lookup(name)
	if !ok {
		return true
	}
	v.values[name] = value
	if _, invalid := v.errors[name]; !invalid {
		return true
	}
	return v.validateOne(spec)
}

// OnBlur validates the field that lost focus.
func (v *Validator) OnBlur(name FieldName) bool {
	return v.ValidateOne(name)
}

// OnSubmit validates every field and, when all pass, enters Success:
// the banner shows, values are cleared, the hook receives the submission
// and a revert to Editing is scheduled. Submitting while the banner is
// showing is ignored and returns false. The hook runs after the validator
// is unlocked, so it may call back into v.
func (v *Validator) OnSubmit() bool {
	sub, ok := v.submit()
	if ok {
		v.hook(sub)
	}
	return ok
}

func (v *Validator) submit() (Submission, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == Success {
		return Submission{}, false
	}

	v.clearAll()
	if !v.validateAll() {
		return Submission{}, false
	}

	sub := Submission{
		ID:          uuid.NewString(),
		Values:      v.values.Clone(),
		SubmittedAt: v.now(),
	}

	v.state = Success
	v.display.ShowSuccess()
	v.values = make(Values, len(fields))
	v.display.ResetValues()
	v.revert = v.scheduler.Schedule(v.delay, v.revertToEditing)
	return sub, true
}

// revertToEditing is the scheduled end of the success banner.
func (v *Validator) revertToEditing() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.revert = 0
	if v.state != Success {
		return
	}
	v.state = Editing
	v.display.ShowForm()
}

// ValidateAll clears every error, then validates all fields in
// declaration order. Every invalid field is reported. Returns true iff all
// fields are valid.
func (v *Validator) ValidateAll() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.clearAll()
	return v.validateAll()
}

func (v *Validator) validateAll() bool {
	ok := true
	for _, spec := range fields {
		if !v.validateOne(spec) {
			ok = false
		}
	}
	return ok
}

// ValidateOne re-validates a single field, replacing its previous error.
// Unknown fields have nothing to report and are valid.
func (v *Validator) ValidateOne(name FieldName) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	spec, ok := Lookup(name)
	if !ok {
		return true
	}
	return v.validateOne(spec)
}

func (v *Validator) validateOne(spec FieldSpec) bool {
	v.clearField(spec.Name)

	res := Validate(spec, v.values[spec.Name])
	if res.Valid {
		return true
	}
	v.errors[spec.Name] = res.Message
	v.display.ShowFieldError(spec.Name, res.Message)
	return false
}

// ClearAll removes every error message and invalid marker.
func (v *Validator) ClearAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.clearAll()
}

func (v *Validator) clearAll() {
	for _, spec := range fields {
		v.clearField(spec.Name)
	}
}

func (v *Validator) clearField(name FieldName) {
	delete(v.errors, name)
	v.display.ClearFieldError(name)
}

// Error returns the message shown for a field, or "" when it is valid.
func (v *Validator) Error(name FieldName) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errors[name]
}

// Invalid reports whether a field is marked invalid.
func (v *Validator) Invalid(name FieldName) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.errors[name]
	return ok
}

// State returns the current submission state.
func (v *Validator) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Snapshot returns the current rendering state.
func (v *Validator) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{
		Fields:  make([]FieldView, 0, len(fields)),
		State:   v.state,
		Success: v.state == Success,
	}
	for _, spec := range fields {
		msg := v.errors[spec.Name]
		s.Fields = append(s.Fields, FieldView{
			Name:    spec.Name,
			Label:   spec.Label,
			Value:   v.values[spec.Name],
			Error:   msg,
			Invalid: msg != "",
		})
	}
	return s
}

// Close cancels a pending revert. The validator stays in its current state.
func (v *Validator) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.revert != 0 {
		v.scheduler.Cancel(v.revert)
		v.revert = 0
	}
}
