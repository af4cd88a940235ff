package form

// Display renders validator state changes. Implementations must not call
// back into the Validator.
type Display interface {
	ShowFieldError(name FieldName, message string)
	ClearFieldError(name FieldName)
	// ShowSuccess hides the form and brings the success banner into view.
	ShowSuccess()
	// ShowForm hides the success banner and shows the form.
	ShowForm()
	// ResetValues empties every input.
	ResetValues()
}

type nopDisplay struct{}

func (nopDisplay) ShowFieldError(FieldName, string) {}
func (nopDisplay) ClearFieldError(FieldName)        {}
func (nopDisplay) ShowSuccess()                     {}
func (nopDisplay) ShowForm()                        {}
func (nopDisplay) ResetValues()                     {}

// Recorder is a Display that keeps what it was last told to render.
type Recorder struct {
	Errors  map[FieldName]string
	Success bool
	Resets  int
	Events  []string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{Errors: make(map[FieldName]string)}
}

func (r *Recorder) ShowFieldError(name FieldName, message string) {
	r.Errors[name] = message
	r.Events = append(r.Events, "error:"+string(name))
}

func (r *Recorder) ClearFieldError(name FieldName) {
	delete(r.Errors, name)
}

func (r *Recorder) ShowSuccess() {
	r.Success = true
	r.Events = append(r.Events, "success")
}

func (r *Recorder) ShowForm() {
	r.Success = false
	r.Events = append(r.Events, "form")
}

func (r *Recorder) ResetValues() {
	r.Resets++
	r.Events = append(r.Events, "reset")
}
