package form

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/smileynet/contactform/internal/clock"
)

func validValues() Values {
	return Values{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Phone:     "(973) 919-4516",
		Service:   "Full Detail",
		Location:  "Newark, NJ",
	}
}

// newTestValidator returns a validator wired to a recorder and fake clock.
func newTestValidator(t *testing.T, opts ...Option) (*Validator, *Recorder, *clock.Fake) {
	t.Helper()
	rec := NewRecorder()
	fake := clock.NewFake()
	opts = append([]Option{WithDisplay(rec), WithScheduler(fake)}, opts...)
	return New(opts...), rec, fake
}

func invalidFields(s Snapshot) []FieldName {
	var out []FieldName
	for _, f := range s.Fields {
		if f.Invalid {
			out = append(out, f.Name)
		}
	}
	return out
}

func TestNew_StartsEditing(t *testing.T) {
	v, _, _ := newTestValidator(t)

	if v.State() != Editing {
		t.Errorf("State() = %v, want editing", v.State())
	}
	snap := v.Snapshot()
	if snap.Success {
		t.Error("new validator should not show success")
	}
	if len(snap.Fields) != 6 {
		t.Fatalf("snapshot has %d fields, want 6", len(snap.Fields))
	}
	if got := invalidFields(snap); len(got) != 0 {
		t.Errorf("new validator has invalid fields %v", got)
	}
}

func TestValidateAll_AllValid(t *testing.T) {
	v, rec, _ := newTestValidator(t)
	v.SetValues(validValues())

	if !v.ValidateAll() {
		t.Fatalf("ValidateAll() = false, errors: %v", rec.Errors)
	}
	if len(rec.Errors) != 0 {
		t.Errorf("display errors = %v, want none", rec.Errors)
	}
}

func TestValidateAll_ReportsEveryInvalidField(t *testing.T) {
	// Given: two bad fields
	v, rec, _ := newTestValidator(t)
	vals := validValues()
	vals[FirstName] = ""
	vals[Email] = "bad"
	v.SetValues(vals)

	// When: the whole form is validated
	ok := v.ValidateAll()

	// Then: both are reported, independently
	if ok {
		t.Fatal("ValidateAll() = true, want false")
	}
	want := map[FieldName]string{
		FirstName: "First name is required",
		Email:     "Please enter a valid email address",
	}
	if diff := cmp.Diff(want, rec.Errors); diff != "" {
		t.Errorf("display errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]FieldName{FirstName, Email}, invalidFields(v.Snapshot())); diff != "" {
		t.Errorf("invalid fields mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateAll_DeclarationOrder(t *testing.T) {
	v, rec, _ := newTestValidator(t)

	v.ValidateAll()

	want := []string{
		"error:firstName", "error:lastName", "error:email",
		"error:phone", "error:service", "error:location",
	}
	if diff := cmp.Diff(want, rec.Events); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateAll_ClearsStaleErrors(t *testing.T) {
	// Given: a failed pass
	v, rec, _ := newTestValidator(t)
	v.ValidateAll()

	// When: all fields are fixed and validated again
	v.SetValues(validValues())
	if !v.ValidateAll() {
		t.Fatal("ValidateAll() = false after fixing fields")
	}

	// Then: no error survives
	if len(rec.Errors) != 0 {
		t.Errorf("stale display errors: %v", rec.Errors)
	}
	for _, f := range v.Snapshot().Fields {
		if f.Invalid || f.Error != "" {
			t.Errorf("field %s still marked invalid: %q", f.Name, f.Error)
		}
	}
}

func TestValidateAll_MatchesPerFieldResults(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(Values)
		want   bool
	}{
		{"all valid", func(Values) {}, true},
		{"bad phone", func(v Values) { v[Phone] = "0123456789" }, false},
		{"no service", func(v Values) { v[Service] = "" }, false},
		{"blank location", func(v Values) { v[Location] = "   " }, false},
		{"email without dot", func(v Values) { v[Email] = "a@b" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals := validValues()
			tt.mutate(vals)

			perField := true
			for _, spec := range Fields() {
				if !Validate(spec, vals[spec.Name]).Valid {
					perField = false
				}
			}

			v, _, _ := newTestValidator(t)
			v.SetValues(vals)
			got := v.ValidateAll()

			if got != tt.want || got != perField {
				t.Errorf("ValidateAll() = %v, per-field = %v, want %v", got, perField, tt.want)
			}
		})
	}
}

func TestValidateOne(t *testing.T) {
	v, rec, _ := newTestValidator(t)
	v.SetValues(Values{Phone: "123"})

	if v.ValidateOne(Phone) {
		t.Fatal("ValidateOne(phone) = true for 123")
	}
	if got := v.Error(Phone); got != "Please enter a valid phone number" {
		t.Errorf("Error(phone) = %q", got)
	}
	if len(rec.Errors) != 1 {
		t.Errorf("only the validated field should show an error, got %v", rec.Errors)
	}

	v.SetValues(Values{Phone: "9739194516"})
	if !v.ValidateOne(Phone) {
		t.Fatal("ValidateOne(phone) = false for a valid number")
	}
	if v.Invalid(Phone) || rec.Errors[Phone] != "" {
		t.Error("error not cleared after field became valid")
	}
}

func TestValidateOne_UnknownFieldIsNoop(t *testing.T) {
	v, rec, _ := newTestValidator(t)

	if !v.ValidateOne("message") {
		t.Error("ValidateOne(unknown) = false, want true")
	}
	if len(rec.Events) != 0 {
		t.Errorf("unknown field produced display events: %v", rec.Events)
	}
}

func TestOnBlur_AlwaysValidates(t *testing.T) {
	v, _, _ := newTestValidator(t)

	if v.OnBlur(LastName) {
		t.Error("OnBlur(empty lastName) = true")
	}
	if got := v.Error(LastName); got != "Last name is required" {
		t.Errorf("Error(lastName) = %q", got)
	}
}

func TestOnInput_OnlyRevalidatesInvalidFields(t *testing.T) {
	// Given: a pristine email field
	v, rec, _ := newTestValidator(t)

	// When: partial input arrives before any blur
	v.OnInput(Email, "j")

	// Then: no error is shown yet
	if v.Invalid(Email) {
		t.Fatal("OnInput on a valid field should not validate")
	}
	if len(rec.Events) != 0 {
		t.Errorf("unexpected display events %v", rec.Events)
	}

	// When: the field is blurred, then typing continues
	v.OnBlur(Email)
	if !v.Invalid(Email) {
		t.Fatal("blur should mark partial email invalid")
	}
	if v.OnInput(Email, "jane@example") {
		t.Error("OnInput(jane@example) = true, want false")
	}
	if got := v.Error(Email); got != "Please enter a valid email address" {
		t.Errorf("Error(email) = %q", got)
	}

	// Then: the error clears the moment the value becomes valid
	if !v.OnInput(Email, "jane@example.com") {
		t.Error("OnInput(valid email) = false")
	}
	if v.Invalid(Email) {
		t.Error("error should clear once input is valid")
	}
	if v.Value(Email) != "jane@example.com" {
		t.Errorf("Value(email) = %q", v.Value(Email))
	}
}

func TestOnInput_UnknownField(t *testing.T) {
	v, _, _ := newTestValidator(t)

	if !v.OnInput("message", "hello") {
		t.Error("OnInput(unknown) = false, want true")
	}
	if _, ok := v.Values()["message"]; ok {
		t.Error("unknown field value was stored")
	}
}

func TestClearAll_Idempotent(t *testing.T) {
	v, rec, _ := newTestValidator(t)
	v.ValidateAll()

	v.ClearAll()
	once := v.Snapshot()
	onceErrors := len(rec.Errors)
	v.ClearAll()
	twice := v.Snapshot()

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second ClearAll changed state (-once +twice):\n%s", diff)
	}
	if onceErrors != 0 || len(rec.Errors) != 0 {
		t.Errorf("display still has errors: %v", rec.Errors)
	}
	if got := invalidFields(twice); len(got) != 0 {
		t.Errorf("invalid fields after ClearAll: %v", got)
	}
}

func TestSetValues_DropsUnknownFields(t *testing.T) {
	v, _, _ := newTestValidator(t)
	v.SetValues(Values{FirstName: "Jane", "message": "hi"})

	want := Values{FirstName: "Jane"}
	if diff := cmp.Diff(want, v.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestOnSubmit_Invalid_StaysEditing(t *testing.T) {
	v, rec, fake := newTestValidator(t)
	v.SetValues(Values{FirstName: "Jane"})

	if v.OnSubmit() {
		t.Fatal("OnSubmit() = true with missing fields")
	}
	if v.State() != Editing {
		t.Errorf("State() = %v, want editing", v.State())
	}
	if rec.Success || rec.Resets != 0 {
		t.Error("invalid submit should not show success or reset values")
	}
	if fake.Pending() != 0 {
		t.Errorf("invalid submit scheduled %d tasks", fake.Pending())
	}
	if v.Value(FirstName) != "Jane" {
		t.Error("invalid submit should keep values")
	}
	if len(rec.Errors) != 5 {
		t.Errorf("display errors = %d, want 5", len(rec.Errors))
	}
}

func TestOnSubmit_EndToEnd(t *testing.T) {
	// Given: a fully valid form
	var got []Submission
	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	v, rec, fake := newTestValidator(t,
		WithSubmitHook(func(s Submission) { got = append(got, s) }),
		WithNow(func() time.Time { return at }),
	)
	v.SetValues(validValues())

	// When: it is submitted
	if !v.OnSubmit() {
		t.Fatalf("OnSubmit() = false, errors: %v", rec.Errors)
	}

	// Then: success shows, values clear, the hook fires once
	if v.State() != Success || !v.Snapshot().Success {
		t.Fatalf("State() = %v, want success", v.State())
	}
	if !rec.Success {
		t.Error("display not told to show success")
	}
	if rec.Resets != 1 {
		t.Errorf("ResetValues called %d times, want 1", rec.Resets)
	}
	for _, f := range v.Snapshot().Fields {
		if f.Value != "" {
			t.Errorf("field %s not cleared: %q", f.Name, f.Value)
		}
	}
	if len(got) != 1 {
		t.Fatalf("hook called %d times, want 1", len(got))
	}
	if diff := cmp.Diff(validValues(), got[0].Values); diff != "" {
		t.Errorf("submitted values mismatch (-want +got):\n%s", diff)
	}
	if got[0].ID == "" {
		t.Error("submission has no id")
	}
	if !got[0].SubmittedAt.Equal(at) {
		t.Errorf("SubmittedAt = %v, want %v", got[0].SubmittedAt, at)
	}

	// When: just short of the delay
	fake.Advance(DefaultSuccessDelay - time.Millisecond)
	if v.State() != Success {
		t.Fatal("reverted before the delay elapsed")
	}

	// Then: the form returns once the delay has elapsed
	fake.Advance(time.Millisecond)
	if v.State() != Editing {
		t.Fatalf("State() = %v after delay, want editing", v.State())
	}
	if rec.Success {
		t.Error("display still shows success after revert")
	}
	wantTail := []string{"success", "reset", "form"}
	if diff := cmp.Diff(wantTail, rec.Events[len(rec.Events)-3:]); diff != "" {
		t.Errorf("event tail mismatch (-want +got):\n%s", diff)
	}
}

func TestOnSubmit_IgnoredWhileShowingSuccess(t *testing.T) {
	calls := 0
	v, _, fake := newTestValidator(t, WithSubmitHook(func(Submission) { calls++ }))
	v.SetValues(validValues())
	v.OnSubmit()

	v.SetValues(validValues())
	if v.OnSubmit() {
		t.Error("OnSubmit() during success = true, want false")
	}
	if calls != 1 {
		t.Errorf("hook called %d times, want 1", calls)
	}
	if fake.Pending() != 1 {
		t.Errorf("pending reverts = %d, want 1", fake.Pending())
	}
}

func TestOnSubmit_CustomDelay(t *testing.T) {
	v, _, fake := newTestValidator(t, WithSuccessDelay(time.Second))
	v.SetValues(validValues())
	v.OnSubmit()

	fake.Advance(time.Second)
	if v.State() != Editing {
		t.Errorf("State() = %v after custom delay, want editing", v.State())
	}
}

func TestOnSubmit_ResubmitAfterRevert(t *testing.T) {
	calls := 0
	v, _, fake := newTestValidator(t, WithSubmitHook(func(Submission) { calls++ }))

	for i := 0; i < 2; i++ {
		v.SetValues(validValues())
		if !v.OnSubmit() {
			t.Fatalf("submit %d rejected", i+1)
		}
		fake.Advance(DefaultSuccessDelay)
	}
	if calls != 2 {
		t.Errorf("hook called %d times, want 2", calls)
	}
}

func TestClose_CancelsRevert(t *testing.T) {
	v, rec, fake := newTestValidator(t)
	v.SetValues(validValues())
	v.OnSubmit()

	v.Close()
	fake.Advance(2 * DefaultSuccessDelay)

	if v.State() != Success {
		t.Errorf("State() = %v, want success to persist after Close", v.State())
	}
	if !rec.Success {
		t.Error("display reverted after Close")
	}
	if fake.Pending() != 0 {
		t.Errorf("pending tasks after Close = %d", fake.Pending())
	}
}

func TestNew_NilDisplayAndHook(t *testing.T) {
	fake := clock.NewFake()
	v := New(WithDisplay(nil), WithSubmitHook(nil), WithScheduler(fake))
	v.SetValues(validValues())

	if !v.OnSubmit() {
		t.Fatal("OnSubmit() = false")
	}
	fake.Advance(DefaultSuccessDelay)
	if v.State() != Editing {
		t.Errorf("State() = %v, want editing", v.State())
	}
}

func TestOnSubmit_HookMayCallBack(t *testing.T) {
	// Given: a hook that reads the validator it was called from
	var state State
	var values Values
	done := make(chan struct{})
	var v *Validator
	v, _, _ = newTestValidator(t, WithSubmitHook(func(Submission) {
		state = v.State()
		values = v.Values()
		close(done)
	}))
	v.SetValues(validValues())

	// When: the form is sent
	go v.OnSubmit()

	// Then: the hook completes and sees the post-submit state
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hook blocked calling back into the validator")
	}
	if state != Success {
		t.Errorf("State() in hook = %v, want success", state)
	}
	if len(values) != 0 {
		t.Errorf("Values() in hook = %v, want cleared", values)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Editing, "editing"},
		{Success, "success"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
