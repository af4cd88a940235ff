// Package form validates the contact form and tracks whether the form or
// its success banner is showing.
//
// A Validator owns the six contact fields, their current values and the
// last validation result for each. Hosts feed it blur, input and submit
// events and render from its Snapshot or through an injected Display.
package form

// FieldName identifies one of the contact form fields.
type FieldName string

const (
	FirstName FieldName = "firstName"
	LastName  FieldName = "lastName"
	Email     FieldName = "email"
	Phone     FieldName = "phone"
	Service   FieldName = "service"
	Location  FieldName = "location"
)

// Kind selects the validation rules applied to a field.
type Kind string

const (
	KindText   Kind = "text"
	KindEmail  Kind = "email"
	KindPhone  Kind = "phone"
	KindSelect Kind = "select"
)

// FieldSpec describes one form field.
type FieldSpec struct {
	Name            FieldName
	Label           string
	Required        bool
	Kind            Kind
	RequiredMessage string // Shown when the trimmed value is empty.
}

// fields is the fixed field set in declaration order.
var fields = [...]FieldSpec{
	{Name: FirstName, Label: "First name", Required: true, Kind: KindText, RequiredMessage: "First name is required"},
	{Name: LastName, Label: "Last name", Required: true, Kind: KindText, RequiredMessage: "Last name is required"},
	{Name: Email, Label: "Email", Required: true, Kind: KindEmail, RequiredMessage: "Email is required"},
	{Name: Phone, Label: "Phone", Required: true, Kind: KindPhone, RequiredMessage: "Phone number is required"},
	{Name: Service, Label: "Service", Required: true, Kind: KindSelect, RequiredMessage: "Please select a service"},
	{Name: Location, Label: "Service location", Required: true, Kind: KindText, RequiredMessage: "Service location is required"},
}

// Fields returns the contact form fields in declaration order.
// The returned slice is a copy.
func Fields() []FieldSpec {
	out := make([]FieldSpec, len(fields))
	copy(out, fields[:])
	return out
}

// Lookup returns the spec for name.
func Lookup(name FieldName) (FieldSpec, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Values maps field names to raw, untrimmed input.
type Values map[FieldName]string

// Clone returns a copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
