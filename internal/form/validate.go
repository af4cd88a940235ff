package form

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	msgInvalidEmail = "Please enter a valid email address"
	msgInvalidPhone = "Please enter a valid phone number"

	minPhoneLength = 10
)

// notSpaceOrAt matches one character that is neither whitespace (ASCII,
// vertical tab, Unicode separators, BOM) nor '@'.
const notSpaceOrAt = `[^\s\x0B\p{Z}\x{FEFF}@]`

var (
	emailPattern = regexp.MustCompile(`^` + notSpaceOrAt + `+@` + notSpaceOrAt + `+\.` + notSpaceOrAt + `+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

// Result is the outcome of validating one field value.
type Result struct {
	Field   FieldName
	Valid   bool
	Message string      // Empty when Valid.
	Err     *FieldError // Nil when Valid.
}

// Validate checks raw against the rules for spec. The value is trimmed
// first; an empty required value is reported before any format check.
func Validate(spec FieldSpec, raw string) Result {
	value := strings.TrimFunc(raw, isFormSpace)

	if value == "" {
		if !spec.Required {
			return Result{Field: spec.Name, Valid: true}
		}
		return invalid(spec.Name, spec.RequiredMessage, ErrMissingValue)
	}

	switch spec.Kind {
	case KindEmail:
		if !IsValidEmail(value) {
			return invalid(spec.Name, msgInvalidEmail, ErrInvalidFormat)
		}
	case KindPhone:
		if !IsValidPhone(value) {
			return invalid(spec.Name, msgInvalidPhone, ErrInvalidFormat)
		}
	}

	return Result{Field: spec.Name, Valid: true}
}

func invalid(name FieldName, msg string, kind error) Result {
	return Result{
		Field:   name,
		Message: msg,
		Err:     &FieldError{Field: name, Message: msg, Err: kind},
	}
}

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidPhone reports whether s, with spacing and punctuation removed, is
// an optional '+' followed by 10 to 16 digits with no leading zero.
func IsValidPhone(s string) bool {
	clean := StripPhone(s)
	return phonePattern.MatchString(clean) && len(clean) >= minPhoneLength
}

// isFormSpace reports whether r is whitespace as browsers define it for
// form input: Unicode White_Space plus the BOM, without NEL (U+0085).
// notSpaceOrAt matches the same set.
func isFormSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}

// StripPhone removes whitespace, hyphens, parentheses and periods.
func StripPhone(s string) string {
	return strings.Map(func(r rune) rune {
		if isFormSpace(r) {
			return -1
		}
		switch r {
		case '-', '(', ')', '.':
			return -1
		}
		return r
	}, s)
}
