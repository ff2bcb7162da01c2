// Package validation evaluates declarative field rules against submitted
// form or API values.
//
// A Schema lists fields in display order; each field carries rules that are
// checked in order, and only the first failing rule per field is reported.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Values holds submitted field values by name.
type Values map[string]string

// Rule is a single predicate with the message shown when it fails.
type Rule struct {
	Check   func(value string, all Values) bool
	Message string
}

// Field binds a field name to its rules.
type Field struct {
	Name  string
	Rules []Rule
}

// Schema is an ordered set of field rules.
type Schema []Field

// FieldError describes a failed rule for one field.
type FieldError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// Errors is the list of failed fields, in schema order.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Description
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Get returns the message for field, or "".
func (e Errors) Get(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Description
		}
	}
	return ""
}

// Map returns the errors keyed by field name, for templates.
func (e Errors) Map() map[string]string {
	m := make(map[string]string, len(e))
	for _, fe := range e {
		m[fe.Field] = fe.Description
	}
	return m
}

// Validate checks values against every field of the schema. It returns nil
// when all rules pass.
func (s Schema) Validate(values Values) Errors {
	var errs Errors
	for _, f := range s {
		v := values[f.Name]
		for _, r := range f.Rules {
			if !r.Check(v, values) {
				errs = append(errs, FieldError{Field: f.Name, Description: r.Message})
				break
			}
		}
	}
	return errs
}

func Required(msg string) Rule {
	return Rule{
		Check:   func(v string, _ Values) bool { return strings.TrimSpace(v) != "" },
		Message: msg,
	}
}

// Length bounds the rune count of the value. max <= 0 means unbounded.
func Length(min, max int, msg string) Rule {
	return Rule{
		Check: func(v string, _ Values) bool {
			n := utf8.RuneCountInString(v)
			return n >= min && (max <= 0 || n <= max)
		},
		Message: msg,
	}
}

// MaxBytes bounds the byte length of the value, for inputs whose consumer
// limits encoded size rather than characters.
func MaxBytes(max int, msg string) Rule {
	return Rule{
		Check:   func(v string, _ Values) bool { return len(v) <= max },
		Message: msg,
	}
}

func Matches(re *regexp.Regexp, msg string) Rule {
	return Rule{
		Check:   func(v string, _ Values) bool { return re.MatchString(v) },
		Message: msg,
	}
}

// EqualTo requires the value to equal the value of another field.
func EqualTo(field, msg string) Rule {
	return Rule{
		Check:   func(v string, all Values) bool { return v == all[field] },
		Message: msg,
	}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func Email(msg string) Rule {
	return Matches(emailRe, msg)
}

// IntRange requires a base-10 integer within [min, max].
func IntRange(min, max int, msg string) Rule {
	return Rule{
		Check: func(v string, _ Values) bool {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			return err == nil && n >= min && n <= max
		},
		Message: msg,
	}
}
