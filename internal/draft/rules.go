package draft

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Rule identifies a single validation constraint.
type Rule int

const (
	RuleNone Rule = iota
	RuleRequired
	RuleMinLength
	RuleMaxLength
	RuleMinValue
	RuleEmailFormat
)

func (r Rule) String() string {
	switch r {
	case RuleRequired:
		return "required"
	case RuleMinLength:
		return "min-length"
	case RuleMaxLength:
		return "max-length"
	case RuleMinValue:
		return "min-value"
	case RuleEmailFormat:
		return "email-format"
	}
	return "none"
}

// FieldID enumerates every editable scalar the console validates.
type FieldID int

const (
	FieldProviderName FieldID = iota + 1
	FieldProviderNIT
	FieldProviderEmail
	FieldCustomFieldName
	FieldCustomFieldValue
	FieldServiceName
	FieldServiceValuePerHour
	FieldLoginEmail
	FieldLoginPassword
)

// Constraints is the declared rule set of one field. Zero lengths are unbounded.
type Constraints struct {
	Required bool
	MinLen   int
	MaxLen   int
	Email    bool
	// Positive requires a number strictly greater than zero.
	Positive bool
}

type fieldSpec struct {
	label       string
	constraints Constraints
}

var fieldSpecs = map[FieldID]fieldSpec{
	FieldProviderName:        {label: "Name", constraints: Constraints{Required: true, MinLen: 2, MaxLen: 100}},
	FieldProviderNIT:         {label: "NIT", constraints: Constraints{Required: true, MinLen: 8, MaxLen: 15}},
	FieldProviderEmail:       {label: "Email", constraints: Constraints{Required: true, Email: true}},
	FieldCustomFieldName:     {label: "Field name", constraints: Constraints{Required: true, MinLen: 2, MaxLen: 50}},
	FieldCustomFieldValue:    {label: "Field value", constraints: Constraints{Required: true, MinLen: 1, MaxLen: 200}},
	FieldServiceName:         {label: "Service name", constraints: Constraints{Required: true, MinLen: 2, MaxLen: 100}},
	FieldServiceValuePerHour: {label: "Value per hour", constraints: Constraints{Required: true, Positive: true}},
	FieldLoginEmail:          {label: "Email", constraints: Constraints{Required: true, Email: true}},
	FieldLoginPassword:       {label: "Password", constraints: Constraints{Required: true, MinLen: 6}},
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@.]+(\.[^\s@.]+)+$`)

// Label returns the human name of a field.
func (f FieldID) Label() string {
	if spec, ok := fieldSpecs[f]; ok {
		return spec.label
	}
	return "Field"
}

// Constraints returns the declared rule set of a field.
func (f FieldID) Constraints() Constraints {
	return fieldSpecs[f].constraints
}

// Result is the outcome of checking one field value.
type Result struct {
	OK      bool
	Failing Rule
}

// Check evaluates value against the rules declared for field. The first failing
// rule wins: required, then length bounds, then format and value bounds.
func Check(field FieldID, value string) Result {
	spec, ok := fieldSpecs[field]
	if !ok {
		return Result{OK: true}
	}
	c := spec.constraints
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if c.Required {
			return Result{Failing: RuleRequired}
		}
		return Result{OK: true}
	}
	length := utf8.RuneCountInString(trimmed)
	if c.MinLen > 0 && length < c.MinLen {
		return Result{Failing: RuleMinLength}
	}
	if c.MaxLen > 0 && length > c.MaxLen {
		return Result{Failing: RuleMaxLength}
	}
	if c.Email && !emailPattern.MatchString(trimmed) {
		return Result{Failing: RuleEmailFormat}
	}
	if c.Positive {
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
			return Result{Failing: RuleMinValue}
		}
	}
	return Result{OK: true}
}

// Message maps a failing result to the text shown next to the field.
func Message(field FieldID, res Result) string {
	if res.OK {
		return ""
	}
	c := field.Constraints()
	label := field.Label()
	switch res.Failing {
	case RuleRequired:
		return label + " is required"
	case RuleMinLength:
		return fmt.Sprintf("%s must be at least %d characters", label, c.MinLen)
	case RuleMaxLength:
		return fmt.Sprintf("%s cannot exceed %d characters", label, c.MaxLen)
	case RuleEmailFormat:
		return "Enter a valid email"
	case RuleMinValue:
		return label + " must be a number greater than 0"
	}
	return ""
}
