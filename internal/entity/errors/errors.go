// Package errors defines the typed errors produced while compiling an entity
// definition. Every error carries its kind, the offending raw input and an
// optional suggestion so the CLI can print a single correctable line.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind identifies the class of an entity definition error
type Kind string

const (
	// KindMalformedField is a field fragment with the wrong delimiter layout
	KindMalformedField Kind = "malformed-field"
	// KindMalformedRelation is a relation with a bad `->` arity, keyword or target
	KindMalformedRelation Kind = "malformed-relation"
	// KindUnknownRule is a validation rule name outside the recognised set
	KindUnknownRule Kind = "unknown-validation-rule"
	// KindMissingRuleValue is a valued rule written without `=value`
	KindMissingRuleValue Kind = "missing-rule-value"
	// KindInvalidNumber is a length rule whose value is not a non-negative integer
	KindInvalidNumber Kind = "invalid-numeric-value"
	// KindInvalidType is a scalar type outside the allow-list
	KindInvalidType Kind = "invalid-scalar-type"
	// KindInvalidEntityName is an empty or non-alphanumeric entity name
	KindInvalidEntityName Kind = "invalid-entity-name"
	// KindFilesystem wraps a failed read or write
	KindFilesystem Kind = "filesystem-error"
)

// ErrorCode is the stable short code printed next to an error
type ErrorCode string

var kindCodes = map[Kind]ErrorCode{
	KindMalformedField:    "ENT001",
	KindMalformedRelation: "ENT002",
	KindUnknownRule:       "ENT101",
	KindMissingRuleValue:  "ENT102",
	KindInvalidNumber:     "ENT103",
	KindInvalidType:       "ENT201",
	KindInvalidEntityName: "ENT301",
	KindFilesystem:        "ENT901",
}

// Sentinels for errors.Is matching on kind alone
var (
	ErrMalformedField    = &Error{Kind: KindMalformedField}
	ErrMalformedRelation = &Error{Kind: KindMalformedRelation}
	ErrUnknownRule       = &Error{Kind: KindUnknownRule}
	ErrMissingRuleValue  = &Error{Kind: KindMissingRuleValue}
	ErrInvalidNumber     = &Error{Kind: KindInvalidNumber}
	ErrInvalidType       = &Error{Kind: KindInvalidType}
	ErrInvalidEntityName = &Error{Kind: KindInvalidEntityName}
	ErrFilesystem        = &Error{Kind: KindFilesystem}
)

// Error is a single entity definition failure
type Error struct {
	// Kind is the error class
	Kind Kind `json:"kind"`
	// Input is the raw fragment, token or path that caused the failure
	Input string `json:"input,omitempty"`
	// Message is the primary human-readable message
	Message string `json:"message"`
	// Suggestion is an optional hint for fixing the input
	Suggestion string `json:"suggestion,omitempty"`
	// Err is the underlying cause, if any
	Err error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Input != "" && !strings.Contains(e.Message, e.Input) {
		fmt.Fprintf(&b, " (input %q)", e.Input)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Code returns the stable short code for the error kind
func (e *Error) Code() ErrorCode {
	return kindCodes[e.Kind]
}

// WithSuggestion sets a suggestion for fixing the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// WithCause sets the underlying cause
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// ToJSON returns the error as an indented JSON document
func (e *Error) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(struct {
		Code ErrorCode `json:"code"`
		*Error
	}{e.Code(), e}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none
func KindOf(err error) Kind {
	var e *Error
	if !stderrors.As(err, &e) {
		return ""
	}
	return e.Kind
}

func newError(kind Kind, input, message string) *Error {
	return &Error{Kind: kind, Input: input, Message: message}
}

// NewMalformedField creates a malformed-field error for fragment
func NewMalformedField(fragment, reason string) *Error {
	return newError(KindMalformedField, fragment,
		fmt.Sprintf("invalid field %q: %s", fragment, reason),
	).WithSuggestion("Expected format: name:Type|rule1 rule2=value")
}

// NewMalformedRelation creates a malformed-relation error for fragment
func NewMalformedRelation(fragment, reason string) *Error {
	return newError(KindMalformedRelation, fragment,
		fmt.Sprintf("invalid relation %q: %s", fragment, reason),
	).WithSuggestion("Expected format: alias->hasOne|hasMany|belongsTo:Target")
}

// NewUnknownRule creates an unknown-validation-rule error
func NewUnknownRule(rule string, known []string) *Error {
	return newError(KindUnknownRule, rule,
		fmt.Sprintf("unknown validation rule %q", rule),
	).WithSuggestion("Known rules are: " + strings.Join(known, ", "))
}

// NewMissingRuleValue creates a missing-rule-value error
func NewMissingRuleValue(rule string) *Error {
	return newError(KindMissingRuleValue, rule,
		fmt.Sprintf("%s requires a value", rule),
	).WithSuggestion(fmt.Sprintf("Write it as %s=<value>", rule))
}

// NewInvalidNumber creates an invalid-numeric-value error
func NewInvalidNumber(rule, value string) *Error {
	return newError(KindInvalidNumber, value,
		fmt.Sprintf("invalid %s value: %s", rule, value),
	).WithSuggestion("Length rules take a non-negative integer")
}

// NewInvalidType creates an invalid-scalar-type error listing the allowed types
func NewInvalidType(typ string, valid []string) *Error {
	return newError(KindInvalidType, typ,
		fmt.Sprintf("invalid type: %s. Valid types are: %s", typ, strings.Join(valid, ", ")),
	)
}

// NewInvalidEntityName creates an invalid-entity-name error
func NewInvalidEntityName(name, reason string) *Error {
	return newError(KindInvalidEntityName, name,
		fmt.Sprintf("invalid entity name %q: %s", name, reason),
	).WithSuggestion("Entity names use ASCII letters and digits only, e.g. BlogPost")
}

// NewFilesystem wraps a filesystem failure on path
func NewFilesystem(op, path string, err error) *Error {
	return newError(KindFilesystem, path,
		fmt.Sprintf("failed to %s %s", op, path),
	).WithCause(err)
}
