package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalid = errors.New("invalid")

	// fatal data errors: the whole batch is untrustworthy once one is seen
	ErrUnparseableName = errors.New("unparseable name")
	ErrUnknownGender   = errors.New("gender not found")
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationError struct {
	Items []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Items) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	b.WriteString("validation failed:\n")
	for _, item := range e.Items {
		b.WriteString(" - ")
		b.WriteString(item.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (e *ValidationError) Add(field, msg string) {
	e.Items = append(e.Items, FieldError{
		Field:   field,
		Message: msg,
	})
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func (e ValidationError) HasAny() bool {
	return len(e.Items) > 0
}

// RecordError pins a fatal data error to the input record that caused it.
type RecordError struct {
	Index int
	Name  string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (%q): %v", e.Index, e.Name, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
