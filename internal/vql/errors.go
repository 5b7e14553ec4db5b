package vql

import "fmt"

// ValidationError is returned for any rule the lexer, parser, or
// validator trips over. Field names which rule failed, for the 400
// response's problem-detail payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("vql: %s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
