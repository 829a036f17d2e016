package cssvet

import (
	"fmt"

	"github.com/benbjohnson/cssvet/ast"
)

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

// Error returns the formatted string error message.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Message)
}

// ErrorList represents a list of errors.
type ErrorList []error

// Error returns the formatted string error message.
func (a ErrorList) Error() string {
	switch len(a) {
	case 0:
		return "no errors"
	case 1:
		return a[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", a[0], len(a)-1)
}

// Unwrap returns the errors in the list.
func (a ErrorList) Unwrap() []error { return a }

// err returns nil if the list is empty.
func (a ErrorList) err() error {
	if len(a) == 0 {
		return nil
	}
	return a
}

// InvariantError is returned by the printer when a model cannot be printed
// as valid CSS. It indicates a bug in whatever built the model.
type InvariantError struct {
	Node    ast.Node
	Message string
}

// Error returns the formatted string error message.
func (e *InvariantError) Error() string {
	if e.Node == nil {
		return "invariant violation: " + e.Message
	}
	return fmt.Sprintf("invariant violation: %s at %s", e.Message, e.Node.Span())
}
