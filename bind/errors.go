package bind

import (
	"errors"
	"fmt"
)

// ErrBinding is matched by every error returned from Binder.Bind.
var ErrBinding = errors.New("bind: binding failed")

// BindingError reports the parameter that could not be bound.
type BindingError struct {
	Param string
	Err   error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("bind: parameter %q: %v", e.Param, e.Err)
}

func (e *BindingError) Unwrap() []error { return []error{ErrBinding, e.Err} }

// Validator is implemented by bound objects that check their own state.
type Validator interface {
	Validate() error
}
