package controller

import "errors"

var (
	ErrInvalidTarget     = errors.New("controller: target must be a non-nil value with methods")
	ErrMethodNotFound    = errors.New("controller: method not found")
	ErrDuplicateMethod   = errors.New("controller: method already registered")
	ErrParamCount        = errors.New("controller: parameter count mismatch")
	ErrUnsupportedParam  = errors.New("controller: unsupported parameter type")
	ErrUnsupportedReturn = errors.New("controller: unsupported return signature")
	ErrElementType       = errors.New("controller: list element type not assignable")
)
