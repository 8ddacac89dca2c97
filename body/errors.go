package body

import (
	"errors"
	"fmt"
)

// ErrMalformedBlock marks a multipart block that could not be parsed. The
// block is skipped and parsing continues with the next one.
var ErrMalformedBlock = errors.New("body: malformed multipart block")

// MalformedBlockError describes a skipped multipart block.
type MalformedBlockError struct {
	Index  int
	Reason string
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("body: malformed multipart block %d: %s", e.Index, e.Reason)
}

func (e *MalformedBlockError) Unwrap() error { return ErrMalformedBlock }

func malformed(index int, format string, args ...any) *MalformedBlockError {
	return &MalformedBlockError{Index: index, Reason: fmt.Sprintf(format, args...)}
}
