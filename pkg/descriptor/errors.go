package descriptor

import (
	"errors"
	"fmt"
)

// ErrInvalidDescriptor matches every *Error with errors.Is.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// Error reports a descriptor grammar violation. Pos is the byte offset in
// Input where parsing failed.
type Error struct {
	Input  string
	Reason string
	Pos    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("descriptor: invalid descriptor %q at position %d: %s", e.Input, e.Pos, e.Reason)
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalidDescriptor
}
