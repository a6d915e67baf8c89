package classfile

import (
	"fmt"
	"strings"
)

// Kind categorizes a decode failure.
type Kind string

const (
	KindTruncated          Kind = "truncated"
	KindBadMagic           Kind = "bad_magic"
	KindUnknownConstantTag Kind = "unknown_constant_tag"
	KindInvalidUTF8        Kind = "invalid_utf8"
	KindIndexOutOfRange    Kind = "index_out_of_range"
	KindInvalidPool        Kind = "invalid_pool"
	KindTrailingData       Kind = "trailing_data"
	KindOverflow           Kind = "overflow"
	KindInvalidAttribute   Kind = "invalid_attribute"
)

// Sentinels for errors.Is. A *DecodeError matches any sentinel of the same Kind.
var (
	ErrTruncated          = &DecodeError{Kind: KindTruncated, Offset: -1}
	ErrBadMagic           = &DecodeError{Kind: KindBadMagic, Offset: -1}
	ErrUnknownConstantTag = &DecodeError{Kind: KindUnknownConstantTag, Offset: -1}
	ErrInvalidUTF8        = &DecodeError{Kind: KindInvalidUTF8, Offset: -1}
	ErrIndexOutOfRange    = &DecodeError{Kind: KindIndexOutOfRange, Offset: -1}
	ErrInvalidPool        = &DecodeError{Kind: KindInvalidPool, Offset: -1}
	ErrTrailingData       = &DecodeError{Kind: KindTrailingData, Offset: -1}
	ErrOverflow           = &DecodeError{Kind: KindOverflow, Offset: -1}
	ErrInvalidAttribute   = &DecodeError{Kind: KindInvalidAttribute, Offset: -1}
)

// DecodeError describes a failure to decode, encode or resolve class-file data.
//
// Offset is the byte offset into the decoded buffer, or -1 when the error
// does not come from a byte position (resolver and encoder errors).
// Index is the 1-based constant pool slot involved, or 0.
type DecodeError struct {
	Err    error
	Detail string
	Kind   Kind
	Offset int
	Index  uint16
	Tag    ConstantTag
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("classfile: ")
	b.WriteString(string(e.Kind))
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Index != 0 {
		fmt.Fprintf(&b, " (constant pool index %d)", e.Index)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *DecodeError of the same Kind.
func (e *DecodeError) Is(target error) bool {
	if t, ok := target.(*DecodeError); ok {
		return e.Kind == t.Kind
	}
	return false
}

func errAt(kind Kind, offset int, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

func errIndex(index uint16, format string, args ...any) *DecodeError {
	return &DecodeError{
		Kind:   KindIndexOutOfRange,
		Offset: -1,
		Index:  index,
		Detail: fmt.Sprintf(format, args...),
	}
}
