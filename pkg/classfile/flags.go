package classfile

import (
	"fmt"
	"strings"
)

// Access flag bits. The same bit means different things depending on
// whether it is attached to a class, field, method or method parameter.
const (
	AccPublic       = 0x0001
	AccPrivate      = 0x0002
	AccProtected    = 0x0004
	AccStatic       = 0x0008
	AccFinal        = 0x0010
	AccSuper        = 0x0020
	AccSynchronized = 0x0020
	AccVolatile     = 0x0040
	AccBridge       = 0x0040
	AccTransient    = 0x0080
	AccVarargs      = 0x0080
	AccNative       = 0x0100
	AccInterface    = 0x0200
	AccAbstract     = 0x0400
	AccStrict       = 0x0800
	AccSynthetic    = 0x1000
	AccAnnotation   = 0x2000
	AccEnum         = 0x4000
	AccModule       = 0x8000
	AccMandated     = 0x8000
)

type flagName struct {
	mask uint16
	name string
}

var classFlagNames = []flagName{
	{AccPublic, "public"},
	{AccFinal, "final"},
	{AccSuper, "super"},
	{AccInterface, "interface"},
	{AccAbstract, "abstract"},
	{AccSynthetic, "synthetic"},
	{AccAnnotation, "annotation"},
	{AccEnum, "enum"},
	{AccModule, "module"},
}

var fieldFlagNames = []flagName{
	{AccPublic, "public"},
	{AccPrivate, "private"},
	{AccProtected, "protected"},
	{AccStatic, "static"},
	{AccFinal, "final"},
	{AccVolatile, "volatile"},
	{AccTransient, "transient"},
	{AccSynthetic, "synthetic"},
	{AccEnum, "enum"},
}

var methodFlagNames = []flagName{
	{AccPublic, "public"},
	{AccPrivate, "private"},
	{AccProtected, "protected"},
	{AccStatic, "static"},
	{AccFinal, "final"},
	{AccSynchronized, "synchronized"},
	{AccBridge, "bridge"},
	{AccVarargs, "varargs"},
	{AccNative, "native"},
	{AccAbstract, "abstract"},
	{AccStrict, "strict"},
	{AccSynthetic, "synthetic"},
}

var parameterFlagNames = []flagName{
	{AccFinal, "final"},
	{AccSynthetic, "synthetic"},
	{AccMandated, "mandated"},
}

func knownMask(names []flagName) uint16 {
	var m uint16
	for _, n := range names {
		m |= n.mask
	}
	return m
}

// formatFlags renders the set bits by name. Bits outside the vocabulary are
// kept and shown in hex.
func formatFlags(v uint16, names []flagName) string {
	var parts []string
	for _, n := range names {
		if v&n.mask != 0 {
			parts = append(parts, n.name)
		}
	}
	if unknown := v &^ knownMask(names); unknown != 0 {
		parts = append(parts, fmt.Sprintf("0x%04x", unknown))
	}
	return strings.Join(parts, " ")
}

// ClassAccessFlags are the access_flags of a ClassFile.
type ClassAccessFlags uint16

func (f ClassAccessFlags) Has(mask uint16) bool { return uint16(f)&mask == mask }

// Unknown returns the set bits that have no meaning for a class.
func (f ClassAccessFlags) Unknown() uint16 { return uint16(f) &^ knownMask(classFlagNames) }

func (f ClassAccessFlags) String() string { return formatFlags(uint16(f), classFlagNames) }

// FieldAccessFlags are the access_flags of a field_info.
type FieldAccessFlags uint16

func (f FieldAccessFlags) Has(mask uint16) bool { return uint16(f)&mask == mask }

func (f FieldAccessFlags) Unknown() uint16 { return uint16(f) &^ knownMask(fieldFlagNames) }

func (f FieldAccessFlags) String() string { return formatFlags(uint16(f), fieldFlagNames) }

// MethodAccessFlags are the access_flags of a method_info.
type MethodAccessFlags uint16

func (f MethodAccessFlags) Has(mask uint16) bool { return uint16(f)&mask == mask }

func (f MethodAccessFlags) Unknown() uint16 { return uint16(f) &^ knownMask(methodFlagNames) }

func (f MethodAccessFlags) String() string { return formatFlags(uint16(f), methodFlagNames) }

// ParameterAccessFlags are the flags of a MethodParameters entry.
type ParameterAccessFlags uint16

func (f ParameterAccessFlags) Has(mask uint16) bool { return uint16(f)&mask == mask }

func (f ParameterAccessFlags) Unknown() uint16 { return uint16(f) &^ knownMask(parameterFlagNames) }

func (f ParameterAccessFlags) String() string { return formatFlags(uint16(f), parameterFlagNames) }
