// Package descriptor parses the field and method descriptor strings stored
// in class-file constant pools, such as "I", "[Ljava/lang/String;" and
// "(IJ)V".
//
// Parsing is pure: it depends on neither the class-file decoder nor the
// constant pool. Callers resolve a descriptor_index to its Utf8 string first.
package descriptor

import "strings"

// Kind identifies the shape of a FieldType.
type Kind uint8

const (
	Byte Kind = iota + 1
	Char
	Double
	Float
	Int
	Long
	Short
	Boolean
	Void
	Object
	Array
)

var baseTypes = map[byte]Kind{
	'B': Byte,
	'C': Char,
	'D': Double,
	'F': Float,
	'I': Int,
	'J': Long,
	'S': Short,
	'Z': Boolean,
	'V': Void,
}

var kindChars = map[Kind]byte{
	Byte:    'B',
	Char:    'C',
	Double:  'D',
	Float:   'F',
	Int:     'I',
	Long:    'J',
	Short:   'S',
	Boolean: 'Z',
	Void:    'V',
}

var kindNames = map[Kind]string{
	Byte:    "byte",
	Char:    "char",
	Double:  "double",
	Float:   "float",
	Int:     "int",
	Long:    "long",
	Short:   "short",
	Boolean: "boolean",
	Void:    "void",
}

func (k Kind) String() string {
	switch k {
	case Object:
		return "object"
	case Array:
		return "array"
	}
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// FieldType is a parsed field type. ClassName is set only for Object, Elem
// only for Array.
type FieldType struct {
	Elem      *FieldType
	ClassName string
	Kind      Kind
}

// Primitive returns the FieldType for a base type or void.
func Primitive(k Kind) FieldType { return FieldType{Kind: k} }

// ObjectOf returns the FieldType of a reference to the named class, given in
// internal form (java/lang/String).
func ObjectOf(className string) FieldType { return FieldType{Kind: Object, ClassName: className} }

// ArrayOf returns the FieldType of an array of elem.
func ArrayOf(elem FieldType) FieldType { return FieldType{Kind: Array, Elem: &elem} }

// IsPrimitive reports whether t is one of the eight base types.
func (t FieldType) IsPrimitive() bool {
	return t.Kind >= Byte && t.Kind <= Boolean
}

// Dimensions returns the array nesting depth of t.
func (t FieldType) Dimensions() int {
	n := 0
	for t.Kind == Array && t.Elem != nil {
		n++
		t = *t.Elem
	}
	return n
}

// Equal reports whether t and u describe the same type.
func (t FieldType) Equal(u FieldType) bool {
	for t.Kind == Array && u.Kind == Array {
		if t.Elem == nil || u.Elem == nil {
			return t.Elem == u.Elem
		}
		t, u = *t.Elem, *u.Elem
	}
	return t.Kind == u.Kind && t.ClassName == u.ClassName
}

// String returns the descriptor form of t.
func (t FieldType) String() string {
	var b strings.Builder
	t.writeDescriptor(&b)
	return b.String()
}

func (t FieldType) writeDescriptor(b *strings.Builder) {
	for t.Kind == Array && t.Elem != nil {
		b.WriteByte('[')
		t = *t.Elem
	}
	switch t.Kind {
	case Object:
		b.WriteByte('L')
		b.WriteString(t.ClassName)
		b.WriteByte(';')
	default:
		if c, ok := kindChars[t.Kind]; ok {
			b.WriteByte(c)
		}
	}
}

// JavaName renders t in Java source syntax, e.g. "java.lang.String[]".
func (t FieldType) JavaName() string {
	dims := 0
	for t.Kind == Array && t.Elem != nil {
		dims++
		t = *t.Elem
	}
	name := kindNames[t.Kind]
	if t.Kind == Object {
		name = strings.ReplaceAll(t.ClassName, "/", ".")
	}
	return name + strings.Repeat("[]", dims)
}

// MethodDescriptor is a parsed method descriptor.
type MethodDescriptor struct {
	Parameters []FieldType
	Return     FieldType
}

// String returns the descriptor form of d.
func (d *MethodDescriptor) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range d.Parameters {
		p.writeDescriptor(&b)
	}
	b.WriteByte(')')
	d.Return.writeDescriptor(&b)
	return b.String()
}

// Equal reports whether d and o have the same parameter and return types.
func (d *MethodDescriptor) Equal(o *MethodDescriptor) bool {
	if len(d.Parameters) != len(o.Parameters) || !d.Return.Equal(o.Return) {
		return false
	}
	for i := range d.Parameters {
		if !d.Parameters[i].Equal(o.Parameters[i]) {
			return false
		}
	}
	return true
}

// ParameterSlots returns the number of local variable slots the parameters
// occupy; long and double take two.
func (d *MethodDescriptor) ParameterSlots() int {
	n := 0
	for _, p := range d.Parameters {
		if p.Kind == Long || p.Kind == Double {
			n += 2
		} else {
			n++
		}
	}
	return n
}
