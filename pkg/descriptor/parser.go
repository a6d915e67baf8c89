package descriptor

import (
	"fmt"
	"strings"
)

// maxArrayDimensions is the JVM limit on array nesting in a descriptor.
const maxArrayDimensions = 255

type parser struct {
	s   string
	pos int
}

func (p *parser) fail(pos int, format string, args ...any) error {
	return &Error{Input: p.s, Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

// ParseFieldType parses a field descriptor such as "I" or "[Ljava/lang/String;".
// The whole string must be consumed, and V is rejected.
func ParseFieldType(s string) (FieldType, error) {
	p := &parser{s: s}
	t, err := p.fieldType(false)
	if err != nil {
		return FieldType{}, err
	}
	if p.pos != len(s) {
		return FieldType{}, p.fail(p.pos, "unexpected %q after field type", s[p.pos:])
	}
	return t, nil
}

// ParseMethodDescriptor parses a method descriptor of the form
// "(<parameter types>)<return type>".
func ParseMethodDescriptor(s string) (*MethodDescriptor, error) {
	p := &parser{s: s}
	if len(s) == 0 || s[0] != '(' {
		return nil, p.fail(0, "method descriptor must start with '('")
	}
	p.pos++

	d := &MethodDescriptor{}
	for {
		if p.pos >= len(s) {
			return nil, p.fail(p.pos, "missing ')'")
		}
		if s[p.pos] == ')' {
			p.pos++
			break
		}
		t, err := p.fieldType(false)
		if err != nil {
			return nil, err
		}
		d.Parameters = append(d.Parameters, t)
	}

	if p.pos >= len(s) {
		return nil, p.fail(p.pos, "missing return type")
	}
	ret, err := p.fieldType(true)
	if err != nil {
		return nil, err
	}
	if p.pos != len(s) {
		return nil, p.fail(p.pos, "unexpected %q after return type", s[p.pos:])
	}
	d.Return = ret
	return d, nil
}

func (p *parser) fieldType(allowVoid bool) (FieldType, error) {
	start := p.pos
	dims := 0
	for p.pos < len(p.s) && p.s[p.pos] == '[' {
		dims++
		p.pos++
	}
	if dims > maxArrayDimensions {
		return FieldType{}, p.fail(start, "array has %d dimensions, limit is %d", dims, maxArrayDimensions)
	}
	if p.pos >= len(p.s) {
		if dims > 0 {
			return FieldType{}, p.fail(p.pos, "array is missing its element type")
		}
		return FieldType{}, p.fail(p.pos, "missing field type")
	}

	var t FieldType
	switch c := p.s[p.pos]; c {
	case 'L':
		end := strings.IndexByte(p.s[p.pos+1:], ';')
		if end < 0 {
			return FieldType{}, p.fail(p.pos, "class name is not terminated by ';'")
		}
		if end == 0 {
			return FieldType{}, p.fail(p.pos, "empty class name")
		}
		t = ObjectOf(p.s[p.pos+1 : p.pos+1+end])
		p.pos += end + 2
	case 'V':
		if !allowVoid || dims > 0 {
			return FieldType{}, p.fail(p.pos, "void is only valid as a method return type")
		}
		t = Primitive(Void)
		p.pos++
	default:
		k, ok := baseTypes[c]
		if !ok {
			return FieldType{}, p.fail(p.pos, "unexpected character %q", c)
		}
		t = Primitive(k)
		p.pos++
	}

	for i := 0; i < dims; i++ {
		t = ArrayOf(t)
	}
	return t, nil
}
