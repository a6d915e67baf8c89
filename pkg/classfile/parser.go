package classfile

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Magic is the first four bytes of every class file.
const Magic = 0xCAFEBABE

// Parse reads a complete class file from r and decodes it.
func Parse(r io.Reader) (*ClassFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading class file: %w", err)
	}
	return Decode(data)
}

// Decode decodes a class file held in memory. data is not retained or
// modified. On failure no partial ClassFile is returned.
func Decode(data []byte) (*ClassFile, error) {
	r := newReader(data)
	cf := &ClassFile{}

	magic, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("reading magic number: %w", err)
	}
	if magic != Magic {
		return nil, errAt(KindBadMagic, 0, "got 0x%08X, want 0xCAFEBABE", magic)
	}

	if cf.MinorVersion, err = r.u16(); err != nil {
		return nil, fmt.Errorf("reading minor version: %w", err)
	}
	if cf.MajorVersion, err = r.u16(); err != nil {
		return nil, fmt.Errorf("reading major version: %w", err)
	}

	cpCount, err := r.u16()
	if err != nil {
		return nil, fmt.Errorf("reading constant pool count: %w", err)
	}
	if cf.ConstantPool, err = decodeConstantPool(r, cpCount); err != nil {
		return nil, fmt.Errorf("parsing constant pool: %w", err)
	}

	flags, err := r.u16()
	if err != nil {
		return nil, fmt.Errorf("reading access flags: %w", err)
	}
	cf.AccessFlags = ClassAccessFlags(flags)
	if unknown := cf.AccessFlags.Unknown(); unknown != 0 {
		Logger().Debug("class has access flags outside the class vocabulary",
			zap.Uint16("flags", unknown))
	}

	if cf.ThisClass, err = r.u16(); err != nil {
		return nil, fmt.Errorf("reading this_class: %w", err)
	}
	if cf.SuperClass, err = r.u16(); err != nil {
		return nil, fmt.Errorf("reading super_class: %w", err)
	}

	if cf.Interfaces, err = r.u16s(); err != nil {
		return nil, fmt.Errorf("reading interfaces: %w", err)
	}

	if cf.Fields, err = decodeMembers(r, "field"); err != nil {
		return nil, fmt.Errorf("parsing fields: %w", err)
	}
	if cf.Methods, err = decodeMembers(r, "method"); err != nil {
		return nil, fmt.Errorf("parsing methods: %w", err)
	}
	if cf.Attributes, err = decodeAttributes(r); err != nil {
		return nil, fmt.Errorf("parsing class attributes: %w", err)
	}

	if r.remaining() != 0 {
		return nil, errAt(KindTrailingData, r.position(), "%d bytes after the last attribute", r.remaining())
	}

	Logger().Debug("decoded class file",
		zap.Uint16("major", cf.MajorVersion),
		zap.Uint16("minor", cf.MinorVersion),
		zap.Int("constants", len(cf.ConstantPool)),
		zap.Int("fields", len(cf.Fields)),
		zap.Int("methods", len(cf.Methods)),
		zap.Int("attributes", len(cf.Attributes)))

	return cf, nil
}

func decodeMembers(r *reader, kind string) ([]MemberInfo, error) {
	count, err := r.u16()
	if err != nil {
		return nil, fmt.Errorf("reading %s count: %w", kind, err)
	}
	// Each member is at least 8 bytes; reject impossible counts before allocating.
	if int(count)*8 > r.remaining() {
		return nil, errAt(KindTruncated, r.position(), "%d %ss need at least %d bytes, have %d",
			count, kind, int(count)*8, r.remaining())
	}

	members := make([]MemberInfo, count)
	for i := range members {
		m := &members[i]
		if m.AccessFlags, err = r.u16(); err != nil {
			return nil, fmt.Errorf("reading %s %d access flags: %w", kind, i, err)
		}
		if m.NameIndex, err = r.u16(); err != nil {
			return nil, fmt.Errorf("reading %s %d name index: %w", kind, i, err)
		}
		if m.DescriptorIndex, err = r.u16(); err != nil {
			return nil, fmt.Errorf("reading %s %d descriptor index: %w", kind, i, err)
		}
		if m.Attributes, err = decodeAttributes(r); err != nil {
			return nil, fmt.Errorf("parsing %s %d attributes: %w", kind, i, err)
		}
	}
	return members, nil
}

func decodeAttributes(r *reader) ([]AttributeInfo, error) {
	count, err := r.u16()
	if err != nil {
		return nil, fmt.Errorf("reading attributes count: %w", err)
	}
	// Each attribute header is 6 bytes.
	if int(count)*6 > r.remaining() {
		return nil, errAt(KindTruncated, r.position(), "%d attributes need at least %d bytes, have %d",
			count, int(count)*6, r.remaining())
	}

	attrs := make([]AttributeInfo, count)
	for i := range attrs {
		if attrs[i].NameIndex, err = r.u16(); err != nil {
			return nil, fmt.Errorf("reading attribute %d name index: %w", i, err)
		}
		length, err := r.u32()
		if err != nil {
			return nil, fmt.Errorf("reading attribute %d length: %w", i, err)
		}
		if uint64(length) > uint64(r.remaining()) {
			return nil, fmt.Errorf("reading attribute %d data: %w",
				i, errAt(KindTruncated, r.position(), "need %d bytes, have %d", length, r.remaining()))
		}
		if attrs[i].Info, err = r.bytes(int(length)); err != nil {
			return nil, fmt.Errorf("reading attribute %d data: %w", i, err)
		}
	}
	return attrs, nil
}

// ClassName returns the fully qualified internal name of this class.
func (cf *ClassFile) ClassName() (string, error) {
	return cf.ConstantPool.ClassName(cf.ThisClass)
}

// SuperClassName returns the internal name of the super class, or "" for
// java/lang/Object (SuperClass == 0).
func (cf *ClassFile) SuperClassName() (string, error) {
	if cf.SuperClass == 0 {
		return "", nil
	}
	return cf.ConstantPool.ClassName(cf.SuperClass)
}

// InterfaceNames resolves the direct superinterfaces.
func (cf *ClassFile) InterfaceNames() ([]string, error) {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		name, err := cf.ConstantPool.ClassName(idx)
		if err != nil {
			return nil, fmt.Errorf("resolving interface %d: %w", i, err)
		}
		names[i] = name
	}
	return names, nil
}

// MemberName resolves the name of a field or method.
func (cf *ClassFile) MemberName(m *MemberInfo) (string, error) {
	return cf.ConstantPool.Utf8(m.NameIndex)
}

// MemberDescriptor resolves the descriptor string of a field or method.
func (cf *ClassFile) MemberDescriptor(m *MemberInfo) (string, error) {
	return cf.ConstantPool.Utf8(m.DescriptorIndex)
}

// AttributeName resolves the name of an attribute.
func (cf *ClassFile) AttributeName(a *AttributeInfo) (string, error) {
	return cf.ConstantPool.Utf8(a.NameIndex)
}

// FindMethod finds a method by name and descriptor.
func (cf *ClassFile) FindMethod(name, descriptor string) *MemberInfo {
	return cf.findMember(cf.Methods, name, descriptor)
}

// FindField finds a field by name and descriptor.
func (cf *ClassFile) FindField(name, descriptor string) *MemberInfo {
	return cf.findMember(cf.Fields, name, descriptor)
}

// FindMethodByName finds a method by name only (first match).
func (cf *ClassFile) FindMethodByName(name string) *MemberInfo {
	for i := range cf.Methods {
		if n, err := cf.MemberName(&cf.Methods[i]); err == nil && n == name {
			return &cf.Methods[i]
		}
	}
	return nil
}

func (cf *ClassFile) findMember(members []MemberInfo, name, descriptor string) *MemberInfo {
	for i := range members {
		n, err := cf.MemberName(&members[i])
		if err != nil || n != name {
			continue
		}
		d, err := cf.MemberDescriptor(&members[i])
		if err == nil && d == descriptor {
			return &members[i]
		}
	}
	return nil
}

// FindAttribute returns the first attribute in attrs with the given name.
func (cf *ClassFile) FindAttribute(attrs []AttributeInfo, name string) (*AttributeInfo, bool) {
	for i := range attrs {
		if n, err := cf.AttributeName(&attrs[i]); err == nil && n == name {
			return &attrs[i], true
		}
	}
	return nil, false
}
