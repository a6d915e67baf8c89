package classfile

import (
	"fmt"
	"math"
)

// Encode serializes cf back into the class-file format. Encoding a value
// produced by Decode reproduces the decoded bytes exactly.
func Encode(cf *ClassFile) ([]byte, error) {
	w := &writer{}

	w.u32(Magic)
	w.u16(cf.MinorVersion)
	w.u16(cf.MajorVersion)

	if err := encodeConstantPool(w, cf.ConstantPool); err != nil {
		return nil, fmt.Errorf("encoding constant pool: %w", err)
	}

	w.u16(uint16(cf.AccessFlags))
	w.u16(cf.ThisClass)
	w.u16(cf.SuperClass)

	if err := w.count("interface", len(cf.Interfaces)); err != nil {
		return nil, err
	}
	for _, idx := range cf.Interfaces {
		w.u16(idx)
	}

	if err := encodeMembers(w, "field", cf.Fields); err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}
	if err := encodeMembers(w, "method", cf.Methods); err != nil {
		return nil, fmt.Errorf("encoding methods: %w", err)
	}
	if err := encodeAttributes(w, cf.Attributes); err != nil {
		return nil, fmt.Errorf("encoding class attributes: %w", err)
	}

	return w.Bytes(), nil
}

func encodeMembers(w *writer, kind string, members []MemberInfo) error {
	if err := w.count(kind, len(members)); err != nil {
		return err
	}
	for i := range members {
		m := &members[i]
		w.u16(m.AccessFlags)
		w.u16(m.NameIndex)
		w.u16(m.DescriptorIndex)
		if err := encodeAttributes(w, m.Attributes); err != nil {
			return fmt.Errorf("%s %d: %w", kind, i, err)
		}
	}
	return nil
}

func encodeAttributes(w *writer, attrs []AttributeInfo) error {
	if err := w.count("attribute", len(attrs)); err != nil {
		return err
	}
	for i := range attrs {
		if uint64(len(attrs[i].Info)) > math.MaxUint32 {
			return errAt(KindOverflow, -1, "attribute %d payload of %d bytes exceeds 4 GiB", i, len(attrs[i].Info))
		}
		w.u16(attrs[i].NameIndex)
		w.u32(uint32(len(attrs[i].Info)))
		w.bytes(attrs[i].Info)
	}
	return nil
}
