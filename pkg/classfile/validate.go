package classfile

import (
	"errors"
	"fmt"
)

// Validate checks that every index stored in a pool entry refers to an entry
// of the kind its referrer expects. Decoding does not do this because forward
// references are legal. All problems are reported, joined into one error.
func (cp ConstantPool) Validate() error {
	var errs []error
	expect := func(from uint16, field string, index uint16, want ...ConstantTag) {
		if err := cp.expect(index, want...); err != nil {
			errs = append(errs, fmt.Errorf("constant %d %s: %w", from, field, err))
		}
	}

	for i, entry := range cp {
		from := uint16(i + 1)
		switch c := entry.(type) {
		case *ConstantClass:
			expect(from, "name_index", c.NameIndex, TagUtf8)
		case *ConstantString:
			expect(from, "string_index", c.StringIndex, TagUtf8)
		case *ConstantFieldref:
			expect(from, "class_index", c.ClassIndex, TagClass)
			expect(from, "name_and_type_index", c.NameAndTypeIndex, TagNameAndType)
		case *ConstantMethodref:
			expect(from, "class_index", c.ClassIndex, TagClass)
			expect(from, "name_and_type_index", c.NameAndTypeIndex, TagNameAndType)
		case *ConstantInterfaceMethodref:
			expect(from, "class_index", c.ClassIndex, TagClass)
			expect(from, "name_and_type_index", c.NameAndTypeIndex, TagNameAndType)
		case *ConstantNameAndType:
			expect(from, "name_index", c.NameIndex, TagUtf8)
			expect(from, "descriptor_index", c.DescriptorIndex, TagUtf8)
		case *ConstantMethodHandle:
			switch c.ReferenceKind {
			case RefGetField, RefGetStatic, RefPutField, RefPutStatic:
				expect(from, "reference_index", c.ReferenceIndex, TagFieldref)
			case RefInvokeVirtual, RefNewInvokeSpecial:
				expect(from, "reference_index", c.ReferenceIndex, TagMethodref)
			case RefInvokeStatic, RefInvokeSpecial:
				expect(from, "reference_index", c.ReferenceIndex, TagMethodref, TagInterfaceMethodref)
			case RefInvokeInterface:
				expect(from, "reference_index", c.ReferenceIndex, TagInterfaceMethodref)
			default:
				e := errIndex(from, "constant %d has invalid reference_kind %d", from, c.ReferenceKind)
				e.Tag = TagMethodHandle
				errs = append(errs, e)
			}
		case *ConstantMethodType:
			expect(from, "descriptor_index", c.DescriptorIndex, TagUtf8)
		case *ConstantDynamic:
			expect(from, "name_and_type_index", c.NameAndTypeIndex, TagNameAndType)
		case *ConstantInvokeDynamic:
			expect(from, "name_and_type_index", c.NameAndTypeIndex, TagNameAndType)
		case *ConstantModule:
			expect(from, "name_index", c.NameIndex, TagUtf8)
		case *ConstantPackage:
			expect(from, "name_index", c.NameIndex, TagUtf8)
		case nil:
			if i == 0 || cp[i-1] == nil || !cp[i-1].Tag().Wide() {
				errs = append(errs, errIndex(from, "empty slot %d does not follow a Long or Double", from))
			}
		}
	}
	return errors.Join(errs...)
}

func (cp ConstantPool) expect(index uint16, want ...ConstantTag) error {
	entry, err := cp.Get(index)
	if err != nil {
		return err
	}
	for _, t := range want {
		if entry.Tag() == t {
			return nil
		}
	}
	e := errIndex(index, "index %d is %s, want %v", index, entry.Tag(), want)
	e.Tag = entry.Tag()
	return e
}

// Validate checks the constant pool and every index held by the class
// structure itself: this_class, super_class, interfaces, member names and
// descriptors, and attribute names at every level.
func (cf *ClassFile) Validate() error {
	var errs []error
	if err := cf.ConstantPool.Validate(); err != nil {
		errs = append(errs, err)
	}
	check := func(what string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", what, err))
		}
	}

	name, err := cf.ClassName()
	check("this_class", err)
	if cf.SuperClass == 0 {
		if err == nil && name != "java/lang/Object" {
			check("super_class", errIndex(0, "super_class is 0 but class is %s, not java/lang/Object", name))
		}
	} else {
		check("super_class", cf.ConstantPool.expect(cf.SuperClass, TagClass))
	}
	for i, idx := range cf.Interfaces {
		check(fmt.Sprintf("interface %d", i), cf.ConstantPool.expect(idx, TagClass))
	}

	checkAttrs := func(owner string, attrs []AttributeInfo) {
		for i := range attrs {
			check(fmt.Sprintf("%s attribute %d name", owner, i), cf.ConstantPool.expect(attrs[i].NameIndex, TagUtf8))
		}
	}
	checkMembers := func(kind string, members []MemberInfo) {
		for i := range members {
			owner := fmt.Sprintf("%s %d", kind, i)
			check(owner+" name", cf.ConstantPool.expect(members[i].NameIndex, TagUtf8))
			check(owner+" descriptor", cf.ConstantPool.expect(members[i].DescriptorIndex, TagUtf8))
			checkAttrs(owner, members[i].Attributes)
		}
	}
	checkMembers("field", cf.Fields)
	checkMembers("method", cf.Methods)
	checkAttrs("class", cf.Attributes)

	return errors.Join(errs...)
}
