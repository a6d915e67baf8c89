package classfile

import (
	"fmt"
	"unicode/utf8"
)

// ConstantTag identifies the kind of a constant pool entry.
type ConstantTag uint8

// Constant pool tags
const (
	TagUtf8               ConstantTag = 1
	TagInteger            ConstantTag = 3
	TagFloat              ConstantTag = 4
	TagLong               ConstantTag = 5
	TagDouble             ConstantTag = 6
	TagClass              ConstantTag = 7
	TagString             ConstantTag = 8
	TagFieldref           ConstantTag = 9
	TagMethodref          ConstantTag = 10
	TagInterfaceMethodref ConstantTag = 11
	TagNameAndType        ConstantTag = 12
	TagMethodHandle       ConstantTag = 15
	TagMethodType         ConstantTag = 16
	TagDynamic            ConstantTag = 17
	TagInvokeDynamic      ConstantTag = 18
	TagModule             ConstantTag = 19
	TagPackage            ConstantTag = 20
)

var tagNames = map[ConstantTag]string{
	TagUtf8:               "Utf8",
	TagInteger:            "Integer",
	TagFloat:              "Float",
	TagLong:               "Long",
	TagDouble:             "Double",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldref:           "Fieldref",
	TagMethodref:          "Methodref",
	TagInterfaceMethodref: "InterfaceMethodref",
	TagNameAndType:        "NameAndType",
	TagMethodHandle:       "MethodHandle",
	TagMethodType:         "MethodType",
	TagDynamic:            "Dynamic",
	TagInvokeDynamic:      "InvokeDynamic",
	TagModule:             "Module",
	TagPackage:            "Package",
}

func (t ConstantTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// Wide reports whether entries with this tag occupy two pool slots.
func (t ConstantTag) Wide() bool {
	return t == TagLong || t == TagDouble
}

// ConstantPool holds the decoded constant pool. It is addressed with the
// 1-based indices used throughout the class file: element 0 of the slice is
// pool index 1, and index 0 is never valid. The slot after a Long or Double
// entry is reserved by the format and holds nil.
type ConstantPool []ConstantPoolEntry

// Count returns the on-wire constant_pool_count for this pool.
func (cp ConstantPool) Count() int {
	return len(cp) + 1
}

// Get returns the entry at the 1-based index.
func (cp ConstantPool) Get(index uint16) (ConstantPoolEntry, error) {
	if index == 0 || int(index) > len(cp) {
		return nil, errIndex(index, "index %d out of range (pool has %d slots)", index, len(cp))
	}
	entry := cp[index-1]
	if entry == nil {
		return nil, errIndex(index, "index %d is the unusable slot after a Long or Double", index)
	}
	return entry, nil
}

// IsPhantom reports whether index is the unusable slot following a Long or Double.
func (cp ConstantPool) IsPhantom(index uint16) bool {
	return index >= 2 && int(index) <= len(cp) && cp[index-1] == nil
}

func lookup[T ConstantPoolEntry](cp ConstantPool, index uint16, want ConstantTag) (T, error) {
	var zero T
	entry, err := cp.Get(index)
	if err != nil {
		return zero, err
	}
	v, ok := entry.(T)
	if !ok {
		e := errIndex(index, "index %d is %s, want %s", index, entry.Tag(), want)
		e.Tag = entry.Tag()
		return zero, e
	}
	return v, nil
}

// Utf8 returns the string stored in the Utf8 entry at index.
func (cp ConstantPool) Utf8(index uint16) (string, error) {
	c, err := lookup[*ConstantUtf8](cp, index, TagUtf8)
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// ClassName returns the internal class name referenced by a Class entry.
func (cp ConstantPool) ClassName(classIndex uint16) (string, error) {
	c, err := lookup[*ConstantClass](cp, classIndex, TagClass)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.NameIndex)
}

// StringValue returns the literal referenced by a String entry.
func (cp ConstantPool) StringValue(index uint16) (string, error) {
	c, err := lookup[*ConstantString](cp, index, TagString)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.StringIndex)
}

// NameAndType resolves a NameAndType entry to its name and descriptor.
func (cp ConstantPool) NameAndType(index uint16) (name, descriptor string, err error) {
	nat, err := lookup[*ConstantNameAndType](cp, index, TagNameAndType)
	if err != nil {
		return "", "", err
	}
	if name, err = cp.Utf8(nat.NameIndex); err != nil {
		return "", "", fmt.Errorf("resolving name: %w", err)
	}
	if descriptor, err = cp.Utf8(nat.DescriptorIndex); err != nil {
		return "", "", fmt.Errorf("resolving descriptor: %w", err)
	}
	return name, descriptor, nil
}

// MemberRef holds a resolved field, method or interface method reference.
type MemberRef struct {
	ClassName  string
	Name       string
	Descriptor string
}

func (cp ConstantPool) memberRef(classIndex, natIndex uint16) (*MemberRef, error) {
	className, err := cp.ClassName(classIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving class: %w", err)
	}
	name, desc, err := cp.NameAndType(natIndex)
	if err != nil {
		return nil, err
	}
	return &MemberRef{ClassName: className, Name: name, Descriptor: desc}, nil
}

// Fieldref resolves a CONSTANT_Fieldref entry.
func (cp ConstantPool) Fieldref(index uint16) (*MemberRef, error) {
	ref, err := lookup[*ConstantFieldref](cp, index, TagFieldref)
	if err != nil {
		return nil, err
	}
	return cp.memberRef(ref.ClassIndex, ref.NameAndTypeIndex)
}

// Methodref resolves a CONSTANT_Methodref entry.
func (cp ConstantPool) Methodref(index uint16) (*MemberRef, error) {
	ref, err := lookup[*ConstantMethodref](cp, index, TagMethodref)
	if err != nil {
		return nil, err
	}
	return cp.memberRef(ref.ClassIndex, ref.NameAndTypeIndex)
}

// InterfaceMethodref resolves a CONSTANT_InterfaceMethodref entry.
func (cp ConstantPool) InterfaceMethodref(index uint16) (*MemberRef, error) {
	ref, err := lookup[*ConstantInterfaceMethodref](cp, index, TagInterfaceMethodref)
	if err != nil {
		return nil, err
	}
	return cp.memberRef(ref.ClassIndex, ref.NameAndTypeIndex)
}

// ResolveUtf8 returns the Utf8 string at the 1-based pool index.
func ResolveUtf8(pool ConstantPool, index uint16) (string, error) {
	return pool.Utf8(index)
}

// ResolveClassName returns the class name referenced by the Class entry at classIndex.
func ResolveClassName(pool ConstantPool, classIndex uint16) (string, error) {
	return pool.ClassName(classIndex)
}

// decodeConstantPool reads constant_pool_count-1 slots. count is the
// on-wire constant_pool_count, which includes the implicit slot 0.
func decodeConstantPool(r *reader, count uint16) (ConstantPool, error) {
	if count == 0 {
		return nil, errAt(KindInvalidPool, r.position()-2, "constant_pool_count must be at least 1")
	}
	pool := make(ConstantPool, count-1)

	for i := 0; i < len(pool); i++ {
		index := uint16(i + 1)
		entry, err := decodeConstant(r, index)
		if err != nil {
			return nil, err
		}
		pool[i] = entry

		if entry.Tag().Wide() {
			if i+1 >= len(pool) {
				e := errAt(KindInvalidPool, r.position(), "%s entry at index %d has no room for its second slot", entry.Tag(), index)
				e.Index = index
				return nil, e
			}
			i++ // second slot stays nil
		}
	}

	return pool, nil
}

func decodeConstant(r *reader, index uint16) (ConstantPoolEntry, error) {
	start := r.position()
	raw, err := r.u8()
	if err != nil {
		return nil, err
	}
	tag := ConstantTag(raw)

	switch tag {
	case TagUtf8:
		length, err := r.u16()
		if err != nil {
			return nil, err
		}
		b, err := r.take(int(length))
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			e := errAt(KindInvalidUTF8, start, "Utf8 entry of %d bytes is not valid UTF-8", length)
			e.Index, e.Tag = index, tag
			return nil, e
		}
		return &ConstantUtf8{Value: string(b)}, nil

	case TagInteger:
		v, err := r.i32()
		if err != nil {
			return nil, err
		}
		return &ConstantInteger{Value: v}, nil

	case TagFloat:
		v, err := r.f32()
		if err != nil {
			return nil, err
		}
		return &ConstantFloat{Value: v}, nil

	case TagLong:
		v, err := r.i64()
		if err != nil {
			return nil, err
		}
		return &ConstantLong{Value: v}, nil

	case TagDouble:
		v, err := r.f64()
		if err != nil {
			return nil, err
		}
		return &ConstantDouble{Value: v}, nil

	case TagClass:
		v, err := r.u16()
		if err != nil {
			return nil, err
		}
		return &ConstantClass{NameIndex: v}, nil

	case TagString:
		v, err := r.u16()
		if err != nil {
			return nil, err
		}
		return &ConstantString{StringIndex: v}, nil

	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		classIndex, err := r.u16()
		if err != nil {
			return nil, err
		}
		natIndex, err := r.u16()
		if err != nil {
			return nil, err
		}
		switch tag {
		case TagFieldref:
			return &ConstantFieldref{ClassIndex: classIndex, NameAndTypeIndex: natIndex}, nil
		case TagMethodref:
			return &ConstantMethodref{ClassIndex: classIndex, NameAndTypeIndex: natIndex}, nil
		default:
			return &ConstantInterfaceMethodref{ClassIndex: classIndex, NameAndTypeIndex: natIndex}, nil
		}

	case TagNameAndType:
		nameIndex, err := r.u16()
		if err != nil {
			return nil, err
		}
		descIndex, err := r.u16()
		if err != nil {
			return nil, err
		}
		return &ConstantNameAndType{NameIndex: nameIndex, DescriptorIndex: descIndex}, nil

	case TagMethodHandle:
		kind, err := r.u8()
		if err != nil {
			return nil, err
		}
		refIndex, err := r.u16()
		if err != nil {
			return nil, err
		}
		return &ConstantMethodHandle{ReferenceKind: ReferenceKind(kind), ReferenceIndex: refIndex}, nil

	case TagMethodType:
		v, err := r.u16()
		if err != nil {
			return nil, err
		}
		return &ConstantMethodType{DescriptorIndex: v}, nil

	case TagDynamic, TagInvokeDynamic:
		bsmIndex, err := r.u16()
		if err != nil {
			return nil, err
		}
		natIndex, err := r.u16()
		if err != nil {
			return nil, err
		}
		if tag == TagDynamic {
			return &ConstantDynamic{BootstrapMethodAttrIndex: bsmIndex, NameAndTypeIndex: natIndex}, nil
		}
		return &ConstantInvokeDynamic{BootstrapMethodAttrIndex: bsmIndex, NameAndTypeIndex: natIndex}, nil

	case TagModule:
		v, err := r.u16()
		if err != nil {
			return nil, err
		}
		return &ConstantModule{NameIndex: v}, nil

	case TagPackage:
		v, err := r.u16()
		if err != nil {
			return nil, err
		}
		return &ConstantPackage{NameIndex: v}, nil

	default:
		e := errAt(KindUnknownConstantTag, start, "unknown constant pool tag %d", raw)
		e.Index, e.Tag = index, tag
		return nil, e
	}
}

func encodeConstantPool(w *writer, pool ConstantPool) error {
	if err := w.count("constant pool", pool.Count()); err != nil {
		return err
	}
	for i := 0; i < len(pool); i++ {
		entry := pool[i]
		if entry == nil {
			return errIndex(uint16(i+1), "empty constant pool slot %d is not preceded by a Long or Double", i+1)
		}
		if err := encodeConstant(w, entry); err != nil {
			return err
		}
		if entry.Tag().Wide() {
			if i+1 >= len(pool) || pool[i+1] != nil {
				return errIndex(uint16(i+1), "%s entry at index %d must be followed by an empty slot", entry.Tag(), i+1)
			}
			i++
		}
	}
	return nil
}

func encodeConstant(w *writer, entry ConstantPoolEntry) error {
	w.u8(uint8(entry.Tag()))
	switch c := entry.(type) {
	case *ConstantUtf8:
		if len(c.Value) > 0xFFFF {
			return errAt(KindOverflow, -1, "Utf8 entry of %d bytes exceeds 65535", len(c.Value))
		}
		w.u16(uint16(len(c.Value)))
		w.bytes([]byte(c.Value))
	case *ConstantInteger:
		w.i32(c.Value)
	case *ConstantFloat:
		w.f32(c.Value)
	case *ConstantLong:
		w.i64(c.Value)
	case *ConstantDouble:
		w.f64(c.Value)
	case *ConstantClass:
		w.u16(c.NameIndex)
	case *ConstantString:
		w.u16(c.StringIndex)
	case *ConstantFieldref:
		w.u16(c.ClassIndex)
		w.u16(c.NameAndTypeIndex)
	case *ConstantMethodref:
		w.u16(c.ClassIndex)
		w.u16(c.NameAndTypeIndex)
	case *ConstantInterfaceMethodref:
		w.u16(c.ClassIndex)
		w.u16(c.NameAndTypeIndex)
	case *ConstantNameAndType:
		w.u16(c.NameIndex)
		w.u16(c.DescriptorIndex)
	case *ConstantMethodHandle:
		w.u8(uint8(c.ReferenceKind))
		w.u16(c.ReferenceIndex)
	case *ConstantMethodType:
		w.u16(c.DescriptorIndex)
	case *ConstantDynamic:
		w.u16(c.BootstrapMethodAttrIndex)
		w.u16(c.NameAndTypeIndex)
	case *ConstantInvokeDynamic:
		w.u16(c.BootstrapMethodAttrIndex)
		w.u16(c.NameAndTypeIndex)
	case *ConstantModule:
		w.u16(c.NameIndex)
	case *ConstantPackage:
		w.u16(c.NameIndex)
	}
	return nil
}
