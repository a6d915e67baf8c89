package classfile

// ClassFile represents a decoded .class file. All index fields are 1-based
// constant pool indices; nothing is resolved during decoding.
type ClassFile struct {
	ConstantPool ConstantPool
	Interfaces   []uint16
	Fields       []MemberInfo
	Methods      []MemberInfo
	Attributes   []AttributeInfo
	MinorVersion uint16
	MajorVersion uint16
	AccessFlags  ClassAccessFlags
	ThisClass    uint16
	SuperClass   uint16 // 0 only for java/lang/Object
}

// MemberInfo is the shared shape of field_info and method_info.
type MemberInfo struct {
	Attributes      []AttributeInfo
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
}

// FieldFlags interprets the access flags with the field vocabulary.
func (m *MemberInfo) FieldFlags() FieldAccessFlags { return FieldAccessFlags(m.AccessFlags) }

// MethodFlags interprets the access flags with the method vocabulary.
func (m *MemberInfo) MethodFlags() MethodAccessFlags { return MethodAccessFlags(m.AccessFlags) }

// AttributeInfo is an undecoded attribute: a name index and its payload.
// Use a Registry to decode Info into a typed Attribute.
type AttributeInfo struct {
	Info      []byte
	NameIndex uint16
}

// ConstantPoolEntry is implemented by the constant pool entry types declared
// in this package and by no others.
type ConstantPoolEntry interface {
	Tag() ConstantTag
	isConstant()
}

type ConstantUtf8 struct {
	Value string
}

type ConstantInteger struct {
	Value int32
}

type ConstantFloat struct {
	Value float32
}

type ConstantLong struct {
	Value int64
}

type ConstantDouble struct {
	Value float64
}

type ConstantClass struct {
	NameIndex uint16
}

type ConstantString struct {
	StringIndex uint16
}

type ConstantFieldref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type ConstantMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type ConstantInterfaceMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type ConstantNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

type ConstantMethodHandle struct {
	ReferenceKind  ReferenceKind
	ReferenceIndex uint16
}

type ConstantMethodType struct {
	DescriptorIndex uint16
}

type ConstantDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

type ConstantInvokeDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

type ConstantModule struct {
	NameIndex uint16
}

type ConstantPackage struct {
	NameIndex uint16
}

func (c *ConstantUtf8) Tag() ConstantTag               { return TagUtf8 }
func (c *ConstantInteger) Tag() ConstantTag            { return TagInteger }
func (c *ConstantFloat) Tag() ConstantTag              { return TagFloat }
func (c *ConstantLong) Tag() ConstantTag               { return TagLong }
func (c *ConstantDouble) Tag() ConstantTag             { return TagDouble }
func (c *ConstantClass) Tag() ConstantTag              { return TagClass }
func (c *ConstantString) Tag() ConstantTag             { return TagString }
func (c *ConstantFieldref) Tag() ConstantTag           { return TagFieldref }
func (c *ConstantMethodref) Tag() ConstantTag          { return TagMethodref }
func (c *ConstantInterfaceMethodref) Tag() ConstantTag { return TagInterfaceMethodref }
func (c *ConstantNameAndType) Tag() ConstantTag        { return TagNameAndType }
func (c *ConstantMethodHandle) Tag() ConstantTag       { return TagMethodHandle }
func (c *ConstantMethodType) Tag() ConstantTag         { return TagMethodType }
func (c *ConstantDynamic) Tag() ConstantTag            { return TagDynamic }
func (c *ConstantInvokeDynamic) Tag() ConstantTag      { return TagInvokeDynamic }
func (c *ConstantModule) Tag() ConstantTag             { return TagModule }
func (c *ConstantPackage) Tag() ConstantTag            { return TagPackage }

func (*ConstantUtf8) isConstant()               {}
func (*ConstantInteger) isConstant()            {}
func (*ConstantFloat) isConstant()              {}
func (*ConstantLong) isConstant()               {}
func (*ConstantDouble) isConstant()             {}
func (*ConstantClass) isConstant()              {}
func (*ConstantString) isConstant()             {}
func (*ConstantFieldref) isConstant()           {}
func (*ConstantMethodref) isConstant()          {}
func (*ConstantInterfaceMethodref) isConstant() {}
func (*ConstantNameAndType) isConstant()        {}
func (*ConstantMethodHandle) isConstant()       {}
func (*ConstantMethodType) isConstant()         {}
func (*ConstantDynamic) isConstant()            {}
func (*ConstantInvokeDynamic) isConstant()      {}
func (*ConstantModule) isConstant()             {}
func (*ConstantPackage) isConstant()            {}

// ReferenceKind is the kind of a CONSTANT_MethodHandle.
type ReferenceKind uint8

const (
	RefGetField         ReferenceKind = 1
	RefGetStatic        ReferenceKind = 2
	RefPutField         ReferenceKind = 3
	RefPutStatic        ReferenceKind = 4
	RefInvokeVirtual    ReferenceKind = 5
	RefInvokeStatic     ReferenceKind = 6
	RefInvokeSpecial    ReferenceKind = 7
	RefNewInvokeSpecial ReferenceKind = 8
	RefInvokeInterface  ReferenceKind = 9
)

var referenceKindNames = [...]string{
	RefGetField:         "getField",
	RefGetStatic:        "getStatic",
	RefPutField:         "putField",
	RefPutStatic:        "putStatic",
	RefInvokeVirtual:    "invokeVirtual",
	RefInvokeStatic:     "invokeStatic",
	RefInvokeSpecial:    "invokeSpecial",
	RefNewInvokeSpecial: "newInvokeSpecial",
	RefInvokeInterface:  "invokeInterface",
}

func (k ReferenceKind) String() string {
	if k >= RefGetField && k <= RefInvokeInterface {
		return referenceKindNames[k]
	}
	return "unknown"
}
