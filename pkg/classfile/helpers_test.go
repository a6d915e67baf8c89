package classfile

import "testing"

// Pool layout of the class built by newTestClass.
const (
	idxThisName      = 1
	idxThisClass     = 2
	idxObjectName    = 3
	idxObjectClass   = 4
	idxMainName      = 5
	idxMainDesc      = 6
	idxCode          = 7
	idxLong          = 8
	idxDouble        = 10
	idxCountName     = 12
	idxCountDesc     = 13
	idxInteger       = 14
	idxFloat         = 15
	idxString        = 16
	idxCountNAT      = 17
	idxFieldref      = 18
	idxMethodParams  = 19
	idxArgsName      = 20
	idxSourceFile    = 21
	idxSourceName    = 22
	idxRunnableName  = 23
	idxRunnableClass = 24
	idxRunName       = 25
	idxRunDesc       = 26
	idxRunNAT        = 27
	idxIfaceMethod   = 28
	idxMethodref     = 29
	idxHandle        = 30
	idxMethodType    = 31
	idxIndy          = 32
	idxDynamic       = 33
	idxModule        = 34
	idxPackage       = 35
	idxCustom        = 36
)

func testPool() ConstantPool {
	return ConstantPool{
		&ConstantUtf8{Value: "Hello"},
		&ConstantClass{NameIndex: idxThisName},
		&ConstantUtf8{Value: "java/lang/Object"},
		&ConstantClass{NameIndex: idxObjectName},
		&ConstantUtf8{Value: "main"},
		&ConstantUtf8{Value: "([Ljava/lang/String;)V"},
		&ConstantUtf8{Value: "Code"},
		&ConstantLong{Value: 42},
		nil,
		&ConstantDouble{Value: 3.5},
		nil,
		&ConstantUtf8{Value: "count"},
		&ConstantUtf8{Value: "I"},
		&ConstantInteger{Value: -7},
		&ConstantFloat{Value: 1.5},
		&ConstantString{StringIndex: idxMainName},
		&ConstantNameAndType{NameIndex: idxCountName, DescriptorIndex: idxCountDesc},
		&ConstantFieldref{ClassIndex: idxThisClass, NameAndTypeIndex: idxCountNAT},
		&ConstantUtf8{Value: "MethodParameters"},
		&ConstantUtf8{Value: "args"},
		&ConstantUtf8{Value: "SourceFile"},
		&ConstantUtf8{Value: "Hello.java"},
		&ConstantUtf8{Value: "java/lang/Runnable"},
		&ConstantClass{NameIndex: idxRunnableName},
		&ConstantUtf8{Value: "run"},
		&ConstantUtf8{Value: "()V"},
		&ConstantNameAndType{NameIndex: idxRunName, DescriptorIndex: idxRunDesc},
		&ConstantInterfaceMethodref{ClassIndex: idxRunnableClass, NameAndTypeIndex: idxRunNAT},
		&ConstantMethodref{ClassIndex: idxObjectClass, NameAndTypeIndex: idxRunNAT},
		&ConstantMethodHandle{ReferenceKind: RefInvokeVirtual, ReferenceIndex: idxMethodref},
		&ConstantMethodType{DescriptorIndex: idxRunDesc},
		&ConstantInvokeDynamic{BootstrapMethodAttrIndex: 0, NameAndTypeIndex: idxRunNAT},
		&ConstantDynamic{BootstrapMethodAttrIndex: 0, NameAndTypeIndex: idxCountNAT},
		&ConstantModule{NameIndex: idxThisName},
		&ConstantPackage{NameIndex: idxThisName},
		&ConstantUtf8{Value: "Custom"},
	}
}

// codePayload is a Code attribute holding a single "return" instruction.
func codePayload() []byte {
	w := &writer{}
	w.u16(2) // max_stack
	w.u16(1) // max_locals
	w.u32(1)
	w.u8(0xB1)
	w.u16(1) // exception table
	w.u16(0)
	w.u16(1)
	w.u16(1)
	w.u16(idxObjectClass)
	w.u16(0) // attributes
	return w.Bytes()
}

func methodParametersPayload() []byte {
	w := &writer{}
	w.u8(1)
	w.u16(idxArgsName)
	w.u16(AccFinal)
	return w.Bytes()
}

func sourceFilePayload() []byte {
	w := &writer{}
	w.u16(idxSourceName)
	return w.Bytes()
}

func newTestClass() *ClassFile {
	return &ClassFile{
		MinorVersion: 0,
		MajorVersion: 61,
		ConstantPool: testPool(),
		AccessFlags:  AccPublic | AccSuper,
		ThisClass:    idxThisClass,
		SuperClass:   idxObjectClass,
		Interfaces:   []uint16{idxRunnableClass},
		Fields: []MemberInfo{
			{AccessFlags: AccPrivate | AccStatic, NameIndex: idxCountName, DescriptorIndex: idxCountDesc},
		},
		Methods: []MemberInfo{
			{
				AccessFlags:     AccPublic | AccStatic,
				NameIndex:       idxMainName,
				DescriptorIndex: idxMainDesc,
				Attributes: []AttributeInfo{
					{NameIndex: idxCode, Info: codePayload()},
					{NameIndex: idxMethodParams, Info: methodParametersPayload()},
				},
			},
		},
		Attributes: []AttributeInfo{
			{NameIndex: idxSourceFile, Info: sourceFilePayload()},
			{NameIndex: idxCustom, Info: []byte{0xDE, 0xAD}},
		},
	}
}

func encodeTestClass(t *testing.T) []byte {
	t.Helper()
	data, err := Encode(newTestClass())
	if err != nil {
		t.Fatalf("encoding test class: %v", err)
	}
	return data
}

// classHeader writes magic, version 0.52 and the given constant_pool_count.
func classHeader(cpCount uint16) *writer {
	w := &writer{}
	w.u32(Magic)
	w.u16(0)
	w.u16(52)
	w.u16(cpCount)
	return w
}

// classTail writes what follows the constant pool: flags, this/super, and
// empty interface, field, method and attribute tables.
func classTail(w *writer) []byte {
	w.u16(AccPublic)
	w.u16(0)
	w.u16(0)
	w.u16(0)
	w.u16(0)
	w.u16(0)
	w.u16(0)
	return w.Bytes()
}
