package classfile

import "fmt"

// Attribute names with decoders in DefaultRegistry.
const (
	AttrMethodParameters = "MethodParameters"
	AttrCode             = "Code"
	AttrBootstrapMethods = "BootstrapMethods"
	AttrConstantValue    = "ConstantValue"
	AttrSourceFile       = "SourceFile"
	AttrSignature        = "Signature"
	AttrExceptions       = "Exceptions"
)

// finish rejects payload bytes that the attribute grammar did not consume.
func finish(r *reader, name string) error {
	if r.remaining() != 0 {
		return errAt(KindTrailingData, r.position(), "%d unread bytes in %s attribute", r.remaining(), name)
	}
	return nil
}

// MethodParameter is one entry of a MethodParameters attribute.
// NameIndex is 0 for a parameter without a name.
type MethodParameter struct {
	NameIndex   uint16
	AccessFlags ParameterAccessFlags
}

// MethodParametersAttribute lists the formal parameters of a method.
type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

func (a *MethodParametersAttribute) AttributeName() string { return AttrMethodParameters }

func decodeMethodParameters(info []byte) (Attribute, error) {
	r := newReader(info)
	count, err := r.u8()
	if err != nil {
		return nil, err
	}
	params := make([]MethodParameter, count)
	for i := range params {
		if params[i].NameIndex, err = r.u16(); err != nil {
			return nil, fmt.Errorf("parameter %d name index: %w", i, err)
		}
		flags, err := r.u16()
		if err != nil {
			return nil, fmt.Errorf("parameter %d access flags: %w", i, err)
		}
		params[i].AccessFlags = ParameterAccessFlags(flags)
	}
	if err := finish(r, AttrMethodParameters); err != nil {
		return nil, err
	}
	return &MethodParametersAttribute{Parameters: params}, nil
}

// ExceptionHandler represents an entry in the exception table.
type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// CodeAttribute represents the Code attribute of a method. The bytecode is
// kept as raw bytes and nested attributes are left undecoded.
type CodeAttribute struct {
	Code              []byte
	ExceptionHandlers []ExceptionHandler
	Attributes        []AttributeInfo
	MaxStack          uint16
	MaxLocals         uint16
}

func (a *CodeAttribute) AttributeName() string { return AttrCode }

func decodeCode(info []byte) (Attribute, error) {
	r := newReader(info)
	code := &CodeAttribute{}
	var err error

	if code.MaxStack, err = r.u16(); err != nil {
		return nil, err
	}
	if code.MaxLocals, err = r.u16(); err != nil {
		return nil, err
	}
	codeLength, err := r.u32()
	if err != nil {
		return nil, err
	}
	if uint64(codeLength) > uint64(r.remaining()) {
		return nil, errAt(KindTruncated, r.position(), "code_length %d exceeds remaining %d bytes", codeLength, r.remaining())
	}
	if code.Code, err = r.bytes(int(codeLength)); err != nil {
		return nil, err
	}

	exTableLen, err := r.u16()
	if err != nil {
		return nil, fmt.Errorf("exception table length: %w", err)
	}
	code.ExceptionHandlers = make([]ExceptionHandler, exTableLen)
	for i := range code.ExceptionHandlers {
		h := &code.ExceptionHandlers[i]
		for _, dst := range []*uint16{&h.StartPC, &h.EndPC, &h.HandlerPC, &h.CatchType} {
			if *dst, err = r.u16(); err != nil {
				return nil, fmt.Errorf("exception handler %d: %w", i, err)
			}
		}
	}

	if code.Attributes, err = decodeAttributes(r); err != nil {
		return nil, fmt.Errorf("code attributes: %w", err)
	}
	if err := finish(r, AttrCode); err != nil {
		return nil, err
	}
	return code, nil
}

// BootstrapMethod is one entry of the BootstrapMethods attribute.
type BootstrapMethod struct {
	BootstrapArguments []uint16
	MethodRef          uint16
}

// BootstrapMethodsAttribute holds the bootstrap method table referenced by
// Dynamic and InvokeDynamic constants.
type BootstrapMethodsAttribute struct {
	Methods []BootstrapMethod
}

func (a *BootstrapMethodsAttribute) AttributeName() string { return AttrBootstrapMethods }

func decodeBootstrapMethods(info []byte) (Attribute, error) {
	r := newReader(info)
	numMethods, err := r.u16()
	if err != nil {
		return nil, err
	}
	methods := make([]BootstrapMethod, numMethods)
	for i := range methods {
		if methods[i].MethodRef, err = r.u16(); err != nil {
			return nil, fmt.Errorf("bootstrap method %d: %w", i, err)
		}
		if methods[i].BootstrapArguments, err = r.u16s(); err != nil {
			return nil, fmt.Errorf("bootstrap method %d arguments: %w", i, err)
		}
	}
	if err := finish(r, AttrBootstrapMethods); err != nil {
		return nil, err
	}
	return &BootstrapMethodsAttribute{Methods: methods}, nil
}

// ConstantValueAttribute points at the constant initializer of a static field.
type ConstantValueAttribute struct {
	ValueIndex uint16
}

func (a *ConstantValueAttribute) AttributeName() string { return AttrConstantValue }

// SourceFileAttribute names the source file a class was compiled from.
type SourceFileAttribute struct {
	SourceFileIndex uint16
}

func (a *SourceFileAttribute) AttributeName() string { return AttrSourceFile }

// SignatureAttribute holds the generic signature of a class, field or method.
type SignatureAttribute struct {
	SignatureIndex uint16
}

func (a *SignatureAttribute) AttributeName() string { return AttrSignature }

func decodeIndex(info []byte, name string) (uint16, error) {
	r := newReader(info)
	v, err := r.u16()
	if err != nil {
		return 0, err
	}
	return v, finish(r, name)
}

func decodeConstantValue(info []byte) (Attribute, error) {
	v, err := decodeIndex(info, AttrConstantValue)
	if err != nil {
		return nil, err
	}
	return &ConstantValueAttribute{ValueIndex: v}, nil
}

func decodeSourceFile(info []byte) (Attribute, error) {
	v, err := decodeIndex(info, AttrSourceFile)
	if err != nil {
		return nil, err
	}
	return &SourceFileAttribute{SourceFileIndex: v}, nil
}

func decodeSignature(info []byte) (Attribute, error) {
	v, err := decodeIndex(info, AttrSignature)
	if err != nil {
		return nil, err
	}
	return &SignatureAttribute{SignatureIndex: v}, nil
}

// ExceptionsAttribute lists the checked exceptions a method declares.
type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

func (a *ExceptionsAttribute) AttributeName() string { return AttrExceptions }

func decodeExceptions(info []byte) (Attribute, error) {
	r := newReader(info)
	table, err := r.u16s()
	if err != nil {
		return nil, err
	}
	if err := finish(r, AttrExceptions); err != nil {
		return nil, err
	}
	return &ExceptionsAttribute{ExceptionIndexTable: table}, nil
}
