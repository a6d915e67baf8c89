package classfile

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Attribute is a decoded attribute payload.
type Attribute interface {
	AttributeName() string
}

// AttributeDecoder decodes the payload of one kind of attribute.
type AttributeDecoder interface {
	DecodeAttribute(info []byte) (Attribute, error)
}

// AttributeDecoderFunc adapts a function to AttributeDecoder.
type AttributeDecoderFunc func(info []byte) (Attribute, error)

func (f AttributeDecoderFunc) DecodeAttribute(info []byte) (Attribute, error) {
	return f(info)
}

// RawAttribute is returned for attribute names with no registered decoder.
type RawAttribute struct {
	Name string
	Info []byte
}

func (a *RawAttribute) AttributeName() string { return a.Name }

// Registry maps attribute names to payload decoders. A Registry is not safe
// for concurrent Register calls; register everything before sharing it.
type Registry struct {
	decoders map[string]AttributeDecoder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]AttributeDecoder)}
}

// DefaultRegistry returns a new registry with decoders for the attributes
// this package knows about.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(AttrMethodParameters, AttributeDecoderFunc(decodeMethodParameters))
	r.Register(AttrCode, AttributeDecoderFunc(decodeCode))
	r.Register(AttrBootstrapMethods, AttributeDecoderFunc(decodeBootstrapMethods))
	r.Register(AttrConstantValue, AttributeDecoderFunc(decodeConstantValue))
	r.Register(AttrSourceFile, AttributeDecoderFunc(decodeSourceFile))
	r.Register(AttrSignature, AttributeDecoderFunc(decodeSignature))
	r.Register(AttrExceptions, AttributeDecoderFunc(decodeExceptions))
	return r
}

// Register installs dec for name, replacing any previous decoder.
func (r *Registry) Register(name string, dec AttributeDecoder) {
	r.decoders[name] = dec
}

// Lookup returns the decoder registered for name.
func (r *Registry) Lookup(name string) (AttributeDecoder, bool) {
	dec, ok := r.decoders[name]
	return dec, ok
}

// Names returns the registered attribute names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.decoders))
	for name := range r.decoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decode decodes info with the decoder registered for name. Unknown names
// are not an error: the payload comes back as a *RawAttribute.
func (r *Registry) Decode(name string, info []byte) (Attribute, error) {
	dec, ok := r.decoders[name]
	if !ok {
		Logger().Debug("no decoder for attribute", zap.String("name", name), zap.Int("length", len(info)))
		return &RawAttribute{Name: name, Info: info}, nil
	}
	attr, err := dec.DecodeAttribute(info)
	if err != nil {
		return nil, &DecodeError{
			Kind:   KindInvalidAttribute,
			Offset: -1,
			Detail: fmt.Sprintf("decoding %s attribute", name),
			Err:    err,
		}
	}
	return attr, nil
}

// DecodeAttribute resolves the attribute's name through the constant pool
// and decodes its payload with reg.
func (cf *ClassFile) DecodeAttribute(reg *Registry, a *AttributeInfo) (Attribute, error) {
	name, err := cf.AttributeName(a)
	if err != nil {
		return nil, fmt.Errorf("resolving attribute name: %w", err)
	}
	return reg.Decode(name, a.Info)
}
