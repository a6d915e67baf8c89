package classfile

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDecodeClassFile(t *testing.T) {
	cf, err := Decode(encodeTestClass(t))
	if err != nil {
		t.Fatalf("failed to decode test class: %v", err)
	}

	if cf.MajorVersion != 61 || cf.MinorVersion != 0 {
		t.Errorf("version: got %d.%d, want 61.0", cf.MajorVersion, cf.MinorVersion)
	}

	className, err := ResolveClassName(cf.ConstantPool, cf.ThisClass)
	if err != nil {
		t.Fatalf("resolving this_class: %v", err)
	}
	if className != "Hello" {
		t.Errorf("this_class: got %q, want %q", className, "Hello")
	}

	super, err := cf.SuperClassName()
	if err != nil {
		t.Fatalf("resolving super_class: %v", err)
	}
	if super != "java/lang/Object" {
		t.Errorf("super_class: got %q, want %q", super, "java/lang/Object")
	}

	ifaces, err := cf.InterfaceNames()
	if err != nil {
		t.Fatalf("resolving interfaces: %v", err)
	}
	if len(ifaces) != 1 || ifaces[0] != "java/lang/Runnable" {
		t.Errorf("interfaces: got %v", ifaces)
	}

	if !cf.AccessFlags.Has(AccPublic | AccSuper) {
		t.Errorf("access flags: got %s", cf.AccessFlags)
	}

	mainMethod := cf.FindMethod("main", "([Ljava/lang/String;)V")
	if mainMethod == nil {
		t.Fatal("main method not found")
	}
	if !mainMethod.MethodFlags().Has(AccPublic | AccStatic) {
		t.Errorf("main flags: got %s", mainMethod.MethodFlags())
	}
	if len(mainMethod.Attributes) != 2 {
		t.Errorf("main attributes: got %d, want 2", len(mainMethod.Attributes))
	}

	field := cf.FindField("count", "I")
	if field == nil {
		t.Fatal("count field not found")
	}
	if got := field.FieldFlags().String(); got != "private static" {
		t.Errorf("field flags: got %q", got)
	}

	if cf.FindMethodByName("missing") != nil {
		t.Error("FindMethodByName returned a method that does not exist")
	}
	if cf.FindMethodByName("main") != mainMethod {
		t.Error("FindMethodByName(main) did not return the main method")
	}
}

func TestDecodeAllConstantKinds(t *testing.T) {
	cf, err := Decode(encodeTestClass(t))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := testPool()
	if len(cf.ConstantPool) != len(want) {
		t.Fatalf("pool size: got %d, want %d", len(cf.ConstantPool), len(want))
	}
	for i := range want {
		got := cf.ConstantPool[i]
		if want[i] == nil {
			if got != nil {
				t.Errorf("slot %d: got %T, want reserved slot", i+1, got)
			}
			continue
		}
		if got == nil || got.Tag() != want[i].Tag() {
			t.Errorf("slot %d: got %v, want tag %s", i+1, got, want[i].Tag())
		}
	}

	if v := cf.ConstantPool[idxInteger-1].(*ConstantInteger).Value; v != -7 {
		t.Errorf("Integer: got %d, want -7", v)
	}
	if v := cf.ConstantPool[idxFloat-1].(*ConstantFloat).Value; v != 1.5 {
		t.Errorf("Float: got %v, want 1.5", v)
	}
	if v := cf.ConstantPool[idxLong-1].(*ConstantLong).Value; v != 42 {
		t.Errorf("Long: got %d, want 42", v)
	}
	if v := cf.ConstantPool[idxDouble-1].(*ConstantDouble).Value; v != 3.5 {
		t.Errorf("Double: got %v, want 3.5", v)
	}
	mh := cf.ConstantPool[idxHandle-1].(*ConstantMethodHandle)
	if mh.ReferenceKind != RefInvokeVirtual || mh.ReferenceIndex != idxMethodref {
		t.Errorf("MethodHandle: got %+v", mh)
	}
}

func TestRoundTrip(t *testing.T) {
	original := encodeTestClass(t)

	cf, err := Decode(original)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	reencoded, err := Encode(cf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(original, reencoded) {
		t.Errorf("re-encoded bytes differ: got %d bytes, want %d", len(reencoded), len(original))
	}
}

func TestPhantomSlot(t *testing.T) {
	cf, err := Decode(encodeTestClass(t))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	pool := cf.ConstantPool

	if !pool.IsPhantom(idxLong + 1) {
		t.Errorf("slot after Long is not reserved")
	}
	if !pool.IsPhantom(idxDouble + 1) {
		t.Errorf("slot after Double is not reserved")
	}
	if pool.IsPhantom(idxLong) {
		t.Errorf("Long slot reported as reserved")
	}

	_, err = pool.Get(idxLong + 1)
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Get(reserved slot): expected ErrIndexOutOfRange, got %v", err)
	}

	if _, ok := mustGet(t, pool, idxDouble).(*ConstantDouble); !ok {
		t.Errorf("entry after Long's reserved slot is not the Double")
	}
	name, err := pool.Utf8(idxCountName)
	if err != nil || name != "count" {
		t.Errorf("entry after Double's reserved slot: got %q, %v", name, err)
	}
}

func mustGet(t *testing.T, pool ConstantPool, index uint16) ConstantPoolEntry {
	t.Helper()
	e, err := pool.Get(index)
	if err != nil {
		t.Fatalf("Get(%d): %v", index, err)
	}
	return e
}

func TestPhantomSlotAlignment(t *testing.T) {
	// Long at slot 1 takes slots 1-2, so the Utf8 lands on slot 3.
	w := classHeader(4)
	w.u8(uint8(TagLong))
	w.u64(1)
	w.u8(uint8(TagUtf8))
	w.u16(3)
	w.bytes([]byte("abc"))
	cf, err := Decode(classTail(w))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cf.ConstantPool) != 3 {
		t.Fatalf("pool slots: got %d, want 3", len(cf.ConstantPool))
	}
	s, err := ResolveUtf8(cf.ConstantPool, 3)
	if err != nil || s != "abc" {
		t.Errorf("slot 3: got %q, %v", s, err)
	}
}

func TestWideEntryInLastSlot(t *testing.T) {
	w := classHeader(2)
	w.u8(uint8(TagDouble))
	w.u64(0)
	_, err := Decode(classTail(w))
	if !errors.Is(err, ErrInvalidPool) {
		t.Errorf("expected ErrInvalidPool, got %v", err)
	}
}

func TestEmptyConstantPool(t *testing.T) {
	cf, err := Decode(classTail(classHeader(1)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cf.ConstantPool) != 0 {
		t.Errorf("pool size: got %d, want 0", len(cf.ConstantPool))
	}
	if _, err := cf.ConstantPool.Get(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Get(1) on empty pool: expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestZeroConstantPoolCount(t *testing.T) {
	_, err := Decode(classTail(classHeader(0)))
	if !errors.Is(err, ErrInvalidPool) {
		t.Errorf("expected ErrInvalidPool, got %v", err)
	}
}

func TestUnknownConstantTag(t *testing.T) {
	for _, tag := range []uint8{0, 2, 13, 14, 21, 255} {
		w := classHeader(3)
		w.u8(uint8(TagInteger))
		w.i32(5)
		w.u8(tag)
		w.u16(0)
		cf, err := Decode(classTail(w))
		if cf != nil {
			t.Errorf("tag %d: got a partial class file", tag)
		}
		if !errors.Is(err, ErrUnknownConstantTag) {
			t.Fatalf("tag %d: expected ErrUnknownConstantTag, got %v", tag, err)
		}
		var derr *DecodeError
		if !errors.As(err, &derr) {
			t.Fatalf("tag %d: expected *DecodeError, got %T", tag, err)
		}
		if derr.Index != 2 || uint8(derr.Tag) != tag || derr.Offset != 15 {
			t.Errorf("tag %d: got index %d tag %d offset %d, want index 2 offset 15",
				tag, derr.Index, derr.Tag, derr.Offset)
		}
	}
}

func TestInvalidUTF8(t *testing.T) {
	w := classHeader(2)
	w.u8(uint8(TagUtf8))
	w.u16(2)
	w.bytes([]byte{0xC3, 0x28})
	_, err := Decode(classTail(w))
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	var derr *DecodeError
	if errors.As(err, &derr) && derr.Offset != 10 {
		t.Errorf("offset: got %d, want 10", derr.Offset)
	}
}

func TestParseInvalidMagic(t *testing.T) {
	_, err := Decode([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 52})
	if !errors.Is(err, ErrBadMagic) {
		t.Errorf("expected ErrBadMagic, got %v", err)
	}
	if errors.Is(err, ErrTruncated) {
		t.Errorf("bad magic must not be reported as truncation")
	}
}

func TestParseReader(t *testing.T) {
	cf, err := Parse(bytes.NewReader(encodeTestClass(t)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if name, _ := cf.ClassName(); name != "Hello" {
		t.Errorf("class name: got %q", name)
	}
}

func TestTruncation(t *testing.T) {
	data := encodeTestClass(t)
	for n := 0; n < len(data); n++ {
		cf, err := Decode(data[:n])
		if cf != nil {
			t.Fatalf("prefix %d: got a partial class file", n)
		}
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("prefix %d of %d: expected ErrTruncated, got %v", n, len(data), err)
		}
	}
}

func TestTrailingData(t *testing.T) {
	data := append(encodeTestClass(t), 0x00)
	_, err := Decode(data)
	if !errors.Is(err, ErrTrailingData) {
		t.Errorf("expected ErrTrailingData, got %v", err)
	}
}

func TestHugeCountsFailFast(t *testing.T) {
	w := classHeader(1)
	w.u16(AccPublic)
	w.u16(0)
	w.u16(0)
	w.u16(0)
	w.u16(0xFFFF) // fields_count with nothing after it
	_, err := Decode(w.Bytes())
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
	if !strings.Contains(err.Error(), "fields") {
		t.Errorf("error should mention fields: %v", err)
	}
}

func TestUnknownAccessFlagsPreserved(t *testing.T) {
	cf := newTestClass()
	cf.AccessFlags |= 0x0100 // not a class flag
	cf.Fields[0].AccessFlags |= 0x0800
	data, err := Encode(cf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.AccessFlags.Unknown() != 0x0100 {
		t.Errorf("unknown class flags: got 0x%04x", decoded.AccessFlags.Unknown())
	}
	if got := decoded.AccessFlags.String(); got != "public super 0x0100" {
		t.Errorf("class flags string: got %q", got)
	}
	if decoded.Fields[0].FieldFlags().Unknown() != 0x0800 {
		t.Errorf("unknown field flags: got 0x%04x", decoded.Fields[0].FieldFlags().Unknown())
	}
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	data := encodeTestClass(t)
	cf, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	before := append([]byte(nil), cf.Attributes[1].Info...)
	for i := range data {
		data[i] = 0
	}
	if !bytes.Equal(cf.Attributes[1].Info, before) {
		t.Error("attribute payload changed after the input buffer was modified")
	}
}
