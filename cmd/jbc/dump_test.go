package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/daimatz/jbc/pkg/classfile"
)

func testClass() *classfile.ClassFile {
	return &classfile.ClassFile{
		MajorVersion: 61,
		ConstantPool: classfile.ConstantPool{
			&classfile.ConstantUtf8{Value: "demo/Greeter"},                    // 1
			&classfile.ConstantClass{NameIndex: 1},                            // 2
			&classfile.ConstantUtf8{Value: "java/lang/Object"},                // 3
			&classfile.ConstantClass{NameIndex: 3},                            // 4
			&classfile.ConstantUtf8{Value: "greet"},                           // 5
			&classfile.ConstantUtf8{Value: "(Ljava/lang/String;I)V"},          // 6
			&classfile.ConstantUtf8{Value: "count"},                           // 7
			&classfile.ConstantUtf8{Value: "J"},                               // 8
			&classfile.ConstantLong{Value: 42},                                // 9
			nil,                                                               // 10
			&classfile.ConstantUtf8{Value: "MethodParameters"},                // 11
			&classfile.ConstantUtf8{Value: "name"},                            // 12
			&classfile.ConstantUtf8{Value: "times"},                           // 13
			&classfile.ConstantUtf8{Value: "ConstantValue"},                   // 14
			&classfile.ConstantNameAndType{NameIndex: 5, DescriptorIndex: 6},  // 15
			&classfile.ConstantMethodref{ClassIndex: 2, NameAndTypeIndex: 15}, // 16
			&classfile.ConstantString{StringIndex: 12},                        // 17
		},
		AccessFlags: classfile.ClassAccessFlags(classfile.AccPublic | classfile.AccSuper),
		ThisClass:   2,
		SuperClass:  4,
		Fields: []classfile.MemberInfo{{
			AccessFlags:     classfile.AccPrivate | classfile.AccStatic | classfile.AccFinal,
			NameIndex:       7,
			DescriptorIndex: 8,
			Attributes:      []classfile.AttributeInfo{{NameIndex: 14, Info: []byte{0, 9}}},
		}},
		Methods: []classfile.MemberInfo{{
			AccessFlags:     classfile.AccPublic,
			NameIndex:       5,
			DescriptorIndex: 6,
			Attributes: []classfile.AttributeInfo{{
				NameIndex: 11,
				Info:      []byte{2, 0, 12, 0, 0, 0, 13, 0, 0x10},
			}},
		}},
	}
}

func TestWriteDump(t *testing.T) {
	var out bytes.Buffer
	if err := writeDump(&out, testClass(), classfile.DefaultRegistry(), styler{}); err != nil {
		t.Fatalf("writeDump: %v", err)
	}
	got := out.String()

	for _, want := range []string{
		"demo/Greeter\n",
		"version:    61.0 (Java 17)",
		"flags:      public super",
		"super:      java/lang/Object",
		"private static final long count",
		"ConstantValue: Long 42l",
		"public void greet(java.lang.String name, int times)",
		"MethodParameters: name, times [final]",
		"Attributes (0)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("dump output missing %q:\n%s", want, got)
		}
	}
}

func TestWritePool(t *testing.T) {
	var out bytes.Buffer
	if err := writePool(&out, testClass().ConstantPool, styler{}); err != nil {
		t.Fatalf("writePool: %v", err)
	}
	got := out.String()

	for _, want := range []string{
		"(17 slots, count 18)",
		"#10 = (reserved by preceding 8-byte constant)",
		`"demo/Greeter"`,
		"// demo/Greeter.greet:(Ljava/lang/String;I)V",
		`// "name"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("pool output missing %q:\n%s", want, got)
		}
	}
}

func TestFormatConstantBrokenReference(t *testing.T) {
	pool := classfile.ConstantPool{&classfile.ConstantClass{NameIndex: 9}}
	value, comment := formatConstant(pool, 1, pool[0])
	if value != "#9" {
		t.Errorf("value: got %q", value)
	}
	if !strings.Contains(comment, "index_out_of_range") {
		t.Errorf("comment should carry the resolution error, got %q", comment)
	}
}

func TestWriteDescriptor(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"(I[[Ljava/lang/String;J)V", []string{"4 parameter slots", "param 1: array java.lang.String[][]", "element: object java/lang/String", "return: void"}},
		{"[B", []string{"field", "type: array byte[]", "element: byte"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			if err := writeDescriptor(&out, tt.input, styler{}); err != nil {
				t.Fatalf("writeDescriptor: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}

	if err := writeDescriptor(&bytes.Buffer{}, "(V)V", styler{}); err == nil {
		t.Error("expected an error for a void parameter")
	}
}

func TestJavaVersion(t *testing.T) {
	tests := map[uint16]string{45: "Java 1.1", 48: "Java 1.4", 52: "Java 8", 65: "Java 21", 10: "unknown"}
	for major, want := range tests {
		if got := javaVersion(major); got != want {
			t.Errorf("javaVersion(%d) = %q, want %q", major, got, want)
		}
	}
}

func TestBrowseFilter(t *testing.T) {
	_, members, err := collectMembers(testClass(), classfile.DefaultRegistry())
	if err != nil {
		t.Fatalf("collectMembers: %v", err)
	}
	m := newBrowseModel("demo/Greeter", "")
	m.members = members
	m.loaded = true

	m.filter.SetValue("GREET")
	m.applyFilter()
	if len(m.visible) != 1 || m.members[m.visible[0]].kind != "method" {
		t.Errorf("filter GREET: got %v", m.visible)
	}

	m.filter.SetValue("")
	m.applyFilter()
	if len(m.visible) != 2 {
		t.Errorf("empty filter: got %d visible, want 2", len(m.visible))
	}

	m.selected = 1
	m.filter.SetValue("nothing matches")
	m.applyFilter()
	if len(m.visible) != 0 || m.selected != 0 {
		t.Errorf("no matches: visible %v selected %d", m.visible, m.selected)
	}
}
