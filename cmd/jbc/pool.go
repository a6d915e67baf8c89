package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/daimatz/jbc/pkg/classfile"
)

func cmdPool(args []string) error {
	fs := flag.NewFlagSet("pool", flag.ExitOnError)
	classPath := fs.String("cp", "", "classpath of directories, jars and jmods")
	noColor := fs.Bool("no-color", false, "disable styled output")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("pool: expected one class file or class name")
	}

	flush, err := setupLogging(*verbose)
	if err != nil {
		return err
	}
	defer flush()

	cf, err := openClass(fs.Arg(0), *classPath)
	if err != nil {
		return err
	}
	return writePool(os.Stdout, cf.ConstantPool, newStyler(*noColor))
}

func writePool(w io.Writer, pool classfile.ConstantPool, st styler) error {
	fmt.Fprintf(w, "%s (%d slots, count %d)\n", st.heading("Constant pool"), len(pool), pool.Count())
	width := len(strconv.Itoa(len(pool)))
	for i := 1; i <= len(pool); i++ {
		index := uint16(i)
		label := fmt.Sprintf("%*s", width+1, "#"+strconv.Itoa(i))
		if pool.IsPhantom(index) {
			fmt.Fprintf(w, "  %s = %s\n", label, st.flags("(reserved by preceding 8-byte constant)"))
			continue
		}
		entry, err := pool.Get(index)
		if err != nil {
			fmt.Fprintf(w, "  %s = %s\n", label, st.err(err.Error()))
			continue
		}
		value, comment := formatConstant(pool, index, entry)
		line := fmt.Sprintf("  %s = %-18s %s", label, st.typ(entry.Tag().String()), value)
		if comment != "" {
			line += "  // " + comment
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// formatConstant renders an entry's raw operands and, for references, the
// text they resolve to.
func formatConstant(pool classfile.ConstantPool, index uint16, entry classfile.ConstantPoolEntry) (value, comment string) {
	switch c := entry.(type) {
	case *classfile.ConstantUtf8:
		return strconv.Quote(c.Value), ""
	case *classfile.ConstantInteger:
		return strconv.FormatInt(int64(c.Value), 10), ""
	case *classfile.ConstantFloat:
		return strconv.FormatFloat(float64(c.Value), 'g', -1, 32) + "f", ""
	case *classfile.ConstantLong:
		return strconv.FormatInt(c.Value, 10) + "l", ""
	case *classfile.ConstantDouble:
		return strconv.FormatFloat(c.Value, 'g', -1, 64) + "d", ""
	case *classfile.ConstantClass:
		return ref(c.NameIndex), resolved(pool.Utf8(c.NameIndex))
	case *classfile.ConstantString:
		s, err := pool.Utf8(c.StringIndex)
		if err != nil {
			return ref(c.StringIndex), err.Error()
		}
		return ref(c.StringIndex), strconv.Quote(s)
	case *classfile.ConstantFieldref:
		return ref(c.ClassIndex) + "." + ref(c.NameAndTypeIndex), memberRef(pool.Fieldref(index))
	case *classfile.ConstantMethodref:
		return ref(c.ClassIndex) + "." + ref(c.NameAndTypeIndex), memberRef(pool.Methodref(index))
	case *classfile.ConstantInterfaceMethodref:
		return ref(c.ClassIndex) + "." + ref(c.NameAndTypeIndex), memberRef(pool.InterfaceMethodref(index))
	case *classfile.ConstantNameAndType:
		return ref(c.NameIndex) + ":" + ref(c.DescriptorIndex), nameAndType(pool, c.NameIndex, c.DescriptorIndex)
	case *classfile.ConstantMethodHandle:
		return c.ReferenceKind.String() + " " + ref(c.ReferenceIndex), handleTarget(pool, c.ReferenceIndex)
	case *classfile.ConstantMethodType:
		return ref(c.DescriptorIndex), resolved(pool.Utf8(c.DescriptorIndex))
	case *classfile.ConstantDynamic:
		return bootstrapRef(c.BootstrapMethodAttrIndex) + ":" + ref(c.NameAndTypeIndex), resolvedNameAndType(pool, c.NameAndTypeIndex)
	case *classfile.ConstantInvokeDynamic:
		return bootstrapRef(c.BootstrapMethodAttrIndex) + ":" + ref(c.NameAndTypeIndex), resolvedNameAndType(pool, c.NameAndTypeIndex)
	case *classfile.ConstantModule:
		return ref(c.NameIndex), resolved(pool.Utf8(c.NameIndex))
	case *classfile.ConstantPackage:
		return ref(c.NameIndex), resolved(pool.Utf8(c.NameIndex))
	default:
		return fmt.Sprintf("%T", entry), ""
	}
}

func ref(index uint16) string { return "#" + strconv.Itoa(int(index)) }

func bootstrapRef(index uint16) string { return "bsm" + strconv.Itoa(int(index)) }

func resolved(s string, err error) string {
	if err != nil {
		return err.Error()
	}
	return s
}

func memberRef(r *classfile.MemberRef, err error) string {
	if err != nil {
		return err.Error()
	}
	return r.ClassName + "." + r.Name + ":" + r.Descriptor
}

func nameAndType(pool classfile.ConstantPool, nameIndex, descIndex uint16) string {
	name, err := pool.Utf8(nameIndex)
	if err != nil {
		return err.Error()
	}
	desc, err := pool.Utf8(descIndex)
	if err != nil {
		return err.Error()
	}
	return name + ":" + desc
}

func resolvedNameAndType(pool classfile.ConstantPool, index uint16) string {
	name, desc, err := pool.NameAndType(index)
	if err != nil {
		return err.Error()
	}
	return name + ":" + desc
}

func handleTarget(pool classfile.ConstantPool, index uint16) string {
	entry, err := pool.Get(index)
	if err != nil {
		return err.Error()
	}
	switch entry.(type) {
	case *classfile.ConstantFieldref:
		return memberRef(pool.Fieldref(index))
	case *classfile.ConstantMethodref:
		return memberRef(pool.Methodref(index))
	case *classfile.ConstantInterfaceMethodref:
		return memberRef(pool.InterfaceMethodref(index))
	default:
		return "unexpected " + entry.Tag().String()
	}
}
