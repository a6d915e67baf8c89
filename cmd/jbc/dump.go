package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/daimatz/jbc/pkg/classfile"
	"github.com/daimatz/jbc/pkg/descriptor"
)

func cmdDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	classPath := fs.String("cp", "", "classpath of directories, jars and jmods")
	validate := fs.Bool("validate", false, "check constant pool cross-references")
	noColor := fs.Bool("no-color", false, "disable styled output")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("dump: expected one class file or class name")
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

	st := newStyler(*noColor)
	if err := writeDump(os.Stdout, cf, classfile.DefaultRegistry(), st); err != nil {
		return err
	}

	if *validate {
		if err := cf.Validate(); err != nil {
			fmt.Fprintf(os.Stdout, "\n%s\n", st.heading("Validation"))
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(os.Stdout, "  %s\n", st.err(line))
			}
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(os.Stdout, "\n%s ok\n", st.heading("Validation"))
	}
	return nil
}

func writeDump(w io.Writer, cf *classfile.ClassFile, reg *classfile.Registry, st styler) error {
	name, err := cf.ClassName()
	if err != nil {
		return fmt.Errorf("this_class: %w", err)
	}
	super, err := cf.SuperClassName()
	if err != nil {
		return fmt.Errorf("super_class: %w", err)
	}
	interfaces, err := cf.InterfaceNames()
	if err != nil {
		return fmt.Errorf("interfaces: %w", err)
	}

	fmt.Fprintln(w, st.title(name))
	fmt.Fprintf(w, "  version:    %d.%d (%s)\n", cf.MajorVersion, cf.MinorVersion, javaVersion(cf.MajorVersion))
	fmt.Fprintf(w, "  flags:      %s\n", st.flags(cf.AccessFlags.String()))
	if super != "" {
		fmt.Fprintf(w, "  super:      %s\n", st.typ(super))
	}
	if len(interfaces) > 0 {
		fmt.Fprintf(w, "  interfaces: %s\n", st.typ(strings.Join(interfaces, ", ")))
	}
	fmt.Fprintf(w, "  constants:  %d\n", len(cf.ConstantPool))

	fmt.Fprintf(w, "\n%s (%d)\n", st.heading("Fields"), len(cf.Fields))
	for i := range cf.Fields {
		f := &cf.Fields[i]
		fmt.Fprintf(w, "  %s\n", formatField(cf, f, st))
		writeAttributes(w, cf, reg, f.Attributes, "    ")
	}

	fmt.Fprintf(w, "\n%s (%d)\n", st.heading("Methods"), len(cf.Methods))
	for i := range cf.Methods {
		m := &cf.Methods[i]
		fmt.Fprintf(w, "  %s\n", formatMethod(cf, reg, m, st))
		writeAttributes(w, cf, reg, m.Attributes, "    ")
	}

	fmt.Fprintf(w, "\n%s (%d)\n", st.heading("Attributes"), len(cf.Attributes))
	writeAttributes(w, cf, reg, cf.Attributes, "  ")
	return nil
}

func javaVersion(major uint16) string {
	switch {
	case major < 45:
		return "unknown"
	case major < 49:
		return fmt.Sprintf("Java 1.%d", major-44)
	default:
		return fmt.Sprintf("Java %d", major-44)
	}
}

func formatField(cf *classfile.ClassFile, f *classfile.MemberInfo, st styler) string {
	name, desc := memberNames(cf, f)
	typ := desc
	if ft, err := descriptor.ParseFieldType(desc); err == nil {
		typ = ft.JavaName()
	}
	return joinNonEmpty(st.flags(f.FieldFlags().String()), st.typ(typ), st.name(name))
}

func formatMethod(cf *classfile.ClassFile, reg *classfile.Registry, m *classfile.MemberInfo, st styler) string {
	name, desc := memberNames(cf, m)
	flags := st.flags(m.MethodFlags().String())

	md, err := descriptor.ParseMethodDescriptor(desc)
	if err != nil {
		return joinNonEmpty(flags, st.name(name)+" "+st.err(desc))
	}

	paramNames := parameterNames(cf, reg, m)
	params := make([]string, len(md.Parameters))
	for i, p := range md.Parameters {
		params[i] = st.typ(p.JavaName())
		if i < len(paramNames) && paramNames[i] != "" {
			params[i] += " " + paramNames[i]
		}
	}
	return joinNonEmpty(flags, st.typ(md.Return.JavaName()), st.name(name)+"("+strings.Join(params, ", ")+")")
}

func memberNames(cf *classfile.ClassFile, m *classfile.MemberInfo) (name, desc string) {
	name, err := cf.MemberName(m)
	if err != nil {
		name = fmt.Sprintf("<name #%d>", m.NameIndex)
	}
	desc, err = cf.MemberDescriptor(m)
	if err != nil {
		desc = fmt.Sprintf("<descriptor #%d>", m.DescriptorIndex)
	}
	return name, desc
}

// parameterNames reads the MethodParameters attribute of m, if present.
func parameterNames(cf *classfile.ClassFile, reg *classfile.Registry, m *classfile.MemberInfo) []string {
	info, ok := cf.FindAttribute(m.Attributes, classfile.AttrMethodParameters)
	if !ok {
		return nil
	}
	attr, err := cf.DecodeAttribute(reg, info)
	if err != nil {
		return nil
	}
	mp, ok := attr.(*classfile.MethodParametersAttribute)
	if !ok {
		return nil
	}
	names := make([]string, len(mp.Parameters))
	for i, p := range mp.Parameters {
		if p.NameIndex == 0 {
			continue
		}
		names[i], _ = cf.ConstantPool.Utf8(p.NameIndex)
	}
	return names
}

func writeAttributes(w io.Writer, cf *classfile.ClassFile, reg *classfile.Registry, attrs []classfile.AttributeInfo, indent string) {
	for i := range attrs {
		a := &attrs[i]
		name, err := cf.AttributeName(a)
		if err != nil {
			fmt.Fprintf(w, "%s<attribute #%d>: %v\n", indent, a.NameIndex, err)
			continue
		}
		attr, err := cf.DecodeAttribute(reg, a)
		if err != nil {
			fmt.Fprintf(w, "%s%s: %v\n", indent, name, err)
			continue
		}
		fmt.Fprintf(w, "%s%s: %s\n", indent, name, describeAttribute(cf, attr))
	}
}

func describeAttribute(cf *classfile.ClassFile, attr classfile.Attribute) string {
	pool := cf.ConstantPool
	switch a := attr.(type) {
	case *classfile.CodeAttribute:
		return fmt.Sprintf("max_stack=%d max_locals=%d code_length=%d exception_table=%d attributes=%d",
			a.MaxStack, a.MaxLocals, len(a.Code), len(a.ExceptionHandlers), len(a.Attributes))
	case *classfile.MethodParametersAttribute:
		parts := make([]string, len(a.Parameters))
		for i, p := range a.Parameters {
			name := "<unnamed>"
			if p.NameIndex != 0 {
				name = resolved(pool.Utf8(p.NameIndex))
			}
			if p.AccessFlags != 0 {
				name += " [" + p.AccessFlags.String() + "]"
			}
			parts[i] = name
		}
		return strings.Join(parts, ", ")
	case *classfile.SourceFileAttribute:
		return resolved(pool.Utf8(a.SourceFileIndex))
	case *classfile.SignatureAttribute:
		return resolved(pool.Utf8(a.SignatureIndex))
	case *classfile.ConstantValueAttribute:
		entry, err := pool.Get(a.ValueIndex)
		if err != nil {
			return err.Error()
		}
		value, comment := formatConstant(pool, a.ValueIndex, entry)
		if comment != "" {
			value += " // " + comment
		}
		return entry.Tag().String() + " " + value
	case *classfile.ExceptionsAttribute:
		names := make([]string, len(a.ExceptionIndexTable))
		for i, idx := range a.ExceptionIndexTable {
			names[i] = resolved(pool.ClassName(idx))
		}
		return strings.Join(names, ", ")
	case *classfile.BootstrapMethodsAttribute:
		return fmt.Sprintf("%d methods", len(a.Methods))
	case *classfile.RawAttribute:
		return fmt.Sprintf("%d bytes", len(a.Info))
	default:
		return fmt.Sprintf("%T", attr)
	}
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
