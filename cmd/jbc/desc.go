package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/daimatz/jbc/pkg/descriptor"
)

func cmdDesc(args []string) error {
	fs := flag.NewFlagSet("desc", flag.ExitOnError)
	noColor := fs.Bool("no-color", false, "disable styled output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("desc: expected at least one descriptor")
	}

	st := newStyler(*noColor)
	failed := 0
	for _, s := range fs.Args() {
		if err := writeDescriptor(os.Stdout, s, st); err != nil {
			fmt.Fprintf(os.Stdout, "%s\n  %s\n", s, st.err(err.Error()))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d descriptors invalid", failed, fs.NArg())
	}
	return nil
}

// writeDescriptor parses s as a method descriptor when it starts with '('
// and as a field descriptor otherwise, and prints its structure.
func writeDescriptor(w io.Writer, s string, st styler) error {
	if strings.HasPrefix(s, "(") {
		md, err := descriptor.ParseMethodDescriptor(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  %s\n", s, st.heading(fmt.Sprintf("method, %d parameter slots", md.ParameterSlots())))
		for i, p := range md.Parameters {
			writeFieldType(w, fmt.Sprintf("param %d", i), p, "  ", st)
		}
		writeFieldType(w, "return", md.Return, "  ", st)
		return nil
	}

	ft, err := descriptor.ParseFieldType(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s  %s\n", s, st.heading("field"))
	writeFieldType(w, "type", ft, "  ", st)
	return nil
}

func writeFieldType(w io.Writer, label string, t descriptor.FieldType, indent string, st styler) {
	switch t.Kind {
	case descriptor.Object:
		fmt.Fprintf(w, "%s%s: %s %s\n", indent, label, t.Kind, st.typ(t.ClassName))
	case descriptor.Array:
		fmt.Fprintf(w, "%s%s: %s %s\n", indent, label, t.Kind, st.typ(t.JavaName()))
		writeFieldType(w, "element", *t.Elem, indent+"  ", st)
	default:
		fmt.Fprintf(w, "%s%s: %s\n", indent, label, st.typ(t.Kind.String()))
	}
}
