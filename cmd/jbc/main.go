package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/daimatz/jbc/pkg/classfile"
	"github.com/daimatz/jbc/pkg/loader"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "dump":
		err = cmdDump(os.Args[2:])
	case "pool":
		err = cmdPool(os.Args[2:])
	case "desc":
		err = cmdDesc(os.Args[2:])
	case "browse":
		err = cmdBrowse(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `jbc - JVM class file inspector

Usage:
  jbc dump   [flags] <file.class|class/Name>   Print the decoded class
  jbc pool   [flags] <file.class|class/Name>   List the constant pool
  jbc desc   <descriptor>...                   Parse field and method descriptors
  jbc browse [flags] <file.class|class/Name>   Browse members interactively

Flags:
  -cp <path>     Classpath of directories, jars and jmods (default $JBC_CLASSPATH)
  -validate      Check constant pool cross-references
  -no-color      Disable styled output
  -v             Debug logging to stderr
`)
}

// reportError prints err, adding the failure kind and byte offset for
// class-file decode errors.
func reportError(err error) {
	var derr *classfile.DecodeError
	if errors.As(err, &derr) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "  kind:   %s\n", derr.Kind)
		if derr.Offset >= 0 {
			fmt.Fprintf(os.Stderr, "  offset: %d (0x%x)\n", derr.Offset, derr.Offset)
		}
		if derr.Index != 0 {
			fmt.Fprintf(os.Stderr, "  index:  #%d\n", derr.Index)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func setupLogging(verbose bool) (func(), error) {
	if !verbose {
		return func() {}, nil
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	classfile.SetLogger(log)
	loader.SetLogger(log)
	return func() { _ = log.Sync() }, nil
}

// openClass decodes target, which is either a path to a .class file or a
// class name resolved through the classpath.
func openClass(target, classPath string) (*classfile.ClassFile, error) {
	if strings.HasSuffix(target, ".class") {
		f, err := os.Open(target)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", target, err)
		}
		defer f.Close()
		cf, err := classfile.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", target, err)
		}
		return cf, nil
	}

	l, err := loader.FromClassPath(resolveClassPath(classPath))
	if err != nil {
		return nil, err
	}
	return l.Load(strings.ReplaceAll(target, ".", "/"))
}

// resolveClassPath picks the -cp flag, then $JBC_CLASSPATH, then the current
// directory, and appends java.base.jmod when one can be found.
func resolveClassPath(flagValue string) string {
	cp := flagValue
	if cp == "" {
		cp = os.Getenv("JBC_CLASSPATH")
	}
	if cp == "" {
		cp = "."
	}
	if jmod := loader.FindJavaBaseJmod(); jmod != "" {
		cp += string(filepath.ListSeparator) + jmod
	}
	return cp
}
