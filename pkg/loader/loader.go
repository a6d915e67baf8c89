// Package loader finds and decodes class files by internal class name
// (java/lang/String) from directories, jar/zip archives and JDK jmod files.
package loader

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/daimatz/jbc/pkg/classfile"
)

// ErrClassNotFound is returned when no classpath entry holds the class.
var ErrClassNotFound = errors.New("class not found")

// jmodMagic prefixes the zip data of a JDK .jmod file.
var jmodMagic = []byte{'J', 'M', 0x01, 0x00}

// Loader loads .class files by class name.
type Loader interface {
	Load(name string) (*classfile.ClassFile, error)
}

// DirLoader loads classes from a directory laid out by package.
type DirLoader struct {
	Root string
}

// NewDirLoader creates a new DirLoader.
func NewDirLoader(root string) *DirLoader {
	return &DirLoader{Root: root}
}

func (l *DirLoader) Load(name string) (*classfile.ClassFile, error) {
	path := filepath.Join(l.Root, filepath.FromSlash(name)+".class")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dir: %s in %s: %w", name, l.Root, ErrClassNotFound)
		}
		return nil, fmt.Errorf("dir: reading %s: %w", path, err)
	}
	cf, err := classfile.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("dir: decoding %s: %w", path, err)
	}
	return cf, nil
}

// ArchiveLoader loads classes from a jar, zip or jmod file. The archive is
// opened on first use.
type ArchiveLoader struct {
	Path string

	mu     sync.Mutex
	prefix string
	files  map[string]*zip.File
}

// NewArchiveLoader creates a new ArchiveLoader.
func NewArchiveLoader(path string) *ArchiveLoader {
	return &ArchiveLoader{Path: path}
}

func (l *ArchiveLoader) open() error {
	if l.files != nil {
		return nil
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		return fmt.Errorf("archive: reading %s: %w", l.Path, err)
	}

	if bytes.HasPrefix(data, jmodMagic) {
		data = data[len(jmodMagic):]
		l.prefix = "classes/"
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("archive: opening zip %s: %w", l.Path, err)
	}

	l.files = make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".class") {
			l.files[f.Name] = f
		}
	}
	Logger().Debug("opened class archive",
		zap.String("path", l.Path),
		zap.Int("classes", len(l.files)),
		zap.Bool("jmod", l.prefix != ""))
	return nil
}

func (l *ArchiveLoader) Load(name string) (*classfile.ClassFile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.open(); err != nil {
		return nil, err
	}

	target := l.prefix + name + ".class"
	file, ok := l.files[target]
	if !ok {
		return nil, fmt.Errorf("archive: %s in %s: %w", name, l.Path, ErrClassNotFound)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("archive: opening %s: %w", target, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("archive: reading %s: %w", target, err)
	}
	cf, err := classfile.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("archive: decoding %s: %w", name, err)
	}
	return cf, nil
}

// Classes lists the class names held by the archive.
func (l *ArchiveLoader) Classes() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.open(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(l.files))
	for path := range l.files {
		if !strings.HasPrefix(path, l.prefix) {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(path, l.prefix), ".class"))
	}
	return names, nil
}

// Chain tries each loader in order and returns the first class found.
// Errors other than ErrClassNotFound stop the search.
type Chain []Loader

func (c Chain) Load(name string) (*classfile.ClassFile, error) {
	for _, l := range c {
		cf, err := l.Load(name)
		if err == nil {
			return cf, nil
		}
		if !errors.Is(err, ErrClassNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrClassNotFound)
}

// Cached memoizes successful loads of an underlying Loader.
type Cached struct {
	loader Loader

	mu    sync.Mutex
	cache map[string]*classfile.ClassFile
}

// NewCached wraps l with a cache.
func NewCached(l Loader) *Cached {
	return &Cached{
		loader: l,
		cache:  make(map[string]*classfile.ClassFile),
	}
}

func (c *Cached) Load(name string) (*classfile.ClassFile, error) {
	c.mu.Lock()
	cf, ok := c.cache[name]
	c.mu.Unlock()
	if ok {
		Logger().Debug("class cache hit", zap.String("class", name))
		return cf, nil
	}

	cf, err := c.loader.Load(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.cache[name]; ok {
		return cached, nil
	}
	c.cache[name] = cf
	Logger().Debug("class loaded", zap.String("class", name))
	return cf, nil
}

// FromClassPath builds a cached loader from a list of directories and
// archives separated by os.PathListSeparator.
func FromClassPath(classPath string) (*Cached, error) {
	var chain Chain
	for _, entry := range filepath.SplitList(classPath) {
		if entry == "" {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry)) {
		case ".jar", ".zip", ".jmod":
			chain = append(chain, NewArchiveLoader(entry))
		default:
			info, err := os.Stat(entry)
			if err != nil {
				return nil, fmt.Errorf("classpath entry %s: %w", entry, err)
			}
			if !info.IsDir() {
				return nil, fmt.Errorf("classpath entry %s is neither a directory nor an archive", entry)
			}
			chain = append(chain, NewDirLoader(entry))
		}
	}
	if len(chain) == 0 {
		return nil, errors.New("empty classpath")
	}
	return NewCached(chain), nil
}

// FindJavaBaseJmod locates java.base.jmod from JAVA_BASE_JMOD, JAVA_HOME, or
// the usual OpenJDK install locations. It returns "" when none exists.
func FindJavaBaseJmod() string {
	if env := os.Getenv("JAVA_BASE_JMOD"); env != "" {
		return env
	}
	if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
		p := filepath.Join(javaHome, "jmods", "java.base.jmod")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	matches, _ := filepath.Glob("/usr/lib/jvm/java-*-openjdk-*/jmods/java.base.jmod")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}
