// Package files is an in-memory file manager for the compiler. Sources are
// added directly; class files are loaded lazily, one package archive at a
// time, from a Platform.
package files

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dhamidi/codeonline/ntar"
	"github.com/tliron/commonlog"
)

var ErrNotFound = errors.New("file not found")

type Location string

const (
	SourcePath              Location = "SOURCE_PATH"
	ClassPath               Location = "CLASS_PATH"
	PlatformClassPath       Location = "PLATFORM_CLASS_PATH"
	ClassOutput             Location = "CLASS_OUTPUT"
	AnnotationProcessorPath Location = "ANNOTATION_PROCESSOR_PATH"
)

type Kind string

const (
	KindSource Kind = "SOURCE"
	KindClass  Kind = "CLASS"
	KindHTML   Kind = "HTML"
	KindOther  Kind = "OTHER"
)

// Extension returns the file name extension used for kind on disk.
func (k Kind) Extension() string {
	switch k {
	case KindSource:
		return ".java"
	case KindClass:
		return ".class"
	case KindHTML:
		return ".html"
	}
	return ""
}

// File is a file known to a Manager. Java files are named
// "jfo:<LOCATION>/<KIND>.<binary name>", other resources
// "fo:<LOCATION>/<package>/<relative name>".
type File struct {
	Name     string
	Location Location
	Kind     Kind

	mu       sync.RWMutex
	contents []byte
}

func (f *File) Contents() []byte {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.contents
}

func (f *File) CharContent() string {
	return string(f.Contents())
}

func (f *File) SetContents(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents = b
}

// IsNameCompatible reports whether f holds the top level class simpleName.
func (f *File) IsNameCompatible(simpleName string, kind Kind) bool {
	return f.Kind == kind && strings.HasSuffix(f.Name, "."+simpleName)
}

func javaFileName(loc Location, className string, kind Kind) string {
	return "jfo:" + string(loc) + "/" + string(kind) + "." + className
}

func resourceName(loc Location, pkg, relative string) string {
	return "fo:" + string(loc) + "/" + pkg + "/" + relative
}

type Manager struct {
	mu       sync.RWMutex
	files    map[string]*File
	loaded   map[string]bool
	platform Platform
	index    *PackageIndex
}

// NewManager returns an empty manager loading class archives from
// platform. Only archives listed in index are ever opened; a nil platform
// or index disables class loading.
func NewManager(platform Platform, index *PackageIndex) *Manager {
	return &Manager{
		files:    make(map[string]*File),
		loaded:   make(map[string]bool),
		platform: platform,
		index:    index,
	}
}

// AddSource registers a source file under SOURCE_PATH. name is the binary
// name of its top level class.
func (m *Manager) AddSource(name, contents string) *File {
	f := &File{
		Name:     javaFileName(SourcePath, name, KindSource),
		Location: SourcePath,
		Kind:     KindSource,
		contents: []byte(contents),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[f.Name] = f
	return f
}

func (m *Manager) HasLocation(loc Location) bool {
	switch loc {
	case ClassOutput, ClassPath, SourcePath, AnnotationProcessorPath, PlatformClassPath:
		return true
	}
	return false
}

// List returns the Java files of the given kinds in pkg, sorted by name.
// With recurse, files in subpackages are included.
func (m *Manager) List(loc Location, pkg string, kinds []Kind, recurse bool) ([]*File, error) {
	if err := m.loadPackage(loc, pkg); err != nil {
		return nil, err
	}
	qualifier := ""
	if pkg != "" {
		qualifier = pkg + "."
	}
	prefixes := make([]string, len(kinds))
	for i, k := range kinds {
		prefixes[i] = javaFileName(loc, qualifier, k)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*File
	for name, f := range m.files {
		for _, prefix := range prefixes {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			if recurse || !strings.Contains(name[len(prefix):], ".") {
				out = append(out, f)
			}
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// InferBinaryName returns the binary name of a Java file, such as
// "java.util.Map$Entry".
func (m *Manager) InferBinaryName(f *File) string {
	_, name, _ := strings.Cut(f.Name, ".")
	return name
}

// FileForInput returns the Java file holding className, loading its
// package archive first if needed.
func (m *Manager) FileForInput(loc Location, className string, kind Kind) (*File, error) {
	pkg := ""
	if i := strings.LastIndexByte(className, '.'); i >= 0 {
		pkg = className[:i]
	}
	if err := m.loadPackage(loc, pkg); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[javaFileName(loc, className, kind)]
	if !ok {
		return nil, fmt.Errorf("%s %s in %s: %w", kind, className, loc, ErrNotFound)
	}
	return f, nil
}

// FileForOutput returns the Java file for className, creating an empty
// one if it does not exist yet.
func (m *Manager) FileForOutput(loc Location, className string, kind Kind) *File {
	name := javaFileName(loc, className, kind)
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[name]; ok {
		return f
	}
	f := &File{Name: name, Location: loc, Kind: kind}
	m.files[name] = f
	return f
}

func (m *Manager) ResourceForInput(loc Location, pkg, relative string) (*File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[resourceName(loc, pkg, relative)]
	if !ok {
		return nil, fmt.Errorf("%s/%s in %s: %w", pkg, relative, loc, ErrNotFound)
	}
	return f, nil
}

func (m *Manager) ResourceForOutput(loc Location, pkg, relative string) *File {
	name := resourceName(loc, pkg, relative)
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[name]; ok {
		return f
	}
	f := &File{Name: name, Location: loc, Kind: KindOther}
	m.files[name] = f
	return f
}

func (m *Manager) Remove(f *File) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, f.Name)
}

// Packages returns the packages with an archive for loc.
func (m *Manager) Packages(loc Location) []string {
	return m.index.Packages(loc)
}

func (m *Manager) loadPackage(loc Location, pkg string) error {
	if loc != ClassPath && loc != PlatformClassPath {
		return nil
	}
	archive := ArchiveName(loc, pkg)
	if m.platform == nil || !m.index.Has(archive) {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded[archive] {
		return nil
	}

	rc, err := m.platform.Open(archive)
	if err != nil {
		return fmt.Errorf("failed to open package archive %s: %w", archive, err)
	}
	defer rc.Close()
	entries, err := ntar.NewReader(rc).All()
	if err != nil {
		return fmt.Errorf("failed to read package archive %s: %w", archive, err)
	}

	qualifier := ""
	if pkg != "" {
		qualifier = pkg + "."
	}
	for _, e := range entries {
		name := javaFileName(loc, qualifier+e.Name, KindClass)
		m.files[name] = &File{Name: name, Location: loc, Kind: KindClass, contents: e.Content}
	}
	m.loaded[archive] = true
	commonlog.GetLogger("codeonline.files").Debugf("loaded %s: %d classes", archive, len(entries))
	return nil
}
