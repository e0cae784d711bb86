package files

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// IndexName is the resource listing the available package archives, one
// archive name per line.
const IndexName = "available.txt"

// Platform opens the external resources a Manager needs: the package
// index and the package archives it names.
type Platform interface {
	Open(name string) (io.ReadCloser, error)
}

// DirPlatform serves resources from a directory, typically the output
// directory of `codeonline pack`.
type DirPlatform string

func (d DirPlatform) Open(name string) (io.ReadCloser, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid resource name %q", name)
	}
	return os.Open(filepath.Join(string(d), name))
}

// CachedPlatform keeps the contents of every resource it has opened, so
// that the per-request managers sharing it read each archive only once.
// Failed opens are not cached.
type CachedPlatform struct {
	platform Platform

	mu        sync.Mutex
	resources map[string][]byte
}

func NewCachedPlatform(p Platform) *CachedPlatform {
	return &CachedPlatform{platform: p, resources: make(map[string][]byte)}
}

func (c *CachedPlatform) Open(name string) (io.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.resources[name]; ok {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	rc, err := c.platform.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	c.resources[name] = b
	return io.NopCloser(bytes.NewReader(b)), nil
}

// ArchiveName returns the name of the archive holding the classes of pkg
// for loc.
func ArchiveName(loc Location, pkg string) string {
	return string(loc) + "-" + pkg + ".zip"
}

// PackageIndex is the set of package archives a Platform provides. It is
// built once and never modified, so it may be shared freely.
type PackageIndex struct {
	archives map[string]struct{}
}

func NewPackageIndex(archives []string) *PackageIndex {
	idx := &PackageIndex{archives: make(map[string]struct{}, len(archives))}
	for _, a := range archives {
		if a = strings.TrimSpace(a); a != "" {
			idx.archives[a] = struct{}{}
		}
	}
	return idx
}

// LoadPackageIndex reads IndexName from p.
func LoadPackageIndex(p Platform) (*PackageIndex, error) {
	rc, err := p.Open(IndexName)
	if err != nil {
		return nil, fmt.Errorf("failed to open package index: %w", err)
	}
	defer rc.Close()

	var archives []string
	s := bufio.NewScanner(rc)
	for s.Scan() {
		archives = append(archives, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read package index: %w", err)
	}
	return NewPackageIndex(archives), nil
}

func (idx *PackageIndex) Has(archive string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.archives[archive]
	return ok
}

// Packages returns the sorted names of the packages available for loc.
func (idx *PackageIndex) Packages(loc Location) []string {
	if idx == nil {
		return nil
	}
	prefix := string(loc) + "-"
	var pkgs []string
	for a := range idx.archives {
		if strings.HasPrefix(a, prefix) && strings.HasSuffix(a, ".zip") {
			pkgs = append(pkgs, strings.TrimSuffix(strings.TrimPrefix(a, prefix), ".zip"))
		}
	}
	sort.Strings(pkgs)
	return pkgs
}

func (idx *PackageIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.archives)
}
