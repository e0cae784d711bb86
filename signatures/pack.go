// Package signatures packs the classes of jar files into the per-package
// archives a files.Manager loads from its Platform.
//
// Every package becomes one ntar archive named "<LOCATION>-<package>.zip"
// holding an entry per top level or nested class, keyed by its simple
// binary name ("Map$Entry"). The archive names are listed one per line in
// files.IndexName. Class files are stored as they are.
package signatures

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dhamidi/codeonline/files"
	"github.com/dhamidi/codeonline/ntar"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
)

// ctSymRe matches the release 8 class entries of a ct.sym style platform
// archive, capturing the package path and the simple name.
var ctSymRe = regexp.MustCompile(`^META-INF/ct[.]sym/[^/-]*8[^/-]*/[^/-]*/(.*)/([^/-]*)[.]class$`)

// Packages maps a dotted package name to the classes in it, keyed by
// simple binary name.
type Packages map[string]map[string][]byte

// put adds a class unless the package already has one by that name.
func (p Packages) put(pkg, name string, contents []byte) {
	classes, ok := p[pkg]
	if !ok {
		classes = make(map[string][]byte)
		p[pkg] = classes
	}
	if _, exists := classes[name]; !exists {
		classes[name] = contents
	}
}

func (p Packages) merge(other Packages) {
	for pkg, classes := range other {
		for name, contents := range classes {
			p.put(pkg, name, contents)
		}
	}
}

func (p Packages) sortedNames() []string {
	names := make([]string, 0, len(p))
	for pkg := range p {
		names = append(names, pkg)
	}
	sort.Strings(names)
	return names
}

// ReadJar collects the .class entries of a jar by their path.
func ReadJar(r io.ReaderAt, size int64) (Packages, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	packages := make(Packages)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		path, ok := strings.CutSuffix(f.Name, ".class")
		if !ok {
			continue
		}
		pkg, name := "", path
		if i := strings.LastIndexByte(path, '/'); i >= 0 {
			pkg, name = path[:i], path[i+1:]
		}
		contents, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		packages.put(strings.ReplaceAll(pkg, "/", "."), name, contents)
	}
	return packages, nil
}

// ReadPlatform collects the classes of a platform archive. Archives laid
// out like ct.sym contribute their release 8 entries; any other archive
// is read like a jar.
func ReadPlatform(r io.ReaderAt, size int64) (Packages, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	packages := make(Packages)
	for _, f := range zr.File {
		m := ctSymRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		contents, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		packages.put(strings.ReplaceAll(m[1], "/", "."), m[2], contents)
	}
	if len(packages) == 0 {
		return ReadJar(r, size)
	}
	return packages, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return b, nil
}

// WritePackages writes one archive per package to dir and returns the
// archive names in package order.
func WritePackages(dir string, loc files.Location, packages Packages) ([]string, error) {
	var archives []string
	for _, pkg := range packages.sortedNames() {
		name := files.ArchiveName(loc, pkg)
		var buf bytes.Buffer
		w := ntar.NewWriter(&buf)
		classes := packages[pkg]
		simple := make([]string, 0, len(classes))
		for n := range classes {
			simple = append(simple, n)
		}
		sort.Strings(simple)
		for _, n := range simple {
			if err := w.Put(n, classes[n]); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		}
		if err := w.Flush(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
			return nil, err
		}
		archives = append(archives, name)
	}
	return archives, nil
}

// Pack reads the platform archive (optional) and the class path jars and
// writes their package archives and the index to dir. When two jars
// define the same class, the earlier jar wins.
func Pack(ctx context.Context, dir, platform string, classPath []string) ([]string, error) {
	log := commonlog.GetLogger("codeonline.signatures")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	// Slot 0 holds the platform, the class path follows in order.
	read := make([]Packages, len(classPath)+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	load := func(slot int, path string, readFn func(io.ReaderAt, int64) (Packages, error)) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}
			packages, err := readFn(f, info.Size())
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			log.Debugf("read %s: %d packages", path, len(packages))
			read[slot] = packages
			return nil
		})
	}
	if platform != "" {
		load(0, platform, ReadPlatform)
	}
	for i, jar := range classPath {
		load(i+1, jar, ReadJar)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	userClasses := make(Packages)
	for _, packages := range read[1:] {
		userClasses.merge(packages)
	}

	var index []string
	for _, part := range []struct {
		loc      files.Location
		packages Packages
	}{
		{files.PlatformClassPath, read[0]},
		{files.ClassPath, userClasses},
	} {
		archives, err := WritePackages(dir, part.loc, part.packages)
		if err != nil {
			return nil, err
		}
		index = append(index, archives...)
	}

	var buf bytes.Buffer
	for _, name := range index {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(dir, files.IndexName), buf.Bytes(), 0o644); err != nil {
		return nil, err
	}
	log.Infof("wrote %d package archives to %s", len(index), dir)
	return index, nil
}
