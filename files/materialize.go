package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Layout describes a manager written out to disk for an external
// compiler.
type Layout struct {
	Root string
	// Sources holds the paths of the SOURCE_PATH files, in List order.
	Sources   []string
	ClassPath string
	OutputDir string

	paths map[string]string
}

// Path returns where f was written, or "" if it was not.
func (l *Layout) Path(f *File) string {
	return l.paths[f.Name]
}

// Materialize writes the sources and every CLASS_PATH class to dir.
// PLATFORM_CLASS_PATH classes are not written; an external compiler
// brings its own platform classes.
func (m *Manager) Materialize(ctx context.Context, dir string) (*Layout, error) {
	layout := &Layout{
		Root:      dir,
		ClassPath: filepath.Join(dir, "classpath"),
		OutputDir: filepath.Join(dir, "out"),
		paths:     make(map[string]string),
	}
	for _, d := range []string{layout.ClassPath, layout.OutputDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", d, err)
		}
	}

	for _, pkg := range m.Packages(ClassPath) {
		if err := m.loadPackage(ClassPath, pkg); err != nil {
			return nil, err
		}
	}

	sources, err := m.List(SourcePath, "", []Kind{KindSource}, true)
	if err != nil {
		return nil, err
	}
	classes, err := m.List(ClassPath, "", []Kind{KindClass}, true)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	write := func(f *File, base string) string {
		path := filepath.Join(base, binaryPath(m.InferBinaryName(f))+f.Kind.Extension())
		layout.paths[f.Name] = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			return os.WriteFile(path, f.Contents(), 0o644)
		})
		return path
	}
	for _, f := range sources {
		layout.Sources = append(layout.Sources, write(f, filepath.Join(dir, "src")))
	}
	for _, f := range classes {
		write(f, layout.ClassPath)
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to materialize files: %w", err)
	}
	return layout, nil
}

// binaryPath turns a binary name into a relative path; nested class names
// keep their '$'.
func binaryPath(name string) string {
	return filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))
}
