package files

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/codeonline/ntar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPlatform struct {
	resources map[string][]byte
	opened    []string
}

func (p *memPlatform) Open(name string) (io.ReadCloser, error) {
	b, ok := p.resources[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	p.opened = append(p.opened, name)
	return io.NopCloser(bytes.NewReader(b)), nil
}

func archive(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := ntar.NewWriter(&buf)
	for name, content := range entries {
		require.NoError(t, w.Put(name, []byte(content)))
	}
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func newTestPlatform(t *testing.T) *memPlatform {
	return &memPlatform{resources: map[string][]byte{
		IndexName: []byte("PLATFORM_CLASS_PATH-java.util.zip\nCLASS_PATH-com.example.zip\nCLASS_PATH-com.example.util.zip\n"),
		"PLATFORM_CLASS_PATH-java.util.zip": archive(t, map[string]string{
			"List":      "list",
			"Map":       "map",
			"Map$Entry": "entry",
		}),
		"CLASS_PATH-com.example.zip": archive(t, map[string]string{
			"Greeter": "greeter",
		}),
		"CLASS_PATH-com.example.util.zip": archive(t, map[string]string{
			"Strings": "strings",
		}),
	}}
}

func newTestManager(t *testing.T) (*Manager, *memPlatform) {
	t.Helper()
	p := newTestPlatform(t)
	idx, err := LoadPackageIndex(p)
	require.NoError(t, err)
	p.opened = nil
	return NewManager(p, idx), p
}

func TestPackageIndex(t *testing.T) {
	idx := NewPackageIndex([]string{"CLASS_PATH-a.zip", " CLASS_PATH-b.zip ", "", "PLATFORM_CLASS_PATH-java.lang.zip"})
	assert.Equal(t, 3, idx.Len())
	assert.True(t, idx.Has("CLASS_PATH-b.zip"))
	assert.False(t, idx.Has("CLASS_PATH-c.zip"))
	assert.Equal(t, []string{"a", "b"}, idx.Packages(ClassPath))
	assert.Equal(t, []string{"java.lang"}, idx.Packages(PlatformClassPath))

	var none *PackageIndex
	assert.False(t, none.Has("CLASS_PATH-a.zip"))
	assert.Empty(t, none.Packages(ClassPath))
}

func TestAddSourceAndFileForInput(t *testing.T) {
	m := NewManager(nil, nil)
	src := m.AddSource("Main", "class Main {}")
	assert.Equal(t, "jfo:SOURCE_PATH/SOURCE.Main", src.Name)

	f, err := m.FileForInput(SourcePath, "Main", KindSource)
	require.NoError(t, err)
	assert.Same(t, src, f)
	assert.Equal(t, "class Main {}", f.CharContent())
	assert.True(t, f.IsNameCompatible("Main", KindSource))
	assert.False(t, f.IsNameCompatible("Main", KindClass))

	_, err = m.FileForInput(SourcePath, "Other", KindSource)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLazyPackageLoading(t *testing.T) {
	m, p := newTestManager(t)

	f, err := m.FileForInput(PlatformClassPath, "java.util.List", KindClass)
	require.NoError(t, err)
	assert.Equal(t, "jfo:PLATFORM_CLASS_PATH/CLASS.java.util.List", f.Name)
	assert.Equal(t, []byte("list"), f.Contents())
	assert.Equal(t, "java.util.List", m.InferBinaryName(f))

	_, err = m.FileForInput(PlatformClassPath, "java.util.Map", KindClass)
	require.NoError(t, err)
	assert.Equal(t, []string{"PLATFORM_CLASS_PATH-java.util.zip"}, p.opened, "archive opened once")

	// Not in the index: never opened.
	_, err = m.FileForInput(PlatformClassPath, "java.io.File", KindClass)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, p.opened, 1)

	// Sources never trigger loading.
	_, err = m.FileForInput(SourcePath, "java.util.List", KindClass)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, p.opened, 1)
}

func TestList(t *testing.T) {
	m, _ := newTestManager(t)

	names := func(files []*File) []string {
		var out []string
		for _, f := range files {
			out = append(out, m.InferBinaryName(f))
		}
		return out
	}

	files, err := m.List(PlatformClassPath, "java.util", []Kind{KindClass}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"java.util.List", "java.util.Map", "java.util.Map$Entry"}, names(files))

	files, err = m.List(PlatformClassPath, "java.util", []Kind{KindSource}, false)
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = m.List(ClassPath, "com.example", []Kind{KindClass}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.Greeter"}, names(files))

	_, err = m.List(ClassPath, "com.example.util", []Kind{KindClass}, false)
	require.NoError(t, err)
	files, err = m.List(ClassPath, "com.example", []Kind{KindClass}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.Greeter", "com.example.util.Strings"}, names(files))
}

func TestOutputFiles(t *testing.T) {
	m := NewManager(nil, nil)
	out := m.FileForOutput(ClassOutput, "Main", KindClass)
	assert.Same(t, out, m.FileForOutput(ClassOutput, "Main", KindClass))
	out.SetContents([]byte{0xca, 0xfe})

	got, err := m.FileForInput(ClassOutput, "Main", KindClass)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xca, 0xfe}, got.Contents())

	res := m.ResourceForOutput(ClassOutput, "com.example", "app.properties")
	assert.Equal(t, "fo:CLASS_OUTPUT/com.example/app.properties", res.Name)
	got, err = m.ResourceForInput(ClassOutput, "com.example", "app.properties")
	require.NoError(t, err)
	assert.Same(t, res, got)

	m.Remove(res)
	_, err = m.ResourceForInput(ClassOutput, "com.example", "app.properties")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHasLocation(t *testing.T) {
	m := NewManager(nil, nil)
	for _, loc := range []Location{SourcePath, ClassPath, PlatformClassPath, ClassOutput, AnnotationProcessorPath} {
		assert.True(t, m.HasLocation(loc), loc)
	}
	assert.False(t, m.HasLocation("MODULE_PATH"))
}

func TestMaterialize(t *testing.T) {
	m, _ := newTestManager(t)
	m.AddSource("Main", "class Main {}")
	m.AddSource("com.example.App", "package com.example; class App {}")

	dir := t.TempDir()
	layout, err := m.Materialize(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "src", "Main.java"),
		filepath.Join(dir, "src", "com", "example", "App.java"),
	}, layout.Sources)

	app, err := m.FileForInput(SourcePath, "com.example.App", KindSource)
	require.NoError(t, err)
	assert.Equal(t, layout.Sources[1], layout.Path(app))

	b, err := os.ReadFile(layout.Sources[1])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "package com.example;"))

	b, err = os.ReadFile(filepath.Join(layout.ClassPath, "com", "example", "util", "Strings.class"))
	require.NoError(t, err)
	assert.Equal(t, "strings", string(b))

	_, err = os.Stat(filepath.Join(layout.ClassPath, "java", "util", "List.class"))
	assert.True(t, os.IsNotExist(err), "platform classes are not written")

	info, err := os.Stat(layout.OutputDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDirPlatform(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexName), []byte("CLASS_PATH-x.zip\n"), 0o644))

	idx, err := LoadPackageIndex(DirPlatform(dir))
	require.NoError(t, err)
	assert.True(t, idx.Has("CLASS_PATH-x.zip"))

	_, err = DirPlatform(dir).Open("../secret")
	assert.Error(t, err)
}

func TestCachedPlatform(t *testing.T) {
	p := newTestPlatform(t)
	cached := NewCachedPlatform(p)
	idx, err := LoadPackageIndex(cached)
	require.NoError(t, err)

	for range 2 {
		m := NewManager(cached, idx)
		f, err := m.FileForInput(ClassPath, "com.example.Greeter", KindClass)
		require.NoError(t, err)
		assert.Equal(t, "greeter", string(f.Contents()))
	}
	assert.Equal(t, []string{IndexName, "CLASS_PATH-com.example.zip"}, p.opened)

	_, err = cached.Open("missing.zip")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
