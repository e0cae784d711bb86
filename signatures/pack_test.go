package signatures

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/codeonline/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJar(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for entry, content := range entries {
		w, err := zw.Create(entry)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestReadJar(t *testing.T) {
	path := writeJar(t, t.TempDir(), "lib.jar", map[string]string{
		"META-INF/MANIFEST.MF":            "Manifest-Version: 1.0\n",
		"com/example/Greeter.class":       "greeter",
		"com/example/Greeter$Inner.class": "inner",
		"Top.class":                       "top",
		"com/example/":                    "",
	})
	b, err := os.ReadFile(path)
	require.NoError(t, err)

	packages, err := ReadJar(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	assert.Equal(t, Packages{
		"com.example": {"Greeter": []byte("greeter"), "Greeter$Inner": []byte("inner")},
		"":            {"Top": []byte("top")},
	}, packages)
}

func TestReadPlatform(t *testing.T) {
	dir := t.TempDir()
	ctSym := writeJar(t, dir, "ct.jar", map[string]string{
		"META-INF/ct.sym/8/java.base/java/lang/Object.class": "object",
		"META-INF/ct.sym/9/java.base/java/lang/Module.class": "module",
		"META-INF/ct.sym/78/java.base/java/util/List.class":  "list",
	})
	b, err := os.ReadFile(ctSym)
	require.NoError(t, err)
	packages, err := ReadPlatform(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	assert.Equal(t, Packages{
		"java.lang": {"Object": []byte("object")},
		"java.util": {"List": []byte("list")},
	}, packages)

	// A plain jar is read entry by entry.
	rt := writeJar(t, dir, "rt.jar", map[string]string{"java/lang/String.class": "string"})
	b, err = os.ReadFile(rt)
	require.NoError(t, err)
	packages, err = ReadPlatform(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	assert.Equal(t, Packages{"java.lang": {"String": []byte("string")}}, packages)
}

func TestPack(t *testing.T) {
	jars := t.TempDir()
	platform := writeJar(t, jars, "rt.jar", map[string]string{
		"java/lang/String.class": "string",
		"java/util/List.class":   "list",
	})
	first := writeJar(t, jars, "a.jar", map[string]string{
		"com/example/Greeter.class": "greeter from a",
	})
	second := writeJar(t, jars, "b.jar", map[string]string{
		"com/example/Greeter.class": "greeter from b",
		"org/util/Strings.class":    "strings",
	})

	out := filepath.Join(t.TempDir(), "signatures")
	index, err := Pack(context.Background(), out, platform, []string{first, second})
	require.NoError(t, err)
	want := []string{
		"PLATFORM_CLASS_PATH-java.lang.zip",
		"PLATFORM_CLASS_PATH-java.util.zip",
		"CLASS_PATH-com.example.zip",
		"CLASS_PATH-org.util.zip",
	}
	assert.Equal(t, want, index)

	b, err := os.ReadFile(filepath.Join(out, files.IndexName))
	require.NoError(t, err)
	assert.Equal(t, strings.Join(want, "\n")+"\n", string(b))

	// The archives load back through a file manager.
	idx, err := files.LoadPackageIndex(files.DirPlatform(out))
	require.NoError(t, err)
	fm := files.NewManager(files.DirPlatform(out), idx)

	f, err := fm.FileForInput(files.ClassPath, "com.example.Greeter", files.KindClass)
	require.NoError(t, err)
	assert.Equal(t, "greeter from a", string(f.Contents()))

	f, err = fm.FileForInput(files.PlatformClassPath, "java.util.List", files.KindClass)
	require.NoError(t, err)
	assert.Equal(t, "list", string(f.Contents()))
}

func TestPackMissingJar(t *testing.T) {
	_, err := Pack(context.Background(), t.TempDir(), "", []string{filepath.Join(t.TempDir(), "missing.jar")})
	assert.Error(t, err)
}
