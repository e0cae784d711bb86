// Package config loads codeonline.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const FileName = "codeonline.toml"

type Config struct {
	// Path is the file the configuration was read from, "" for defaults.
	Path string `toml:"-"`
	// Root is the directory relative paths are resolved against.
	Root string `toml:"-"`

	Compiler  CompilerConfig  `toml:"compiler"`
	ClassPath ClassPathConfig `toml:"classpath"`
	Fragment  FragmentConfig  `toml:"fragment"`
	Server    ServerConfig    `toml:"server"`
}

type CompilerConfig struct {
	Javac   string   `toml:"javac"`
	Release string   `toml:"release"`
	Options []string `toml:"options"`
	Timeout Duration `toml:"timeout"`
}

type ClassPathConfig struct {
	// Archives is the directory holding the package index and archives.
	Archives string `toml:"archives"`
	// Libs is where downloaded jars go.
	Libs string `toml:"libs"`
}

type FragmentConfig struct {
	Imports string `toml:"imports"`
	Name    string `toml:"name"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() *Config {
	return &Config{
		Root: ".",
		Compiler: CompilerConfig{
			Javac:   "javac",
			Release: "8",
			Timeout: Duration{30 * time.Second},
		},
		ClassPath: ClassPathConfig{
			Archives: "signatures",
			Libs:     "lib",
		},
		Fragment: FragmentConfig{
			Imports: "import java.util.*;\n",
			Name:    "Main",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// Find looks for codeonline.toml in startDir and its parents.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load reads the configuration found from the working directory, or the
// defaults if there is none.
func Load() (*Config, error) {
	return LoadFrom(".")
}

func LoadFrom(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults. Keys missing from the file keep
// their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

// Resolve makes path relative to the configuration's directory unless it
// is absolute.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Root, path)
}
