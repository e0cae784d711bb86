// Package javac implements compiler.Compiler with the JDK's javac
// binary. The file manager is written to a temporary directory, javac
// compiles the requested source there, and its output is parsed back into
// diagnostics against the source text.
package javac

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dhamidi/codeonline/files"
	"github.com/dhamidi/codeonline/java/diag"
	"github.com/tliron/commonlog"
)

type Compiler struct {
	// Javac is the binary to run, "javac" if empty.
	Javac string
	// Release is passed as --release unless empty.
	Release string
	Options []string
	// Timeout bounds a single javac run; zero means no limit.
	Timeout time.Duration
	// TempDir is where work directories are created, os.TempDir() if
	// empty.
	TempDir string
}

func (c *Compiler) binary() string {
	if c.Javac == "" {
		return "javac"
	}
	return c.Javac
}

func (c *Compiler) args(layout *files.Layout, source string) []string {
	args := []string{
		"-encoding", "UTF-8",
		"-Xmaxerrs", "1000",
		"-d", layout.OutputDir,
		"-cp", layout.ClassPath,
		"-implicit:none",
	}
	if c.Release != "" {
		args = append(args, "--release", c.Release)
	}
	args = append(args, c.Options...)
	return append(args, source)
}

// Compile writes fm to a work directory and compiles file with javac.
// Diagnostics are reported against file's contents. The result is false
// when javac reports errors; err is only set when javac could not be run
// or failed without reporting any error.
func (c *Compiler) Compile(ctx context.Context, fm *files.Manager, file *files.File, l diag.Listener) (bool, error) {
	log := commonlog.GetLogger("codeonline.javac")

	dir, err := os.MkdirTemp(c.TempDir, "codeonline-")
	if err != nil {
		return false, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(dir)

	layout, err := fm.Materialize(ctx, dir)
	if err != nil {
		return false, err
	}
	source := layout.Path(file)
	if source == "" {
		return false, fmt.Errorf("%s is not a source file", file.Name)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary(), c.args(layout, source)...)
	cmd.Dir = dir
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	runErr := cmd.Run()
	log.Debugf("%s finished in %s", c.binary(), time.Since(start))

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return false, fmt.Errorf("failed to run %s: %w", c.binary(), runErr)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, fmt.Errorf("%s: %w", c.binary(), ctxErr)
	}

	var collector diag.Collector
	parseOutput(output.String(), source, []rune(file.CharContent()), &collector)
	for _, d := range collector.Diagnostics() {
		l.Report(d)
	}

	if runErr == nil {
		return true, nil
	}
	if !collector.HasErrors() {
		return false, fmt.Errorf("%s exited with status %d: %s", c.binary(), exitErr.ExitCode(), firstLine(output.String()))
	}
	return false, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
