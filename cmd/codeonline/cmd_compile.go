package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dhamidi/codeonline/compiler"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

// errCompileFailed is returned when the compiler reports errors. The
// diagnostics have been printed already.
var errCompileFailed = errors.New("compilation failed")

type compileOptions struct {
	full    bool
	imports string
	name    string
	watch   bool
}

func newCompileCmd(g *globals) *cobra.Command {
	var opts compileOptions

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a fragment and print its diagnostics",
		Long: `Compile a fragment with javac and print the diagnostics against the
fragment's own lines and columns.

With --full the file is compiled as a complete compilation unit. With
--watch the file is compiled again whenever it changes, until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("imports") {
				opts.imports = g.cfg.Fragment.Imports
			}
			if !cmd.Flags().Changed("name") {
				opts.name = g.cfg.Fragment.Name
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := newHandler(g.cfg)
			if opts.watch {
				return watchCompile(ctx, cmd.OutOrStdout(), handler, args[0], opts)
			}
			return compileFile(ctx, cmd.OutOrStdout(), handler, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.full, "full", false, "compile the file as a complete compilation unit")
	cmd.Flags().StringVar(&opts.imports, "imports", "", "imports injected after the header (default from configuration)")
	cmd.Flags().StringVar(&opts.name, "name", compiler.DefaultName, "name of the compilation unit")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "recompile whenever the file changes")

	return cmd
}

func compileFile(ctx context.Context, w io.Writer, handler *compiler.Handler, path string, opts compileOptions) error {
	src, err := readSource(path)
	if err != nil {
		return err
	}
	req := compiler.NewRequest(src)
	req.Full = opts.full
	req.Imports = opts.imports
	if opts.name != "" {
		req.Name = opts.name
	}
	if err := req.Validate(); err != nil {
		return err
	}

	result, ok := handler.Handle(ctx, req).(*compiler.CompilationResult)
	if !ok {
		return fmt.Errorf("unexpected response for %s", path)
	}
	renderDiagnostics(w, path, src, result.Diagnostics)
	if s := summary(result.Diagnostics); s != "" {
		fmt.Fprintln(w, s)
	}
	if !result.Success {
		return errCompileFailed
	}
	return nil
}

// watchCompile compiles path once and again after every change to it.
// Editors often replace a file instead of writing it, so the directory is
// watched and events are debounced.
func watchCompile(ctx context.Context, w io.Writer, handler *compiler.Handler, path string, opts compileOptions) error {
	log := commonlog.GetLogger("codeonline.cli")

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(abs), err)
	}

	compile := func() {
		fmt.Fprintln(w, locColor.Sprintf("== %s (%s)", path, time.Now().Format(time.TimeOnly)))
		if err := compileFile(ctx, w, handler, path, opts); err != nil && !errors.Is(err, errCompileFailed) {
			fmt.Fprintln(w, errorColor.Sprint("error:"), err)
		}
	}
	compile()

	const debounceDelay = 200 * time.Millisecond
	debounce := time.NewTimer(debounceDelay)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if event.Name != abs || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			log.Debugf("detected change: %s (%s)", event.Name, event.Op)
			debounce.Reset(debounceDelay)
		case <-debounce.C:
			compile()
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			log.Warningf("watcher error: %s", err)
		}
	}
}
