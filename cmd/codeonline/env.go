package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/codeonline/compiler"
	"github.com/dhamidi/codeonline/compiler/javac"
	"github.com/dhamidi/codeonline/config"
	"github.com/dhamidi/codeonline/files"
	"github.com/dhamidi/codeonline/worker"
	"github.com/tliron/commonlog"
)

// newHandler builds the request handler described by cfg. A missing
// package index leaves the class path empty; javac still sees the JDK.
func newHandler(cfg *config.Config) *compiler.Handler {
	log := commonlog.GetLogger("codeonline.cli")

	c := &javac.Compiler{
		Javac:   cfg.Compiler.Javac,
		Release: cfg.Compiler.Release,
		Options: cfg.Compiler.Options,
		Timeout: cfg.Compiler.Timeout.Duration,
	}
	dir := cfg.Resolve(cfg.ClassPath.Archives)
	platform := files.NewCachedPlatform(files.DirPlatform(dir))
	index, err := files.LoadPackageIndex(platform)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Infof("no package archives in %s", dir)
		} else {
			log.Warningf("%s", err)
		}
		index = files.NewPackageIndex(nil)
	} else {
		log.Debugf("found %d package archives in %s", index.Len(), dir)
	}
	return compiler.NewHandler(c, platform, index)
}

// newQueue starts a worker serving requests with cfg's handler.
func newQueue(ctx context.Context, cfg *config.Config) *worker.Queue {
	return worker.New(ctx, newHandler(cfg).Handle)
}

// newRequest returns a request for src with the configured defaults.
func newRequest(cfg *config.Config, src string) *compiler.Request {
	req := compiler.NewRequest(src)
	req.Imports = cfg.Fragment.Imports
	if cfg.Fragment.Name != "" {
		req.Name = cfg.Fragment.Name
	}
	return req
}

// readSource reads the named file, or stdin for "-".
func readSource(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
