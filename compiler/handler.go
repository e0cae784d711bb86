package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dhamidi/codeonline/files"
	"github.com/dhamidi/codeonline/java/diag"
	"github.com/dhamidi/codeonline/java/fragment"
	"github.com/tliron/commonlog"
	"github.com/vmihailenco/msgpack/v5"
)

// Compiler compiles and completes the single source file of a file
// manager. Offsets refer to the file's contents.
type Compiler interface {
	Compile(ctx context.Context, fm *files.Manager, file *files.File, l diag.Listener) (bool, error)
	Complete(ctx context.Context, fm *files.Manager, file *files.File, offset int) ([]CompletionItem, error)
}

// Handler serves requests with a Compiler. Every request gets its own
// file manager; the package index is shared.
type Handler struct {
	compiler Compiler
	platform files.Platform
	index    *files.PackageIndex
}

func NewHandler(c Compiler, platform files.Platform, index *files.PackageIndex) *Handler {
	return &Handler{compiler: c, platform: platform, index: index}
}

// Handle runs req. Failures of the compiler and broken offset bookkeeping
// are logged and reported as an unsuccessful response; Handle never
// returns nil.
func (h *Handler) Handle(ctx context.Context, req *Request) (resp Response) {
	log := commonlog.GetLogger("codeonline.compiler")
	defer func() {
		if r := recover(); r != nil {
			var offErr *fragment.OffsetError
			err, ok := r.(error)
			if !ok || !errors.As(err, &offErr) {
				panic(r)
			}
			log.Errorf("request %s: %s", req.Name, offErr)
			resp = failure(req)
		}
	}()

	resp, err := h.handle(ctx, req)
	if err != nil {
		log.Errorf("request %s: %s", req.Name, err)
		return failure(req)
	}
	return resp
}

func (h *Handler) handle(ctx context.Context, req *Request) (Response, error) {
	source := req.Source
	var generated *fragment.Generated
	if !req.Full {
		generated = fragment.Generate(req.Source, req.Imports)
		source = generated.Text()
	}

	fm := files.NewManager(h.platform, h.index)
	fm.AddSource(req.Name, source)
	file, err := fm.FileForInput(files.SourcePath, req.Name, files.KindSource)
	if err != nil {
		return nil, err
	}

	if !req.IsCompletion() {
		var collector diag.Collector
		var listener diag.Listener = &collector
		if generated != nil {
			listener = generated.DiagsConverter(listener)
		}
		ok, err := h.compiler.Compile(ctx, fm, file, listener)
		if err != nil {
			return nil, fmt.Errorf("compile: %w", err)
		}
		return &CompilationResult{Success: ok, Diagnostics: collector.Diagnostics()}, nil
	}

	offset := req.CompletionOffset
	if generated != nil {
		offset = generated.GenOffsetFromOrig(offset)
	}
	items, err := h.compiler.Complete(ctx, fm, file, offset)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	if items == nil {
		items = []CompletionItem{}
	}
	return &CompletionList{Success: true, Items: items}, nil
}

// HandleJSON decodes a JSON request, handles it and encodes the response.
// A request that cannot be decoded yields an unsuccessful compilation
// result.
func (h *Handler) HandleJSON(ctx context.Context, data []byte) []byte {
	var resp Response
	req, err := ParseRequest(data)
	if err != nil {
		commonlog.GetLogger("codeonline.compiler").Errorf("%s", err)
		resp = failure(nil)
	} else {
		resp = h.Handle(ctx, req)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		// Only reachable with a diagnostic kind outside the enumeration.
		panic(err)
	}
	return out
}

// DecodeMsgpack decodes a msgpack request and validates it. Missing
// fields take the same defaults as in ParseRequest.
func DecodeMsgpack(data []byte) (*Request, error) {
	req := NewRequest("")
	if err := msgpack.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
