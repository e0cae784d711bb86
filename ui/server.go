// Package ui serves compile and completion requests over HTTP, together
// with a minimal editor page.
package ui

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"mime"
	"net/http"

	"github.com/dhamidi/codeonline/compiler"
	"github.com/dhamidi/codeonline/java/diag"
	"github.com/dhamidi/codeonline/worker"
	"github.com/tliron/commonlog"
	"github.com/vmihailenco/msgpack/v5"
)

//go:embed static templates
var embeddedFS embed.FS

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"

	maxRequestSize = 1 << 20
)

type Server struct {
	queue     *worker.Queue
	templates *template.Template
	mux       *http.ServeMux
	defaults  PageDefaults
}

// PageDefaults prefill the editor page.
type PageDefaults struct {
	Imports string
	Name    string
}

// NewServer answers requests through queue, one at a time.
func NewServer(queue *worker.Queue, defaults PageDefaults) (*Server, error) {
	tmpl, err := template.ParseFS(mustSub(embeddedFS, "templates"), "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		queue:     queue,
		templates: tmpl,
		mux:       http.NewServeMux(),
		defaults:  defaults,
	}
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(mustSub(embeddedFS, "static")))))
	s.mux.HandleFunc("POST /api/request", s.handleRequest)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", s.defaults); err != nil {
		commonlog.GetLogger("codeonline.ui").Errorf("render index: %s", err)
	}
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	log := commonlog.GetLogger("codeonline.ui")

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-msgpack" {
		mediaType = contentTypeMsgpack
	}
	if mediaType != contentTypeJSON && mediaType != contentTypeMsgpack {
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestSize))
	if err != nil {
		http.Error(w, "failed to read request: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	var req *compiler.Request
	if mediaType == contentTypeJSON {
		req, err = compiler.ParseRequest(body)
	} else {
		req, err = compiler.DecodeMsgpack(body)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := s.do(r.Context(), req)
	if err != nil {
		log.Warningf("request %s abandoned: %s", req.Name, err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if result, ok := resp.(*compiler.CompilationResult); ok {
		resp = locate(result, req.Source)
	}

	var out []byte
	if mediaType == contentTypeJSON {
		out, err = json.Marshal(resp)
	} else {
		out, err = msgpack.Marshal(resp)
	}
	if err != nil {
		http.Error(w, "failed to encode response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", mediaType)
	w.Write(out)
}

// do queues req and waits for its response or for ctx to end. An
// abandoned request still runs; its response is dropped.
func (s *Server) do(ctx context.Context, req *compiler.Request) (compiler.Response, error) {
	done := make(chan compiler.Response, 1)
	s.queue.Enqueue(req, func(resp compiler.Response) { done <- resp })
	select {
	case resp := <-done:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// locate returns result with line and column filled in against the
// page's source for diagnostics that carry only a position. Fragment
// diagnostics never carry a line of their own.
func locate(result *compiler.CompilationResult, source string) *compiler.CompilationResult {
	var lines *diag.Lines
	located := &compiler.CompilationResult{Success: result.Success, Diagnostics: make([]diag.Diagnostic, len(result.Diagnostics))}
	for i, d := range result.Diagnostics {
		if d.LineNumber == diag.NoPos && d.Position != diag.NoPos {
			if lines == nil {
				lines = diag.NewLines([]rune(source))
			}
			d = diag.Locate(d, lines)
		}
		located.Diagnostics[i] = d
	}
	return located
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
