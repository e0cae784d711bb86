// Package lsp is a language server for fragment documents. Files ending
// in .jfrag are compiled as fragments; .java files are compiled as they
// are. Diagnostics are published after every change and completion is
// served through the same single worker.
package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhamidi/codeonline/compiler"
	"github.com/dhamidi/codeonline/worker"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const (
	lsName         = "codeonline"
	FragmentSuffix = ".jfrag"
)

// Options configure how documents become requests.
type Options struct {
	Imports string
	Name    string
	Version string
}

type document struct {
	uri     string
	text    string
	version protocol.Integer
	// queued is the compile task for this document that has not been
	// sent yet, if any, and pending the request it will carry.
	queued  *worker.Task
	pending *pendingRequest
}

type pendingRequest struct {
	req     *compiler.Request
	version protocol.Integer
}

type Server struct {
	queue   *worker.Queue
	options Options

	handler protocol.Handler
	server  *server.Server

	mu   sync.Mutex
	docs map[string]*document
}

func NewServer(queue *worker.Queue, options Options) *Server {
	ls := &Server{
		queue:   queue,
		options: options,
		docs:    make(map[string]*document),
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}
	ls.server = server.NewServer(&ls.handler, lsName, false)
	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.options.Version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	ls.queue.Wait()
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx.Notify, params.TextDocument.URI, params.TextDocument.Version, params.TextDocument.Text)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.update(ctx.Notify, params.TextDocument.URI, params.TextDocument.Version, whole.Text)
	}
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text == nil {
		return nil
	}
	ls.mu.Lock()
	version := protocol.Integer(0)
	if doc, ok := ls.docs[params.TextDocument.URI]; ok {
		version = doc.version
	}
	ls.mu.Unlock()
	ls.update(ctx.Notify, params.TextDocument.URI, version, *params.Text)
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.docs, params.TextDocument.URI)
	ls.mu.Unlock()
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// request builds the request for a document's text.
func (ls *Server) request(uri, text string) *compiler.Request {
	req := compiler.NewRequest(text)
	req.Name = ls.options.Name
	req.Imports = ls.options.Imports
	if !strings.HasSuffix(uri, FragmentSuffix) {
		req.Full = true
		if name := strings.TrimSuffix(filepath.Base(uriToPath(uri)), ".java"); isJavaName(name) {
			req.Name = name
		}
	}
	if req.Name == "" {
		req.Name = compiler.DefaultName
	}
	return req
}

// update records the new text of a document and schedules a compile. A
// compile of the same document that is still queued is replaced instead.
func (ls *Server) update(notify glsp.NotifyFunc, uri string, version protocol.Integer, text string) {
	req := ls.request(uri, text)

	ls.mu.Lock()
	defer ls.mu.Unlock()
	doc, ok := ls.docs[uri]
	if !ok {
		doc = &document{uri: uri}
		ls.docs[uri] = doc
	}
	doc.text = text
	doc.version = version

	if doc.queued != nil && doc.queued.Update(req) == nil {
		doc.pending.req = req
		doc.pending.version = version
		return
	}

	pending := &pendingRequest{req: req, version: version}
	doc.pending = pending
	doc.queued = ls.queue.Enqueue(req, func(resp compiler.Response) {
		ls.mu.Lock()
		sent := pending.req
		sentVersion := pending.version
		if doc.pending == pending {
			doc.queued = nil
			doc.pending = nil
		}
		open := ls.docs[uri] == doc
		ls.mu.Unlock()

		// A closed document keeps the empty list published on close.
		result, ok := resp.(*compiler.CompilationResult)
		if !ok || !open {
			return
		}
		notify(protocol.ServerTextDocumentPublishDiagnostics, publishParams(uri, sentVersion, sent.Source, result))
	})
}

func (ls *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	ls.mu.Lock()
	doc, ok := ls.docs[params.TextDocument.URI]
	var text string
	if ok {
		text = doc.text
	}
	ls.mu.Unlock()
	if !ok {
		return nil, nil
	}

	req := ls.request(params.TextDocument.URI, text)
	req.CompletionOffset = offsetOf(text, params.Position)

	done := make(chan compiler.Response, 1)
	ls.queue.Enqueue(req, func(resp compiler.Response) { done <- resp })
	list, ok := (<-done).(*compiler.CompletionList)
	if !ok || !list.Success {
		commonlog.GetLogger("codeonline.lsp").Debugf("no completions for %s", params.TextDocument.URI)
		return nil, nil
	}
	items := make([]protocol.CompletionItem, 0, len(list.Items))
	for _, item := range list.Items {
		kind := completionKind(item.ClassName)
		detail := item.DisplayText
		items = append(items, protocol.CompletionItem{
			Label:  item.Text,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items, nil
}

func completionKind(className string) protocol.CompletionItemKind {
	switch className {
	case compiler.ClassKeyword:
		return protocol.CompletionItemKindKeyword
	case compiler.ClassClass:
		return protocol.CompletionItemKindClass
	case compiler.ClassPackage:
		return protocol.CompletionItemKindModule
	case compiler.ClassMethod:
		return protocol.CompletionItemKindMethod
	case compiler.ClassField:
		return protocol.CompletionItemKindField
	case compiler.ClassIdentifier:
		return protocol.CompletionItemKindVariable
	default:
		return protocol.CompletionItemKindText
	}
}

func isJavaName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		if c != '_' && c != '$' && !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		if parsed, err := url.Parse(uri); err == nil {
			return filepath.Clean(parsed.Path)
		}
	}
	return uri
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
