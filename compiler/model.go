// Package compiler defines the request and response records exchanged with
// front ends, and the Handler that turns a request into a compiler
// invocation over a synthesized compilation unit.
package compiler

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dhamidi/codeonline/java/diag"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// NoCompletion is the completion offset of a compile-only request.
const NoCompletion = -1

// DefaultName is used for requests that do not name their compilation
// unit.
const DefaultName = "Main"

type Request struct {
	Source           string `json:"source" msgpack:"source"`
	Imports          string `json:"imports" msgpack:"imports"`
	Full             bool   `json:"full" msgpack:"full"`
	Name             string `json:"name" msgpack:"name"`
	CompletionOffset int    `json:"completionOffset" msgpack:"completionOffset"`
}

// NewRequest returns a compile-only request for source.
func NewRequest(source string) *Request {
	return &Request{Source: source, Name: DefaultName, CompletionOffset: NoCompletion}
}

func (r *Request) IsCompletion() bool {
	return r.CompletionOffset != NoCompletion
}

// Response is either a *CompilationResult or a *CompletionList.
type Response interface {
	Succeeded() bool
	response()
}

type CompilationResult struct {
	Success     bool              `json:"success" msgpack:"success"`
	Diagnostics []diag.Diagnostic `json:"diagnostics" msgpack:"diagnostics"`
}

func (r *CompilationResult) Succeeded() bool { return r.Success }
func (*CompilationResult) response()         {}

type CompletionItem struct {
	Text        string `json:"text" msgpack:"text"`
	DisplayText string `json:"displayText" msgpack:"displayText"`
	ClassName   string `json:"className" msgpack:"className"`
}

// Completion item categories.
const (
	ClassKeyword    = "keyword"
	ClassClass      = "class"
	ClassPackage    = "package"
	ClassMethod     = "method"
	ClassField      = "field"
	ClassIdentifier = "identifier"
)

type CompletionList struct {
	Success bool             `json:"success" msgpack:"success"`
	Items   []CompletionItem `json:"items" msgpack:"items"`
}

func (l *CompletionList) Succeeded() bool { return l.Success }
func (*CompletionList) response()         {}

// failure returns the unsuccessful response matching req.
func failure(req *Request) Response {
	if req != nil && req.IsCompletion() {
		return &CompletionList{Items: []CompletionItem{}}
	}
	return &CompilationResult{Diagnostics: []diag.Diagnostic{}}
}

//go:embed request.schema.json
var requestSchemaJSON []byte

const requestSchemaURL = "https://codeonline.invalid/request.schema.json"

var requestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(requestSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(requestSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add request schema: %w", err)
	}
	return c.Compile(requestSchemaURL)
})

func validate(data []byte) error {
	schema, err := requestSchema()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid request JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// ParseRequest decodes and validates a JSON request. Missing fields take
// their defaults: no completion and the name DefaultName.
func ParseRequest(data []byte) (*Request, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	req := NewRequest("")
	if err := json.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if req.Name == "" {
		req.Name = DefaultName
	}
	return req, nil
}

// Validate checks a request that was decoded from another encoding
// against the same schema ParseRequest uses. An empty name is replaced by
// DefaultName first.
func (r *Request) Validate() error {
	if r.Name == "" {
		r.Name = DefaultName
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return validate(data)
}
