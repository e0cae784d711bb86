// Package diag holds the compiler diagnostic model shared by the fragment
// generator, the compiler backends and the transports.
package diag

import (
	"fmt"
	"sort"
)

// NoPos marks an unknown position, line or column.
const NoPos = -1

// Kind is the severity of a diagnostic.
type Kind uint8

const (
	KindError Kind = iota
	KindWarning
	KindNote
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "ERROR"
	case KindWarning:
		return "WARNING"
	case KindNote:
		return "NOTE"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindError, KindWarning, KindNote:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("diag: invalid kind %d", k)
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ERROR":
		*k = KindError
	case "WARNING", "MANDATORY_WARNING":
		*k = KindWarning
	case "NOTE", "OTHER":
		*k = KindNote
	default:
		return fmt.Errorf("diag: unknown kind %q", text)
	}
	return nil
}

// JavacKind is the richer kind enumeration reported by javac.
type JavacKind uint8

const (
	JavacError JavacKind = iota
	JavacWarning
	JavacMandatoryWarning
	JavacNote
	JavacOther
)

// KindOf collapses a javac kind into a Kind.
func KindOf(k JavacKind) Kind {
	switch k {
	case JavacError:
		return KindError
	case JavacWarning, JavacMandatoryWarning:
		return KindWarning
	case JavacNote, JavacOther:
		return KindNote
	}
	panic(fmt.Sprintf("diag: unknown javac kind %d", k))
}

// Diagnostic is a single compiler message. Offsets are character offsets
// into the text the diagnostic refers to; any of them may be NoPos.
type Diagnostic struct {
	Kind          Kind   `json:"kind" msgpack:"kind"`
	Position      int    `json:"position" msgpack:"position"`
	StartPosition int    `json:"startPosition" msgpack:"startPosition"`
	EndPosition   int    `json:"endPosition" msgpack:"endPosition"`
	LineNumber    int    `json:"lineNumber" msgpack:"lineNumber"`
	ColumnNumber  int    `json:"columnNumber" msgpack:"columnNumber"`
	Code          string `json:"code" msgpack:"code"`
	Message       string `json:"message" msgpack:"message"`
}

func (d Diagnostic) String() string {
	if d.LineNumber == NoPos {
		return fmt.Sprintf("@%d: %s: %s", d.Position, d.Kind, d.Message)
	}
	return fmt.Sprintf("%d:%d: %s: %s", d.LineNumber, d.ColumnNumber, d.Kind, d.Message)
}

// Listener receives diagnostics as they are produced.
type Listener interface {
	Report(d Diagnostic)
}

type ListenerFunc func(d Diagnostic)

func (f ListenerFunc) Report(d Diagnostic) {
	f(d)
}

// Collector is a Listener that keeps every diagnostic it receives.
type Collector struct {
	diagnostics []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.diagnostics = append(c.diagnostics, d)
}

// Diagnostics returns the collected diagnostics in report order. The
// result is never nil.
func (c *Collector) Diagnostics() []Diagnostic {
	if c.diagnostics == nil {
		return []Diagnostic{}
	}
	return c.diagnostics
}

// HasErrors reports whether any collected diagnostic is an error.
func (c *Collector) HasErrors() bool {
	for _, d := range c.diagnostics {
		if d.Kind == KindError {
			return true
		}
	}
	return false
}

// Lines indexes the line starts of a text so offsets can be turned into
// 1-based line and column numbers.
type Lines struct {
	starts []int
	size   int
}

func NewLines(text []rune) *Lines {
	l := &Lines{starts: []int{0}, size: len(text)}
	for i, c := range text {
		if c == '\n' {
			l.starts = append(l.starts, i+1)
		}
	}
	return l
}

// LineColumn returns the 1-based line and column of offset, or NoPos
// twice if offset lies outside the text.
func (l *Lines) LineColumn(offset int) (line, column int) {
	if offset < 0 || offset > l.size {
		return NoPos, NoPos
	}
	i := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset }) - 1
	return i + 1, offset - l.starts[i] + 1
}

// Offset is the inverse of LineColumn. Columns past the end of a line are
// clamped to the line end.
func (l *Lines) Offset(line, column int) int {
	if line < 1 || line > len(l.starts) || column < 1 {
		return NoPos
	}
	end := l.size
	if line < len(l.starts) {
		end = l.starts[line] - 1
	}
	return min(l.starts[line-1]+column-1, end)
}

// Locate fills in the line and column of d from its position against the
// text the position refers to.
func Locate(d Diagnostic, lines *Lines) Diagnostic {
	d.LineNumber, d.ColumnNumber = lines.LineColumn(d.Position)
	return d
}
