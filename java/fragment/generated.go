package fragment

import (
	"fmt"
	"sort"

	"github.com/dhamidi/codeonline/java/diag"
	"github.com/tliron/commonlog"
)

// Boilerplate placed around the classified ranges. Local statements go
// into the body of a synthetic method, members into the synthetic class.
const (
	WrapperClass = "_CodeOnlineMain"
	WrapperOpen  = "\nclass " + WrapperClass + " { void main() {\n"
	WrapperClose = "\n}\n"
	OuterClose   = "\n}\n"
)

// OffsetError is the panic value of GenOffsetFromOrig when asked for an
// offset outside the original fragment.
type OffsetError struct {
	Offset int
	Size   int
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("fragment: offset %d outside fragment of length %d", e.Offset, e.Size)
}

// Generated is a compilation unit synthesized around a fragment, together
// with the tables mapping offsets between the two texts.
type Generated struct {
	source []rune
	out    []rune

	// starts[i] is the generated offset at which ranges[i] was emitted.
	// Entries are in emission order, so starts is sorted.
	starts []int
	ranges []SourceRange
	// tail is the index of the range that also contains its own end.
	tail int

	classification *Classification
}

// Generate classifies src and synthesizes a compilation unit from it:
// header statements, imports, type declarations, a wrapper class whose
// method holds the local statements, then the member declarations.
// If src cannot be classified, the unit is src verbatim.
func Generate(src, imports string) *Generated {
	chars := []rune(src)
	cls, err := Classify(chars)
	if err != nil {
		commonlog.GetLogger("codeonline.fragment").Debugf("compiling fragment verbatim: %s", err)
		return verbatim(chars)
	}
	importChars := []rune(imports)

	g := &Generated{
		source:         chars,
		out:            make([]rune, 0, len(chars)+len(importChars)+len(WrapperOpen)+len(WrapperClose)+len(OuterClose)),
		starts:         make([]int, 0, len(cls.Segments)+1),
		ranges:         make([]SourceRange, 0, len(cls.Segments)+1),
		classification: cls,
	}
	g.addAll(cls.Ranges(ScopeHeader))
	g.out = append(g.out, importChars...)
	g.addAll(cls.Ranges(ScopeGlobal))
	g.out = append(g.out, []rune(WrapperOpen)...)
	g.addAll(cls.Ranges(ScopeLocal))
	g.out = append(g.out, []rune(WrapperClose)...)
	g.addAll(cls.Ranges(ScopeMember))
	g.out = append(g.out, []rune(OuterClose)...)
	g.tail = len(g.ranges)
	g.add(cls.Tail)
	return g
}

func verbatim(chars []rune) *Generated {
	return &Generated{
		source: chars,
		out:    chars,
		starts: []int{0},
		ranges: []SourceRange{{Start: 0, End: len(chars)}},
	}
}

func (g *Generated) add(r SourceRange) {
	g.starts = append(g.starts, len(g.out))
	g.ranges = append(g.ranges, r)
	g.out = append(g.out, g.source[r.Start:r.End]...)
}

func (g *Generated) addAll(ranges []SourceRange) {
	for _, r := range ranges {
		g.add(r)
	}
}

// Text returns the synthesized compilation unit.
func (g *Generated) Text() string {
	return string(g.out)
}

// Runes returns the synthesized compilation unit. The slice must not be
// modified.
func (g *Generated) Runes() []rune {
	return g.out
}

// Classification returns the classifier result the unit was built from,
// or nil if the fragment was used verbatim.
func (g *Generated) Classification() *Classification {
	return g.classification
}

// Verbatim reports whether classification failed and the fragment was
// used as is.
func (g *Generated) Verbatim() bool {
	return g.classification == nil
}

// GenOffsetFromOrig maps an offset in the fragment to the synthesized
// unit. Offsets from 0 to the fragment length inclusive are valid; any
// other offset is a caller bug and panics with *OffsetError.
func (g *Generated) GenOffsetFromOrig(offset int) int {
	for i, r := range g.ranges {
		if r.Contains(offset) || (i == g.tail && offset == r.End) {
			return g.starts[i] + offset - r.Start
		}
	}
	panic(&OffsetError{Offset: offset, Size: len(g.source)})
}

// OrigOffsetFromGen maps an offset in the synthesized unit back to the
// fragment. Offsets inside boilerplate map to the end of the preceding
// range, or to 0 before the first one.
func (g *Generated) OrigOffsetFromGen(offset int) int {
	i := sort.Search(len(g.starts), func(i int) bool { return g.starts[i] > offset }) - 1
	if i < 0 {
		return 0
	}
	r := g.ranges[i]
	return min(r.Start+offset-g.starts[i], r.End)
}

func (g *Generated) origPosition(offset int) int {
	if offset == diag.NoPos {
		return diag.NoPos
	}
	return g.OrigOffsetFromGen(offset)
}

// ConvertDiagnostic rewrites the positions of a diagnostic reported
// against the synthesized unit into fragment offsets. Line and column are
// unknown afterwards; recompute them against the fragment if needed.
func (g *Generated) ConvertDiagnostic(d diag.Diagnostic) diag.Diagnostic {
	d.Position = g.origPosition(d.Position)
	d.StartPosition = g.origPosition(d.StartPosition)
	d.EndPosition = g.origPosition(d.EndPosition)
	d.LineNumber = diag.NoPos
	d.ColumnNumber = diag.NoPos
	return d
}

// DiagsConverter wraps l so that every diagnostic passes through
// ConvertDiagnostic first.
func (g *Generated) DiagsConverter(l diag.Listener) diag.Listener {
	return diag.ListenerFunc(func(d diag.Diagnostic) {
		l.Report(g.ConvertDiagnostic(d))
	})
}
