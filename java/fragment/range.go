package fragment

import "fmt"

// SourceRange is a half-open interval [Start, End) of offsets into the
// original fragment.
type SourceRange struct {
	Start int
	End   int
}

func (r SourceRange) Len() int {
	return r.End - r.Start
}

func (r SourceRange) Contains(offset int) bool {
	return r.Start <= offset && offset < r.End
}

func (r SourceRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
