package fragment

import (
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/codeonline/java/diag"
)

const testImports = "import java.util.*;\n"

func TestGenerateLayout(t *testing.T) {
	input := "import a.B;\nint x = 1;\nvoid f() {}\nx++;\n"
	g := Generate(input, testImports)

	want := "import a.B;\n" +
		testImports +
		WrapperOpen +
		"int x = 1;\n" +
		"x++;\n" +
		WrapperClose +
		"void f() {}\n" +
		OuterClose
	if got := g.Text(); got != want {
		t.Errorf("Text() =\n%s\nwant\n%s", got, want)
	}
	if g.Verbatim() {
		t.Error("Verbatim() = true, want false")
	}
	if g.Classification() == nil {
		t.Error("Classification() = nil")
	}
}

func TestGenerateGlobalBeforeWrapper(t *testing.T) {
	input := "int n = 3;\nclass Point { int x; }\n"
	g := Generate(input, "")
	want := "class Point { int x; }\n" + WrapperOpen + "int n = 3;\n" + WrapperClose + OuterClose
	if got := g.Text(); got != want {
		t.Errorf("Text() =\n%s\nwant\n%s", got, want)
	}
}

func TestGenOffsetFromOrig(t *testing.T) {
	input := "import a.B;\nint x = 1;\nvoid f() {}\nx++;\n"
	g := Generate(input, testImports)

	localStart := len("import a.B;\n") + len(testImports) + len(WrapperOpen)
	memberStart := localStart + len("int x = 1;\nx++;\n") + len(WrapperClose)

	tests := []struct {
		orig int
		want int
	}{
		{0, 0},
		{7, 7},
		{12, localStart},
		{16, localStart + 4},
		{23, memberStart},
		{35, localStart + 11},
		{39, localStart + 15},
		{40, memberStart + 12 + len(OuterClose)},
	}

	for _, tt := range tests {
		if got := g.GenOffsetFromOrig(tt.orig); got != tt.want {
			t.Errorf("GenOffsetFromOrig(%d) = %d, want %d", tt.orig, got, tt.want)
		}
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"foo();",
		"import a.B;\nint x = 1;\nvoid f() {}\nx++;\n",
		"class A {}\n\nprivate int y;\n\ny = 2;\n// end",
		"@Override public String toString() { return \"é\"; }\nSystem.out.println(\"π\");",
		"class Foo {",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			g := Generate(input, testImports)
			n := len([]rune(input))
			for o := 0; o <= n; o++ {
				gen := g.GenOffsetFromOrig(o)
				if back := g.OrigOffsetFromGen(gen); back != o {
					t.Errorf("OrigOffsetFromGen(GenOffsetFromOrig(%d) = %d) = %d", o, gen, back)
				}
				if o < n && g.Runes()[gen] != []rune(input)[o] {
					t.Errorf("generated[%d] = %q, want original[%d] = %q", gen, g.Runes()[gen], o, []rune(input)[o])
				}
			}
		})
	}
}

func TestOrigOffsetFromGenBoilerplate(t *testing.T) {
	input := "int x = y;"
	g := Generate(input, "")
	// Generated: WrapperOpen + "int x = y;" + WrapperClose + OuterClose + "".
	open := len(WrapperOpen)

	tests := []struct {
		name string
		gen  int
		want int
	}{
		{"inside wrapper open", 3, 0},
		{"start of statement", open, 0},
		{"inside statement", open + 8, 8},
		{"inside wrapper close", open + 11, 10},
		{"end of text", len(g.Runes()), 10},
		{"past end", len(g.Runes()) + 5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.OrigOffsetFromGen(tt.gen); got != tt.want {
				t.Errorf("OrigOffsetFromGen(%d) = %d, want %d", tt.gen, got, tt.want)
			}
		})
	}
}

func TestGenerateFallback(t *testing.T) {
	input := "class Foo {"
	g := Generate(input, testImports)

	if !g.Verbatim() {
		t.Fatal("Verbatim() = false, want true")
	}
	if g.Text() != input {
		t.Errorf("Text() = %q, want %q", g.Text(), input)
	}
	for o := 0; o <= len(input); o++ {
		if got := g.GenOffsetFromOrig(o); got != o {
			t.Errorf("GenOffsetFromOrig(%d) = %d, want %d", o, got, o)
		}
		if got := g.OrigOffsetFromGen(o); got != o {
			t.Errorf("OrigOffsetFromGen(%d) = %d, want %d", o, got, o)
		}
	}
}

func TestGenerateUnfinishedStatement(t *testing.T) {
	input := "import java.util.*;\nint x = 1;\nSystem.out.println(x)"
	g := Generate(input, "")

	if g.Verbatim() {
		t.Fatal("Verbatim() = true, want false")
	}
	want := "import java.util.*;\n" + WrapperOpen + "int x = 1;\n" + WrapperClose + OuterClose + "System.out.println(x)"
	if got := g.Text(); got != want {
		t.Errorf("Text() =\n%s\nwant\n%s", got, want)
	}
	// The tail maps through to the end of the generated text.
	if got := g.GenOffsetFromOrig(31); got != len([]rune(want))-21 {
		t.Errorf("GenOffsetFromOrig(31) = %d, want %d", got, len([]rune(want))-21)
	}
	if got := g.GenOffsetFromOrig(len(input)); got != len([]rune(want)) {
		t.Errorf("GenOffsetFromOrig(%d) = %d, want %d", len(input), got, len([]rune(want)))
	}

	g = Generate("int x = 1;\nint y", "")
	if g.Verbatim() {
		t.Fatal("Verbatim() = true, want false")
	}
	if !strings.HasPrefix(g.Text(), WrapperOpen+"int x = 1;\n"+WrapperClose) {
		t.Errorf("Text() = %q, want the first statement wrapped", g.Text())
	}
}

func TestGenOffsetFromOrigOutOfRange(t *testing.T) {
	g := Generate("foo();", "")
	for _, offset := range []int{-1, 7, 100} {
		func() {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok {
					t.Fatalf("GenOffsetFromOrig(%d) did not panic with an error: %v", offset, r)
				}
				var offErr *OffsetError
				if !errors.As(err, &offErr) || offErr.Offset != offset || offErr.Size != 6 {
					t.Errorf("panic = %v, want OffsetError for %d", err, offset)
				}
			}()
			g.GenOffsetFromOrig(offset)
		}()
	}
}

func TestDiagsConverter(t *testing.T) {
	input := "int x = y;"
	g := Generate(input, testImports)
	var collector diag.Collector
	listener := g.DiagsConverter(&collector)

	pos := g.GenOffsetFromOrig(8)
	listener.Report(diag.Diagnostic{
		Kind:          diag.KindError,
		Position:      pos,
		StartPosition: pos,
		EndPosition:   pos + 1,
		LineNumber:    3,
		ColumnNumber:  9,
		Code:          "compiler.err.cant.resolve.location",
		Message:       "cannot find symbol",
	})
	listener.Report(diag.Diagnostic{
		Kind:          diag.KindNote,
		Position:      diag.NoPos,
		StartPosition: diag.NoPos,
		EndPosition:   diag.NoPos,
		LineNumber:    diag.NoPos,
		ColumnNumber:  diag.NoPos,
		Code:          "compiler.note.unchecked.filename",
	})

	got := collector.Diagnostics()
	if len(got) != 2 {
		t.Fatalf("len(Diagnostics()) = %d, want 2", len(got))
	}
	d := got[0]
	if d.Position != 8 || d.StartPosition != 8 || d.EndPosition != 9 {
		t.Errorf("positions = %d/%d/%d, want 8/8/9", d.Position, d.StartPosition, d.EndPosition)
	}
	if d.LineNumber != diag.NoPos || d.ColumnNumber != diag.NoPos {
		t.Errorf("line/column = %d/%d, want NoPos", d.LineNumber, d.ColumnNumber)
	}
	if d.Code != "compiler.err.cant.resolve.location" || d.Message != "cannot find symbol" || d.Kind != diag.KindError {
		t.Errorf("diagnostic metadata changed: %+v", d)
	}
	if got[1].Position != diag.NoPos || got[1].EndPosition != diag.NoPos {
		t.Errorf("NoPos not preserved: %+v", got[1])
	}
}

func FuzzGenerate(f *testing.F) {
	seeds := []string{
		"",
		"import java.util.List;",
		"class Foo { }",
		"public void bar() { return; }",
		"int x = 5;",
		"foo();",
		"outer: for(;;) { break outer; }",
		"// a ; b {\n",
		"class Foo {",
		"@interface A {} @B(1) int c; new D() {};",
		"x -> { }; a::b; c ? d : e;",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		g := Generate(input, testImports)
		n := len([]rune(input))
		for o := 0; o <= n; o++ {
			gen := g.GenOffsetFromOrig(o)
			if back := g.OrigOffsetFromGen(gen); back != o {
				t.Fatalf("round trip of %d through %d gave %d", o, gen, back)
			}
		}
		if cls := g.Classification(); cls != nil {
			next := 0
			for _, seg := range cls.Segments {
				if seg.Range.Start != next || seg.Range.End <= seg.Range.Start {
					t.Fatalf("segment %v does not continue at %d", seg, next)
				}
				next = seg.Range.End
			}
			if cls.Tail.Start != next || cls.Tail.End != n {
				t.Fatalf("tail %v does not cover [%d,%d)", cls.Tail, next, n)
			}
		}
	})
}
