package main

import (
	"bytes"
	"testing"

	"github.com/dhamidi/codeonline/java/diag"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDiagnostics(t *testing.T) {
	color.NoColor = true

	diags := []diag.Diagnostic{
		{
			Kind:          diag.KindError,
			Position:      8,
			StartPosition: 8,
			EndPosition:   9,
			LineNumber:    diag.NoPos,
			ColumnNumber:  diag.NoPos,
			Code:          "compiler.err",
			Message:       "cannot find symbol\nsymbol:   variable y",
		},
		{
			Kind:          diag.KindWarning,
			Position:      diag.NoPos,
			StartPosition: diag.NoPos,
			EndPosition:   diag.NoPos,
			LineNumber:    diag.NoPos,
			ColumnNumber:  diag.NoPos,
			Message:       "deprecated API",
		},
		{
			Kind:          diag.KindNote,
			Position:      13,
			StartPosition: 12,
			EndPosition:   17,
			LineNumber:    2,
			ColumnNumber:  3,
			Message:       "here",
		},
	}

	var buf bytes.Buffer
	renderDiagnostics(&buf, "Main.jfrag", "int x = y;\n\tfoo();", diags)
	assert.Equal(t, ""+
		"Main.jfrag:1:9: error: cannot find symbol\n"+
		"    int x = y;\n"+
		"            ^\n"+
		"  symbol:   variable y\n"+
		"Main.jfrag: warning: deprecated API\n"+
		"Main.jfrag:2:3: note: here\n"+
		"    \tfoo();\n"+
		"    \t ^~~~\n",
		buf.String())

	assert.Equal(t, "1 error, 1 warning", summary(diags))
	assert.Equal(t, "", summary(nil))
	assert.Equal(t, "2 errors", summary([]diag.Diagnostic{diags[0], diags[0]}))
}

func TestRenderDiagnosticsTabExpandedColumn(t *testing.T) {
	color.NoColor = true

	// A full compilation unit reports javac's column, which expands the
	// leading tab to eight characters.
	diags := []diag.Diagnostic{{
		Kind:          diag.KindError,
		Position:      1,
		StartPosition: 1,
		EndPosition:   2,
		LineNumber:    1,
		ColumnNumber:  9,
		Message:       "cannot find symbol",
	}}

	var buf bytes.Buffer
	renderDiagnostics(&buf, "Main.java", "\tx = y;", diags)
	assert.Equal(t, ""+
		"Main.java:1:9: error: cannot find symbol\n"+
		"    \tx = y;\n"+
		"    \t^\n",
		buf.String())
}

func TestCaretIndentWideCharacters(t *testing.T) {
	line := []rune("\ts = \"日本\";")
	assert.Equal(t, "\t    ", caretIndent(line, 5))
	assert.Equal(t, "\t         ", caretIndent(line, 8))
}

func TestRunClassify(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	require.NoError(t, runClassify(&buf, "import java.util.*;\nint x = 1;\n"))
	out := buf.String()
	assert.Contains(t, out, "HEADER")
	assert.Contains(t, out, `"int x = 1;\n"`)
	assert.NotContains(t, out, "warning:")

	buf.Reset()
	require.NoError(t, runClassify(&buf, "int x = 1;\nfoo("))
	out = buf.String()
	assert.Contains(t, out, "LOCAL  [0,11)")
	assert.Contains(t, out, "TAIL   [11,15)")
	assert.Contains(t, out, `"foo("`)
	assert.Contains(t, out, "warning:")
}
