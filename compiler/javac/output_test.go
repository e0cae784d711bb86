package javac

import (
	"strings"
	"testing"

	"github.com/dhamidi/codeonline/java/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput(t *testing.T) {
	text := []rune("class Main {\n\tint y = undefinedVar;\n}\n")
	output := strings.Join([]string{
		"/w/src/Main.java:2: error: cannot find symbol",
		"\tint y = undefinedVar;",
		"\t        ^",
		"  symbol:   variable undefinedVar",
		"  location: class Main",
		"/w/src/Other.java:1: warning: [rawtypes] found raw type: List",
		"List l;",
		"^",
		"warning: [options] bootstrap class path not set in conjunction with -source 8",
		"Note: Main.java uses unchecked or unsafe operations.",
		"1 error",
		"2 warnings",
		"",
	}, "\n")

	var c diag.Collector
	parseOutput(output, "/w/src/Main.java", text, &c)
	got := c.Diagnostics()
	require.Len(t, got, 4)

	assert.Equal(t, diag.Diagnostic{
		Kind:          diag.KindError,
		Position:      22,
		StartPosition: 22,
		EndPosition:   34,
		LineNumber:    2,
		ColumnNumber:  17,
		Code:          "compiler.err",
		Message:       "cannot find symbol\nsymbol:   variable undefinedVar\nlocation: class Main",
	}, got[0])

	assert.Equal(t, diag.KindWarning, got[1].Kind)
	assert.Equal(t, "[rawtypes] found raw type: List", got[1].Message)
	assert.Equal(t, diag.NoPos, got[1].Position)
	assert.Equal(t, diag.NoPos, got[1].LineNumber)

	assert.Equal(t, "compiler.warn", got[2].Code)
	assert.Equal(t, diag.NoPos, got[2].StartPosition)

	assert.Equal(t, diag.KindNote, got[3].Kind)
	assert.Equal(t, "Main.java uses unchecked or unsafe operations.", got[3].Message)
}

func TestParseOutputCaretOnPunctuation(t *testing.T) {
	text := []rune("class Main {\n  int x = 1\n}\n")
	output := "/w/Main.java:2: error: ';' expected\n  int x = 1\n           ^\n1 error\n"

	var c diag.Collector
	parseOutput(output, "/w/Main.java", text, &c)
	got := c.Diagnostics()
	require.Len(t, got, 1)
	// The caret sits on the line break after "1".
	assert.Equal(t, 24, got[0].Position)
	assert.Equal(t, 24, got[0].EndPosition)
	assert.Equal(t, 12, got[0].ColumnNumber)
	assert.Equal(t, "';' expected", got[0].Message)
}

func TestParseOutputWithoutCaret(t *testing.T) {
	text := []rune("class Main {}\n")
	output := "/w/Main.java:1: error: class Main is public, should be declared in a file named Main.java\n"

	var c diag.Collector
	parseOutput(output, "/w/Main.java", text, &c)
	got := c.Diagnostics()
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Position)
	assert.Equal(t, 5, got[0].EndPosition)
	assert.Equal(t, 1, got[0].LineNumber)
	assert.Equal(t, 1, got[0].ColumnNumber)
}

func TestExpandedColumn(t *testing.T) {
	tests := []struct {
		prefix string
		want   int
	}{
		{"", 1},
		{"abc", 4},
		{"\t", 9},
		{"ab\t", 9},
		{"\tx\t", 17},
	}
	for _, tt := range tests {
		if got := expandedColumn([]rune(tt.prefix)); got != tt.want {
			t.Errorf("expandedColumn(%q) = %d, want %d", tt.prefix, got, tt.want)
		}
	}
}
