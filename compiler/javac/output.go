package javac

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/dhamidi/codeonline/java/diag"
)

var (
	// /tmp/x/src/Main.java:3: error: cannot find symbol
	locatedRe = regexp.MustCompile(`^(.+):(\d+): (error|warning|note): (.*)$`)
	// warning: [options] bootstrap class path not set
	// Note: Main.java uses unchecked or unsafe operations.
	globalRe  = regexp.MustCompile(`^(error|warning|Note|note): (.*)$`)
	summaryRe = regexp.MustCompile(`^\d+ (errors?|warnings?)$`)
	caretRe   = regexp.MustCompile(`^[ \t]*\^[ \t]*$`)
)

const tabWidth = 8

var kinds = map[string]diag.JavacKind{
	"error":   diag.JavacError,
	"warning": diag.JavacWarning,
	"note":    diag.JavacNote,
	"Note":    diag.JavacNote,
}

var codes = map[diag.JavacKind]string{
	diag.JavacError:   "compiler.err",
	diag.JavacWarning: "compiler.warn",
	diag.JavacNote:    "compiler.note",
}

// pending is a diagnostic whose continuation lines are still being read.
type pending struct {
	d      diag.Diagnostic
	line   int
	extra  []string
	caret  int
	inFile bool
}

// parseOutput reads javac's human readable output. Diagnostics located
// in path get offsets into text; all others are reported without a
// position.
func parseOutput(output, path string, text []rune, l diag.Listener) {
	lines := diag.NewLines(text)
	var cur *pending

	flush := func() {
		if cur == nil {
			return
		}
		finish(cur, text, lines)
		l.Report(cur.d)
		cur = nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n") {
		if m := locatedRe.FindStringSubmatch(line); m != nil {
			flush()
			n, _ := strconv.Atoi(m[2])
			cur = newPending(kinds[m[3]], m[4])
			cur.line = n
			cur.inFile = m[1] == path
			continue
		}
		if m := globalRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = newPending(kinds[m[1]], m[2])
			continue
		}
		if summaryRe.MatchString(line) || line == "" {
			flush()
			continue
		}
		if cur == nil {
			continue
		}
		if cur.caret < 0 && caretRe.MatchString(line) {
			cur.caret = len([]rune(line[:strings.IndexByte(line, '^')]))
			// The line before the caret echoes the source.
			if n := len(cur.extra); n > 0 {
				cur.extra = cur.extra[:n-1]
			}
			continue
		}
		cur.extra = append(cur.extra, strings.TrimSpace(line))
	}
	flush()
}

func newPending(kind diag.JavacKind, message string) *pending {
	return &pending{
		d: diag.Diagnostic{
			Kind:          diag.KindOf(kind),
			Position:      diag.NoPos,
			StartPosition: diag.NoPos,
			EndPosition:   diag.NoPos,
			LineNumber:    diag.NoPos,
			ColumnNumber:  diag.NoPos,
			Code:          codes[kind],
			Message:       message,
		},
		caret: -1,
	}
}

func finish(p *pending, text []rune, lines *diag.Lines) {
	if len(p.extra) > 0 {
		p.d.Message += "\n" + strings.Join(p.extra, "\n")
	}
	if !p.inFile {
		return
	}
	col := max(p.caret, 0) + 1
	pos := lines.Offset(p.line, col)
	if pos == diag.NoPos {
		return
	}
	end := pos
	for end < len(text) && isWordChar(text[end]) {
		end++
	}
	if end == pos && pos < len(text) && text[pos] != '\n' {
		end++
	}
	lineStart := lines.Offset(p.line, 1)
	p.d.Position = pos
	p.d.StartPosition = pos
	p.d.EndPosition = end
	p.d.LineNumber = p.line
	p.d.ColumnNumber = expandedColumn(text[lineStart:pos])
}

// expandedColumn returns the 1-based column after prefix with tabs
// expanded, the way javac counts columns.
func expandedColumn(prefix []rune) int {
	col := 0
	for _, c := range prefix {
		if c == '\t' {
			col = (col/tabWidth + 1) * tabWidth
		} else {
			col++
		}
	}
	return col + 1
}

func isWordChar(c rune) bool {
	return c == '_' || c == '$' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
