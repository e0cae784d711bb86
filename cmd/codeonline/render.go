package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/codeonline/java/diag"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	noteColor    = color.New(color.FgCyan, color.Bold)
	locColor     = color.New(color.Bold)
	caretColor   = color.New(color.FgGreen, color.Bold)
)

func kindColor(k diag.Kind) *color.Color {
	switch k {
	case diag.KindError:
		return errorColor
	case diag.KindWarning:
		return warningColor
	default:
		return noteColor
	}
}

// renderDiagnostics prints diagnostics in the javac layout: location and
// first message line, the offending source line with a caret under the
// range, then the remaining message lines. Line and column are computed
// against text when the diagnostic does not carry them.
func renderDiagnostics(w io.Writer, name, text string, diags []diag.Diagnostic) {
	chars := []rune(text)
	lines := diag.NewLines(chars)

	for _, d := range diags {
		if d.LineNumber == diag.NoPos && d.Position != diag.NoPos {
			d = diag.Locate(d, lines)
		}
		first, rest, _ := strings.Cut(d.Message, "\n")

		loc := name
		if d.LineNumber != diag.NoPos {
			loc = fmt.Sprintf("%s:%d:%d", name, d.LineNumber, d.ColumnNumber)
		}
		fmt.Fprintf(w, "%s %s %s\n", locColor.Sprint(loc+":"), kindColor(d.Kind).Sprint(strings.ToLower(d.Kind.String())+":"), first)

		if d.LineNumber != diag.NoPos {
			start := lines.Offset(d.LineNumber, 1)
			end := start
			for end < len(chars) && chars[end] != '\n' {
				end++
			}
			line := chars[start:end]
			fmt.Fprintf(w, "    %s\n", string(line))
			// javac columns count a tab up to the next multiple of eight.
			column := d.ColumnNumber - 1
			if d.Position >= start && d.Position <= end {
				column = d.Position - start
			}
			fmt.Fprintf(w, "    %s%s\n", caretIndent(line, column), caretColor.Sprint(underline(d, end)))
		}
		if rest != "" {
			for _, l := range strings.Split(rest, "\n") {
				fmt.Fprintf(w, "  %s\n", l)
			}
		}
	}
}

// caretIndent pads up to column so that the caret lines up under line,
// keeping its tabs and the display width of wide characters.
func caretIndent(line []rune, column int) string {
	var b strings.Builder
	for i := 0; i < column && i < len(line); i++ {
		if line[i] == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(line[i])))
		}
	}
	return b.String()
}

// underline is a caret at the position followed by tildes up to the end
// of the range or of the line, whichever comes first.
func underline(d diag.Diagnostic, lineEnd int) string {
	n := 1
	if d.EndPosition != diag.NoPos && d.EndPosition > d.Position {
		n = min(d.EndPosition, lineEnd) - d.Position
	}
	return "^" + strings.Repeat("~", max(n-1, 0))
}

func summary(diags []diag.Diagnostic) string {
	var errs, warns int
	for _, d := range diags {
		switch d.Kind {
		case diag.KindError:
			errs++
		case diag.KindWarning:
			warns++
		}
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, plural(errs, "error"))
	}
	if warns > 0 {
		parts = append(parts, plural(warns, "warning"))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
