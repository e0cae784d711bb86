package lsp

import (
	"unicode/utf16"

	"github.com/dhamidi/codeonline/compiler"
	"github.com/dhamidi/codeonline/java/diag"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// offsetOf converts an LSP position, whose character counts UTF-16
// units, to a character offset into text. Positions past the end of a
// line or of the text are clamped.
func offsetOf(text string, pos protocol.Position) int {
	chars := []rune(text)
	lines := diag.NewLines(chars)
	start := lines.Offset(int(pos.Line)+1, 1)
	if start == diag.NoPos {
		return len(chars)
	}
	units := int(pos.Character)
	offset := start
	for offset < len(chars) && chars[offset] != '\n' && units > 0 {
		units -= utf16.RuneLen(chars[offset])
		offset++
	}
	return offset
}

// positionOf is the inverse of offsetOf.
func positionOf(chars []rune, lines *diag.Lines, offset int) protocol.Position {
	line, column := lines.LineColumn(offset)
	if line == diag.NoPos {
		return protocol.Position{}
	}
	units := 0
	for _, c := range chars[offset-column+1 : offset] {
		units += utf16.RuneLen(c)
	}
	return protocol.Position{Line: protocol.UInteger(line - 1), Character: protocol.UInteger(units)}
}

var severities = map[diag.Kind]protocol.DiagnosticSeverity{
	diag.KindError:   protocol.DiagnosticSeverityError,
	diag.KindWarning: protocol.DiagnosticSeverityWarning,
	diag.KindNote:    protocol.DiagnosticSeverityInformation,
}

// publishParams converts a compilation result for text. Diagnostics
// without a position are shown at the start of the document.
func publishParams(uri string, version protocol.Integer, text string, result *compiler.CompilationResult) protocol.PublishDiagnosticsParams {
	chars := []rune(text)
	lines := diag.NewLines(chars)
	source := lsName

	out := make([]protocol.Diagnostic, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		severity := severities[d.Kind]
		var r protocol.Range
		if d.StartPosition != diag.NoPos {
			r.Start = positionOf(chars, lines, d.StartPosition)
			end := d.EndPosition
			if end == diag.NoPos || end < d.StartPosition {
				end = d.StartPosition
			}
			r.End = positionOf(chars, lines, end)
		}
		pd := protocol.Diagnostic{
			Range:    r,
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		}
		if d.Code != "" {
			pd.Code = &protocol.IntegerOrString{Value: d.Code}
		}
		out = append(out, pd)
	}

	v := protocol.UInteger(max(version, 0))
	return protocol.PublishDiagnosticsParams{URI: uri, Version: &v, Diagnostics: out}
}
