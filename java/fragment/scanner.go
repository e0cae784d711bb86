package fragment

import "unicode"

const (
	eof = rune(-1)

	// literalMark stands in for a whole string or character literal.
	literalMark = '#'
)

// eofSignal is raised when the input ends where more input is required.
// It never escapes the package: Classify recovers from it.
type eofSignal struct{}

// scanner yields Java source characters one at a time. Comments collapse
// to whitespace, literals collapse to literalMark and unicode escapes are
// decoded. Positions are indexes into src.
type scanner struct {
	src  []rune
	next int
	// open counts the literals, block comments, unicode escapes and
	// bracket pairs entered but not yet left.
	open int
}

func (s *scanner) index() int {
	return s.next
}

func (s *scanner) scanChar(allowEOF bool) rune {
	c := s.scanRawCharOrEOF(allowEOF)
	switch c {
	case '/':
		return s.scanComment(allowEOF)
	case '"', '\'':
		s.open++
		for {
			d := s.scanRawChar()
			if d == c {
				s.open--
				return literalMark
			}
			if d == '\\' {
				s.next++
			}
		}
	}
	return c
}

// scanComment is called after a '/' was read. A line comment yields its
// terminating newline (or eof), a block comment yields a single space.
func (s *scanner) scanComment(allowEOF bool) rune {
	if allowEOF && s.next == len(s.src) {
		return '/'
	}
	backup := s.next
	switch s.scanRawChar() {
	case '/':
		for {
			c := s.scanRawCharOrEOF(allowEOF)
			if c == '\n' || c == eof {
				return c
			}
		}
	case '*':
		s.open++
		for {
			for s.scanRawChar() != '*' {
			}
			c := s.scanRawChar()
			for c == '*' {
				c = s.scanRawChar()
			}
			if c == '/' {
				s.open--
				return ' '
			}
		}
	default:
		s.next = backup
		return '/'
	}
}

func (s *scanner) scanRawCharOrEOF(allowEOF bool) rune {
	if allowEOF && s.next == len(s.src) {
		return eof
	}
	return s.scanRawChar()
}

func (s *scanner) scanRawChar() rune {
	c := s.rawAt(s.next)
	s.next++
	if c != '\\' || s.next >= len(s.src) || s.src[s.next] != 'u' {
		return c
	}
	s.open++
	for s.rawAt(s.next) == 'u' {
		s.next++
	}
	value, valid := 0, true
	for i := 0; i < 4; i++ {
		d := hexValue(s.rawAt(s.next))
		s.next++
		if d < 0 {
			valid = false
		}
		value = value<<4 | (d & 0xf)
	}
	s.open--
	if !valid {
		// Malformed escape, most likely still being typed.
		return 0
	}
	return rune(value)
}

func (s *scanner) rawAt(i int) rune {
	if i >= len(s.src) {
		panic(eofSignal{})
	}
	return s.src[i]
}

func hexValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func isJavaIdentifierPart(c rune) bool {
	switch {
	case c < 0:
		return false
	case c < 0x80:
		return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			c == '_' || c == '$' || (c <= 0x08) || (c >= 0x0e && c <= 0x1b) || c == 0x7f
	case c <= 0x9f:
		return true
	}
	return unicode.IsLetter(c) || unicode.IsDigit(c) ||
		unicode.In(c, unicode.Sc, unicode.Pc, unicode.Nl, unicode.Mn, unicode.Mc, unicode.Cf)
}

func isJavaWhitespace(c rune) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0x1c, 0x1d, 0x1e, 0x1f:
		return true
	case 0xa0, 0x2007, 0x202f:
		return false
	}
	if c < 0x80 {
		return false
	}
	return unicode.In(c, unicode.Zs, unicode.Zl, unicode.Zp)
}
