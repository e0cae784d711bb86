package fragment

// Identifiers returns the distinct identifiers of text in order of first
// appearance, skipping comments and literal contents. Keywords are
// included; scanning stops quietly at an unterminated literal or comment.
func Identifiers(text []rune) (words []string) {
	s := &scanner{src: text}
	seen := make(map[string]bool)
	var current []rune
	flush := func() {
		if len(current) > 0 && !seen[string(current)] {
			seen[string(current)] = true
			words = append(words, string(current))
		}
		current = current[:0]
	}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(eofSignal); !ok {
				panic(r)
			}
			flush()
		}
	}()
	inNumber := false
	for {
		c := s.scanChar(true)
		if c == eof {
			flush()
			return words
		}
		if !isJavaIdentifierPart(c) {
			flush()
			inNumber = false
			continue
		}
		if len(current) == 0 && isDigit(c) {
			inNumber = true
		}
		if !inNumber {
			current = append(current, c)
		}
	}
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
