package fragment

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEOF is returned by Classify when the fragment ends inside
// a literal, a block comment or a bracketed construct.
var ErrUnexpectedEOF = errors.New("fragment: unexpected end of input")

// Scope is the section of the synthesized compilation unit a statement
// belongs to.
type Scope uint8

const (
	ScopeHeader Scope = iota
	ScopeGlobal
	ScopeMember
	ScopeLocal
)

func (s Scope) String() string {
	switch s {
	case ScopeHeader:
		return "HEADER"
	case ScopeGlobal:
		return "GLOBAL"
	case ScopeMember:
		return "MEMBER"
	case ScopeLocal:
		return "LOCAL"
	}
	return fmt.Sprintf("Scope(%d)", s)
}

// Segment is a run of consecutive statements sharing a scope.
type Segment struct {
	Scope Scope
	Range SourceRange
}

// Classification is the result of classifying a fragment. Segments and
// Tail tile the fragment in original order.
type Classification struct {
	Segments []Segment
	// Tail covers everything after the last complete statement.
	Tail SourceRange
}

// Ranges returns the ranges of all segments with the given scope, in
// original order.
func (c *Classification) Ranges(scope Scope) []SourceRange {
	var out []SourceRange
	for _, seg := range c.Segments {
		if seg.Scope == scope {
			out = append(out, seg.Range)
		}
	}
	return out
}

// Lower values win.
type condition uint8

const (
	condHeader condition = iota + 1
	condMember
	condType
	condNotLocal
	condLocal
	condElse
	condOther
)

func conditionOf(kw Keyword) condition {
	switch kw {
	case KeywordImport, KeywordPackage:
		return condHeader
	case KeywordNative, KeywordPrivate, KeywordProtected, KeywordStatic, KeywordTransient, KeywordVolatile:
		return condMember
	case KeywordClass, KeywordEnum, KeywordInterface:
		return condType
	case KeywordAbstract, KeywordPublic:
		return condNotLocal
	case KeywordDo, KeywordNew:
		return condLocal
	case KeywordElse:
		return condElse
	}
	panic(fmt.Sprintf("fragment: no condition for keyword %v", kw))
}

type classifier struct {
	scanner
	size           int
	statementStart int
	statementEnd   int
	cond           condition
	wordCount      int
	result         Classification
}

// Classify splits src into statements and assigns each one a scope.
// It never parses Java beyond what is needed to find statement
// boundaries. An unfinished last statement becomes the tail. If the
// input ends inside a literal, a block comment or a bracket pair,
// Classify returns ErrUnexpectedEOF together with the segments
// recognized before that point.
func Classify(src []rune) (result *Classification, err error) {
	c := &classifier{scanner: scanner{src: src}, size: len(src)}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(eofSignal); !ok {
				panic(r)
			}
			c.result.Tail = SourceRange{Start: c.statementStart, End: c.size}
			result = &c.result
			if c.open > 0 {
				err = ErrUnexpectedEOF
			}
		}
	}()
	c.run()
	return &c.result, nil
}

func (c *classifier) run() {
	ch := c.scanChar(true)
	for {
		ch = c.skipNonToken(ch, true)
		if ch == eof {
			c.result.Tail = SourceRange{Start: c.statementStart, End: c.size}
			return
		}
		scope := c.scanStatement(ch)
		ch = c.skipTrail()
		c.add(scope)
	}
}

func (c *classifier) add(scope Scope) {
	segs := c.result.Segments
	if n := len(segs); n > 0 && segs[n-1].Scope == scope {
		segs[n-1].Range.End = c.statementEnd
	} else {
		c.result.Segments = append(segs, Segment{
			Scope: scope,
			Range: SourceRange{Start: c.statementStart, End: c.statementEnd},
		})
	}
	c.statementStart = c.statementEnd
}

func (c *classifier) scanStatement(first rune) Scope {
	ch := c.scanWords(first)
	if ch == ':' {
		next := c.scanChar(false)
		if next != ':' {
			// label
			c.scanToSemicolonOrBraces(next)
			return ScopeLocal
		}
		ch = next
	}
	switch c.cond {
	case condHeader:
		c.scanToSemicolon(ch)
		return ScopeHeader
	case condType:
		c.scanToBraces(ch)
		return ScopeGlobal
	case condMember, condNotLocal:
		c.scanToSemicolonOrBraces(ch)
		return ScopeMember
	case condLocal:
		c.scanToSemicolon(ch)
		return ScopeLocal
	case condElse:
		c.scanToSemicolonOrBraces(ch)
		return ScopeLocal
	}
	switch {
	case c.wordCount == 0:
		// An expression statement starting with punctuation.
		c.scanToSemicolon(ch)
		return ScopeLocal
	case c.wordCount == 1 && ch == '(':
		// A call or a control statement. Constructors are not allowed.
		c.scanToSemicolonOrBraces(ch)
		return ScopeLocal
	}
	// Several words before the first parenthesis: a method if and only if
	// the statement contains parentheses and ends with braces.
	if c.scanToSemicolonOrBraces(ch) {
		return ScopeMember
	}
	return ScopeLocal
}

func (c *classifier) scanToSemicolon(first rune) {
	for ch := first; ; ch = c.scanChar(false) {
		switch ch {
		case '{':
			c.scanEnclosed('{', '}')
		case ';':
			return
		}
	}
}

func (c *classifier) scanToBraces(first rune) {
	for ch := first; ; ch = c.scanChar(false) {
		if ch == '{' {
			c.scanEnclosed('{', '}')
			return
		}
	}
}

// scanToSemicolonOrBraces reports whether the statement contained a
// parenthesized group and ended with a braced block.
func (c *classifier) scanToSemicolonOrBraces(first rune) bool {
	insideWord := false
	foundParens := false
	ch := first
	for {
		switch ch {
		case '(':
			c.scanEnclosed('(', ')')
			foundParens = true
		case '{':
			c.scanEnclosed('{', '}')
			return foundParens
		case '-':
			ch = c.scanChar(false)
			if ch != '>' {
				insideWord = false
				continue
			}
			// A lambda body is never a member body.
			c.scanToSemicolon(' ')
			return false
		case '=':
			c.scanToSemicolon(' ')
			return false
		case ';':
			return false
		case 'n':
			if insideWord {
				break
			}
			insideWord = true
			if ch = c.scanChar(false); ch != 'e' {
				continue
			}
			if ch = c.scanChar(false); ch != 'w' {
				continue
			}
			if ch = c.scanChar(false); isJavaIdentifierPart(ch) {
				continue
			}
			// Object creation: a following block is an initializer body.
			c.scanToSemicolon(ch)
			return false
		}
		insideWord = isJavaIdentifierPart(ch)
		ch = c.scanChar(false)
	}
}

// scanWords consumes the leading words and annotations of a statement,
// recording the strongest keyword condition and the number of words.
func (c *classifier) scanWords(first rune) rune {
	c.cond = condOther
	c.wordCount = 0
	ch := first
	for {
		if ch == '@' {
			ch = c.scanAnnotation()
			continue
		}
		if !isJavaIdentifierPart(ch) {
			return ch
		}
		state := DefaultState
		for isJavaIdentifierPart(ch) {
			state = Transition(state, ch)
			ch = c.scanChar(false)
		}
		if kw, ok := KeywordFromState(state); ok {
			c.cond = min(c.cond, conditionOf(kw))
		}
		c.wordCount++
		ch = c.skipNonToken(ch, false)
	}
}

// scanAnnotation is called after '@'. It skips the annotation name and
// its argument list and returns the next significant character.
func (c *classifier) scanAnnotation() rune {
	ch := c.skipNonToken(' ', false)
	state := DefaultState
	for isJavaIdentifierPart(ch) || ch == '.' {
		state = Transition(state, ch)
		ch = c.scanChar(false)
	}
	ch = c.skipNonToken(ch, false)
	if kw, ok := KeywordFromState(state); ok && kw == KeywordInterface {
		// @interface declaration
		c.cond = min(c.cond, condType)
		return ch
	}
	if ch == '(' {
		c.scanEnclosed('(', ')')
		ch = c.skipNonToken(' ', false)
	}
	return ch
}

// scanEnclosed consumes input up to the right bracket matching an
// already consumed left bracket. Only brackets of the same kind nest.
func (c *classifier) scanEnclosed(left, right rune) {
	c.open++
	depth := 0
	for {
		switch c.scanChar(false) {
		case left:
			depth++
		case right:
			if depth == 0 {
				c.open--
				return
			}
			depth--
		}
	}
}

func (c *classifier) skipNonToken(first rune, allowEOF bool) rune {
	ch := first
	for isJavaWhitespace(ch) {
		ch = c.scanChar(allowEOF)
	}
	return ch
}

// skipTrail consumes whitespace after a statement. A statement owns the
// rest of its last line; it never owns the blank lines before the next
// statement.
func (c *classifier) skipTrail() rune {
	for {
		prev := c.index()
		ch := c.scanChar(true)
		switch {
		case ch == eof:
			c.statementEnd = c.size
			return eof
		case ch == '\n':
			c.statementEnd = c.index()
			return c.scanChar(true)
		case !isJavaWhitespace(ch):
			c.statementEnd = prev
			return ch
		}
	}
}
