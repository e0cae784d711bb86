package fragment

import "fmt"

// Keyword is one of the Java keywords that influence the scope of a
// statement.
type Keyword uint8

const (
	KeywordAbstract Keyword = iota
	KeywordDo
	KeywordClass
	KeywordElse
	KeywordEnum
	KeywordImport
	KeywordInterface
	KeywordNative
	KeywordNew
	KeywordPackage
	KeywordPrivate
	KeywordProtected
	KeywordPublic
	KeywordStatic
	KeywordTransient
	KeywordVolatile
)

var keywordNames = [...]string{
	KeywordAbstract:  "abstract",
	KeywordDo:        "do",
	KeywordClass:     "class",
	KeywordElse:      "else",
	KeywordEnum:      "enum",
	KeywordImport:    "import",
	KeywordInterface: "interface",
	KeywordNative:    "native",
	KeywordNew:       "new",
	KeywordPackage:   "package",
	KeywordPrivate:   "private",
	KeywordProtected: "protected",
	KeywordPublic:    "public",
	KeywordStatic:    "static",
	KeywordTransient: "transient",
	KeywordVolatile:  "volatile",
}

func (k Keyword) String() string {
	if int(k) < len(keywordNames) {
		return keywordNames[k]
	}
	return fmt.Sprintf("Keyword(%d)", k)
}

// Automaton states. Keyword terminal states follow DefaultState in the
// order of the Keyword constants.
const (
	FailState    = 0
	DefaultState = 1

	firstKeywordState = 2
)

type automaton struct {
	transitions   []uint8
	alphabetStart rune
	alphabetSize  int
}

// keywords is built once from the fixed keyword list and only read after.
var keywords = buildAutomaton(keywordNames[:])

// buildAutomaton creates a transition table with one state per distinct
// prefix of words. The alphabet spans the smallest to the largest
// character used by any word.
func buildAutomaton(words []string) *automaton {
	lo, hi := rune(-1), rune(-1)
	for _, w := range words {
		for _, c := range w {
			if lo < 0 || c < lo {
				lo = c
			}
			if c > hi {
				hi = c
			}
		}
	}
	a := &automaton{alphabetStart: lo, alphabetSize: int(hi-lo) + 1}

	states := map[string]int{"": DefaultState}
	next := firstKeywordState
	for _, w := range words {
		if _, ok := states[w]; !ok {
			states[w] = next
			next++
		}
	}
	for _, w := range words {
		for i := 1; i < len(w); i++ {
			if _, ok := states[w[:i]]; !ok {
				states[w[:i]] = next
				next++
			}
		}
	}
	if next > 256 {
		panic(fmt.Sprintf("fragment: %d automaton states do not fit in a byte", next))
	}

	a.transitions = make([]uint8, a.alphabetSize*next)
	for _, w := range words {
		for i := 0; i < len(w); i++ {
			from := states[w[:i]]
			to := states[w[:i+1]]
			input := int(rune(w[i]) - lo)
			a.transitions[a.alphabetSize*from+input] = uint8(to)
		}
	}
	return a
}

func (a *automaton) transition(state int, c rune) int {
	input := int(c - a.alphabetStart)
	if c < a.alphabetStart || input >= a.alphabetSize {
		return FailState
	}
	return int(a.transitions[a.alphabetSize*state+input])
}

// Transition returns the automaton state reached from state on input c.
func Transition(state int, c rune) int {
	return keywords.transition(state, c)
}

// KeywordFromState returns the keyword recognized by a terminal state.
func KeywordFromState(state int) (Keyword, bool) {
	i := state - firstKeywordState
	if i < 0 || i >= len(keywordNames) {
		return 0, false
	}
	return Keyword(i), true
}

// LookupKeyword reports whether word is exactly one of the scope keywords.
func LookupKeyword(word string) (Keyword, bool) {
	state := DefaultState
	for _, c := range word {
		state = Transition(state, c)
	}
	return KeywordFromState(state)
}
