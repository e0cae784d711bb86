package fragment

import (
	"testing"
)

func TestLookupKeywordExact(t *testing.T) {
	for i, name := range keywordNames {
		t.Run(name, func(t *testing.T) {
			kw, ok := LookupKeyword(name)
			if !ok {
				t.Fatalf("LookupKeyword(%q) not found", name)
			}
			if kw != Keyword(i) {
				t.Errorf("LookupKeyword(%q) = %v, want %v", name, kw, Keyword(i))
			}
			if kw.String() != name {
				t.Errorf("String() = %q, want %q", kw.String(), name)
			}
		})
	}
}

func TestLookupKeywordRejects(t *testing.T) {
	tests := []string{
		"",
		"classic",
		"clas",
		"Class",
		"CLASS",
		"d",
		"doo",
		"news",
		"ne",
		"interfaces",
		"publicity",
		"int",
		"return",
		"_do",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if kw, ok := LookupKeyword(input); ok {
				t.Errorf("LookupKeyword(%q) = %v, want no keyword", input, kw)
			}
		})
	}
}

func TestTransitionOutsideAlphabet(t *testing.T) {
	for _, c := range []rune{'A', '0', '$', '{', 'é', eof} {
		if got := Transition(DefaultState, c); got != FailState {
			t.Errorf("Transition(DefaultState, %q) = %d, want FailState", c, got)
		}
	}
}

func TestFailStateIsAbsorbing(t *testing.T) {
	state := Transition(DefaultState, 'x')
	if state != FailState {
		t.Fatalf("Transition(DefaultState, 'x') = %d, want FailState", state)
	}
	for _, c := range "class" {
		state = Transition(state, c)
	}
	if state != FailState {
		t.Errorf("state after xclass = %d, want FailState", state)
	}
	if _, ok := KeywordFromState(FailState); ok {
		t.Error("KeywordFromState(FailState) reported a keyword")
	}
	if _, ok := KeywordFromState(DefaultState); ok {
		t.Error("KeywordFromState(DefaultState) reported a keyword")
	}
}

func TestBuildAutomatonSharedPrefixes(t *testing.T) {
	a := buildAutomaton([]string{"do", "done", "dot"})
	run := func(word string) int {
		state := DefaultState
		for _, c := range word {
			state = a.transition(state, c)
		}
		return state
	}
	if got := run("do"); got != firstKeywordState {
		t.Errorf("state(do) = %d, want %d", got, firstKeywordState)
	}
	if got := run("done"); got != firstKeywordState+1 {
		t.Errorf("state(done) = %d, want %d", got, firstKeywordState+1)
	}
	if got := run("dot"); got != firstKeywordState+2 {
		t.Errorf("state(dot) = %d, want %d", got, firstKeywordState+2)
	}
	if got := run("don"); got < firstKeywordState+3 {
		t.Errorf("state(don) = %d, want a prefix state", got)
	}
}
