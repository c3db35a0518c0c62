package grammar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKindValidity(t *testing.T) {
	tests := []struct {
		kind Kind
		word string
		want bool
	}{
		{KindInt, "3", true},
		{KindInt, "-12", true},
		{KindInt, "03", false},
		{KindInt, "1.5", false},
		{KindFloat, "1.5", true},
		{KindFloat, ".5", true},
		{KindFloat, "-2", true},
		{KindFloat, "1.", false},
		{KindFloat, "", false},
		{KindFloat, "abc", false},
		{KindBit, "1", true},
		{KindBit, "2", false},
		{KindBool, "Yes", true},
		{KindBool, "F", true},
		{KindBool, "maybe", false},
		{KindAny, "anything", true},
		{KindExtraWord, "x", false},
	}
	for _, tt := range tests {
		if got := tt.kind.valid(tt.word); got != tt.want {
			t.Errorf("%s.valid(%q): got %v, want %v", tt.kind, tt.word, got, tt.want)
		}
	}
}

func TestKindParse(t *testing.T) {
	if got := KindInt.Parse("42"); got != 42 {
		t.Errorf("int: got %v", got)
	}
	if got := KindFloat.Parse("1.5"); got != 1.5 {
		t.Errorf("float: got %v", got)
	}
	if got := KindBool.Parse("no"); got != false {
		t.Errorf("bool: got %v", got)
	}
	if got := KindAny.Parse("x"); got != "x" {
		t.Errorf("any: got %v", got)
	}
}

func TestCellTypeTests(t *testing.T) {
	g := mustParse(t, `nameCell
 regex [a-z]+
 reservedWords if else
shortNameCell
 extends nameCell
 regex .{1,3}
colorCell
 enum red green blue
countCell
 extends intCell
 min 1
 max 3`)

	tests := []struct {
		cell string
		word string
		want bool
	}{
		{"nameCell", "abc", true},
		{"nameCell", "ab1", false},
		{"nameCell", "if", false},
		{"shortNameCell", "abc", true},
		{"shortNameCell", "abcd", false},
		{"shortNameCell", "else", false},
		{"colorCell", "red", true},
		{"colorCell", "pink", false},
		{"countCell", "2", true},
		{"countCell", "x", false},
	}
	for _, tt := range tests {
		ct := g.CellType(tt.cell)
		if got := ct.IsValid(tt.word, nil); got != tt.want {
			t.Errorf("%s.IsValid(%q): got %v, want %v", tt.cell, tt.word, got, tt.want)
		}
	}

	if diff := cmp.Diff([]string{"green", "blue", "red"}, g.CellType("colorCell").EnumOptions()); diff != "" {
		t.Errorf("enum options must be longest first (-want +got):\n%s", diff)
	}
	if k := g.CellType("countCell").Kind(); k != KindInt {
		t.Errorf("kind from extends chain: got %s", k)
	}
	if s := g.CellType("countCell").HighlightScope(); s != "constant.numeric.integer" {
		t.Errorf("highlight scope: got %q", s)
	}

	rng := NewRand(7)
	for i := 0; i < 20; i++ {
		word := g.CellType("countCell").Synthesize(rng, nil)
		if word != "1" && word != "2" && word != "3" {
			t.Fatalf("synthesized %q outside min/max", word)
		}
	}
}

type fixedWords map[string]bool

func (w fixedWords) WordsOfCellTypes([]string) map[string]bool {
	return w
}

func TestEnumFromCellTypes(t *testing.T) {
	g := mustParse(t, "refCell\n enumFromCellTypes nameCell")
	ref := g.CellType("refCell")
	src := fixedWords{"alice": true}
	if !ref.IsValid("alice", src) {
		t.Error("expected a word used by the document to be valid")
	}
	if ref.IsValid("bob", src) {
		t.Error("expected an unused word to be invalid")
	}
	if ref.IsValid("alice", nil) {
		t.Error("without a document no word is valid")
	}
	if diff := cmp.Diff([]string{"alice"}, ref.AutocompleteWords(src)); diff != "" {
		t.Errorf("autocomplete (-want +got):\n%s", diff)
	}
}

func slotIDs(slots []CellSlot) []string {
	ids := make([]string, len(slots))
	for i, s := range slots {
		ids[i] = s.TypeID
	}
	return ids
}

func TestCellParsers(t *testing.T) {
	g := mustParse(t, `rootParser
 root
 inScope prefixParser postfixParser omnifixParser omniAnyParser bareParser
colorCell
 enum red green blue
prefixParser
 crux pre
 cells keywordCell intCell
 catchAllCellType anyCell
postfixParser
 crux post
 cellParser postfix
 cells keywordCell intCell
 catchAllCellType anyCell
omnifixParser
 crux omni
 cellParser omnifix
 cells intCell colorCell
omniAnyParser
 crux omniany
 cellParser omnifix
 cells keywordCell intCell
 catchAllCellType anyCell
bareParser
 crux bare
 cells keywordCell`)

	tests := []struct {
		parser string
		words  []string
		want   []string
	}{
		{"prefixParser", []string{"pre", "3"}, []string{"keywordCell", "intCell"}},
		{"prefixParser", []string{"pre"}, []string{"keywordCell", "intCell"}},
		{"prefixParser", []string{"pre", "3", "x", "y"}, []string{"keywordCell", "intCell", "anyCell", "anyCell"}},
		{"postfixParser", []string{"x", "y", "post", "3"}, []string{"anyCell", "anyCell", "keywordCell", "intCell"}},
		{"postfixParser", []string{"post"}, []string{"keywordCell", "intCell"}},
		{"omnifixParser", []string{"red", "4"}, []string{"colorCell", "intCell"}},
		{"omnifixParser", []string{"zzz"}, []string{"", "intCell", "colorCell"}},
		{"omnifixParser", []string{"4", "red", "zzz"}, []string{"intCell", "colorCell", ""}},
		{"omniAnyParser", []string{"x", "abc"}, []string{"keywordCell", "anyCell", "intCell"}},
		{"omniAnyParser", []string{"x", "abc", "7"}, []string{"keywordCell", "anyCell", "intCell"}},
		{"bareParser", []string{"bare", "extra"}, []string{"keywordCell", "extraWordCell"}},
	}
	for _, tt := range tests {
		def := g.Parser(tt.parser)
		got := slotIDs(def.CellParser().Assign(tt.words, nil))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s %v (-want +got):\n%s", tt.parser, tt.words, diff)
		}
	}
}

func TestCellCountInvariant(t *testing.T) {
	g := mustParse(t, `rootParser
 root
 inScope aParser bParser cParser
aParser
 crux a
 cells keywordCell intCell floatCell
 catchAllCellType anyCell
bParser
 crux b
 cellParser postfix
 cells keywordCell intCell
cParser
 crux c
 cellParser omnifix
 cells intCell boolCell
 catchAllCellType anyCell`)

	words := []string{"x", "1", "true", "y", "2.5", "z"}
	for _, id := range []string{"aParser", "bParser", "cParser"} {
		def := g.Parser(id)
		required := len(def.Cells())
		for n := 0; n <= len(words); n++ {
			slots := def.CellParser().Assign(words[:n], nil)
			want := max(n, required)
			if def.CellParser().Strategy() == Omnifix {
				want = n + unconsumed(slots, n, required)
			}
			if len(slots) != want {
				t.Errorf("%s with %d words: got %d slots, want %d", id, n, len(slots), want)
			}
			for i, s := range slots {
				if s.Index != i {
					t.Errorf("%s with %d words: slot %d has index %d", id, n, i, s.Index)
				}
			}
			seen := map[string]int{}
			for _, s := range slots {
				if !s.CatchAll && s.Type != nil && s.Type.Kind() != KindExtraWord {
					seen[s.TypeID]++
				}
			}
			for _, cell := range def.Cells() {
				if seen[cell] != 1 {
					t.Errorf("%s with %d words: required %s assigned %d times", id, n, cell, seen[cell])
				}
			}
		}
	}
}

// unconsumed counts the required types that no word took.
func unconsumed(slots []CellSlot, wordCount, required int) int {
	taken := 0
	for _, s := range slots[:min(wordCount, len(slots))] {
		if !s.CatchAll && s.Type != nil {
			taken++
		}
	}
	return required - taken
}
