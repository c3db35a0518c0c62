package program

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const paintGrammar = `fooParser
 root
 inScope barParser fillParser abstractColorParser
barParser
 crux bar
 description draws a bar
 cells keywordCell intCell floatCell
fillParser
 crux fill
 cells keywordCell colorCell
abstractColorParser
 cells colorCell
colorCell
 enum red green blue
paintParser
 extends abstractColorParser`

func mustLanguage(t *testing.T, source string) *Language {
	t.Helper()
	lang, err := ParseLanguage(source)
	if err != nil {
		t.Fatalf("ParseLanguage: %v", err)
	}
	return lang
}

func errorKinds(errs []*Error) []string {
	kinds := make([]string, len(errs))
	for i, err := range errs {
		kinds[i] = err.Kind.String()
	}
	return kinds
}

func TestParsedCells(t *testing.T) {
	doc := mustLanguage(t, paintGrammar).Parse("bar 3 1.5")

	if errs := doc.AllErrors(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	nodes := doc.TopDown()
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	bar := nodes[0]
	if bar.ParserID() != "barParser" {
		t.Errorf("parser: got %s", bar.ParserID())
	}

	var parsed []any
	for _, cell := range bar.ParsedCells() {
		parsed = append(parsed, cell.Parsed())
	}
	if diff := cmp.Diff([]any{"bar", 3, 1.5}, parsed); diff != "" {
		t.Errorf("parsed cells (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"keywordCell", "intCell", "floatCell"}, bar.CellTypeIDs()); diff != "" {
		t.Errorf("cell types (-want +got):\n%s", diff)
	}
}

func TestCellErrors(t *testing.T) {
	lang := mustLanguage(t, paintGrammar)
	tests := []struct {
		name    string
		text    string
		kinds   []string
		cell    int
		message string
	}{
		{"invalid int", "bar abc 1.5", []string{"InvalidWord"}, 1, `"abc" does not fit in cellType "intCell"`},
		{"missing word", "bar 1", []string{"MissingWord"}, 2, `Missing word for cell "floatCell"`},
		{"extra word", "bar 1 2 3", []string{"ExtraWord"}, 3, `Extra word "3" in barParser`},
		{"invalid enum", "fill purple", []string{"InvalidWord"}, 1, `"purple" does not fit in cellType "colorCell"`},
		{"unknown parser", "baz 1 2", []string{"UnknownParser"}, 0, `Invalid parser "baz"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := lang.Parse(tt.text).AllErrors()
			if diff := cmp.Diff(tt.kinds, errorKinds(errs)); diff != "" {
				t.Fatalf("kinds (-want +got):\n%s", diff)
			}
			if errs[0].CellIndex() != tt.cell {
				t.Errorf("cell: got %d, want %d", errs[0].CellIndex(), tt.cell)
			}
			if errs[0].Line() != 1 {
				t.Errorf("line: got %d", errs[0].Line())
			}
			if !strings.Contains(errs[0].Message(), tt.message) {
				t.Errorf("message %q does not contain %q", errs[0].Message(), tt.message)
			}
		})
	}
}

func TestSuggestions(t *testing.T) {
	lang := mustLanguage(t, paintGrammar)
	tests := []struct {
		name       string
		text       string
		suggestion string
		fixed      string
	}{
		{"misspelled enum", "fill gren", `Change "gren" to "green"`, "fill green"},
		{"misspelled parser", "baz 1 2", `Change "baz" to "bar"`, "bar 1 2"},
		{"blank line", "bar 1 2\n\nbar 3 4", "Delete line 2", "bar 1 2\nbar 3 4"},
		{"extra word", "bar 1 2 3", `Delete word "3" at cell 3`, "bar 1 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := lang.Parse(tt.text)
			errs := doc.AllErrors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
			}
			if got := errs[0].Suggestion(); got != tt.suggestion {
				t.Errorf("suggestion: got %q, want %q", got, tt.suggestion)
			}
			errs[0].ApplySuggestion()
			if got := doc.String(); got != tt.fixed {
				t.Errorf("after fix: got %q, want %q", got, tt.fixed)
			}
			if errs := doc.AllErrors(); len(errs) != 0 {
				t.Errorf("errors left after fix: %v", errs)
			}
			errs[0].ApplySuggestion()
		})
	}
}

func TestNoSuggestionForDistantWord(t *testing.T) {
	errs := mustLanguage(t, paintGrammar).Parse("fill purple").AllErrors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors", len(errs))
	}
	if s := errs[0].Suggestion(); s != "" {
		t.Errorf("got suggestion %q", s)
	}
	errs[0].ApplySuggestion()
	if got := errs[0].Node().Line(); got != "fill purple" {
		t.Errorf("line changed to %q", got)
	}
}

func TestSingle(t *testing.T) {
	lang := mustLanguage(t, strings.Replace(paintGrammar, " crux bar\n", " crux bar\n single\n", 1))
	errs := lang.Parse("bar 1 2\nred\nbar 3 4\nbar 5 6").AllErrors()
	if diff := cmp.Diff([]string{"ParserUsedMultipleTimes", "ParserUsedMultipleTimes"}, errorKinds(errs)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if errs[0].Line() != 3 || errs[1].Line() != 4 {
		t.Errorf("lines: got %d and %d", errs[0].Line(), errs[1].Line())
	}
	if s := errs[0].Suggestion(); s != "Delete line 3" {
		t.Errorf("suggestion: got %q", s)
	}
}

func TestUniqueLine(t *testing.T) {
	lang := mustLanguage(t, strings.Replace(paintGrammar, " crux bar\n", " crux bar\n uniqueLine\n", 1))
	errs := lang.Parse("bar 1 2\nbar 1 2\nbar 3 4").AllErrors()
	if diff := cmp.Diff([]string{"ParserUsedMultipleTimes"}, errorKinds(errs)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if errs[0].Line() != 2 {
		t.Errorf("line: got %d", errs[0].Line())
	}
}

const docGrammar = `docParser
 root
 inScope titleParser abstractSectionParser
titleParser
 crux title
 required
 cells keywordCell
 catchAllCellType anyCell
abstractSectionParser
 required
 cells keywordCell
introParser
 extends abstractSectionParser
 crux intro`

func TestRequired(t *testing.T) {
	doc := mustLanguage(t, docGrammar).Parse("intro")
	errs := doc.AllErrors()
	if diff := cmp.Diff([]string{"MissingRequiredParser"}, errorKinds(errs)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if !strings.Contains(errs[0].Message(), `A "titleParser" is required.`) {
		t.Errorf("message: %s", errs[0].Message())
	}
	if errs[0].Line() != 0 {
		t.Errorf("line: got %d", errs[0].Line())
	}

	doc.Tree().AppendLine("title Hello")
	if errs := doc.AllErrors(); len(errs) != 0 {
		t.Errorf("errors after adding the title: %v", errs)
	}

	doc.Tree().At(0).Destroy()
	if diff := cmp.Diff([]string{"MissingRequiredParser"}, errorKinds(doc.AllErrors())); diff != "" {
		t.Errorf("abstract requirement (-want +got):\n%s", diff)
	}
}

func TestRequiredThroughAbstractScope(t *testing.T) {
	lang := mustLanguage(t, `docParser
 root
 inScope abstractSectionParser
abstractSectionParser
 cells keywordCell
introParser
 extends abstractSectionParser
 crux intro
 required
outroParser
 extends abstractSectionParser
 crux outro`)

	errs := lang.Parse("outro").AllErrors()
	if diff := cmp.Diff([]string{"MissingRequiredParser"}, errorKinds(errs)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if !strings.Contains(errs[0].Message(), `A "introParser" is required.`) {
		t.Errorf("message: %s", errs[0].Message())
	}
	if errs := lang.Parse("intro\noutro").AllErrors(); len(errs) != 0 {
		t.Errorf("errors with the intro present: %v", errorKinds(errs))
	}
}

func TestBlankLine(t *testing.T) {
	lang := mustLanguage(t, paintGrammar)
	tests := []struct {
		text string
		want []string
	}{
		{"\nbar 1 2", []string{"BlankLine"}},
		{"   \nbar 1 2", []string{"BlankLine"}},
		{"baz\nbar 1 2", []string{"UnknownParser"}},
	}
	for _, tt := range tests {
		got := errorKinds(lang.Parse(tt.text).AllErrors())
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%q (-want +got):\n%s", tt.text, diff)
		}
	}
}

func TestOmnifixErrors(t *testing.T) {
	lang := mustLanguage(t, `rootParser
 root
 inScope pairParser
pairParser
 crux pair
 cellParser omnifix
 cells keywordCell intCell
 catchAllCellType anyCell`)

	tests := []struct {
		text  string
		types []string
		kinds []string
	}{
		{"pair 3", []string{"keywordCell", "intCell"}, []string{}},
		{"pair abc", []string{"keywordCell", "anyCell", "intCell"}, []string{"MissingWord"}},
		{"pair abc 3", []string{"keywordCell", "anyCell", "intCell"}, []string{}},
	}
	for _, tt := range tests {
		doc := lang.Parse(tt.text)
		node := doc.NodeAtLine(0)
		if diff := cmp.Diff(tt.types, node.CellTypeIDs()); diff != "" {
			t.Errorf("%q types (-want +got):\n%s", tt.text, diff)
		}
		if diff := cmp.Diff(tt.kinds, errorKinds(doc.AllErrors())); diff != "" {
			t.Errorf("%q errors (-want +got):\n%s", tt.text, diff)
		}
	}
}

func TestChildrenOfParser(t *testing.T) {
	doc := mustLanguage(t, paintGrammar).Parse("red\nbar 1 2\nblue")
	root := doc.Root()
	tests := []struct {
		id   string
		want int
	}{
		{"abstractColorParser", 2},
		{"paintParser", 2},
		{"barParser", 1},
		{"fillParser", 0},
	}
	for _, tt := range tests {
		if got := len(root.ChildrenOfParser(tt.id)); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.id, got, tt.want)
		}
	}

	doc.Tree().AppendLine("green")
	if got := len(root.ChildrenOfParser("paintParser")); got != 3 {
		t.Errorf("index not refreshed after edit: got %d", got)
	}
}

func TestDefinitionFollowsEdits(t *testing.T) {
	doc := mustLanguage(t, paintGrammar).Parse("red")
	node := doc.TopDown()[0]
	if node.ParserID() != "paintParser" {
		t.Fatalf("got %s", node.ParserID())
	}
	node.Tree().SetLine("bar 1 2")
	if node.ParserID() != "barParser" {
		t.Errorf("after edit: got %s", node.ParserID())
	}
}

func TestDestroyedNodesAreForgotten(t *testing.T) {
	doc := mustLanguage(t, paintGrammar).Parse("red\nbar 1 2\nblue")
	doc.AllErrors()
	for i := 0; i < 10; i++ {
		doc.Tree().AppendLine("fill green")
		doc.AllErrors()
		doc.Tree().At(doc.Tree().Len() - 1).Destroy()
		doc.AllErrors()
	}
	if got := len(doc.nodes); got != 4 {
		t.Errorf("tracking %d nodes, want 4", got)
	}
}

func TestAllErrorsOrderedByLine(t *testing.T) {
	doc := mustLanguage(t, docGrammar).Parse("intro x\nzzz")
	var lines []int
	for _, err := range doc.AllErrors() {
		lines = append(lines, err.Line())
	}
	if diff := cmp.Diff([]int{0, 1, 2}, lines); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

const teamGrammar = `teamParser
 root
 inScope personParser likesParser
personNameCell
 regex [a-z]+
referenceCell
 enumFromCellTypes personNameCell
personParser
 crux person
 cells keywordCell personNameCell
likesParser
 crux likes
 cells keywordCell referenceCell referenceCell`

func TestEnumFromDocument(t *testing.T) {
	doc := mustLanguage(t, teamGrammar).Parse("person alice\nperson bob\nlikes alice bob\nlikes alice alce")
	errs := doc.AllErrors()
	if diff := cmp.Diff([]string{"InvalidWord"}, errorKinds(errs)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if errs[0].Line() != 4 || errs[0].CellIndex() != 2 {
		t.Errorf("position: line %d cell %d", errs[0].Line(), errs[0].CellIndex())
	}
	if s := errs[0].Suggestion(); s != `Change "alce" to "alice"` {
		t.Errorf("suggestion: got %q", s)
	}

	cell, _ := doc.TopDown()[2].Cell(1)
	if diff := cmp.Diff([]string{"alice", "bob"}, cell.AutocompleteWords("")); diff != "" {
		t.Errorf("autocomplete (-want +got):\n%s", diff)
	}

	doc.Tree().AppendLine("person alce")
	if errs := doc.AllErrors(); len(errs) != 0 {
		t.Errorf("enum not refreshed after edit: %v", errs)
	}
}

func TestCompileRoundTrip(t *testing.T) {
	lang := mustLanguage(t, `outlineParser
 root
 catchAllParser itemParser
itemParser
 catchAllCellType anyCell
 catchAllParser itemParser`)

	text := "a b\n c\n  d\n e\nf"
	compiled := lang.Parse(text).Compile()
	if compiled != text {
		t.Fatalf("compile: got %q, want %q", compiled, text)
	}
	if again := lang.Parse(compiled).Compile(); again != compiled {
		t.Errorf("compile is not idempotent: %q", again)
	}
}

func TestCompileTemplates(t *testing.T) {
	lang := mustLanguage(t, `mathParser
 root
 inScope addParser blockParser
addParser
 crux add
 cells keywordCell intCell
 catchAllCellType floatCell
 compiler
  stringTemplate sum {intCell} {floatCell}{missing}
  catchAllCellDelimiter +
blockParser
 crux block
 cells keywordCell
 inScope addParser
 compiler
  stringTemplate begin
  openChildren :
  closeChildren end`)

	tests := []struct {
		text string
		want string
	}{
		{"add 1 2 3", "sum 1 2+3"},
		{"add 1", "sum 1 "},
		{"block\n add 1 2", "begin:\n sum 1 2\nend"},
		{"block", "begin:\nend"},
	}
	for _, tt := range tests {
		if got := lang.Parse(tt.text).Compile(); got != tt.want {
			t.Errorf("Compile(%q): got %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestTypedMap(t *testing.T) {
	lang := mustLanguage(t, `configParser
 root
 inScope titleParser portParser tagParser serverParser secretParser listParser
titleParser
 crux title
 single
 cells keywordCell
 catchAllCellType anyCell
portParser
 crux port
 single
 cells keywordCell intCell
tagParser
 crux tag
 cells keywordCell anyCell
serverParser
 crux server
 single
 cells keywordCell
 inScope portParser
secretParser
 crux secret
 cells keywordCell anyCell
 boolean shouldSerialize false
listParser
 crux list
 single
 listDelimiter ,
 cells keywordCell anyCell`)

	doc := lang.Parse("title Hello world\nport 80\ntag a\ntag b\nserver\n port 8080\nsecret hunter2\nlist x,y,z")
	want := map[string]any{
		"title":  "Hello world",
		"port":   80,
		"tag":    []any{"a", "b"},
		"server": map[string]any{"port": 8080},
		"list":   []string{"x", "y", "z"},
	}
	if diff := cmp.Diff(want, doc.TypedMap()); diff != "" {
		t.Errorf("typed map (-want +got):\n%s", diff)
	}
}

func TestAutocomplete(t *testing.T) {
	lang := mustLanguage(t, paintGrammar)
	tests := []struct {
		name string
		text string
		line int
		char int
		want AutocompleteResult
	}{
		{
			name: "first word",
			text: "bar 1 2\ngr",
			line: 1, char: 1,
			want: AutocompleteResult{StartChar: 0, EndChar: 2, Word: "gr", Matches: []Completion{{Text: "green", DisplayText: "green"}}},
		},
		{
			name: "description",
			text: "b",
			line: 0, char: 1,
			want: AutocompleteResult{StartChar: 0, EndChar: 1, Word: "b", Matches: []Completion{
				{Text: "bar", DisplayText: "bar draws a bar"},
				{Text: "blue", DisplayText: "blue"},
			}},
		},
		{
			name: "enum cell",
			text: "fill b",
			line: 0, char: 5,
			want: AutocompleteResult{StartChar: 5, EndChar: 6, Word: "b", Matches: []Completion{{Text: "blue", DisplayText: "blue"}}},
		},
		{
			name: "past the end",
			text: "bar 1 2",
			line: 9, char: 0,
			want: AutocompleteResult{Matches: []Completion{
				{Text: "bar", DisplayText: "bar draws a bar"},
				{Text: "fill", DisplayText: "fill"},
				{Text: "green", DisplayText: "green"},
				{Text: "blue", DisplayText: "blue"},
				{Text: "red", DisplayText: "red"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lang.Parse(tt.text).AutocompleteAt(tt.line, tt.char)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestAutocompleteTable(t *testing.T) {
	rows := mustLanguage(t, paintGrammar).Parse("fill r").AutocompleteTable()
	want := []AutocompleteRow{
		{Line: 0, Char: 0, WordIndex: 0, Word: "fill", Suggestions: []string{"fill"}},
		{Line: 0, Char: 5, WordIndex: 1, Word: "r", Suggestions: []string{"red"}},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFormat(t *testing.T) {
	lang := mustLanguage(t, paintGrammar)
	doc := lang.Parse("red\nzzz\nbar 1 2\nblue\nfill red\nbar 3 4")
	want := "bar 1 2\nbar 3 4\nfill red\nred\nblue\nzzz"
	if got := doc.Format(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := doc.Format(); got != want {
		t.Errorf("format is not idempotent: %q", got)
	}
}

func TestFormatMovesExtendedDefinitionsDown(t *testing.T) {
	lang := mustLanguage(t, "")
	doc := lang.Parse("childParser\n extends baseParser\nbaseParser\n root")
	want := "baseParser\n root\nchildParser\n extends baseParser"
	if got := doc.Format(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSortFromSortTemplate(t *testing.T) {
	lang := mustLanguage(t, `recipeParser
 root
 sortTemplate title  ingredient  step
 inScope titleParser ingredientParser stepParser
titleParser
 crux title
 cells keywordCell
 catchAllCellType anyCell
ingredientParser
 crux ingredient
 cells keywordCell
 catchAllCellType anyCell
stepParser
 crux step
 cells keywordCell
 catchAllCellType anyCell`)

	doc := lang.Parse("step mix\ningredient flour\ntitle Cake\ningredient egg")
	want := "title Cake\n\ningredient egg\ningredient flour\n\nstep mix"
	if got := doc.SortFromSortTemplate(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := doc.SortFromSortTemplate(); got != want {
		t.Errorf("not idempotent: %q", got)
	}
}

func TestDumps(t *testing.T) {
	doc := mustLanguage(t, paintGrammar).Parse("bar 3 1.5\nred\nzzz")

	if got, want := doc.CellTypeTree(), "keywordCell intCell floatCell\ncolorCell\nanyCell"; got != want {
		t.Errorf("cell type tree: got %q, want %q", got, want)
	}
	if got, want := doc.HighlightScopeTree(), "keyword constant.numeric.integer constant.numeric.float\nsource\nsource"; got != want {
		t.Errorf("highlight scope tree: got %q, want %q", got, want)
	}
	if got, want := doc.TreeWithParserIDs(), "barParser bar 3 1.5\npaintParser red\nUnknownParser zzz"; got != want {
		t.Errorf("tree with parser ids: got %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"zzz"}, doc.InvalidParsers()); diff != "" {
		t.Errorf("invalid parsers (-want +got):\n%s", diff)
	}

	rows := doc.ParseTable()
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[2].Parser != "UnknownParser" || len(rows[2].Errors) != 1 {
		t.Errorf("unknown row: %+v", rows[2])
	}
	if len(rows[0].Errors) != 0 {
		t.Errorf("bar row has errors: %v", rows[0].Errors)
	}
	if got := len(doc.FindAllNodesWithParser("abstractColorParser")); got != 1 {
		t.Errorf("nodes with abstractColorParser: got %d", got)
	}
}

func TestCheckExamples(t *testing.T) {
	lang := mustLanguage(t, `fooParser
 root
 inScope barParser
barParser
 crux bar
 cells keywordCell intCell
 example good
  bar 3
 example bad
  bar x`)

	results := lang.CheckExamples()
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if !results[0].OK() || results[0].Label != "good" {
		t.Errorf("good example: %+v", results[0])
	}
	if results[1].OK() || results[1].Errors[0].Kind != InvalidWord {
		t.Errorf("bad example: %+v", results[1])
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(mustLanguage(t, paintGrammar))
	if _, ok := r.Lookup("fooParser"); !ok {
		t.Fatal("language not registered by root id")
	}
	if _, ok := r.ForExtension("foo"); !ok {
		t.Error("language not registered by extension")
	}
	doc, err := r.Parse("fooParser", "bar 1 2")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.AllErrors()) != 0 {
		t.Errorf("errors: %v", doc.AllErrors())
	}
	if _, err := r.Parse("nopeParser", ""); err == nil {
		t.Error("expected an error for an unknown root")
	}
}
