package grammar

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"github.com/dhamidi/treelang/tree"
	"github.com/dlclark/regexp2"
)

// EnumSource supplies the words a document currently uses for a set of cell
// types. Cell types declared with enumFromCellTypes validate against it.
type EnumSource interface {
	WordsOfCellTypes(ids []string) map[string]bool
}

type wordTest interface {
	test(word string, src EnumSource) bool
}

type regexTest struct {
	re *regexp2.Regexp
}

func (t regexTest) test(word string, _ EnumSource) bool {
	ok, err := t.re.MatchString(word)
	return err == nil && ok
}

type reservedWordsTest map[string]bool

func (t reservedWordsTest) test(word string, _ EnumSource) bool {
	return !t[word]
}

type enumTest map[string]bool

func (t enumTest) test(word string, _ EnumSource) bool {
	return t[word]
}

type enumFromCellTypesTest []string

func (t enumFromCellTypesTest) test(word string, src EnumSource) bool {
	if src == nil {
		return false
	}
	return src.WordsOfCellTypes(t)[word]
}

// CellType describes the values a single word position accepts.
type CellType struct {
	ID   string
	Line int

	node     *tree.Node
	settings map[string]*tree.Node
	implicit bool

	extends   string
	ancestors []*CellType
	kind      Kind
	tests     []wordTest
	enum      []string
	options   []string
	enumFrom  []string
}

func newCellType(node *tree.Node) *CellType {
	ct := &CellType{
		ID:       node.FirstWord(),
		Line:     node.LineNumber(),
		node:     node,
		settings: map[string]*tree.Node{},
	}
	for _, child := range node.Children() {
		key := child.FirstWord()
		if key == "" || key == Comment {
			continue
		}
		if !cellTypeKeys[key] {
			log.Debugf("%s: ignoring unknown cell type key %q", ct.ID, key)
			continue
		}
		ct.settings[key] = child
	}
	ct.extends = contentOf(ct.settings[KeyExtends])
	return ct
}

func implicitCellType(id string) *CellType {
	return &CellType{ID: id, implicit: true, settings: map[string]*tree.Node{}}
}

func contentOf(node *tree.Node) string {
	if node == nil {
		return ""
	}
	content, _ := node.Content()
	return content
}

// setting returns the nearest value of key along the extends chain.
func (ct *CellType) setting(key string) (string, bool) {
	for _, a := range ct.ancestors {
		if node, ok := a.settings[key]; ok {
			return contentOf(node), true
		}
	}
	return "", false
}

// resolve fills in everything that depends on the extends chain. ancestors
// must be set.
func (ct *CellType) resolve() error {
	root := ct.ancestors[len(ct.ancestors)-1]
	ct.kind = preludeKinds[root.ID]

	for i := len(ct.ancestors) - 1; i >= 0; i-- {
		a := ct.ancestors[i]
		if node, ok := a.settings[KeyRegex]; ok {
			re, err := regexp2.Compile("^(?:"+contentOf(node)+")$", regexp2.ECMAScript)
			if err != nil {
				return buildErrorf(node.LineNumber(), ct.ID, ErrInvalidPattern, "%v", err)
			}
			ct.tests = append(ct.tests, regexTest{re: re})
		}
		if node, ok := a.settings[KeyReservedWords]; ok {
			set := reservedWordsTest{}
			for _, w := range node.WordsFrom(1) {
				set[w] = true
			}
			ct.tests = append(ct.tests, set)
		}
		if node, ok := a.settings[KeyEnum]; ok {
			set := enumTest{}
			for _, w := range node.WordsFrom(1) {
				set[w] = true
			}
			ct.tests = append(ct.tests, set)
		}
		if node, ok := a.settings[KeyEnumFromCellTypes]; ok {
			ct.tests = append(ct.tests, enumFromCellTypesTest(node.WordsFrom(1)))
		}
	}

	if enum, ok := ct.setting(KeyEnum); ok {
		ct.enum = strings.Fields(enum)
		ct.options = append([]string(nil), ct.enum...)
		sort.SliceStable(ct.options, func(i, j int) bool {
			return len(ct.options[i]) > len(ct.options[j])
		})
	}
	if from, ok := ct.setting(KeyEnumFromCellTypes); ok {
		ct.enumFrom = strings.Fields(from)
	}
	return nil
}

func (ct *CellType) Kind() Kind {
	return ct.kind
}

// Implicit reports whether the type is a prelude type the grammar uses
// without declaring it.
func (ct *CellType) Implicit() bool {
	return ct.implicit
}

// AncestorIDs lists the extends chain, root first.
func (ct *CellType) AncestorIDs() []string {
	ids := make([]string, len(ct.ancestors))
	for i, a := range ct.ancestors {
		ids[len(ids)-1-i] = a.ID
	}
	return ids
}

// IsValid reports whether word is accepted: every word test along the
// extends chain passes and the word fits the prelude kind.
func (ct *CellType) IsValid(word string, src EnumSource) bool {
	for _, t := range ct.tests {
		if !t.test(word, src) {
			return false
		}
	}
	return ct.kind.valid(word)
}

func (ct *CellType) Parse(word string) any {
	return ct.kind.Parse(word)
}

// EnumOptions are the declared enum values, longest first so that prefix
// matching during highlighting prefers the longest option.
func (ct *CellType) EnumOptions() []string {
	return ct.options
}

// EnumFromCellTypes lists the cell types whose document words make up this
// type's values.
func (ct *CellType) EnumFromCellTypes() []string {
	return ct.enumFrom
}

// AutocompleteWords lists the words to suggest for a cell of this type.
func (ct *CellType) AutocompleteWords(src EnumSource) []string {
	if len(ct.options) > 0 {
		return ct.options
	}
	if len(ct.enumFrom) > 0 && src != nil {
		var words []string
		for w := range src.WordsOfCellTypes(ct.enumFrom) {
			words = append(words, w)
		}
		sort.Strings(words)
		return words
	}
	return nil
}

// RegexString is a pattern describing the type's words, used when exporting
// syntax definitions.
func (ct *CellType) RegexString() string {
	if re, ok := ct.setting(KeyRegex); ok {
		return re
	}
	if len(ct.options) > 0 {
		return "(?:" + strings.Join(ct.options, "|") + ")"
	}
	return "[^ ]*"
}

func (ct *CellType) HighlightScope() string {
	if scope, ok := ct.setting(KeyHighlightScope); ok {
		return scope
	}
	return ct.kind.highlightScope()
}

func (ct *CellType) Description() string {
	description, _ := ct.setting(KeyDescription)
	return description
}

func (ct *CellType) Examples() []string {
	examples, _ := ct.setting(KeyExamples)
	return strings.Fields(examples)
}

func (ct *CellType) bound(key string, fallback float64) float64 {
	raw, ok := ct.setting(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// Synthesize produces a plausible word of this type for a cell owned by
// owner.
func (ct *CellType) Synthesize(rng *rand.Rand, owner *ParserDef) string {
	if len(ct.enum) > 0 {
		return ct.enum[rng.IntN(len(ct.enum))]
	}
	switch ct.kind {
	case KindInt, KindFloat, KindBit, KindBool:
		return ct.kind.synthesize(rng, ct.bound(KeyMin, 0), ct.bound(KeyMax, 100))
	case KindKeyword:
		if owner != nil && owner.Crux() != "" {
			return owner.Crux()
		}
	}
	if examples := ct.Examples(); len(examples) > 0 {
		return examples[rng.IntN(len(examples))]
	}
	if owner == nil {
		return ct.ID
	}
	return fmt.Sprintf("%s-%s", owner.ID, ct.ID)
}
