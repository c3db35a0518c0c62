package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/treelang/tree"
	"github.com/dlclark/regexp2"
)

// Example is an "example <label>" block attached to a parser definition.
type Example struct {
	Label   string
	Content string
	Line    int
}

// Constant is a typed value declared on a parser definition, for example
// "boolean suggestInAutocomplete false".
type Constant struct {
	Type  string
	Name  string
	Value any
}

// Compiler holds the merged compiler directives of a definition and its
// ancestors.
type Compiler struct {
	StringTemplate        string
	HasStringTemplate     bool
	IndentCharacter       string
	CatchAllCellDelimiter string
	OpenChildren          string
	JoinChildrenWith      string
	CloseChildren         string
}

type parserRegexTest struct {
	re  *regexp2.Regexp
	def *ParserDef
}

// ParserDef is a compiled parser definition. Settings are resolved along
// the extends chain, nearest definition first.
type ParserDef struct {
	ID   string
	Line int

	g         *Grammar
	node      *tree.Node
	enclosing *ParserDef
	settings  map[string]*tree.Node
	nested    []*ParserDef
	constants []Constant
	compilers []*tree.Node
	examples  []Example
	builtin   bool
	unknown   bool

	scope       *scope
	ancestors   []*ParserDef
	inherits    map[string]bool
	inScope     []string
	inScopeDone bool
	myInScope   []string

	firstWords     map[string]*ParserDef
	firstWordOrder []string
	regexTests     []parserRegexTest
	pattern        *regexp2.Regexp
	catchAll       *ParserDef
	cells          []string
	catchAllCell   string
	cellParser     CellParser
	compiler       Compiler
	constantByName map[string]Constant
}

func newParserDef(g *Grammar, node *tree.Node, enclosing *ParserDef) *ParserDef {
	def := &ParserDef{
		ID:        node.FirstWord(),
		Line:      node.LineNumber(),
		g:         g,
		node:      node,
		enclosing: enclosing,
		settings:  map[string]*tree.Node{},
	}
	for _, child := range node.Children() {
		key := child.FirstWord()
		switch {
		case key == "" || key == Comment:
		case IsParserID(key):
			def.nested = append(def.nested, newParserDef(g, child, def))
		case parserKeys[key]:
			def.settings[key] = child
		case key == KeyCompiler:
			def.compilers = append(def.compilers, child)
		case key == KeyExample:
			label, _ := child.Content()
			def.examples = append(def.examples, Example{
				Label:   label,
				Content: child.String(),
				Line:    child.LineNumber(),
			})
		case isConstantType(key):
			if c, ok := parseConstant(child); ok {
				def.constants = append(def.constants, c)
			} else {
				g.warn(child.LineNumber(), "%s: malformed constant %q", def.ID, child.Line())
			}
		case key == KeyJavascript:
			log.Debugf("%s: ignoring javascript block", def.ID)
		default:
			g.warn(child.LineNumber(), "%s: unknown key %q", def.ID, key)
		}
	}
	return def
}

func compilePattern(pattern string) (*regexp2.Regexp, error) {
	return regexp2.Compile(pattern, regexp2.ECMAScript)
}

func isConstantType(word string) bool {
	switch word {
	case ConstantBoolean, ConstantString, ConstantInt, ConstantFloat:
		return true
	}
	return false
}

func parseConstant(node *tree.Node) (Constant, bool) {
	words := node.Words()
	if len(words) < 2 {
		return Constant{}, false
	}
	c := Constant{Type: words[0], Name: words[1]}
	raw := strings.Join(words[2:], " ")
	switch c.Type {
	case ConstantBoolean:
		c.Value = raw == "true"
	case ConstantInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c, false
		}
		c.Value = n
	case ConstantFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c, false
		}
		c.Value = f
	default:
		if node.Len() > 0 {
			raw = node.String()
		}
		c.Value = raw
	}
	return c, true
}

// Grammar returns the grammar the definition belongs to.
func (d *ParserDef) Grammar() *Grammar {
	return d.g
}

func (d *ParserDef) IsAbstract() bool {
	return strings.HasPrefix(d.ID, AbstractPrefix)
}

// IsBuiltin reports whether the definition was supplied by the runtime
// rather than written in the grammar.
func (d *ParserDef) IsBuiltin() bool {
	return d.builtin
}

// IsUnknown reports whether this is the descriptor for lines no definition
// claims.
func (d *ParserDef) IsUnknown() bool {
	return d.unknown
}

func (d *ParserDef) IsRoot() bool {
	_, ok := d.settings[KeyRoot]
	return ok
}

func (d *ParserDef) setting(key string) (string, bool) {
	for _, a := range d.ancestors {
		if node, ok := a.settings[key]; ok {
			return contentOf(node), true
		}
	}
	return "", false
}

func (d *ParserDef) flag(key string) bool {
	value, ok := d.setting(key)
	return ok && value != "false"
}

// Extends returns the id of the definition this one extends, or "".
func (d *ParserDef) Extends() string {
	return contentOf(d.settings[KeyExtends])
}

// Ancestors lists the definition and everything it extends, nearest first.
func (d *ParserDef) Ancestors() []*ParserDef {
	return d.ancestors
}

// AncestorIDs lists the extends chain root first, ending with d.ID.
func (d *ParserDef) AncestorIDs() []string {
	ids := make([]string, len(d.ancestors))
	for i, a := range d.ancestors {
		ids[len(ids)-1-i] = a.ID
	}
	return ids
}

// IsOrExtends reports whether id is d's own id or the id of an ancestor.
func (d *ParserDef) IsOrExtends(id string) bool {
	return d.inherits[id]
}

// IsOrExtendsAny reports whether d is or extends any of ids.
func (d *ParserDef) IsOrExtendsAny(ids []string) bool {
	for _, id := range ids {
		if d.inherits[id] {
			return true
		}
	}
	return false
}

// Crux is the literal first word selecting this definition.
func (d *ParserDef) Crux() string {
	if crux, ok := d.settings[KeyCrux]; ok {
		return contentOf(crux)
	}
	if _, ok := d.setting(KeyCruxFromID); ok {
		return strings.TrimSuffix(d.ID, ParserSuffix)
	}
	return ""
}

// Pattern is the regular expression selecting this definition by line, if
// any.
func (d *ParserDef) Pattern() string {
	return contentOf(d.settings[KeyPattern])
}

func (d *ParserDef) Description() string {
	description, _ := d.setting(KeyDescription)
	return description
}

func (d *ParserDef) Tags() []string {
	tags, _ := d.setting(KeyTags)
	return strings.Fields(tags)
}

func (d *ParserDef) HasTag(tag string) bool {
	for _, t := range d.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

func (d *ParserDef) Frequency() float64 {
	raw, _ := d.setting(KeyFrequency)
	f, _ := strconv.ParseFloat(raw, 64)
	return f
}

func (d *ParserDef) IsSingle() bool     { return d.flag(KeySingle) }
func (d *ParserDef) IsUniqueLine() bool { return d.flag(KeyUniqueLine) }

func (d *ParserDef) IsRequired() bool {
	_, ok := d.setting(KeyRequired)
	return ok
}

// DeclaresRequired reports whether d itself, not an ancestor, is marked
// required.
func (d *ParserDef) DeclaresRequired() bool {
	_, ok := d.settings[KeyRequired]
	return ok
}

func (d *ParserDef) IsBlob() bool {
	base, _ := d.setting(KeyBaseParser)
	return base == BlobParserBase
}

func (d *ParserDef) IsErrorParser() bool {
	base, _ := d.setting(KeyBaseParser)
	return base == ErrorParserBase
}

// IsTerminal reports whether nodes of this definition cannot have parsed
// children.
func (d *ParserDef) IsTerminal() bool {
	return len(d.InScopeIDs()) == 0 && d.catchAll == nil
}

func (d *ParserDef) ListDelimiter() (string, bool) { return d.setting(KeyListDelimiter) }
func (d *ParserDef) ContentKey() (string, bool)    { return d.setting(KeyContentKey) }
func (d *ParserDef) ChildrenKey() (string, bool)   { return d.setting(KeyChildrenKey) }

func (d *ParserDef) UniqueFirstWord() bool {
	_, ok := d.setting(KeyUniqueFirstWord)
	return ok
}

func (d *ParserDef) SortTemplate() string {
	template, _ := d.setting(KeySortTemplate)
	return template
}

// Extensions are the file extensions of the language. Only meaningful on
// the root definition.
func (d *ParserDef) Extensions() []string {
	extensions, _ := d.setting(KeyExtensions)
	return strings.Fields(extensions)
}

func (d *ParserDef) Compiler() Compiler {
	return d.compiler
}

// Constant returns a constant declared on d or its nearest ancestor.
func (d *ParserDef) Constant(name string) (any, bool) {
	c, ok := d.constantByName[name]
	return c.Value, ok
}

// Constants lists the resolved constants, nearest declaration winning.
func (d *ParserDef) Constants() map[string]Constant {
	return d.constantByName
}

func (d *ParserDef) boolConstant(name string, fallback bool) bool {
	value, ok := d.Constant(name)
	if !ok {
		return fallback
	}
	b, ok := value.(bool)
	if !ok {
		return fallback
	}
	return b
}

// SuggestInAutocomplete is false when the definition opts out of completion.
func (d *ParserDef) SuggestInAutocomplete() bool {
	return d.boolConstant(ConstSuggestInAutocomplete, true)
}

// ShouldSerialize is false when typed projections must skip the node.
func (d *ParserDef) ShouldSerialize() bool {
	return d.boolConstant(ConstShouldSerialize, true)
}

// Examples lists the example blocks of d and its ancestors.
func (d *ParserDef) Examples() []Example {
	var examples []Example
	for _, a := range d.ancestors {
		examples = append(examples, a.examples...)
	}
	return examples
}

// Cells is the list of required cell type ids.
func (d *ParserDef) Cells() []string {
	return d.cells
}

// CatchAllCellType is the type of words past the required cells, or "".
func (d *ParserDef) CatchAllCellType() string {
	return d.catchAllCell
}

func (d *ParserDef) CellParser() CellParser {
	return d.cellParser
}

// CatchAllParser is the definition used for child lines nothing else
// claims, or nil.
func (d *ParserDef) CatchAllParser() *ParserDef {
	return d.catchAll
}

// InScopeIDs lists the parser ids allowed as children: the definition's own
// inScope words and nested definitions followed by those of its parent.
func (d *ParserDef) InScopeIDs() []string {
	if d.inScopeDone {
		return d.inScope
	}
	seen := map[string]bool{}
	var ids []string
	add := func(list []string) {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	add(d.MyInScopeIDs())
	if len(d.ancestors) > 1 {
		add(d.ancestors[1].InScopeIDs())
	}
	d.inScope = ids
	d.inScopeDone = true
	return ids
}

// MyInScopeIDs lists only the ids declared on d itself.
func (d *ParserDef) MyInScopeIDs() []string {
	if d.myInScope != nil {
		return d.myInScope
	}
	ids := []string{}
	if node, ok := d.settings[KeyInScope]; ok {
		ids = append(ids, node.WordsFrom(1)...)
	}
	for _, nested := range d.nested {
		ids = append(ids, nested.ID)
	}
	d.myInScope = ids
	return ids
}

// Nested lists the definitions declared inside d.
func (d *ParserDef) Nested() []*ParserDef {
	return d.nested
}

// Lookup resolves id in the scope visible from d.
func (d *ParserDef) Lookup(id string) *ParserDef {
	if def := d.scope.lookup(id); def != nil {
		return def
	}
	for _, a := range d.ancestors[1:] {
		if def := a.scope.lookup(id); def != nil {
			return def
		}
	}
	return nil
}

// FirstWords lists the words that select a child definition, in the order
// they were first registered.
func (d *ParserDef) FirstWords() []string {
	return d.firstWordOrder
}

// FirstWordDef returns the child definition selected by word, if any.
func (d *ParserDef) FirstWordDef(word string) *ParserDef {
	return d.firstWords[word]
}

// Match picks the definition for a child line: first by first word, then by
// pattern and finally the catch-all parser. It returns nil when nothing
// claims the line.
func (d *ParserDef) Match(line string) *ParserDef {
	firstWord := line
	if i := strings.Index(line, tree.WordBreak); i >= 0 {
		firstWord = line[:i]
	}
	if def, ok := d.firstWords[firstWord]; ok {
		return def
	}
	for _, t := range d.regexTests {
		if ok, err := t.re.MatchString(line); err == nil && ok {
			return t.def
		}
	}
	return d.catchAll
}

// ConcreteInScope lists the non-abstract definitions usable as children,
// expanding abstract ids into the definitions that extend them.
func (d *ParserDef) ConcreteInScope() []*ParserDef {
	var defs []*ParserDef
	seen := map[*ParserDef]bool{}
	for _, id := range d.InScopeIDs() {
		def := d.Lookup(id)
		if def == nil {
			continue
		}
		if !def.IsAbstract() {
			if !seen[def] {
				seen[def] = true
				defs = append(defs, def)
			}
			continue
		}
		for _, candidate := range d.candidates() {
			if candidate.IsAbstract() || !candidate.IsOrExtends(id) || seen[candidate] {
				continue
			}
			seen[candidate] = true
			defs = append(defs, candidate)
		}
	}
	return defs
}

// LineHints describes the cells a line of this definition takes.
func (d *ParserDef) LineHints() string {
	hints := fmt.Sprintf("%s: %s", d.ID, strings.Join(d.cells, " "))
	if d.catchAllCell != "" {
		hints += " " + d.catchAllCell + "..."
	}
	return hints
}

// Source is the definition's text in the grammar.
func (d *ParserDef) Source() string {
	if d.node == nil {
		return ""
	}
	return d.node.Text()
}

// candidates lists the definitions that may serve as children: everything in
// d's scope plus definitions nested in its ancestors.
func (d *ParserDef) candidates() []*ParserDef {
	seen := map[*ParserDef]bool{}
	var defs []*ParserDef
	for _, a := range d.ancestors {
		if a.scope == nil {
			continue
		}
		for _, def := range a.scope.defs {
			if !seen[def] {
				seen[def] = true
				defs = append(defs, def)
			}
		}
	}
	return defs
}

func (d *ParserDef) buildFirstWords() {
	d.firstWords = map[string]*ParserDef{}
	d.regexTests = nil
	d.firstWordOrder = nil
	inScope := d.InScopeIDs()
	if len(inScope) == 0 {
		return
	}
	register := func(word string, def *ParserDef) {
		if _, ok := d.firstWords[word]; !ok {
			d.firstWordOrder = append(d.firstWordOrder, word)
		}
		d.firstWords[word] = def
	}
	for _, candidate := range d.candidates() {
		if candidate.IsAbstract() || candidate.unknown || !candidate.IsOrExtendsAny(inScope) {
			continue
		}
		if candidate.pattern != nil {
			d.regexTests = append(d.regexTests, parserRegexTest{re: candidate.pattern, def: candidate})
			continue
		}
		if crux := candidate.Crux(); crux != "" {
			register(crux, candidate)
			continue
		}
		for _, option := range candidate.firstCellEnumOptions() {
			register(option, candidate)
		}
	}
}

func (d *ParserDef) firstCellEnumOptions() []string {
	if len(d.cells) == 0 {
		return nil
	}
	ct := d.g.CellType(d.cells[0])
	if ct == nil {
		return nil
	}
	return ct.EnumOptions()
}

func (d *ParserDef) mergeCompiler() {
	c := Compiler{
		IndentCharacter:       " ",
		CatchAllCellDelimiter: " ",
		JoinChildrenWith:      tree.NodeBreak,
	}
	for i := len(d.ancestors) - 1; i >= 0; i-- {
		for _, node := range d.ancestors[i].compilers {
			for _, child := range node.Children() {
				key := child.FirstWord()
				if !compilerKeys[key] {
					continue
				}
				value, _ := child.Content()
				switch key {
				case StringTemplate:
					c.StringTemplate = value
					c.HasStringTemplate = true
				case IndentCharacter:
					c.IndentCharacter = value
				case CatchAllCellDelimiter:
					c.CatchAllCellDelimiter = value
				case OpenChildren:
					c.OpenChildren = value
				case JoinChildrenWith:
					c.JoinChildrenWith = value
				case CloseChildren:
					c.CloseChildren = value
				}
			}
		}
	}
	d.compiler = c
}

func (d *ParserDef) mergeConstants() {
	d.constantByName = map[string]Constant{}
	for i := len(d.ancestors) - 1; i >= 0; i-- {
		for _, c := range d.ancestors[i].constants {
			d.constantByName[c.Name] = c
		}
	}
}
