// Package grammar compiles a grammar tree into parser definitions and cell
// types that documents are parsed with.
//
// A grammar is itself a tree. Top level lines ending in "Parser" declare
// parser definitions, lines ending in "Cell" declare cell types:
//
//	fooParser
//	 root
//	 inScope barParser
//	barParser
//	 crux bar
//	 cells keywordCell intCell floatCell
//
// Building happens in two phases. The first reads every definition without
// resolving references, the second resolves inheritance, scopes and cell
// types. Any reference that cannot be resolved fails the build with a
// *BuildError.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dhamidi/treelang/tree"
)

const (
	blobParserSource        = BlobParserID + "\n baseParser " + BlobParserBase + "\n catchAllCellType " + AnyCell
	defaultRootParserSource = DefaultRootParserID + "\n root\n catchAllParser " + BlobParserID
	unknownParserSource     = UnknownParserID + "\n catchAllCellType " + AnyCell
)

// Warning is a non fatal problem found while reading a grammar.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

type Grammar struct {
	source *tree.Node

	parsers   []*ParserDef
	all       []*ParserDef
	top       *scope
	root      *ParserDef
	blob      *ParserDef
	unknown   *ParserDef
	cellTypes map[string]*CellType
	cellOrder []string

	warnings []Warning
}

// Parse builds a grammar from its source text.
func Parse(text string) (*Grammar, error) {
	return FromTree(tree.Parse(text))
}

// FromTree builds a grammar from an already parsed tree. The tree must not
// be edited afterwards.
func FromTree(source *tree.Node) (*Grammar, error) {
	g := &Grammar{
		source:    source,
		cellTypes: map[string]*CellType{},
	}
	g.read()
	if err := g.resolve(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Grammar) warn(line int, format string, args ...any) {
	w := Warning{Line: line, Message: fmt.Sprintf(format, args...)}
	log.Warningf("%s", w)
	g.warnings = append(g.warnings, w)
}

func (g *Grammar) builtin(source string) *ParserDef {
	def := newParserDef(g, tree.Parse(source).At(0), nil)
	def.builtin = true
	def.Line = 0
	return def
}

func (g *Grammar) read() {
	for _, child := range g.source.Children() {
		key := child.FirstWord()
		switch {
		case key == "" || key == Comment:
		case IsParserID(key):
			g.parsers = append(g.parsers, newParserDef(g, child, nil))
		case IsCellTypeID(key):
			if _, ok := g.cellTypes[key]; !ok {
				g.cellOrder = append(g.cellOrder, key)
			}
			g.cellTypes[key] = newCellType(child)
		default:
			g.warn(child.LineNumber(), "unknown top level word %q", key)
		}
	}
}

func (g *Grammar) resolve() error {
	for id := range preludeKinds {
		if _, ok := g.cellTypes[id]; !ok {
			g.cellTypes[id] = implicitCellType(id)
		}
	}
	if err := g.resolveCellTypes(); err != nil {
		return err
	}

	defs := append([]*ParserDef(nil), g.parsers...)
	g.blob = nil
	for _, def := range g.parsers {
		if def.ID == BlobParserID {
			g.blob = def
		}
	}
	if g.blob == nil {
		g.blob = g.builtin(blobParserSource)
		defs = append(defs, g.blob)
	}
	for _, def := range g.parsers {
		if def.IsRoot() {
			g.root = def
		}
	}
	if g.root == nil {
		g.root = g.builtin(defaultRootParserSource)
		defs = append(defs, g.root)
	}
	if g.root.IsAbstract() {
		return &BuildError{Line: g.root.Line, ID: g.root.ID, Err: ErrNoRoot, Msg: "root parser is abstract"}
	}
	g.unknown = g.builtin(unknownParserSource)
	g.unknown.unknown = true

	g.top = newScope(defs)
	var assign func(def *ParserDef, outer *scope)
	assign = func(def *ParserDef, outer *scope) {
		def.scope = outer
		if len(def.nested) > 0 {
			def.scope = outer.with(def.nested)
		}
		g.all = append(g.all, def)
		for _, nested := range def.nested {
			assign(nested, def.scope)
		}
	}
	for _, def := range defs {
		assign(def, g.top)
	}
	g.unknown.scope = g.top

	everything := append(append([]*ParserDef(nil), g.all...), g.unknown)
	for _, def := range everything {
		if err := g.resolveAncestors(def); err != nil {
			return err
		}
	}
	for _, def := range everything {
		if err := g.resolveAttributes(def); err != nil {
			return err
		}
	}
	for _, def := range everything {
		def.buildFirstWords()
	}
	return nil
}

func (g *Grammar) resolveCellTypes() error {
	ids := make([]string, 0, len(g.cellTypes))
	for id := range g.cellTypes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ct := g.cellTypes[id]
		seen := map[string]bool{}
		for cur := ct; cur != nil; {
			if seen[cur.ID] {
				return &BuildError{Line: ct.Line, ID: ct.ID, Err: ErrCyclicInheritance,
					Msg: fmt.Sprintf("%s extends itself", cur.ID)}
			}
			seen[cur.ID] = true
			ct.ancestors = append(ct.ancestors, cur)
			if cur.extends == "" {
				break
			}
			next, ok := g.cellTypes[cur.extends]
			if !ok {
				return &BuildError{Line: cur.Line, ID: cur.ID, Err: ErrUnknownCellType,
					Msg: fmt.Sprintf("extends unknown cell type %q", cur.extends)}
			}
			cur = next
		}
		if err := ct.resolve(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grammar) resolveAncestors(def *ParserDef) error {
	seen := map[*ParserDef]bool{}
	def.ancestors = nil
	def.inherits = map[string]bool{}
	for cur := def; cur != nil; {
		if seen[cur] {
			return &BuildError{Line: def.Line, ID: def.ID, Err: ErrCyclicInheritance,
				Msg: fmt.Sprintf("%s extends itself", cur.ID)}
		}
		seen[cur] = true
		def.ancestors = append(def.ancestors, cur)
		def.inherits[cur.ID] = true
		parentID := cur.Extends()
		if parentID == "" {
			break
		}
		parent := cur.scope.lookup(parentID)
		if parent == nil {
			return &BuildError{Line: cur.Line, ID: cur.ID, Err: ErrUnknownParser,
				Msg: fmt.Sprintf("extends unknown parser %q", parentID)}
		}
		cur = parent
	}
	return nil
}

func (g *Grammar) resolveAttributes(def *ParserDef) error {
	cells, _ := def.setting(KeyCells)
	def.cells = strings.Fields(cells)
	def.catchAllCell, _ = def.setting(KeyCatchAllCellType)
	for _, id := range append(append([]string(nil), def.cells...), def.catchAllCell) {
		if id == "" {
			continue
		}
		if _, ok := g.cellTypes[id]; !ok {
			return &BuildError{Line: def.Line, ID: def.ID, Err: ErrUnknownCellType,
				Msg: fmt.Sprintf("cell type %q is not defined", id)}
		}
	}

	raw, _ := def.setting(KeyCellParser)
	strategy, ok := parseCellParsing(raw)
	if !ok {
		g.warn(def.Line, "%s: unknown cell parser %q, using prefix", def.ID, raw)
	}
	def.cellParser = newCellParser(g, strategy, def.cells, def.catchAllCell)

	if pattern := def.Pattern(); pattern != "" {
		re, err := compilePattern(pattern)
		if err != nil {
			return &BuildError{Line: def.Line, ID: def.ID, Err: ErrInvalidPattern, Msg: err.Error()}
		}
		def.pattern = re
	}

	if id, ok := def.setting(KeyCatchAllParser); ok && id != "" {
		def.catchAll = def.Lookup(id)
		if def.catchAll == nil {
			return &BuildError{Line: def.Line, ID: def.ID, Err: ErrUnknownParser,
				Msg: fmt.Sprintf("catch-all parser %q is not defined", id)}
		}
	}

	for _, id := range def.MyInScopeIDs() {
		if def.Lookup(id) == nil {
			return &BuildError{Line: def.Line, ID: def.ID, Err: ErrUnknownParser,
				Msg: fmt.Sprintf("in-scope parser %q is not defined", id)}
		}
	}

	def.mergeCompiler()
	def.mergeConstants()
	return nil
}

// Source returns the grammar's text.
func (g *Grammar) Source() string {
	return g.source.String()
}

// Tree returns the grammar's tree. It must not be edited.
func (g *Grammar) Tree() *tree.Node {
	return g.source
}

func (g *Grammar) Warnings() []Warning {
	return g.warnings
}

// Root returns the definition documents are parsed with.
func (g *Grammar) Root() *ParserDef {
	return g.root
}

// Blob returns the definition whose nodes accept any content.
func (g *Grammar) Blob() *ParserDef {
	return g.blob
}

// Unknown returns the descriptor given to lines no definition claims.
func (g *Grammar) Unknown() *ParserDef {
	return g.unknown
}

// Name is the language name: the root id without its Parser suffix.
func (g *Grammar) Name() string {
	return strings.TrimSuffix(g.root.ID, ParserSuffix)
}

// Extensions are the file extensions the language claims.
func (g *Grammar) Extensions() []string {
	if extensions := g.root.Extensions(); len(extensions) > 0 {
		return extensions
	}
	return []string{g.Name()}
}

// Parser finds a definition by id, looking at the top level first and then
// inside nested scopes.
func (g *Grammar) Parser(id string) *ParserDef {
	if def := g.top.lookup(id); def != nil {
		return def
	}
	for _, def := range g.all {
		if def.ID == id {
			return def
		}
	}
	return nil
}

// Parsers lists the definitions written at the top level of the grammar.
func (g *Grammar) Parsers() []*ParserDef {
	return g.parsers
}

// AllParsers lists every definition, nested ones and builtins included,
// parents before their nested definitions.
func (g *Grammar) AllParsers() []*ParserDef {
	return g.all
}

// ConcreteParsers lists every definition a node can be parsed with.
func (g *Grammar) ConcreteParsers() []*ParserDef {
	var defs []*ParserDef
	for _, def := range g.all {
		if !def.IsAbstract() {
			defs = append(defs, def)
		}
	}
	return defs
}

// CellType returns the cell type with the given id. Prelude ids always
// resolve.
func (g *Grammar) CellType(id string) *CellType {
	return g.cellTypes[id]
}

// CellTypes lists the declared cell types in declaration order.
func (g *Grammar) CellTypes() []*CellType {
	types := make([]*CellType, 0, len(g.cellOrder))
	for _, id := range g.cellOrder {
		types = append(types, g.cellTypes[id])
	}
	return types
}

// ResolveInheritance returns the extends chain of id, root first.
func (g *Grammar) ResolveInheritance(id string) ([]string, error) {
	def := g.Parser(id)
	if def == nil {
		return nil, &BuildError{ID: id, Err: ErrUnknownParser}
	}
	return def.AncestorIDs(), nil
}

// LookupDefinition follows path, a list of first words, from the root and
// returns the definition of the last one. It returns the unknown descriptor
// when a step matches nothing.
func (g *Grammar) LookupDefinition(path []string) *ParserDef {
	def := g.root
	for _, word := range path {
		next := def.Match(word)
		if next == nil {
			return g.unknown
		}
		def = next
	}
	return def
}

// FamilyTree arranges the top level definitions by inheritance: every
// definition is a child of the one it extends.
func (g *Grammar) FamilyTree() *tree.Node {
	root := tree.New()
	nodes := map[string]*tree.Node{}
	var place func(def *ParserDef) *tree.Node
	place = func(def *ParserDef) *tree.Node {
		if node, ok := nodes[def.ID]; ok {
			return node
		}
		parent := root
		if len(def.ancestors) > 1 {
			parent = place(def.ancestors[1])
		}
		node := parent.AppendLine(def.ID)
		nodes[def.ID] = node
		return node
	}
	for _, def := range g.parsers {
		place(def)
	}
	return root
}
