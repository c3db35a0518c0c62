package program

import (
	"sort"
	"strings"

	"github.com/dhamidi/treelang/grammar"
	"github.com/dhamidi/treelang/tree"
)

// Document is a tree parsed with a language.
type Document struct {
	lang  *Language
	root  *tree.Node
	nodes map[*tree.Node]*nodeState

	enums    map[string]enumEntry
	building bool
}

type nodeState struct {
	node *Node

	def       *grammar.ParserDef
	parentDef *grammar.ParserDef
	lineTime  int64

	index     map[string][]*tree.Node
	indexTime int64
}

type enumEntry struct {
	modTime int64
	words   map[string]bool
}

func (d *Document) Language() *Language {
	return d.lang
}

// Tree returns the document's tree. Edits to it are picked up on the next
// query.
func (d *Document) Tree() *tree.Node {
	return d.root
}

func (d *Document) Root() *Node {
	return d.wrap(d.root)
}

// String prints the document.
func (d *Document) String() string {
	return d.root.String()
}

func (d *Document) state(tn *tree.Node) *nodeState {
	st, ok := d.nodes[tn]
	if !ok {
		st = &nodeState{}
		d.nodes[tn] = st
	}
	return st
}

func (d *Document) wrap(tn *tree.Node) *Node {
	if tn == nil {
		return nil
	}
	st := d.state(tn)
	if st.node == nil {
		st.node = &Node{doc: d, tn: tn}
	}
	return st.node
}

// NodeAtLine returns the node printed at the 0-based line index, or nil.
func (d *Document) NodeAtLine(lineIndex int) *Node {
	return d.wrap(d.root.NodeAtLine(lineIndex))
}

// TopDown lists every node below the root in document order.
func (d *Document) TopDown() []*Node {
	tns := d.root.TopDown()
	d.prune(tns)
	nodes := make([]*Node, len(tns))
	for i, tn := range tns {
		nodes[i] = d.wrap(tn)
	}
	return nodes
}

// prune forgets the state of tree nodes that are no longer in the document.
func (d *Document) prune(live []*tree.Node) {
	if len(d.nodes) <= len(live)+1 {
		return
	}
	kept := make(map[*tree.Node]*nodeState, len(live)+1)
	if st, ok := d.nodes[d.root]; ok {
		kept[d.root] = st
	}
	for _, tn := range live {
		if st, ok := d.nodes[tn]; ok {
			kept[tn] = st
		}
	}
	d.nodes = kept
}

// AllErrors collects the errors of every node, ordered by line.
func (d *Document) AllErrors() []*Error {
	errs := d.Root().Errors()
	for _, node := range d.TopDown() {
		errs = append(errs, node.Errors()...)
	}
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].Line() < errs[j].Line()
	})
	return errs
}

// WordsOfCellTypes collects the words the document uses in cells of the
// given types. Results are cached until the document changes.
func (d *Document) WordsOfCellTypes(ids []string) map[string]bool {
	key := strings.Join(ids, tree.WordBreak)
	if entry, ok := d.enums[key]; ok && entry.modTime == d.root.ModTime() {
		return entry.words
	}
	if d.building {
		// An omnifix line with a document enum is being parsed while the
		// enum itself is gathered.
		return nil
	}
	d.building = true
	defer func() { d.building = false }()

	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	words := map[string]bool{}
	for _, node := range d.TopDown() {
		for _, cell := range node.ParsedCells() {
			if cell.HasWord() && wanted[cell.TypeID()] {
				words[cell.Word()] = true
			}
		}
	}
	d.enums[key] = enumEntry{modTime: d.root.ModTime(), words: words}
	return words
}

// FindAllWordsWithCellType lists every cell of the given type.
func (d *Document) FindAllWordsWithCellType(id string) []Cell {
	var cells []Cell
	for _, node := range d.TopDown() {
		for _, cell := range node.ParsedCells() {
			if cell.TypeID() == id {
				cells = append(cells, cell)
			}
		}
	}
	return cells
}

// FindAllNodesWithParser lists the nodes backed by the definition id,
// directly or through inheritance.
func (d *Document) FindAllNodesWithParser(id string) []*Node {
	var nodes []*Node
	for _, node := range d.TopDown() {
		if node.Definition().IsOrExtends(id) {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// InvalidParsers lists, sorted, the first words of lines no definition
// claims.
func (d *Document) InvalidParsers() []string {
	seen := map[string]bool{}
	for _, node := range d.TopDown() {
		if node.Definition().IsUnknown() {
			seen[node.FirstWord()] = true
		}
	}
	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Compile renders the document through each definition's compiler.
func (d *Document) Compile() string {
	return d.Root().Compile()
}

// TypedMap projects the document into plain values.
func (d *Document) TypedMap() map[string]any {
	return d.Root().TypedMap()
}

// Format reorders the document in place and returns the new text.
func (d *Document) Format() string {
	d.Root().Format()
	return d.String()
}

// SortFromSortTemplate reorders the document by each definition's sort
// template and returns the new text.
func (d *Document) SortFromSortTemplate() string {
	d.Root().SortFromSortTemplate()
	return d.String()
}
