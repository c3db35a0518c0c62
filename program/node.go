package program

import (
	"strings"

	"github.com/dhamidi/treelang/grammar"
	"github.com/dhamidi/treelang/tree"
)

// Node is a line of a document together with the definition that claims it.
// Nodes of one document are unique per tree node, so they can be compared
// with ==.
type Node struct {
	doc *Document
	tn  *tree.Node
}

func (n *Node) Document() *Document {
	return n.doc
}

// Tree returns the underlying tree node.
func (n *Node) Tree() *tree.Node {
	return n.tn
}

func (n *Node) IsRoot() bool {
	return n.tn == n.doc.root
}

func (n *Node) Parent() *Node {
	if n.IsRoot() {
		return nil
	}
	return n.doc.wrap(n.tn.Parent())
}

func (n *Node) Children() []*Node {
	children := n.tn.Children()
	nodes := make([]*Node, len(children))
	for i, child := range children {
		nodes[i] = n.doc.wrap(child)
	}
	return nodes
}

func (n *Node) Line() string       { return n.tn.Line() }
func (n *Node) Words() []string    { return n.tn.Words() }
func (n *Node) FirstWord() string  { return n.tn.FirstWord() }
func (n *Node) Indentation() string { return n.tn.Indentation() }

// LineNumber is the 1-based line of the node; the root is line 0.
func (n *Node) LineNumber() int {
	return n.tn.LineNumber()
}

// Definition returns the definition backing the node. It is resolved from
// the parent's definition and the node's line, and re-resolved only when
// either changes.
func (n *Node) Definition() *grammar.ParserDef {
	g := n.doc.lang.g
	if n.IsRoot() {
		return g.Root()
	}
	parent := n.Parent()
	if parent == nil {
		return g.Unknown()
	}
	parentDef := parent.Definition()

	st := n.doc.state(n.tn)
	if st.def != nil && st.parentDef == parentDef && st.lineTime == n.tn.LineModTime() {
		return st.def
	}
	var def *grammar.ParserDef
	switch {
	case parentDef.IsBlob():
		def = g.Blob()
	case parentDef.IsUnknown():
		def = g.Unknown()
	default:
		def = parentDef.Match(n.tn.Line())
		if def == nil {
			def = g.Unknown()
		}
	}
	st.def, st.parentDef, st.lineTime = def, parentDef, n.tn.LineModTime()
	return def
}

// ParserID is the id of the node's definition.
func (n *Node) ParserID() string {
	return n.Definition().ID
}

// ParsedCells splits the node's words into typed cells.
func (n *Node) ParsedCells() []Cell {
	if n.IsRoot() {
		return nil
	}
	words := n.tn.Words()
	slots := n.Definition().CellParser().Assign(words, n.doc)
	cells := make([]Cell, len(slots))
	for i, slot := range slots {
		cell := Cell{node: n, slot: slot}
		if slot.Index < len(words) {
			cell.word, cell.hasWord = words[slot.Index], true
		}
		cells[i] = cell
	}
	return cells
}

// Cell returns the cell at index i.
func (n *Node) Cell(i int) (Cell, bool) {
	cells := n.ParsedCells()
	if i < 0 || i >= len(cells) {
		return Cell{}, false
	}
	return cells[i], true
}

// ChildrenOfParser lists the children backed by the definition id or by a
// definition extending it.
func (n *Node) ChildrenOfParser(id string) []*Node {
	st := n.doc.state(n.tn)
	if st.index == nil || st.indexTime != n.tn.ModTime() {
		index := map[string][]*tree.Node{}
		for _, child := range n.Children() {
			for _, ancestor := range child.Definition().AncestorIDs() {
				index[ancestor] = append(index[ancestor], child.tn)
			}
		}
		st.index, st.indexTime = index, n.tn.ModTime()
	}
	hits := st.index[id]
	nodes := make([]*Node, len(hits))
	for i, tn := range hits {
		nodes[i] = n.doc.wrap(tn)
	}
	return nodes
}

// FirstWordPath is the first words from the top level down to the node.
func (n *Node) FirstWordPath() string {
	var path []string
	for node := n; node != nil && !node.IsRoot(); node = node.Parent() {
		path = append(path, node.FirstWord())
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return strings.Join(path, tree.WordBreak)
}

// CellTypeIDs lists the type of each parsed cell.
func (n *Node) CellTypeIDs() []string {
	cells := n.ParsedCells()
	ids := make([]string, len(cells))
	for i, cell := range cells {
		ids[i] = cell.TypeID()
	}
	return ids
}
