package program

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dhamidi/treelang/tree"
)

// ParseRow describes how one line was parsed.
type ParseRow struct {
	Line      int      `json:"line"`
	Source    string   `json:"source"`
	Parser    string   `json:"parser"`
	CellTypes []string `json:"cellTypes"`
	Errors    []string `json:"errors"`
}

// ParseTable lists every line with its definition, cell types and error
// messages. Lines are 0-based.
func (d *Document) ParseTable() []ParseRow {
	nodes := d.TopDown()
	rows := make([]ParseRow, len(nodes))
	for i, node := range nodes {
		var messages []string
		for _, err := range node.Errors() {
			messages = append(messages, err.Message())
		}
		rows[i] = ParseRow{
			Line:      i,
			Source:    node.Indentation() + node.Line(),
			Parser:    node.ParserID(),
			CellTypes: node.CellTypeIDs(),
			Errors:    messages,
		}
	}
	return rows
}

// lineTree prints every line as its indentation followed by fn's words.
func (d *Document) lineTree(fn func(*Node) []string) string {
	nodes := d.TopDown()
	lines := make([]string, len(nodes))
	for i, node := range nodes {
		lines[i] = node.Indentation() + strings.Join(fn(node), tree.WordBreak)
	}
	return strings.Join(lines, tree.NodeBreak)
}

// CellTypeTree mirrors the document with each word replaced by its cell
// type.
func (d *Document) CellTypeTree() string {
	return d.lineTree((*Node).CellTypeIDs)
}

// PreludeCellTypeTree mirrors the document with each word replaced by the
// prelude type its cell derives from.
func (d *Document) PreludeCellTypeTree() string {
	return d.lineTree(func(n *Node) []string {
		cells := n.ParsedCells()
		ids := make([]string, len(cells))
		for i, c := range cells {
			ids[i] = c.PreludeTypeID()
		}
		return ids
	})
}

// HighlightScopeTree mirrors the document with each word replaced by its
// editor highlight scope.
func (d *Document) HighlightScopeTree() string {
	return d.lineTree(func(n *Node) []string {
		cells := n.ParsedCells()
		scopes := make([]string, len(cells))
		for i, c := range cells {
			scopes[i] = c.HighlightScope()
			if scopes[i] == "" {
				scopes[i] = "source"
			}
		}
		return scopes
	})
}

// DefinitionLineNumberTree mirrors the document with each line prefixed by
// the grammar line of its definition and each word replaced by the grammar
// line of its cell type.
func (d *Document) DefinitionLineNumberTree() string {
	return d.lineTree(func(n *Node) []string {
		words := []string{strconv.Itoa(n.Definition().Line)}
		for _, c := range n.ParsedCells() {
			words = append(words, strconv.Itoa(c.DefinitionLine()))
		}
		return words
	})
}

// TreeWithParserIDs prints every line prefixed by its definition id.
func (d *Document) TreeWithParserIDs() string {
	nodes := d.TopDown()
	lines := make([]string, len(nodes))
	for i, node := range nodes {
		lines[i] = node.ParserID() + tree.WordBreak + node.Indentation() + node.Line()
	}
	return strings.Join(lines, tree.NodeBreak)
}

// ParserUsage counts how often each concrete definition is used, with the
// lines that use it.
func (d *Document) ParserUsage() *tree.Node {
	usage := map[string][]*Node{}
	for _, node := range d.TopDown() {
		id := node.ParserID()
		usage[id] = append(usage[id], node)
	}
	ids := make([]string, 0, len(usage))
	for _, def := range d.lang.g.ConcreteParsers() {
		ids = append(ids, def.ID)
	}
	for id := range usage {
		if d.lang.g.Parser(id) == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	report := tree.New()
	for _, id := range ids {
		entry := report.AppendLine(fmt.Sprintf("%s %d", id, len(usage[id])))
		for _, node := range usage[id] {
			entry.AppendLine(fmt.Sprintf("%d %s", node.LineNumber(), node.Line()))
		}
	}
	return report
}

// TypedWord is a word of the document with its cell type.
type TypedWord struct {
	Line      int    `json:"line"`
	CellIndex int    `json:"cell"`
	Word      string `json:"word"`
	Type      string `json:"type"`
}

// AllTypedWords lists every word of the document with its cell type.
func (d *Document) AllTypedWords() []TypedWord {
	var words []TypedWord
	for _, node := range d.TopDown() {
		for _, cell := range node.ParsedCells() {
			if !cell.HasWord() {
				continue
			}
			words = append(words, TypedWord{
				Line:      node.LineNumber(),
				CellIndex: cell.Index(),
				Word:      cell.Word(),
				Type:      cell.TypeID(),
			})
		}
	}
	return words
}
