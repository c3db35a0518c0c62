package format

import (
	"io"

	"github.com/dhamidi/treelang/program"
)

// TreeKind selects which mirror of the document a TreeEncoder prints.
type TreeKind int

const (
	CellTypes TreeKind = iota
	PreludeCellTypes
	HighlightScopes
	ParserIDs
	DefinitionLines
)

var treeKinds = map[string]TreeKind{
	"cells":       CellTypes,
	"prelude":     PreludeCellTypes,
	"highlight":   HighlightScopes,
	"parsers":     ParserIDs,
	"definitions": DefinitionLines,
}

// TreeKinds lists the names accepted by For for tree encoders.
func TreeKinds() []string {
	return []string{"cells", "prelude", "highlight", "parsers", "definitions"}
}

// TreeEncoder writes the document with every line replaced by derived data,
// keeping the indentation.
type TreeEncoder struct {
	w    io.Writer
	kind TreeKind
	doc  *program.Document
}

func NewTreeEncoder(w io.Writer, kind TreeKind) *TreeEncoder {
	return &TreeEncoder{w: w, kind: kind}
}

func (e *TreeEncoder) Encode(doc *program.Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	if len(text) > 0 {
		text = append(text, '\n')
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText() ([]byte, error) {
	var text string
	switch e.kind {
	case PreludeCellTypes:
		text = e.doc.PreludeCellTypeTree()
	case HighlightScopes:
		text = e.doc.HighlightScopeTree()
	case ParserIDs:
		text = e.doc.TreeWithParserIDs()
	case DefinitionLines:
		text = e.doc.DefinitionLineNumberTree()
	default:
		text = e.doc.CellTypeTree()
	}
	return []byte(text), nil
}
