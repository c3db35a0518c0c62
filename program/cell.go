package program

import (
	"fmt"
	"strings"

	"github.com/dhamidi/treelang/grammar"
)

// Cell is one word position of a node with its assigned type. A cell may
// have no word when the line is shorter than its required cells.
type Cell struct {
	node    *Node
	slot    grammar.CellSlot
	word    string
	hasWord bool
}

func (c Cell) Node() *Node { return c.node }
func (c Cell) Index() int  { return c.slot.Index }

// TypeID is the cell type's id, empty when no type accepts the word.
func (c Cell) TypeID() string { return c.slot.TypeID }

func (c Cell) Type() *grammar.CellType { return c.slot.Type }
func (c Cell) IsCatchAll() bool        { return c.slot.CatchAll }
func (c Cell) Word() string            { return c.word }
func (c Cell) HasWord() bool           { return c.hasWord }

// Parsed converts the word to a value of the cell's kind: an int, a float64,
// a bool or the word itself. A missing word parses to nil.
func (c Cell) Parsed() any {
	if !c.hasWord {
		return nil
	}
	if c.slot.Type == nil {
		return c.word
	}
	return c.slot.Type.Parse(c.word)
}

func (c Cell) IsValid() bool {
	return c.Error() == nil
}

// Error reports what is wrong with the cell, or nil.
func (c Cell) Error() *Error {
	switch {
	case c.slot.Type == nil:
		return c.newError(UnknownCellType)
	case c.slot.Type.Kind() == grammar.KindExtraWord:
		return c.newError(ExtraWord)
	case !c.hasWord || c.word == "":
		return c.newError(MissingWord)
	case !c.slot.Type.IsValid(c.word, c.node.doc):
		return c.newError(InvalidWord)
	}
	return nil
}

func (c Cell) newError(kind ErrorKind) *Error {
	return &Error{Kind: kind, node: c.node, cell: c.slot.Index, word: c.word, cellTypeID: c.slot.TypeID}
}

// AutocompleteWords lists the words that fit the cell and start with
// prefix.
func (c Cell) AutocompleteWords(prefix string) []string {
	if c.slot.Type == nil {
		return nil
	}
	var words []string
	for _, w := range c.slot.Type.AutocompleteWords(c.node.doc) {
		if strings.HasPrefix(w, prefix) {
			words = append(words, w)
		}
	}
	return words
}

// HighlightScope is the editor scope of the cell.
func (c Cell) HighlightScope() string {
	if c.slot.Type == nil {
		return ""
	}
	return c.slot.Type.HighlightScope()
}

// PreludeTypeID is the prelude type the cell's type derives from, or
// anyCell.
func (c Cell) PreludeTypeID() string {
	if c.slot.Type == nil {
		return grammar.AnyCell
	}
	for _, id := range c.slot.Type.AncestorIDs() {
		if grammar.IsPrelude(id) {
			return id
		}
	}
	return grammar.AnyCell
}

// DefinitionLine is the grammar line declaring the cell's type, 0 for
// prelude types.
func (c Cell) DefinitionLine() int {
	if c.slot.Type == nil {
		return 0
	}
	return c.slot.Type.Line
}

func (c Cell) String() string {
	return fmt.Sprintf("%s:%s", c.slot.TypeID, c.word)
}
