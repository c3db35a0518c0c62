package program

import (
	"fmt"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/dhamidi/treelang/grammar"
)

type ErrorKind int

const (
	UnknownParser ErrorKind = iota
	BlankLine
	MissingRequiredParser
	ParserUsedMultipleTimes
	LineAppearsMultipleTimes
	UnknownCellType
	InvalidWord
	ExtraWord
	MissingWord
)

var errorKindNames = [...]string{
	UnknownParser:            "UnknownParser",
	BlankLine:                "BlankLine",
	MissingRequiredParser:    "MissingRequiredParser",
	ParserUsedMultipleTimes:  "ParserUsedMultipleTimes",
	LineAppearsMultipleTimes: "LineAppearsMultipleTimes",
	UnknownCellType:          "UnknownCellType",
	InvalidWord:              "InvalidWord",
	ExtraWord:                "ExtraWord",
	MissingWord:              "MissingWord",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a problem found in a document. Documents with errors still parse;
// errors are reported, never returned.
type Error struct {
	Kind ErrorKind

	node       *Node
	cell       int
	word       string
	cellTypeID string
	missing    string
}

func (e *Error) Node() *Node {
	return e.node
}

// Line is the 1-based line of the offending node.
func (e *Error) Line() int {
	return e.node.LineNumber()
}

// CellIndex is the offending cell, 0 for errors about a whole line.
func (e *Error) CellIndex() int {
	return e.cell
}

func (e *Error) Message() string {
	msg := fmt.Sprintf("%s at line %d cell %d.", e.Kind, e.Line(), e.cell)
	switch e.Kind {
	case UnknownParser:
		msg += e.unknownParserDetail()
	case BlankLine:
		msg += e.unknownParserDetail()
		msg += fmt.Sprintf(" Line: %q. Blank lines are errors.", e.node.Line())
	case MissingRequiredParser:
		msg += fmt.Sprintf(" A %q is required.", e.missing)
	case ParserUsedMultipleTimes:
		msg += fmt.Sprintf(" Multiple %q found.", e.node.FirstWord())
	case LineAppearsMultipleTimes:
		msg += fmt.Sprintf(" %q appears multiple times.", e.node.Line())
	case UnknownCellType:
		msg += fmt.Sprintf(" No cell type of %s accepts %q.", e.node.ParserID(), e.word)
	case InvalidWord:
		msg += fmt.Sprintf(" %q does not fit in cellType %q.", e.word, e.cellTypeID)
	case ExtraWord:
		msg += fmt.Sprintf(" Extra word %q in %s.", e.word, e.node.ParserID())
	case MissingWord:
		msg += fmt.Sprintf(" Missing word for cell %q.", e.cellTypeID)
	}
	return msg
}

func (e *Error) unknownParserDetail() string {
	parent := e.node.Parent()
	if parent == nil {
		return ""
	}
	return fmt.Sprintf(" Invalid parser %q. Valid parsers are: %s.", e.node.FirstWord(), listToEnglish(parent.Definition().FirstWords(), 7))
}

func (e *Error) String() string {
	return e.Message()
}

// Suggestion describes the edit that would fix the error, or "" when there
// is none.
func (e *Error) Suggestion() string {
	switch e.Kind {
	case UnknownParser:
		if word := e.replacementFirstWord(); word != "" {
			return fmt.Sprintf("Change %q to %q", e.node.FirstWord(), word)
		}
	case InvalidWord:
		if word := e.replacementWord(); word != "" {
			return fmt.Sprintf("Change %q to %q", e.word, word)
		}
	case BlankLine, ParserUsedMultipleTimes, LineAppearsMultipleTimes:
		return fmt.Sprintf("Delete line %d", e.Line())
	case ExtraWord:
		return fmt.Sprintf("Delete word %q at cell %d", e.word, e.cell)
	}
	return ""
}

// ApplySuggestion performs the suggested edit on the document. It does
// nothing when there is no suggestion or the node is gone.
func (e *Error) ApplySuggestion() {
	tn := e.node.tn
	switch e.Kind {
	case UnknownParser:
		if word := e.replacementFirstWord(); word != "" {
			tn.SetWord(0, word)
		}
	case InvalidWord:
		if word := e.replacementWord(); word != "" {
			tn.SetWord(e.cell, word)
		}
	case BlankLine, ParserUsedMultipleTimes, LineAppearsMultipleTimes:
		tn.Destroy()
	case ExtraWord:
		if w, ok := tn.Word(e.cell); ok && w == e.word {
			tn.DeleteWordAt(e.cell)
		}
	}
}

func (e *Error) replacementFirstWord() string {
	parent := e.node.Parent()
	if parent == nil {
		return ""
	}
	return didYouMean(e.node.FirstWord(), parent.Definition().FirstWords())
}

func (e *Error) replacementWord() string {
	ct := e.node.doc.lang.g.CellType(e.cellTypeID)
	if ct == nil {
		return ""
	}
	return didYouMean(e.word, ct.AutocompleteWords(e.node.doc))
}

// ErrorObject is the serializable form of an error.
type ErrorObject struct {
	Type       string `json:"type"`
	Line       int    `json:"line"`
	Cell       int    `json:"cell"`
	Suggestion string `json:"suggestion"`
	Path       string `json:"path"`
	Message    string `json:"message"`
}

func (e *Error) Object() ErrorObject {
	return ErrorObject{
		Type:       e.Kind.String(),
		Line:       e.Line(),
		Cell:       e.cell,
		Suggestion: e.Suggestion(),
		Path:       e.node.FirstWordPath(),
		Message:    e.Message(),
	}
}

// Errors reports the node's own errors: its cell errors followed by errors
// about its place among its siblings and its required children.
func (n *Node) Errors() []*Error {
	def := n.Definition()
	if def.IsBlob() {
		return nil
	}
	if def.IsUnknown() || def.IsErrorParser() {
		if n.IsRoot() {
			return nil
		}
		kind := UnknownParser
		if n.FirstWord() == "" {
			kind = BlankLine
		}
		return []*Error{{Kind: kind, node: n}}
	}

	var errs []*Error
	for _, cell := range n.ParsedCells() {
		if err := cell.Error(); err != nil {
			errs = append(errs, err)
		}
	}
	return append(errs, n.scopeErrors(def)...)
}

func (n *Node) scopeErrors(def *grammar.ParserDef) []*Error {
	var errs []*Error
	if parent := n.Parent(); parent != nil {
		if def.IsSingle() {
			for i, hit := range parent.ChildrenOfParser(def.ID) {
				if i > 0 && hit == n {
					errs = append(errs, &Error{Kind: ParserUsedMultipleTimes, node: n})
				}
			}
		}
		if def.IsUniqueLine() {
			for _, hit := range parent.ChildrenOfParser(def.ID) {
				if hit == n {
					break
				}
				if hit.Line() == n.Line() {
					errs = append(errs, &Error{Kind: ParserUsedMultipleTimes, node: n})
					break
				}
			}
		}
	}
	var checked []string
	for _, id := range def.InScopeIDs() {
		child := def.Lookup(id)
		if child == nil || !child.IsRequired() {
			continue
		}
		checked = append(checked, id)
		if len(n.ChildrenOfParser(id)) == 0 {
			errs = append(errs, &Error{Kind: MissingRequiredParser, node: n, missing: id})
		}
	}
	// Concrete definitions reached through an abstract in-scope id carry
	// their own required flag.
	for _, child := range def.ConcreteInScope() {
		if !child.DeclaresRequired() || child.IsOrExtendsAny(checked) {
			continue
		}
		if len(n.ChildrenOfParser(child.ID)) == 0 {
			errs = append(errs, &Error{Kind: MissingRequiredParser, node: n, missing: child.ID})
		}
	}
	return errs
}

// didYouMean returns the option closest to word, ignoring case, or "" when
// none is close enough.
func didYouMean(word string, options []string) string {
	best, bestScore := "", 0.0
	lower := strings.ToLower(word)
	for _, option := range options {
		if option == word {
			continue
		}
		distance := levenshtein.Distance(lower, strings.ToLower(option), nil)
		score := float64(distance) / float64(max(len(word), len(option), 1))
		if score <= suggestionThreshold && (best == "" || score < bestScore) {
			best, bestScore = option, score
		}
	}
	return best
}

const suggestionThreshold = 0.4

func listToEnglish(list []string, limit int) string {
	if len(list) == 0 {
		return "none"
	}
	shown := list
	if len(shown) > limit {
		shown = shown[:limit]
	}
	quoted := make([]string, len(shown))
	for i, item := range shown {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	text := strings.Join(quoted, ", ")
	if len(list) > limit {
		text += " and more"
	}
	return text
}
