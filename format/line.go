package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/treelang/program"
)

// LineEncoder writes the parse table of a document, one tab separated row
// per line: line index, source, parser id, cell types, error count and
// error messages.
type LineEncoder struct {
	w   io.Writer
	doc *program.Document
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(doc *program.Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, row := range e.doc.ParseTable() {
		fmt.Fprintf(&sb, "%d\t%s\t%s\t%s\t%d\t%s\n",
			row.Line,
			row.Source,
			row.Parser,
			joinOrDash(row.CellTypes, ","),
			len(row.Errors),
			joinOrDash(row.Errors, ";"),
		)
	}
	return []byte(sb.String()), nil
}

// CompletionLineEncoder writes the autocomplete table of a document: line,
// character, word index, word and the space separated suggestions.
type CompletionLineEncoder struct {
	w   io.Writer
	doc *program.Document
}

func NewCompletionLineEncoder(w io.Writer) *CompletionLineEncoder {
	return &CompletionLineEncoder{w: w}
}

func (e *CompletionLineEncoder) Encode(doc *program.Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *CompletionLineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, row := range e.doc.AutocompleteTable() {
		fmt.Fprintf(&sb, "%d\t%d\t%d\t%s\t%s\n",
			row.Line,
			row.Char,
			row.WordIndex,
			row.Word,
			joinOrDash(row.Suggestions, " "),
		)
	}
	return []byte(sb.String()), nil
}

func joinOrDash(parts []string, sep string) string {
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, sep)
}
