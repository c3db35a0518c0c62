// Package format serializes parsed documents for the command line and
// editors.
package format

import (
	"encoding"
	"io"

	"github.com/dhamidi/treelang/program"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(doc *program.Document) error
}

// For returns the encoder registered under name.
func For(name string, w io.Writer) (Encoder, bool) {
	switch name {
	case "json":
		return NewJSONEncoder(w), true
	case "errors":
		return NewErrorJSONEncoder(w), true
	case "line", "table":
		return NewLineEncoder(w), true
	}
	if kind, ok := treeKinds[name]; ok {
		return NewTreeEncoder(w, kind), true
	}
	return nil, false
}
