package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/treelang/program"
)

// JSONEncoder writes the typed map of a document.
type JSONEncoder struct {
	w   io.Writer
	doc *program.Document
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(doc *program.Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.doc.TypedMap(), "", "  ")
}

// ErrorJSONEncoder writes the errors of a document as a list of objects.
type ErrorJSONEncoder struct {
	w   io.Writer
	doc *program.Document
}

func NewErrorJSONEncoder(w io.Writer) *ErrorJSONEncoder {
	return &ErrorJSONEncoder{w: w}
}

func (e *ErrorJSONEncoder) Encode(doc *program.Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *ErrorJSONEncoder) MarshalText() ([]byte, error) {
	errs := e.doc.AllErrors()
	objects := make([]program.ErrorObject, len(errs))
	for i, err := range errs {
		objects[i] = err.Object()
	}
	return json.MarshalIndent(objects, "", "  ")
}
