package grammar

import (
	"errors"
	"fmt"
)

var (
	ErrCyclicInheritance = errors.New("cyclic inheritance")
	ErrUnknownParser     = errors.New("unknown parser")
	ErrUnknownCellType   = errors.New("unknown cell type")
	ErrNoRoot            = errors.New("no usable root parser")
	ErrInvalidPattern    = errors.New("invalid pattern")
)

// BuildError is a fatal problem found while building a grammar. Use
// errors.Is with the Err* sentinels to classify it.
type BuildError struct {
	Line int
	ID   string
	Err  error
	Msg  string
}

func (e *BuildError) Error() string {
	msg := e.Err.Error()
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.ID != "" {
		msg = fmt.Sprintf("%s: %s", e.ID, msg)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func buildErrorf(line int, id string, err error, format string, args ...any) *BuildError {
	return &BuildError{Line: line, ID: id, Err: err, Msg: fmt.Sprintf(format, args...)}
}
