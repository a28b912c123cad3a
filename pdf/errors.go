package pdf

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDocument is wrapped by InputError when the source bytes are not a readable PDF
	ErrInvalidDocument = errors.New("invalid PDF document")

	// ErrDocumentClosed is returned by a Document after it has been serialized
	ErrDocumentClosed = errors.New("document already serialized")
)

// InputError is fatal to a pipeline invocation: the source document or the report description is unusable.
type InputError struct {
	Msg string
	Err error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *InputError) Unwrap() error { return e.Err }

func inputErrorf(format string, args ...interface{}) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err carries an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// DecodeError records an embedded image that could not be decoded. It never aborts a pipeline.
type DecodeError struct {
	Page  int // 0-based
	Index int // 0-based position on the page
	Name  string
	Err   error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("page %d image %d (%s): %v", e.Page+1, e.Index+1, e.Name, e.Err)
}

func (e DecodeError) Unwrap() error { return e.Err }

// ReferenceError records a report placement that could not be resolved. It never aborts a pipeline.
type ReferenceError struct {
	Piece  string
	Page   int // 1-based, as supplied
	Index  int // 1-based, as supplied
	Reason string
}

func (e ReferenceError) Error() string {
	if e.Piece == "" {
		return fmt.Sprintf("page %d image %d: %s", e.Page, e.Index, e.Reason)
	}
	return fmt.Sprintf("piece %q page %d image %d: %s", e.Piece, e.Page, e.Index, e.Reason)
}
