package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Structural decode errors. Every error returned by Decode wraps exactly one
// of these inside a *DecodeError.
var (
	ErrInvalidWireType          = errors.New("invalid wire type")
	ErrUnsupportedWireType      = errors.New("unsupported wire type")
	ErrTruncatedFixed32         = errors.New("not enough bytes for a fixed32 field")
	ErrTruncatedFixed64         = errors.New("not enough bytes for a fixed64 field")
	ErrTruncatedLengthDelimited = errors.New("not enough bytes for a length-delimited field")
	ErrMalformedVarint          = errors.New("unterminated varint")
	ErrNestingTooDeep           = errors.New("message nesting too deep")
)

// DecodeError reports where in the input a structural rule was violated.
type DecodeError struct {
	Offset    int           // absolute byte offset into the outermost buffer
	FieldPath []FieldNumber // e.g. [11, 4] for field 4 of the message in field 11
	Err       error         // underlying sentinel error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if len(e.FieldPath) == 0 {
		return fmt.Sprintf("decoding error at offset %d: %v", e.Offset, e.Err)
	}

	path := make([]string, len(e.FieldPath))
	for i, num := range e.FieldPath {
		path[i] = strconv.FormatUint(uint64(num), 10)
	}
	return fmt.Sprintf("decoding error at offset %d, field path %s: %v", e.Offset, strings.Join(path, "."), e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(offset int, err error) *DecodeError {
	return &DecodeError{Offset: offset, Err: err}
}

// wrapWithField prefixes the field path of a nested decode error.
func wrapWithField(err error, num FieldNumber) error {
	if err == nil {
		return nil
	}

	var de *DecodeError
	if errors.As(err, &de) {
		return &DecodeError{
			Offset:    de.Offset,
			FieldPath: append([]FieldNumber{num}, de.FieldPath...),
			Err:       de.Err,
		}
	}

	return &DecodeError{
		FieldPath: []FieldNumber{num},
		Err:       err,
	}
}
