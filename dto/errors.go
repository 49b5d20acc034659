package dto

import (
	"errors"
	"fmt"
	"strings"
)

// Session-level errors
var (
	ErrNoStatement = errors.New("no profit and loss statement loaded")
	ErrNoBalance   = errors.New("no balance sheet loaded")
)

// MalformedInputError means the uploaded workbook is missing required
// columns or contains no usable data. The upload is rejected and no
// extraction is attempted.
type MalformedInputError struct {
	Missing []string
	Reason  string
}

func (e *MalformedInputError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
	}
	return e.Reason
}

// ExportError wraps an I/O or rendering failure during export. The loaded
// dashboard state is not affected.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s export failed: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
