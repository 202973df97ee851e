package ingest

import "errors"

// ErrMalformed indicates a structurally invalid record (a negative count
// or length where the wire format requires non-negative), as distinct
// from plain truncation, which is reported as io.ErrUnexpectedEOF.
var ErrMalformed = errors.New("ingest: malformed record")
