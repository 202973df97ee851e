package solver

import "errors"

// ErrEmptyGraph is returned by New when given a zero-length node slice,
// since a solver over no nodes can never have a valid start or end index.
var ErrEmptyGraph = errors.New("solver: node slice is empty")

// ErrIndexOutOfRange is returned when a start or end index falls outside
// the bound node slice.
var ErrIndexOutOfRange = errors.New("solver: start or end index out of range")
