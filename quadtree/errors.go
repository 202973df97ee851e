package quadtree

import "errors"

// ErrInvariantViolation indicates a point was inside a node's boundary but
// not inside any of its children (or, during insertion, inside a leaf's
// parent but not the leaf itself). Per SPEC_FULL.md §7 this is a fatal
// assertion: it means the quadtree's partition invariant has been broken,
// most likely by a floating-point edge case the subdivision arithmetic
// didn't anticipate. Callers that embed the engine in a supervised
// goroutine may recover() this panic; the default is to crash.
var ErrInvariantViolation = errors.New("quadtree: point inside boundary but not inside any child")
