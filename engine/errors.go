package engine

import "errors"

// ErrMalformedIngest marks an ingest decode failure; the returned error
// wraps this sentinel and carries the decoder's message as text only, so
// errors.Is does not match the decoder's own errors through it. Fatal: a
// host that receives it should treat the whole ingest call as having never
// happened, per spec.md §7.
var ErrMalformedIngest = errors.New("engine: malformed ingest payload")

// ErrUnknownHandle is returned by every solver-scoped method when h does
// not refer to a live (built, not yet destroyed) solver.
var ErrUnknownHandle = errors.New("engine: unknown or destroyed solver handle")

// ErrFlagCountMismatch is returned by UpdateLightFlags when the supplied
// slice's length doesn't match the number of ingested traffic lights.
var ErrFlagCountMismatch = errors.New("engine: flag count does not match ingested traffic light count")
