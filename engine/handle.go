package engine

// Handle indexes a slot in the engine's solver pool, returned by
// BuildSolver and consumed by every other solver-scoped method. The zero
// value is a valid handle (slot 0) — callers must check BuildSolver's
// return against InvalidHandle, not against the zero value.
type Handle int

// InvalidHandle is returned by BuildSolver when every pool slot is in use
// or no nodes have been ingested yet.
const InvalidHandle Handle = -1
