package engine

import (
	"sync/atomic"
	"time"

	"github.com/arclight/tlrouter/geom"
	"github.com/arclight/tlrouter/solver"
	"go.uber.org/zap"
)

// BackgroundWorker runs one solver's Step in a dedicated goroutine,
// looping Step + sleep(interval) + check-terminate-flag until the search
// drains or Stop is called — the cooperative background-worker pattern
// spec.md §5 describes, letting a host render between batches instead of
// blocking on RunToCompletion.
type BackgroundWorker struct {
	solver    *solver.Solver
	interval  time.Duration
	logger    *zap.Logger
	timeOfDay float64

	stop atomic.Bool
	done chan struct{}
}

// RunBackground resolves src/dst to their nearest ingested nodes exactly as
// FindPath does, positions h's solver at that start/end pair, and starts a
// BackgroundWorker stepping it at the current wall-clock time of day. An
// unresolvable endpoint returns a worker whose Path never reports found —
// the same "empty path result" contract FindPath has, just observed
// asynchronously instead of returned directly.
func (e *Engine) RunBackground(h Handle, src, dst geom.Position) (*BackgroundWorker, error) {
	e.mu.Lock()
	s, ok := e.solverAtLocked(h)
	e.mu.Unlock()
	if !ok {
		return nil, ErrUnknownHandle
	}

	w := &BackgroundWorker{
		solver:   s,
		interval: e.cfg.BackgroundStepInterval,
		logger:   e.logger,
		done:     make(chan struct{}),
	}

	startIdx, startOK := e.closestNode(src)
	endIdx, endOK := e.closestNode(dst)
	if !startOK || !endOK {
		close(w.done)
		return w, nil
	}
	w.timeOfDay = currentHourOfDay(time.Now())
	if err := s.UpdateSearch(startIdx, endIdx); err != nil {
		close(w.done)
		return w, nil
	}

	go w.run()
	return w, nil
}

func (w *BackgroundWorker) run() {
	defer close(w.done)
	for {
		if w.stop.Load() {
			w.logger.Debug("background worker stopped")
			return
		}
		res := w.solver.Step(w.timeOfDay)
		if res.Done {
			w.logger.Debug("background worker drained", zap.Uint32("iterations", res.TotalIterations))
			return
		}
		time.Sleep(w.interval)
	}
}

// Stop signals the worker to exit after its in-flight Step call returns,
// and blocks until it has.
func (w *BackgroundWorker) Stop() {
	w.stop.Store(true)
	<-w.done
}

// Path returns the solver's most recently reconstructed path. Safe to call
// from any goroutine at any time, including while the worker is running —
// solver.Solver stores the cached path behind an atomic.Pointer precisely
// so this read never races Step's write.
func (w *BackgroundWorker) Path() (solver.PathResult, bool) {
	return w.solver.Path()
}
