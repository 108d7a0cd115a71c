package schedule

import (
	"context"
	"fmt"
	"iter"

	"github.com/polysched/polysched/internal/ctxlog"
	"github.com/polysched/polysched/internal/kernel"
)

// Result is a finalized schedule for one kernel, together with the flag
// recording whether the search found more than one valid linearization.
type Result struct {
	Schedule  []Item
	Ambiguous bool
}

// ScheduledKernel couples a kernel with its finalized schedule. It is what
// the code-generation stage consumes.
type ScheduledKernel struct {
	Kernel    *kernel.Kernel
	Schedule  []Item
	Ambiguous bool
}

// Cache persists scheduling results keyed by the kernel content fingerprint.
// Get and Put are independent, idempotent operations; concurrent writers of
// the same key may silently replace each other, which is safe because equal
// keys imply equal values.
type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool)
	Put(ctx context.Context, key string, result *Result)
}

// NoScheduleError reports that the search space was exhausted without
// finding a valid schedule. It retains the longest dead-end branch so a
// human can see which instruction/iname combination was unsatisfiable.
type NoScheduleError struct {
	Kernel         string
	DeadEnds       int
	LongestDeadEnd []Item
}

// Error implements the error interface.
func (e *NoScheduleError) Error() string {
	return fmt.Sprintf("no valid schedule found for kernel %q after %d dead ends (longest dead end: %s)",
		e.Kernel, e.DeadEnds, Dump(e.LongestDeadEnd))
}

// Scheduler is the scheduling entry point. The zero value schedules without
// caching and without observation.
type Scheduler struct {
	// Cache, when non-nil, is consulted before and updated after a
	// search.
	Cache Cache

	// Observer, when non-nil, additionally receives search progress
	// notifications. The entry point always maintains its own Debugger
	// for failure reporting.
	Observer Observer
}

// Generate validates the kernel, builds the loop-nest map, and returns the
// lazy sequence of complete, barrier-inserted schedules in the search's
// deterministic exploration order. Two searches back the sequence: one with
// boosting never permitted and one with the default boosting escalation; the
// second is consulted only if the first yields nothing, and unboosted
// results are always preferred.
func (s *Scheduler) Generate(ctx context.Context, k *kernel.Kernel, dbg *Debugger) (iter.Seq[[]Item], error) {
	if err := k.Validate(); err != nil {
		return nil, fmt.Errorf("cannot schedule kernel: %w", err)
	}
	nestMap, err := BuildNestMap(ctx, k)
	if err != nil {
		return nil, fmt.Errorf("cannot schedule kernel %q: %w", k.Name, err)
	}
	state := newSchedulerState(k, nestMap)

	return func(yield func([]Item) bool) {
		produced := 0
		for _, mode := range []boostMode{boostNever, boostOff} {
			proceed := state.generate(nil, mode, false, dbg, func(sched []Item) bool {
				produced++
				final := InsertBarriers(k, sched, false, KindGlobal, 0)
				final = InsertBarriers(k, final, false, KindLocal, 0)
				return yield(final)
			})
			if !proceed {
				return
			}
			// If the no-boost search produced a viable schedule,
			// the boosting search is never consulted.
			if produced > 0 {
				return
			}
		}
	}, nil
}

// Schedule returns one finalized schedule for the kernel, from the cache
// when possible. The first schedule in exploration order wins; if a second
// one exists, the result is flagged ambiguous and a warning is logged, but
// only the first is kept. Exhausting the search without a result returns a
// *NoScheduleError.
func (s *Scheduler) Schedule(ctx context.Context, k *kernel.Kernel) (*ScheduledKernel, error) {
	logger := ctxlog.FromContext(ctx)
	key := k.Fingerprint()

	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, key); ok {
			logger.Info("Schedule cache hit.", "kernel", k.Name)
			return s.finish(ctx, k, cached)
		}
	}

	dbg := &Debugger{Next: s.Observer}
	seq, err := s.Generate(ctx, k, dbg)
	if err != nil {
		return nil, err
	}

	logger.Info("Schedule search started.", "kernel", k.Name)
	result := &Result{}
	count := 0
	for sched := range seq {
		count++
		if count == 1 {
			result.Schedule = sched
			continue
		}
		// A second result only marks ambiguity; it is discarded and
		// the search is abandoned.
		result.Ambiguous = true
		break
	}

	if count == 0 {
		return nil, &NoScheduleError{
			Kernel:         k.Name,
			DeadEnds:       dbg.DeadEnds,
			LongestDeadEnd: dbg.LongestDeadEnd,
		}
	}
	logger.Info("Schedule search done.", "kernel", k.Name, "dead_ends", dbg.DeadEnds)

	if s.Cache != nil {
		s.Cache.Put(ctx, key, result)
	}
	return s.finish(ctx, k, result)
}

// ExplainFailure re-runs a failed search with explanation output enabled,
// starting at the length of the longest dead-end branch previously seen.
// The returned error is nil only if the replay unexpectedly succeeds.
func (s *Scheduler) ExplainFailure(ctx context.Context, k *kernel.Kernel, failure *NoScheduleError, dbg *Debugger) error {
	dbg.DebugLength = len(failure.LongestDeadEnd)
	if dbg.DebugLength == 0 {
		dbg.DebugLength = 1
	}
	seq, err := s.Generate(ctx, k, dbg)
	if err != nil {
		return err
	}
	for range seq {
		return nil
	}
	return failure
}

func (s *Scheduler) finish(ctx context.Context, k *kernel.Kernel, result *Result) (*ScheduledKernel, error) {
	if result.Ambiguous {
		ctxlog.FromContext(ctx).Warn(
			"Kernel scheduling was ambiguous; more than one schedule found, using the first.",
			"kernel", k.Name)
	}
	return &ScheduledKernel{
		Kernel:    k,
		Schedule:  result.Schedule,
		Ambiguous: result.Ambiguous,
	}, nil
}
