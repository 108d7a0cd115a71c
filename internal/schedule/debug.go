package schedule

import (
	"fmt"
	"io"
)

// Observer receives progress notifications from the search. Observers are
// passive: they must not influence which schedules the search produces.
type Observer interface {
	// OnSuccess is called with every complete schedule the search yields.
	OnSuccess(schedule []Item)
	// OnDeadEnd is called when a branch terminates with no continuation.
	OnDeadEnd(schedule []Item)
}

// Debugger is the standard Observer. It counts successes and dead ends,
// retains the longest dead-end branch seen, and, when DebugLength is set,
// makes the search write a step-by-step explanation of every decision taken
// at schedule lengths at or beyond that threshold. Replaying a failed search
// with DebugLength set to the length of the longest dead end shows exactly
// why the most promising branch could not be completed.
type Debugger struct {
	Successes int
	DeadEnds  int

	// LongestDeadEnd is the longest rejected partial schedule.
	LongestDeadEnd []Item

	// DebugLength, when positive, turns on explanation output (to Out)
	// for search states whose partial schedule has at least this many
	// items.
	DebugLength int
	Out         io.Writer

	// Next, when non-nil, also receives every notification. It lets a
	// caller-supplied observer ride along with the entry point's own
	// bookkeeping.
	Next Observer
}

// OnSuccess implements Observer.
func (d *Debugger) OnSuccess(schedule []Item) {
	d.Successes++
	if d.Next != nil {
		d.Next.OnSuccess(schedule)
	}
}

// OnDeadEnd implements Observer.
func (d *Debugger) OnDeadEnd(schedule []Item) {
	if len(schedule) > len(d.LongestDeadEnd) {
		d.LongestDeadEnd = schedule
	}
	d.DeadEnds++
	if d.Next != nil {
		d.Next.OnDeadEnd(schedule)
	}
}

// explaining reports whether the search should narrate decisions for a
// partial schedule of the given length.
func (d *Debugger) explaining(scheduleLen int) bool {
	return d != nil && d.Out != nil && d.DebugLength > 0 && scheduleLen >= d.DebugLength
}

// explainf writes one explanation line.
func (d *Debugger) explainf(format string, args ...any) {
	fmt.Fprintf(d.Out, format+"\n", args...)
}
