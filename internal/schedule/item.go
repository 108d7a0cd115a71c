// Package schedule implements the instruction-scheduling core: the
// loop-nest requirement map, the backtracking search that linearizes a
// kernel into a well-nested sequence of loop entries, loop exits and
// instruction runs, and the post-pass that inserts the memory barriers the
// resulting order needs on a parallel device.
package schedule

import (
	"fmt"
	"strings"

	"github.com/polysched/polysched/internal/strset"
)

// Item is one element of a schedule. The concrete types are EnterLoop,
// LeaveLoop, RunInstruction and Barrier; the set is closed.
type Item interface {
	schedItem()
}

// EnterLoop opens a loop over an iname.
type EnterLoop struct {
	Iname string
}

// LeaveLoop closes the innermost open loop; it matches the most recent
// unmatched EnterLoop with the same iname.
type LeaveLoop struct {
	Iname string
}

// RunInstruction executes an instruction once under all currently active
// inames.
type RunInstruction struct {
	InsnID string
}

// BarrierKind distinguishes the memory scope a barrier synchronizes.
type BarrierKind int

const (
	// KindLocal synchronizes work-group local memory.
	KindLocal BarrierKind = iota
	// KindGlobal synchronizes global memory. A global barrier also
	// satisfies any local synchronization requirement.
	KindGlobal
)

// String returns "local" or "global".
func (k BarrierKind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindGlobal:
		return "global"
	default:
		return fmt.Sprintf("BarrierKind(%d)", int(k))
	}
}

// Barrier is a synchronization point inserted by barrier insertion. Comment
// records the hazard that caused it.
type Barrier struct {
	Kind    BarrierKind
	Comment string
}

func (EnterLoop) schedItem()      {}
func (LeaveLoop) schedItem()      {}
func (RunInstruction) schedItem() {}
func (Barrier) schedItem()        {}

// Dump renders a schedule on one line: "<i> a b </i> |". Loop entries and
// exits use angle brackets, barriers a pipe, instructions their bare id.
func Dump(schedule []Item) string {
	entries := make([]string, 0, len(schedule))
	for _, item := range schedule {
		switch it := item.(type) {
		case EnterLoop:
			entries = append(entries, "<"+it.Iname+">")
		case LeaveLoop:
			entries = append(entries, "</"+it.Iname+">")
		case RunInstruction:
			entries = append(entries, it.InsnID)
		case Barrier:
			entries = append(entries, "|")
		default:
			panic(fmt.Sprintf("unexpected schedule item type %T", item))
		}
	}
	return strings.Join(entries, " ")
}

// extend returns a new schedule with item appended. Schedules are shared
// between search branches, so the backing array is never reused.
func extend(schedule []Item, item Item) []Item {
	out := make([]Item, len(schedule)+1)
	copy(out, schedule)
	out[len(schedule)] = item
	return out
}

// gatherSubloop returns the slice schedule[start:end] spanning the EnterLoop
// at start up to and including its matching LeaveLoop, along with the index
// just past it. It panics if start does not hold an EnterLoop or the
// schedule is not well nested; both indicate a scheduler bug.
func gatherSubloop(schedule []Item, start int) ([]Item, int) {
	if _, ok := schedule[start].(EnterLoop); !ok {
		panic(fmt.Sprintf("gatherSubloop: item at %d is %T, not EnterLoop", start, schedule[start]))
	}
	level := 0
	for i := start; i < len(schedule); i++ {
		switch schedule[i].(type) {
		case EnterLoop:
			level++
		case LeaveLoop:
			level--
			if level == 0 {
				return schedule[start : i+1], i + 1
			}
		}
	}
	panic("gatherSubloop: unbalanced schedule")
}

// ActiveInamesAt returns the set of inames whose loops are open just before
// the given schedule index.
func ActiveInamesAt(schedule []Item, index int) strset.Set {
	var stack []string
	for _, item := range schedule[:index] {
		switch it := item.(type) {
		case EnterLoop:
			stack = append(stack, it.Iname)
		case LeaveLoop:
			stack = stack[:len(stack)-1]
		}
	}
	return strset.FromSlice(stack)
}

// HasBarrierWithin reports whether the item at the given index is a barrier
// or a loop containing one.
func HasBarrierWithin(schedule []Item, index int) bool {
	switch schedule[index].(type) {
	case EnterLoop:
		contents, _ := gatherSubloop(schedule, index)
		for _, item := range contents {
			if _, ok := item.(Barrier); ok {
				return true
			}
		}
		return false
	case Barrier:
		return true
	default:
		return false
	}
}

// UsedInamesWithin returns the inames entered anywhere within the item at
// the given index: for an EnterLoop, the loop's own iname and every nested
// one; nothing for other items.
func UsedInamesWithin(schedule []Item, index int) strset.Set {
	names := strset.New()
	if _, ok := schedule[index].(EnterLoop); ok {
		contents, _ := gatherSubloop(schedule, index)
		for _, item := range contents {
			if enter, ok := item.(EnterLoop); ok {
				names.Add(enter.Iname)
			}
		}
	}
	return names
}

// insnIDsFromSchedule returns the instruction ids run anywhere in the given
// schedule slice, in schedule order.
func insnIDsFromSchedule(schedule []Item) []string {
	var result []string
	for _, item := range schedule {
		switch it := item.(type) {
		case RunInstruction:
			result = append(result, it.InsnID)
		case EnterLoop, LeaveLoop, Barrier:
		default:
			panic(fmt.Sprintf("unexpected schedule item type %T", item))
		}
	}
	return result
}
