package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	sched := []Item{
		RunInstruction{InsnID: "init"},
		Barrier{Kind: KindGlobal, Comment: "for x (a depends on init)"},
		EnterLoop{Iname: "i"},
		RunInstruction{InsnID: "a"},
		Barrier{Kind: KindLocal},
		RunInstruction{InsnID: "b"},
		LeaveLoop{Iname: "i"},
	}
	assert.Equal(t, "init | <i> a | b </i>", Dump(sched))
	assert.Equal(t, "", Dump(nil))
}

func TestExtendDoesNotShareBackingArray(t *testing.T) {
	base := extend(nil, RunInstruction{InsnID: "a"})
	left := extend(base, RunInstruction{InsnID: "b"})
	right := extend(base, RunInstruction{InsnID: "c"})

	assert.Equal(t, "a b", Dump(left))
	assert.Equal(t, "a c", Dump(right))
	assert.Equal(t, "a", Dump(base))
}

func TestGatherSubloop(t *testing.T) {
	sched := []Item{
		RunInstruction{InsnID: "pre"},
		EnterLoop{Iname: "i"},
		EnterLoop{Iname: "j"},
		RunInstruction{InsnID: "a"},
		LeaveLoop{Iname: "j"},
		LeaveLoop{Iname: "i"},
		RunInstruction{InsnID: "post"},
	}

	contents, next := gatherSubloop(sched, 1)
	assert.Equal(t, "<i> <j> a </j> </i>", Dump(contents))
	assert.Equal(t, 6, next)

	inner, next := gatherSubloop(sched, 2)
	assert.Equal(t, "<j> a </j>", Dump(inner))
	assert.Equal(t, 5, next)

	assert.Panics(t, func() { gatherSubloop(sched, 0) })
}

func TestActiveInamesAt(t *testing.T) {
	sched := []Item{
		EnterLoop{Iname: "i"},
		EnterLoop{Iname: "j"},
		RunInstruction{InsnID: "a"},
		LeaveLoop{Iname: "j"},
		RunInstruction{InsnID: "b"},
		LeaveLoop{Iname: "i"},
	}

	assert.Empty(t, ActiveInamesAt(sched, 0).Sorted())
	assert.Equal(t, []string{"i", "j"}, ActiveInamesAt(sched, 2).Sorted())
	assert.Equal(t, []string{"i"}, ActiveInamesAt(sched, 4).Sorted())
	assert.Empty(t, ActiveInamesAt(sched, 6).Sorted())
}

func TestUsedInamesWithin(t *testing.T) {
	sched := []Item{
		RunInstruction{InsnID: "pre"},
		EnterLoop{Iname: "i"},
		EnterLoop{Iname: "j"},
		RunInstruction{InsnID: "a"},
		LeaveLoop{Iname: "j"},
		LeaveLoop{Iname: "i"},
	}

	assert.Equal(t, []string{"i", "j"}, UsedInamesWithin(sched, 1).Sorted())
	assert.Equal(t, []string{"j"}, UsedInamesWithin(sched, 2).Sorted())
	assert.Empty(t, UsedInamesWithin(sched, 0).Sorted())
}

func TestHasBarrierWithin(t *testing.T) {
	sched := []Item{
		EnterLoop{Iname: "i"},
		RunInstruction{InsnID: "a"},
		Barrier{Kind: KindLocal},
		LeaveLoop{Iname: "i"},
		EnterLoop{Iname: "j"},
		RunInstruction{InsnID: "b"},
		LeaveLoop{Iname: "j"},
		Barrier{Kind: KindGlobal},
		RunInstruction{InsnID: "c"},
	}

	assert.True(t, HasBarrierWithin(sched, 0), "loop over i contains a barrier")
	assert.False(t, HasBarrierWithin(sched, 4), "loop over j does not")
	assert.True(t, HasBarrierWithin(sched, 7))
	assert.False(t, HasBarrierWithin(sched, 8))
}

func TestTailStartingAtLastBarrier(t *testing.T) {
	sched := []Item{
		RunInstruction{InsnID: "a"},
		Barrier{Kind: KindLocal},
		RunInstruction{InsnID: "b"},
		RunInstruction{InsnID: "c"},
	}

	assert.Equal(t, []string{"b", "c"}, tailStartingAtLastBarrier(sched, KindLocal))

	// A local barrier does not satisfy a global requirement, so the global
	// tail reaches back to the start.
	assert.Equal(t, []string{"a", "b", "c"}, tailStartingAtLastBarrier(sched, KindGlobal))

	require.Equal(t, []string{"a"}, tailStartingAtLastBarrier(sched[:1], KindLocal))
	assert.Empty(t, tailStartingAtLastBarrier(nil, KindLocal))
}

func TestKindMoreOrEquallyGlobal(t *testing.T) {
	assert.True(t, kindMoreOrEquallyGlobal(KindGlobal, KindLocal))
	assert.True(t, kindMoreOrEquallyGlobal(KindGlobal, KindGlobal))
	assert.True(t, kindMoreOrEquallyGlobal(KindLocal, KindLocal))
	assert.False(t, kindMoreOrEquallyGlobal(KindLocal, KindGlobal))
}
