package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polysched/polysched/internal/kernel"
	"github.com/polysched/polysched/internal/schedule"
	"github.com/polysched/polysched/internal/strset"
)

// AssertWellNested checks that EnterLoop/LeaveLoop items form a balanced,
// stack-matching sequence.
func AssertWellNested(t *testing.T, sched []schedule.Item) {
	t.Helper()
	var stack []string
	for i, item := range sched {
		switch it := item.(type) {
		case schedule.EnterLoop:
			stack = append(stack, it.Iname)
		case schedule.LeaveLoop:
			require.NotEmpty(t, stack, "LeaveLoop(%s) at index %d with no open loop", it.Iname, i)
			require.Equal(t, stack[len(stack)-1], it.Iname, "LeaveLoop at index %d does not match innermost loop", i)
			stack = stack[:len(stack)-1]
		}
	}
	assert.Empty(t, stack, "schedule leaves loops open: %v", stack)
}

// AssertRunsExactlyOnce checks that every instruction of the kernel appears
// in exactly one RunInstruction item.
func AssertRunsExactlyOnce(t *testing.T, sched []schedule.Item, k *kernel.Kernel) {
	t.Helper()
	counts := make(map[string]int)
	for _, item := range sched {
		if run, ok := item.(schedule.RunInstruction); ok {
			counts[run.InsnID]++
		}
	}
	for _, insn := range k.Instructions {
		assert.Equal(t, 1, counts[insn.ID], "instruction %q run count", insn.ID)
	}
	assert.Len(t, counts, len(k.Instructions), "schedule runs unknown instructions")
}

// AssertDependencyOrder checks that every instruction runs after all of its
// direct and transitive dependencies.
func AssertDependencyOrder(t *testing.T, sched []schedule.Item, k *kernel.Kernel) {
	t.Helper()
	position := make(map[string]int)
	for i, item := range sched {
		if run, ok := item.(schedule.RunInstruction); ok {
			position[run.InsnID] = i
		}
	}
	for id, deps := range k.RecursiveDepMap() {
		for dep := range deps {
			assert.Less(t, position[dep], position[id],
				"instruction %q must run after its dependency %q", id, dep)
		}
	}
}

// AssertActiveInames checks that the loops open at each RunInstruction
// equal the instruction's required inames (ignoring hardware-parallel
// inames, which are always active). When boosting was permitted, extra open
// loops are allowed if they come from the instruction's BoostableInto set.
func AssertActiveInames(t *testing.T, sched []schedule.Item, k *kernel.Kernel, allowBoost bool) {
	t.Helper()
	parallel := strset.New()
	for iname := range k.AllInames() {
		if k.Tag(iname).HardwareParallel() {
			parallel.Add(iname)
		}
	}
	for i, item := range sched {
		run, ok := item.(schedule.RunInstruction)
		if !ok {
			continue
		}
		active := schedule.ActiveInamesAt(sched, i).Minus(parallel)
		want := k.InsnInames(run.InsnID).Minus(parallel)
		if !allowBoost {
			assert.True(t, want.Equal(active),
				"instruction %q runs under %v, requires %v", run.InsnID, active.Sorted(), want.Sorted())
			continue
		}
		insn := k.IDToInsn(run.InsnID)
		extra := active.Minus(want)
		assert.True(t, want.SubsetOf(active),
			"instruction %q runs under %v, requires at least %v", run.InsnID, active.Sorted(), want.Sorted())
		assert.True(t, extra.SubsetOf(strset.FromSlice(insn.BoostableInto)),
			"instruction %q boosted into %v beyond its boostable set %v",
			run.InsnID, extra.Sorted(), insn.BoostableInto)
	}
}
