package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/polysched/polysched/internal/kernel"
	"github.com/polysched/polysched/internal/strset"
)

// boostMode controls whether instructions may be scheduled under more inames
// than their minimal set (drawn from their BoostableInto sets).
type boostMode int

const (
	// boostNever forbids boosting for the whole search; there is no
	// escalation.
	boostNever boostMode = iota
	// boostOff forbids boosting for now but allows a dead-ended branch to
	// retry with boostOn.
	boostOff
	// boostOn permits boosting.
	boostOn
)

// schedulerState is the immutable per-search context: the kernel, the
// loop-nest requirement map, and the iname classifications derived from the
// hardware tags.
type schedulerState struct {
	kernel       *kernel.Kernel
	nestMap      NestMap
	loopPriority []string

	// ilpInames are realized as innermost unrolled loops and may be left
	// before all their instructions have run (breakable).
	ilpInames strset.Set
	// vecInames must end up absolutely innermost.
	vecInames strset.Set
	// parallelInames are hardware axes; they are never entered or left
	// and count as always active.
	parallelInames strset.Set
	// breakableInames may be left without having completed; today this is
	// exactly the ILP set.
	breakableInames strset.Set
}

func newSchedulerState(k *kernel.Kernel, nestMap NestMap) *schedulerState {
	ilp := strset.New()
	vec := strset.New()
	parallel := strset.New()
	for iname := range k.AllInames() {
		switch k.Tag(iname) {
		case kernel.TagILP:
			ilp.Add(iname)
		case kernel.TagVectorize:
			vec.Add(iname)
		case kernel.TagGroupIndex, kernel.TagLocalIndex:
			parallel.Add(iname)
		}
	}
	return &schedulerState{
		kernel:       k,
		nestMap:      nestMap,
		loopPriority: k.LoopPriority,
		ilpInames:    ilp,
		vecInames:    vec,
		// ILP and vectorize inames are parallel in principle, but the
		// scheduler realizes them as real loops, so they are not part
		// of the always-active set.
		parallelInames:  parallel,
		breakableInames: ilp,
	}
}

// generate is the recursive backtracking search. It extends the given
// partial schedule in every legal way and calls yield with each complete
// schedule, depth first. It returns false as soon as yield does, which
// abandons all remaining branches; laziness is what keeps the exponential
// space affordable when the consumer only wants one or two results.
//
// allowInsn starts false and is reset to false after entering each loop, so
// that the search first tries to descend into further nested loops before
// committing an instruction to the current nesting level. This gives deeply
// nested high-priority instructions a chance to pick their ideal nest.
func (s *schedulerState) generate(schedule []Item, allowBoost boostMode, allowInsn bool, dbg *Debugger, yield func([]Item) bool) bool {
	k := s.kernel

	scheduledIDs := strset.New()
	for _, item := range schedule {
		if run, ok := item.(RunInstruction); ok {
			scheduledIDs.Add(run.InsnID)
		}
	}
	unscheduledIDs := strset.New()
	for _, insn := range k.Instructions {
		if !scheduledIDs.Has(insn.ID) {
			unscheduledIDs.Add(insn.ID)
		}
	}

	recBoost := boostOff
	if allowBoost == boostNever {
		recBoost = boostNever
	}

	var activeStack []string
	for _, item := range schedule {
		switch it := item.(type) {
		case EnterLoop:
			activeStack = append(activeStack, it.Iname)
		case LeaveLoop:
			activeStack = activeStack[:len(activeStack)-1]
		}
	}
	activeSet := strset.FromSlice(activeStack)

	explain := dbg.explaining(len(schedule))
	if explain {
		dbg.explainf("%s", strings.Repeat("=", 75))
		dbg.explainf("current schedule: %s (length %d)", Dump(schedule), len(schedule))
	}

	// Try to run an instruction. The first ready instruction, in
	// descending priority order, is a forced continuation, not a choice
	// point. Along the way, collect the instructions that could still
	// become schedulable deeper inside the current nest.
	reachableIDs := strset.New()

	order := unscheduledIDs.Sorted()
	sort.SliceStable(order, func(i, j int) bool {
		pi := k.IDToInsn(order[i]).Priority
		pj := k.IDToInsn(order[j]).Priority
		if pi != pj {
			return pi > pj
		}
		return order[i] < order[j]
	})

	for _, insnID := range order {
		insn := k.IDToInsn(insnID)

		isReady := strset.FromSlice(insn.DependsOn).SubsetOf(scheduledIDs)
		if !isReady {
			if explain {
				missing := strset.FromSlice(insn.DependsOn).Minus(scheduledIDs)
				dbg.explainf("instruction %q is missing dependencies %s", insnID, strings.Join(missing.Sorted(), ","))
			}
			continue
		}

		want := k.InsnInames(insnID).Minus(s.parallelInames)
		have := activeSet.Minus(s.parallelInames)

		// A boostable instruction may run inside a deeper nest than
		// its minimal one; its extra inames are simply discounted.
		if allowBoost == boostOn {
			have = have.Minus(strset.FromSlice(insn.BoostableInto))
		}

		if !want.Equal(have) {
			isReady = false
			if explain {
				if missing := want.Minus(have); missing.Len() > 0 {
					dbg.explainf("instruction %q is missing inames %s", insnID, strings.Join(missing.Sorted(), ","))
				}
				if excess := have.Minus(want); excess.Len() > 0 {
					dbg.explainf("instruction %q won't work under inames %s", insnID, strings.Join(excess.Sorted(), ","))
				}
			}
		}

		if !isReady && have.SubsetOf(want) {
			reachableIDs.Add(insnID)
		}

		if isReady && allowInsn {
			if explain {
				dbg.explainf("scheduling %q", insnID)
			}
			return s.generate(extend(schedule, RunInstruction{InsnID: insnID}), recBoost, true, dbg, yield)
		}
	}

	// Try to leave the innermost loop. Leaving requires that no remaining
	// instruction needs the loop (unless it is breakable) and that at
	// least one instruction ran since entering it; empty loop bodies are
	// never emitted. Like running an instruction, this is a forced
	// continuation.
	if len(activeStack) > 0 {
		lastEntered := activeStack[len(activeStack)-1]

		canLeave := true
		if !s.breakableInames.Has(lastEntered) {
			for _, insnID := range unscheduledIDs.Sorted() {
				if k.InsnInames(insnID).Has(lastEntered) {
					if explain {
						dbg.explainf("cannot leave %q because %q still needs it", lastEntered, insnID)
					}
					canLeave = false
					break
				}
			}
		}

		if canLeave {
			canLeave = false
			seenInsn := false
			ignore := 0
		scan:
			for i := len(schedule) - 1; i >= 0; i-- {
				switch schedule[i].(type) {
				case RunInstruction:
					seenInsn = true
				case LeaveLoop:
					ignore++
				case EnterLoop:
					if ignore > 0 {
						ignore--
					} else {
						if seenInsn {
							canLeave = true
						}
						break scan
					}
				}
			}

			if canLeave {
				return s.generate(extend(schedule, LeaveLoop{Iname: lastEntered}), recBoost, allowInsn, dbg, yield)
			}
		}
	}

	// Try to enter a new loop. This is the only true choice point of the
	// search. Candidate inames are grouped into ordered tiers; within a
	// tier candidates are tried by descending usefulness, and as soon as
	// any tier produces at least one complete schedule, later tiers are
	// not tried at all.
	neededInames := strset.New()
	for insnID := range unscheduledIDs {
		for iname := range k.InsnInames(insnID) {
			neededInames.Add(iname)
		}
	}
	// There is no notion of entering a hardware-parallel loop, and a loop
	// that is already open cannot be entered again.
	neededInames = neededInames.Minus(s.parallelInames).Minus(activeSet)

	if explain {
		dbg.explainf("%s", strings.Repeat("-", 75))
		dbg.explainf("inames still needed: %s", strings.Join(neededInames.Sorted(), ","))
		dbg.explainf("active inames: %s", strings.Join(activeStack, ","))
		dbg.explainf("reachable instructions: %s", strings.Join(reachableIDs.Sorted(), ","))
	}

	if neededInames.Len() > 0 {
		usefulness := make(map[string]int)

		for _, iname := range neededInames.Sorted() {
			accessible := activeSet.Union(s.parallelInames)
			if !s.nestMap[iname].SubsetOf(accessible) {
				if explain {
					dbg.explainf("entering %q prohibited by loop nest map", iname)
				}
				continue
			}

			homeIdx, err := k.HomeDomainIndex(iname)
			if err != nil {
				panic(fmt.Sprintf("scheduler: %v", err))
			}

			// A domain parameter that is a runtime-computed
			// temporary pins the loop entry behind its writer.
			dataDepWritten := true
			for _, param := range k.Domains[homeIdx].Parameters {
				if _, isTemp := k.Temporaries[param]; !isTemp {
					continue
				}
				for writer := range k.WriterMap()[param] {
					if !scheduledIDs.Has(writer) {
						dataDepWritten = false
						break
					}
				}
				if !dataDepWritten {
					break
				}
			}
			if !dataDepWritten {
				continue
			}

			// Usefulness: the highest priority among instructions
			// that entering this loop keeps reachable.
			hypothetical := activeSet.Union(strset.New(iname))
			best := 0
			found := false
			for _, insnID := range reachableIDs.Sorted() {
				insn := k.IDToInsn(insnID)
				want := k.InsnInames(insnID).Union(strset.FromSlice(insn.BoostableInto))
				if hypothetical.SubsetOf(want) {
					if !found || insn.Priority > best {
						best = insn.Priority
					}
					found = true
				}
			}
			if !found {
				if explain {
					dbg.explainf("iname %q deemed not useful", iname)
				}
				continue
			}
			usefulness[iname] = best
		}

		usefulSet := strset.New()
		for iname := range usefulness {
			usefulSet.Add(iname)
		}
		prioritySet := strset.FromSlice(s.loopPriority)
		usefulAndDesired := usefulSet.Intersect(prioritySet)

		var tiers [][]string
		if usefulAndDesired.Len() > 0 {
			for _, iname := range s.loopPriority {
				if usefulAndDesired.Has(iname) && !s.ilpInames.Has(iname) && !s.vecInames.Has(iname) {
					tiers = append(tiers, []string{iname})
				}
			}
			tiers = append(tiers, usefulSet.Minus(prioritySet).Minus(s.ilpInames).Minus(s.vecInames).Sorted())
		} else {
			tiers = append(tiers, usefulSet.Minus(s.ilpInames).Minus(s.vecInames).Sorted())
		}
		// ILP and vectorized loops must end up innermost, vectorized
		// ones absolutely so; they get their own trailing tiers.
		for _, iname := range s.ilpInames.Sorted() {
			if usefulSet.Has(iname) {
				tiers = append(tiers, []string{iname})
			}
		}
		for _, iname := range s.vecInames.Sorted() {
			if usefulSet.Has(iname) {
				tiers = append(tiers, []string{iname})
			}
		}

		if explain {
			dbg.explainf("useful inames: %s", strings.Join(usefulSet.Sorted(), ","))
		}

		for _, tier := range tiers {
			candidates := append([]string(nil), tier...)
			sort.SliceStable(candidates, func(i, j int) bool {
				ui := usefulness[candidates[i]]
				uj := usefulness[candidates[j]]
				if ui != uj {
					return ui > uj
				}
				return candidates[i] < candidates[j]
			})

			foundViable := false
			for _, iname := range candidates {
				ok := s.generate(extend(schedule, EnterLoop{Iname: iname}), recBoost, false, dbg, func(sub []Item) bool {
					foundViable = true
					return yield(sub)
				})
				if !ok {
					return false
				}
			}
			if foundViable {
				return true
			}
		}
	}

	// Terminal success: nothing left to do.
	if len(activeStack) == 0 && unscheduledIDs.Len() == 0 {
		if dbg != nil {
			dbg.OnSuccess(schedule)
		}
		return yield(schedule)
	}

	// Dead-end escalation: first permit scheduling an instruction at this
	// level, then permit boosting. Only a branch with nothing left to
	// escalate is a true dead end.
	if !allowInsn {
		if !s.generate(schedule, allowBoost, true, dbg, yield) {
			return false
		}
	}
	if allowBoost == boostOff {
		return s.generate(schedule, boostOn, allowInsn, dbg, yield)
	}
	if dbg != nil {
		dbg.OnDeadEnd(schedule)
	}
	return true
}
