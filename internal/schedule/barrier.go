package schedule

import (
	"fmt"

	"github.com/polysched/polysched/internal/kernel"
	"github.com/polysched/polysched/internal/strset"
)

// DependencyRecord describes one barrier-needing hazard between two
// instructions: a dependency relation plus a shared read/write on a variable
// of the relevant storage kind.
type DependencyRecord struct {
	Source   *kernel.Instruction
	Target   *kernel.Instruction
	Variable string
	VarKind  BarrierKind

	// Forward is true when the target depends on the source, false for a
	// loop-carried reverse hazard (source depends on target, separated by
	// loop repetition).
	Forward bool
}

// kindMoreOrEquallyGlobal reports whether a barrier of kind a satisfies a
// synchronization requirement of kind b. Global barriers also satisfy local
// requirements, not vice versa.
func kindMoreOrEquallyGlobal(a, b BarrierKind) bool {
	return a == b || (a == KindGlobal && b == KindLocal)
}

// barrierNeedingDependency reports the hazard between target and source for
// the given storage kind, or nil. A hazard requires a direct or transitive
// instruction dependency between the two plus a read-after-write,
// write-after-read, or write-after-write pair on a shared variable of that
// kind. Dependencies are never guessed from variable access alone.
//
// With reverse set, the roles of source and target are swapped before the
// dependency check; this finds the loop-carried hazards between the tail of
// one loop iteration and the head of the next.
func barrierNeedingDependency(k *kernel.Kernel, targetID, sourceID string, reverse bool, varKind BarrierKind) *DependencyRecord {
	source := k.IDToInsn(sourceID)
	target := k.IDToInsn(targetID)
	if source == nil || target == nil {
		panic(fmt.Sprintf("barrier insertion: unknown instruction %q/%q", sourceID, targetID))
	}
	if reverse {
		source, target = target, source
	}

	if !k.RecursiveDepMap()[target.ID].Has(source.ID) {
		return nil
	}

	var relevantVars strset.Set
	switch varKind {
	case KindLocal:
		relevantVars = k.LocalVarNames()
	case KindGlobal:
		relevantVars = k.GlobalVarNames()
	default:
		panic(fmt.Sprintf("unknown barrier kind %v", varKind))
	}

	tgtWrite := target.WriteVariableNames().Intersect(relevantVars)
	tgtRead := target.ReadVariableNames().Intersect(relevantVars)
	srcWrite := source.WriteVariableNames().Intersect(relevantVars)
	srcRead := source.ReadVariableNames().Intersect(relevantVars)

	waw := tgtWrite.Intersect(srcWrite)
	raw := tgtRead.Intersect(srcWrite)
	war := tgtWrite.Intersect(srcRead)

	for _, variable := range raw.Union(war).Sorted() {
		return &DependencyRecord{
			Source:   source,
			Target:   target,
			Variable: variable,
			VarKind:  varKind,
			Forward:  !reverse,
		}
	}

	// An instruction rewriting its own output needs no barrier against
	// itself.
	if source == target {
		return nil
	}

	for _, variable := range waw.Sorted() {
		return &DependencyRecord{
			Source:   source,
			Target:   target,
			Variable: variable,
			VarKind:  varKind,
			Forward:  !reverse,
		}
	}

	return nil
}

// tailStartingAtLastBarrier returns the ids of instructions run after the
// last barrier in the schedule that is at least as global as kind. These are
// the candidate hazard sources that a reverse (loop-carried) pass has to
// consider.
func tailStartingAtLastBarrier(schedule []Item, kind BarrierKind) []string {
	var reversed []string
scan:
	for i := len(schedule) - 1; i >= 0; i-- {
		switch it := schedule[i].(type) {
		case Barrier:
			if kindMoreOrEquallyGlobal(it.Kind, kind) {
				break scan
			}
		case RunInstruction:
			reversed = append(reversed, it.InsnID)
		case EnterLoop, LeaveLoop:
		default:
			panic(fmt.Sprintf("unexpected schedule item type %T", schedule[i]))
		}
	}
	result := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		result = append(result, reversed[i])
	}
	return result
}

// InsertBarriers walks a completed schedule and inserts the barriers of the
// given kind that its cross-instruction hazards require. It maintains a set
// of candidate instruction ids whose accesses are not yet known to be
// separated from the current point by an adequate barrier; the first hazard
// found against a candidate issues exactly one barrier and clears the set.
//
// For level > 0 the function is applied twice per loop body, first with
// reverse false for forward hazards, then with reverse true: a loop body
// runs repeatedly, so a hazard between the tail of one iteration and the
// head of the next is as real as a forward one. The forward pass runs first
// because its barriers shrink the candidate set the reverse pass has to
// consider. The outermost level is not repeated, so the reverse pass is
// skipped at level 0.
func InsertBarriers(k *kernel.Kernel, schedule []Item, reverse bool, kind BarrierKind, level int) []Item {
	if level == 0 && reverse {
		return schedule
	}

	candidates := strset.New()
	if reverse {
		candidates.AddAll(tailStartingAtLastBarrier(schedule, kind))
	}

	var result []Item
	pastFirstBarrier := false

	seenBarrier := func() {
		pastFirstBarrier = true
		// Anything that needed a barrier from above just got one.
		candidates.Clear()
	}

	issueBarrier := func(dep *DependencyRecord) {
		seenBarrier()
		var comment string
		if dep.Forward {
			comment = fmt.Sprintf("for %s (%s depends on %s)", dep.Variable, dep.Target.ID, dep.Source.ID)
		} else {
			comment = fmt.Sprintf("for %s (%s rev-depends on %s)", dep.Variable, dep.Source.ID, dep.Target.ID)
		}
		result = append(result, Barrier{Kind: dep.VarKind, Comment: comment})
	}

	// findHazard searches the candidate set for one barrier-needing
	// dependency against the given instruction. Forward passes only need
	// to look at the instruction's transitive dependency predecessors.
	findHazard := func(insnID string) *DependencyRecord {
		searchSet := candidates
		if !reverse {
			searchSet = searchSet.Intersect(k.RecursiveDepMap()[insnID])
		}
		for _, sourceID := range searchSet.Sorted() {
			if dep := barrierNeedingDependency(k, insnID, sourceID, reverse, kind); dep != nil {
				return dep
			}
		}
		return nil
	}

	i := 0
	for i < len(schedule) {
		switch it := schedule[i].(type) {
		case EnterLoop:
			subloop, next := gatherSubloop(schedule, i)
			i = next

			subresult := append([]Item(nil), subloop[1:len(subloop)-1]...)
			for _, subReverse := range []bool{false, true} {
				subresult = InsertBarriers(k, subresult, subReverse, kind, level+1)
			}

			// Locate the barriers of this kind inside the body.
			firstBarrierIndex := -1
			lastBarrierIndex := -1
			for j, subItem := range subresult {
				if b, ok := subItem.(Barrier); ok && kindMoreOrEquallyGlobal(b.Kind, kind) {
					seenBarrier()
					lastBarrierIndex = j
					if firstBarrierIndex == -1 {
						firstBarrierIndex = j
					}
				}
			}

			// The leading (before-first-barrier) part of the body
			// may still hazard against instructions preceding the
			// loop; that emits a barrier just before the loop.
			leading := subresult
			if firstBarrierIndex != -1 {
				leading = subresult[:firstBarrierIndex]
			}
			for _, insnID := range insnIDsFromSchedule(leading) {
				if dep := findHazard(insnID); dep != nil {
					issueBarrier(dep)
					break
				}
			}

			// From here on, the candidates are the part of the
			// body not already covered by its own last barrier.
			if lastBarrierIndex == -1 {
				candidates.AddAll(insnIDsFromSchedule(subresult))
			} else {
				candidates.AddAll(insnIDsFromSchedule(subresult[lastBarrierIndex+1:]))
			}

			result = append(result, subloop[0])
			result = append(result, subresult...)
			result = append(result, subloop[len(subloop)-1])

		case Barrier:
			i++
			if kindMoreOrEquallyGlobal(it.Kind, kind) {
				seenBarrier()
			}
			result = append(result, it)

		case RunInstruction:
			i++
			if dep := findHazard(it.InsnID); dep != nil {
				issueBarrier(dep)
			}
			result = append(result, it)
			candidates.Add(it.InsnID)

		default:
			panic(fmt.Sprintf("unexpected schedule item type %T", schedule[i]))
		}

		if pastFirstBarrier && reverse {
			// A reverse pass only guards the head of the loop, up
			// to its first barrier; past that, every loop-carried
			// hazard is already separated.
			result = append(result, schedule[i:]...)
			break
		}
	}

	return result
}
