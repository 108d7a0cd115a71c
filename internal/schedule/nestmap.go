package schedule

import (
	"context"
	"fmt"

	"github.com/polysched/polysched/internal/ctxlog"
	"github.com/polysched/polysched/internal/kernel"
	"github.com/polysched/polysched/internal/strset"
)

// NestMap maps every iname to the set of inames that must already be active
// (entered) before a loop over it may be entered.
type NestMap map[string]strset.Set

// BuildNestMap derives the required-nesting relation from two fact sources:
//
//  1. Instruction-set containment: if every instruction using iname A also
//     uses iname B, but not the other way around, B must nest outside A.
//     ILP-tagged inames are exempt from acting as the outer iname here:
//     they are parallel in principle but get realized as innermost unrolled
//     loops, so they must not impose an outer-nesting requirement.
//  2. Domain parameters: if iname A's home domain is parameterized by iname
//     B, the loop over B must be open before A's bounds can be evaluated.
//
// A cycle in the resulting relation means no legal nesting exists; that is
// a malformed-kernel configuration error, reported immediately and never
// retried.
func BuildNestMap(ctx context.Context, k *kernel.Kernel) (NestMap, error) {
	logger := ctxlog.FromContext(ctx)

	allInames := k.AllInames()
	inameToInsns := k.INameToInsns()

	result := make(NestMap, allInames.Len())
	for inner := range allInames {
		result[inner] = strset.New()
		for outer := range allInames {
			if inner == outer {
				continue
			}
			if k.Tag(outer) == kernel.TagILP {
				continue
			}
			if inameToInsns[inner].ProperSubsetOf(inameToInsns[outer]) {
				result[inner].Add(outer)
			}
		}
	}

	for _, dom := range k.Domains {
		for _, outer := range dom.Parameters {
			if !allInames.Has(outer) {
				continue
			}
			for _, inner := range dom.Inames {
				result[inner].Add(outer)
			}
		}
	}

	if err := detectNestCycle(result); err != nil {
		return nil, err
	}

	logger.Debug("Loop nest map constructed.", "inames", allInames.Len())
	return result, nil
}

// detectNestCycle checks the required-nesting relation for cycles using a
// depth-first search with a visiting/visited marking.
func detectNestCycle(m NestMap) error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(iname string) error
	visit = func(iname string) error {
		visiting[iname] = true
		for _, outer := range m[iname].Sorted() {
			if visiting[outer] {
				return fmt.Errorf("cyclic loop nesting requirement involving %q", outer)
			}
			if !visited[outer] {
				if err := visit(outer); err != nil {
					return err
				}
			}
		}
		delete(visiting, iname)
		visited[iname] = true
		return nil
	}

	for iname := range m {
		if !visited[iname] {
			if err := visit(iname); err != nil {
				return err
			}
		}
	}
	return nil
}
