// Package kernel holds the immutable, preprocessed kernel model consumed by
// the scheduler: instructions with their dependencies and priorities,
// polyhedral iteration domains with their tree-parent relation, per-iname
// hardware tags, and the derived lookup maps (iname usage, transitive
// dependencies, variable writers) that scheduling and barrier insertion
// query.
//
// A Kernel is treated as immutable once built. The derived maps are computed
// lazily on first use and memoized; a Kernel is therefore not safe for
// concurrent use until one of the query methods has been called.
package kernel

import (
	"fmt"

	"github.com/polysched/polysched/internal/strset"
)

// Temporary is a scratch variable of the kernel. Local temporaries live in
// work-group shared memory and participate in local barrier analysis;
// non-local ones are private to a work item.
type Temporary struct {
	Name  string
	Local bool
}

// Kernel is the scheduling-relevant view of a preprocessed kernel.
type Kernel struct {
	Name   string
	Target string

	Domains      []Domain
	Instructions []*Instruction

	// Arguments are the kernel's global-memory array arguments.
	Arguments []string

	Temporaries map[string]Temporary

	// INameTags maps inames to their hardware tags. Untagged inames are
	// sequential.
	INameTags map[string]Tag

	// LoopPriority is the caller-supplied desired nesting order, outermost
	// first. It seeds the scheduler's tier ordering; it is a preference,
	// not a constraint.
	LoopPriority []string

	allInames   strset.Set
	insnInames  map[string]strset.Set
	inameInsns  map[string]strset.Set
	recDeps     map[string]strset.Set
	writers     map[string]strset.Set
	homeDomains map[string]int
	idToInsn    map[string]*Instruction
}

// IDToInsn returns the instruction with the given id, or nil.
func (k *Kernel) IDToInsn(id string) *Instruction {
	if k.idToInsn == nil {
		k.idToInsn = make(map[string]*Instruction, len(k.Instructions))
		for _, insn := range k.Instructions {
			k.idToInsn[insn.ID] = insn
		}
	}
	return k.idToInsn[id]
}

// Tag returns the tag of an iname, TagNone if untagged.
func (k *Kernel) Tag(iname string) Tag {
	return k.INameTags[iname]
}

// AllInames returns the set of all inames declared by the kernel's domains.
func (k *Kernel) AllInames() strset.Set {
	if k.allInames == nil {
		k.allInames = strset.New()
		for _, dom := range k.Domains {
			k.allInames.AddAll(dom.Inames)
		}
	}
	return k.allInames
}

// InsnInames returns the inames the given instruction must run under: the
// index names of its accesses that are inames, plus its forced inames.
func (k *Kernel) InsnInames(id string) strset.Set {
	if k.insnInames == nil {
		k.insnInames = make(map[string]strset.Set, len(k.Instructions))
		all := k.AllInames()
		for _, insn := range k.Instructions {
			inames := strset.New()
			for _, accesses := range [][]Access{insn.Writes, insn.Reads} {
				for _, a := range accesses {
					for _, idx := range a.Indices {
						if all.Has(idx) {
							inames.Add(idx)
						}
					}
				}
			}
			inames.AddAll(insn.ForcedInames)
			k.insnInames[insn.ID] = inames
		}
	}
	return k.insnInames[id]
}

// INameToInsns returns, for every iname, the ids of the instructions that
// run under it.
func (k *Kernel) INameToInsns() map[string]strset.Set {
	if k.inameInsns == nil {
		k.inameInsns = make(map[string]strset.Set)
		for iname := range k.AllInames() {
			k.inameInsns[iname] = strset.New()
		}
		for _, insn := range k.Instructions {
			for iname := range k.InsnInames(insn.ID) {
				k.inameInsns[iname].Add(insn.ID)
			}
		}
	}
	return k.inameInsns
}

// RecursiveDepMap returns, for every instruction id, the set of instruction
// ids it directly or transitively depends on.
func (k *Kernel) RecursiveDepMap() map[string]strset.Set {
	if k.recDeps == nil {
		k.recDeps = make(map[string]strset.Set, len(k.Instructions))
		var compute func(id string) strset.Set
		compute = func(id string) strset.Set {
			if deps, ok := k.recDeps[id]; ok {
				return deps
			}
			// Mark before recursing so a dependency cycle cannot
			// run away; cyclic inputs simply get a partial closure
			// and are rejected later by the search itself.
			deps := strset.New()
			k.recDeps[id] = deps
			insn := k.IDToInsn(id)
			if insn == nil {
				return deps
			}
			for _, dep := range insn.DependsOn {
				deps.Add(dep)
				for d := range compute(dep) {
					deps.Add(d)
				}
			}
			return deps
		}
		for _, insn := range k.Instructions {
			compute(insn.ID)
		}
	}
	return k.recDeps
}

// WriterMap returns, for every written variable, the ids of the instructions
// that write it.
func (k *Kernel) WriterMap() map[string]strset.Set {
	if k.writers == nil {
		k.writers = make(map[string]strset.Set)
		for _, insn := range k.Instructions {
			for _, a := range insn.Writes {
				set, ok := k.writers[a.Variable]
				if !ok {
					set = strset.New()
					k.writers[a.Variable] = set
				}
				set.Add(insn.ID)
			}
		}
	}
	return k.writers
}

// LocalVarNames returns the names of the kernel's work-group-local
// temporaries.
func (k *Kernel) LocalVarNames() strset.Set {
	names := strset.New()
	for name, tv := range k.Temporaries {
		if tv.Local {
			names.Add(name)
		}
	}
	return names
}

// GlobalVarNames returns the names of the kernel's global-memory arguments.
func (k *Kernel) GlobalVarNames() strset.Set {
	return strset.FromSlice(k.Arguments)
}

// HomeDomainIndex returns the index of the domain declaring the given iname.
func (k *Kernel) HomeDomainIndex(iname string) (int, error) {
	if k.homeDomains == nil {
		k.homeDomains = make(map[string]int)
		for i, dom := range k.Domains {
			for _, in := range dom.Inames {
				k.homeDomains[in] = i
			}
		}
	}
	idx, ok := k.homeDomains[iname]
	if !ok {
		return 0, fmt.Errorf("iname %q has no home domain", iname)
	}
	return idx, nil
}

// Validate performs the pre-scheduling consistency checks: instruction ids
// must be unique, dependency references must resolve, every iname an
// instruction uses must belong to some domain, and domain parents must be
// in range. A kernel failing these checks is a caller bug; the scheduler
// assumes they have passed.
func (k *Kernel) Validate() error {
	seen := strset.New()
	for _, insn := range k.Instructions {
		if seen.Has(insn.ID) {
			return fmt.Errorf("duplicate instruction id %q", insn.ID)
		}
		seen.Add(insn.ID)
	}
	all := k.AllInames()
	for _, insn := range k.Instructions {
		for _, dep := range insn.DependsOn {
			if !seen.Has(dep) {
				return fmt.Errorf("instruction %q depends on unknown instruction %q", insn.ID, dep)
			}
		}
		for _, iname := range insn.ForcedInames {
			if !all.Has(iname) {
				return fmt.Errorf("instruction %q forced into unknown iname %q", insn.ID, iname)
			}
		}
		for _, iname := range insn.BoostableInto {
			if !all.Has(iname) {
				return fmt.Errorf("instruction %q boostable into unknown iname %q", insn.ID, iname)
			}
		}
	}
	for i, dom := range k.Domains {
		if dom.Parent < -1 || dom.Parent >= len(k.Domains) || dom.Parent == i {
			return fmt.Errorf("domain %d has invalid parent %d", i, dom.Parent)
		}
	}
	for iname := range k.INameTags {
		if !all.Has(iname) {
			return fmt.Errorf("tag on unknown iname %q", iname)
		}
	}
	for _, iname := range k.LoopPriority {
		if !all.Has(iname) {
			return fmt.Errorf("loop priority names unknown iname %q", iname)
		}
	}
	return nil
}
