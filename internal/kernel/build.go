package kernel

import (
	"fmt"

	"github.com/polysched/polysched/internal/config"
)

// Build constructs a validated Kernel from its format-agnostic description.
func Build(model *config.Kernel) (*Kernel, error) {
	k := &Kernel{
		Name:         model.Name,
		Target:       model.Target,
		LoopPriority: append([]string(nil), model.LoopPriority...),
		Arguments:    append([]string(nil), model.Arguments...),
		Temporaries:  make(map[string]Temporary, len(model.Temporaries)),
		INameTags:    make(map[string]Tag, len(model.Inames)),
	}

	for i, dom := range model.Domains {
		if len(dom.Inames) == 0 {
			return nil, fmt.Errorf("kernel %q: domain %d declares no inames", model.Name, i)
		}
		k.Domains = append(k.Domains, Domain{
			Inames:     append([]string(nil), dom.Inames...),
			Parameters: append([]string(nil), dom.Parameters...),
			Parent:     dom.Parent,
		})
	}

	for _, tv := range model.Temporaries {
		if _, dup := k.Temporaries[tv.Name]; dup {
			return nil, fmt.Errorf("kernel %q: duplicate temporary %q", model.Name, tv.Name)
		}
		k.Temporaries[tv.Name] = Temporary{Name: tv.Name, Local: tv.Local}
	}

	for _, in := range model.Inames {
		tag, err := ParseTag(in.Tag)
		if err != nil {
			return nil, fmt.Errorf("kernel %q: iname %q: %w", model.Name, in.Name, err)
		}
		k.INameTags[in.Name] = tag
	}

	for _, mi := range model.Instructions {
		insn := &Instruction{
			ID:            mi.ID,
			DependsOn:     append([]string(nil), mi.DependsOn...),
			Priority:      mi.Priority,
			Boostable:     mi.Boostable,
			BoostableInto: append([]string(nil), mi.BoostableInto...),
			Predicates:    append([]string(nil), mi.Predicates...),
			ForcedInames:  append([]string(nil), mi.Within...),
		}
		for _, w := range mi.Writes {
			a, err := ParseAccess(w)
			if err != nil {
				return nil, fmt.Errorf("kernel %q: instruction %q: %w", model.Name, mi.ID, err)
			}
			insn.Writes = append(insn.Writes, a)
		}
		for _, r := range mi.Reads {
			a, err := ParseAccess(r)
			if err != nil {
				return nil, fmt.Errorf("kernel %q: instruction %q: %w", model.Name, mi.ID, err)
			}
			insn.Reads = append(insn.Reads, a)
		}
		k.Instructions = append(k.Instructions, insn)
	}

	if err := k.Validate(); err != nil {
		return nil, fmt.Errorf("kernel %q: %w", model.Name, err)
	}
	return k, nil
}
