package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/polysched/polysched/internal/config"
	"github.com/polysched/polysched/internal/schema"
)

// translateKernel converts the HCL-specific kernel schema into the agnostic
// model.
func (l *Loader) translateKernel(s *schema.Kernel) (*config.Kernel, error) {
	k := &config.Kernel{
		Name:         s.Name,
		Target:       s.Target,
		LoopPriority: s.LoopPriority,
	}

	for i, dom := range s.Domains {
		parent, err := evalInt(dom.Parent, -1)
		if err != nil {
			return nil, fmt.Errorf("kernel %q: domain %d: parent: %w", s.Name, i, err)
		}
		k.Domains = append(k.Domains, &config.Domain{
			Inames:     dom.Inames,
			Parameters: dom.Parameters,
			Parent:     parent,
		})
	}

	for _, in := range s.Inames {
		k.Inames = append(k.Inames, &config.Iname{Name: in.Name, Tag: in.Tag})
	}
	for _, arg := range s.Arguments {
		k.Arguments = append(k.Arguments, arg.Name)
	}
	for _, tv := range s.Temporaries {
		k.Temporaries = append(k.Temporaries, &config.Temporary{Name: tv.Name, Local: tv.Local})
	}

	for _, insn := range s.Instructions {
		priority, err := evalInt(insn.Priority, 0)
		if err != nil {
			return nil, fmt.Errorf("kernel %q: instruction %q: priority: %w", s.Name, insn.ID, err)
		}
		k.Instructions = append(k.Instructions, &config.Instruction{
			ID:            insn.ID,
			Writes:        insn.Writes,
			Reads:         insn.Reads,
			DependsOn:     insn.DependsOn,
			Priority:      priority,
			Boostable:     insn.Boostable,
			BoostableInto: insn.BoostableInto,
			Predicates:    insn.Predicates,
			Within:        insn.Within,
		})
	}

	return k, nil
}

// evalInt evaluates an integer-valued attribute expression, returning def
// when the attribute was absent or null.
func evalInt(expr hcl.Expression, def int) (int, error) {
	if expr == nil {
		return def, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, diags
	}
	if val.IsNull() {
		return def, nil
	}
	converted, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %s to number: %w", val.Type().FriendlyName(), err)
	}
	var out int
	if err := gocty.FromCtyValue(converted, &out); err != nil {
		return 0, err
	}
	return out, nil
}
