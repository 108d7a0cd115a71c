package kernel

import (
	"fmt"
	"strings"

	"github.com/polysched/polysched/internal/strset"
)

// Access is one subscripted (or scalar) variable reference, e.g. "tmp[i,j]"
// or "alpha".
type Access struct {
	Variable string
	Indices  []string
}

// String renders the access back into its textual form.
func (a Access) String() string {
	if len(a.Indices) == 0 {
		return a.Variable
	}
	return a.Variable + "[" + strings.Join(a.Indices, ",") + "]"
}

// ParseAccess parses an access of the form "var" or "var[idx, idx, ...]".
func ParseAccess(s string) (Access, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '[')
	if open < 0 {
		if s == "" {
			return Access{}, fmt.Errorf("empty access")
		}
		return Access{Variable: s}, nil
	}
	if !strings.HasSuffix(s, "]") {
		return Access{}, fmt.Errorf("malformed access %q: missing ']'", s)
	}
	variable := strings.TrimSpace(s[:open])
	if variable == "" {
		return Access{}, fmt.Errorf("malformed access %q: missing variable name", s)
	}
	inner := s[open+1 : len(s)-1]
	var indices []string
	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Access{}, fmt.Errorf("malformed access %q: empty index", s)
		}
		indices = append(indices, part)
	}
	return Access{Variable: variable, Indices: indices}, nil
}

// Instruction is one atomic assignment in a kernel.
type Instruction struct {
	ID string

	// Writes and Reads are the memory accesses the instruction performs.
	// The inames the instruction runs under are derived from their index
	// expressions plus ForcedInames.
	Writes []Access
	Reads  []Access

	// DependsOn lists the ids of instructions that must be scheduled
	// before this one.
	DependsOn []string

	// Priority is a scheduling preference. Higher-priority instructions
	// are scheduled (and their loops entered) first.
	Priority int

	// Boostable marks an instruction that may validly run enclosed by
	// more inames than its minimal set, because it recomputes an
	// idempotent or redundant result. BoostableInto names the specific
	// extra inames it tolerates.
	Boostable     bool
	BoostableInto []string

	// Predicates are guard conditions under which the instruction runs.
	// They are carried through to code generation and participate in the
	// kernel fingerprint, but do not influence scheduling.
	Predicates []string

	// ForcedInames are inames the instruction must run under even though
	// its access expressions do not reference them.
	ForcedInames []string
}

// ReadVariableNames returns every name the instruction reads: the variables
// of its read accesses plus all index names appearing in any of its
// subscripts. Callers intersect the result with a storage-class variable set,
// which filters the inames back out.
func (insn *Instruction) ReadVariableNames() strset.Set {
	names := strset.New()
	for _, a := range insn.Reads {
		names.Add(a.Variable)
		names.AddAll(a.Indices)
	}
	for _, a := range insn.Writes {
		names.AddAll(a.Indices)
	}
	return names
}

// WriteVariableNames returns the variables the instruction assigns to.
func (insn *Instruction) WriteVariableNames() strset.Set {
	names := strset.New()
	for _, a := range insn.Writes {
		names.Add(a.Variable)
	}
	return names
}
