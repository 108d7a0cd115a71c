// Package schema defines the HCL shapes of kernel description files. These
// structs carry hcl struct tags only; the loader translates them into the
// format-agnostic config model.
package schema

import "github.com/hashicorp/hcl/v2"

// File is the top-level structure of a kernel description file.
type File struct {
	Kernels []*Kernel `hcl:"kernel,block"`
}

// Kernel represents a `kernel` block.
type Kernel struct {
	Name         string         `hcl:"name,label"`
	Target       string         `hcl:"target,optional"`
	LoopPriority []string       `hcl:"loop_priority,optional"`
	Domains      []*Domain      `hcl:"domain,block"`
	Inames       []*Iname       `hcl:"iname,block"`
	Arguments    []*Argument    `hcl:"argument,block"`
	Temporaries  []*Temporary   `hcl:"temporary,block"`
	Instructions []*Instruction `hcl:"instruction,block"`
}

// Domain represents a `domain` block. Parent is left as an expression so the
// loader can default it to "no parent" when absent.
type Domain struct {
	Inames     []string       `hcl:"inames"`
	Parameters []string       `hcl:"parameters,optional"`
	Parent     hcl.Expression `hcl:"parent,optional"`
}

// Iname represents an `iname` block carrying a hardware tag annotation.
type Iname struct {
	Name string `hcl:"name,label"`
	Tag  string `hcl:"tag"`
}

// Argument represents an `argument` block: a global-memory array argument.
type Argument struct {
	Name string `hcl:"name,label"`
}

// Temporary represents a `temporary` block.
type Temporary struct {
	Name  string `hcl:"name,label"`
	Local bool   `hcl:"local,optional"`
}

// Instruction represents an `instruction` block. Priority is left as an
// expression and evaluated by the loader.
type Instruction struct {
	ID            string         `hcl:"id,label"`
	Writes        []string       `hcl:"writes,optional"`
	Reads         []string       `hcl:"reads,optional"`
	DependsOn     []string       `hcl:"depends_on,optional"`
	Priority      hcl.Expression `hcl:"priority,optional"`
	Boostable     bool           `hcl:"boostable,optional"`
	BoostableInto []string       `hcl:"boostable_into,optional"`
	Predicates    []string       `hcl:"predicates,optional"`
	Within        []string       `hcl:"within,optional"`
}
