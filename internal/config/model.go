package config

// Model is the unified, format-agnostic representation of a parsed kernel
// description file. The front end (e.g. the HCL loader) produces it; the
// kernel builder turns each Kernel entry into a validated kernel.Kernel.
type Model struct {
	Kernels []*Kernel
}

// Kernel is the format-agnostic representation of a `kernel` block.
type Kernel struct {
	Name         string
	Target       string
	LoopPriority []string
	Domains      []*Domain
	Inames       []*Iname
	Arguments    []string
	Temporaries  []*Temporary
	Instructions []*Instruction
}

// Domain is the format-agnostic representation of a `domain` block.
type Domain struct {
	Inames     []string
	Parameters []string

	// Parent is an index into Kernel.Domains; -1 marks a root domain.
	Parent int
}

// Iname carries the hardware tag annotation of a single iname.
type Iname struct {
	Name string
	Tag  string
}

// Temporary is the format-agnostic representation of a `temporary` block.
type Temporary struct {
	Name  string
	Local bool
}

// Instruction is the format-agnostic representation of an `instruction`
// block. Writes and Reads hold textual accesses ("a[i,j]") that the kernel
// builder parses.
type Instruction struct {
	ID            string
	Writes        []string
	Reads         []string
	DependsOn     []string
	Priority      int
	Boostable     bool
	BoostableInto []string
	Predicates    []string
	Within        []string
}
