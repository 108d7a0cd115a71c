// Package testutil provides helpers for building test kernels and asserting
// schedule invariants.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polysched/polysched/internal/config"
	"github.com/polysched/polysched/internal/kernel"
)

// KernelBuilder assembles a kernel description incrementally. Build fails
// the test on any validation error.
type KernelBuilder struct {
	t     *testing.T
	model config.Kernel
}

// NewKernel starts a builder for a kernel with the given name.
func NewKernel(t *testing.T, name string) *KernelBuilder {
	t.Helper()
	return &KernelBuilder{t: t, model: config.Kernel{Name: name, Target: "test"}}
}

// Domain adds a root domain over the given inames.
func (b *KernelBuilder) Domain(inames ...string) *KernelBuilder {
	b.model.Domains = append(b.model.Domains, &config.Domain{Inames: inames, Parent: -1})
	return b
}

// DomainWith adds a domain with parameters and an explicit parent index.
func (b *KernelBuilder) DomainWith(inames, params []string, parent int) *KernelBuilder {
	b.model.Domains = append(b.model.Domains, &config.Domain{
		Inames:     inames,
		Parameters: params,
		Parent:     parent,
	})
	return b
}

// Tag annotates an iname with a hardware tag spelling ("g", "l", "ilp",
// "vec", "unr", "seq").
func (b *KernelBuilder) Tag(iname, tag string) *KernelBuilder {
	b.model.Inames = append(b.model.Inames, &config.Iname{Name: iname, Tag: tag})
	return b
}

// Args declares global-memory arguments.
func (b *KernelBuilder) Args(names ...string) *KernelBuilder {
	b.model.Arguments = append(b.model.Arguments, names...)
	return b
}

// Temp declares a temporary variable.
func (b *KernelBuilder) Temp(name string, local bool) *KernelBuilder {
	b.model.Temporaries = append(b.model.Temporaries, &config.Temporary{Name: name, Local: local})
	return b
}

// LoopPriority sets the desired nesting order, outermost first.
func (b *KernelBuilder) LoopPriority(inames ...string) *KernelBuilder {
	b.model.LoopPriority = inames
	return b
}

// Insn adds an instruction.
func (b *KernelBuilder) Insn(insn config.Instruction) *KernelBuilder {
	b.model.Instructions = append(b.model.Instructions, &insn)
	return b
}

// Build constructs the validated kernel.
func (b *KernelBuilder) Build() *kernel.Kernel {
	b.t.Helper()
	k, err := kernel.Build(&b.model)
	require.NoError(b.t, err)
	return k
}

// Model returns the raw description, for tests that exercise kernel.Build
// error paths directly.
func (b *KernelBuilder) Model() *config.Kernel {
	return &b.model
}
