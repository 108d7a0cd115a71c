package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polysched/polysched/internal/config"
	"github.com/polysched/polysched/internal/kernel"
	"github.com/polysched/polysched/internal/testutil"
)

func TestInsnInames(t *testing.T) {
	k := testutil.NewKernel(t, "inames").
		Domain("i", "j").
		Args("x", "y").
		Temp("tmp", false).
		Insn(config.Instruction{ID: "a", Writes: []string{"x[i,j]"}, Reads: []string{"y[j]"}}).
		Insn(config.Instruction{ID: "b", Writes: []string{"tmp"}, Within: []string{"i"}}).
		Insn(config.Instruction{ID: "c", Writes: []string{"y[i]"}, Reads: []string{"tmp"}}).
		Build()

	assert.Equal(t, []string{"i", "j"}, k.InsnInames("a").Sorted())
	assert.Equal(t, []string{"i"}, k.InsnInames("b").Sorted(), "forced inames count")
	assert.Equal(t, []string{"i"}, k.InsnInames("c").Sorted())

	byIname := k.INameToInsns()
	assert.Equal(t, []string{"a", "b", "c"}, byIname["i"].Sorted())
	assert.Equal(t, []string{"a"}, byIname["j"].Sorted())
}

func TestRecursiveDepMap(t *testing.T) {
	k := testutil.NewKernel(t, "deps").
		Domain("i").
		Args("x").
		Insn(config.Instruction{ID: "a", Writes: []string{"x[i]"}}).
		Insn(config.Instruction{ID: "b", Writes: []string{"x[i]"}, DependsOn: []string{"a"}}).
		Insn(config.Instruction{ID: "c", Writes: []string{"x[i]"}, DependsOn: []string{"b"}}).
		Build()

	deps := k.RecursiveDepMap()
	assert.Empty(t, deps["a"].Sorted())
	assert.Equal(t, []string{"a"}, deps["b"].Sorted())
	assert.Equal(t, []string{"a", "b"}, deps["c"].Sorted(), "dependencies are transitive")
}

func TestRecursiveDepMapTerminatesOnCycle(t *testing.T) {
	k := testutil.NewKernel(t, "cycle").
		Domain("i").
		Args("x").
		Insn(config.Instruction{ID: "a", Writes: []string{"x[i]"}, DependsOn: []string{"b"}}).
		Insn(config.Instruction{ID: "b", Writes: []string{"x[i]"}, DependsOn: []string{"a"}}).
		Build()

	deps := k.RecursiveDepMap()
	assert.True(t, deps["a"].Has("b"))
	assert.True(t, deps["b"].Has("a"))
}

func TestWriterMapAndVarKinds(t *testing.T) {
	k := testutil.NewKernel(t, "vars").
		Domain("i").
		Args("out").
		Temp("shared", true).
		Temp("priv", false).
		Insn(config.Instruction{ID: "a", Writes: []string{"shared[i]"}}).
		Insn(config.Instruction{ID: "b", Writes: []string{"out[i]", "priv"}, Reads: []string{"shared[i]"}}).
		Build()

	writers := k.WriterMap()
	assert.Equal(t, []string{"a"}, writers["shared"].Sorted())
	assert.Equal(t, []string{"b"}, writers["out"].Sorted())
	assert.Equal(t, []string{"b"}, writers["priv"].Sorted())

	assert.Equal(t, []string{"shared"}, k.LocalVarNames().Sorted())
	assert.Equal(t, []string{"out"}, k.GlobalVarNames().Sorted())
}

func TestHomeDomainIndex(t *testing.T) {
	k := testutil.NewKernel(t, "domains").
		Domain("i").
		DomainWith([]string{"j"}, []string{"n"}, 0).
		Args("x").
		Insn(config.Instruction{ID: "a", Writes: []string{"x[i,j]"}}).
		Build()

	idx, err := k.HomeDomainIndex("j")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = k.HomeDomainIndex("nope")
	assert.Error(t, err)
}

func TestBuildRejectsBadDescriptions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Kernel)
		wantErr string
	}{
		{
			name: "duplicate instruction id",
			mutate: func(m *config.Kernel) {
				m.Instructions = append(m.Instructions, &config.Instruction{ID: "a"})
			},
			wantErr: "duplicate instruction id",
		},
		{
			name: "dangling dependency",
			mutate: func(m *config.Kernel) {
				m.Instructions[0].DependsOn = []string{"ghost"}
			},
			wantErr: "unknown instruction",
		},
		{
			name: "unknown tag spelling",
			mutate: func(m *config.Kernel) {
				m.Inames = append(m.Inames, &config.Iname{Name: "i", Tag: "warp"})
			},
			wantErr: "tag",
		},
		{
			name: "tag on unknown iname",
			mutate: func(m *config.Kernel) {
				m.Inames = append(m.Inames, &config.Iname{Name: "zz", Tag: "ilp"})
			},
			wantErr: "unknown iname",
		},
		{
			name: "bad domain parent",
			mutate: func(m *config.Kernel) {
				m.Domains[0].Parent = 7
			},
			wantErr: "invalid parent",
		},
		{
			name: "priority entry for unknown iname",
			mutate: func(m *config.Kernel) {
				m.LoopPriority = []string{"q"}
			},
			wantErr: "loop priority",
		},
		{
			name: "malformed access",
			mutate: func(m *config.Kernel) {
				m.Instructions[0].Writes = []string{"x[i"}
			},
			wantErr: "access",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := testutil.NewKernel(t, "bad").
				Domain("i").
				Args("x").
				Insn(config.Instruction{ID: "a", Writes: []string{"x[i]"}}).
				Model()
			tt.mutate(model)
			_, err := kernel.Build(model)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
