package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polysched/polysched/internal/config"
	"github.com/polysched/polysched/internal/testutil"
)

func fingerprintKernel(t *testing.T, mutate func(*config.Kernel)) string {
	t.Helper()
	b := testutil.NewKernel(t, "fp").
		Domain("i", "j").
		Tag("j", "ilp").
		Args("x").
		Temp("tmp", true).
		LoopPriority("i", "j").
		Insn(config.Instruction{ID: "a", Writes: []string{"tmp[i]"}, Reads: []string{"x[i,j]"}}).
		Insn(config.Instruction{ID: "b", Writes: []string{"x[i]"}, Reads: []string{"tmp[i]"}, DependsOn: []string{"a"}})
	if mutate != nil {
		mutate(b.Model())
	}
	return b.Build().Fingerprint()
}

func TestFingerprintStable(t *testing.T) {
	assert.Equal(t, fingerprintKernel(t, nil), fingerprintKernel(t, nil))
}

func TestFingerprintIgnoresInstructionOrder(t *testing.T) {
	swapped := fingerprintKernel(t, func(m *config.Kernel) {
		m.Instructions[0], m.Instructions[1] = m.Instructions[1], m.Instructions[0]
	})
	assert.Equal(t, fingerprintKernel(t, nil), swapped)
}

func TestFingerprintSensitivity(t *testing.T) {
	base := fingerprintKernel(t, nil)

	tests := []struct {
		name   string
		mutate func(*config.Kernel)
	}{
		{"priority", func(m *config.Kernel) { m.Instructions[1].Priority = 5 }},
		{"dependency", func(m *config.Kernel) { m.Instructions[1].DependsOn = nil }},
		{"tag", func(m *config.Kernel) { m.Inames[0].Tag = "vec" }},
		{"loop priority", func(m *config.Kernel) { m.LoopPriority = []string{"j", "i"} }},
		{"temporary locality", func(m *config.Kernel) { m.Temporaries[0].Local = false }},
		{"access", func(m *config.Kernel) { m.Instructions[0].Reads = []string{"x[j,i]"} }},
		{"boostability", func(m *config.Kernel) {
			m.Instructions[0].Boostable = true
			m.Instructions[0].BoostableInto = []string{"j"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, fingerprintKernel(t, tt.mutate))
		})
	}
}
