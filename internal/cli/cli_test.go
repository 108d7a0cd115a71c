package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polysched/polysched/internal/cli"
)

func TestParseDefaults(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := cli.Parse([]string{"kernels.hcl"}, &out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, "kernels.hcl", cfg.KernelPath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Explain)
	assert.False(t, cfg.NoCache)
}

func TestParseFlags(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := cli.Parse([]string{
		"-kernel", "dir/",
		"-log-format", "JSON",
		"-log-level", "DEBUG",
		"-explain",
		"-no-cache",
	}, &out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, "dir/", cfg.KernelPath)
	assert.Equal(t, "json", cfg.LogFormat, "format is case-insensitive")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Explain)
	assert.True(t, cfg.NoCache)
}

func TestParseKernelFlagWinsOverPositional(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := cli.Parse([]string{"-kernel", "from-flag.hcl", "positional.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.hcl", cfg.KernelPath)
}

func TestParseNoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := cli.Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseHelp(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := cli.Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
}

func TestParseInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"log format", []string{"-log-format", "xml", "kernels.hcl"}},
		{"log level", []string{"-log-level", "loud", "kernels.hcl"}},
		{"unknown flag", []string{"-frobnicate", "kernels.hcl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, _, err := cli.Parse(tt.args, &out)
			require.Error(t, err)

			exitErr, ok := err.(*cli.ExitError)
			require.True(t, ok)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}
