package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polysched/polysched/internal/app"
	"github.com/polysched/polysched/internal/hcl"
)

func writeKernelFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernels.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runApp(t *testing.T, cfg app.Config) (string, error) {
	t.Helper()
	fullCfg, err := app.NewConfig(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	driver := app.NewApp(&out, fullCfg, hcl.NewLoader())
	runErr := driver.Run(context.Background())
	return out.String(), runErr
}

func TestRunSchedulesAndPrints(t *testing.T) {
	path := writeKernelFile(t, `
kernel "copy" {
  domain { inames = ["i"] }
  argument "x" {}
  argument "y" {}
  temporary "tmp" { local = true }

  instruction "load" {
    writes = ["tmp[i]"]
    reads  = ["x[i]"]
  }

  instruction "store" {
    writes     = ["y[i]"]
    reads      = ["tmp[i]"]
    depends_on = ["load"]
  }
}
`)

	out, err := runApp(t, app.Config{KernelPath: path, LogLevel: "error"})
	require.NoError(t, err)
	assert.Contains(t, out, "# kernel copy")
	assert.Contains(t, out, "<i> | load | store </i>")
}

func TestRunFailsOnEmptyModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.hcl")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := runApp(t, app.Config{KernelPath: path, LogLevel: "error"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no kernels found")
}

func TestRunExplainsSchedulingFailure(t *testing.T) {
	path := writeKernelFile(t, `
kernel "stuck" {
  domain { inames = ["i"] }
  argument "in" {}
  argument "out" {}
  temporary "t" {}
  temporary "s" {}

  instruction "b" {
    writes = ["t"]
    reads  = ["in[i]"]
  }

  instruction "a" {
    writes     = ["s"]
    reads      = ["t"]
    depends_on = ["b"]
  }

  instruction "c" {
    writes     = ["out[i]"]
    reads      = ["s"]
    depends_on = ["a"]
  }
}
`)

	out, err := runApp(t, app.Config{KernelPath: path, LogLevel: "error", Explain: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid schedule")
	assert.Contains(t, out, "replaying the longest dead-end branch")
	assert.Contains(t, out, "current schedule")
}

func TestNewConfigValidation(t *testing.T) {
	_, err := app.NewConfig(app.Config{})
	require.Error(t, err)

	cfg, err := app.NewConfig(app.Config{KernelPath: "k.hcl"})
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}
