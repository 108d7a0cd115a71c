// Package hcl is the HCL front end for kernel descriptions. It parses
// .hcl files into the schema structs and translates them into the
// format-agnostic config model consumed by the kernel builder.
package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/polysched/polysched/internal/config"
	"github.com/polysched/polysched/internal/ctxlog"
	"github.com/polysched/polysched/internal/schema"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new HCL kernel description loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load reads a single .hcl file, or every .hcl file in a directory, and
// returns the combined model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read kernel description path: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("cannot list kernel description directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == ".hcl" {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(files)
		if len(files) == 0 {
			return nil, fmt.Errorf("no .hcl files found in %q", path)
		}
	} else {
		files = []string{path}
	}

	model := &config.Model{}
	for _, file := range files {
		logger.Debug("Parsing kernel description file.", "path", file)
		parsed, diags := l.parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %q: %w", file, diags)
		}

		var root schema.File
		if diags := gohcl.DecodeBody(parsed.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("decoding %q: %w", file, diags)
		}

		for _, sk := range root.Kernels {
			ck, err := l.translateKernel(sk)
			if err != nil {
				return nil, fmt.Errorf("in %q: %w", file, err)
			}
			model.Kernels = append(model.Kernels, ck)
		}
	}

	logger.Debug("Kernel descriptions loaded.", "kernels", len(model.Kernels))
	return model, nil
}
