package config

import "context"

// Loader abstracts the concrete kernel-description format from the rest of
// the application. The HCL loader is the only implementation today.
type Loader interface {
	// Load reads a kernel description from a file or directory of files
	// and returns the format-agnostic model.
	Load(ctx context.Context, path string) (*Model, error)
}
