// Package config defines the format-agnostic kernel description model and
// the Loader interface that front ends implement. Keeping the model free of
// HCL types lets the kernel builder and its tests stay independent of the
// input syntax.
package config
