// Package config holds the compiler's resolved invocation options, kept as
// a small struct distinct from the cobra command wiring so the driver and
// any future embedder can share it without depending on cobra.
package config

import (
	"path/filepath"
	"strings"
)

// Options is the fully resolved configuration for one compilation, derived
// from the CLI arguments per spec.md §6 ("no flags beyond the single
// positional source-path argument").
type Options struct {
	// SourcePath is the .echo file to compile.
	SourcePath string
	// OutputPath is the destination .c file, derived from SourcePath unless
	// explicitly overridden.
	OutputPath string
}

// DeriveOutputPath implements spec.md §6's output-path rule: replace the
// source file's final extension with ".c", or append ".c" if it has none.
func DeriveOutputPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	if ext == "" {
		return sourcePath + ".c"
	}
	return strings.TrimSuffix(sourcePath, ext) + ".c"
}

// New returns Options for sourcePath, deriving OutputPath per
// DeriveOutputPath.
func New(sourcePath string) Options {
	return Options{SourcePath: sourcePath, OutputPath: DeriveOutputPath(sourcePath)}
}
