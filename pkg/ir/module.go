// Package ir holds the intermediate representation produced by lowering a
// frontend.Extraction: the module descriptor, the string table, and the
// per-function instruction lists that the optimizer and code generator
// operate on.
package ir

import "github.com/akmc/akmc/pkg/isa"

// ModuleDescriptor is the data-model record for one module: created at
// parse time and mutated once by the capability inferencer; after that only
// the CLI writes to it (OR-ing in -c/--caps bits and setting Flags).
type ModuleDescriptor struct {
	Name          string
	Version       string
	Author        string
	Description   string
	License       string
	Capabilities  uint32
	Dependencies  []string
	SecurityLevel isa.SecurityLevel
	// Flags holds the header flag bits. Source modules never set these themselves; the CLI
	// is the only writer, via -d/--debug, after capability inference and
	// before optimization and code generation.
	Flags uint16
}

// WithCapabilities returns a copy of d with Capabilities replaced. The
// capability inferencer is the only stage permitted to call this.
func (d ModuleDescriptor) WithCapabilities(mask uint32) ModuleDescriptor {
	d.Capabilities = mask
	return d
}
