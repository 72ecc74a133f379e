// Package frontend parses an AKM source module and extracts four
// projections: module configuration, function definitions,
// command registrations, and host-API call sites. It owns the only
// dependency on a general-purpose ECMAScript grammar (github.com/dop251/goja's
// parser/ast packages) — every later stage operates on the neutral types
// defined here, never on a raw AST node.
package frontend

import "github.com/dop251/goja/ast"

// Ref is the sentinel value returned by the restricted constant evaluator for
// an identifier that cannot be resolved to a literal.
type Ref struct {
	Name string
}

// ModuleConfig is the raw, as-written projection of the unique
// `AKM.module({...})` call. Fields not present in the source object literal
// are left at their zero value; defaulting (e.g. Version) happens when this
// is lowered into an ir.ModuleDescriptor.
type ModuleConfig struct {
	Name            string
	HasName         bool
	Version         string
	HasVersion      bool
	Author          string
	Description     string
	License         string
	Capabilities    uint32
	HasCapabilities bool
	Dependencies    []string
	SecurityLevel   uint8
}

// FunctionDef is one extracted function: a named declaration, a named export
// declaration, or a single-name variable binding initialised with an
// anonymous function/arrow expression.
type FunctionDef struct {
	Name     string
	Params   []string
	Body     []ast.Statement
	IsInit   bool
	IsExit   bool
	Location Location
}

// CommandDef is one extracted `AKM.command({...}, handler)` registration.
// Handler is empty and HandlerResolved is false when the handler argument
// wasn't a bare Identifier naming an extracted function — that case records
// handler=null and a warning, never an abort.
type CommandDef struct {
	Name            string
	Syntax          string
	Description     string
	Category        string
	Handler         string
	HandlerResolved bool
	Location        Location
}

// APICallSite is one extracted `AKM.<method>(...)` call expression, recorded
// independently of the owning function for early unknown-method warnings.
// The IR builder performs its own walk of
// FunctionDef.Body and will encounter the same call expressions again when
// lowering — this list exists purely for early diagnostics.
type APICallSite struct {
	Method   string
	Argc     int
	Location Location
}

// Location is a source position, used for diagnostic rendering.
type Location struct {
	File   string
	Line   int
	Column int
}

// Extraction is the complete result of parsing and extracting one source
// file.
type Extraction struct {
	Module    ModuleConfig
	Functions []FunctionDef
	Commands  []CommandDef
	APICalls  []APICallSite
}

// FunctionByName returns the extracted function named n, if any.
func (e *Extraction) FunctionByName(n string) (FunctionDef, bool) {
	for _, f := range e.Functions {
		if f.Name == n {
			return f, true
		}
	}

	return FunctionDef{}, false
}
