// Package diag defines the structured diagnostic type shared by every
// compilation stage. Each stage returns a
// slice of Diagnostic alongside its result; a non-empty slice containing at
// least one Kind other than KindWarning aborts the pipeline before binary
// emission. Warnings never abort.
package diag

import "fmt"

// Kind classifies a Diagnostic by severity and stage.
type Kind int

const (
	// KindParseError is a syntactic failure in the input source; fatal.
	KindParseError Kind = iota
	// KindStructural covers a missing AKM.module call, missing module name,
	// or missing init/exit function; fatal.
	KindStructural
	// KindWarning covers non-fatal conditions: unknown API method, a handler
	// that isn't a bare identifier, dependencies beyond the four encoded
	// slots, a total_size that disagrees with the inspected artifact's length.
	KindWarning
	// KindUnresolvedFixup is an unresolved label reference left over after
	// code generation; this implementation treats it as a structural error
	// (see DESIGN.md).
	KindUnresolvedFixup
	// KindInspection covers magic mismatch / truncated artifact during
	// inspection; fatal with non-zero exit.
	KindInspection
)

// String renders a Kind for log/report output.
func (k Kind) String() string {
	switch k {
	case KindParseError:
		return "parse error"
	case KindStructural:
		return "structural error"
	case KindWarning:
		return "warning"
	case KindUnresolvedFixup:
		return "unresolved fixup"
	case KindInspection:
		return "inspection error"
	default:
		return "error"
	}
}

// Diagnostic is one structured error or warning produced by a compilation
// stage, carrying enough positional context for the CLI to render it with
// file/line/column.
type Diagnostic struct {
	Kind    Kind
	File    string
	Line    int
	Column  int
	Message string
}

// Error implements the error interface so a Diagnostic can be used directly
// with errors.Join at the CLI boundary.
func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Kind, d.Message)
	}

	return fmt.Sprintf("%s: %s: %s", d.File, d.Kind, d.Message)
}

// IsWarning reports whether d should be treated as non-fatal.
func (d Diagnostic) IsWarning() bool {
	return d.Kind == KindWarning
}

// Fatal reports whether any diagnostic in the list is non-warning, i.e.
// whether the pipeline should abort before binary emission.
func Fatal(diags []Diagnostic) bool {
	for _, d := range diags {
		if !d.IsWarning() {
			return true
		}
	}

	return false
}

// Split partitions diags into fatal errors and warnings, preserving order
// within each group.
func Split(diags []Diagnostic) (errors, warnings []Diagnostic) {
	for _, d := range diags {
		if d.IsWarning() {
			warnings = append(warnings, d)
		} else {
			errors = append(errors, d)
		}
	}

	return errors, warnings
}
