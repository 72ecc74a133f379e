package ir

import "github.com/akmc/akmc/pkg/isa"

// Function is the IR-level function record. Locals
// are indexed by insertion order; adding the same name twice is not
// deduplicated — the later index wins for subsequent LOAD_LOCAL/STORE_LOCAL
// references emitted after the second declaration, which implementations
// must document as a known source-level behavior rather than
// silently "fix" by deduplicating, since a later `let x` shadowing an
// earlier one in the same function is exactly what the source asked for.
type Function struct {
	Name         string
	Parameters   []string
	Locals       []string
	Instructions []Instruction
	IsInit       bool
	IsExit       bool
}

// LocalIndex returns the insertion-order index of the most recently added
// local named n, or -1 if no local by that name has been declared yet. Per
// the function-level doc comment, a name added twice yields the index of its
// latest occurrence.
func (f *Function) LocalIndex(n string) int {
	idx := -1

	for i, name := range f.Locals {
		if name == n {
			idx = i
		}
	}

	return idx
}

// AddLocal appends n to the function's local list (without deduplicating —
// see the Function doc comment) and returns its new index.
func (f *Function) AddLocal(n string) int {
	f.Locals = append(f.Locals, n)
	return len(f.Locals) - 1
}

// Emit appends one instruction to the function's body.
func (f *Function) Emit(insn Instruction) {
	f.Instructions = append(f.Instructions, insn)
}

// EnsureTerminated appends a bare RET if the function's last instruction
// isn't already RET.
func (f *Function) EnsureTerminated() {
	if n := len(f.Instructions); n == 0 || f.Instructions[n-1].Op != isa.RET {
		f.Emit(Instruction{Op: isa.RET})
	}
}
