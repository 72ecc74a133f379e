// Package capability implements the capability inferencer: it walks a built
// ir.Program and computes the final capability bitmask that replaces the
// module descriptor's declared value.
package capability

import (
	"github.com/akmc/akmc/pkg/ir"
	"github.com/akmc/akmc/pkg/isa"
)

// Infer computes the module's final capability mask and returns a copy of
// prog with Module.Capabilities replaced. prog itself is not mutated.
func Infer(prog *ir.Program) *ir.Program {
	mask := prog.Module.Capabilities

	if len(prog.Commands) > 0 {
		mask |= isa.CapCommand.Bit()
	}

	for _, fn := range prog.Functions {
		for _, insn := range fn.Instructions {
			if insn.Op != isa.CALL_API {
				continue
			}

			if m, ok := isa.LookupAPI(insn.Method); ok {
				mask |= m.Capability.Bit()
			}
		}
	}

	// The module is always assumed to use the log facility.
	mask |= isa.CapLog.Bit()

	out := *prog
	out.Module = prog.Module.WithCapabilities(mask)

	return &out
}
