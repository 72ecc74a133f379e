package optimize

import (
	"github.com/akmc/akmc/pkg/ir"
	"github.com/akmc/akmc/pkg/isa"
)

// runPeephole collapses these adjacent-pair patterns:
// PUSH _; POP, NEG; NEG, NOT; NOT, PUSH 0; ADD, PUSH 1; MUL, DUP; POP, and a
// bare NOP (one not marking a prologue/entry hook) on its own.
func runPeephole(fn *ir.Function) {
	insns := fn.Instructions

	out := make([]ir.Instruction, 0, len(insns))

	for i := 0; i < len(insns); {
		if i+1 < len(insns) && collapsesToNothing(insns[i], insns[i+1]) {
			i += 2
			continue
		}

		if insns[i].Op == isa.NOP && insns[i].Label == "" {
			i++
			continue
		}

		out = append(out, insns[i])
		i++
	}

	fn.Instructions = out
}

func collapsesToNothing(a, b ir.Instruction) bool {
	switch {
	case a.Op == isa.PUSH && b.Op == isa.POP:
		return true
	case a.Op == isa.NEG && b.Op == isa.NEG:
		return true
	case a.Op == isa.NOT && b.Op == isa.NOT:
		return true
	case a.Op == isa.PUSH && a.Value.Kind == ir.LitInt && a.Value.Int == 0 && b.Op == isa.ADD:
		return true
	case a.Op == isa.PUSH && a.Value.Kind == ir.LitInt && a.Value.Int == 1 && b.Op == isa.MUL:
		return true
	case a.Op == isa.DUP && b.Op == isa.POP:
		return true
	default:
		return false
	}
}
