package optimize

import (
	"github.com/akmc/akmc/pkg/ir"
	"github.com/akmc/akmc/pkg/isa"
)

// foldConstants scans fn for PUSH<a>, PUSH<b>, <binop> windows and replaces
// them with a single folded PUSH. Division
// and modulo by zero skip the fold; DIV uses floor division; SHR is logical
// (zero-fill); bitwise ops use 32-bit two's-complement semantics.
func foldConstants(fn *ir.Function) {
	insns := fn.Instructions

	out := make([]ir.Instruction, 0, len(insns))

	for i := 0; i < len(insns); {
		if i+2 < len(insns) &&
			isIntPush(insns[i]) && isIntPush(insns[i+1]) && isa.BinaryOps[insns[i+2].Op] {
			a, b := insns[i].Value.Int, insns[i+1].Value.Int
			if folded, ok := foldBinary(insns[i+2].Op, a, b); ok {
				out = append(out, ir.Instruction{Op: isa.PUSH, Value: ir.IntLiteral(folded)})
				i += 3

				continue
			}
		}

		out = append(out, insns[i])
		i++
	}

	fn.Instructions = out
}

func isIntPush(insn ir.Instruction) bool {
	return insn.Op == isa.PUSH && insn.Value.Kind == ir.LitInt
}

func foldBinary(op isa.Opcode, a, b int32) (int32, bool) {
	switch op {
	case isa.ADD:
		return a + b, true
	case isa.SUB:
		return a - b, true
	case isa.MUL:
		return a * b, true
	case isa.DIV:
		if b == 0 {
			return 0, false
		}

		return floorDiv(a, b), true
	case isa.MOD:
		if b == 0 {
			return 0, false
		}

		return a - floorDiv(a, b)*b, true
	case isa.AND:
		return a & b, true
	case isa.OR:
		return a | b, true
	case isa.XOR:
		return a ^ b, true
	case isa.SHL:
		return int32(uint32(a) << (uint32(b) & 31)), true
	case isa.SHR:
		return int32(uint32(a) >> (uint32(b) & 31)), true
	default:
		return 0, false
	}
}

// floorDiv implements floor division (rounds toward negative infinity),
// unlike Go's truncating /.
func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}
