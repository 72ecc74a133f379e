package optimize

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/akmc/akmc/pkg/ir"
)

// eliminateDeadCode runs a two-sweep reachability pass: a first sweep
// collects every position targeted by a branch, then a second sweep drops
// instructions that are neither reachable by straight-line flow nor a
// recorded jump target.
func eliminateDeadCode(fn *ir.Function) {
	insns := fn.Instructions
	if len(insns) == 0 {
		return
	}

	targets := bitset.New(uint(len(insns)))

	for _, insn := range insns {
		if ir.IsJump(insn.Op) && insn.Address >= 0 && insn.Address < len(insns) {
			targets.Set(uint(insn.Address))
		}
	}

	kept := make([]ir.Instruction, 0, len(insns))
	reachable := true

	for i, insn := range insns {
		if targets.Test(uint(i)) {
			reachable = true
		}

		if reachable {
			kept = append(kept, insn)
		}

		if ir.IsTerminator(insn.Op) {
			reachable = false
		}
	}

	fn.Instructions = kept
}
