package optimize

import (
	"testing"

	"github.com/akmc/akmc/pkg/ir"
	"github.com/akmc/akmc/pkg/isa"
)

func TestFoldConstantsAdd(t *testing.T) {
	fn := &ir.Function{Instructions: []ir.Instruction{
		{Op: isa.PUSH, Value: ir.IntLiteral(2)},
		{Op: isa.PUSH, Value: ir.IntLiteral(3)},
		{Op: isa.ADD},
		{Op: isa.RET},
	}}

	foldConstants(fn)

	if len(fn.Instructions) != 2 {
		t.Fatalf("expected 2 instructions after fold, got %d: %+v", len(fn.Instructions), fn.Instructions)
	}

	if fn.Instructions[0].Op != isa.PUSH || fn.Instructions[0].Value.Int != 5 {
		t.Fatalf("expected PUSH 5, got %+v", fn.Instructions[0])
	}
}

func TestFoldConstantsSkipsDivByZero(t *testing.T) {
	fn := &ir.Function{Instructions: []ir.Instruction{
		{Op: isa.PUSH, Value: ir.IntLiteral(4)},
		{Op: isa.PUSH, Value: ir.IntLiteral(0)},
		{Op: isa.DIV},
	}}

	foldConstants(fn)

	if len(fn.Instructions) != 3 {
		t.Fatalf("expected fold to be skipped, got %+v", fn.Instructions)
	}
}

func TestFoldConstantsFloorDivision(t *testing.T) {
	fn := &ir.Function{Instructions: []ir.Instruction{
		{Op: isa.PUSH, Value: ir.IntLiteral(-7)},
		{Op: isa.PUSH, Value: ir.IntLiteral(2)},
		{Op: isa.DIV},
	}}

	foldConstants(fn)

	if fn.Instructions[0].Value.Int != -4 {
		t.Fatalf("expected floor(-7/2) = -4, got %d", fn.Instructions[0].Value.Int)
	}
}

func TestPeepholePushPop(t *testing.T) {
	fn := &ir.Function{Instructions: []ir.Instruction{
		{Op: isa.PUSH, Value: ir.IntLiteral(9)},
		{Op: isa.POP},
		{Op: isa.RET},
	}}

	runPeephole(fn)

	if len(fn.Instructions) != 1 || fn.Instructions[0].Op != isa.RET {
		t.Fatalf("expected PUSH;POP collapsed, got %+v", fn.Instructions)
	}
}

func TestPeepholeBareNOPRemoved(t *testing.T) {
	fn := &ir.Function{Instructions: []ir.Instruction{
		{Op: isa.NOP},
		{Op: isa.RET},
	}}

	runPeephole(fn)

	if len(fn.Instructions) != 1 {
		t.Fatalf("expected bare NOP dropped, got %+v", fn.Instructions)
	}
}

func TestPeepholeLabeledNOPKept(t *testing.T) {
	fn := &ir.Function{Instructions: []ir.Instruction{
		{Op: isa.NOP, Label: "entry"},
		{Op: isa.RET},
	}}

	runPeephole(fn)

	if len(fn.Instructions) != 2 {
		t.Fatalf("expected labeled NOP preserved, got %+v", fn.Instructions)
	}
}

func TestDeadCodeEliminationDropsAfterRet(t *testing.T) {
	fn := &ir.Function{Instructions: []ir.Instruction{
		{Op: isa.RET},
		{Op: isa.PUSH, Value: ir.IntLiteral(1)},
	}}

	eliminateDeadCode(fn)

	if len(fn.Instructions) != 1 {
		t.Fatalf("expected unreachable instruction dropped, got %+v", fn.Instructions)
	}
}

func TestDeadCodeEliminationKeepsJumpTarget(t *testing.T) {
	fn := &ir.Function{Instructions: []ir.Instruction{
		{Op: isa.JMP, Address: 2},
		{Op: isa.PUSH, Value: ir.IntLiteral(1)},
		{Op: isa.RET},
	}}

	eliminateDeadCode(fn)

	if len(fn.Instructions) != 2 {
		t.Fatalf("expected jump + target kept, unreachable middle dropped, got %+v", fn.Instructions)
	}

	if fn.Instructions[1].Op != isa.RET {
		t.Fatalf("expected RET (the jump target) kept, got %+v", fn.Instructions[1])
	}
}

func TestRunAppliesPassesInOrder(t *testing.T) {
	prog := &ir.Program{
		Strings: ir.NewStringTable(),
		Functions: []ir.Function{{
			Instructions: []ir.Instruction{
				{Op: isa.PUSH, Value: ir.IntLiteral(2)},
				{Op: isa.PUSH, Value: ir.IntLiteral(3)},
				{Op: isa.ADD},
				{Op: isa.POP},
				{Op: isa.RET},
			},
		}},
	}

	Run(prog, DefaultLevel)

	fn := prog.Functions[0]
	if len(fn.Instructions) != 1 || fn.Instructions[0].Op != isa.RET {
		t.Fatalf("expected fold then peephole to reduce to bare RET, got %+v", fn.Instructions)
	}
}
