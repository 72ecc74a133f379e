package ir

import "github.com/akmc/akmc/pkg/isa"

// LiteralKind tags which field of Literal is populated.
type LiteralKind int

// The two literal shapes an IR immediate can carry: an integer value or a
// string reference.
const (
	LitNone LiteralKind = iota
	LitInt
	LitString
)

// Literal is an IR-level immediate value: either a 32-bit integer or a
// reference to a string carried by content, never by table position.
type Literal struct {
	Kind LiteralKind
	Int  int32
	Str  string
}

// IntLiteral constructs an integer Literal.
func IntLiteral(v int32) Literal { return Literal{Kind: LitInt, Int: v} }

// StringLiteral constructs a string Literal.
func StringLiteral(v string) Literal { return Literal{Kind: LitString, Str: v} }

// Instruction is one tagged IR instruction. Only
// the fields relevant to Op are populated; the rest are zero.
type Instruction struct {
	Op isa.Opcode

	// Value carries PUSH's immediate (integer or string-by-content).
	Value Literal

	// Name is the local variable name for LOAD_LOCAL/STORE_LOCAL.
	Name string

	// Label is the symbolic jump target for JMP/JZ/JNZ, carried by name
	// (never relied on as a positional index) so the code generator's fixup
	// resolution is free to run after the optimizer has reordered or dropped
	// instructions.
	Label string

	// Address is a jump's target position within its own function's
	// instruction list, when already resolved to a local index rather than
	// (or alongside) a symbolic Label. The dead-code eliminator uses this to
	// compute the jump-target set; nothing in this lowering ever
	// populates it, since no recognized statement shape emits a branch, but
	// the field exists because the closed opcode set includes JMP/JZ/JNZ and
	// the IR data model must carry a target for them regardless.
	Address int

	// Func is the callee name for CALL.
	Func string

	// Method is the host-API method name for CALL_API.
	Method string

	// Argc is the argument count for CALL / CALL_API.
	Argc int
}

// IsJump reports whether op is one of the three jump opcodes.
func IsJump(op isa.Opcode) bool {
	return op == isa.JMP || op == isa.JZ || op == isa.JNZ
}

// IsTerminator reports whether op unconditionally ends straight-line flow.
func IsTerminator(op isa.Opcode) bool {
	return op == isa.RET || op == isa.JMP || op == isa.HALT
}
