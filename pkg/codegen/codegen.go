// Package codegen lowers an optimized ir.Program to the code and data bytes
// of the AKM v2 artifact. Symbol/string-table assembly and
// header/checksum writing belong to pkg/binfile; this package's
// output is exactly the code section, the data section, and each function's
// entry offset.
package codegen

import (
	"encoding/binary"
	"fmt"

	"github.com/akmc/akmc/pkg/diag"
	"github.com/akmc/akmc/pkg/ir"
	"github.com/akmc/akmc/pkg/isa"
)

// FunctionOffset records one function's code-section entry point, in
// emission order (mirrored by pkg/binfile's symbol table).
type FunctionOffset struct {
	Name   string
	Offset uint32
}

// Output is the code generator's complete result.
type Output struct {
	Code      []byte
	Data      []byte
	Functions []FunctionOffset

	// StringOffsets maps each interned string to its offset within the
	// string area at the start of Data. pkg/binfile does not read it: it
	// builds its own strtab blob, with function names appended.
	StringOffsets map[string]uint32
}

// fixup is a deferred patch: the callee/label name wasn't yet at a known
// code offset when its operand was emitted.
type fixup struct {
	offset uint32
	label  string
}

type generator struct {
	code   []byte
	labels map[string]uint32
	fixups []fixup

	functions     []FunctionOffset
	stringOffsets map[string]uint32
}

// Generate lowers prog to code+data bytes. The returned diagnostics are
// fatal (KindUnresolvedFixup) whenever a CALL or labeled jump references a
// name that was never emitted as a function.
func Generate(prog *ir.Program) (*Output, []diag.Diagnostic) {
	g := &generator{labels: make(map[string]uint32)}

	g.stringOffsets = make(map[string]uint32, prog.Strings.Len())
	stringArea := g.buildStringArea(prog.Strings.Strings())

	for i := range prog.Functions {
		g.emitFunction(&prog.Functions[i])
	}

	diags := g.resolveFixups()

	data := append([]byte(nil), stringArea...)
	data = append(data, g.buildCommandStubs(prog.Commands)...)

	return &Output{
		Code:          g.code,
		Data:          data,
		Functions:     g.functions,
		StringOffsets: g.stringOffsets,
	}, diags
}

// buildStringArea lays out the NUL-terminated, table-ordered string blob
// and records each string's offset
// within it.
func (g *generator) buildStringArea(strings []string) []byte {
	var area []byte

	for _, s := range strings {
		g.stringOffsets[s] = uint32(len(area))
		area = append(area, []byte(s)...)
		area = append(area, 0)
	}

	return area
}

// buildCommandStubs encodes one 20-byte record per command: four little-endian u32 string offsets followed by a u32
// handler offset resolved against the function table (0 if unresolved).
func (g *generator) buildCommandStubs(commands []ir.Command) []byte {
	out := make([]byte, 0, 20*len(commands))

	for _, cmd := range commands {
		var rec [20]byte
		binary.LittleEndian.PutUint32(rec[0:4], g.stringOffsets[cmd.Name])
		binary.LittleEndian.PutUint32(rec[4:8], g.stringOffsets[cmd.Syntax])
		binary.LittleEndian.PutUint32(rec[8:12], g.stringOffsets[cmd.Description])
		binary.LittleEndian.PutUint32(rec[12:16], g.stringOffsets[cmd.Category])
		binary.LittleEndian.PutUint32(rec[16:20], g.labels[cmd.Handler])
		out = append(out, rec[:]...)
	}

	return out
}

func (g *generator) emitFunction(fn *ir.Function) {
	offset := uint32(len(g.code))
	g.labels[fn.Name] = offset
	g.functions = append(g.functions, FunctionOffset{Name: fn.Name, Offset: offset})

	g.emitByte(byte(isa.NOP))

	for range fn.Locals {
		g.emitPushImmediate(0)
	}

	for _, insn := range fn.Instructions {
		g.emitInstruction(fn, insn)
	}
}

func (g *generator) emitInstruction(fn *ir.Function, insn ir.Instruction) {
	switch insn.Op {
	case isa.PUSH:
		g.emitByte(byte(isa.PUSH))
		g.emitUint32(g.literalOperand(insn.Value))
	case isa.PUSH_STR:
		g.emitByte(byte(isa.PUSH_STR))
		g.emitUint32(g.stringOffsets[insn.Value.Str])
	case isa.PUSH_ARG:
		g.emitByte(byte(isa.PUSH_ARG))
		g.emitByteValue(insn.Value.Int)
	case isa.STORE_LOCAL:
		g.emitByte(byte(isa.PUSH))
		g.emitUint32(g.literalOperand(insn.Value))
		g.emitByte(byte(isa.STORE_LOCAL))
		g.emitByteValue(int32(fn.LocalIndex(insn.Name)))
	case isa.LOAD_LOCAL:
		g.emitByte(byte(isa.LOAD_LOCAL))
		g.emitByteValue(int32(fn.LocalIndex(insn.Name)))
	case isa.CALL:
		g.emitByte(byte(isa.CALL))
		g.fixups = append(g.fixups, fixup{offset: uint32(len(g.code)), label: insn.Func})
		g.emitUint32(0)
		g.emitByteValue(int32(insn.Argc))
	case isa.CALL_API:
		g.emitByte(byte(isa.CALL_API))
		g.emitByte(apiIndex(insn.Method))
		g.emitByteValue(int32(insn.Argc))
	case isa.JMP, isa.JZ, isa.JNZ:
		g.emitByte(byte(insn.Op))

		if insn.Label != "" {
			g.fixups = append(g.fixups, fixup{offset: uint32(len(g.code)), label: insn.Label})
			g.emitUint32(0)
		} else {
			g.emitUint32(uint32(insn.Address))
		}
	default:
		g.emitByte(byte(insn.Op))
	}
}

// literalOperand resolves a PUSH literal to its 32-bit encoded form.
func (g *generator) literalOperand(lit ir.Literal) uint32 {
	switch lit.Kind {
	case ir.LitInt:
		return uint32(lit.Int)
	case ir.LitString:
		return g.stringOffsets[lit.Str]
	default:
		return 0
	}
}

func apiIndex(method string) byte {
	if m, ok := isa.LookupAPI(method); ok {
		return byte(m.Index)
	}

	return isa.UnknownAPIIndex
}

func (g *generator) emitByte(b byte) {
	g.code = append(g.code, b)
}

func (g *generator) emitByteValue(v int32) {
	g.code = append(g.code, byte(v))
}

func (g *generator) emitUint32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	g.code = append(g.code, buf[:]...)
}

func (g *generator) emitPushImmediate(v uint32) {
	g.emitByte(byte(isa.PUSH))
	g.emitUint32(v)
}

// resolveFixups patches every recorded fixup against the final labels map.
// An unresolved fixup is escalated to a fatal diagnostic rather than left
// silently zero — see DESIGN.md's "Unresolved fixups" decision.
func (g *generator) resolveFixups() []diag.Diagnostic {
	var diags []diag.Diagnostic

	for _, fx := range g.fixups {
		addr, ok := g.labels[fx.label]
		if !ok {
			diags = append(diags, diag.Diagnostic{
				Kind:    diag.KindUnresolvedFixup,
				Message: fmt.Sprintf("unresolved reference to %q", fx.label),
			})

			continue
		}

		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], addr)
		copy(g.code[fx.offset:fx.offset+4], buf[:])
	}

	return diags
}
