// Package binfile assembles the final AKM v2 artifact: the
// 512-byte header at byte-exact offsets, the symbol/string tables, the two
// rolling checksums, and their concatenation with the code and data sections
// pkg/codegen produced. The shape — a fixed-size header struct written
// field-by-field into a zeroed buffer, a package-level magic-sniff helper,
// version constants — is grounded on its prior (now-replaced)
// pkg/binfile/binfile.go; the concrete layout is AKM v2's, not its.
package binfile

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/akmc/akmc/pkg/codegen"
	"github.com/akmc/akmc/pkg/diag"
	"github.com/akmc/akmc/pkg/ir"
	"github.com/akmc/akmc/pkg/isa"
)

// Symbol is one 12-byte symbol-table record.
type Symbol struct {
	NameOffset uint32
	Value      uint32
	Size       uint16
	Type       uint8
	Binding    uint8
}

const (
	symbolTypeFunction uint8 = 1
	symbolBindingGlobal uint8 = 1
	symbolRecordSize         = 12
)

// Build assembles the complete artifact from an optimized, code-generated
// program. It builds the symbol table and appends function names to the
// string-table content (the "recommended fix" for 
// name-offset-region caveat — see DESIGN.md), then writes the 512-byte
// header, computes both checksums, and concatenates every section.
func Build(prog *ir.Program, gen *codegen.Output) ([]byte, []diag.Diagnostic) {
	strtab, symbols := buildSymbolsAndStrtab(prog.Strings.Strings(), gen.Functions)

	codeOffset := uint32(isa.HeaderSize)
	codeSize := uint32(len(gen.Code))
	dataOffset := codeOffset + codeSize
	dataSize := uint32(len(gen.Data))
	symtabOffset := dataOffset + dataSize
	symtabSize := uint32(len(symbols) * symbolRecordSize)
	strtabOffset := symtabOffset + symtabSize
	strtabSize := uint32(len(strtab))
	totalSize := strtabOffset + strtabSize

	header := make([]byte, isa.HeaderSize)
	writeHeader(header, prog, codeOffset, codeSize, dataOffset, dataSize,
		symtabOffset, symtabSize, strtabOffset, strtabSize, totalSize, gen)

	symtab := encodeSymbols(symbols)

	var diags []diag.Diagnostic
	if len(prog.Module.Dependencies) > isa.MaxDependencyCount {
		diags = append(diags, diag.Diagnostic{
			Kind:    diag.KindWarning,
			Message: fmt.Sprintf("%d dependencies declared, only the first %d are encoded", len(prog.Module.Dependencies), isa.MaxDependencyCount),
		})
	}

	contentChecksum := rollingChecksum(concat(gen.Code, gen.Data, symtab, strtab))
	binary.LittleEndian.PutUint32(header[isa.OffContentChecksum:], contentChecksum)

	headerChecksum := rollingChecksum(concat(header[:isa.OffHeaderChecksum], header[isa.OffContentChecksum:]))
	binary.LittleEndian.PutUint32(header[isa.OffHeaderChecksum:], headerChecksum)

	return concat(header, gen.Code, gen.Data, symtab, strtab), diags
}

// buildSymbolsAndStrtab appends each function's name to the string-table
// content and builds the
// corresponding Symbol records.
func buildSymbolsAndStrtab(strings []string, functions []codegen.FunctionOffset) ([]byte, []Symbol) {
	var strtab []byte

	for _, s := range strings {
		strtab = append(strtab, []byte(s)...)
		strtab = append(strtab, 0)
	}

	symbols := make([]Symbol, 0, len(functions))

	for _, fn := range functions {
		nameOffset := uint32(len(strtab))
		strtab = append(strtab, []byte(fn.Name)...)
		strtab = append(strtab, 0)

		symbols = append(symbols, Symbol{
			NameOffset: nameOffset,
			Value:      fn.Offset,
			Size:       0,
			Type:       symbolTypeFunction,
			Binding:    symbolBindingGlobal,
		})
	}

	return strtab, symbols
}

func encodeSymbols(symbols []Symbol) []byte {
	out := make([]byte, 0, len(symbols)*symbolRecordSize)

	for _, sym := range symbols {
		var rec [symbolRecordSize]byte
		binary.LittleEndian.PutUint32(rec[0:4], sym.NameOffset)
		binary.LittleEndian.PutUint32(rec[4:8], sym.Value)
		binary.LittleEndian.PutUint16(rec[8:10], sym.Size)
		rec[10] = sym.Type
		rec[11] = sym.Binding
		out = append(out, rec[:]...)
	}

	return out
}

func writeHeader(h []byte, prog *ir.Program,
	codeOffset, codeSize, dataOffset, dataSize,
	symtabOffset, symtabSize, strtabOffset, strtabSize, totalSize uint32,
	gen *codegen.Output,
) {
	binary.LittleEndian.PutUint32(h[isa.OffMagic:], isa.Magic)
	binary.LittleEndian.PutUint16(h[isa.OffFormatVersion:], isa.FormatVersion)
	binary.LittleEndian.PutUint16(h[isa.OffFlags:], prog.Module.Flags)
	binary.LittleEndian.PutUint32(h[isa.OffHeaderSize:], isa.HeaderSize)
	binary.LittleEndian.PutUint32(h[isa.OffTotalSize:], totalSize)

	putString(h[isa.OffName:isa.OffName+32], prog.Module.Name, isa.MaxNameLen)
	putString(h[isa.OffVersion:isa.OffVersion+16], prog.Module.Version, isa.MaxVersionLen)
	putString(h[isa.OffAuthor:isa.OffAuthor+32], prog.Module.Author, isa.MaxAuthorLen)

	binary.LittleEndian.PutUint16(h[isa.OffAPIVersion:], isa.DefaultAPIVersion)
	binary.LittleEndian.PutUint32(h[isa.OffKernelMinVersion:], isa.DefaultKernelMinVersion)
	binary.LittleEndian.PutUint32(h[isa.OffKernelMaxVersion:], 0)
	binary.LittleEndian.PutUint32(h[isa.OffCapabilities:], prog.Module.Capabilities)

	binary.LittleEndian.PutUint32(h[isa.OffCodeOffset:], codeOffset)
	binary.LittleEndian.PutUint32(h[isa.OffCodeSize:], codeSize)
	binary.LittleEndian.PutUint32(h[isa.OffDataOffset:], dataOffset)
	binary.LittleEndian.PutUint32(h[isa.OffDataSize:], dataSize)

	binary.LittleEndian.PutUint32(h[isa.OffInitOffset:], codeOffset+functionOffset(gen, "init"))
	binary.LittleEndian.PutUint32(h[isa.OffCleanupOffset:], codeOffset+functionOffset(gen, "exit"))

	binary.LittleEndian.PutUint32(h[isa.OffSymtabOffset:], symtabOffset)
	binary.LittleEndian.PutUint32(h[isa.OffSymtabSize:], symtabSize)
	binary.LittleEndian.PutUint32(h[isa.OffStrtabOffset:], strtabOffset)
	binary.LittleEndian.PutUint32(h[isa.OffStrtabSize:], strtabSize)

	deps := prog.Module.Dependencies
	if len(deps) > isa.MaxDependencyCount {
		deps = deps[:isa.MaxDependencyCount]
	}

	h[isa.OffDepCount] = byte(len(deps))

	for i, d := range deps {
		slot := h[isa.OffDependencies+i*isa.DependencySlotLength : isa.OffDependencies+(i+1)*isa.DependencySlotLength]
		putString(slot, d, isa.MaxDependencyLen)
	}

	h[isa.OffSecurityLevel] = prog.Module.SecurityLevel
}

func functionOffset(gen *codegen.Output, name string) uint32 {
	for _, fn := range gen.Functions {
		if fn.Name == name {
			return fn.Offset
		}
	}

	return 0
}

// putString writes s into dst as UTF-8, truncated to maxLen bytes and
// NUL-padding the remainder (: "name (UTF-8, NUL-padded, truncated to
// 31+NUL)" and siblings).
func putString(dst []byte, s string, maxLen int) {
	b := []byte(s)
	if len(b) > maxLen {
		b = b[:maxLen]
	}

	copy(dst, b)
}

// rollingChecksum implements the checksum algorithm used for both the
// header and content checksums: acc = rotate_left_32(acc + b, 1) over every
// input byte, acc starting at 0.
func rollingChecksum(b []byte) uint32 {
	var acc uint32

	for _, c := range b {
		acc = bits.RotateLeft32(acc+uint32(c), 1)
	}

	return acc
}

func concat(parts ...[]byte) []byte {
	var total int
	for _, p := range parts {
		total += len(p)
	}

	out := make([]byte, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}
