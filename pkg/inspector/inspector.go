// Package inspector parses an AKM v2 artifact back into a human- and
// machine-readable report. It is the reverse of pkg/binfile:
// given raw bytes, it never re-derives semantics the writer didn't already
// commit to disk — it only decodes what's there.
package inspector

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/akmc/akmc/pkg/diag"
	"github.com/akmc/akmc/pkg/isa"
)

// Report is the fully decoded view of one artifact.
type Report struct {
	Name, Version, Author string
	APIVersion             string
	KernelMinVersion       string
	KernelMaxVersion       string
	Flags                  []string
	Capabilities           []string
	CapabilityMask         uint32
	SecurityLevel          uint8

	CodeOffset, CodeSize     uint32
	DataOffset, DataSize     uint32
	SymtabOffset, SymtabSize uint32
	StrtabOffset, StrtabSize uint32
	TotalSize                uint32

	InitOffset    uint32
	CleanupOffset uint32

	Dependencies []string

	HeaderChecksum      uint32
	ContentChecksum     uint32
	HeaderChecksumValid bool
	ContentChecksumValid bool
}

// Inspect decodes artifact into a Report. A magic mismatch or an artifact
// shorter than the fixed header aborts with a KindInspection diagnostic.
func Inspect(artifact []byte) (*Report, []diag.Diagnostic) {
	if len(artifact) < isa.HeaderSize {
		return nil, []diag.Diagnostic{{
			Kind:    diag.KindInspection,
			Message: fmt.Sprintf("artifact too short: %d bytes, need at least %d", len(artifact), isa.HeaderSize),
		}}
	}

	header := artifact[:isa.HeaderSize]

	magic := binary.LittleEndian.Uint32(header[isa.OffMagic:])
	if magic != isa.Magic {
		return nil, []diag.Diagnostic{{
			Kind:    diag.KindInspection,
			Message: fmt.Sprintf("bad magic %#08x, want %#08x", magic, isa.Magic),
		}}
	}

	r := &Report{}

	r.Name = readString(header[isa.OffName : isa.OffName+32])
	r.Version = readString(header[isa.OffVersion : isa.OffVersion+16])
	r.Author = readString(header[isa.OffAuthor : isa.OffAuthor+32])

	r.APIVersion = decodeTwoPartVersion(binary.LittleEndian.Uint16(header[isa.OffAPIVersion:]))
	r.KernelMinVersion = decodeThreePartVersion(binary.LittleEndian.Uint32(header[isa.OffKernelMinVersion:]))
	r.KernelMaxVersion = decodeThreePartVersion(binary.LittleEndian.Uint32(header[isa.OffKernelMaxVersion:]))

	flagBits := binary.LittleEndian.Uint16(header[isa.OffFlags:])
	r.Flags = decodeFlags(flagBits)

	r.CapabilityMask = binary.LittleEndian.Uint32(header[isa.OffCapabilities:])
	r.Capabilities = isa.DecodeCapabilities(r.CapabilityMask)
	r.SecurityLevel = header[isa.OffSecurityLevel]

	r.CodeOffset = binary.LittleEndian.Uint32(header[isa.OffCodeOffset:])
	r.CodeSize = binary.LittleEndian.Uint32(header[isa.OffCodeSize:])
	r.DataOffset = binary.LittleEndian.Uint32(header[isa.OffDataOffset:])
	r.DataSize = binary.LittleEndian.Uint32(header[isa.OffDataSize:])
	r.SymtabOffset = binary.LittleEndian.Uint32(header[isa.OffSymtabOffset:])
	r.SymtabSize = binary.LittleEndian.Uint32(header[isa.OffSymtabSize:])
	r.StrtabOffset = binary.LittleEndian.Uint32(header[isa.OffStrtabOffset:])
	r.StrtabSize = binary.LittleEndian.Uint32(header[isa.OffStrtabSize:])
	r.TotalSize = binary.LittleEndian.Uint32(header[isa.OffTotalSize:])

	r.InitOffset = binary.LittleEndian.Uint32(header[isa.OffInitOffset:])
	r.CleanupOffset = binary.LittleEndian.Uint32(header[isa.OffCleanupOffset:])

	depCount := int(header[isa.OffDepCount])
	for i := 0; i < depCount && i < isa.MaxDependencyCount; i++ {
		slot := header[isa.OffDependencies+i*isa.DependencySlotLength : isa.OffDependencies+(i+1)*isa.DependencySlotLength]
		r.Dependencies = append(r.Dependencies, readString(slot))
	}

	r.ContentChecksum = binary.LittleEndian.Uint32(header[isa.OffContentChecksum:])
	r.HeaderChecksum = binary.LittleEndian.Uint32(header[isa.OffHeaderChecksum:])

	var diags []diag.Diagnostic

	if int(r.TotalSize) != len(artifact) {
		diags = append(diags, diag.Diagnostic{
			Kind:    diag.KindWarning,
			Message: fmt.Sprintf("total_size %d does not match artifact length %d", r.TotalSize, len(artifact)),
		})
	}

	r.ContentChecksumValid = validateContentChecksum(artifact, r)
	r.HeaderChecksumValid = validateHeaderChecksum(header)

	return r, diags
}

func validateContentChecksum(artifact []byte, r *Report) bool {
	end := int(r.StrtabOffset + r.StrtabSize)
	if end > len(artifact) || int(r.CodeOffset) > len(artifact) {
		return false
	}

	body := artifact[r.CodeOffset:end]

	return rollingChecksum(body) == r.ContentChecksum
}

func validateHeaderChecksum(header []byte) bool {
	body := append(append([]byte(nil), header[:isa.OffHeaderChecksum]...), header[isa.OffContentChecksum:]...)
	return rollingChecksum(body) == binary.LittleEndian.Uint32(header[isa.OffHeaderChecksum:])
}

func rollingChecksum(b []byte) uint32 {
	var acc uint32

	for _, c := range b {
		acc = bits.RotateLeft32(acc+uint32(c), 1)
	}

	return acc
}

func readString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}

	return string(b)
}

func decodeTwoPartVersion(v uint16) string {
	return fmt.Sprintf("%d.%d", v>>8, v&0xFF)
}

func decodeThreePartVersion(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", (v>>16)&0xFF, (v>>8)&0xFF, v&0xFF)
}

func decodeFlags(v uint16) []string {
	var names []string

	if v&isa.FlagDebug != 0 {
		names = append(names, "DEBUG")
	}

	if v&isa.FlagNative != 0 {
		names = append(names, "NATIVE")
	}

	if v&isa.FlagRequired != 0 {
		names = append(names, "REQUIRED")
	}

	if v&isa.FlagAutoload != 0 {
		names = append(names, "AUTOLOAD")
	}

	return names
}
