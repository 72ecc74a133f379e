package inspector

import (
	"fmt"
	"strings"

	json "github.com/segmentio/encoding/json"
)

// Render produces the human-readable report text.
func Render(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "module:       %s\n", r.Name)
	fmt.Fprintf(&b, "version:      %s\n", r.Version)
	fmt.Fprintf(&b, "author:       %s\n", r.Author)
	fmt.Fprintf(&b, "api version:  %s\n", r.APIVersion)
	fmt.Fprintf(&b, "kernel min:   %s\n", r.KernelMinVersion)
	fmt.Fprintf(&b, "kernel max:   %s\n", r.KernelMaxVersion)
	fmt.Fprintf(&b, "flags:        %s\n", joinOrNone(r.Flags))
	fmt.Fprintf(&b, "capabilities: %s (%#08x)\n", joinOrNone(r.Capabilities), r.CapabilityMask)
	fmt.Fprintf(&b, "security:     %d\n", r.SecurityLevel)
	fmt.Fprintf(&b, "dependencies: %s\n", joinOrNone(r.Dependencies))
	fmt.Fprintf(&b, "code:         offset=%d size=%d\n", r.CodeOffset, r.CodeSize)
	fmt.Fprintf(&b, "data:         offset=%d size=%d\n", r.DataOffset, r.DataSize)
	fmt.Fprintf(&b, "symtab:       offset=%d size=%d\n", r.SymtabOffset, r.SymtabSize)
	fmt.Fprintf(&b, "strtab:       offset=%d size=%d\n", r.StrtabOffset, r.StrtabSize)
	fmt.Fprintf(&b, "total size:   %d\n", r.TotalSize)
	fmt.Fprintf(&b, "init:         %d\n", r.InitOffset)
	fmt.Fprintf(&b, "exit:         %d\n", r.CleanupOffset)
	fmt.Fprintf(&b, "header checksum:  %#08x (valid=%t)\n", r.HeaderChecksum, r.HeaderChecksumValid)
	fmt.Fprintf(&b, "content checksum: %#08x (valid=%t)\n", r.ContentChecksum, r.ContentChecksumValid)

	return b.String()
}

func joinOrNone(ss []string) string {
	if len(ss) == 0 {
		return "(none)"
	}

	return strings.Join(ss, ", ")
}

// RenderJSON marshals r for the CLI's --json output path, using the same
// drop-in encoding/json-compatible encoder the rest of the module's JSON
// surface uses.
func RenderJSON(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
