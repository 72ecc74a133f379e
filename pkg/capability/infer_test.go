package capability

import (
	"testing"

	"github.com/akmc/akmc/pkg/ir"
	"github.com/akmc/akmc/pkg/isa"
)

func TestInferLogAlwaysSet(t *testing.T) {
	prog := &ir.Program{}

	out := Infer(prog)
	if out.Module.Capabilities&isa.CapLog.Bit() == 0 {
		t.Fatalf("expected LOG bit set, got mask %#x", out.Module.Capabilities)
	}

	if prog.Module.Capabilities != 0 {
		t.Fatalf("Infer must not mutate its argument, got %#x", prog.Module.Capabilities)
	}
}

func TestInferCommandBitFromRegistrations(t *testing.T) {
	prog := &ir.Program{
		Commands: []ir.Command{{Name: "status"}},
	}

	out := Infer(prog)
	if out.Module.Capabilities&isa.CapCommand.Bit() == 0 {
		t.Fatalf("expected COMMAND bit set, got mask %#x", out.Module.Capabilities)
	}
}

func TestInferPerCallCapability(t *testing.T) {
	prog := &ir.Program{
		Functions: []ir.Function{{
			Name: "main",
			Instructions: []ir.Instruction{
				{Op: isa.CALL_API, Method: "netSend", Argc: 2},
				{Op: isa.RET},
			},
		}},
	}

	out := Infer(prog)
	want := isa.CapNetwork.Bit() | isa.CapLog.Bit()
	if out.Module.Capabilities != want {
		t.Fatalf("got mask %#x, want %#x", out.Module.Capabilities, want)
	}
}

func TestInferUnknownAPICallContributesNoCapability(t *testing.T) {
	prog := &ir.Program{
		Functions: []ir.Function{{
			Name: "main",
			Instructions: []ir.Instruction{
				{Op: isa.CALL_API, Method: "notARealMethod", Argc: 0},
			},
		}},
	}

	out := Infer(prog)
	if out.Module.Capabilities != isa.CapLog.Bit() {
		t.Fatalf("got mask %#x, want only LOG", out.Module.Capabilities)
	}
}

func TestInferDeclaredCapabilitiesPreserved(t *testing.T) {
	prog := &ir.Program{
		Module: ir.ModuleDescriptor{Capabilities: isa.CapPower.Bit()},
	}

	out := Infer(prog)
	if out.Module.Capabilities&isa.CapPower.Bit() == 0 {
		t.Fatalf("expected declared POWER bit preserved, got mask %#x", out.Module.Capabilities)
	}
}
