package cmd

import (
	"testing"

	"github.com/akmc/akmc/pkg/isa"
)

func TestDefaultOutputPath(t *testing.T) {
	cases := map[string]string{
		"mod.akm.js": "mod.akm",
		"mod.js":     "mod.akm",
		"mod.txt":    "mod.akm",
	}

	for in, want := range cases {
		if got := defaultOutputPath(in); got != want {
			t.Errorf("defaultOutputPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseCapabilitiesHex(t *testing.T) {
	mask, err := parseCapabilities("0x801")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mask != 0x801 {
		t.Fatalf("mask = %#x, want 0x801", mask)
	}
}

func TestParseCapabilitiesNames(t *testing.T) {
	mask, err := parseCapabilities("LOG,COMMAND")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := isa.CapLog.Bit() | isa.CapCommand.Bit()
	if mask != want {
		t.Fatalf("mask = %#x, want %#x", mask, want)
	}
}

func TestParseCapabilitiesUnknownName(t *testing.T) {
	if _, err := parseCapabilities("NOT_A_CAP"); err == nil {
		t.Fatal("expected an error for an unknown capability name")
	}
}
