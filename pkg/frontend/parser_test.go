package frontend

import (
	"strings"
	"testing"

	"github.com/dop251/goja/ast"

	"github.com/akmc/akmc/pkg/diag"
)

func hasKind(diags []diag.Diagnostic, kind diag.Kind) bool {
	for _, d := range diags {
		if d.Kind == kind {
			return true
		}
	}

	return false
}

func TestParseMinimalModule(t *testing.T) {
	src := `
AKM.module({name: "a"});
function init() { return 0; }
function exit() {}
`
	ex, diags := Parse("a.akm.js", src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	if ex.Module.Name != "a" || !ex.Module.HasName {
		t.Fatalf("expected module name %q, got %+v", "a", ex.Module)
	}

	if _, ok := ex.FunctionByName("init"); !ok {
		t.Fatal("expected init to be extracted")
	}

	if _, ok := ex.FunctionByName("exit"); !ok {
		t.Fatal("expected exit to be extracted")
	}
}

func TestParseMissingModuleCall(t *testing.T) {
	src := `
function init() {}
function exit() {}
`
	_, diags := Parse("a.akm.js", src)
	if !hasKind(diags, diag.KindStructural) {
		t.Fatalf("expected a structural diagnostic, got %v", diags)
	}
}

func TestParseMissingInitAndExit(t *testing.T) {
	src := `AKM.module({name: "a"});`

	_, diags := Parse("a.akm.js", src)

	var messages []string
	for _, d := range diags {
		messages = append(messages, d.Message)
	}

	joined := strings.Join(messages, "\n")
	if !strings.Contains(joined, "init") || !strings.Contains(joined, "exit") {
		t.Fatalf("expected missing-init and missing-exit diagnostics, got %v", diags)
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, diags := Parse("a.akm.js", "function init( { ")
	if len(diags) != 1 || diags[0].Kind != diag.KindParseError {
		t.Fatalf("expected a single KindParseError, got %v", diags)
	}
}

func TestParseCommandWithUnresolvedHandler(t *testing.T) {
	src := `
AKM.module({name: "a"});
AKM.command({name: "hi"}, notAFunction);
function init() {}
function exit() {}
`
	ex, diags := Parse("a.akm.js", src)
	if len(ex.Commands) != 1 {
		t.Fatalf("expected one extracted command, got %d", len(ex.Commands))
	}

	if ex.Commands[0].HandlerResolved {
		t.Fatal("expected HandlerResolved=false for a handler naming no known function")
	}

	if !hasKind(diags, diag.KindWarning) {
		t.Fatalf("expected a warning diagnostic, got %v", diags)
	}
}

func TestParseCommandWithResolvedHandler(t *testing.T) {
	src := `
AKM.module({name: "a"});
AKM.command({name: "hi", syntax: "hi", description: "say hi", category: "fun"}, hiHandler);
function hiHandler() {}
function init() {}
function exit() {}
`
	ex, _ := Parse("a.akm.js", src)
	if len(ex.Commands) != 1 {
		t.Fatalf("expected one extracted command, got %d", len(ex.Commands))
	}

	cmd := ex.Commands[0]
	if !cmd.HandlerResolved || cmd.Handler != "hiHandler" {
		t.Fatalf("expected resolved handler hiHandler, got %+v", cmd)
	}

	if cmd.Name != "hi" || cmd.Syntax != "hi" || cmd.Description != "say hi" || cmd.Category != "fun" {
		t.Fatalf("command fields not extracted correctly: %+v", cmd)
	}
}

func TestParseUnknownAPIMethodWarns(t *testing.T) {
	src := `
AKM.module({name: "a"});
function init() { AKM.notAMethod("x"); }
function exit() {}
`
	ex, diags := Parse("a.akm.js", src)
	if len(ex.APICalls) != 1 || ex.APICalls[0].Method != "notAMethod" {
		t.Fatalf("expected one API call site for notAMethod, got %+v", ex.APICalls)
	}

	if !hasKind(diags, diag.KindWarning) {
		t.Fatalf("expected a warning diagnostic for the unknown method, got %v", diags)
	}
}

func TestParseAnonymousFunctionBinding(t *testing.T) {
	src := `
AKM.module({name: "a"});
const init = () => 1;
function exit() {}
`
	ex, _ := Parse("a.akm.js", src)

	fn, ok := ex.FunctionByName("init")
	if !ok {
		t.Fatal("expected an arrow-function binding named init to be extracted")
	}

	if len(fn.Body) != 1 {
		t.Fatalf("expected the concise arrow body to be wrapped in a single return statement, got %d statements", len(fn.Body))
	}

	if _, ok := fn.Body[0].(*ast.ReturnStatement); !ok {
		t.Fatalf("expected the wrapped statement to be a ReturnStatement, got %T", fn.Body[0])
	}
}
