package frontend

import (
	"reflect"
	"testing"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"
)

func TestEvalConstantLiterals(t *testing.T) {
	cases := []struct {
		name string
		expr ast.Expression
		want interface{}
	}{
		{"string", &ast.StringLiteral{Value: []rune("hi")}, "hi"},
		{"number", &ast.NumberLiteral{Value: 3}, float64(3)},
		{"bool", &ast.BooleanLiteral{Value: true}, true},
		{"null", &ast.NullLiteral{}, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := evalConstant(c.expr)
			if !ok {
				t.Fatalf("evalConstant(%v) returned ok=false", c.expr)
			}

			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("evalConstant(%v) = %v, want %v", c.expr, got, c.want)
			}
		})
	}
}

func TestEvalConstantNegativeNumber(t *testing.T) {
	expr := &ast.UnaryExpression{
		Operator: token.Minus,
		Operand:  &ast.NumberLiteral{Value: 4},
	}

	got, ok := evalConstant(expr)
	if !ok {
		t.Fatal("evalConstant returned ok=false for unary minus over a number literal")
	}

	if got != float64(-4) {
		t.Fatalf("evalConstant(-4) = %v, want -4", got)
	}
}

func TestEvalConstantIdentifierIsRef(t *testing.T) {
	got, ok := evalConstant(&ast.Identifier{Name: []rune("x")})
	if !ok {
		t.Fatal("evalConstant returned ok=false for a bare identifier")
	}

	ref, ok := got.(Ref)
	if !ok || ref.Name != "x" {
		t.Fatalf("expected Ref{Name: \"x\"}, got %#v", got)
	}
}

func TestEvalConstantArrayOfLiterals(t *testing.T) {
	expr := &ast.ArrayLiteral{
		Value: []ast.Expression{
			&ast.StringLiteral{Value: []rune("a")},
			&ast.StringLiteral{Value: []rune("b")},
		},
	}

	got, ok := evalConstant(expr)
	if !ok {
		t.Fatal("evalConstant returned ok=false for an array of string literals")
	}

	want := []interface{}{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("evalConstant(array) = %v, want %v", got, want)
	}
}

func TestEvalConstantObjectLiteral(t *testing.T) {
	expr := &ast.ObjectLiteral{
		Value: []ast.Property{
			&ast.PropertyKeyed{
				Key:   &ast.Identifier{Name: []rune("name")},
				Value: &ast.StringLiteral{Value: []rune("a")},
			},
		},
	}

	got, ok := evalConstant(expr)
	if !ok {
		t.Fatal("evalConstant returned ok=false for an object literal")
	}

	want := map[string]interface{}{"name": "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("evalConstant(object) = %v, want %v", got, want)
	}
}

func TestEvalConstantTemplateLiteralNonInterpolated(t *testing.T) {
	expr := &ast.TemplateLiteral{
		Elements: []*ast.TemplateElement{{Literal: "hello"}},
	}

	got, ok := evalConstant(expr)
	if !ok || got != "hello" {
		t.Fatalf("evalConstant(template) = %v, %v, want \"hello\", true", got, ok)
	}
}

func TestEvalConstantTemplateLiteralInterpolatedFails(t *testing.T) {
	expr := &ast.TemplateLiteral{
		Elements:    []*ast.TemplateElement{{Literal: "hello "}, {Literal: ""}},
		Expressions: []ast.Expression{&ast.Identifier{Name: []rune("x")}},
	}

	if _, ok := evalConstant(expr); ok {
		t.Fatal("expected evalConstant to reject a template literal with an interpolation")
	}
}

func TestEvalConstantCallExpressionFails(t *testing.T) {
	expr := &ast.CallExpression{Callee: &ast.Identifier{Name: []rune("f")}}

	if _, ok := evalConstant(expr); ok {
		t.Fatal("expected evalConstant to reject a call expression")
	}
}

func TestEvalCapabilitiesExprSingleBit(t *testing.T) {
	expr := capsMember("LOG")

	got, ok := evalCapabilitiesExpr(expr)
	if !ok {
		t.Fatal("evalCapabilitiesExpr returned ok=false for AKM.CAPS.LOG")
	}

	if got != 0x800 {
		t.Fatalf("evalCapabilitiesExpr(AKM.CAPS.LOG) = %#x, want 0x800", got)
	}
}

func TestEvalCapabilitiesExprOrChain(t *testing.T) {
	expr := &ast.BinaryExpression{
		Operator: token.Or,
		Left:     capsMember("LOG"),
		Right:    capsMember("NETWORK"),
	}

	got, ok := evalCapabilitiesExpr(expr)
	if !ok {
		t.Fatal("evalCapabilitiesExpr returned ok=false for an OR chain of two capability bits")
	}

	if want := uint32(0x800 | 0x4000); got != want {
		t.Fatalf("evalCapabilitiesExpr(LOG|NETWORK) = %#x, want %#x", got, want)
	}
}

func TestEvalCapabilitiesExprUnknownName(t *testing.T) {
	if _, ok := evalCapabilitiesExpr(capsMember("NOT_A_CAP")); ok {
		t.Fatal("expected evalCapabilitiesExpr to reject an unrecognised capability name")
	}
}

// capsMember builds the AST for `AKM.CAPS.<name>`.
func capsMember(name string) *ast.DotExpression {
	return &ast.DotExpression{
		Left: &ast.DotExpression{
			Left:       &ast.Identifier{Name: []rune("AKM")},
			Identifier: ast.Identifier{Name: []rune("CAPS")},
		},
		Identifier: ast.Identifier{Name: []rune(name)},
	}
}

