package frontend

import (
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"

	"github.com/akmc/akmc/pkg/isa"
)

// evalConstant is the restricted constant evaluator. It accepts
// string/number/boolean literals, negation unary, array literals of
// literals, nested object literals, and template literals containing only
// non-interpolated quasi fragments. Any identifier that isn't one of those
// forms resolves to the Ref sentinel rather than failing outright — only a
// handful of expression shapes return ok=false, namely ones with no
// constant-evaluable meaning at all (e.g. a call expression).
func evalConstant(expr ast.Expression) (interface{}, bool) {
	switch e := expr.(type) {
	case *ast.StringLiteral:
		return string(e.Value), true
	case *ast.NumberLiteral:
		if n, ok := toFloat(e.Value); ok {
			return n, true
		}

		return nil, false
	case *ast.BooleanLiteral:
		return e.Value, true
	case *ast.NullLiteral:
		return nil, true
	case *ast.Identifier:
		return Ref{Name: string(e.Name)}, true
	case *ast.UnaryExpression:
		if e.Operator == token.Minus {
			if v, ok := evalConstant(e.Operand); ok {
				if n, isNum := toFloat(v); isNum {
					return -n, true
				}
			}
		}

		return nil, false
	case *ast.ArrayLiteral:
		out := make([]interface{}, 0, len(e.Value))

		for _, el := range e.Value {
			if el == nil {
				continue
			}

			v, ok := evalConstant(el)
			if !ok {
				return nil, false
			}

			out = append(out, v)
		}

		return out, true
	case *ast.ObjectLiteral:
		return evalObjectLiteral(e)
	case *ast.TemplateLiteral:
		return evalTemplateLiteral(e)
	default:
		return nil, false
	}
}

// evalObjectLiteral evaluates a nested object literal, keyed by its string
// property names.
func evalObjectLiteral(obj *ast.ObjectLiteral) (interface{}, bool) {
	out := make(map[string]interface{}, len(obj.Value))

	for _, prop := range obj.Value {
		keyed, ok := prop.(*ast.PropertyKeyed)
		if !ok {
			continue
		}

		key, ok := propertyKeyName(keyed.Key)
		if !ok {
			continue
		}

		v, ok := evalConstant(keyed.Value)
		if !ok {
			return nil, false
		}

		out[key] = v
	}

	return out, true
}

// propertyKeyName extracts the literal string name of an object-literal
// property key, which is itself either a StringLiteral or a bare Identifier
// (`{ name: ... }` vs `{ "name": ... }`).
func propertyKeyName(key ast.Expression) (string, bool) {
	switch k := key.(type) {
	case *ast.Identifier:
		return string(k.Name), true
	case *ast.StringLiteral:
		return string(k.Value), true
	default:
		return "", false
	}
}

// evalTemplateLiteral evaluates a template literal containing only
// non-interpolated quasi fragments by concatenating the raw text. A template literal with any ${...} expression is not constant and
// returns ok=false.
func evalTemplateLiteral(tpl *ast.TemplateLiteral) (interface{}, bool) {
	if len(tpl.Expressions) > 0 {
		return nil, false
	}

	out := ""
	for _, el := range tpl.Elements {
		out += el.Literal
	}

	return out, true
}

// toFloat coerces an evaluated constant to a float64, if it is numeric.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// evalCapabilitiesExpr handles the one additional constant form the
// `capabilities` field of AKM.module(...) must support beyond plain
// evalConstant: a bitwise-OR chain of `AKM.CAPS.<NAME>` member accesses.
func evalCapabilitiesExpr(expr ast.Expression) (uint32, bool) {
	switch e := expr.(type) {
	case *ast.BinaryExpression:
		if e.Operator != token.Or {
			return 0, false
		}

		left, ok := evalCapabilitiesExpr(e.Left)
		if !ok {
			return 0, false
		}

		right, ok := evalCapabilitiesExpr(e.Right)
		if !ok {
			return 0, false
		}

		return left | right, true
	case *ast.NumberLiteral:
		if n, ok := toFloat(e.Value); ok {
			return uint32(n), true
		}

		return 0, false
	case *ast.DotExpression:
		name, ok := capsMemberName(e)
		if !ok {
			return 0, false
		}

		cap, ok := isa.ByCapabilityName(name)
		if !ok {
			return 0, false
		}

		return cap.Bit(), true
	default:
		return 0, false
	}
}

// capsMemberName matches the `AKM.CAPS.<NAME>` dotted-access chain and
// returns <NAME>.
func capsMemberName(dot *ast.DotExpression) (string, bool) {
	inner, ok := dot.Left.(*ast.DotExpression)
	if !ok {
		return "", false
	}

	root, ok := inner.Left.(*ast.Identifier)
	if !ok || string(root.Name) != "AKM" {
		return "", false
	}

	if string(inner.Identifier.Name) != "CAPS" {
		return "", false
	}

	return string(dot.Identifier.Name), true
}
