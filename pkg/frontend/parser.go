package frontend

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"

	"github.com/akmc/akmc/pkg/diag"
	"github.com/akmc/akmc/pkg/isa"
)

// Parse parses source as an AKM module and extracts its four projections.
// A source parse failure is returned as a single KindParseError diagnostic
// and aborts extraction entirely. Everything else accumulates diagnostics
// but still returns a best-effort Extraction, since unknown API methods are
// warnings, not errors, and downstream stages need to see the rest of the
// module.
func Parse(filename, source string) (*Extraction, []diag.Diagnostic) {
	program, err := parser.ParseFile(nil, filename, source, 0)
	if err != nil {
		return nil, []diag.Diagnostic{parseErrorDiagnostic(filename, err)}
	}

	ex := &Extraction{}
	var diags []diag.Diagnostic

	var moduleCalls int

	for _, stmt := range program.Body {
		stmt = unwrapExport(stmt)

		switch s := stmt.(type) {
		case *ast.FunctionDeclaration:
			ex.Functions = append(ex.Functions, extractFunction(filename, s.Function))
		case *ast.ExpressionStatement:
			if cfg, ok := matchModuleCall(s.Expression); ok {
				ex.Module = cfg
				moduleCalls++
			} else if cmd, d, ok := matchCommandCall(filename, s.Expression, ex); ok {
				ex.Commands = append(ex.Commands, cmd)

				if d != nil {
					diags = append(diags, *d)
				}
			}
		default:
			if bindings, ok := variableBindings(s); ok {
				for _, b := range bindings {
					if def, ok := anonymousFunctionBinding(filename, b); ok {
						ex.Functions = append(ex.Functions, def)
					}
				}
			}
		}
	}

	if moduleCalls == 0 {
		diags = append(diags, diag.Diagnostic{
			Kind: diag.KindStructural, File: filename,
			Message: "missing required AKM.module({...}) call",
		})
	} else if ex.Module.Name == "" {
		diags = append(diags, diag.Diagnostic{
			Kind: diag.KindStructural, File: filename,
			Message: "module name must be non-empty",
		})
	}

	if _, ok := ex.FunctionByName("init"); !ok {
		diags = append(diags, diag.Diagnostic{
			Kind: diag.KindStructural, File: filename, Message: "missing required \"init\" function",
		})
	}

	if _, ok := ex.FunctionByName("exit"); !ok {
		diags = append(diags, diag.Diagnostic{
			Kind: diag.KindStructural, File: filename, Message: "missing required \"exit\" function",
		})
	}

	for i, f := range ex.Functions {
		ex.Functions[i].IsInit = f.Name == "init"
		ex.Functions[i].IsExit = f.Name == "exit"
	}

	ex.APICalls, diags = collectAPICalls(filename, ex.Functions, diags)

	return ex, diags
}

// parseErrorDiagnostic wraps a goja parser error (typically a
// parser.ErrorList, whose Error() already renders "file:line:col: message"
// for the first error) as a structured Diagnostic.
func parseErrorDiagnostic(filename string, err error) diag.Diagnostic {
	return diag.Diagnostic{
		Kind:    diag.KindParseError,
		File:    filename,
		Message: err.Error(),
	}
}

// unwrapExport unwraps `export <decl>` to the underlying declaration, so the
// rest of the extraction logic never needs to special-case it. `export { a, b };` list-form statements carry
// no inner declaration and pass through unchanged; they're otherwise
// harmless as an ignored top-level statement.
func unwrapExport(stmt ast.Statement) ast.Statement {
	if ed, ok := stmt.(*ast.ExportDeclaration); ok && ed.Declaration != nil {
		return ed.Declaration
	}

	return stmt
}

// matchModuleCall recognises `AKM.module(<object-literal>)` and evaluates its
// argument with the restricted constant evaluator.
func matchModuleCall(expr ast.Expression) (ModuleConfig, bool) {
	call, ok := expr.(*ast.CallExpression)
	if !ok || !isAKMMember(call.Callee, "module") {
		return ModuleConfig{}, false
	}

	if len(call.ArgumentList) == 0 {
		return ModuleConfig{}, true
	}

	obj, ok := call.ArgumentList[0].(*ast.ObjectLiteral)
	if !ok {
		return ModuleConfig{}, true
	}

	return evalModuleConfig(obj), true
}

func evalModuleConfig(obj *ast.ObjectLiteral) ModuleConfig {
	var cfg ModuleConfig

	for _, prop := range obj.Value {
		keyed, ok := prop.(*ast.PropertyKeyed)
		if !ok {
			continue
		}

		key, ok := propertyKeyName(keyed.Key)
		if !ok {
			continue
		}

		switch key {
		case "name":
			if v, ok := evalConstant(keyed.Value); ok {
				if s, ok := v.(string); ok {
					cfg.Name, cfg.HasName = s, true
				}
			}
		case "version":
			if v, ok := evalConstant(keyed.Value); ok {
				if s, ok := v.(string); ok {
					cfg.Version, cfg.HasVersion = s, true
				}
			}
		case "author":
			if v, ok := evalConstant(keyed.Value); ok {
				if s, ok := v.(string); ok {
					cfg.Author = s
				}
			}
		case "description":
			if v, ok := evalConstant(keyed.Value); ok {
				if s, ok := v.(string); ok {
					cfg.Description = s
				}
			}
		case "license":
			if v, ok := evalConstant(keyed.Value); ok {
				if s, ok := v.(string); ok {
					cfg.License = s
				}
			}
		case "capabilities":
			if bits, ok := evalCapabilitiesExpr(keyed.Value); ok {
				cfg.Capabilities, cfg.HasCapabilities = bits, true
			} else if v, ok := evalConstant(keyed.Value); ok {
				if n, ok := toFloat(v); ok {
					cfg.Capabilities, cfg.HasCapabilities = uint32(n), true
				}
			}
		case "dependencies":
			if v, ok := evalConstant(keyed.Value); ok {
				if arr, ok := v.([]interface{}); ok {
					for _, el := range arr {
						if s, ok := el.(string); ok {
							cfg.Dependencies = append(cfg.Dependencies, s)
						}
					}
				}
			}
		case "securityLevel", "security_level":
			if v, ok := evalConstant(keyed.Value); ok {
				if n, ok := toFloat(v); ok {
					cfg.SecurityLevel = uint8(n)
				}
			}
		}
	}

	return cfg
}

// matchCommandCall recognises `AKM.command(<object>, handler)`.
func matchCommandCall(filename string, expr ast.Expression, ex *Extraction) (CommandDef, *diag.Diagnostic, bool) {
	call, ok := expr.(*ast.CallExpression)
	if !ok || !isAKMMember(call.Callee, "command") {
		return CommandDef{}, nil, false
	}

	var cmd CommandDef
	cmd.Location = Location{File: filename}

	if len(call.ArgumentList) > 0 {
		if obj, ok := call.ArgumentList[0].(*ast.ObjectLiteral); ok {
			fillCommandFields(&cmd, obj)
		}
	}

	var warning *diag.Diagnostic

	if len(call.ArgumentList) > 1 {
		if id, ok := call.ArgumentList[1].(*ast.Identifier); ok {
			name := string(id.Name)
			if _, found := ex.FunctionByName(name); found {
				cmd.Handler = name
				cmd.HandlerResolved = true
			}
		}
	}

	if !cmd.HandlerResolved {
		warning = &diag.Diagnostic{
			Kind: diag.KindWarning, File: filename,
			Message: fmt.Sprintf("command %q: handler is not a bare identifier naming a known function", cmd.Name),
		}
	}

	return cmd, warning, true
}

func fillCommandFields(cmd *CommandDef, obj *ast.ObjectLiteral) {
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
			continue
		}

		s, ok := v.(string)
		if !ok {
			continue
		}

		switch key {
		case "name":
			cmd.Name = s
		case "syntax":
			cmd.Syntax = s
		case "description":
			cmd.Description = s
		case "category":
			cmd.Category = s
		}
	}
}

// isAKMMember reports whether callee is exactly `AKM.<name>`.
func isAKMMember(callee ast.Expression, name string) bool {
	dot, ok := callee.(*ast.DotExpression)
	if !ok {
		return false
	}

	root, ok := dot.Left.(*ast.Identifier)

	return ok && string(root.Name) == "AKM" && string(dot.Identifier.Name) == name
}

// akmAPIMethodName reports whether callee is `AKM.<method>` for any method
// other than "module" and "command", returning the method name.
func akmAPIMethodName(callee ast.Expression) (string, bool) {
	dot, ok := callee.(*ast.DotExpression)
	if !ok {
		return "", false
	}

	root, ok := dot.Left.(*ast.Identifier)
	if !ok || string(root.Name) != "AKM" {
		return "", false
	}

	name := string(dot.Identifier.Name)
	if name == "module" || name == "command" {
		return "", false
	}

	return name, true
}

func extractFunction(filename string, fn *ast.FunctionLiteral) FunctionDef {
	var def FunctionDef
	def.Location = Location{File: filename}

	if fn.Name != nil {
		def.Name = string(fn.Name.Name)
	}

	def.Params = parameterNames(fn.ParameterList)

	if fn.Body != nil {
		def.Body = fn.Body.List
	}

	return def
}

func parameterNames(params *ast.ParameterList) []string {
	if params == nil {
		return nil
	}

	var names []string

	for _, b := range params.List {
		if name, ok := bindingName(b); ok {
			names = append(names, name)
		}
	}

	return names
}

func bindingName(b *ast.Binding) (string, bool) {
	if b == nil {
		return "", false
	}

	if id, ok := b.Target.(*ast.Identifier); ok {
		return string(id.Name), true
	}

	return "", false
}

// variableBindings extracts the []*ast.Binding list from a var/let/const
// declaration statement, regardless of which concrete statement type the
// parser uses for each.
func variableBindings(stmt ast.Statement) ([]*ast.Binding, bool) {
	switch s := stmt.(type) {
	case *ast.VariableStatement:
		return s.List, true
	case *ast.LexicalDeclaration:
		return s.List, true
	default:
		return nil, false
	}
}

// anonymousFunctionBinding recognises a single-name variable binding
// initialised with an anonymous function or arrow expression and extracts it directly as a FunctionDef
// named after the binding.
func anonymousFunctionBinding(filename string, b *ast.Binding) (FunctionDef, bool) {
	if b == nil || b.Initializer == nil {
		return FunctionDef{}, false
	}

	name, ok := bindingName(b)
	if !ok {
		return FunctionDef{}, false
	}

	switch init := b.Initializer.(type) {
	case *ast.FunctionLiteral:
		def := extractFunction(filename, init)
		def.Name = name

		return def, true
	case *ast.ArrowFunctionLiteral:
		def := FunctionDef{
			Name:     name,
			Params:   parameterNames(init.ParameterList),
			Body:     arrowBodyStatements(init),
			Location: Location{File: filename},
		}

		return def, true
	default:
		return FunctionDef{}, false
	}
}

// arrowBodyStatements normalises an arrow function's body to a statement
// list. A block-bodied arrow (`() => { ... }`) is used as-is; a concise-body
// arrow (`() => expr`) is wrapped in a single synthetic return statement so
// the IR builder's three emitting statement shapes still apply.
func arrowBodyStatements(fn *ast.ArrowFunctionLiteral) []ast.Statement {
	switch body := fn.Body.(type) {
	case *ast.BlockStatement:
		return body.List
	case ast.Expression:
		return []ast.Statement{&ast.ReturnStatement{Argument: body}}
	default:
		return nil
	}
}
