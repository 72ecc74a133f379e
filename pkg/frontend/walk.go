package frontend

import (
	"fmt"

	"github.com/dop251/goja/ast"

	"github.com/akmc/akmc/pkg/diag"
	"github.com/akmc/akmc/pkg/isa"
)

// collectAPICalls walks every extracted function body and records each
// `AKM.<method>(...)` call site, emitting a
// warning diagnostic for any method not present in isa.APITable.
func collectAPICalls(filename string, functions []FunctionDef, diags []diag.Diagnostic,
) ([]APICallSite, []diag.Diagnostic) {
	var sites []APICallSite

	for _, fn := range functions {
		for _, stmt := range fn.Body {
			sites, diags = walkStatementForAPICalls(filename, stmt, sites, diags)
		}
	}

	return sites, diags
}

func walkStatementForAPICalls(filename string, stmt ast.Statement, sites []APICallSite, diags []diag.Diagnostic,
) ([]APICallSite, []diag.Diagnostic) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return walkExpressionForAPICalls(filename, s.Expression, sites, diags)
	case *ast.ReturnStatement:
		if s.Argument != nil {
			return walkExpressionForAPICalls(filename, s.Argument, sites, diags)
		}
	case *ast.BlockStatement:
		for _, inner := range s.List {
			sites, diags = walkStatementForAPICalls(filename, inner, sites, diags)
		}
	case *ast.IfStatement:
		if s.Consequent != nil {
			sites, diags = walkStatementForAPICalls(filename, s.Consequent, sites, diags)
		}

		if s.Alternate != nil {
			sites, diags = walkStatementForAPICalls(filename, s.Alternate, sites, diags)
		}
	case *ast.ForStatement:
		if s.Body != nil {
			sites, diags = walkStatementForAPICalls(filename, s.Body, sites, diags)
		}
	case *ast.WhileStatement:
		if s.Body != nil {
			sites, diags = walkStatementForAPICalls(filename, s.Body, sites, diags)
		}
	case *ast.VariableStatement:
		for _, b := range s.List {
			if b != nil && b.Initializer != nil {
				sites, diags = walkExpressionForAPICalls(filename, b.Initializer, sites, diags)
			}
		}
	case *ast.LexicalDeclaration:
		for _, b := range s.List {
			if b != nil && b.Initializer != nil {
				sites, diags = walkExpressionForAPICalls(filename, b.Initializer, sites, diags)
			}
		}
	}

	return sites, diags
}

func walkExpressionForAPICalls(filename string, expr ast.Expression, sites []APICallSite, diags []diag.Diagnostic,
) ([]APICallSite, []diag.Diagnostic) {
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		return sites, diags
	}

	if method, ok := akmAPIMethodName(call.Callee); ok {
		site := APICallSite{
			Method:   method,
			Argc:     len(call.ArgumentList),
			Location: Location{File: filename},
		}
		sites = append(sites, site)

		if _, known := isa.LookupAPI(method); !known {
			diags = append(diags, diag.Diagnostic{
				Kind:    diag.KindWarning,
				File:    filename,
				Message: fmt.Sprintf("unknown API method %q", method),
			})
		}
	}

	for _, arg := range call.ArgumentList {
		sites, diags = walkExpressionForAPICalls(filename, arg, sites, diags)
	}

	return sites, diags
}
