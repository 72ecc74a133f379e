package ir

import (
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"

	"github.com/akmc/akmc/pkg/diag"
	"github.com/akmc/akmc/pkg/frontend"
	"github.com/akmc/akmc/pkg/isa"
)

// Build lowers a frontend.Extraction into a Program. Per function, the body
// is walked in a single pre-order pass; only three statement shapes emit
// IR. Block, if, for and while statements are descended into (so nested
// occurrences of those three shapes are still found) but produce no
// instructions of their own. Any other statement kind (do-while, for-in,
// for-of, switch, try, labelled) is skipped whole: calls, returns and
// declarations nested inside it emit nothing.
func Build(ex *frontend.Extraction) (*Program, []diag.Diagnostic) {
	prog := &Program{
		Module:  moduleDescriptorFrom(ex.Module),
		Strings: NewStringTable(),
	}

	for _, cmd := range ex.Commands {
		if cmd.HandlerResolved {
			prog.Commands = append(prog.Commands, Command{
				Name: cmd.Name, Syntax: cmd.Syntax,
				Description: cmd.Description, Category: cmd.Category,
				Handler: cmd.Handler,
			})
		}
	}

	for _, fd := range ex.Functions {
		fn := Function{
			Name:       fd.Name,
			Parameters: append([]string(nil), fd.Params...),
			IsInit:     fd.IsInit,
			IsExit:     fd.IsExit,
		}

		b := &builder{fn: &fn, strings: prog.Strings}
		for _, stmt := range fd.Body {
			b.lowerStatement(stmt)
		}

		if fn.IsInit {
			injectCommandRegistrations(&fn, prog.Commands, prog.Strings)
		}

		fn.EnsureTerminated()

		prog.Functions = append(prog.Functions, fn)
	}

	return prog, nil
}

func moduleDescriptorFrom(cfg frontend.ModuleConfig) ModuleDescriptor {
	version := cfg.Version
	if !cfg.HasVersion || version == "" {
		version = isa.DefaultVersion
	}

	return ModuleDescriptor{
		Name:         cfg.Name,
		Version:      version,
		Author:       cfg.Author,
		Description:  cfg.Description,
		License:      cfg.License,
		Capabilities: cfg.Capabilities,
		Dependencies: append([]string(nil), cfg.Dependencies...),

		SecurityLevel: cfg.SecurityLevel,
	}
}

// injectCommandRegistrations splices one registration block per command
// immediately before `init`'s first RET, or appends at the end if no RET is present yet (one will be
// added afterward by EnsureTerminated).
func injectCommandRegistrations(fn *Function, commands []Command, strings *StringTable) {
	if len(commands) == 0 {
		return
	}

	var block []Instruction

	for _, cmd := range commands {
		strings.Intern(cmd.Name)
		strings.Intern(cmd.Syntax)
		strings.Intern(cmd.Description)
		strings.Intern(cmd.Category)

		block = append(block,
			Instruction{Op: isa.PUSH_STR, Value: StringLiteral(cmd.Name)},
			Instruction{Op: isa.PUSH_STR, Value: StringLiteral(cmd.Syntax)},
			Instruction{Op: isa.PUSH_STR, Value: StringLiteral(cmd.Description)},
			Instruction{Op: isa.PUSH_STR, Value: StringLiteral(cmd.Category)},
			// Placeholder for the handler offset; pkg/codegen resolves it
			// when it maps command records to their handler's function
			// offset.
			Instruction{Op: isa.PUSH, Value: IntLiteral(0)},
			Instruction{Op: isa.CALL_API, Method: isa.RegisterCommandMethod, Argc: 5},
			Instruction{Op: isa.POP},
		)
	}

	idx := firstRetIndex(fn.Instructions)
	if idx < 0 {
		fn.Instructions = append(fn.Instructions, block...)
		return
	}

	merged := make([]Instruction, 0, len(fn.Instructions)+len(block))
	merged = append(merged, fn.Instructions[:idx]...)
	merged = append(merged, block...)
	merged = append(merged, fn.Instructions[idx:]...)
	fn.Instructions = merged
}

func firstRetIndex(insns []Instruction) int {
	for i, insn := range insns {
		if insn.Op == isa.RET {
			return i
		}
	}

	return -1
}

// builder carries per-function lowering state.
type builder struct {
	fn      *Function
	strings *StringTable
}

func (b *builder) lowerStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		b.lowerExpressionStatement(s.Expression)
	case *ast.ReturnStatement:
		b.lowerReturn(s.Argument)
	case *ast.VariableStatement:
		for _, bind := range s.List {
			b.lowerBinding(bind)
		}
	case *ast.LexicalDeclaration:
		for _, bind := range s.List {
			b.lowerBinding(bind)
		}
	case *ast.BlockStatement:
		for _, inner := range s.List {
			b.lowerStatement(inner)
		}
	case *ast.IfStatement:
		if s.Consequent != nil {
			b.lowerStatement(s.Consequent)
		}

		if s.Alternate != nil {
			b.lowerStatement(s.Alternate)
		}
	case *ast.ForStatement:
		if s.Body != nil {
			b.lowerStatement(s.Body)
		}
	case *ast.WhileStatement:
		if s.Body != nil {
			b.lowerStatement(s.Body)
		}
	default:
		// Other statement kinds are not descended into and emit no IR.
	}
}

func (b *builder) lowerExpressionStatement(expr ast.Expression) {
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		return
	}

	if method, ok := akmMethodName(call.Callee); ok {
		b.lowerAPICall(method, call.ArgumentList)
		return
	}

	if id, ok := call.Callee.(*ast.Identifier); ok {
		// Regular call f(args…): arguments are not evaluated in this minimal
		// lowering.
		b.fn.Emit(Instruction{Op: isa.CALL, Func: string(id.Name), Argc: len(call.ArgumentList)})
	}
}

func (b *builder) lowerAPICall(method string, args []ast.Expression) {
	for _, arg := range args {
		for _, insn := range b.lowerArg(arg) {
			b.fn.Emit(insn)
		}
	}

	b.fn.Emit(Instruction{Op: isa.CALL_API, Method: method, Argc: len(args)})
}

// lowerArg lowers one API-call argument to the instruction sequence that
// pushes its value. A BinaryExpression over two lowerable operands recurses
// into each side and appends the matching binop, rather than folding the
// arithmetic itself, so the optimizer's constant folder gets the
// PUSH;PUSH;BinOp window it expects. Anything outside a string/number
// literal, a bare identifier, or that binary-expression recursion falls
// back to a single PUSH 0.
func (b *builder) lowerArg(expr ast.Expression) []Instruction {
	switch e := expr.(type) {
	case *ast.StringLiteral:
		s := string(e.Value)
		b.strings.Intern(s)

		return []Instruction{{Op: isa.PUSH_STR, Value: StringLiteral(s)}}
	case *ast.NumberLiteral:
		return []Instruction{{Op: isa.PUSH, Value: IntLiteral(numberValue(e.Value))}}
	case *ast.Identifier:
		return []Instruction{{Op: isa.LOAD_LOCAL, Name: string(e.Name)}}
	case *ast.BinaryExpression:
		if op, ok := binaryOpcode(e.Operator); ok {
			left := b.lowerArg(e.Left)
			right := b.lowerArg(e.Right)

			out := make([]Instruction, 0, len(left)+len(right)+1)
			out = append(out, left...)
			out = append(out, right...)
			out = append(out, Instruction{Op: op})

			return out
		}

		return []Instruction{{Op: isa.PUSH, Value: IntLiteral(0)}}
	default:
		return []Instruction{{Op: isa.PUSH, Value: IntLiteral(0)}}
	}
}

func (b *builder) lowerReturn(expr ast.Expression) {
	if expr == nil {
		b.fn.Emit(Instruction{Op: isa.RET})
		return
	}

	for _, insn := range b.lowerReturnValue(expr) {
		b.fn.Emit(insn)
	}

	b.fn.Emit(Instruction{Op: isa.RET})
}

// lowerReturnValue lowers a `return <expr>` operand to the instruction
// sequence that pushes its value. A BinaryExpression over two lowerable
// operands recurses into each side and appends the matching binop rather
// than folding the arithmetic itself, e.g. `return 2 + 3;` lowers to
// PUSH 2; PUSH 3; ADD, leaving the PUSH;PUSH;BinOp window for the
// optimizer's constant folder to collapse into PUSH 5 when enabled.
// Anything outside evalReturnLiteral's restricted grammar and this
// binary-expression recursion falls back to a single PUSH 0.
func (b *builder) lowerReturnValue(expr ast.Expression) []Instruction {
	if bin, ok := expr.(*ast.BinaryExpression); ok {
		if op, ok := binaryOpcode(bin.Operator); ok {
			left := b.lowerReturnValue(bin.Left)
			right := b.lowerReturnValue(bin.Right)

			out := make([]Instruction, 0, len(left)+len(right)+1)
			out = append(out, left...)
			out = append(out, right...)
			out = append(out, Instruction{Op: op})

			return out
		}
	}

	lit, ok := evalReturnLiteral(expr)
	if !ok {
		return []Instruction{{Op: isa.PUSH, Value: IntLiteral(0)}}
	}

	if lit.Kind == LitString {
		b.strings.Intern(lit.Str)

		return []Instruction{{Op: isa.PUSH_STR, Value: lit}}
	}

	return []Instruction{{Op: isa.PUSH, Value: lit}}
}

func (b *builder) lowerBinding(bind *ast.Binding) {
	if bind == nil {
		return
	}

	id, ok := bind.Target.(*ast.Identifier)
	if !ok {
		return
	}

	name := string(id.Name)
	b.fn.AddLocal(name)

	if bind.Initializer == nil {
		return
	}

	lit, ok := evalReturnLiteral(bind.Initializer)
	if !ok {
		lit = IntLiteral(0)
	}

	if lit.Kind == LitString {
		b.strings.Intern(lit.Str)
	}

	b.fn.Emit(Instruction{Op: isa.STORE_LOCAL, Name: name, Value: lit})
}

// evalReturnLiteral evaluates an expression as a literal for `return <expr>`
// and variable-initializer lowering.
// Only string/number literals and numeric negation are recognised; anything
// else falls back to PUSH 0 at the call site.
func evalReturnLiteral(expr ast.Expression) (Literal, bool) {
	switch e := expr.(type) {
	case *ast.StringLiteral:
		return StringLiteral(string(e.Value)), true
	case *ast.NumberLiteral:
		return IntLiteral(numberValue(e.Value)), true
	case *ast.UnaryExpression:
		if e.Operator == token.Minus {
			if inner, ok := evalReturnLiteral(e.Operand); ok && inner.Kind == LitInt {
				return IntLiteral(-inner.Int), true
			}
		}

		return Literal{}, false
	case *ast.BooleanLiteral:
		if e.Value {
			return IntLiteral(1), true
		}

		return IntLiteral(0), true
	default:
		return Literal{}, false
	}
}

// numberValue truncates a number literal's parsed value (an integer or a
// float64) to the 32-bit immediate an IR PUSH carries.
func numberValue(v interface{}) int32 {
	switch n := v.(type) {
	case float64:
		return int32(n)
	case int64:
		return int32(n)
	case int:
		return int32(n)
	default:
		return 0
	}
}

// binaryOpcode maps a binary operator token to the stack-machine opcode
// that implements it, for the arithmetic subset lowerReturnValue and
// lowerArg recurse over. Comparison, logical, and assignment operators
// aren't part of the restricted expression grammar this compiler lowers
// and report ok=false.
func binaryOpcode(op token.Token) (isa.Opcode, bool) {
	switch op {
	case token.Plus:
		return isa.ADD, true
	case token.Minus:
		return isa.SUB, true
	case token.Multiply:
		return isa.MUL, true
	case token.Slash:
		return isa.DIV, true
	case token.Remainder:
		return isa.MOD, true
	case token.And:
		return isa.AND, true
	case token.Or:
		return isa.OR, true
	case token.ExclusiveOr:
		return isa.XOR, true
	case token.ShiftLeft:
		return isa.SHL, true
	case token.ShiftRight:
		return isa.SHR, true
	default:
		return 0, false
	}
}

// akmMethodName reports whether callee is `AKM.<method>` for any method
// other than "module"/"command", mirroring pkg/frontend's recognizer: a
// string match on the outermost identifier of the callee is sufficient
// when reusing an external parser.
func akmMethodName(callee ast.Expression) (string, bool) {
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
