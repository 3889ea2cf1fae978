package lower

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"vslower/src/ast"
	"vslower/src/llir"
	"vslower/src/registry"
)

// value pairs an emitted SSA value with its source-level static type, the
// minimum bookkeeping the type-discipline rules in spec.md §4.5 need at
// every expression boundary.
type value struct {
	V   llvm.Value
	Typ string
}

// LowerExpr lowers e and returns its SSA value together with its static
// type, grounded on decaf's per-class ExprAst::generateCode() bodies
// (original_source/answer/expr-asts.cpp) and the teacher's genExpression.
func LowerExpr(s *State, e ast.Expr) (value, error) {
	switch n := e.(type) {
	case *ast.IntConst:
		return value{s.Ctx.IntConst(n.Value), registry.TypeInt}, nil
	case *ast.BoolConst:
		return value{s.Ctx.BoolConst(n.Value), registry.TypeBool}, nil
	case *ast.StringConst:
		return value{s.Ctx.GlobalString(n.Value), registry.TypeString}, nil
	case *ast.VarRef:
		return lowerVarRef(s, n)
	case *ast.ArrayRef:
		return lowerArrayRef(s, n)
	case *ast.Call:
		return lowerCall(s, n)
	case *ast.Binary:
		return lowerBinary(s, n)
	case *ast.Unary:
		return lowerUnary(s, n)
	default:
		// Unreachable: every concrete ast.Expr kind is handled above.
		return value{}, fatal(ast.Position{}, registry.ExitError, fmt.Sprintf("unhandled expression kind %T", e))
	}
}

func lowerVarRef(s *State, n *ast.VarRef) (value, error) {
	h, ok := s.Syms.Lookup(n.Name)
	if !ok {
		return value{}, errorf(n.Pos, registry.ExitUndeclaredVariable, "%s: %q", registry.ErrVariableUndeclared, n.Name)
	}
	if h.Kind == llir.HandleFunction {
		return value{}, errorf(n.Pos, registry.ExitError, "%q is a function, not a variable", n.Name)
	}
	v, err := s.Ctx.Load(h)
	if err != nil {
		return value{}, fatal(n.Pos, registry.ExitError, err.Error())
	}
	return value{v, h.TypeName}, nil
}

func lowerArrayRef(s *State, n *ast.ArrayRef) (value, error) {
	h, ok := s.Syms.Lookup(n.Name)
	if !ok {
		return value{}, errorf(n.Pos, registry.ExitUndeclaredVariable, "%s: %q", registry.ErrVariableUndeclared, n.Name)
	}
	if h.Kind != llir.HandleGlobalArray {
		return value{}, errorf(n.Pos, registry.ExitError, "%q is not an array", n.Name)
	}
	idx, err := LowerExpr(s, n.Index)
	if err != nil {
		return value{}, err
	}
	if idx.Typ != registry.TypeInt {
		return value{}, fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrNotInt)
	}
	v, err := s.Ctx.ArrayLoad(h, idx.V)
	if err != nil {
		return value{}, fatal(n.Pos, registry.ExitError, err.Error())
	}
	return value{v, h.TypeName}, nil
}

func lowerCall(s *State, n *ast.Call) (value, error) {
	h, ok := s.Syms.Lookup(n.Callee)
	if !ok {
		return value{}, errorf(n.Pos, registry.ExitUndeclaredVariable, "%s: %q", registry.ErrFunctionUndeclared, n.Callee)
	}
	if h.Kind != llir.HandleFunction {
		return value{}, errorf(n.Pos, registry.ExitError, "%q is not a function", n.Callee)
	}
	if h.ReturnType == registry.TypeVoid {
		return value{}, fatal(n.Pos, registry.ExitError, registry.ErrFunctionIsVoid)
	}
	if len(n.Args) != len(h.ParamTypes) {
		return value{}, errorf(n.Pos, registry.ExitError, "%s: %q expects %d argument(s), got %d",
			registry.ErrArityMismatch, n.Callee, len(h.ParamTypes), len(n.Args))
	}

	args := make([]llvm.Value, len(n.Args))
	for i, a := range n.Args {
		av, err := LowerExpr(s, a)
		if err != nil {
			return value{}, err
		}
		want := h.ParamTypes[i]
		switch {
		case av.Typ == want:
			args[i] = av.V
		case av.Typ == registry.TypeBool && want == registry.TypeInt:
			// Implicit bool->int widening at the call site only (spec.md §4.5).
			args[i] = s.Ctx.ZeroExtend(av.V)
		default:
			return value{}, errorf(n.Pos, registry.ExitError, "%s: argument %d of %q", registry.ErrGenericTypeMismatch, i+1, n.Callee)
		}
	}

	v, err := s.Ctx.Call(h, args)
	if err != nil {
		return value{}, fatal(n.Pos, registry.ExitError, err.Error())
	}
	return value{v, h.ReturnType}, nil
}

func lowerBinary(s *State, n *ast.Binary) (value, error) {
	if n.Op == registry.OpOr || n.Op == registry.OpAnd {
		return lowerShortCircuit(s, n)
	}

	l, err := LowerExpr(s, n.Left)
	if err != nil {
		return value{}, err
	}
	r, err := LowerExpr(s, n.Right)
	if err != nil {
		return value{}, err
	}

	switch n.Op {
	case registry.OpPlus, registry.OpMinus, registry.OpMult, registry.OpDiv, registry.OpMod,
		registry.OpLeftShift, registry.OpRightShift:
		if l.Typ != registry.TypeInt || r.Typ != registry.TypeInt {
			return value{}, fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrInvalidIntOp)
		}
		v, err := s.Ctx.BinaryOp(n.Op, l.V, r.V)
		return value{v, registry.TypeInt}, wrap(n.Pos, err)
	case registry.OpLt, registry.OpLeq, registry.OpGt, registry.OpGeq:
		if l.Typ != registry.TypeInt || r.Typ != registry.TypeInt {
			return value{}, fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrInvalidIntOp)
		}
		v, err := s.Ctx.BinaryOp(n.Op, l.V, r.V)
		return value{v, registry.TypeBool}, wrap(n.Pos, err)
	case registry.OpEq, registry.OpNeq:
		if l.Typ != r.Typ {
			return value{}, fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrBinaryOpTypeMismatch)
		}
		v, err := s.Ctx.BinaryOp(n.Op, l.V, r.V)
		return value{v, registry.TypeBool}, wrap(n.Pos, err)
	default:
		return value{}, errorf(n.Pos, registry.ExitError, "%s: %q", registry.ErrInvalidOperator, n.Op)
	}
}

// lowerShortCircuit handles `||` and `&&`, whose right operand must not be
// evaluated at all on the short-circuit path (spec.md §4.5's explicit
// "side effects in the right operand are elided" rule), so the right
// operand's lowering is deferred into a closure the facade only invokes
// from inside the noskct block.
func lowerShortCircuit(s *State, n *ast.Binary) (value, error) {
	l, err := LowerExpr(s, n.Left)
	if err != nil {
		return value{}, err
	}
	if l.Typ != registry.TypeBool {
		return value{}, fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrInvalidBoolOp)
	}

	evalRight := func() (llvm.Value, error) {
		r, err := LowerExpr(s, n.Right)
		if err != nil {
			return llvm.Value{}, err
		}
		if r.Typ != registry.TypeBool {
			return llvm.Value{}, fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrInvalidBoolOp)
		}
		return r.V, nil
	}

	var v llvm.Value
	if n.Op == registry.OpOr {
		v, err = s.Ctx.ShortCircuitOr(s.fn, l.V, evalRight)
	} else {
		v, err = s.Ctx.ShortCircuitAnd(s.fn, l.V, evalRight)
	}
	if err != nil {
		return value{}, err
	}
	return value{v, registry.TypeBool}, nil
}

func lowerUnary(s *State, n *ast.Unary) (value, error) {
	operand, err := LowerExpr(s, n.Operand)
	if err != nil {
		return value{}, err
	}
	switch n.Op {
	case registry.OpNot:
		if operand.Typ != registry.TypeBool {
			return value{}, fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrInvalidBoolOp)
		}
		v, err := s.Ctx.UnaryOp(n.Op, operand.V)
		return value{v, registry.TypeBool}, wrap(n.Pos, err)
	case registry.OpNegate:
		if operand.Typ != registry.TypeInt {
			return value{}, fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrNotInt)
		}
		v, err := s.Ctx.UnaryOp(n.Op, operand.V)
		return value{v, registry.TypeInt}, wrap(n.Pos, err)
	default:
		return value{}, errorf(n.Pos, registry.ExitError, "%s: %q", registry.ErrInvalidOperator, n.Op)
	}
}

func wrap(pos ast.Position, err error) error {
	if err == nil {
		return nil
	}
	return fatal(pos, registry.ExitError, err.Error())
}
