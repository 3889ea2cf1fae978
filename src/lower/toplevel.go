package lower

import (
	"tinygo.org/x/go-llvm"

	"vslower/src/ast"
	"vslower/src/registry"
)

// LowerExtern declares an extern prototype and binds it in the extern
// scope (frame 0), grounded on decaf's createExternFunction.
func LowerExtern(s *State, n *ast.Extern) error {
	if _, dup := s.Syms.LookupExtern(n.Name); dup {
		return fatal(n.Pos, registry.ExitError, registry.ErrDuplicateGlobal)
	}
	if _, dup := s.Syms.LookupFunction(n.Name); dup {
		return fatal(n.Pos, registry.ExitError, registry.ErrDuplicateGlobal)
	}
	h, err := s.Ctx.ExternFn(n.ReturnType, n.Name, n.ParamTypes)
	if err != nil {
		return fatal(n.Pos, registry.ExitError, err.Error())
	}
	s.Syms.InsertExtern(n.Name, h)
	return nil
}

// LowerFieldVarDecl emits a zero-initialized top-level global, scalar or
// array depending on Size, grounded on spec.md §4.3's FieldVarDecl rule and
// decaf's createGlobalScalar/createArray.
func LowerFieldVarDecl(s *State, n *ast.FieldVarDecl) error {
	if _, dup := s.Syms.LookupExtern(n.Name); dup {
		return fatal(n.Pos, registry.ExitError, registry.ErrDuplicateGlobal)
	}
	if _, dup := s.Syms.LookupLocal(n.Name); dup {
		return fatal(n.Pos, registry.ExitError, registry.ErrDuplicateGlobal)
	}

	if n.Size == ast.Scalar {
		zero, err := zeroValue(s, n.Pos, n.Type)
		if err != nil {
			return err
		}
		h, err := s.Ctx.GlobalScalar(n.Type, n.Name, zero)
		if err != nil {
			return fatal(n.Pos, registry.ExitError, err.Error())
		}
		s.Syms.Insert(n.Name, h)
		return nil
	}

	if n.Size < 1 {
		return fatal(n.Pos, registry.ExitError, registry.ErrIndexTooLow)
	}
	h, err := s.Ctx.GlobalArray(n.Type, n.Name, n.Size)
	if err != nil {
		return fatal(n.Pos, registry.ExitError, err.Error())
	}
	s.Syms.Insert(n.Name, h)
	return nil
}

// LowerFieldVarDef emits a top-level global initialized to the value of a
// constant expression. Unlike decaf, which evaluates the initializer while
// the parser is still constructing the AST, this core defers evaluation
// into the lowering phase (spec.md §9's own recommendation: "a
// reimplementation should defer evaluation into the lowering phase for
// uniformity"), which is why ast.FieldVarDef carries an Expr rather than a
// pre-computed literal.
func LowerFieldVarDef(s *State, n *ast.FieldVarDef) error {
	if _, dup := s.Syms.LookupExtern(n.Name); dup {
		return fatal(n.Pos, registry.ExitError, registry.ErrDuplicateGlobal)
	}
	if _, dup := s.Syms.LookupLocal(n.Name); dup {
		return fatal(n.Pos, registry.ExitError, registry.ErrDuplicateGlobal)
	}

	init, err := LowerExpr(s, n.Init)
	if err != nil {
		return err
	}
	if init.Typ != n.Type {
		return fatal(n.Pos, registry.ExitAssignMismatch, assignMismatchMessage(n.Type, init.Typ))
	}
	h, err := s.Ctx.GlobalScalar(n.Type, n.Name, init.V)
	if err != nil {
		return fatal(n.Pos, registry.ExitError, err.Error())
	}
	s.Syms.Insert(n.Name, h)
	return nil
}

// zeroValue builds the zero-initializer for a scalar FieldVarDecl: 0 for
// int, false for bool, and a null i8* for string (spec.md §4.3: "SCALAR
// emits a zero-initialized global (0 for int, false for bool)" extended
// here to string, the one scalar type the spec's literal rule omits).
func zeroValue(s *State, pos ast.Position, typ string) (llvm.Value, error) {
	switch typ {
	case registry.TypeInt:
		return s.Ctx.IntConst(0), nil
	case registry.TypeBool:
		return s.Ctx.BoolConst(false), nil
	case registry.TypeString:
		t, err := s.Ctx.TypeOf(registry.TypeString)
		if err != nil {
			return llvm.Value{}, fatal(pos, registry.ExitError, err.Error())
		}
		return llvm.ConstNull(t), nil
	default:
		return llvm.Value{}, fatal(pos, registry.ExitError, registry.ErrInvalidType)
	}
}
