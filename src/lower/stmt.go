package lower

import (
	"vslower/src/ast"
	"vslower/src/llir"
	"vslower/src/registry"
)

// LowerStmt lowers stmt and reports whether it already terminated the
// builder's current basic block (true only for Return, Break, Continue, or
// a Block/IfElse whose every path itself terminates). Callers use this to
// decide whether to still emit a trailing branch or default return,
// mirroring the bool the teacher's gen() returns for exactly the same
// reason (ir/llvm/transform.go: "Set true if the sub-tree generated a
// RETURN statement which terminates the current basic block"), generalized
// here to every terminating construct instead of only Return.
func LowerStmt(s *State, stmt ast.Stmt) (terminated bool, err error) {
	switch n := stmt.(type) {
	case *ast.Block:
		return lowerBlock(s, n)
	case *ast.VarDecl:
		return false, lowerVarDecl(s, n)
	case *ast.VarAssign:
		return false, lowerVarAssign(s, n)
	case *ast.ArrayAssign:
		return false, lowerArrayAssign(s, n)
	case *ast.If:
		return lowerIf(s, n)
	case *ast.IfElse:
		return lowerIfElse(s, n)
	case *ast.While:
		return false, lowerWhile(s, n)
	case *ast.For:
		return false, lowerFor(s, n)
	case *ast.Return:
		return true, lowerReturn(s, n)
	case *ast.Break:
		return true, lowerBreak(s, n)
	case *ast.Continue:
		return true, lowerContinue(s, n)
	case *ast.FunctionParam:
		return false, fatal(n.Pos, registry.ExitError, "internal: FunctionParam must be bound by EmitBody")
	default:
		// Unreachable: every concrete ast.Stmt kind is handled above.
		return false, fatal(ast.Position{}, registry.ExitError, "unhandled statement kind")
	}
}

func lowerBlock(s *State, n *ast.Block) (bool, error) {
	s.Syms.Push()
	defer s.Syms.Pop()

	terminated := false
	for _, stmt := range n.Stmts {
		t, err := LowerStmt(s, stmt)
		if err != nil {
			return terminated, err
		}
		terminated = t
		if terminated {
			// Nothing after a terminator can be lowered into the same
			// block without producing a block with two terminators.
			break
		}
	}
	return terminated, nil
}

func lowerVarDecl(s *State, n *ast.VarDecl) error {
	if _, dup := s.Syms.LookupLocal(n.Name); dup {
		return fatal(n.Pos, registry.ExitError, registry.ErrDuplicateLocal)
	}
	h, err := s.Ctx.DeclLocal(n.Type, n.Name)
	if err != nil {
		return fatal(n.Pos, registry.ExitError, err.Error())
	}
	s.Syms.Insert(n.Name, h)
	return nil
}

func lowerVarAssign(s *State, n *ast.VarAssign) error {
	h, ok := s.Syms.Lookup(n.Name)
	if !ok {
		return errorf(n.Pos, registry.ExitUndeclaredVariable, "%s: %q", registry.ErrVariableUndeclared, n.Name)
	}
	if h.Kind != llir.HandleLocal && h.Kind != llir.HandleGlobalScalar {
		return errorf(n.Pos, registry.ExitError, "%q is not an assignable variable", n.Name)
	}
	v, err := LowerExpr(s, n.Expr)
	if err != nil {
		return err
	}
	if v.Typ != h.TypeName {
		return fatal(n.Pos, registry.ExitAssignMismatch, assignMismatchMessage(h.TypeName, v.Typ))
	}
	if err := s.Ctx.Store(h, v.V); err != nil {
		return fatal(n.Pos, registry.ExitError, err.Error())
	}
	return nil
}

func assignMismatchMessage(want, got string) string {
	if want == registry.TypeInt && got == registry.TypeBool {
		return registry.ErrBoolToInt
	}
	if want == registry.TypeBool && got == registry.TypeInt {
		return registry.ErrIntToBool
	}
	return registry.ErrGenericTypeMismatch
}

func lowerArrayAssign(s *State, n *ast.ArrayAssign) error {
	h, ok := s.Syms.Lookup(n.Name)
	if !ok {
		return errorf(n.Pos, registry.ExitUndeclaredVariable, "%s: %q", registry.ErrVariableUndeclared, n.Name)
	}
	if h.Kind != llir.HandleGlobalArray {
		return errorf(n.Pos, registry.ExitError, "%q is not an array", n.Name)
	}
	idx, err := LowerExpr(s, n.Index)
	if err != nil {
		return err
	}
	if idx.Typ != registry.TypeInt {
		return fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrNotInt)
	}
	v, err := LowerExpr(s, n.Value)
	if err != nil {
		return err
	}
	if v.Typ != h.TypeName {
		return fatal(n.Pos, registry.ExitAssignMismatch, assignMismatchMessage(h.TypeName, v.Typ))
	}
	if err := s.Ctx.ArrayStore(h, idx.V, v.V); err != nil {
		return fatal(n.Pos, registry.ExitError, err.Error())
	}
	return nil
}

// lowerIf implements spec.md §4.3's If rule: blocks ifstart/iftrue/end,
// unconditional branch to ifstart, condition evaluated there, conditional
// branch to iftrue/end. end is always reachable via the false edge, so a
// bare If (no else) never itself terminates the enclosing block.
func lowerIf(s *State, n *ast.If) (bool, error) {
	ifstart := s.Ctx.NewBlock(s.fn, llir.BlockIfStart)
	iftrue := s.Ctx.NewBlock(s.fn, llir.BlockIfTrue)
	end := s.Ctx.NewBlock(s.fn, llir.BlockEnd)

	s.Ctx.Br(ifstart)
	s.Ctx.SetInsertPoint(ifstart)
	cond, err := LowerExpr(s, n.Cond)
	if err != nil {
		return false, err
	}
	if cond.Typ != registry.TypeBool {
		return false, fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrInvalidBoolOp)
	}
	s.Ctx.CondBr(cond.V, iftrue, end)

	s.Ctx.SetInsertPoint(iftrue)
	terminated, err := LowerStmt(s, n.Then)
	if err != nil {
		return false, err
	}
	if !terminated {
		s.Ctx.Br(end)
	}

	s.Ctx.SetInsertPoint(end)
	return false, nil
}

// lowerIfElse additionally terminates the enclosing block when both arms
// do, in which case end would otherwise be an unreachable block with no
// predecessors; it is simply never created.
func lowerIfElse(s *State, n *ast.IfElse) (bool, error) {
	ifstart := s.Ctx.NewBlock(s.fn, llir.BlockIfStart)
	iftrue := s.Ctx.NewBlock(s.fn, llir.BlockIfTrue)
	iffalse := s.Ctx.NewBlock(s.fn, llir.BlockIfFalse)

	s.Ctx.Br(ifstart)
	s.Ctx.SetInsertPoint(ifstart)
	cond, err := LowerExpr(s, n.Cond)
	if err != nil {
		return false, err
	}
	if cond.Typ != registry.TypeBool {
		return false, fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrInvalidBoolOp)
	}
	s.Ctx.CondBr(cond.V, iftrue, iffalse)

	s.Ctx.SetInsertPoint(iftrue)
	thenTerm, err := LowerStmt(s, n.Then)
	if err != nil {
		return false, err
	}
	// An arm may itself emit control flow, so its fall-through branch to
	// end goes from wherever lowering the arm left the builder.
	thenTail := s.Ctx.CurrentBlock()

	s.Ctx.SetInsertPoint(iffalse)
	elseTerm, err := LowerStmt(s, n.Else)
	if err != nil {
		return false, err
	}
	elseTail := s.Ctx.CurrentBlock()

	if thenTerm && elseTerm {
		return true, nil
	}

	end := s.Ctx.NewBlock(s.fn, llir.BlockEnd)
	if !thenTerm {
		s.Ctx.SetInsertPoint(thenTail)
		s.Ctx.Br(end)
	}
	if !elseTerm {
		s.Ctx.SetInsertPoint(elseTail)
		s.Ctx.Br(end)
	}
	s.Ctx.SetInsertPoint(end)
	return false, nil
}

// lowerWhile implements spec.md §4.3's While rule with loop/body/end
// blocks and continue=loop, break=end target stacks, grounded on the
// teacher's genWhile.
func lowerWhile(s *State, n *ast.While) error {
	loop := s.Ctx.NewBlock(s.fn, llir.BlockLoop)
	body := s.Ctx.NewBlock(s.fn, llir.BlockBody)
	end := s.Ctx.NewBlock(s.fn, llir.BlockEnd)

	s.continueTargets.Push(loop)
	s.breakTargets.Push(end)
	defer func() {
		s.continueTargets.Pop()
		s.breakTargets.Pop()
	}()

	s.Ctx.Br(loop)
	s.Ctx.SetInsertPoint(loop)
	cond, err := LowerExpr(s, n.Cond)
	if err != nil {
		return err
	}
	if cond.Typ != registry.TypeBool {
		return fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrInvalidBoolOp)
	}
	s.Ctx.CondBr(cond.V, body, end)

	s.Ctx.SetInsertPoint(body)
	terminated, err := LowerStmt(s, n.Body)
	if err != nil {
		return err
	}
	if !terminated {
		s.Ctx.Br(loop)
	}

	s.Ctx.SetInsertPoint(end)
	return nil
}

// lowerFor implements spec.md §4.3's For rule with loop/body/next/end
// blocks and continue=next, break=end target stacks.
func lowerFor(s *State, n *ast.For) error {
	for _, a := range n.Init {
		if err := lowerVarAssign(s, a); err != nil {
			return err
		}
	}

	loop := s.Ctx.NewBlock(s.fn, llir.BlockLoop)
	body := s.Ctx.NewBlock(s.fn, llir.BlockBody)
	next := s.Ctx.NewBlock(s.fn, llir.BlockNext)
	end := s.Ctx.NewBlock(s.fn, llir.BlockEnd)

	s.continueTargets.Push(next)
	s.breakTargets.Push(end)
	defer func() {
		s.continueTargets.Pop()
		s.breakTargets.Pop()
	}()

	s.Ctx.Br(loop)
	s.Ctx.SetInsertPoint(loop)
	cond, err := LowerExpr(s, n.Cond)
	if err != nil {
		return err
	}
	if cond.Typ != registry.TypeBool {
		return fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrInvalidBoolOp)
	}
	s.Ctx.CondBr(cond.V, body, end)

	s.Ctx.SetInsertPoint(body)
	terminated, err := LowerStmt(s, n.Body)
	if err != nil {
		return err
	}
	if !terminated {
		s.Ctx.Br(next)
	}

	s.Ctx.SetInsertPoint(next)
	for _, a := range n.Update {
		if err := lowerVarAssign(s, a); err != nil {
			return err
		}
	}
	s.Ctx.Br(loop)

	s.Ctx.SetInsertPoint(end)
	return nil
}

func lowerReturn(s *State, n *ast.Return) error {
	if n.Expr == nil {
		return s.Ctx.DefaultReturn(registry.TypeVoid)
	}
	v, err := LowerExpr(s, n.Expr)
	if err != nil {
		return err
	}
	if v.Typ != s.returnType {
		return fatal(n.Pos, registry.ExitComputeMismatch, registry.ErrReturnMismatch)
	}
	s.Ctx.Ret(v.V)
	return nil
}

func lowerBreak(s *State, n *ast.Break) error {
	if s.breakTargets.Empty() {
		return fatal(n.Pos, registry.ExitError, registry.ErrEmptyTargetStack)
	}
	s.Ctx.Br(s.breakTargets.Peek())
	return nil
}

func lowerContinue(s *State, n *ast.Continue) error {
	if s.continueTargets.Empty() {
		return fatal(n.Pos, registry.ExitError, registry.ErrEmptyTargetStack)
	}
	s.Ctx.Br(s.continueTargets.Peek())
	return nil
}
