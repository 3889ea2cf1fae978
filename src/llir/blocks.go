package llir

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"vslower/src/registry"
)

// Named basic-block roles, adopted from decaf's BRANCH_* constants
// (original_source/answer/value-constants.h) since spec.md §4.1 itself
// describes blocks by these roles and the teacher's own blocks (created
// with AddBasicBlock(fun, "")) are anonymous and hard to read in a dump.
const (
	BlockEntry   = "entry"
	BlockIfStart = "ifstart"
	BlockIfTrue  = "iftrue"
	BlockIfFalse = "iffalse"
	BlockEnd     = "end"
	BlockLoop    = "loop"
	BlockBody    = "body"
	BlockNext    = "next"
	BlockNoSkct  = "noskct"
	BlockSkctEnd = "skctend"
)

// NewBlock appends a basic block named role to fn.
func (c *Context) NewBlock(fn llvm.Value, role string) llvm.BasicBlock {
	return llvm.AddBasicBlock(fn, role)
}

// SetInsertPoint moves the builder's insertion point to the end of bb.
func (c *Context) SetInsertPoint(bb llvm.BasicBlock) {
	c.Builder.SetInsertPointAtEnd(bb)
}

// CurrentBlock returns the block the builder is currently inserting into.
func (c *Context) CurrentBlock() llvm.BasicBlock {
	return c.Builder.GetInsertBlock()
}

// Br emits an unconditional branch to target.
func (c *Context) Br(target llvm.BasicBlock) {
	c.Builder.CreateBr(target)
}

// CondBr emits a conditional branch on cond (an i1 value).
func (c *Context) CondBr(cond llvm.Value, then, els llvm.BasicBlock) {
	c.Builder.CreateCondBr(cond, then, els)
}

// Ret emits a return of v.
func (c *Context) Ret(v llvm.Value) {
	c.Builder.CreateRet(v)
}

// RetVoid emits a bare return.
func (c *Context) RetVoid() {
	c.Builder.CreateRetVoid()
}

// DefaultReturn emits the implicit return every function falls off the end
// into when control reaches its last basic block without an explicit
// Return statement: zero for int, false for bool, a bare ret for void.
// Grounded on spec.md §4.1's `default_return` table, which lists exactly
// those three and says "else fatal" — a string-returning function that
// falls off the end has no default value in this design and is rejected
// the same as any other unsupported return type.
func (c *Context) DefaultReturn(typ string) error {
	t, err := c.TypeOf(typ)
	if err != nil {
		return err
	}
	switch typ {
	case registry.TypeVoid:
		c.RetVoid()
	case registry.TypeInt, registry.TypeBool:
		c.Ret(llvm.ConstInt(t, 0, false))
	default:
		return fmt.Errorf("%s: %q", registry.ErrInvalidType, typ)
	}
	return nil
}
