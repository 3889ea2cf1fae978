package llir

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"vslower/src/registry"
)

// BinaryOp emits the instruction for a non-short-circuit binary operator.
// Operand-type compatibility is the lowering engine's job (it has the AST
// position needed for a good diagnostic and the full §4.5 type table); this
// facade assumes op is one of registry's spellings and that l, r already
// have matching, op-appropriate LLVM types, mirroring decaf's
// computeBinaryExpression, which dispatches purely on operator spelling.
func (c *Context) BinaryOp(op string, l, r llvm.Value) (llvm.Value, error) {
	switch op {
	case registry.OpEq:
		return c.Builder.CreateICmp(llvm.IntEQ, l, r, "eqtmp"), nil
	case registry.OpNeq:
		return c.Builder.CreateICmp(llvm.IntNE, l, r, "neqtmp"), nil
	case registry.OpLt:
		return c.Builder.CreateICmp(llvm.IntSLT, l, r, "lttmp"), nil
	case registry.OpLeq:
		return c.Builder.CreateICmp(llvm.IntSLE, l, r, "leqtmp"), nil
	case registry.OpGt:
		return c.Builder.CreateICmp(llvm.IntSGT, l, r, "gttmp"), nil
	case registry.OpGeq:
		return c.Builder.CreateICmp(llvm.IntSGE, l, r, "geqtmp"), nil
	case registry.OpPlus:
		return c.Builder.CreateAdd(l, r, "addtmp"), nil
	case registry.OpMinus:
		return c.Builder.CreateSub(l, r, "subtmp"), nil
	case registry.OpMult:
		return c.Builder.CreateMul(l, r, "multmp"), nil
	case registry.OpDiv:
		return c.Builder.CreateSDiv(l, r, "divtmp"), nil
	case registry.OpMod:
		return c.Builder.CreateSRem(l, r, "modtmp"), nil
	case registry.OpLeftShift:
		// OpLeftShift holds the "<<" spelling, which decaf's llvm-util.cpp
		// (createBinaryOperation's VALUE_RIGHTSHIFT arm, the source's own
		// swapped name for "<<") emits as an arithmetic shift right, not a
		// left shift. Preserve that spelling->op mapping (spec.md §9: "do
		// not silently fix" the swap) rather than the one the constant's
		// name suggests.
		return c.Builder.CreateAShr(l, r, "rshifttmp"), nil
	case registry.OpRightShift:
		// OpRightShift holds ">>", which decaf emits as a left shift
		// (VALUE_LEFTSHIFT). Same swap, opposite direction.
		return c.Builder.CreateShl(l, r, "lshifttmp"), nil
	default:
		return llvm.Value{}, fmt.Errorf("%s: %q", registry.ErrInvalidOperator, op)
	}
}

// UnaryOp emits the instruction for a unary operator, grounded on decaf's
// computeUnaryExpression.
func (c *Context) UnaryOp(op string, v llvm.Value) (llvm.Value, error) {
	switch op {
	case registry.OpNot:
		return c.Builder.CreateNot(v, "nottmp"), nil
	case registry.OpNegate:
		zero := llvm.ConstInt(c.types[registry.TypeInt], 0, true)
		return c.Builder.CreateSub(zero, v, "negtmp"), nil
	default:
		return llvm.Value{}, fmt.Errorf("%s: %q", registry.ErrInvalidOperator, op)
	}
}

// evalRight evaluates a short-circuited operand. It is supplied by the
// lowering engine, which alone knows how to lower an arbitrary ast.Expr;
// this facade only knows how to wire the resulting value into the
// noskct/skctend diamond.
type evalRight func() (llvm.Value, error)

// ShortCircuitOr lowers `left || right`. If left is true, right is never
// evaluated. Grounded verbatim on decaf's computeBinaryExpression VALUE_OR
// branch (original_source/answer/llvm-util.cpp): a noskct block that
// evaluates and ORs in the right operand, a skctend block that PHIs the two
// possible results together, and a conditional branch that skips noskct
// entirely when left alone already decides the result.
func (c *Context) ShortCircuitOr(fn llvm.Value, left llvm.Value, right evalRight) (llvm.Value, error) {
	return c.shortCircuit(fn, left, right, true)
}

// ShortCircuitAnd lowers `left && right`: right is only evaluated when left
// is true. Grounded on decaf's VALUE_AND branch.
func (c *Context) ShortCircuitAnd(fn llvm.Value, left llvm.Value, right evalRight) (llvm.Value, error) {
	return c.shortCircuit(fn, left, right, false)
}

func (c *Context) shortCircuit(fn llvm.Value, left llvm.Value, right evalRight, isOr bool) (llvm.Value, error) {
	entryBlock := c.CurrentBlock()
	noskct := c.NewBlock(fn, BlockNoSkct)
	skctend := c.NewBlock(fn, BlockSkctEnd)

	if isOr {
		// left true -> short circuit to skctend; left false -> evaluate right.
		c.CondBr(left, skctend, noskct)
	} else {
		// left false -> short circuit to skctend; left true -> evaluate right.
		c.CondBr(left, noskct, skctend)
	}

	c.SetInsertPoint(noskct)
	rightVal, err := right()
	if err != nil {
		return llvm.Value{}, err
	}
	var combined llvm.Value
	if isOr {
		combined = c.Builder.CreateOr(left, rightVal, "ortmp")
	} else {
		combined = c.Builder.CreateAnd(left, rightVal, "andtmp")
	}
	// right() may itself have emitted control flow (e.g. a nested
	// short-circuit operator), so the PHI's noskct-side predecessor is
	// whatever block the builder is actually in now, not noskct itself.
	noskctTail := c.CurrentBlock()
	c.Br(skctend)

	c.SetInsertPoint(skctend)
	phi := c.Builder.CreatePHI(c.types[registry.TypeBool], "phival")
	phi.AddIncoming([]llvm.Value{left, combined}, []llvm.BasicBlock{entryBlock, noskctTail})
	return phi, nil
}
