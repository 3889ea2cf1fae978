package llir

import (
	"tinygo.org/x/go-llvm"

	"vslower/src/registry"
)

// stringLiteralPrefix names every global produced for a string constant,
// mirroring the teacher's stringPrefix convention (ir/llvm/transform.go).
const stringLiteralPrefix = "L_str"

// IntConst builds a signed 32-bit integer constant.
func (c *Context) IntConst(v int32) llvm.Value {
	return llvm.ConstInt(c.types[registry.TypeInt], uint64(uint32(v)), true)
}

// BoolConst builds an i1 constant.
func (c *Context) BoolConst(v bool) llvm.Value {
	n := uint64(0)
	if v {
		n = 1
	}
	return llvm.ConstInt(c.types[registry.TypeBool], n, false)
}

// GlobalString interns value as a module-level string literal and returns
// an i8* pointing at its first byte, grounded on decaf's createString
// (CreateGlobalString + a constant GEP to decay the array to a pointer) and
// the teacher's genPrint use of CreateGlobalStringPtr, which performs the
// same decay in one call via the Go bindings.
func (c *Context) GlobalString(value string) llvm.Value {
	return c.Builder.CreateGlobalStringPtr(value, stringLiteralPrefix)
}

// ZeroExtend widens an i1 value to i32. Called by the lowering engine at
// call sites where a bool-typed argument is passed to an int-typed
// parameter (spec.md §4.5, decaf's convertBoolToInt).
func (c *Context) ZeroExtend(v llvm.Value) llvm.Value {
	return c.Builder.CreateZExt(v, c.types[registry.TypeInt], "zexttmp")
}
