package llir

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"vslower/src/registry"
)

// ExternFn declares an externally linked function prototype with no body,
// grounded on decaf's createExternFunction and the teacher's genFuncHeader
// used on Extern nodes.
func (c *Context) ExternFn(ret string, name string, paramTypes []string) (Handle, error) {
	return c.declareFn(ret, name, paramTypes)
}

// FnHeader declares a user function's signature without its body, so
// forward references from other top-level functions resolve before any
// body is lowered (spec.md §4.2's two-phase rule). spec.md's prose
// describes this (following decaf's createFunctionHeader) as declaring a
// function with no parameters on the IR type; that is only possible because
// decaf's LLVM C++ API lets an Argument attach itself to a Function after
// the fact. tinygo.org/x/go-llvm's C-API-backed bindings have no equivalent
// hook, so — matching the teacher's own genFuncHeader, which gathers the
// real parameter types up front via llvm.FunctionType(ret, atyp, false) — a
// FnHeader's IR function type carries its real parameter types from the
// start.
func (c *Context) FnHeader(ret string, name string, paramTypes []string) (Handle, error) {
	return c.declareFn(ret, name, paramTypes)
}

func (c *Context) declareFn(ret string, name string, paramTypes []string) (Handle, error) {
	retT, err := c.TypeOf(ret)
	if err != nil {
		return Handle{}, err
	}
	params := make([]llvm.Type, len(paramTypes))
	for i, p := range paramTypes {
		t, err := c.TypeOf(p)
		if err != nil {
			return Handle{}, err
		}
		params[i] = t
	}
	fnTyp := llvm.FunctionType(retT, params, false)
	fn := llvm.AddFunction(c.Module, name, fnTyp)
	return Handle{
		Kind:       HandleFunction,
		Ptr:        fn,
		ParamTypes: paramTypes,
		ReturnType: ret,
		Size:       registry.Scalar,
	}, nil
}

// Params returns the SSA values bound to fn's formal parameters, in order,
// for EmitBody to store into freshly allocated locals via StoreParam.
func (c *Context) Params(fn Handle) []llvm.Value {
	return fn.Ptr.Params()
}

// Call emits a call to fn with args already coerced (bool->int widening is
// decided by the caller, which alone knows each argument's static type; see
// ZeroExtend). Only arity is checked here, grounded on decaf's callFunction
// arg-count guard.
func (c *Context) Call(fn Handle, args []llvm.Value) (llvm.Value, error) {
	if len(args) != len(fn.ParamTypes) {
		return llvm.Value{}, fmt.Errorf("%s: %s expects %d argument(s), got %d",
			registry.ErrArityMismatch, fn.Ptr.Name(), len(fn.ParamTypes), len(args))
	}
	return c.Builder.CreateCall(fn.Ptr, args, ""), nil
}
