package llir

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"vslower/src/registry"
)

// DeclLocal allocates a stack slot for a local variable of the given type
// in the builder's current block, grounded on the teacher's genDeclaration
// (b.CreateAlloca(typ, name)). Scope-level duplicate checks and symbol-table
// insertion are the lowering engine's responsibility (package symtab), not
// this facade's: the facade only knows how to build IR, not how names are
// bound to it.
func (c *Context) DeclLocal(typ, name string) (Handle, error) {
	t, err := c.TypeOf(typ)
	if err != nil {
		return Handle{}, err
	}
	alloc := c.Builder.CreateAlloca(t, name)
	return Handle{Kind: HandleLocal, Ptr: alloc, Type: t, TypeName: typ, Size: registry.Scalar}, nil
}

// StoreParam allocates a stack slot for an incoming function parameter and
// stores the parameter's SSA value into it, so the rest of the body can
// treat it exactly like any other local (grounded on decaf's
// storeParameter and the teacher's parameter-allocation loop in
// genFuncBody).
func (c *Context) StoreParam(typ string, arg llvm.Value, name string) (Handle, error) {
	h, err := c.DeclLocal(typ, name)
	if err != nil {
		return Handle{}, err
	}
	c.Builder.CreateStore(arg, h.Ptr)
	return h, nil
}

// GlobalScalar declares a module-level scalar variable initialized to init,
// grounded on decaf's createGlobalScalar.
func (c *Context) GlobalScalar(typ, name string, init llvm.Value) (Handle, error) {
	t, err := c.TypeOf(typ)
	if err != nil {
		return Handle{}, err
	}
	g := llvm.AddGlobal(c.Module, t, name)
	g.SetInitializer(init)
	return Handle{Kind: HandleGlobalScalar, Ptr: g, Type: t, TypeName: typ, Size: registry.Scalar}, nil
}

// GlobalArray declares a module-level fixed-size array of size elements of
// typ, zero-initialized, grounded on decaf's createArray.
func (c *Context) GlobalArray(typ, name string, size int) (Handle, error) {
	if size < 1 {
		return Handle{}, fmt.Errorf(registry.ErrIndexTooLow)
	}
	elem, err := c.TypeOf(typ)
	if err != nil {
		return Handle{}, err
	}
	arrTyp := llvm.ArrayType(elem, size)
	g := llvm.AddGlobal(c.Module, arrTyp, name)
	g.SetInitializer(llvm.ConstNull(arrTyp))
	return Handle{Kind: HandleGlobalArray, Ptr: g, Type: elem, TypeName: typ, Size: size}, nil
}

// Store writes value into h's storage slot. h must be HandleLocal or
// HandleGlobalScalar.
func (c *Context) Store(h Handle, value llvm.Value) error {
	if h.Kind != HandleLocal && h.Kind != HandleGlobalScalar {
		return fmt.Errorf("cannot store through a %v handle", h.Kind)
	}
	c.Builder.CreateStore(value, h.Ptr)
	return nil
}

// Load reads the current value out of h's storage slot.
func (c *Context) Load(h Handle) (llvm.Value, error) {
	if h.Kind != HandleLocal && h.Kind != HandleGlobalScalar {
		return llvm.Value{}, fmt.Errorf("cannot load through a %v handle", h.Kind)
	}
	return c.Builder.CreateLoad(h.Ptr, ""), nil
}

// arrayElementAddr computes the address of h's element at index, grounded
// on decaf's assignArrayIndex/accessArrayIndex two-step GEP (a
// CreateStructGEP to the array's own storage followed by a CreateGEP with
// the index) collapsed into the single two-index GEP idiom the teacher's
// LLVM binding version exposes directly.
func (c *Context) arrayElementAddr(h Handle, index llvm.Value) llvm.Value {
	zero := llvm.ConstInt(c.llctx.Int32Type(), 0, false)
	return c.Builder.CreateGEP(h.Ptr, []llvm.Value{zero, index}, "arrayidx")
}

// ArrayStore writes value at h[index]. No bounds check is performed: this
// core has no runtime to trap into (spec.md Non-goals).
func (c *Context) ArrayStore(h Handle, index, value llvm.Value) error {
	if h.Kind != HandleGlobalArray {
		return fmt.Errorf("cannot index a %v handle", h.Kind)
	}
	c.Builder.CreateStore(value, c.arrayElementAddr(h, index))
	return nil
}

// ArrayLoad reads h[index].
func (c *Context) ArrayLoad(h Handle, index llvm.Value) (llvm.Value, error) {
	if h.Kind != HandleGlobalArray {
		return llvm.Value{}, fmt.Errorf("cannot index a %v handle", h.Kind)
	}
	return c.Builder.CreateLoad(c.arrayElementAddr(h, index), "arrayval"), nil
}
