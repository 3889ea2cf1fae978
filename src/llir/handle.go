package llir

import "tinygo.org/x/go-llvm"

// HandleKind tags what a Handle's Ptr field actually addresses, so callers
// outside this package (the lowering engine, via package symtab) never have
// to inspect LLVM type kinds themselves to know how to load, store or call
// through a binding.
type HandleKind int

const (
	// HandleLocal is a stack slot: Ptr is the alloca, Type its pointee type.
	HandleLocal HandleKind = iota
	// HandleGlobalScalar is a module-level scalar variable.
	HandleGlobalScalar
	// HandleGlobalArray is a module-level fixed-size array aggregate. Ptr
	// is the GlobalVariable, Type the element type, Size its length.
	HandleGlobalArray
	// HandleFunction is a declared or defined function (extern or
	// user-defined). Ptr is the llvm.Value of the function itself.
	HandleFunction
)

func (k HandleKind) String() string {
	switch k {
	case HandleLocal:
		return "local"
	case HandleGlobalScalar:
		return "global scalar"
	case HandleGlobalArray:
		return "global array"
	case HandleFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Handle is the opaque storage handle every bound name in package symtab
// resolves to. It is the Go encoding of spec.md §3's "every bound name
// resolves to a handle representing either an allocated local slot, a
// global variable, a function or an array aggregate."
type Handle struct {
	Kind HandleKind
	Ptr  llvm.Value

	// Type is the pointee (for locals/globals) or element (for arrays)
	// LLVM type. Unused for HandleFunction.
	Type llvm.Type
	// TypeName is the source type name (registry.TypeInt and friends)
	// backing Type, so the lowering engine's type-discipline checks never
	// have to reverse-map an llvm.Type back to a source type name.
	TypeName string
	// Size is the declared length of an array handle; registry.Scalar
	// (-1) for every other kind.
	Size int

	// ParamTypes and ReturnType are populated for HandleFunction so Call
	// can check arity and the caller can decide on bool->int widening
	// without re-deriving the signature from the LLVM function type.
	ParamTypes []string
	ReturnType string
}
