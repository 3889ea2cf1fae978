// Package symtab implements the lexically scoped symbol-table stack that
// binds identifiers to storage handles across nested blocks and function
// bodies (spec.md §3, §4.2).
//
// Grounded on original_source/answer/symbol-table.cpp: INDEX_EXTERN (0) and
// INDEX_CLASS (1) are fixed-index frames visible from every inner scope, and
// getValue scans frames top-down (decaf's reverse_iterator walk). The
// teacher's util/stack.go linked-list Stack is the structural ancestor of
// package symtab's underlying Stack, generalized to Go generics since the
// storage handle type (an LLVM value, in package llir) is opaque to symtab.
package symtab

// frameExtern and frameFunction are the two reserved frame indices. Externs
// and user functions must be visible from every inner scope, so they live at
// the bottom of the stack; because Lookup scans top-down, an inner binding
// of the same name shadows them like any other outer binding.
const (
	frameExtern   = 0
	frameFunction = 1
)

// frame is one scope's identifier -> storage-handle bindings.
type frame[H any] struct {
	bindings map[string]H
}

func newFrame[H any]() *frame[H] {
	return &frame[H]{bindings: make(map[string]H, 8)}
}

// Table is a stack of scope frames mapping identifier to storage handle H.
// The zero value is not ready for use; call New.
type Table[H any] struct {
	frames Stack[*frame[H]]
}

// New returns a Table with its two reserved frames (frame 0 = externs,
// frame 1 = functions) already pushed. The invariant "the scope stack always
// has >= 2 frames" (spec.md §3) holds from construction onward as long as
// callers never Pop below this point.
func New[H any]() *Table[H] {
	t := &Table[H]{}
	t.frames.Push(newFrame[H]())
	t.frames.Push(newFrame[H]())
	return t
}

// Push opens a new block scope frame.
func (t *Table[H]) Push() {
	t.frames.Push(newFrame[H]())
}

// Pop closes the innermost scope frame. Pop must not be called on the
// reserved extern/function frames (i.e. when Depth() == 2).
func (t *Table[H]) Pop() {
	t.frames.Pop()
}

// Depth returns the number of live scope frames, including the two reserved
// frames.
func (t *Table[H]) Depth() int {
	return t.frames.Len()
}

// Insert binds name to handle in the topmost (innermost) frame, overwriting
// any existing binding for name in that frame. Bindings in outer frames are
// left untouched (shadowing).
func (t *Table[H]) Insert(name string, handle H) {
	t.frames.Peek().bindings[name] = handle
}

// InsertExtern binds name to handle in frame 0 regardless of current depth.
func (t *Table[H]) InsertExtern(name string, handle H) {
	t.frames.At(frameExtern).bindings[name] = handle
}

// InsertFunction binds name to handle in frame 1 regardless of current depth.
func (t *Table[H]) InsertFunction(name string, handle H) {
	t.frames.At(frameFunction).bindings[name] = handle
}

// Lookup scans frames from innermost to outermost and returns the first
// binding found for name. ok is false if name is unresolved in any live
// frame.
func (t *Table[H]) Lookup(name string) (handle H, ok bool) {
	for i := t.frames.Len() - 1; i >= 0; i-- {
		if h, found := t.frames.At(i).bindings[name]; found {
			return h, true
		}
	}
	var zero H
	return zero, false
}

// LookupLocal reports whether name is already bound in the topmost frame
// only — used to detect duplicate declarations within the same scope
// (spec.md §3 invariant: "at most one storage binding per name per scope
// frame").
func (t *Table[H]) LookupLocal(name string) (handle H, ok bool) {
	h, found := t.frames.Peek().bindings[name]
	return h, found
}

// LookupExtern and LookupFunction check only the reserved frames, used by
// callers that must distinguish "already declared as an extern/function"
// from an ordinary shadowing lookup (e.g. duplicate top-level declaration
// checks).
func (t *Table[H]) LookupExtern(name string) (handle H, ok bool) {
	h, found := t.frames.At(frameExtern).bindings[name]
	return h, found
}

func (t *Table[H]) LookupFunction(name string) (handle H, ok bool) {
	h, found := t.frames.At(frameFunction).bindings[name]
	return h, found
}
