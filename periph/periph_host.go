//go:build !noos

package periph

import (
	"sync/atomic"
	"unsafe"
)

// U32 is a 32-bit register. Without a mapped Model it behaves like ordinary
// memory.
type U32 struct {
	v atomic.Uint32
}

func (r *U32) Load() uint32 {
	if m, off := lookup(r.Addr()); m != nil {
		return m.Load(off)
	}
	return r.v.Load()
}

func (r *U32) Store(v uint32) {
	if m, off := lookup(r.Addr()); m != nil {
		m.Store(off, v)
		return
	}
	r.v.Store(v)
}

func (r *U32) Addr() uintptr {
	return uintptr(unsafe.Pointer(r))
}

type R32[T T32] struct {
	r U32
}

func (r *R32[T]) Load() T {
	return T(r.r.Load())
}

func (r *R32[T]) Store(v T) {
	r.r.Store(uint32(v))
}

func (r *R32[T]) Addr() uintptr {
	return r.r.Addr()
}
