//go:build noos

package periph

import "embedded/mmio"

type U32 struct {
	r mmio.U32
}

func (r *U32) Load() uint32 {
	return r.r.Load()
}

func (r *U32) Store(v uint32) {
	r.r.Store(v)
}

func (r *U32) Addr() uintptr {
	return r.r.Addr()
}

type R32[T T32] struct {
	r mmio.R32[T]
}

func (r *R32[T]) Load() T {
	return r.r.Load()
}

func (r *R32[T]) Store(v T) {
	r.r.Store(v)
}

func (r *R32[T]) Addr() uintptr {
	return r.r.Addr()
}
