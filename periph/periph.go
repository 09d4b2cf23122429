// Package periph provides the volatile 32-bit register types used to describe
// memory-mapped peripheral register blocks.
//
// On target (GOOS=noos) the types wrap embedded/mmio and every access reaches
// the bus. On host the registers are plain memory accessed atomically, and a
// Model can be mapped over an address range to simulate the peripheral behind
// it.
package periph

// T32 is the set of types a R32 can hold.
type T32 interface{ ~int32 | ~uint32 }

// LoadBits returns the bits of r selected by mask.
func (r *R32[T]) LoadBits(mask T) T {
	return r.Load() & mask
}

// StoreBits replaces the bits of r selected by mask with bits.
func (r *R32[T]) StoreBits(mask, bits T) {
	r.Store(r.Load()&^mask | bits&mask)
}

// SetBits sets the bits of r selected by mask.
func (r *R32[T]) SetBits(mask T) {
	r.Store(r.Load() | mask)
}

// ClearBits clears the bits of r selected by mask.
func (r *R32[T]) ClearBits(mask T) {
	r.Store(r.Load() &^ mask)
}
