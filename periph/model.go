//go:build !noos

package periph

import (
	"sync"
	"unsafe"
)

// Model simulates the peripheral behind a mapped address range. Offsets are
// relative to the base address passed to Map.
type Model interface {
	Load(off uintptr) uint32
	Store(off uintptr, v uint32)
}

type mapping struct {
	base, end uintptr
	m         Model
}

var (
	mtx      sync.RWMutex
	mappings []*mapping
)

// Map routes all register accesses in [base, base+size) to m until the
// returned function is called. The caller must keep the memory at base
// alive while it is mapped.
func Map(base unsafe.Pointer, size uintptr, m Model) (unmap func()) {
	mp := &mapping{uintptr(base), uintptr(base) + size, m}

	mtx.Lock()
	mappings = append(mappings, mp)
	mtx.Unlock()

	return func() {
		mtx.Lock()
		defer mtx.Unlock()
		for i, v := range mappings {
			if v == mp {
				mappings = append(mappings[:i], mappings[i+1:]...)
				return
			}
		}
	}
}

func lookup(addr uintptr) (Model, uintptr) {
	mtx.RLock()
	defer mtx.RUnlock()
	for _, mp := range mappings {
		if addr >= mp.base && addr < mp.end {
			return mp.m, addr - mp.base
		}
	}
	return nil, 0
}
