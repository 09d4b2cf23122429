//go:build !noos

package sim

import (
	"testing"

	"github.com/clktmr/f4flash/flash/layout"
)

func newFlash(t *testing.T) *Flash {
	dev, err := layout.Lookup(layout.DefaultDevice)
	if err != nil {
		t.Fatal(err)
	}
	f := New(dev)
	t.Cleanup(f.Close)
	return f
}

func TestKeySequence(t *testing.T) {
	tests := map[string]struct {
		keys      []uint32
		locked    bool
		lockedOut bool
	}{
		"valid":      {[]uint32{key1, key2}, false, false},
		"swapped":    {[]uint32{key2, key1}, true, true},
		"single":     {[]uint32{key1}, true, false},
		"wrongFirst": {[]uint32{0, key1, key2}, true, true},
		"repeated":   {[]uint32{key1, key2, key1, key2}, true, true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFlash(t)
			for _, k := range tc.keys {
				f.Store(offKEYR, k)
			}
			if locked := f.Load(offCR)&crLOCK != 0; locked != tc.locked {
				t.Fatalf("expected locked %v, got %v", tc.locked, locked)
			}
			if f.LockedOut() != tc.lockedOut {
				t.Fatalf("expected locked out %v, got %v", tc.lockedOut, f.LockedOut())
			}

			f.Reset()
			f.Store(offKEYR, key1)
			f.Store(offKEYR, key2)
			if f.Load(offCR)&crLOCK != 0 {
				t.Fatal("reset didn't clear the lock out")
			}
		})
	}
}

func TestOptionKeySequence(t *testing.T) {
	f := newFlash(t)
	f.Store(offOPTCR, 0) // ignored while locked
	if f.Load(offOPTCR) != optcrReset {
		t.Fatalf("locked OPTCR modified: %#x", f.Load(offOPTCR))
	}
	f.Store(offOPTKEYR, optKey1)
	f.Store(offOPTKEYR, optKey2)
	if f.Load(offOPTCR)&optLOCK != 0 {
		t.Fatal("expected unlocked option register")
	}
	if f.Load(offCR)&crLOCK == 0 {
		t.Fatal("option keys unlocked the control register")
	}
}

func TestStatusW1C(t *testing.T) {
	f := newFlash(t)
	f.sr = srPGSERR | srWRPERR
	f.Store(offSR, srWRPERR|srBSY)
	if sr := f.Load(offSR); sr != srPGSERR {
		t.Fatalf("expected only PGSERR, got %#x", sr)
	}
}

func TestBusy(t *testing.T) {
	f := newFlash(t)
	f.SetBusy(2)
	for i, expected := range []uint32{srBSY, srBSY, 0} {
		if sr := f.Load(offSR); sr&srBSY != expected {
			t.Fatalf("read %d: expected %#x, got %#x", i, expected, sr)
		}
	}
	f.Stall(true)
	if f.Registers().SR&srBSY == 0 {
		t.Fatal("expected busy while stalled")
	}
}

func TestInvalidErase(t *testing.T) {
	f := newFlash(t)
	f.Store(offKEYR, key1)
	f.Store(offKEYR, key2)

	tests := map[string]uint32{
		"noMode":     crSTRT,
		"snbGap":     crSER | 13<<crSNBShift | crSTRT,
		"snbTooHigh": crSER | 0x1c<<crSNBShift | crSTRT,
		"withPG":     crSER | crPG | crSTRT,
	}
	for name, cr := range tests {
		t.Run(name, func(t *testing.T) {
			f.Store(offSR, srW1C)
			f.Store(offCR, cr)
			if sr := f.Load(offSR); sr&srPGSERR == 0 {
				t.Fatalf("expected PGSERR, got %#x", sr)
			}
			if f.Load(offCR)&crSTRT != 0 {
				t.Fatal("STRT didn't self clear")
			}
		})
	}
}

func TestProtect(t *testing.T) {
	f := newFlash(t)
	for _, sector := range []int{-1, 24, 100} {
		f.Protect(sector)
	}
	if r := f.Registers(); r.OPTCR != optcrReset || r.OPTCR1 != optcr1Reset {
		t.Fatalf("option bytes modified for missing sectors: %#x %#x", r.OPTCR, r.OPTCR1)
	}
	f.Protect(3)
	f.Protect(23)
	if !f.protected(3) || !f.protected(23) || f.protected(4) {
		t.Fatalf("unexpected protection: %#x %#x", f.optcr, f.optcr1)
	}
}
