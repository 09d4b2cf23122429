//go:build !noos

// Package sim models the STM32F4 flash interface at register level so the
// flash driver can be exercised on host.
//
// The model follows the reference manual where the driver depends on it: the
// key sequences, write-1-to-clear status flags, the busy flag, write
// protection and the programming checks of the flash array. Operations finish
// instantly, only the busy flag is kept set for a number of status reads.
package sim

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/clktmr/f4flash/flash/layout"
	"github.com/clktmr/f4flash/periph"
)

var ErrBusFault = errors.New("sim: access outside flash array")

// Register offsets
const (
	offACR     = 0x00
	offKEYR    = 0x04
	offOPTKEYR = 0x08
	offSR      = 0x0c
	offCR      = 0x10
	offOPTCR   = 0x14
	offOPTCR1  = 0x18
)

const (
	srEOP    = 1 << 0
	srOPERR  = 1 << 1
	srWRPERR = 1 << 4
	srPGAERR = 1 << 5
	srPGPERR = 1 << 6
	srPGSERR = 1 << 7
	srRDERR  = 1 << 8
	srBSY    = 1 << 16

	srW1C = srEOP | srOPERR | srWRPERR | srPGAERR | srPGPERR | srPGSERR | srRDERR
)

const (
	crPG       = 1 << 0
	crSER      = 1 << 1
	crMER      = 1 << 2
	crSNBShift = 3
	crSNB      = 0x1f << crSNBShift
	crPSHIFT   = 8
	crPSIZE    = 0x3 << crPSHIFT
	crMER1     = 1 << 15
	crSTRT     = 1 << 16
	crEOPIE    = 1 << 24
	crERRIE    = 1 << 25
	crLOCK     = 1 << 31

	crModes    = crPG | crSER | crMER | crMER1
	crWritable = crModes | crSNB | crPSIZE | crEOPIE | crERRIE | crLOCK
)

const (
	optLOCK  = 1 << 0
	optSTRT  = 1 << 1
	optBOR   = 0x3 << 2
	nWRPMask = 0xfff << 16
)

const (
	acrWritable = 0xf | 0x1f<<8

	crReset     = crLOCK
	optcrReset  = 0x0fff_aaed
	optcr1Reset = 0x0fff_0000
)

const (
	key1    = 0x4567_0123
	key2    = 0xcdef_89ab
	optKey1 = 0x0819_2a3b
	optKey2 = 0x4c5d_6e7f
)

// keySeq tracks a two key unlock sequence.
type keySeq struct {
	first, second uint32
	next          int
	fault         bool // locked until reset
}

// write feeds v into the sequence and reports whether it completed.
func (k *keySeq) write(v uint32, locked bool) bool {
	if k.fault || !locked {
		k.fault = true
		return false
	}
	switch {
	case k.next == 0 && v == k.first:
		k.next = 1
	case k.next == 1 && v == k.second:
		k.next = 0
		return true
	default:
		k.next = 0
		k.fault = true
	}
	return false
}

// Flash is a simulated flash interface with its flash array.
type Flash struct {
	mtx   sync.Mutex
	block [7]uint32 // backing memory for the register block
	unmap func()

	dev   *layout.Device
	array []byte

	acr, sr, cr, optcr, optcr1 uint32
	key, optKey                keySeq
	busy                       int
	stalled                    bool

	// Latency is the number of status register reads that report busy after
	// an operation was started.
	Latency int
}

// New returns an erased flash of device dev with all registers in reset
// state. Close must be called to release the register block.
func New(dev *layout.Device) *Flash {
	f := &Flash{
		dev:     dev,
		array:   make([]byte, dev.Size()),
		optcr:   optcrReset,
		optcr1:  optcr1Reset,
		Latency: 3,
	}
	for i := range f.array {
		f.array[i] = 0xff
	}
	f.Reset()
	f.unmap = periph.Map(unsafe.Pointer(&f.block), unsafe.Sizeof(f.block), f)
	return f
}

// Base returns the address of the simulated register block, to be passed to
// flash.New.
func (f *Flash) Base() unsafe.Pointer {
	return unsafe.Pointer(&f.block)
}

func (f *Flash) Close() {
	f.unmap()
}

// Reset puts all registers into their reset state. The flash array and option
// bytes are kept.
func (f *Flash) Reset() {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.acr, f.sr, f.cr = 0, 0, crReset
	f.optcr |= optLOCK
	f.key = keySeq{first: key1, second: key2}
	f.optKey = keySeq{first: optKey1, second: optKey2}
	f.busy, f.stalled = 0, false
}

// Stall keeps the busy flag set until called with false.
func (f *Flash) Stall(stalled bool) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.stalled = stalled
}

// SetBusy sets the busy flag for the next n status register reads.
func (f *Flash) SetBusy(n int) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.busy = n
}

// Protect enables write protection of sector in the option bytes. Sectors the
// device doesn't have are ignored.
func (f *Flash) Protect(sector int) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	switch {
	case sector < 0 || sector >= len(f.dev.Sectors):
		return
	case sector < 12:
		f.optcr &^= 1 << (16 + sector)
	default:
		f.optcr1 &^= 1 << (16 + sector - 12)
	}
}

// LockedOut reports whether a wrong key sequence locked the control register
// until the next reset.
func (f *Flash) LockedOut() bool {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.key.fault
}

// Registers is a snapshot of the register block.
type Registers struct {
	ACR, SR, CR, OPTCR, OPTCR1 uint32
}

func (f *Flash) Registers() Registers {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	sr := f.sr
	if f.busy > 0 || f.stalled {
		sr |= srBSY
	}
	return Registers{f.acr, sr, f.cr, f.optcr, f.optcr1}
}

// Load implements periph.Model.
func (f *Flash) Load(off uintptr) uint32 {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	switch off {
	case offACR:
		return f.acr
	case offSR:
		sr := f.sr
		if f.stalled {
			return sr | srBSY
		}
		if f.busy > 0 {
			f.busy--
			sr |= srBSY
		}
		return sr
	case offCR:
		return f.cr
	case offOPTCR:
		return f.optcr
	case offOPTCR1:
		return f.optcr1
	}
	return 0 // key registers are write-only
}

// Store implements periph.Model.
func (f *Flash) Store(off uintptr, v uint32) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	switch off {
	case offACR:
		f.acr = v & acrWritable
	case offKEYR:
		if f.key.write(v, f.cr&crLOCK != 0) {
			f.cr &^= crLOCK
		} else if f.key.fault {
			f.cr |= crLOCK
		}
	case offOPTKEYR:
		if f.optKey.write(v, f.optcr&optLOCK != 0) {
			f.optcr &^= optLOCK
		} else if f.optKey.fault {
			f.optcr |= optLOCK
		}
	case offSR:
		f.sr &^= v & srW1C
	case offCR:
		f.storeCR(v)
	case offOPTCR:
		f.storeOPTCR(v)
	case offOPTCR1:
		if f.optcr&optLOCK == 0 {
			f.optcr1 = v & nWRPMask
		}
	}
}

func (f *Flash) storeCR(v uint32) {
	if f.cr&crLOCK != 0 {
		return
	}
	f.cr = v & crWritable
	if v&crLOCK != 0 || v&crSTRT == 0 {
		return
	}
	f.erase()
}

func (f *Flash) storeOPTCR(v uint32) {
	if f.optcr&optLOCK != 0 {
		return
	}
	f.optcr = v &^ optSTRT
	if v&optSTRT != 0 {
		f.start()
	}
}

// start marks an operation as ongoing.
func (f *Flash) start() {
	f.busy = f.Latency
	if f.cr&crEOPIE != 0 {
		f.sr |= srEOP
	}
}

func (f *Flash) fail(flags uint32) {
	f.sr |= flags
}

func (f *Flash) erase() {
	switch f.cr & crModes {
	case crSER:
		sector, ok := f.decodeSNB()
		if !ok {
			f.fail(srPGSERR)
			return
		}
		if f.protected(sector.Index) {
			f.fail(srWRPERR)
			return
		}
		f.fill(sector)
	case crMER, crMER1, crMER | crMER1:
		var sectors []layout.Sector
		for _, s := range f.dev.Sectors {
			if (s.Bank == 1 && f.cr&crMER != 0) || (s.Bank == 2 && f.cr&crMER1 != 0) {
				sectors = append(sectors, s)
			}
		}
		if len(sectors) == 0 {
			f.fail(srPGSERR)
			return
		}
		for _, s := range sectors {
			if f.protected(s.Index) {
				f.fail(srWRPERR)
				return
			}
		}
		for _, s := range sectors {
			f.fill(s)
		}
	default:
		f.fail(srPGSERR)
		return
	}
	f.start()
}

func (f *Flash) decodeSNB() (layout.Sector, bool) {
	snb := int(f.cr&crSNB) >> crSNBShift
	switch {
	case snb < 12:
	case snb >= 0x10 && snb < 0x1c:
		snb = 12 + snb - 0x10
	default:
		return layout.Sector{}, false
	}
	if snb >= len(f.dev.Sectors) {
		return layout.Sector{}, false
	}
	return f.dev.Sectors[snb], true
}

func (f *Flash) protected(sector int) bool {
	if sector < 12 {
		return f.optcr&(1<<(16+sector)) == 0
	}
	return f.optcr1&(1<<(16+sector-12)) == 0
}

func (f *Flash) fill(s layout.Sector) {
	off := s.Addr - f.dev.Base
	for i := range s.Size {
		f.array[off+i] = 0xff
	}
}

// Program simulates a CPU store of p to address addr of the flash array. The
// hardware reports violations through the status register: len(p) must match
// the configured program size and be naturally aligned, programming must be
// enabled and the sector writeable. Programming can only clear bits.
func (f *Flash) Program(addr uint32, p []byte) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if addr < f.dev.Base || uint64(addr)+uint64(len(p)) > uint64(f.dev.End()) {
		return ErrBusFault
	}
	switch {
	case f.cr&crLOCK != 0 || f.cr&crModes != crPG:
		f.fail(srPGSERR)
	case len(p) != 1<<((f.cr&crPSIZE)>>crPSHIFT):
		f.fail(srPGPERR)
	case addr%uint32(len(p)) != 0:
		f.fail(srPGAERR)
	default:
		s, _ := f.dev.SectorAt(addr)
		if f.protected(s.Index) {
			f.fail(srWRPERR)
			return nil
		}
		off := addr - f.dev.Base
		for i, b := range p {
			f.array[off+uint32(i)] &= b
		}
		f.start()
	}
	return nil
}

// ReadAt reads from the flash array. Offsets are bus addresses.
func (f *Flash) ReadAt(p []byte, addr int64) (n int, err error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if addr < int64(f.dev.Base) || addr+int64(len(p)) > int64(f.dev.End()) {
		return 0, ErrBusFault
	}
	return copy(p, f.array[addr-int64(f.dev.Base):]), nil
}
