// Package flash drives the embedded flash interface of STM32F4 devices. It
// configures the read latency and sequences the unlock, erase and programming
// operations on the flash control registers.
//
// All operations are synchronous and poll the busy flag with a bounded
// timeout. The register block is shared, unsynchronized state: callers must
// not overlap two flash operations.
//
// A typical update of the flash array is
//
//	Unlock, SectorErase or MassErase, EnableProgramming,
//	(store to flash, Check)..., DisableProgramming, Lock
package flash

import (
	"math/bits"
	"runtime"
	"time"
	"unsafe"

	"github.com/clktmr/f4flash/debug"
)

// DefaultTimeout covers the worst case bank erase with x8 parallelism.
const DefaultTimeout = 32 * time.Second

// Controller is the flash interface of one device.
type Controller struct {
	regs *registers

	// Timeout bounds every wait for the busy flag to clear.
	Timeout time.Duration

	// Clock is the monotonic time source used to measure Timeout.
	Clock func() time.Duration
}

// New returns a Controller for the flash interface register block at base.
// On target use FLASH instead.
func New(base unsafe.Pointer) *Controller {
	return &Controller{
		regs:    (*registers)(base),
		Timeout: DefaultTimeout,
		Clock:   nanotime,
	}
}

// Status returns the current content of the status register.
func (c *Controller) Status() Status {
	return c.regs.sr.Load()
}

// WaitReady blocks until no flash operation is ongoing. It returns ErrTimeout
// if the busy flag doesn't clear within c.Timeout.
func (c *Controller) WaitReady() error {
	if c.regs.sr.LoadBits(Busy) == 0 {
		return nil
	}
	start := c.Clock()
	for c.regs.sr.LoadBits(Busy) != 0 {
		if c.Clock()-start > c.Timeout {
			return ErrTimeout
		}
		runtime.Gosched()
	}
	return nil
}

// Check waits for the ongoing operation to finish and returns the raised
// error flags as a *StatusError. It must be called after each store to the
// flash array while programming is enabled. All reported flags are cleared.
func (c *Controller) Check() error {
	if err := c.WaitReady(); err != nil {
		return err
	}
	return c.clearStatus()
}

func (c *Controller) clearStatus() error {
	flags := c.regs.sr.LoadBits(errFlags | EOP)
	if flags == 0 {
		return nil
	}
	c.regs.sr.Store(flags) // write 1 to clear
	if flags&errFlags != 0 {
		return &StatusError{flags & errFlags}
	}
	return nil
}

// prepare waits for an unlocked, idle interface before an operation is
// started. Error flags left by an earlier operation are cleared and returned,
// in which case no operation must be started.
func (c *Controller) prepare() error {
	if c.Locked() {
		return ErrLocked
	}
	return c.Check()
}

// setMode clears all operation mode bits and sets m.
func (c *Controller) setMode(m control) {
	c.regs.cr.ClearBits(modeMask)
	c.regs.cr.SetBits(m)
	if debug.Enabled {
		modes := uint32(c.regs.cr.LoadBits(modeMask))
		debug.Assertf(bits.OnesCount32(modes) <= 1, "flash: operation modes not exclusive: %#x", modes)
	}
}
