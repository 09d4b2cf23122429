package flash

// ProgramSize is the parallelism used for writes to the flash array.
type ProgramSize uint8

const (
	X8 ProgramSize = iota
	X16
	X32
	X64 // requires external Vpp
)

// Bytes returns the width of a single write.
func (s ProgramSize) Bytes() int {
	return 1 << s
}

func (s ProgramSize) String() string {
	switch s {
	case X8:
		return "x8"
	case X16:
		return "x16"
	case X32:
		return "x32"
	case X64:
		return "x64"
	}
	return "invalid"
}

// ProgramSizeFor returns the largest parallelism supported at supply voltage
// without external programming voltage.
func ProgramSizeFor(voltage float32) ProgramSize {
	switch {
	case voltage < 2.1:
		return X8
	case voltage < 2.7:
		return X16
	}
	return X32
}

// EnableProgramming enables writes of the given width to the flash array. The
// caller does the stores and must call Check after each of them.
func (c *Controller) EnableProgramming(size ProgramSize) error {
	if size > X64 {
		return ErrInvalidProgramSize
	}
	if err := c.prepare(); err != nil {
		return err
	}
	c.setMode(pg)
	c.regs.cr.StoreBits(psizeMask, control(size)<<psizeShift)
	return nil
}

// DisableProgramming forbids further writes to the flash array. Error flags
// raised by the last store are cleared and returned as a *StatusError.
// Programming is disabled in that case too. It's safe to call if programming
// was never enabled.
func (c *Controller) DisableProgramming() error {
	if err := c.WaitReady(); err != nil {
		return err
	}
	c.regs.cr.ClearBits(pg)
	return c.clearStatus()
}
