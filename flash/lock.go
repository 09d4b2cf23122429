package flash

// Locked reports whether the control register is locked.
func (c *Controller) Locked() bool {
	return c.regs.cr.LoadBits(lock) != 0
}

// Unlock unlocks the control register so erase and programming operations can
// be started. Any wrong key sequence locks the register until the next reset,
// which includes writing the keys again to an unlocked register. Unlock
// therefore does nothing if the register isn't locked.
func (c *Controller) Unlock() error {
	if !c.Locked() {
		return nil
	}
	c.regs.keyr.Store(key1)
	c.regs.keyr.Store(key2) // must follow key1 immediately
	if c.Locked() {
		return ErrLockFailure
	}
	return nil
}

// Lock clears all operation modes and locks the control register. Locking is
// allowed at any time.
func (c *Controller) Lock() error {
	c.regs.cr.ClearBits(modeMask)
	c.regs.cr.SetBits(lock)
	if !c.Locked() {
		return ErrLockFailure
	}
	return nil
}

// OptionLocked reports whether the option control register is locked.
func (c *Controller) OptionLocked() bool {
	return c.regs.optcr.LoadBits(optLock) != 0
}

// OptionUnlock unlocks the option control register. It uses an independent
// key sequence and is unaffected by the control register lock.
func (c *Controller) OptionUnlock() error {
	if !c.OptionLocked() {
		return nil
	}
	c.regs.optkeyr.Store(optKey1)
	c.regs.optkeyr.Store(optKey2)
	if c.OptionLocked() {
		return ErrLockFailure
	}
	return nil
}

func (c *Controller) OptionLock() error {
	c.regs.optcr.SetBits(optLock)
	if !c.OptionLocked() {
		return ErrLockFailure
	}
	return nil
}
