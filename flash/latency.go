package flash

// Reference frequencies per supply voltage band. Each band allows one more
// wait state per multiple of its reference frequency.
var voltageBands = [...]struct {
	maxVoltage float32
	refFreq    int
}{
	{2.1, 20_000_000},
	{2.4, 22_000_000},
	{2.7, 24_000_000},
	{3.6, 30_000_000},
}

const (
	minVoltage    = 1.8
	maxWaitStates = 8
)

// CalculateWaitStates returns the wait states needed at coreClockFreq if a
// single wait state allows read access up to referenceFreq. A frequency at the
// exact upper bound of a row needs one wait state less than the next row.
// A non-positive referenceFreq yields the device maximum.
func CalculateWaitStates(referenceFreq, coreClockFreq int) int {
	if referenceFreq <= 0 {
		return maxWaitStates
	}
	if coreClockFreq%referenceFreq == 0 {
		return coreClockFreq/referenceFreq - 1
	}
	return coreClockFreq / referenceFreq
}

// WaitStatesFor returns the wait states required at supply voltage and
// coreClockFreq (in Hz). Below 1.8V the device maximum is returned. Inputs
// outside the device limits aren't validated.
func WaitStatesFor(voltage float32, coreClockFreq int) int {
	if voltage < minVoltage {
		return maxWaitStates
	}
	for _, b := range voltageBands[:len(voltageBands)-1] {
		if voltage <= b.maxVoltage {
			return CalculateWaitStates(b.refFreq, coreClockFreq)
		}
	}
	return CalculateWaitStates(voltageBands[len(voltageBands)-1].refFreq, coreClockFreq)
}

// SetWaitStates sets the read latency. Only the low four bits of n are used.
func (c *Controller) SetWaitStates(n int) {
	c.regs.acr.StoreBits(latencyMask, accessControl(n))
}

// WaitStates returns the currently configured read latency.
func (c *Controller) WaitStates() int {
	return int(c.regs.acr.LoadBits(latencyMask))
}

// ConfigureWaitStates sets the read latency for the supply voltage and core
// clock and returns the value written.
func (c *Controller) ConfigureWaitStates(voltage float32, coreClockFreq int) int {
	n := WaitStatesFor(voltage, coreClockFreq)
	c.SetWaitStates(n)
	return n
}

// SetCaches enables or disables prefetch and the instruction and data caches.
func (c *Controller) SetCaches(prefetch, icache, dcache bool) {
	var v accessControl
	if prefetch {
		v |= prefetchEnable
	}
	if icache {
		v |= icacheEnable
	}
	if dcache {
		v |= dcacheEnable
	}
	c.regs.acr.StoreBits(prefetchEnable|icacheEnable|dcacheEnable, v)
}

// ResetCaches flushes the instruction and data caches, e.g. after the flash
// array was modified. Caches can only be reset while disabled, so they are
// disabled for the reset and restored afterwards.
func (c *Controller) ResetCaches() {
	enabled := c.regs.acr.LoadBits(icacheEnable | dcacheEnable)
	c.regs.acr.ClearBits(icacheEnable | dcacheEnable)
	c.regs.acr.SetBits(icacheReset | dcacheReset)
	c.regs.acr.ClearBits(icacheReset | dcacheReset)
	c.regs.acr.SetBits(enabled)
}
