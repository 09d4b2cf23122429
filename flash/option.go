package flash

import "errors"

var ErrInvalidBORLevel = errors.New("flash: invalid brown-out reset level")

// BORLevel is the brown-out reset threshold stored in the option bytes.
type BORLevel uint8

const (
	BORLevel3 BORLevel = iota // highest threshold
	BORLevel2
	BORLevel1
	BOROff // only POR/PDR
)

func (l BORLevel) String() string {
	switch l {
	case BORLevel3:
		return "level 3"
	case BORLevel2:
		return "level 2"
	case BORLevel1:
		return "level 1"
	case BOROff:
		return "off"
	}
	return "invalid"
}

// BOR returns the brown-out reset level.
func (c *Controller) BOR() BORLevel {
	return BORLevel(c.regs.optcr.LoadBits(borMask) >> borShift)
}

// SetBOR programs the brown-out reset level into the option bytes. The option
// control register must be unlocked with OptionUnlock.
func (c *Controller) SetBOR(l BORLevel) error {
	if l > BOROff {
		return ErrInvalidBORLevel
	}
	if c.OptionLocked() {
		return ErrLocked
	}
	if err := c.Check(); err != nil {
		return err
	}
	c.regs.optcr.StoreBits(borMask, optionControl(l)<<borShift)
	c.regs.optcr.SetBits(optStrt)
	return c.Check()
}
