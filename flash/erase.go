package flash

type Bank int

const (
	Bank1 Bank = 1
	Bank2 Bank = 2
)

// NumSectors is the number of sectors accepted by SectorErase.
const NumSectors = 23

// ValidSector reports whether SectorErase accepts sector.
func ValidSector(sector int) bool {
	return sector >= 0 && sector < NumSectors
}

// sectorField encodes sector for the SNB field. Sectors of the second bank
// start at 0x10.
func sectorField(sector int) (control, error) {
	switch {
	case !ValidSector(sector):
		return 0, ErrInvalidSector
	case sector < 12:
		return control(sector), nil
	default:
		return control(0x10 + sector - 12), nil
	}
}

// MassErase erases all sectors of bank and waits for the erase to finish.
func (c *Controller) MassErase(bank Bank) error {
	var m control
	switch bank {
	case Bank1:
		m = mer
	case Bank2:
		m = mer1
	default:
		return ErrInvalidBank
	}
	if err := c.prepare(); err != nil {
		return err
	}
	c.setMode(m)
	c.regs.cr.SetBits(strt)
	return c.Check()
}

// SectorErase erases a single sector and waits for the erase to finish.
func (c *Controller) SectorErase(sector int) error {
	snb, err := sectorField(sector)
	if err != nil {
		return err
	}
	if err := c.prepare(); err != nil {
		return err
	}
	c.setMode(ser)
	c.regs.cr.StoreBits(snbMask, snb<<snbShift)
	c.regs.cr.SetBits(strt)
	return c.Check()
}
