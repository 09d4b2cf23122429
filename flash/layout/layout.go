// Package layout describes the flash sector geometry of STM32F4 parts.
package layout

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultDevice is the part used when none is specified.
const DefaultDevice = "stm32f42xxi"

var ErrUnknownDevice = errors.New("layout: unknown device")

//go:embed devices.yaml
var rawDevices []byte

var devices []*Device

type Sector struct {
	Index int
	Bank  int
	Addr  uint32
	Size  uint32
}

// End returns the first address after s.
func (s Sector) End() uint32 { return s.Addr + s.Size }

func (s Sector) String() string {
	return fmt.Sprintf("sector %d (bank %d, 0x%08x-0x%08x, %d KiB)",
		s.Index, s.Bank, s.Addr, s.End()-1, s.Size>>10)
}

type Device struct {
	Name        string
	Description string
	Base        uint32
	Sectors     []Sector
}

type deviceInfo struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Base        uint32     `yaml:"base"`
	Banks       [][]uint32 `yaml:"banks"`
}

func init() {
	var err error
	devices, err = parse(rawDevices)
	if err != nil {
		panic(err)
	}
}

func parse(raw []byte) ([]*Device, error) {
	var t struct {
		Devices []deviceInfo `yaml:"devices"`
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, err
	}

	devs := make([]*Device, 0, len(t.Devices))
	for _, info := range t.Devices {
		if len(info.Banks) == 0 {
			return nil, fmt.Errorf("layout: device %s has no banks", info.Name)
		}
		d := &Device{Name: info.Name, Description: info.Description, Base: info.Base}
		addr := info.Base
		for i, bank := range info.Banks {
			for _, kib := range bank {
				d.Sectors = append(d.Sectors, Sector{
					Index: len(d.Sectors),
					Bank:  i + 1,
					Addr:  addr,
					Size:  kib << 10,
				})
				addr += kib << 10
			}
		}
		devs = append(devs, d)
	}
	return devs, nil
}

// Devices returns all known devices.
func Devices() []*Device {
	return devices
}

// Lookup returns the device called name.
func Lookup(name string) (*Device, error) {
	for _, d := range devices {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, name)
}

// Size returns the size of the flash array in bytes.
func (d *Device) Size() uint32 {
	return d.End() - d.Base
}

// End returns the first address after the flash array.
func (d *Device) End() uint32 {
	return d.Sectors[len(d.Sectors)-1].End()
}

// Banks returns the number of banks.
func (d *Device) Banks() int {
	return d.Sectors[len(d.Sectors)-1].Bank
}

// SectorAt returns the sector containing addr.
func (d *Device) SectorAt(addr uint32) (Sector, bool) {
	i := sort.Search(len(d.Sectors), func(i int) bool {
		return d.Sectors[i].End() > addr
	})
	if i == len(d.Sectors) || addr < d.Sectors[i].Addr {
		return Sector{}, false
	}
	return d.Sectors[i], true
}

// Overlapping returns the sectors intersecting [addr, addr+n).
func (d *Device) Overlapping(addr, n uint32) []Sector {
	var sectors []Sector
	end := addr + n
	for _, s := range d.Sectors {
		if s.Addr < end && addr < s.End() {
			sectors = append(sectors, s)
		}
	}
	return sectors
}
