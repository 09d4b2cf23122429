// Package plan determines the sectors a firmware image occupies, i.e. the
// sectors that must be erased before the image can be programmed.
package plan

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/marcinbor85/gohex"
	"github.com/sigurn/crc8"

	"github.com/clktmr/f4flash/flash"
	"github.com/clktmr/f4flash/flash/layout"
)

var ErrOutOfRange = errors.New("plan: image outside flash array")

var crcTable = crc8.MakeTable(crc8.CRC8)

// Step is a sector to be erased and the image payload it will receive.
type Step struct {
	Sector layout.Sector
	Bytes  int   // payload bytes in the sector
	CRC    uint8 // CRC-8 of the payload in address order
}

type Plan struct {
	Device   *layout.Device
	Segments []gohex.DataSegment
	Steps    []Step
}

// Load reads an Intel HEX image from r and plans it for dev.
func Load(r io.Reader, dev *layout.Device) (*Plan, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return New(mem.GetDataSegments(), dev)
}

// New plans the image given by segments for dev. All segments must be inside
// sectors that the flash driver can erase.
func New(segments []gohex.DataSegment, dev *layout.Device) (*Plan, error) {
	segments = append([]gohex.DataSegment(nil), segments...)
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Address < segments[j].Address
	})

	p := &Plan{Device: dev, Segments: segments}
	steps := make(map[int]*Step)
	csums := make(map[int]uint8)
	for _, seg := range segments {
		if len(seg.Data) == 0 {
			continue
		}
		end := uint64(seg.Address) + uint64(len(seg.Data))
		if seg.Address < dev.Base || end > uint64(dev.End()) {
			return nil, fmt.Errorf("%w: %#08x-%#08x", ErrOutOfRange, seg.Address, end-1)
		}
		for _, s := range dev.Overlapping(seg.Address, uint32(len(seg.Data))) {
			if !flash.ValidSector(s.Index) {
				return nil, fmt.Errorf("plan: %v: %w", s, flash.ErrInvalidSector)
			}
			lo := max(s.Addr, seg.Address) - seg.Address
			hi := min(s.End(), uint32(end)) - seg.Address
			chunk := seg.Data[lo:hi]

			step, ok := steps[s.Index]
			if !ok {
				step = &Step{Sector: s}
				steps[s.Index] = step
				csums[s.Index] = crc8.Init(crcTable)
			}
			step.Bytes += len(chunk)
			csums[s.Index] = crc8.Update(csums[s.Index], chunk, crcTable)
		}
	}

	for i, step := range steps {
		step.CRC = crc8.Complete(csums[i], crcTable)
		p.Steps = append(p.Steps, *step)
	}
	sort.Slice(p.Steps, func(i, j int) bool {
		return p.Steps[i].Sector.Index < p.Steps[j].Sector.Index
	})
	return p, nil
}

// Erase erases all sectors of the plan. The flash controller must be
// unlocked.
func (p *Plan) Erase(c *flash.Controller) error {
	for _, step := range p.Steps {
		if err := c.SectorErase(step.Sector.Index); err != nil {
			return fmt.Errorf("erase sector %d: %w", step.Sector.Index, err)
		}
	}
	return nil
}

// Size returns the number of payload bytes.
func (p *Plan) Size() (n int) {
	for _, step := range p.Steps {
		n += step.Bytes
	}
	return n
}
