package plan

import (
	"bytes"
	"errors"
	"testing"

	"github.com/marcinbor85/gohex"
	"github.com/sigurn/crc8"

	"github.com/clktmr/f4flash/flash"
	"github.com/clktmr/f4flash/flash/layout"
)

func hexImage(t *testing.T, segments map[uint32][]byte) *bytes.Buffer {
	t.Helper()
	mem := gohex.NewMemory()
	for addr, data := range segments {
		if err := mem.AddBinary(addr, data); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := mem.DumpIntelHex(&buf, 16); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestLoad(t *testing.T) {
	dev, err := layout.Lookup(layout.DefaultDevice)
	if err != nil {
		t.Fatal(err)
	}

	vectors := bytes.Repeat([]byte{0xa5}, 0x200)
	spanning := bytes.Repeat([]byte{0x5a, 0x3c}, 0x10) // sector 3 into 4
	config := []byte("bank2 config")
	img := hexImage(t, map[uint32][]byte{
		0x0800_0000: vectors,
		0x0800_fff0: spanning,
		0x0810_4000: config, // sector 13
	})

	p, err := Load(img, dev)
	if err != nil {
		t.Fatal(err)
	}

	expected := []struct {
		index int
		data  []byte
	}{
		{0, vectors},
		{3, spanning[:0x10]},
		{4, spanning[0x10:]},
		{13, config},
	}
	if len(p.Steps) != len(expected) {
		t.Fatalf("expected %d steps, got %v", len(expected), p.Steps)
	}
	table := crc8.MakeTable(crc8.CRC8)
	for i, e := range expected {
		step := p.Steps[i]
		if step.Sector.Index != e.index {
			t.Errorf("step %d: expected sector %d, got %d", i, e.index, step.Sector.Index)
		}
		if step.Bytes != len(e.data) {
			t.Errorf("step %d: expected %d bytes, got %d", i, len(e.data), step.Bytes)
		}
		if csum := crc8.Checksum(e.data, table); step.CRC != csum {
			t.Errorf("step %d: expected crc %#02x, got %#02x", i, csum, step.CRC)
		}
	}
	if n := len(vectors) + len(spanning) + len(config); p.Size() != n {
		t.Errorf("expected size %d, got %d", n, p.Size())
	}
}

func TestOutOfRange(t *testing.T) {
	dev, err := layout.Lookup("stm32f40xxg")
	if err != nil {
		t.Fatal(err)
	}
	tests := map[string]struct {
		addr uint32
		err  error
	}{
		"sram":     {0x2000_0000, ErrOutOfRange},
		"bank2":    {0x0810_0000, ErrOutOfRange},
		"lastByte": {0x080f_ffff, nil},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New([]gohex.DataSegment{{Address: tc.addr, Data: []byte{1}}}, dev)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestUnsupportedSector(t *testing.T) {
	dev, err := layout.Lookup(layout.DefaultDevice)
	if err != nil {
		t.Fatal(err)
	}
	_, err = New([]gohex.DataSegment{{Address: 0x081e_0000, Data: []byte{1}}}, dev)
	if !errors.Is(err, flash.ErrInvalidSector) {
		t.Fatalf("expected %v, got %v", flash.ErrInvalidSector, err)
	}
}

func TestParseError(t *testing.T) {
	dev, err := layout.Lookup(layout.DefaultDevice)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bytes.NewBufferString(":zz\n"), dev); err == nil {
		t.Fatal("expected parse error")
	}
}
