//go:build !noos

// Package script runs flash command scripts against a simulated device. Each
// line holds one command with shell-like quoting; lines starting with # are
// comments.
//
// The commands are:
//
//	unlock | lock | optunlock | optlock
//	waitstates <volts> <hz>
//	erase sector <n> | erase bank <n>
//	program x8|x16|x32|x64 | endprogram
//	write <addr> <hexbytes>
//	load <file.hex>
//	read <addr> <n> | crc <addr> <n>
//	bor off|1|2|3
//	protect <sector> | busy <reads> | stall on|off | timeout <duration>
//	regs | status
package script

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/buildkite/shellwords"
	"github.com/sigurn/crc8"

	"github.com/clktmr/f4flash/flash"
	"github.com/clktmr/f4flash/flash/layout"
	"github.com/clktmr/f4flash/flash/plan"
	"github.com/clktmr/f4flash/flash/sim"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("wrong arguments")
)

var crcTable = crc8.MakeTable(crc8.CRC8)

type Runner struct {
	Ctrl *flash.Controller
	Sim  *sim.Flash
	Dev  *layout.Device
	Out  io.Writer

	size flash.ProgramSize
}

// New returns a Runner with a freshly reset simulated device. Output of the
// commands is written to out.
func New(dev *layout.Device, out io.Writer) *Runner {
	s := sim.New(dev)
	return &Runner{
		Ctrl: flash.New(s.Base()),
		Sim:  s,
		Dev:  dev,
		Out:  out,
	}
}

func (r *Runner) Close() {
	r.Sim.Close()
}

// Run executes all commands read from in. It stops at the first failing
// command.
func (r *Runner) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := shellwords.Split(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		if err := r.Exec(args); err != nil {
			return fmt.Errorf("line %d: %s: %w", n, args[0], err)
		}
	}
	return scanner.Err()
}

// Exec executes a single command.
func (r *Runner) Exec(args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return ErrUnknownCommand
	}
	if len(args)-1 != cmd.nargs {
		return ErrUsage
	}
	return cmd.fn(r, args[1:])
}

type command struct {
	nargs int
	fn    func(r *Runner, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"unlock":     {0, func(r *Runner, _ []string) error { return r.Ctrl.Unlock() }},
		"lock":       {0, func(r *Runner, _ []string) error { return r.Ctrl.Lock() }},
		"optunlock":  {0, func(r *Runner, _ []string) error { return r.Ctrl.OptionUnlock() }},
		"optlock":    {0, func(r *Runner, _ []string) error { return r.Ctrl.OptionLock() }},
		"waitstates": {2, (*Runner).waitStates},
		"erase":      {2, (*Runner).erase},
		"program":    {1, (*Runner).program},
		"endprogram": {0, func(r *Runner, _ []string) error { return r.Ctrl.DisableProgramming() }},
		"write":      {2, (*Runner).write},
		"load":       {1, (*Runner).load},
		"read":       {2, (*Runner).read},
		"crc":        {2, (*Runner).crc},
		"bor":        {1, (*Runner).bor},
		"protect":    {1, (*Runner).protect},
		"busy":       {1, (*Runner).busy},
		"stall":      {1, (*Runner).stall},
		"timeout":    {1, (*Runner).timeout},
		"regs":       {0, (*Runner).regs},
		"status":     {0, (*Runner).status},
	}
}

func parseUint(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUsage, s)
	}
	return v, nil
}

func ParseProgramSize(s string) (flash.ProgramSize, error) {
	for size := flash.X8; size <= flash.X64; size++ {
		if size.String() == s {
			return size, nil
		}
	}
	return 0, fmt.Errorf("%w: program size %q", ErrUsage, s)
}

func (r *Runner) waitStates(args []string) error {
	voltage, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUsage, args[0])
	}
	hclk, err := parseUint(args[1], 32)
	if err != nil {
		return err
	}
	n := r.Ctrl.ConfigureWaitStates(float32(voltage), int(hclk))
	fmt.Fprintf(r.Out, "wait states: %d\n", n)
	return nil
}

func (r *Runner) erase(args []string) error {
	n, err := parseUint(args[1], 8)
	if err != nil {
		return err
	}
	switch args[0] {
	case "sector":
		return r.Ctrl.SectorErase(int(n))
	case "bank":
		return r.Ctrl.MassErase(flash.Bank(n))
	}
	return fmt.Errorf("%w: erase target %q", ErrUsage, args[0])
}

func (r *Runner) program(args []string) error {
	size, err := ParseProgramSize(args[0])
	if err != nil {
		return err
	}
	if err := r.Ctrl.EnableProgramming(size); err != nil {
		return err
	}
	r.size = size
	return nil
}

// store writes p with the current program size, checking the status after
// each write like the CPU's memory write routine must.
func (r *Runner) store(addr uint32, p []byte) error {
	width := r.size.Bytes()
	if len(p)%width != 0 {
		return fmt.Errorf("%w: %d bytes not a multiple of %v", ErrUsage, len(p), r.size)
	}
	for i := 0; i < len(p); i += width {
		if err := r.Sim.Program(addr+uint32(i), p[i:i+width]); err != nil {
			return err
		}
		if err := r.Ctrl.Check(); err != nil {
			return fmt.Errorf("write %#08x: %w", addr+uint32(i), err)
		}
	}
	return nil
}

func (r *Runner) write(args []string) error {
	addr, err := parseUint(args[0], 32)
	if err != nil {
		return err
	}
	data, err := hex.DecodeString(args[1])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return r.store(uint32(addr), data)
}

func (r *Runner) load(args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	p, err := plan.Load(f, r.Dev)
	if err != nil {
		return err
	}
	if err := p.Erase(r.Ctrl); err != nil {
		return err
	}
	if err := r.Ctrl.EnableProgramming(flash.X8); err != nil {
		return err
	}
	r.size = flash.X8
	for _, seg := range p.Segments {
		if err := r.store(seg.Address, seg.Data); err != nil {
			r.Ctrl.DisableProgramming()
			return err
		}
	}
	if err := r.Ctrl.DisableProgramming(); err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "loaded %d bytes into %d sectors\n", p.Size(), len(p.Steps))
	return nil
}

func (r *Runner) readRange(args []string) ([]byte, uint32, error) {
	addr, err := parseUint(args[0], 32)
	if err != nil {
		return nil, 0, err
	}
	n, err := parseUint(args[1], 32)
	if err != nil {
		return nil, 0, err
	}
	if addr < uint64(r.Dev.Base) || addr+n > uint64(r.Dev.End()) {
		return nil, 0, fmt.Errorf("%w: %#08x+%d", sim.ErrBusFault, addr, n)
	}
	p := make([]byte, n)
	if _, err := r.Sim.ReadAt(p, int64(addr)); err != nil {
		return nil, 0, err
	}
	return p, uint32(addr), nil
}

func (r *Runner) read(args []string) error {
	p, addr, err := r.readRange(args)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "%#08x:\n%s", addr, hex.Dump(p))
	return nil
}

func (r *Runner) crc(args []string) error {
	p, addr, err := r.readRange(args)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "crc8 %#08x+%d: %#02x\n", addr, len(p), crc8.Checksum(p, crcTable))
	return nil
}

func (r *Runner) bor(args []string) error {
	levels := map[string]flash.BORLevel{
		"off": flash.BOROff,
		"1":   flash.BORLevel1,
		"2":   flash.BORLevel2,
		"3":   flash.BORLevel3,
	}
	l, ok := levels[args[0]]
	if !ok {
		return fmt.Errorf("%w: bor level %q", ErrUsage, args[0])
	}
	return r.Ctrl.SetBOR(l)
}

func (r *Runner) protect(args []string) error {
	n, err := parseUint(args[0], 8)
	if err != nil {
		return err
	}
	if int(n) >= len(r.Dev.Sectors) {
		return fmt.Errorf("%w: no sector %d", ErrUsage, n)
	}
	r.Sim.Protect(int(n))
	return nil
}

func (r *Runner) busy(args []string) error {
	n, err := parseUint(args[0], 16)
	if err != nil {
		return err
	}
	r.Sim.Latency = int(n)
	return nil
}

func (r *Runner) stall(args []string) error {
	switch args[0] {
	case "on":
		r.Sim.Stall(true)
	case "off":
		r.Sim.Stall(false)
	default:
		return fmt.Errorf("%w: %q", ErrUsage, args[0])
	}
	return nil
}

func (r *Runner) timeout(args []string) error {
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	r.Ctrl.Timeout = d
	return nil
}

func (r *Runner) regs(_ []string) error {
	regs := r.Sim.Registers()
	fmt.Fprintf(r.Out, "ACR=%#08x SR=%#08x CR=%#08x OPTCR=%#08x OPTCR1=%#08x\n",
		regs.ACR, regs.SR, regs.CR, regs.OPTCR, regs.OPTCR1)
	return nil
}

func (r *Runner) status(_ []string) error {
	c := r.Ctrl
	fmt.Fprintf(r.Out, "locked=%v optlocked=%v waitstates=%d bor=%v status=%#x\n",
		c.Locked(), c.OptionLocked(), c.WaitStates(), c.BOR(), uint32(c.Status()))
	return nil
}
