package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcinbor85/gohex"

	"github.com/clktmr/f4flash/flash"
	"github.com/clktmr/f4flash/flash/layout"
	"github.com/clktmr/f4flash/flash/plan"
	"github.com/clktmr/f4flash/tools/script"
)

func run(in string, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(in))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run("", args...)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	name = filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(name, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestWaitStates(t *testing.T) {
	tests := map[string]struct {
		args     []string
		expected string
	}{
		"2V1":          {[]string{"--voltage", "2.1", "--hclk", "21000000"}, "wait states:  1\nprogram size: x16\n"},
		"3V3":          {[]string{"--voltage", "3.3", "--hclk", "168000000"}, "wait states:  5\nprogram size: x32\n"},
		"undervoltage": {[]string{"--voltage", "1.7", "--hclk", "16000000"}, "wait states:  8\nprogram size: x8\n"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			out := execute(t, append([]string{"waitstates"}, tc.args...)...)
			if out != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, out)
			}
		})
	}
}

func TestSectors(t *testing.T) {
	out := execute(t, "sectors", "--device", "stm32f40xxe")
	if !strings.HasPrefix(out, "stm32f40xxe: ") {
		t.Fatalf("unexpected header: %q", out)
	}
	if n := strings.Count(out, "\n"); n != 2+1+8 {
		t.Fatalf("expected 8 sector rows, got output:\n%s", out)
	}
	if !strings.Contains(out, "0x08060000") {
		t.Fatalf("missing last sector:\n%s", out)
	}
}

func TestPlan(t *testing.T) {
	mem := gohex.NewMemory()
	if err := mem.AddBinary(0x0810_0000, []byte("hello, flash")); err != nil {
		t.Fatal(err)
	}
	var hex bytes.Buffer
	if err := mem.DumpIntelHex(&hex, 16); err != nil {
		t.Fatal(err)
	}
	image := writeFile(t, "fw.hex", hex.Bytes())

	tests := map[string]struct {
		args     []string
		expected []string
		err      error
	}{
		"bank2":      {[]string{"-d", "stm32f42xxi", image}, []string{"erase sector 12 (bank 2", "12 bytes in 1 sectors\n"}, nil},
		"singleBank": {[]string{"-d", "stm32f40xxg", image}, nil, plan.ErrOutOfRange},
		"device":     {[]string{"-d", "stm32f99", image}, nil, layout.ErrUnknownDevice},
		"noImage":    {[]string{"-d", "stm32f42xxi"}, nil, nil},
		"missing":    {[]string{"-d", "stm32f42xxi", "/nonexistent.hex"}, nil, os.ErrNotExist},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := run("", append([]string{"plan"}, tc.args...)...)
			if tc.expected == nil {
				if err == nil {
					t.Fatalf("expected error, got output %q", out)
				}
				if tc.err != nil && !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			for _, expected := range tc.expected {
				if !strings.Contains(out, expected) {
					t.Errorf("expected %q in output:\n%s", expected, out)
				}
			}
		})
	}
}

func TestSim(t *testing.T) {
	file := writeFile(t, "erase.txt", []byte("unlock\nerase sector 5\nlock\nstatus\n"))

	tests := map[string]struct {
		in       string
		args     []string
		expected string
		err      error
	}{
		"stdin":   {"unlock\nstatus\n", nil, "locked=false optlocked=true", nil},
		"file":    {"", []string{file}, "locked=true optlocked=true", nil},
		"failure": {"erase sector 5\n", nil, "", flash.ErrLocked},
		"unknown": {"frobnicate\n", nil, "", script.ErrUnknownCommand},
		"device":  {"", []string{"-d", "stm32f99"}, "", layout.ErrUnknownDevice},
		"tooMany": {"", []string{file, file}, "", nil},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			args := append([]string{"sim", "-d", "stm32f42xxi"}, tc.args...)
			out, err := run(tc.in, args...)
			if tc.expected == "" {
				if err == nil {
					t.Fatalf("expected error, got output %q", out)
				}
				if tc.err != nil && !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, tc.expected) {
				t.Fatalf("expected %q in output:\n%s", tc.expected, out)
			}
		})
	}
}
