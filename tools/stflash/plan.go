package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clktmr/f4flash/flash/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan <image.hex>",
	Short: "Print the sectors to erase before programming an Intel HEX image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := device()
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		p, err := plan.Load(f, dev)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		out := cmd.OutOrStdout()
		for _, step := range p.Steps {
			fmt.Fprintf(out, "erase %v: %d bytes, crc8 %#02x\n", step.Sector, step.Bytes, step.CRC)
		}
		fmt.Fprintf(out, "%d bytes in %d sectors\n", p.Size(), len(p.Steps))
		return nil
	},
}
