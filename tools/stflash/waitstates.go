package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clktmr/f4flash/flash"
)

var (
	voltage float32
	hclk    int

	waitStatesCmd = &cobra.Command{
		Use:   "waitstates",
		Short: "Print the flash latency for a supply voltage and core clock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if hclk <= 0 {
				return fmt.Errorf("invalid core clock: %d Hz", hclk)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wait states:  %d\n", flash.WaitStatesFor(voltage, hclk))
			fmt.Fprintf(out, "program size: %v\n", flash.ProgramSizeFor(voltage))
			return nil
		},
	}
)

func init() {
	waitStatesCmd.Flags().Float32VarP(&voltage, "voltage", "v", 3.3, "supply voltage in V")
	waitStatesCmd.Flags().IntVar(&hclk, "hclk", 0, "core clock in Hz")
	if err := waitStatesCmd.MarkFlagRequired("hclk"); err != nil {
		panic(err)
	}
}
