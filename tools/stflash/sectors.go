package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "Print the sector layout of the device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := device()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n\n", dev.Name, dev.Description)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "SECTOR\tBANK\tADDRESS\tSIZE\t")
		for _, s := range dev.Sectors {
			fmt.Fprintf(w, "%d\t%d\t%#08x\t%dK\t\n", s.Index, s.Bank, s.Addr, s.Size>>10)
		}
		return w.Flush()
	},
}
