//go:build !noos

package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/clktmr/f4flash/tools/script"
)

var simCmd = &cobra.Command{
	Use:   "sim [script]",
	Short: "Run a command script against a simulated flash interface",
	Long: `Run a command script against a simulated flash interface. The script is
read from stdin if no file is given. See package script for the commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := device()
		if err != nil {
			return err
		}
		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		r := script.New(dev, cmd.OutOrStdout())
		defer r.Close()
		return r.Run(in)
	},
}

func init() {
	rootCmd.AddCommand(simCmd)
}
