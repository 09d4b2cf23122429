// stflash is a host tool for the STM32F4 flash driver. It computes latency
// settings, shows sector layouts, plans firmware images and runs command
// scripts against a simulated flash interface.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/clktmr/f4flash/flash/layout"
)

var (
	deviceName string

	rootCmd = &cobra.Command{
		Use:           "stflash",
		Short:         "STM32F4 embedded flash tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&deviceName, "device", "d", layout.DefaultDevice, "target device")
	rootCmd.AddCommand(waitStatesCmd, sectorsCmd, planCmd)
}

func device() (*layout.Device, error) {
	return layout.Lookup(deviceName)
}

func main() {
	log.Default().SetFlags(0)
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
