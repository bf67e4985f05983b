package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rusocsci/bitsigo/bitsi"
	"github.com/spf13/cobra"
)

var markerCmd = &cobra.Command{
	Use:   "marker <value>",
	Short: "Send a marker byte to an extended buttonbox",
	Long: `Send a marker byte (0-255) on the extended buttonbox's marker
channel, which is wired to external recording equipment and independent
of the LEDs.

Example:
  bitsi marker 128`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		v, err := strconv.ParseUint(args[0], 0, 8)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: marker value %q must be a byte\n", args[0])
			os.Exit(1)
		}

		ex, err := bitsi.NewExtended(deviceOpts()...)
		if ex == nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		warnHandshake(err)
		defer ex.Close()
		exitOn(ex.SendMarkerRaw(byte(v)))
	},
}

func init() {
	rootCmd.AddCommand(markerCmd)
}
