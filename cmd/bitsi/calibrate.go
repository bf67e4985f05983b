package main

import (
	"fmt"
	"os"

	"github.com/rusocsci/bitsigo/bitsi"
	"github.com/spf13/cobra"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate <sound|voice>",
	Short: "Calibrate sound or voice detection",
	Long: `Calibrate the extended buttonbox's sound or voice detection
level against the ambient noise. Keep silent during the one second the
calibration takes, then wait for the detection event.

Example:
  bitsi calibrate voice`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ex, err := bitsi.NewExtended(deviceOpts()...)
		if ex == nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		warnHandshake(err)
		defer ex.Close()

		switch args[0] {
		case "sound":
			err = ex.CalibrateSound()
		case "voice":
			err = ex.CalibrateVoice()
		default:
			fmt.Fprintf(os.Stderr, "Error: expected sound or voice, got %q\n", args[0])
			os.Exit(1)
		}
		exitOn(err)
		fmt.Printf("%s calibrated\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(calibrateCmd)
}
