package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rusocsci/bitsigo/bitsi"
	"github.com/spf13/cobra"
)

var joystickCmd = &cobra.Command{
	Use:   "joystick",
	Short: "Read the joystick angle",
	Long: `Connect to the analog joystick and print its angle. The device
streams bytes in the range 51-201 with 126 at rest. With --watch the
angle is polled until interrupted.

Examples:
  bitsi joystick
  bitsi joystick --watch --interval 100ms`,
	Run: func(cmd *cobra.Command, args []string) {
		watch, _ := cmd.Flags().GetBool("watch")
		interval, _ := cmd.Flags().GetDuration("interval")

		joy, err := bitsi.NewJoystick(deviceOpts()...)
		if joy == nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		warnHandshake(err)
		defer joy.Close()

		if !watch {
			fmt.Println(joy.X())
			return
		}
		for {
			fmt.Printf("\r%3d", joy.X())
			time.Sleep(interval)
		}
	},
}

func init() {
	joystickCmd.Flags().Bool("watch", false, "keep polling the angle")
	joystickCmd.Flags().Duration("interval", 100*time.Millisecond, "polling interval for --watch")
	rootCmd.AddCommand(joystickCmd)
}
