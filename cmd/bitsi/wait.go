package main

import (
	"fmt"
	"os"

	"github.com/rusocsci/bitsigo/bitsi"
	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for a button press",
	Long: `Connect to a buttonbox and block until a button event arrives
or --maxwait runs out. Button presses print as uppercase letters,
releases as lowercase.

Examples:
  bitsi wait
  bitsi wait --maxwait 10s --filter AB
  bitsi wait --hog`,
	Run: func(cmd *cobra.Command, args []string) {
		maxWait, _ := cmd.Flags().GetDuration("maxwait")
		filter, _ := cmd.Flags().GetString("filter")
		hog, _ := cmd.Flags().GetBool("hog")
		if maxWait <= 0 {
			maxWait = bitsi.Forever
		}

		bb, err := bitsi.NewButtonbox(deviceOpts()...)
		if bb == nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		warnHandshake(err)
		defer bb.Close()

		var events []bitsi.ButtonEvent
		if hog {
			events, err = bb.WaitButtonsHog(maxWait, filter, true)
		} else {
			events, err = bb.WaitButtons(maxWait, filter, true)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if events == nil {
			fmt.Println("no key pressed")
			return
		}
		fmt.Printf("key pressed: %s (after %.3f s)\n", events[0], events[0].Elapsed.Seconds())
	},
}

func init() {
	waitCmd.Flags().Duration("maxwait", 0, "give up after this long (0 waits forever)")
	waitCmd.Flags().String("filter", "", "react only to these characters")
	waitCmd.Flags().Bool("hog", false, "busy-poll instead of using read timeouts")
	rootCmd.AddCommand(waitCmd)
}
