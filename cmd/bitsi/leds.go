package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rusocsci/bitsigo/bitsi"
	"github.com/spf13/cobra"
)

var ledsCmd = &cobra.Command{
	Use:   "leds <pattern>",
	Short: "Set the buttonbox LEDs",
	Long: `Set the LEDs to a bit pattern given as ones and zeroes, LED 0
first. With --hold the pattern is pulsed and reset afterwards.

Examples:
  bitsi leds 10100000
  bitsi leds 11111111 --hold 1s
  bitsi leds 1 --extended`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pattern, err := parsePattern(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		hold, _ := cmd.Flags().GetDuration("hold")
		extended, _ := cmd.Flags().GetBool("extended")

		if extended {
			ex, err := bitsi.NewExtended(deviceOpts()...)
			if ex == nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			warnHandshake(err)
			defer ex.Close()
			if hold > 0 {
				err = ex.WaitLeds(pattern, hold)
			} else {
				err = ex.SetLeds(pattern)
			}
			exitOn(err)
			return
		}

		bb, err := bitsi.NewButtonbox(deviceOpts()...)
		if bb == nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		warnHandshake(err)
		defer bb.Close()
		if hold > 0 {
			err = bb.WaitLeds(pattern, hold)
		} else {
			err = bb.SetLeds(pattern)
		}
		exitOn(err)
	},
}

func parsePattern(s string) ([]bool, error) {
	pattern := make([]bool, 0, len(s))
	for _, c := range s {
		switch c {
		case '0':
			pattern = append(pattern, false)
		case '1':
			pattern = append(pattern, true)
		default:
			return nil, fmt.Errorf("pattern %q must consist of ones and zeroes", s)
		}
	}
	return pattern, nil
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	ledsCmd.Flags().Duration("hold", time.Duration(0), "pulse the pattern and reset after this long")
	ledsCmd.Flags().Bool("extended", false, "talk to an extended buttonbox")
	rootCmd.AddCommand(ledsCmd)
}
