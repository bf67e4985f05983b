package main

import (
	"os"

	"github.com/rusocsci/bitsigo/bitsi"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "bitsi",
	Short: "Talk to BITSI buttonboxes and joysticks",
	Long: `bitsi drives the RuSocSci BITSI USB serial lab devices: list
attached devices, wait for button presses, set LEDs, pulse markers and
read the joystick.

The device is picked with --port, or with --index into the list of
attached USB serial adapters (0 is the most recently plugged in). Both
can also come from BITSI_PORT / BITSI_INDEX in the environment.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("port", "p", "", "serial port name, overrides --index")
	pf.IntP("index", "i", 0, "index of the USB serial device, 0 is the most recent")
	pf.BoolP("verbose", "v", false, "verbose logging")

	viper.SetEnvPrefix("bitsi")
	viper.AutomaticEnv()
	viper.BindPFlag("port", pf.Lookup("port"))
	viper.BindPFlag("index", pf.Lookup("index"))
	viper.BindPFlag("verbose", pf.Lookup("verbose"))
}

// warnHandshake reports a connection that came up without a completed
// handshake; the client is still usable, so commands carry on.
func warnHandshake(err error) {
	if err != nil {
		log.Warnf("Device connected but did not complete the handshake: %v", err)
	}
}

// deviceOpts builds the client options shared by all subcommands.
func deviceOpts() []bitsi.Option {
	opts := []bitsi.Option{bitsi.WithIndex(viper.GetInt("index"))}
	if p := viper.GetString("port"); p != "" {
		opts = append(opts, bitsi.WithPort(p))
	}
	return opts
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
