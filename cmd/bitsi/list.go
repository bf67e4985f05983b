package main

import (
	"fmt"
	"os"

	"github.com/rusocsci/bitsigo/bitsi"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List attached USB serial devices",
	Long: `List the USB serial devices attached to this machine, most
recently attached first. Buttonboxes, joysticks and unrelated USB
serial adapters all show up here; connect to one to find out what it
is.`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := bitsi.DefaultEnumerator().Ports()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}
		if len(ports) == 0 {
			fmt.Println("No USB serial devices found")
			return
		}
		for i, p := range ports {
			fmt.Printf("%d: %s\n", i, p)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
