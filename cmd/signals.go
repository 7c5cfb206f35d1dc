/*
Copyright © 2025 All Binary AB
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/atcmd"
	"github.com/spf13/cobra"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals <port>",
	Short: "Display current modem signal states",
	Long: `Display the current state of all modem control signals.

Shows the state of CTS, DSR, RI, DCD, RTS, and DTR signals for the specified port.
The --rts and --dtr flags set the output signals before reading.

Examples:
  atcmd signals /dev/ttyUSB0
  atcmd signals /dev/ttyUSB0 --rts=true --dtr=false

Signal meanings:
  CTS - Clear To Send (input)
  DSR - Data Set Ready (input)
  RI  - Ring Indicator (input)
  DCD - Data Carrier Detect (input)
  RTS - Request To Send (output)
  DTR - Data Terminal Ready (output)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		session, err := atcmd.Open(portPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer session.Close()

		if cmd.Flags().Changed("rts") {
			rts, _ := cmd.Flags().GetBool("rts")
			if err := session.SetRTS(rts); err != nil {
				fmt.Fprintf(os.Stderr, "Error setting RTS: %v\n", err)
				os.Exit(1)
			}
		}
		if cmd.Flags().Changed("dtr") {
			dtr, _ := cmd.Flags().GetBool("dtr")
			if err := session.SetDTR(dtr); err != nil {
				fmt.Fprintf(os.Stderr, "Error setting DTR: %v\n", err)
				os.Exit(1)
			}
		}

		signals, err := session.ModemSignals()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading modem signals: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Modem Signals for %s:\n\n", portPath)
		fmt.Printf("  CTS (Clear To Send):       %s\n", formatSignalState(signals.CTS))
		fmt.Printf("  DSR (Data Set Ready):      %s\n", formatSignalState(signals.DSR))
		fmt.Printf("  RI  (Ring Indicator):      %s\n", formatSignalState(signals.RI))
		fmt.Printf("  DCD (Data Carrier Detect): %s\n", formatSignalState(signals.DCD))
		fmt.Printf("  RTS (Request To Send):     %s\n", formatSignalState(signals.RTS))
		fmt.Printf("  DTR (Data Terminal Ready): %s\n", formatSignalState(signals.DTR))
	},
}

func formatSignalState(state bool) string {
	if state {
		return "HIGH"
	}
	return "LOW"
}

func init() {
	rootCmd.AddCommand(signalsCmd)

	signalsCmd.Flags().Bool("rts", false, "Set RTS before reading signal states")
	signalsCmd.Flags().Bool("dtr", false, "Set DTR before reading signal states")
}
