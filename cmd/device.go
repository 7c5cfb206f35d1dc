/*
Copyright © 2025 All Binary AB
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allbin/atcmd"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// deviceCmd represents the device command
var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Show metadata for the attached debuggable device",
	Long: `Query the attached device over adb and show its metadata.

When the modem sits inside a debuggable device (a phone or a test rig
exposing adb), this reads the device serial number and battery level.
The query is independent of any serial session: a missing adb tool or
absent device prints a notice, it is not an error.

Examples:
  atcmd device
  atcmd device --bridge-path /opt/platform-tools/adb`,
	Run: func(cmd *cobra.Command, args []string) {
		bridgePath, _ := cmd.Flags().GetString("bridge-path")
		if !cmd.Flags().Changed("bridge-path") {
			bridgePath = viper.GetString("bridge.path")
		}
		queryTimeout, _ := cmd.Flags().GetDuration("timeout")

		bridge := atcmd.NewBridgeWithPath(bridgePath)

		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		info, err := bridge.QueryDeviceInfo(ctx)
		switch {
		case errors.Is(err, atcmd.ErrBridgeUnavailable):
			fmt.Println("Device bridge unavailable (adb not found)")
			return
		case errors.Is(err, atcmd.ErrNoBridgeDevice):
			fmt.Println("No debuggable device attached")
			return
		case err != nil:
			fmt.Printf("Device query failed: %v\n", err)
			return
		}

		fmt.Println("Device Information:")
		fmt.Printf("  Serial:  %s\n", info.SerialNumber)
		fmt.Printf("  Battery: %d%%\n", info.BatteryLevel)
	},
}

func init() {
	rootCmd.AddCommand(deviceCmd)

	deviceCmd.Flags().String("bridge-path", "adb", "Path to the adb binary")
	deviceCmd.Flags().Duration("timeout", 10*time.Second, "Timeout for the device query")
}
