/*
Copyright © 2025 All Binary AB
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/allbin/atcmd"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [command] <port>",
	Short: "Send a single AT command and print the response",
	Long: `Send one AT command to a serial port and print whatever the device
answers within the response timeout.

The command can be provided as:
- Command line argument: atcmd send "AT+CSQ" /dev/ttyUSB0
- From stdin (pipe): echo "ATI" | atcmd send /dev/ttyUSB0
- Interactive mode: atcmd send /dev/ttyUSB0 (prompts for input)

Commands go out exactly as typed, with the configured line ending
appended. The response is read until the timeout expires, or until the
--terminator text appears when one is set.

Example usage:
  atcmd send "ATI" /dev/ttyUSB0
  atcmd send "AT+GMR" /dev/ttyUSB0 --baud 9600
  atcmd send "AT+CSQ" /dev/ttyUSB0 --terminator "OK" --response-timeout 3s`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var command string
		var portPath string

		// Either "send command port" or "send port"
		if len(args) == 1 {
			portPath = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				// No pipe input, use interactive mode
				command = promptForCommand()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
					os.Exit(1)
				}
				command = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			command = args[0]
			portPath = args[1]
		}

		opts, err := sessionOptions(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		responseTimeout, _ := cmd.Flags().GetDuration("response-timeout")

		if err := sendCommand(portPath, command, responseTimeout, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	addSessionFlags(sendCmd)
	sendCmd.Flags().Duration("response-timeout", 0, "How long to wait for the response (0 uses --read-timeout)")
}

func promptForCommand() string {
	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	fmt.Print(promptStyle.Render("Enter AT command: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

func sendCommand(portPath, command string, responseTimeout time.Duration, opts ...atcmd.Option) error {
	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), portPath)

	session, err := atcmd.Open(portPath, opts...)
	if err != nil {
		logger.Error("open failed", zap.String("device", portPath), zap.Error(err))
		return fmt.Errorf("%s %v", errorStyle.Render("✗"), err)
	}
	defer session.Close()

	fmt.Printf("%s Connected successfully\n", successStyle.Render("✓"))
	fmt.Printf("%s Sending %q...\n", infoStyle.Render("📤"), command)

	logger.Info("send", zap.String("device", portPath), zap.String("command", command))

	response, err := session.Transact(command, responseTimeout)
	if err != nil {
		logger.Error("transact failed", zap.String("device", portPath), zap.Error(err))
		return fmt.Errorf("%s %v", errorStyle.Render("✗"), err)
	}

	if response == "" {
		fmt.Printf("%s No response within timeout\n", errorStyle.Render("∅"))
		return nil
	}

	fmt.Printf("%s Response:\n", successStyle.Render("✓"))
	for _, line := range strings.FieldsFunc(response, func(r rune) bool { return r == '\r' || r == '\n' }) {
		fmt.Printf("  %s\n", line)
	}

	return nil
}
