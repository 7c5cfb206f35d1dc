/*
Copyright © 2025 All Binary AB
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/allbin/atcmd"
	"github.com/allbin/atcmd/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "atcmd",
	Short: "AT command console for serial modems",
	Long: `atcmd talks to AT command based modems over a serial port.

It enumerates serial devices, opens an interactive console with a
request/response transcript, sends one-shot commands, and can pull
device metadata (serial number, battery level) over adb when a
debuggable device is attached alongside the modem.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.atcmd.yaml)")
	rootCmd.PersistentFlags().String("log-file", "", "debug log file (disabled when empty)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("baud", 115200)
	viper.SetDefault("read-timeout", time.Second)
	viper.SetDefault("line-ending", "cr")
	viper.SetDefault("transcript.path", defaultTranscriptPath())
	viper.SetDefault("bridge.path", "adb")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".atcmd" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".atcmd")
	}

	viper.SetEnvPrefix("atcmd")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func defaultTranscriptPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "atcmd-transcripts.db"
	}
	return filepath.Join(home, ".local", "share", "atcmd", "transcripts.db")
}

// newLogger builds the debug logger from the log.* settings
func newLogger() (*zap.Logger, error) {
	cfg := logging.DefaultConfig()
	cfg.Path = viper.GetString("log.file")
	cfg.Level = viper.GetString("log.level")
	return logging.New(cfg)
}

func lineEndingFromName(name string) (string, error) {
	switch name {
	case "cr", "":
		return "\r", nil
	case "lf":
		return "\n", nil
	case "crlf":
		return "\r\n", nil
	default:
		return "", fmt.Errorf("unknown line ending %q (want cr, lf or crlf)", name)
	}
}

// sessionOptions turns the resolved configuration into session options
func sessionOptions(cmd *cobra.Command) ([]atcmd.Option, error) {
	baudRate, _ := cmd.Flags().GetInt("baud")
	readTimeout, _ := cmd.Flags().GetDuration("read-timeout")
	lineEndingName, _ := cmd.Flags().GetString("line-ending")
	terminator, _ := cmd.Flags().GetString("terminator")

	if !cmd.Flags().Changed("baud") {
		baudRate = viper.GetInt("baud")
	}
	if !cmd.Flags().Changed("read-timeout") {
		readTimeout = viper.GetDuration("read-timeout")
	}
	if !cmd.Flags().Changed("line-ending") {
		lineEndingName = viper.GetString("line-ending")
	}

	lineEnding, err := lineEndingFromName(lineEndingName)
	if err != nil {
		return nil, err
	}

	opts := []atcmd.Option{
		atcmd.WithBaudRate(baudRate),
		atcmd.WithReadTimeout(readTimeout),
		atcmd.WithLineEnding(lineEnding),
	}
	if terminator != "" {
		opts = append(opts, atcmd.WithResponseTerminator(terminator))
	}
	return opts, nil
}

// addSessionFlags registers the serial settings shared by commands that open a port
func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	cmd.Flags().DurationP("read-timeout", "t", time.Second, "Default response read timeout")
	cmd.Flags().String("line-ending", "cr", "Line ending appended to commands: cr, lf, crlf")
	cmd.Flags().String("terminator", "", "Stop reading early when the response contains this text")
}
