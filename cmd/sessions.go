/*
Copyright © 2025 All Binary AB
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/allbin/atcmd/internal/transcript"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions [session-id]",
	Short: "List or dump recorded console sessions",
	Long: `List recorded console sessions, or dump the traffic of one session.

Sessions are recorded when the console runs with --record. Without an
argument this lists all recorded sessions; with a session id it prints
that session's full transcript.

Examples:
  atcmd sessions
  atcmd sessions 1b4e28ba-2fa1-11d2-883f-0016d3cca427`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dbPath, _ := cmd.Flags().GetString("db")
		if !cmd.Flags().Changed("db") {
			dbPath = viper.GetString("transcript.path")
		}

		ctx := context.Background()
		store, err := transcript.Open(ctx, dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening transcript store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		if len(args) == 0 {
			listSessions(ctx, store)
			return
		}
		dumpSession(ctx, store, args[0])
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)

	sessionsCmd.Flags().String("db", "", "Transcript database path (default from config)")
}

func listSessions(ctx context.Context, store *transcript.Store) {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing sessions: %v\n", err)
		os.Exit(1)
	}

	if len(sessions) == 0 {
		fmt.Println("No recorded sessions")
		return
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-36s  %-14s  %-8s  %-19s  %s",
		"Session", "Device", "Baud", "Started", "Ended")))

	for _, s := range sessions {
		ended := "open"
		if s.EndedAt != nil {
			ended = s.EndedAt.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%-36s  %-14s  %-8d  %-19s  %s\n",
			s.ID, s.Device, s.BaudRate,
			s.StartedAt.Local().Format("2006-01-02 15:04:05"), ended)
	}
}

func dumpSession(ctx context.Context, store *transcript.Store, sessionID string) {
	entries, err := store.Entries(ctx, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading session: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("Session has no recorded traffic")
		return
	}

	for _, e := range entries {
		fmt.Printf("[%s] %-6s %q\n",
			e.At.Local().Format(time.StampMilli), e.Direction, e.Payload)
	}
}
