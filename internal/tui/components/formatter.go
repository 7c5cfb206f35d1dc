package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/atcmd/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

// Direction of a console entry
type Direction int

const (
	DirectionTX Direction = iota
	DirectionRX
	DirectionStatus
)

// EntryMsg is one line in the console transcript
type EntryMsg struct {
	Timestamp time.Time
	Text      string
	Dir       Direction
	Status    string // For TX entries: "PENDING", "SENT", "ERROR", empty otherwise
}

// Formatter renders transcript entries for the viewport
type Formatter struct {
	showTimestamps bool
}

func NewFormatter(showTimestamps bool) *Formatter {
	return &Formatter{showTimestamps: showTimestamps}
}

func (f *Formatter) ToggleTimestamps() {
	f.showTimestamps = !f.showTimestamps
}

func (f *Formatter) ShowTimestamps() bool {
	return f.showTimestamps
}

func (f *Formatter) FormatEntry(msg EntryMsg) string {
	var indicator string
	switch msg.Dir {
	case DirectionTX:
		var txColor lipgloss.Color
		var statusText string
		switch msg.Status {
		case "PENDING":
			txColor = colors.Yellow
			statusText = "TX ○"
		case "SENT":
			txColor = colors.Green
			statusText = "TX ✓"
		case "ERROR":
			txColor = colors.Red
			statusText = "TX ✗"
		default:
			txColor = colors.Peach
			statusText = "TX"
		}
		indicator = lipgloss.NewStyle().
			Foreground(txColor).
			Bold(true).
			Render("↗ " + statusText)
	case DirectionRX:
		indicator = lipgloss.NewStyle().
			Foreground(colors.Sky).
			Bold(true).
			Render("↙ RX")
	case DirectionStatus:
		indicator = lipgloss.NewStyle().
			Foreground(colors.Overlay0).
			Bold(true).
			Render("· --")
	}

	text := sanitize(msg.Text)

	if !f.showTimestamps {
		return fmt.Sprintf("%s %s", indicator, text)
	}

	timestampStyled := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(fmt.Sprintf("[%s]", msg.Timestamp.Format("15:04:05.000")))

	return fmt.Sprintf("%s %s %s", timestampStyled, indicator, text)
}

func (f *Formatter) FormatEntries(entries []EntryMsg) []string {
	formatted := make([]string, len(entries))
	for i, msg := range entries {
		formatted[i] = f.FormatEntry(msg)
	}
	return formatted
}

// sanitize keeps the output free of terminal control sequences. CR and LF
// collapse to a visible separator so a multi-line response stays one entry.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteString("␤")
		case r >= 32 && r <= 126:
			b.WriteRune(r)
		default:
			b.WriteByte('.')
		}
	}
	return b.String()
}
