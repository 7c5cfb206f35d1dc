package components

import (
	"fmt"

	"github.com/allbin/atcmd"
	"github.com/allbin/atcmd/internal/tui/colors"
	"github.com/allbin/atcmd/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

type ConnectionInfo struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   atcmd.Parity
}

type StatusBar struct {
	portPath       string
	status         string
	err            error
	width          int
	connectionInfo *ConnectionInfo
	deviceInfo     *atcmd.DeviceInfo
}

func NewStatusBar(portPath string) *StatusBar {
	return &StatusBar{
		portPath: portPath,
		status:   "Initializing...",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnectionInfo(info *ConnectionInfo) {
	sb.connectionInfo = info
}

func (sb *StatusBar) SetDeviceInfo(info *atcmd.DeviceInfo) {
	sb.deviceInfo = info
}

func (sb *StatusBar) SetConnecting() {
	sb.status = "Connecting..."
	sb.err = nil
}

func (sb *StatusBar) SetConnected() {
	sb.status = "Connected"
	sb.err = nil
}

func (sb *StatusBar) SetDisconnected(err error) {
	if err != nil {
		sb.status = fmt.Sprintf("Connection failed: %v", err)
		sb.err = err
	} else {
		sb.status = "Disconnected"
		sb.err = nil
	}
}

func parityToString(p atcmd.Parity) string {
	switch p {
	case atcmd.ParityEven:
		return "E"
	case atcmd.ParityOdd:
		return "O"
	default:
		return "N"
	}
}

func (sb *StatusBar) ViewAsHeader() string {
	title := styles.TitleStyle.Render(sb.portPath)

	var connectionInfo string
	if sb.connectionInfo != nil {
		connectionInfo = fmt.Sprintf(" | %d baud, %d%s%d",
			sb.connectionInfo.BaudRate,
			sb.connectionInfo.DataBits,
			parityToString(sb.connectionInfo.Parity),
			sb.connectionInfo.StopBits)
	}

	connInfoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Faint(true)

	return lipgloss.JoinHorizontal(lipgloss.Left, title, connInfoStyle.Render(connectionInfo))
}

// View renders the full-width status bar: mode, port, connection indicator,
// line settings, bridge device info and the clock.
func (sb *StatusBar) View(inputMode string, connected bool, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	// Mode indicator, nvim style
	var modeStyle lipgloss.Style
	var modeText string
	if inputMode == "INSERT" {
		modeStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Green).
			Bold(true).
			Padding(0, 1)
		modeText = "INSERT"
	} else {
		modeStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Blue).
			Bold(true).
			Padding(0, 1)
		modeText = "NORMAL"
	}
	mode := modeStyle.Render(modeText)

	portStyle := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1)
	port := portStyle.Render(sb.portPath)

	// Single character connection indicator
	var connIndicator string
	var connStyle lipgloss.Style
	switch {
	case sb.err != nil:
		connStyle = lipgloss.NewStyle().Foreground(colors.Red)
		connIndicator = "✗"
	case connected:
		connStyle = lipgloss.NewStyle().Foreground(colors.Green)
		connIndicator = "●"
	case sb.status == "Connecting...":
		connStyle = lipgloss.NewStyle().Foreground(colors.Yellow)
		connIndicator = "○"
	default:
		connStyle = lipgloss.NewStyle().Foreground(colors.Red)
		connIndicator = "○"
	}
	connectionIndicator := connStyle.Render(connIndicator)

	var connInfo string
	if sb.connectionInfo != nil {
		connInfo = fmt.Sprintf("⚡ %d baud %d%s%d",
			sb.connectionInfo.BaudRate,
			sb.connectionInfo.DataBits,
			parityToString(sb.connectionInfo.Parity),
			sb.connectionInfo.StopBits)
	} else {
		connInfo = "⚡ serial"
	}
	connInfoStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1)
	connectionDetails := connInfoStyle.Render(connInfo)

	var deviceInfo string
	if sb.deviceInfo != nil {
		deviceInfo = fmt.Sprintf("📱 %s 🔋 %d%%", sb.deviceInfo.SerialNumber, sb.deviceInfo.BatteryLevel)
	} else {
		deviceInfo = "📱 no device"
	}
	deviceDetails := connInfoStyle.Render(deviceInfo)

	timeStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1)
	clock := timeStyle.Render(timestamp)

	dividerStyle := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1)
	divider := dividerStyle.Render("│")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, mode, port, connectionIndicator, divider)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, connectionDetails, divider, deviceDetails, divider, clock)

	leftWidth := lipgloss.Width(leftSide)
	rightWidth := lipgloss.Width(rightSide)
	spacerWidth := terminalWidth - leftWidth - rightWidth
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	statusBarStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth)

	content := lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide)
	return statusBarStyle.Render(content)
}
