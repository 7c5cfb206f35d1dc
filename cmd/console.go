/*
Copyright © 2025 All Binary AB
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/allbin/atcmd"
	"github.com/allbin/atcmd/internal/transcript"
	"github.com/allbin/atcmd/internal/tui/components"
	"github.com/allbin/atcmd/internal/tui/keys"
	"github.com/allbin/atcmd/internal/tui/models"
	"github.com/allbin/atcmd/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console [port]",
	Short: "Open an interactive AT command console",
	Long: `Open an interactive console against an AT command modem.

Without a port argument, a picker lists the available serial ports.
The console uses vim-like modes: normal mode for navigation and
insert mode for typing commands. One command is in flight at a time;
the response appears in the transcript when it completes.

Device metadata (serial number, battery) is fetched over adb in the
background and shown in the status bar when available.

Example usage:
  atcmd console
  atcmd console /dev/ttyUSB0
  atcmd console /dev/ttyUSB0 --baud 9600 --record`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var portPath string
		if len(args) == 1 {
			portPath = args[0]
		} else {
			picked, err := pickPort()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if picked == "" {
				return
			}
			portPath = picked
		}

		opts, err := sessionOptions(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		record, _ := cmd.Flags().GetBool("record")
		bridgePath, _ := cmd.Flags().GetString("bridge-path")
		if !cmd.Flags().Changed("bridge-path") {
			bridgePath = viper.GetString("bridge.path")
		}

		if err := runConsoleTUI(portPath, record, bridgePath, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	addSessionFlags(consoleCmd)
	consoleCmd.Flags().Bool("record", false, "Record the session transcript to the local database")
	consoleCmd.Flags().String("bridge-path", "adb", "Path to the adb binary")
}

// pickPort runs the port picker and returns the chosen device path,
// or "" when the user cancelled
func pickPort() (string, error) {
	ports, err := atcmd.ListPorts()
	if err != nil {
		return "", fmt.Errorf("listing ports: %w", err)
	}
	if len(ports) == 0 {
		return "", fmt.Errorf("no serial ports found")
	}

	infos := make([]atcmd.PortInfo, 0, len(ports))
	for _, port := range ports {
		info, err := atcmd.GetPortInfo(port)
		if err != nil {
			continue
		}
		infos = append(infos, *info)
	}

	picker := components.NewPortPicker(infos)
	if _, err := tea.NewProgram(picker, tea.WithAltScreen()).Run(); err != nil {
		return "", err
	}
	return picker.Selected(), nil
}

// recorder wraps the transcript store; a nil recorder drops everything
type recorder struct {
	store     *transcript.Store
	sessionID string
	ctx       context.Context
	logger    *zap.Logger
}

func (r *recorder) append(direction transcript.Direction, payload string) {
	if r == nil {
		return
	}
	if err := r.store.Append(r.ctx, r.sessionID, direction, payload); err != nil {
		r.logger.Warn("transcript append failed", zap.Error(err))
	}
}

// close stamps the session end. The console context is already cancelled
// by the time this runs, so it uses its own deadline.
func (r *recorder) close() {
	if r == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.EndSession(ctx, r.sessionID); err != nil {
		r.logger.Warn("transcript end failed", zap.Error(err))
	}
	r.store.Close()
}

// consoleModel represents the Bubble Tea model for the console command
type consoleModel struct {
	*models.ConsoleModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.ConsoleKeys
	bridge    *atcmd.Bridge
	rec       *recorder
	logger    *zap.Logger
}

func runConsoleTUI(portPath string, record bool, bridgePath string, opts ...atcmd.Option) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Resolve the configuration once so the status bar can show it
	config := atcmd.DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return err
		}
	}

	connInfo := &components.ConnectionInfo{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
		StopBits: config.StopBits,
		Parity:   config.Parity,
	}

	consoleState := models.NewConsoleModel(portPath)

	var rec *recorder
	if record {
		store, err := transcript.Open(consoleState.Context(), viper.GetString("transcript.path"))
		if err != nil {
			return fmt.Errorf("opening transcript store: %w", err)
		}
		sessionID, err := store.BeginSession(consoleState.Context(), portPath, config.BaudRate)
		if err != nil {
			store.Close()
			return fmt.Errorf("starting transcript session: %w", err)
		}
		rec = &recorder{store: store, sessionID: sessionID, ctx: consoleState.Context(), logger: logger}
	}

	m := consoleModel{
		ConsoleModel: consoleState,
		terminal:     components.NewTerminal(0, 0), // Sized by the first WindowSizeMsg
		statusBar:    components.NewStatusBar(portPath),
		input:        components.NewInput("Type an AT command and press Enter..."),
		help:         help.New(),
		keys:         keys.NewConsoleKeys(),
		bridge:       atcmd.NewBridgeWithPath(bridgePath),
		rec:          rec,
		logger:       logger,
	}
	m.statusBar.SetConnecting()
	m.statusBar.SetConnectionInfo(connInfo)

	p := tea.NewProgram(&m, tea.WithAltScreen())

	// Open the serial session in the background
	go func() {
		session, err := atcmd.Open(portPath, opts...)
		if err != nil {
			logger.Error("open failed", zap.String("device", portPath), zap.Error(err))
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}

		m.SetSession(session)
		logger.Info("connected", zap.String("device", portPath), zap.Int("baud", config.BaudRate))
		p.Send(models.ConnectionStatusMsg{Connected: true})
	}()

	// Fetch device metadata over the bridge; failures are soft
	go func() {
		p.Send(queryDeviceInfo(m.Context(), m.bridge))
	}()

	_, err = p.Run()

	m.Cleanup()
	m.rec.close()
	return err
}

func queryDeviceInfo(ctx context.Context, bridge *atcmd.Bridge) models.DeviceInfoMsg {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	info, err := bridge.QueryDeviceInfo(queryCtx)
	if err != nil {
		return models.DeviceInfoMsg{Error: err}
	}
	return models.DeviceInfoMsg{Info: info}
}

func (m *consoleModel) Init() tea.Cmd {
	return nil
}

// transact runs one command against the session off the UI goroutine
func (m *consoleModel) transact(command string) tea.Cmd {
	session := m.Session()
	return func() tea.Msg {
		response, err := session.Transact(command, 0)
		return models.ResponseMsg{Command: command, Response: response, Error: err}
	}
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Input area (bordered) plus the single line status bar
		inputHeight := 3
		statusBarHeight := 1
		m.terminal.SetSize(msg.Width, msg.Height-inputHeight-statusBarHeight)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
			m.addEntry(components.EntryMsg{
				Timestamp: time.Now(),
				Text:      fmt.Sprintf("connection failed: %v", msg.Error),
				Dir:       components.DirectionStatus,
			})
		} else {
			m.statusBar.SetConnected()
			m.addEntry(components.EntryMsg{
				Timestamp: time.Now(),
				Text:      "connected",
				Dir:       components.DirectionStatus,
			})
		}

	case models.DeviceInfoMsg:
		if msg.Error == nil {
			m.SetDeviceInfo(msg.Info)
			m.statusBar.SetDeviceInfo(msg.Info)
		} else {
			m.logger.Debug("device query failed", zap.Error(msg.Error))
		}

	case models.ResponseMsg:
		m.SetBusy(false)
		if msg.Error != nil {
			m.SetLastEntryStatus("ERROR")
			m.statusBar.SetDisconnected(msg.Error)
			m.SetConnected(false)
			m.addEntry(components.EntryMsg{
				Timestamp: time.Now(),
				Text:      fmt.Sprintf("transaction failed: %v", msg.Error),
				Dir:       components.DirectionStatus,
			})
			m.rec.append(transcript.DirectionStatus, fmt.Sprintf("error: %v", msg.Error))
			m.logger.Error("transact failed", zap.String("command", msg.Command), zap.Error(msg.Error))
		} else {
			m.SetLastEntryStatus("SENT")
			text := msg.Response
			if text == "" {
				text = "(no response)"
			}
			m.addEntry(components.EntryMsg{
				Timestamp: time.Now(),
				Text:      text,
				Dir:       components.DirectionRX,
			})
			m.rec.append(transcript.DirectionRX, msg.Response)
		}
		m.terminal.Refresh(m.Entries())

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Enter):
				command := m.input.Value()
				if command == "" || !m.IsConnected() || m.Busy() {
					return m, tea.Batch(cmds...)
				}

				m.SetBusy(true)
				m.addEntry(components.EntryMsg{
					Timestamp: time.Now(),
					Text:      command,
					Dir:       components.DirectionTX,
					Status:    "PENDING",
				})
				m.rec.append(transcript.DirectionTX, command)
				m.logger.Info("send", zap.String("command", command))

				cmds = append(cmds, m.transact(command))

				m.input.AddToHistory(command)
				m.input.SetValue("")
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Up):
				m.input.NavigateHistoryUp()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Down):
				m.input.NavigateHistoryDown()
				return m, tea.Batch(cmds...)
			}
		} else {
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit

			case key.Matches(msg, m.keys.InsertMode):
				m.SetInputMode(models.InputModeInsert)
				m.input.Focus()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Clear):
				m.ClearEntries()
				m.terminal.Clear()

			case key.Matches(msg, m.keys.ToggleTimestamps):
				m.terminal.ToggleTimestamps()
				m.terminal.Refresh(m.Entries())

			case key.Matches(msg, m.keys.RefreshDevice):
				bridge := m.bridge
				ctx := m.Context()
				cmds = append(cmds, func() tea.Msg {
					return queryDeviceInfo(ctx, bridge)
				})

			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll

			case key.Matches(msg, m.keys.Up):
				m.terminal.ScrollUp(1)

			case key.Matches(msg, m.keys.Down):
				m.terminal.ScrollDown(1)
			}
		}
	}

	// Only the input consumes remaining messages, and only in insert mode
	var cmd tea.Cmd
	if m.IsInInsertMode() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd = m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// addEntry records an entry in both the model and the viewport
func (m *consoleModel) addEntry(entry components.EntryMsg) {
	m.AddEntry(entry)
	if m.IsReady() {
		m.terminal.AddEntry(entry)
	}
}

func (m *consoleModel) View() string {
	var content string
	if m.IsReady() {
		content = m.terminal.View()
	} else {
		content = "Initializing..."
	}

	input := m.input.ViewWithMode(m.IsInInsertMode())

	statusBar := m.statusBar.View(
		m.InputMode().String(),
		m.IsConnected(),
		time.Now().Format("15:04:05"),
	)

	contentWithBorder := styles.ContentBorderStyle.Render(content)

	if m.help.ShowAll {
		helpView := m.help.View(m.keys)
		return lipgloss.JoinVertical(lipgloss.Left, contentWithBorder, helpView, input, statusBar)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		input,
		statusBar,
	)
}
