package models

import (
	"context"
	"sync"

	"github.com/allbin/atcmd"
	"github.com/allbin/atcmd/internal/tui/components"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

// ConnectionStatusMsg reports the result of the background Open
type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// ResponseMsg carries one completed command/response exchange
type ResponseMsg struct {
	Command  string
	Response string
	Error    error
}

// DeviceInfoMsg carries the result of a bridge query; Error is soft and
// only affects the status bar
type DeviceInfoMsg struct {
	Info  *atcmd.DeviceInfo
	Error error
}

// ConsoleModel is the shared state behind the interactive console
type ConsoleModel struct {
	device string

	session    *atcmd.Session
	deviceInfo *atcmd.DeviceInfo

	connected bool
	busy      bool // one transaction in flight at a time
	entries   []components.EntryMsg
	err       error
	ready     bool

	inputMode InputMode

	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewConsoleModel(device string) *ConsoleModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &ConsoleModel{
		device:    device,
		entries:   make([]components.EntryMsg, 0),
		inputMode: InputModeNormal,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *ConsoleModel) Device() string {
	return m.device
}

func (m *ConsoleModel) Session() *atcmd.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *ConsoleModel) SetSession(session *atcmd.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
}

func (m *ConsoleModel) DeviceInfo() *atcmd.DeviceInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deviceInfo
}

func (m *ConsoleModel) SetDeviceInfo(info *atcmd.DeviceInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deviceInfo = info
}

func (m *ConsoleModel) IsConnected() bool {
	return m.connected
}

func (m *ConsoleModel) SetConnected(connected bool) {
	m.connected = connected
}

// Busy reports whether a transaction is already in flight
func (m *ConsoleModel) Busy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.busy
}

func (m *ConsoleModel) SetBusy(busy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = busy
}

func (m *ConsoleModel) Error() error {
	return m.err
}

func (m *ConsoleModel) SetError(err error) {
	m.err = err
}

func (m *ConsoleModel) IsReady() bool {
	return m.ready
}

func (m *ConsoleModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *ConsoleModel) Entries() []components.EntryMsg {
	return m.entries
}

func (m *ConsoleModel) AddEntry(msg components.EntryMsg) {
	m.entries = append(m.entries, msg)
}

// SetLastEntryStatus updates the status of the most recent TX entry
func (m *ConsoleModel) SetLastEntryStatus(status string) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Dir == components.DirectionTX {
			m.entries[i].Status = status
			return
		}
	}
}

func (m *ConsoleModel) ClearEntries() {
	m.entries = make([]components.EntryMsg, 0)
}

func (m *ConsoleModel) InputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *ConsoleModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *ConsoleModel) IsInInsertMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode == InputModeInsert
}

func (m *ConsoleModel) Context() context.Context {
	return m.ctx
}

func (m *ConsoleModel) Cleanup() {
	if m.cancel != nil {
		m.cancel()
	}

	m.mu.Lock()
	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
	m.mu.Unlock()
}
