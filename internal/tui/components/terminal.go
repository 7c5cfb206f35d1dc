package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Terminal is the scrolling transcript area of the console
type Terminal struct {
	viewport  viewport.Model
	formatter *Formatter
	lines     []string
}

func NewTerminal(width, height int) *Terminal {
	vp := viewport.New(width, height)
	return &Terminal{
		viewport:  vp,
		formatter: NewFormatter(true),
		lines:     make([]string, 0),
	}
}

func (t *Terminal) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
}

func (t *Terminal) AddEntry(msg EntryMsg) {
	t.lines = append(t.lines, t.formatter.FormatEntry(msg))
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	t.viewport.GotoBottom()
}

// Refresh re-renders the whole transcript, e.g. after a formatter toggle
// or when a pending TX entry changes status
func (t *Terminal) Refresh(entries []EntryMsg) {
	t.lines = t.formatter.FormatEntries(entries)
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	t.viewport.GotoBottom()
}

func (t *Terminal) Clear() {
	t.lines = make([]string, 0)
	t.viewport.SetContent("")
}

func (t *Terminal) ToggleTimestamps() {
	t.formatter.ToggleTimestamps()
}

func (t *Terminal) ScrollUp(n int)   { t.viewport.LineUp(n) }
func (t *Terminal) ScrollDown(n int) { t.viewport.LineDown(n) }

func (t *Terminal) Update(msg tea.Msg) (viewport.Model, tea.Cmd) {
	// Only window resizes reach the viewport so it never swallows key bindings
	switch msg.(type) {
	case tea.WindowSizeMsg:
		return t.viewport.Update(msg)
	default:
		return t.viewport, nil
	}
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
