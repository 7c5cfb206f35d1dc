package components

import (
	"fmt"

	"github.com/allbin/atcmd"
	"github.com/allbin/atcmd/internal/tui/colors"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

const (
	columnKeyPort        = "port"
	columnKeyDescription = "description"
	columnKeyVendor      = "vendor"
	columnKeySerial      = "serial"
)

// PortPicker is a standalone bubbletea model that lets the user pick a
// serial port from the enumerated list. After the program exits, Selected
// returns the chosen device path, or "" if the user cancelled.
type PortPicker struct {
	table    table.Model
	ports    []atcmd.PortInfo
	selected string
	done     bool
}

func NewPortPicker(ports []atcmd.PortInfo) *PortPicker {
	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", 16),
		table.NewColumn(columnKeyDescription, "Description", 24),
		table.NewColumn(columnKeyVendor, "VID:PID", 10),
		table.NewColumn(columnKeySerial, "Serial", 18),
	}

	rows := make([]table.Row, 0, len(ports))
	for _, p := range ports {
		vendor := ""
		if p.VendorID != "" {
			vendor = fmt.Sprintf("%s:%s", p.VendorID, p.ProductID)
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort:        p.Path,
			columnKeyDescription: p.Description,
			columnKeyVendor:      vendor,
			columnKeySerial:      p.SerialNumber,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		Focused(true).
		WithPageSize(10).
		WithBaseStyle(lipgloss.NewStyle().
			Foreground(colors.Text).
			BorderForeground(colors.Surface1)).
		HighlightStyle(lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Mauve).
			Bold(true))

	return &PortPicker{table: t, ports: ports}
}

// Selected returns the chosen device path, or "" when cancelled
func (p *PortPicker) Selected() string {
	return p.selected
}

func (p *PortPicker) Init() tea.Cmd {
	return nil
}

func (p *PortPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			row := p.table.HighlightedRow()
			if path, ok := row.Data[columnKeyPort].(string); ok {
				p.selected = path
			}
			p.done = true
			return p, tea.Quit
		case "q", "esc", "ctrl+c":
			p.done = true
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

func (p *PortPicker) View() string {
	if p.done {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Mauve).
		Padding(0, 1).
		Render("Select a serial port")

	help := lipgloss.NewStyle().
		Foreground(colors.Overlay0).
		Padding(0, 1).
		Render("↑/↓ move · enter select · q cancel")

	return lipgloss.JoinVertical(lipgloss.Left, title, p.table.View(), help)
}
