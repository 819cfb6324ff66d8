package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// keyOverlayStyle frames the expanded key reference under the card grid.
var keyOverlayStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("170")). // Light purple, matches selection
	Padding(0, 2).
	MarginTop(1)

// HelpModel is the dashboard's expanded key reference.
type HelpModel struct {
	help   help.Model
	keymap KeyMap
}

// NewHelpModel builds the key reference over the dashboard keymap.
func NewHelpModel(keymap KeyMap) HelpModel {
	h := help.New()
	h.ShowAll = true

	return HelpModel{
		help:   h,
		keymap: keymap,
	}
}

// View renders the key reference sized to the dashboard width.
func (m HelpModel) View(width int) string {
	m.help.Width = width - 6
	body := TitleStyle.Render("Board keys") + "\n" + m.help.View(m.keymap)
	return keyOverlayStyle.Render(body)
}
