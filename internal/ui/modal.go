package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// seriesModal asks for a FRED series id.
type seriesModal struct {
	input     textinput.Model
	submitted bool
}

func newSeriesModal(current string) seriesModal {
	ti := textinput.New()
	ti.Placeholder = "e.g. GDPC1, UNRATE, CPIAUCSL"
	ti.CharLimit = 40
	ti.Width = 30
	ti.SetValue(current)
	ti.CursorEnd()
	ti.Focus()
	return seriesModal{input: ti}
}

func (s seriesModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Escape):
			return s, nil, true
		case key.Matches(km, keys.Confirm):
			s.submitted = true
			return s, nil, true
		}
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd, false
}

// SeriesID returns the normalised id and whether the user confirmed a
// non-empty value.
func (s seriesModal) SeriesID() (string, bool) {
	id := strings.ToUpper(strings.TrimSpace(s.input.Value()))
	return id, s.submitted && id != ""
}

func (s seriesModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Series"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 36)))
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Render("Series id: "))
	b.WriteString(s.input.View())
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("Enter: Apply  •  Esc: Cancel"))

	return placeModal(theme, b.String(), 50, width, height)
}

// placeModal centers content in a rounded, accent-bordered box.
func placeModal(theme Theme, content string, modalWidth, width, height int) string {
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(modalWidth)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
