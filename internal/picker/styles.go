package picker

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for the picker.
type Styles struct {
	Header   lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Folder   lipgloss.Style
	URL      lipgloss.Style
	Check    lipgloss.Style
	Empty    lipgloss.Style
}

// DefaultStyles returns the grayscale palette with a teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}

	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			MarginBottom(1),
		Item: lipgloss.NewStyle().
			Foreground(primary),
		Selected: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		Folder: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		URL: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true),
		Check: lipgloss.NewStyle().
			Foreground(accent),
		Empty: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true),
	}
}
