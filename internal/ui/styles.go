package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const defaultAccent = "#A78BFA"

var (
	// Accent style for file paths, pack names, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))

	// Muted style for secondary info and hints
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	accentColor = defaultAccent
)

// ConfigureTheme sets the accent color from the [ui] accent setting.
// "none", "off" and "default" disable the accent.
func ConfigureTheme(accent string) {
	color, ok := normalizeAccentColor(accent)
	if !ok {
		switch strings.ToLower(strings.TrimSpace(accent)) {
		case "none", "off", "default":
			accentColor = ""
			Accent = lipgloss.NewStyle()
		}
		return
	}
	accentColor = color
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// AccentColor returns the configured accent color, if any.
func AccentColor() (string, bool) {
	return accentColor, accentColor != ""
}

// normalizeAccentColor accepts ANSI codes 0-255 and #RGB/#RRGGBB hex.
func normalizeAccentColor(raw string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "", false
	}
	if n, err := strconv.Atoi(value); err == nil {
		if n < 0 || n > 255 {
			return "", false
		}
		return strconv.Itoa(n), true
	}
	if !strings.HasPrefix(value, "#") {
		return "", false
	}
	hex := value[1:]
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", false
	}
	switch len(hex) {
	case 3:
		return "#" + string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}), true
	case 6:
		return value, true
	}
	return "", false
}
