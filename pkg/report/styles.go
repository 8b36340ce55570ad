package report

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	cellW        = 11 // width of each layer column in characters
	labelVisualW = 7  // visual width of qubit label area
	gateNameW    = 5  // width of gate name inside box
	gateBoxW     = 7  // ┤ + gateNameW + ├ = 1 + 5 + 1
)

var (
	colorOrange = lipgloss.Color("#ff9e64")
	colorBlue   = lipgloss.Color("#7aa2f7")
	colorCyan   = lipgloss.Color("#7dcfff")
	colorTeal   = lipgloss.Color("#73daca")
	colorPurple = lipgloss.Color("#bb9af7")
	colorGreen  = lipgloss.Color("#9ece6a")
	colorRed    = lipgloss.Color("#f7768e")
	colorDim    = lipgloss.Color("#565f89")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorOrange)

	qubitLabelStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	gateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTeal)

	placeholderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPurple)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorOrange)

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(colorBlue)

	betterStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	worseStyle = lipgloss.NewStyle().
			Foreground(colorRed)
)
