package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/weatherly/internal/domain"
)

// Color palette
var (
	SkyBlue    = lipgloss.Color("#38BDF8")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Amber      = lipgloss.Color("#F59E0B")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(SkyBlue)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(SkyBlue).
			Padding(0, 1)
)

// Panel styles
var (
	ListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	DetailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(0, 1)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(SkyBlue)
)

// Raw fetch state characters (unstyled)
const (
	IdleChar   = "·"
	LoadedChar = "●"
	ErrorChar  = "✗"
)

// Pre-rendered fetch state indicators; loading uses the spinner
var (
	IdleDot   = DimStyle.Render(IdleChar)
	LoadedDot = SuccessStyle.Render(LoadedChar)
	ErrorMark = ErrorStyle.Render(ErrorChar)
)

// Temperature colors, coldest first
var tempBands = []struct {
	max   float64
	color lipgloss.Color
}{
	{0, lipgloss.Color("#93C5FD")},
	{10, SkyBlue},
	{20, Green},
	{28, Amber},
}

// TempColor returns the color for a temperature in °C.
func TempColor(celsius float64) lipgloss.Color {
	for _, b := range tempBands {
		if celsius < b.max {
			return b.color
		}
	}
	return Red
}

// RenderStatus renders the indicator for a fetch state. spinnerFrame is
// shown while loading.
func RenderStatus(state domain.FetchState, spinnerFrame string) string {
	switch state.Status {
	case domain.StatusLoading:
		return spinnerFrame
	case domain.StatusLoaded:
		return LoadedDot
	case domain.StatusError:
		return ErrorMark
	default:
		return IdleDot
	}
}

// Helper functions

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// Pad pads a string to the given display width
func Pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// RowPart represents a part of a row with optional foreground color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
}

// RenderListRow renders a complete list row with uniform background when selected.
// Each part is styled explicitly to avoid ANSI reset codes breaking the background.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	var b strings.Builder
	visibleLen := 0

	for _, part := range parts {
		style := lipgloss.NewStyle()
		switch {
		case part.Foreground != nil:
			style = style.Foreground(*part.Foreground)
		case selected:
			style = style.Foreground(White)
		default:
			style = style.Foreground(LightGray)
		}
		if selected {
			style = style.Background(SlateLight)
		}
		b.WriteString(style.Render(part.Text))
		visibleLen += lipgloss.Width(part.Text)
	}

	pad := lipgloss.NewStyle()
	if selected {
		pad = pad.Background(SlateLight)
	}

	// Fill to width, leaving a one-cell margin on each side
	if n := width - visibleLen - 2; n > 0 {
		b.WriteString(pad.Render(strings.Repeat(" ", n)))
	}
	margin := pad.Render(" ")
	return margin + b.String() + margin
}
