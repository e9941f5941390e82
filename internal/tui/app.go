package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/mmcdole/weatherly/internal/service"
	"github.com/mmcdole/weatherly/internal/tui/styles"
)

// Column widths for the location list
const (
	nameWidth      = 28
	tempWidth      = 6
	conditionWidth = 20
	forecastDays   = 5
)

// Model is the Bubble Tea model for the watch view
type Model struct {
	// Services
	Home   *service.HomeService
	events <-chan domain.StateEvent

	// UI Components
	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	// Data
	Rows   []service.LocationView
	Cursor int

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg     string
	StatusIsErr   bool
	Refreshing    bool
	ConfirmDelete bool

	now func() time.Time
}

// NewModel creates the watch view. events should be fed by a ChannelObserver
// subscribed to home.
func NewModel(home *service.HomeService, events <-chan domain.StateEvent) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return Model{
		Home:    home,
		events:  events,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		Rows:    home.Locations(),
		now:     time.Now,
	}
}

// Init starts listening for state changes and fetches whatever is stale
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		listenForStateCmd(m.events),
		AppearAllCmd(m.Home),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StateChangedMsg:
		m.reload()
		return m, listenForStateCmd(m.events)

	case eventsClosedMsg:
		return m, nil

	case RefreshDoneMsg:
		m.Refreshing = false
		m.reload()
		m.setStatus(summaryText(msg.Summary, msg.Forced), msg.Summary.Failed > 0)
		return m, nil

	case FetchDoneMsg:
		m.reload()
		if msg.Result.Skipped {
			m.setStatus("Already up to date", false)
		}
		return m, nil

	case RemovedMsg:
		m.reload()
		m.setStatus("Removed "+msg.Location.DisplayName(), false)
		return m, nil

	case ErrMsg:
		m.Refreshing = false
		m.reload()
		m.setStatus(msg.Error(), true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ConfirmDelete {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.ConfirmDelete = false
			if row, ok := m.selected(); ok {
				return m, RemoveCmd(m.Home, row.Location.ID)
			}
		case key.Matches(msg, m.keys.Deny):
			m.ConfirmDelete = false
			m.setStatus("", false)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.Cursor < len(m.Rows)-1 {
			m.Cursor++
		}

	case key.Matches(msg, m.keys.MoveUp):
		m.move(m.Cursor - 1)

	case key.Matches(msg, m.keys.MoveDown):
		m.move(m.Cursor + 1)

	case key.Matches(msg, m.keys.Fetch):
		if row, ok := m.selected(); ok {
			return m, AppearCmd(m.Home, row.Location.ID)
		}

	case key.Matches(msg, m.keys.RefreshAll):
		if m.Refreshing || len(m.Rows) == 0 {
			return m, nil
		}
		m.Refreshing = true
		m.setStatus("Refreshing all locations...", false)
		return m, RefreshAllCmd(m.Home)

	case key.Matches(msg, m.keys.Delete):
		if row, ok := m.selected(); ok {
			m.ConfirmDelete = true
			m.setStatus(fmt.Sprintf("Delete %s? (y/n)", row.Location.DisplayName()), false)
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m *Model) move(to int) {
	if to < 0 || to >= len(m.Rows) {
		return
	}
	if err := m.Home.Move(m.Cursor, to); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.Cursor = to
	m.reload()
}

func (m *Model) reload() {
	m.Rows = m.Home.Locations()
	if m.Cursor >= len(m.Rows) {
		m.Cursor = max(len(m.Rows)-1, 0)
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
}

func (m Model) selected() (service.LocationView, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return service.LocationView{}, false
	}
	return m.Rows[m.Cursor], true
}

// View renders the watch view
func (m Model) View() string {
	var b strings.Builder

	title := styles.TitleStyle.Render("Weatherly")
	if m.Refreshing {
		title += " " + m.spinner.View()
	}
	b.WriteString(title + "\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(styles.DimStyle.Render("No saved locations. Add one with `weatherly add <city>`."))
		b.WriteString("\n")
	}

	width := m.Width
	if width <= 0 {
		width = 80
	}
	now := m.now()
	for i, row := range m.Rows {
		b.WriteString(m.renderRow(row, i == m.Cursor, width, now))
		b.WriteString("\n")
	}

	if row, ok := m.selected(); ok && row.Snapshot != nil {
		b.WriteString("\n")
		b.WriteString(styles.DetailStyle.Render(renderDetail(row)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.StatusMsg != "" {
		style := styles.SubtitleStyle
		if m.StatusIsErr {
			style = styles.ErrorStyle
		}
		b.WriteString(style.Render(m.StatusMsg) + "\n")
	}
	b.WriteString(m.help.View(m.keys))

	return styles.ListStyle.Render(b.String())
}

func (m Model) renderRow(row service.LocationView, selected bool, width int, now time.Time) string {
	parts := []styles.RowPart{
		{Text: styles.RenderStatus(row.State, m.spinner.View()) + " "},
		{Text: styles.Pad(styles.Truncate(row.Location.DisplayName(), nameWidth), nameWidth+1)},
	}

	switch {
	case row.Snapshot != nil:
		cur := row.Snapshot.Current
		color := styles.TempColor(cur.Temp)
		parts = append(parts,
			styles.RowPart{Text: styles.Pad(formatTemp(cur.Temp), tempWidth), Foreground: &color},
			styles.RowPart{Text: styles.Pad(styles.Truncate(describe(cur.Conditions), conditionWidth), conditionWidth+1)},
		)
	case row.State.Status == domain.StatusError:
		red := styles.Red
		parts = append(parts, styles.RowPart{Text: styles.Pad(row.State.Message, tempWidth+conditionWidth+1), Foreground: &red})
	case row.State.Status == domain.StatusLoading:
		parts = append(parts, styles.RowPart{Text: styles.Pad("Loading...", tempWidth+conditionWidth+1)})
	default:
		parts = append(parts, styles.RowPart{Text: styles.Pad("", tempWidth+conditionWidth+1)})
	}

	dim := styles.DimGray
	parts = append(parts, styles.RowPart{Text: formatAge(row.LastUpdated, now), Foreground: &dim})

	return styles.RenderListRow(parts, selected, width)
}

func renderDetail(row service.LocationView) string {
	snap := row.Snapshot
	cur := snap.Current

	lines := []string{
		styles.AccentStyle.Render(row.Location.DisplayName()),
		fmt.Sprintf("%s  feels like %s  humidity %d%%  pressure %d hPa",
			formatTemp(cur.Temp), formatTemp(cur.FeelsLike), cur.Humidity, cur.Pressure),
	}
	if cur.WindSpeed != nil {
		lines = append(lines, fmt.Sprintf("wind %.1f m/s", *cur.WindSpeed))
	}

	days := snap.Daily
	if len(days) > forecastDays {
		days = days[:forecastDays]
	}
	if len(days) > 0 {
		lines = append(lines, "")
	}
	for _, d := range days {
		lines = append(lines, fmt.Sprintf("%s  %s / %s  %s",
			weekday(d.Dt, snap.TimezoneOffset),
			styles.DimStyle.Render(formatTemp(d.Temp.Min)),
			lipgloss.NewStyle().Foreground(styles.TempColor(d.Temp.Max)).Render(formatTemp(d.Temp.Max)),
			describe(d.Conditions)))
	}
	return strings.Join(lines, "\n")
}
