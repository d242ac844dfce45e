package rows

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/pmwatch/internal/keys"
	"github.com/nhle/pmwatch/internal/listview"
	"github.com/nhle/pmwatch/internal/model"
	"github.com/nhle/pmwatch/internal/theme"
	"github.com/nhle/pmwatch/internal/ui"
)

// Loader fetches the rows to display.
type Loader func(ctx context.Context) ([]model.Row, error)

// RowsLoadedMsg is sent when the loader returns.
type RowsLoadedMsg struct {
	Rows []model.Row
	Err  error
}

// loadTimeout bounds one call to the loader.
const loadTimeout = 15 * time.Second

// minColumnWidth keeps narrow terminals readable.
const minColumnWidth = 6

// Options seeds the view's initial filter and sort.
type Options struct {
	Term string
	Sort listview.SortState

	// Preferred lists columns to show first, after "id".
	Preferred []string
}

// Model is a filterable, sortable table over fetched rows.
type Model struct {
	title     string
	load      Loader
	keys      keys.TableKeys
	help      help.Model
	layout    ui.Layout
	table     table.Model
	search    textinput.Model
	searching bool
	preferred []string

	rows    []model.Row
	visible []model.Row
	columns []string
	term    string
	sort    listview.SortState
	loading bool
	err     error
}

// New creates a table view titled title that fetches with load.
func New(title string, load Loader, k *keys.KeyMap, width, height int, opts Options) Model {
	t := table.New(table.WithFocused(true))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(theme.ColorWhite).
		Background(theme.ColorBlue)
	t.SetStyles(styles)

	si := textinput.New()
	si.Placeholder = "filter rows..."
	si.Prompt = "/ "
	si.SetValue(opts.Term)

	m := Model{
		title:     title,
		load:      load,
		keys:      keys.TableKeys{KeyMap: k},
		help:      help.New(),
		table:     t,
		search:    si,
		preferred: opts.Preferred,
		term:      opts.Term,
		sort:      opts.Sort,
		loading:   true,
	}
	m.resize(width, height)
	return m
}

// Init returns a command that loads the rows.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a tea.Cmd that runs the loader.
func (m Model) Load() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		rows, err := load(ctx)
		return RowsLoadedMsg{Rows: rows, Err: err}
	}
}

// Update handles messages for the table view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case RowsLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.rows = nil
		} else {
			m.rows = msg.Rows
		}
		m.columns = model.Columns(m.rows, m.preferred...)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while the filter is being edited.
// The table narrows as the user types.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		m.table.Focus()
		return m, nil

	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.Reset()
		m.term = ""
		m.table.Focus()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.term {
		m.term = m.search.Value()
		m.refresh()
	}
	return m, cmd
}

// handleNormalKeys processes key input while navigating the table.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.table.Blur()
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Back):
		m.search.Reset()
		m.term = ""
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.SortColumn):
		idx := int(msg.Runes[0] - '1')
		if idx < len(m.columns) {
			m.sort = m.sort.Toggle(m.columns[idx])
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.Load()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.layout.Width, m.layout.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Visible returns the rows currently shown, after filter and sort.
func (m Model) Visible() []model.Row { return m.visible }

// Sort returns the current sort state.
func (m Model) Sort() listview.SortState { return m.sort }

// Term returns the current filter term.
func (m Model) Term() string { return m.term }

func (m *Model) resize(width, height int) {
	m.layout = ui.NewLayout(width, height)
	m.help.Width = width
	m.search.Width = width - 4
	// One line for the filter bar.
	m.table.SetHeight(m.layout.ContentHeight() - 1)
	m.table.SetWidth(width)
}

// refresh recomputes the visible rows and rebuilds the table.
func (m *Model) refresh() {
	m.visible = listview.Apply(m.rows, m.term, m.sort)

	cols := make([]table.Column, len(m.columns))
	width := m.layout.Width / max(len(m.columns), 1)
	if width < minColumnWidth {
		width = minColumnWidth
	}
	for i, c := range m.columns {
		title := fmt.Sprintf("%d %s", i+1, c)
		if m.sort.Key == c {
			title += " " + m.sort.Dir.Arrow()
		}
		cols[i] = table.Column{Title: title, Width: width - 2}
	}

	trs := make([]table.Row, len(m.visible))
	for i, r := range m.visible {
		tr := make(table.Row, len(m.columns))
		for j, c := range m.columns {
			tr[j] = listview.Display(r[c])
		}
		trs[i] = tr
	}

	// Rows must never be wider than the columns while swapping.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(trs)
	if m.table.Cursor() >= len(trs) {
		m.table.SetCursor(max(len(trs)-1, 0))
	}
}

// View renders the table view.
func (m Model) View() string {
	status := fmt.Sprintf("%d/%d rows", len(m.visible), len(m.rows))
	if m.sort.Active() {
		status += fmt.Sprintf(" · %s %s", m.sort.Key, m.sort.Dir)
	}

	var filterLine string
	switch {
	case m.searching:
		filterLine = m.search.View()
	case m.term != "":
		filterLine = theme.HelpStyle.Render("filter: " + m.term)
	default:
		filterLine = theme.HelpStyle.Render("press / to filter")
	}

	var body string
	switch {
	case m.loading:
		body = m.centered("Loading…")
	case m.err != nil:
		body = m.centered(theme.ErrorStyle.Render("Could not load rows: " + m.err.Error()))
	case len(m.rows) == 0:
		body = m.centered("Nothing here yet.")
	case len(m.visible) == 0:
		body = m.centered("No matching rows.\nPress esc to clear the filter.")
	default:
		body = m.table.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left, filterLine, body)
	return m.layout.Screen(m.title, status, content, m.help.View(m.keys))
}

func (m Model) centered(s string) string {
	return lipgloss.NewStyle().
		Width(m.layout.Width).
		Height(m.layout.ContentHeight()-1).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(s)
}
