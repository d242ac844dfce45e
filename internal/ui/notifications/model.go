package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/pmwatch/internal/keys"
	"github.com/nhle/pmwatch/internal/model"
	"github.com/nhle/pmwatch/internal/notify"
	"github.com/nhle/pmwatch/internal/theme"
	"github.com/nhle/pmwatch/internal/ui"
)

// Source is the poller surface the view needs. *notify.Poller implements it.
type Source interface {
	Snapshot() notify.Snapshot
	Updates() <-chan notify.Snapshot
	Fetch(ctx context.Context) error
	MarkRead(ctx context.Context, id model.NotificationID) error
	MarkAllRead(ctx context.Context) error
}

// SnapshotMsg carries a new poller snapshot into the view.
type SnapshotMsg notify.Snapshot

// markResultMsg reports the outcome of a mark-read action.
type markResultMsg struct {
	snap notify.Snapshot
	err  error
}

// actionTimeout bounds a mark-read write or a manual refresh.
const actionTimeout = 5 * time.Second

// Model is the notifications view.
type Model struct {
	src    Source
	keys   keys.NotificationKeys
	help   help.Model
	layout ui.Layout
	now    func() time.Time

	items  []model.Notification
	unread int
	err    error
	at     time.Time
	cursor int
	status string
}

// New creates the view over src, showing its current snapshot.
func New(src Source, k *keys.KeyMap, width, height int) Model {
	m := Model{
		src:    src,
		keys:   keys.NotificationKeys{KeyMap: k},
		help:   help.New(),
		layout: ui.NewLayout(width, height),
		now:    time.Now,
	}
	m.apply(src.Snapshot())
	return m
}

// Init subscribes to poller updates.
func (m Model) Init() tea.Cmd {
	return m.waitForUpdate()
}

// waitForUpdate returns a tea.Cmd that blocks on the next poller update.
// It is re-issued after every SnapshotMsg, so exactly one receive is
// pending at a time and snapshots arrive in publish order.
func (m Model) waitForUpdate() tea.Cmd {
	ch := m.src.Updates()
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg(snap)
	}
}

// Update handles messages for the notifications view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m, nil

	case SnapshotMsg:
		m.apply(notify.Snapshot(msg))
		return m, m.waitForUpdate()

	case markResultMsg:
		m.apply(msg.snap)
		if msg.err != nil {
			m.status = "could not save read state: " + msg.err.Error()
		} else {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		if len(m.items) == 0 {
			return m, nil
		}
		id := m.items[m.cursor].ID
		return m, m.mark(func(ctx context.Context) error {
			return m.src.MarkRead(ctx, id)
		})

	case key.Matches(msg, m.keys.MarkAllRead):
		if len(m.items) == 0 {
			return m, nil
		}
		return m, m.mark(m.src.MarkAllRead)

	case key.Matches(msg, m.keys.Refresh):
		src := m.src
		m.status = "refreshing…"
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			// The resulting snapshot arrives through Updates.
			_ = src.Fetch(ctx)
			return nil
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m, nil
}

func (m Model) mark(fn func(ctx context.Context) error) tea.Cmd {
	src := m.src
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		err := fn(ctx)
		return markResultMsg{snap: src.Snapshot(), err: err}
	}
}

func (m *Model) apply(snap notify.Snapshot) {
	m.items = snap.Notifications
	m.unread = snap.Unread
	m.err = snap.Err
	m.at = snap.At
	if m.status == "refreshing…" {
		m.status = ""
	}
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Unread returns the unread count currently displayed.
func (m Model) Unread() int { return m.unread }

// Items returns the notifications currently displayed.
func (m Model) Items() []model.Notification { return m.items }

// View renders the notifications view.
func (m Model) View() string {
	status := theme.UnreadBadgeStyle.Render(fmt.Sprintf("%d unread", m.unread))
	if !m.at.IsZero() {
		status += " updated " + m.at.Format("15:04:05")
	}

	hints := m.help.View(m.keys)
	if m.status != "" {
		hints = m.status + "  " + hints
	}
	return m.layout.Screen("Notifications", status, m.renderContent(), hints)
}

func (m Model) renderContent() string {
	height := m.layout.ContentHeight()
	box := lipgloss.NewStyle().Width(m.layout.Width).Height(height)

	if len(m.items) == 0 {
		msg := "All caught up."
		if m.err != nil {
			msg = theme.ErrorStyle.Render("Notifications unavailable: " + m.err.Error())
		}
		return box.
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(msg)
	}

	// Keep the cursor inside the visible window.
	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := start + height
	if end > len(m.items) {
		end = len(m.items)
	}

	now := m.now()
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderItem(m.items[i], i == m.cursor, now))
	}
	return box.Render(strings.Join(lines, "\n"))
}

func (m Model) renderItem(n model.Notification, selected bool, now time.Time) string {
	badge := theme.TypeStyle(n.Type).Render(strings.ToUpper(ui.Truncate(n.Type, 8)))
	age := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(ui.RelativeTime(n.ParsedTime(), now))

	titleWidth := m.layout.Width - lipgloss.Width(badge) - lipgloss.Width(age) - 6
	line := fmt.Sprintf("%s %s  %s", badge, ui.Truncate(n.Title, titleWidth), age)

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}
