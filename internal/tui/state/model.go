// Package state holds the bubbletea model of the notifications view.
package state

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/stream"
	"github.com/leasedesk/notify-stream/internal/tui/render"
)

const (
	headerLines           = 3
	footerLines           = 1
	defaultViewportWidth  = 80
	defaultViewportHeight = 22
	stateBuffer           = 4
)

// Controller is the part of stream.Client the view drives.
type Controller interface {
	Subscribe(buffer int) (<-chan stream.State, func())
	MarkAsRead(ctx context.Context, id string)
	Reconnect()
}

// stateMsg carries a new client state into the update loop.
type stateMsg stream.State

// closedMsg is sent when the state subscription ends.
type closedMsg struct{}

// Model is the notifications view. It keeps no notification state of its
// own beyond the last state received from the controller.
type Model struct {
	ctrl        Controller
	states      <-chan stream.State
	unsubscribe func()

	state      stream.State
	rows       []domain.Notification
	cursor     int
	categories []domain.Category
	category   int // index into categories; 0 is all
	unreadOnly bool
	notice     string

	viewport viewport.Model
	width    int
	keys     keyMap
	now      func() time.Time
	loc      *time.Location
}

// Option configures a Model.
type Option func(*Model)

// WithCategory preselects a category filter.
func WithCategory(category string) Option {
	return func(m *Model) {
		for i, c := range m.categories {
			if string(c) == category {
				m.category = i
				return
			}
		}
		if category != "" {
			m.categories = append(m.categories, domain.Category(category))
			m.category = len(m.categories) - 1
		}
	}
}

// WithUnreadOnly starts with the unread-only filter on.
func WithUnreadOnly(on bool) Option {
	return func(m *Model) {
		m.unreadOnly = on
	}
}

// WithClock sets the time source and location used for ages and day groups.
func WithClock(now func() time.Time, loc *time.Location) Option {
	return func(m *Model) {
		m.now = now
		m.loc = loc
	}
}

// NewModel subscribes to ctrl and returns the view.
func NewModel(ctrl Controller, opts ...Option) *Model {
	m := &Model{
		ctrl:       ctrl,
		categories: append([]domain.Category{""}, domain.KnownCategories...),
		viewport:   viewport.New(defaultViewportWidth, defaultViewportHeight),
		width:      defaultViewportWidth,
		keys:       defaultKeyMap(),
		now:        time.Now,
		loc:        time.Local,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.states, m.unsubscribe = ctrl.Subscribe(stateBuffer)
	return m
}

// Init starts listening for state updates.
func (m *Model) Init() tea.Cmd {
	return m.waitForState()
}

func (m *Model) waitForState() tea.Cmd {
	states := m.states
	return func() tea.Msg {
		s, ok := <-states
		if !ok {
			return closedMsg{}
		}
		return stateMsg(s)
	}
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = stream.State(msg)
		m.rebuild()
		return m, m.waitForState()
	case closedMsg:
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-headerLines-footerLines)
		m.rebuild()
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unsubscribe()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.MarkRead):
		return m, m.markSelected()
	case key.Matches(msg, m.keys.Reconnect):
		ctrl := m.ctrl
		return m, func() tea.Msg {
			ctrl.Reconnect()
			return nil
		}
	case key.Matches(msg, m.keys.Category):
		m.category = (m.category + 1) % len(m.categories)
		m.cursor = 0
	case key.Matches(msg, m.keys.UnreadOnly):
		m.unreadOnly = !m.unreadOnly
		m.cursor = 0
	}
	m.rebuild()
	return m, nil
}

func (m *Model) markSelected() tea.Cmd {
	n, ok := m.Selected()
	if !ok {
		return nil
	}
	if n.IsTransient() {
		m.notice = "transient notifications have no read state"
		m.rebuild()
		return nil
	}
	if n.IsRead {
		return nil
	}
	ctrl := m.ctrl
	id := string(n.ID)
	return func() tea.Msg {
		ctrl.MarkAsRead(context.Background(), id)
		return nil
	}
}

// Selected returns the notification under the cursor.
func (m *Model) Selected() (domain.Notification, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return domain.Notification{}, false
	}
	return m.rows[m.cursor], true
}

// Rows returns the visible notifications in display order.
func (m *Model) Rows() []domain.Notification {
	out := make([]domain.Notification, len(m.rows))
	copy(out, m.rows)
	return out
}

func (m *Model) filter() domain.Filter {
	f := domain.Filter{Category: m.categories[m.category]}
	if m.unreadOnly {
		f.ReadFilter = domain.ReadFilterUnread
	}
	return f
}

// rebuild recomputes the visible rows and viewport content.
func (m *Model) rebuild() {
	timeline := domain.Timeline(m.state.Notifications, m.state.Announcements)
	visible := domain.ApplyFilter(timeline, m.filter())
	groups := domain.GroupByDay(visible, m.loc, m.now())

	m.rows = m.rows[:0]
	var lines []string
	cursorLine := 0
	for _, g := range groups {
		lines = append(lines, render.GroupHeader(g, m.width))
		for _, n := range g.Notifications {
			if len(m.rows) == m.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, render.Row(render.RowState{
				Notification: n,
				Width:        m.width,
				Selected:     len(m.rows) == m.cursor,
				Now:          m.now(),
			}))
			m.rows = append(m.rows, n)
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
	if len(lines) == 0 {
		lines = append(lines, render.Empty(string(m.state.Status)))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	if cursorLine < m.viewport.YOffset {
		m.viewport.SetYOffset(max(0, cursorLine-1))
	} else if cursorLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(cursorLine - m.viewport.Height + 1)
	}
}

// View renders the model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(render.StatusLine(render.StatusState{
		TenantID:   m.state.TenantID,
		Status:     string(m.state.Status),
		Error:      m.state.Error,
		Unread:     domain.CountUnread(m.rows),
		Total:      len(m.rows),
		Category:   string(m.categories[m.category]),
		UnreadOnly: m.unreadOnly,
		Notice:     m.notice,
	}))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(render.Footer())
	return b.String()
}
