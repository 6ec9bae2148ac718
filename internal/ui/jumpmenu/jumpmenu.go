// Package jumpmenu lists the books of the loaded document and turns a
// selection into a scroll command on the navigation channel.
package jumpmenu

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bible-tui/internal/navigate"
	"bible-tui/internal/rows"
	"bible-tui/internal/theme"
)

// ClosedMsg is emitted when the menu wants to be dismissed. Target is nil
// when the user backed out without choosing.
type ClosedMsg struct {
	Target *rows.JumpTarget
}

type item struct {
	target rows.JumpTarget
}

func (i item) FilterValue() string { return i.target.Label }

type delegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func (d delegate) Height() int                            { return 1 }
func (d delegate) Spacing() int                           { return 0 }
func (d delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d delegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(item)
	if !ok {
		return
	}
	if index == m.Index() {
		fmt.Fprint(w, d.selected.Render("> "+it.target.Label))
		return
	}
	fmt.Fprint(w, d.normal.Render("  "+it.target.Label))
}

type keyMap struct {
	choose key.Binding
	back   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "jump"),
		),
		back: key.NewBinding(
			key.WithKeys("esc", "m", "tab"),
			key.WithHelp("esc", "close"),
		),
	}
}

// Model presents the jump targets. It keeps no state beyond the targets and
// the list cursor.
type Model struct {
	list    list.Model
	targets []rows.JumpTarget
	ch      *navigate.Channel
	keys    keyMap
}

func New(targets []rows.JumpTarget, ch *navigate.Channel, th theme.Theme) Model {
	items := make([]list.Item, len(targets))
	for i, t := range targets {
		items[i] = item{target: t}
	}

	d := delegate{
		normal:   lipgloss.NewStyle().Foreground(th.Text),
		selected: lipgloss.NewStyle().Bold(true).Foreground(th.Accent),
	}

	keys := newKeyMap()
	l := list.New(items, d, 0, 0)
	l.Title = "Jump to..."
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(th.Accent)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.choose, keys.back}
	}

	return Model{
		list:    l,
		targets: targets,
		ch:      ch,
		keys:    keys,
	}
}

func (m *Model) SetSize(w, h int) {
	m.list.SetSize(w, h)
}

// SelectRow moves the cursor to the book that contains row.
func (m *Model) SelectRow(row int) {
	i := sort.Search(len(m.targets), func(i int) bool {
		return m.targets[i].RowIndex > row
	})
	if i > 0 {
		m.list.Select(i - 1)
	}
}

// Selected returns the jump target under the cursor.
func (m Model) Selected() (rows.JumpTarget, bool) {
	it, ok := m.list.SelectedItem().(item)
	if !ok {
		return rows.JumpTarget{}, false
	}
	return it.target, true
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.choose):
			target, ok := m.Selected()
			if !ok {
				return m, closed(nil)
			}
			m.ch.Post(navigate.ScrollCommand{Row: target.RowIndex})
			return m, closed(&target)
		case key.Matches(msg, m.keys.back):
			return m, closed(nil)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return strings.TrimRight(m.list.View(), "\n")
}

func closed(target *rows.JumpTarget) tea.Cmd {
	return func() tea.Msg { return ClosedMsg{Target: target} }
}
