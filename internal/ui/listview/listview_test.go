package listview

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bible-tui/internal/navigate"
)

// rowSource produces "<prefix> <i>" rows and fails the test if the list ever
// asks for an index outside [0, n).
type rowSource struct {
	t      *testing.T
	n      int
	prefix string
	calls  int
}

func newRowSource(t *testing.T, n int, prefix string) *rowSource {
	return &rowSource{t: t, n: n, prefix: prefix}
}

func (r *rowSource) fn(i int) string {
	r.calls++
	if i < 0 || i >= r.n {
		r.t.Errorf("row %d requested, count is %d", i, r.n)
	}
	return fmt.Sprintf("%s %d", r.prefix, i)
}

func viewLines(m *Model) []string {
	lines := strings.Split(m.View(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

func newList(t *testing.T, n int, opts ...Option) (*Model, *rowSource) {
	t.Helper()
	src := newRowSource(t, n, "row")
	opts = append([]Option{WithAnimation(1, time.Millisecond), WithOverscan(2)}, opts...)
	return New(n, src.fn, opts...), src
}

func TestModel_Lifecycle(t *testing.T) {
	assert.Equal(t, StateUninitialized, (&Model{}).State())

	m, _ := newList(t, 10)
	assert.Equal(t, StateBound, m.State())

	m.SetSize(20, 5)
	assert.Equal(t, StateActive, m.State())

	m.Close()
	assert.Equal(t, StateTornDown, m.State())
	assert.Equal(t, 0, m.Live())
	assert.Empty(t, m.View())
}

func TestModel_UninitializedBecomesBound(t *testing.T) {
	m := New(0, nil)
	assert.Equal(t, StateUninitialized, m.State())

	m.SetSize(10, 3)
	assert.Equal(t, StateUninitialized, m.State())

	src := newRowSource(t, 3, "row")
	m.SetRows(3, src.fn)
	assert.Equal(t, StateBound, m.State())

	m.SetSize(10, 3)
	assert.Equal(t, []string{"row 0", "row 1", "row 2"}, viewLines(m))
}

func TestModel_EmptyList(t *testing.T) {
	m, src := newList(t, 0)
	m.SetSize(20, 4)

	assert.Nil(t, m.ScrollTo(3))
	m.LineDown(5)
	m.PageUp()
	m.GotoBottom()

	assert.Equal(t, 0, m.Live())
	assert.Equal(t, 0, src.calls)
	assert.Equal(t, []string{"", "", "", ""}, viewLines(m))
	assert.True(t, m.AtBottom())
}

func TestModel_OnlyBindsVisibleWindow(t *testing.T) {
	m, src := newList(t, 100_000)
	m.SetSize(20, 10)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, m.LiveRows())
	assert.Less(t, src.calls, 40)

	stats := m.PoolStats()
	assert.Equal(t, stats.Created, stats.Free+m.Live())

	lines := viewLines(m)
	require.Len(t, lines, 10)
	assert.Equal(t, "row 0", lines[0])
	assert.Equal(t, "row 9", lines[9])
}

func TestModel_ScrollingRecyclesContainers(t *testing.T) {
	m, _ := newList(t, 100_000)
	m.SetSize(20, 10)

	for range 2_000 {
		m.LineDown(1)
	}

	assert.Equal(t, 2_000, m.TopRow())
	stats := m.PoolStats()
	assert.Less(t, stats.Created, 40)
	assert.Greater(t, stats.Reused, 1_000)
	assert.Equal(t, stats.Created, stats.Free+m.Live())

	for _, i := range m.LiveRows() {
		assert.GreaterOrEqual(t, i, 2_000-2)
		assert.LessOrEqual(t, i, 2_000+10+2)
	}
}

func TestModel_ReusedContainerShowsOnlyNewContent(t *testing.T) {
	m, _ := newList(t, 1_000)
	m.SetSize(20, 3)

	m.ScrollTo(500)
	assert.Equal(t, []string{"row 500", "row 501", "row 502"}, viewLines(m))

	m.ScrollTo(10)
	assert.Equal(t, []string{"row 10", "row 11", "row 12"}, viewLines(m))

	for i, c := range m.live {
		assert.Equal(t, i, c.index)
		assert.Equal(t, fmt.Sprintf("row %d", i), strings.TrimRight(c.lines[0], " "))
	}
	for _, c := range m.pool.free {
		assert.Equal(t, -1, c.index)
		assert.Nil(t, c.lines)
	}
}

func TestModel_PendingScrollFlushedOnLayout(t *testing.T) {
	genesis := []string{"Genesis", "In the beginning", "Line 2"}
	m := New(len(genesis), func(i int) string { return genesis[i] }, WithAnimation(4, time.Millisecond))

	assert.Nil(t, m.ScrollTo(0))
	row, ok := m.Pending()
	require.True(t, ok)
	assert.Equal(t, 0, row)
	assert.Equal(t, StateBound, m.State())

	m.SetSize(30, 5)

	_, ok = m.Pending()
	assert.False(t, ok)
	assert.Equal(t, StateActive, m.State())
	assert.Equal(t, 0, m.TopRow())
	assert.Equal(t, []string{"Genesis", "In the beginning", "Line 2", "", ""}, viewLines(m))
}

func TestModel_PendingScrollFarTarget(t *testing.T) {
	m, _ := newList(t, 100)
	m.ScrollTo(40)
	m.ScrollTo(60)
	m.SetSize(20, 10)
	assert.Equal(t, 60, m.TopRow())

	// flushed exactly once: a later resize does not re-apply it
	m.LineDown(1)
	m.SetSize(20, 8)
	assert.Equal(t, 61, m.TopRow())
}

func TestModel_PendingScrollSurvivesCountChange(t *testing.T) {
	m, _ := newList(t, 5)
	m.ScrollTo(40)

	src := newRowSource(t, 100, "new")
	m.SetRows(100, src.fn)
	m.SetSize(20, 10)

	assert.Equal(t, 40, m.TopRow())
	assert.Equal(t, "new 40", viewLines(m)[0])
}

func TestModel_ScrollToClampsAtEnd(t *testing.T) {
	m, _ := newList(t, 100)
	m.SetSize(20, 10)

	m.ScrollTo(95)
	assert.Equal(t, 90, m.TopRow())
	assert.True(t, m.AtBottom())
	lines := viewLines(m)
	assert.Equal(t, "row 99", lines[len(lines)-1])

	m.ScrollTo(-5)
	assert.Equal(t, 0, m.TopRow())

	m.ScrollTo(1_000)
	assert.Equal(t, 90, m.TopRow())
}

func TestModel_ScrollToAnimates(t *testing.T) {
	m, _ := newList(t, 10_000, WithAnimation(4, time.Millisecond))
	m.SetSize(20, 10)

	cmd := m.ScrollTo(5_000)
	require.NotNil(t, cmd)
	assert.True(t, m.Animating())

	var positions []int
	for cmd != nil {
		msg := cmd()
		cmd = m.Update(msg)
		positions = append(positions, m.TopRow())
	}

	require.Len(t, positions, 4)
	assert.Equal(t, 5_000, positions[3])
	for i := 1; i < len(positions); i++ {
		assert.Greater(t, positions[i], positions[i-1])
	}
	assert.False(t, m.Animating())
	assert.Less(t, m.PoolStats().Created, 60)
}

func TestModel_ScrollToSupersedesAnimation(t *testing.T) {
	m, _ := newList(t, 10_000, WithAnimation(4, time.Millisecond))
	m.SetSize(20, 10)

	first := m.ScrollTo(5_000)
	second := m.ScrollTo(200)
	require.NotNil(t, first)
	require.NotNil(t, second)

	// a frame of the first transition is ignored
	assert.Nil(t, m.Update(first()))

	cmd := second
	for cmd != nil {
		cmd = m.Update(cmd())
	}
	assert.Equal(t, 200, m.TopRow())
}

func TestModel_ManualScrollStopsAnimation(t *testing.T) {
	m, _ := newList(t, 10_000, WithAnimation(4, time.Millisecond))
	m.SetSize(20, 10)

	cmd := m.ScrollTo(5_000)
	require.NotNil(t, cmd)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.False(t, m.Animating())
	assert.Equal(t, 1, m.TopRow())
	assert.Nil(t, m.Update(cmd()))
	assert.Equal(t, 1, m.TopRow())
}

func TestModel_CountChangeInvalidatesLayout(t *testing.T) {
	m, _ := newList(t, 100)
	m.SetSize(20, 10)
	m.GotoBottom()
	require.Equal(t, 90, m.TopRow())

	src := newRowSource(t, 10, "new")
	m.SetRows(10, src.fn)

	for _, i := range m.LiveRows() {
		assert.Less(t, i, 10)
	}
	assert.Equal(t, 0, m.TopRow())
	lines := viewLines(m)
	for i, l := range lines {
		assert.Equal(t, fmt.Sprintf("new %d", i), l)
	}
}

func TestModel_SameCountKeepsLayout(t *testing.T) {
	m, _ := newList(t, 50)
	m.SetSize(20, 5)
	m.ScrollTo(20)
	before := m.PoolStats()

	src := newRowSource(t, 50, "new")
	m.SetRows(50, src.fn)

	assert.Equal(t, 0, src.calls)
	assert.Equal(t, before, m.PoolStats())
	assert.Equal(t, 20, m.TopRow())
}

func TestModel_InvalidateRebindsInPlace(t *testing.T) {
	m, _ := newList(t, 50)
	m.SetSize(20, 5)
	m.ScrollTo(20)

	src := newRowSource(t, 50, "new")
	m.SetRows(50, src.fn)
	m.Invalidate()

	assert.Equal(t, 20, m.TopRow())
	assert.Positive(t, src.calls)
	assert.Equal(t, "new 20", viewLines(m)[0])
}

func TestModel_WrappedRows(t *testing.T) {
	content := []string{"aaaa bbbb cccc", "x", "y", "z"}
	m := New(len(content), func(i int) string { return content[i] }, WithAnimation(1, 0), WithOverscan(0))
	m.SetSize(5, 2)

	assert.Equal(t, 3, m.live[0].height)
	assert.Equal(t, []string{"aaaa", "bbbb"}, viewLines(m))

	m.LineDown(1)
	assert.Equal(t, 0, m.TopRow())
	assert.Equal(t, 1, m.TopLine())
	assert.Equal(t, []string{"bbbb", "cccc"}, viewLines(m))

	m.LineDown(2)
	assert.Equal(t, 1, m.TopRow())
	assert.Equal(t, 0, m.TopLine())
	assert.Equal(t, []string{"x", "y"}, viewLines(m))

	m.LineUp(1)
	assert.Equal(t, 0, m.TopRow())
	assert.Equal(t, 2, m.TopLine())
	assert.Equal(t, []string{"cccc", "x"}, viewLines(m))

	m.GotoBottom()
	assert.Equal(t, 2, m.TopRow())
	assert.Equal(t, []string{"y", "z"}, viewLines(m))
}

func TestModel_WidthChangeRebinds(t *testing.T) {
	m, src := newList(t, 100)
	m.SetSize(20, 5)
	calls := src.calls

	m.SetSize(20, 5)
	assert.Equal(t, calls, src.calls)

	m.SetSize(30, 5)
	assert.Greater(t, src.calls, calls)
	for _, c := range m.live {
		assert.Len(t, c.lines[0], 30)
	}
}

func TestModel_AttachAndReceiveCommands(t *testing.T) {
	ch := navigate.NewChannel()
	m, _ := newList(t, 1_000)
	m.SetSize(20, 10)

	listen := m.Attach(ch)
	require.NotNil(t, listen)
	assert.Equal(t, 1, ch.Subscribers())

	ch.Post(navigate.ScrollCommand{Row: 30})
	msg := listen()
	require.IsType(t, navigate.CommandMsg{}, msg)

	next := m.Update(msg)
	assert.NotNil(t, next)
	assert.Equal(t, 30, m.TopRow())

	m.Close()
	assert.Equal(t, 0, ch.Subscribers())
	assert.Nil(t, m.Update(msg))
	assert.Nil(t, m.ScrollTo(5))
	assert.Equal(t, 30, m.TopRow())
}

func TestModel_IgnoresStaleSubscription(t *testing.T) {
	ch := navigate.NewChannel()
	m, _ := newList(t, 1_000)
	m.SetSize(20, 10)

	old := m.Attach(ch)
	ch.Post(navigate.ScrollCommand{Row: 10})
	stale := old()

	m.Attach(ch)
	assert.Equal(t, 1, ch.Subscribers())
	assert.Nil(t, m.Update(stale))
	assert.Equal(t, 0, m.TopRow())
}

func TestModel_KeysAndWheel(t *testing.T) {
	m, _ := newList(t, 100)
	m.SetSize(20, 10)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, m.TopRow())

	m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, 11, m.TopRow())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 10, m.TopRow())

	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.Equal(t, 13, m.TopRow())

	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, 10, m.TopRow())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	assert.Equal(t, 90, m.TopRow())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	assert.Equal(t, 0, m.TopRow())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, m.TopRow())
}

func TestModel_OutOfRangeBindPanics(t *testing.T) {
	m, _ := newList(t, 10)
	m.SetSize(20, 5)
	assert.Panics(t, func() { m.cellFor(10) })
	assert.Panics(t, func() { m.cellFor(-1) })
}
