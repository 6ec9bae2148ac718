// Package listview renders a very long list of rows while only keeping
// display containers for the rows in and around the viewport.
package listview

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"bible-tui/internal/navigate"
)

// RowFunc returns the display content of one row. Styling is up to the
// caller; the list only wraps it to the current width.
type RowFunc func(index int) string

// State is the lifecycle of one list surface.
type State int

const (
	StateUninitialized State = iota
	StateBound
	StateLaidOut
	StateActive
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBound:
		return "bound"
	case StateLaidOut:
		return "laid-out"
	case StateActive:
		return "active"
	case StateTornDown:
		return "torn-down"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	defaultOverscan      = 5
	defaultFrames        = 8
	defaultFrameInterval = 16 * time.Millisecond
	wheelDelta           = 3
)

type Option func(*Model)

// WithOverscan sets how many rows above and below the viewport stay bound.
func WithOverscan(n int) Option {
	return func(m *Model) {
		if n >= 0 {
			m.overscan = n
		}
	}
}

// WithAnimation configures scroll-to transitions. frames <= 1 jumps
// directly to the target.
func WithAnimation(frames int, interval time.Duration) Option {
	return func(m *Model) {
		m.frames = frames
		if interval > 0 {
			m.frameInterval = interval
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Model) { m.log = l }
}

func WithKeyMap(km KeyMap) Option {
	return func(m *Model) { m.KeyMap = km }
}

type animation struct {
	active   bool
	id       int
	from, to int
	frame    int
}

type frameMsg struct {
	owner *Model
	id    int
}

// Model is a virtualized list surface. It is driven from the bubbletea event
// loop and is not safe for concurrent use.
type Model struct {
	KeyMap KeyMap

	count int
	rowFn RowFunc
	state State

	width, height int

	// viewport position: first visible row and how many of its lines are
	// scrolled off the top edge
	top     int
	topLine int

	live map[int]*cell
	pool pool

	overscan      int
	frames        int
	frameInterval time.Duration
	anim          animation

	// last reachable position, recomputed after size or count changes
	bottomValid bool
	maxTop      int
	maxTopLine  int

	pendingRow int
	hasPending bool

	sub *navigate.Subscription
	log zerolog.Logger
}

// New binds a list to count rows produced by rowFn.
func New(count int, rowFn RowFunc, opts ...Option) *Model {
	m := &Model{
		KeyMap:        DefaultKeyMap(),
		live:          make(map[int]*cell),
		overscan:      defaultOverscan,
		frames:        defaultFrames,
		frameInterval: defaultFrameInterval,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if rowFn != nil {
		m.count = max(count, 0)
		m.rowFn = rowFn
		m.state = StateBound
	}
	return m
}

func (m *Model) State() State { return m.state }
func (m *Model) Count() int   { return m.count }

// TopRow returns the index of the row at the top edge of the viewport.
func (m *Model) TopRow() int { return m.top }

// TopLine returns how many lines of the top row are scrolled out of view.
func (m *Model) TopLine() int { return m.topLine }

// Pending reports a scroll command waiting for the first layout.
func (m *Model) Pending() (int, bool) { return m.pendingRow, m.hasPending }

func (m *Model) Animating() bool { return m.anim.active }

// Live returns the number of rows currently bound to a display container.
func (m *Model) Live() int { return len(m.live) }

// LiveRows returns the bound row indices in ascending order.
func (m *Model) LiveRows() []int {
	out := make([]int, 0, len(m.live))
	for i := range m.live {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (m *Model) PoolStats() PoolStats { return m.pool.stats() }

func (m *Model) laidOut() bool {
	return m.state == StateLaidOut || m.state == StateActive
}

// Attach subscribes the list to ch and returns the command that listens for
// the first scroll command. An earlier subscription is released.
func (m *Model) Attach(ch *navigate.Channel) tea.Cmd {
	if m.state == StateTornDown {
		return nil
	}
	if m.sub != nil {
		m.sub.Unsubscribe()
	}
	m.sub = ch.Subscribe()
	return m.sub.Listen()
}

// Close unsubscribes from the command channel and releases every display
// container. The list ignores all further calls.
func (m *Model) Close() {
	if m.state == StateTornDown {
		return
	}
	if m.sub != nil {
		m.sub.Unsubscribe()
		m.sub = nil
	}
	m.releaseAll()
	m.anim = animation{}
	m.hasPending = false
	m.state = StateTornDown
}

// SetSize lays the list out for a w x h viewport. The first call completes
// the initial layout and applies a scroll command that arrived before it.
func (m *Model) SetSize(w, h int) {
	if m.state == StateTornDown || m.state == StateUninitialized {
		return
	}
	w = max(w, 1)
	h = max(h, 0)

	if w != m.width {
		// wrapping depends on width, every bound row must be rebound
		m.releaseAll()
	}
	if w != m.width || h != m.height {
		m.bottomValid = false
	}
	m.width, m.height = w, h

	if m.state == StateBound {
		m.state = StateLaidOut
		m.log.Debug().Int("width", w).Int("height", h).Int("rows", m.count).Msg("initial layout")
		if m.hasPending {
			row := m.pendingRow
			m.hasPending = false
			m.log.Debug().Int("row", row).Msg("flushing pending scroll")
			if m.count > 0 {
				m.setPosition(clampInt(row, 0, m.count-1), 0)
			}
		}
		m.state = StateActive
	}

	m.setPosition(m.top, m.topLine)
	m.layout()
}

// SetRows replaces the row source. When count differs from the current count
// every display container is released and layout restarts from scratch.
// A scroll command still waiting for the first layout is kept.
func (m *Model) SetRows(count int, rowFn RowFunc) {
	if m.state == StateTornDown || rowFn == nil {
		return
	}
	count = max(count, 0)
	m.rowFn = rowFn
	if m.state == StateUninitialized {
		m.count = count
		m.state = StateBound
		return
	}
	if count == m.count {
		return
	}

	m.log.Debug().Int("from", m.count).Int("to", count).Msg("row count changed, invalidating layout")
	m.releaseAll()
	m.count = count
	m.bottomValid = false
	m.top, m.topLine = min(m.top, max(count-1, 0)), 0

	if m.laidOut() {
		m.setPosition(m.top, 0)
		m.layout()
	}
}

// Invalidate rebinds every visible row from the row source while keeping the
// scroll position. Use it when row content changed but the count did not.
func (m *Model) Invalidate() {
	if !m.laidOut() {
		return
	}
	m.releaseAll()
	m.bottomValid = false
	m.setPosition(m.top, m.topLine)
	m.layout()
}

// ScrollTo aligns row with the top edge of the viewport using an animated
// transition. Before the first layout the request is held and applied once
// the list has a size.
func (m *Model) ScrollTo(row int) tea.Cmd {
	switch {
	case m.state == StateTornDown:
		return nil
	case !m.laidOut():
		m.pendingRow, m.hasPending = row, true
		return nil
	case m.count == 0:
		return nil
	}

	target, _ := m.clampPosition(clampInt(row, 0, m.count-1), 0)
	if m.frames <= 1 || target == m.top {
		m.anim = animation{id: m.anim.id + 1}
		m.setPosition(clampInt(row, 0, m.count-1), 0)
		m.layout()
		return nil
	}

	m.anim = animation{
		active: true,
		id:     m.anim.id + 1,
		from:   m.top,
		to:     clampInt(row, 0, m.count-1),
	}
	return m.nextFrame()
}

func (m *Model) nextFrame() tea.Cmd {
	msg := frameMsg{owner: m, id: m.anim.id}
	return tea.Tick(m.frameInterval, func(time.Time) tea.Msg { return msg })
}

func (m *Model) stepAnimation() tea.Cmd {
	m.anim.frame++
	if m.anim.frame >= m.frames {
		m.anim.active = false
		m.setPosition(m.anim.to, 0)
		m.layout()
		return nil
	}

	t := float64(m.anim.frame) / float64(m.frames)
	eased := 1 - (1-t)*(1-t)*(1-t)
	row := m.anim.from + int(float64(m.anim.to-m.anim.from)*eased)
	m.setPosition(row, 0)
	m.layout()
	return m.nextFrame()
}

func (m *Model) stopAnimation() {
	if m.anim.active {
		m.anim.active = false
		m.anim.id++
	}
}

// LineDown scrolls n terminal lines towards the end.
func (m *Model) LineDown(n int) {
	if !m.laidOut() || m.count == 0 {
		return
	}
	top, line := m.top, m.topLine
	maxTop, maxLine := m.maxPosition()
	for ; n > 0; n-- {
		if top > maxTop || (top == maxTop && line >= maxLine) {
			break
		}
		line++
		if line >= m.measure(top) {
			top++
			line = 0
		}
	}
	m.setPosition(top, line)
	m.layout()
}

// LineUp scrolls n terminal lines towards the start.
func (m *Model) LineUp(n int) {
	if !m.laidOut() || m.count == 0 {
		return
	}
	top, line := m.top, m.topLine
	for ; n > 0; n-- {
		if line > 0 {
			line--
			continue
		}
		if top == 0 {
			break
		}
		top--
		line = m.measure(top) - 1
	}
	m.setPosition(top, line)
	m.layout()
}

func (m *Model) PageDown() { m.LineDown(max(m.height, 1)) }
func (m *Model) PageUp()   { m.LineUp(max(m.height, 1)) }

func (m *Model) GotoTop() {
	if !m.laidOut() {
		return
	}
	m.setPosition(0, 0)
	m.layout()
}

func (m *Model) GotoBottom() {
	if !m.laidOut() || m.count == 0 {
		return
	}
	m.setPosition(m.maxPosition())
	m.layout()
}

// AtBottom reports whether the last row is fully visible.
func (m *Model) AtBottom() bool {
	if m.count == 0 {
		return true
	}
	maxTop, maxLine := m.maxPosition()
	return m.top == maxTop && m.topLine == maxLine
}

// Update handles scroll commands from the attached subscription, animation
// frames, scrolling keys and the mouse wheel.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if m.state == StateTornDown {
		return nil
	}

	switch msg := msg.(type) {
	case navigate.CommandMsg:
		if m.sub == nil || msg.Sub != m.sub {
			// from a subscription this surface no longer owns
			return nil
		}
		return tea.Batch(m.ScrollTo(msg.Command.Row), m.sub.Listen())

	case frameMsg:
		if msg.owner != m || !m.anim.active || msg.id != m.anim.id {
			return nil
		}
		return m.stepAnimation()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.KeyMap.Down):
			m.stopAnimation()
			m.LineDown(1)
		case key.Matches(msg, m.KeyMap.Up):
			m.stopAnimation()
			m.LineUp(1)
		case key.Matches(msg, m.KeyMap.PageDown):
			m.stopAnimation()
			m.PageDown()
		case key.Matches(msg, m.KeyMap.PageUp):
			m.stopAnimation()
			m.PageUp()
		case key.Matches(msg, m.KeyMap.HalfDown):
			m.stopAnimation()
			m.LineDown(max(m.height/2, 1))
		case key.Matches(msg, m.KeyMap.HalfUp):
			m.stopAnimation()
			m.LineUp(max(m.height/2, 1))
		case key.Matches(msg, m.KeyMap.Top):
			m.stopAnimation()
			m.GotoTop()
		case key.Matches(msg, m.KeyMap.Bottom):
			m.stopAnimation()
			m.GotoBottom()
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m.stopAnimation()
			m.LineDown(wheelDelta)
		case tea.MouseButtonWheelUp:
			m.stopAnimation()
			m.LineUp(wheelDelta)
		}
	}

	return nil
}

// View renders the viewport from the bound containers only.
func (m *Model) View() string {
	if !m.laidOut() || m.height == 0 {
		return ""
	}

	lines := make([]string, 0, m.height)
	skip := m.topLine
	for i := m.top; i < m.count && len(lines) < m.height; i++ {
		c, ok := m.live[i]
		if !ok {
			break
		}
		for _, l := range c.lines[skip:] {
			if len(lines) == m.height {
				break
			}
			lines = append(lines, l)
		}
		skip = 0
	}
	for len(lines) < m.height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// cellFor returns the container bound to row i, binding one if needed.
func (m *Model) cellFor(i int) *cell {
	if i < 0 || i >= m.count {
		panic(fmt.Sprintf("listview: row %d out of range [0,%d)", i, m.count))
	}
	if c, ok := m.live[i]; ok {
		return c
	}
	c := m.pool.acquire()
	c.bind(i, m.rowFn(i), m.width)
	m.live[i] = c
	return c
}

func (m *Model) measure(i int) int {
	return m.cellFor(i).height
}

func (m *Model) releaseAll() {
	for i, c := range m.live {
		delete(m.live, i)
		m.pool.release(c)
	}
}

// maxPosition returns the furthest position that still fills the viewport.
// It only measures rows from the end, so it costs one viewport of binds.
func (m *Model) maxPosition() (int, int) {
	if m.bottomValid {
		return m.maxTop, m.maxTopLine
	}

	h := max(m.height, 1)
	top, line := 0, 0
	acc := 0
	for i := m.count - 1; i >= 0; i-- {
		acc += m.measure(i)
		if acc >= h {
			top, line = i, acc-h
			break
		}
	}

	m.maxTop, m.maxTopLine, m.bottomValid = top, line, true
	return top, line
}

func (m *Model) clampPosition(top, line int) (int, int) {
	if m.count == 0 {
		return 0, 0
	}
	top = clampInt(top, 0, m.count-1)
	line = clampInt(line, 0, m.measure(top)-1)

	maxTop, maxLine := m.maxPosition()
	if top > maxTop || (top == maxTop && line > maxLine) {
		return maxTop, maxLine
	}
	return top, line
}

func (m *Model) setPosition(top, line int) {
	m.top, m.topLine = m.clampPosition(top, line)
}

// layout binds the rows of the viewport plus the overscan margin and returns
// every other container to the pool.
func (m *Model) layout() {
	if !m.laidOut() {
		return
	}
	if m.count == 0 {
		m.releaseAll()
		return
	}

	// Every row is at least one line tall, so nothing past top+height can
	// be visible. Release what is certainly out of range before binding.
	first := max(m.top-m.overscan, 0)
	bound := min(m.top+m.height+m.overscan, m.count-1)
	m.releaseOutside(first, bound)

	last := m.top
	filled := m.measure(m.top) - m.topLine
	for filled < m.height && last+1 < m.count {
		last++
		filled += m.measure(last)
	}
	last = min(last+m.overscan, m.count-1)

	for i := first; i <= last; i++ {
		m.cellFor(i)
	}
	m.releaseOutside(first, last)
}

func (m *Model) releaseOutside(first, last int) {
	for i, c := range m.live {
		if i < first || i > last {
			delete(m.live, i)
			m.pool.release(c)
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
