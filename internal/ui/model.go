package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"bible-tui/internal/navigate"
	"bible-tui/internal/rows"
	"bible-tui/internal/source"
	"bible-tui/internal/theme"
	"bible-tui/internal/ui/jumpmenu"
	"bible-tui/internal/ui/listview"
)

type loadState int

const (
	stateLoading loadState = iota
	stateLoaded
	stateFailed
)

func (s loadState) String() string {
	switch s {
	case stateLoading:
		return "loading"
	case stateLoaded:
		return "loaded"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// headerHeight is the title line plus its bottom border.
const headerHeight = 2

// Options configure the reader.
type Options struct {
	Source            source.Source
	Theme             theme.Theme
	Overscan          int
	AnimationFrames   int
	AnimationInterval time.Duration
	// Context bounds document loads. Defaults to context.Background.
	Context           context.Context
	Logger            zerolog.Logger
}

type loadedMsg struct {
	gen     int
	store   *rows.Store
	digest  string
	elapsed time.Duration
}

type loadFailedMsg struct {
	gen int
	err error
}

// Model is the top-level reader. It owns the loaded rows, the virtualized
// list and the jump menu, and connects the two through a navigation channel.
type Model struct {
	opts    Options
	ctx     context.Context
	log     zerolog.Logger
	styles  theme.Styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	state     loadState
	err       error
	gen       int
	reloading bool

	store   *rows.Store
	digest  string
	channel *navigate.Channel
	list    *listview.Model
	menu    jumpmenu.Model

	menuOpen bool
	width    int
	height   int
	ready    bool
}

func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	styles := opts.Theme.Styles()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(opts.Theme.Accent)),
	)

	h := help.New()
	h.Styles.ShortKey = styles.Help.Bold(true)
	h.Styles.ShortDesc = styles.Help
	h.Styles.ShortSeparator = styles.Help
	h.Styles.FullKey = styles.Help.Bold(true)
	h.Styles.FullDesc = styles.Help
	h.Styles.FullSeparator = styles.Help

	ch := navigate.NewChannel()
	log := opts.Logger
	ch.OnDrop = func(cmd navigate.ScrollCommand) {
		log.Debug().Int("row", cmd.Row).Msg("scroll command dropped, no subscriber")
	}

	return Model{
		opts:    opts,
		ctx:     ctx,
		log:     log,
		styles:  styles,
		keys:    newKeyMap(),
		help:    h,
		spinner: sp,
		channel: ch,
		state:   stateLoading,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// load starts one asynchronous document load tagged with the current
// generation. Results from an older generation are discarded on arrival.
func (m Model) load() tea.Cmd {
	gen, src, ctx, log := m.gen, m.opts.Source, m.ctx, m.log
	return func() tea.Msg {
		start := time.Now()
		log.Info().Str("source", src.String()).Msg("loading document")

		doc, err := src.Load(ctx)
		if err != nil {
			return loadFailedMsg{gen: gen, err: err}
		}

		store := rows.Flatten(doc)
		if err := store.Validate(); err != nil {
			panic(fmt.Sprintf("flattened rows are inconsistent: %v", err))
		}
		return loadedMsg{
			gen:     gen,
			store:   store,
			digest:  doc.Digest(),
			elapsed: time.Since(start),
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if m.state != stateLoading && !m.reloading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if msg.gen != m.gen {
			m.log.Debug().Int("gen", msg.gen).Msg("discarding stale load result")
			return m, nil
		}
		return m, m.applyStore(msg)

	case loadFailedMsg:
		if msg.gen != m.gen {
			m.log.Debug().Int("gen", msg.gen).Msg("discarding stale load failure")
			return m, nil
		}
		m.log.Error().Err(msg.err).Msg("document load failed")
		m.fail(msg.err)
		return m, nil

	case jumpmenu.ClosedMsg:
		m.menuOpen = false
		if msg.Target != nil {
			m.log.Debug().Str("book", msg.Target.Label).Int("row", msg.Target.RowIndex).Msg("jump")
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			if m.list != nil {
				m.list.Close()
			}
			return m, tea.Quit
		}
		if m.state == stateFailed && key.Matches(msg, m.keys.reload) {
			return m, m.reload()
		}
		if m.state != stateLoaded {
			return m, nil
		}
		if m.menuOpen {
			var cmd tea.Cmd
			m.menu, cmd = m.menu.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.menu):
			m.menuOpen = true
			m.menu.SelectRow(m.list.TopRow())
			return m, nil
		case key.Matches(msg, m.keys.reload):
			if m.reloading {
				return m, nil
			}
			return m, m.reload()
		case key.Matches(msg, m.keys.help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		}
		return m, m.list.Update(msg)

	case tea.MouseMsg:
		if m.state == stateLoaded && !m.menuOpen {
			return m, m.list.Update(msg)
		}
		return m, nil
	}

	// scroll commands, animation frames and menu internals
	if m.list != nil {
		cmds = append(cmds, m.list.Update(msg))
	}
	if m.menuOpen {
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// reload starts a new load generation. A failed reader goes back to the
// loading screen, a loaded one keeps showing its rows until the result lands.
func (m *Model) reload() tea.Cmd {
	m.gen++
	if m.state == stateFailed {
		m.state = stateLoading
		m.err = nil
	} else {
		m.reloading = true
	}
	return tea.Batch(m.spinner.Tick, m.load())
}

// applyStore installs a freshly loaded store. The first load builds the list
// and attaches it to the channel. A reload swaps the row source, which
// restarts layout when the row count changed.
func (m *Model) applyStore(msg loadedMsg) tea.Cmd {
	m.reloading = false

	if m.state == stateLoaded && msg.digest != "" && msg.digest == m.digest {
		m.log.Info().Str("digest", msg.digest).Msg("document unchanged")
		return nil
	}

	m.store = msg.store
	m.digest = msg.digest
	m.state = stateLoaded
	m.err = nil

	m.log.Info().
		Int("rows", msg.store.Len()).
		Int("books", len(msg.store.JumpTargets())).
		Str("digest", msg.digest).
		Dur("elapsed", msg.elapsed).
		Msg("document loaded")

	var cmd tea.Cmd
	rowFn := renderRow(msg.store, m.styles)
	if m.list == nil {
		m.list = listview.New(msg.store.Len(), rowFn,
			listview.WithOverscan(m.opts.Overscan),
			listview.WithAnimation(m.opts.AnimationFrames, m.opts.AnimationInterval),
			listview.WithLogger(m.log),
		)
		cmd = m.list.Attach(m.channel)
	} else {
		same := m.list.Count() == msg.store.Len()
		m.list.SetRows(msg.store.Len(), rowFn)
		if same {
			m.list.Invalidate()
		}
	}

	m.menu = jumpmenu.New(msg.store.JumpTargets(), m.channel, m.opts.Theme)
	m.menuOpen = false
	m.resize()
	return cmd
}

// fail tears the reading surface down and keeps only the diagnostic.
func (m *Model) fail(err error) {
	m.state = stateFailed
	m.err = err
	m.reloading = false
	m.store = nil
	m.digest = ""
	m.menuOpen = false
	if m.list != nil {
		m.list.Close()
		m.list = nil
	}
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	h := max(m.height-headerHeight-m.helpHeight(), 0)
	if m.list != nil {
		m.list.SetSize(m.width, h)
	}
	if m.state == stateLoaded {
		m.menu.SetSize(m.width, h)
	}
	m.help.Width = m.width
}

func (m Model) helpHeight() int {
	if !m.help.ShowAll {
		return 1
	}
	return lipgloss.Height(m.help.View(m.keys))
}

func renderRow(store *rows.Store, styles theme.Styles) listview.RowFunc {
	return func(i int) string {
		r := store.Row(i)
		if r.Kind == rows.KindHeader {
			return styles.Header.Render(r.Text)
		}
		return styles.Line.Render(r.Text)
	}
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	switch m.state {
	case stateLoading:
		return fmt.Sprintf("\n  %s Loading %s...\n\n  %s",
			m.spinner.View(), m.opts.Source, m.styles.Help.Render("q: quit"))
	case stateFailed:
		return fmt.Sprintf("\n  %s\n\n  %s",
			m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)), m.styles.Help.Render("r: retry • q: quit"))
	}

	var body string
	if m.menuOpen {
		body = m.menu.View()
	} else {
		body = m.list.View()
	}

	return strings.Join([]string{m.headerView(), body, m.footerView()}, "\n")
}

func (m Model) headerView() string {
	title := m.styles.Title.Render("Bible")
	if target, ok := m.store.BookAt(m.list.TopRow()); ok {
		title += m.styles.Status.Render(" · " + target.Label)
	}
	if m.reloading {
		title += " " + m.spinner.View()
	}
	return m.styles.Bar.Width(max(m.width, 1)).Render(title)
}

func (m Model) footerView() string {
	return m.help.View(m.keys)
}
