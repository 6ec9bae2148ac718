package listview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cell is a display container: it holds the wrapped lines of exactly one
// row at a time.
type cell struct {
	index  int
	lines  []string
	height int
}

// bind overwrites everything the cell displays with row index's content
// wrapped at width.
func (c *cell) bind(index int, content string, width int) {
	c.index = index
	c.lines = strings.Split(lipgloss.NewStyle().Width(width).Render(content), "\n")
	c.height = len(c.lines)
}

func (c *cell) reset() {
	c.index = -1
	c.lines = nil
	c.height = 0
}

// PoolStats describes display container usage.
type PoolStats struct {
	Created int // containers ever constructed
	Reused  int // acquisitions served from the free list
	Free    int // containers currently on the free list
}

// pool is a free list of cells. All rows share one container class, so a
// single list is enough.
type pool struct {
	free    []*cell
	created int
	reused  int
}

func (p *pool) acquire() *cell {
	if n := len(p.free); n > 0 {
		c := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.reused++
		return c
	}
	p.created++
	return &cell{index: -1}
}

func (p *pool) release(c *cell) {
	c.reset()
	p.free = append(p.free, c)
}

func (p *pool) stats() PoolStats {
	return PoolStats{Created: p.created, Reused: p.reused, Free: len(p.free)}
}
