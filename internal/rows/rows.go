// Package rows flattens a nested document into a single indexable row
// sequence plus the jump targets that point at each book header.
package rows

import (
	"fmt"

	"bible-tui/internal/bible"
)

type Kind uint8

const (
	KindHeader Kind = iota
	KindLine
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindLine:
		return "line"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Row is one renderable unit: a book header or a single verse line.
type Row struct {
	Kind Kind
	Text string
}

func Header(text string) Row { return Row{Kind: KindHeader, Text: text} }
func Line(text string) Row   { return Row{Kind: KindLine, Text: text} }

// JumpTarget points at the header row of one book.
type JumpTarget struct {
	Label    string
	RowIndex int
}

// Store is the flattened, read-only result of a load. It is built once by
// Flatten and never mutated afterwards.
type Store struct {
	rows    []Row
	targets []JumpTarget
}

// Flatten emits, for each book in order, one header row followed by every
// line of every chapter. Chapters are concatenated without separators.
func Flatten(doc bible.Document) *Store {
	total := len(doc.Books) + doc.LineCount()

	s := &Store{
		rows:    make([]Row, 0, total),
		targets: make([]JumpTarget, 0, len(doc.Books)),
	}

	for _, book := range doc.Books {
		s.targets = append(s.targets, JumpTarget{Label: book.Name, RowIndex: len(s.rows)})
		s.rows = append(s.rows, Header(book.Name))
		for _, chapter := range book.Chapters {
			for _, line := range chapter {
				s.rows = append(s.rows, Line(line))
			}
		}
	}

	return s
}

func (s *Store) Len() int { return len(s.rows) }

// Row returns the row at index i. An out of range index panics: callers are
// expected to stay within Len.
func (s *Store) Row(i int) Row { return s.rows[i] }

func (s *Store) Rows() []Row { return s.rows }

func (s *Store) JumpTargets() []JumpTarget { return s.targets }

// Lines returns the number of body rows.
func (s *Store) Lines() int { return len(s.rows) - len(s.targets) }

// BookAt returns the jump target of the book that contains row i, or false
// when the store is empty or i is out of range.
func (s *Store) BookAt(i int) (JumpTarget, bool) {
	if i < 0 || i >= len(s.rows) || len(s.targets) == 0 {
		return JumpTarget{}, false
	}

	lo, hi := 0, len(s.targets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.targets[mid].RowIndex <= i {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return s.targets[lo], true
}

// Validate checks that every jump target indexes a header row carrying its
// label and that targets are strictly increasing.
func (s *Store) Validate() error {
	prev := -1
	for i, t := range s.targets {
		if t.RowIndex <= prev {
			return fmt.Errorf("jump target %d (%q): row %d not after %d", i, t.Label, t.RowIndex, prev)
		}
		if t.RowIndex >= len(s.rows) {
			return fmt.Errorf("jump target %d (%q): row %d out of range [0,%d)", i, t.Label, t.RowIndex, len(s.rows))
		}
		row := s.rows[t.RowIndex]
		if row.Kind != KindHeader || row.Text != t.Label {
			return fmt.Errorf("jump target %d (%q): row %d is %s %q", i, t.Label, t.RowIndex, row.Kind, row.Text)
		}
		prev = t.RowIndex
	}

	headers := 0
	for _, r := range s.rows {
		if r.Kind == KindHeader {
			headers++
		}
	}
	if headers != len(s.targets) {
		return fmt.Errorf("%d header rows but %d jump targets", headers, len(s.targets))
	}
	return nil
}
