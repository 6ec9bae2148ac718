// Package navigate carries scroll commands from the jump menu to whichever
// list surface is currently attached.
package navigate

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrClosed is returned by Subscription.Next once the subscription has been
// released, either by Unsubscribe or because the channel was terminated.
var ErrClosed = errors.New("navigate: subscription closed")

// ScrollCommand asks the list to bring Row to the top edge of its viewport.
type ScrollCommand struct {
	Row int
}

// CommandMsg is the tea message produced by Subscription.Listen.
type CommandMsg struct {
	Command ScrollCommand
	Sub     *Subscription
}

// Channel is a broadcast bus of ScrollCommand values. Posting never blocks and
// commands posted while nobody is subscribed are dropped.
type Channel struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
	err  error

	// OnDrop, when set, is called for each command that reached no
	// subscriber. It runs with the channel lock released.
	OnDrop func(ScrollCommand)
}

func NewChannel() *Channel {
	return &Channel{subs: make(map[*Subscription]struct{})}
}

// Post publishes cmd to every current subscriber. A terminated channel drops
// it silently.
func (c *Channel) Post(cmd ScrollCommand) {
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return
	}
	subs := make([]*Subscription, 0, len(c.subs))
	for s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	delivered := false
	for _, s := range subs {
		if s.push(cmd) {
			delivered = true
		}
	}

	if !delivered && c.OnDrop != nil {
		c.OnDrop(cmd)
	}
}

// Subscribe attaches a new consumer. Commands posted earlier are not replayed.
// Subscribing to a terminated channel yields an already closed subscription.
func (c *Channel) Subscribe() *Subscription {
	s := &Subscription{
		ch:     c,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		s.close()
		return s
	}
	c.subs[s] = struct{}{}
	return s
}

// Fail terminates the channel with err. Every subscription is released and
// later posts are dropped. Only the first failure is kept.
func (c *Channel) Fail(err error) {
	if err == nil {
		err = ErrClosed
	}

	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return
	}
	c.err = err
	subs := c.subs
	c.subs = make(map[*Subscription]struct{})
	c.mu.Unlock()

	for s := range subs {
		s.close()
	}
}

// Err reports the failure the channel was terminated with, if any.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Subscribers returns the number of attached subscriptions.
func (c *Channel) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

func (c *Channel) remove(s *Subscription) {
	c.mu.Lock()
	delete(c.subs, s)
	c.mu.Unlock()
}

// Subscription is one consumer's mailbox. Commands are kept in post order
// until read by Next.
type Subscription struct {
	ch *Channel

	mu     sync.Mutex
	queue  []ScrollCommand
	closed bool

	signal chan struct{}
	done   chan struct{}
}

func (s *Subscription) push(cmd ScrollCommand) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, cmd)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
	return true
}

func (s *Subscription) pop() (ScrollCommand, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.queue) == 0 {
		return ScrollCommand{}, false
	}
	cmd := s.queue[0]
	s.queue[0] = ScrollCommand{}
	s.queue = s.queue[1:]
	return cmd, true
}

// Pending returns the number of queued, undelivered commands.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Next blocks until a command is available, ctx is done or the subscription
// is closed.
func (s *Subscription) Next(ctx context.Context) (ScrollCommand, error) {
	for {
		if cmd, ok := s.pop(); ok {
			return cmd, nil
		}

		select {
		case <-s.signal:
		case <-s.done:
			return ScrollCommand{}, ErrClosed
		case <-ctx.Done():
			return ScrollCommand{}, ctx.Err()
		}
	}
}

// Listen returns a command that waits for the next scroll command. It yields
// nil, which bubbletea ignores, once the subscription is closed, so the
// listener stops without surfacing an error.
func (s *Subscription) Listen() tea.Cmd {
	return func() tea.Msg {
		cmd, err := s.Next(context.Background())
		if err != nil {
			return nil
		}
		return CommandMsg{Command: cmd, Sub: s}
	}
}

// Unsubscribe detaches from the channel and discards queued commands. Safe to
// call more than once.
func (s *Subscription) Unsubscribe() {
	s.ch.remove(s)
	s.close()
}

// Closed reports whether the subscription no longer receives commands.
func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.queue = nil
	close(s.done)
}
