// Package club replays one day of a computer club: who is inside, who sits
// where, who waits, and how much every table earned.
package club

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"computerclub/internal"
)

// NoTable marks a client who is inside but not seated.
const NoTable = -1

// ErrClosed is returned (or raised) when the club is used after Closeout.
var ErrClosed = errors.New("club: day already closed")

type table struct {
	busy     bool
	since    internal.Minute
	occupant string
}

// Club is the state machine of a single day. It is not safe for concurrent use.
type Club struct {
	cfg internal.ClubConfig

	clients map[string]int // client -> table index or NoTable
	order   []string       // clients in arrival order
	tables  []table
	queue   []string
	ledger  []Stat
	closed  bool
}

// New returns a club with every table free.
func New(cfg internal.ClubConfig) (*Club, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("club config: %w", err)
	}
	return &Club{
		cfg:     cfg,
		clients: make(map[string]int),
		tables:  make([]table, cfg.Tables),
		queue:   make([]string, 0, cfg.Tables),
		ledger:  make([]Stat, cfg.Tables),
	}, nil
}

// Config returns the settings the club was created with.
func (c *Club) Config() internal.ClubConfig {
	return c.cfg
}

// Closed reports whether Closeout has run.
func (c *Club) Closed() bool {
	return c.closed
}

// Hours returns the number of started hours between start and end.
func Hours(start, end internal.Minute) int64 {
	return int64(math.Ceil(float64(end-start) / 60))
}

func (c *Club) mustBeOpen() {
	if c.closed {
		panic(ErrClosed)
	}
}

func (c *Club) index(number int) int {
	if number < 1 || number > len(c.tables) {
		panic(fmt.Sprintf("club: table %d out of range 1..%d", number, len(c.tables)))
	}
	return number - 1
}

// Arrive lets the client in.
func (c *Club) Arrive(t internal.Minute, client string) Outcome {
	c.mustBeOpen()
	if t < c.cfg.Open || t > c.cfg.Close {
		return rejected(t, client, NotOpenYet)
	}
	if _, ok := c.clients[client]; ok {
		return rejected(t, client, AlreadyInside)
	}
	c.clients[client] = NoTable
	c.order = append(c.order, client)
	return accepted(t, client)
}

// SitDown seats the client at the 1-based table number. A client already
// seated elsewhere moves, and the old table is billed up to t.
func (c *Club) SitDown(t internal.Minute, client string, number int) Outcome {
	c.mustBeOpen()
	idx := c.index(number)
	current, ok := c.clients[client]
	if !ok {
		return rejected(t, client, ClientUnknown)
	}
	if c.tables[idx].busy {
		return rejected(t, client, PlaceBusy)
	}
	if current != NoTable {
		c.vacate(current, t)
	} else {
		c.dequeue(client)
	}
	c.occupy(idx, client, t)
	return Outcome{Kind: Accepted, Time: t, Client: client, Table: number}
}

// Wait puts the client in the queue. When the queue is full the client is
// turned away, which yields a QueueFull rejection followed by a forced
// departure.
func (c *Club) Wait(t internal.Minute, client string) []Outcome {
	c.mustBeOpen()
	if c.freeTables() > 0 {
		return []Outcome{rejected(t, client, CanWaitNoLonger)}
	}
	current, ok := c.clients[client]
	if !ok {
		return []Outcome{rejected(t, client, ClientUnknown)}
	}
	if current != NoTable || slices.Contains(c.queue, client) {
		return []Outcome{rejected(t, client, CanWaitNoLonger)}
	}
	if len(c.queue) >= len(c.tables) {
		c.remove(client)
		return []Outcome{rejected(t, client, QueueFull), departed(t, client)}
	}
	c.queue = append(c.queue, client)
	return []Outcome{accepted(t, client)}
}

// Leave lets the client out. When a table is freed and someone is waiting,
// the outcome has AssignmentOwed set and the caller must follow up with
// AssignNext(t, outcome.Table).
func (c *Club) Leave(t internal.Minute, client string) Outcome {
	c.mustBeOpen()
	current, ok := c.clients[client]
	if !ok {
		return rejected(t, client, ClientUnknown)
	}
	if current == NoTable {
		c.dequeue(client)
		c.remove(client)
		return accepted(t, client)
	}
	c.vacate(current, t)
	c.remove(client)
	return Outcome{
		Kind:           Accepted,
		Time:           t,
		Client:         client,
		Table:          current + 1,
		AssignmentOwed: len(c.queue) > 0,
	}
}

// AssignNext seats the head of the queue at the freed 1-based table number.
// It must only be called when Leave reported AssignmentOwed.
func (c *Club) AssignNext(t internal.Minute, number int) Outcome {
	c.mustBeOpen()
	idx := c.index(number)
	if len(c.queue) == 0 {
		panic("club: AssignNext with an empty queue")
	}
	if c.tables[idx].busy {
		panic(fmt.Sprintf("club: AssignNext to busy table %d", number))
	}
	client := c.queue[0]
	c.queue = c.queue[1:]
	c.occupy(idx, client, t)
	return Outcome{Kind: Assigned, Time: t, Client: client, Table: number}
}

// Closeout ends the day: everyone still inside is sent away at closing time
// in arrival order, seated clients are billed, and the queue is dropped.
// Calling it again is a no-op that returns nil.
func (c *Club) Closeout() []Outcome {
	if c.closed {
		return nil
	}
	c.closed = true

	outcomes := make([]Outcome, 0, len(c.order))
	for _, client := range c.order {
		if idx := c.clients[client]; idx != NoTable {
			// a client may have sat down after closing time
			c.vacate(idx, max(c.cfg.Close, c.tables[idx].since))
		}
		outcomes = append(outcomes, departed(c.cfg.Close, client))
	}
	clear(c.clients)
	c.order = nil
	c.queue = c.queue[:0]
	return outcomes
}

// Apply dispatches a parsed action and returns the outcomes in display order.
// A Leave that frees a table for a waiting client is followed by the
// assignment.
func (c *Club) Apply(action internal.Action) ([]Outcome, error) {
	if c.closed {
		return nil, ErrClosed
	}
	t, client := action.At(), action.Who()
	switch a := action.(type) {
	case internal.Arrive:
		return []Outcome{c.Arrive(t, client)}, nil
	case internal.SitDown:
		if a.Table < 1 || a.Table > len(c.tables) {
			return nil, fmt.Errorf("club: table %d out of range 1..%d", a.Table, len(c.tables))
		}
		return []Outcome{c.SitDown(t, client, a.Table)}, nil
	case internal.Wait:
		return c.Wait(t, client), nil
	case internal.Leave:
		left := c.Leave(t, client)
		if !left.AssignmentOwed {
			return []Outcome{left}, nil
		}
		return []Outcome{left, c.AssignNext(t, left.Table)}, nil
	}
	return nil, fmt.Errorf("club: unsupported action %T", action)
}

// Ledger returns a copy of the per-table statistics, in table order.
func (c *Club) Ledger() []Stat {
	return slices.Clone(c.ledger)
}

// Queue returns a copy of the waiting queue, head first.
func (c *Club) Queue() []string {
	return slices.Clone(c.queue)
}

// Seat reports the 1-based table of a present client, 0 if the client is not
// seated, and ok=false if the client is not inside.
func (c *Club) Seat(client string) (number int, ok bool) {
	idx, ok := c.clients[client]
	if !ok {
		return 0, false
	}
	return idx + 1, true
}

func (c *Club) freeTables() int {
	free := 0
	for _, tb := range c.tables {
		if !tb.busy {
			free++
		}
	}
	return free
}

func (c *Club) occupy(idx int, client string, t internal.Minute) {
	c.tables[idx] = table{busy: true, since: t, occupant: client}
	c.clients[client] = idx
}

// vacate bills the table up to end and frees it.
func (c *Club) vacate(idx int, end internal.Minute) {
	tb := c.tables[idx]
	c.ledger[idx].Revenue += Hours(tb.since, end) * c.cfg.Rate
	c.ledger[idx].Minutes += int(end - tb.since)
	c.tables[idx] = table{}
	c.clients[tb.occupant] = NoTable
}

func (c *Club) dequeue(client string) {
	if i := slices.Index(c.queue, client); i >= 0 {
		c.queue = slices.Delete(c.queue, i, i+1)
	}
}

func (c *Club) remove(client string) {
	delete(c.clients, client)
	if i := slices.Index(c.order, client); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}
