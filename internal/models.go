package internal

import (
	"errors"
	"fmt"
)

// Minute is a time of day counted in minutes since midnight.
type Minute int

// MinutesPerDay bounds every Minute value: valid times are 0..MinutesPerDay-1.
const MinutesPerDay Minute = 24 * 60

// String renders the minute as HH:MM.
func (m Minute) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// EventID is the numeric event code used in the club log.
type EventID int

const (
	// incoming
	EventArrived EventID = 1
	EventSatDown EventID = 2
	EventWaiting EventID = 3
	EventLeft    EventID = 4

	// outgoing
	EventForcedLeave EventID = 11
	EventSeated      EventID = 12
	EventError       EventID = 13
)

// ClubConfig holds the settings read from the head of the log. It is not
// modified after construction.
type ClubConfig struct {
	Tables int    // number of tables, > 0
	Open   Minute // opening time
	Close  Minute // closing time, >= Open
	Rate   int64  // price of one started hour
}

// Validate reports whether the configuration can drive a club.
func (c ClubConfig) Validate() error {
	if c.Tables <= 0 {
		return errors.New("table count must be positive")
	}
	if c.Open < 0 || c.Open >= MinutesPerDay || c.Close < 0 || c.Close >= MinutesPerDay {
		return errors.New("schedule out of day range")
	}
	if c.Open > c.Close {
		return errors.New("club closes before it opens")
	}
	if c.Rate <= 0 {
		return errors.New("hourly rate must be positive")
	}
	return nil
}

// Action is one validated line of the log. The set of implementations is
// closed: Arrive, SitDown, Wait and Leave.
type Action interface {
	At() Minute
	Who() string
	ID() EventID
	isAction()
}

// Header carries the fields shared by every action.
type Header struct {
	Time   Minute
	Client string
}

func (h Header) At() Minute  { return h.Time }
func (h Header) Who() string { return h.Client }

// Arrive is event 1: the client enters the club.
type Arrive struct{ Header }

// SitDown is event 2: the client takes a table. Table is 1-based.
type SitDown struct {
	Header
	Table int
}

// Wait is event 3: the client asks to wait for a free table.
type Wait struct{ Header }

// Leave is event 4: the client leaves the club.
type Leave struct{ Header }

func (Arrive) ID() EventID  { return EventArrived }
func (SitDown) ID() EventID { return EventSatDown }
func (Wait) ID() EventID    { return EventWaiting }
func (Leave) ID() EventID   { return EventLeft }

func (Arrive) isAction()  {}
func (SitDown) isAction() {}
func (Wait) isAction()    {}
func (Leave) isAction()   {}

// IParser reads a club log: first the settings, then actions one by one.
// ParseEvent returns io.EOF once the log is exhausted.
type IParser interface {
	ParseContext() (*ClubConfig, error)
	ParseEvent() (Action, error)
}
