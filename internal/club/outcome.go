package club

import "computerclub/internal"

// Reason tells why an operation was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	NotOpenYet
	AlreadyInside
	PlaceBusy
	ClientUnknown
	CanWaitNoLonger
	QueueFull
)

var reasonNames = map[Reason]string{
	ReasonNone:      "None",
	NotOpenYet:      "NotOpenYet",
	AlreadyInside:   "AlreadyInside",
	PlaceBusy:       "PlaceBusy",
	ClientUnknown:   "ClientUnknown",
	CanWaitNoLonger: "CanWaitNoLonger",
	QueueFull:       "QueueFull",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "Reason(?)"
}

// Kind tags an Outcome.
type Kind int

const (
	// Accepted: the action was applied.
	Accepted Kind = iota
	// Rejected: the action was refused, see Outcome.Reason.
	Rejected
	// Departed: the club removed the client (queue overflow or closing time).
	Departed
	// Assigned: the head of the queue took a freed table.
	Assigned
)

func (k Kind) String() string {
	switch k {
	case Accepted:
		return "Accepted"
	case Rejected:
		return "Rejected"
	case Departed:
		return "Departed"
	case Assigned:
		return "Assigned"
	}
	return "Kind(?)"
}

// Outcome is the club's response to one operation.
type Outcome struct {
	Kind   Kind
	Time   internal.Minute
	Client string
	Reason Reason

	// Table is 1-based. For Assigned it is the table taken; for an accepted
	// Leave it is the table freed. Zero when no table is involved.
	Table int

	// AssignmentOwed is set on an accepted Leave when the freed table must go
	// to the head of the queue via AssignNext at the same minute.
	AssignmentOwed bool
}

func accepted(t internal.Minute, client string) Outcome {
	return Outcome{Kind: Accepted, Time: t, Client: client}
}

func rejected(t internal.Minute, client string, reason Reason) Outcome {
	return Outcome{Kind: Rejected, Time: t, Client: client, Reason: reason}
}

func departed(t internal.Minute, client string) Outcome {
	return Outcome{Kind: Departed, Time: t, Client: client}
}

// Stat is the ledger of one table.
type Stat struct {
	Revenue int64 // money earned, in rate units
	Minutes int   // time the table was occupied
}
