// Package report renders the club log: echoed actions, generated events and
// the per-table summary.
package report

import (
	"bufio"
	"fmt"
	"io"

	"computerclub/internal"
	"computerclub/internal/club"
)

var reasonText = map[club.Reason]string{
	club.NotOpenYet:      "NotOpenYet",
	club.AlreadyInside:   "YouShallNotPass",
	club.PlaceBusy:       "PlaceIsBusy",
	club.ClientUnknown:   "ClientUnknown",
	club.CanWaitNoLonger: "ICanWaitNoLonger!",
	club.QueueFull:       "QueueFull",
}

// ReasonText returns the error name printed in an event 13 line.
func ReasonText(r club.Reason) string {
	if text, ok := reasonText[r]; ok {
		return text
	}
	return r.String()
}

// Duration renders a number of minutes as HH:MM.
func Duration(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ActionLine renders a parsed action the way it appears in the log.
func ActionLine(a internal.Action) string {
	if sd, ok := a.(internal.SitDown); ok {
		return fmt.Sprintf("%s %d %s %d", sd.At(), sd.ID(), sd.Who(), sd.Table)
	}
	return fmt.Sprintf("%s %d %s", a.At(), a.ID(), a.Who())
}

// OutcomeLine renders the generated event for an outcome. Accepted outcomes
// are already visible through the echoed action, and a QueueFull rejection is
// shown by the forced departure that follows it; both report ok=false.
func OutcomeLine(o club.Outcome) (line string, ok bool) {
	switch o.Kind {
	case club.Rejected:
		if o.Reason == club.QueueFull {
			return "", false
		}
		return fmt.Sprintf("%s %d %s", o.Time, internal.EventError, ReasonText(o.Reason)), true
	case club.Departed:
		return fmt.Sprintf("%s %d %s", o.Time, internal.EventForcedLeave, o.Client), true
	case club.Assigned:
		return fmt.Sprintf("%s %d %s %d", o.Time, internal.EventSeated, o.Client, o.Table), true
	}
	return "", false
}

// StatLine renders the summary line of the 1-based table number.
func StatLine(number int, s club.Stat) string {
	return fmt.Sprintf("%d %d %s", number, s.Revenue, Duration(s.Minutes))
}

// Printer writes report lines to an underlying writer. Write errors are
// sticky and surface from Flush.
type Printer struct {
	w *bufio.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: bufio.NewWriter(w)}
}

func (p *Printer) line(s string) {
	p.w.WriteString(s)
	p.w.WriteByte('\n')
}

// Time prints a bare HH:MM line (opening and closing time).
func (p *Printer) Time(m internal.Minute) {
	p.line(m.String())
}

// Action echoes an incoming action.
func (p *Printer) Action(a internal.Action) {
	p.line(ActionLine(a))
}

// Outcomes prints the generated events among outcomes.
func (p *Printer) Outcomes(outcomes []club.Outcome) {
	for _, o := range outcomes {
		if line, ok := OutcomeLine(o); ok {
			p.line(line)
		}
	}
}

// Summary prints one line per table, numbered from 1.
func (p *Printer) Summary(ledger []club.Stat) {
	for i, s := range ledger {
		p.line(StatLine(i+1, s))
	}
}

// Raw prints text unchanged.
func (p *Printer) Raw(text string) {
	p.line(text)
}

// Flush writes any buffered lines.
func (p *Printer) Flush() error {
	return p.w.Flush()
}
