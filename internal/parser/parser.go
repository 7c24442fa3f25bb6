package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"computerclub/internal"
)

const timeLayout = "15:04"

var (
	errTimeFormat = errors.New("time must be HH:MM")
	clientName    = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

// Parser reads a club log line by line. It implements internal.IParser.
type Parser struct {
	Log     *log.Logger    // diagnostics
	Scanner *bufio.Scanner // input lines

	line   int
	club   *internal.ClubConfig
	last   internal.Minute
	closed bool
}

var _ internal.IParser = (*Parser)(nil)

// NewParser wraps r. A nil logger discards diagnostics.
func NewParser(r io.Reader, logger *log.Logger) *Parser {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Parser{
		Log:     logger,
		Scanner: scanner,
	}
}

// Line returns the number of the last line read.
func (p *Parser) Line() int {
	return p.line
}

// next returns the next line without its trailing CR. ok is false at end of input.
func (p *Parser) next() (text string, ok bool, err error) {
	if !p.Scanner.Scan() {
		if err := p.Scanner.Err(); err != nil {
			return "", false, fmt.Errorf("read line %d: %w", p.line+1, err)
		}
		return "", false, nil
	}
	p.line++
	return strings.TrimSuffix(p.Scanner.Text(), "\r"), true, nil
}

// header reads one of the three settings lines, reporting a missing line with code.
func (p *Parser) header(code Code) (string, error) {
	text, ok, err := p.next()
	if err != nil {
		return "", err
	}
	if !ok {
		if p.line == 0 {
			return "", newError(CodeInputEmpty, 1, "", io.ErrUnexpectedEOF)
		}
		return "", newError(code, p.line+1, "", io.ErrUnexpectedEOF)
	}
	return text, nil
}

// ParseContext parses the first three lines: table count, schedule and hourly rate.
func (p *Parser) ParseContext() (*internal.ClubConfig, error) {
	if p.club != nil {
		return nil, errors.New("context already parsed")
	}
	var club internal.ClubConfig

	text, err := p.header(CodeTableCountInvalid)
	if err != nil {
		return nil, err
	}
	club.Tables, err = p.ParsePositive(text)
	if err != nil {
		return nil, newError(CodeTableCountInvalid, p.line, text, err)
	}

	text, err = p.header(CodeScheduleInvalid)
	if err != nil {
		return nil, err
	}
	times := strings.Split(text, " ")
	if len(times) != 2 {
		return nil, newError(CodeScheduleInvalid, p.line, text, errors.New("expected opening and closing time"))
	}
	if club.Open, err = p.ParseTime(times[0]); err != nil {
		return nil, newError(CodeScheduleInvalid, p.line, text, err)
	}
	if club.Close, err = p.ParseTime(times[1]); err != nil {
		return nil, newError(CodeScheduleInvalid, p.line, text, err)
	}
	if club.Open > club.Close {
		return nil, newError(CodeScheduleInvalid, p.line, text, errors.New("club closes before it opens"))
	}

	text, err = p.header(CodeRateInvalid)
	if err != nil {
		return nil, err
	}
	rate, err := p.ParsePositive(text)
	if err != nil {
		return nil, newError(CodeRateInvalid, p.line, text, err)
	}
	club.Rate = int64(rate)

	p.club = &club
	return &club, nil
}

// ParseEvent parses the next action line. It returns io.EOF after the last line.
func (p *Parser) ParseEvent() (internal.Action, error) {
	if p.club == nil {
		return nil, errors.New("context must be parsed before events")
	}
	if p.closed {
		return nil, io.EOF
	}
	text, ok, err := p.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		p.closed = true
		return nil, io.EOF
	}

	action, err := p.parseAction(text)
	if err != nil {
		p.Log.Printf("line %d: %v", p.line, err)
		return nil, newError(CodeEventInvalid, p.line, text, err)
	}
	if action.At() < p.last {
		return nil, newError(CodeEventOutOfOrder, p.line, text,
			fmt.Errorf("%s is earlier than %s", action.At(), p.last))
	}
	p.last = action.At()
	return action, nil
}

// ParseAll reads every remaining action. On error nothing is returned, so a
// malformed log never reaches the club.
func (p *Parser) ParseAll() ([]internal.Action, error) {
	var actions []internal.Action
	for {
		action, err := p.ParseEvent()
		if errors.Is(err, io.EOF) {
			return actions, nil
		}
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
}

func (p *Parser) parseAction(text string) (internal.Action, error) {
	words := strings.Split(text, " ")
	if len(words) < 3 {
		return nil, errors.New("incorrect event recording")
	}
	at, err := p.ParseTime(words[0])
	if err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(words[1])
	if err != nil {
		return nil, fmt.Errorf("event id %q: %w", words[1], err)
	}
	if !clientName.MatchString(words[2]) {
		return nil, fmt.Errorf("client name %q has forbidden characters", words[2])
	}
	header := internal.Header{Time: at, Client: words[2]}

	if internal.EventID(id) == internal.EventSatDown {
		if len(words) != 4 {
			return nil, errors.New("sit down needs exactly one table number")
		}
		table, err := p.ParsePositive(words[3])
		if err != nil {
			return nil, fmt.Errorf("table number: %w", err)
		}
		if table > p.club.Tables {
			return nil, fmt.Errorf("table %d does not exist", table)
		}
		return internal.SitDown{Header: header, Table: table}, nil
	}
	if len(words) != 3 {
		return nil, fmt.Errorf("event %d takes no arguments", id)
	}

	switch internal.EventID(id) {
	case internal.EventArrived:
		return internal.Arrive{Header: header}, nil
	case internal.EventWaiting:
		return internal.Wait{Header: header}, nil
	case internal.EventLeft:
		return internal.Leave{Header: header}, nil
	}
	return nil, fmt.Errorf("unknown event id %d", id)
}

// ParsePositive parses a strictly positive decimal integer (table count, rate, table number).
func (p *Parser) ParsePositive(str string) (int, error) {
	value, err := strconv.Atoi(str)
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("%d is not positive", value)
	}
	return value, nil
}

// ParseTime parses an HH:MM time of day. Both parts must have two digits.
func (p *Parser) ParseTime(str string) (internal.Minute, error) {
	if len(str) != len(timeLayout) {
		return 0, errTimeFormat
	}
	t, err := time.Parse(timeLayout, str)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errTimeFormat, err)
	}
	return internal.Minute(t.Hour()*60 + t.Minute()), nil
}
