// Package system drives a club replay: it reads the log, feeds the club one
// action at a time and prints the report.
package system

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"computerclub/internal"
	"computerclub/internal/club"
	"computerclub/internal/config"
	"computerclub/internal/id"
	"computerclub/internal/parser"
	"computerclub/internal/report"
	"computerclub/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// ClubSystem replays one log into one club.
type ClubSystem struct {
	Log     *log.Logger
	Verbose bool
	RunID   string

	out    io.Writer
	tracer trace.Tracer
}

// NewClubSystem writes the report to out. A nil logger discards diagnostics.
func NewClubSystem(out io.Writer, logger *log.Logger) *ClubSystem {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ClubSystem{
		Log:    logger,
		out:    out,
		tracer: telemetry.Tracer(),
	}
}

// Start reads the whole log from in before touching the club, so a malformed
// line aborts the run with no report. In that case the offending line is
// printed alone (nothing when a header line is missing) and the
// *parser.Error is returned.
func (cls *ClubSystem) Start(ctx context.Context, in io.Reader) (err error) {
	ctx, span := cls.tracer.Start(ctx, "club.replay", trace.WithAttributes(
		attribute.String("club.run_id", cls.RunID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	p := parser.NewParser(in, cls.Log)
	settings, err := p.ParseContext()
	if err != nil {
		return cls.rejectInput(err)
	}
	actions, err := p.ParseAll()
	if err != nil {
		return cls.rejectInput(err)
	}
	span.SetAttributes(
		attribute.Int("club.tables", settings.Tables),
		attribute.String("club.open", settings.Open.String()),
		attribute.String("club.close", settings.Close.String()),
		attribute.Int64("club.rate", settings.Rate),
		attribute.Int("club.actions", len(actions)),
	)

	c, err := club.New(*settings)
	if err != nil {
		return err
	}
	printer := report.NewPrinter(cls.out)
	printer.Time(settings.Open)

	for _, action := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		printer.Action(action)
		outcomes, err := c.Apply(action)
		if err != nil {
			return fmt.Errorf("apply %s: %w", report.ActionLine(action), err)
		}
		cls.trace(span, action, outcomes)
		printer.Outcomes(outcomes)
	}

	err = cls.FinishClub(span, c, printer)
	if err != nil {
		return err
	}
	return printer.Flush()
}

// FinishClub closes the day and prints the closing time and table summary.
func (cls *ClubSystem) FinishClub(span trace.Span, c *club.Club, printer *report.Printer) error {
	outcomes := c.Closeout()
	cls.trace(span, nil, outcomes)
	printer.Outcomes(outcomes)
	printer.Time(c.Config().Close)

	ledger := c.Ledger()
	printer.Summary(ledger)

	var revenue int64
	for _, s := range ledger {
		revenue += s.Revenue
	}
	span.SetAttributes(attribute.Int64("club.revenue", revenue))
	if cls.Verbose {
		cls.Log.Printf("closed at %s, %d sent away, revenue %d", c.Config().Close, len(outcomes), revenue)
	}
	return nil
}

func (cls *ClubSystem) rejectInput(err error) error {
	var perr *parser.Error
	if !errors.As(err, &perr) {
		return err
	}
	cls.Log.Println(perr)
	if errors.Is(perr, io.ErrUnexpectedEOF) {
		// a missing header line has nothing to echo
		return err
	}
	printer := report.NewPrinter(cls.out)
	printer.Raw(perr.Text)
	if ferr := printer.Flush(); ferr != nil {
		return errors.Join(err, ferr)
	}
	return err
}

// trace records the generated events of one action on the span.
func (cls *ClubSystem) trace(span trace.Span, action internal.Action, outcomes []club.Outcome) {
	for _, o := range outcomes {
		if o.Kind == club.Accepted {
			continue
		}
		attrs := []attribute.KeyValue{
			attribute.String("client", o.Client),
			attribute.String("time", o.Time.String()),
		}
		switch o.Kind {
		case club.Rejected:
			attrs = append(attrs, attribute.String("reason", o.Reason.String()))
			if action != nil && cls.Verbose {
				cls.Log.Printf("%s: %s", report.ActionLine(action), o.Reason)
			}
		case club.Assigned:
			attrs = append(attrs, attribute.Int("table", o.Table))
		}
		span.AddEvent("club."+o.Kind.String(), trace.WithAttributes(attrs...))
	}
}

// Run executes the club command: it sets up tracing, opens the input file
// and replays it to out. Diagnostics go to errOut.
func Run(ctx context.Context, cfg config.Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.InputPath == "" {
		return errors.New("input file is required")
	}

	runID, err := id.NewRunID()
	if err != nil {
		return err
	}
	logger := log.New(errOut, fmt.Sprintf("ClubSystem %s: ", runID), log.LstdFlags)

	shutdown, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTelEndpoint,
		Enabled:     cfg.OTelEnabled,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Printf("otel shutdown: %v", err)
		}
	}()

	file, err := os.Open(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	cls := NewClubSystem(out, logger)
	cls.Verbose = cfg.Verbose
	cls.RunID = runID
	return cls.Start(ctx, file)
}
