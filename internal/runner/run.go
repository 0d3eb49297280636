// Package runner drives the monthly statement: it checks the send history,
// fetches every bill, composes the statement, mails it and records the send.
package runner

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/porticus-lab/billrelay/internal/bill"
	"github.com/porticus-lab/billrelay/internal/notify"
	"github.com/porticus-lab/billrelay/internal/tracker"
)

// Fetcher retrieves one bill. A returned record may carry sentinel values;
// an error means the bill could not be retrieved at all.
type Fetcher interface {
	Fetch(ctx context.Context) (*bill.Record, error)
}

// StatementPrinter renders the composed statement to a PDF attachment.
type StatementPrinter interface {
	Print(ctx context.Context, body notify.Body, target time.Time) (string, error)
}

// Settings holds the people and amounts that go into the statement.
type Settings struct {
	TenantName   string
	TenantEmail  string
	LandlordName string
	SenderEmail  string
	RentAmount   string
	RentNotes    string
	DryRun       bool
}

// Report describes a finished run.
type Report struct {
	RunID       string
	Target      time.Time
	AlreadySent bool
	Sent        bool
	Summary     bill.Summary
	Message     notify.Message
}

// Runner executes the monthly flow.
type Runner struct {
	settings  Settings
	fetchers  []Fetcher
	tracker   tracker.Tracker
	mailer    notify.Mailer
	statement StatementPrinter
	now       func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithStatement attaches a printed copy of the statement to every message.
func WithStatement(p StatementPrinter) Option {
	return func(r *Runner) { r.statement = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New returns a Runner. Fetchers run in the order given and their records
// appear in that order on the statement.
func New(s Settings, fetchers []Fetcher, t tracker.Tracker, m notify.Mailer, opts ...Option) *Runner {
	r := &Runner{
		settings: s,
		fetchers: fetchers,
		tracker:  t,
		mailer:   m,
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// TargetMonth returns the first day of the month after now.
func TargetMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
}

// RentCharge returns the rent line for amount, adding a dollar sign unless
// the amount already has one.
func RentCharge(amount, notes string) bill.FixedCharge {
	amount = strings.TrimSpace(amount)
	if !strings.HasPrefix(amount, "$") {
		amount = "$" + amount
	}
	return bill.FixedCharge{Label: bill.RentItem, Amount: amount, Notes: notes}
}

// Run executes one monthly run. It returns without error when the target
// month was already sent.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	now := r.now()
	rep := &Report{RunID: uuid.NewString(), Target: TargetMonth(now)}
	log := zap.L().With(
		zap.String("run_id", rep.RunID),
		zap.String("target", rep.Target.Format("2006-01")),
	)

	year, month := rep.Target.Year(), int(rep.Target.Month())
	sent, err := r.tracker.WasSent(ctx, year, month)
	if err != nil {
		log.Warn("could not read send history, assuming not sent", zap.Error(err))
		sent = false
	}
	if sent {
		rep.AlreadySent = true
		log.Info("statement already sent for "+rep.Target.Format("January 2006")+
			"; to resend, delete its row from the send history and run again")
		return rep, nil
	}

	records := make([]*bill.Record, 0, len(r.fetchers))
	docs := make(map[string]string)
	for i, f := range r.fetchers {
		rec, err := f.Fetch(ctx)
		if err != nil {
			return nil, eris.Wrapf(err, "runner: fetch bill %d", i+1)
		}
		if rec == nil {
			return nil, eris.Errorf("runner: fetch bill %d returned no record", i+1)
		}
		log.Info("bill fetched",
			zap.String("item", rec.Item),
			zap.String("amount", rec.Amount),
			zap.String("document", rec.Document),
		)
		records = append(records, rec)
		if rec.HasDocument() {
			docs[rec.Item] = rec.Document
		}
	}

	rent := RentCharge(r.settings.RentAmount, r.settings.RentNotes)
	rep.Summary = bill.Aggregate(records, []bill.FixedCharge{rent})
	total := rep.Summary.TotalLine()
	log.Info("statement aggregated",
		zap.String("total", total.Amount),
		zap.Bool("partial", rep.Summary.Partial),
		zap.Bool("degraded", rep.Summary.Degraded),
	)

	body, err := notify.Compose(notify.Letter{
		TenantName:   r.settings.TenantName,
		LandlordName: r.settings.LandlordName,
		Items:        rep.Summary.Items,
	})
	if err != nil {
		return nil, err
	}

	attachments := make([]string, 0, len(records)+1)
	for _, rec := range records {
		if rec.HasDocument() {
			attachments = append(attachments, rec.Document)
		}
	}
	if r.statement != nil {
		path, err := r.statement.Print(ctx, body, rep.Target)
		if err != nil {
			log.Warn("statement not printed", zap.Error(err))
		} else {
			attachments = append(attachments, path)
		}
	}

	rep.Message = notify.Message{
		FromName:    r.settings.LandlordName,
		From:        r.settings.SenderEmail,
		To:          r.settings.TenantEmail,
		Subject:     notify.Subject(rep.Target),
		Body:        body,
		Attachments: attachments,
	}

	if r.settings.DryRun {
		log.Info("dry run, statement not sent",
			zap.String("subject", rep.Message.Subject),
			zap.Strings("attachments", attachments),
			zap.String("body", body.Plain),
		)
		return rep, nil
	}

	if err := r.mailer.Send(ctx, rep.Message); err != nil {
		return rep, eris.Wrap(err, "runner: send statement")
	}
	rep.Sent = true
	log.Info("statement sent", zap.String("to", rep.Message.To))

	sendRec := tracker.NewRecord(rep.Target, rep.Summary, docs, r.settings.TenantEmail, r.now())
	if err := r.tracker.Record(ctx, sendRec); err != nil {
		log.Error("statement sent but not recorded", zap.Error(err))
	}
	return rep, nil
}
