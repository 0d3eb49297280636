// Package tracker keeps the append-only history of monthly statements
// that were sent, keyed by (year, month).
package tracker

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/porticus-lab/billrelay/internal/bill"
)

// Tracker records which months were already sent.
type Tracker interface {
	// WasSent reports whether a record exists for exactly (year, month).
	WasSent(ctx context.Context, year, month int) (bool, error)
	// Record appends rec.
	Record(ctx context.Context, rec SendRecord) error
	// List returns every record in insertion order.
	List(ctx context.Context) ([]SendRecord, error)
	Close() error
}

// SendRecord is one sent statement. Field order matches the columns of
// the history file.
type SendRecord struct {
	Timestamp   Timestamp `csv:"timestamp"`
	Year        int       `csv:"year"`
	Month       int       `csv:"month"`
	GasAmount   string    `csv:"gas_amount"`
	TrashAmount string    `csv:"trash_amount"`
	RentAmount  string    `csv:"rent_amount"`
	TotalAmount string    `csv:"total_amount"`
	GasPDF      string    `csv:"gas_pdf"`
	TrashPDF    string    `csv:"trash_pdf"`
	TenantEmail string    `csv:"tenant_email"`
}

// TimestampLayout is the on-disk format of [SendRecord.Timestamp].
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a time stored as "YYYY-MM-DD HH:MM:SS" local time.
type Timestamp time.Time

// Time returns t as a [time.Time].
func (t Timestamp) Time() time.Time { return time.Time(t) }

// String returns t formatted with [TimestampLayout].
func (t Timestamp) String() string { return time.Time(t).Format(TimestampLayout) }

// MarshalText implements [encoding.TextMarshaler].
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Layouts also accepted when reading, for files edited by hand.
var altTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// UnmarshalText implements [encoding.TextUnmarshaler]. It accepts
// [TimestampLayout] and a few common spreadsheet layouts.
func (t *Timestamp) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	for _, layout := range append([]string{TimestampLayout}, altTimestampLayouts...) {
		if v, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*t = Timestamp(v)
			return nil
		}
	}
	return eris.Errorf("tracker: timestamp %q: unknown layout", s)
}

// NewRecord builds the record for a statement sent for target's month.
// docs maps line item labels to the downloaded document paths; only their
// base names are kept.
func NewRecord(target time.Time, s bill.Summary, docs map[string]string, recipient string, now time.Time) SendRecord {
	return SendRecord{
		Timestamp:   Timestamp(now),
		Year:        target.Year(),
		Month:       int(target.Month()),
		GasAmount:   s.Amount(bill.GasItem),
		TrashAmount: s.Amount(bill.WaterTrashItem),
		RentAmount:  s.Amount(bill.RentItem),
		TotalAmount: s.TotalLine().Amount,
		GasPDF:      baseName(docs[bill.GasItem]),
		TrashPDF:    baseName(docs[bill.WaterTrashItem]),
		TenantEmail: recipient,
	}
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

func matches(rec SendRecord, year, month int) bool {
	return rec.Year == year && rec.Month == month
}
