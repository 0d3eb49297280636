package tracker

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteTracker stores records in a sent_emails table.
type SQLiteTracker struct {
	db *sql.DB
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sent_emails (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp    TEXT NOT NULL,
	year         INTEGER NOT NULL,
	month        INTEGER NOT NULL,
	gas_amount   TEXT NOT NULL DEFAULT '',
	trash_amount TEXT NOT NULL DEFAULT '',
	rent_amount  TEXT NOT NULL DEFAULT '',
	total_amount TEXT NOT NULL DEFAULT '',
	gas_pdf      TEXT NOT NULL DEFAULT '',
	trash_pdf    TEXT NOT NULL DEFAULT '',
	tenant_email TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sent_emails_period ON sent_emails(year, month);
`

// NewSQLite opens the database at dsn and creates the table if needed.
func NewSQLite(ctx context.Context, dsn string) (*SQLiteTracker, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "tracker: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "tracker: exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "tracker: migrate")
	}
	return &SQLiteTracker{db: db}, nil
}

func (t *SQLiteTracker) WasSent(ctx context.Context, year, month int) (bool, error) {
	var n int
	err := t.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sent_emails WHERE year = ? AND month = ?`, year, month,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrap(err, "tracker: query sent_emails")
	}
	return n > 0, nil
}

func (t *SQLiteTracker) Record(ctx context.Context, rec SendRecord) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO sent_emails (timestamp, year, month, gas_amount, trash_amount, rent_amount,
			total_amount, gas_pdf, trash_pdf, tenant_email) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.String(), rec.Year, rec.Month, rec.GasAmount, rec.TrashAmount, rec.RentAmount,
		rec.TotalAmount, rec.GasPDF, rec.TrashPDF, rec.TenantEmail,
	)
	return eris.Wrap(err, "tracker: insert sent_emails")
}

func (t *SQLiteTracker) List(ctx context.Context) ([]SendRecord, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT timestamp, year, month, gas_amount, trash_amount, rent_amount,
			total_amount, gas_pdf, trash_pdf, tenant_email
		FROM sent_emails ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "tracker: list sent_emails")
	}
	defer rows.Close()

	var out []SendRecord
	for rows.Next() {
		var (
			rec SendRecord
			ts  string
		)
		if err := rows.Scan(&ts, &rec.Year, &rec.Month, &rec.GasAmount, &rec.TrashAmount,
			&rec.RentAmount, &rec.TotalAmount, &rec.GasPDF, &rec.TrashPDF, &rec.TenantEmail); err != nil {
			return nil, eris.Wrap(err, "tracker: scan sent_emails")
		}
		if err := rec.Timestamp.UnmarshalText([]byte(ts)); err != nil {
			zap.L().Warn("skipping unreadable history row", zap.Int("year", rec.Year), zap.Int("month", rec.Month), zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "tracker: iterate sent_emails")
}

func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}
