package tracker_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/porticus-lab/billrelay/internal/bill"
	"github.com/porticus-lab/billrelay/internal/tracker"
)

var sentAt = time.Date(2025, 2, 27, 8, 15, 0, 0, time.Local)

func sample(year, month int) tracker.SendRecord {
	return tracker.SendRecord{
		Timestamp:   tracker.Timestamp(sentAt),
		Year:        year,
		Month:       month,
		GasAmount:   "$50.00",
		TrashAmount: "$30.00",
		RentAmount:  "$1000",
		TotalAmount: "$1,080.00",
		GasPDF:      "Gas_Bill_2025-02-27_081500.pdf",
		TrashPDF:    "Utilities_and_Services_bill.pdf",
		TenantEmail: "tenant@example.com",
	}
}

func trackers(t *testing.T) map[string]tracker.Tracker {
	t.Helper()
	dir := t.TempDir()
	sq, err := tracker.NewSQLite(context.Background(), filepath.Join(dir, "sent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]tracker.Tracker{
		"csv":    tracker.NewCSV(filepath.Join(dir, "sent_emails.csv")),
		"sqlite": sq,
	}
}

func TestTracker_WasSent(t *testing.T) {
	ctx := context.Background()
	for name, tr := range trackers(t) {
		t.Run(name, func(t *testing.T) {
			sent, err := tr.WasSent(ctx, 2025, 3)
			require.NoError(t, err)
			assert.False(t, sent, "empty store")

			require.NoError(t, tr.Record(ctx, sample(2025, 3)))

			sent, err = tr.WasSent(ctx, 2025, 3)
			require.NoError(t, err)
			assert.True(t, sent)

			sent, err = tr.WasSent(ctx, 2025, 4)
			require.NoError(t, err)
			assert.False(t, sent)

			sent, err = tr.WasSent(ctx, 2024, 3)
			require.NoError(t, err)
			assert.False(t, sent)
		})
	}
}

func TestTracker_ListAppends(t *testing.T) {
	ctx := context.Background()
	for name, tr := range trackers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, tr.Record(ctx, sample(2025, 3)))
			require.NoError(t, tr.Record(ctx, sample(2025, 4)))

			recs, err := tr.List(ctx)
			require.NoError(t, err)
			require.Len(t, recs, 2)
			assert.Equal(t, 3, recs[0].Month)
			assert.Equal(t, 4, recs[1].Month)
			assert.Equal(t, "$1,080.00", recs[1].TotalAmount)
			assert.True(t, sentAt.Equal(recs[0].Timestamp.Time()))
		})
	}
}

func TestCSVTracker_MissingFile(t *testing.T) {
	tr := tracker.NewCSV(filepath.Join(t.TempDir(), "nope.csv"))
	sent, err := tr.WasSent(context.Background(), 2025, 3)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestCSVTracker_FileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_emails.csv")
	tr := tracker.NewCSV(path)
	ctx := context.Background()
	require.NoError(t, tr.Record(ctx, sample(2025, 3)))
	require.NoError(t, tr.Record(ctx, sample(2025, 4)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "header written once")
	assert.Equal(t, "timestamp,year,month,gas_amount,trash_amount,rent_amount,total_amount,gas_pdf,trash_pdf,tenant_email", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2025-02-27 08:15:00,2025,3,$50.00,"), lines[1])
	assert.Contains(t, lines[1], `"$1,080.00"`)
}

func TestCSVTracker_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_emails.csv")
	content := "timestamp,year,month,gas_amount,trash_amount,rent_amount,total_amount,gas_pdf,trash_pdf,tenant_email\n" +
		"2025-01-28 10:00:00,2025,2,$41.00,$60.00,$1000,\"$1,101.00\",a.pdf,b.pdf,t@example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sent, err := tracker.NewCSV(path).WasSent(context.Background(), 2025, 2)
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestCSVTracker_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_emails.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,year,month\n2025-01-28 10:00:00,\"2025\"x,3\n"), 0o644))

	_, err := tracker.NewCSV(path).WasSent(context.Background(), 2025, 2)
	assert.Error(t, err)
}

func TestCSVTracker_HandEditedTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_emails.csv")
	content := "timestamp,year,month,gas_amount,trash_amount,rent_amount,total_amount,gas_pdf,trash_pdf,tenant_email\n" +
		"2/27/2025 8:15,2025,3,$50.00,$30.00,$1000,\"$1,080.00\",a.pdf,b.pdf,t@example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	tr := tracker.NewCSV(path)

	sent, err := tr.WasSent(context.Background(), 2025, 3)
	require.NoError(t, err)
	assert.True(t, sent)

	recs, err := tr.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, time.Date(2025, 2, 27, 8, 15, 0, 0, time.Local), recs[0].Timestamp.Time())
}

func TestCSVTracker_UnparseableTimestampStillCounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_emails.csv")
	content := "timestamp,year,month,gas_amount,trash_amount,rent_amount,total_amount,gas_pdf,trash_pdf,tenant_email\n" +
		"last tuesday,2025,3,$50.00,$30.00,$1000,\"$1,080.00\",a.pdf,b.pdf,t@example.com\n" +
		"2025-03-28 10:00:00,2025,4,$41.00,$60.00,$1000,\"$1,101.00\",c.pdf,d.pdf,t@example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	tr := tracker.NewCSV(path)

	sent, err := tr.WasSent(context.Background(), 2025, 3)
	require.NoError(t, err)
	assert.True(t, sent, "year and month decide, the timestamp does not")

	recs, err := tr.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1, "the row with a bad timestamp is skipped")
	assert.Equal(t, 4, recs[0].Month)
}

func TestCSVTracker_BadMonthRowSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_emails.csv")
	content := "timestamp,year,month\n2025-01-28 10:00:00,2025,March\n2025-02-28 10:00:00,2025,3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sent, err := tracker.NewCSV(path).WasSent(context.Background(), 2025, 3)
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestNewRecord(t *testing.T) {
	s := bill.Aggregate([]*bill.Record{
		{Item: bill.GasItem, Amount: "$50.00"},
		{Item: bill.WaterTrashItem, Amount: "N/A"},
	}, []bill.FixedCharge{{Label: bill.RentItem, Amount: "$1000"}})

	docs := map[string]string{bill.GasItem: "/bills/Gas_Bills/Gas_Bill_2025.pdf"}
	target := time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local)
	rec := tracker.NewRecord(target, s, docs, "t@example.com", sentAt)

	assert.Equal(t, 2025, rec.Year)
	assert.Equal(t, 4, rec.Month)
	assert.Equal(t, "$50.00", rec.GasAmount)
	assert.Equal(t, "N/A", rec.TrashAmount)
	assert.Equal(t, "$1000", rec.RentAmount)
	assert.Equal(t, "$1,050.00", rec.TotalAmount)
	assert.Equal(t, "Gas_Bill_2025.pdf", rec.GasPDF)
	assert.Empty(t, rec.TrashPDF)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tr, err := tracker.Open(context.Background(), "", filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.IsType(t, &tracker.CSVTracker{}, tr)

	tr, err = tracker.Open(context.Background(), tracker.DriverSQLite, filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	assert.IsType(t, &tracker.SQLiteTracker{}, tr)
	require.NoError(t, tr.Close())

	_, err = tracker.Open(context.Background(), "postgres", "x")
	assert.Error(t, err)
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tracker.ExportXLSX([]tracker.SendRecord{sample(2025, 3)}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("History")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sent At", rows[0][0])
	assert.Equal(t, "2025-02-27 08:15:00", rows[1][0])
	assert.Equal(t, "$1,080.00", rows[1][6])
	assert.Equal(t, "3", rows[1][2])
	assert.Equal(t, "tenant@example.com", rows[1][9])

	width, err := f.GetColWidth("History", "H")
	require.NoError(t, err)
	assert.InDelta(t, 40, width, 0.01)
}

func TestExportXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tracker.ExportXLSX(nil, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("History")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 10)
}
