package tracker

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

const historySheet = "History"

var historyHeaders = []string{
	"Sent At", "Year", "Month", "Gas", "Trash + Water", "Rent", "Total",
	"Gas PDF", "Trash PDF", "Recipient",
}

// ExportXLSX writes records to w as a single-sheet workbook.
func ExportXLSX(records []SendRecord, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return eris.Wrap(err, "tracker: name sheet")
	}

	if err := f.SetSheetRow(historySheet, "A1", &historyHeaders); err != nil {
		return eris.Wrap(err, "tracker: write header row")
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return eris.Wrapf(err, "tracker: row %d", i+2)
		}
		row := []any{
			r.Timestamp.String(), r.Year, r.Month,
			r.GasAmount, r.TrashAmount, r.RentAmount, r.TotalAmount,
			r.GasPDF, r.TrashPDF, r.TenantEmail,
		}
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			return eris.Wrapf(err, "tracker: write row %d", i+2)
		}
	}

	for _, cw := range []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 20},
		{"D", "G", 14},
		{"H", "I", 40},
		{"J", "J", 28},
	} {
		if err := f.SetColWidth(historySheet, cw.from, cw.to, cw.width); err != nil {
			return eris.Wrapf(err, "tracker: width of %s:%s", cw.from, cw.to)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return eris.Wrap(err, "tracker: write xlsx")
	}
	return nil
}
