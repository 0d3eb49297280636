// Package bill turns extracted bill fields into records and aggregates
// them into the line items of a monthly statement.
package bill

import (
	"time"

	"github.com/porticus-lab/billrelay/internal/extract"
)

// Line item labels.
const (
	GasItem        = "Gas"
	WaterTrashItem = "Trash + Water"
	RentItem       = "Rent"
	TotalItem      = "Total Due"
)

// Unavailable stands in for an amount that could not be determined.
const Unavailable = "N/A"

const dateLayout = "2006-01-02"

// Record is the outcome of retrieving one vendor's bill.
type Record struct {
	Item        string `json:"item"`
	Amount      string `json:"amount"`
	ServiceFrom string `json:"service_from"`
	ServiceTo   string `json:"service_to"`
	// Document is the path of the downloaded PDF, empty if none arrived.
	Document string `json:"document,omitempty"`
	Invoice  string `json:"invoice,omitempty"`
	Period   string `json:"period"`
}

// NewRecord builds a record from extraction results. An amount that was
// not found becomes [Unavailable]; the period falls back to the date of now
// unless both service dates were found.
func NewRecord(item string, res extract.Result, path string, now time.Time) *Record {
	from, to := res.Get(extract.ServiceFrom), res.Get(extract.ServiceTo)

	r := &Record{
		Item:        item,
		Amount:      res.Get(extract.TotalAmount).String(),
		ServiceFrom: from.String(),
		ServiceTo:   to.String(),
		Document:    path,
		Period:      now.Format(dateLayout),
	}
	if res.Get(extract.TotalAmount).State == extract.NotFound {
		r.Amount = Unavailable
	}
	if inv := res.Get(extract.InvoiceNumber); inv.OK() {
		r.Invoice = inv.Text
	}
	if from.OK() && to.OK() {
		r.Period = from.Text + " to " + to.Text
	}
	return r
}

// Unretrieved returns the record for a session that finished without a
// document.
func Unretrieved(item string, now time.Time) *Record {
	return &Record{
		Item:        item,
		Amount:      Unavailable,
		ServiceFrom: extract.NotFoundText,
		ServiceTo:   extract.NotFoundText,
		Period:      now.Format(dateLayout),
	}
}

// HasDocument reports whether a PDF backs the record.
func (r *Record) HasDocument() bool {
	return r != nil && r.Document != ""
}
