package bill

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Notes used on the total line.
const (
	PartialNote     = "excludes unavailable items"
	SeeItemsMessage = "see individual items"
)

// LineItem is one row of the statement.
type LineItem struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
	Notes  string `json:"notes"`
}

// FixedCharge is a configured amount added after the bills, such as rent.
type FixedCharge struct {
	Label  string
	Amount string
	Notes  string
}

// Summary is the aggregated statement.
type Summary struct {
	// Items holds one line per record, then the fixed charges, then the total.
	Items []LineItem
	Total decimal.Decimal
	// Partial is set when unavailable amounts were left out of Total.
	Partial bool
	// Degraded is set when an amount could not be parsed; the total line
	// then reads "see individual items".
	Degraded bool
}

// Amount returns the amount of the first line labelled label, or
// [Unavailable].
func (s Summary) Amount(label string) string {
	for _, it := range s.Items {
		if it.Label == label {
			return it.Amount
		}
	}
	return Unavailable
}

// TotalLine returns the final line of the summary.
func (s Summary) TotalLine() LineItem {
	if len(s.Items) == 0 {
		return LineItem{Label: TotalItem}
	}
	return s.Items[len(s.Items)-1]
}

// Aggregate lays out records in the order given, then fixed charges, and
// appends a "Total Due" line summing every numeric amount.
func Aggregate(records []*Record, fixed []FixedCharge) Summary {
	var s Summary
	for _, r := range records {
		if r == nil {
			continue
		}
		s.Items = append(s.Items, LineItem{Label: r.Item, Amount: r.Amount, Notes: r.Period})
	}
	for _, c := range fixed {
		s.Items = append(s.Items, LineItem{Label: c.Label, Amount: c.Amount, Notes: c.Notes})
	}

	total := decimal.Zero
	for _, it := range s.Items {
		v, ok, err := ParseAmount(it.Amount)
		switch {
		case err != nil:
			s.Degraded = true
		case !ok:
			s.Partial = true
		default:
			total = total.Add(v)
		}
	}

	if s.Degraded {
		s.Items = append(s.Items, LineItem{Label: TotalItem, Amount: SeeItemsMessage})
		return s
	}
	s.Total = total
	line := LineItem{Label: TotalItem, Amount: FormatCurrency(total)}
	if s.Partial {
		line.Notes = PartialNote
	}
	s.Items = append(s.Items, line)
	return s
}

// ParseAmount parses a currency string such as "$1,204.10". It returns
// ok=false without error for unavailable amounts and an error for any
// other text that is not a number.
func ParseAmount(s string) (v decimal.Decimal, ok bool, err error) {
	clean := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	if isUnavailable(clean) {
		return decimal.Zero, false, nil
	}
	v, err = decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false, err
	}
	return v, true, nil
}

func isUnavailable(s string) bool {
	return s == "" || strings.EqualFold(s, Unavailable) || strings.EqualFold(s, "Not Found")
}

var printer = message.NewPrinter(language.English)

// FormatCurrency formats d as dollars with two decimals and thousands
// separators, e.g. "$1,080.00". Negative amounts read "-$5.00".
func FormatCurrency(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	sign := ""
	if rest, ok := strings.CutPrefix(fixed, "-"); ok {
		sign, fixed = "-", rest
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = printer.Sprintf("%d", n)
	}
	return sign + "$" + whole + "." + frac
}
