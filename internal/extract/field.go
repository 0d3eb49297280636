package extract

// Field names a value extracted from a bill.
type Field string

// Fields produced by the vendor rule sets.
const (
	TotalAmount   Field = "total_amount"
	ServiceFrom   Field = "service_from"
	ServiceTo     Field = "service_to"
	InvoiceNumber Field = "invoice_number"
)

// State tags how a field value was resolved.
type State int

const (
	// Found means a matcher captured the value.
	Found State = iota
	// NotFound means the document was read but no matcher matched.
	NotFound
	// ParseError means the document could not be read at all.
	ParseError
)

// Sentinel texts carried by unresolved values.
const (
	NotFoundText   = "Not Found"
	ParseErrorText = "Parse Error"
)

func (s State) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case ParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// Value is one extracted field.
type Value struct {
	State State
	Text  string
}

// String returns the captured text, or the sentinel for unresolved values.
func (v Value) String() string {
	switch v.State {
	case Found:
		return v.Text
	case ParseError:
		return ParseErrorText
	default:
		return NotFoundText
	}
}

// OK reports whether the value was found.
func (v Value) OK() bool { return v.State == Found }

func found(s string) Value { return Value{State: Found, Text: s} }
