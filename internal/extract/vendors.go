package extract

const (
	amount    = `\$([0-9,]+\.?[0-9]*)`
	date      = `[0-9]{1,2}/[0-9]{1,2}/[0-9]{2,4}`
	dateGroup = `(` + date + `)`
)

// GasRules is the rule set for Atmos Energy gas bills.
func GasRules() []Rule {
	return []Rule{
		{
			Fields: []Field{TotalAmount},
			Matchers: []Matcher{
				Regexp(`(?i)TOTAL\s+AMOUNT\s+DUE\s+` + amount),
				Regexp(`(?i)Total\s+Amount\s+Due\s+` + amount),
				Regexp(`(?i)TOTAL\s+DUE\s+` + amount),
			},
			Normalize: Dollars,
		},
		{
			Fields: []Field{ServiceFrom, ServiceTo},
			Matchers: []Matcher{
				Regexp(`(?is)Date\s+of\s+Service.*?From\s+To.*?` + dateGroup + `\s+` + dateGroup),
				Regexp(`(?is)` + dateGroup + `\s+` + dateGroup + `.*?Actual\s+Usage`),
			},
		},
	}
}

// WaterTrashRules is the rule set for Dallas water and trash bills.
func WaterTrashRules() []Rule {
	return []Rule{
		{
			Fields: []Field{InvoiceNumber},
			Matchers: []Matcher{
				Regexp(`(?is)Invoice\s+Issued\s+[0-9/]+\s+([0-9]+)`),
				Regexp(`(?is)([0-9]{12})`),
				Regexp(`(?is)Invoice.*?([0-9]{10,})`),
			},
		},
		{
			Fields: []Field{TotalAmount},
			Matchers: []Matcher{
				Regexp(`(?i)T\s*otal\s+Amount\s+Due\s+` + amount),
				Regexp(`(?i)Total\s+Amount\s+Due\s+` + amount),
				Regexp(`(?i)Amount\s+Due\s+` + amount),
			},
			Normalize: Dollars,
		},
		{
			Fields:   []Field{ServiceFrom},
			Matchers: []Matcher{Regexp(`(?i)Service\s+from\s+` + dateGroup)},
		},
		{
			Fields:   []Field{ServiceTo},
			Matchers: []Matcher{Regexp(`(?i)Service\s+from\s+` + date + `\s+to\s+` + dateGroup)},
		},
	}
}

// Gas returns an Engine for gas bills.
func Gas() *Engine { return NewEngine(GasRules()...) }

// WaterTrash returns an Engine for water and trash bills.
func WaterTrash() *Engine { return NewEngine(WaterTrashRules()...) }

// ForVendor returns the engine for a vendor name ("gas" or "trash").
func ForVendor(name string) (*Engine, bool) {
	switch name {
	case "gas":
		return Gas(), true
	case "trash", "water":
		return WaterTrash(), true
	}
	return nil, false
}
