package extract

import (
	"regexp"
	"strings"
)

// Matcher searches text and returns the capture groups of the first match.
type Matcher func(text string) ([]string, bool)

// Regexp returns a Matcher for expr. It panics if expr does not compile,
// like [regexp.MustCompile]; rule sets are built from constants.
func Regexp(expr string) Matcher {
	re := regexp.MustCompile(expr)
	return func(text string) ([]string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return nil, false
		}
		return m[1:], true
	}
}

// Rule resolves one or more fields from an ordered list of matchers.
// Capture group i of the winning matcher fills Fields[i].
type Rule struct {
	Fields    []Field
	Matchers  []Matcher
	Normalize func(string) string
}

// apply runs the matchers in order and writes the outcome for every
// field of the rule into out.
func (r Rule) apply(text string, out map[Field]Value) {
	for _, f := range r.Fields {
		out[f] = Value{State: NotFound}
	}
	for _, m := range r.Matchers {
		groups, ok := m(text)
		if !ok {
			continue
		}
		for i, f := range r.Fields {
			if i >= len(groups) {
				break
			}
			out[f] = found(r.normalize(groups[i]))
		}
		return
	}
}

func (r Rule) normalize(s string) string {
	if r.Normalize != nil {
		return r.Normalize(s)
	}
	return strings.TrimSpace(s)
}

// Dollars normalizes a captured amount to a single leading "$".
func Dollars(s string) string {
	return "$" + strings.TrimSpace(s)
}
