package portal

import (
	"fmt"

	"github.com/chromedp/chromedp"
)

// LocatorKind selects how a Locator value is interpreted.
type LocatorKind int

const (
	ByID LocatorKind = iota + 1
	ByXPath
	ByCSS
)

// Locator identifies one element of a portal page.
type Locator struct {
	Kind  LocatorKind
	Value string
}

// ID locates an element by its id attribute.
func ID(id string) Locator { return Locator{Kind: ByID, Value: id} }

// XPath locates an element by an XPath expression.
func XPath(expr string) Locator { return Locator{Kind: ByXPath, Value: expr} }

// CSS locates an element by a CSS selector.
func CSS(sel string) Locator { return Locator{Kind: ByCSS, Value: sel} }

// IsZero reports whether l is unset.
func (l Locator) IsZero() bool { return l.Value == "" }

func (l Locator) String() string {
	switch l.Kind {
	case ByID:
		return "id=" + l.Value
	case ByXPath:
		return "xpath=" + l.Value
	default:
		return "css=" + l.Value
	}
}

func (l Locator) opts(extra ...chromedp.QueryOption) []chromedp.QueryOption {
	var by chromedp.QueryOption
	switch l.Kind {
	case ByID:
		by = chromedp.ByID
	case ByXPath:
		by = chromedp.BySearch
	default:
		by = chromedp.ByQuery
	}
	return append([]chromedp.QueryOption{by}, extra...)
}

// jsClick returns a script that clicks the element from page JavaScript,
// bypassing overlay and hit-test checks.
func (l Locator) jsClick() string {
	switch l.Kind {
	case ByID:
		return fmt.Sprintf(`document.getElementById(%q).click()`, l.Value)
	case ByXPath:
		return fmt.Sprintf(`document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue.click()`, l.Value)
	default:
		return fmt.Sprintf(`document.querySelector(%q).click()`, l.Value)
	}
}
