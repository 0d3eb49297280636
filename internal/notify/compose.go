// Package notify renders the monthly statement and delivers it by mail.
package notify

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/rotisserie/eris"

	"github.com/porticus-lab/billrelay/internal/bill"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	textTmpl = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/summary.txt.tmpl"))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("summary.html.tmpl").
			Funcs(htmltemplate.FuncMap{"isTotal": isTotal}).
			ParseFS(templateFS, "templates/summary.html.tmpl"))
)

// Letter is the content of one statement.
type Letter struct {
	TenantName   string
	LandlordName string
	Items        []bill.LineItem
}

// Body holds the two renderings of a letter.
type Body struct {
	Plain string
	HTML  string
}

// Compose renders l as plain text and HTML.
func Compose(l Letter) (Body, error) {
	var plain, html bytes.Buffer
	if err := textTmpl.Execute(&plain, l); err != nil {
		return Body{}, eris.Wrap(err, "notify: render plain text")
	}
	if err := htmlTmpl.Execute(&html, l); err != nil {
		return Body{}, eris.Wrap(err, "notify: render html")
	}
	return Body{
		Plain: strings.TrimSpace(plain.String()),
		HTML:  strings.TrimSpace(html.String()),
	}, nil
}

// Subject returns the subject line for the statement of target's month,
// e.g. "March 2025 Rent and Utility Bill Statement".
func Subject(target time.Time) string {
	return target.Format("January 2006") + " Rent and Utility Bill Statement"
}

func isTotal(it bill.LineItem) bool {
	return strings.Contains(it.Label, "Total")
}
