package notify

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/porticus-lab/billrelay/internal/browser"
)

// HTMLPrinter prints an HTML document to PDF.
type HTMLPrinter interface {
	PrintHTML(ctx context.Context, html string, cfg *browser.PageConfig) (*browser.Result, error)
}

// StatementPrinter renders composed statements to PDF files.
type StatementPrinter struct {
	Printer HTMLPrinter
	Dir     string
}

// StatementName returns the file name of the statement for target's month.
func StatementName(target time.Time) string {
	return "Statement_" + target.Format("2006-01") + ".pdf"
}

// Print writes the HTML body as a Letter-sized PDF into p.Dir and returns
// its path.
func (p StatementPrinter) Print(ctx context.Context, body Body, target time.Time) (string, error) {
	res, err := p.Printer.PrintHTML(ctx, body.HTML, &browser.PageConfig{Size: browser.Letter})
	if err != nil {
		return "", eris.Wrap(err, "notify: print statement")
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "notify: create %s", p.Dir)
	}
	path := filepath.Join(p.Dir, StatementName(target))
	if err := res.WriteToFile(path, 0o644); err != nil {
		return "", eris.Wrapf(err, "notify: write %s", path)
	}
	return path, nil
}
