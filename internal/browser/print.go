package browser

import (
	"context"
	"os"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// PrintHTML renders an HTML document in a fresh tab and prints it to PDF.
// A nil cfg uses [DefaultPageConfig].
func (b *Browser) PrintHTML(ctx context.Context, html string, cfg *PageConfig) (*Result, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "billrelay-*.html")
	if err != nil {
		return nil, eris.Wrap(err, "browser: create temp file")
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return nil, eris.Wrap(err, "browser: write temp file")
	}
	if err := f.Close(); err != nil {
		return nil, eris.Wrap(err, "browser: close temp file")
	}

	tab, cancel, err := b.NewTab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if b.cfg.timeout > 0 {
		var cancelTimeout context.CancelFunc
		tab, cancelTimeout = context.WithTimeout(tab, b.cfg.timeout)
		defer cancelTimeout()
	}

	r := cfg.resolved()
	var buf []byte
	if err := chromedp.Run(tab,
		chromedp.Navigate("file://"+f.Name()),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(cmToInches(r.Size.Width)).
				WithPaperHeight(cmToInches(r.Size.Height)).
				WithMarginTop(cmToInches(r.Margin.Top)).
				WithMarginRight(cmToInches(r.Margin.Right)).
				WithMarginBottom(cmToInches(r.Margin.Bottom)).
				WithMarginLeft(cmToInches(r.Margin.Left)).
				WithScale(r.Scale).
				WithPrintBackground(r.PrintBackground).
				Do(ctx)
			return err
		}),
	); err != nil {
		return nil, eris.Wrap(err, "browser: print to pdf")
	}

	return &Result{data: buf}, nil
}

// Printer prints HTML with a browser started for each call and closed
// before the call returns, so no Chrome process outlives a print.
type Printer struct {
	Options []Option
}

// PrintHTML starts a browser, prints html and closes the browser.
func (p Printer) PrintHTML(ctx context.Context, html string, cfg *PageConfig) (*Result, error) {
	b, err := New(ctx, p.Options...)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return b.PrintHTML(ctx, html, cfg)
}
