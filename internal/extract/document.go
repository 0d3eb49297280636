package extract

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
)

// TextSource produces the full text of a document.
type TextSource interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// PDFText reads PDF files with github.com/ledongthuc/pdf.
type PDFText struct{}

// Page is the text of one page, numbered from 1.
type Page struct {
	Number int    `json:"page"`
	Text   string `json:"text"`
}

// ExtractText returns the text of every page, each followed by a newline.
func (p PDFText) ExtractText(ctx context.Context, path string) (string, error) {
	pages, err := p.ExtractPages(ctx, path, nil)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, pg := range pages {
		b.WriteString(pg.Text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// ExtractPages returns the text of the requested 1-based pages, or of
// every page when pages is empty.
func (PDFText) ExtractPages(ctx context.Context, path string, pages []int) (out []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = eris.Errorf("extract: %s: malformed pdf: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: open %s", path)
	}
	defer f.Close()

	total := r.NumPage()
	if len(pages) == 0 {
		pages = make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
	}

	out = make([]Page, 0, len(pages))
	for _, n := range pages {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "extract: cancelled")
		}
		if n < 1 || n > total {
			return nil, eris.Errorf("extract: page %d out of range (document has %d pages)", n, total)
		}
		pg := r.Page(n)
		if pg.V.IsNull() {
			out = append(out, Page{Number: n})
			continue
		}
		text, err := pg.GetPlainText(nil)
		if err != nil {
			return nil, eris.Wrapf(err, "extract: page %d", n)
		}
		out = append(out, Page{Number: n, Text: text})
	}
	return out, nil
}

// NumPages returns the page count of the PDF at path.
func (PDFText) NumPages(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("extract: %s: malformed pdf: %v", path, r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, eris.Wrapf(err, "extract: open %s", path)
	}
	defer f.Close()
	return r.NumPage(), nil
}
