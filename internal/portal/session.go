package portal

import (
	"context"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/porticus-lab/billrelay/internal/bill"
	"github.com/porticus-lab/billrelay/internal/browser"
	"github.com/porticus-lab/billrelay/internal/extract"
)

const clickTimeout = 5 * time.Second

// Session retrieves the latest bill of one portal.
type Session struct {
	portal  Portal
	options []browser.Option
	source  extract.TextSource
	now     func() time.Time
	poll    time.Duration
	// clickWait bounds the native login click and the wait for its effect.
	clickWait time.Duration
	log       *zap.Logger
}

// NewSession returns a session for p. opts configure the browser it
// starts; the portal's download and profile directories are added to
// them.
func NewSession(p Portal, opts ...browser.Option) *Session {
	return &Session{
		portal:    p.withDefaults(),
		options:   opts,
		source:    extract.PDFText{},
		now:       time.Now,
		poll:      500 * time.Millisecond,
		clickWait: clickTimeout,
		log:       zap.L().With(zap.String("portal", p.Name)),
	}
}

// Fetch logs in, downloads the latest bill and extracts its fields.
//
// An error is returned only when the browser cannot start or the portal
// cannot be reached past login. Once the bill link is reached the session
// always returns a record: if the download does not complete it falls back
// to any PDF that arrived during the session, and failing that to a record
// without a document.
func (s *Session) Fetch(ctx context.Context) (*bill.Record, error) {
	p := s.portal
	start := s.now()

	if err := os.MkdirAll(p.DownloadDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "portal: %s: create %s", p.Name, p.DownloadDir)
	}
	opts := append([]browser.Option{}, s.options...)
	opts = append(opts, browser.WithDownloadDir(p.DownloadDir))
	if p.ProfileDir != "" {
		opts = append(opts, browser.WithProfileDir(p.ProfileDir))
	}

	b, err := browser.New(ctx, opts...)
	if err != nil {
		return nil, eris.Wrapf(err, "portal: %s", p.Name)
	}
	defer b.Close()

	tab, closeTab, err := b.NewTab(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "portal: %s", p.Name)
	}
	defer closeTab()

	s.log.Info("opening portal", zap.String("url", p.LoginURL))
	if err := s.login(tab); err != nil {
		return nil, eris.Wrapf(err, "portal: %s: login", p.Name)
	}
	if err := s.openBilling(tab); err != nil {
		return nil, eris.Wrapf(err, "portal: %s: billing page", p.Name)
	}

	path, err := s.download(tab, start)
	return s.record(ctx, start, path, err), nil
}

func (s *Session) login(tab context.Context) error {
	p := s.portal
	ctx, cancel := context.WithTimeout(tab, p.LoginTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Navigate(p.LoginURL)); err != nil {
		return eris.Wrap(err, "navigate")
	}

	if p.ReuseSession {
		signedIn, err := s.awaitFormOrBill(ctx)
		if err != nil {
			return err
		}
		if signedIn {
			s.log.Info("reusing signed-in session")
			return nil
		}
	}

	if err := chromedp.Run(ctx,
		chromedp.WaitVisible(p.Username.Value, p.Username.opts()...),
		chromedp.SendKeys(p.Username.Value, p.Credentials.Username, p.Username.opts()...),
		chromedp.WaitVisible(p.Password.Value, p.Password.opts()...),
		chromedp.SendKeys(p.Password.Value, p.Credentials.Password, p.Password.opts()...),
		chromedp.WaitVisible(p.Submit.Value, p.Submit.opts()...),
	); err != nil {
		return eris.Wrap(err, "fill login form")
	}

	var before string
	if err := chromedp.Run(ctx, chromedp.Location(&before)); err != nil {
		return eris.Wrap(err, "read location")
	}

	clickCtx, cancelClick := context.WithTimeout(ctx, s.clickWait)
	err := chromedp.Run(clickCtx, chromedp.Click(p.Submit.Value, p.Submit.opts()...))
	if err == nil && p.JSClickFallback {
		// A click taken by an overlay is not an error in CDP; only a page
		// change shows that the form was submitted.
		err = s.awaitSubmitted(clickCtx, before)
	}
	cancelClick()
	if err != nil && p.JSClickFallback {
		s.log.Warn("native click had no effect, clicking from javascript", zap.Stringer("locator", p.Submit), zap.Error(err))
		err = chromedp.Run(ctx, chromedp.Evaluate(p.Submit.jsClick(), nil))
	}
	return eris.Wrap(err, "submit login")
}

// awaitSubmitted polls until the page left before or the submit button is
// gone.
func (s *Session) awaitSubmitted(ctx context.Context, before string) error {
	submit := s.portal.Submit
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		var url string
		if err := chromedp.Run(ctx, chromedp.Location(&url)); err == nil && url != before {
			return nil
		}
		if ok, err := present(ctx, submit); err == nil && !ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return eris.New("login form still shown after click")
		case <-ticker.C:
		}
	}
}

// awaitFormOrBill polls until either the login form or the latest-bill
// link is present, and reports whether it was the bill link.
func (s *Session) awaitFormOrBill(ctx context.Context) (bool, error) {
	p := s.portal
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		if ok, err := present(ctx, p.LatestBill); err == nil && ok {
			return true, nil
		}
		if ok, err := present(ctx, p.Username); err == nil && ok {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, eris.Wrap(ctx.Err(), "waiting for login form")
		case <-ticker.C:
		}
	}
}

func present(ctx context.Context, l Locator) (bool, error) {
	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(l.Value, &nodes, l.opts(chromedp.AtLeast(0))...)); err != nil {
		return false, err
	}
	return len(nodes) > 0, nil
}

func (s *Session) openBilling(tab context.Context) error {
	p := s.portal
	if p.BillingLink.IsZero() {
		return nil
	}
	ctx, cancel := context.WithTimeout(tab, p.PageTimeout)
	defer cancel()

	var url string
	err := chromedp.Run(ctx,
		chromedp.WaitVisible(p.BillingLink.Value, p.BillingLink.opts()...),
		chromedp.Click(p.BillingLink.Value, p.BillingLink.opts()...),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&url),
	)
	if err != nil {
		return err
	}
	s.log.Info("on bill history page", zap.String("url", url))
	return nil
}

// download clicks the latest bill and waits for the PDF to arrive.
func (s *Session) download(tab context.Context, start time.Time) (string, error) {
	p := s.portal
	ctx, cancel := context.WithTimeout(tab, p.PageTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.WaitVisible(p.LatestBill.Value, p.LatestBill.opts()...)); err != nil {
		return "", eris.Wrap(err, "portal: latest bill link")
	}
	if p.ScrollIntoView {
		if err := chromedp.Run(ctx, chromedp.ScrollIntoView(p.LatestBill.Value, p.LatestBill.opts()...)); err != nil {
			s.log.Warn("scroll into view failed", zap.Error(err))
		}
	}

	var opened <-chan target.ID
	if p.OpensWindow {
		opened = chromedp.WaitNewTarget(ctx, func(*target.Info) bool { return true })
	}

	s.log.Info("clicking latest bill", zap.Stringer("locator", p.LatestBill))
	if err := chromedp.Run(ctx, chromedp.Click(p.LatestBill.Value, p.LatestBill.opts()...)); err != nil {
		return "", eris.Wrap(err, "portal: click latest bill")
	}

	if p.OpensWindow {
		select {
		case id := <-opened:
			win, closeWin := chromedp.NewContext(tab, chromedp.WithTargetID(id))
			defer closeWin()
			if err := chromedp.Run(win); err != nil {
				s.log.Warn("could not attach to bill window", zap.Error(err))
			}
		case <-ctx.Done():
			return "", ErrNoNewWindow
		}
	}

	wait, cancelWait := context.WithTimeout(tab, p.DownloadTimeout)
	defer cancelWait()
	return WaitForDownload(wait, p.DownloadDir, start, s.poll)
}

// record turns the download outcome into a bill record.
func (s *Session) record(ctx context.Context, start time.Time, path string, err error) *bill.Record {
	p := s.portal
	now := s.now()

	if err != nil {
		s.log.Warn("bill download did not complete, looking for any new pdf", zap.Error(err))
		path, _ = newestPDF(p.DownloadDir, start)
	}
	if path == "" {
		s.log.Warn("no bill downloaded", zap.String("dir", p.DownloadDir))
		return bill.Unretrieved(p.Item, now)
	}

	path = renameDownload(path, p.Rename, now)
	res := p.Engine.ExtractFile(ctx, s.source, path)
	if res.Err != nil {
		s.log.Warn("could not read bill", zap.String("path", path), zap.Error(res.Err))
	}

	rec := bill.NewRecord(p.Item, res, path, now)
	s.log.Info("bill retrieved",
		zap.String("path", rec.Document),
		zap.String("amount", rec.Amount),
		zap.String("period", rec.Period),
		zap.String("invoice", rec.Invoice),
	)
	return rec
}
