package browser

import (
	"context"
	"os"
	"sync"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

const closeTimeout = 5 * time.Second

// Browser manages one Chrome process driven over the DevTools protocol.
// Tabs opened with [Browser.NewTab] share the process, its profile and its
// download directory.
//
// Call [Browser.Close] when the Browser is no longer needed to release the
// process.
type Browser struct {
	cfg           config
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	tempProfile   string

	mu     sync.Mutex
	closed bool
}

// New starts a browser with the given options. The process lives until
// [Browser.Close] is called or ctx is cancelled.
func New(ctx context.Context, opts ...Option) (*Browser, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveChrome()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	tempProfile := ""
	if cfg.profileDir == "" {
		dir, err := os.MkdirTemp("", "billrelay-profile-*")
		if err != nil {
			return nil, eris.Wrap(err, "browser: create profile dir")
		}
		cfg.profileDir, tempProfile = dir, dir
	}
	if err := writeDownloadPrefs(cfg.profileDir); err != nil {
		removeAll(tempProfile)
		return nil, err
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
	)
	if cfg.headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}
	allocOpts = append(allocOpts, chromedp.UserDataDir(cfg.profileDir))

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		removeAll(tempProfile)
		return nil, eris.Wrap(err, "browser: starting chrome")
	}

	return &Browser{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		tempProfile:   tempProfile,
	}, nil
}

// Close releases all resources held by the Browser, including the
// Chrome process. Close is idempotent.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	// Graceful shutdown lets Chrome flush cookies into the profile.
	closeCtx, cancel := context.WithTimeout(b.browserCtx, closeTimeout)
	_ = chromedp.Cancel(closeCtx)
	cancel()
	b.browserCancel()
	b.allocCancel()
	removeAll(b.tempProfile)
	return nil
}

// NewTab opens a tab and returns its chromedp context. The tab is closed
// when the returned cancel func is called or when ctx is done. If a
// download directory was configured, downloads from the tab (and from
// windows it opens) are saved there.
func (b *Browser) NewTab(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := b.checkClosed(); err != nil {
		return nil, nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	stop := context.AfterFunc(ctx, tabCancel)
	cancel := func() {
		stop()
		tabCancel()
	}

	if b.cfg.downloadDir != "" {
		behavior := cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(b.cfg.downloadDir).
			WithEventsEnabled(true)
		if err := chromedp.Run(tabCtx, behavior); err != nil {
			cancel()
			return nil, nil, eris.Wrap(err, "browser: set download behavior")
		}
	}
	return tabCtx, cancel, nil
}

// DownloadDir returns the directory configured with [WithDownloadDir].
func (b *Browser) DownloadDir() string {
	return b.cfg.downloadDir
}

func removeAll(dir string) {
	if dir != "" {
		_ = os.RemoveAll(dir)
	}
}

func (b *Browser) checkClosed() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}
