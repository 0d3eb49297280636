package browser

import "time"

// config holds internal configuration for a Browser.
type config struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     bool
	autoDownload bool
	profileDir   string
	downloadDir  string
}

func defaultConfig() config {
	return config{
		timeout:  30 * time.Second,
		headless: true,
	}
}

// Option configures a [Browser].
type Option func(*config)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default chromedp searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *config) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration of a single print job or portal
// wait.
// Defaults to 30 seconds. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *config) {
		c.noSandbox = true
	}
}

// WithHeadless controls whether Chrome runs without a window.
// Defaults to true.
func WithHeadless(headless bool) Option {
	return func(c *config) {
		c.headless = headless
	}
}

// WithAutoDownload fetches a Chromium build when no Chrome executable is
// installed. The build is cached under ~/.cache/rod/browser.
func WithAutoDownload() Option {
	return func(c *config) {
		c.autoDownload = true
	}
}

// WithProfileDir runs Chrome with a persistent user-data-dir so cookies
// and portal sessions survive between runs.
func WithProfileDir(dir string) Option {
	return func(c *config) {
		c.profileDir = dir
	}
}

// WithDownloadDir makes every tab save downloads into dir instead of
// prompting.
func WithDownloadDir(dir string) Option {
	return func(c *config) {
		c.downloadDir = dir
	}
}
