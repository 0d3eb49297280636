// Package portal retrieves the latest bill from a utility web portal.
//
// A [Portal] describes one vendor site declaratively: where to log in,
// which elements to fill and click, and how to name and parse the PDF it
// serves. A [Session] drives a Chrome browser through those steps and
// returns a [bill.Record].
package portal

import (
	"time"

	"github.com/porticus-lab/billrelay/internal/extract"
)

// Credentials are the portal login.
type Credentials struct {
	Username string
	Password string
}

// Portal describes one vendor site.
type Portal struct {
	// Name is the short vendor name used in logs and on the command line.
	Name string
	// Item is the statement line item the bill fills.
	Item string

	LoginURL    string
	Credentials Credentials

	Username Locator
	Password Locator
	Submit   Locator
	// JSClickFallback retries a failed submit click from page JavaScript.
	JSClickFallback bool
	// ReuseSession skips the login form when the profile is still signed in
	// and the latest-bill link is already visible.
	ReuseSession bool

	// BillingLink is clicked after login when set.
	BillingLink Locator
	LatestBill  Locator
	// OpensWindow is set when LatestBill opens the PDF in a new window.
	OpensWindow    bool
	ScrollIntoView bool

	DownloadDir string
	// ProfileDir keeps cookies between runs when set.
	ProfileDir string
	Rename     RenameFunc
	Engine     *extract.Engine

	LoginTimeout    time.Duration
	PageTimeout     time.Duration
	DownloadTimeout time.Duration
}

func (p Portal) withDefaults() Portal {
	if p.LoginTimeout == 0 {
		p.LoginTimeout = 10 * time.Second
	}
	if p.PageTimeout == 0 {
		p.PageTimeout = 20 * time.Second
	}
	if p.DownloadTimeout == 0 {
		p.DownloadTimeout = 30 * time.Second
	}
	return p
}
