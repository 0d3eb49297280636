package main

import (
	"context"
	"time"

	"github.com/porticus-lab/billrelay/internal/browser"
	"github.com/porticus-lab/billrelay/internal/config"
	"github.com/porticus-lab/billrelay/internal/notify"
	"github.com/porticus-lab/billrelay/internal/portal"
	"github.com/porticus-lab/billrelay/internal/tracker"
)

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// browserOptions maps the browser section of c to launch options.
func browserOptions(c *config.Config) []browser.Option {
	opts := []browser.Option{
		browser.WithHeadless(c.Browser.Headless),
		browser.WithTimeout(seconds(c.Browser.TimeoutSecs)),
	}
	if c.Browser.ChromePath != "" {
		opts = append(opts, browser.WithChromePath(c.Browser.ChromePath))
	}
	if c.Browser.NoSandbox {
		opts = append(opts, browser.WithNoSandbox())
	}
	if c.Browser.AutoDownload {
		opts = append(opts, browser.WithAutoDownload())
	}
	return opts
}

func portalSettings(c *config.Config, creds config.PortalConfig) portal.Settings {
	return portal.Settings{
		Credentials:     portal.Credentials{Username: creds.Username, Password: creds.Password},
		DownloadRoot:    c.Download.Dir,
		ProfileDir:      c.Browser.ProfileDir,
		DownloadTimeout: seconds(c.Download.TimeoutSecs),
	}
}

// newPortal returns the portal registered under name ("gas" or "trash").
func newPortal(c *config.Config, name string) (portal.Portal, bool) {
	switch name {
	case "gas":
		return portal.GasPortal(portalSettings(c, c.Gas)), true
	case "trash", "water":
		return portal.WaterTrashPortal(portalSettings(c, c.Water)), true
	}
	return portal.Portal{}, false
}

func newSession(c *config.Config, p portal.Portal) *portal.Session {
	return portal.NewSession(p, browserOptions(c)...)
}

func openTracker(ctx context.Context, c *config.Config) (tracker.Tracker, error) {
	return tracker.Open(ctx, c.Tracker.Driver, c.Tracker.Path)
}

func newMailer(c *config.Config) *notify.SMTPMailer {
	return notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     c.Mail.Host,
		Port:     c.Mail.Port,
		Username: c.Mail.Sender,
		Password: c.Mail.Password,
	})
}
