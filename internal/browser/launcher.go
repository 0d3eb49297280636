package browser

import (
	"github.com/go-rod/rod/lib/launcher"
	"github.com/rotisserie/eris"
)

// resolveChrome returns the path of an installed Chrome, or downloads a
// compatible Chromium binary if none is found. Downloads are cached in
// ~/.cache/rod/browser (Unix) or %APPDATA%\rod\browser (Windows).
func resolveChrome() (string, error) {
	if path, ok := launcher.LookPath(); ok {
		return path, nil
	}
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", eris.Wrap(err, "browser: downloading chromium")
	}
	return path, nil
}

// Available reports whether a Chrome or Chromium executable can be found
// without downloading one.
func Available() bool {
	_, ok := launcher.LookPath()
	return ok
}
