package browser

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// downloadPrefs are merged into the profile so PDFs are saved instead of
// opened in the built-in viewer.
var downloadPrefs = map[string]map[string]any{
	"download": {
		"prompt_for_download": false,
		"directory_upgrade":   true,
	},
	"plugins": {
		"always_open_pdf_externally": true,
	},
}

// writeDownloadPrefs merges downloadPrefs into <profileDir>/Default/Preferences,
// keeping every other setting already stored there.
func writeDownloadPrefs(profileDir string) error {
	path := filepath.Join(profileDir, "Default", "Preferences")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return eris.Wrapf(err, "browser: create profile %s", profileDir)
	}

	prefs := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return eris.Wrapf(err, "browser: read %s", path)
	default:
		if err := json.Unmarshal(data, &prefs); err != nil {
			return eris.Wrapf(err, "browser: parse %s", path)
		}
	}

	for section, values := range downloadPrefs {
		m, _ := prefs[section].(map[string]any)
		if m == nil {
			m = map[string]any{}
		}
		for k, v := range values {
			m[k] = v
		}
		prefs[section] = m
	}

	out, err := json.Marshal(prefs)
	if err != nil {
		return eris.Wrap(err, "browser: encode preferences")
	}
	return eris.Wrapf(os.WriteFile(path, out, 0o600), "browser: write %s", path)
}
