package browser

import "github.com/rotisserie/eris"

// Sentinel errors returned by the package.
var (
	// ErrClosed is returned when attempting to use a closed [Browser].
	ErrClosed = eris.New("browser: closed")
)
