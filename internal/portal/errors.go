package portal

import "github.com/rotisserie/eris"

var (
	// ErrNoNewWindow is returned when a bill link that should open a window
	// did not open one in time.
	ErrNoNewWindow = eris.New("portal: bill window did not open")
	// ErrNoDownload is returned when no finished PDF arrived in time.
	ErrNoDownload = eris.New("portal: no pdf downloaded")
)
