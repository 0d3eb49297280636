package portal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const partialSuffix = ".crdownload"

// WaitForDownload blocks until dir holds a finished PDF modified at or
// after since, and returns its path. A file counts as finished when it has
// no in-progress sibling and its size stayed the same for one poll
// interval. The directory is watched with fsnotify and polled every poll
// in case events are missed.
func WaitForDownload(ctx context.Context, dir string, since time.Time, poll time.Duration) (string, error) {
	var events <-chan fsnotify.Event
	if w, err := fsnotify.NewWatcher(); err != nil {
		zap.L().Warn("download watcher unavailable, polling only", zap.Error(err))
	} else {
		defer w.Close()
		if err := w.Add(dir); err != nil {
			zap.L().Warn("cannot watch download dir, polling only", zap.String("dir", dir), zap.Error(err))
		} else {
			events = w.Events
		}
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	var (
		lastPath string
		lastSize int64
		seenAt   time.Time
	)
	for {
		path, info := newestPDF(dir, since)
		switch {
		case path == "":
			lastPath = ""
		case path != lastPath || info.Size() != lastSize:
			lastPath, lastSize, seenAt = path, info.Size(), time.Now()
		case info.Size() > 0 && time.Since(seenAt) >= poll:
			return path, nil
		}

		select {
		case <-ctx.Done():
			return "", eris.Wrapf(ErrNoDownload, "waiting in %s: %v", dir, ctx.Err())
		case ev, ok := <-events:
			if !ok {
				events = nil
			} else {
				zap.L().Debug("download dir event", zap.String("op", ev.Op.String()), zap.String("file", ev.Name))
			}
		case <-ticker.C:
		}
	}
}

// newestPDF returns the most recently modified finished PDF in dir that
// was modified at or after since.
func newestPDF(dir string, since time.Time) (string, os.FileInfo) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil
	}
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}

	var (
		best     string
		bestInfo os.FileInfo
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".pdf") || names[name+partialSuffix] {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().Before(since) {
			continue
		}
		if bestInfo == nil || info.ModTime().After(bestInfo.ModTime()) {
			best, bestInfo = filepath.Join(dir, name), info
		}
	}
	return best, bestInfo
}

// RenameFunc returns the new base name of a downloaded file.
type RenameFunc func(name string, now time.Time) string

// TimestampName names files prefix + "YYYY-MM-DD_HHMMSS.pdf".
func TimestampName(prefix string) RenameFunc {
	return func(_ string, now time.Time) string {
		return prefix + now.Format("2006-01-02_150405") + ".pdf"
	}
}

// PrefixName prepends prefix to the downloaded name.
func PrefixName(prefix string) RenameFunc {
	return func(name string, _ time.Time) string {
		return prefix + name
	}
}

// renameDownload applies fn to path. On failure the original path is kept.
func renameDownload(path string, fn RenameFunc, now time.Time) string {
	if fn == nil {
		return path
	}
	dst := filepath.Join(filepath.Dir(path), fn(filepath.Base(path), now))
	if dst == path {
		return path
	}
	if err := os.Rename(path, dst); err != nil {
		zap.L().Warn("could not rename download, keeping original name",
			zap.String("path", path), zap.Error(err))
		return path
	}
	return dst
}
