package tracker

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CSVTracker stores records in a CSV file with a header row.
type CSVTracker struct {
	path string
	mu   sync.Mutex
}

// NewCSV returns a tracker backed by the file at path. The file is created
// on the first Record.
func NewCSV(path string) *CSVTracker {
	return &CSVTracker{path: path}
}

// WasSent decodes only the year and month columns, so a row edited by hand
// in any other column still counts.
func (t *CSVTracker) WasSent(_ context.Context, year, month int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys, err := decodeRows[monthKey](t.path)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k.Year == year && k.Month == month {
			return true, nil
		}
	}
	return false, nil
}

func (t *CSVTracker) List(_ context.Context) ([]SendRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return decodeRows[SendRecord](t.path)
}

type monthKey struct {
	Year  int `csv:"year"`
	Month int `csv:"month"`
}

// decodeRows reads every row of the CSV file at path into T. A missing or
// empty file yields no rows. Rows whose values do not decode are skipped
// with a warning; malformed CSV fails the whole read.
func decodeRows[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "tracker: open %s", path)
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(f))
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "tracker: read header of %s", path)
	}

	var out []T
	for {
		var row T
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, eris.Wrapf(err, "tracker: decode %s", path)
		}
		if err != nil {
			zap.L().Warn("skipping unreadable history row",
				zap.String("path", path),
				zap.Strings("row", dec.Record()),
				zap.Error(err),
			)
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (t *CSVTracker) Record(_ context.Context, rec SendRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	info, err := os.Stat(t.path)
	writeHeader := errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrapf(err, "tracker: open %s", t.path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = writeHeader
	if err := enc.Encode(rec); err != nil {
		return eris.Wrap(err, "tracker: encode record")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "tracker: write %s", t.path)
	}
	return eris.Wrapf(f.Sync(), "tracker: sync %s", t.path)
}

func (t *CSVTracker) Close() error { return nil }
