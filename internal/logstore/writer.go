// Package logstore persists event records to date-partitioned
// append-only log files, one file per calendar day.
package logstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/telhawk-systems/tradelog/internal/metrics"
	"github.com/telhawk-systems/tradelog/internal/models"
)

// partitionLayout is the date format naming one day's log file.
const partitionLayout = "2006-01-02"

// Writer appends records to the partition for the current operator-local
// day. Existing partition content is never truncated, rewritten, or
// reordered.
//
// No cross-process locking is needed: each append is a single write
// syscall on an O_APPEND descriptor, so concurrent writers interleave
// whole records, never partial ones. Records stay well under the
// kernel's atomic-write threshold.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter returns a Writer rooted at dir. The directory is created
// lazily on first append.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Append renders the record and appends it to its partition, returning
// the partition file path.
//
// The partition key is resolved here, at call time, not when the
// record was constructed; a request queued across midnight lands in
// the day it was actually written. Message records are the exception:
// they carry the sender's clock and are filed under it.
func (w *Writer) Append(record *models.EventRecord) (string, error) {
	start := w.now()

	if record.Timestamp.IsZero() {
		record.Timestamp = start
	}

	partitionTime := start
	if record.Source == models.SourceMessage {
		partitionTime = record.Timestamp
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		metrics.AppendErrors.Inc()
		return "", fmt.Errorf("create logs dir: %w", err)
	}

	path := filepath.Join(w.dir, partitionTime.Local().Format(partitionLayout)+".log")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		metrics.AppendErrors.Inc()
		return "", fmt.Errorf("open partition %s: %w", path, err)
	}
	defer f.Close()

	// One write call per record: rendered text plus the terminating
	// blank line. O_APPEND makes this indivisible at the OS level.
	entry := record.Render() + "\n\n"
	if _, err := f.Write([]byte(entry)); err != nil {
		metrics.AppendErrors.Inc()
		return "", fmt.Errorf("append to %s: %w", path, err)
	}

	metrics.AppendDuration.Observe(time.Since(start).Seconds())
	return path, nil
}

// Dir returns the log directory root.
func (w *Writer) Dir() string {
	return w.dir
}
