package logstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Reader provides read-only access to log partitions for the CLI
// summary commands. It never writes or locks; the partition files are
// append-only and external readers see whole records.
type Reader struct {
	dir string
}

// NewReader returns a Reader rooted at dir.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// PartitionPath returns the file path for the given day.
func (r *Reader) PartitionPath(day time.Time) string {
	return filepath.Join(r.dir, day.Local().Format(partitionLayout)+".log")
}

// Recent returns up to n most recent non-empty lines from the given
// day's partition. A missing partition is not an error; it returns an
// empty slice.
func (r *Reader) Recent(day time.Time, n int) ([]string, error) {
	data, err := os.ReadFile(r.PartitionPath(day))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read partition: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}
