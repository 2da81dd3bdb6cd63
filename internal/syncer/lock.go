package syncer

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fileLock is a scoped advisory lock on a fixed path, acquired
// non-blocking. The kernel drops the flock when the holding process
// exits, so a crashed holder never leaves the lock stuck; Release
// additionally removes the backing file to avoid stale-handle
// accumulation.
type fileLock struct {
	f *os.File
}

// acquireFileLock takes the lock or fails immediately when another
// holder exists. It never waits.
func acquireFileLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return &fileLock{f: f}, nil
}

// Release unlocks, closes, and removes the backing file. Safe to call
// on every exit path.
func (l *fileLock) Release() {
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	_ = l.f.Close()
	_ = os.Remove(l.f.Name())
}
