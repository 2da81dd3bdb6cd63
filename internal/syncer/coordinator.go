// Package syncer coordinates replication of the log working tree to
// the remote repository. At most one sync cycle runs at a time across
// the whole process, and across process instances on the same host via
// an advisory file lock.
package syncer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/telhawk-systems/tradelog/internal/logging"
	"github.com/telhawk-systems/tradelog/internal/metrics"
)

// Outcome reports what a sync trigger did.
type Outcome string

const (
	// Triggered means this request started (or queued the start of) a
	// sync cycle.
	Triggered Outcome = "triggered"
	// Skipped means a cycle was already in progress. The request is
	// not queued; pending changes ride along with the running cycle
	// or the next trigger.
	Skipped Outcome = "skipped"
)

// Cycle outcomes recorded in metrics and logs.
const (
	outcomeCompleted   = "completed"
	outcomeNoOp        = "no_op"
	outcomeLockHeld    = "lock_held"
	outcomeCommitError = "commit_error"
	outcomePushError   = "push_error"
)

// Repo is the narrow replication interface the coordinator drives.
// Any backend that can report pending changes, batch them into one
// durable unit, and ship that unit satisfies it.
type Repo interface {
	HasChanges(ctx context.Context) (bool, error)
	StageAndCommit(ctx context.Context, message string) error
	HasRemote(ctx context.Context) bool
	Push(ctx context.Context) error
}

// Coordinator owns all mutating access to the repository working tree.
// Request handlers signal intent with RequestSync and return without
// waiting; a dedicated worker goroutine executes cycles one at a time.
type Coordinator struct {
	repo     Repo
	lockPath string
	logger   *logging.Logger
	now      func() time.Time

	busy    atomic.Bool
	pending chan struct{}
	stop    chan struct{}
	wg      sync.WaitGroup
	closed  atomic.Bool
}

// New starts a Coordinator with its worker goroutine. lockPath is the
// cross-process mutual-exclusion file.
func New(repo Repo, lockPath string, logger *logging.Logger) *Coordinator {
	c := &Coordinator{
		repo:     repo,
		lockPath: lockPath,
		logger:   logger,
		now:      time.Now,
		pending:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	c.wg.Add(1)
	go c.worker()
	return c
}

// RequestSync asks for a sync cycle and returns immediately. While a
// cycle is in progress every caller is told Skipped; exactly one
// concurrent caller wins the trigger. Never blocks.
func (c *Coordinator) RequestSync() Outcome {
	if c.closed.Load() {
		return Skipped
	}
	if !c.busy.CompareAndSwap(false, true) {
		return Skipped
	}
	select {
	case c.pending <- struct{}{}:
	default:
	}
	return Triggered
}

// Close stops the worker. An in-flight cycle finishes first.
func (c *Coordinator) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stop)
		c.wg.Wait()
	}
}

func (c *Coordinator) worker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.pending:
			c.runCycle(context.Background())
			c.busy.Store(false)
		case <-c.stop:
			return
		}
	}
}

// runCycle executes one stage-commit-push cycle under the file lock.
// Failures are logged and counted, never propagated: replication is a
// best-effort background concern, and an unpushed commit is retried
// naturally on the next trigger.
func (c *Coordinator) runCycle(ctx context.Context) string {
	start := c.now()

	lock, err := acquireFileLock(c.lockPath)
	if err != nil {
		// Another process holds the lock; its cycle will pick up our
		// changes.
		c.logger.Info("sync already in progress, skipping", logging.Outcome(outcomeLockHeld))
		metrics.SyncCyclesTotal.WithLabelValues(outcomeLockHeld).Inc()
		return outcomeLockHeld
	}
	defer lock.Release()

	outcome := c.syncLocked(ctx)
	metrics.SyncCyclesTotal.WithLabelValues(outcome).Inc()
	metrics.SyncDuration.Observe(time.Since(start).Seconds())
	return outcome
}

func (c *Coordinator) syncLocked(ctx context.Context) string {
	dirty, err := c.repo.HasChanges(ctx)
	if err != nil {
		c.logger.Error("sync: failed to inspect working tree", logging.Error(err))
		return outcomeCommitError
	}
	if !dirty {
		c.logger.Debug("sync: working tree clean, nothing to do")
		return outcomeNoOp
	}

	message := "Auto-commit trading logs at " + c.now().Format(time.RFC3339)
	if err := c.repo.StageAndCommit(ctx, message); err != nil {
		c.logger.Error("sync: commit failed", logging.Error(err))
		return outcomeCommitError
	}
	c.logger.Info("sync: changes committed")

	if !c.repo.HasRemote(ctx) {
		c.logger.Info("sync: no remote configured, skipping push")
		return outcomeCompleted
	}

	if err := c.repo.Push(ctx); err != nil {
		// The commit stays local and is pushed on the next cycle.
		c.logger.Error("sync: push failed", logging.Error(err))
		return outcomePushError
	}
	c.logger.Info("sync: push successful")
	return outcomeCompleted
}
