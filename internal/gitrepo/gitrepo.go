// Package gitrepo provides typed access to the git CLI for the log
// repository working tree. It is the narrow replication interface the
// sync coordinator drives: has-changes, stage-and-commit, push, status.
// All commands target the repository directory via the -C flag, and
// every call carries a bounded timeout so a hung git process cannot
// stall a sync cycle indefinitely.
package gitrepo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Runner executes one git command in dir and returns stdout. extraEnv
// entries are appended to the process environment.
type Runner interface {
	Run(ctx context.Context, dir string, extraEnv []string, args ...string) (string, error)
}

// execRunner shells out to the git binary.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, extraEnv []string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr
	if len(extraEnv) > 0 {
		command.Env = append(os.Environ(), extraEnv...)
	}

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Config describes the repository and the timeouts applied per
// operation class.
type Config struct {
	Dir    string
	Branch string
	// RemoteToken, when set, selects a non-interactive credential
	// strategy for push. The token itself is never placed on argv.
	RemoteToken string
	// OpTimeout bounds status, stage, and commit calls.
	OpTimeout time.Duration
	// PushTimeout bounds the push to the remote.
	PushTimeout time.Duration
}

// Repository represents the log working tree under version control.
// Mutating operations belong exclusively to the sync coordinator; the
// log writer only ever appends files inside it.
type Repository struct {
	cfg Config
	run Runner
}

// New returns a Repository for the given configuration.
func New(cfg Config) *Repository {
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 10 * time.Second
	}
	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = 30 * time.Second
	}
	return &Repository{cfg: cfg, run: execRunner{}}
}

// Dir returns the repository directory.
func (r *Repository) Dir() string {
	return r.cfg.Dir
}

// HasChanges reports whether the working tree differs from the last
// commit, counting both staged and unstaged changes.
func (r *Repository) HasChanges(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.OpTimeout)
	defer cancel()

	out, err := r.run.Run(ctx, r.cfg.Dir, nil, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// StageAndCommit stages all pending changes and creates one commit
// with the given message. Calling it with a clean tree is a no-op.
func (r *Repository) StageAndCommit(ctx context.Context, message string) error {
	dirty, err := r.HasChanges(ctx)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.OpTimeout)
	defer cancel()

	if _, err := r.run.Run(ctx, r.cfg.Dir, nil, "add", "-A"); err != nil {
		return err
	}
	if _, err := r.run.Run(ctx, r.cfg.Dir, nil, "commit", "-m", message); err != nil {
		return err
	}
	return nil
}

// HasRemote reports whether an origin remote is configured.
func (r *Repository) HasRemote(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.OpTimeout)
	defer cancel()

	_, err := r.run.Run(ctx, r.cfg.Dir, nil, "remote", "get-url", "origin")
	return err == nil
}

// Push pushes the configured branch to origin within the push timeout.
// Unpushed commits survive a failure locally and ride along in the
// next cycle.
func (r *Repository) Push(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.PushTimeout)
	defer cancel()

	var env []string
	if r.cfg.RemoteToken != "" {
		// Suppress interactive credential prompts; the remote URL is
		// expected to embed the credential or a helper provides it.
		env = append(env, "GIT_ASKPASS=/bin/echo")
	}

	_, err := r.run.Run(ctx, r.cfg.Dir, env, "push", "origin", r.cfg.Branch)
	return err
}

// Status returns working-tree cleanliness, the porcelain status text,
// and the last commit summary line, for the /status probe.
func (r *Repository) Status(ctx context.Context) (clean bool, status, lastCommit string, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.OpTimeout)
	defer cancel()

	out, err := r.run.Run(ctx, r.cfg.Dir, nil, "status", "--porcelain")
	if err != nil {
		return false, "", "", err
	}
	status = strings.TrimSpace(out)
	clean = status == ""
	if status == "" {
		status = "clean"
	}

	out, err = r.run.Run(ctx, r.cfg.Dir, nil, "log", "--oneline", "-1")
	if err != nil {
		return false, "", "", err
	}
	return clean, status, strings.TrimSpace(out), nil
}
