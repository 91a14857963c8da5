package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/linglong/blog-admin/internal/config"
	"github.com/linglong/blog-admin/pkg/logger"
	"github.com/linglong/blog-admin/pkg/metrics"
)

var (
	// ErrProjectDirMissing means the site project directory does not exist;
	// the build command was never invoked.
	ErrProjectDirMissing = errors.New("site project directory does not exist")
	// ErrBuildTimeout means the build process was killed at the deadline.
	ErrBuildTimeout = errors.New("site build timed out")
)

// Runner executes an external command. Extracted so tests can observe
// invocations without spawning processes.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// Trigger invokes the static site generator after content mutations.
// Rebuilds run only in production mode; any other environment relies on
// the generator's own dev server watching the content directory.
type Trigger struct {
	production bool
	projectDir string
	command    []string
	timeout    time.Duration
	runner     Runner
}

func NewTrigger(cfg *config.Config) *Trigger {
	return &Trigger{
		production: cfg.IsProduction(),
		projectDir: cfg.Build.ProjectDir,
		command:    cfg.Build.Command,
		timeout:    cfg.Build.Timeout,
		runner:     ExecRunner{},
	}
}

// Rebuild runs the configured build command synchronously. A skipped
// build (non-production) is not an error. A failed or timed-out build
// is reported to the caller but never reverses the content change that
// triggered it.
func (t *Trigger) Rebuild(ctx context.Context) error {
	if !t.production {
		logger.Infof("development mode: skipping site rebuild, dev server watches content changes")
		metrics.SiteBuilds.WithLabelValues("skipped").Inc()
		return nil
	}
	if len(t.command) == 0 {
		return errors.New("no build command configured")
	}
	if _, err := os.Stat(t.projectDir); err != nil {
		metrics.SiteBuilds.WithLabelValues("failure").Inc()
		return fmt.Errorf("%w: %s", ErrProjectDirMissing, t.projectDir)
	}

	logger.Infof("rebuilding site in %s: %v", t.projectDir, t.command)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	stdout, stderr, err := t.runner.Run(ctx, t.projectDir, t.command[0], t.command[1:]...)
	if stdout != "" {
		logger.Debugf("build stdout: %s", stdout)
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			metrics.SiteBuilds.WithLabelValues("timeout").Inc()
			logger.Errorf("site build exceeded %v", t.timeout)
			return fmt.Errorf("%w after %v", ErrBuildTimeout, t.timeout)
		}
		metrics.SiteBuilds.WithLabelValues("failure").Inc()
		logger.Errorf("site build failed: %v; stderr: %s", err, stderr)
		return fmt.Errorf("site build failed: %w", err)
	}

	metrics.SiteBuilds.WithLabelValues("success").Inc()
	logger.Infof("site rebuilt in %s", time.Since(start).Round(time.Millisecond))
	return nil
}
