package build

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/linglong/blog-admin/internal/config"
)

// fakeRunner records invocations instead of spawning processes.
type fakeRunner struct {
	calls   int
	dir     string
	name    string
	args    []string
	stdout  string
	stderr  string
	err     error
	consume bool // when set, blocks until the context deadline fires
}

func (r *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	r.calls++
	r.dir = dir
	r.name = name
	r.args = args
	if r.consume {
		<-ctx.Done()
		return "", "", ctx.Err()
	}
	return r.stdout, r.stderr, r.err
}

func testTrigger(t *testing.T, env string, runner Runner) *Trigger {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Environment = env
	cfg.Build.ProjectDir = t.TempDir()
	cfg.Build.Command = []string{"pnpm", "run", "build"}
	cfg.Build.Timeout = 5 * time.Minute
	tr := NewTrigger(cfg)
	tr.runner = runner
	return tr
}

func TestRebuild_Success(t *testing.T) {
	r := &fakeRunner{stdout: "built 42 pages"}
	tr := testTrigger(t, "production", r)

	require.NoError(t, tr.Rebuild(context.Background()))
	require.Equal(t, 1, r.calls)
	require.Equal(t, "pnpm", r.name)
	require.Equal(t, []string{"run", "build"}, r.args)
}

func TestRebuild_SkippedOutsideProduction(t *testing.T) {
	r := &fakeRunner{}
	tr := testTrigger(t, "development", r)

	require.NoError(t, tr.Rebuild(context.Background()))
	require.Equal(t, 0, r.calls, "non-production mode must not invoke the build process")
}

func TestRebuild_ProjectDirMissing(t *testing.T) {
	r := &fakeRunner{}
	cfg := &config.Config{}
	cfg.Server.Environment = "production"
	cfg.Build.ProjectDir = "/nonexistent/site/dir"
	cfg.Build.Command = []string{"pnpm", "run", "build"}
	cfg.Build.Timeout = time.Minute
	tr := NewTrigger(cfg)
	tr.runner = r

	err := tr.Rebuild(context.Background())
	require.ErrorIs(t, err, ErrProjectDirMissing)
	require.Equal(t, 0, r.calls, "missing project dir must fail before invocation")
}

func TestRebuild_NonzeroExit(t *testing.T) {
	r := &fakeRunner{stderr: "error TS2345", err: errors.New("exit status 1")}
	tr := testTrigger(t, "production", r)

	err := tr.Rebuild(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrBuildTimeout)
}

func TestRebuild_Timeout(t *testing.T) {
	r := &fakeRunner{consume: true}
	tr := testTrigger(t, "production", r)
	tr.timeout = 20 * time.Millisecond

	err := tr.Rebuild(context.Background())
	require.ErrorIs(t, err, ErrBuildTimeout)
}
