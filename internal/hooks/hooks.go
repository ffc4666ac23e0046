// Package hooks runs user scripts when notifications arrive.
//
// Scripts live in <hooks_dir>/<hook point>/, run in name order and receive
// the notification through NOTIFY_STREAM_* environment variables.
package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/leasedesk/notify-stream/internal/config"
	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/logging"
)

// PointNotification runs for every notification received while following.
const PointNotification = "notification"

// Failure modes.
const (
	FailureModeWarn   = "warn"
	FailureModeIgnore = "ignore"
)

const (
	defaultTimeout = 30 * time.Second
	waitDelay      = time.Second
)

// Runner executes the scripts of a hook point.
type Runner struct {
	dir         string
	timeout     time.Duration
	failureMode string
	stderr      io.Writer
	logger      logging.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout bounds each script run.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithFailureMode sets what a failing script does: warn or ignore.
func WithFailureMode(mode string) Option {
	return func(r *Runner) {
		r.failureMode = mode
	}
}

// WithOutput sets where script output and warnings go.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.stderr = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner returns a runner for scripts under dir.
func NewRunner(dir string, opts ...Option) *Runner {
	r := &Runner{
		dir:         dir,
		timeout:     defaultTimeout,
		failureMode: FailureModeWarn,
		stderr:      os.Stderr,
		logger:      logging.GetGlobal(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromConfig returns the configured runner, or nil when hooks are disabled.
func FromConfig() *Runner {
	if !config.GetBool("hooks_enabled", true) {
		return nil
	}
	dir := config.Get("hooks_dir", "")
	if dir == "" {
		return nil
	}
	return NewRunner(dir,
		WithTimeout(config.GetMillis("hooks_timeout_ms", defaultTimeout)),
		WithFailureMode(config.Get("hooks_failure_mode", FailureModeWarn)),
	)
}

// Scripts returns the executable scripts of a hook point in name order. A
// missing directory has no scripts.
func (r *Runner) Scripts(point string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.dir, point))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read hooks: %w", err)
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(r.dir, point, e.Name())
		info, err := os.Stat(path)
		if err != nil || info.Mode()&0o111 == 0 {
			continue
		}
		scripts = append(scripts, path)
	}
	sort.Strings(scripts)
	return scripts, nil
}

// Run executes every script of point with vars added to the environment.
// Failures are reported according to the failure mode and never returned;
// the error is only for an unreadable hooks directory.
func (r *Runner) Run(ctx context.Context, point string, vars map[string]string) error {
	scripts, err := r.Scripts(point)
	if err != nil || len(scripts) == 0 {
		return err
	}

	env := os.Environ()
	env = append(env, "HOOK_POINT="+point, "HOOK_TIMESTAMP="+time.Now().UTC().Format(time.RFC3339))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}

	for _, script := range scripts {
		r.runScript(ctx, script, env)
	}
	return nil
}

func (r *Runner) runScript(ctx context.Context, script string, env []string) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	name := filepath.Base(script)
	start := time.Now()
	cmd := exec.CommandContext(ctx, script)
	cmd.Env = env
	cmd.Stdout = r.stderr
	cmd.Stderr = r.stderr
	// children still holding the output pipes must not outlive the timeout
	cmd.WaitDelay = waitDelay
	err := cmd.Run()
	duration := time.Since(start)

	if err == nil {
		r.logger.Debug("hook completed", "hook", name, "duration", duration.String())
		return
	}
	if ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("timed out after %s", r.timeout)
	}
	r.logger.Warn("hook failed", "hook", name, "error", err)
	if r.failureMode != FailureModeIgnore {
		_, _ = fmt.Fprintf(r.stderr, "warning: hook %s failed: %v\n", name, err)
	}
}

// NotificationEnv describes n for hook scripts.
func NotificationEnv(tenantID string, n domain.Notification, announcement bool) map[string]string {
	kind := "personal"
	if announcement {
		kind = "announcement"
	}
	return map[string]string{
		"NOTIFY_STREAM_TENANT":     tenantID,
		"NOTIFY_STREAM_KIND":       kind,
		"NOTIFY_STREAM_ID":         n.ID.String(),
		"NOTIFY_STREAM_TITLE":      n.Title,
		"NOTIFY_STREAM_MESSAGE":    n.Message,
		"NOTIFY_STREAM_CATEGORY":   string(n.EffectiveCategory()),
		"NOTIFY_STREAM_CREATED_AT": n.CreatedAt,
		"NOTIFY_STREAM_IS_READ":    strconv.FormatBool(n.IsRead),
		"NOTIFY_STREAM_TRANSIENT":  strconv.FormatBool(n.IsTransient()),
	}
}
