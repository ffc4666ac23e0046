package hooks

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string, mode os.FileMode) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), mode))
	return path
}

func TestScriptsMissingDirectory(t *testing.T) {
	r := NewRunner(t.TempDir(), WithLogger(logging.Nop()))
	scripts, err := r.Scripts(PointNotification)
	require.NoError(t, err)
	assert.Empty(t, scripts)
}

func TestScriptsExecutableOnlyInNameOrder(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, PointNotification)
	b := writeScript(t, dir, "20-b.sh", "exit 0", 0o755)
	a := writeScript(t, dir, "10-a.sh", "exit 0", 0o755)
	writeScript(t, dir, "30-not-exec.sh", "exit 0", 0o644)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "subdir"), 0o755))

	scripts, err := NewRunner(root, WithLogger(logging.Nop())).Scripts(PointNotification)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, scripts)
}

func TestRunPassesEnvironment(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out.txt")
	writeScript(t, filepath.Join(root, PointNotification), "record.sh",
		`echo "$HOOK_POINT $NOTIFY_STREAM_ID $NOTIFY_STREAM_CATEGORY $NOTIFY_STREAM_KIND" > "`+out+`"`, 0o755)

	var stderr bytes.Buffer
	r := NewRunner(root, WithOutput(&stderr), WithLogger(logging.Nop()))
	n := domain.Notification{ID: "n1", Title: "Rent due", Category: domain.CategoryPayment}
	require.NoError(t, r.Run(context.Background(), PointNotification, NotificationEnv("t1", n, false)))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "notification n1 payment personal", strings.TrimSpace(string(data)))
	assert.Empty(t, stderr.String())
}

func TestRunFailureWarnsAndContinues(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, PointNotification)
	marker := filepath.Join(root, "second-ran")
	writeScript(t, dir, "10-fail.sh", "exit 3", 0o755)
	writeScript(t, dir, "20-ok.sh", `touch "`+marker+`"`, 0o755)

	var stderr bytes.Buffer
	r := NewRunner(root, WithOutput(&stderr), WithLogger(logging.Nop()))
	require.NoError(t, r.Run(context.Background(), PointNotification, nil))

	assert.Contains(t, stderr.String(), "warning: hook 10-fail.sh failed")
	assert.FileExists(t, marker)
}

func TestRunFailureIgnored(t *testing.T) {
	root := t.TempDir()
	writeScript(t, filepath.Join(root, PointNotification), "fail.sh", "exit 1", 0o755)

	var stderr bytes.Buffer
	r := NewRunner(root, WithOutput(&stderr), WithFailureMode(FailureModeIgnore), WithLogger(logging.Nop()))
	require.NoError(t, r.Run(context.Background(), PointNotification, nil))
	assert.Empty(t, stderr.String())
}

func TestRunTimeout(t *testing.T) {
	root := t.TempDir()
	writeScript(t, filepath.Join(root, PointNotification), "slow.sh", "exec sleep 5", 0o755)

	var stderr bytes.Buffer
	r := NewRunner(root, WithOutput(&stderr), WithTimeout(100*time.Millisecond), WithLogger(logging.Nop()))
	start := time.Now()
	require.NoError(t, r.Run(context.Background(), PointNotification, nil))

	assert.Less(t, time.Since(start), 4*time.Second)
	assert.Contains(t, stderr.String(), "timed out")
}

func TestNotificationEnv(t *testing.T) {
	n := domain.Notification{
		ID:        "a1",
		Title:     "Pool closed",
		Type:      "announcement",
		CreatedAt: "2024-05-01T08:00:00Z",
		Metadata:  &domain.Metadata{IsTransient: true},
	}
	env := NotificationEnv("t1", n, true)

	assert.Equal(t, "announcement", env["NOTIFY_STREAM_KIND"])
	assert.Equal(t, "announcement", env["NOTIFY_STREAM_CATEGORY"])
	assert.Equal(t, "true", env["NOTIFY_STREAM_TRANSIENT"])
	assert.Equal(t, "false", env["NOTIFY_STREAM_IS_READ"])
	assert.Equal(t, "t1", env["NOTIFY_STREAM_TENANT"])
}
