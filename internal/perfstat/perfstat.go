// Package perfstat shells out to the external perf tool and turns its
// textual report into run results. It never measures anything itself; the
// orchestrator depends on perf's label substrings staying stable.
package perfstat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"waste-bench/internal/logging"

	"github.com/sirupsen/logrus"
)

// RunResult is the set of numeric fields parsed from one perf stat
// invocation, immutable after parsing. Counter-mode keys follow perf's
// event names (cycles, instructions, cache-misses, ...) plus derived
// fields; syscall mode uses total_syscalls and syscall_<name>.
type RunResult struct {
	Metrics map[string]float64
}

func (r *RunResult) Get(key string) (float64, bool) {
	v, ok := r.Metrics[key]
	return v, ok
}

// SyscallEvents is the event selector for syscall-tracing mode. It needs
// elevated privileges.
const SyscallEvents = "raw_syscalls:sys_enter,syscalls:sys_enter_*"

type Runner struct {
	Tool string
}

// Run executes the binary under perf stat for the given duration and
// returns the captured report. perf writes its statistics to stderr; the
// variant's own stdout chatter is discarded.
func (r *Runner) Run(ctx context.Context, binary string, seconds int, syscalls bool) (string, error) {
	logger := logging.GetLogger()

	args := []string{"stat"}
	if syscalls {
		args = append(args, "-e", SyscallEvents)
	}
	args = append(args, "--", binary, strconv.Itoa(seconds))

	logger.WithFields(logrus.Fields{
		"binary":   binary,
		"duration": seconds,
		"syscalls": syscalls,
	}).Debug("Invoking perf stat")

	cmd := exec.CommandContext(ctx, r.Tool, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%q command not found: please install the perf utility", r.Tool)
		}
		return "", fmt.Errorf("perf stat failed: %w\n%s", err, stderr.String())
	}

	return stderr.String(), nil
}
