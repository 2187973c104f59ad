package perfstat

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/elastic/go-perf"
)

// CheckCounters verifies that hardware performance counters can be opened
// for the calling thread. perf stat needs the same permission, so probing
// here reports the problem before any subprocess is spawned.
func CheckCounters() error {
	attr := &perf.Attr{}
	perf.CPUCycles.Configure(attr)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	event, err := perf.Open(attr, perf.CallingThread, perf.AnyCPU, nil)
	if err != nil {
		return fmt.Errorf("hardware counters unavailable: %w", err)
	}
	return event.Close()
}

// CheckTracepoints verifies the privilege required for syscall-tracing
// mode: root, or a sufficiently permissive perf_event_paranoid setting.
func CheckTracepoints() error {
	if os.Geteuid() == 0 {
		return nil
	}
	if level, err := ParanoidLevel(); err == nil && level <= -1 {
		return nil
	}
	return fmt.Errorf("syscall tracing requires root privileges (or kernel.perf_event_paranoid <= -1); try running with sudo")
}

// ParanoidLevel reads the kernel's perf_event_paranoid setting.
func ParanoidLevel() (int, error) {
	data, err := os.ReadFile("/proc/sys/kernel/perf_event_paranoid")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
