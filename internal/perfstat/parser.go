package perfstat

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	counterRe       = regexp.MustCompile(`^\s*([\d,]+)\s+(\w[-\w]*)`)
	ipcRe           = regexp.MustCompile(`instructions\s+#\s+([\d.]+)\s+insn per cycle`)
	cacheMissPctRe  = regexp.MustCompile(`cache-misses\s+#\s+([\d.]+)%\s+of all cache refs`)
	branchMissPctRe = regexp.MustCompile(`branch-misses\s+#\s+([\d.]+)%\s+of all branches`)
	rawSyscallRe    = regexp.MustCompile(`^\s*([\d,]+)\s+raw_syscalls:sys_enter`)
	syscallRe       = regexp.MustCompile(`^\s*([\d,]+)\s+syscalls:sys_enter_(\w+)`)
	elapsedRe       = regexp.MustCompile(`(\d+\.\d+)\s+seconds\s+time\s+elapsed`)
	userTimeRe      = regexp.MustCompile(`(\d+\.\d+)\s+seconds\s+user`)
	sysTimeRe       = regexp.MustCompile(`(\d+\.\d+)\s+seconds\s+sys`)
)

// Parse extracts the named numeric fields from a perf stat report.
// Unrecognized lines are skipped and absent fields stay absent; the report
// format is not under our control. Returns nil when nothing could be
// extracted.
func Parse(output string, syscalls bool, expectedDuration int) *RunResult {
	metrics := make(map[string]float64)

	for _, line := range strings.Split(output, "\n") {
		if syscalls {
			if m := rawSyscallRe.FindStringSubmatch(line); m != nil {
				if v, err := parseCount(m[1]); err == nil {
					metrics["total_syscalls"] = v
				}
			}
			if m := syscallRe.FindStringSubmatch(line); m != nil {
				if v, err := parseCount(m[1]); err == nil && v > 0 {
					metrics["syscall_"+m[2]] = v
				}
			}
		} else {
			if m := counterRe.FindStringSubmatch(line); m != nil {
				if v, err := parseCount(m[1]); err == nil {
					metrics[m[2]] = v
				}
			}
			if m := ipcRe.FindStringSubmatch(line); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					metrics["insn_per_cycle"] = v
				}
			}
			if m := cacheMissPctRe.FindStringSubmatch(line); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					metrics["cache_miss_pct"] = v
				}
			}
			if m := branchMissPctRe.FindStringSubmatch(line); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					metrics["branch_miss_pct"] = v
				}
			}
		}

		// Timing lines are common to both modes.
		if m := elapsedRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				metrics["time_elapsed"] = v
			}
		}
		if m := userTimeRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				metrics["user_time"] = v
			}
		}
		if m := sysTimeRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				metrics["sys_time"] = v
			}
		}
	}

	if !syscalls {
		user, hasUser := metrics["user_time"]
		sys, hasSys := metrics["sys_time"]
		if hasUser && hasSys && user+sys > 0 {
			metrics["sys_time_pct"] = sys / (user + sys) * 100
		}
	}

	if elapsed, ok := metrics["time_elapsed"]; ok && expectedDuration > 0 {
		errorPct := math.Abs(elapsed-float64(expectedDuration)) / float64(expectedDuration) * 100
		metrics["time_accuracy_pct"] = 100 - errorPct
	}

	if len(metrics) == 0 {
		return nil
	}
	return &RunResult{Metrics: metrics}
}

func parseCount(s string) (float64, error) {
	v, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	return float64(v), err
}
