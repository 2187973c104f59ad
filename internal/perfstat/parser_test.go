package perfstat

import (
	"math"
	"testing"
)

const counterOutput = ` Performance counter stats for './bin/basic 3':

          3,001.23 msec task-clock                #    1.000 CPUs utilized
     9,876,543,210      cycles                    #    3.291 GHz
     6,420,000,000      instructions              #    0.65  insn per cycle
        12,345,678      cache-references
           361,728      cache-misses              #    2.93% of all cache refs
     1,234,567,890      branches
       187,900,000      branch-misses             #   15.22% of all branches

       3.001234567 seconds time elapsed

       2.998000000 seconds user

       0.003000000 seconds sys

`

const syscallOutput = ` Performance counter stats for './bin/basic 3':

            51,234      raw_syscalls:sys_enter
            51,200      syscalls:sys_enter_clock_gettime
                12      syscalls:sys_enter_write
                 0      syscalls:sys_enter_openat

       3.002000000 seconds time elapsed

       2.990000000 seconds user

       0.010000000 seconds sys

`

func approx(t *testing.T, r *RunResult, key string, want, tolerance float64) {
	t.Helper()
	got, ok := r.Get(key)
	if !ok {
		t.Fatalf("missing metric %q", key)
	}
	if math.Abs(got-want) > tolerance {
		t.Fatalf("metric %q: got %v, want %v", key, got, want)
	}
}

func TestParse_CounterMode(t *testing.T) {
	result := Parse(counterOutput, false, 3)
	if result == nil {
		t.Fatalf("expected a result")
	}

	approx(t, result, "cycles", 9876543210, 0)
	approx(t, result, "instructions", 6420000000, 0)
	approx(t, result, "cache-references", 12345678, 0)
	approx(t, result, "cache-misses", 361728, 0)
	approx(t, result, "branches", 1234567890, 0)
	approx(t, result, "branch-misses", 187900000, 0)
	approx(t, result, "insn_per_cycle", 0.65, 1e-9)
	approx(t, result, "cache_miss_pct", 2.93, 1e-9)
	approx(t, result, "branch_miss_pct", 15.22, 1e-9)
	approx(t, result, "time_elapsed", 3.001234567, 1e-9)
	approx(t, result, "user_time", 2.998, 1e-9)
	approx(t, result, "sys_time", 0.003, 1e-9)

	// sys / (user + sys) * 100
	approx(t, result, "sys_time_pct", 0.003/3.001*100, 1e-6)
	// 100 - |elapsed - 3| / 3 * 100
	approx(t, result, "time_accuracy_pct", 100-0.001234567/3*100, 1e-6)
}

func TestParse_SyscallMode(t *testing.T) {
	result := Parse(syscallOutput, true, 3)
	if result == nil {
		t.Fatalf("expected a result")
	}

	approx(t, result, "total_syscalls", 51234, 0)
	approx(t, result, "syscall_clock_gettime", 51200, 0)
	approx(t, result, "syscall_write", 12, 0)

	if _, ok := result.Get("syscall_openat"); ok {
		t.Fatalf("zero-count syscalls must be dropped")
	}
	if _, ok := result.Get("cycles"); ok {
		t.Fatalf("counter metrics must not appear in syscall mode")
	}

	approx(t, result, "time_elapsed", 3.002, 1e-9)
}

func TestParse_ToleratesUnrecognizedLines(t *testing.T) {
	output := `garbage header
   <not supported>      stalled-cycles-frontend
     1,000      cycles
some trailing noise
       1.000000000 seconds time elapsed
`
	result := Parse(output, false, 1)
	if result == nil {
		t.Fatalf("expected a result")
	}
	approx(t, result, "cycles", 1000, 0)
	approx(t, result, "time_elapsed", 1.0, 1e-9)
	if _, ok := result.Get("stalled-cycles-frontend"); ok {
		t.Fatalf("unsupported counter must be omitted")
	}
}

func TestParse_NothingParsedReturnsNil(t *testing.T) {
	if result := Parse("completely unrelated text\n", false, 10); result != nil {
		t.Fatalf("expected nil, got %+v", result)
	}
}

func TestParse_NoAccuracyWithoutElapsed(t *testing.T) {
	result := Parse("     1,000      cycles\n", false, 10)
	if result == nil {
		t.Fatalf("expected a result")
	}
	if _, ok := result.Get("time_accuracy_pct"); ok {
		t.Fatalf("accuracy must be omitted when elapsed time is missing")
	}
}
