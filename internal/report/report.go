// Package report renders run results as fixed-width tables on stdout.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"waste-bench/internal/perfstat"
	"waste-bench/internal/stats"
)

type metricInfo struct {
	key   string
	label string
}

// Counter-mode metrics are printed in a fixed order.
var counterMetrics = []metricInfo{
	{"cycles", "Cycles"},
	{"instructions", "Instructions"},
	{"insn_per_cycle", "Insn/Cycle"},
	{"cache-references", "Cache Refs"},
	{"cache-misses", "Cache Misses"},
	{"cache_miss_pct", "Cache Miss %"},
	{"branches", "Branches"},
	{"branch-instructions", "Branch Instr"},
	{"branch-misses", "Branch Misses"},
	{"branch_miss_pct", "Branch Miss %"},
	{"time_elapsed", "Time Elapsed (s)"},
	{"time_accuracy_pct", "Time Accuracy %"},
	{"user_time", "User Time (s)"},
	{"sys_time", "Sys Time (s)"},
	{"sys_time_pct", "Sys Time %"},
}

var timingMetrics = []metricInfo{
	{"time_elapsed", "Time Elapsed (s)"},
	{"time_accuracy_pct", "Time Accuracy %"},
	{"user_time", "User Time (s)"},
	{"sys_time", "Sys Time (s)"},
}

// Print renders one table block for a variant's run results. With more than
// one run it prints mean, standard deviation as a percentage, min, and max
// per metric, right-aligned.
func Print(w io.Writer, variantName string, results []*perfstat.RunResult, runs int, syscalls bool) {
	if len(results) == 0 {
		return
	}

	mode := "Performance"
	if syscalls {
		mode = "Syscalls"
	}
	fmt.Fprintf(w, "\n %s Results for %s (%d run%s):\n", mode, variantName, runs, plural(runs))
	fmt.Fprintln(w, strings.Repeat("=", 80))

	var metrics []metricInfo
	if syscalls {
		metrics = syscallMetrics(results)
	} else {
		metrics = counterMetrics
	}

	if runs > 1 {
		fmt.Fprintf(w, "%-16s %15s %15s %15s %15s\n", "Metric", "Mean", "Std Dev (%)", "Min", "Max")
		fmt.Fprintln(w, strings.Repeat("-", 80))
	} else {
		fmt.Fprintf(w, "%-16s %15s\n", "Metric", "Value")
		fmt.Fprintln(w, strings.Repeat("-", 35))
	}

	for _, metric := range metrics {
		var values []float64
		for _, result := range results {
			if v, ok := result.Get(metric.key); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}

		if runs > 1 && len(values) > 1 {
			agg := stats.Compute(values)
			fmt.Fprintf(w, "%-16s %s %14.2f%% %s %s\n",
				metric.label,
				formatValue(metric.key, agg.Mean),
				agg.StdDevPct,
				formatValue(metric.key, agg.Min),
				formatValue(metric.key, agg.Max))
		} else {
			fmt.Fprintf(w, "%-16s %s\n", metric.label, formatValue(metric.key, values[0]))
		}
	}

	fmt.Fprintln(w)
}

// syscallMetrics builds the display order for syscall mode: the total
// first, then individual syscalls by descending mean count, then timing.
func syscallMetrics(results []*perfstat.RunResult) []metricInfo {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	hasTotal := false

	for _, result := range results {
		for key, value := range result.Metrics {
			if key == "total_syscalls" {
				hasTotal = true
				continue
			}
			if strings.HasPrefix(key, "syscall_") && value > 0 {
				sums[key] += value
				counts[key]++
			}
		}
	}

	type avg struct {
		key  string
		mean float64
	}
	averages := make([]avg, 0, len(sums))
	for key, sum := range sums {
		averages = append(averages, avg{key, sum / float64(counts[key])})
	}
	sort.Slice(averages, func(i, j int) bool {
		if averages[i].mean != averages[j].mean {
			return averages[i].mean > averages[j].mean
		}
		return averages[i].key < averages[j].key
	})

	var metrics []metricInfo
	if hasTotal {
		metrics = append(metrics, metricInfo{"total_syscalls", "Total Syscalls"})
	}
	for _, a := range averages {
		metrics = append(metrics, metricInfo{a.key, syscallLabel(a.key)})
	}
	metrics = append(metrics, timingMetrics...)
	return metrics
}

func syscallLabel(key string) string {
	words := strings.Split(strings.TrimPrefix(key, "syscall_"), "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

func formatValue(key string, v float64) string {
	switch {
	case isTimeMetric(key):
		return fmt.Sprintf("%15.6f", v)
	case isRatioMetric(key):
		return fmt.Sprintf("%15.3f", v)
	default:
		return fmt.Sprintf("%15s", humanize.Comma(int64(v+0.5)))
	}
}

func isTimeMetric(key string) bool {
	return key == "time_elapsed" || strings.HasSuffix(key, "_time")
}

func isRatioMetric(key string) bool {
	return key == "insn_per_cycle" || strings.HasSuffix(key, "_pct")
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
