package host

import (
	"os"
	"runtime"
	"strings"
	"sync"

	"waste-bench/internal/logging"
	"waste-bench/internal/perfstat"

	"github.com/sirupsen/logrus"
)

// HostConfig is a snapshot of the measurement host, initialized once at
// startup and reused for capability checks and export metadata.
type HostConfig struct {
	Hostname      string
	OSInfo        string
	KernelVersion string
	CPUVendor     string
	CPUModel      string
	LogicalCores  int

	// Perf capability
	PerfEventParanoid int
	CountersAvailable bool
}

var (
	globalHostConfig *HostConfig
	hostConfigOnce   sync.Once
)

// GetHostConfig returns the global host configuration, initializing it on
// first call.
func GetHostConfig() (*HostConfig, error) {
	var err error
	hostConfigOnce.Do(func() {
		globalHostConfig, err = initializeHostConfig()
	})
	return globalHostConfig, err
}

func initializeHostConfig() (*HostConfig, error) {
	logger := logging.GetLogger()

	config := &HostConfig{
		OSInfo:       runtime.GOOS + "/" + runtime.GOARCH,
		LogicalCores: runtime.NumCPU(),
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	config.Hostname = hostname

	config.KernelVersion = readKernelVersion()
	config.CPUVendor, config.CPUModel = readCPUInfo()

	if level, err := perfstat.ParanoidLevel(); err == nil {
		config.PerfEventParanoid = level
	}
	config.CountersAvailable = perfstat.CheckCounters() == nil

	logger.WithFields(logrus.Fields{
		"hostname":            config.Hostname,
		"cpu_model":           config.CPUModel,
		"logical_cores":       config.LogicalCores,
		"counters_available":  config.CountersAvailable,
		"perf_event_paranoid": config.PerfEventParanoid,
	}).Debug("Host configuration initialized")

	return config, nil
}

func readKernelVersion() string {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return "unknown"
	}
	parts := strings.Fields(string(data))
	if len(parts) < 3 {
		return "unknown"
	}
	return parts[2]
}

func readCPUInfo() (vendor, model string) {
	vendor = "unknown"
	model = "unknown"

	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return vendor, model
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "vendor_id") {
			if parts := strings.SplitN(line, ":", 2); len(parts) == 2 {
				vendor = strings.TrimSpace(parts[1])
			}
		} else if strings.HasPrefix(line, "model name") {
			if parts := strings.SplitN(line, ":", 2); len(parts) == 2 {
				model = strings.TrimSpace(parts[1])
			}
		}
	}

	return vendor, model
}
