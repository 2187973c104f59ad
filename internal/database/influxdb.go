package database

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"waste-bench/internal/config"
	"waste-bench/internal/host"
	"waste-bench/internal/logging"
	"waste-bench/internal/perfstat"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sirupsen/logrus"
)

// VariantResult bundles everything measured for one variant in a session.
type VariantResult struct {
	Variant         string                `json:"variant"`
	OptLevel        int                   `json:"opt_level"`
	Mode            string                `json:"mode"`
	DurationSeconds int                   `json:"duration_seconds"`
	Runs            []*perfstat.RunResult `json:"runs"`
}

// SessionMetadata describes one orchestrator session.
type SessionMetadata struct {
	SuiteName       string `json:"suite_name"`
	Description     string `json:"description"`
	DriverVersion   string `json:"driver_version"`
	GoVersion       string `json:"go_version"`
	Hostname        string `json:"hostname"`
	OSInfo          string `json:"os_info"`
	KernelVersion   string `json:"kernel_version"`
	CPUVendor       string `json:"cpu_vendor"`
	CPUModel        string `json:"cpu_model"`
	LogicalCores    int    `json:"logical_cores"`
	SessionStarted  string `json:"session_started"`  // RFC3339 timestamp
	SessionFinished string `json:"session_finished"` // RFC3339 timestamp
	TotalVariants   int    `json:"total_variants"`
	TotalRuns       int    `json:"total_runs"`
}

// Client is the session result sink.
type Client interface {
	WriteVariantResult(result *VariantResult, at time.Time) error
	WriteSessionMetadata(meta *SessionMetadata) error
	Close()
}

type InfluxDBClient struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	org      string
	bucket   string
}

func NewInfluxDBClient(cfg *config.DatabaseConfig) (*InfluxDBClient, error) {
	logger := logging.GetLogger()

	client := influxdb2.NewClient(cfg.Host, cfg.Token)
	if _, err := client.Ping(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB at %s: %w", cfg.Host, err)
	}

	logger.WithFields(logrus.Fields{
		"host":   cfg.Host,
		"org":    cfg.Org,
		"bucket": cfg.Bucket,
	}).Debug("Connected to InfluxDB")

	return &InfluxDBClient{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		org:      cfg.Org,
		bucket:   cfg.Bucket,
	}, nil
}

// WriteVariantResult writes one point per run, tagged with variant,
// optimization level, and measurement mode.
func (c *InfluxDBClient) WriteVariantResult(result *VariantResult, at time.Time) error {
	for i, run := range result.Runs {
		fields := make(map[string]interface{}, len(run.Metrics))
		for key, value := range run.Metrics {
			fields[key] = value
		}

		point := influxdb2.NewPoint("perf_run",
			map[string]string{
				"variant":   result.Variant,
				"opt_level": strconv.Itoa(result.OptLevel),
				"mode":      result.Mode,
				"run":       strconv.Itoa(i + 1),
			},
			fields,
			// Spread runs by a millisecond so points stay distinct.
			at.Add(time.Duration(i)*time.Millisecond),
		)

		if err := c.writeAPI.WritePoint(context.Background(), point); err != nil {
			return fmt.Errorf("failed to write run %d for variant %s: %w", i+1, result.Variant, err)
		}
	}

	return nil
}

func (c *InfluxDBClient) WriteSessionMetadata(meta *SessionMetadata) error {
	point := influxdb2.NewPoint("session_metadata",
		map[string]string{
			"suite": meta.SuiteName,
			"host":  meta.Hostname,
		},
		map[string]interface{}{
			"description":      meta.Description,
			"driver_version":   meta.DriverVersion,
			"go_version":       meta.GoVersion,
			"os_info":          meta.OSInfo,
			"kernel_version":   meta.KernelVersion,
			"cpu_vendor":       meta.CPUVendor,
			"cpu_model":        meta.CPUModel,
			"logical_cores":    meta.LogicalCores,
			"session_started":  meta.SessionStarted,
			"session_finished": meta.SessionFinished,
			"total_variants":   meta.TotalVariants,
			"total_runs":       meta.TotalRuns,
		},
		time.Now(),
	)

	if err := c.writeAPI.WritePoint(context.Background(), point); err != nil {
		return fmt.Errorf("failed to write session metadata: %w", err)
	}
	return nil
}

func (c *InfluxDBClient) Close() {
	c.client.Close()
}

// CollectSessionMetadata gathers host and session information for export.
func CollectSessionMetadata(cfg *config.SuiteConfig, hostCfg *host.HostConfig, results []*VariantResult, started, finished time.Time, version string) *SessionMetadata {
	totalRuns := 0
	for _, result := range results {
		totalRuns += len(result.Runs)
	}

	return &SessionMetadata{
		SuiteName:       cfg.Suite.Name,
		Description:     cfg.Suite.Description,
		DriverVersion:   version,
		GoVersion:       runtime.Version(),
		Hostname:        hostCfg.Hostname,
		OSInfo:          hostCfg.OSInfo,
		KernelVersion:   hostCfg.KernelVersion,
		CPUVendor:       hostCfg.CPUVendor,
		CPUModel:        hostCfg.CPUModel,
		LogicalCores:    hostCfg.LogicalCores,
		SessionStarted:  started.Format(time.RFC3339),
		SessionFinished: finished.Format(time.RFC3339),
		TotalVariants:   len(results),
		TotalRuns:       totalRuns,
	}
}
