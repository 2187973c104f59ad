package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"waste-bench/internal/compile"
	"waste-bench/internal/config"
	"waste-bench/internal/database"
	"waste-bench/internal/host"
	"waste-bench/internal/logging"
	"waste-bench/internal/perfstat"
	"waste-bench/internal/report"
	"waste-bench/internal/variant"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// PerfSession drives one orchestrator invocation: compile, measure, report,
// and finally export. One subprocess at a time, nothing in parallel.
type PerfSession struct {
	config        *config.SuiteConfig
	configContent string
	compiler      *compile.Compiler
	runner        *perfstat.Runner
	dbClient      database.Client
	hostConfig    *host.HostConfig

	optLevel compile.OptLevel
	duration int
	runs     int
	syscalls bool

	startTime time.Time
	results   []*database.VariantResult
}

func newPerfSession(cmd *cobra.Command, configFile string, optimize, duration, runs int, syscalls bool) (*PerfSession, error) {
	logger := logging.GetLogger()

	cfg, content, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// The config's log level applies unless the flag overrode it already.
	if cfg.Suite.LogLevel != "" && !cmd.Flags().Changed("log-level") {
		if err := logging.SetLogLevel(cfg.Suite.LogLevel); err != nil {
			logger.WithField("log_level", cfg.Suite.LogLevel).WithError(err).Warn("Invalid log level in config, using INFO")
		}
	}

	level, durationVal, runsVal, err := resolveSessionParams(cfg,
		optimize, cmd.Flags().Changed("optimize"),
		duration, cmd.Flags().Changed("duration"),
		runs, cmd.Flags().Changed("runs"))
	if err != nil {
		return nil, err
	}

	hostConfig, err := host.GetHostConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize host configuration: %w", err)
	}

	return &PerfSession{
		config:        cfg,
		configContent: content,
		compiler: &compile.Compiler{
			Binary:     cfg.Suite.Compiler.Binary,
			BuildFlags: cfg.Suite.Compiler.BuildFlags,
			BinDir:     cfg.Suite.BinDir,
		},
		runner:     &perfstat.Runner{Tool: cfg.Suite.Perf.Tool},
		hostConfig: hostConfig,
		optLevel:   level,
		duration:   durationVal,
		runs:       runsVal,
		syscalls:   syscalls,
		startTime:  time.Now(),
	}, nil
}

// resolveSessionParams merges flag values over the suite configuration.
// Explicitly set flags win; everything is validated before any subprocess
// is spawned.
func resolveSessionParams(cfg *config.SuiteConfig, optimize int, optimizeSet bool, duration int, durationSet bool, runs int, runsSet bool) (compile.OptLevel, int, int, error) {
	optValue := cfg.Suite.Compiler.OptLevel
	if optimizeSet {
		optValue = optimize
	}
	level, err := compile.ParseOptLevel(optValue)
	if err != nil {
		return 0, 0, 0, err
	}

	durationVal := cfg.Suite.Perf.Duration
	if durationSet {
		durationVal = duration
	}
	if durationVal <= 0 {
		return 0, 0, 0, fmt.Errorf("duration must be greater than 0")
	}

	runsVal := cfg.Suite.Perf.Runs
	if runsSet {
		runsVal = runs
	}
	if runsVal <= 0 {
		return 0, 0, 0, fmt.Errorf("runs must be greater than 0")
	}

	return level, durationVal, runsVal, nil
}

// openDatabase connects the session to InfluxDB when one is configured.
// Export is best effort; an unreachable database never blocks measuring.
func (s *PerfSession) openDatabase() {
	logger := logging.GetLogger()

	if s.config.Suite.Data.DB == nil {
		return
	}

	client, err := database.NewInfluxDBClient(s.config.Suite.Data.DB)
	if err != nil {
		logger.WithError(err).Warn("Database unavailable, continuing without export")
		return
	}
	s.dbClient = client
}

func (s *PerfSession) Compile(ctx context.Context, name string) error {
	logger := logging.GetLogger()

	v, err := variant.Lookup(s.config.Suite.VariantsDir, name)
	if err != nil {
		return err
	}

	binPath, err := s.compiler.Compile(ctx, v, s.optLevel)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"variant": v.Name,
		"binary":  binPath,
	}).Info("Successfully compiled variant")
	return nil
}

// Perf rebuilds the variant at the session's optimization level, runs it
// under perf stat the requested number of times, and prints the table.
func (s *PerfSession) Perf(ctx context.Context, name string, quiet bool) error {
	logger := logging.GetLogger()

	v, err := variant.Lookup(s.config.Suite.VariantsDir, name)
	if err != nil {
		return err
	}

	if s.syscalls {
		if err := perfstat.CheckTracepoints(); err != nil {
			return err
		}
	} else if !s.hostConfig.CountersAvailable {
		logger.WithField("perf_event_paranoid", s.hostConfig.PerfEventParanoid).
			Warn("Hardware counters appear unavailable; perf may report software counters only")
	}

	// Always rebuild before measuring so the binary matches the level.
	binPath, err := s.compiler.Compile(ctx, v, s.optLevel)
	if err != nil {
		return err
	}

	mode := "performance counters"
	if s.syscalls {
		mode = "syscalls"
	}
	fmt.Printf("Running %s %d time%s for %d seconds each (measuring %s)...\n",
		v.Name, s.runs, plural(s.runs), s.duration, mode)

	var results []*perfstat.RunResult
	if quiet && s.runs > 1 {
		fmt.Print("Runs: ")
	}

	for run := 1; run <= s.runs; run++ {
		if ctx.Err() != nil {
			break
		}
		if s.runs > 1 {
			if quiet {
				fmt.Print(".")
			} else {
				logger.WithFields(logrus.Fields{"run": run, "total": s.runs}).Info("Starting run")
			}
		}

		output, err := s.runner.Run(ctx, binPath, s.duration, s.syscalls)
		if err != nil {
			if s.runs == 1 {
				return err
			}
			logger.WithField("run", run).WithError(err).Warn("perf run failed")
			continue
		}

		parsed := perfstat.Parse(output, s.syscalls, s.duration)
		if parsed == nil {
			logger.WithField("run", run).Warn("Failed to parse perf output for this run")
			continue
		}
		results = append(results, parsed)
	}

	if quiet && s.runs > 1 {
		fmt.Println()
	}

	if len(results) == 0 {
		return fmt.Errorf("no successful perf runs completed")
	}

	report.Print(os.Stdout, v.Name, results, s.runs, s.syscalls)

	s.results = append(s.results, &database.VariantResult{
		Variant:         v.Name,
		OptLevel:        int(s.optLevel),
		Mode:            modeTag(s.syscalls),
		DurationSeconds: s.duration,
		Runs:            results,
	})

	return nil
}

// PerfAll benchmarks every discovered variant in sequence, one table block
// per variant. Individual failures do not abort the remaining variants.
func (s *PerfSession) PerfAll(ctx context.Context) error {
	logger := logging.GetLogger()

	variants, err := variant.Discover(s.config.Suite.VariantsDir)
	if err != nil {
		return err
	}

	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = v.Name
	}
	fmt.Printf("Running performance tests on %d variants: %s\n\n", len(variants), strings.Join(names, ", "))

	success := 0
	for _, v := range variants {
		if ctx.Err() != nil {
			break
		}

		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("Testing %s\n", v.Name)
		fmt.Println(strings.Repeat("=", 60))

		if err := s.Perf(ctx, v.Name, true); err != nil {
			logger.WithField("variant", v.Name).WithError(err).Error("perf test failed")
			continue
		}
		success++
	}

	fmt.Printf("\nCompleted perf tests: %d/%d successful\n", success, len(variants))

	if success == 0 {
		return fmt.Errorf("no perf tests completed successfully")
	}
	return nil
}

// Finish exports collected results to the database and the spool. Both are
// best effort; the printed tables are already the primary output.
func (s *PerfSession) Finish() {
	logger := logging.GetLogger()

	defer func() {
		if s.dbClient != nil {
			s.dbClient.Close()
		}
	}()

	if len(s.results) == 0 {
		return
	}

	endTime := time.Now()
	meta := database.CollectSessionMetadata(s.config, s.hostConfig, s.results, s.startTime, endTime, Version)

	if s.dbClient != nil {
		exported := true
		for _, result := range s.results {
			if err := s.dbClient.WriteVariantResult(result, s.startTime); err != nil {
				logger.WithError(err).Warn("Failed to export results to database")
				exported = false
				break
			}
		}
		if exported {
			if err := s.dbClient.WriteSessionMetadata(meta); err != nil {
				logger.WithError(err).Warn("Failed to export session metadata")
			} else {
				logger.WithField("variants", len(s.results)).Info("Results exported to database")
			}
		}
	}

	if spool := s.config.Suite.Data.Spool; spool != nil && spool.Enabled {
		artifact := database.BuildSpoolArtifact(s.config.Suite.Name, s.configContent, meta, s.results, s.startTime, endTime)
		if path, err := database.WriteSpoolArtifact(spool.Dir, artifact); err != nil {
			logger.WithError(err).Warn("Failed to write spool artifact")
		} else {
			logger.WithField("artifact", path).Info("Session results spooled")
		}
	}
}

func modeTag(syscalls bool) string {
	if syscalls {
		return "syscalls"
	}
	return "counters"
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
