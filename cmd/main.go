package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"waste-bench/internal/config"
	"waste-bench/internal/logging"
	"waste-bench/internal/variant"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const Version = "1.0.0"

func loadEnvironment() {
	logger := logging.GetLogger()

	// Try to load .env file from current directory
	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
		} else {
			logger.WithField("file", envFile).Debug("Loaded environment variables")
		}
		return
	}

	// Fall back to the application directory
	if execPath, err := os.Executable(); err == nil {
		envFile = filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
			} else {
				logger.WithField("file", envFile).Debug("Loaded environment variables")
			}
		}
	}
}

func main() {
	logger := logging.GetLogger()

	loadEnvironment()

	var (
		configFile string
		logLevel   string
		optimize   int
		duration   int
		runs       int
		syscalls   bool
		addMain    bool
	)

	rootCmd := &cobra.Command{
		Use:   "waste-bench",
		Short: "CPU-wasting experiments manager",
		Long:  "A utility to compile, inspect, and benchmark busy-loop variants under perf stat",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				if err := logging.SetLogLevel(logLevel); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to suite configuration file")

	compileCmd := &cobra.Command{
		Use:   "compile <variant>",
		Short: "Compile a busy-loop variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newPerfSession(cmd, configFile, optimize, duration, runs, syscalls)
			if err != nil {
				return err
			}
			return session.Compile(cmd.Context(), args[0])
		},
	}
	compileCmd.Flags().IntVarP(&optimize, "optimize", "O", 3, "Optimization level (0-3)")

	codeCmd := &cobra.Command{
		Use:   "code <variant>",
		Short: "Print a variant's source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCode(configFile, args[0], addMain)
		},
	}
	codeCmd.Flags().BoolVar(&addMain, "add-main", false, "Include the generic driver source in the output")

	perfCmd := &cobra.Command{
		Use:   "perf <variant>",
		Short: "Benchmark a variant under perf stat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newPerfSession(cmd, configFile, optimize, duration, runs, syscalls)
			if err != nil {
				return err
			}
			session.openDatabase()
			defer session.Finish()
			return session.Perf(cmd.Context(), args[0], true)
		},
	}

	perfAllCmd := &cobra.Command{
		Use:   "perf-all",
		Short: "Benchmark every variant in sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newPerfSession(cmd, configFile, optimize, duration, runs, syscalls)
			if err != nil {
				return err
			}
			session.openDatabase()
			defer session.Finish()
			return session.PerfAll(cmd.Context())
		},
	}

	for _, cmd := range []*cobra.Command{perfCmd, perfAllCmd} {
		cmd.Flags().IntVarP(&optimize, "optimize", "O", 3, "Optimization level (0-3)")
		cmd.Flags().IntVarP(&duration, "duration", "d", 10, "Duration in seconds for perf tests")
		cmd.Flags().IntVarP(&runs, "runs", "r", 1, "Number of times to run perf tests")
		cmd.Flags().BoolVar(&syscalls, "syscalls", false, "Count system calls instead of performance counters (requires root)")
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a suite configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				return fmt.Errorf("a configuration file is required (use --config)")
			}
			if _, _, err := config.LoadConfig(configFile); err != nil {
				logger.WithField("config_file", configFile).WithError(err).Error("Configuration validation failed")
				return err
			}
			logger.WithField("config_file", configFile).Info("Configuration is valid")
			return nil
		},
	}

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(codeCmd)
	rootCmd.AddCommand(perfCmd)
	rootCmd.AddCommand(perfAllCmd)
	rootCmd.AddCommand(validateCmd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Received interrupt signal, shutting down")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.WithError(err).Fatal("Command execution failed")
	}
}

func showCode(configFile, name string, addMain bool) error {
	cfg, _, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	v, err := variant.Lookup(cfg.Suite.VariantsDir, name)
	if err != nil {
		return err
	}

	source, err := v.Source()
	if err != nil {
		return err
	}
	fmt.Print(source)

	if addMain {
		driver, err := os.ReadFile(cfg.Suite.DriverFile)
		if err != nil {
			return fmt.Errorf("failed to read driver source: %w", err)
		}
		fmt.Println()
		fmt.Print(string(driver))
	}

	return nil
}
