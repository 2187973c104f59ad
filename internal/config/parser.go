package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"waste-bench/internal/logging"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the configuration used when no suite file is given.
func DefaultConfig() *SuiteConfig {
	return &SuiteConfig{
		Suite: SuiteInfo{
			Name:        "waste-cpu",
			LogLevel:    "info",
			VariantsDir: "variants",
			BinDir:      "bin",
			DriverFile:  filepath.Join("internal", "spin", "spin.go"),
			Compiler: CompilerConfig{
				Binary:   "go",
				OptLevel: 3,
			},
			Perf: PerfConfig{
				Tool:     "perf",
				Duration: 10,
				Runs:     1,
			},
		},
	}
}

// LoadConfig reads a suite configuration file over the defaults. Returns
// the defaults when path is empty.
func LoadConfig(path string) (*SuiteConfig, string, error) {
	logger := logging.GetLogger()

	config := DefaultConfig()
	applyEnvDatabase(config)

	if path == "" {
		return config, "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.WithField("config_file", path).WithError(err).Error("Failed to read config file")
		return nil, "", err
	}

	originalContent := string(data)
	expanded := expandEnvVars(originalContent)

	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		logger.WithField("config_file", path).WithError(err).Error("Failed to parse config file")
		return nil, "", err
	}

	applyEnvDatabase(config)

	if err := validateConfig(config); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}

	return config, originalContent, nil
}

// expandEnvVars substitutes ${VAR} references with environment values,
// leaving unknown references intact.
func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

// applyEnvDatabase fills database settings from INFLUXDB_* environment
// variables, creating the section when the host is set and the file did
// not configure one.
func applyEnvDatabase(config *SuiteConfig) {
	db := config.Suite.Data.DB
	if db == nil {
		if os.Getenv("INFLUXDB_HOST") == "" {
			return
		}
		db = &DatabaseConfig{}
		config.Suite.Data.DB = db
	}

	if db.Host == "" {
		db.Host = os.Getenv("INFLUXDB_HOST")
	}
	if db.Token == "" {
		db.Token = os.Getenv("INFLUXDB_TOKEN")
	}
	if db.Org == "" {
		db.Org = os.Getenv("INFLUXDB_ORG")
	}
	if db.Bucket == "" {
		db.Bucket = os.Getenv("INFLUXDB_BUCKET")
	}
}

func validateConfig(config *SuiteConfig) error {
	suite := &config.Suite

	if suite.Name == "" {
		return fmt.Errorf("suite name is required")
	}
	if suite.VariantsDir == "" {
		return fmt.Errorf("variants_dir is required")
	}
	if suite.Compiler.Binary == "" {
		return fmt.Errorf("compiler binary is required")
	}
	if suite.Compiler.OptLevel < 0 || suite.Compiler.OptLevel > 3 {
		return fmt.Errorf("compiler opt_level must be between 0 and 3")
	}
	if suite.Perf.Duration <= 0 {
		return fmt.Errorf("perf duration must be greater than 0")
	}
	if suite.Perf.Runs <= 0 {
		return fmt.Errorf("perf runs must be greater than 0")
	}

	if db := suite.Data.DB; db != nil {
		if db.Host == "" || db.Token == "" || db.Org == "" || db.Bucket == "" {
			return fmt.Errorf("incomplete database configuration (host, token, org, and bucket are required)")
		}
	}

	return nil
}
