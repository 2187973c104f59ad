package config

// SuiteConfig is the optional YAML configuration for a benchmark session.
// Every field has a working default; the CLI runs without a file.
type SuiteConfig struct {
	Suite SuiteInfo `yaml:"suite"`
}

type SuiteInfo struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	LogLevel    string         `yaml:"log_level"`
	VariantsDir string         `yaml:"variants_dir"`
	BinDir      string         `yaml:"bin_dir"`
	DriverFile  string         `yaml:"driver_file"`
	Compiler    CompilerConfig `yaml:"compiler"`
	Perf        PerfConfig     `yaml:"perf"`
	Data        DataConfig     `yaml:"data"`
}

type CompilerConfig struct {
	Binary     string   `yaml:"binary"`
	BuildFlags []string `yaml:"build_flags,omitempty"`
	OptLevel   int      `yaml:"opt_level"`
}

type PerfConfig struct {
	Tool     string `yaml:"tool"`
	Duration int    `yaml:"duration"`
	Runs     int    `yaml:"runs"`
}

type DataConfig struct {
	DB    *DatabaseConfig `yaml:"db,omitempty"`
	Spool *SpoolConfig    `yaml:"spool,omitempty"`
}

type DatabaseConfig struct {
	Host   string `yaml:"host"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

type SpoolConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir,omitempty"`
}
