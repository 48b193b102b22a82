package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cache-lab/cachesweep/sweep"
)

// IntList accepts either a scalar or a list in config files, so
// `"i_cache_num_sets": 64` and `"i_cache_num_sets": [64]` both parse.
type IntList []int

func (l *IntList) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		*l = IntList{single}
		return nil
	}
	var many []int
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

func (l *IntList) UnmarshalYAML(value *yaml.Node) error {
	var single int
	if err := value.Decode(&single); err == nil {
		*l = IntList{single}
		return nil
	}
	var many []int
	if err := value.Decode(&many); err != nil {
		return err
	}
	*l = many
	return nil
}

// CacheConfigs declares the swept parameter ranges.
type CacheConfigs struct {
	DCacheNumSets   []int   `json:"d_cache_num_sets" yaml:"d_cache_num_sets"`
	LineSizesBytes  []int   `json:"line_sizes_bytes" yaml:"line_sizes_bytes"`
	Associativities []int   `json:"associativities" yaml:"associativities"`
	ICacheNumSets   IntList `json:"i_cache_num_sets" yaml:"i_cache_num_sets"`
	ICacheAssoc     IntList `json:"i_cache_assoc" yaml:"i_cache_assoc"`
}

// OutputConfig controls where results land.
type OutputConfig struct {
	ResultsDir string `json:"results_dir" yaml:"results_dir"`
	Filename   string `json:"filename" yaml:"filename"`
}

// BuildConfig locates the simulator's source tree and build system.
type BuildConfig struct {
	SourceDir       string   `json:"source_dir" yaml:"source_dir"`
	WorkDir         string   `json:"work_dir" yaml:"work_dir"`
	InputDir        string   `json:"input_dir" yaml:"input_dir"`
	Executable      string   `json:"executable" yaml:"executable"`
	CleanCmd        []string `json:"clean_cmd" yaml:"clean_cmd"`
	BuildCmd        []string `json:"build_cmd" yaml:"build_cmd"`
	CleanTimeoutSec int      `json:"clean_timeout_sec" yaml:"clean_timeout_sec"`
	BuildTimeoutSec int      `json:"build_timeout_sec" yaml:"build_timeout_sec"`
	RunTimeoutSec   int      `json:"run_timeout_sec" yaml:"run_timeout_sec"`
}

// Options carries miscellaneous sweep toggles. Verbose is a pointer so
// an omitted field can default to true while an explicit false is
// honored.
type Options struct {
	Verbose *bool `json:"verbose" yaml:"verbose"`
}

// SweepConfig is the top-level sweep configuration file.
type SweepConfig struct {
	CacheConfigs CacheConfigs `json:"cache_configs" yaml:"cache_configs"`
	Benchmarks   []string     `json:"benchmarks" yaml:"benchmarks"`
	Output       OutputConfig `json:"output" yaml:"output"`
	Options      Options      `json:"options" yaml:"options"`
	Build        BuildConfig  `json:"build" yaml:"build"`
}

// LoadSweepConfig reads a sweep configuration, JSON by default and
// YAML for .yaml/.yml files. Unknown fields are rejected in both
// formats so a typo fails instead of silently sweeping the wrong
// space.
func LoadSweepConfig(path string) (*SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg SweepConfig
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config %s: %w", path, err)
		}
	default:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *SweepConfig) applyDefaults() {
	if c.Output.ResultsDir == "" {
		c.Output.ResultsDir = "results"
	}
	if c.Output.Filename == "" {
		c.Output.Filename = "cache_sweep_results.csv"
	}
	if c.Build.SourceDir == "" {
		c.Build.SourceDir = "src"
	}
	if c.Build.WorkDir == "" {
		c.Build.WorkDir = "."
	}
	if c.Build.InputDir == "" {
		c.Build.InputDir = filepath.Join("inputs", "cache")
	}
	if c.Build.Executable == "" {
		c.Build.Executable = "./sim"
	}
	if len(c.Build.CleanCmd) == 0 {
		c.Build.CleanCmd = []string{"make", "clean"}
	}
	if len(c.Build.BuildCmd) == 0 {
		c.Build.BuildCmd = []string{"make"}
	}
	if c.Options.Verbose == nil {
		verbose := true
		c.Options.Verbose = &verbose
	}
}

// SweepOptions lowers the file configuration into the sweep package's
// option struct.
func (c *SweepConfig) SweepOptions() sweep.Options {
	builder := &sweep.Builder{
		SourceDir:    c.Build.SourceDir,
		WorkDir:      c.Build.WorkDir,
		CleanCmd:     c.Build.CleanCmd,
		BuildCmd:     c.Build.BuildCmd,
		Executable:   c.Build.Executable,
		CleanTimeout: time.Duration(c.Build.CleanTimeoutSec) * time.Second,
		BuildTimeout: time.Duration(c.Build.BuildTimeoutSec) * time.Second,
	}
	runner := &sweep.Runner{
		Executable: c.Build.Executable,
		WorkDir:    c.Build.WorkDir,
		Timeout:    time.Duration(c.Build.RunTimeoutSec) * time.Second,
	}
	return sweep.Options{
		Space: sweep.Space{
			DCacheNumSets:   c.CacheConfigs.DCacheNumSets,
			LineSizesBytes:  c.CacheConfigs.LineSizesBytes,
			Associativities: c.CacheConfigs.Associativities,
			ICacheNumSets:   c.CacheConfigs.ICacheNumSets,
			ICacheAssoc:     c.CacheConfigs.ICacheAssoc,
		},
		Benchmarks: c.Benchmarks,
		InputDir:   c.Build.InputDir,
		ResultsDir: c.Output.ResultsDir,
		BaseName:   c.Output.Filename,
		Builder:    builder,
		Runner:     runner,
		Verbose:    c.Options.Verbose != nil && *c.Options.Verbose,
	}
}
