package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/jacoelho/getsidinfo/internal/exit"
	"github.com/spf13/afero"
)

var (
	ErrNoArguments   = errors.New("no arguments provided")
	ErrInvalidRate   = errors.New("rate must be a number of lookups per second")
	ErrRateNotFinite = errors.New("rate must be finite")
	ErrEmptyValue    = errors.New("option requires a value")
	ErrEmptySIDItem  = errors.New("config file lists an empty SID")
)

// Config represents the complete configuration for the getsidinfo tool.
type Config struct {
	// Args is the full command line, echoed in verbose mode.
	Args []string

	SIDs    []string
	Verbose bool
	Attach  bool

	// System is the machine to resolve SIDs on; empty means local.
	System     string
	OutputFile string
	RateLimit  float64 // Lookups per second (0 = unlimited)
	ConfigFile string
}

// fileConfig is the layout of the /config= YAML file.
type fileConfig struct {
	System  string   `yaml:"system"`
	File    string   `yaml:"file"`
	Verbose bool     `yaml:"verbose"`
	Rate    float64  `yaml:"rate"`
	SIDs    []string `yaml:"sids"`
}

type option struct {
	name     string
	hasValue bool
}

var (
	optVerbose = option{name: "/v"}
	optHelp    = option{name: "/?"}
	optHelpH   = option{name: "/h"}
	optAttach  = option{name: "/attach"}
	optSystem  = option{name: "/system=", hasValue: true}
	optFile    = option{name: "/file=", hasValue: true}
	optRate    = option{name: "/rate=", hasValue: true}
	optConfig  = option{name: "/config=", hasValue: true}

	options = []option{optVerbose, optHelp, optHelpH, optAttach, optSystem, optFile, optRate, optConfig}
)

// match reports whether arg is o, ignoring case, and returns its value.
func (o option) match(arg string) (string, bool) {
	if !o.hasValue {
		return "", strings.EqualFold(arg, o.name)
	}
	if len(arg) < len(o.name) || !strings.EqualFold(arg[:len(o.name)], o.name) {
		return "", false
	}
	return arg[len(o.name):], true
}

type parsedOption struct {
	option option
	value  string
}

// scan splits args (without the program name) into leading options and
// the remaining SIDs. Option processing stops at the first argument that
// is not a known option.
func scan(args []string) ([]parsedOption, []string) {
	var parsed []parsedOption

	for i, arg := range args {
		known := false
		for _, opt := range options {
			if value, ok := opt.match(arg); ok {
				parsed = append(parsed, parsedOption{option: opt, value: value})
				known = true
				break
			}
		}
		if !known {
			return parsed, args[i:]
		}
	}

	return parsed, nil
}

// RequestsAttach reports whether the command line asks to attach to the
// parent console. It is checked before Parse so that help text reaches
// the console too.
func RequestsAttach(args []string) bool {
	if len(args) == 0 {
		return false
	}

	parsed, _ := scan(args[1:])
	for _, p := range parsed {
		if p.option == optAttach {
			return true
		}
	}
	return false
}

// Parse parses command-line arguments from the OS filesystem.
func Parse(args []string) (*Config, *exit.Result) {
	return ParseFS(afero.NewOsFs(), args)
}

// ParseFS parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func ParseFS(fsys afero.Fs, args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage("getsidinfo"))
	}

	program := args[0]
	parsed, sids := scan(args[1:])

	cfg := &Config{Args: args}
	var (
		systemSet bool
		fileSet   bool
		rateSet   bool
	)

	for _, p := range parsed {
		switch p.option {
		case optHelp, optHelpH:
			return nil, exit.Success(Usage(program))
		case optVerbose:
			cfg.Verbose = true
		case optAttach:
			cfg.Attach = true
		case optSystem:
			cfg.System = p.value
			systemSet = true
		case optFile:
			cfg.OutputFile = p.value
			fileSet = true
		case optRate:
			rate, err := parseRate(p.value)
			if err != nil {
				return nil, exit.Errorf("Error: %v\n\n%s", err, Usage(program))
			}
			cfg.RateLimit = rate
			rateSet = true
		case optConfig:
			if p.value == "" {
				return nil, exit.Errorf("Error: /config=: %v\n\n%s", ErrEmptyValue, Usage(program))
			}
			cfg.ConfigFile = p.value
		}
	}

	if cfg.ConfigFile != "" {
		fc, err := loadConfigFile(fsys, cfg.ConfigFile)
		if err != nil {
			return nil, exit.Errorf("Error: failed to load config file: %v\n\n%s", err, Usage(program))
		}

		// Command-line values take precedence over file values
		if !systemSet {
			cfg.System = fc.System
		}
		if !fileSet {
			cfg.OutputFile = fc.File
		}
		if !rateSet {
			cfg.RateLimit = fc.Rate
		}
		cfg.Verbose = cfg.Verbose || fc.Verbose
		cfg.SIDs = append(cfg.SIDs, fc.SIDs...)
	}

	cfg.SIDs = append(cfg.SIDs, sids...)

	if len(cfg.SIDs) == 0 {
		return nil, exit.Success(Usage(program))
	}

	if err := cfg.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage(program))
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid.
// SIDs are not checked here: a malformed SID is reported inside the
// document like any other lookup failure.
func (c *Config) Validate() error {
	if math.IsNaN(c.RateLimit) || math.IsInf(c.RateLimit, 0) {
		return fmt.Errorf("%w, got: %v", ErrRateNotFinite, c.RateLimit)
	}

	return nil
}

func parseRate(value string) (float64, error) {
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w, got: %q", ErrInvalidRate, value)
	}
	return rate, nil
}

// loadConfigFile reads the YAML defaults file. Unknown keys are rejected
// so that typos do not silently fall back to defaults.
func loadConfigFile(fsys afero.Fs, filename string) (*fileConfig, error) {
	data, err := afero.ReadFile(fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var fc fileConfig
	if err := yaml.UnmarshalWithOptions(data, &fc, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	for i, sid := range fc.SIDs {
		if strings.TrimSpace(sid) == "" {
			return nil, fmt.Errorf("%s: %w (entry %d)", filename, ErrEmptySIDItem, i+1)
		}
	}

	return &fc, nil
}

// Usage returns a usage string for the CLI tool.
func Usage(program string) string {
	return fmt.Sprintf(`getsidinfo - dump information about SIDs as JSON

Syntax:  %s [options] SID [SID2] [SID3] ...

Options:
	/v
	Verbose mode.

	/system=SystemName
	Retrieve information from the specified system.

	/file=OutputFile
	File to write the JSON output to instead of stdout.

	/rate=LookupsPerSecond
	Limit SID lookups per second (0 for unlimited).

	/config=ConfigFile
	YAML file with defaults for system, file, verbose, rate and sids.

	/attach
	Attempt to attach to a parent console if it exists.

Examples:
	%[1]s S-1-5-32-544
	%[1]s /system=DC01 /file=sids.json S-1-5-18 S-1-5-21-1004336348-1177238915-682003330-512
`, program)
}
