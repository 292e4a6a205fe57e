package flags

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Aljumaily/hlcd-search/field"
	"github.com/Aljumaily/hlcd-search/hlcd"
)

// EnvPrefix prefixes environment overrides, HLCD_MAX_COMBINATIONS sets --max-combinations
const EnvPrefix = "HLCD"

var ErrNoCode = errors.New("no code given: set --n and --k or list codes in the config file")

// CodeArguments is one code to search for, from the command line or an
// entry of the codes list in the config file
type CodeArguments struct {
	N    int `mapstructure:"n"`
	K    int `mapstructure:"k"`
	D    int `mapstructure:"d"`
	Base int `mapstructure:"base"`
	// nil keeps the parameter default
	HLCD           *bool `mapstructure:"hlcd"`
	AppendIdentity *bool `mapstructure:"identity"`
	Restricted     *bool `mapstructure:"restricted"`
	Multithreaded  bool  `mapstructure:"multithreaded"`
}

func (c CodeArguments) Params() (hlcd.CodeParameters, error) {
	base := c.Base
	if base == 0 {
		base = field.Quaternary
	}
	var opts []hlcd.ParameterOption
	if c.HLCD != nil {
		opts = append(opts, hlcd.WithHLCD(*c.HLCD))
	}
	if c.AppendIdentity != nil {
		opts = append(opts, hlcd.WithAppendIdentity(*c.AppendIdentity))
	}
	if c.Restricted != nil {
		opts = append(opts, hlcd.WithRestrictedGeneration(*c.Restricted))
	}
	if c.Multithreaded {
		opts = append(opts, hlcd.WithMultithreading(true))
	}
	return hlcd.NewCodeParameters(c.N, c.K, c.D, base, opts...)
}

type ApplicationArguments struct {
	Codes []CodeArguments

	LogLevel  string
	LogFormat string

	Timeout                 time.Duration
	MaxCombinations         uint64
	ExperimentalConcurrency bool
	CachePath               string
	NoCache                 bool
	ReportPath              string
	MetricsAddress          string

	AmountBenchmarkingSamples int
	BenchmarkDirectory        string
}

func AddGlobalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "YAML file with defaults and a codes list")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("log-format", "console", "console or json")
}

func AddCodeFlags(fs *pflag.FlagSet) {
	fs.Int("n", 0, "Code length")
	fs.Int("k", 0, "Code dimension")
	fs.Int("d", 3, "Minimum distance")
	fs.Int("base", field.Quaternary, "Field size, 2 or 4")
	fs.Bool("hlcd", true, "Require G·Ḡᵗ to be invertible (defaults to true for base 4 only)")
	fs.Bool("identity", true, "Search systematic matrices [I | A]")
	fs.Bool("restricted", true, "Fix the first row and skip candidates leading with ω or ω̄")
	fs.Bool("multithreaded", false, "Check candidates concurrently (needs --experimental-concurrency)")
}

func AddSearchFlags(fs *pflag.FlagSet) {
	fs.Duration("timeout", 0, "Abort a search after this long, 0 waits forever")
	fs.Uint64("max-combinations", hlcd.DefaultCombinationCeiling, "Largest base^k the combination store may hold, 0 for no limit")
	fs.Bool("experimental-concurrency", false, "Allow the unverified concurrent orthogonality check")
	AddCacheFlags(fs)
	fs.String("report", "", "Write an HTML weight distribution chart to this file")
	fs.String("metrics-address", "", "Serve prometheus metrics on this address while running")
}

func AddCacheFlags(fs *pflag.FlagSet) {
	fs.String("cache", ".hlcd-cache", "Directory of the result cache")
	fs.Bool("no-cache", false, "Neither read nor write the result cache")
}

func AddBenchmarkFlags(fs *pflag.FlagSet) {
	fs.IntP("samples", "b", 5, "Amount of timed searches per code")
	fs.String("directory", "benchmark/results", "Directory the JSON results are written to")
}

// GetApplicationArguments resolves every flag in fs against the environment
// and the config file. Flags set on the command line win, then environment
// variables, then the config file, then flag defaults.
func GetApplicationArguments(v *viper.Viper, fs *pflag.FlagSet) (ApplicationArguments, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return ApplicationArguments{}, errors.Wrap(err, "could not bind flags")
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return ApplicationArguments{}, errors.Wrapf(err, "could not read config file %s", path)
		}
	}

	arguments := ApplicationArguments{
		LogLevel:                  v.GetString("log-level"),
		LogFormat:                 v.GetString("log-format"),
		Timeout:                   v.GetDuration("timeout"),
		MaxCombinations:           v.GetUint64("max-combinations"),
		ExperimentalConcurrency:   v.GetBool("experimental-concurrency"),
		CachePath:                 v.GetString("cache"),
		NoCache:                   v.GetBool("no-cache"),
		ReportPath:                v.GetString("report"),
		MetricsAddress:            v.GetString("metrics-address"),
		AmountBenchmarkingSamples: v.GetInt("samples"),
		BenchmarkDirectory:        v.GetString("directory"),
	}

	if fs.Lookup("n") == nil {
		return arguments, nil
	}
	if v.GetInt("n") > 0 {
		arguments.Codes = []CodeArguments{codeFromFlags(v)}
		return arguments, nil
	}
	if err := v.UnmarshalKey("codes", &arguments.Codes); err != nil {
		return ApplicationArguments{}, errors.Wrap(err, "could not decode the codes list")
	}
	if len(arguments.Codes) == 0 {
		return ApplicationArguments{}, ErrNoCode
	}
	return arguments, nil
}

func codeFromFlags(v *viper.Viper) CodeArguments {
	code := CodeArguments{
		N:             v.GetInt("n"),
		K:             v.GetInt("k"),
		D:             v.GetInt("d"),
		Base:          v.GetInt("base"),
		Multithreaded: v.GetBool("multithreaded"),
	}
	optional := func(key string) *bool {
		if !v.IsSet(key) {
			return nil
		}
		value := v.GetBool(key)
		return &value
	}
	code.HLCD = optional("hlcd")
	code.AppendIdentity = optional("identity")
	code.Restricted = optional("restricted")
	return code
}
