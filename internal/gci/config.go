package gci

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full configuration of the gmwdg command.
// Each field is settable from a config file, a GMWDG_ environment variable,
// or a command line flag, in increasing order of precedence.
type Config struct {
	Log        LogConfig        `mapstructure:"log" json:"log"`
	Registry   RegistryConfig   `mapstructure:"registry" json:"registry"`
	Supervisor SupervisorConfig `mapstructure:"supervisor" json:"supervisor"`
	HTTP       HTTPConfig       `mapstructure:"http" json:"http"`
	GRPC       GRPCConfig       `mapstructure:"grpc" json:"grpc"`
	Demo       DemoConfig       `mapstructure:"demo" json:"demo"`
}

type LogConfig struct {
	// One of debug, info, warn, error.
	Level string `mapstructure:"level" json:"level"`

	// text or json.
	Format string `mapstructure:"format" json:"format"`
}

type RegistryConfig struct {
	SerializeFeed bool `mapstructure:"serialize_feed" json:"serialize_feed"`
}

type SupervisorConfig struct {
	Interval          time.Duration `mapstructure:"interval" json:"interval"`
	Jitter            time.Duration `mapstructure:"jitter" json:"jitter"`
	TerminateOnExpiry bool          `mapstructure:"terminate_on_expiry" json:"terminate_on_expiry"`
}

type HTTPConfig struct {
	// Empty disables the HTTP server.
	Addr string `mapstructure:"addr" json:"addr"`
}

type GRPCConfig struct {
	// Empty disables the gRPC server.
	Addr string `mapstructure:"addr" json:"addr"`

	Service string `mapstructure:"service" json:"service"`
}

type DemoConfig struct {
	Tasks int `mapstructure:"tasks" json:"tasks"`

	// Per-task watchdog timeout; truncated to milliseconds.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`

	FeedInterval time.Duration `mapstructure:"feed_interval" json:"feed_interval"`

	// ID of the task that stops feeding after StallAfter; 0 for none.
	StallTask  int           `mapstructure:"stall_task" json:"stall_task"`
	StallAfter time.Duration `mapstructure:"stall_after" json:"stall_after"`

	// Zero runs until interrupted.
	Duration time.Duration `mapstructure:"duration" json:"duration"`
}

// setting is one configuration key with its flag and default.
type setting struct {
	Key   string
	Def   any
	Usage string
}

var settings = []setting{
	{Key: "log.level", Def: "info", Usage: "log level (debug|info|warn|error)"},
	{Key: "log.format", Def: "text", Usage: "log format (text|json)"},

	{Key: "registry.serialize_feed", Def: false, Usage: "enter the critical section on every feed"},

	{Key: "supervisor.interval", Def: 100 * time.Millisecond, Usage: "time between watchdog checks"},
	{Key: "supervisor.jitter", Def: 10 * time.Millisecond, Usage: "uniform jitter applied to the check interval"},
	{Key: "supervisor.terminate_on_expiry", Def: true, Usage: "stop when any node expires"},

	{Key: "http.addr", Def: "", Usage: "HTTP status listen address; empty to disable"},

	{Key: "grpc.addr", Def: "", Usage: "gRPC health listen address; empty to disable"},
	{Key: "grpc.service", Def: "gmwdg", Usage: "service name reported by the gRPC health server"},

	{Key: "demo.tasks", Def: 4, Usage: "number of demo tasks"},
	{Key: "demo.timeout", Def: 500 * time.Millisecond, Usage: "watchdog timeout of each demo task"},
	{Key: "demo.feed_interval", Def: 100 * time.Millisecond, Usage: "how often healthy demo tasks feed"},
	{Key: "demo.stall_task", Def: 0, Usage: "ID of a demo task that stops feeding; 0 for none"},
	{Key: "demo.stall_after", Def: time.Second, Usage: "when the stalling task stops feeding"},
	{Key: "demo.duration", Def: time.Duration(0), Usage: "how long to run the demo; 0 until interrupted"},
}

// flagName maps "supervisor.terminate_on_expiry" to "supervisor-terminate-on-expiry".
func flagName(key string) string {
	return strings.NewReplacer(".", "-", "_", "-").Replace(key)
}

// addConfigFlags declares one flag per setting on fs.
func addConfigFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML, TOML, or JSON config file")

	for _, s := range settings {
		name := flagName(s.Key)
		switch d := s.Def.(type) {
		case string:
			fs.String(name, d, s.Usage)
		case bool:
			fs.Bool(name, d, s.Usage)
		case int:
			fs.Int(name, d, s.Usage)
		case time.Duration:
			fs.Duration(name, d, s.Usage)
		default:
			panic(fmt.Errorf("BUG: unhandled default type %T for %s", d, s.Key))
		}
	}

	addAssertRuleFlag(fs)
}

// newViper returns a viper instance bound to fs and the environment,
// with the config file named by --config already read.
func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix("GMWDG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, s := range settings {
		v.SetDefault(s.Key, s.Def)
		if f := fs.Lookup(flagName(s.Key)); f != nil {
			if err := v.BindPFlag(s.Key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag for %s: %w", s.Key, err)
			}
		}
	}

	if f := fs.Lookup(assertRuleFlag); f != nil {
		if err := v.BindPFlag(assertRuleFlag, f); err != nil {
			return nil, fmt.Errorf("failed to bind assertion rule flag: %w", err)
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	return v, nil
}

// LoadConfig decodes and validates the configuration held by v.
func LoadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Node timeouts are milliseconds on a 32-bit wrapping clock;
// elapsed times are only ordered below half the clock's range.
const maxDemoTimeout = time.Duration(math.MaxInt32) * time.Millisecond

func (c Config) validate() error {
	var err error

	if _, e := parseLevel(c.Log.Level); e != nil {
		err = errors.Join(err, e)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		err = errors.Join(err, fmt.Errorf("log.format must be text or json; got %q", c.Log.Format))
	}

	if c.Supervisor.Interval <= 0 {
		err = errors.Join(err, errors.New("supervisor.interval must be positive"))
	}
	if c.Supervisor.Jitter < 0 || c.Supervisor.Jitter >= c.Supervisor.Interval {
		err = errors.Join(err, errors.New("supervisor.jitter must be in [0, supervisor.interval)"))
	}

	if c.Demo.Tasks < 0 {
		err = errors.Join(err, errors.New("demo.tasks must not be negative"))
	}
	if c.Demo.Timeout < time.Millisecond || c.Demo.Timeout > maxDemoTimeout {
		err = errors.Join(err, fmt.Errorf("demo.timeout must be in [1ms, %s]", maxDemoTimeout))
	}
	if c.Demo.FeedInterval <= 0 {
		err = errors.Join(err, errors.New("demo.feed_interval must be positive"))
	}
	if c.Demo.StallTask < 0 || c.Demo.StallTask > c.Demo.Tasks {
		err = errors.Join(err, fmt.Errorf("demo.stall_task must be in [0, %d]", c.Demo.Tasks))
	}
	if c.Demo.Duration < 0 {
		err = errors.Join(err, errors.New("demo.duration must not be negative"))
	}

	return err
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}
