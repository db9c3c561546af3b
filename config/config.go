// Package config loads glproxy.toml settings and turns them into context
// options, an executor connector and a logger.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/glproxy/dispatch"
	"github.com/wippyai/glproxy/errors"
	"github.com/wippyai/glproxy/host"
	"github.com/wippyai/glproxy/webgl"
)

// FileName is the conventional configuration file name.
const FileName = "glproxy.toml"

// Executor modes.
const (
	ModeLocal  = "local"  // in-process executor
	ModePipe   = "pipe"   // in-process server behind the wire codec
	ModeRemote = "remote" // executor subprocess over stdio
)

// Config is the parsed configuration file.
type Config struct {
	Context  dispatch.Attributes `toml:"context"`
	Flush    Flush               `toml:"flush"`
	Warnings Warnings            `toml:"warnings"`
	Executor Executor            `toml:"executor"`
	Log      Log                 `toml:"log"`

	// Path is the file the config was loaded from, if any.
	Path string `toml:"-"`
}

// Flush configures automatic and explicit flushing.
type Flush struct {
	Auto bool `toml:"auto"`
	GL   bool `toml:"gl"`
}

// Warnings configures script-facing warning reporting.
type Warnings struct {
	// Max caps reported warnings per context; negative is unlimited.
	Max int `toml:"max"`
}

// Executor selects where GL commands run.
type Executor struct {
	Mode    string   `toml:"mode"`
	Command []string `toml:"command"`
	Env     []string `toml:"env"`
	// QueryTimeout bounds synchronous remote calls, e.g. "5s". Empty
	// means no limit.
	QueryTimeout string `toml:"query_timeout"`
	// ConnectTimeout bounds executor creation and restore attempts.
	ConnectTimeout string `toml:"connect_timeout"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	opts := webgl.DefaultOptions()
	return &Config{
		Context:  opts.Attributes,
		Flush:    Flush{Auto: opts.AutoFlush, GL: opts.ForwardFlush},
		Warnings: Warnings{Max: opts.MaxWarnings},
		Executor: Executor{Mode: ModeLocal},
		Log:      Log{Level: "info"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigLoad(path, err)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, errors.ConfigLoad(path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes TOML text over the defaults and validates the result.
func Parse(text string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown key %q", undecoded[0].String()))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the decoder cannot.
func (c *Config) Validate() error {
	if c.Context.Width < 0 || c.Context.Height < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "context width and height must be non-negative")
	}
	switch c.Context.ColorSpace {
	case "srgb", "display-p3":
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unsupported color_space %q", c.Context.ColorSpace))
	}
	switch c.Executor.Mode {
	case ModeLocal, ModePipe:
	case ModeRemote:
		if len(c.Executor.Command) == 0 {
			return errors.InvalidInput(errors.PhaseConfig, "executor.command is required in remote mode")
		}
	default:
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown executor mode %q", c.Executor.Mode))
	}
	if _, err := duration(c.Executor.QueryTimeout); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "executor.query_timeout")
	}
	if _, err := duration(c.Executor.ConnectTimeout); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "executor.connect_timeout")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log.level")
	}
	return nil
}

func duration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

// Connector builds the executor connector the config selects.
func (c *Config) Connector() dispatch.Connector {
	timeout, _ := duration(c.Executor.QueryTimeout)
	switch c.Executor.Mode {
	case ModePipe:
		return &host.Pipe{QueryTimeout: timeout}
	case ModeRemote:
		return &host.Spawn{
			Command:      append([]string(nil), c.Executor.Command...),
			Env:          append([]string(nil), c.Executor.Env...),
			QueryTimeout: timeout,
		}
	}
	return &host.InProcess{}
}

// ContextOptions returns context options carrying the configured
// attributes, flushing and warning policy, and connector.
func (c *Config) ContextOptions() webgl.Options {
	opts := webgl.DefaultOptions()
	opts.Attributes = c.Context
	opts.AutoFlush = c.Flush.Auto
	opts.ForwardFlush = c.Flush.GL
	opts.MaxWarnings = c.Warnings.Max
	if d, _ := duration(c.Executor.ConnectTimeout); d > 0 {
		opts.ConnectTimeout = d
	}
	opts.Connector = c.Connector()
	return opts
}

// NewLogger builds a zap logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log.level")
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	// Stdout carries the executor protocol in serve mode.
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// InstallLogger sets the package loggers of dispatch, host and webgl.
func InstallLogger(l *zap.Logger) {
	dispatch.SetLogger(l.Named("dispatch"))
	host.SetLogger(l.Named("host"))
	webgl.SetLogger(l.Named("webgl"))
}
