// Package config loads game settings from PARKKEEPER_* environment
// variables. Command-line flags bound with BindFlags take precedence.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/milk9111/parkkeeper/keeper"
)

const envPrefix = "PARKKEEPER_"

type Config struct {
	DetectRangeSq float64 `env:"DETECT_RANGE_SQ" envDefault:"1000"`
	LoseRangeSq   float64 `env:"LOSE_RANGE_SQ"   envDefault:"40000"`
	Steering      float64 `env:"STEERING"        envDefault:"0.5"`
	RequireSight  bool    `env:"REQUIRE_SIGHT"   envDefault:"false"`
	RoundSeconds  float64 `env:"ROUND_SECONDS"   envDefault:"180"`
	PrefabDir     string  `env:"PREFAB_DIR"      envDefault:"prefabs"`
	Watch         bool    `env:"WATCH"           envDefault:"false"`
	MetricsAddr   string  `env:"METRICS_ADDR"`
	Debug         bool    `env:"DEBUG"           envDefault:"false"`
}

// Load reads the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: envPrefix})
}

// LoadFrom reads vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: envPrefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DetectRangeSq <= 0 {
		return fmt.Errorf("config: detect range must be positive, got %v", c.DetectRangeSq)
	}
	if c.LoseRangeSq < c.DetectRangeSq {
		return fmt.Errorf("config: lose range %v is inside detect range %v", c.LoseRangeSq, c.DetectRangeSq)
	}
	if c.RoundSeconds <= 0 {
		return fmt.Errorf("config: round length must be positive, got %v", c.RoundSeconds)
	}
	return nil
}

// BindFlags registers a flag for every setting, defaulting to the values
// already in c, so flags parsed afterwards override the environment.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.Float64Var(&c.DetectRangeSq, "detect-range-sq", c.DetectRangeSq, "squared distance at which the keeper notices the goose")
	fs.Float64Var(&c.LoseRangeSq, "lose-range-sq", c.LoseRangeSq, "squared distance at which the keeper gives up the chase")
	fs.Float64Var(&c.Steering, "steering", c.Steering, "keeper steering force per unit of waypoint offset")
	fs.BoolVar(&c.RequireSight, "require-sight", c.RequireSight, "keeper needs line of sight to detect the goose")
	fs.Float64Var(&c.RoundSeconds, "round-seconds", c.RoundSeconds, "length of a single-player round")
	fs.StringVar(&c.PrefabDir, "prefabs", c.PrefabDir, "directory checked for machine definitions before the embedded copies")
	fs.BoolVar(&c.Watch, "watch", c.Watch, "hot reload machine definitions and scripts from the prefab directory")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "address to serve prometheus metrics on (empty disables)")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging")
}

func (c Config) KeeperTuning() keeper.Tuning {
	t := keeper.DefaultTuning()
	t.DetectRangeSq = c.DetectRangeSq
	t.LoseRangeSq = c.LoseRangeSq
	t.Steering = c.Steering
	t.RequireSight = c.RequireSight
	return t
}
