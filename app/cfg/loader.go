package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./topicscout.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port               string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey       string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	CostTablePath      string `long:"cost-table" env:"COST_TABLE" description:"Optional YAML file with model cost overrides"`
	MonitorInterval    int    `long:"monitor-interval" env:"MONITOR_INTERVAL" default:"300" description:"Default workspace monitoring interval in seconds"`
	RelevanceThreshold int    `long:"relevance-threshold" env:"RELEVANCE_THRESHOLD" default:"30" description:"Minimum relevance score for monitored content to be stored"`
	HTTPTimeout        int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30" description:"Timeout in seconds for outbound HTTP requests"`
	AIMaxTokens        int    `long:"ai-max-tokens" env:"AI_MAX_TOKENS" default:"1024" description:"Maximum output tokens per AI call"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"TopicScout/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		Port:               raw.Port,
		APIAccessKey:       raw.APIAccessKey,
		CostTablePath:      raw.CostTablePath,
		MonitorInterval:    raw.MonitorInterval,
		RelevanceThreshold: raw.RelevanceThreshold,
		HTTPTimeout:        raw.HTTPTimeout,
		AIMaxTokens:        raw.AIMaxTokens,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(cfg *Cfg) {
	globalCfg = cfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
