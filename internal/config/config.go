package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"sensor-extremes/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Logging     logging.Config    `mapstructure:"logging"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Archive     ArchiveConfig     `mapstructure:"archive"`
	MQTT        MQTTConfig        `mapstructure:"mqtt"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Export      ExportConfig      `mapstructure:"export"`
	Sources     []SourceConfig    `mapstructure:"sources"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// PersistenceConfig governs the durable ledger snapshot.
type PersistenceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ArchiveConfig governs the optional local SQLite sample archive.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// MQTTConfig covers the inbound reading feed.
type MQTTConfig struct {
	BrokerURL      string        `mapstructure:"broker_url"`
	ClientID       string        `mapstructure:"client_id"`
	QoS            int           `mapstructure:"qos"`
	KeepAlive      int           `mapstructure:"keep_alive"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// SchedulerConfig holds cron specs for the clock-driven triggers.
type SchedulerConfig struct {
	RolloverCron string `mapstructure:"rollover_cron"`
	SaveCron     string `mapstructure:"save_cron"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// SourceConfig describes one tracked feed. DecimalPlaces is a pointer
// so an explicit 0 survives the default of 1.
type SourceConfig struct {
	ID                     string `mapstructure:"id"`
	Name                   string `mapstructure:"name"`
	Unit                   string `mapstructure:"unit"`
	Topic                  string `mapstructure:"topic"`
	AveragingWindowMinutes int    `mapstructure:"averaging_window_minutes"`
	DecimalPlaces          *int   `mapstructure:"decimal_places"`
}

// EffectiveDecimalPlaces resolves the per-source default.
func (s SourceConfig) EffectiveDecimalPlaces() int {
	if s.DecimalPlaces == nil {
		return 1
	}
	return *s.DecimalPlaces
}

// EffectiveTopic resolves the per-source default topic.
func (s SourceConfig) EffectiveTopic() string {
	if s.Topic != "" {
		return s.Topic
	}
	return "sensors/" + s.ID
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EXTREMES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applySourceDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sensor-extremes")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("persistence.enabled", true)
	v.SetDefault("persistence.path", "extremes_state.json")

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.path", "extremes_history.db")

	v.SetDefault("mqtt.client_id", "sensor-extremes")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.keep_alive", 30)
	v.SetDefault("mqtt.connect_timeout", "10s")

	v.SetDefault("scheduler.rollover_cron", "0 0 0 * * *")
	v.SetDefault("scheduler.save_cron", "0 0 * * * *")

	v.SetDefault("export.max_data_points", 100000)
}

func applySourceDefaults(cfg *Config) {
	for i := range cfg.Sources {
		if cfg.Sources[i].AveragingWindowMinutes == 0 {
			cfg.Sources[i].AveragingWindowMinutes = 5
		}
	}
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}

	seen := make(map[string]struct{}, len(c.Sources))
	for _, src := range c.Sources {
		if src.ID == "" {
			return fmt.Errorf("every source requires an id")
		}
		if _, dup := seen[src.ID]; dup {
			return fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = struct{}{}

		if src.AveragingWindowMinutes < 1 || src.AveragingWindowMinutes > 60 {
			return fmt.Errorf("source %q: averaging_window_minutes must be in [1,60]", src.ID)
		}
		if places := src.EffectiveDecimalPlaces(); places < 0 || places > 3 {
			return fmt.Errorf("source %q: decimal_places must be in [0,3]", src.ID)
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
