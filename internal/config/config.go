// Package config loads the enodebd daemon configuration.
//
// Configuration comes from a YAML file. Values missing from the file keep
// their defaults, and a few deployment-specific or secret values can be
// overridden by ENODEBD_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ranconf/enodebd-go/pkg/acs"
	"github.com/ranconf/enodebd-go/pkg/devices"
)

// Store drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config is the root configuration.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	ProtocolLog ProtocolLogConfig `yaml:"protocol_log"`
	Store       StoreConfig       `yaml:"store"`
	Policy      PolicyConfig      `yaml:"policy"`
	Sessions    SessionsConfig    `yaml:"sessions"`
	API         APIConfig         `yaml:"api"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	Discovery   DiscoveryConfig   `yaml:"discovery"`
	Devices     DevicesConfig     `yaml:"devices"`
}

// LoggingConfig configures the operational log.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ProtocolLogConfig configures the CBOR protocol capture. An empty path
// disables it.
type ProtocolLogConfig struct {
	Path     string `yaml:"path"`
	MaxBytes int64  `yaml:"max_bytes"`
}

// StoreConfig selects where desired and actual configurations live.
type StoreConfig struct {
	Driver      string        `yaml:"driver"`
	Path        string        `yaml:"path"`
	WALMode     bool          `yaml:"wal_mode"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// PolicyConfig holds the reconciliation timings.
type PolicyConfig struct {
	TransientPollInterval time.Duration `yaml:"transient_poll_interval"`
	RefetchInterval       time.Duration `yaml:"refetch_interval"`
	RebootInformTimeout   time.Duration `yaml:"reboot_inform_timeout"`
	RebootDelay           time.Duration `yaml:"reboot_delay"`
}

// SessionsConfig tunes the device session registry.
type SessionsConfig struct {
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	ReaperInterval time.Duration `yaml:"reaper_interval"`
	InboxSize      int           `yaml:"inbox_size"`
}

// APIConfig configures the HTTP listener serving the CWMP ingress and the
// operator API.
type APIConfig struct {
	Listen       string        `yaml:"listen"`
	CWMPPath     string        `yaml:"cwmp_path"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	Auth         APIAuthConfig `yaml:"auth"`
}

// APIAuthConfig protects the operator endpoints with basic auth. An empty
// username leaves them open.
type APIAuthConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// MQTTConfig configures the MQTT bridge.
type MQTTConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Broker      string        `yaml:"broker"`
	ClientID    string        `yaml:"client_id"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	TopicPrefix string        `yaml:"topic_prefix"`
	QoS         int           `yaml:"qos"`
	KeepAlive   time.Duration `yaml:"keep_alive"`
}

// DiscoveryConfig configures DNS-SD advertisement of the ACS endpoint.
type DiscoveryConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Interface string `yaml:"interface"`
	Instance  string `yaml:"instance"`
}

// DevicesConfig holds extra identification rules and per-device intents.
type DevicesConfig struct {
	Rules []RuleConfig `yaml:"rules"`

	// Intents maps a device serial number to an intent JSON file loaded as
	// its desired configuration at startup.
	Intents map[string]string `yaml:"intents"`
}

// RuleConfig is one device identification rule.
type RuleConfig struct {
	OUI            string `yaml:"oui"`
	ProductClass   string `yaml:"product_class"`
	SoftwarePrefix string `yaml:"software_prefix"`
	Tag            string `yaml:"tag"`
}

// Load reads the configuration at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used for values the file leaves out.
func Default() *Config {
	policy := acs.DefaultPolicy()
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Store: StoreConfig{
			Driver:      DriverFile,
			Path:        "./data/enodebd",
			WALMode:     true,
			BusyTimeout: 5 * time.Second,
		},
		Policy: PolicyConfig{
			TransientPollInterval: policy.TransientPollInterval,
			RefetchInterval:       policy.RefetchInterval,
			RebootInformTimeout:   policy.RebootInformTimeout,
			RebootDelay:           policy.RebootDelay,
		},
		Sessions: SessionsConfig{
			IdleTimeout:    30 * time.Minute,
			ReaperInterval: time.Minute,
			InboxSize:      8,
		},
		API: APIConfig{
			Listen:       ":7547",
			CWMPPath:     "/cwmp",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "enodebd",
			TopicPrefix: "enodebd",
			QoS:         1,
			KeepAlive:   30 * time.Second,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ENODEBD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("ENODEBD_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}

	if v := os.Getenv("ENODEBD_API_LISTEN"); v != "" {
		cfg.API.Listen = v
	}
	if v := os.Getenv("ENODEBD_API_PASSWORD_HASH"); v != "" {
		cfg.API.Auth.PasswordHash = v
	}

	if v := os.Getenv("ENODEBD_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("ENODEBD_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("ENODEBD_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.Store.Driver {
	case DriverFile, DriverSQLite:
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be %q or %q", c.Store.Driver, DriverFile, DriverSQLite))
	}
	if c.Store.Path == "" {
		errs = append(errs, "store.path is required")
	}

	if err := c.AcsPolicy().Validate(); err != nil {
		errs = append(errs, "policy: "+err.Error())
	}

	if c.Sessions.IdleTimeout < 0 || c.Sessions.ReaperInterval < 0 || c.Sessions.InboxSize < 0 {
		errs = append(errs, "sessions values must not be negative")
	}
	if c.Sessions.IdleTimeout > 0 && c.Sessions.ReaperInterval == 0 {
		errs = append(errs, "sessions.reaper_interval is required with an idle timeout")
	}
	if c.Sessions.IdleTimeout > 0 && c.Sessions.IdleTimeout <= c.Policy.RebootInformTimeout {
		errs = append(errs, "sessions.idle_timeout must exceed policy.reboot_inform_timeout")
	}

	if c.API.Listen == "" {
		errs = append(errs, "api.listen is required")
	}
	if !strings.HasPrefix(c.API.CWMPPath, "/") {
		errs = append(errs, "api.cwmp_path must start with /")
	}
	if c.API.Auth.Username != "" && c.API.Auth.PasswordHash == "" {
		errs = append(errs, "api.auth.password_hash is required (set ENODEBD_API_PASSWORD_HASH environment variable)")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, "mqtt.broker is required")
		}
		if c.MQTT.TopicPrefix == "" || strings.ContainsAny(c.MQTT.TopicPrefix, "+#") {
			errs = append(errs, "mqtt.topic_prefix must be set and free of wildcards")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}

	if _, err := c.Rules(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// AcsPolicy returns the reconciliation policy.
func (c *Config) AcsPolicy() acs.Policy {
	return acs.Policy{
		TransientPollInterval: c.Policy.TransientPollInterval,
		RefetchInterval:       c.Policy.RefetchInterval,
		RebootInformTimeout:   c.Policy.RebootInformTimeout,
		RebootDelay:           c.Policy.RebootDelay,
	}
}

// Rules converts the configured identification rules.
func (c *Config) Rules() ([]devices.Rule, error) {
	rules := make([]devices.Rule, 0, len(c.Devices.Rules))
	for i, r := range c.Devices.Rules {
		tag, err := devices.ParseTag(r.Tag)
		if err != nil {
			return nil, fmt.Errorf("devices.rules[%d]: %w", i, err)
		}
		if r.OUI == "" && r.ProductClass == "" && r.SoftwarePrefix == "" {
			return nil, fmt.Errorf("devices.rules[%d]: rule matches nothing", i)
		}
		rules = append(rules, devices.Rule{
			OUI:            r.OUI,
			ProductClass:   r.ProductClass,
			SoftwarePrefix: r.SoftwarePrefix,
			Tag:            tag,
		})
	}
	return rules, nil
}
