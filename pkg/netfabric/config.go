package netfabric

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyConfig is the optional on-disk configuration for a Network's
// initial policy knobs and pool sizing: defaults first, then a YAML
// file overlaid on top if present.
type PolicyConfig struct {
	Network struct {
		Name    string `yaml:"name"`
		Workers int    `yaml:"workers"`
	} `yaml:"network"`

	Policy struct {
		Reliable       bool `yaml:"reliable"`
		LongDelays     bool `yaml:"long_delays"`
		LongReordering bool `yaml:"long_reordering"`
	} `yaml:"policy"`

	Logging struct {
		Level LogLevel `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultPolicyConfig returns the configuration a Network starts with
// when no file is loaded: reliable, no pool override, info logging.
func DefaultPolicyConfig() *PolicyConfig {
	cfg := &PolicyConfig{}
	cfg.Network.Name = "default"
	cfg.Network.Workers = 0
	cfg.Policy.Reliable = true
	cfg.Logging.Level = LogLevelInfo
	return cfg
}

// LoadPolicyConfig reads a YAML PolicyConfig from path. A missing file
// is not an error: it yields DefaultPolicyConfig, so a Network can
// always be constructed from a config path that may or may not exist.
func LoadPolicyConfig(path string) (*PolicyConfig, error) {
	cfg := DefaultPolicyConfig()

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse policy config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func (c *PolicyConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal policy config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write policy config: %w", err)
	}
	return nil
}

// Validate checks the loaded configuration for obviously invalid
// values before it is used to build a Network.
func (c *PolicyConfig) Validate() error {
	if c.Network.Workers < 0 {
		return fmt.Errorf("network.workers must be >= 0 (0 means auto-sized)")
	}
	return nil
}

// Options translates a PolicyConfig into the Option values NewNetwork
// expects, so cmd/netfabric-demo (and any other caller) can go straight
// from a loaded file to a running Network.
func (c *PolicyConfig) Options() []Option {
	opts := []Option{
		WithName(c.Network.Name),
		WithWorkers(c.Network.Workers),
		WithLogging(LoggerConfig{Level: c.Logging.Level}),
	}
	return opts
}

// ApplyPolicy applies a loaded PolicyConfig's reliable/long-delays/
// long-reordering values to an already-constructed Network. Split from
// Options because those three knobs are runtime-mutable atomics on
// Network, not constructor arguments.
func (c *PolicyConfig) ApplyPolicy(n *Network) {
	n.SetReliable(c.Policy.Reliable)
	n.SetLongDelays(c.Policy.LongDelays)
	n.SetLongReordering(c.Policy.LongReordering)
}
