package snowpager

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

var generatorEnvKeys = map[string]string{
	"idgen.node_id":        "IDGEN_NODE_ID",
	"idgen.epoch":          "IDGEN_EPOCH",
	"idgen.max_clock_wait": "IDGEN_MAX_CLOCK_WAIT",
}

// GeneratorConfig describes a Generator in configuration files and env.
//
// Example (yaml):
//
//	idgen:
//	  node_id: 3
//	  epoch: "2020-01-01T00:00:00Z"
//	  max_clock_wait: 5ms
type GeneratorConfig struct {
	NodeID       int64         `mapstructure:"node_id" json:"node_id" yaml:"node_id"`
	Epoch        string        `mapstructure:"epoch" json:"epoch" yaml:"epoch"`
	MaxClockWait time.Duration `mapstructure:"max_clock_wait" json:"max_clock_wait" yaml:"max_clock_wait"`
}

// LoadGeneratorConfig reads the idgen.* keys from v. Every key may be
// overridden from env as IDGEN_NODE_ID, IDGEN_EPOCH and IDGEN_MAX_CLOCK_WAIT.
// The names are bound explicitly: an env prefix configured on v does not
// apply to them, and the env settings of v are left as the caller set them.
func LoadGeneratorConfig(v *viper.Viper) (*GeneratorConfig, error) {
	if v == nil {
		return nil, fmt.Errorf("viper instance is nil")
	}

	v.SetDefault("idgen.node_id", 0)
	v.SetDefault("idgen.epoch", DefaultEpoch.Format(time.RFC3339))
	v.SetDefault("idgen.max_clock_wait", DefaultMaxClockWait)

	for key, env := range generatorEnvKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("cannot bind %s to %s: %w", key, env, err)
		}
	}

	cfg := &GeneratorConfig{
		NodeID:       v.GetInt64("idgen.node_id"),
		Epoch:        v.GetString("idgen.epoch"),
		MaxClockWait: v.GetDuration("idgen.max_clock_wait"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid idgen config: %w", err)
	}

	return cfg, nil
}

// NewGeneratorFromConfig builds a Generator from cfg. Extra options are
// applied after the configured ones.
func NewGeneratorFromConfig(cfg *GeneratorConfig, opts ...GeneratorOption) (*Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("idgen config is nil")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid idgen config: %w", err)
	}

	epoch, err := cfg.epoch()
	if err != nil {
		return nil, err
	}

	base := []GeneratorOption{
		WithEpoch(epoch),
		WithMaxClockWait(cfg.MaxClockWait),
	}

	return NewGenerator(cfg.NodeID, append(base, opts...)...)
}

func (c *GeneratorConfig) validate() error {
	if c.NodeID < 0 || c.NodeID > MaxNodeID {
		return fmt.Errorf("node_id %d out of range [0, %d]", c.NodeID, MaxNodeID)
	}

	if c.MaxClockWait < 0 {
		return fmt.Errorf("negative max_clock_wait %s", c.MaxClockWait)
	}

	_, err := c.epoch()

	return err
}

func (c *GeneratorConfig) epoch() (time.Time, error) {
	if c.Epoch == "" {
		return DefaultEpoch, nil
	}

	t, err := time.Parse(time.RFC3339, c.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse epoch '%s': %w", c.Epoch, err)
	}

	return t, nil
}
