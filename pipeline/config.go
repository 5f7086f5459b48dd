package pipeline

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/flowkit/config"
	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/logger"
)

// ErrorPolicy selects how a work function error or panic is handled.
type ErrorPolicy string

const (
	// ErrorPolicyAbort terminates the process on the first worker failure.
	ErrorPolicyAbort ErrorPolicy = "abort"
	// ErrorPolicyPropagate records the first worker failure and surfaces
	// it from Results; remaining workers keep draining their queues.
	ErrorPolicyPropagate ErrorPolicy = "propagate"
)

// Config contains pipeline configuration.
type Config struct {
	// DefaultWorkers is the pool size used when a stage is added with n <= 0.
	DefaultWorkers int `yaml:"default_workers" mapstructure:"default_workers" validate:"min=0"`
	// OnError selects the worker failure policy.
	OnError ErrorPolicy `yaml:"on_error" mapstructure:"on_error" validate:"omitempty,oneof=abort propagate"`
	// ProgressInterval, when positive, starts a periodic progress logging
	// side-task on every pipeline built with this config.
	ProgressInterval time.Duration `yaml:"progress_interval" mapstructure:"progress_interval"`
	// Logging configures the pipeline logger.
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to pipeline configuration.
func (c *Config) ApplyDefaults() {
	if c.DefaultWorkers == 0 {
		c.DefaultWorkers = 1
	}
	if c.OnError == "" {
		c.OnError = ErrorPolicyAbort
	}
	c.Logging.ApplyDefaults()
}

// Validate validates pipeline configuration.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return errors.InvalidConfig(err)
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.InvalidConfig(err)
	}
	return nil
}

// LoadConfig loads pipeline configuration by name (searching <name>.yml
// and the environment), applies defaults, and validates it.
func LoadConfig(name string, opts ...config.Option) (Config, error) {
	var cfg Config
	if err := config.Load(name, &cfg, opts...); err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use mapstructure tag names for field names in error messages.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}
