package config

import (
	_ "embed"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/juju/ratelimit"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
)

type Configuration struct {
	configFs afero.Fs

	Prompt         string  `json:"prompt" validate:"required"`
	HistoryFile    string  `json:"history_file" validate:"required"`
	HistoryBackend string  `json:"history_backend" validate:"oneof=file sqlite"`
	Tokenizer      string  `json:"tokenizer" validate:"oneof=fields shlex"`
	EventLog       string  `json:"event_log"`
	SpawnRate      float64 `json:"spawn_rate" validate:"gte=0"`
	SpawnBurst     int64   `json:"spawn_burst" validate:"gte=1"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewOsFs()
	}
	return c.configFs
}

// OpenEventLog opens the event log in an append only state. It returns nil
// if the event log is disabled.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, nil
	}
	return c.fs().OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.EventLog, os.O_RDONLY, 0600)
}

// SpawnLimiter returns the token bucket that paces repeat, or nil if spawns
// aren't limited.
func (c *Configuration) SpawnLimiter() *ratelimit.Bucket {
	if c.SpawnRate <= 0 {
		return nil
	}
	return ratelimit.NewBucketWithRate(c.SpawnRate, c.SpawnBurst)
}

// Default returns the built-in configuration, rooted in the working directory.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	out.configFs = afero.NewOsFs()
	return &out
}
