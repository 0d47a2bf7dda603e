package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Nil(t, cfg.Validate())
	assert.Equal(t, "# ", cfg.Prompt)
	assert.Equal(t, "mysh.history", cfg.HistoryFile)
	assert.Nil(t, cfg.SpawnLimiter(), "pacing is off by default")
	assert.Empty(t, cfg.EventLog, "the event log is opt-in")
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate func(c *Configuration)
		field  string
	}{
		"backend":   {func(c *Configuration) { c.HistoryBackend = "postgres" }, "history_backend"},
		"tokenizer": {func(c *Configuration) { c.Tokenizer = "bash" }, "tokenizer"},
		"prompt":    {func(c *Configuration) { c.Prompt = "" }, "prompt"},
		"history":   {func(c *Configuration) { c.HistoryFile = "" }, "history_file"},
		"rate":      {func(c *Configuration) { c.SpawnRate = -1 }, "spawn_rate"},
		"burst":     {func(c *Configuration) { c.SpawnBurst = 0 }, "spawn_burst"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			assert.NotNil(t, err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestSpawnLimiter(t *testing.T) {
	cfg := Default()
	cfg.SpawnRate = 5
	cfg.SpawnBurst = 2

	limiter := cfg.SpawnLimiter()
	assert.NotNil(t, limiter)
	assert.Equal(t, int64(2), limiter.Capacity())
	assert.Equal(t, 5.0, limiter.Rate())
}
