package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.Match.CoverageThreshold)
	assert.Equal(t, 3, cfg.Match.DefaultLimit)
	assert.Equal(t, 3, cfg.Match.GenerationAttempts)
	assert.NotEmpty(t, cfg.Lexicon.Spicy)
	assert.NotEmpty(t, cfg.Lexicon.Cuisine["日式"])
	assert.Equal(t, "fridgechef", cfg.Redis.KeyPrefix)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080},
			Match: MatchConfig{
				CoverageThreshold:  0.5,
				DefaultLimit:       3,
				GenerationAttempts: 3,
				GenerationTarget:   3,
			},
		}
	}

	assert.NoError(t, validateConfig(base()))

	missing := base()
	missing.Server.Port = 0
	assert.Error(t, validateConfig(missing))

	badThreshold := base()
	badThreshold.Match.CoverageThreshold = 1.5
	assert.Error(t, validateConfig(badThreshold))

	badLimit := base()
	badLimit.Match.DefaultLimit = 0
	assert.Error(t, validateConfig(badLimit))

	badCache := base()
	badCache.Cache.Enabled = true
	assert.Error(t, validateConfig(badCache))
}
