package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentConfig_AllowsUserScripts(t *testing.T) {
	var nilEnv *EnvironmentConfig
	assert.True(t, nilEnv.AllowsUserScripts())
	assert.True(t, (&EnvironmentConfig{}).AllowsUserScripts())

	no, yes := false, true
	assert.False(t, (&EnvironmentConfig{UserScripts: &no}).AllowsUserScripts())
	assert.True(t, (&EnvironmentConfig{UserScripts: &yes}).AllowsUserScripts())
}

func TestConfig_JSONFieldNames(t *testing.T) {
	data := []byte(`{
		"maxHistoryItems": 10,
		"environment": {"constrained": true, "userScripts": false},
		"scripts": {"dir": "/s", "repository": "sqlite", "watch": true, "allowedImports": ["math"]},
		"server": {"port": 9000, "cors": false},
		"log": {"level": "DEBUG"}
	}`)
	var cfg Config
	require.NoError(t, json.Unmarshal(data, &cfg))

	assert.Equal(t, 10, cfg.MaxHistoryItems)
	assert.True(t, cfg.Environment.Constrained)
	assert.False(t, cfg.Environment.AllowsUserScripts())
	assert.Equal(t, "sqlite", cfg.Scripts.Repository)
	assert.True(t, cfg.Scripts.Watch)
	assert.Equal(t, []string{"math"}, cfg.Scripts.AllowedImports)
	assert.Equal(t, 9000, cfg.Server.Port)
	require.NotNil(t, cfg.Server.CORS)
	assert.False(t, *cfg.Server.CORS)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Nil(t, cfg.Search)
}
