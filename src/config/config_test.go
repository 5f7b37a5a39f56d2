package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_TYPE", "memory")
	t.Setenv("APP_PORT", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8888", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreType)
	assert.Equal(t, "FormCraftDB", cfg.MongoDB)
	assert.Equal(t, 720*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "admin", cfg.DefaultAdminUsername)
	assert.Equal(t, 10, cfg.LoginRateLimit)
}

func TestLoad_PublicBaseURL(t *testing.T) {
	t.Setenv("STORE_TYPE", "memory")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("PUBLIC_BASE_URL", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.PublicBaseURL)

	t.Setenv("PUBLIC_BASE_URL", "https://forms.example.com/")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "https://forms.example.com", cfg.PublicBaseURL)
}

func TestLoad_RequiresBackendSettings(t *testing.T) {
	t.Setenv("STORE_TYPE", "mongo")
	t.Setenv("MONGO_URI", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_TYPE", "sql")
	t.Setenv("DB_DATABASE", "")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("STORE_TYPE", "cassandra")
	_, err = Load()
	assert.Error(t, err)
}

func TestGetEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("DB_CONNECTION_LIMIT", "lots")
	assert.Equal(t, 5, getEnvAsInt("DB_CONNECTION_LIMIT", 5))

	t.Setenv("SEED_SAMPLE_FORMS", "maybe")
	assert.False(t, getEnvAsBool("SEED_SAMPLE_FORMS", false))
	t.Setenv("SEED_SAMPLE_FORMS", "true")
	assert.True(t, getEnvAsBool("SEED_SAMPLE_FORMS", false))
}
