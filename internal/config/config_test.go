package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "s3", cfg.Artifacts.Driver)
	assert.Equal(t, 4, cfg.Ingest.Concurrency)
	assert.Equal(t, 200*time.Millisecond, cfg.Ingest.RetryInitialBackoff)
	assert.True(t, cfg.Ingest.BreakerEnabled)
	assert.Empty(t, cfg.Classifier.RulesFile)
	assert.Empty(t, cfg.JWT.Secret)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LITRECORD_STORE_DRIVER", "MEMORY")
	t.Setenv("LITRECORD_ARTIFACTS_DRIVER", "local")
	t.Setenv("LITRECORD_ARTIFACTS_LOCAL_ROOT", "/tmp/artifacts")
	t.Setenv("LITRECORD_INGEST_CONCURRENCY", "8")
	t.Setenv("LITRECORD_CLASSIFIER_RULES_FILE", "/etc/litrecord/rules.yaml")
	t.Setenv("LITRECORD_CLASSIFIER_WATCH", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "local", cfg.Artifacts.Driver)
	assert.Equal(t, "/tmp/artifacts", cfg.Artifacts.LocalRoot)
	assert.Equal(t, 8, cfg.Ingest.Concurrency)
	assert.Equal(t, "/etc/litrecord/rules.yaml", cfg.Classifier.RulesFile)
	assert.True(t, cfg.Classifier.Watch)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("LITRECORD_STORE_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	d := DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", d.DSN())
}
