package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"litrecord/internal/config"
	"litrecord/internal/domain"
	"litrecord/internal/service"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store:     config.StoreConfig{Driver: "memory"},
		Artifacts: config.ArtifactsConfig{Driver: "local", LocalRoot: t.TempDir()},
		Ingest:    config.IngestConfig{MaxFileSizeMB: 1, Concurrency: 2, SplitWorkers: 2, RetryMaxAttempts: 1},
	}
}

func TestNew_MemoryStore(t *testing.T) {
	a, err := New(memoryConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)
	assert.Nil(t, a.Watcher)
	assert.NoError(t, a.Ping(context.Background()))

	created, err := a.Cases.Create(context.Background(), &service.CreateCaseInput{Name: "Doe v. Acme"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeHybrid, created.Mode)

	pages, err := a.Pages.ListByCase(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestNew_RulesFileRegistersCategories(t *testing.T) {
	cfg := memoryConfig(t)
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(`
fallback: facility
categories: [billing]
rules:
  - keyword: statement
    category: billing
`), 0o600))
	cfg.Classifier = config.ClassifierConfig{RulesFile: rules, Watch: true}

	a, err := New(cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Watcher)
	assert.True(t, a.Categories.Known(domain.Category("billing")))
	assert.Equal(t, domain.Category("billing"), a.Classifier.Classify("Statement of account"))
}

func TestNew_BadRulesFile(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Classifier = config.ClassifierConfig{RulesFile: filepath.Join(t.TempDir(), "missing.yaml")}

	_, err := New(cfg)
	assert.Error(t, err)
}
