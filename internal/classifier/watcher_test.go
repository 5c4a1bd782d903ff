package classifier

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"litrecord/internal/domain"
)

const billingRules = `
categories: [billing]
rules:
  - keyword: invoice
    category: billing
`

func TestWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(billingRules), 0o600))

	holder := NewHolder(Default())
	w := NewWatcher(path, holder, domain.NewCategoryRegistry())

	var reloaded int
	w.OnReload(func(c *Classifier, err error) {
		require.NoError(t, err)
		reloaded = len(c.Rules())
	})

	require.NoError(t, w.Reload())
	assert.Equal(t, 1, reloaded)
	assert.Equal(t, domain.Category("billing"), holder.Classify("Invoice #42"))
}

func TestWatcher_BadReloadKeepsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [ {keyword: x, category: nowhere} ]"), 0o600))

	holder := NewHolder(Default())
	w := NewWatcher(path, holder, domain.NewCategoryRegistry())

	assert.Error(t, w.Reload())
	assert.Equal(t, domain.CategoryAdmin, holder.Classify("signed consent form"))
}

func TestWatcher_RunPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [ {keyword: consent, category: admin} ]"), 0o600))

	holder := NewHolder(Default())
	w := NewWatcher(path, holder, domain.NewCategoryRegistry())
	w.debounce = 10 * time.Millisecond

	var reloads atomic.Int32
	w.OnReload(func(*Classifier, error) { reloads.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The watch is registered asynchronously, so keep rewriting until a
	// reload is observed.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(billingRules), 0o600)
		return reloads.Load() > 0 && holder.Classify("invoice") == domain.Category("billing")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
