// Package testutil provides shared helpers for tests that need a sandboxed
// cache database or config state.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/lepinkainen/doubanmeta/internal/cache"
)

// SetupTestCache points the global cache at a fresh temp-dir database and
// restores clean state when the test finishes.
func SetupTestCache(t *testing.T) {
	t.Helper()

	viper.Reset()
	viper.Set("cache.dbfile", filepath.Join(t.TempDir(), "cache.db"))
	if err := cache.ResetGlobalCache(); err != nil {
		t.Fatalf("failed to reset global cache: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.ResetGlobalCache()
		viper.Reset()
	})
}

// SetupTestConfig resets viper and applies the given settings, restoring
// clean state when the test finishes.
func SetupTestConfig(t *testing.T, settings map[string]any) {
	t.Helper()

	viper.Reset()
	for key, value := range settings {
		viper.Set(key, value)
	}
	t.Cleanup(viper.Reset)
}
