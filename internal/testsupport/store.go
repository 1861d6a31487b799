package testsupport

import (
	"testing"

	"blockscan/internal/config"
	"blockscan/internal/findings"
)

// MustOpenStore opens a findings.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *findings.Store {
	t.Helper()

	store, err := findings.Open(cfg)
	if err != nil {
		t.Fatalf("findings.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
