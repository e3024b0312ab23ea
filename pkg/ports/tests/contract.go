package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// RunSelectionStoreContract verifies that an adapter complies with ports.SelectionStore.
func RunSelectionStoreContract(t *testing.T, store ports.SelectionStore) {
	t.Helper()
	ctx := context.Background()
	sessionID := "contract-session"

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-session")
		if !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Save_Load_RoundTrip", func(t *testing.T) {
		sel := &domain.Selection{Mode: domain.ModeMultiple, IDs: []string{"a", "b"}}
		if err := store.Save(ctx, sessionID, sel); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, err := store.Load(ctx, sessionID)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.Mode != sel.Mode {
			t.Errorf("mode mismatch: got %q, want %q", loaded.Mode, sel.Mode)
		}
		if len(loaded.IDs) != 2 || loaded.IDs[0] != "a" || loaded.IDs[1] != "b" {
			t.Errorf("ids mismatch: got %v", loaded.IDs)
		}
	})

	t.Run("Load_Isolation", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		loaded.IDs[0] = "mutated"

		again, err := store.Load(ctx, sessionID)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if again.IDs[0] != "a" {
			t.Error("store returned a shared slice; mutations leaked between loads")
		}
	})

	t.Run("List", func(t *testing.T) {
		sessions, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		found := false
		for _, id := range sessions {
			if id == sessionID {
				found = true
			}
		}
		if !found {
			t.Errorf("session %s missing from list %v", sessionID, sessions)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, sessionID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		_, err := store.Load(ctx, sessionID)
		if !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
		}
	})
}

// TreeLoaderContractTest verifies that an adapter complies with ports.TreeLoader.
// wantIDs lists the root-level ids expected from Load, in document order.
func TreeLoaderContractTest(t *testing.T, loader ports.TreeLoader, wantIDs []string) {
	t.Helper()

	nodes, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error loading tree: %v", err)
	}

	if len(nodes) != len(wantIDs) {
		t.Fatalf("expected %d root nodes, got %d", len(wantIDs), len(nodes))
	}
	for i, want := range wantIDs {
		if nodes[i].ID != want {
			t.Errorf("root %d: got id %q, want %q", i, nodes[i].ID, want)
		}
		if nodes[i].Label == "" {
			t.Errorf("root %q: empty label", nodes[i].ID)
		}
	}
}
