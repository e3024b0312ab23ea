package file_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports/tests"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "sessions"))
	tests.RunSelectionStoreContract(t, store)
}

func TestFileStore_EmptySessionID(t *testing.T) {
	store := file.NewStore(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "", &domain.Selection{}))
	_, err := store.Load(ctx, "")
	assert.Error(t, err)
}

func TestFileStore_ListMissingDirectory(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "never-created"))

	sessions, err := store.List(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, sessions)
}
