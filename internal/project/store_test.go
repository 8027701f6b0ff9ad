package project

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/piwi3910/metre/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	db, err := NewSQLiteStore(filepath.Join(t.TempDir(), "metre.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		fs.Close()
		db.Close()
	})
	return map[string]Store{"file": fs, "sqlite": db}
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "projects/a", []byte("one")))
			require.NoError(t, s.Put(ctx, "projects/a", []byte("two")))

			got, err := s.Get(ctx, "projects/a")
			require.NoError(t, err)
			assert.Equal(t, "two", string(got))

			require.NoError(t, s.Delete(ctx, "projects/a"))
			_, err = s.Get(ctx, "projects/a")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, "projects/a"), ErrNotFound)
		})
	}
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"projects/b", "projects/a", "catalogue"} {
				require.NoError(t, s.Put(ctx, k, []byte("{}")))
			}
			keys, err := s.List(ctx, "projects/")
			require.NoError(t, err)
			assert.Equal(t, []string{"projects/a", "projects/b"}, keys)

			keys, err = s.List(ctx, "nothing/")
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestStore_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"", "../escape", "/abs", `a\b`} {
				assert.Error(t, s.Put(ctx, k, []byte("x")), k)
			}
		})
	}
}

func TestStore_ProjectHelpers(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			p := sampleProject()
			require.NoError(t, PutProject(ctx, s, p))

			loaded, err := GetProject(ctx, s, p.ID)
			require.NoError(t, err)
			assert.Equal(t, p.Name, loaded.Name)
			assert.InDelta(t, p.TotalCost(), loaded.TotalCost(), 1e-9)

			ids, err := ProjectIDs(ctx, s)
			require.NoError(t, err)
			assert.Equal(t, []string{p.ID}, ids)

			require.NoError(t, DeleteProject(ctx, s, p.ID))
			_, err = GetProject(ctx, s, p.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_CatalogueHelpers(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			cat, err := GetCatalogue(ctx, s)
			require.NoError(t, err)
			assert.Equal(t, len(model.DefaultCatalogue().Items), len(cat.Items), "default when nothing stored")

			custom := model.NewCatalogue()
			custom.Add(model.NewCatalogueItem("Enduit", "Plâtrerie", "", model.UnitSquareMeter, 22))
			require.NoError(t, PutCatalogue(ctx, s, custom))

			cat, err = GetCatalogue(ctx, s)
			require.NoError(t, err)
			assert.Equal(t, custom.Items, cat.Items)
		})
	}
}

func TestStore_CancelledContext(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, fs.Put(ctx, "k", []byte("v")))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(model.StorageJSON, dir)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(model.StorageSQLite, dir)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("redis", dir)
	assert.Error(t, err)
}
