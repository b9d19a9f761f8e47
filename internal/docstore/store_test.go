package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

type storeFactory func(t *testing.T) service.DocumentStore

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(_ *testing.T) service.DocumentStore {
			return NewMemory()
		},
		"sqlite": func(t *testing.T) service.DocumentStore {
			t.Helper()
			store, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "docs.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}
}

func TestDocumentStore_Contract(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			t.Run("get missing returns nil", func(t *testing.T) {
				store := factory(t)
				doc, err := store.Get(context.Background(), "users/u1/tokens/categories")
				require.NoError(t, err)
				assert.Nil(t, doc)
			})

			t.Run("set then get", func(t *testing.T) {
				store := factory(t)
				ctx := context.Background()
				require.NoError(t, store.Set(ctx, "users/u1/categories/c1", service.Document{
					"title":  "Food",
					"active": true,
					"budget": 12.5,
				}))

				doc, err := store.Get(ctx, "users/u1/categories/c1")
				require.NoError(t, err)
				require.NotNil(t, doc)
				assert.Equal(t, "Food", doc["title"])
				assert.Equal(t, true, doc["active"])
				assert.InDelta(t, 12.5, doc["budget"], 0.0001)
				assert.Equal(t, "c1", doc["id"], "id should be filled from the path")
			})

			t.Run("set replaces without merge", func(t *testing.T) {
				store := factory(t)
				ctx := context.Background()
				path := "users/u1/categories/c1"
				require.NoError(t, store.Set(ctx, path, service.Document{"title": "Food", "icon": "cart"}))
				require.NoError(t, store.Set(ctx, path, service.Document{"title": "Groceries"}))

				doc, err := store.Get(ctx, path)
				require.NoError(t, err)
				assert.Equal(t, "Groceries", doc["title"])
				assert.NotContains(t, doc, "icon")
			})

			t.Run("merge keeps other fields", func(t *testing.T) {
				store := factory(t)
				ctx := context.Background()
				path := "users/u1/tokens/categories"
				require.NoError(t, store.Set(ctx, path, service.Document{"token": "a", "note": "keep"}))
				require.NoError(t, store.Set(ctx, path, service.Document{"token": "b"}, service.WithMerge()))

				doc, err := store.Get(ctx, path)
				require.NoError(t, err)
				assert.Equal(t, "b", doc["token"])
				assert.Equal(t, "keep", doc["note"])
			})

			t.Run("merge creates missing document", func(t *testing.T) {
				store := factory(t)
				ctx := context.Background()
				path := "users/u1/tokens/recurringExpenses"
				require.NoError(t, store.Set(ctx, path, service.Document{"token": "t1"}, service.WithMerge()))

				doc, err := store.Get(ctx, path)
				require.NoError(t, err)
				assert.Equal(t, "t1", doc["token"])
			})

			t.Run("delete is idempotent", func(t *testing.T) {
				store := factory(t)
				ctx := context.Background()
				path := "users/u1/reminders/r1"
				require.NoError(t, store.Set(ctx, path, service.Document{"name": "rent"}))
				require.NoError(t, store.Delete(ctx, path))
				require.NoError(t, store.Delete(ctx, path))

				doc, err := store.Get(ctx, path)
				require.NoError(t, err)
				assert.Nil(t, doc)
			})

			t.Run("list only direct children", func(t *testing.T) {
				store := factory(t)
				ctx := context.Background()
				require.NoError(t, store.Set(ctx, "users/u1/transactions/2024/transactions/b", service.Document{"amount": 2.0}))
				require.NoError(t, store.Set(ctx, "users/u1/transactions/2024/transactions/a", service.Document{"amount": 1.0}))
				require.NoError(t, store.Set(ctx, "users/u1/transactions/2025/transactions/c", service.Document{"amount": 3.0}))
				require.NoError(t, store.Set(ctx, "users/u2/transactions/2024/transactions/d", service.Document{"amount": 4.0}))

				docs, err := store.List(ctx, "users/u1/transactions/2024/transactions")
				require.NoError(t, err)
				require.Len(t, docs, 2)
				assert.Equal(t, "a", docs[0]["id"])
				assert.Equal(t, "b", docs[1]["id"])
			})

			t.Run("list empty collection", func(t *testing.T) {
				store := factory(t)
				docs, err := store.List(context.Background(), "users/u1/categories")
				require.NoError(t, err)
				assert.NotNil(t, docs)
				assert.Empty(t, docs)
			})

			t.Run("returned documents are copies", func(t *testing.T) {
				store := factory(t)
				ctx := context.Background()
				path := "users/u1/categories/c1"
				require.NoError(t, store.Set(ctx, path, service.Document{"title": "Food"}))

				doc, err := store.Get(ctx, path)
				require.NoError(t, err)
				doc["title"] = "mutated"

				again, err := store.Get(ctx, path)
				require.NoError(t, err)
				assert.Equal(t, "Food", again["title"])
			})

			t.Run("rejects bad paths", func(t *testing.T) {
				store := factory(t)
				ctx := context.Background()
				_, err := store.Get(ctx, "users/u1/categories")
				require.ErrorIs(t, err, ErrInvalidPath)
				_, err = store.List(ctx, "users/u1")
				require.ErrorIs(t, err, ErrInvalidPath)
				err = store.Set(ctx, "users//categories/c1", service.Document{})
				require.ErrorIs(t, err, ErrInvalidPath)
			})
		})
	}
}

func TestSQLite_SharedFileActsAsOneRemote(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.db")

	first, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	defer func() { _ = first.Close() }()

	second, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	require.NoError(t, first.Set(ctx, "users/u1/tokens/categories", service.Document{"token": "from-first"}))

	doc, err := second.Get(ctx, "users/u1/tokens/categories")
	require.NoError(t, err)
	assert.Equal(t, "from-first", doc["token"])
}

func TestMemory_Len(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "users/u1/categories/a", service.Document{}))
	require.NoError(t, store.Set(ctx, "users/u1/categories/b", service.Document{}))
	require.NoError(t, store.Delete(ctx, "users/u1/categories/a"))
	assert.Equal(t, 1, store.Len())
}
