package docstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/Veraticus/the-spice-must-sync/internal/common"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// fakeFirestore serves the subset of the Firestore REST API the adapter uses.
type fakeFirestore struct {
	docs     map[string]map[string]any
	failures map[string]int
	mu       sync.Mutex
	requests int
}

func newFakeFirestore() *fakeFirestore {
	return &fakeFirestore{
		docs:     make(map[string]map[string]any),
		failures: make(map[string]int),
	}
}

func (f *fakeFirestore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	const marker = "/documents/"
	i := strings.Index(r.URL.Path, marker)
	if i < 0 {
		writeError(w, http.StatusBadRequest)
		return
	}
	prefix := strings.TrimPrefix(r.URL.Path[:i+len(marker)], "/v1/")
	path := r.URL.Path[i+len(marker):]

	if n := f.failures[path]; n > 0 {
		f.failures[path] = n - 1
		writeError(w, http.StatusServiceUnavailable)
		return
	}

	segments := strings.Split(path, "/")
	switch {
	case r.Method == http.MethodGet && len(segments)%2 == 1:
		f.list(w, r, prefix, path)
	case r.Method == http.MethodGet:
		doc, ok := f.docs[path]
		if !ok {
			writeError(w, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"name": prefix + path, "fields": doc})
	case r.Method == http.MethodPatch:
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest)
			return
		}
		mask := r.URL.Query()["updateMask.fieldPaths"]
		if len(mask) == 0 || f.docs[path] == nil {
			f.docs[path] = body.Fields
		} else {
			for _, field := range mask {
				f.docs[path][field] = body.Fields[field]
			}
		}
		writeJSON(w, map[string]any{"name": prefix + path, "fields": f.docs[path]})
	case r.Method == http.MethodDelete:
		delete(f.docs, path)
		writeJSON(w, map[string]any{})
	default:
		writeError(w, http.StatusMethodNotAllowed)
	}
}

func (f *fakeFirestore) list(w http.ResponseWriter, r *http.Request, prefix, collection string) {
	var names []string
	for p := range f.docs {
		if strings.HasPrefix(p, collection+"/") && !strings.Contains(strings.TrimPrefix(p, collection+"/"), "/") {
			names = append(names, p)
		}
	}
	sort.Strings(names)

	start, _ := strconv.Atoi(r.URL.Query().Get("pageToken"))
	size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if size <= 0 {
		size = len(names)
	}
	end := min(start+size, len(names))

	docs := []map[string]any{}
	for _, p := range names[start:end] {
		docs = append(docs, map[string]any{"name": prefix + p, "fields": f.docs[p]})
	}
	resp := map[string]any{"documents": docs}
	if end < len(names) {
		resp["nextPageToken"] = strconv.Itoa(end)
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": http.StatusText(code)},
	})
}

func newTestFirestore(t *testing.T, fake *fakeFirestore, pageSize int64) *Firestore {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	store, err := NewFirestore(context.Background(), FirestoreConfig{
		ProjectID:     "demo",
		Endpoint:      server.URL + "/",
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
		PageSize:      pageSize,
	}, nil, option.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return store
}

func TestFirestore_SetGetRoundTrip(t *testing.T) {
	fake := newFakeFirestore()
	store := newTestFirestore(t, fake, 0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users/u1/categories/c1", service.Document{
		"title":            "Food",
		"active":           true,
		"excludeFromStat":  false,
		"budget":           250.5,
		"parentCategoryId": nil,
		"meta":             map[string]any{"count": 3.0},
		"tags":             []any{"a", "b"},
	}))

	doc, err := store.Get(ctx, "users/u1/categories/c1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Food", doc["title"])
	assert.Equal(t, true, doc["active"])
	assert.Nil(t, doc["excludeFromStat"], "false decodes as null")
	assert.InDelta(t, 250.5, doc["budget"], 0.0001)
	assert.Nil(t, doc["parentCategoryId"])
	assert.Equal(t, map[string]any{"count": 3.0}, doc["meta"])
	assert.Equal(t, []any{"a", "b"}, doc["tags"])
	assert.Equal(t, "c1", doc["id"])

	// Zero scalars must still carry their type on the wire.
	stored := fake.docs["users/u1/categories/c1"]
	assert.Equal(t, map[string]any{"booleanValue": false}, stored["excludeFromStat"])
}

func TestFirestore_GetMissing(t *testing.T) {
	store := newTestFirestore(t, newFakeFirestore(), 0)

	doc, err := store.Get(context.Background(), "users/u1/tokens/categories")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestFirestore_MergeUsesFieldMask(t *testing.T) {
	fake := newFakeFirestore()
	store := newTestFirestore(t, fake, 0)
	ctx := context.Background()
	path := "users/u1/tokens/categories"

	require.NoError(t, store.Set(ctx, path, service.Document{"token": "a", "note": "keep"}))
	require.NoError(t, store.Set(ctx, path, service.Document{"token": "b"}, service.WithMerge()))

	doc, err := store.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "b", doc["token"])
	assert.Equal(t, "keep", doc["note"])
}

func TestFirestore_ListPaginates(t *testing.T) {
	fake := newFakeFirestore()
	store := newTestFirestore(t, fake, 2)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, store.Set(ctx, "users/u1/reminders/"+id, service.Document{"name": id}))
	}
	require.NoError(t, store.Set(ctx, "users/u2/reminders/z", service.Document{"name": "z"}))

	docs, err := store.List(ctx, "users/u1/reminders")
	require.NoError(t, err)
	require.Len(t, docs, 5)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, id, docs[i]["id"])
		assert.Equal(t, id, docs[i]["name"])
	}
}

func TestFirestore_DeleteMissing(t *testing.T) {
	store := newTestFirestore(t, newFakeFirestore(), 0)
	require.NoError(t, store.Delete(context.Background(), "users/u1/reminders/none"))
}

func TestFirestore_RetriesUnavailable(t *testing.T) {
	fake := newFakeFirestore()
	fake.docs["users/u1/tokens/categories"] = map[string]any{"token": map[string]any{"stringValue": "t1"}}
	fake.failures["users/u1/tokens/categories"] = 2
	store := newTestFirestore(t, fake, 0)

	doc, err := store.Get(context.Background(), "users/u1/tokens/categories")
	require.NoError(t, err)
	assert.Equal(t, "t1", doc["token"])
	assert.GreaterOrEqual(t, fake.requests, 3)
}

func TestFirestore_ExhaustedRetriesAreRemoteErrors(t *testing.T) {
	fake := newFakeFirestore()
	fake.failures["users/u1/tokens/categories"] = 10
	store := newTestFirestore(t, fake, 0)

	_, err := store.Get(context.Background(), "users/u1/tokens/categories")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRemoteUnavailable)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
}

func TestNewFirestore_RequiresProject(t *testing.T) {
	_, err := NewFirestore(context.Background(), FirestoreConfig{}, nil)
	require.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestFieldPaths_QuotesSpecialNames(t *testing.T) {
	paths := fieldPaths(service.Document{"token": 1, "2024": 2, "a-b": 3})
	assert.Equal(t, []string{"`2024`", "`a-b`", "token"}, paths)
}
