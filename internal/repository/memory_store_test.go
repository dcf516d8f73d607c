package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))

	value, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), value)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	value, err = store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), value)

	require.NoError(t, store.Remove(ctx, "b", "missing"))
	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestMemoryStoreDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "records:students", []byte("[]"), 0))
	require.NoError(t, store.Set(ctx, "records:assignments:CSE:", []byte("[]"), 0))
	require.NoError(t, store.Set(ctx, "session:abc", []byte("admin"), 0))

	require.NoError(t, store.DeleteByPattern(ctx, "records:*"))
	_, err := store.Get(ctx, "records:students")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = store.Get(ctx, "session:abc")
	assert.NoError(t, err)
}

func TestCacheRepositoryJSON(t *testing.T) {
	ctx := context.Background()
	repo := NewCacheRepository(NewMemoryStore())

	var courses []models.CourseRecord
	assert.ErrorIs(t, repo.Get(ctx, "records:courses", &courses), appErrors.ErrCacheMiss)

	want := []models.CourseRecord{{CourseID: "C1", CourseName: "Compilers"}}
	require.NoError(t, repo.Set(ctx, "records:courses", want, time.Minute))
	require.NoError(t, repo.Get(ctx, "records:courses", &courses))
	assert.Equal(t, want, courses)

	require.NoError(t, repo.DeleteByPattern(ctx, "records:*"))
	assert.ErrorIs(t, repo.Get(ctx, "records:courses", &courses), appErrors.ErrCacheMiss)

	var nilRepo CacheRepository
	assert.ErrorIs(t, nilRepo.Get(ctx, "x", &courses), appErrors.ErrCacheMiss)
}

func TestMemoryStoreDeleteByPatternCrossesSlashes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "records:enrolled:CSE/AI", []byte("[]"), 0))
	require.NoError(t, store.Set(ctx, "records:assignments:CSE/AI:C1/2", []byte("[]"), 0))
	require.NoError(t, store.Set(ctx, "chat:history:abc", []byte("[]"), 0))

	require.NoError(t, store.DeleteByPattern(ctx, "records:*"))
	_, err := store.Get(ctx, "records:enrolled:CSE/AI")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = store.Get(ctx, "records:assignments:CSE/AI:C1/2")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = store.Get(ctx, "chat:history:abc")
	assert.NoError(t, err)
}

func TestGlobMatch(t *testing.T) {
	cases := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"records:*", "records:enrolled:CSE/AI", true},
		{"records:*", "session:abc", false},
		{"*", "", true},
		{"a*b*c", "a/x/b/y/c", true},
		{"a*b*c", "a/x/b/y/d", false},
		{"h?llo", "h/llo", true},
		{"h[ae]llo", "hallo", true},
		{"h[^e]llo", "hello", false},
		{"h[a-c]llo", "hbllo", true},
		{`rec\*`, "rec*", true},
		{`rec\*`, "recs", false},
		{"records:", "records:x", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, globMatch(tc.pattern, tc.key), "%s ~ %s", tc.pattern, tc.key)
	}
}

func TestMemoryStoreDropsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "session:a", []byte("admin"), time.Minute))
	require.NoError(t, store.Set(ctx, "session:b", []byte("user"), time.Minute))
	require.NoError(t, store.Set(ctx, "records:courses", []byte("[]"), 0))

	now = now.Add(2 * time.Minute)
	_, err := store.Get(ctx, "session:a")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.NotContains(t, store.entries, "session:a")
	assert.Contains(t, store.entries, "session:b")

	require.NoError(t, store.Set(ctx, "session:c", []byte("user"), time.Minute))
	assert.NotContains(t, store.entries, "session:b")
	assert.Len(t, store.entries, 2)
}
