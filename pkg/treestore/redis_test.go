package treestore

import (
	"context"
	"os"
	"sort"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastSlash(t *testing.T) {
	cases := []struct {
		path string
		want int
	}{
		{"candidates/u1", 10},
		{"jobApplications/001/extra", 19},
		{"candidates", -1},
		{"", -1},
		{"/lead", 0},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, lastSlash(c.path), "path %q", c.path)
	}
}

func newTestStore(t *testing.T) *RedisStore {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	return NewRedisStore(redis.NewClient(opts))
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	root := "treestore-test/" + t.Name()
	defer func() { _ = store.DeleteNode(ctx, root) }()

	type record struct {
		Name string `json:"name"`
	}

	require.NoError(t, store.WriteChild(ctx, root, "u1", record{Name: "Ana"}))
	require.NoError(t, store.WriteChild(ctx, root, "u2", record{Name: "Ben"}))

	children, err := store.ListChildren(ctx, root)
	require.NoError(t, err)
	assert.Len(t, children, 2)
	assert.Contains(t, children, "u1")
	assert.Contains(t, children, "u2")

	var got record
	require.NoError(t, store.ReadNode(ctx, root+"/u1", &got))
	assert.Equal(t, "Ana", got.Name)

	require.NoError(t, store.DeleteNode(ctx, root+"/u1"))
	children, err = store.ListChildren(ctx, root)
	require.NoError(t, err)
	assert.NotContains(t, children, "u1")

	err = store.ReadNode(ctx, root+"/u1", &got)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestRedisStoreAppendKeysSortChronologically(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	root := "treestore-test/" + t.Name()
	defer func() { _ = store.DeleteNode(ctx, root) }()

	var keys []string
	for i := 0; i < 5; i++ {
		key, err := store.AppendToList(ctx, root, map[string]int{"seq": i})
		require.NoError(t, err)
		keys = append(keys, key)
	}

	assert.True(t, sort.StringsAreSorted(keys), "append keys should sort in insertion order: %v", keys)

	children, err := store.ListChildren(ctx, root)
	require.NoError(t, err)
	assert.Len(t, children, 5)
}
