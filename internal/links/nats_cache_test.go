package links

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memKV implements the slice of jetstream.KeyValue the cache uses.
type memKV struct {
	jetstream.KeyValue
	data   map[string][]byte
	getErr error
}

type memEntry struct {
	jetstream.KeyValueEntry
	value []byte
}

func (e memEntry) Value() []byte { return e.value }

func (kv *memKV) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	if kv.getErr != nil {
		return nil, kv.getErr
	}
	v, ok := kv.data[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return memEntry{value: v}, nil
}

func (kv *memKV) Put(_ context.Context, key string, value []byte) (uint64, error) {
	kv.data[key] = value
	return uint64(len(kv.data)), nil
}

func TestNATSCache(t *testing.T) {
	ctx := context.Background()
	checked := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	cases := []struct {
		name    string
		kv      *memKV
		put     *Entry
		want    *Entry
		wantErr string
	}{
		{
			name: "round trip",
			kv:   &memKV{data: map[string][]byte{}},
			put:  &Entry{URL: "https://example.com", Status: 200, OK: true, CheckedAt: checked},
			want: &Entry{URL: "https://example.com", Status: 200, OK: true, CheckedAt: checked},
		},
		{
			name: "miss",
			kv:   &memKV{data: map[string][]byte{}},
		},
		{
			name:    "corrupt value",
			kv:      &memKV{data: map[string][]byte{kvKey("https://example.com"): []byte("{")}},
			wantErr: "unmarshal",
		},
		{
			name:    "bucket failure",
			kv:      &memKV{data: map[string][]byte{}, getErr: errors.New("timeout")},
			wantErr: "failed to get cache entry",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cache := &NATSCache{kv: c.kv}
			if c.put != nil {
				require.NoError(t, cache.Put(ctx, c.put))
				assert.Contains(t, c.kv.data, kvKey(c.put.URL))
			}

			got, err := cache.Get(ctx, "https://example.com")
			if c.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), c.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
			assert.NoError(t, cache.Close())
		})
	}
}

func TestNATSCacheServer(t *testing.T) {
	url := os.Getenv("DOCSITE_TEST_NATS_URL")
	if url == "" {
		t.Skip("DOCSITE_TEST_NATS_URL not set")
	}
	ctx := context.Background()

	cache, err := NewNATSCache(ctx, url, "docsite-test-links")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	e := &Entry{URL: "https://example.com/" + t.Name(), Status: 404, Error: "not found", CheckedAt: time.Now().UTC().Truncate(time.Second), FailureCount: 2}
	require.NoError(t, cache.Put(ctx, e))

	got, err := cache.Get(ctx, e.URL)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, e.Status, got.Status)
	assert.Equal(t, e.FailureCount, got.FailureCount)
	assert.True(t, e.CheckedAt.Equal(got.CheckedAt))

	miss, err := cache.Get(ctx, "https://example.com/never-stored")
	require.NoError(t, err)
	assert.Nil(t, miss)
}
