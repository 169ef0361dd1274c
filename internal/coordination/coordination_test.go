package coordination

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store: a map standing in for go-redis.
type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeStore { return &fakeStore{data: map[string]string{}} }

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value
	return true, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func TestSessionCreatePollDeletesOnceDelivered(t *testing.T) {
	g := New(newFakeStore())
	ctx := context.Background()

	require.NoError(t, g.CreateSession(ctx, "abc123", 0))

	s, found, err := g.PollSession(ctx, "abc123")
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, s.URL)

	sent, err := g.SendSession(ctx, "abc123", "http://example.com/list.m3u", 0)
	require.NoError(t, err)
	assert.True(t, sent)

	s, found, err = g.PollSession(ctx, "abc123")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "http://example.com/list.m3u", s.URL)

	_, found, err = g.PollSession(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProcessingLockRejectsSecondAcquire(t *testing.T) {
	g := New(newFakeStore())
	ctx := context.Background()

	ok, err := g.AcquireProcessingLock(ctx, "hash1", "job1", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.AcquireProcessingLock(ctx, "hash1", "job2", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.ReleaseProcessingLock(ctx, "hash1"))

	ok, err = g.AcquireProcessingLock(ctx, "hash1", "job2", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReportProgressSetsCanNavigateAtThreshold(t *testing.T) {
	store := newFakeStore()
	g := New(store).ForHash("hash1")
	ctx := context.Background()

	g.ReportProgress(ctx, 100, 2, 0, "parsing")
	p, found, err := New(store).GetProgress(ctx, "hash1")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, p.CanNavigate)

	g.ReportProgress(ctx, 500, 5, 1, "parsing")
	p, found, err = New(store).GetProgress(ctx, "hash1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, p.CanNavigate)
}

func TestMarkCompleteAndFailed(t *testing.T) {
	g := New(newFakeStore())
	ctx := context.Background()

	require.NoError(t, g.MarkComplete(ctx, "hash1", 1000, 10, 2))
	p, found, err := g.GetProgress(ctx, "hash1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ProgressComplete, p.Status)
	assert.True(t, p.CanNavigate)

	require.NoError(t, g.MarkFailed(ctx, "hash2", assertErr("boom")))
	p, found, err = g.GetProgress(ctx, "hash2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ProgressFailed, p.Status)
	assert.Equal(t, "boom", p.Error)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
