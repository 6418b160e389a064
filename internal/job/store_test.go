package job

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimozcann/infoprobe/internal/model"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func storeContract(t *testing.T, s Store) {
	ctx := context.Background()
	created := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	j := &model.Job{
		ID:        "abc",
		Status:    model.JobPending,
		Config:    model.ScanConfig{CheckSubdomains: true, WebhookURL: "https://hook"},
		CreatedAt: created,
		UpdatedAt: created,
	}

	_, err := s.Get(ctx, "abc")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Update(ctx, j), ErrNotFound)

	require.NoError(t, s.Create(ctx, j))
	require.ErrorIs(t, s.Create(ctx, j), ErrExists)

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, model.JobPending, got.Status)
	assert.True(t, got.Config.CheckSubdomains)
	assert.True(t, created.Equal(got.CreatedAt))

	got.Status = model.JobCompleted
	got.Output = "Success!"
	got.Progress = model.Progress{Checked: 2, Total: 2}
	require.NoError(t, s.Update(ctx, got))

	again, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, model.JobCompleted, again.Status)
	assert.Equal(t, "Success!", again.Output)
	assert.Equal(t, 2, again.Progress.Checked)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &model.Job{ID: "x", Status: model.JobPending}))

	got, err := s.Get(ctx, "x")
	require.NoError(t, err)
	got.Status = model.JobError

	again, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, model.JobPending, again.Status)
}

func TestRedisStore(t *testing.T) {
	s, _ := newRedisStore(t)
	storeContract(t, s)
}

func TestRedisStoreLayout(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, s.Create(context.Background(), &model.Job{ID: "k1", Status: model.JobPending}))

	raw, err := mr.Get(KeyPrefix + "k1")
	require.NoError(t, err)
	assert.Contains(t, raw, `"job_id":"k1"`)
	assert.Contains(t, raw, `"status":"pending"`)
	assert.Zero(t, mr.TTL(KeyPrefix+"k1"))
}

func TestRedisStoreCorruptValue(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, mr.Set(KeyPrefix+"bad", "{not json"))
	_, err := s.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRunnerWithRedisStore(t *testing.T) {
	s, _ := newRedisStore(t)
	r := NewRunner(s, &fakeScanner{report: urgentReport(), steps: 2}, nil, nil)
	id, err := r.Submit(context.Background(), model.ScanConfig{})
	require.NoError(t, err)
	r.Wait()

	j, err := r.Status(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.JobCompleted, j.Status)
}

func TestNewRedisClient(t *testing.T) {
	_, err := NewRedisClient(RedisConfig{})
	require.ErrorIs(t, err, ErrEmptyAddress)

	mr := miniredis.RunT(t)
	client, err := NewRedisClient(RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()
}
