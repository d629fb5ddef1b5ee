//go:build integration

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type remitenteSeguro struct {
	mu       sync.Mutex
	enviados []string
	fallar   bool
}

func (r *remitenteSeguro) Configurado() bool { return true }

func (r *remitenteSeguro) EnviarBienvenida(_, correo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fallar {
		return errors.New("smtp caido")
	}
	r.enviados = append(r.enviados, correo)
	return nil
}

func (r *remitenteSeguro) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.enviados)
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestPool_Redis(t *testing.T) {
	rdb := newRedis(t)
	rem := &remitenteSeguro{}
	pool := NewPool(rdb, map[string]Handler{JobBienvenida: NewEmailWorker(rem)})
	pool.timeout = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx, 2)

	d := NewDispatcher(rdb)
	require.NoError(t, d.EnqueueBienvenida(ctx, "Ana", "ana@example.com"))
	require.NoError(t, d.EnqueueBienvenida(ctx, "Luis", "luis@example.com"))

	assert.Eventually(t, func() bool { return rem.total() == 2 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	pool.Wait()
}

func TestPool_RedisDLQ(t *testing.T) {
	rdb := newRedis(t)
	rem := &remitenteSeguro{fallar: true}
	pool := NewPool(rdb, map[string]Handler{JobBienvenida: NewEmailWorker(rem)})
	pool.timeout = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		pool.Wait()
	}()
	pool.Start(ctx, 1)
	require.NoError(t, NewDispatcher(rdb).EnqueueBienvenida(ctx, "Ana", "ana@example.com"))

	dead := NewDeadLetters(rdb)
	assert.Eventually(t, func() bool {
		n, err := dead.Len(ctx, QueueEmail)
		return err == nil && n == 1
	}, 5*time.Second, 50*time.Millisecond)

	entries, err := dead.Entries(ctx, QueueEmail, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, JobBienvenida, entries[0].JobType)
	assert.Equal(t, MaxAttempts, entries[0].Attempts)
	assert.False(t, entries[0].FailedAt.IsZero())
}

func TestDeadLetters_Retry(t *testing.T) {
	rdb := newRedis(t)
	ctx := context.Background()
	dead := NewDeadLetters(rdb)

	require.NoError(t, dead.Push(ctx, QueueEmail, Job{Type: JobBienvenida, Payload: json.RawMessage(`{"correo":"a@example.com"}`), Attempts: 3}, "smtp caido"))
	require.NoError(t, dead.Push(ctx, QueueEmail, Job{Payload: json.RawMessage(`"basura"`)}, "invalid job"))

	moved, err := dead.Retry(ctx, QueueEmail, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	n, err := dead.Len(ctx, QueueEmail)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "the job without a type stays")

	raw, err := rdb.RPop(ctx, QueueEmail).Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, JobBienvenida, job.Type)
	assert.Zero(t, job.Attempts)
}
