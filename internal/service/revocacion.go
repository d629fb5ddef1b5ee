package service

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocaciones remembers logged-out token ids until the token would expire.
type Revocaciones interface {
	Revocar(ctx context.Context, jti string, hasta time.Time) error
	Revocado(ctx context.Context, jti string) (bool, error)
}

const prefijoRevocado = "revocado:"

type revocacionesRedis struct{ rdb *redis.Client }

func NewRevocacionesRedis(rdb *redis.Client) Revocaciones {
	return &revocacionesRedis{rdb: rdb}
}

func (r *revocacionesRedis) Revocar(ctx context.Context, jti string, hasta time.Time) error {
	ttl := time.Until(hasta)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, prefijoRevocado+jti, 1, ttl).Err()
}

func (r *revocacionesRedis) Revocado(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, prefijoRevocado+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevocacionesMemoria is the single-process fallback used when REDIS_URL is empty.
type RevocacionesMemoria struct {
	mu    sync.Mutex
	hasta map[string]time.Time
	now   func() time.Time
}

func NewRevocacionesMemoria() *RevocacionesMemoria {
	return &RevocacionesMemoria{hasta: make(map[string]time.Time), now: time.Now}
}

func (r *RevocacionesMemoria) Revocar(_ context.Context, jti string, hasta time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ahora := r.now()
	for k, v := range r.hasta {
		if !v.After(ahora) {
			delete(r.hasta, k)
		}
	}
	if hasta.After(ahora) {
		r.hasta[jti] = hasta
	}
	return nil
}

func (r *RevocacionesMemoria) Revocado(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.hasta[jti]
	return ok && v.After(r.now()), nil
}
