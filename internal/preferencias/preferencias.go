// Package preferencias keeps small per-user values that survive restarts,
// such as the last selected ciudad.
package preferencias

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Store is a per-user key/value store. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, usuarioID, clave string) (valor string, ok bool, err error)
	Set(ctx context.Context, usuarioID, clave, valor string) error
	Delete(ctx context.Context, usuarioID, clave string) error
}

// ── Memoria ──────────────────────────────────────────────────────────────────

type Memoria struct {
	mu    sync.RWMutex
	datos map[string]map[string]string
}

func NewMemoria() *Memoria {
	return &Memoria{datos: make(map[string]map[string]string)}
}

func (m *Memoria) Get(_ context.Context, usuarioID, clave string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.datos[usuarioID][clave]
	return v, ok, nil
}

func (m *Memoria) Set(_ context.Context, usuarioID, clave, valor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.datos[usuarioID]
	if !ok {
		u = make(map[string]string)
		m.datos[usuarioID] = u
	}
	u[clave] = valor
	return nil
}

func (m *Memoria) Delete(_ context.Context, usuarioID, clave string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.datos[usuarioID], clave)
	return nil
}

// ── Redis ────────────────────────────────────────────────────────────────────

// Redis stores each user's preferences in one hash, "pref:<usuarioID>".
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis { return &Redis{rdb: rdb} }

func key(usuarioID string) string { return "pref:" + usuarioID }

func (r *Redis) Get(ctx context.Context, usuarioID, clave string) (string, bool, error) {
	v, err := r.rdb.HGet(ctx, key(usuarioID), clave).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("preferencias: %w", err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, usuarioID, clave, valor string) error {
	if err := r.rdb.HSet(ctx, key(usuarioID), clave, valor).Err(); err != nil {
		return fmt.Errorf("preferencias: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, usuarioID, clave string) error {
	if err := r.rdb.HDel(ctx, key(usuarioID), clave).Err(); err != nil {
		return fmt.Errorf("preferencias: %w", err)
	}
	return nil
}
