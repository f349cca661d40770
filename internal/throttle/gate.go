// Package throttle limits how often an expensive upstream payload is
// refreshed. A cached payload is served until it has been read more than
// Every times or is older than TTL, whichever comes first.
package throttle

import (
	"context"
	"log"
	"time"
)

// State is the per-key throttle record.
type State struct {
	Count     int       `json:"count"`
	FetchedAt time.Time `json:"fetchedAt"`
	Payload   []byte    `json:"payload"`
}

// Store persists throttle state. Load returns nil, nil for unknown keys.
type Store interface {
	Load(ctx context.Context, key string) (*State, error)
	Save(ctx context.Context, key string, st *State, ttl time.Duration) error
}

// Config controls when a cached payload goes stale.
// Every <= 0 disables the read counter, TTL <= 0 disables expiry.
type Config struct {
	Every int
	TTL   time.Duration
}

// FetchFunc loads a fresh payload from upstream.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Gate decides between serving cached state and calling upstream.
// Counter updates are last-writer-wins; concurrent readers may undercount.
type Gate struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// NewGate creates a Gate backed by store.
func NewGate(store Store, cfg Config) *Gate {
	return &Gate{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Do returns the payload for key and whether it was freshly fetched.
// A store failure degrades to fetching from upstream.
func (g *Gate) Do(ctx context.Context, key string, fetch FetchFunc) ([]byte, bool, error) {
	st, err := g.store.Load(ctx, key)
	if err != nil {
		log.Printf("Throttle state load failed for %s: %v", key, err)
		st = nil
	}

	if st != nil && !g.Stale(st) {
		st.Count++
		if err := g.store.Save(ctx, key, st, g.remaining(st)); err != nil {
			log.Printf("Throttle state save failed for %s: %v", key, err)
		}
		return st.Payload, false, nil
	}

	payload, err := fetch(ctx)
	if err != nil {
		return nil, false, err
	}

	fresh := &State{FetchedAt: g.now(), Payload: payload}
	if err := g.store.Save(ctx, key, fresh, g.cfg.TTL); err != nil {
		log.Printf("Throttle state save failed for %s: %v", key, err)
	}
	return payload, true, nil
}

// Stale reports whether st must be refreshed before it is served again.
func (g *Gate) Stale(st *State) bool {
	if g.cfg.Every > 0 && st.Count > g.cfg.Every {
		return true
	}
	if g.cfg.TTL > 0 && g.now().Sub(st.FetchedAt) >= g.cfg.TTL {
		return true
	}
	return false
}

func (g *Gate) remaining(st *State) time.Duration {
	if g.cfg.TTL <= 0 {
		return 0
	}
	left := g.cfg.TTL - g.now().Sub(st.FetchedAt)
	if left < time.Millisecond {
		left = time.Millisecond
	}
	return left
}
