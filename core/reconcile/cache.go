package reconcile

import (
	"context"
	"sort"
	"sync"
	"time"

	"catalog-sync/core/remote"

	"golang.org/x/sync/singleflight"
)

// RemoteIndex maps local ids to the managed remote products carrying them in metadata.
// It lets a run recover products whose mapping was never written.
type RemoteIndex struct {
	client remote.Client
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]remote.Product
	built   time.Time
	sf      singleflight.Group
}

// NewRemoteIndex creates an index over client. A zero ttl rebuilds on every lookup.
func NewRemoteIndex(client remote.Client, ttl time.Duration) *RemoteIndex {
	return &RemoteIndex{client: client, ttl: ttl}
}

// isExpired must be called with mu held.
func (x *RemoteIndex) isExpired() bool {
	if x.entries == nil || x.ttl == 0 {
		return true
	}
	return time.Since(x.built) > x.ttl
}

// Lookup returns the managed product recorded for localID, or nil.
func (x *RemoteIndex) Lookup(ctx context.Context, localID string) (*remote.Product, error) {
	if err := x.getOrBuild(ctx); err != nil {
		return nil, err
	}
	x.mu.RLock()
	p, ok := x.entries[localID]
	x.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Put records a product created during the current run.
func (x *RemoteIndex) Put(p remote.Product) {
	localID := p.LocalID()
	if localID == "" {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.entries == nil {
		return
	}
	x.entries[localID] = p
}

// Invalidate drops the index so the next lookup lists the provider again.
func (x *RemoteIndex) Invalidate() {
	x.mu.Lock()
	x.entries = nil
	x.mu.Unlock()
}

func (x *RemoteIndex) getOrBuild(ctx context.Context) error {
	// Fast path: check if index exists and is fresh
	x.mu.RLock()
	fresh := !x.isExpired()
	x.mu.RUnlock()
	if fresh {
		return nil
	}

	// Slow path: build using singleflight to prevent stampedes
	_, err, _ := x.sf.Do("index", func() (interface{}, error) {
		x.mu.RLock()
		fresh := !x.isExpired()
		x.mu.RUnlock()
		if fresh {
			return nil, nil
		}

		entries, err := buildIndex(ctx, x.client)
		if err != nil {
			return nil, err
		}

		x.mu.Lock()
		x.entries = entries
		x.built = time.Now()
		x.mu.Unlock()
		return nil, nil
	})
	return err
}

// buildIndex keeps the first product in id order when a local id is duplicated.
func buildIndex(ctx context.Context, client remote.Client) (map[string]remote.Product, error) {
	products, err := client.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	entries := make(map[string]remote.Product, len(products))
	for _, p := range products {
		if !p.Active || p.Metadata[remote.MetadataManagedBy] != remote.ManagedByValue {
			continue
		}
		localID := p.LocalID()
		if localID == "" {
			continue
		}
		if _, seen := entries[localID]; seen {
			continue
		}
		entries[localID] = p
	}
	return entries, nil
}
