package reconcile

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Inventory holds both sides of a reconciliation.
type Inventory struct {
	// Remote is the remote listing in the order it was returned.
	Remote []RemoteItem

	// Local is the local listing in adapter order.
	Local []LocalItem

	// RemoteIndex maps each key to its first remote occurrence.
	RemoteIndex map[string]RemoteItem
}

// BuildInventory loads the remote and local indices concurrently.
// Both loads must succeed; the first error cancels the other.
func BuildInventory(ctx context.Context, adapter Adapter) (*Inventory, error) {
	var (
		remote []RemoteItem
		local  []LocalItem
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		remote, err = adapter.LoadRemoteIndex(gctx)
		return err
	})

	g.Go(func() error {
		var err error
		local, err = adapter.LoadLocalIndex(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Inventory{
		Remote:      remote,
		Local:       local,
		RemoteIndex: indexRemote(remote),
	}, nil
}

// indexRemote keeps the first item for every key.
func indexRemote(items []RemoteItem) map[string]RemoteItem {
	index := make(map[string]RemoteItem, len(items))
	for _, item := range items {
		if _, exists := index[item.Key]; exists {
			continue
		}
		index[item.Key] = item
	}
	return index
}
