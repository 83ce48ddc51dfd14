package registry

import (
	"context"
	"sync"

	"github.com/agentx-labs/uikit/internal/manifest"
)

// memFetcher serves items from a map and counts fetches per key.
type memFetcher struct {
	mu    sync.Mutex
	items map[string]*manifest.Item
	calls map[string]int
}

func newMemFetcher(items ...*manifest.Item) *memFetcher {
	f := &memFetcher{items: make(map[string]*manifest.Item), calls: make(map[string]int)}
	for _, it := range items {
		f.items[it.Name] = it
	}
	return f
}

func (f *memFetcher) Fetch(ctx context.Context, ref Ref) (*manifest.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ref.Key()]++
	it, ok := f.items[ref.Key()]
	if !ok {
		return nil, notFound(ref.Raw, "memory", nil)
	}
	return it, nil
}

func ui(name string, deps ...string) *manifest.Item {
	return &manifest.Item{Name: name, Type: "registry:ui", RegistryDependencies: deps}
}
