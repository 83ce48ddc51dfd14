package registry

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/agentx-labs/uikit/internal/logging"
	"github.com/agentx-labs/uikit/internal/manifest"
	"github.com/agentx-labs/uikit/internal/telemetry"
)

// Fetcher retrieves a single item by reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref Ref) (*manifest.Item, error)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	Default    Source            // serves bare names and the built-in namespace
	Namespaces map[string]Source // "@acme" → source
	HTTP       *http.Client      // used for URL references
}

// Client resolves references against the configured registries and memoizes
// results for the lifetime of the value. Nothing is persisted.
type Client struct {
	def        Source
	namespaces map[string]Source
	http       *http.Client
	cache      *gocache.Cache

	mu       sync.Mutex
	inflight map[string]*call
}

type call struct {
	done chan struct{}
	item *manifest.Item
	err  error
}

// NewClient creates a Client.
func NewClient(opts ClientOptions) *Client {
	httpc := opts.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		def:        opts.Default,
		namespaces: opts.Namespaces,
		http:       httpc,
		cache:      gocache.New(gocache.NoExpiration, 0),
		inflight:   make(map[string]*call),
	}
}

// Fetch returns the item for ref. Concurrent fetches of the same key share
// one request; results are cached by key.
func (c *Client) Fetch(ctx context.Context, ref Ref) (*manifest.Item, error) {
	key := ref.Key()
	if v, ok := c.cache.Get(key); ok {
		return v.(*manifest.Item), nil
	}

	c.mu.Lock()
	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-cl.done:
			return cl.item, cl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()

	cl.item, cl.err = c.fetch(ctx, ref)
	if cl.err == nil {
		c.cache.Set(key, cl.item, gocache.NoExpiration)
	}

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	close(cl.done)

	return cl.item, cl.err
}

func (c *Client) fetch(ctx context.Context, ref Ref) (item *manifest.Item, err error) {
	ctx, span := telemetry.Start(ctx, "registry.fetch", attribute.String("item", ref.Key()))
	defer func() { telemetry.End(span, err) }()

	logging.FromContext(ctx).Debug("fetching item", "ref", ref.Raw)

	switch ref.Kind {
	case RefURL:
		data, err := httpGet(ctx, c.http, ref.Name, nil)
		if err != nil {
			return nil, notFound(ref.Raw, ref.Name, err)
		}
		return decodeItem(data, manifest.FormatJSON, ref.Name)
	case RefFile:
		item, err := loadItemFile(ref.Name, filepath.Dir(ref.Name))
		if err != nil {
			return nil, notFound(ref.Raw, ref.Name, err)
		}
		return item, nil
	}

	src, err := c.sourceFor(ref)
	if err != nil {
		return nil, err
	}
	return src.Fetch(ctx, ref.Name)
}

func (c *Client) sourceFor(ref Ref) (Source, error) {
	if ref.Kind == RefNamespace && ref.Key() != ref.Name {
		src, ok := c.namespaces[ref.Namespace]
		if !ok {
			return nil, &ItemNotFoundError{
				Name: ref.Raw,
				Err:  fmt.Errorf("registry %s is not configured in components.json", ref.Namespace),
			}
		}
		return src, nil
	}
	if c.def == nil {
		return nil, &ItemNotFoundError{Name: ref.Raw, Err: fmt.Errorf("no default registry configured")}
	}
	return c.def, nil
}

// Index returns the default registry's index.
func (c *Client) Index(ctx context.Context) (manifest.Index, error) {
	if c.def == nil {
		return nil, fmt.Errorf("no default registry configured")
	}
	return c.def.Index(ctx)
}

// Prefetch fetches refs concurrently with at most limit requests in flight
// and returns the items keyed by Ref.Key. The first error cancels the rest.
func (c *Client) Prefetch(ctx context.Context, refs []Ref, limit int) (map[string]*manifest.Item, error) {
	return fetchAll(ctx, c, refs, limit)
}

// fetchAll is the fan-out shared by Prefetch and the resolver.
func fetchAll(ctx context.Context, f Fetcher, refs []Ref, limit int) (map[string]*manifest.Item, error) {
	items := make([]*manifest.Item, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, ref := range refs {
		g.Go(func() error {
			item, err := f.Fetch(gctx, ref)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*manifest.Item, len(refs))
	for i, ref := range refs {
		out[ref.Key()] = items[i]
	}
	return out, nil
}
