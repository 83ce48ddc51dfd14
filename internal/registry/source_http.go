package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/agentx-labs/uikit/internal/manifest"
)

// maxItemSize bounds a single registry response.
const maxItemSize = 8 << 20

// HTTPSource fetches items from a remote registry.
type HTTPSource struct {
	Endpoint Endpoint
	Style    string
	Client   *http.Client
}

func (s *HTTPSource) String() string { return s.Endpoint.URL }

// Fetch retrieves and validates one item.
func (s *HTTPSource) Fetch(ctx context.Context, name string) (*manifest.Item, error) {
	u := s.Endpoint.ItemURL(name, s.Style)
	data, err := s.get(ctx, u, s.Endpoint.ExpandedHeaders())
	if err != nil {
		return nil, notFound(name, u, err)
	}
	return decodeItem(data, manifest.FormatJSON, u)
}

// Index retrieves the registry index, served under the item name "index".
func (s *HTTPSource) Index(ctx context.Context) (manifest.Index, error) {
	u := s.Endpoint.ItemURL(IndexName, s.Style)
	data, err := s.get(ctx, u, s.Endpoint.ExpandedHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetching registry index %s: %w", u, err)
	}
	return manifest.ParseIndex(data, manifest.FormatJSON, u)
}

func (s *HTTPSource) get(ctx context.Context, u string, headers map[string]string) ([]byte, error) {
	return httpGet(ctx, s.Client, u, headers)
}

var errNotFoundStatus = errors.New("not found")

// httpGet performs a GET and returns the body of a 200 response.
func httpGet(ctx context.Context, client *http.Client, u string, headers map[string]string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, errNotFoundStatus
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxItemSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}
