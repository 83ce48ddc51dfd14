package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/agentx-labs/uikit/internal/manifest"
)

// Source serves items by name from one registry.
type Source interface {
	Fetch(ctx context.Context, name string) (*manifest.Item, error)
	Index(ctx context.Context) (manifest.Index, error)
	String() string
}

// Endpoint is a registry location as configured in components.json. URL is a
// template that may contain {name} and {style} placeholders and ${VAR}
// environment references. Headers and Params values may reference
// environment variables too; entries whose variables are unset are dropped.
type Endpoint struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
}

// DefaultEndpoint builds the endpoint of the built-in registry rooted at base.
// Only http(s) bases get the styles/{style}/{name}.json layout; S3 and
// directory registries are addressed by item name below their root.
func DefaultEndpoint(base string) Endpoint {
	remote := strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://")
	if !remote || strings.Contains(base, "{name}") {
		return Endpoint{URL: base}
	}
	return Endpoint{URL: strings.TrimRight(base, "/") + "/styles/{style}/{name}.json"}
}

// IndexName is the pseudo item name under which registries serve their index.
const IndexName = "index"

var envRefRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} references. ok is false when any referenced
// variable is unset or empty.
func expandEnv(s string) (out string, ok bool) {
	ok = true
	out = envRefRe.ReplaceAllStringFunc(s, func(m string) string {
		v := os.Getenv(m[2 : len(m)-1])
		if v == "" {
			ok = false
		}
		return v
	})
	return out, ok
}

// ItemURL expands the endpoint for one item.
func (e Endpoint) ItemURL(name, style string) string {
	u := strings.ReplaceAll(e.URL, "{name}", name)
	u = strings.ReplaceAll(u, "{style}", style)
	u, _ = expandEnv(u)

	var query []string
	for _, k := range sortedKeys(e.Params) {
		v, ok := expandEnv(e.Params[k])
		if !ok || v == "" {
			continue
		}
		query = append(query, url.QueryEscape(k)+"="+url.QueryEscape(v))
	}
	if len(query) == 0 {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + strings.Join(query, "&")
}

// ExpandedHeaders returns the headers to send, with environment references
// expanded. Headers referencing unset variables are omitted.
func (e Endpoint) ExpandedHeaders() map[string]string {
	out := make(map[string]string, len(e.Headers))
	for k, v := range e.Headers {
		expanded, ok := expandEnv(v)
		if !ok || strings.TrimSpace(expanded) == "" {
			continue
		}
		out[k] = expanded
	}
	return out
}

// NewSource picks a Source implementation from the endpoint's scheme:
// s3:// → S3Source, http(s):// → HTTPSource, anything else is a local
// directory registry.
func NewSource(ep Endpoint, style string, opts SourceOptions) (Source, error) {
	raw, _ := expandEnv(ep.URL)
	switch {
	case strings.HasPrefix(raw, "s3://"):
		bucket, prefix, err := parseS3URL(raw)
		if err != nil {
			return nil, err
		}
		client := opts.S3
		if client == nil {
			client = NewS3Client()
		}
		return &S3Source{Client: client, Bucket: bucket, Prefix: prefix}, nil
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return &HTTPSource{Endpoint: ep, Style: style, Client: opts.HTTP}, nil
	default:
		root := strings.TrimPrefix(raw, "file://")
		return &DirSource{Root: root, Style: style}, nil
	}
}

// SourceOptions carries shared transports for NewSource.
type SourceOptions struct {
	HTTP *http.Client
	S3   S3API
}

// decodeItem validates and parses one item document.
func decodeItem(data []byte, format manifest.Format, where string) (*manifest.Item, error) {
	result, err := manifest.Validate(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing item %s: %w", where, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid registry item %s: %s", where, result.Summary())
	}
	return manifest.Parse(data, format, where)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
