package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentx-labs/uikit/internal/manifest"
)

// itemExtensions is the lookup order for item files in a directory registry.
var itemExtensions = []string{".json", ".yaml", ".yml"}

// indexFiles are skipped when scanning a directory for items.
var indexFiles = map[string]bool{
	"index.json":    true,
	"registry.json": true,
}

// DirSource serves items from a local directory. Root may contain {style}.
// Files without inline content are read from Root joined with their path.
type DirSource struct {
	Root  string
	Style string
}

func (s *DirSource) String() string { return s.root() }

func (s *DirSource) root() string {
	return strings.ReplaceAll(s.Root, "{style}", s.Style)
}

// Fetch loads <root>/<name>.{json,yaml,yml}.
func (s *DirSource) Fetch(ctx context.Context, name string) (*manifest.Item, error) {
	root := s.root()
	for _, ext := range itemExtensions {
		p := filepath.Join(root, filepath.FromSlash(name)+ext)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		return loadItemFile(p, root)
	}
	return nil, notFound(name, root, nil)
}

// Index returns index.json when present, the items list of registry.json
// otherwise, and falls back to scanning the directory.
func (s *DirSource) Index(ctx context.Context) (manifest.Index, error) {
	root := s.root()
	if data, err := os.ReadFile(filepath.Join(root, "index.json")); err == nil {
		return manifest.ParseIndex(data, manifest.FormatJSON, "index.json")
	}
	if data, err := os.ReadFile(filepath.Join(root, "registry.json")); err == nil {
		var reg struct {
			Items manifest.Index `json:"items"`
		}
		if err := json.Unmarshal(data, &reg); err != nil {
			return nil, fmt.Errorf("parsing registry.json: %w", err)
		}
		return reg.Items, nil
	}
	return s.scan(root)
}

// scan walks root for item files. Unparseable files are skipped.
func (s *DirSource) scan(root string) (manifest.Index, error) {
	var idx manifest.Index
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if indexFiles[d.Name()] || !hasItemExtension(d.Name()) {
			return nil
		}
		item, err := manifest.ParseFile(path)
		if err != nil {
			return nil
		}
		idx = append(idx, *item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning registry %s: %w", root, err)
	}
	sort.Slice(idx, func(i, j int) bool { return idx[i].Name < idx[j].Name })
	return idx, nil
}

func hasItemExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range itemExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// loadItemFile reads, validates, and parses an item file, then inlines the
// content of files that reference a path under root.
func loadItemFile(path, root string) (*manifest.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	item, err := decodeItem(data, manifest.FormatFor(path), path)
	if err != nil {
		return nil, err
	}
	for i := range item.Files {
		f := &item.Files[i]
		if f.Content != "" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			return nil, fmt.Errorf("item %s: reading file %s: %w", item.Name, f.Path, err)
		}
		f.Content = string(content)
	}
	return item, nil
}
