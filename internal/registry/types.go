package registry

import "github.com/agentx-labs/uikit/internal/manifest"

// Entry is one item in a resolved set.
type Entry struct {
	Key  string         // identity used for deduplication
	Item *manifest.Item // fetched payload
	Deps []string       // keys of direct registry dependencies
	Root bool           // requested explicitly
}

// ResolvedSet is the dependency-first closure of a request.
type ResolvedSet struct {
	Entries  []*Entry
	Manifest Manifest
}

// Keys returns the entry keys in install order.
func (s *ResolvedSet) Keys() []string {
	keys := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Items returns the items in install order.
func (s *ResolvedSet) Items() []*manifest.Item {
	items := make([]*manifest.Item, len(s.Entries))
	for i, e := range s.Entries {
		items[i] = e.Item
	}
	return items
}

// Roots returns the items that were requested explicitly.
func (s *ResolvedSet) Roots() []*manifest.Item {
	var items []*manifest.Item
	for _, e := range s.Entries {
		if e.Root {
			items = append(items, e.Item)
		}
	}
	return items
}

// Manifest is the union of everything the resolved items need besides their
// files.
type Manifest struct {
	Dependencies    []string         // npm packages, first-seen order
	DevDependencies []string         // npm dev packages, first-seen order
	CSSVars         manifest.CSSVars // merged key by key, last resolved wins
	CSS             []map[string]any // fragments in resolution order
	Tailwind        map[string]any   // deep-merged config fragments
	Docs            []string         // item docs in resolution order
}
