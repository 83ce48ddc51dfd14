package registry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/agentx-labs/uikit/internal/logging"
	"github.com/agentx-labs/uikit/internal/manifest"
	"github.com/agentx-labs/uikit/internal/telemetry"
)

// ResolveOptions controls Resolve.
type ResolveOptions struct {
	NoDeps      bool   // install only the requested items
	Concurrency int    // fetch fan-out limit; <=0 means unlimited
	Cwd         string // base for local file references
}

// Resolve computes the dependency-first closure of names.
//
// The closure is gathered breadth-first with one concurrent fan-out per
// level, then ordered by a sequential depth-first walk so the result does not
// depend on fetch timing. Any reference that cannot be fetched fails the
// whole resolution, as does a dependency cycle.
func Resolve(ctx context.Context, f Fetcher, names []string, opts ResolveOptions) (set *ResolvedSet, err error) {
	ctx, span := telemetry.Start(ctx, "registry.resolve", attribute.StringSlice("items", names))
	defer func() { telemetry.End(span, err) }()

	progress := logging.NewProgress(logging.FromContext(ctx))

	roots := parseRoots(names, opts.Cwd)
	items, deps, err := gather(ctx, f, roots, opts)
	if err != nil {
		return nil, err
	}

	o := &orderer{
		items: items,
		deps:  deps,
		color: make(map[string]color, len(items)),
		roots: make(map[string]bool, len(roots)),
	}
	for _, r := range roots {
		o.roots[r.Key()] = true
	}
	for _, r := range baseLayersFirst(roots, items) {
		if err := o.visit(r.Key()); err != nil {
			return nil, err
		}
	}

	set = &ResolvedSet{Entries: o.entries, Manifest: MergeManifest(o.entries)}
	progress.Done(fmt.Sprintf("Resolved %d %s", len(set.Entries), pluralize("item", len(set.Entries))))
	return set, nil
}

func parseRoots(names []string, cwd string) []Ref {
	seen := make(map[string]bool, len(names))
	var roots []Ref
	for _, n := range names {
		r := ParseRef(n, cwd)
		if seen[r.Key()] {
			continue
		}
		seen[r.Key()] = true
		roots = append(roots, r)
	}
	return roots
}

// gather fetches the closure level by level. deps maps each key to its
// direct registry dependencies, deduplicated, in declaration order.
func gather(ctx context.Context, f Fetcher, roots []Ref, opts ResolveOptions) (map[string]*manifest.Item, map[string][]Ref, error) {
	items := make(map[string]*manifest.Item)
	deps := make(map[string][]Ref)

	level := roots
	for len(level) > 0 {
		fetched, err := fetchAll(ctx, f, level, opts.Concurrency)
		if err != nil {
			return nil, nil, err
		}
		for _, ref := range level {
			items[ref.Key()] = fetched[ref.Key()]
		}
		if opts.NoDeps {
			break
		}

		var next []Ref
		queued := make(map[string]bool)
		for _, ref := range level {
			seen := make(map[string]bool)
			for _, raw := range items[ref.Key()].RegistryDependencies {
				dep := ParseRef(raw, opts.Cwd)
				if seen[dep.Key()] {
					continue
				}
				seen[dep.Key()] = true
				deps[ref.Key()] = append(deps[ref.Key()], dep)

				if _, ok := items[dep.Key()]; ok || queued[dep.Key()] {
					continue
				}
				queued[dep.Key()] = true
				next = append(next, dep)
			}
		}
		level = next
	}
	return items, deps, nil
}

// baseLayersFirst moves style and theme roots ahead of the rest, keeping the
// requested order within each group.
func baseLayersFirst(roots []Ref, items map[string]*manifest.Item) []Ref {
	out := make([]Ref, 0, len(roots))
	for _, r := range roots {
		if items[r.Key()].IsBaseLayer() {
			out = append(out, r)
		}
	}
	for _, r := range roots {
		if !items[r.Key()].IsBaseLayer() {
			out = append(out, r)
		}
	}
	return out
}

type color int

const (
	white color = iota
	gray
	black
)

type orderer struct {
	items   map[string]*manifest.Item
	deps    map[string][]Ref
	roots   map[string]bool
	color   map[string]color
	stack   []string
	entries []*Entry
}

// visit appends key after all of its dependencies. A gray revisit means key
// is on the current path, i.e. a cycle.
func (o *orderer) visit(key string) error {
	switch o.color[key] {
	case black:
		return nil
	case gray:
		start := 0
		for i, k := range o.stack {
			if k == key {
				start = i
				break
			}
		}
		path := append(append([]string{}, o.stack[start:]...), key)
		return &CycleError{Path: path}
	}

	o.color[key] = gray
	o.stack = append(o.stack, key)

	var depKeys []string
	for _, d := range o.deps[key] {
		if err := o.visit(d.Key()); err != nil {
			return err
		}
		depKeys = append(depKeys, d.Key())
	}

	o.stack = o.stack[:len(o.stack)-1]
	o.color[key] = black
	o.entries = append(o.entries, &Entry{
		Key:  key,
		Item: o.items[key],
		Deps: depKeys,
		Root: o.roots[key],
	})
	return nil
}
