package add

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"github.com/agentx-labs/uikit/internal/install"
	"github.com/agentx-labs/uikit/internal/logging"
	"github.com/agentx-labs/uikit/internal/manifest"
	"github.com/agentx-labs/uikit/internal/project"
	"github.com/agentx-labs/uikit/internal/registry"
	"github.com/agentx-labs/uikit/internal/telemetry"
)

// Removed reports what Remove did for one component.
type Removed struct {
	Name    string
	Deleted []string // files that were deleted
	Absent  []string // files that were already gone
}

// Remove deletes the files of the named components and drops them from
// components.json. Dependencies and npm packages are left alone. Every name
// is fetched before anything is deleted, so an unknown name changes nothing.
func (o *Orchestrator) Remove(ctx context.Context, cwd string, names []string) (_ []Removed, err error) {
	ctx, span := telemetry.Start(ctx, "remove", attribute.StringSlice("items", names))
	defer func() { telemetry.End(span, err) }()

	if len(names) == 0 {
		return nil, ErrNoItems
	}
	s := &session{opts: Options{Cwd: cwd}}
	if err := s.preflight(ctx); err != nil {
		return nil, err
	}
	client, err := o.Client(s.cfg)
	if err != nil {
		return nil, err
	}

	refs := make([]registry.Ref, len(names))
	keys := make([]string, len(names))
	for i, name := range names {
		refs[i] = registry.ParseRef(name, s.root)
		keys[i] = refs[i].Key()
	}
	fetched, err := client.Prefetch(ctx, refs, o.Concurrency)
	if err != nil {
		return nil, err
	}
	items := make([]*manifest.Item, len(names))
	for i, k := range keys {
		items[i] = fetched[k]
	}
	cat, err := o.catalog()
	if err != nil {
		return nil, err
	}
	seed, err := project.Resolve(s.cfg, s.info, items, cat, project.ResolveOptions{Init: true})
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx)
	var out []Removed
	for i, it := range items {
		r := Removed{Name: names[i]}
		for _, f := range it.Files {
			target, err := install.ResolveTarget(it, f, seed, install.TargetOptions{})
			if err != nil {
				return out, err
			}
			switch err := os.Remove(target); {
			case err == nil:
				r.Deleted = append(r.Deleted, target)
				log.Debug("deleted", "item", r.Name, "path", target)
			case errors.Is(err, fs.ErrNotExist):
				r.Absent = append(r.Absent, target)
			default:
				return out, fmt.Errorf("removing %s: %w", target, err)
			}
		}
		out = append(out, r)
	}

	keep := slices.DeleteFunc(slices.Clone(s.cfg.Components), func(c string) bool {
		return slices.Contains(keys, c)
	})
	if len(keep) != len(s.cfg.Components) {
		if err := s.cfg.SaveComponents(keep); err != nil {
			return out, err
		}
	}
	return out, nil
}
