package add

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/agentx-labs/uikit/internal/install"
	"github.com/agentx-labs/uikit/internal/logging"
	"github.com/agentx-labs/uikit/internal/manifest"
	"github.com/agentx-labs/uikit/internal/registry"
	"github.com/agentx-labs/uikit/internal/telemetry"
	"github.com/agentx-labs/uikit/internal/transform"
)

// postInstall installs npm packages, merges CSS variables, CSS rules and
// Tailwind config fragments, and records the added components. Package,
// stylesheet and config problems are warnings; only a failure to save
// components.json fails the run.
func (o *Orchestrator) postInstall(ctx context.Context, s *session) (err error) {
	ctx, span := telemetry.Start(ctx, "add.post-install")
	defer func() { telemetry.End(span, err) }()
	log := logging.FromContext(ctx)

	var written []*registry.Entry
	var extra []string
	for _, p := range s.plans {
		if p.result.OK() {
			written = append(written, p.entry)
			extra = append(extra, p.tc.Packages()...)
		}
	}
	merged := registry.MergeManifest(written)
	deps := appendMissing(merged.Dependencies, extra)
	s.report.Docs = merged.Docs

	installer := o.installer(s.info.PackageManager)
	for _, group := range []struct {
		specs []string
		dev   bool
		into  *[]string
	}{
		{deps, false, &s.report.Dependencies},
		{merged.DevDependencies, true, &s.report.DevDependencies},
	} {
		missing := install.Missing(s.info, group.specs)
		if len(missing) == 0 {
			continue
		}
		if err := installer.Install(ctx, s.root, missing, group.dev); err != nil {
			msg := fmt.Sprintf("installing %v: %v", missing, err)
			log.Warn("package install failed", "err", err)
			s.report.Warnings = append(s.report.Warnings, msg)
			continue
		}
		*group.into = missing
	}

	v4 := s.info.TailwindV4(s.cfg)
	if css := s.cfg.Tailwind.CSS; css != "" {
		path := filepath.Join(s.root, filepath.FromSlash(css))
		if !merged.CSSVars.Empty() {
			changed, err := install.UpdateCSSFile(path, &merged.CSSVars, v4)
			switch {
			case err != nil:
				log.Warn("css variables not applied", "err", err)
				s.report.Warnings = append(s.report.Warnings, fmt.Sprintf("updating CSS variables: %v", err))
			case changed:
				s.report.CSSFile = path
			}
		}
		if len(merged.CSS) > 0 {
			changed, err := install.UpdateCSSRulesFile(path, merged.CSS)
			switch {
			case err != nil:
				log.Warn("css rules not applied", "err", err)
				s.report.Warnings = append(s.report.Warnings, fmt.Sprintf("updating CSS rules: %v", err))
			case changed:
				s.report.CSSFile = path
			}
		}
	}

	// Tailwind CSS 4 keeps its configuration in the stylesheet.
	if cfgFile := s.cfg.Tailwind.Config; cfgFile != "" && !v4 && len(merged.Tailwind) > 0 {
		path := filepath.Join(s.root, filepath.FromSlash(cfgFile))
		changed, err := install.RewriteFile(path, func(src []byte) ([]byte, error) {
			return transform.UpdateTailwindConfig(ctx, path, src, merged.Tailwind)
		})
		switch {
		case err != nil:
			log.Warn("tailwind config not updated", "err", err)
			s.report.Warnings = append(s.report.Warnings, fmt.Sprintf("updating tailwind config: %v", err))
		case changed:
			s.report.TailwindConfig = path
		}
	}

	components := s.reconcile(ctx, written)
	if !slices.Equal(components, sortedCopy(s.cfg.Components)) {
		if err := s.cfg.SaveComponents(components); err != nil {
			return err
		}
	}
	s.report.Components = components
	return nil
}

func (o *Orchestrator) installer(manager string) install.Installer {
	if o.Installer != nil {
		return o.Installer(manager)
	}
	return &install.ManagerInstaller{Manager: manager}
}

// appendMissing adds specs whose package is not in dst yet.
func appendMissing(dst, specs []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, d := range dst {
		seen[registry.PackageName(d)] = true
	}
	for _, spec := range specs {
		if name := registry.PackageName(spec); !seen[name] {
			seen[name] = true
			dst = append(dst, spec)
		}
	}
	return dst
}

// reconcile returns the recorded components plus the items written in this
// run, minus recorded items none of whose files exist any more.
func (s *session) reconcile(ctx context.Context, written []*registry.Entry) []string {
	log := logging.FromContext(ctx)
	set := make(map[string]bool)
	inRun := make(map[string]bool)
	for _, e := range written {
		inRun[e.Key] = true
		if recordable(e) {
			set[e.Key] = true
		}
	}

	for _, name := range s.cfg.Components {
		if set[name] || inRun[name] {
			continue
		}
		item, err := s.client.Fetch(ctx, registry.ParseRef(name, s.root))
		if err != nil {
			log.Debug("keeping unresolvable component", "name", name, "err", err)
			set[name] = true
			continue
		}
		if s.filesGone(item) {
			log.Info("forgetting removed component", "name", name)
			continue
		}
		set[name] = true
	}
	return sortedKeys(set)
}

// recordable reports whether an entry belongs in components.json: a
// registry item with files, not a URL or local file reference.
func recordable(e *registry.Entry) bool {
	if len(e.Item.Files) == 0 || e.Item.IsBaseLayer() {
		return false
	}
	k := registry.ParseRef(e.Key, "").Kind
	return k == registry.RefName || k == registry.RefNamespace
}

// filesGone reports whether none of item's files exist at their resolved
// destinations. Items whose files cannot be placed count as present.
func (s *session) filesGone(item *manifest.Item) bool {
	if len(item.Files) == 0 {
		return false
	}
	for _, f := range item.Files {
		target, err := install.ResolveTarget(item, f, s.seed, install.TargetOptions{})
		if err != nil {
			return false
		}
		if _, err := os.Stat(target); !errors.Is(err, fs.ErrNotExist) {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
