package install

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentx-labs/uikit/internal/manifest"
	"github.com/agentx-labs/uikit/internal/project"
	"github.com/agentx-labs/uikit/internal/transform"
)

// TargetOptions adjusts where files land.
type TargetOptions struct {
	// Path replaces the base directory of files without an explicit target.
	// Relative paths are taken from the project root.
	Path string
}

// ResolveTarget computes the absolute destination of file.
func ResolveTarget(item *manifest.Item, file manifest.File, seed *project.Seed, opts TargetOptions) (string, error) {
	fail := func(reason string) error {
		return &TargetError{Item: item.Name, File: file.Path, Reason: reason}
	}

	var dest string
	if file.Target != "" {
		dest = explicitTarget(file.Target, seed)
	} else {
		base := opts.Path
		if base != "" && !filepath.IsAbs(base) {
			base = filepath.Join(seed.Root, base)
		}
		if base == "" {
			kind, ok := project.ModuleForFile(file.Kind())
			if !ok {
				return "", fail(file.Kind() + " files need an explicit target")
			}
			dir, ok := seed.Dir(kind)
			if !ok {
				return "", fail("alias " + string(kind) + " is not configured")
			}
			base = dir
		}
		dest = filepath.Join(base, path.Base(filepath.ToSlash(file.Path)))
	}

	dest = filepath.Clean(transform.OutputPath(dest, seed.TSX))
	rel, err := filepath.Rel(seed.Root, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fail(dest + " is outside the project")
	}
	return dest, nil
}

// explicitTarget resolves a registry-provided target: ~/ is the project
// root, an alias prefix maps to that alias's directory, anything else is
// relative to the root (under src/ for src-dir projects).
func explicitTarget(target string, seed *project.Seed) string {
	if rest, ok := strings.CutPrefix(target, "~/"); ok {
		return filepath.Join(seed.Root, filepath.FromSlash(rest))
	}

	type aliasDir struct{ alias, dir string }
	var aliases []aliasDir
	for _, kind := range []project.ModuleKind{project.ModuleComponents, project.ModuleUI, project.ModuleLib, project.ModuleHooks, project.ModuleUtils} {
		a, ok := seed.Alias(kind)
		if !ok {
			continue
		}
		d, _ := seed.Dir(kind)
		aliases = append(aliases, aliasDir{a, d})
	}
	// Longest alias first so @/components/ui beats @/components.
	sort.Slice(aliases, func(i, j int) bool { return len(aliases[i].alias) > len(aliases[j].alias) })
	for _, a := range aliases {
		if rest, ok := strings.CutPrefix(target, a.alias+"/"); ok {
			return filepath.Join(a.dir, filepath.FromSlash(rest))
		}
	}

	rel := filepath.FromSlash(strings.TrimPrefix(target, "./"))
	if seed.Info != nil && seed.Info.SrcDir && !strings.HasPrefix(rel, "src"+string(filepath.Separator)) {
		return filepath.Join(seed.Root, "src", rel)
	}
	return filepath.Join(seed.Root, rel)
}
