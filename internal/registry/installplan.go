package registry

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/agentx-labs/uikit/internal/manifest"
)

// MergeManifest folds the non-file parts of entries, in order.
func MergeManifest(entries []*Entry) Manifest {
	var m Manifest
	seenDeps := make(map[string]bool)
	seenDevDeps := make(map[string]bool)

	for _, e := range entries {
		it := e.Item
		m.Dependencies = appendPackages(m.Dependencies, seenDeps, it.Dependencies)
		m.DevDependencies = appendPackages(m.DevDependencies, seenDevDeps, it.DevDependencies)

		if it.CSSVars != nil {
			m.CSSVars.Theme = mergeVars(m.CSSVars.Theme, it.CSSVars.Theme)
			m.CSSVars.Light = mergeVars(m.CSSVars.Light, it.CSSVars.Light)
			m.CSSVars.Dark = mergeVars(m.CSSVars.Dark, it.CSSVars.Dark)
		}
		if len(it.CSS) > 0 {
			m.CSS = append(m.CSS, it.CSS)
		}
		if len(it.Tailwind) > 0 {
			if m.Tailwind == nil {
				m.Tailwind = make(map[string]any)
			}
			deepMerge(m.Tailwind, it.Tailwind)
		}
		if it.Docs != "" {
			m.Docs = append(m.Docs, it.Docs)
		}
	}
	return m
}

// appendPackages adds specs whose package name has not been seen yet.
func appendPackages(dst []string, seen map[string]bool, specs []string) []string {
	for _, spec := range specs {
		name := PackageName(spec)
		if seen[name] {
			continue
		}
		seen[name] = true
		dst = append(dst, spec)
	}
	return dst
}

// PackageName strips a version from an npm spec: "@radix-ui/react-slot@^1"
// → "@radix-ui/react-slot".
func PackageName(spec string) string {
	if i := strings.LastIndex(spec, "@"); i > 0 {
		return spec[:i]
	}
	return spec
}

func mergeVars(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// deepMerge merges src into dst. Nested maps merge recursively; any other
// value in src replaces the one in dst.
func deepMerge(dst, src map[string]any) {
	for k, sv := range src {
		if sm, ok := sv.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				deepMerge(dm, sm)
				continue
			}
			cp := make(map[string]any, len(sm))
			deepMerge(cp, sm)
			dst[k] = cp
			continue
		}
		dst[k] = sv
	}
}

// Node is a view of a resolved set as a tree, for display.
type Node struct {
	Key      string
	Kind     string
	Children []*Node
	Deduped  bool // already shown earlier in the tree
}

// BuildTree arranges a resolved set under its roots. Items reachable from
// more than one place are expanded once and marked Deduped afterwards.
func BuildTree(set *ResolvedSet) []*Node {
	byKey := make(map[string]*Entry, len(set.Entries))
	for _, e := range set.Entries {
		byKey[e.Key] = e
	}
	seen := make(map[string]bool)
	var build func(key string) *Node
	build = func(key string) *Node {
		e := byKey[key]
		n := &Node{Key: key, Kind: e.Item.Kind()}
		if seen[key] {
			n.Deduped = true
			return n
		}
		seen[key] = true
		for _, d := range e.Deps {
			n.Children = append(n.Children, build(d))
		}
		return n
	}

	var roots []*Node
	for _, e := range set.Entries {
		if e.Root {
			roots = append(roots, build(e.Key))
		}
	}
	return roots
}

// PrintTree prints the dependency tree with box-drawing characters.
func PrintTree(w io.Writer, node *Node, prefix string, isLast bool, isRoot bool) {
	if node == nil {
		return
	}

	connector := "├── "
	if isLast {
		connector = "└── "
	}

	label := fmt.Sprintf("%s (%s)", node.Key, node.Kind)
	if node.Deduped {
		label += " (deduped)"
	}

	if isRoot {
		fmt.Fprintf(w, "  %s\n", label)
	} else {
		fmt.Fprintf(w, "  %s%s%s\n", prefix, connector, label)
	}

	childPrefix := prefix
	if !isRoot {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}

	for i, child := range node.Children {
		PrintTree(w, child, childPrefix, i == len(node.Children)-1, false)
	}
}

// PrintPlan prints the resolved tree, the per-kind summary, and the npm
// packages that will be installed.
func PrintPlan(w io.Writer, set *ResolvedSet) {
	fmt.Fprintln(w, "Resolving dependencies...")
	fmt.Fprintln(w)

	for _, root := range BuildTree(set) {
		PrintTree(w, root, "", true, true)
	}
	fmt.Fprintln(w)

	counts := make(map[string]int)
	for _, e := range set.Entries {
		counts[e.Item.Kind()]++
	}
	var parts []string
	for _, kind := range sortedKinds(counts) {
		parts = append(parts, fmt.Sprintf("%d %s", counts[kind], kind))
	}
	if len(parts) > 0 {
		n := len(set.Entries)
		fmt.Fprintf(w, "  Install: %s (%d %s)\n", strings.Join(parts, ", "), n, pluralize("item", n))
	}
	if deps := set.Manifest.Dependencies; len(deps) > 0 {
		fmt.Fprintf(w, "  Packages: %s\n", strings.Join(deps, ", "))
	}
	if deps := set.Manifest.DevDependencies; len(deps) > 0 {
		fmt.Fprintf(w, "  Dev packages: %s\n", strings.Join(deps, ", "))
	}
	fmt.Fprintln(w)
}

// kindOrder is the display order for item kinds.
var kindOrder = map[string]int{
	manifest.TypeStyle: 0, manifest.TypeTheme: 1, manifest.TypeLib: 2,
	manifest.TypeHook: 3, manifest.TypeUI: 4, manifest.TypeComponent: 5,
	manifest.TypeBlock: 6, manifest.TypeExample: 7, manifest.TypePage: 8,
}

func sortedKinds(counts map[string]int) []string {
	kinds := sortedKeys(counts)
	sort.SliceStable(kinds, func(i, j int) bool {
		oi, ok := kindOrder[kinds[i]]
		if !ok {
			oi = len(kindOrder)
		}
		oj, ok := kindOrder[kinds[j]]
		if !ok {
			oj = len(kindOrder)
		}
		return oi < oj
	})
	return kinds
}

func pluralize(noun string, n int) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
