package project

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/uikit/internal/manifest"
)

// ModuleKind names an alias slot in components.json.
type ModuleKind string

const (
	ModuleComponents ModuleKind = "components"
	ModuleUI         ModuleKind = "ui"
	ModuleLib        ModuleKind = "lib"
	ModuleHooks      ModuleKind = "hooks"
	ModuleUtils      ModuleKind = "utils"
)

// DefaultIconLibrary is used when components.json does not name one.
const DefaultIconLibrary = "lucide"

// Seed is everything the transform and write phases need to know about the
// target project, computed once per invocation.
type Seed struct {
	Root         string
	Config       *Config
	Info         *Info
	Catalog      *Catalog
	Style        string
	TSX          bool
	RSC          bool
	CSSVariables bool
	Prefix       string // tailwind class prefix
	IconLibrary  string
	StyleMap     StyleMap
	BaseColor    *BaseColor // nil when the palette is unknown and not needed

	aliases map[ModuleKind]string
	dirs    map[ModuleKind]string
}

// Alias returns the import prefix for kind, with fallbacks applied.
func (s *Seed) Alias(kind ModuleKind) (string, bool) {
	a, ok := s.aliases[kind]
	return a, ok
}

// Dir returns the absolute directory for kind. For utils it is the module
// path without extension.
func (s *Seed) Dir(kind ModuleKind) (string, bool) {
	d, ok := s.dirs[kind]
	return d, ok
}

// SourceRoot is the project root, or root/src for src-dir projects.
func (s *Seed) SourceRoot() string {
	if s.Info != nil && s.Info.SrcDir {
		return filepath.Join(s.Root, "src")
	}
	return s.Root
}

// ResolveOptions controls Resolve.
type ResolveOptions struct {
	Init  bool     // running as part of project initialization
	Roots []string // names of the explicitly requested items
}

// Resolve validates cfg against the items about to be installed and
// computes the Seed.
func Resolve(cfg *Config, info *Info, items []*manifest.Item, cat *Catalog, opts ResolveOptions) (*Seed, error) {
	if !opts.Init {
		roots := make(map[string]bool, len(opts.Roots))
		for _, r := range opts.Roots {
			roots[r] = true
		}
		for _, it := range items {
			if roots[it.Name] && it.IsBaseLayer() {
				return nil, &ConfigError{
					Path:   cfg.path,
					Item:   it.Name,
					Reason: fmt.Sprintf("%s items can only be installed while initializing a project", it.Kind()),
					Remedy: fmt.Sprintf("initialize the project with this %s instead of adding it", it.Kind()),
				}
			}
		}
	}

	seed := &Seed{
		Root:         info.Root,
		Config:       cfg,
		Info:         info,
		Catalog:      cat,
		Style:        cfg.Style,
		TSX:          cfg.TSX,
		RSC:          cfg.RSC,
		CSSVariables: cfg.Tailwind.CSSVariables,
		Prefix:       cfg.Tailwind.Prefix,
		IconLibrary:  cfg.IconLibrary,
		StyleMap:     cat.Styles[cfg.Style],
		aliases:      resolveAliases(cfg.Aliases),
		dirs:         make(map[ModuleKind]string),
	}
	if seed.IconLibrary == "" {
		seed.IconLibrary = DefaultIconLibrary
	}

	if bc, ok := cat.BaseColor(cfg.BaseColor); ok {
		seed.BaseColor = bc
	} else if !seed.CSSVariables {
		return nil, &ConfigError{
			Path:   cfg.path,
			Field:  "tailwind.baseColor",
			Reason: fmt.Sprintf("unknown base color %q; inline colors need one of %s", cfg.BaseColor, strings.Join(cat.Palettes, ", ")),
		}
	}

	for kind, alias := range seed.aliases {
		seed.dirs[kind] = resolveAliasDir(alias, seed.SourceRoot(), info.Paths)
	}

	for _, it := range items {
		for _, f := range it.Files {
			if f.Target != "" {
				continue
			}
			kind, needed := ModuleForFile(f.Kind())
			if !needed {
				continue
			}
			if _, ok := seed.aliases[kind]; !ok {
				return nil, &ConfigError{
					Path:   cfg.path,
					Field:  "aliases." + string(kind),
					Item:   it.Name,
					Reason: "alias is not set and cannot be derived",
				}
			}
		}
	}
	return seed, nil
}

// ModuleForFile returns the alias a file of the given type is installed
// under when it has no explicit target.
func ModuleForFile(fileKind string) (ModuleKind, bool) {
	switch fileKind {
	case manifest.TypeUI:
		return ModuleUI, true
	case manifest.TypeHook:
		return ModuleHooks, true
	case manifest.TypeLib:
		return ModuleLib, true
	case manifest.TypeComponent, manifest.TypeBlock, manifest.TypeExample:
		return ModuleComponents, true
	}
	return "", false
}

// resolveAliases applies the fallback chain: ui from components, lib from
// utils or the shared prefix, hooks from the shared prefix, utils from lib.
func resolveAliases(a Aliases) map[ModuleKind]string {
	out := make(map[ModuleKind]string)
	set := func(kind ModuleKind, v string) {
		if v != "" {
			out[kind] = strings.TrimRight(v, "/")
		}
	}

	prefix := aliasPrefix(a.Components)
	if prefix == "" {
		prefix = aliasPrefix(a.Utils)
	}

	set(ModuleComponents, a.Components)

	ui := a.UI
	if ui == "" && a.Components != "" {
		ui = strings.TrimRight(a.Components, "/") + "/ui"
	}
	set(ModuleUI, ui)

	lib := a.Lib
	if lib == "" && a.Utils != "" && strings.Contains(a.Utils, "/") {
		lib = path.Dir(a.Utils)
	}
	if lib == "" && prefix != "" {
		lib = prefix + "/lib"
	}
	set(ModuleLib, lib)

	hooks := a.Hooks
	if hooks == "" && prefix != "" {
		hooks = prefix + "/hooks"
	}
	set(ModuleHooks, hooks)

	utils := a.Utils
	if utils == "" && lib != "" {
		utils = strings.TrimRight(lib, "/") + "/utils"
	}
	set(ModuleUtils, utils)

	return out
}

// aliasPrefix returns the first segment of an alias: "@/components" → "@".
func aliasPrefix(alias string) string {
	if alias == "" {
		return ""
	}
	first, _, found := strings.Cut(alias, "/")
	if !found {
		return ""
	}
	return first
}

// resolveAliasDir maps an alias to a directory through tsconfig paths,
// falling back to the alias without its prefix under the source root.
func resolveAliasDir(alias, sourceRoot string, paths *PathConfig) string {
	if paths != nil {
		if dir, ok := paths.Resolve(alias); ok {
			return dir
		}
	}
	rest := alias
	if _, after, found := strings.Cut(alias, "/"); found {
		rest = after
	}
	return filepath.Join(sourceRoot, filepath.FromSlash(rest))
}

// Describe lists the resolved aliases and directories, for verbose output.
func (s *Seed) Describe() []string {
	var lines []string
	for _, kind := range []ModuleKind{ModuleComponents, ModuleUI, ModuleLib, ModuleHooks, ModuleUtils} {
		alias, ok := s.aliases[kind]
		if !ok {
			continue
		}
		rel, err := filepath.Rel(s.Root, s.dirs[kind])
		if err != nil {
			rel = s.dirs[kind]
		}
		lines = append(lines, fmt.Sprintf("%-10s %s → %s", kind, alias, rel))
	}
	return lines
}
