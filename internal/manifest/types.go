package manifest

import "strings"

// Item is a registry item: a named, installable unit of files plus the npm
// packages, registry dependencies, and styling fragments it needs.
type Item struct {
	Schema               string         `yaml:"$schema,omitempty" json:"$schema,omitempty"`
	Name                 string         `yaml:"name" json:"name"`
	Type                 string         `yaml:"type" json:"type"`
	Title                string         `yaml:"title,omitempty" json:"title,omitempty"`
	Description          string         `yaml:"description,omitempty" json:"description,omitempty"`
	Author               string         `yaml:"author,omitempty" json:"author,omitempty"`
	Dependencies         []string       `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	DevDependencies      []string       `yaml:"devDependencies,omitempty" json:"devDependencies,omitempty"`
	RegistryDependencies []string       `yaml:"registryDependencies,omitempty" json:"registryDependencies,omitempty"`
	Files                []File         `yaml:"files,omitempty" json:"files,omitempty"`
	Tailwind             map[string]any `yaml:"tailwind,omitempty" json:"tailwind,omitempty"`
	CSSVars              *CSSVars       `yaml:"cssVars,omitempty" json:"cssVars,omitempty"`
	CSS                  map[string]any `yaml:"css,omitempty" json:"css,omitempty"`
	Meta                 map[string]any `yaml:"meta,omitempty" json:"meta,omitempty"`
	Docs                 string         `yaml:"docs,omitempty" json:"docs,omitempty"`
	Categories           []string       `yaml:"categories,omitempty" json:"categories,omitempty"`
}

// File is one source file carried by an item. Content may be empty in a
// local registry, in which case the source fills it from Path.
type File struct {
	Path    string `yaml:"path" json:"path"`
	Content string `yaml:"content,omitempty" json:"content,omitempty"`
	Type    string `yaml:"type" json:"type"`
	Target  string `yaml:"target,omitempty" json:"target,omitempty"`
}

// CSSVars holds CSS custom properties grouped by scope.
type CSSVars struct {
	Theme map[string]string `yaml:"theme,omitempty" json:"theme,omitempty"`
	Light map[string]string `yaml:"light,omitempty" json:"light,omitempty"`
	Dark  map[string]string `yaml:"dark,omitempty" json:"dark,omitempty"`
}

// Empty reports whether no scope carries any variable.
func (c *CSSVars) Empty() bool {
	return c == nil || len(c.Theme)+len(c.Light)+len(c.Dark) == 0
}

// Item and file type constants. Registry payloads may use either the
// prefixed ("registry:ui") or the bare ("ui") form.
const (
	TypeUI        = "ui"
	TypeComponent = "component"
	TypeBlock     = "block"
	TypeExample   = "example"
	TypeHook      = "hook"
	TypeLib       = "lib"
	TypePage      = "page"
	TypeFile      = "file"
	TypeStyle     = "style"
	TypeTheme     = "theme"
	TypeItem      = "item"
	TypeInternal  = "internal"
)

// ValidTypes contains all valid bare type values.
var ValidTypes = []string{
	TypeUI,
	TypeComponent,
	TypeBlock,
	TypeExample,
	TypeHook,
	TypeLib,
	TypePage,
	TypeFile,
	TypeStyle,
	TypeTheme,
	TypeItem,
	TypeInternal,
}

const typePrefix = "registry:"

// Kind strips the "registry:" prefix from a type value.
func Kind(t string) string {
	return strings.TrimPrefix(t, typePrefix)
}

// Kind returns the bare item type.
func (it *Item) Kind() string { return Kind(it.Type) }

// Kind returns the bare file type.
func (f File) Kind() string { return Kind(f.Type) }

// IsBaseLayer reports whether the item is a style or theme, which are
// installed before anything that depends on them.
func (it *Item) IsBaseLayer() bool {
	k := it.Kind()
	return k == TypeStyle || k == TypeTheme
}

// ServerOnly returns the module names listed in meta.serverOnly.
func (it *Item) ServerOnly() []string {
	raw, ok := it.Meta["serverOnly"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Index is the list of item summaries served at a registry's index.
type Index []Item
