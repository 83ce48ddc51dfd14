package project

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed catalog.json
var catalogJSON []byte

// Catalog is the static data the transform stages consult: per-style class
// maps, base color tables, and the icon table. It is passed explicitly so
// stages never read globals.
type Catalog struct {
	Styles        map[string]StyleMap          `json:"styles"`
	Palettes      []string                     `json:"palettes"`
	InlineColors  ColorScheme                  `json:"inlineColors"`
	IconLibraries map[string]IconLibrary       `json:"iconLibraries"`
	Icons         map[string]map[string]string `json:"icons"` // icon → library → export
}

// StyleMap maps cn-* placeholder classes to utility classes.
type StyleMap map[string]string

// ColorScheme maps semantic color names to palette colors per mode.
type ColorScheme struct {
	Light map[string]string `json:"light"`
	Dark  map[string]string `json:"dark"`
}

// IconLibrary describes how icons from one library are imported.
type IconLibrary struct {
	Package string       `json:"package"`
	Wrapper *IconWrapper `json:"wrapper,omitempty"`
}

// IconWrapper is set for libraries whose icons are data passed to a
// component, e.g. <HugeiconsIcon icon={Tick02Icon} />.
type IconWrapper struct {
	Name     string    `json:"name"`
	Package  string    `json:"package"`
	Prop     string    `json:"prop"`
	Defaults []JSXProp `json:"defaults"`
}

// JSXProp is an attribute with its raw JSX value, e.g. strokeWidth={2}.
type JSXProp struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Packages returns the npm packages a library needs.
func (l IconLibrary) Packages() []string {
	pkgs := []string{l.Package}
	if l.Wrapper != nil {
		pkgs = append(pkgs, l.Wrapper.Package)
	}
	return pkgs
}

// BaseColor is a palette's resolved color scheme.
type BaseColor struct {
	Name string
	ColorScheme
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		var c Catalog
		if err := json.Unmarshal(catalogJSON, &c); err != nil {
			defaultErr = fmt.Errorf("parsing built-in catalog: %w", err)
			return
		}
		defaultCatalog = &c
	})
	return defaultCatalog, defaultErr
}

// BaseColor expands the inline color tables for palette name.
func (c *Catalog) BaseColor(name string) (*BaseColor, bool) {
	found := false
	for _, p := range c.Palettes {
		if p == name {
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}
	expand := func(m map[string]string) map[string]string {
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = strings.ReplaceAll(v, "{c}", name)
		}
		return out
	}
	return &BaseColor{
		Name:        name,
		ColorScheme: ColorScheme{Light: expand(c.InlineColors.Light), Dark: expand(c.InlineColors.Dark)},
	}, true
}

// Icon looks up the export name of icon in library.
func (c *Catalog) Icon(icon, library string) (string, bool) {
	byLib, ok := c.Icons[icon]
	if !ok {
		return "", false
	}
	name, ok := byLib[library]
	return name, ok
}

// IconLibraryNames returns the known icon libraries, sorted.
func (c *Catalog) IconLibraryNames() []string {
	names := make([]string, 0, len(c.IconLibraries))
	for n := range c.IconLibraries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
