package project

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/agentx-labs/uikit/internal/branding"
	"github.com/agentx-labs/uikit/internal/registry"
	"github.com/agentx-labs/uikit/internal/schema"
)

//go:embed schema/components.schema.json
var configSchemaBytes []byte

var configSchema = schema.New("components.schema.json", configSchemaBytes)

// Config is the project configuration read from components.json. It is
// loaded once per invocation and treated as immutable.
type Config struct {
	Style       string
	RSC         bool
	TSX         bool
	IconLibrary string
	BaseColor   string
	Tailwind    Tailwind
	Aliases     Aliases
	Registries  map[string]registry.Endpoint
	Components  []string

	path string
	raw  []byte
}

// Tailwind holds the tailwind section of the config.
type Tailwind struct {
	Config       string
	CSS          string
	CSSVariables bool
	Prefix       string
}

// Aliases maps module kinds to import prefixes, e.g. "@/components".
type Aliases struct {
	Components string
	Utils      string
	UI         string
	Lib        string
	Hooks      string
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.path }

// ConfigPath returns the location of components.json under dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, branding.ConfigFileName())
}

// Load reads and validates components.json in dir.
func Load(dir string) (*Config, error) {
	path := ConfigPath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		reason := "cannot read file"
		if errors.Is(err, fs.ErrNotExist) {
			reason = "file not found"
		}
		return nil, &ConfigError{Path: path, Reason: reason, Err: err}
	}
	return Parse(data, path)
}

// Parse validates and decodes a components.json document.
func Parse(data []byte, path string) (*Config, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ConfigError{Path: path, Reason: "malformed JSON"}
	}
	result, err := configSchema.Validate(data)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if !result.Valid {
		return nil, &ConfigError{Path: path, Reason: result.Summary()}
	}

	doc := gjson.ParseBytes(data)
	cfg := &Config{
		Style:       doc.Get("style").String(),
		RSC:         doc.Get("rsc").Bool(),
		TSX:         boolOr(doc.Get("tsx"), true),
		IconLibrary: doc.Get("iconLibrary").String(),
		BaseColor:   doc.Get("baseColor").String(),
		Tailwind: Tailwind{
			Config:       doc.Get("tailwind.config").String(),
			CSS:          doc.Get("tailwind.css").String(),
			CSSVariables: boolOr(doc.Get("tailwind.cssVariables"), true),
			Prefix:       doc.Get("tailwind.prefix").String(),
		},
		Aliases: Aliases{
			Components: doc.Get("aliases.components").String(),
			Utils:      doc.Get("aliases.utils").String(),
			UI:         doc.Get("aliases.ui").String(),
			Lib:        doc.Get("aliases.lib").String(),
			Hooks:      doc.Get("aliases.hooks").String(),
		},
		Registries: make(map[string]registry.Endpoint),
		path:       path,
		raw:        data,
	}
	if cfg.BaseColor == "" {
		cfg.BaseColor = doc.Get("tailwind.baseColor").String()
	}

	doc.Get("registries").ForEach(func(key, value gjson.Result) bool {
		cfg.Registries[key.String()] = parseEndpoint(value)
		return true
	})
	for _, c := range doc.Get("components").Array() {
		cfg.Components = append(cfg.Components, c.String())
	}
	return cfg, nil
}

func parseEndpoint(v gjson.Result) registry.Endpoint {
	if v.Type == gjson.String {
		return registry.Endpoint{URL: v.String()}
	}
	ep := registry.Endpoint{URL: v.Get("url").String()}
	if h := v.Get("headers"); h.Exists() {
		ep.Headers = make(map[string]string)
		h.ForEach(func(k, v gjson.Result) bool {
			ep.Headers[k.String()] = v.String()
			return true
		})
	}
	if p := v.Get("params"); p.Exists() {
		ep.Params = make(map[string]string)
		p.ForEach(func(k, v gjson.Result) bool {
			ep.Params[k.String()] = v.String()
			return true
		})
	}
	return ep
}

func boolOr(r gjson.Result, def bool) bool {
	if !r.Exists() {
		return def
	}
	return r.Bool()
}

// SaveComponents replaces the persisted component list. Only the
// "components" key is rewritten; the rest of the file is kept byte for byte.
func (c *Config) SaveComponents(names []string) error {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	updated, err := sjson.SetBytes(c.raw, "components", sorted)
	if err != nil {
		return fmt.Errorf("updating %s: %w", c.path, err)
	}
	if err := writeFileAtomic(c.path, updated); err != nil {
		return err
	}
	c.raw = updated
	c.Components = sorted
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
