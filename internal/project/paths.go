package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
)

// tsconfigFiles are read in order; the first that declares
// compilerOptions.paths wins.
var tsconfigFiles = []string{"tsconfig.json", "tsconfig.app.json", "jsconfig.json"}

// PathConfig is the compilerOptions.paths mapping of a tsconfig/jsconfig.
type PathConfig struct {
	File    string              // file the mapping came from
	BaseURL string              // absolute
	Paths   map[string][]string // "@/*" → ["./src/*"]
}

// LoadPaths reads the first tsconfig-like file under root that declares
// path mappings. A project without one yields an empty PathConfig.
func LoadPaths(root string) (*PathConfig, error) {
	for _, name := range tsconfigFiles {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		std, err := hujson.Standardize(data)
		if err != nil {
			return nil, &ConfigError{Path: path, Reason: "malformed JSON", Err: err}
		}
		opts := gjson.GetBytes(std, "compilerOptions")
		if !opts.Get("paths").Exists() {
			continue
		}

		pc := &PathConfig{
			File:    path,
			BaseURL: filepath.Join(root, opts.Get("baseUrl").String()),
			Paths:   make(map[string][]string),
		}
		opts.Get("paths").ForEach(func(k, v gjson.Result) bool {
			for _, target := range v.Array() {
				pc.Paths[k.String()] = append(pc.Paths[k.String()], target.String())
			}
			return true
		})
		return pc, nil
	}
	return &PathConfig{BaseURL: root, Paths: map[string][]string{}}, nil
}

// Resolve maps an import specifier to a filesystem path using the longest
// matching pattern. ok is false when no pattern matches.
func (pc *PathConfig) Resolve(spec string) (string, bool) {
	patterns := make([]string, 0, len(pc.Paths))
	for p := range pc.Paths {
		patterns = append(patterns, p)
	}
	// Longest prefix first so "@/components/*" beats "@/*".
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i]) != len(patterns[j]) {
			return len(patterns[i]) > len(patterns[j])
		}
		return patterns[i] < patterns[j]
	})

	for _, pattern := range patterns {
		targets := pc.Paths[pattern]
		if len(targets) == 0 {
			continue
		}
		prefix, wildcard := strings.CutSuffix(pattern, "*")
		switch {
		case wildcard && strings.HasPrefix(spec, prefix):
			rest := strings.TrimPrefix(spec, prefix)
			target := strings.Replace(targets[0], "*", rest, 1)
			return filepath.Join(pc.BaseURL, filepath.FromSlash(target)), true
		case !wildcard && spec == pattern:
			return filepath.Join(pc.BaseURL, filepath.FromSlash(targets[0])), true
		}
	}
	return "", false
}
