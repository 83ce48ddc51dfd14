package registry

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentx-labs/uikit/internal/branding"
)

// RefKind classifies how a reference is resolved.
type RefKind int

const (
	RefName      RefKind = iota // bare name served by the default registry
	RefNamespace                // @namespace/name
	RefURL                      // absolute http(s) URL
	RefFile                     // local .json/.yaml file
)

// Ref is a parsed item reference as written in a command line or in an
// item's registryDependencies.
type Ref struct {
	Raw       string
	Kind      RefKind
	Namespace string // "@acme" for RefNamespace
	Name      string // item name, or the path below the namespace
}

var namespaceRe = regexp.MustCompile(`^(@[a-zA-Z0-9](?:[a-zA-Z0-9_-]*[a-zA-Z0-9])?)/(.+)$`)

// ParseRef classifies s. Local paths are made absolute against cwd.
func ParseRef(s, cwd string) Ref {
	switch {
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return Ref{Raw: s, Kind: RefURL, Name: s}
	case isLocalFile(s):
		p := s
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		return Ref{Raw: s, Kind: RefFile, Name: filepath.Clean(p)}
	}
	if m := namespaceRe.FindStringSubmatch(s); m != nil {
		return Ref{Raw: s, Kind: RefNamespace, Namespace: m[1], Name: m[2]}
	}
	return Ref{Raw: s, Kind: RefName, Name: s}
}

func isLocalFile(s string) bool {
	if strings.HasPrefix(s, "@") {
		return false
	}
	switch strings.ToLower(filepath.Ext(s)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Key is the identity used for deduplication and cycle reporting. The
// built-in namespace folds into bare names, so "@shadcn/button" and "button"
// are one item.
func (r Ref) Key() string {
	if r.Kind == RefNamespace && r.Namespace != branding.RegistryName() {
		return r.Namespace + "/" + r.Name
	}
	return r.Name
}

func (r Ref) String() string { return r.Key() }
