package transform

import (
	"context"
	"fmt"
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentx-labs/uikit/internal/project"
)

// importRule maps a module specifier pattern to an alias. The first
// submatch, if any, is appended to the alias.
type importRule struct {
	pattern *regexp.Regexp
	kind    project.ModuleKind
}

// importRules are tried in order; the first match wins.
var importRules = []importRule{
	{regexp.MustCompile(`^@/registry/[^/]+/ui/(.+)$`), project.ModuleUI},
	{regexp.MustCompile(`^@/registry/[^/]+/lib/utils$`), project.ModuleUtils},
	{regexp.MustCompile(`^@/registry/[^/]+/lib/(.+)$`), project.ModuleLib},
	{regexp.MustCompile(`^@/registry/[^/]+/hooks/(.+)$`), project.ModuleHooks},
	{regexp.MustCompile(`^@/registry/[^/]+/(?:components|blocks?|examples?)/(.+)$`), project.ModuleComponents},
	{regexp.MustCompile(`^@/components/ui/(.+)$`), project.ModuleUI},
	{regexp.MustCompile(`^@/components/(.+)$`), project.ModuleComponents},
	{regexp.MustCompile(`^@/lib/utils$`), project.ModuleUtils},
	{regexp.MustCompile(`^@/lib/(.+)$`), project.ModuleLib},
	{regexp.MustCompile(`^@/hooks/(.+)$`), project.ModuleHooks},
}

// RewriteSpecifier maps a module specifier to the project's aliases. ok is
// false when no rule matches. missing names the alias a matching rule
// needed but the project does not define.
func RewriteSpecifier(spec string, seed *project.Seed) (out string, missing project.ModuleKind, ok bool) {
	for _, r := range importRules {
		m := r.pattern.FindStringSubmatch(spec)
		if m == nil {
			continue
		}
		alias, found := seed.Alias(r.kind)
		if !found {
			return spec, r.kind, false
		}
		if len(m) > 1 {
			return alias + "/" + m[1], "", true
		}
		return alias, "", true
	}
	return spec, "", false
}

type importsStage struct{}

func (importsStage) Name() string { return StageImports }

func (importsStage) Enabled(tc *Context) bool { return tc.Seed != nil }

func (importsStage) Rewrite(ctx context.Context, doc *Document, tc *Context) ([]Edit, error) {
	var edits []Edit
	var cfgErr error
	rewrite := func(str *sitter.Node) {
		start, end, ok := stringInner(str)
		if !ok || cfgErr != nil {
			return
		}
		spec := string(doc.Src[start:end])
		out, missing, ok := RewriteSpecifier(spec, tc.Seed)
		if missing != "" {
			cfgErr = &project.ConfigError{
				Field:  "aliases." + string(missing),
				Item:   tc.itemName(),
				Reason: fmt.Sprintf("%s imports %q but the alias is not set", doc.Path, spec),
			}
			return
		}
		if ok && out != spec {
			edits = append(edits, Edit{Start: start, End: end, Text: out})
		}
	}

	walk(doc.Root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement", "export_statement":
			if src := n.ChildByFieldName("source"); src != nil {
				rewrite(src)
			}
			return n.Type() == "export_statement"
		case "call_expression":
			if isModuleCall(doc, n) {
				if args := n.ChildByFieldName("arguments"); args != nil && args.NamedChildCount() > 0 {
					rewrite(args.NamedChild(0))
				}
			}
		}
		return true
	})
	if cfgErr != nil {
		return nil, cfgErr
	}
	return edits, nil
}

// isModuleCall matches require("x") and import("x").
func isModuleCall(doc *Document, call *sitter.Node) bool {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return false
	}
	switch fn.Type() {
	case "import":
		return true
	case "identifier":
		return doc.Text(fn) == "require"
	}
	return false
}
