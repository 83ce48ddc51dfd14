package transform

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

var directives = map[string]bool{"use client": true, "use server": true}

// serverOnlyModule is always dropped along with the item's serverOnly list.
const serverOnlyModule = "server-only"

type rscStage struct{}

func (rscStage) Name() string { return StageRSC }

func (rscStage) Enabled(tc *Context) bool { return tc.Seed != nil && !tc.Seed.RSC }

func (rscStage) Rewrite(_ context.Context, doc *Document, tc *Context) ([]Edit, error) {
	drop := map[string]bool{serverOnlyModule: true}
	if tc.Item != nil {
		for _, m := range tc.Item.ServerOnly() {
			drop[m] = true
		}
	}

	var edits []Edit
	prologue := true
	for _, n := range children(doc.Root) {
		switch {
		case n.Type() == "comment" || n.Type() == "hash_bang_line":
			continue
		case prologue && isDirective(doc, n):
			edits = append(edits, deleteStatement(doc.Src, n))
			continue
		}
		prologue = false
	}

	for _, d := range collectImports(doc) {
		if d.sideEffect() && drop[d.source] {
			edits = append(edits, deleteStatement(doc.Src, d.node))
		}
	}
	return edits, nil
}

// isDirective matches a prologue statement such as "use client".
func isDirective(doc *Document, n *sitter.Node) bool {
	if n.Type() != "expression_statement" || n.NamedChildCount() != 1 {
		return false
	}
	start, end, ok := stringInner(n.NamedChild(0))
	return ok && directives[string(doc.Src[start:end])]
}
