package transform

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentx-labs/uikit/internal/branding"
	"github.com/agentx-labs/uikit/internal/project"
)

// iconNameAttr selects an icon through the catalog's icon table.
const iconNameAttr = "name"

type iconsStage struct{}

func (iconsStage) Name() string { return StageIcons }

func (iconsStage) Enabled(tc *Context) bool { return tc.Seed != nil && tc.Seed.Catalog != nil }

func (iconsStage) Rewrite(ctx context.Context, doc *Document, tc *Context) ([]Edit, error) {
	placeholder := branding.PlaceholderIcon()
	cat := tc.Seed.Catalog

	var elements []*sitter.Node
	walk(doc.Root, func(n *sitter.Node) bool {
		if t := n.Type(); t == "jsx_self_closing_element" || t == "jsx_opening_element" {
			if name := n.ChildByFieldName("name"); name != nil && doc.Text(name) == placeholder {
				elements = append(elements, n)
			}
		}
		return true
	})
	if len(elements) == 0 {
		return nil, nil
	}

	lib, ok := cat.IconLibraries[tc.Seed.IconLibrary]
	if !ok {
		tc.warn(ctx, doc.Path, StageIcons, "unknown icon library %q; expected one of %s",
			tc.Seed.IconLibrary, strings.Join(cat.IconLibraryNames(), ", "))
		return nil, nil
	}

	var (
		edits     []Edit
		exports   []string
		seen      = make(map[string]bool)
		remaining int
	)
	for _, el := range elements {
		export, ok := resolveIcon(doc, el, tc.Seed)
		if !ok {
			remaining++
			tc.warn(ctx, doc.Path, StageIcons, "no %s icon for %s at line %d; left unchanged",
				tc.Seed.IconLibrary, describeIcon(doc, el), el.StartPoint().Row+1)
			continue
		}
		if !seen[export] {
			seen[export] = true
			exports = append(exports, export)
		}
		edits = append(edits, rewriteIconElement(doc, el, export, lib, cat)...)
	}
	if len(exports) == 0 {
		return edits, nil
	}
	tc.require(lib.Packages()...)
	return append(edits, iconImports(doc, placeholder, exports, lib, remaining)...), nil
}

// resolveIcon picks the export for an element: an attribute named after the
// configured library wins, then the icon table via name="...".
func resolveIcon(doc *Document, el *sitter.Node, seed *project.Seed) (string, bool) {
	if v, ok := stringAttr(doc, el, seed.IconLibrary); ok && v != "" {
		return v, true
	}
	if v, ok := stringAttr(doc, el, iconNameAttr); ok {
		return seed.Catalog.Icon(v, seed.IconLibrary)
	}
	return "", false
}

func describeIcon(doc *Document, el *sitter.Node) string {
	if v, ok := stringAttr(doc, el, iconNameAttr); ok {
		return `"` + v + `"`
	}
	return doc.Text(el.ChildByFieldName("name"))
}

// stringAttr returns the value of a string-valued JSX attribute.
func stringAttr(doc *Document, el *sitter.Node, name string) (string, bool) {
	for _, attr := range children(el) {
		if attr.Type() != "jsx_attribute" || attrName(doc, attr) != name {
			continue
		}
		val := attr.NamedChild(int(attr.NamedChildCount()) - 1)
		if start, end, ok := stringInner(val); ok {
			return string(doc.Src[start:end]), true
		}
	}
	return "", false
}

func hasAttr(doc *Document, el *sitter.Node, name string) bool {
	for _, attr := range children(el) {
		if attr.Type() == "jsx_attribute" && attrName(doc, attr) == name {
			return true
		}
	}
	return false
}

// rewriteIconElement renames the element, drops placeholder props and, for
// wrapper libraries, passes the icon through the wrapper's prop.
func rewriteIconElement(doc *Document, el *sitter.Node, export string, lib project.IconLibrary, cat *project.Catalog) []Edit {
	name := el.ChildByFieldName("name")
	tag := export
	if w := lib.Wrapper; w != nil {
		tag = w.Name + " " + w.Prop + "={" + export + "}"
		for _, d := range w.Defaults {
			if !hasAttr(doc, el, d.Name) {
				tag += " " + d.Name + "=" + d.Value
			}
		}
	}
	edits := []Edit{replaceNode(name, tag)}

	for _, attr := range children(el) {
		if attr.Type() != "jsx_attribute" {
			continue
		}
		n := attrName(doc, attr)
		if _, isLib := cat.IconLibraries[n]; isLib || n == iconNameAttr {
			edits = append(edits, deleteWithLeadingSpace(doc.Src, attr))
		}
	}

	if el.Type() == "jsx_opening_element" {
		closeName := tagNameOf(lib, export)
		if parent := el.Parent(); parent != nil {
			if closing := childOfType(parent, "jsx_closing_element"); closing != nil {
				if cn := closing.ChildByFieldName("name"); cn != nil {
					edits = append(edits, replaceNode(cn, closeName))
				}
			}
		}
	}
	return edits
}

func tagNameOf(lib project.IconLibrary, export string) string {
	if lib.Wrapper != nil {
		return lib.Wrapper.Name
	}
	return export
}

// iconImports adds the library imports. The placeholder import is replaced
// in place when no placeholder element is left.
func iconImports(doc *Document, placeholder string, exports []string, lib project.IconLibrary, remaining int) []Edit {
	decls := collectImports(doc)

	var placeholderDecl *importDecl
	semicolon := false
	var quote byte = '"'
	for i, d := range decls {
		if i == 0 {
			semicolon, quote = d.semicolon, quoteOf(doc, d.sourceNode)
		}
		if d.binds(doc, placeholder) {
			placeholderDecl = d
			semicolon, quote = d.semicolon, quoteOf(doc, d.sourceNode)
		}
	}

	type want struct {
		pkg   string
		names []string
	}
	var wants []want
	if w := lib.Wrapper; w != nil {
		wants = append(wants, want{w.Package, []string{w.Name}})
	}
	wants = append(wants, want{lib.Package, exports})

	var lines []string
	var out []Edit
	for _, w := range wants {
		merged := false
		for _, d := range decls {
			if d.source == w.pkg && !d.typeOnly && d.namespace == nil && !d.sideEffect() {
				out = append(out, addSpecifiers(doc, d, w.names)...)
				merged = true
				break
			}
		}
		if !merged {
			lines = append(lines, importLine(w.names, w.pkg, quote, semicolon))
		}
	}

	block := strings.Join(lines, "\n")
	switch {
	case placeholderDecl != nil && remaining == 0 && len(placeholderDecl.locals(doc)) == 1:
		if block == "" {
			out = append(out, deleteStatement(doc.Src, placeholderDecl.node))
		} else {
			out = append(out, replaceNode(placeholderDecl.node, block))
		}
	case placeholderDecl != nil:
		if remaining == 0 {
			out = append(out, removeBindings(doc, placeholderDecl, func(local string, _ bool) bool { return local == placeholder })...)
		}
		if block != "" {
			out = append(out, insertAt(placeholderDecl.node.EndByte(), "\n"+block))
		}
	case block == "":
	case len(decls) > 0:
		out = append(out, insertAt(decls[len(decls)-1].node.EndByte(), "\n"+block))
	default:
		out = append(out, insertAt(firstStatement(doc), block+"\n"))
	}
	return out
}

// firstStatement returns the offset of the first statement after any
// comments and directives.
func firstStatement(doc *Document) uint32 {
	for _, n := range children(doc.Root) {
		if n.Type() == "comment" || n.Type() == "hash_bang_line" || isDirective(doc, n) {
			continue
		}
		return n.StartByte()
	}
	return uint32(len(doc.Src))
}
