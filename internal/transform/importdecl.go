package transform

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// importDecl is a top-level import statement broken into its bindings.
type importDecl struct {
	node       *sitter.Node
	sourceNode *sitter.Node
	source     string
	typeOnly   bool // import type { ... }
	semicolon  bool

	defaultName *sitter.Node
	namespace   *sitter.Node // namespace_import
	named       *sitter.Node // named_imports
	specs       []importSpec
}

type importSpec struct {
	node     *sitter.Node
	local    string
	imported string
	typeOnly bool // { type X }
}

// sideEffect reports whether the statement binds nothing: import "x".
func (d *importDecl) sideEffect() bool {
	return d.defaultName == nil && d.namespace == nil && d.named == nil
}

// locals returns every local name the statement binds.
func (d *importDecl) locals(doc *Document) []string {
	var out []string
	if d.defaultName != nil {
		out = append(out, doc.Text(d.defaultName))
	}
	if d.namespace != nil {
		if id := childOfType(d.namespace, "identifier"); id != nil {
			out = append(out, doc.Text(id))
		}
	}
	for _, s := range d.specs {
		out = append(out, s.local)
	}
	return out
}

func (d *importDecl) binds(doc *Document, name string) bool {
	for _, l := range d.locals(doc) {
		if l == name {
			return true
		}
	}
	return false
}

// collectImports returns the program's import statements in order.
func collectImports(doc *Document) []*importDecl {
	var out []*importDecl
	for _, n := range children(doc.Root) {
		if n.Type() != "import_statement" {
			continue
		}
		d := &importDecl{
			node:       n,
			sourceNode: n.ChildByFieldName("source"),
			typeOnly:   hasToken(n, "type"),
			semicolon:  hasToken(n, ";"),
		}
		if d.sourceNode != nil {
			if s, e, ok := stringInner(d.sourceNode); ok {
				d.source = string(doc.Src[s:e])
			}
		}
		if clause := childOfType(n, "import_clause"); clause != nil {
			for _, c := range children(clause) {
				switch c.Type() {
				case "identifier":
					d.defaultName = c
				case "namespace_import":
					d.namespace = c
				case "named_imports":
					d.named = c
					d.specs = parseSpecs(doc, c)
				}
			}
		}
		out = append(out, d)
	}
	return out
}

func parseSpecs(doc *Document, named *sitter.Node) []importSpec {
	var specs []importSpec
	for _, c := range children(named) {
		if c.Type() != "import_specifier" {
			continue
		}
		spec := importSpec{node: c, typeOnly: hasToken(c, "type")}
		if name := c.ChildByFieldName("name"); name != nil {
			spec.imported = doc.Text(name)
			spec.local = spec.imported
		}
		if alias := c.ChildByFieldName("alias"); alias != nil {
			spec.local = doc.Text(alias)
		}
		specs = append(specs, spec)
	}
	return specs
}

// removeBindings drops the named local bindings from d, deleting the whole
// statement when nothing is left.
func removeBindings(doc *Document, d *importDecl, remove func(local string, typeOnly bool) bool) []Edit {
	dropDefault := d.defaultName != nil && remove(doc.Text(d.defaultName), false)
	dropNamespace := false
	if d.namespace != nil {
		if id := childOfType(d.namespace, "identifier"); id != nil {
			dropNamespace = remove(doc.Text(id), false)
		}
	}
	dropped := make([]bool, len(d.specs))
	keptSpecs := 0
	for i, s := range d.specs {
		dropped[i] = remove(s.local, s.typeOnly)
		if !dropped[i] {
			keptSpecs++
		}
	}

	keptDefault := d.defaultName != nil && !dropDefault
	keptNamespace := d.namespace != nil && !dropNamespace
	if !keptDefault && !keptNamespace && keptSpecs == 0 {
		if d.sideEffect() {
			return nil
		}
		return []Edit{deleteStatement(doc.Src, d.node)}
	}

	var edits []Edit
	if dropDefault {
		edits = append(edits, Edit{Start: d.defaultName.StartByte(), End: nextNonSpace(doc.Src, afterComma(doc.Src, d.defaultName.EndByte()))})
	}
	if dropNamespace {
		edits = append(edits, Edit{Start: commaBefore(doc.Src, d.namespace.StartByte()), End: d.namespace.EndByte()})
	}
	if d.named != nil && keptSpecs == 0 && len(d.specs) > 0 {
		edits = append(edits, Edit{Start: commaBefore(doc.Src, d.named.StartByte()), End: d.named.EndByte()})
		return edits
	}

	specNodes := make([]*sitter.Node, len(d.specs))
	for i, s := range d.specs {
		specNodes[i] = s.node
	}
	return append(edits, removeListItems(doc.Src, specNodes, dropped)...)
}

// removeListItems deletes the dropped elements of a comma separated list
// along with their separators. At least one element must be kept.
func removeListItems(src []byte, items []*sitter.Node, dropped []bool) []Edit {
	var edits []Edit
	lastKept := -1
	for i, n := range items {
		if !dropped[i] {
			lastKept = i
			continue
		}
		if next := n.NextSibling(); next != nil && next.Type() == "," {
			edits = append(edits, Edit{Start: n.StartByte(), End: nextNonSpace(src, next.EndByte())})
			continue
		}
		if lastKept >= 0 {
			edits = append(edits, Edit{Start: items[lastKept].EndByte(), End: n.EndByte()})
		}
	}
	return edits
}

// addSpecifiers appends names to d's named imports, skipping ones already
// bound.
func addSpecifiers(doc *Document, d *importDecl, names []string) []Edit {
	var missing []string
	for _, n := range names {
		if !d.binds(doc, n) {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if len(d.specs) > 0 {
		last := d.specs[len(d.specs)-1].node
		return []Edit{insertAt(last.EndByte(), ", "+joinNames(missing))}
	}
	if d.named != nil {
		return []Edit{replaceNode(d.named, "{ "+joinNames(missing)+" }")}
	}
	if d.defaultName != nil {
		return []Edit{insertAt(d.defaultName.EndByte(), ", { "+joinNames(missing)+" }")}
	}
	return nil
}

func joinNames(names []string) string { return strings.Join(names, ", ") }

// importLine renders a new named import statement.
func importLine(names []string, source string, quote byte, semicolon bool) string {
	line := "import { " + joinNames(names) + " } from " + string(quote) + source + string(quote)
	if semicolon {
		line += ";"
	}
	return line
}

// quoteOf returns the quote character of a string node, defaulting to ".
func quoteOf(doc *Document, n *sitter.Node) byte {
	if n != nil && n.EndByte() > n.StartByte() {
		if q := doc.Src[n.StartByte()]; q == '\'' || q == '"' {
			return q
		}
	}
	return '"'
}

func nextNonSpace(src []byte, pos uint32) uint32 {
	for int(pos) < len(src) && isSpace(src[pos]) {
		pos++
	}
	return pos
}

// afterComma returns the position just past the comma following pos, or
// pos when there is none.
func afterComma(src []byte, pos uint32) uint32 {
	p := nextNonSpace(src, pos)
	if int(p) < len(src) && src[p] == ',' {
		return p + 1
	}
	return pos
}

// commaBefore returns the position of the comma preceding pos, or pos when
// there is none.
func commaBefore(src []byte, pos uint32) uint32 {
	p := int(pos)
	for p > 0 && isSpace(src[p-1]) {
		p--
	}
	if p > 0 && src[p-1] == ',' {
		return uint32(p - 1)
	}
	return pos
}
