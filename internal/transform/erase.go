package transform

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// keepImportsFrom are never elided for lack of value uses; the JSX runtime
// may need them.
var keepImportsFrom = map[string]bool{"react": true}

type eraseStage struct{}

func (eraseStage) Name() string { return StageErase }

func (eraseStage) Enabled(tc *Context) bool { return tc.Seed != nil && !tc.Seed.TSX }

func (eraseStage) Rewrite(ctx context.Context, doc *Document, tc *Context) ([]Edit, error) {
	e := &eraser{doc: doc}
	for _, n := range children(doc.Root) {
		if err := e.visit(n); err != nil {
			return nil, &TransformError{Item: tc.itemName(), File: doc.Path, Stage: StageErase, Reason: err.Error()}
		}
	}

	// Imports whose bindings were only used in type positions go too. Which
	// ones that is shows only once the types are gone.
	usedBefore := usedNames(doc.Root, doc.Src)
	erased := apply(doc.Src, e.edits)
	after, err := parse(ctx, doc.Path, erased, doc.Grammar)
	if err != nil {
		return nil, &TransformError{Item: tc.itemName(), File: doc.Path, Stage: StageErase, Reason: "erased output does not parse", Err: err}
	}
	defer after.close()
	usedAfter := usedNames(after.Root, after.Src)

	edits := e.edits
	for _, d := range collectImports(doc) {
		if d.typeOnly {
			edits = append(edits, deleteStatement(doc.Src, d.node))
			continue
		}
		keep := keepImportsFrom[d.source]
		edits = append(edits, removeBindings(doc, d, func(local string, typeOnly bool) bool {
			if typeOnly {
				return true
			}
			return !keep && usedBefore[local] && !usedAfter[local]
		})...)
	}
	return edits, nil
}

// eraser collects the edits that strip TypeScript syntax.
type eraser struct {
	doc   *Document
	edits []Edit
}

func (e *eraser) add(edit Edit) { e.edits = append(e.edits, edit) }

func (e *eraser) fail(n *sitter.Node, format string, args ...any) error {
	p := n.StartPoint()
	return fmt.Errorf("line %d: %s", p.Row+1, fmt.Sprintf(format, args...))
}

func (e *eraser) visit(n *sitter.Node) error {
	src := e.doc.Src
	switch n.Type() {
	case "enum_declaration":
		return e.fail(n, "enum %s has runtime semantics and cannot be erased", e.name(n))
	case "internal_module", "module":
		return e.fail(n, "namespace %s has runtime semantics and cannot be erased", e.name(n))

	case "interface_declaration", "type_alias_declaration", "ambient_declaration",
		"function_signature", "abstract_method_signature", "index_signature", "method_signature":
		target := n
		if p := n.Parent(); p != nil && p.Type() == "export_statement" {
			target = p
		}
		e.add(deleteStatement(src, target))
		return nil

	case "import_statement":
		return nil

	case "export_statement":
		if hasToken(n, "type") {
			e.add(deleteStatement(src, n))
			return nil
		}
		if clause := childOfType(n, "export_clause"); clause != nil {
			e.exportSpecifiers(n, clause)
		}

	case "type_annotation", "type_parameters", "type_arguments", "type_predicate_annotation", "asserts_annotation":
		e.add(replaceNode(n, ""))
		return nil

	case "implements_clause":
		target := n
		if p := n.Parent(); p != nil && p.Type() == "class_heritage" && p.NamedChildCount() == 1 {
			target = p
		}
		e.add(deleteWithLeadingSpace(src, target))
		return nil

	case "decorator":
		if d := deleteStatement(src, n); d.End-d.Start > n.EndByte()-n.StartByte() {
			e.add(d)
		} else {
			e.add(deleteToken(src, n))
		}
		return nil

	case "accessibility_modifier", "override_modifier":
		e.add(deleteToken(src, n))
		return nil

	case "as_expression", "satisfies_expression", "non_null_expression":
		expr := n.NamedChild(0)
		e.add(Edit{Start: expr.EndByte(), End: n.EndByte()})
		return e.visit(expr)

	case "type_assertion":
		expr := n.NamedChild(int(n.NamedChildCount()) - 1)
		e.add(Edit{Start: n.StartByte(), End: expr.StartByte()})
		return e.visit(expr)

	case "required_parameter", "optional_parameter":
		if childOfType(n, "accessibility_modifier") != nil || childOfType(n, "override_modifier") != nil || hasToken(n, "readonly") {
			return e.fail(n, "constructor parameter property %s has runtime semantics and cannot be erased", e.doc.Text(n.ChildByFieldName("pattern")))
		}
		if pat := n.ChildByFieldName("pattern"); pat != nil && pat.Type() == "this" {
			e.add(deleteThisParameter(src, n))
			return nil
		}
		e.dropTokens(n, "?")

	case "public_field_definition":
		if hasToken(n, "declare") || hasToken(n, "abstract") {
			e.add(deleteStatement(src, n))
			return nil
		}
		e.dropTokens(n, "?", "!")
		if t := tokenChild(n, "readonly"); t != nil {
			e.add(deleteToken(src, t))
		}

	case "method_definition":
		e.dropTokens(n, "?")

	case "variable_declarator":
		e.dropTokens(n, "!")

	case "abstract_class_declaration":
		if t := tokenChild(n, "abstract"); t != nil {
			e.add(deleteToken(src, t))
		}
	}

	for _, c := range children(n) {
		if err := e.visit(c); err != nil {
			return err
		}
	}
	return nil
}

// deleteThisParameter removes a `this` parameter along with the comma and
// whitespace that follow it. It is always the first parameter.
func deleteThisParameter(src []byte, n *sitter.Node) Edit {
	end := n.EndByte()
	if after := afterComma(src, end); after != end {
		end = nextNonSpace(src, after)
	}
	return Edit{Start: n.StartByte(), End: end}
}

func (e *eraser) dropTokens(n *sitter.Node, tokens ...string) {
	for _, tok := range tokens {
		if t := tokenChild(n, tok); t != nil {
			e.add(replaceNode(t, ""))
		}
	}
}

func (e *eraser) name(n *sitter.Node) string {
	if id := n.ChildByFieldName("name"); id != nil {
		return e.doc.Text(id)
	}
	return n.Type()
}

// exportSpecifiers drops `type` specifiers from export { ... } clauses.
func (e *eraser) exportSpecifiers(stmt, clause *sitter.Node) {
	var specs []*sitter.Node
	var dropped []bool
	kept := 0
	for _, c := range children(clause) {
		if c.Type() != "export_specifier" {
			continue
		}
		specs = append(specs, c)
		typeOnly := hasToken(c, "type")
		dropped = append(dropped, typeOnly)
		if !typeOnly {
			kept++
		}
	}
	switch {
	case len(specs) == 0 || kept == len(specs):
	case kept == 0:
		e.add(deleteStatement(e.doc.Src, stmt))
	default:
		for _, ed := range removeListItems(e.doc.Src, specs, dropped) {
			e.add(ed)
		}
	}
}

// usedNames collects identifiers referenced outside import statements.
func usedNames(root *sitter.Node, src []byte) map[string]bool {
	used := make(map[string]bool)
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement":
			return false
		case "identifier", "type_identifier", "shorthand_property_identifier":
			used[n.Content(src)] = true
		}
		return true
	})
	return used
}
