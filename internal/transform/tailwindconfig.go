package transform

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// UpdateTailwindConfig deep-merges fragment into the object a Tailwind CSS 3
// config file exports, through `module.exports =` or `export default`,
// directly or via a const. Objects merge key by key, arrays gain the
// elements they lack and other values are replaced. Strings inside a
// "plugins" array are code, such as require("tailwindcss-animate"), and are
// written as is. Untouched parts of the file keep their formatting.
func UpdateTailwindConfig(ctx context.Context, path string, src []byte, fragment map[string]any) ([]byte, error) {
	if len(fragment) == 0 {
		return src, nil
	}
	g := GrammarFor(path)
	if g == GrammarNone {
		return nil, fmt.Errorf("%s is not a JavaScript or TypeScript file", path)
	}
	doc, err := parse(ctx, path, src, g)
	if err != nil {
		return nil, err
	}
	defer doc.close()

	obj := configObject(doc)
	if obj == nil {
		return nil, fmt.Errorf("cannot find the exported config object in %s", path)
	}
	m := &configMerger{doc: doc, quote: firstQuote(doc), unit: "  "}
	if first := firstMember(obj); first != nil && ownLineAt(src, first.StartByte()) {
		if u := strings.TrimPrefix(lineIndentAt(src, first.StartByte()), lineIndentAt(src, obj.StartByte())); u != "" {
			m.unit = u
		}
	}
	if err := m.mergeObject(obj, fragment, ""); err != nil {
		return nil, err
	}
	return apply(src, m.edits), nil
}

// configObject finds the exported object literal.
func configObject(doc *Document) *sitter.Node {
	var target *sitter.Node
	for _, st := range children(doc.Root) {
		switch st.Type() {
		case "export_statement":
			if v := st.ChildByFieldName("value"); v != nil {
				target = v
			}
		case "expression_statement":
			a := st.NamedChild(0)
			if a == nil || a.Type() != "assignment_expression" {
				continue
			}
			if l := a.ChildByFieldName("left"); l != nil && doc.Text(l) == "module.exports" {
				target = a.ChildByFieldName("right")
			}
		}
	}
	return resolveObject(doc, target)
}

// resolveObject follows parentheses, type assertions, a wrapping call such
// as defineConfig({...}) and const references down to an object literal.
func resolveObject(doc *Document, n *sitter.Node) *sitter.Node {
	for depth := 0; n != nil && depth < 8; depth++ {
		switch n.Type() {
		case "object":
			return n
		case "parenthesized_expression", "satisfies_expression", "as_expression":
			n = n.NamedChild(0)
		case "call_expression":
			args := n.ChildByFieldName("arguments")
			if args == nil || args.NamedChildCount() == 0 {
				return nil
			}
			n = args.NamedChild(0)
		case "identifier":
			n = declaredValue(doc, doc.Text(n))
		default:
			return nil
		}
	}
	return nil
}

func declaredValue(doc *Document, name string) *sitter.Node {
	var found *sitter.Node
	walk(doc.Root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == "variable_declarator" {
			if id := n.ChildByFieldName("name"); id != nil && doc.Text(id) == name {
				found = n.ChildByFieldName("value")
			}
			return false
		}
		return true
	})
	return found
}

type configMerger struct {
	doc   *Document
	quote byte
	unit  string
	edits []Edit
}

func (m *configMerger) mergeObject(obj *sitter.Node, fragment map[string]any, path string) error {
	pairs := make(map[string]*sitter.Node)
	for _, c := range children(obj) {
		if c.Type() != "pair" {
			continue
		}
		if k := m.keyName(c.ChildByFieldName("key")); k != "" {
			pairs[k] = c
		}
	}

	indent := m.memberIndent(obj)
	var added []string
	for _, k := range sortedAnyKeys(fragment) {
		keyPath := k
		if path != "" {
			keyPath = path + "." + k
		}
		pair, ok := pairs[k]
		if !ok {
			added = append(added, renderJSKey(k, m.quote)+": "+m.render(fragment[k], indent, k))
			continue
		}
		val := pair.ChildByFieldName("value")
		switch v := fragment[k].(type) {
		case map[string]any:
			inner := resolveObject(m.doc, val)
			if inner == nil {
				return fmt.Errorf("%s: cannot merge into %s", keyPath, m.doc.Text(val))
			}
			if err := m.mergeObject(inner, v, keyPath); err != nil {
				return err
			}
		case []any:
			switch val.Type() {
			case "array":
				m.mergeArray(val, v, k)
			case "string", "number", "true", "false", "null":
				m.edits = append(m.edits, replaceNode(val, m.render(v, indent, k)))
			default:
				return fmt.Errorf("%s: cannot merge into %s", keyPath, m.doc.Text(val))
			}
		default:
			text := m.render(v, indent, k)
			if normalizeJS(m.doc.Text(val)) != normalizeJS(text) {
				m.edits = append(m.edits, replaceNode(val, text))
			}
		}
	}
	if len(added) > 0 {
		m.insertMembers(obj, added, indent)
	}
	return nil
}

func (m *configMerger) mergeArray(arr *sitter.Node, items []any, key string) {
	present := make(map[string]bool)
	for _, c := range children(arr) {
		if c.IsNamed() && c.Type() != "comment" {
			present[normalizeJS(m.doc.Text(c))] = true
		}
	}
	indent := m.memberIndent(arr)
	var added []string
	for _, it := range items {
		text := m.render(it, indent, key)
		if n := normalizeJS(text); !present[n] {
			present[n] = true
			added = append(added, text)
		}
	}
	if len(added) > 0 {
		m.insertMembers(arr, added, indent)
	}
}

// insertMembers appends items to an object or array literal, following its
// layout and trailing comma.
func (m *configMerger) insertMembers(n *sitter.Node, items []string, indent string) {
	src := m.doc.Src
	closing := n.Child(int(n.ChildCount()) - 1)
	last := lastMember(n)
	if last == nil {
		text := strings.Join(items, ", ")
		if n.Type() == "object" {
			text = "\n" + indent + strings.Join(items, ",\n"+indent) + ",\n" + lineIndentAt(src, n.StartByte())
		}
		m.edits = append(m.edits, Edit{Start: n.StartByte() + 1, End: closing.StartByte(), Text: text})
		return
	}

	pos := last.EndByte()
	after := afterComma(src, pos)
	trailing := after != pos
	var sb strings.Builder
	if trailing {
		pos = after
	} else {
		sb.WriteString(",")
	}
	if bytes.IndexByte(src[n.StartByte():n.EndByte()], '\n') >= 0 {
		for i, it := range items {
			sb.WriteString("\n" + indent + it)
			if trailing || i < len(items)-1 {
				sb.WriteString(",")
			}
		}
	} else {
		sb.WriteString(" " + strings.Join(items, ", "))
		if trailing {
			sb.WriteString(",")
		}
	}
	m.edits = append(m.edits, insertAt(pos, sb.String()))
}

func (m *configMerger) memberIndent(n *sitter.Node) string {
	if first := firstMember(n); first != nil && ownLineAt(m.doc.Src, first.StartByte()) {
		return lineIndentAt(m.doc.Src, first.StartByte())
	}
	return lineIndentAt(m.doc.Src, n.StartByte()) + m.unit
}

func (m *configMerger) keyName(key *sitter.Node) string {
	if key == nil {
		return ""
	}
	switch key.Type() {
	case "property_identifier", "number":
		return m.doc.Text(key)
	case "string":
		if start, end, ok := stringInner(key); ok {
			return string(m.doc.Src[start:end])
		}
	}
	return ""
}

// render writes v as a JavaScript literal. indent is the indentation of the
// line v starts on.
func (m *configMerger) render(v any, indent, key string) string {
	switch v := v.(type) {
	case map[string]any:
		if len(v) == 0 {
			return "{}"
		}
		inner := indent + m.unit
		var sb strings.Builder
		sb.WriteString("{\n")
		for _, k := range sortedAnyKeys(v) {
			fmt.Fprintf(&sb, "%s%s: %s,\n", inner, renderJSKey(k, m.quote), m.render(v[k], inner, k))
		}
		sb.WriteString(indent + "}")
		return sb.String()
	case []any:
		multiline := false
		for _, it := range v {
			if _, ok := it.(map[string]any); ok {
				multiline = true
			}
		}
		if !multiline {
			parts := make([]string, len(v))
			for i, it := range v {
				parts[i] = m.render(it, indent, key)
			}
			return "[" + strings.Join(parts, ", ") + "]"
		}
		inner := indent + m.unit
		var sb strings.Builder
		sb.WriteString("[\n")
		for _, it := range v {
			sb.WriteString(inner + m.render(it, inner, key) + ",\n")
		}
		sb.WriteString(indent + "]")
		return sb.String()
	case string:
		if key == "plugins" {
			return v
		}
		return quoteJS(v, m.quote)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return "null"
	}
	return fmt.Sprint(v)
}

var jsIdentifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func renderJSKey(k string, quote byte) string {
	if jsIdentifier.MatchString(k) {
		return k
	}
	return quoteJS(k, quote)
}

func quoteJS(s string, quote byte) string {
	q := string(quote)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, q, `\`+q)
	return q + s + q
}

// normalizeJS makes two renderings of a literal comparable: whitespace is
// dropped and every quote becomes a double quote.
func normalizeJS(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		case '\'', '`':
			return '"'
		}
		return r
	}, s)
}

func firstQuote(doc *Document) byte {
	var q byte
	walk(doc.Root, func(n *sitter.Node) bool {
		if q != 0 {
			return false
		}
		if n.Type() == "string" {
			q = quoteOf(doc, n)
			return false
		}
		return true
	})
	if q == 0 {
		return '"'
	}
	return q
}

func firstMember(n *sitter.Node) *sitter.Node {
	for _, c := range children(n) {
		if c.IsNamed() && c.Type() != "comment" {
			return c
		}
	}
	return nil
}

func lastMember(n *sitter.Node) *sitter.Node {
	var last *sitter.Node
	for _, c := range children(n) {
		if c.IsNamed() && c.Type() != "comment" {
			last = c
		}
	}
	return last
}

func lineIndentAt(src []byte, pos uint32) string {
	start := bytes.LastIndexByte(src[:pos], '\n') + 1
	end := start
	for end < int(pos) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}

func ownLineAt(src []byte, pos uint32) bool {
	start := bytes.LastIndexByte(src[:pos], '\n') + 1
	return len(bytes.TrimSpace(src[start:pos])) == 0
}

func sortedAnyKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
