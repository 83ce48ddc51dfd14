package transform

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentx-labs/uikit/internal/project"
)

// classFns take class lists as string arguments.
var classFns = map[string]bool{
	"cn":      true,
	"cva":     true,
	"clsx":    true,
	"cx":      true,
	"twMerge": true,
	"twJoin":  true,
}

// styleAllowlist holds cn-* classes used as selectors; they are never
// removed.
var styleAllowlist = map[string]bool{"cn-menu-target": true}

// colorUtilities are the utilities that take a theme color, longest first
// so ring-offset wins over ring.
var colorUtilities = []string{
	"ring-offset", "decoration", "placeholder",
	"border-x", "border-y", "border-t", "border-r", "border-b", "border-l", "border-s", "border-e",
	"outline", "divide", "accent", "shadow", "stroke", "border", "caret",
	"text", "fill", "from", "ring", "via", "bg", "to",
}

var cssVarRef = regexp.MustCompile(`var\(--([a-zA-Z0-9-]+)\)`)

type styleStage struct{}

func (styleStage) Name() string { return StageStyle }

func (styleStage) Enabled(tc *Context) bool { return tc.Seed != nil }

func (styleStage) Rewrite(_ context.Context, doc *Document, tc *Context) ([]Edit, error) {
	r := newClassRewriter(tc.Seed)
	var edits []Edit

	walk(doc.Root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "jsx_attribute":
			if attrName(doc, n) == "style" {
				edits = append(edits, r.inlineStyle(doc, n)...)
				return false
			}
		case "string":
			if classContext(doc, n) {
				if start, end, ok := stringInner(n); ok {
					edits = append(edits, r.fragment(doc, start, end, false, false)...)
				}
			}
			return false
		case "template_string":
			if classContext(doc, n) {
				edits = append(edits, r.template(doc, n)...)
			}
		}
		return true
	})
	return edits, nil
}

// classContext reports whether a string literal holds a class list: a
// className attribute value or an argument of a class helper such as cn or
// cva, including nested variant objects.
func classContext(doc *Document, n *sitter.Node) bool {
	firstKey, seenKey := "", false
	child := n
	for p := n.Parent(); p != nil; child, p = p, p.Parent() {
		switch p.Type() {
		case "pair":
			key := p.ChildByFieldName("key")
			if key == nil || sameNode(key, child) {
				return false
			}
			k := strings.Trim(doc.Text(key), `"'`)
			if !seenKey {
				firstKey, seenKey = k, true
			}
			switch k {
			case "defaultVariants":
				return false
			case "compoundVariants":
				if firstKey != "className" && firstKey != "class" {
					return false
				}
			}
		case "call_expression":
			fn := p.ChildByFieldName("function")
			return fn != nil && fn.Type() == "identifier" && classFns[doc.Text(fn)]
		case "jsx_attribute":
			name := attrName(doc, p)
			return name == "className" || name == "class"
		case "binary_expression":
			// Only the value side of a logical operator is a class list;
			// comparison operands and the left side of && are data.
			right := p.ChildByFieldName("right")
			op := p.ChildByFieldName("operator")
			if right == nil || op == nil || !sameNode(right, child) {
				return false
			}
			switch doc.Text(op) {
			case "&&", "||", "??":
			default:
				return false
			}
		case "ternary_expression":
			if cond := p.ChildByFieldName("condition"); cond == nil || sameNode(cond, child) {
				return false
			}
		case "arguments", "parenthesized_expression", "array", "object",
			"jsx_expression", "template_string", "template_substitution":
		default:
			return false
		}
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func attrName(doc *Document, attr *sitter.Node) string {
	if attr.ChildCount() == 0 {
		return ""
	}
	return doc.Text(attr.Child(0))
}

// classRewriter applies the style map, static colors and the class prefix
// to class tokens. Each cn-* class is expanded at its first occurrence in a
// file only.
type classRewriter struct {
	seed    *project.Seed
	v4      bool
	matched map[string]bool
}

func newClassRewriter(seed *project.Seed) *classRewriter {
	v4 := true
	if seed.Info != nil {
		v4 = seed.Info.TailwindV4(seed.Config)
	}
	return &classRewriter{seed: seed, v4: v4, matched: make(map[string]bool)}
}

// template rewrites the literal parts of a template string. Tokens that
// touch a substitution are left alone.
func (r *classRewriter) template(doc *Document, n *sitter.Node) []Edit {
	var edits []Edit
	pos := n.StartByte() + 1
	leftOpen := false
	for _, c := range children(n) {
		if c.Type() != "template_substitution" {
			continue
		}
		edits = append(edits, r.fragment(doc, pos, c.StartByte(), leftOpen, true)...)
		pos, leftOpen = c.EndByte(), true
	}
	return append(edits, r.fragment(doc, pos, n.EndByte()-1, leftOpen, false)...)
}

func (r *classRewriter) fragment(doc *Document, start, end uint32, leftOpen, rightOpen bool) []Edit {
	if end <= start {
		return nil
	}
	text := string(doc.Src[start:end])
	out, changed := rewriteClassList(text, leftOpen, rightOpen, r.rewrite)
	if !changed {
		return nil
	}
	return []Edit{{Start: start, End: end, Text: out}}
}

// rewriteClassList maps every whitespace separated token through fn. With
// leftOpen or rightOpen the token touching that edge is part of a larger
// expression and kept as is. Classes produced by a cn-* or multi-class
// expansion are dropped when already present; other tokens are always kept.
func rewriteClassList(text string, leftOpen, rightOpen bool, fn func(string) []string) (string, bool) {
	core := strings.TrimLeft(text, " \t\n\r")
	lead := text[:len(text)-len(core)]
	trimmed := strings.TrimRight(core, " \t\n\r")
	trail := core[len(trimmed):]
	tokens := strings.Fields(trimmed)
	if len(tokens) == 0 {
		return text, false
	}

	changed := false
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		locked := (i == 0 && leftOpen && lead == "") || (i == len(tokens)-1 && rightOpen && trail == "")
		mapped := []string{tok}
		if !locked {
			mapped = fn(tok)
		}
		if len(mapped) != 1 || mapped[0] != tok {
			changed = true
		}
		expanded := len(mapped) > 1 || (strings.HasPrefix(tok, "cn-") && !locked)
		for _, m := range mapped {
			if expanded && seen[m] {
				changed = true
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	if !changed {
		return text, false
	}
	if len(out) == 0 {
		if leftOpen && rightOpen && lead+trail != "" {
			return " ", true
		}
		return "", true
	}
	return lead + strings.Join(out, " ") + trail, true
}

func (r *classRewriter) rewrite(tok string) []string {
	if !strings.HasPrefix(tok, "cn-") {
		return r.utility(tok)
	}
	if styleAllowlist[tok] {
		return []string{tok}
	}
	classes, ok := r.seed.StyleMap[tok]
	if !ok || r.matched[tok] {
		return nil
	}
	r.matched[tok] = true
	var out []string
	for _, c := range strings.Fields(classes) {
		out = append(out, r.utility(c)...)
	}
	return out
}

func (r *classRewriter) utility(tok string) []string {
	out := r.staticColor(tok)
	if r.seed.Prefix != "" {
		for i := range out {
			out[i] = r.prefixed(out[i])
		}
	}
	return out
}

// staticColor maps a semantic color utility to the base color's light value
// plus a dark: variant, for projects without CSS variables.
func (r *classRewriter) staticColor(tok string) []string {
	bc := r.seed.BaseColor
	if r.seed.CSSVariables || bc == nil {
		return []string{tok}
	}
	variants, util := splitVariants(tok)
	for _, u := range colorUtilities {
		rest, ok := strings.CutPrefix(util, u+"-")
		if !ok {
			continue
		}
		color, opacity, hasOpacity := strings.Cut(rest, "/")
		light, ok := bc.Light[color]
		if !ok {
			continue
		}
		suffix := ""
		if hasOpacity {
			suffix = "/" + opacity
		}
		dark := bc.Dark[color]
		if strings.Contains(variants, "dark:") {
			return []string{variants + u + "-" + dark + suffix}
		}
		return []string{variants + u + "-" + light + suffix, "dark:" + variants + u + "-" + dark + suffix}
	}
	return []string{tok}
}

// prefixed applies the tailwind class prefix: tw:bg-x on v4, hover:tw-bg-x
// on v3.
func (r *classRewriter) prefixed(tok string) string {
	p := r.seed.Prefix
	if r.v4 {
		p = strings.TrimSuffix(p, ":")
		if strings.HasPrefix(tok, p+":") {
			return tok
		}
		return p + ":" + tok
	}
	variants, util := splitVariants(tok)
	neg := ""
	if strings.HasPrefix(util, "-") {
		neg, util = "-", util[1:]
	}
	if strings.HasPrefix(util, p) {
		return tok
	}
	return variants + neg + p + util
}

// splitVariants separates "dark:hover:bg-x" into "dark:hover:" and "bg-x",
// ignoring colons inside arbitrary values.
func splitVariants(tok string) (variants, util string) {
	depth, last := 0, -1
	for i := 0; i < len(tok); i++ {
		switch tok[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ':':
			if depth == 0 {
				last = i
			}
		}
	}
	return tok[:last+1], tok[last+1:]
}

// inlineStyle replaces var(--token) in style={{...}} values with the base
// color's static value.
func (r *classRewriter) inlineStyle(doc *Document, attr *sitter.Node) []Edit {
	bc := r.seed.BaseColor
	if r.seed.CSSVariables || bc == nil {
		return nil
	}
	var edits []Edit
	walk(attr, func(n *sitter.Node) bool {
		if n.Type() != "string" {
			return true
		}
		if p := n.Parent(); p != nil && p.Type() == "pair" {
			if key := p.ChildByFieldName("key"); key != nil && sameNode(key, n) {
				return false
			}
		}
		start, end, ok := stringInner(n)
		if !ok {
			return false
		}
		text := string(doc.Src[start:end])
		out := cssVarRef.ReplaceAllStringFunc(text, func(m string) string {
			name := cssVarRef.FindStringSubmatch(m)[1]
			if v, ok := bc.Light[name]; ok {
				return "var(--color-" + v + ")"
			}
			return m
		})
		if out != text {
			edits = append(edits, Edit{Start: start, End: end, Text: out})
		}
		return false
	})
	return edits
}
