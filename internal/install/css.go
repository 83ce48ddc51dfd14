package install

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// UpdateCSS merges registry CSS fragments into a stylesheet, in order. A
// fragment maps selectors and at-rules to their bodies:
//
//	{"@layer base": {"body": {"@apply bg-background text-foreground": {}}},
//	 "@plugin \"tailwindcss-animate\"": {}}
//
// A string value is a declaration, an empty object under an at-rule key is a
// statement such as @apply or @plugin, and any other object is a nested
// rule. Existing rules are merged into and existing declarations updated in
// place; everything else in the file is left byte for byte.
func UpdateCSS(src []byte, fragments []map[string]any) ([]byte, error) {
	text := string(src)
	crlf := strings.Contains(text, "\r\n")
	if crlf {
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	for _, f := range fragments {
		if len(f) == 0 {
			continue
		}
		sheet, err := parseStylesheet(text)
		if err != nil {
			return nil, err
		}
		u := &cssUpdater{src: text}
		u.mergeTop(sheet, f)
		text = u.result()
	}
	if crlf {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	return []byte(text), nil
}

func (u *cssUpdater) mergeTop(sheet *stylesheet, rules map[string]any) {
	var stmts, blocks strings.Builder
	for _, k := range sortedRuleKeys(rules) {
		key := normalizeRule(k)
		body, isMap := rules[k].(map[string]any)
		switch {
		case !isMap:
			// Declarations need a rule to live in.
		case len(body) == 0:
			if strings.HasPrefix(key, "@") && !hasStmt(sheet.stmts, key) {
				stmts.WriteString(key + ";\n")
			}
		default:
			if b := findBlock(sheet.top, key); b != nil {
				u.mergeRule(b, body)
				continue
			}
			blocks.WriteString("\n" + renderRule("", key, body))
		}
	}

	if stmts.Len() > 0 {
		// Statements such as @plugin follow the last top-level statement,
		// usually the @import of tailwindcss.
		if n := len(sheet.stmts); n > 0 {
			at := sheet.stmts[n-1].end
			u.replace(at, at, "\n"+strings.TrimSuffix(stmts.String(), "\n"))
		} else {
			u.replace(0, 0, stmts.String())
		}
	}
	if blocks.Len() > 0 {
		out := blocks.String()
		if strings.TrimSpace(u.src) == "" {
			out = strings.TrimPrefix(out, "\n")
		}
		u.replace(len(u.src), len(u.src), endWithNewline(u.src)+out)
	}
}

// mergeRule merges body into the existing block b.
func (u *cssUpdater) mergeRule(b *cssBlock, body map[string]any) {
	decls := make(map[string]string)
	var added strings.Builder
	indent := u.memberIndent(b)
	for _, k := range sortedRuleKeys(body) {
		key := normalizeRule(k)
		switch v := body[k].(type) {
		case map[string]any:
			if len(v) == 0 {
				if strings.HasPrefix(key, "@") && !hasStmt(b.stmts, key) {
					added.WriteString(indent + key + ";\n")
				}
				continue
			}
			if c := findBlock(b.children, key); c != nil {
				u.mergeRule(c, v)
				continue
			}
			added.WriteString(renderRule(indent, key, v))
		default:
			decls[key] = fmt.Sprint(v)
		}
	}

	existing := make(map[string]cssDecl, len(b.decls))
	for _, d := range b.decls {
		existing[d.name] = d
	}
	updated := make(map[string]string)
	var fresh strings.Builder
	for _, name := range sortedKeysOf(decls) {
		value := decls[name]
		if d, ok := existing[name]; ok {
			if u.src[d.valueStart:d.valueEnd] != value {
				updated[name] = value
			}
			continue
		}
		fmt.Fprintf(&fresh, "%s%s: %s;\n", indent, name, value)
	}

	lines := fresh.String() + added.String()
	if lines != "" && u.inline(b) {
		u.expand(b, updated, lines)
		return
	}
	for _, d := range b.decls {
		if v, ok := updated[d.name]; ok {
			u.replace(d.valueStart, d.valueEnd, v)
		}
	}
	if lines == "" {
		return
	}
	if n := len(b.decls); n > 0 && !b.decls[n-1].terminated {
		u.replace(b.decls[n-1].valueEnd, b.decls[n-1].valueEnd, ";")
	}
	u.insertBeforeClose(b, lines)
}

// memberIndent is the indentation used for new lines inside b.
func (u *cssUpdater) memberIndent(b *cssBlock) string {
	if len(b.decls) > 0 && ownLine(u.src, b.decls[0].start) {
		return lineIndent(u.src, b.decls[0].start)
	}
	if len(b.children) > 0 && ownLine(u.src, b.children[0].start) {
		return lineIndent(u.src, b.children[0].start)
	}
	return lineIndent(u.src, b.start) + "  "
}

// renderRule renders a whole rule. Declarations come first, then
// statements, then nested rules.
func renderRule(indent, key string, body map[string]any) string {
	var decls, stmts, rules strings.Builder
	inner := indent + "  "
	for _, k := range sortedRuleKeys(body) {
		name := normalizeRule(k)
		switch v := body[k].(type) {
		case map[string]any:
			if len(v) == 0 {
				if strings.HasPrefix(name, "@") {
					stmts.WriteString(inner + name + ";\n")
				}
				continue
			}
			rules.WriteString(renderRule(inner, name, v))
		default:
			fmt.Fprintf(&decls, "%s%s: %v;\n", inner, name, v)
		}
	}
	return indent + key + " {\n" + decls.String() + stmts.String() + rules.String() + indent + "}\n"
}

func hasStmt(stmts []cssStmt, text string) bool {
	for _, s := range stmts {
		if s.text == text {
			return true
		}
	}
	return false
}

func normalizeRule(k string) string {
	return strings.Join(strings.Fields(k), " ")
}

func sortedRuleKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysOf(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UpdateCSSRulesFile applies UpdateCSS to the stylesheet at path and
// reports whether the file changed.
func UpdateCSSRulesFile(path string, fragments []map[string]any) (bool, error) {
	return RewriteFile(path, func(src []byte) ([]byte, error) {
		return UpdateCSS(src, fragments)
	})
}

// RewriteFile replaces the contents of path with fn's output, keeping its
// permissions, and reports whether anything changed.
func RewriteFile(path string, fn func([]byte) ([]byte, error)) (bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	out, err := fn(src)
	if err != nil {
		return false, fmt.Errorf("updating %s: %w", path, err)
	}
	if string(out) == string(src) {
		return false, nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, fi.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
