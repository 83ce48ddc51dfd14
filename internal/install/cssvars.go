package install

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/gorilla/css/scanner"

	"github.com/agentx-labs/uikit/internal/manifest"
)

// Selectors and at-rules the updater writes into.
const (
	lightSelector = ":root"
	darkSelector  = ".dark"
	themeAtRule   = "@theme inline"
	baseLayer     = "@layer base"
)

type cssBlock struct {
	prelude  string
	start    int // first byte of the prelude
	close    int // offset of the closing brace
	children []*cssBlock
	decls    []cssDecl
	stmts    []cssStmt
}

// cssStmt is an at-rule without a block, such as @import or @apply.
type cssStmt struct {
	text string // whitespace-normalized, without the semicolon
	end  int    // offset just past the semicolon
}

type cssDecl struct {
	name       string
	start      int
	valueStart int
	valueEnd   int
	terminated bool
}

type stylesheet struct {
	src   string
	top   []*cssBlock
	stmts []cssStmt
}

// parseStylesheet recovers the block structure and declarations of src.
// Anything that is not a block or a declaration is left opaque.
func parseStylesheet(src string) (*stylesheet, error) {
	sheet := &stylesheet{src: src}
	var stack []*cssBlock

	s := scanner.New(src)
	off, stmt := 0, 0
	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF {
			break
		}
		if tok.Type == scanner.TokenError {
			return nil, fmt.Errorf("line %d column %d: unexpected %q", tok.Line, tok.Column, tok.Value)
		}
		if !strings.HasPrefix(src[off:], tok.Value) {
			return nil, fmt.Errorf("line %d column %d: cannot map token %q to the source", tok.Line, tok.Column, tok.Value)
		}
		at := off
		off += len(tok.Value)

		if tok.Type == scanner.TokenComment {
			if strings.TrimSpace(src[stmt:at]) == "" {
				stmt = off
			}
			continue
		}
		if tok.Type != scanner.TokenChar {
			continue
		}
		switch tok.Value {
		case "{":
			b := &cssBlock{
				prelude: strings.Join(strings.Fields(src[stmt:at]), " "),
				start:   skipSpace(src, stmt, at),
			}
			if n := len(stack); n > 0 {
				stack[n-1].children = append(stack[n-1].children, b)
			} else {
				sheet.top = append(sheet.top, b)
			}
			stack = append(stack, b)
			stmt = off
		case ";":
			declare(sheet, stack, src, stmt, at, true)
			stmt = off
		case "}":
			if len(stack) == 0 {
				return nil, fmt.Errorf("line %d column %d: unbalanced }", tok.Line, tok.Column)
			}
			declare(sheet, stack, src, stmt, at, false)
			b := stack[len(stack)-1]
			b.close = at
			stack = stack[:len(stack)-1]
			stmt = off
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("unclosed block %q", stack[len(stack)-1].prelude)
	}
	return sheet, nil
}

// declare records src[from:to] as a declaration or an at-rule statement of
// the innermost block if it looks like one.
func declare(sheet *stylesheet, stack []*cssBlock, src string, from, to int, terminated bool) {
	text := src[from:to]
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "@") {
		st := cssStmt{text: strings.Join(strings.Fields(trimmed), " "), end: to}
		if terminated {
			st.end++
		}
		if n := len(stack); n > 0 {
			stack[n-1].stmts = append(stack[n-1].stmts, st)
		} else {
			sheet.stmts = append(sheet.stmts, st)
		}
		return
	}
	if len(stack) == 0 || trimmed == "" {
		return
	}
	colon := strings.IndexByte(text, ':')
	if colon < 0 {
		return
	}
	end := from + len(strings.TrimRightFunc(text, unicode.IsSpace))
	b := stack[len(stack)-1]
	b.decls = append(b.decls, cssDecl{
		name:       strings.TrimSpace(text[:colon]),
		start:      skipSpace(src, from, end),
		valueStart: skipSpace(src, from+colon+1, end),
		valueEnd:   end,
		terminated: terminated,
	})
}

func skipSpace(src string, from, to int) int {
	for from < to && unicode.IsSpace(rune(src[from])) {
		from++
	}
	return from
}

func findBlock(blocks []*cssBlock, prelude string) *cssBlock {
	for _, b := range blocks {
		if b.prelude == prelude {
			return b
		}
	}
	return nil
}

type cssEdit struct {
	at, end int
	text    string
}

type cssUpdater struct {
	src   string
	edits []cssEdit
}

func (u *cssUpdater) replace(at, end int, text string) {
	u.edits = append(u.edits, cssEdit{at: at, end: end, text: text})
}

// result applies the edits back to front. Insertions at the same offset
// come out in the order they were made.
func (u *cssUpdater) result() string {
	order := make([]int, len(u.edits))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := u.edits[order[i]], u.edits[order[j]]
		if a.at != b.at {
			return a.at > b.at
		}
		return order[i] > order[j]
	})
	out := u.src
	for _, i := range order {
		e := u.edits[i]
		out = out[:e.at] + e.text + out[e.end:]
	}
	return out
}

// merge updates existing declarations of b in place and appends the rest
// before its closing brace.
func (u *cssUpdater) merge(b *cssBlock, vars map[string]string) {
	existing := make(map[string]cssDecl, len(b.decls))
	for _, d := range b.decls {
		existing[d.name] = d
	}

	added := make(map[string]string)
	updated := make(map[string]string)
	for _, k := range sortedVarNames(vars) {
		name, value := varName(k), vars[k]
		d, ok := existing[name]
		if !ok {
			added[k] = value
			continue
		}
		if u.src[d.valueStart:d.valueEnd] != value {
			updated[name] = value
		}
	}
	if len(added) > 0 && u.inline(b) {
		u.expand(b, updated, renderDecls(lineIndent(u.src, b.start)+"  ", added))
		return
	}
	for _, d := range b.decls {
		if v, ok := updated[d.name]; ok {
			u.replace(d.valueStart, d.valueEnd, v)
		}
	}
	if len(added) == 0 {
		return
	}

	indent := lineIndent(u.src, b.start) + "  "
	if n := len(b.decls); n > 0 {
		last := b.decls[n-1]
		if first := b.decls[0].start; ownLine(u.src, first) {
			indent = lineIndent(u.src, first)
		}
		if !last.terminated {
			u.replace(last.valueEnd, last.valueEnd, ";")
		}
	}
	u.insertBeforeClose(b, renderDecls(indent, added))
}

// inline reports whether b sits on one line and holds nothing but
// declarations.
func (u *cssUpdater) inline(b *cssBlock) bool {
	body := u.src[b.start:b.close]
	if len(b.decls) == 0 || strings.Contains(body, "\n") {
		return false
	}
	base := u.openBrace(b) + 1
	rest := u.src[base:b.close]
	for i := len(b.decls) - 1; i >= 0; i-- {
		d := b.decls[i]
		rest = rest[:d.start-base] + rest[d.valueEnd-base:]
	}
	return strings.Trim(rest, " \t;") == ""
}

func (u *cssUpdater) openBrace(b *cssBlock) int {
	return b.start + strings.IndexByte(u.src[b.start:b.close], '{')
}

// expand rewrites a one-line block with one declaration per line, applying
// updated values and appending lines.
func (u *cssUpdater) expand(b *cssBlock, updated map[string]string, lines string) {
	outer := lineIndent(u.src, b.start)
	indent := outer + "  "
	var sb strings.Builder
	sb.WriteString("\n")
	for _, d := range b.decls {
		value := u.src[d.valueStart:d.valueEnd]
		if v, ok := updated[d.name]; ok {
			value = v
		}
		fmt.Fprintf(&sb, "%s%s%s;\n", indent, u.src[d.start:d.valueStart], value)
	}
	sb.WriteString(lines)
	sb.WriteString(outer)
	u.replace(u.openBrace(b)+1, b.close, sb.String())
}

// insertBeforeClose puts lines, each ending in a newline, on their own
// lines right before the closing brace of b.
func (u *cssUpdater) insertBeforeClose(b *cssBlock, lines string) {
	lineStart := strings.LastIndexByte(u.src[:b.close], '\n') + 1
	if strings.TrimSpace(u.src[lineStart:b.close]) == "" && lineStart > b.start {
		u.replace(lineStart, lineStart, lines)
		return
	}
	u.replace(b.close, b.close, "\n"+lines+lineIndent(u.src, b.start))
}

func lineIndent(src string, at int) string {
	lineStart := strings.LastIndexByte(src[:at], '\n') + 1
	return src[lineStart:skipSpace(src, lineStart, at)]
}

// ownLine reports whether only whitespace precedes at on its line.
func ownLine(src string, at int) bool {
	lineStart := strings.LastIndexByte(src[:at], '\n') + 1
	return strings.TrimSpace(src[lineStart:at]) == ""
}

func varName(k string) string {
	if strings.HasPrefix(k, "--") {
		return k
	}
	return "--" + k
}

func sortedVarNames(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderDecls(indent string, vars map[string]string) string {
	var sb strings.Builder
	for _, k := range sortedVarNames(vars) {
		fmt.Fprintf(&sb, "%s%s: %s;\n", indent, varName(k), vars[k])
	}
	return sb.String()
}

func renderBlock(indent, prelude string, vars map[string]string) string {
	return indent + prelude + " {\n" + renderDecls(indent+"  ", vars) + indent + "}\n"
}

type scopedVars struct {
	prelude string
	vars    map[string]string
}

// UpdateCSSVars merges vars into a Tailwind stylesheet. Light variables go
// to :root and dark ones to .dark. On Tailwind v4 those blocks are top level
// and theme variables go to "@theme inline"; on v3 everything lives inside
// "@layer base" and theme variables join :root. Existing declarations are
// updated in place, missing ones appended in name order and missing blocks
// created. The rest of the file is left byte for byte.
func UpdateCSSVars(src []byte, vars *manifest.CSSVars, tailwindV4 bool) ([]byte, error) {
	if vars.Empty() {
		return src, nil
	}
	text := string(src)
	crlf := strings.Contains(text, "\r\n")
	if crlf {
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}

	sheet, err := parseStylesheet(text)
	if err != nil {
		return nil, err
	}

	light := vars.Light
	var scopes []scopedVars
	if !tailwindV4 && len(vars.Theme) > 0 {
		light = make(map[string]string, len(vars.Theme)+len(vars.Light))
		for k, v := range vars.Theme {
			light[k] = v
		}
		for k, v := range vars.Light {
			light[k] = v
		}
	}
	scopes = append(scopes, scopedVars{lightSelector, light}, scopedVars{darkSelector, vars.Dark})
	if tailwindV4 {
		scopes = append(scopes, scopedVars{themeAtRule, vars.Theme})
	}

	u := &cssUpdater{src: text}
	blocks := sheet.top
	var layer *cssBlock
	if !tailwindV4 {
		layer = findBlock(sheet.top, baseLayer)
		blocks = nil
		if layer != nil {
			blocks = layer.children
		}
	}

	var missing []scopedVars
	for _, sc := range scopes {
		if len(sc.vars) == 0 {
			continue
		}
		if b := findBlock(blocks, sc.prelude); b != nil {
			u.merge(b, sc.vars)
			continue
		}
		missing = append(missing, sc)
	}

	if len(missing) > 0 {
		blank := strings.TrimSpace(text) == ""
		switch {
		case tailwindV4:
			var sb strings.Builder
			for i, sc := range missing {
				if i > 0 || !blank {
					sb.WriteString("\n")
				}
				sb.WriteString(renderBlock("", sc.prelude, sc.vars))
			}
			u.replace(len(text), len(text), endWithNewline(text)+sb.String())
		case layer != nil:
			indent := lineIndent(text, layer.start) + "  "
			var sb strings.Builder
			for _, sc := range missing {
				sb.WriteString(renderBlock(indent, sc.prelude, sc.vars))
			}
			u.insertBeforeClose(layer, sb.String())
		default:
			var sb strings.Builder
			if !blank {
				sb.WriteString("\n")
			}
			sb.WriteString(baseLayer + " {\n")
			for _, sc := range missing {
				sb.WriteString(renderBlock("  ", sc.prelude, sc.vars))
			}
			sb.WriteString("}\n")
			u.replace(len(text), len(text), endWithNewline(text)+sb.String())
		}
	}

	out := u.result()
	if crlf {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	return []byte(out), nil
}

// endWithNewline returns what must be appended to text so it ends in a
// newline.
func endWithNewline(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return ""
	}
	return "\n"
}

// UpdateCSSFile applies UpdateCSSVars to the stylesheet at path and reports
// whether the file changed.
func UpdateCSSFile(path string, vars *manifest.CSSVars, tailwindV4 bool) (bool, error) {
	return RewriteFile(path, func(src []byte) ([]byte, error) {
		return UpdateCSSVars(src, vars, tailwindV4)
	})
}
