package transform

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Grammar identifies the tree-sitter grammar used for a file.
type Grammar int

const (
	GrammarNone Grammar = iota
	GrammarTSX
	GrammarTypeScript
)

// GrammarFor picks the grammar from the file extension. Files that are not
// scripts get GrammarNone and pass through the pipeline untouched.
func GrammarFor(path string) Grammar {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx", ".js", ".mjs", ".cjs":
		return GrammarTSX
	case ".ts", ".mts", ".cts":
		return GrammarTypeScript
	default:
		return GrammarNone
	}
}

func (g Grammar) language() *sitter.Language {
	if g == GrammarTypeScript {
		return typescript.GetLanguage()
	}
	return tsx.GetLanguage()
}

// OutputPath maps a source path to the path it is written under. Without
// TypeScript, .tsx becomes .jsx and .ts becomes .js.
func OutputPath(path string, ts bool) string {
	if ts || strings.HasSuffix(path, ".d.ts") {
		return path
	}
	ext := filepath.Ext(path)
	switch ext {
	case ".tsx":
		return strings.TrimSuffix(path, ext) + ".jsx"
	case ".ts":
		return strings.TrimSuffix(path, ext) + ".js"
	case ".mts":
		return strings.TrimSuffix(path, ext) + ".mjs"
	case ".cts":
		return strings.TrimSuffix(path, ext) + ".cjs"
	}
	return path
}

// Document is one parsed revision of a file.
type Document struct {
	Path    string
	Src     []byte
	Grammar Grammar
	Root    *sitter.Node

	tree *sitter.Tree
}

func parse(ctx context.Context, path string, src []byte, g Grammar) (*Document, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.language())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	root := tree.RootNode()
	if root.HasError() {
		tree.Close()
		return nil, fmt.Errorf("syntax error near %s", errorLocation(root, src))
	}
	return &Document{Path: path, Src: src, Grammar: g, Root: root, tree: tree}, nil
}

func (d *Document) close() {
	if d.tree != nil {
		d.tree.Close()
	}
}

// Text returns the source text of n.
func (d *Document) Text(n *sitter.Node) string {
	return n.Content(d.Src)
}

// errorLocation finds the first ERROR or missing node for the message.
func errorLocation(root *sitter.Node, src []byte) string {
	var found *sitter.Node
	walk(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})
	if found == nil {
		return "unknown position"
	}
	p := found.StartPoint()
	return fmt.Sprintf("line %d column %d", p.Row+1, p.Column+1)
}

// walk visits n and its descendants depth first in document order. fn
// returns false to skip a node's children.
func walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), fn)
	}
}

// children returns the direct children of n.
func children(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// hasToken reports whether n has a direct anonymous child of the given type,
// such as the "type" keyword in `import type`.
func hasToken(n *sitter.Node, token string) bool {
	return tokenChild(n, token) != nil
}

func tokenChild(n *sitter.Node, token string) *sitter.Node {
	for _, c := range children(n) {
		if !c.IsNamed() && c.Type() == token {
			return c
		}
	}
	return nil
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for _, c := range children(n) {
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

// stringInner returns the byte range between the quotes of a string node.
func stringInner(n *sitter.Node) (start, end uint32, ok bool) {
	if n == nil || n.Type() != "string" || n.EndByte()-n.StartByte() < 2 {
		return 0, 0, false
	}
	return n.StartByte() + 1, n.EndByte() - 1, true
}

// Edit replaces Src[Start:End] with Text. Start == End inserts.
type Edit struct {
	Start uint32
	End   uint32
	Text  string
}

func replaceNode(n *sitter.Node, text string) Edit {
	return Edit{Start: n.StartByte(), End: n.EndByte(), Text: text}
}

func insertAt(pos uint32, text string) Edit {
	return Edit{Start: pos, End: pos, Text: text}
}

// deleteStatement removes n. When n sits alone on its lines the whole lines
// go, including the trailing newline.
func deleteStatement(src []byte, n *sitter.Node) Edit {
	start, end := int(n.StartByte()), int(n.EndByte())

	ls := start
	for ls > 0 && (src[ls-1] == ' ' || src[ls-1] == '\t') {
		ls--
	}
	le := end
	for le < len(src) && (src[le] == ' ' || src[le] == '\t' || src[le] == ';') {
		le++
	}
	if (ls == 0 || src[ls-1] == '\n') && (le == len(src) || src[le] == '\n' || src[le] == '\r') {
		if le < len(src) && src[le] == '\r' {
			le++
		}
		if le < len(src) && src[le] == '\n' {
			le++
		}
		// Between two blank lines, take one of them too.
		prevBlank := ls == 0 || (src[ls-1] == '\n' && (ls == 1 || src[ls-2] == '\n'))
		if prevBlank && le < len(src) && src[le] == '\n' {
			le++
		}
		return Edit{Start: uint32(ls), End: uint32(le)}
	}
	return Edit{Start: uint32(start), End: uint32(end)}
}

// deleteToken removes n plus the blanks that follow it.
func deleteToken(src []byte, n *sitter.Node) Edit {
	end := int(n.EndByte())
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return Edit{Start: n.StartByte(), End: uint32(end)}
}

// deleteWithLeadingSpace removes n plus the whitespace that precedes it, for
// JSX attributes.
func deleteWithLeadingSpace(src []byte, n *sitter.Node) Edit {
	start := int(n.StartByte())
	for start > 0 && isSpace(src[start-1]) {
		start--
	}
	return Edit{Start: uint32(start), End: n.EndByte()}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// apply renders src with edits. Edits are applied in position order;
// insertions at a position go before a replacement starting there, and an
// edit that overlaps an earlier one is dropped.
func apply(src []byte, edits []Edit) []byte {
	if len(edits) == 0 {
		return src
	}
	sorted := append([]Edit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		ai, bi := a.Start == a.End, b.Start == b.End
		if ai != bi {
			return ai
		}
		return a.End > b.End
	})

	var sb strings.Builder
	sb.Grow(len(src))
	var pos uint32
	for _, e := range sorted {
		if e.Start < pos {
			continue
		}
		sb.Write(src[pos:e.Start])
		sb.WriteString(e.Text)
		pos = e.End
	}
	sb.Write(src[pos:])
	return []byte(sb.String())
}
