// Package transform rewrites registry source files for the target project.
//
// Each stage parses the file with tree-sitter, collects byte-range edits
// against the concrete syntax tree, and renders the result by copying
// every untouched range verbatim, so formatting and comments survive. The
// next stage reparses the rendered output. Stages:
//
//   - imports: registry and consumer import paths to the project aliases
//   - rsc: "use client" directives and server-only imports when RSC is off
//   - style: cn-* placeholder classes, static colors, inline style tokens
//   - icons: <IconPlaceholder> elements to the configured icon library
//   - erase: TypeScript-only syntax when the project uses JavaScript
package transform
