package registry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/uikit/internal/manifest"
)

func TestMergeManifest(t *testing.T) {
	button := ui("button")
	button.Dependencies = []string{"@radix-ui/react-slot", "clsx"}
	button.CSSVars = &manifest.CSSVars{Light: map[string]string{"radius": "0.5rem", "ring": "blue"}}
	button.Tailwind = map[string]any{"theme": map[string]any{"extend": map[string]any{"a": 1}}}

	dialog := ui("alert-dialog", "button")
	dialog.Dependencies = []string{"@radix-ui/react-alert-dialog", "clsx@2"}
	dialog.DevDependencies = []string{"@types/react"}
	dialog.CSSVars = &manifest.CSSVars{Light: map[string]string{"radius": "1rem"}}
	dialog.CSS = map[string]any{"@layer base": map[string]any{"body": map[string]any{"color": "red"}}}
	dialog.Tailwind = map[string]any{"theme": map[string]any{"extend": map[string]any{"b": 2}}}
	dialog.Docs = "See docs."

	set, err := Resolve(context.Background(), newMemFetcher(button, dialog), []string{"alert-dialog"}, ResolveOptions{})
	require.NoError(t, err)

	m := set.Manifest
	assert.Equal(t, []string{"@radix-ui/react-slot", "clsx", "@radix-ui/react-alert-dialog"}, m.Dependencies)
	assert.Equal(t, []string{"@types/react"}, m.DevDependencies)
	assert.Equal(t, "1rem", m.CSSVars.Light["radius"], "last resolved wins")
	assert.Equal(t, "blue", m.CSSVars.Light["ring"])
	assert.Len(t, m.CSS, 1)
	assert.Equal(t, []string{"See docs."}, m.Docs)

	extend := m.Tailwind["theme"].(map[string]any)["extend"].(map[string]any)
	assert.Equal(t, 1, extend["a"])
	assert.Equal(t, 2, extend["b"])
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"clsx":                    "clsx",
		"clsx@2.1.0":              "clsx",
		"@radix-ui/react-slot":    "@radix-ui/react-slot",
		"@radix-ui/react-slot@^1": "@radix-ui/react-slot",
	}
	for in, want := range tests {
		assert.Equal(t, want, PackageName(in), in)
	}
}

func TestPrintPlan(t *testing.T) {
	f := newMemFetcher(ui("button"), ui("alert-dialog", "button"), ui("dialog", "button"))
	set, err := Resolve(context.Background(), f, []string{"alert-dialog", "dialog"}, ResolveOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintPlan(&buf, set)
	out := buf.String()

	assert.Contains(t, out, "alert-dialog (ui)")
	assert.Contains(t, out, "└── button (ui)")
	assert.Contains(t, out, "button (ui) (deduped)")
	assert.Contains(t, out, "Install: 3 ui (3 items)")
	assert.Equal(t, 1, strings.Count(out, "Resolving dependencies"))
}
