package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/uikit/internal/project"
)

func TestImportsRewrite(t *testing.T) {
	seed := testSeed(t, func(cfg *project.Config, _ *project.Info) {
		cfg.Aliases = project.Aliases{Components: "~/components", Utils: "~/lib/utils"}
	})

	src := `import * as React from "react"
import { Button } from "@/registry/new-york/ui/button"
import { cn } from '@/registry/new-york/lib/utils'
import { Input } from "@/components/ui/input"
export { useToast } from "@/registry/new-york/hooks/use-toast"

const Lazy = React.lazy(() => import("@/registry/new-york/blocks/login-form"))
const format = require("@/lib/format")
`
	want := `import * as React from "react"
import { Button } from "~/components/ui/button"
import { cn } from '~/lib/utils'
import { Input } from "~/components/ui/input"
export { useToast } from "~/hooks/use-toast"

const Lazy = React.lazy(() => import("~/components/login-form"))
const format = require("~/lib/format")
`
	got := run(t, seed, "components/demo.tsx", src)
	assert.Equal(t, want, got)

	// Already rewritten sources are left alone.
	assert.Equal(t, got, run(t, seed, "components/demo.tsx", got))
}

func TestImportsRoundTrip(t *testing.T) {
	aliasSets := []project.Aliases{
		{Components: "@/components", Utils: "@/lib/utils"},
		{Components: "~/components", Utils: "~/lib/utils", UI: "~/ui"},
		{Components: "#app/components", Utils: "#app/utils", Hooks: "#app/hooks", Lib: "#app/lib"},
	}
	registry := []string{
		"@/registry/new-york/ui/button",
		"@/registry/vega/lib/utils",
		"@/registry/new-york/hooks/use-mobile",
		"@/registry/new-york/lib/fonts",
		"@/registry/new-york/examples/button-demo",
	}

	for _, aliases := range aliasSets {
		seed := testSeed(t, func(cfg *project.Config, _ *project.Info) { cfg.Aliases = aliases })
		for _, spec := range registry {
			out, _, ok := RewriteSpecifier(spec, seed)
			require.True(t, ok, spec)
			again, _, _ := RewriteSpecifier(out, seed)
			assert.Equal(t, out, again, "%s via %+v", spec, aliases)
		}
	}
}

func TestImportsMissingAlias(t *testing.T) {
	seed := testSeed(t, func(cfg *project.Config, _ *project.Info) {
		cfg.Aliases = project.Aliases{Utils: "@/lib/utils"}
	})
	tc := newContext(seed)

	src := "import { Button } from \"@/registry/new-york/ui/button\"\n"
	out, err := NewPipeline().Run(context.Background(), []byte(src), "x.tsx", tc)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, project.ErrInvalidConfiguration))
	assert.False(t, errors.Is(err, ErrTransform))

	var ce *project.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "aliases.ui", ce.Field)
	assert.Equal(t, "test", ce.Item)
	assert.Contains(t, ce.Hint(), "aliases.ui")
}
