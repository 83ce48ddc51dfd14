package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentx-labs/uikit/internal/project"
)

func TestStyleMap(t *testing.T) {
	seed := testSeed(t, nil)
	src := `const buttonVariants = cva("cn-button", {
  variants: {
    variant: {
      default: "cn-button-variant-default",
      ghost: "cn-button-variant-ghost",
    },
  },
  defaultVariants: {
    variant: "default",
  },
})

export function Card() {
  return <div className="cn-card cn-menu-target p-2" title="cn-card" />
}
`
	want := `const buttonVariants = cva("inline-flex items-center justify-center gap-2 whitespace-nowrap rounded-md text-sm font-medium shadow-xs", {
  variants: {
    variant: {
      default: "bg-primary text-primary-foreground hover:bg-primary/90",
      ghost: "",
    },
  },
  defaultVariants: {
    variant: "default",
  },
})

export function Card() {
  return <div className="flex flex-col gap-6 rounded-xl border py-6 shadow-sm cn-menu-target p-2" title="cn-card" />
}
`
	assert.Equal(t, want, run(t, seed, "button.tsx", src))
}

func TestStyleFirstOccurrenceOnly(t *testing.T) {
	seed := testSeed(t, nil)
	src := "const a = cn(\"cn-input\", \"cn-input px-1\")\n"
	want := "const a = cn(\"h-9 w-full rounded-md border bg-transparent px-3 py-1 shadow-xs\", \"px-1\")\n"
	assert.Equal(t, want, run(t, seed, "a.tsx", src))
}

func TestStyleStaticColors(t *testing.T) {
	seed := testSeed(t, func(cfg *project.Config, _ *project.Info) {
		cfg.Tailwind.CSSVariables = false
		cfg.BaseColor = "zinc"
	})
	src := `export const A = () => <div className="bg-primary hover:text-muted-foreground/50 dark:border-input p-4" style={{ color: "var(--primary)", width: "var(--width)" }} />
`
	want := `export const A = () => <div className="bg-zinc-900 dark:bg-zinc-50 hover:text-zinc-500/50 dark:hover:text-zinc-400/50 dark:border-zinc-800 p-4" style={{ color: "var(--color-zinc-900)", width: "var(--width)" }} />
`
	assert.Equal(t, want, run(t, seed, "a.tsx", src))
}

func TestStyleTemplateEdges(t *testing.T) {
	seed := testSeed(t, nil)
	src := "const a = cn(`cn-card bg-${tone} cn-unknown`)\n"
	want := "const a = cn(`flex flex-col gap-6 rounded-xl border py-6 shadow-sm bg-${tone}`)\n"
	assert.Equal(t, want, run(t, seed, "a.tsx", src))
}

func TestStylePrefix(t *testing.T) {
	tests := []struct {
		name  string
		major uint64
		want  string
	}{
		{"v3", 3, `<div className="hover:tw-bg-accent -tw-mt-2" />`},
		{"v4", 4, `<div className="tw:hover:bg-accent tw:-mt-2" />`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := testSeed(t, func(cfg *project.Config, info *project.Info) {
				info.TailwindMajor = tt.major
				if tt.major == 3 {
					cfg.Tailwind.Prefix = "tw-"
				} else {
					cfg.Tailwind.Prefix = "tw"
				}
			})
			got := run(t, seed, "a.jsx", `<div className="hover:bg-accent -mt-2" />`)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStylePrefixLeavesComparedValues(t *testing.T) {
	seed := testSeed(t, func(cfg *project.Config, info *project.Info) {
		info.TailwindMajor = 3
		cfg.Tailwind.Prefix = "tw-"
	})
	tests := []struct {
		src  string
		want string
	}{
		{
			`const a = cn("fixed inset-y-0", side === "left" ? "left-0" : "right-0", className)` + "\n",
			`const a = cn("tw-fixed tw-inset-y-0", side === "left" ? "tw-left-0" : "tw-right-0", className)` + "\n",
		},
		{
			`const a = cn(variant === "outline" && "border", open || "hidden", size ?? "p-2")` + "\n",
			`const a = cn(variant === "outline" && "tw-border", open || "tw-hidden", size ?? "tw-p-2")` + "\n",
		},
		{
			`const a = cn("flex", kind !== "x" && ["gap-2", tone == "y" ? "p-1" : "p-2"])` + "\n",
			`const a = cn("tw-flex", kind !== "x" && ["tw-gap-2", tone == "y" ? "tw-p-1" : "tw-p-2"])` + "\n",
		},
		{
			`export const A = () => <div className={"left" in props ? "m-1" : "m-2"} />` + "\n",
			`export const A = () => <div className={"left" in props ? "tw-m-1" : "tw-m-2"} />` + "\n",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, run(t, seed, "a.jsx", tt.src))
	}
}

func TestStyleKeepsAuthoredDuplicates(t *testing.T) {
	seed := testSeed(t, nil)
	assert.Equal(t, "const a = cn(\"p-2 p-2 flex\")\n", run(t, seed, "a.tsx", "const a = cn(\"p-2 p-2 flex\")\n"))
	assert.Equal(t,
		"const a = cn(\"border flex flex-col gap-6 rounded-xl py-6 shadow-sm\")\n",
		run(t, seed, "a.tsx", "const a = cn(\"border cn-card\")\n"))
}

func TestRewriteClassList(t *testing.T) {
	upper := func(tok string) []string {
		if tok == "drop" {
			return nil
		}
		return []string{"x-" + tok}
	}
	tests := []struct {
		in                  string
		leftOpen, rightOpen bool
		want                string
	}{
		{"a b", false, false, "x-a x-b"},
		{" a  drop ", false, false, " x-a "},
		{"a b", true, false, "a x-b"},
		{"a b", false, true, "x-a b"},
		{" a ", true, true, " x-a "},
		{"", false, false, ""},
		{" drop ", false, false, ""},
		{" drop ", true, true, " "},
		{"a a", false, false, "x-a x-a"},
	}
	for _, tt := range tests {
		got, _ := rewriteClassList(tt.in, tt.leftOpen, tt.rightOpen, upper)
		assert.Equal(t, tt.want, got, "%q", tt.in)
	}
}
