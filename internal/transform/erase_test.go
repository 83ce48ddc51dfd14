package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentx-labs/uikit/internal/project"
)

func jsSeed(t *testing.T) *project.Seed {
	return testSeed(t, func(cfg *project.Config, _ *project.Info) { cfg.TSX = false })
}

func TestEraseTypes(t *testing.T) {
	src := `import * as React from "react"
import type { VariantProps } from "class-variance-authority"
import { cva, type CvaConfig } from "class-variance-authority"
import { Slot } from "@radix-ui/react-slot"
import { ButtonProps } from "./types"

interface Props extends ButtonProps {
  asChild?: boolean
}

export type Size = "sm" | "lg"

const variants = cva("p-2") as unknown as string

function Button<T>({ asChild, ...props }: Props): React.ReactElement {
  const ref = React.useRef<HTMLButtonElement>(null!)
  const Comp = asChild ? Slot : "button"
  return <Comp ref={ref} {...(props as any)} />
}

export { Button, type Props }
`
	want := `import * as React from "react"
import { cva } from "class-variance-authority"
import { Slot } from "@radix-ui/react-slot"

const variants = cva("p-2")

function Button({ asChild, ...props }) {
  const ref = React.useRef(null)
  const Comp = asChild ? Slot : "button"
  return <Comp ref={ref} {...(props)} />
}

export { Button }
`
	assert.Equal(t, want, run(t, jsSeed(t), "button.tsx", src))
}

func TestEraseClassMembers(t *testing.T) {
	src := `abstract class Base implements Runner {
  private readonly name: string = "x"
  declare meta: unknown
  count?: number
  public run(input: string): void {}
  protected abstract stop(): void
}
`
	want := `class Base {
  name = "x"
  count
  run(input) {}
}
`
	assert.Equal(t, want, run(t, jsSeed(t), "base.ts", src))
}

func TestEraseTypeScriptGrammar(t *testing.T) {
	src := "const n = <number>value\nconst s = value satisfies string\nfunction f(a?: string): a is string { return true }\n"
	want := "const n = value\nconst s = value\nfunction f(a) { return true }\n"
	assert.Equal(t, want, run(t, jsSeed(t), "util.ts", src))
}

func TestEraseThisParameter(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{"function f(this: Window, a: number) {}\n", "function f(a) {}\n"},
		{"function g(this: Window) {}\n", "function g() {}\n"},
		{"const h = function (\n  this: HTMLElement,\n  e: Event\n) {}\n", "const h = function (\n  e\n) {}\n"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, run(t, jsSeed(t), "a.ts", tt.src))
	}
}

func TestEraseRejectsRuntimeTypeScript(t *testing.T) {
	tests := map[string]string{
		"enum":      "export enum Color { Red, Green }\n",
		"parameter": "class A {\n  constructor(private x: number) {}\n}\n",
		"namespace": "namespace NS { export const a = 1 }\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewPipeline().Run(context.Background(), []byte(src), "a.ts", newContext(jsSeed(t)))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTransform))

			var te *TransformError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, StageErase, te.Stage)
			assert.Equal(t, "test", te.Item)
			assert.Equal(t, "a.ts", te.File)
			assert.Contains(t, te.Hint(), "tsx")
		})
	}
}

func TestEraseSkippedForTypeScriptProjects(t *testing.T) {
	src := "export enum Color { Red }\nconst x: number = 1\n"
	assert.Equal(t, src, run(t, testSeed(t, nil), "a.ts", src))
}
