package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/agentx-labs/uikit/internal/manifest"
)

func TestResolveDependencyFirst(t *testing.T) {
	f := newMemFetcher(
		ui("button"),
		ui("alert-dialog", "button"),
	)
	set, err := Resolve(context.Background(), f, []string{"alert-dialog"}, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"button", "alert-dialog"}, set.Keys())
	assert.True(t, set.Entries[1].Root)
	assert.False(t, set.Entries[0].Root)
	assert.Equal(t, []string{"button"}, set.Entries[1].Deps)
}

func TestResolveRequestOrderDoesNotOverrideDependencies(t *testing.T) {
	f := newMemFetcher(ui("a"), ui("b", "a"))
	set, err := Resolve(context.Background(), f, []string{"b", "a"}, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, set.Keys())
}

func TestResolveDiamondFetchesOnce(t *testing.T) {
	f := newMemFetcher(
		ui("utils"),
		ui("left", "utils"),
		ui("right", "utils"),
		ui("top", "left", "right"),
	)
	set, err := Resolve(context.Background(), f, []string{"top"}, ResolveOptions{Concurrency: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"utils", "left", "right", "top"}, set.Keys())
	assert.Equal(t, 1, f.calls["utils"])
}

func TestResolveCycle(t *testing.T) {
	f := newMemFetcher(ui("a", "b"), ui("b", "a"))
	_, err := Resolve(context.Background(), f, []string{"a"}, ResolveOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCyclicDependency))

	var ce *CycleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"a", "b", "a"}, ce.Path)
	assert.Equal(t, "cyclic dependency: a → b → a", ce.Error())
}

func TestResolveSelfCycle(t *testing.T) {
	f := newMemFetcher(ui("a", "a"))
	_, err := Resolve(context.Background(), f, []string{"a"}, ResolveOptions{})
	var ce *CycleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"a", "a"}, ce.Path)
}

func TestResolveMissingDependencyIsFatal(t *testing.T) {
	f := newMemFetcher(ui("card", "ghost"))
	_, err := Resolve(context.Background(), f, []string{"card"}, ResolveOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrItemNotFound))

	var nf *ItemNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.Name)
	assert.NotEmpty(t, nf.Hint())
}

func TestResolveNoDeps(t *testing.T) {
	f := newMemFetcher(ui("button"), ui("alert-dialog", "button"))
	set, err := Resolve(context.Background(), f, []string{"alert-dialog"}, ResolveOptions{NoDeps: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"alert-dialog"}, set.Keys())
	assert.Zero(t, f.calls["button"])
}

func TestResolveBaseLayersFirst(t *testing.T) {
	style := &manifest.Item{Name: "new-york", Type: "registry:style"}
	f := newMemFetcher(ui("button"), style)
	set, err := Resolve(context.Background(), f, []string{"button", "new-york"}, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new-york", "button"}, set.Keys())
}

func TestResolveDuplicateRoots(t *testing.T) {
	f := newMemFetcher(ui("button"))
	set, err := Resolve(context.Background(), f, []string{"button", "button", "@shadcn/button"}, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"button"}, set.Keys())
}

// genDAG draws a random acyclic graph: node i may depend only on j < i.
func genDAG(t *rapid.T) []*manifest.Item {
	n := rapid.IntRange(1, 12).Draw(t, "n")
	items := make([]*manifest.Item, n)
	for i := 0; i < n; i++ {
		var deps []string
		for j := 0; j < i; j++ {
			if rapid.Bool().Draw(t, fmt.Sprintf("edge_%d_%d", i, j)) {
				deps = append(deps, fmt.Sprintf("n%d", j))
			}
		}
		items[i] = ui(fmt.Sprintf("n%d", i), deps...)
	}
	return items
}

func TestResolvePropertyDeterministicAndDependencyFirst(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := genDAG(t)
		var names []string
		for _, it := range items {
			if rapid.Bool().Draw(t, "request_"+it.Name) {
				names = append(names, it.Name)
			}
		}
		if len(names) == 0 {
			names = []string{items[len(items)-1].Name}
		}

		first, err := Resolve(context.Background(), newMemFetcher(items...), names, ResolveOptions{Concurrency: 3})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		second, err := Resolve(context.Background(), newMemFetcher(items...), names, ResolveOptions{Concurrency: 1})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !slices.Equal(first.Keys(), second.Keys()) {
			t.Fatalf("non-deterministic order: %v vs %v", first.Keys(), second.Keys())
		}

		pos := make(map[string]int)
		for i, k := range first.Keys() {
			if _, dup := pos[k]; dup {
				t.Fatalf("duplicate entry %s", k)
			}
			pos[k] = i
		}
		for _, e := range first.Entries {
			for _, d := range e.Deps {
				if pos[d] >= pos[e.Key] {
					t.Fatalf("%s installed before its dependency %s", e.Key, d)
				}
			}
		}
	})
}

func TestResolvePropertyCycleDetected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := genDAG(t)
		if len(items) < 2 {
			items = append(items, ui(fmt.Sprintf("n%d", len(items)), "n0"))
		}
		// Close a cycle by making the lowest node depend on the highest,
		// after making the highest reach the lowest.
		last := items[len(items)-1]
		last.RegistryDependencies = append(last.RegistryDependencies, "n0")
		items[0].RegistryDependencies = append(items[0].RegistryDependencies, last.Name)

		_, err := Resolve(context.Background(), newMemFetcher(items...), []string{last.Name}, ResolveOptions{})
		var ce *CycleError
		if !errors.As(err, &ce) {
			t.Fatalf("expected CycleError, got %v", err)
		}
		if ce.Path[0] != ce.Path[len(ce.Path)-1] {
			t.Fatalf("cycle path not closed: %v", ce.Path)
		}
	})
}
