package install

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffSummary(t *testing.T) {
	tests := []struct {
		name           string
		current, next  string
		added, removed int
	}{
		{"identical", "a\nb\n", "a\nb\n", 0, 0},
		{"one changed line", "a\nb\nc\n", "a\nB\nc\n", 1, 1},
		{"appended", "a\n", "a\nb\nc\n", 2, 0},
		{"truncated", "a\nb\n", "", 0, 2},
		{"no trailing newline", "a", "a\nb", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := DiffSummary([]byte(tt.current), []byte(tt.next))
			assert.Equal(t, tt.added, added, "added")
			assert.Equal(t, tt.removed, removed, "removed")
		})
	}
}

func TestTerminalPrompter(t *testing.T) {
	var out bytes.Buffer
	p := &TerminalPrompter{In: strings.NewReader("y\nno\n\n"), Out: &out}
	ctx := context.Background()

	ok, err := p.ConfirmOverwrite(ctx, "components/ui/button.tsx", []byte("a\n"), []byte("b\n"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "components/ui/button.tsx already exists (+1 -1 lines). Overwrite? [y/N]")

	ok, err = p.ConfirmOverwrite(ctx, "x", nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.ConfirmOverwrite(ctx, "x", nil, nil)
	require.NoError(t, err)
	assert.False(t, ok, "empty answer declines")

	ok, err = p.ConfirmOverwrite(ctx, "x", nil, nil)
	require.NoError(t, err)
	assert.False(t, ok, "EOF declines")
}

func TestTerminalPrompterCanceled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := &TerminalPrompter{In: r, Out: &bytes.Buffer{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ConfirmOverwrite(ctx, "x", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
