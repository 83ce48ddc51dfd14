package install

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Prompter decides whether an existing file that differs may be replaced.
type Prompter interface {
	ConfirmOverwrite(ctx context.Context, path string, current, proposed []byte) (bool, error)
}

// TerminalPrompter asks on Out and reads y/n answers from In.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// ConfirmOverwrite prints a one-line change summary and waits for an
// answer. Anything but y or yes declines.
func (p *TerminalPrompter) ConfirmOverwrite(ctx context.Context, path string, current, proposed []byte) (bool, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	added, removed := DiffSummary(current, proposed)
	fmt.Fprintf(p.Out, "%s already exists (+%d -%d lines). Overwrite? [y/N] ", path, added, removed)

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := p.reader.ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, fmt.Errorf("reading answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

// DiffSummary counts the lines added and removed between two versions.
func DiffSummary(current, proposed []byte) (added, removed int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(current), string(proposed))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			removed += n
		}
	}
	return added, removed
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// staticPrompter answers every question the same way.
type staticPrompter bool

func (s staticPrompter) ConfirmOverwrite(context.Context, string, []byte, []byte) (bool, error) {
	return bool(s), nil
}

// Always answers yes; Never answers no.
var (
	Always Prompter = staticPrompter(true)
	Never  Prompter = staticPrompter(false)
)
