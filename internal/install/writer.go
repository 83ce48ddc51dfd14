package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/agentx-labs/uikit/internal/logging"
	"github.com/agentx-labs/uikit/internal/telemetry"
)

// Action is what happened to one file.
type Action string

const (
	ActionCreated     Action = "created"
	ActionOverwritten Action = "overwritten"
	ActionSkipped     Action = "skipped"
	ActionUnchanged   Action = "unchanged"
)

// Pending is a transformed file waiting to be written.
type Pending struct {
	Source  string // path inside the registry item
	Target  string // absolute destination
	Content []byte
}

// FileResult reports the outcome for one file.
type FileResult struct {
	Source string
	Target string
	Action Action
}

// WriterOptions configures conflict handling.
type WriterOptions struct {
	Root      string   // shown paths are relative to it
	Overwrite bool     // replace differing files without asking
	Prompt    Prompter // nil skips differing files
}

// Writer commits items to disk. Each item is all-or-nothing: files are
// staged next to their destinations and renamed into place, and a failed
// rename restores what was already replaced.
type Writer struct {
	opts WriterOptions

	mu        sync.Mutex
	decisions map[string]bool // per-path overwrite answers for this run
}

// NewWriter returns a Writer.
func NewWriter(opts WriterOptions) *Writer {
	return &Writer{opts: opts, decisions: make(map[string]bool)}
}

// rename is swapped out by tests to inject failures.
var rename = os.Rename

type planned struct {
	Pending
	action Action
	old    []byte
	mode   fs.FileMode
	tmp    string
}

// Commit writes the files of one item.
func (w *Writer) Commit(ctx context.Context, item string, files []Pending) (_ []FileResult, err error) {
	ctx, span := telemetry.Start(ctx, "install.commit",
		attribute.String("item", item),
		attribute.Int("files", len(files)),
	)
	defer func() { telemetry.End(span, err) }()
	log := logging.FromContext(ctx)

	plan, err := w.plan(ctx, files)
	if err != nil {
		return nil, err
	}
	if err := stage(ctx, plan); err != nil {
		cleanup(plan)
		return nil, fmt.Errorf("staging %s: %w", item, err)
	}
	if err := swap(plan); err != nil {
		return nil, fmt.Errorf("writing %s: %w", item, err)
	}

	results := make([]FileResult, len(plan))
	for i, p := range plan {
		results[i] = FileResult{Source: p.Source, Target: p.Target, Action: p.action}
		log.Debug("file", "item", item, "path", w.display(p.Target), "action", p.action)
	}
	return results, nil
}

// plan classifies each file. A target listed twice keeps the last content.
func (w *Writer) plan(ctx context.Context, files []Pending) ([]*planned, error) {
	var plan []*planned
	byTarget := make(map[string]*planned, len(files))
	for _, f := range files {
		if p, ok := byTarget[f.Target]; ok {
			p.Pending = f
			continue
		}
		p := &planned{Pending: f, mode: 0o644}
		byTarget[f.Target] = p
		plan = append(plan, p)
	}

	for _, p := range plan {
		old, err := os.ReadFile(p.Target)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			p.action = ActionCreated
			continue
		case err != nil:
			return nil, fmt.Errorf("reading %s: %w", w.display(p.Target), err)
		}
		if fi, err := os.Stat(p.Target); err == nil {
			p.mode = fi.Mode().Perm()
		}
		p.old = old
		if bytes.Equal(old, p.Content) {
			p.action = ActionUnchanged
			continue
		}
		ok, err := w.decide(ctx, p.Target, old, p.Content)
		if err != nil {
			return nil, err
		}
		if ok {
			p.action = ActionOverwritten
		} else {
			p.action = ActionSkipped
		}
	}
	return plan, nil
}

func (w *Writer) decide(ctx context.Context, target string, current, proposed []byte) (bool, error) {
	if w.opts.Overwrite {
		return true, nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if d, ok := w.decisions[target]; ok {
		return d, nil
	}
	if w.opts.Prompt == nil {
		return false, nil
	}
	ok, err := w.opts.Prompt.ConfirmOverwrite(ctx, w.display(target), current, proposed)
	if err != nil {
		return false, fmt.Errorf("confirming overwrite of %s: %w", w.display(target), err)
	}
	w.decisions[target] = ok
	return ok, nil
}

func (w *Writer) display(path string) string {
	if w.opts.Root == "" {
		return path
	}
	if rel, err := filepath.Rel(w.opts.Root, path); err == nil {
		return rel
	}
	return path
}

func (p *planned) writes() bool {
	return p.action == ActionCreated || p.action == ActionOverwritten
}

// stage writes every file to a temp file in its destination directory.
func stage(ctx context.Context, plan []*planned) error {
	g, _ := errgroup.WithContext(ctx)
	for _, p := range plan {
		if !p.writes() {
			continue
		}
		g.Go(func() error {
			dir := filepath.Dir(p.Target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			f, err := os.CreateTemp(dir, "."+filepath.Base(p.Target)+".*")
			if err != nil {
				return err
			}
			p.tmp = f.Name()
			if _, err := f.Write(p.Content); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			return os.Chmod(p.tmp, p.mode)
		})
	}
	return g.Wait()
}

// swap renames staged files into place, undoing earlier renames if one
// fails.
func swap(plan []*planned) error {
	var done []*planned
	for _, p := range plan {
		if !p.writes() {
			continue
		}
		if err := rename(p.tmp, p.Target); err != nil {
			rollback(done)
			cleanup(plan)
			return err
		}
		p.tmp = ""
		done = append(done, p)
	}
	return nil
}

func rollback(done []*planned) {
	for i := len(done) - 1; i >= 0; i-- {
		p := done[i]
		if p.action == ActionCreated {
			os.Remove(p.Target)
			continue
		}
		os.WriteFile(p.Target, p.old, p.mode)
	}
}

func cleanup(plan []*planned) {
	for _, p := range plan {
		if p.tmp != "" {
			os.Remove(p.tmp)
			p.tmp = ""
		}
	}
}
