package transform

import (
	"bytes"
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/agentx-labs/uikit/internal/logging"
	"github.com/agentx-labs/uikit/internal/project"
	"github.com/agentx-labs/uikit/internal/telemetry"
)

// Stage names.
const (
	StageImports = "imports"
	StageRSC     = "rsc"
	StageStyle   = "style"
	StageIcons   = "icons"
	StageErase   = "erase"
)

// Stage rewrites one concern of a parsed document. Rewrite returns the
// edits to apply; untouched bytes are copied through verbatim.
type Stage interface {
	Name() string
	Enabled(tc *Context) bool
	Rewrite(ctx context.Context, doc *Document, tc *Context) ([]Edit, error)
}

// Pipeline runs stages in order, reparsing between them.
type Pipeline struct {
	Stages []Stage
}

// NewPipeline returns the standard pipeline: imports, rsc, style, icons,
// erase.
func NewPipeline() *Pipeline {
	return &Pipeline{Stages: []Stage{
		importsStage{},
		rscStage{},
		styleStage{},
		iconsStage{},
		eraseStage{},
	}}
}

// Run transforms source for the file at path. Non-script files are
// returned unchanged.
func (p *Pipeline) Run(ctx context.Context, source []byte, path string, tc *Context) ([]byte, error) {
	g := GrammarFor(path)
	if g == GrammarNone {
		return source, nil
	}
	log := logging.FromContext(ctx)

	src := source
	for _, stage := range p.Stages {
		if !stage.Enabled(tc) {
			continue
		}
		out, err := p.runStage(ctx, stage, src, path, g, tc)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(out, src) {
			log.Debug("rewrote file", "stage", stage.Name(), "file", path)
		}
		src = out
	}
	return src, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, src []byte, path string, g Grammar, tc *Context) (_ []byte, err error) {
	ctx, span := telemetry.Start(ctx, "transform."+stage.Name(),
		attribute.String("item", tc.itemName()),
		attribute.String("file", path),
	)
	defer func() { telemetry.End(span, err) }()

	doc, err := parse(ctx, path, src, g)
	if err != nil {
		return nil, &TransformError{Item: tc.itemName(), File: path, Stage: stage.Name(), Err: err}
	}
	defer doc.close()

	edits, err := stage.Rewrite(ctx, doc, tc)
	if err != nil {
		var te *TransformError
		var ce *project.ConfigError
		if errors.As(err, &te) || errors.As(err, &ce) {
			return nil, err
		}
		return nil, &TransformError{Item: tc.itemName(), File: path, Stage: stage.Name(), Err: err}
	}
	return apply(src, edits), nil
}
