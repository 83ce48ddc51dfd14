package add

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentx-labs/uikit/internal/logging"
)

// State is a phase of one add run.
type State string

const (
	StateIdle         State = "idle"
	StatePreflighting State = "preflighting"
	StateResolving    State = "resolving"
	StateTransforming State = "transforming"
	StateWriting      State = "writing"
	StatePostInstall  State = "post-install"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// transitions lists the forward moves. Failed is reachable from anything
// but Done; Resolving may end the run when the plan is declined.
var transitions = map[State][]State{
	StateIdle:         {StatePreflighting},
	StatePreflighting: {StateResolving},
	StateResolving:    {StateTransforming, StateDone},
	StateTransforming: {StateWriting},
	StateWriting:      {StatePostInstall, StateDone},
	StatePostInstall:  {StateDone},
}

type machine struct {
	state   State
	history []State
	log     *log.Logger
	span    trace.Span
}

func newMachine(ctx context.Context) *machine {
	return &machine{
		state:   StateIdle,
		history: []State{StateIdle},
		log:     logging.FromContext(ctx),
		span:    trace.SpanFromContext(ctx),
	}
}

func (m *machine) enter(next State) error {
	allowed := next == StateFailed && m.state != StateDone && m.state != StateFailed
	for _, s := range transitions[m.state] {
		allowed = allowed || s == next
	}
	if !allowed {
		return fmt.Errorf("invalid transition %s -> %s", m.state, next)
	}
	m.log.Debug("state", "from", m.state, "to", next)
	m.span.AddEvent("state", trace.WithAttributes(
		attribute.String("from", string(m.state)),
		attribute.String("to", string(next)),
	))
	m.state = next
	m.history = append(m.history, next)
	return nil
}

// fail moves to Failed unless the run already ended.
func (m *machine) fail(err error) {
	if m.state == StateFailed || m.state == StateDone {
		return
	}
	m.log.Debug("state", "from", m.state, "to", StateFailed, "err", err)
	_ = m.enter(StateFailed)
}
