package interaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ticketdesk/internal/gateway"
	"ticketdesk/internal/interaction/metrics"

	id "ticketdesk/pkg/domain"
)

// CommandFunc handles a command invocation.
type CommandFunc func(ctx context.Context, in *Interaction, r *Responder) error

// HandlerFunc handles a decoded component activation or form submission.
type HandlerFunc func(ctx context.Context, in *Interaction, act Action, r *Responder) error

// Command registers a named command.
type Command struct {
	Name string
	Run  CommandFunc
}

// Component registers a handler for one component action kind. StaffOnly
// handlers are gated on the actor's role set before dispatch.
type Component struct {
	Kind      ActionKind
	StaffOnly bool
	Run       HandlerFunc
}

// Modal registers a handler for one form submission kind.
type Modal struct {
	Kind      ActionKind
	StaffOnly bool
	Run       HandlerFunc
}

const genericFailure = "Something went wrong while handling this action. Please try again later."

// Router classifies interactions, applies the staff gate, and guarantees
// exactly one terminal reply per interaction.
type Router struct {
	commands   map[string]Command
	components map[ActionKind]Component
	modals     map[ActionKind]Modal

	staffRole id.RoleID
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// NewRouter constructs an empty router.
func NewRouter(staffRole id.RoleID, logger *slog.Logger, m *metrics.Metrics) (*Router, error) {
	if staffRole == "" {
		return nil, fmt.Errorf("staff role is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Router{
		commands:   make(map[string]Command),
		components: make(map[ActionKind]Component),
		modals:     make(map[ActionKind]Modal),
		staffRole:  staffRole,
		logger:     logger,
		metrics:    m,
		tracer:     otel.Tracer("ticketdesk/interaction"),
	}, nil
}

// RegisterCommand adds a command handler.
func (rt *Router) RegisterCommand(cmd Command) {
	rt.commands[cmd.Name] = cmd
}

// RegisterComponent adds a component handler.
func (rt *Router) RegisterComponent(c Component) {
	rt.components[c.Kind] = c
}

// RegisterModal adds a form-submission handler.
func (rt *Router) RegisterModal(m Modal) {
	rt.modals[m.Kind] = m
}

// Dispatch routes one interaction. It never returns an error: every
// failure path ends in a terminal reply for the actor and a log line for
// the operator.
func (rt *Router) Dispatch(ctx context.Context, in *Interaction, r *Responder) {
	ctx, span := rt.tracer.Start(ctx, "interaction.dispatch", trace.WithAttributes(
		attribute.String("interaction.kind", in.Kind.String()),
		attribute.String("interaction.id", in.ID),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		rt.metrics.ObserveDispatchLatency(in.Kind.String(), time.Since(start))
	}()

	switch in.Kind {
	case KindCommand:
		rt.dispatchCommand(ctx, in, r)
	case KindComponent:
		rt.dispatchComponent(ctx, in, r)
	case KindModal:
		rt.dispatchModal(ctx, in, r)
	default:
		rt.metrics.IncrementDispatch(in.Kind.String(), "unknown")
		rt.logger.WarnContext(ctx, "unroutable interaction kind", "kind", int(in.Kind), "interaction_id", in.ID)
	}
}

func (rt *Router) dispatchCommand(ctx context.Context, in *Interaction, r *Responder) {
	cmd, ok := rt.commands[in.CommandName]
	if !ok {
		rt.metrics.IncrementDispatch(in.Kind.String(), "unknown")
		rt.logger.WarnContext(ctx, "unknown command",
			"command", in.CommandName,
			"user_id", in.Actor(),
		)
		rt.replyFailure(ctx, in, r)
		return
	}

	if err := rt.run(ctx, in, r, func(ctx context.Context) error {
		return cmd.Run(ctx, in, r)
	}); err != nil {
		rt.metrics.IncrementDispatch(in.Kind.String(), "error")
		rt.logger.ErrorContext(ctx, "command handler failed",
			"command", in.CommandName,
			"user_id", in.Actor(),
			"error", err,
		)
		// Commands follow up when a reply already went out.
		if r.Replied() && !r.Deferred() {
			rt.followUpFailure(ctx, in, r)
		} else {
			rt.replyFailure(ctx, in, r)
		}
		return
	}
	rt.metrics.IncrementDispatch(in.Kind.String(), "ok")
}

func (rt *Router) dispatchComponent(ctx context.Context, in *Interaction, r *Responder) {
	act, err := DecodeAction(in.CustomID)
	if err != nil {
		rt.metrics.IncrementDispatch(in.Kind.String(), "unknown")
		rt.logger.WarnContext(ctx, "undecodable component id",
			"custom_id", in.CustomID,
			"user_id", in.Actor(),
		)
		rt.replyFailure(ctx, in, r)
		return
	}

	handler, ok := rt.components[act.Kind]
	if !ok {
		rt.metrics.IncrementDispatch(in.Kind.String(), "unknown")
		rt.logger.WarnContext(ctx, "unregistered component action", "action", string(act.Kind))
		rt.replyFailure(ctx, in, r)
		return
	}

	if handler.StaffOnly && !rt.gate(ctx, in, r, act.Kind) {
		return
	}

	rt.runHandler(ctx, in, act, r, handler.Run)
}

func (rt *Router) dispatchModal(ctx context.Context, in *Interaction, r *Responder) {
	act, err := DecodeAction(in.CustomID)
	if err != nil {
		rt.metrics.IncrementDispatch(in.Kind.String(), "unknown")
		rt.logger.WarnContext(ctx, "undecodable modal id",
			"custom_id", in.CustomID,
			"user_id", in.Actor(),
		)
		rt.replyFailure(ctx, in, r)
		return
	}

	handler, ok := rt.modals[act.Kind]
	if !ok {
		rt.metrics.IncrementDispatch(in.Kind.String(), "unknown")
		rt.logger.WarnContext(ctx, "unregistered modal action", "action", string(act.Kind))
		rt.replyFailure(ctx, in, r)
		return
	}

	if handler.StaffOnly && !rt.gate(ctx, in, r, act.Kind) {
		return
	}

	rt.runHandler(ctx, in, act, r, handler.Run)
}

// gate enforces the staff-only capability check. Returns false after
// sending the ephemeral denial.
func (rt *Router) gate(ctx context.Context, in *Interaction, r *Responder, action ActionKind) bool {
	if in.Member.HasRole(rt.staffRole) {
		return true
	}
	rt.metrics.IncrementGateDenial(string(action))
	rt.metrics.IncrementDispatch(in.Kind.String(), "denied")
	rt.logger.InfoContext(ctx, "staff gate denied",
		"action", string(action),
		"user_id", in.Actor(),
	)
	msg := gateway.Message{Content: "You do not have permission to perform this action."}
	if err := r.Reply(ctx, msg, true); err != nil {
		rt.logger.ErrorContext(ctx, "denial reply failed", "error", err)
	}
	return false
}

func (rt *Router) runHandler(ctx context.Context, in *Interaction, act Action, r *Responder, fn HandlerFunc) {
	if err := rt.run(ctx, in, r, func(ctx context.Context) error {
		return fn(ctx, in, act, r)
	}); err != nil {
		rt.metrics.IncrementDispatch(in.Kind.String(), "error")
		rt.logger.ErrorContext(ctx, "handler failed",
			"action", string(act.Kind),
			"custom_id", in.CustomID,
			"user_id", in.Actor(),
			"error", err,
		)
		rt.replyFailure(ctx, in, r)
		return
	}
	rt.metrics.IncrementDispatch(in.Kind.String(), "ok")
}

// run executes a handler, converting panics into errors so a misbehaving
// handler cannot take down the dispatch loop.
func (rt *Router) run(ctx context.Context, in *Interaction, _ *Responder, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return fn(ctx)
}

// replyFailure delivers the generic failure exactly when no terminal
// reply has been issued yet; a deferred reply is completed via edit.
func (rt *Router) replyFailure(ctx context.Context, in *Interaction, r *Responder) {
	msg := gateway.Message{Content: genericFailure}
	var err error
	switch {
	case r.Deferred():
		err = r.EditReply(ctx, msg)
	case r.Replied():
		return // a terminal reply already went out; never duplicate
	default:
		err = r.Reply(ctx, msg, true)
	}
	if err != nil {
		rt.logger.ErrorContext(ctx, "failure reply not delivered",
			"interaction_id", in.ID,
			"error", err,
		)
	}
}

func (rt *Router) followUpFailure(ctx context.Context, in *Interaction, r *Responder) {
	msg := gateway.Message{Content: genericFailure}
	if err := r.FollowUp(ctx, msg, true); err != nil {
		rt.logger.ErrorContext(ctx, "failure follow-up not delivered",
			"interaction_id", in.ID,
			"error", err,
		)
	}
}
