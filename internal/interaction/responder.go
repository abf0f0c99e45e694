package interaction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ticketdesk/internal/gateway"
)

// ErrAlreadyReplied reports an attempt to send a second initial response
// to the same interaction.
var ErrAlreadyReplied = errors.New("interaction already replied")

// ErrNotReplied reports an edit attempt before any initial response.
var ErrNotReplied = errors.New("interaction not yet replied")

type replyState int

const (
	stateNone replyState = iota
	stateReplied
	stateDeferred
	stateModal
)

// Responder sends responses for exactly one interaction and tracks reply
// state so the router can uphold its one-terminal-reply invariant.
// Safe for concurrent use.
type Responder struct {
	api   gateway.InteractionAPI
	appID string

	interactionID string
	token         string

	mu    sync.Mutex
	state replyState
}

// NewResponder binds a responder to one interaction.
func NewResponder(api gateway.InteractionAPI, appID string, in *Interaction) *Responder {
	return &Responder{
		api:           api,
		appID:         appID,
		interactionID: in.ID,
		token:         in.Token,
	}
}

func (r *Responder) begin(next replyState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != stateNone {
		return ErrAlreadyReplied
	}
	r.state = next
	return nil
}

func (r *Responder) rollback() {
	r.mu.Lock()
	r.state = stateNone
	r.mu.Unlock()
}

// Reply sends the initial message response.
func (r *Responder) Reply(ctx context.Context, msg gateway.Message, ephemeral bool) error {
	if err := r.begin(stateReplied); err != nil {
		return err
	}
	err := r.api.CreateInteractionResponse(ctx, r.interactionID, r.token, gateway.InteractionResponse{
		Type:      gateway.ResponseMessage,
		Message:   msg,
		Ephemeral: ephemeral,
	})
	if err != nil {
		r.rollback()
		return fmt.Errorf("reply: %w", err)
	}
	return nil
}

// Defer acknowledges the interaction; the visible reply follows via
// EditReply.
func (r *Responder) Defer(ctx context.Context, ephemeral bool) error {
	if err := r.begin(stateDeferred); err != nil {
		return err
	}
	err := r.api.CreateInteractionResponse(ctx, r.interactionID, r.token, gateway.InteractionResponse{
		Type:      gateway.ResponseDeferMessage,
		Ephemeral: ephemeral,
	})
	if err != nil {
		r.rollback()
		return fmt.Errorf("defer: %w", err)
	}
	return nil
}

// ShowModal presents a form as the initial response.
func (r *Responder) ShowModal(ctx context.Context, modal gateway.Modal) error {
	if err := r.begin(stateModal); err != nil {
		return err
	}
	err := r.api.CreateInteractionResponse(ctx, r.interactionID, r.token, gateway.InteractionResponse{
		Type:  gateway.ResponseModal,
		Modal: modal,
	})
	if err != nil {
		r.rollback()
		return fmt.Errorf("show modal: %w", err)
	}
	return nil
}

// EditReply replaces the deferred or already-sent reply.
func (r *Responder) EditReply(ctx context.Context, msg gateway.Message) error {
	r.mu.Lock()
	state := r.state
	r.mu.Unlock()
	if state != stateReplied && state != stateDeferred {
		return ErrNotReplied
	}
	if err := r.api.EditInteractionResponse(ctx, r.appID, r.token, msg); err != nil {
		return fmt.Errorf("edit reply: %w", err)
	}
	return nil
}

// FollowUp sends an additional message after the initial response.
func (r *Responder) FollowUp(ctx context.Context, msg gateway.Message, ephemeral bool) error {
	if err := r.api.FollowUpInteraction(ctx, r.appID, r.token, msg, ephemeral); err != nil {
		return fmt.Errorf("follow up: %w", err)
	}
	return nil
}

// Replied reports whether any initial response has been sent.
func (r *Responder) Replied() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state != stateNone
}

// Deferred reports whether the initial response was a deferral awaiting
// an edit.
func (r *Responder) Deferred() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == stateDeferred
}
