// Package gateway defines the boundary to the guild chat platform.
// Services depend on these interfaces; the rest subpackage implements
// them over the platform HTTP API, and tests substitute gomock mocks.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"ticketdesk/pkg/platform/sentinel"

	id "ticketdesk/pkg/domain"
)

//go:generate mockgen -destination=mocks/gateway_mocks.go -package=mocks ticketdesk/internal/gateway API

// ChannelAPI covers channel listing and mutation.
type ChannelAPI interface {
	// Channels lists every channel in the guild.
	Channels(ctx context.Context, guildID id.GuildID) ([]Channel, error)

	// Channel fetches a single channel. Returns sentinel.ErrNotFound
	// (wrapped) when it does not exist.
	Channel(ctx context.Context, channelID id.ChannelID) (Channel, error)

	// CreateChannel creates a text or category channel with an explicit
	// permission overwrite list.
	CreateChannel(ctx context.Context, guildID id.GuildID, params CreateChannelParams) (Channel, error)

	// RenameChannel changes a channel's name.
	RenameChannel(ctx context.Context, channelID id.ChannelID, name string) error

	// DeleteChannel removes a channel permanently.
	DeleteChannel(ctx context.Context, channelID id.ChannelID) error

	// SetPermissionOverwrite creates or replaces one overwrite on a channel.
	SetPermissionOverwrite(ctx context.Context, channelID id.ChannelID, overwrite PermissionOverwrite) error

	// DeletePermissionOverwrite removes the overwrite for a member or role.
	DeletePermissionOverwrite(ctx context.Context, channelID id.ChannelID, targetID string) error
}

// MemberAPI covers user and guild-member lookups.
type MemberAPI interface {
	// User fetches a platform user by id.
	User(ctx context.Context, userID id.UserID) (User, error)

	// Member fetches a guild member, including role ids and join time.
	Member(ctx context.Context, guildID id.GuildID, userID id.UserID) (Member, error)

	// Roles lists the guild's roles.
	Roles(ctx context.Context, guildID id.GuildID) ([]Role, error)
}

// MessageAPI covers sending and editing rich messages.
type MessageAPI interface {
	SendMessage(ctx context.Context, channelID id.ChannelID, msg Message) (MessageRef, error)
	EditMessage(ctx context.Context, channelID id.ChannelID, messageID id.MessageID, msg Message) error
}

// InteractionAPI covers replying to interactions. Every interaction gets
// exactly one initial response; later edits and follow-ups go through the
// interaction token.
type InteractionAPI interface {
	CreateInteractionResponse(ctx context.Context, interactionID, token string, resp InteractionResponse) error
	EditInteractionResponse(ctx context.Context, appID, token string, msg Message) error
	FollowUpInteraction(ctx context.Context, appID, token string, msg Message, ephemeral bool) error
}

// API is the full platform surface consumed by this process.
type API interface {
	ChannelAPI
	MemberAPI
	MessageAPI
	InteractionAPI
}

// APIError reports a rejected or failed platform call. It wraps
// sentinel errors so callers can branch on the failure class without
// inspecting HTTP details.
type APIError struct {
	Status  int
	Route   string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform api %s: status %d: %s", e.Route, e.Status, e.Message)
}

// Unwrap maps HTTP status classes onto sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case 404:
		return sentinel.ErrNotFound
	case 403:
		return sentinel.ErrPermission
	case 409:
		return sentinel.ErrConflict
	default:
		return sentinel.ErrUnavailable
	}
}

// IsNotFound reports whether err is a platform 404.
func IsNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
