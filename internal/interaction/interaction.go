// Package interaction classifies inbound platform interactions and
// dispatches them to registered handlers. The router owns the two
// gates every dispatch passes through: the staff-only capability check
// and the exactly-one-terminal-reply guarantee.
package interaction

import (
	"ticketdesk/internal/gateway"

	id "ticketdesk/pkg/domain"
)

// Kind mirrors the platform interaction type enumeration.
type Kind int

const (
	KindPing      Kind = 1
	KindCommand   Kind = 2
	KindComponent Kind = 3
	KindModal     Kind = 5
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "ping"
	case KindCommand:
		return "command"
	case KindComponent:
		return "component"
	case KindModal:
		return "modal"
	default:
		return "unknown"
	}
}

// Interaction is one inbound event, decoded from the wire by the
// transport layer.
type Interaction struct {
	ID    string
	Token string
	Kind  Kind

	GuildID   id.GuildID
	ChannelID id.ChannelID

	// Channel is the partial channel object the platform attaches to the
	// event; Topic and ParentID drive the is-this-a-ticket check.
	Channel gateway.Channel

	// Member is the acting guild member, including role ids.
	Member gateway.Member

	// CommandName is set for command invocations.
	CommandName string

	// CustomID is set for component activations and form submissions.
	CustomID string

	// Fields holds submitted modal text inputs keyed by input custom id.
	Fields map[string]string

	// Message references the message hosting the activated component,
	// with its embeds, so handlers can edit it in place.
	Message       gateway.MessageRef
	MessageEmbeds []gateway.Embed
}

// Actor returns the acting user's id.
func (in *Interaction) Actor() id.UserID {
	return in.Member.User.ID
}
