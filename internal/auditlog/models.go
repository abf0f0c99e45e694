// Package auditlog records ticket lifecycle actions to the configured
// guild log channel and mirrors them to Kafka for retention.
package auditlog

import (
	"time"

	id "ticketdesk/pkg/domain"
)

// Action names one loggable ticket lifecycle event.
type Action string

const (
	ActionCreate     Action = "create"
	ActionClose      Action = "close"
	ActionRename     Action = "rename"
	ActionAddUser    Action = "add_user"
	ActionRemoveUser Action = "remove_user"
)

// Color returns the embed accent for the action.
func (a Action) Color() int {
	switch a {
	case ActionCreate, ActionAddUser:
		return 0x00ff00
	case ActionClose:
		return 0xff0000
	case ActionRename:
		return 0xffff00
	case ActionRemoveUser:
		return 0xff9900
	default:
		return 0
	}
}

// Title returns the embed heading for the action.
func (a Action) Title() string {
	switch a {
	case ActionCreate:
		return "Ticket created"
	case ActionClose:
		return "Ticket closed"
	case ActionRename:
		return "Ticket renamed"
	case ActionAddUser:
		return "User added to ticket"
	case ActionRemoveUser:
		return "User removed from ticket"
	default:
		return "Ticket updated"
	}
}

// Entry is one recorded lifecycle event. Extra carries per-action detail
// such as the new name for a rename or the target user for membership
// changes.
type Entry struct {
	ID              string            `json:"id"`
	Action          Action            `json:"action"`
	ActorID         id.UserID         `json:"actor_id"`
	ActorName       string            `json:"actor_name"`
	TicketChannelID id.ChannelID      `json:"ticket_channel_id"`
	Timestamp       time.Time         `json:"timestamp"`
	Extra           map[string]string `json:"extra,omitempty"`
}
