package interaction

import (
	"fmt"
	"strings"

	id "ticketdesk/pkg/domain"
)

// ActionKind tags one decoded component or modal identifier.
type ActionKind string

const (
	// Panel button carrying a category key suffix.
	ActionCreateTicket ActionKind = "ticket.create"

	// Ticket control-row buttons.
	ActionCloseTicket      ActionKind = "ticket.close"
	ActionRenamePrompt     ActionKind = "ticket.rename"
	ActionAddUserPrompt    ActionKind = "ticket.add"
	ActionRemoveUserPrompt ActionKind = "ticket.remove"

	// Log-entry moderation buttons carrying the ticket channel id.
	ActionLogDelete ActionKind = "log.delete"
	ActionLogInfo   ActionKind = "log.info"

	// Modal submissions.
	ActionRenameSubmit     ActionKind = "modal.rename"
	ActionAddUserSubmit    ActionKind = "modal.add"
	ActionRemoveUserSubmit ActionKind = "modal.remove"
)

// Action is the tagged descriptor produced by decoding a custom id once
// at the router boundary. Handlers consume it instead of re-parsing
// identifier strings.
type Action struct {
	Kind ActionKind

	// CategoryKey is set for ActionCreateTicket.
	CategoryKey id.CategoryKey

	// ChannelID is set for ActionLogDelete and ActionLogInfo.
	ChannelID id.ChannelID
}

// Custom id wire prefixes. The ":" separator is reserved; category keys
// reject it at parse time.
const (
	idCreatePrefix    = "ticket:create:"
	idClose           = "ticket:close"
	idRename          = "ticket:rename"
	idAdd             = "ticket:add"
	idRemove          = "ticket:remove"
	idLogDeletePrefix = "log:delete:"
	idLogInfoPrefix   = "log:info:"
	idModalRename     = "modal:rename"
	idModalAdd        = "modal:add"
	idModalRemove     = "modal:remove"
)

// DecodeAction classifies a component or modal custom id.
func DecodeAction(customID string) (Action, error) {
	switch customID {
	case idClose:
		return Action{Kind: ActionCloseTicket}, nil
	case idRename:
		return Action{Kind: ActionRenamePrompt}, nil
	case idAdd:
		return Action{Kind: ActionAddUserPrompt}, nil
	case idRemove:
		return Action{Kind: ActionRemoveUserPrompt}, nil
	case idModalRename:
		return Action{Kind: ActionRenameSubmit}, nil
	case idModalAdd:
		return Action{Kind: ActionAddUserSubmit}, nil
	case idModalRemove:
		return Action{Kind: ActionRemoveUserSubmit}, nil
	}

	if raw, ok := strings.CutPrefix(customID, idCreatePrefix); ok {
		key, err := id.ParseCategoryKey(raw)
		if err != nil {
			return Action{}, fmt.Errorf("decode %q: %w", customID, err)
		}
		return Action{Kind: ActionCreateTicket, CategoryKey: key}, nil
	}
	if raw, ok := strings.CutPrefix(customID, idLogDeletePrefix); ok {
		channelID, err := id.ParseChannelID(raw)
		if err != nil {
			return Action{}, fmt.Errorf("decode %q: %w", customID, err)
		}
		return Action{Kind: ActionLogDelete, ChannelID: channelID}, nil
	}
	if raw, ok := strings.CutPrefix(customID, idLogInfoPrefix); ok {
		channelID, err := id.ParseChannelID(raw)
		if err != nil {
			return Action{}, fmt.Errorf("decode %q: %w", customID, err)
		}
		return Action{Kind: ActionLogInfo, ChannelID: channelID}, nil
	}

	return Action{}, fmt.Errorf("unknown custom id %q", customID)
}

// CustomID renders the wire identifier for an action, inverting
// DecodeAction.
func (a Action) CustomID() string {
	switch a.Kind {
	case ActionCreateTicket:
		return idCreatePrefix + a.CategoryKey.String()
	case ActionCloseTicket:
		return idClose
	case ActionRenamePrompt:
		return idRename
	case ActionAddUserPrompt:
		return idAdd
	case ActionRemoveUserPrompt:
		return idRemove
	case ActionLogDelete:
		return idLogDeletePrefix + a.ChannelID.String()
	case ActionLogInfo:
		return idLogInfoPrefix + a.ChannelID.String()
	case ActionRenameSubmit:
		return idModalRename
	case ActionAddUserSubmit:
		return idModalAdd
	case ActionRemoveUserSubmit:
		return idModalRemove
	default:
		return ""
	}
}
