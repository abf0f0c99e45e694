package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ticketdesk/internal/gateway"
	"ticketdesk/internal/interaction"
	"ticketdesk/internal/platform/config"

	id "ticketdesk/pkg/domain"
)

// Handlers binds the lifecycle service to the interaction router.
type Handlers struct {
	svc     *Service
	api     gateway.API
	cfg     config.Tickets
	guildID id.GuildID
	logger  *slog.Logger
}

func NewHandlers(svc *Service, api gateway.API, cfg config.Tickets, guildID id.GuildID, logger *slog.Logger) (*Handlers, error) {
	if svc == nil {
		return nil, fmt.Errorf("service is required")
	}
	if api == nil {
		return nil, fmt.Errorf("gateway api is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Handlers{svc: svc, api: api, cfg: cfg, guildID: guildID, logger: logger}, nil
}

// Register wires every command, component, and modal handler.
func (h *Handlers) Register(rt *interaction.Router) {
	rt.RegisterCommand(interaction.Command{Name: "panel", Run: h.panelCommand})

	rt.RegisterComponent(interaction.Component{Kind: interaction.ActionCreateTicket, Run: h.createTicket})
	rt.RegisterComponent(interaction.Component{Kind: interaction.ActionCloseTicket, StaffOnly: true, Run: h.closeTicket})
	rt.RegisterComponent(interaction.Component{Kind: interaction.ActionRenamePrompt, StaffOnly: true, Run: h.renamePrompt})
	rt.RegisterComponent(interaction.Component{Kind: interaction.ActionAddUserPrompt, StaffOnly: true, Run: h.addUserPrompt})
	rt.RegisterComponent(interaction.Component{Kind: interaction.ActionRemoveUserPrompt, StaffOnly: true, Run: h.removeUserPrompt})
	rt.RegisterComponent(interaction.Component{Kind: interaction.ActionLogDelete, Run: h.logDelete})
	rt.RegisterComponent(interaction.Component{Kind: interaction.ActionLogInfo, StaffOnly: true, Run: h.logInfo})

	rt.RegisterModal(interaction.Modal{Kind: interaction.ActionRenameSubmit, StaffOnly: true, Run: h.renameSubmit})
	rt.RegisterModal(interaction.Modal{Kind: interaction.ActionAddUserSubmit, StaffOnly: true, Run: h.addUserSubmit})
	rt.RegisterModal(interaction.Modal{Kind: interaction.ActionRemoveUserSubmit, StaffOnly: true, Run: h.removeUserSubmit})
}

// panelCommand posts the category-selection panel into the current
// channel. Gated on the admin role, not merely staff.
func (h *Handlers) panelCommand(ctx context.Context, in *interaction.Interaction, r *interaction.Responder) error {
	if !in.Member.HasRole(h.cfg.AdminRole) {
		return r.Reply(ctx, gateway.Message{Content: "Only administrators can post the ticket panel."}, true)
	}
	if err := h.svc.PostPanel(ctx, in.ChannelID); err != nil {
		return err
	}
	return r.Reply(ctx, gateway.Message{Content: "Ticket panel posted."}, true)
}

// createTicket defers first: category provisioning and the duplicate
// scan can exceed the initial-response window.
func (h *Handlers) createTicket(ctx context.Context, in *interaction.Interaction, act interaction.Action, r *interaction.Responder) error {
	if err := r.Defer(ctx, true); err != nil {
		return err
	}

	res, err := h.svc.CreateTicket(ctx, in.Member, act.CategoryKey)
	if err != nil {
		if errors.Is(err, ErrUnknownCategory) {
			return r.EditReply(ctx, gateway.Message{Content: "That ticket category no longer exists."})
		}
		return err
	}

	if res.AlreadyOpen {
		return r.EditReply(ctx, gateway.Message{
			Content: "You already have an open ticket: " + gateway.MentionChannel(res.ChannelID),
		})
	}
	return r.EditReply(ctx, gateway.Message{
		Content: "Your ticket has been created: " + gateway.MentionChannel(res.ChannelID),
	})
}

func (h *Handlers) closeTicket(ctx context.Context, in *interaction.Interaction, _ interaction.Action, r *interaction.Responder) error {
	if err := h.svc.CloseTicket(ctx, in.Member, in.Channel); err != nil {
		switch {
		case errors.Is(err, ErrNotATicket):
			return r.Reply(ctx, gateway.Message{Content: "This channel is not a ticket."}, true)
		case errors.Is(err, ErrPermissionDenied):
			return r.Reply(ctx, gateway.Message{Content: "You do not have permission to close tickets."}, true)
		}
		return err
	}
	// Public so everyone in the ticket sees the countdown.
	return r.Reply(ctx, gateway.Message{Content: "Closing this ticket in 5 seconds."}, false)
}

func (h *Handlers) renamePrompt(ctx context.Context, _ *interaction.Interaction, _ interaction.Action, r *interaction.Responder) error {
	return r.ShowModal(ctx, gateway.Modal{
		CustomID: interaction.Action{Kind: interaction.ActionRenameSubmit}.CustomID(),
		Title:    "Rename ticket",
		Inputs:   []gateway.TextInput{{CustomID: "name", Label: "New channel name", Required: true}},
	})
}

func (h *Handlers) addUserPrompt(ctx context.Context, _ *interaction.Interaction, _ interaction.Action, r *interaction.Responder) error {
	return r.ShowModal(ctx, gateway.Modal{
		CustomID: interaction.Action{Kind: interaction.ActionAddUserSubmit}.CustomID(),
		Title:    "Add user to ticket",
		Inputs:   []gateway.TextInput{{CustomID: "user", Label: "User id", Required: true}},
	})
}

func (h *Handlers) removeUserPrompt(ctx context.Context, _ *interaction.Interaction, _ interaction.Action, r *interaction.Responder) error {
	return r.ShowModal(ctx, gateway.Modal{
		CustomID: interaction.Action{Kind: interaction.ActionRemoveUserSubmit}.CustomID(),
		Title:    "Remove user from ticket",
		Inputs:   []gateway.TextInput{{CustomID: "user", Label: "User id", Required: true}},
	})
}

func (h *Handlers) renameSubmit(ctx context.Context, in *interaction.Interaction, _ interaction.Action, r *interaction.Responder) error {
	name := in.Fields["name"]
	if err := h.svc.Rename(ctx, in.Member, in.Channel, name); err != nil {
		if msg, ok := userFacing(err); ok {
			return r.Reply(ctx, gateway.Message{Content: msg}, true)
		}
		return err
	}
	return r.Reply(ctx, gateway.Message{Content: "Ticket renamed to " + name + "."}, true)
}

func (h *Handlers) addUserSubmit(ctx context.Context, in *interaction.Interaction, _ interaction.Action, r *interaction.Responder) error {
	user := in.Fields["user"]
	if err := h.svc.AddUser(ctx, in.Member, in.Channel, user); err != nil {
		if msg, ok := userFacing(err); ok {
			return r.Reply(ctx, gateway.Message{Content: msg}, true)
		}
		return err
	}
	return r.Reply(ctx, gateway.Message{Content: "User added to the ticket."}, true)
}

func (h *Handlers) removeUserSubmit(ctx context.Context, in *interaction.Interaction, _ interaction.Action, r *interaction.Responder) error {
	user := in.Fields["user"]
	if err := h.svc.RemoveUser(ctx, in.Member, in.Channel, user); err != nil {
		if msg, ok := userFacing(err); ok {
			return r.Reply(ctx, gateway.Message{Content: msg}, true)
		}
		return err
	}
	return r.Reply(ctx, gateway.Message{Content: "User removed from the ticket."}, true)
}

// logDelete handles the delete control on a create log entry: delete the
// ticket channel, then annotate the entry and strip its controls. The
// two effects are independent; an annotation failure after a successful
// deletion is logged and tolerated.
func (h *Handlers) logDelete(ctx context.Context, in *interaction.Interaction, act interaction.Action, r *interaction.Responder) error {
	if !in.Member.HasRole(h.cfg.AdminRole) {
		return r.Reply(ctx, gateway.Message{Content: "Only administrators can delete tickets from the log."}, true)
	}

	alreadyGone := false
	if err := h.svc.DeleteNow(ctx, act.ChannelID); err != nil {
		if !gateway.IsNotFound(err) {
			return err
		}
		alreadyGone = true
	}

	h.annotateDeleted(ctx, in)

	if alreadyGone {
		return r.Reply(ctx, gateway.Message{Content: "That ticket was already deleted."}, true)
	}
	return r.Reply(ctx, gateway.Message{Content: "Ticket deleted."}, true)
}

// annotateDeleted appends the deletion marker to the originating log
// message and strips its control row.
func (h *Handlers) annotateDeleted(ctx context.Context, in *interaction.Interaction) {
	if in.Message.ID == "" {
		return
	}

	embeds := append([]gateway.Embed(nil), in.MessageEmbeds...)
	if len(embeds) > 0 {
		embeds[0].Fields = append(embeds[0].Fields, gateway.EmbedField{
			Name:  "Status",
			Value: "Deleted by administrator",
		})
	}

	err := h.api.EditMessage(ctx, in.Message.ChannelID, in.Message.ID, gateway.Message{Embeds: embeds})
	if err != nil {
		h.logger.ErrorContext(ctx, "log entry not annotated after deletion",
			"message_id", in.Message.ID,
			"error", err,
		)
	}
}

// logInfo shows the ticket owner's profile from the log entry.
func (h *Handlers) logInfo(ctx context.Context, in *interaction.Interaction, act interaction.Action, r *interaction.Responder) error {
	member, err := h.svc.Owner(ctx, act.ChannelID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotATicket):
			return r.Reply(ctx, gateway.Message{Content: "That ticket no longer exists."}, true)
		case errors.Is(err, ErrUserNotFound):
			return r.Reply(ctx, gateway.Message{Content: "The ticket owner is no longer in this guild."}, true)
		}
		return err
	}

	roles, highest := h.roleSummary(ctx, member.Roles)

	embed := gateway.Embed{
		Title: "User info",
		Color: 0x5865f2,
		Fields: []gateway.EmbedField{
			{Name: "Username", Value: member.User.Username},
			{Name: "User id", Value: member.User.ID.String()},
			{Name: "Account created", Value: member.User.CreatedAt().UTC().Format(time.RFC1123)},
			{Name: "Joined guild", Value: member.JoinedAt.UTC().Format(time.RFC1123)},
			{Name: "Highest role", Value: highest},
			{Name: fmt.Sprintf("Roles (%d)", len(member.Roles)), Value: roles},
		},
	}
	return r.Reply(ctx, gateway.Message{Embeds: []gateway.Embed{embed}}, true)
}

// roleSummary resolves a member's role ids against the guild's role list,
// returning the comma-separated names and the highest-positioned role.
// Ids that no longer resolve render as mentions so the overview still
// shows them.
func (h *Handlers) roleSummary(ctx context.Context, roleIDs []id.RoleID) (list, highest string) {
	guildRoles, err := h.api.Roles(ctx, h.guildID)
	if err != nil {
		h.logger.ErrorContext(ctx, "guild roles not resolved for user info", "error", err)
	}
	byID := make(map[id.RoleID]gateway.Role, len(guildRoles))
	for _, role := range guildRoles {
		byID[role.ID] = role
	}

	names := make([]string, 0, len(roleIDs))
	var top gateway.Role
	for _, rid := range roleIDs {
		role, ok := byID[rid]
		if !ok {
			names = append(names, "<@&"+rid.String()+">")
			continue
		}
		names = append(names, role.Name)
		if top.ID == "" || role.Position > top.Position {
			top = role
		}
	}

	list = strings.Join(names, ", ")
	if list == "" {
		list = "none"
	}
	highest = top.Name
	if highest == "" {
		highest = "none"
	}
	return list, highest
}

// userFacing maps domain failures to the reply shown to the actor.
// Unexpected failures fall through to the router's generic handling.
func userFacing(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrNotATicket):
		return "This channel is not a ticket.", true
	case errors.Is(err, ErrPermissionDenied):
		return "You do not have permission to do that.", true
	case errors.Is(err, ErrUserNotFound):
		return "No user with that id exists.", true
	case errors.Is(err, ErrValidation):
		return "That input is not valid. Check it and try again.", true
	}
	return "", false
}
