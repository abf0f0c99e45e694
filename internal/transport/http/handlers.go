package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ticketdesk/internal/gateway"
	"ticketdesk/internal/interaction"

	id "ticketdesk/pkg/domain"
)

// dispatchTimeout bounds one interaction end to end, including the
// platform calls the handler makes.
const dispatchTimeout = 10 * time.Second

// Dispatcher routes decoded interactions; satisfied by
// *interaction.Router.
type Dispatcher interface {
	Dispatch(ctx context.Context, in *interaction.Interaction, r *interaction.Responder)
}

// Inbound wire shapes for the interaction webhook.

type wireInbound struct {
	ID        string       `json:"id"`
	Token     string       `json:"token"`
	Type      int          `json:"type"`
	GuildID   string       `json:"guild_id"`
	ChannelID string       `json:"channel_id"`
	Channel   *wireChannel `json:"channel"`
	Member    *wireMember  `json:"member"`
	Data      *wireData    `json:"data"`
	Message   *wireMessage `json:"message"`
}

type wireChannel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     int    `json:"type"`
	ParentID string `json:"parent_id"`
	Topic    string `json:"topic"`
}

type wireMember struct {
	User     wireUser `json:"user"`
	Roles    []string `json:"roles"`
	JoinedAt string   `json:"joined_at"`
}

type wireUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type wireData struct {
	Name       string          `json:"name"`
	CustomID   string          `json:"custom_id"`
	Components []wireComponent `json:"components"`
}

type wireComponent struct {
	CustomID   string          `json:"custom_id"`
	Value      string          `json:"value"`
	Components []wireComponent `json:"components"`
}

type wireMessage struct {
	ID        string          `json:"id"`
	ChannelID string          `json:"channel_id"`
	Embeds    []gateway.Embed `json:"embeds"`
}

func (h *Handler) handleInteraction(w http.ResponseWriter, r *http.Request) {
	var payload wireInbound
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	if interaction.Kind(payload.Type) == interaction.KindPing {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"type": int(gateway.ResponsePong)})
		return
	}

	in := fromWireInbound(payload)
	responder := interaction.NewResponder(h.api, h.appID, in)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), dispatchTimeout)
	defer cancel()
	h.dispatcher.Dispatch(ctx, in, responder)

	w.WriteHeader(http.StatusAccepted)
}

func fromWireInbound(p wireInbound) *interaction.Interaction {
	in := &interaction.Interaction{
		ID:        p.ID,
		Token:     p.Token,
		Kind:      interaction.Kind(p.Type),
		GuildID:   id.GuildID(p.GuildID),
		ChannelID: id.ChannelID(p.ChannelID),
	}

	if p.Channel != nil {
		in.Channel = gateway.Channel{
			ID:       id.ChannelID(p.Channel.ID),
			GuildID:  in.GuildID,
			Name:     p.Channel.Name,
			Type:     gateway.ChannelType(p.Channel.Type),
			ParentID: id.ChannelID(p.Channel.ParentID),
			Topic:    p.Channel.Topic,
		}
	}

	if p.Member != nil {
		roles := make([]id.RoleID, 0, len(p.Member.Roles))
		for _, r := range p.Member.Roles {
			roles = append(roles, id.RoleID(r))
		}
		joined, _ := time.Parse(time.RFC3339, p.Member.JoinedAt)
		in.Member = gateway.Member{
			User:     gateway.User{ID: id.UserID(p.Member.User.ID), Username: p.Member.User.Username},
			Roles:    roles,
			JoinedAt: joined,
		}
	}

	if p.Data != nil {
		in.CommandName = p.Data.Name
		in.CustomID = p.Data.CustomID
		in.Fields = collectFields(p.Data.Components)
	}

	if p.Message != nil {
		in.Message = gateway.MessageRef{
			ID:        id.MessageID(p.Message.ID),
			ChannelID: id.ChannelID(p.Message.ChannelID),
		}
		in.MessageEmbeds = p.Message.Embeds
	}
	return in
}

// collectFields flattens submitted modal rows into custom-id keyed values.
func collectFields(components []wireComponent) map[string]string {
	fields := make(map[string]string)
	var walk func([]wireComponent)
	walk = func(cs []wireComponent) {
		for _, c := range cs {
			if c.CustomID != "" && len(c.Components) == 0 {
				fields[c.CustomID] = c.Value
			}
			walk(c.Components)
		}
	}
	walk(components)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
