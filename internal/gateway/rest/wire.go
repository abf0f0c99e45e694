package rest

import (
	"strconv"
	"time"

	"ticketdesk/internal/gateway"

	id "ticketdesk/pkg/domain"
)

// Wire shapes for the platform HTTP API. Permissions travel as decimal
// strings; component rows are nested one level below the message.

type wireOverwrite struct {
	ID    string `json:"id"`
	Type  int    `json:"type"`
	Allow string `json:"allow,omitempty"`
	Deny  string `json:"deny,omitempty"`
}

type wireChannel struct {
	ID         string          `json:"id"`
	GuildID    string          `json:"guild_id,omitempty"`
	Name       string          `json:"name"`
	Type       int             `json:"type"`
	ParentID   string          `json:"parent_id,omitempty"`
	Topic      string          `json:"topic,omitempty"`
	Overwrites []wireOverwrite `json:"permission_overwrites,omitempty"`
}

type wireCreateChannel struct {
	Name       string          `json:"name"`
	Type       int             `json:"type"`
	ParentID   string          `json:"parent_id,omitempty"`
	Topic      string          `json:"topic,omitempty"`
	Overwrites []wireOverwrite `json:"permission_overwrites,omitempty"`
}

type wireUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type wireMember struct {
	User     wireUser `json:"user"`
	Roles    []string `json:"roles"`
	JoinedAt string   `json:"joined_at"`
}

type wireRole struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type wireComponent struct {
	Type       int             `json:"type"`
	Style      int             `json:"style,omitempty"`
	Label      string          `json:"label,omitempty"`
	CustomID   string          `json:"custom_id,omitempty"`
	URL        string          `json:"url,omitempty"`
	Required   bool            `json:"required,omitempty"`
	Components []wireComponent `json:"components,omitempty"`
}

type wireMessage struct {
	Content    string          `json:"content,omitempty"`
	Embeds     []gateway.Embed `json:"embeds,omitempty"`
	Components []wireComponent `json:"components"`
	Flags      int             `json:"flags,omitempty"`
}

type wireMessageRef struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

type wireInteractionResponse struct {
	Type int             `json:"type"`
	Data *wireInteraData `json:"data,omitempty"`
}

type wireInteraData struct {
	Content    string          `json:"content,omitempty"`
	Embeds     []gateway.Embed `json:"embeds,omitempty"`
	Components []wireComponent `json:"components,omitempty"`
	Flags      int             `json:"flags,omitempty"`
	CustomID   string          `json:"custom_id,omitempty"`
	Title      string          `json:"title,omitempty"`
}

const (
	componentRow       = 1
	componentButton    = 2
	componentTextInput = 4

	// flagEphemeral marks a reply visible only to the acting user.
	flagEphemeral = 64
)

func fromWireChannel(w wireChannel) gateway.Channel {
	return gateway.Channel{
		ID:       id.ChannelID(w.ID),
		GuildID:  id.GuildID(w.GuildID),
		Name:     w.Name,
		Type:     gateway.ChannelType(w.Type),
		ParentID: id.ChannelID(w.ParentID),
		Topic:    w.Topic,
	}
}

func toWireOverwrites(overwrites []gateway.PermissionOverwrite) []wireOverwrite {
	out := make([]wireOverwrite, 0, len(overwrites))
	for _, o := range overwrites {
		out = append(out, wireOverwrite{
			ID:    o.TargetID,
			Type:  int(o.Kind),
			Allow: strconv.FormatUint(uint64(o.Allow), 10),
			Deny:  strconv.FormatUint(uint64(o.Deny), 10),
		})
	}
	return out
}

func fromWireUser(w wireUser) gateway.User {
	return gateway.User{ID: id.UserID(w.ID), Username: w.Username}
}

func fromWireMember(w wireMember) gateway.Member {
	roles := make([]id.RoleID, 0, len(w.Roles))
	for _, r := range w.Roles {
		roles = append(roles, id.RoleID(r))
	}
	joined, _ := time.Parse(time.RFC3339, w.JoinedAt)
	return gateway.Member{
		User:     fromWireUser(w.User),
		Roles:    roles,
		JoinedAt: joined,
	}
}

func toWireComponents(rows [][]gateway.Button) []wireComponent {
	out := make([]wireComponent, 0, len(rows))
	for _, row := range rows {
		buttons := make([]wireComponent, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, wireComponent{
				Type:     componentButton,
				Style:    int(b.Style),
				Label:    b.Label,
				CustomID: b.CustomID,
				URL:      b.URL,
			})
		}
		out = append(out, wireComponent{Type: componentRow, Components: buttons})
	}
	return out
}

func toWireMessage(msg gateway.Message, ephemeral bool) wireMessage {
	w := wireMessage{
		Content:    msg.Content,
		Embeds:     msg.Embeds,
		Components: toWireComponents(msg.Components),
	}
	if ephemeral {
		w.Flags = flagEphemeral
	}
	return w
}

func toWireModal(m gateway.Modal) *wireInteraData {
	rows := make([]wireComponent, 0, len(m.Inputs))
	for _, in := range m.Inputs {
		rows = append(rows, wireComponent{
			Type: componentRow,
			Components: []wireComponent{{
				Type:     componentTextInput,
				Style:    1,
				CustomID: in.CustomID,
				Label:    in.Label,
				Required: in.Required,
			}},
		})
	}
	return &wireInteraData{CustomID: m.CustomID, Title: m.Title, Components: rows}
}
