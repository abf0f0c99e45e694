package gateway

import (
	"time"

	id "ticketdesk/pkg/domain"
)

// ChannelType mirrors the platform channel type enumeration.
type ChannelType int

const (
	ChannelTypeText     ChannelType = 0
	ChannelTypeCategory ChannelType = 4
)

// Permission is a bit set of channel permissions.
type Permission uint64

const (
	PermissionViewChannel        Permission = 1 << 10
	PermissionSendMessages       Permission = 1 << 11
	PermissionManageChannels     Permission = 1 << 4
	PermissionReadMessageHistory Permission = 1 << 16
)

// OverwriteKind distinguishes role and member permission overwrites.
type OverwriteKind int

const (
	OverwriteRole   OverwriteKind = 0
	OverwriteMember OverwriteKind = 1
)

// PermissionOverwrite grants or denies permissions for one role or member
// on a channel.
type PermissionOverwrite struct {
	TargetID string
	Kind     OverwriteKind
	Allow    Permission
	Deny     Permission
}

// Channel is the platform channel projection consumed by this process.
// Topic carries the ticket ownership marker for ticket channels.
type Channel struct {
	ID       id.ChannelID
	GuildID  id.GuildID
	Name     string
	Type     ChannelType
	ParentID id.ChannelID
	Topic    string
}

// CreateChannelParams describes a channel to create.
type CreateChannelParams struct {
	Name       string
	Type       ChannelType
	ParentID   id.ChannelID
	Topic      string
	Overwrites []PermissionOverwrite
}

// User is a platform account.
type User struct {
	ID       id.UserID
	Username string
}

// CreatedAt derives the account creation time from the snowflake id.
func (u User) CreatedAt() time.Time {
	return SnowflakeTime(string(u.ID))
}

// Member is a user's membership in the guild.
type Member struct {
	User     User
	Roles    []id.RoleID
	JoinedAt time.Time
}

// HasRole reports whether the member carries the given role.
func (m Member) HasRole(role id.RoleID) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Role is a guild role.
type Role struct {
	ID       id.RoleID
	Name     string
	Position int
}

// EmbedField is one name/value pair inside an embed.
type EmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Embed is a rich message block.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// ButtonStyle selects the rendering of a button component.
type ButtonStyle int

const (
	ButtonPrimary   ButtonStyle = 1
	ButtonSecondary ButtonStyle = 2
	ButtonSuccess   ButtonStyle = 3
	ButtonDanger    ButtonStyle = 4
	ButtonLink      ButtonStyle = 5
)

// Button is a persistent component. Link buttons carry a URL instead of a
// custom id.
type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
	URL      string
}

// Message is an outbound message: plain content, embeds, and rows of
// buttons.
type Message struct {
	Content    string
	Embeds     []Embed
	Components [][]Button
}

// MessageRef identifies a sent message.
type MessageRef struct {
	ID        id.MessageID
	ChannelID id.ChannelID
}

// ResponseType enumerates initial interaction responses.
type ResponseType int

const (
	ResponsePong         ResponseType = 1
	ResponseMessage      ResponseType = 4
	ResponseDeferMessage ResponseType = 5
	ResponseModal        ResponseType = 9
)

// TextInput is one short-text field in a modal.
type TextInput struct {
	CustomID string
	Label    string
	Required bool
}

// Modal is a form shown in response to a component activation.
type Modal struct {
	CustomID string
	Title    string
	Inputs   []TextInput
}

// InteractionResponse is the initial response to an interaction.
type InteractionResponse struct {
	Type      ResponseType
	Message   Message
	Ephemeral bool
	Modal     Modal
}

// Mention helpers render platform mention syntax.
func MentionUser(u id.UserID) string       { return "<@" + u.String() + ">" }
func MentionChannel(c id.ChannelID) string { return "<#" + c.String() + ">" }

// ChannelURL builds the permanent link to a channel.
func ChannelURL(guild id.GuildID, channel id.ChannelID) string {
	return "https://discord.com/channels/" + guild.String() + "/" + channel.String()
}
