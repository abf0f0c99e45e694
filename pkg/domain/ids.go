// Package domain holds identifier primitives shared across modules.
// IDs are validated at parse time so trust boundaries (config, inbound
// interactions, modal input) can reject malformed values before any
// platform call is made.
package domain

import (
	"fmt"
	"strings"
)

// Snowflake is a platform-assigned numeric identifier rendered as a
// decimal string. Distinct named types prevent accidental mixing of
// user, channel, guild, and role ids at compile time.
type (
	UserID    string
	ChannelID string
	GuildID   string
	RoleID    string
	MessageID string
)

// CategoryKey names one configured ticket category ("support", "report").
// Keys appear inside component custom ids, so the separator characters
// used by the custom-id codec are forbidden.
type CategoryKey string

const snowflakeMaxLen = 20

func validSnowflake(s string) error {
	if s == "" {
		return fmt.Errorf("id is empty")
	}
	if len(s) > snowflakeMaxLen {
		return fmt.Errorf("id %q exceeds %d digits", s, snowflakeMaxLen)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("id %q is not numeric", s)
		}
	}
	return nil
}

// ParseUserID validates a snowflake and returns it as a UserID.
func ParseUserID(s string) (UserID, error) {
	if err := validSnowflake(s); err != nil {
		return "", fmt.Errorf("user id: %w", err)
	}
	return UserID(s), nil
}

// ParseChannelID validates a snowflake and returns it as a ChannelID.
func ParseChannelID(s string) (ChannelID, error) {
	if err := validSnowflake(s); err != nil {
		return "", fmt.Errorf("channel id: %w", err)
	}
	return ChannelID(s), nil
}

// ParseCategoryKey validates a category key. Keys are lower-case tokens
// without the ":" custom-id separator or whitespace.
func ParseCategoryKey(s string) (CategoryKey, error) {
	if s == "" {
		return "", fmt.Errorf("category key is empty")
	}
	if strings.ContainsAny(s, ": \t\n") {
		return "", fmt.Errorf("category key %q contains reserved characters", s)
	}
	return CategoryKey(s), nil
}

func (u UserID) String() string    { return string(u) }
func (c ChannelID) String() string { return string(c) }
func (g GuildID) String() string   { return string(g) }
func (r RoleID) String() string    { return string(r) }
func (m MessageID) String() string { return string(m) }
func (k CategoryKey) String() string { return string(k) }

// IsNil reports whether the id is unset.
func (u UserID) IsNil() bool    { return u == "" }
func (c ChannelID) IsNil() bool { return c == "" }
