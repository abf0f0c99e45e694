package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	id "ticketdesk/pkg/domain"
	pstrings "ticketdesk/pkg/platform/strings"
)

// Server captures process-level configuration read from the environment.
type Server struct {
	Addr string

	// Platform credentials for the guild chat platform.
	BotToken  string
	AppID     string
	PublicKey string // hex-encoded ed25519 key verifying interaction signatures
	GuildID   id.GuildID

	Redis RedisConfig
	Kafka KafkaConfig

	// TicketsPath points at the JSON ticket configuration file.
	TicketsPath string
}

// RedisConfig holds connection settings for the scheduler backend.
// An empty URL disables Redis; the in-memory scheduler is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds broker settings for the audit mirror.
// Empty brokers disable the mirror.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TICKETDESK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	ticketsPath := os.Getenv("TICKETDESK_CONFIG")
	if ticketsPath == "" {
		ticketsPath = "tickets.json"
	}

	topic := os.Getenv("TICKETDESK_AUDIT_TOPIC")
	if topic == "" {
		topic = "ticketdesk.audit"
	}

	return Server{
		Addr:      addr,
		BotToken:  os.Getenv("TICKETDESK_BOT_TOKEN"),
		AppID:     os.Getenv("TICKETDESK_APP_ID"),
		PublicKey: os.Getenv("TICKETDESK_PUBLIC_KEY"),
		GuildID:   id.GuildID(os.Getenv("TICKETDESK_GUILD_ID")),
		Redis: RedisConfig{
			URL:          os.Getenv("TICKETDESK_REDIS_URL"),
			PoolSize:     envInt("TICKETDESK_REDIS_POOL_SIZE", 10),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("TICKETDESK_KAFKA_BROKERS")),
			Topic:   topic,
		},
		TicketsPath: ticketsPath,
	}
}

// CategoryConfig describes one ticket category from the config file.
type CategoryConfig struct {
	// DisplayName is shown on panel buttons and in category channel names.
	DisplayName string `json:"name"`
	// CategoryID optionally pins the backing category channel. The
	// provisioner treats it as a hint and falls back to name resolution
	// when the channel no longer exists.
	CategoryID id.ChannelID `json:"categoryId,omitempty"`
}

// Tickets is the ticket-system configuration loaded from the JSON file.
type Tickets struct {
	StaffRole      id.RoleID                         `json:"staffRole"`
	AdminRole      id.RoleID                         `json:"adminRole"`
	LoggingChannel id.ChannelID                      `json:"loggingChannel"`
	Categories     map[id.CategoryKey]CategoryConfig `json:"categories"`
}

// LoadTickets reads and validates the ticket configuration file.
func LoadTickets(path string) (Tickets, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tickets{}, fmt.Errorf("read ticket config: %w", err)
	}

	var file struct {
		Tickets Tickets `json:"tickets"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return Tickets{}, fmt.Errorf("parse ticket config: %w", err)
	}

	t := file.Tickets
	if t.StaffRole == "" {
		return Tickets{}, fmt.Errorf("ticket config: staffRole is required")
	}
	if len(t.Categories) == 0 {
		return Tickets{}, fmt.Errorf("ticket config: at least one category is required")
	}
	for key, cat := range t.Categories {
		if _, err := id.ParseCategoryKey(key.String()); err != nil {
			return Tickets{}, fmt.Errorf("ticket config: %w", err)
		}
		if cat.DisplayName == "" {
			return Tickets{}, fmt.Errorf("ticket config: category %q has no name", key)
		}
	}
	if t.AdminRole == "" {
		// Deleting tickets from the log falls back to the staff role.
		t.AdminRole = t.StaffRole
	}
	return t, nil
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	out := pstrings.DedupeAndTrim(strings.Split(s, ","))
	if len(out) == 0 {
		return nil
	}
	return out
}
