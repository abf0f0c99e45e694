package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"ticketdesk/internal/gateway"

	id "ticketdesk/pkg/domain"
)

// topicSuffix marks the channel topic as written by this system. The
// owner id comes first so older topics that carry only the id still
// parse.
const topicSuffix = "creator"

// TopicForOwner renders the ownership marker stored in a ticket
// channel's topic field.
func TopicForOwner(owner id.UserID) string {
	return owner.String() + "|" + topicSuffix
}

// ParseTopic extracts the owner id from a ticket topic. Every component
// that reads ownership goes through here; nothing else parses the topic
// convention.
func ParseTopic(topic string) (id.UserID, bool) {
	raw, _, _ := strings.Cut(topic, "|")
	owner, err := id.ParseUserID(raw)
	if err != nil {
		return "", false
	}
	return owner, true
}

// Status tracks a ticket record through its short lifecycle.
type Status string

const (
	StatusOpen    Status = "open"
	StatusClosing Status = "closing"
)

// Record is the structured view of one ticket, keyed by its channel.
// The platform channel remains the durable source; records are a
// process-lifetime projection rebuilt on demand from channel scans.
type Record struct {
	ChannelID   id.ChannelID
	OwnerID     id.UserID
	CategoryKey id.CategoryKey
	Status      Status
}

// Registry answers whether an owner already has an open ticket in a
// category and maintains the channel-keyed record index.
type Registry struct {
	api     gateway.ChannelAPI
	guildID id.GuildID
	logger  *slog.Logger

	mu      sync.RWMutex
	records map[id.ChannelID]Record
}

func NewRegistry(api gateway.ChannelAPI, guildID id.GuildID, logger *slog.Logger) (*Registry, error) {
	if api == nil {
		return nil, fmt.Errorf("channel api is required")
	}
	if guildID == "" {
		return nil, fmt.Errorf("guild id is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Registry{
		api:     api,
		guildID: guildID,
		logger:  logger,
		records: make(map[id.ChannelID]Record),
	}, nil
}

// FindOpen scans the category's child channels for one whose topic marks
// the owner. The scan is the authority; the record index is refreshed
// from whatever it finds.
func (r *Registry) FindOpen(ctx context.Context, owner id.UserID, key id.CategoryKey, categoryID id.ChannelID) (Record, bool, error) {
	channels, err := r.api.Channels(ctx, r.guildID)
	if err != nil {
		return Record{}, false, fmt.Errorf("list channels: %w", err)
	}

	for _, ch := range channels {
		if ch.Type != gateway.ChannelTypeText || ch.ParentID != categoryID {
			continue
		}
		topicOwner, ok := ParseTopic(ch.Topic)
		if !ok || topicOwner != owner {
			continue
		}
		rec := Record{
			ChannelID:   ch.ID,
			OwnerID:     owner,
			CategoryKey: key,
			Status:      StatusOpen,
		}
		r.track(rec)
		return rec, true, nil
	}
	return Record{}, false, nil
}

// Lookup returns the indexed record for a channel, if any.
func (r *Registry) Lookup(channelID id.ChannelID) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[channelID]
	return rec, ok
}

// Track records a ticket in the index.
func (r *Registry) Track(rec Record) {
	r.track(rec)
}

// MarkClosing flags a tracked ticket as pending deletion.
func (r *Registry) MarkClosing(channelID id.ChannelID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[channelID]; ok {
		rec.Status = StatusClosing
		r.records[channelID] = rec
	}
}

// Forget drops a channel from the index once it is deleted.
func (r *Registry) Forget(channelID id.ChannelID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, channelID)
}

func (r *Registry) track(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.records[rec.ChannelID]; ok && existing.Status == StatusClosing {
		// A closing ticket stays closing even if a scan re-finds it
		// during the grace window.
		return
	}
	r.records[rec.ChannelID] = rec
}
