package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"ticketdesk/internal/gateway"
	"ticketdesk/internal/platform/config"

	id "ticketdesk/pkg/domain"
)

// categoryName renders the canonical category channel name. The [key]
// marker is what name-based resolution scans for.
func categoryName(key id.CategoryKey, displayName string) string {
	return "[" + key.String() + "] " + displayName
}

func categoryPrefix(key id.CategoryKey) string {
	return "[" + key.String() + "]"
}

// Provisioner resolves or creates the category channel that groups one
// kind of ticket. It owns the key-to-channel cache; concurrent calls for
// the same key collapse into one resolution.
type Provisioner struct {
	api       gateway.ChannelAPI
	guildID   id.GuildID
	staffRole id.RoleID
	logger    *slog.Logger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[id.CategoryKey]id.ChannelID
}

func NewProvisioner(api gateway.ChannelAPI, guildID id.GuildID, staffRole id.RoleID, logger *slog.Logger) (*Provisioner, error) {
	if api == nil {
		return nil, fmt.Errorf("channel api is required")
	}
	if guildID == "" {
		return nil, fmt.Errorf("guild id is required")
	}
	if staffRole == "" {
		return nil, fmt.Errorf("staff role is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Provisioner{
		api:       api,
		guildID:   guildID,
		staffRole: staffRole,
		logger:    logger,
		cache:     make(map[id.CategoryKey]id.ChannelID),
	}, nil
}

// Ensure resolves the category channel for a key, creating it when
// nothing matches. Idempotent: repeated calls converge on one channel.
func (p *Provisioner) Ensure(ctx context.Context, key id.CategoryKey, cfg config.CategoryConfig) (id.ChannelID, error) {
	v, err, _ := p.group.Do(key.String(), func() (any, error) {
		return p.resolve(ctx, key, cfg)
	})
	if err != nil {
		return "", err
	}
	return v.(id.ChannelID), nil
}

// Invalidate drops a cached resolution, forcing the next Ensure to
// re-resolve. Called when a cached channel turns out to be gone.
func (p *Provisioner) Invalidate(key id.CategoryKey) {
	p.mu.Lock()
	delete(p.cache, key)
	p.mu.Unlock()
}

func (p *Provisioner) resolve(ctx context.Context, key id.CategoryKey, cfg config.CategoryConfig) (id.ChannelID, error) {
	if cached, ok := p.cached(key); ok {
		if p.channelExists(ctx, cached) {
			return cached, nil
		}
		p.Invalidate(key)
	}

	// Configured hint, then name-based scan, then create.
	if cfg.CategoryID != "" && p.channelExists(ctx, cfg.CategoryID) {
		p.store(key, cfg.CategoryID)
		return cfg.CategoryID, nil
	}

	channels, err := p.api.Channels(ctx, p.guildID)
	if err != nil {
		return "", fmt.Errorf("list channels: %w", err)
	}
	prefix := categoryPrefix(key)
	for _, ch := range channels {
		if ch.Type == gateway.ChannelTypeCategory && strings.HasPrefix(ch.Name, prefix) {
			p.store(key, ch.ID)
			return ch.ID, nil
		}
	}

	created, err := p.api.CreateChannel(ctx, p.guildID, gateway.CreateChannelParams{
		Name: categoryName(key, cfg.DisplayName),
		Type: gateway.ChannelTypeCategory,
		Overwrites: []gateway.PermissionOverwrite{
			{
				// The everyone role shares the guild id.
				TargetID: p.guildID.String(),
				Kind:     gateway.OverwriteRole,
				Deny:     gateway.PermissionViewChannel,
			},
			{
				TargetID: p.staffRole.String(),
				Kind:     gateway.OverwriteRole,
				Allow:    gateway.PermissionViewChannel | gateway.PermissionSendMessages | gateway.PermissionManageChannels,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create category %q: %w", key, err)
	}

	p.logger.InfoContext(ctx, "category channel created",
		"category_key", key,
		"channel_id", created.ID,
	)
	p.store(key, created.ID)
	return created.ID, nil
}

func (p *Provisioner) cached(key id.CategoryKey) (id.ChannelID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ch, ok := p.cache[key]
	return ch, ok
}

func (p *Provisioner) store(key id.CategoryKey, channelID id.ChannelID) {
	p.mu.Lock()
	p.cache[key] = channelID
	p.mu.Unlock()
}

func (p *Provisioner) channelExists(ctx context.Context, channelID id.ChannelID) bool {
	_, err := p.api.Channel(ctx, channelID)
	return err == nil
}
