// Package ticket implements the support-ticket lifecycle: category
// provisioning, duplicate prevention, creation, closure, and membership
// changes, with every transition recorded to the action log.
package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"ticketdesk/internal/auditlog"
	"ticketdesk/internal/gateway"
	"ticketdesk/internal/interaction"
	"ticketdesk/internal/platform/config"
	"ticketdesk/internal/schedule"

	id "ticketdesk/pkg/domain"
)

// closeGraceDelay is the window between the close acknowledgement and
// the channel deletion.
const closeGraceDelay = 5 * time.Second

const maxChannelNameLen = 100

// CreateResult reports the outcome of a create request.
type CreateResult struct {
	ChannelID id.ChannelID

	// AlreadyOpen is set when the requester had an open ticket in the
	// category; ChannelID then references the existing one.
	AlreadyOpen bool
}

// Service orchestrates ticket lifecycle operations.
type Service struct {
	api         gateway.API
	guildID     id.GuildID
	cfg         config.Tickets
	provisioner *Provisioner
	registry    *Registry
	audit       *auditlog.ActionLogger
	sched       schedule.Scheduler
	logger      *slog.Logger

	// creates collapses concurrent create requests for the same
	// (owner, category) pair inside this process. A second process can
	// still race the check-then-create sequence; at the expected scale
	// a single process handles the guild.
	creates singleflight.Group
}

func NewService(
	api gateway.API,
	guildID id.GuildID,
	cfg config.Tickets,
	provisioner *Provisioner,
	registry *Registry,
	audit *auditlog.ActionLogger,
	sched schedule.Scheduler,
	logger *slog.Logger,
) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("gateway api is required")
	}
	if guildID == "" {
		return nil, fmt.Errorf("guild id is required")
	}
	if provisioner == nil {
		return nil, fmt.Errorf("provisioner is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if audit == nil {
		return nil, fmt.Errorf("action logger is required")
	}
	if sched == nil {
		return nil, fmt.Errorf("scheduler is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{
		api:         api,
		guildID:     guildID,
		cfg:         cfg,
		provisioner: provisioner,
		registry:    registry,
		audit:       audit,
		sched:       sched,
		logger:      logger,
	}, nil
}

// CreateTicket opens a ticket channel for the requester in the given
// category, or returns the existing open one. Partially created channels
// from a mid-sequence failure are not cleaned up; the requester gets a
// generic retry and the next attempt finds the channel by topic.
func (s *Service) CreateTicket(ctx context.Context, requester gateway.Member, key id.CategoryKey) (CreateResult, error) {
	catCfg, ok := s.cfg.Categories[key]
	if !ok {
		return CreateResult{}, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}

	owner := requester.User.ID
	v, err, _ := s.creates.Do(owner.String()+"|"+key.String(), func() (any, error) {
		return s.createTicket(ctx, requester, key, catCfg)
	})
	if err != nil {
		return CreateResult{}, err
	}
	return v.(CreateResult), nil
}

func (s *Service) createTicket(ctx context.Context, requester gateway.Member, key id.CategoryKey, catCfg config.CategoryConfig) (CreateResult, error) {
	owner := requester.User.ID

	categoryID, err := s.provisioner.Ensure(ctx, key, catCfg)
	if err != nil {
		return CreateResult{}, err
	}

	if existing, found, err := s.registry.FindOpen(ctx, owner, key, categoryID); err != nil {
		return CreateResult{}, err
	} else if found {
		return CreateResult{ChannelID: existing.ChannelID, AlreadyOpen: true}, nil
	}

	memberAccess := gateway.PermissionViewChannel | gateway.PermissionSendMessages | gateway.PermissionReadMessageHistory
	channel, err := s.api.CreateChannel(ctx, s.guildID, gateway.CreateChannelParams{
		Name:     ticketName(requester.User.Username),
		Type:     gateway.ChannelTypeText,
		ParentID: categoryID,
		Topic:    TopicForOwner(owner),
		Overwrites: []gateway.PermissionOverwrite{
			{TargetID: s.guildID.String(), Kind: gateway.OverwriteRole, Deny: gateway.PermissionViewChannel},
			{TargetID: owner.String(), Kind: gateway.OverwriteMember, Allow: memberAccess},
			{TargetID: s.cfg.StaffRole.String(), Kind: gateway.OverwriteRole, Allow: memberAccess | gateway.PermissionManageChannels},
		},
	})
	if err != nil {
		return CreateResult{}, fmt.Errorf("create ticket channel: %w", err)
	}

	if _, err := s.api.SendMessage(ctx, channel.ID, s.welcomeMessage(requester, catCfg)); err != nil {
		return CreateResult{}, fmt.Errorf("post ticket controls: %w", err)
	}

	s.registry.Track(Record{
		ChannelID:   channel.ID,
		OwnerID:     owner,
		CategoryKey: key,
		Status:      StatusOpen,
	})

	s.audit.Record(ctx, auditlog.Entry{
		Action:          auditlog.ActionCreate,
		ActorID:         owner,
		ActorName:       requester.User.Username,
		TicketChannelID: channel.ID,
		Extra:           map[string]string{"category": key.String()},
	})

	s.logger.InfoContext(ctx, "ticket created",
		"channel_id", channel.ID,
		"owner_id", owner,
		"category_key", key,
	)
	return CreateResult{ChannelID: channel.ID}, nil
}

// CloseTicket validates the channel and actor, records the close, and
// schedules deletion after the grace delay. The acknowledgement is the
// caller's reply; deletion failures after the delay are logged only.
func (s *Service) CloseTicket(ctx context.Context, actor gateway.Member, ch gateway.Channel) error {
	if err := s.requireTicket(ch); err != nil {
		return err
	}
	if !actor.HasRole(s.cfg.StaffRole) {
		return ErrPermissionDenied
	}

	s.audit.Record(ctx, auditlog.Entry{
		Action:          auditlog.ActionClose,
		ActorID:         actor.User.ID,
		ActorName:       actor.User.Username,
		TicketChannelID: ch.ID,
	})

	s.registry.MarkClosing(ch.ID)

	taskID, err := s.sched.Schedule(ctx, schedule.Task{
		Kind:      schedule.KindDeleteChannel,
		ChannelID: ch.ID,
		DueAt:     time.Now().Add(closeGraceDelay),
	})
	if err != nil {
		return fmt.Errorf("schedule ticket deletion: %w", err)
	}

	s.logger.InfoContext(ctx, "ticket closing",
		"channel_id", ch.ID,
		"actor_id", actor.User.ID,
		"task_id", taskID,
	)
	return nil
}

// Rename changes the ticket channel's name.
func (s *Service) Rename(ctx context.Context, actor gateway.Member, ch gateway.Channel, newName string) error {
	if err := s.requireTicket(ch); err != nil {
		return err
	}
	if !actor.HasRole(s.cfg.StaffRole) {
		return ErrPermissionDenied
	}

	name := strings.TrimSpace(newName)
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if len(name) > maxChannelNameLen {
		return fmt.Errorf("%w: name exceeds %d characters", ErrValidation, maxChannelNameLen)
	}

	if err := s.api.RenameChannel(ctx, ch.ID, name); err != nil {
		return fmt.Errorf("rename ticket: %w", err)
	}

	s.audit.Record(ctx, auditlog.Entry{
		Action:          auditlog.ActionRename,
		ActorID:         actor.User.ID,
		ActorName:       actor.User.Username,
		TicketChannelID: ch.ID,
		Extra:           map[string]string{"new_name": name},
	})
	return nil
}

// AddUser grants a user access to the ticket channel.
func (s *Service) AddUser(ctx context.Context, actor gateway.Member, ch gateway.Channel, rawUser string) error {
	target, err := s.resolveTarget(ctx, actor, ch, rawUser)
	if err != nil {
		return err
	}

	access := gateway.PermissionViewChannel | gateway.PermissionSendMessages | gateway.PermissionReadMessageHistory
	err = s.api.SetPermissionOverwrite(ctx, ch.ID, gateway.PermissionOverwrite{
		TargetID: target.String(),
		Kind:     gateway.OverwriteMember,
		Allow:    access,
	})
	if err != nil {
		return fmt.Errorf("grant ticket access: %w", err)
	}

	s.audit.Record(ctx, auditlog.Entry{
		Action:          auditlog.ActionAddUser,
		ActorID:         actor.User.ID,
		ActorName:       actor.User.Username,
		TicketChannelID: ch.ID,
		Extra:           map[string]string{"target_user_id": target.String()},
	})
	return nil
}

// RemoveUser revokes a user's access to the ticket channel.
func (s *Service) RemoveUser(ctx context.Context, actor gateway.Member, ch gateway.Channel, rawUser string) error {
	target, err := s.resolveTarget(ctx, actor, ch, rawUser)
	if err != nil {
		return err
	}

	if err := s.api.DeletePermissionOverwrite(ctx, ch.ID, target.String()); err != nil {
		return fmt.Errorf("revoke ticket access: %w", err)
	}

	s.audit.Record(ctx, auditlog.Entry{
		Action:          auditlog.ActionRemoveUser,
		ActorID:         actor.User.ID,
		ActorName:       actor.User.Username,
		TicketChannelID: ch.ID,
		Extra:           map[string]string{"target_user_id": target.String()},
	})
	return nil
}

// PostPanel posts the category-selection panel into the given channel.
func (s *Service) PostPanel(ctx context.Context, channelID id.ChannelID) error {
	keys := make([]id.CategoryKey, 0, len(s.cfg.Categories))
	for key := range s.cfg.Categories {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var rows [][]gateway.Button
	var row []gateway.Button
	for _, key := range keys {
		row = append(row, gateway.Button{
			CustomID: interaction.Action{Kind: interaction.ActionCreateTicket, CategoryKey: key}.CustomID(),
			Label:    s.cfg.Categories[key].DisplayName,
			Style:    gateway.ButtonPrimary,
		})
		if len(row) == 5 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	msg := gateway.Message{
		Embeds: []gateway.Embed{{
			Title:       "Need help?",
			Description: "Choose a category below to open a support ticket.",
			Color:       0x5865f2,
		}},
		Components: rows,
	}
	if _, err := s.api.SendMessage(ctx, channelID, msg); err != nil {
		return fmt.Errorf("post panel: %w", err)
	}
	return nil
}

// DeleteNow removes a ticket channel immediately, used by the log-entry
// delete control. The caller distinguishes an already-deleted channel
// via gateway.IsNotFound.
func (s *Service) DeleteNow(ctx context.Context, channelID id.ChannelID) error {
	if err := s.api.DeleteChannel(ctx, channelID); err != nil {
		return err
	}
	s.registry.Forget(channelID)
	return nil
}

// ExecuteTask runs due scheduler tasks. An already-deleted channel is
// not an error.
func (s *Service) ExecuteTask(ctx context.Context, task schedule.Task) error {
	switch task.Kind {
	case schedule.KindDeleteChannel:
		if err := s.api.DeleteChannel(ctx, task.ChannelID); err != nil && !gateway.IsNotFound(err) {
			return fmt.Errorf("delete ticket channel %s: %w", task.ChannelID, err)
		}
		s.registry.Forget(task.ChannelID)
		s.logger.InfoContext(ctx, "ticket channel deleted", "channel_id", task.ChannelID)
		return nil
	default:
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}
}

// Owner resolves a ticket channel's owner for the log-entry info control.
// A tracked record answers directly; otherwise the channel topic is the
// authority.
func (s *Service) Owner(ctx context.Context, channelID id.ChannelID) (gateway.Member, error) {
	var owner id.UserID
	if rec, tracked := s.registry.Lookup(channelID); tracked {
		owner = rec.OwnerID
	} else {
		ch, err := s.api.Channel(ctx, channelID)
		if err != nil {
			if gateway.IsNotFound(err) {
				return gateway.Member{}, fmt.Errorf("%w: ticket channel %s", ErrNotATicket, channelID)
			}
			return gateway.Member{}, fmt.Errorf("fetch ticket channel: %w", err)
		}
		var ok bool
		owner, ok = ParseTopic(ch.Topic)
		if !ok {
			return gateway.Member{}, fmt.Errorf("%w: channel %s carries no ownership marker", ErrNotATicket, channelID)
		}
	}
	member, err := s.api.Member(ctx, s.guildID, owner)
	if err != nil {
		if gateway.IsNotFound(err) {
			return gateway.Member{}, fmt.Errorf("%w: %s", ErrUserNotFound, owner)
		}
		return gateway.Member{}, fmt.Errorf("fetch ticket owner: %w", err)
	}
	return member, nil
}

// requireTicket accepts a channel this process tracks, or one whose
// platform state still looks like a ticket.
func (s *Service) requireTicket(ch gateway.Channel) error {
	if _, tracked := s.registry.Lookup(ch.ID); tracked {
		return nil
	}
	if _, ok := ParseTopic(ch.Topic); !ok && ch.ParentID == "" {
		return ErrNotATicket
	}
	return nil
}

func (s *Service) resolveTarget(ctx context.Context, actor gateway.Member, ch gateway.Channel, rawUser string) (id.UserID, error) {
	if err := s.requireTicket(ch); err != nil {
		return "", err
	}
	if !actor.HasRole(s.cfg.StaffRole) {
		return "", ErrPermissionDenied
	}

	target, err := id.ParseUserID(strings.TrimSpace(rawUser))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := s.api.User(ctx, target); err != nil {
		if gateway.IsNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrUserNotFound, target)
		}
		return "", fmt.Errorf("look up user %s: %w", target, err)
	}
	return target, nil
}

func (s *Service) welcomeMessage(requester gateway.Member, catCfg config.CategoryConfig) gateway.Message {
	return gateway.Message{
		Embeds: []gateway.Embed{{
			Title: "Support ticket",
			Description: fmt.Sprintf("Hello %s, a staff member will be with you shortly.",
				gateway.MentionUser(requester.User.ID)),
			Color: 0x00ff00,
			Fields: []gateway.EmbedField{
				{Name: "Category", Value: catCfg.DisplayName},
				{Name: "Opened by", Value: requester.User.Username + " (" + requester.User.ID.String() + ")"},
			},
		}},
		Components: [][]gateway.Button{{
			{CustomID: interaction.Action{Kind: interaction.ActionCloseTicket}.CustomID(), Label: "Close", Style: gateway.ButtonDanger},
			{CustomID: interaction.Action{Kind: interaction.ActionRenamePrompt}.CustomID(), Label: "Rename", Style: gateway.ButtonSecondary},
			{CustomID: interaction.Action{Kind: interaction.ActionAddUserPrompt}.CustomID(), Label: "Add user", Style: gateway.ButtonSuccess},
			{CustomID: interaction.Action{Kind: interaction.ActionRemoveUserPrompt}.CustomID(), Label: "Remove user", Style: gateway.ButtonSecondary},
		}},
	}
}

// ticketName derives a channel name from the requester's username.
func ticketName(username string) string {
	name := strings.ToLower(strings.TrimSpace(username))
	name = strings.ReplaceAll(name, " ", "-")
	if name == "" {
		name = "ticket"
	}
	full := "ticket-" + name
	if len(full) > maxChannelNameLen {
		full = full[:maxChannelNameLen]
	}
	return full
}
