package auditlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ticketdesk/internal/gateway"
	"ticketdesk/internal/interaction"

	id "ticketdesk/pkg/domain"
)

// ActionLogger posts one embed per lifecycle action to the guild log
// channel. Logging is best effort: a failed or unconfigured log channel
// never fails the ticket operation that produced the entry.
type ActionLogger struct {
	api        gateway.MessageAPI
	guildID    id.GuildID
	logChannel id.ChannelID
	logger     *slog.Logger

	// mirror receives every entry for background export. Sends never
	// block; a full mirror drops the entry with a log line.
	mirror chan<- Entry
}

// Option configures an ActionLogger.
type Option func(*ActionLogger)

// WithMirror attaches the Kafka export inbox.
func WithMirror(inbox chan<- Entry) Option {
	return func(l *ActionLogger) { l.mirror = inbox }
}

// NewActionLogger constructs the logger. An empty logChannel disables
// channel posting; entries still flow to the mirror.
func NewActionLogger(api gateway.MessageAPI, guildID id.GuildID, logChannel id.ChannelID, logger *slog.Logger, opts ...Option) (*ActionLogger, error) {
	if api == nil {
		return nil, fmt.Errorf("message api is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	l := &ActionLogger{
		api:        api,
		guildID:    guildID,
		logChannel: logChannel,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logChannel == "" {
		logger.Warn("log channel not configured, ticket actions will not be posted")
	}
	return l, nil
}

// Record posts the entry to the log channel and queues it for export.
func (l *ActionLogger) Record(ctx context.Context, e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	l.post(ctx, e)

	if l.mirror != nil {
		select {
		case l.mirror <- e:
		default:
			l.logger.WarnContext(ctx, "audit mirror full, dropping entry",
				"entry_id", e.ID,
				"action", string(e.Action),
			)
		}
	}
}

func (l *ActionLogger) post(ctx context.Context, e Entry) {
	if l.logChannel == "" {
		return
	}

	msg := gateway.Message{Embeds: []gateway.Embed{l.embed(e)}}
	if e.Action == ActionCreate {
		msg.Components = [][]gateway.Button{l.createControls(e.TicketChannelID)}
	}

	if _, err := l.api.SendMessage(ctx, l.logChannel, msg); err != nil {
		l.logger.ErrorContext(ctx, "ticket action not posted to log channel",
			"entry_id", e.ID,
			"action", string(e.Action),
			"log_channel", l.logChannel,
			"error", err,
		)
	}
}

func (l *ActionLogger) embed(e Entry) gateway.Embed {
	desc := fmt.Sprintf("%s %s by %s",
		gateway.MentionChannel(e.TicketChannelID),
		verb(e.Action),
		gateway.MentionUser(e.ActorID),
	)

	var fields []gateway.EmbedField
	switch e.Action {
	case ActionRename:
		if name := e.Extra["new_name"]; name != "" {
			fields = append(fields, gateway.EmbedField{Name: "New name", Value: name})
		}
	case ActionAddUser, ActionRemoveUser:
		if target := e.Extra["target_user_id"]; target != "" {
			fields = append(fields, gateway.EmbedField{
				Name:  "User",
				Value: gateway.MentionUser(id.UserID(target)),
			})
		}
	}

	return gateway.Embed{
		Title:       e.Action.Title(),
		Description: desc,
		Color:       e.Action.Color(),
		Fields:      fields,
		Timestamp:   e.Timestamp.Format(time.RFC3339),
	}
}

// createControls builds the moderation row attached to create entries:
// delete the log entry, show the opener's profile, jump to the ticket.
func (l *ActionLogger) createControls(ticket id.ChannelID) []gateway.Button {
	return []gateway.Button{
		{
			CustomID: interaction.Action{Kind: interaction.ActionLogDelete, ChannelID: ticket}.CustomID(),
			Label:    "Delete log entry",
			Style:    gateway.ButtonDanger,
		},
		{
			CustomID: interaction.Action{Kind: interaction.ActionLogInfo, ChannelID: ticket}.CustomID(),
			Label:    "User info",
			Style:    gateway.ButtonSecondary,
		},
		{
			Label: "Open ticket",
			Style: gateway.ButtonLink,
			URL:   gateway.ChannelURL(l.guildID, ticket),
		},
	}
}

func verb(a Action) string {
	switch a {
	case ActionCreate:
		return "created"
	case ActionClose:
		return "closed"
	case ActionRename:
		return "renamed"
	case ActionAddUser:
		return "updated"
	case ActionRemoveUser:
		return "updated"
	default:
		return "updated"
	}
}
