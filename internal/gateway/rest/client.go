// Package rest implements the gateway interfaces over the platform HTTP
// API. All calls share one circuit breaker; when it is open, calls fail
// fast with sentinel.ErrUnavailable instead of stacking timeouts.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ticketdesk/internal/gateway"
	"ticketdesk/pkg/platform/circuit"
	"ticketdesk/pkg/platform/sentinel"

	id "ticketdesk/pkg/domain"
)

const defaultBaseURL = "https://discord.com/api/v10"

// Client talks to the platform HTTP API with bot-token authentication.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	breaker    *circuit.Breaker
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (tests point it at httptest).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New constructs a platform API client.
func New(token string, logger *slog.Logger, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
		breaker:    circuit.New("platform-api", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do executes one API call and decodes the response into out (when non-nil).
// Server errors and transport failures feed the breaker; 4xx responses are
// caller mistakes and do not.
func (c *Client) do(ctx context.Context, method, route string, body, out any) error {
	if c.breaker.IsOpen() {
		return fmt.Errorf("platform api %s: circuit open: %w", route, sentinel.ErrUnavailable)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", route, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+route, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", route, err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.Warn("platform api circuit opened", "route", route)
		}
		return fmt.Errorf("platform api %s: %w: %w", route, err, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.Warn("platform api circuit opened", "route", route)
		}
	case resp.StatusCode < 400:
		if _, change := c.breaker.RecordSuccess(); change.Closed {
			c.logger.Info("platform api circuit closed", "route", route)
		}
	}

	if resp.StatusCode >= 400 {
		msg := readAPIMessage(resp.Body)
		return &gateway.APIError{Status: resp.StatusCode, Route: route, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", route, err)
	}
	return nil
}

func readAPIMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err != nil {
		return "unreadable error body"
	}
	return payload.Message
}

func (c *Client) Channels(ctx context.Context, guildID id.GuildID) ([]gateway.Channel, error) {
	var wires []wireChannel
	if err := c.do(ctx, http.MethodGet, "/guilds/"+guildID.String()+"/channels", nil, &wires); err != nil {
		return nil, err
	}
	channels := make([]gateway.Channel, 0, len(wires))
	for _, w := range wires {
		ch := fromWireChannel(w)
		if ch.GuildID == "" {
			ch.GuildID = guildID
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

func (c *Client) Channel(ctx context.Context, channelID id.ChannelID) (gateway.Channel, error) {
	var w wireChannel
	if err := c.do(ctx, http.MethodGet, "/channels/"+channelID.String(), nil, &w); err != nil {
		return gateway.Channel{}, err
	}
	return fromWireChannel(w), nil
}

func (c *Client) CreateChannel(ctx context.Context, guildID id.GuildID, params gateway.CreateChannelParams) (gateway.Channel, error) {
	body := wireCreateChannel{
		Name:       params.Name,
		Type:       int(params.Type),
		ParentID:   params.ParentID.String(),
		Topic:      params.Topic,
		Overwrites: toWireOverwrites(params.Overwrites),
	}
	var w wireChannel
	if err := c.do(ctx, http.MethodPost, "/guilds/"+guildID.String()+"/channels", body, &w); err != nil {
		return gateway.Channel{}, err
	}
	ch := fromWireChannel(w)
	if ch.GuildID == "" {
		ch.GuildID = guildID
	}
	return ch, nil
}

func (c *Client) RenameChannel(ctx context.Context, channelID id.ChannelID, name string) error {
	body := map[string]string{"name": name}
	return c.do(ctx, http.MethodPatch, "/channels/"+channelID.String(), body, nil)
}

func (c *Client) DeleteChannel(ctx context.Context, channelID id.ChannelID) error {
	return c.do(ctx, http.MethodDelete, "/channels/"+channelID.String(), nil, nil)
}

func (c *Client) SetPermissionOverwrite(ctx context.Context, channelID id.ChannelID, overwrite gateway.PermissionOverwrite) error {
	wire := toWireOverwrites([]gateway.PermissionOverwrite{overwrite})[0]
	route := "/channels/" + channelID.String() + "/permissions/" + overwrite.TargetID
	return c.do(ctx, http.MethodPut, route, wire, nil)
}

func (c *Client) DeletePermissionOverwrite(ctx context.Context, channelID id.ChannelID, targetID string) error {
	route := "/channels/" + channelID.String() + "/permissions/" + targetID
	return c.do(ctx, http.MethodDelete, route, nil, nil)
}

func (c *Client) User(ctx context.Context, userID id.UserID) (gateway.User, error) {
	var w wireUser
	if err := c.do(ctx, http.MethodGet, "/users/"+userID.String(), nil, &w); err != nil {
		return gateway.User{}, err
	}
	return fromWireUser(w), nil
}

func (c *Client) Member(ctx context.Context, guildID id.GuildID, userID id.UserID) (gateway.Member, error) {
	var w wireMember
	route := "/guilds/" + guildID.String() + "/members/" + userID.String()
	if err := c.do(ctx, http.MethodGet, route, nil, &w); err != nil {
		return gateway.Member{}, err
	}
	return fromWireMember(w), nil
}

func (c *Client) Roles(ctx context.Context, guildID id.GuildID) ([]gateway.Role, error) {
	var wires []wireRole
	if err := c.do(ctx, http.MethodGet, "/guilds/"+guildID.String()+"/roles", nil, &wires); err != nil {
		return nil, err
	}
	roles := make([]gateway.Role, 0, len(wires))
	for _, w := range wires {
		roles = append(roles, gateway.Role{ID: id.RoleID(w.ID), Name: w.Name, Position: w.Position})
	}
	return roles, nil
}

func (c *Client) SendMessage(ctx context.Context, channelID id.ChannelID, msg gateway.Message) (gateway.MessageRef, error) {
	var ref wireMessageRef
	route := "/channels/" + channelID.String() + "/messages"
	if err := c.do(ctx, http.MethodPost, route, toWireMessage(msg, false), &ref); err != nil {
		return gateway.MessageRef{}, err
	}
	return gateway.MessageRef{ID: id.MessageID(ref.ID), ChannelID: id.ChannelID(ref.ChannelID)}, nil
}

func (c *Client) EditMessage(ctx context.Context, channelID id.ChannelID, messageID id.MessageID, msg gateway.Message) error {
	route := "/channels/" + channelID.String() + "/messages/" + messageID.String()
	return c.do(ctx, http.MethodPatch, route, toWireMessage(msg, false), nil)
}

func (c *Client) CreateInteractionResponse(ctx context.Context, interactionID, token string, resp gateway.InteractionResponse) error {
	route := "/interactions/" + interactionID + "/" + token + "/callback"
	body := wireInteractionResponse{Type: int(resp.Type)}
	switch resp.Type {
	case gateway.ResponseMessage:
		data := wireInteraData{
			Content:    resp.Message.Content,
			Embeds:     resp.Message.Embeds,
			Components: toWireComponents(resp.Message.Components),
		}
		if resp.Ephemeral {
			data.Flags = flagEphemeral
		}
		body.Data = &data
	case gateway.ResponseDeferMessage:
		if resp.Ephemeral {
			body.Data = &wireInteraData{Flags: flagEphemeral}
		}
	case gateway.ResponseModal:
		body.Data = toWireModal(resp.Modal)
	}
	return c.do(ctx, http.MethodPost, route, body, nil)
}

func (c *Client) EditInteractionResponse(ctx context.Context, appID, token string, msg gateway.Message) error {
	route := "/webhooks/" + appID + "/" + token + "/messages/@original"
	return c.do(ctx, http.MethodPatch, route, toWireMessage(msg, false), nil)
}

func (c *Client) FollowUpInteraction(ctx context.Context, appID, token string, msg gateway.Message, ephemeral bool) error {
	route := "/webhooks/" + appID + "/" + token
	return c.do(ctx, http.MethodPost, route, toWireMessage(msg, ephemeral), nil)
}

var _ gateway.API = (*Client)(nil)
