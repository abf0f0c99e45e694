package ticket

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"ticketdesk/internal/gateway"
	"ticketdesk/internal/gateway/mocks"

	id "ticketdesk/pkg/domain"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseTopic(t *testing.T) {
	t.Run("parses suffixed marker", func(t *testing.T) {
		owner, ok := ParseTopic("123456|creator")
		require.True(t, ok)
		assert.Equal(t, id.UserID("123456"), owner)
	})

	t.Run("parses bare owner id", func(t *testing.T) {
		owner, ok := ParseTopic("123456")
		require.True(t, ok)
		assert.Equal(t, id.UserID("123456"), owner)
	})

	t.Run("rejects non-ticket topics", func(t *testing.T) {
		for _, topic := range []string{"", "general chat", "abc|creator", "|creator"} {
			_, ok := ParseTopic(topic)
			assert.False(t, ok, "topic %q", topic)
		}
	})

	t.Run("round-trips the owner marker", func(t *testing.T) {
		owner, ok := ParseTopic(TopicForOwner("42"))
		require.True(t, ok)
		assert.Equal(t, id.UserID("42"), owner)
	})
}

func TestRegistry_FindOpen(t *testing.T) {
	ctx := context.Background()
	const guild id.GuildID = "800"
	const category id.ChannelID = "500"

	channels := []gateway.Channel{
		{ID: "1", Type: gateway.ChannelTypeCategory, Name: "[support] Support"},
		{ID: "2", Type: gateway.ChannelTypeText, ParentID: category, Topic: "42|creator"},
		{ID: "3", Type: gateway.ChannelTypeText, ParentID: category, Topic: "77|creator"},
		{ID: "4", Type: gateway.ChannelTypeText, ParentID: "999", Topic: "42|creator"},
	}

	t.Run("finds the owner's ticket under the category", func(t *testing.T) {
		api := mocks.NewMockAPI(gomock.NewController(t))
		reg, err := NewRegistry(api, guild, discard())
		require.NoError(t, err)

		api.EXPECT().Channels(gomock.Any(), guild).Return(channels, nil)

		rec, found, err := reg.FindOpen(ctx, "42", "support", category)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, id.ChannelID("2"), rec.ChannelID)
		assert.Equal(t, StatusOpen, rec.Status)

		// The scan refreshed the channel-keyed index.
		indexed, ok := reg.Lookup("2")
		require.True(t, ok)
		assert.Equal(t, rec, indexed)
	})

	t.Run("ignores tickets under other categories", func(t *testing.T) {
		api := mocks.NewMockAPI(gomock.NewController(t))
		reg, err := NewRegistry(api, guild, discard())
		require.NoError(t, err)

		api.EXPECT().Channels(gomock.Any(), guild).Return(channels, nil)

		_, found, err := reg.FindOpen(ctx, "42", "billing", "999x")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("no match for an owner without a ticket", func(t *testing.T) {
		api := mocks.NewMockAPI(gomock.NewController(t))
		reg, err := NewRegistry(api, guild, discard())
		require.NoError(t, err)

		api.EXPECT().Channels(gomock.Any(), guild).Return(channels, nil)

		_, found, err := reg.FindOpen(ctx, "55", "support", category)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestRegistry_Index(t *testing.T) {
	api := mocks.NewMockAPI(gomock.NewController(t))
	reg, err := NewRegistry(api, "800", discard())
	require.NoError(t, err)

	rec := Record{ChannelID: "2", OwnerID: "42", CategoryKey: "support", Status: StatusOpen}
	reg.Track(rec)

	t.Run("marks closing", func(t *testing.T) {
		reg.MarkClosing("2")
		got, ok := reg.Lookup("2")
		require.True(t, ok)
		assert.Equal(t, StatusClosing, got.Status)
	})

	t.Run("a scan during the grace window keeps the closing status", func(t *testing.T) {
		reg.Track(rec)
		got, _ := reg.Lookup("2")
		assert.Equal(t, StatusClosing, got.Status)
	})

	t.Run("forget drops the record", func(t *testing.T) {
		reg.Forget("2")
		_, ok := reg.Lookup("2")
		assert.False(t, ok)
	})
}
