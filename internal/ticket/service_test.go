package ticket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ticketdesk/internal/auditlog"
	"ticketdesk/internal/gateway"
	"ticketdesk/internal/gateway/mocks"
	"ticketdesk/internal/platform/config"
	"ticketdesk/internal/schedule"

	id "ticketdesk/pkg/domain"
)

// =============================================================================
// Ticket Lifecycle Test Suite
// =============================================================================
// Justification for unit tests: the lifecycle composes provisioning, the
// duplicate scan, channel mutation, audit recording, and deferred deletion.
// The ordering guarantees (no mutation before the staff check, no second
// channel for an open ticket) need precise call-level assertions that an
// end-to-end run against the platform cannot give.

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []schedule.Task
}

func (f *fakeScheduler) Schedule(_ context.Context, task schedule.Task) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.ID == "" {
		task.ID = "task-1"
	}
	f.tasks = append(f.tasks, task)
	return task.ID, nil
}

func (f *fakeScheduler) Cancel(_ context.Context, _ string) error { return nil }

func (f *fakeScheduler) scheduled() []schedule.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]schedule.Task(nil), f.tasks...)
}

type LifecycleSuite struct {
	suite.Suite
	api      *mocks.MockAPI
	sched    *fakeScheduler
	mirror   chan auditlog.Entry
	registry *Registry
	svc      *Service
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.api = mocks.NewMockAPI(gomock.NewController(s.T()))
	s.sched = &fakeScheduler{}
	s.mirror = make(chan auditlog.Entry, 8)

	logger := discard()
	cfg := config.Tickets{
		StaffRole: testStaff,
		AdminRole: "901",
		Categories: map[id.CategoryKey]config.CategoryConfig{
			"support": {DisplayName: "Support"},
		},
	}

	prov, err := NewProvisioner(s.api, testGuild, testStaff, logger)
	s.Require().NoError(err)
	reg, err := NewRegistry(s.api, testGuild, logger)
	s.Require().NoError(err)
	s.registry = reg
	audit, err := auditlog.NewActionLogger(s.api, testGuild, "", logger, auditlog.WithMirror(s.mirror))
	s.Require().NoError(err)

	s.svc, err = NewService(s.api, testGuild, cfg, prov, reg, audit, s.sched, logger)
	s.Require().NoError(err)
}

func (s *LifecycleSuite) requester() gateway.Member {
	return gateway.Member{User: gateway.User{ID: "42", Username: "Alice"}}
}

func (s *LifecycleSuite) staff() gateway.Member {
	return gateway.Member{User: gateway.User{ID: "77", Username: "Mod"}, Roles: []id.RoleID{testStaff}}
}

func (s *LifecycleSuite) recordedActions() []auditlog.Action {
	var actions []auditlog.Action
	for {
		select {
		case e := <-s.mirror:
			actions = append(actions, e.Action)
		default:
			return actions
		}
	}
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *LifecycleSuite) TestNewService() {
	s.Run("nil api returns error", func() {
		_, err := NewService(nil, testGuild, config.Tickets{}, nil, nil, nil, nil, nil)
		s.Error(err)
		s.Contains(err.Error(), "gateway api is required")
	})
}

// =============================================================================
// Create Tests
// =============================================================================

func (s *LifecycleSuite) TestCreateTicket() {
	ctx := context.Background()

	s.Run("unknown category fails before any platform call", func() {
		_, err := s.svc.CreateTicket(ctx, s.requester(), "nope")
		s.ErrorIs(err, ErrUnknownCategory)
	})

	s.Run("first activation provisions the category and creates the channel", func() {
		// One scan for category resolution, one for the duplicate check.
		s.api.EXPECT().Channels(gomock.Any(), testGuild).Return(nil, nil).Times(2)

		gomock.InOrder(
			s.api.EXPECT().
				CreateChannel(gomock.Any(), testGuild, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ id.GuildID, params gateway.CreateChannelParams) (gateway.Channel, error) {
					s.Equal(gateway.ChannelTypeCategory, params.Type)
					s.Equal("[support] Support", params.Name)
					return gateway.Channel{ID: "500", Type: gateway.ChannelTypeCategory}, nil
				}),
			s.api.EXPECT().
				CreateChannel(gomock.Any(), testGuild, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ id.GuildID, params gateway.CreateChannelParams) (gateway.Channel, error) {
					s.Equal(gateway.ChannelTypeText, params.Type)
					s.Equal("ticket-alice", params.Name)
					s.Equal(id.ChannelID("500"), params.ParentID)
					s.Equal("42|creator", params.Topic)

					s.Require().Len(params.Overwrites, 3)
					s.Equal(testGuild.String(), params.Overwrites[0].TargetID)
					s.Equal(gateway.PermissionViewChannel, params.Overwrites[0].Deny)
					s.Equal("42", params.Overwrites[1].TargetID)
					s.Equal(gateway.OverwriteMember, params.Overwrites[1].Kind)
					s.Equal(testStaff.String(), params.Overwrites[2].TargetID)
					s.NotZero(params.Overwrites[2].Allow&gateway.PermissionManageChannels)
					return gateway.Channel{ID: "600", Type: gateway.ChannelTypeText, ParentID: "500"}, nil
				}),
			s.api.EXPECT().
				SendMessage(gomock.Any(), id.ChannelID("600"), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ id.ChannelID, msg gateway.Message) (gateway.MessageRef, error) {
					s.Require().Len(msg.Components, 1)
					s.Len(msg.Components[0], 4)
					s.Equal("ticket:close", msg.Components[0][0].CustomID)
					return gateway.MessageRef{ID: "1", ChannelID: "600"}, nil
				}),
		)

		res, err := s.svc.CreateTicket(ctx, s.requester(), "support")
		s.Require().NoError(err)
		s.Equal(id.ChannelID("600"), res.ChannelID)
		s.False(res.AlreadyOpen)
		s.Equal([]auditlog.Action{auditlog.ActionCreate}, s.recordedActions())
	})

	s.Run("second activation returns the existing ticket", func() {
		// Category is cached from the first activation.
		s.api.EXPECT().Channel(gomock.Any(), id.ChannelID("500")).
			Return(gateway.Channel{ID: "500", Type: gateway.ChannelTypeCategory}, nil)
		s.api.EXPECT().Channels(gomock.Any(), testGuild).Return([]gateway.Channel{
			{ID: "500", Type: gateway.ChannelTypeCategory, Name: "[support] Support"},
			{ID: "600", Type: gateway.ChannelTypeText, ParentID: "500", Topic: "42|creator"},
		}, nil)

		res, err := s.svc.CreateTicket(ctx, s.requester(), "support")
		s.Require().NoError(err)
		s.True(res.AlreadyOpen)
		s.Equal(id.ChannelID("600"), res.ChannelID)
		s.Empty(s.recordedActions())
	})

	s.Run("mid-sequence failure returns no ticket reference", func() {
		s.api.EXPECT().Channel(gomock.Any(), id.ChannelID("500")).
			Return(gateway.Channel{ID: "500", Type: gateway.ChannelTypeCategory}, nil)
		s.api.EXPECT().Channels(gomock.Any(), testGuild).Return(nil, nil)
		s.api.EXPECT().CreateChannel(gomock.Any(), testGuild, gomock.Any()).
			Return(gateway.Channel{}, &gateway.APIError{Status: 500, Route: "/guilds/800/channels"})

		_, err := s.svc.CreateTicket(ctx, s.requester(), "support")
		s.Error(err)
		s.Empty(s.recordedActions())
	})
}

// =============================================================================
// Close Tests
// =============================================================================

func (s *LifecycleSuite) TestCloseTicket() {
	ctx := context.Background()
	ticket := gateway.Channel{ID: "600", Type: gateway.ChannelTypeText, ParentID: "500", Topic: "42|creator"}

	s.Run("channel without topic and parent is not a ticket", func() {
		err := s.svc.CloseTicket(ctx, s.staff(), gateway.Channel{ID: "700", Name: "general"})
		s.ErrorIs(err, ErrNotATicket)
		s.Empty(s.sched.scheduled())
	})

	s.Run("non-staff is rejected before any log entry", func() {
		err := s.svc.CloseTicket(ctx, s.requester(), ticket)
		s.ErrorIs(err, ErrPermissionDenied)
		s.Empty(s.sched.scheduled())
		s.Empty(s.recordedActions())
	})

	s.Run("staff close logs and schedules deletion after the grace delay", func() {
		before := time.Now()
		err := s.svc.CloseTicket(ctx, s.staff(), ticket)
		s.Require().NoError(err)

		s.Equal([]auditlog.Action{auditlog.ActionClose}, s.recordedActions())

		tasks := s.sched.scheduled()
		s.Require().Len(tasks, 1)
		s.Equal(schedule.KindDeleteChannel, tasks[0].Kind)
		s.Equal(id.ChannelID("600"), tasks[0].ChannelID)
		s.WithinDuration(before.Add(closeGraceDelay), tasks[0].DueAt, time.Second)
	})
}

// =============================================================================
// Record Index Tests
// =============================================================================

func (s *LifecycleSuite) TestTrackedRecords() {
	ctx := context.Background()

	s.Run("a tracked channel stays closable after its topic is cleared", func() {
		s.registry.Track(Record{ChannelID: "600", OwnerID: "42", CategoryKey: "support", Status: StatusOpen})

		err := s.svc.CloseTicket(ctx, s.staff(), gateway.Channel{ID: "600", Type: gateway.ChannelTypeText})
		s.Require().NoError(err)
		s.Require().Len(s.sched.scheduled(), 1)
	})

	s.Run("owner resolves from the record without a channel fetch", func() {
		s.registry.Track(Record{ChannelID: "601", OwnerID: "42", CategoryKey: "support", Status: StatusOpen})
		s.api.EXPECT().Member(gomock.Any(), testGuild, id.UserID("42")).
			Return(gateway.Member{User: gateway.User{ID: "42", Username: "Alice"}}, nil)

		member, err := s.svc.Owner(ctx, "601")
		s.Require().NoError(err)
		s.Equal("Alice", member.User.Username)
	})

	s.Run("a forgotten channel falls back to the platform lookup", func() {
		s.registry.Track(Record{ChannelID: "602", OwnerID: "42"})
		s.registry.Forget("602")
		s.api.EXPECT().Channel(gomock.Any(), id.ChannelID("602")).
			Return(gateway.Channel{}, &gateway.APIError{Status: 404, Route: "/channels/602"})

		_, err := s.svc.Owner(ctx, "602")
		s.ErrorIs(err, ErrNotATicket)
	})
}

// =============================================================================
// Mutation Tests
// =============================================================================

func (s *LifecycleSuite) TestRename() {
	ctx := context.Background()
	ticket := gateway.Channel{ID: "600", ParentID: "500", Topic: "42|creator"}

	s.Run("empty name fails validation", func() {
		err := s.svc.Rename(ctx, s.staff(), ticket, "   ")
		s.ErrorIs(err, ErrValidation)
	})

	s.Run("renames and logs", func() {
		s.api.EXPECT().RenameChannel(gomock.Any(), id.ChannelID("600"), "billing-issue").Return(nil)

		err := s.svc.Rename(ctx, s.staff(), ticket, " billing-issue ")
		s.Require().NoError(err)
		s.Equal([]auditlog.Action{auditlog.ActionRename}, s.recordedActions())
	})
}

func (s *LifecycleSuite) TestMembershipChanges() {
	ctx := context.Background()
	ticket := gateway.Channel{ID: "600", ParentID: "500", Topic: "42|creator"}

	s.Run("unknown user fails with user not found", func() {
		s.api.EXPECT().User(gomock.Any(), id.UserID("555")).
			Return(gateway.User{}, &gateway.APIError{Status: 404, Route: "/users/555"})

		err := s.svc.AddUser(ctx, s.staff(), ticket, "555")
		s.ErrorIs(err, ErrUserNotFound)
	})

	s.Run("malformed id fails validation without a lookup", func() {
		err := s.svc.AddUser(ctx, s.staff(), ticket, "not-an-id")
		s.ErrorIs(err, ErrValidation)
	})

	s.Run("add grants the member overwrite", func() {
		s.api.EXPECT().User(gomock.Any(), id.UserID("555")).Return(gateway.User{ID: "555"}, nil)
		s.api.EXPECT().
			SetPermissionOverwrite(gomock.Any(), id.ChannelID("600"), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.ChannelID, o gateway.PermissionOverwrite) error {
				s.Equal("555", o.TargetID)
				s.Equal(gateway.OverwriteMember, o.Kind)
				s.NotZero(o.Allow & gateway.PermissionViewChannel)
				return nil
			})

		s.Require().NoError(s.svc.AddUser(ctx, s.staff(), ticket, "555"))
		s.Equal([]auditlog.Action{auditlog.ActionAddUser}, s.recordedActions())
	})

	s.Run("remove deletes the member overwrite", func() {
		s.api.EXPECT().User(gomock.Any(), id.UserID("555")).Return(gateway.User{ID: "555"}, nil)
		s.api.EXPECT().DeletePermissionOverwrite(gomock.Any(), id.ChannelID("600"), "555").Return(nil)

		s.Require().NoError(s.svc.RemoveUser(ctx, s.staff(), ticket, "555"))
		s.Equal([]auditlog.Action{auditlog.ActionRemoveUser}, s.recordedActions())
	})
}

// =============================================================================
// Panel and Task Tests
// =============================================================================

func (s *LifecycleSuite) TestPostPanel() {
	ctx := context.Background()

	s.api.EXPECT().
		SendMessage(gomock.Any(), id.ChannelID("100"), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ id.ChannelID, msg gateway.Message) (gateway.MessageRef, error) {
			s.Require().Len(msg.Components, 1)
			s.Require().Len(msg.Components[0], 1)
			s.Equal("ticket:create:support", msg.Components[0][0].CustomID)
			s.Equal("Support", msg.Components[0][0].Label)
			s.Require().Len(msg.Embeds, 1)
			return gateway.MessageRef{}, nil
		})

	s.Require().NoError(s.svc.PostPanel(ctx, "100"))
}

func (s *LifecycleSuite) TestExecuteTask() {
	ctx := context.Background()

	s.Run("deletes the channel when due", func() {
		s.api.EXPECT().DeleteChannel(gomock.Any(), id.ChannelID("600")).Return(nil)

		err := s.svc.ExecuteTask(ctx, schedule.Task{Kind: schedule.KindDeleteChannel, ChannelID: "600"})
		s.NoError(err)
	})

	s.Run("already-deleted channel is not an error", func() {
		s.api.EXPECT().DeleteChannel(gomock.Any(), id.ChannelID("600")).
			Return(&gateway.APIError{Status: 404, Route: "/channels/600"})

		err := s.svc.ExecuteTask(ctx, schedule.Task{Kind: schedule.KindDeleteChannel, ChannelID: "600"})
		s.NoError(err)
	})

	s.Run("unknown kinds are rejected", func() {
		err := s.svc.ExecuteTask(ctx, schedule.Task{Kind: "mystery"})
		s.Error(err)
	})
}
