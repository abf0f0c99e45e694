package interaction

import (
	"context"
	"errors"
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

const testStaffRole id.RoleID = "900"

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	rt, err := NewRouter(testStaffRole, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	return rt
}

func memberWith(roles ...id.RoleID) gateway.Member {
	return gateway.Member{User: gateway.User{ID: "10"}, Roles: roles}
}

func componentInteraction(customID string, member gateway.Member) *Interaction {
	return &Interaction{
		ID:       "int-1",
		Token:    "tok-1",
		Kind:     KindComponent,
		CustomID: customID,
		Member:   member,
	}
}

func TestNewRouter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("requires staff role", func(t *testing.T) {
		_, err := NewRouter("", logger, nil)
		require.Error(t, err)
	})

	t.Run("requires logger", func(t *testing.T) {
		_, err := NewRouter(testStaffRole, nil, nil)
		require.Error(t, err)
	})
}

func TestRouter_Commands(t *testing.T) {
	ctx := context.Background()

	t.Run("routes to the registered command", func(t *testing.T) {
		rt := newTestRouter(t)
		var ran bool
		rt.RegisterCommand(Command{Name: "panel", Run: func(ctx context.Context, in *Interaction, r *Responder) error {
			ran = true
			return nil
		}})

		in := &Interaction{Kind: KindCommand, CommandName: "panel", Member: memberWith(testStaffRole)}
		rt.Dispatch(ctx, in, NewResponder(mocks.NewMockAPI(gomock.NewController(t)), "app", in))
		assert.True(t, ran)
	})

	t.Run("unknown command gets an ephemeral failure", func(t *testing.T) {
		rt := newTestRouter(t)
		api := mocks.NewMockAPI(gomock.NewController(t))
		in := &Interaction{ID: "int-1", Token: "tok-1", Kind: KindCommand, CommandName: "nope", Member: memberWith()}

		api.EXPECT().
			CreateInteractionResponse(gomock.Any(), "int-1", "tok-1", gateway.InteractionResponse{
				Type:      gateway.ResponseMessage,
				Message:   gateway.Message{Content: genericFailure},
				Ephemeral: true,
			}).
			Return(nil)

		rt.Dispatch(ctx, in, NewResponder(api, "app", in))
	})

	t.Run("error before any reply produces one ephemeral failure", func(t *testing.T) {
		rt := newTestRouter(t)
		rt.RegisterCommand(Command{Name: "panel", Run: func(ctx context.Context, in *Interaction, r *Responder) error {
			return errors.New("boom")
		}})
		api := mocks.NewMockAPI(gomock.NewController(t))
		in := &Interaction{ID: "int-1", Token: "tok-1", Kind: KindCommand, CommandName: "panel", Member: memberWith(testStaffRole)}

		api.EXPECT().
			CreateInteractionResponse(gomock.Any(), "int-1", "tok-1", gomock.Any()).
			Return(nil).
			Times(1)

		rt.Dispatch(ctx, in, NewResponder(api, "app", in))
	})

	t.Run("error after deferral completes the deferred reply", func(t *testing.T) {
		rt := newTestRouter(t)
		rt.RegisterCommand(Command{Name: "panel", Run: func(ctx context.Context, in *Interaction, r *Responder) error {
			if err := r.Defer(ctx, true); err != nil {
				return err
			}
			return errors.New("downstream unavailable")
		}})
		api := mocks.NewMockAPI(gomock.NewController(t))
		in := &Interaction{ID: "int-1", Token: "tok-1", Kind: KindCommand, CommandName: "panel", Member: memberWith(testStaffRole)}

		gomock.InOrder(
			api.EXPECT().CreateInteractionResponse(gomock.Any(), "int-1", "tok-1", gateway.InteractionResponse{
				Type:      gateway.ResponseDeferMessage,
				Ephemeral: true,
			}).Return(nil),
			api.EXPECT().EditInteractionResponse(gomock.Any(), "app", "tok-1", gateway.Message{Content: genericFailure}).Return(nil),
		)

		rt.Dispatch(ctx, in, NewResponder(api, "app", in))
	})

	t.Run("error after a sent reply follows up instead of duplicating", func(t *testing.T) {
		rt := newTestRouter(t)
		rt.RegisterCommand(Command{Name: "panel", Run: func(ctx context.Context, in *Interaction, r *Responder) error {
			if err := r.Reply(ctx, gateway.Message{Content: "posted"}, false); err != nil {
				return err
			}
			return errors.New("cleanup failed")
		}})
		api := mocks.NewMockAPI(gomock.NewController(t))
		in := &Interaction{ID: "int-1", Token: "tok-1", Kind: KindCommand, CommandName: "panel", Member: memberWith(testStaffRole)}

		gomock.InOrder(
			api.EXPECT().CreateInteractionResponse(gomock.Any(), "int-1", "tok-1", gomock.Any()).Return(nil),
			api.EXPECT().FollowUpInteraction(gomock.Any(), "app", "tok-1", gateway.Message{Content: genericFailure}, true).Return(nil),
		)

		rt.Dispatch(ctx, in, NewResponder(api, "app", in))
	})
}

func TestRouter_Components(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes once and passes the action to the handler", func(t *testing.T) {
		rt := newTestRouter(t)
		var got Action
		rt.RegisterComponent(Component{Kind: ActionCreateTicket, Run: func(ctx context.Context, in *Interaction, act Action, r *Responder) error {
			got = act
			return nil
		}})

		in := componentInteraction("ticket:create:support", memberWith())
		rt.Dispatch(ctx, in, NewResponder(mocks.NewMockAPI(gomock.NewController(t)), "app", in))
		assert.Equal(t, Action{Kind: ActionCreateTicket, CategoryKey: "support"}, got)
	})

	t.Run("staff gate blocks non-staff with an ephemeral denial", func(t *testing.T) {
		rt := newTestRouter(t)
		rt.RegisterComponent(Component{Kind: ActionRenamePrompt, StaffOnly: true, Run: func(ctx context.Context, in *Interaction, act Action, r *Responder) error {
			t.Fatal("handler must not run for non-staff")
			return nil
		}})
		api := mocks.NewMockAPI(gomock.NewController(t))
		in := componentInteraction("ticket:rename", memberWith("123"))

		api.EXPECT().
			CreateInteractionResponse(gomock.Any(), "int-1", "tok-1", gomock.AssignableToTypeOf(gateway.InteractionResponse{})).
			DoAndReturn(func(_ context.Context, _, _ string, resp gateway.InteractionResponse) error {
				assert.True(t, resp.Ephemeral)
				assert.Contains(t, resp.Message.Content, "permission")
				return nil
			})

		rt.Dispatch(ctx, in, NewResponder(api, "app", in))
	})

	t.Run("staff gate admits staff members", func(t *testing.T) {
		rt := newTestRouter(t)
		var ran bool
		rt.RegisterComponent(Component{Kind: ActionRenamePrompt, StaffOnly: true, Run: func(ctx context.Context, in *Interaction, act Action, r *Responder) error {
			ran = true
			return nil
		}})

		in := componentInteraction("ticket:rename", memberWith("123", testStaffRole))
		rt.Dispatch(ctx, in, NewResponder(mocks.NewMockAPI(gomock.NewController(t)), "app", in))
		assert.True(t, ran)
	})

	t.Run("undecodable custom id gets an ephemeral failure", func(t *testing.T) {
		rt := newTestRouter(t)
		api := mocks.NewMockAPI(gomock.NewController(t))
		in := componentInteraction("garbage", memberWith())

		api.EXPECT().
			CreateInteractionResponse(gomock.Any(), "int-1", "tok-1", gomock.Any()).
			Return(nil)

		rt.Dispatch(ctx, in, NewResponder(api, "app", in))
	})

	t.Run("panicking handler is contained", func(t *testing.T) {
		rt := newTestRouter(t)
		rt.RegisterComponent(Component{Kind: ActionCloseTicket, Run: func(ctx context.Context, in *Interaction, act Action, r *Responder) error {
			panic("handler bug")
		}})
		api := mocks.NewMockAPI(gomock.NewController(t))
		in := componentInteraction("ticket:close", memberWith(testStaffRole))

		api.EXPECT().
			CreateInteractionResponse(gomock.Any(), "int-1", "tok-1", gomock.Any()).
			Return(nil)

		require.NotPanics(t, func() {
			rt.Dispatch(ctx, in, NewResponder(api, "app", in))
		})
	})
}

func TestRouter_Modals(t *testing.T) {
	ctx := context.Background()

	t.Run("routes submissions by decoded kind", func(t *testing.T) {
		rt := newTestRouter(t)
		var got Action
		rt.RegisterModal(Modal{Kind: ActionRenameSubmit, Run: func(ctx context.Context, in *Interaction, act Action, r *Responder) error {
			got = act
			return nil
		}})

		in := &Interaction{
			ID:       "int-1",
			Token:    "tok-1",
			Kind:     KindModal,
			CustomID: "modal:rename",
			Member:   memberWith(testStaffRole),
			Fields:   map[string]string{"name": "billing-issue"},
		}
		rt.Dispatch(ctx, in, NewResponder(mocks.NewMockAPI(gomock.NewController(t)), "app", in))
		assert.Equal(t, ActionRenameSubmit, got.Kind)
	})

	t.Run("staff gate applies to submissions too", func(t *testing.T) {
		rt := newTestRouter(t)
		rt.RegisterModal(Modal{Kind: ActionRenameSubmit, StaffOnly: true, Run: func(ctx context.Context, in *Interaction, act Action, r *Responder) error {
			t.Fatal("handler must not run for non-staff")
			return nil
		}})
		api := mocks.NewMockAPI(gomock.NewController(t))
		in := &Interaction{ID: "int-1", Token: "tok-1", Kind: KindModal, CustomID: "modal:rename", Member: memberWith("123")}

		api.EXPECT().
			CreateInteractionResponse(gomock.Any(), "int-1", "tok-1", gomock.Any()).
			Return(nil)

		rt.Dispatch(ctx, in, NewResponder(api, "app", in))
	})
}
