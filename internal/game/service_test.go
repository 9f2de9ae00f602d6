package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/pkg/proto"
)

func newTestService(t *testing.T) (*GameService, *GameManager, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	m := NewGameManager(ManagerConfig{EvictInterval: time.Hour, EvictTimeout: time.Hour, ClaimTimeout: time.Second},
		newManualScheduler(), notifier, nil)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return NewGameService(m, notifier), m, notifier
}

func request(user, action string) *proto.GameRequest {
	return &proto.GameRequest{UserId: user, RoomId: "room-1", Action: action}
}

func rejectionCodes(events []core.Event) []string {
	var codes []string
	for _, ev := range ofType(events, core.EventActionRejected) {
		codes = append(codes, ev.Payload.(core.RejectedPayload).Code)
	}
	return codes
}

func TestServiceJoinStartAndSnapshot(t *testing.T) {
	svc, m, notifier := newTestService(t)
	ctx := context.Background()

	for _, p := range []string{"p0", "p1", "p2", "p3"} {
		require.NoError(t, svc.Handle(ctx, request(p, ActionJoin)))
	}
	require.NoError(t, svc.Handle(ctx, request("p2", ActionStart)))

	events := notifier.drain()
	assert.Len(t, ofType(events, core.EventTilesDealt), 4)
	turn := ofType(events, core.EventYourTurnToDiscard)
	require.Len(t, turn, 1)
	assert.Equal(t, []string{"p0"}, turn[0].To)

	require.NoError(t, svc.Handle(ctx, request("p1", ActionSnapshot)))
	snaps := ofType(notifier.drain(), core.EventStateSnapshot)
	require.Len(t, snaps, 1)
	snap := snaps[0].Payload.(core.StateSnapshot)
	assert.Len(t, snap.Hand, 13)
	assert.Equal(t, "p0", snap.CurrentPlayer)

	session, ok := m.Get("room-1")
	require.True(t, ok)
	assert.Equal(t, []string{"p0", "p1", "p2", "p3"}, session.Players())
}

func TestServiceDiscardFlow(t *testing.T) {
	svc, m, notifier := newTestService(t)
	ctx := context.Background()

	session := NewSession("room-1", SessionConfig{
		ClaimTimeout: time.Second,
		Engine:       core.Options{Wall: dealtWall(t, pungHands, "z5")},
	}, newManualScheduler(), notifier)
	m.games.Store("room-1", session)

	for _, p := range []string{"p0", "p1", "p2", "p3"} {
		require.NoError(t, svc.Handle(ctx, request(p, ActionJoin)))
	}
	require.NoError(t, svc.Handle(ctx, request("p0", ActionStart)))
	notifier.drain()

	discard := request("p0", ActionDiscard)
	discard.Tile = "s5"
	require.NoError(t, svc.Handle(ctx, discard))
	require.NoError(t, svc.Handle(ctx, request("p2", ActionClaimPung)))

	snap := session.Overview()
	assert.Equal(t, "p2", snap.CurrentPlayer)
	assert.Equal(t, "awaiting_discard", snap.Phase)
}

func TestServiceRejectsBadRequests(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	err := svc.Handle(ctx, &proto.GameRequest{UserId: "p0", Action: ActionJoin})
	assert.ErrorIs(t, err, ErrInvalidAction)

	err = svc.Handle(ctx, request("p0", ActionStart))
	assert.ErrorIs(t, err, ErrGameNotFound)

	require.NoError(t, svc.Handle(ctx, request("p0", ActionJoin)))
	err = svc.Handle(ctx, request("p0", "shout"))
	assert.ErrorIs(t, err, ErrInvalidAction)

	discard := request("p0", ActionDiscard)
	discard.Tile = "x9"
	err = svc.Handle(ctx, discard)
	assert.ErrorIs(t, err, ErrInvalidAction)

	kong := request("p0", ActionSelfKong)
	kong.Kind = "big"
	err = svc.Handle(ctx, kong)
	assert.ErrorIs(t, err, ErrInvalidAction)

	assert.Equal(t, []string{"INVALID_REQUEST", "GAME_NOT_FOUND", "INVALID_REQUEST", "INVALID_REQUEST", "INVALID_REQUEST"},
		rejectionCodes(notifier.drain()))
}

func TestServiceRuleRejectionNotifiedOnce(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Handle(ctx, request("p0", ActionJoin)))
	notifier.drain()

	err := svc.Handle(ctx, request("p0", ActionStart))
	var ge *core.GameError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, []string{"NOT_ENOUGH_PLAYERS"}, rejectionCodes(notifier.drain()))
}
