package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"sudooom.im.mahjong/pkg/proto"
)

type stubService struct {
	calls       []*proto.GameRequest
	hadDeadline bool
	err         error
}

func (s *stubService) Handle(ctx context.Context, req *proto.GameRequest) error {
	s.calls = append(s.calls, req)
	_, s.hadDeadline = ctx.Deadline()
	return s.err
}

func TestHandleGameRequest(t *testing.T) {
	svc := &stubService{}
	h := NewGameHandler(svc)

	req := &proto.GameRequest{UserId: "alice", RoomId: "r1", Action: "join"}
	h.HandleGameRequest(context.Background(), req, "access-1")

	assert.Equal(t, []*proto.GameRequest{req}, svc.calls)
	assert.True(t, svc.hadDeadline)
}

func TestHandleGameRequestSwallowsErrors(t *testing.T) {
	svc := &stubService{err: errors.New("not your turn")}
	h := NewGameHandler(svc)

	assert.NotPanics(t, func() {
		h.HandleGameRequest(context.Background(), &proto.GameRequest{UserId: "bob", RoomId: "r1", Action: "discard"}, "access-1")
	})
	assert.Len(t, svc.calls, 1)
}
