package game

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"sudooom.im.mahjong/internal/game/mahjong/core"
)

func tiles(s string) []core.Tile {
	return core.MustParseTiles(strings.Fields(s)...)
}

func tile(s string) core.Tile {
	return tiles(s)[0]
}

// 庄家 p0 打出 s5 时只有 p2 能碰；p1 换成 s4 s6 后还能吃
var pungHands = [core.PlayerCount]string{
	"m1 m1 m4 m7 p2 p5 p8 s1 s5 z1 z2 z3 z4",
	"m2 m2 m5 m8 p3 p6 p9 s2 s8 z1 z2 z3 z4",
	"m3 m6 m9 p1 p4 p7 s4 s5 s5 s6 z6 z6 z7",
	"m3 m6 m9 p1 p4 p7 s7 s9 z5 z6 z7 z7 s1",
}

func dealtWall(t *testing.T, hands [core.PlayerCount]string, front string) *core.Wall {
	t.Helper()
	var dealt [core.PlayerCount][]core.Tile
	for i, h := range hands {
		dealt[i] = tiles(h)
	}
	w, err := core.NewDealtWall(dealt, tiles(front), nil)
	require.NoError(t, err)
	return w
}

// manualScheduler 手动触发的超时任务
type manualScheduler struct {
	mu     sync.Mutex
	seq    int
	tasks  map[string]func(ctx context.Context)
	active map[string]bool
	delays []time.Duration
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{
		tasks:  make(map[string]func(ctx context.Context)),
		active: make(map[string]bool),
	}
}

func (s *manualScheduler) Schedule(_ string, delay time.Duration, fn func(ctx context.Context)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("task-%d", s.seq)
	s.tasks[id] = fn
	s.active[id] = true
	s.delays = append(s.delays, delay)
	return id, nil
}

func (s *manualScheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active[id] {
		return false
	}
	delete(s.active, id)
	return true
}

// pending 未取消的任务
func (s *manualScheduler) pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id := range s.active {
		ids = append(ids, id)
	}
	return ids
}

// run 执行任务，即使已被取消 (模拟取消前已经开始执行)
func (s *manualScheduler) run(id string) {
	s.mu.Lock()
	fn := s.tasks[id]
	delete(s.active, id)
	s.mu.Unlock()
	fn(context.Background())
}

// recordingNotifier 记录所有事件
type recordingNotifier struct {
	mu     sync.Mutex
	events []core.Event
}

func (n *recordingNotifier) Notify(events []core.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events...)
}

func (n *recordingNotifier) drain() []core.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.events
	n.events = nil
	return out
}

func ofType(events []core.Event, typ core.EventType) []core.Event {
	var out []core.Event
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// newStartedSession 四人入座并开局
func newStartedSession(t *testing.T, cfg SessionConfig) (*Session, *manualScheduler, *recordingNotifier) {
	t.Helper()
	sched := newManualScheduler()
	notifier := &recordingNotifier{}
	if cfg.ClaimTimeout == 0 {
		cfg.ClaimTimeout = 5 * time.Second
	}
	s := NewSession("room-1", cfg, sched, notifier)
	for i, p := range []string{"p0", "p1", "p2", "p3"} {
		seat, err := s.Join(p)
		require.NoError(t, err)
		require.Equal(t, i, seat)
	}
	require.NoError(t, s.Start("p0"))
	notifier.drain()
	return s, sched, notifier
}
