package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func tiles(s string) []Tile {
	return MustParseTiles(strings.Fields(s)...)
}

func tile(s string) Tile {
	return MustParseTiles(s)[0]
}

// stackWall 构造确定顺序的牌墙，见 NewDealtWall
func stackWall(t *testing.T, hands [PlayerCount]string, front, back string) *Wall {
	t.Helper()
	var dealt [PlayerCount][]Tile
	for i, h := range hands {
		dealt[i] = tiles(h)
	}
	w, err := NewDealtWall(dealt, tiles(front), tiles(back))
	require.NoError(t, err)
	require.Equal(t, WallSize, w.Remaining())
	return w
}

// newTable 四人入座并开局
func newTable(t *testing.T, opts Options) *Engine {
	t.Helper()
	e := NewEngine("room-1", opts)
	for _, p := range []string{"p0", "p1", "p2", "p3"} {
		_, err := e.AddPlayer(p)
		require.NoError(t, err)
	}
	require.NoError(t, e.Start())
	return e
}

func eventsOf(events []Event, typ EventType) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func totalTiles(e *Engine) int {
	n := e.wall.Remaining()
	for _, s := range e.seats {
		n += len(s.hand) + len(s.discards)
		for _, m := range s.melds {
			n += len(m.Tiles)
		}
	}
	return n
}
