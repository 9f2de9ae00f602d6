package core

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateDeck 生成牌堆 (136张: 万筒条各36张, 字牌28张)
func GenerateDeck() []Tile {
	tiles := make([]Tile, 0, WallSize)
	for k := Kind(0); k < KindCount; k++ {
		for i := 0; i < CopiesPerKind; i++ {
			tiles = append(tiles, k.Tile())
		}
	}
	return tiles
}

// Wall 牌墙，正常摸牌从头部，杠后补牌从尾部
type Wall struct {
	tiles []Tile
}

// NewWall 生成并洗好一副牌
func NewWall(rng *rand.Rand) *Wall {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	tiles := GenerateDeck()
	Shuffle(tiles, rng)
	return &Wall{tiles: tiles}
}

// NewStackedWall 按给定顺序构造牌墙 (不洗牌)
func NewStackedWall(tiles []Tile) *Wall {
	return &Wall{tiles: CloneTiles(tiles)}
}

// NewDealtWall 按发牌顺序构造牌墙: 四家各 13 张手牌，随后 front 为正常摸牌顺序，
// back 为杠后补牌顺序 (back[0] 最先补到)，其余牌按牌种顺序填在中间
func NewDealtWall(hands [PlayerCount][]Tile, front, back []Tile) (*Wall, error) {
	order, err := dealtOrder(hands, front, back)
	if err != nil {
		return nil, ErrInvalidWall.WithCause(err)
	}
	return &Wall{tiles: order}, nil
}

func dealtOrder(hands [PlayerCount][]Tile, front, back []Tile) ([]Tile, error) {
	remaining := CountsOf(GenerateDeck())
	take := func(ts []Tile) error {
		for _, t := range ts {
			if !t.Valid() {
				return fmt.Errorf("%w: %v", ErrInvalidTile, t)
			}
			if remaining[t.Kind()] == 0 {
				return fmt.Errorf("too many copies of %s", t)
			}
			remaining[t.Kind()]--
		}
		return nil
	}

	order := make([]Tile, 0, WallSize)
	for seat, hand := range hands {
		if len(hand) != 13 {
			return nil, fmt.Errorf("seat %d: hand has %d tiles, want 13", seat, len(hand))
		}
		if err := take(hand); err != nil {
			return nil, err
		}
		order = append(order, hand...)
	}
	if err := take(front); err != nil {
		return nil, err
	}
	if err := take(back); err != nil {
		return nil, err
	}
	order = append(order, front...)
	for k := Kind(0); k < KindCount; k++ {
		for range remaining[k] {
			order = append(order, k.Tile())
		}
	}
	for i := len(back) - 1; i >= 0; i-- {
		order = append(order, back[i])
	}
	return order, nil
}

// DrawFront 从头部摸一张牌，牌墙为空返回 false
func (w *Wall) DrawFront() (Tile, bool) {
	if len(w.tiles) == 0 {
		return Tile{}, false
	}
	t := w.tiles[0]
	w.tiles = w.tiles[1:]
	return t, true
}

// DrawReplacement 从尾部补一张牌，牌墙为空返回 false
func (w *Wall) DrawReplacement() (Tile, bool) {
	n := len(w.tiles)
	if n == 0 {
		return Tile{}, false
	}
	t := w.tiles[n-1]
	w.tiles = w.tiles[:n-1]
	return t, true
}

// Remaining 剩余张数
func (w *Wall) Remaining() int {
	return len(w.tiles)
}

// Tiles 剩余牌 (副本)
func (w *Wall) Tiles() []Tile {
	return CloneTiles(w.tiles)
}
