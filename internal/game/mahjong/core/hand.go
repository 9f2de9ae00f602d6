package core

import (
	"math/rand"
	"slices"
)

// CloneTiles 复制牌切片
func CloneTiles(tiles []Tile) []Tile {
	if tiles == nil {
		return nil
	}
	out := make([]Tile, len(tiles))
	copy(out, tiles)
	return out
}

// SortTiles 按牌种排序 (原地)
func SortTiles(tiles []Tile) {
	slices.SortFunc(tiles, func(a, b Tile) int {
		return int(a.Kind()) - int(b.Kind())
	})
}

// Shuffle 均匀洗牌 (原地)
func Shuffle(tiles []Tile, rng *rand.Rand) {
	rng.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
}

// CountTile 手牌中某张牌的数量
func CountTile(hand []Tile, t Tile) int {
	n := 0
	for _, h := range hand {
		if h == t {
			n++
		}
	}
	return n
}

// ContainsTile 手牌中是否有某张牌
func ContainsTile(hand []Tile, t Tile) bool {
	return slices.Contains(hand, t)
}

// RemoveTiles 从手牌中移除给定的牌，任意一张不足时返回 false 且不修改原切片
func RemoveTiles(hand []Tile, remove ...Tile) ([]Tile, bool) {
	out := CloneTiles(hand)
	for _, t := range remove {
		idx := slices.Index(out, t)
		if idx < 0 {
			return hand, false
		}
		out = slices.Delete(out, idx, idx+1)
	}
	return out, true
}

// repeatTile n 张相同的牌
func repeatTile(t Tile, n int) []Tile {
	out := make([]Tile, n)
	for i := range out {
		out[i] = t
	}
	return out
}
