package core

import "fmt"

// PlayerCount 固定四人
const PlayerCount = 4

// NextSeat 下家座位
func NextSeat(seat int) int {
	return (seat + 1) % PlayerCount
}

// SeatDistance 从 from 按出牌顺序走到 to 的步数 (1-3)
func SeatDistance(from, to int) int {
	return ((to-from)%PlayerCount + PlayerCount) % PlayerCount
}

// MeldType 副露类型
type MeldType int8

const (
	MeldChow          MeldType = iota // 吃
	MeldPung                          // 碰
	MeldKongExposed                   // 明杠 (杠别人打出的牌)
	MeldKongConcealed                 // 暗杠
	MeldKongAdded                     // 加杠 (碰后补杠)
)

// String 返回副露类型的字符串表示
func (m MeldType) String() string {
	switch m {
	case MeldChow:
		return "吃"
	case MeldPung:
		return "碰"
	case MeldKongExposed:
		return "明杠"
	case MeldKongConcealed:
		return "暗杠"
	case MeldKongAdded:
		return "加杠"
	default:
		return "未知"
	}
}

// Code 对外编码
func (m MeldType) Code() string {
	switch m {
	case MeldChow:
		return "chow"
	case MeldPung:
		return "pung"
	case MeldKongExposed:
		return "kong_exposed"
	case MeldKongConcealed:
		return "kong_concealed"
	case MeldKongAdded:
		return "kong_added"
	default:
		return "unknown"
	}
}

// MarshalText 序列化为对外编码
func (m MeldType) MarshalText() ([]byte, error) {
	return []byte(m.Code()), nil
}

// UnmarshalText 从对外编码解析，用于读取牌局记录
func (m *MeldType) UnmarshalText(text []byte) error {
	for t := MeldChow; t <= MeldKongAdded; t++ {
		if t.Code() == string(text) {
			*m = t
			return nil
		}
	}
	return fmt.Errorf("unknown meld type %q", text)
}

// IsKong 是否是杠
func (m MeldType) IsKong() bool {
	return m == MeldKongExposed || m == MeldKongConcealed || m == MeldKongAdded
}

// Meld 副露
type Meld struct {
	Type  MeldType `json:"type"`  // 副露类型
	Tiles []Tile   `json:"tiles"` // 3 或 4 张
	Owner int      `json:"owner"` // 所属座位
	From  int      `json:"from"`  // 被吃碰杠的座位，自己组成时为 -1
}

// clone 复制副露
func (m Meld) clone() Meld {
	m.Tiles = CloneTiles(m.Tiles)
	return m
}

// CanPung 手牌中至少有两张 d
func CanPung(hand []Tile, d Tile) bool {
	return CountTile(hand, d) >= 2
}

// CanKong 手牌中至少有三张 d
func CanKong(hand []Tile, d Tile) bool {
	return CountTile(hand, d) >= 3
}

// ChowOptions 可用于吃 d 的手牌组合
// 只有出牌者的下家可以吃，顺序为 {d-2,d-1}、{d-1,d+1}、{d+1,d+2}
func ChowOptions(hand []Tile, d Tile, claimant, discarder int) [][2]Tile {
	if !d.IsNumbered() || claimant != NextSeat(discarder) {
		return nil
	}
	var out [][2]Tile
	for _, deltas := range [][2]int8{{-2, -1}, {-1, 1}, {1, 2}} {
		a, okA := d.Offset(deltas[0])
		b, okB := d.Offset(deltas[1])
		if !okA || !okB {
			continue
		}
		if ContainsTile(hand, a) && ContainsTile(hand, b) {
			out = append(out, [2]Tile{a, b})
		}
	}
	return out
}

// SelfKongKind 自杠类型
type SelfKongKind int8

const (
	SelfKongAnkan SelfKongKind = iota // 暗杠
	SelfKongKakan                     // 加杠
)

// Code 对外编码
func (k SelfKongKind) Code() string {
	if k == SelfKongKakan {
		return "kakan"
	}
	return "ankan"
}

// MarshalText 序列化为对外编码
func (k SelfKongKind) MarshalText() ([]byte, error) {
	return []byte(k.Code()), nil
}

// ParseSelfKongKind 解析自杠类型
func ParseSelfKongKind(s string) (SelfKongKind, bool) {
	switch s {
	case "ankan":
		return SelfKongAnkan, true
	case "kakan":
		return SelfKongKakan, true
	default:
		return 0, false
	}
}

// SelfKongOption 摸牌后可执行的自杠
type SelfKongOption struct {
	Kind SelfKongKind `json:"kind"`
	Tile Tile         `json:"tile"`
}

// SelfKongOptions 摸到 drawn 后可以执行的自杠 (hand 已包含 drawn)
func SelfKongOptions(hand []Tile, melds []Meld, drawn Tile) []SelfKongOption {
	var out []SelfKongOption
	if CountTile(hand, drawn) == CopiesPerKind {
		out = append(out, SelfKongOption{Kind: SelfKongAnkan, Tile: drawn})
	}
	if pungIndex(melds, drawn) >= 0 && ContainsTile(hand, drawn) {
		out = append(out, SelfKongOption{Kind: SelfKongKakan, Tile: drawn})
	}
	return out
}

// pungIndex 牌 t 对应的碰在副露中的位置，没有返回 -1
func pungIndex(melds []Meld, t Tile) int {
	for i, m := range melds {
		if m.Type == MeldPung && len(m.Tiles) > 0 && m.Tiles[0] == t {
			return i
		}
	}
	return -1
}
