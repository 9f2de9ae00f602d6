package core

import (
	"encoding/json"
	"fmt"
)

// Suit 牌的花色
type Suit int8

const (
	SuitMan   Suit = iota // 万
	SuitPin               // 筒
	SuitSou               // 条
	SuitHonor             // 字牌 (东南西北白发中)
)

// String 返回花色的字符串表示
func (s Suit) String() string {
	switch s {
	case SuitMan:
		return "万"
	case SuitPin:
		return "筒"
	case SuitSou:
		return "条"
	case SuitHonor:
		return "字"
	default:
		return "未知"
	}
}

// code 花色编码 (m/p/s/z)
func (s Suit) code() byte {
	switch s {
	case SuitMan:
		return 'm'
	case SuitPin:
		return 'p'
	case SuitSou:
		return 's'
	default:
		return 'z'
	}
}

// IsNumbered 是否是数牌
func (s Suit) IsNumbered() bool {
	return s == SuitMan || s == SuitPin || s == SuitSou
}

// 字牌点数
const (
	HonorEast  int8 = iota + 1 // 东
	HonorSouth                 // 南
	HonorWest                  // 西
	HonorNorth                 // 北
	HonorWhite                 // 白
	HonorGreen                 // 发
	HonorRed                   // 中
)

const (
	// KindCount 牌种数量 (27 数牌 + 7 字牌)
	KindCount = 34
	// CopiesPerKind 每种牌的张数
	CopiesPerKind = 4
	// WallSize 总牌数
	WallSize = KindCount * CopiesPerKind
)

// Tile 麻将牌
type Tile struct {
	Suit Suit // 花色
	Rank int8 // 点数 (数牌1-9, 字牌1-7)
}

// Kind 牌种序号 (0-33)，按 万、筒、条、字 排列
type Kind uint8

// Kind 返回牌种序号
func (t Tile) Kind() Kind {
	return Kind(int(t.Suit)*9 + int(t.Rank) - 1)
}

// Tile 返回牌种对应的牌
func (k Kind) Tile() Tile {
	return Tile{Suit: Suit(k / 9), Rank: int8(k%9) + 1}
}

// Valid 牌是否合法
func (t Tile) Valid() bool {
	switch {
	case t.Suit.IsNumbered():
		return t.Rank >= 1 && t.Rank <= 9
	case t.Suit == SuitHonor:
		return t.Rank >= 1 && t.Rank <= 7
	default:
		return false
	}
}

// IsNumbered 是否是数牌
func (t Tile) IsNumbered() bool {
	return t.Suit.IsNumbered()
}

// Offset 同花色偏移 delta 点的牌，越界或字牌返回 false
func (t Tile) Offset(delta int8) (Tile, bool) {
	if !t.IsNumbered() {
		return Tile{}, false
	}
	r := t.Rank + delta
	if r < 1 || r > 9 {
		return Tile{}, false
	}
	return Tile{Suit: t.Suit, Rank: r}, true
}

// String 返回牌的编码 (m1..m9, p1..p9, s1..s9, z1..z7)
func (t Tile) String() string {
	return string([]byte{t.Suit.code(), byte('0' + t.Rank)})
}

// ParseTile 解析牌的编码
func ParseTile(s string) (Tile, error) {
	if len(s) != 2 {
		return Tile{}, ErrInvalidTile.WithContext("tile", s)
	}
	var suit Suit
	switch s[0] {
	case 'm':
		suit = SuitMan
	case 'p':
		suit = SuitPin
	case 's':
		suit = SuitSou
	case 'z':
		suit = SuitHonor
	default:
		return Tile{}, ErrInvalidTile.WithContext("tile", s)
	}
	t := Tile{Suit: suit, Rank: int8(s[1] - '0')}
	if !t.Valid() {
		return Tile{}, ErrInvalidTile.WithContext("tile", s)
	}
	return t, nil
}

// MustParseTiles 解析空格分隔的牌编码，非法时 panic (用于测试与预设)
func MustParseTiles(codes ...string) []Tile {
	tiles := make([]Tile, 0, len(codes))
	for _, c := range codes {
		t, err := ParseTile(c)
		if err != nil {
			panic(fmt.Sprintf("invalid tile %q", c))
		}
		tiles = append(tiles, t)
	}
	return tiles
}

// MarshalJSON 序列化为编码字符串
func (t Tile) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON 从编码字符串反序列化
func (t *Tile) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTile(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Counts 牌种计数表，值语义，递归分支之间互不影响
type Counts [KindCount]uint8

// CountsOf 统计一组牌
func CountsOf(tiles []Tile) Counts {
	var c Counts
	for _, t := range tiles {
		c[t.Kind()]++
	}
	return c
}

// Total 总张数
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += int(v)
	}
	return n
}

// first 第一个非零牌种，全空返回 false
func (c *Counts) first() (Kind, bool) {
	for k, v := range c {
		if v > 0 {
			return Kind(k), true
		}
	}
	return 0, false
}

// canRun 能否以 k 为起点组成顺子
func (c *Counts) canRun(k Kind) bool {
	t := k.Tile()
	if !t.IsNumbered() || t.Rank > 7 {
		return false
	}
	return c[k] > 0 && c[k+1] > 0 && c[k+2] > 0
}
