package core

// 向听数估算
//
// 从最小牌种开始回溯: 做刻子、做顺子、做对子、或者丢弃一张。
// 在所有路径上分别取面子数和对子数的最大值 (两者不联合优化)，
// 向听数 = max(0, 8 - 2*面子 - 对子)。
// 搭子 (两张差一张成面子) 不计分，含大量搭子的手牌会被高估，这是已知行为。

type shantenSearch struct {
	memo map[Counts]shantenBest
}

type shantenBest struct {
	groups int
	pairs  int
}

// Shanten 计算手牌的向听数
func Shanten(tiles []Tile) int {
	return ShantenCounts(CountsOf(tiles))
}

// ShantenCounts 同 Shanten，输入为计数表
func ShantenCounts(c Counts) int {
	s := &shantenSearch{memo: make(map[Counts]shantenBest)}
	best := s.search(c)
	v := 8 - 2*best.groups - best.pairs
	if v < 0 {
		return 0
	}
	return v
}

// search 返回从状态 c 出发能额外得到的最大面子数和最大对子数
func (s *shantenSearch) search(c Counts) shantenBest {
	if b, ok := s.memo[c]; ok {
		return b
	}
	k, ok := c.first()
	if !ok {
		return shantenBest{}
	}

	var best shantenBest
	take := func(next Counts, groups, pairs int) {
		sub := s.search(next)
		best.groups = max(best.groups, sub.groups+groups)
		best.pairs = max(best.pairs, sub.pairs+pairs)
	}

	if c[k] >= 3 {
		next := c
		next[k] -= 3
		take(next, 1, 0)
	}
	if c.canRun(k) {
		next := c
		next[k]--
		next[k+1]--
		next[k+2]--
		take(next, 1, 0)
	}
	if c[k] >= 2 {
		next := c
		next[k] -= 2
		take(next, 0, 1)
	}
	next := c
	next[k]--
	take(next, 0, 0)

	s.memo[c] = best
	return best
}

// IsTenpai 13 张手牌是否听牌: 存在某张牌加入后向听数为 0
func IsTenpai(tiles []Tile) bool {
	c := CountsOf(tiles)
	for k := Kind(0); k < KindCount; k++ {
		if c[k] >= CopiesPerKind {
			continue
		}
		next := c
		next[k]++
		if ShantenCounts(next) == 0 {
			return true
		}
	}
	return false
}

// TenpaiDiscards 14 张手牌中，打出后剩余 13 张向听数为 0 的牌 (去重，按牌种顺序)
func TenpaiDiscards(tiles []Tile) []Tile {
	c := CountsOf(tiles)
	var out []Tile
	for k := Kind(0); k < KindCount; k++ {
		if c[k] == 0 {
			continue
		}
		next := c
		next[k]--
		if ShantenCounts(next) == 0 {
			out = append(out, k.Tile())
		}
	}
	return out
}
