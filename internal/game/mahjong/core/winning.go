package core

// IsWinning 判断手牌能否完整拆分为 N 组面子 + 1 对将
// 手牌张数必须满足 3N+2，已有副露计入面子数
func IsWinning(tiles []Tile) bool {
	if len(tiles)%3 != 2 {
		return false
	}
	return IsWinningCounts(CountsOf(tiles))
}

// IsWinningCounts 同 IsWinning，输入为计数表
func IsWinningCounts(c Counts) bool {
	if c.Total()%3 != 2 {
		return false
	}
	for k := Kind(0); k < KindCount; k++ {
		if c[k] < 2 {
			continue
		}
		rest := c
		rest[k] -= 2
		if decomposeSets(rest) {
			return true
		}
	}
	return false
}

// decomposeSets 剩余牌能否全部拆成刻子或顺子
// 每一步只处理最小的牌种: 它要么做刻子，要么做顺子起点，否则该分支失败
func decomposeSets(c Counts) bool {
	k, ok := c.first()
	if !ok {
		return true
	}
	if c[k] >= 3 {
		next := c
		next[k] -= 3
		if decomposeSets(next) {
			return true
		}
	}
	if c.canRun(k) {
		next := c
		next[k]--
		next[k+1]--
		next[k+2]--
		if decomposeSets(next) {
			return true
		}
	}
	return false
}

// WinningTiles 听牌列表: 加入后能胡的牌 (按牌种顺序)
// 手牌中已有 4 张的牌种不计入
func WinningTiles(concealed []Tile) []Tile {
	if len(concealed)%3 != 1 {
		return nil
	}
	c := CountsOf(concealed)
	var out []Tile
	for k := Kind(0); k < KindCount; k++ {
		if c[k] >= CopiesPerKind {
			continue
		}
		next := c
		next[k]++
		if IsWinningCounts(next) {
			out = append(out, k.Tile())
		}
	}
	return out
}
