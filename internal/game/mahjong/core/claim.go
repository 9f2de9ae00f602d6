package core

import "fmt"

// ClaimAction 其他玩家对打出的牌可以执行的动作
type ClaimAction int8

const (
	ClaimPass ClaimAction = iota // 过
	ClaimChow                    // 吃
	ClaimPung                    // 碰
	ClaimKong                    // 杠
	ClaimWin                     // 胡
)

// String 返回动作的字符串表示
func (a ClaimAction) String() string {
	switch a {
	case ClaimPass:
		return "过"
	case ClaimChow:
		return "吃"
	case ClaimPung:
		return "碰"
	case ClaimKong:
		return "杠"
	case ClaimWin:
		return "胡"
	default:
		return "未知"
	}
}

// Code 对外编码
func (a ClaimAction) Code() string {
	switch a {
	case ClaimPass:
		return "pass"
	case ClaimChow:
		return "chow"
	case ClaimPung:
		return "pung"
	case ClaimKong:
		return "kong"
	case ClaimWin:
		return "win"
	default:
		return "unknown"
	}
}

// MarshalText 序列化为对外编码
func (a ClaimAction) MarshalText() ([]byte, error) {
	return []byte(a.Code()), nil
}

// ParseClaimAction 解析动作编码
func ParseClaimAction(s string) (ClaimAction, error) {
	switch s {
	case "pass":
		return ClaimPass, nil
	case "chow":
		return ClaimChow, nil
	case "pung":
		return ClaimPung, nil
	case "kong":
		return ClaimKong, nil
	case "win":
		return ClaimWin, nil
	default:
		return 0, ErrUnknownAction.WithContext("action", s)
	}
}

// ClaimOffer 某个玩家对当前打出的牌的可选动作
type ClaimOffer struct {
	Seat        int       `json:"seat"`
	Player      string    `json:"player"`
	Win         bool      `json:"win"`
	Kong        bool      `json:"kong"`
	Pung        bool      `json:"pung"`
	ChowOptions [][2]Tile `json:"chowOptions,omitempty"`
}

// Chow 是否可以吃
func (o ClaimOffer) Chow() bool {
	return len(o.ChowOptions) > 0
}

// Empty 没有任何可选动作
func (o ClaimOffer) Empty() bool {
	return !o.Win && !o.Kong && !o.Pung && !o.Chow()
}

// Allows 动作是否在可选范围内 (过 总是允许)
func (o ClaimOffer) Allows(a ClaimAction) bool {
	switch a {
	case ClaimPass:
		return true
	case ClaimWin:
		return o.Win
	case ClaimKong:
		return o.Kong
	case ClaimPung:
		return o.Pung
	case ClaimChow:
		return o.Chow()
	default:
		return false
	}
}

// Actions 可选动作列表 (按优先级从高到低)
func (o ClaimOffer) Actions() []ClaimAction {
	var out []ClaimAction
	for _, a := range []ClaimAction{ClaimWin, ClaimKong, ClaimPung, ClaimChow} {
		if o.Allows(a) {
			out = append(out, a)
		}
	}
	return out
}

// best 可选的最高优先级动作
func (o ClaimOffer) best() ClaimAction {
	if acts := o.Actions(); len(acts) > 0 {
		return acts[0]
	}
	return ClaimPass
}

// chowPair 校验吃牌组合，未指定时取第一种
func (o ClaimOffer) chowPair(tiles []Tile) ([2]Tile, error) {
	if len(tiles) == 0 {
		return o.ChowOptions[0], nil
	}
	if len(tiles) != 2 {
		return [2]Tile{}, ErrInvalidChow.WithContext("tiles", tiles)
	}
	for _, opt := range o.ChowOptions {
		if (opt[0] == tiles[0] && opt[1] == tiles[1]) || (opt[0] == tiles[1] && opt[1] == tiles[0]) {
			return opt, nil
		}
	}
	return [2]Tile{}, ErrInvalidChow.WithContext("tiles", tiles)
}

// ClaimRequest 玩家提交的认领请求
type ClaimRequest struct {
	Action ClaimAction
	Tiles  []Tile // 吃牌时指定手牌中的两张，可为空
}

// ClaimPolicy 认领裁决策略
type ClaimPolicy int8

const (
	// ClaimPolicyFirstValid 第一个合法请求立即生效
	ClaimPolicyFirstValid ClaimPolicy = iota
	// ClaimPolicyPriority 收集请求后按 胡>杠>碰>吃 裁决，同级按距出牌者的座位顺序
	ClaimPolicyPriority
)

// ParseClaimPolicy 解析配置中的策略名
func ParseClaimPolicy(s string) (ClaimPolicy, error) {
	switch s {
	case "", "first_valid":
		return ClaimPolicyFirstValid, nil
	case "priority":
		return ClaimPolicyPriority, nil
	default:
		return 0, fmt.Errorf("unknown claim policy %q", s)
	}
}

// String 返回策略名
func (p ClaimPolicy) String() string {
	if p == ClaimPolicyPriority {
		return "priority"
	}
	return "first_valid"
}

// ArbiterState 认领窗口状态
type ArbiterState int8

const (
	ArbiterIdle     ArbiterState = iota // 未开始
	ArbiterPolling                      // 等待玩家响应
	ArbiterResolved                     // 已裁决
)

// claimResolution 裁决结果，committed 为 false 时按正常顺序轮转
type claimResolution struct {
	committed bool
	seat      int
	action    ClaimAction
	chow      [2]Tile
}

type claimResponse struct {
	seat   int
	action ClaimAction
	chow   [2]Tile
}

// claimWindow 一张打出的牌对应的认领窗口
type claimWindow struct {
	number    uint64
	discarder int
	tile      Tile
	offers    map[int]ClaimOffer
	pending   map[int]bool
	responses []claimResponse
	state     ArbiterState
}

// newClaimWindow 打开认领窗口，没有任何可选动作时直接进入已裁决状态
func newClaimWindow(number uint64, discarder int, tile Tile, offers []ClaimOffer) *claimWindow {
	w := &claimWindow{
		number:    number,
		discarder: discarder,
		tile:      tile,
		offers:    make(map[int]ClaimOffer),
		pending:   make(map[int]bool),
		state:     ArbiterIdle,
	}
	for _, o := range offers {
		if o.Empty() {
			continue
		}
		w.offers[o.Seat] = o
		w.pending[o.Seat] = true
	}
	if len(w.pending) == 0 {
		w.state = ArbiterResolved
	} else {
		w.state = ArbiterPolling
	}
	return w
}

// polling 是否在等待响应
func (w *claimWindow) polling() bool {
	return w != nil && w.state == ArbiterPolling
}

// submit 处理一个玩家的请求，返回是否已裁决
func (w *claimWindow) submit(seat int, req ClaimRequest, policy ClaimPolicy) (claimResolution, bool, error) {
	if !w.polling() {
		return claimResolution{}, false, ErrNoClaimWindow
	}
	offer, ok := w.offers[seat]
	if !ok || !w.pending[seat] {
		return claimResolution{}, false, ErrActionNotOffered.WithContext("seat", seat)
	}
	if !offer.Allows(req.Action) {
		return claimResolution{}, false, ErrActionNotOffered.
			WithContext("seat", seat).
			WithContext("action", req.Action.Code())
	}

	resp := claimResponse{seat: seat, action: req.Action}
	if req.Action == ClaimChow {
		pair, err := offer.chowPair(req.Tiles)
		if err != nil {
			return claimResolution{}, false, err
		}
		resp.chow = pair
	}
	delete(w.pending, seat)

	if policy == ClaimPolicyFirstValid {
		if req.Action != ClaimPass {
			return w.resolve(&resp), true, nil
		}
		if len(w.pending) == 0 {
			return w.resolve(nil), true, nil
		}
		return claimResolution{}, false, nil
	}

	if req.Action != ClaimPass {
		w.responses = append(w.responses, resp)
	}
	best := w.bestResponse()
	if best != nil && !w.outrankable(*best) {
		return w.resolve(best), true, nil
	}
	if len(w.pending) == 0 {
		return w.resolve(best), true, nil
	}
	return claimResolution{}, false, nil
}

// expire 超时裁决，窗口号不符或已裁决时返回 false
func (w *claimWindow) expire(number uint64, policy ClaimPolicy) (claimResolution, bool) {
	if !w.polling() || w.number != number {
		return claimResolution{}, false
	}
	if policy == ClaimPolicyPriority {
		return w.resolve(w.bestResponse()), true
	}
	return w.resolve(nil), true
}

func (w *claimWindow) resolve(resp *claimResponse) claimResolution {
	w.state = ArbiterResolved
	w.pending = map[int]bool{}
	if resp == nil {
		return claimResolution{}
	}
	return claimResolution{committed: true, seat: resp.seat, action: resp.action, chow: resp.chow}
}

// beats a 是否优先于 b
func (w *claimWindow) beats(aAction ClaimAction, aSeat int, bAction ClaimAction, bSeat int) bool {
	if aAction != bAction {
		return aAction > bAction
	}
	return SeatDistance(w.discarder, aSeat) < SeatDistance(w.discarder, bSeat)
}

func (w *claimWindow) bestResponse() *claimResponse {
	var best *claimResponse
	for i := range w.responses {
		r := &w.responses[i]
		if best == nil || w.beats(r.action, r.seat, best.action, best.seat) {
			best = r
		}
	}
	return best
}

// outrankable 仍在等待的玩家是否可能给出更高优先级的请求
func (w *claimWindow) outrankable(r claimResponse) bool {
	for seat := range w.pending {
		if w.beats(w.offers[seat].best(), seat, r.action, r.seat) {
			return true
		}
	}
	return false
}
