package core

import (
	"errors"
	"maps"
	"math/rand"
)

// Phase 牌局阶段
type Phase int8

const (
	PhaseWaiting         Phase = iota // 等待开始
	PhaseAwaitingDraw                 // 等待摸牌
	PhaseAwaitingDiscard              // 等待出牌
	PhaseClaimWindow                  // 等待其他玩家认领
	PhaseFinished                     // 已结束
)

// String 返回阶段的字符串表示
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "等待开始"
	case PhaseAwaitingDraw:
		return "等待摸牌"
	case PhaseAwaitingDiscard:
		return "等待出牌"
	case PhaseClaimWindow:
		return "等待认领"
	case PhaseFinished:
		return "已结束"
	default:
		return "未知"
	}
}

// Code 对外编码
func (p Phase) Code() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseAwaitingDraw:
		return "awaiting_draw"
	case PhaseAwaitingDiscard:
		return "awaiting_discard"
	case PhaseClaimWindow:
		return "claim_window"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Options 创建引擎的参数
type Options struct {
	Policy       ClaimPolicy     // 认领裁决策略
	SpecialHands map[string]bool // 番种开关，只透传给结算方
	Rand         *rand.Rand      // 洗牌随机源，为空时使用当前时间
	Wall         *Wall           // 指定牌墙 (测试用)，为空时洗牌生成
}

// HistoryEntry 牌局流水
type HistoryEntry struct {
	Seq    int    `json:"seq"`
	Player string `json:"player"`
	Action string `json:"action"`
	Tiles  []Tile `json:"tiles,omitempty"`
	From   string `json:"from,omitempty"`
}

// Result 牌局结果
type Result struct {
	Winner    string            `json:"winner,omitempty"`
	Discarder string            `json:"discarder,omitempty"` // 点炮者
	WinTile   *Tile             `json:"winTile,omitempty"`
	SelfDrawn bool              `json:"selfDrawn"`
	Exhausted bool              `json:"exhausted"` // 流局
	Hands     map[string][]Tile `json:"hands"`
	Melds     map[string][]Meld `json:"melds"`
}

type seatState struct {
	id       string
	hand     []Tile
	melds    []Meld
	discards []Tile
}

// Engine 单局麻将规则引擎，非并发安全，由 Session 加锁使用
type Engine struct {
	room         string
	policy       ClaimPolicy
	specialHands map[string]bool
	rng          *rand.Rand
	presetWall   *Wall

	seats   []*seatState
	wall    *Wall
	phase   Phase
	current int
	dealer  int

	lastDiscard *Tile
	drawn       *Tile            // 当前玩家刚摸到的牌
	selfKong    []SelfKongOption // 当前玩家可执行的自杠
	window      *claimWindow
	windowSeq   uint64

	result  *Result
	history []HistoryEntry
	events  []Event
	fault   *GameError
}

// NewEngine 创建引擎
func NewEngine(room string, opts Options) *Engine {
	return &Engine{
		room:         room,
		policy:       opts.Policy,
		specialHands: maps.Clone(opts.SpecialHands),
		rng:          opts.Rand,
		presetWall:   opts.Wall,
		phase:        PhaseWaiting,
	}
}

// Room 房间ID
func (e *Engine) Room() string { return e.room }

// Phase 当前阶段
func (e *Engine) Phase() Phase { return e.phase }

// Policy 认领裁决策略
func (e *Engine) Policy() ClaimPolicy { return e.policy }

// SpecialHands 番种开关 (副本)
func (e *Engine) SpecialHands() map[string]bool { return maps.Clone(e.specialHands) }

// Fault 守恒校验失败后的错误，正常时为 nil
func (e *Engine) Fault() error {
	if e.fault == nil {
		return nil
	}
	return e.fault
}

// Players 按座位顺序的玩家
func (e *Engine) Players() []string {
	out := make([]string, len(e.seats))
	for i, s := range e.seats {
		out[i] = s.id
	}
	return out
}

// CurrentPlayer 当前玩家
func (e *Engine) CurrentPlayer() string {
	if len(e.seats) == 0 || e.phase == PhaseWaiting {
		return ""
	}
	return e.seats[e.current].id
}

// WallRemaining 牌墙剩余
func (e *Engine) WallRemaining() int {
	if e.wall == nil {
		return 0
	}
	return e.wall.Remaining()
}

// Result 牌局结果，未结束时为 nil
func (e *Engine) Result() *Result {
	if e.result == nil {
		return nil
	}
	r := *e.result
	return &r
}

// History 牌局流水 (副本)
func (e *Engine) History() []HistoryEntry {
	out := make([]HistoryEntry, len(e.history))
	copy(out, e.history)
	return out
}

// ClaimWindow 当前认领窗口编号，open 表示仍在等待响应
func (e *Engine) ClaimWindow() (number uint64, open bool) {
	if !e.window.polling() {
		return 0, false
	}
	return e.window.number, true
}

// DrainEvents 取出并清空待发送的通知
func (e *Engine) DrainEvents() []Event {
	out := e.events
	e.events = nil
	return out
}

// AddPlayer 加入牌桌，返回座位号
func (e *Engine) AddPlayer(player string) (int, error) {
	if err := e.guard(); err != nil {
		return 0, err
	}
	if e.phase != PhaseWaiting {
		return 0, ErrGameAlreadyStarted
	}
	if _, ok := e.seatOf(player); ok {
		return 0, ErrPlayerExists.WithContext("player", player)
	}
	if len(e.seats) >= PlayerCount {
		return 0, ErrTableFull
	}
	e.seats = append(e.seats, &seatState{id: player})
	return len(e.seats) - 1, nil
}

// Start 洗牌发牌，庄家 (0号位) 摸第14张牌
func (e *Engine) Start() error {
	if err := e.guard(); err != nil {
		return err
	}
	if e.phase != PhaseWaiting {
		return ErrGameAlreadyStarted
	}
	if len(e.seats) < PlayerCount {
		return ErrNotEnoughPlayers.WithContext("players", len(e.seats))
	}

	if e.presetWall != nil {
		e.wall = e.presetWall
	} else {
		e.wall = NewWall(e.rng)
	}
	e.dealer = 0
	e.current = e.dealer
	e.emitAll(EventWallShuffled, WallShuffledPayload{
		WallRemaining: e.wall.Remaining(),
		Dealer:        e.seats[e.dealer].id,
		Players:       e.Players(),
	})

	for _, s := range e.seats {
		for range 13 {
			t, ok := e.wall.DrawFront()
			if !ok {
				return e.verify()
			}
			s.hand = append(s.hand, t)
		}
		SortTiles(s.hand)
	}
	for i, s := range e.seats {
		e.emit(EventTilesDealt, []string{s.id}, TilesDealtPayload{
			Seat:          i,
			Hand:          CloneTiles(s.hand),
			IsDealer:      i == e.dealer,
			WallRemaining: e.wall.Remaining(),
		})
	}

	e.phase = PhaseAwaitingDraw
	e.draw(e.dealer, false)
	return e.verify()
}

// Discard 当前玩家出牌，随后打开认领窗口
func (e *Engine) Discard(player string, tile Tile) error {
	seat, err := e.actor(player, PhaseAwaitingDiscard)
	if err != nil {
		return err
	}
	if seat != e.current {
		return ErrNotYourTurn.WithContext("player", player)
	}
	s := e.seats[seat]
	hand, ok := RemoveTiles(s.hand, tile)
	if !ok {
		return ErrTileNotInHand.WithContext("tile", tile.String())
	}
	s.hand = hand
	SortTiles(s.hand)
	s.discards = append(s.discards, tile)
	t := tile
	e.lastDiscard = &t
	e.drawn = nil
	e.selfKong = nil

	e.record(player, "discard", []Tile{tile}, "")
	e.emitAll(EventActionCommitted, ActionCommittedPayload{
		Player: player,
		Action: "discard",
		Tiles:  []Tile{tile},
	})

	e.openClaimWindow(seat, tile)
	return e.verify()
}

// SubmitClaim 对打出的牌提交 胡/杠/碰/吃/过
func (e *Engine) SubmitClaim(player string, req ClaimRequest) error {
	seat, err := e.actor(player, PhaseClaimWindow)
	if errors.Is(err, ErrInvalidGamePhase) {
		return ErrNoClaimWindow.WithContext("phase", e.phase.Code())
	}
	if err != nil {
		return err
	}
	res, resolved, err := e.window.submit(seat, req, e.policy)
	if err != nil {
		return err
	}
	if req.Action == ClaimPass {
		e.record(player, "pass", nil, "")
	}
	if resolved {
		e.resolveWindow(res)
	}
	return e.verify()
}

// ExpireClaimWindow 认领窗口超时，窗口号不符或已裁决时不做任何事
func (e *Engine) ExpireClaimWindow(number uint64) (bool, error) {
	if err := e.guard(); err != nil {
		return false, err
	}
	if e.phase != PhaseClaimWindow || e.window == nil {
		return false, nil
	}
	res, ok := e.window.expire(number, e.policy)
	if !ok {
		return false, nil
	}
	e.resolveWindow(res)
	return true, e.verify()
}

// DeclareSelfKong 摸牌后暗杠或加杠刚摸到的牌
func (e *Engine) DeclareSelfKong(player string, kind SelfKongKind) error {
	seat, err := e.actor(player, PhaseAwaitingDiscard)
	if err != nil {
		return err
	}
	if seat != e.current {
		return ErrNotYourTurn.WithContext("player", player)
	}
	var opt *SelfKongOption
	for i := range e.selfKong {
		if e.selfKong[i].Kind == kind {
			opt = &e.selfKong[i]
			break
		}
	}
	if opt == nil {
		return ErrCannotKong.WithContext("kind", kind.Code())
	}

	s := e.seats[seat]
	t := opt.Tile
	switch kind {
	case SelfKongAnkan:
		hand, ok := RemoveTiles(s.hand, repeatTile(t, CopiesPerKind)...)
		if !ok {
			return ErrCannotKong.WithContext("tile", t.String())
		}
		s.hand = hand
		s.melds = append(s.melds, Meld{Type: MeldKongConcealed, Tiles: repeatTile(t, CopiesPerKind), Owner: seat, From: -1})
	case SelfKongKakan:
		idx := pungIndex(s.melds, t)
		hand, ok := RemoveTiles(s.hand, t)
		if idx < 0 || !ok {
			return ErrCannotKong.WithContext("tile", t.String())
		}
		s.hand = hand
		s.melds[idx] = Meld{Type: MeldKongAdded, Tiles: repeatTile(t, CopiesPerKind), Owner: seat, From: s.melds[idx].From}
	}
	e.drawn = nil
	e.selfKong = nil

	e.record(player, kind.Code(), repeatTile(t, CopiesPerKind), "")
	e.emitAll(EventActionCommitted, ActionCommittedPayload{
		Player: player,
		Action: kind.Code(),
		Tiles:  repeatTile(t, CopiesPerKind),
	})
	e.draw(seat, true)
	return e.verify()
}

// DeclareSelfDrawnWin 自摸胡
func (e *Engine) DeclareSelfDrawnWin(player string) error {
	seat, err := e.actor(player, PhaseAwaitingDiscard)
	if err != nil {
		return err
	}
	if seat != e.current {
		return ErrNotYourTurn.WithContext("player", player)
	}
	s := e.seats[seat]
	if e.drawn == nil || !IsWinning(s.hand) {
		return ErrCannotWin.WithContext("player", player)
	}
	tile := *e.drawn
	e.record(player, "self_win", []Tile{tile}, "")
	e.emitAll(EventActionCommitted, ActionCommittedPayload{
		Player: player,
		Action: "self_win",
		Tiles:  []Tile{tile},
	})
	e.finish(seat, &tile, -1)
	return e.verify()
}

// guard 守恒失败后拒绝一切修改
func (e *Engine) guard() error {
	if e.fault != nil {
		return e.fault
	}
	return nil
}

// actor 校验玩家和阶段，返回座位号
func (e *Engine) actor(player string, want Phase) (int, error) {
	if err := e.guard(); err != nil {
		return 0, err
	}
	seat, ok := e.seatOf(player)
	if !ok {
		return 0, ErrPlayerNotInGame.WithContext("player", player)
	}
	switch {
	case e.phase == want:
		return seat, nil
	case e.phase == PhaseWaiting:
		return 0, ErrGameNotStarted
	case e.phase == PhaseFinished:
		return 0, ErrGameFinished
	default:
		return 0, ErrInvalidGamePhase.
			WithContext("phase", e.phase.Code()).
			WithContext("want", want.Code())
	}
}

func (e *Engine) seatOf(player string) (int, bool) {
	for i, s := range e.seats {
		if s.id == player {
			return i, true
		}
	}
	return 0, false
}

// draw 为 seat 摸一张牌 (杠后从尾部补牌)，牌墙为空则流局
func (e *Engine) draw(seat int, replacement bool) {
	e.current = seat
	e.phase = PhaseAwaitingDraw
	var (
		t  Tile
		ok bool
	)
	if replacement {
		t, ok = e.wall.DrawReplacement()
	} else {
		t, ok = e.wall.DrawFront()
	}
	if !ok {
		e.finish(-1, nil, -1)
		return
	}

	s := e.seats[seat]
	s.hand = append(s.hand, t)
	e.drawn = &t
	action := "draw"
	if replacement {
		action = "replacement_draw"
	}
	e.record(s.id, action, []Tile{t}, "")

	tile := t
	e.emit(EventTileDrawn, []string{s.id}, TileDrawnPayload{
		Player:        s.id,
		Tile:          &tile,
		Replacement:   replacement,
		WallRemaining: e.wall.Remaining(),
	})
	if others := e.othersOf(seat); len(others) > 0 {
		e.emit(EventTileDrawn, others, TileDrawnPayload{
			Player:        s.id,
			Replacement:   replacement,
			WallRemaining: e.wall.Remaining(),
		})
	}

	e.selfKong = SelfKongOptions(s.hand, s.melds, t)
	if len(e.selfKong) > 0 {
		e.emit(EventSelfKongOffered, []string{s.id}, SelfKongOfferedPayload{
			Player:  s.id,
			Options: append([]SelfKongOption(nil), e.selfKong...),
		})
	}
	e.phase = PhaseAwaitingDiscard
	e.promptDiscard(seat)
}

// promptDiscard 通知当前玩家出牌
func (e *Engine) promptDiscard(seat int) {
	s := e.seats[seat]
	e.emit(EventYourTurnToDiscard, []string{s.id}, YourTurnPayload{
		Player:         s.id,
		CanSelfWin:     e.drawn != nil && IsWinning(s.hand),
		SelfKong:       append([]SelfKongOption(nil), e.selfKong...),
		TenpaiDiscards: TenpaiDiscards(s.hand),
	})
}

// openClaimWindow 计算其他玩家对打出牌的可选动作
func (e *Engine) openClaimWindow(discarder int, tile Tile) {
	offers := make([]ClaimOffer, 0, PlayerCount-1)
	for i := 1; i < PlayerCount; i++ {
		seat := (discarder + i) % PlayerCount
		s := e.seats[seat]
		withTile := append(CloneTiles(s.hand), tile)
		offers = append(offers, ClaimOffer{
			Seat:        seat,
			Player:      s.id,
			Win:         IsWinning(withTile),
			Kong:        CanKong(s.hand, tile),
			Pung:        CanPung(s.hand, tile),
			ChowOptions: ChowOptions(s.hand, tile, seat, discarder),
		})
	}

	e.windowSeq++
	e.window = newClaimWindow(e.windowSeq, discarder, tile, offers)
	if !e.window.polling() {
		e.advance(NextSeat(discarder))
		return
	}

	e.phase = PhaseClaimWindow
	for _, o := range offers {
		if o.Empty() {
			continue
		}
		e.emit(EventClaimOffered, []string{o.Player}, ClaimOfferedPayload{
			Window:    e.window.number,
			Discarder: e.seats[discarder].id,
			Tile:      tile,
			Actions:   o.Actions(),
			Offer:     o,
		})
	}
}

// advance 无人认领，轮到下家摸牌
func (e *Engine) advance(next int) {
	e.emitAll(EventTurnAdvanced, TurnAdvancedPayload{
		Player: e.seats[next].id,
		Seat:   next,
		Phase:  PhaseAwaitingDraw.Code(),
	})
	e.draw(next, false)
}

// resolveWindow 执行裁决结果
func (e *Engine) resolveWindow(res claimResolution) {
	w := e.window
	if !res.committed {
		e.advance(NextSeat(w.discarder))
		return
	}

	claimant := e.seats[res.seat]
	discarder := e.seats[w.discarder]
	tile := w.tile
	if n := len(discarder.discards); n > 0 && discarder.discards[n-1] == tile {
		discarder.discards = discarder.discards[:n-1]
	}
	e.lastDiscard = nil

	var consumed []Tile
	var meld Meld
	switch res.action {
	case ClaimWin:
		claimant.hand = append(claimant.hand, tile)
		e.record(claimant.id, "win", []Tile{tile}, discarder.id)
		e.emitAll(EventActionCommitted, ActionCommittedPayload{
			Player: claimant.id,
			Action: res.action.Code(),
			Tiles:  []Tile{tile},
			From:   discarder.id,
		})
		e.finish(res.seat, &tile, w.discarder)
		return
	case ClaimKong:
		consumed = repeatTile(tile, 3)
		meld = Meld{Type: MeldKongExposed, Tiles: repeatTile(tile, 4)}
	case ClaimPung:
		consumed = repeatTile(tile, 2)
		meld = Meld{Type: MeldPung, Tiles: repeatTile(tile, 3)}
	case ClaimChow:
		consumed = []Tile{res.chow[0], res.chow[1]}
		meld = Meld{Type: MeldChow, Tiles: []Tile{res.chow[0], res.chow[1], tile}}
		SortTiles(meld.Tiles)
	}
	hand, ok := RemoveTiles(claimant.hand, consumed...)
	if !ok {
		// 报价时已校验过，走到这里说明状态被破坏，交给守恒校验
		e.fault = ErrInvariantViolated.WithContext("claim", res.action.Code())
		return
	}
	claimant.hand = hand
	meld.Owner = res.seat
	meld.From = w.discarder
	claimant.melds = append(claimant.melds, meld)

	e.record(claimant.id, res.action.Code(), CloneTiles(meld.Tiles), discarder.id)
	e.emitAll(EventActionCommitted, ActionCommittedPayload{
		Player: claimant.id,
		Action: res.action.Code(),
		Tiles:  CloneTiles(meld.Tiles),
		From:   discarder.id,
	})

	e.current = res.seat
	e.drawn = nil
	e.selfKong = nil
	e.emitAll(EventTurnAdvanced, TurnAdvancedPayload{
		Player: claimant.id,
		Seat:   res.seat,
		Phase:  PhaseAwaitingDiscard.Code(),
	})
	if res.action == ClaimKong {
		e.draw(res.seat, true)
		return
	}
	e.phase = PhaseAwaitingDiscard
	e.promptDiscard(res.seat)
}

// finish 结束牌局，winner 为 -1 表示流局
func (e *Engine) finish(winner int, tile *Tile, discarder int) {
	e.phase = PhaseFinished
	e.drawn = nil
	e.selfKong = nil
	if e.window != nil {
		e.window.state = ArbiterResolved
	}

	r := &Result{
		Exhausted: winner < 0,
		Hands:     make(map[string][]Tile, len(e.seats)),
		Melds:     make(map[string][]Meld, len(e.seats)),
	}
	if winner >= 0 {
		r.Winner = e.seats[winner].id
		r.WinTile = tile
		r.SelfDrawn = discarder < 0
		if discarder >= 0 {
			r.Discarder = e.seats[discarder].id
		}
	}
	for _, s := range e.seats {
		r.Hands[s.id] = CloneTiles(s.hand)
		r.Melds[s.id] = cloneMelds(s.melds)
	}
	e.result = r
	e.emitAll(EventGameFinished, GameFinishedPayload{Result: *r})
}

// verify 校验牌数守恒: 牌墙+手牌+副露+弃牌 恰好为 136 张，每种 4 张
func (e *Engine) verify() error {
	if e.fault != nil {
		return e.fault
	}
	if e.wall == nil {
		return nil
	}
	c := CountsOf(e.wall.tiles)
	for _, s := range e.seats {
		for _, t := range s.hand {
			c[t.Kind()]++
		}
		for _, m := range s.melds {
			for _, t := range m.Tiles {
				c[t.Kind()]++
			}
		}
		for _, t := range s.discards {
			c[t.Kind()]++
		}
	}
	for k, n := range c {
		if n != CopiesPerKind {
			e.fault = ErrInvariantViolated.
				WithContext("tile", Kind(k).Tile().String()).
				WithContext("count", int(n))
			return e.fault
		}
	}
	return nil
}

func (e *Engine) record(player, action string, tiles []Tile, from string) {
	e.history = append(e.history, HistoryEntry{
		Seq:    len(e.history) + 1,
		Player: player,
		Action: action,
		Tiles:  tiles,
		From:   from,
	})
}

func (e *Engine) emit(typ EventType, to []string, payload any) {
	e.events = append(e.events, Event{Type: typ, Room: e.room, To: to, Payload: payload})
}

func (e *Engine) emitAll(typ EventType, payload any) {
	e.emit(typ, e.Players(), payload)
}

func (e *Engine) othersOf(seat int) []string {
	out := make([]string, 0, len(e.seats)-1)
	for i, s := range e.seats {
		if i != seat {
			out = append(out, s.id)
		}
	}
	return out
}
