package core

// OpponentView 其他玩家的公开信息
type OpponentView struct {
	Player   string `json:"player"`
	Seat     int    `json:"seat"`
	HandSize int    `json:"handSize"`
	Melds    []Meld `json:"melds"`
	Discards []Tile `json:"discards"`
	IsDealer bool   `json:"isDealer"`
}

// StateSnapshot 某个玩家视角的牌局状态
type StateSnapshot struct {
	Room          string           `json:"roomId"`
	Phase         string           `json:"phase"`
	Player        string           `json:"player,omitempty"`
	Seat          int              `json:"seat"`
	IsDealer      bool             `json:"isDealer"`
	CurrentPlayer string           `json:"currentPlayer"`
	WallRemaining int              `json:"wallRemaining"`
	LastDiscard   *Tile            `json:"lastDiscard,omitempty"`
	Hand          []Tile           `json:"hand,omitempty"`
	Melds         []Meld           `json:"melds,omitempty"`
	Discards      []Tile           `json:"discards,omitempty"`
	Shanten       int              `json:"shanten"`
	Tenpai        bool             `json:"tenpai"`
	WinningTiles  []Tile           `json:"winningTiles,omitempty"`
	ClaimOffer    *ClaimOffer      `json:"claimOffer,omitempty"`
	SelfKong      []SelfKongOption `json:"selfKong,omitempty"`
	Others        []OpponentView   `json:"others"`
	SpecialHands  map[string]bool  `json:"specialHands,omitempty"`
	Result        *Result          `json:"result,omitempty"`
}

// Snapshot 玩家视角的状态: 自己的手牌、副露、弃牌，其他人的副露、弃牌、手牌数
func (e *Engine) Snapshot(player string) (StateSnapshot, error) {
	seat, ok := e.seatOf(player)
	if !ok {
		return StateSnapshot{}, ErrPlayerNotInGame.WithContext("player", player)
	}
	return e.snapshotFor(seat), nil
}

// SpectatorSnapshot 旁观视角，不包含任何人的手牌
func (e *Engine) SpectatorSnapshot() StateSnapshot {
	return e.snapshotFor(-1)
}

func (e *Engine) snapshotFor(seat int) StateSnapshot {
	snap := StateSnapshot{
		Room:          e.room,
		Phase:         e.phase.Code(),
		Seat:          seat,
		CurrentPlayer: e.CurrentPlayer(),
		WallRemaining: e.WallRemaining(),
		SpecialHands:  e.SpecialHands(),
		Result:        e.Result(),
	}
	if e.lastDiscard != nil {
		t := *e.lastDiscard
		snap.LastDiscard = &t
	}

	for i, s := range e.seats {
		isDealer := e.phase != PhaseWaiting && i == e.dealer
		if i != seat {
			snap.Others = append(snap.Others, OpponentView{
				Player:   s.id,
				Seat:     i,
				HandSize: len(s.hand),
				Melds:    cloneMelds(s.melds),
				Discards: CloneTiles(s.discards),
				IsDealer: isDealer,
			})
			continue
		}
		snap.Player = s.id
		snap.IsDealer = isDealer
		snap.Hand = CloneTiles(s.hand)
		snap.Melds = cloneMelds(s.melds)
		snap.Discards = CloneTiles(s.discards)
		snap.Shanten = Shanten(s.hand)
		if len(s.hand)%3 == 1 {
			snap.Tenpai = IsTenpai(s.hand)
			snap.WinningTiles = WinningTiles(s.hand)
		}
		if e.window.polling() {
			if o, ok := e.window.offers[i]; ok && e.window.pending[i] {
				offer := o
				snap.ClaimOffer = &offer
			}
		}
		if i == e.current && e.phase == PhaseAwaitingDiscard {
			snap.SelfKong = append([]SelfKongOption(nil), e.selfKong...)
		}
	}
	return snap
}

func cloneMelds(melds []Meld) []Meld {
	out := make([]Meld, len(melds))
	for i, m := range melds {
		out[i] = m.clone()
	}
	return out
}
