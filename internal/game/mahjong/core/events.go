package core

// EventType 对外通知类型
type EventType string

const (
	EventWallShuffled      EventType = "wall_shuffled"
	EventTilesDealt        EventType = "tiles_dealt"
	EventYourTurnToDiscard EventType = "your_turn_to_discard"
	EventTileDrawn         EventType = "tile_drawn"
	EventClaimOffered      EventType = "claim_offered"
	EventSelfKongOffered   EventType = "self_kong_offered"
	EventActionCommitted   EventType = "action_committed"
	EventTurnAdvanced      EventType = "turn_advanced"
	EventGameFinished      EventType = "game_finished"
	EventStateSnapshot     EventType = "state_snapshot"
	EventActionRejected    EventType = "action_rejected"
)

// Event 引擎产生的通知，To 为明确的接收者列表
type Event struct {
	Type    EventType `json:"event"`
	Room    string    `json:"roomId"`
	To      []string  `json:"to"`
	Payload any       `json:"data"`
}

// WallShuffledPayload 洗牌完成
type WallShuffledPayload struct {
	WallRemaining int      `json:"wallRemaining"`
	Dealer        string   `json:"dealer"`
	Players       []string `json:"players"`
}

// TilesDealtPayload 发牌 (只发给本人)
type TilesDealtPayload struct {
	Seat          int    `json:"seat"`
	Hand          []Tile `json:"hand"`
	IsDealer      bool   `json:"isDealer"`
	WallRemaining int    `json:"wallRemaining"`
}

// TileDrawnPayload 摸牌，Tile 只对摸牌者可见
type TileDrawnPayload struct {
	Player        string `json:"player"`
	Tile          *Tile  `json:"tile,omitempty"`
	Replacement   bool   `json:"replacement"`
	WallRemaining int    `json:"wallRemaining"`
}

// YourTurnPayload 轮到出牌
type YourTurnPayload struct {
	Player         string           `json:"player"`
	CanSelfWin     bool             `json:"canSelfWin"`
	SelfKong       []SelfKongOption `json:"selfKong,omitempty"`
	TenpaiDiscards []Tile           `json:"tenpaiDiscards,omitempty"`
}

// ClaimOfferedPayload 可认领的牌
type ClaimOfferedPayload struct {
	Window    uint64        `json:"window"`
	Discarder string        `json:"discarder"`
	Tile      Tile          `json:"tile"`
	Actions   []ClaimAction `json:"actions"`
	Offer     ClaimOffer    `json:"offer"`
}

// SelfKongOfferedPayload 摸牌后可自杠
type SelfKongOfferedPayload struct {
	Player  string           `json:"player"`
	Options []SelfKongOption `json:"options"`
}

// ActionCommittedPayload 已生效的动作 (出牌、吃碰杠胡)
type ActionCommittedPayload struct {
	Player string `json:"player"`
	Action string `json:"action"`
	Tiles  []Tile `json:"tiles"`
	From   string `json:"from,omitempty"`
}

// TurnAdvancedPayload 轮转
type TurnAdvancedPayload struct {
	Player string `json:"player"`
	Seat   int    `json:"seat"`
	Phase  string `json:"phase"`
}

// GameFinishedPayload 牌局结束
type GameFinishedPayload struct {
	Result Result `json:"result"`
}

// RejectedPayload 请求被拒绝 (只发给请求者)
type RejectedPayload struct {
	Action  string `json:"action"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
