package proto

import "encoding/json"

// NATS Subject 常量
const (
	// SubjectMahjongUpstream Access -> Mahjong 上行请求
	SubjectMahjongUpstream = "im.mahjong.upstream"

	// QueueGroupMahjong 牌局服务队列组
	QueueGroupMahjong = "mahjong-group"

	// 下行完整格式: im.access.{node_id}.downstream
	SubjectAccessDownstreamPrefix = "im.access."
	SubjectAccessDownstreamSuffix = ".downstream"
)

// BuildAccessDownstreamSubject 构建 Access 节点下行 Subject
func BuildAccessDownstreamSubject(nodeID string) string {
	return SubjectAccessDownstreamPrefix + nodeID + SubjectAccessDownstreamSuffix
}

// UpstreamMessage Access -> Mahjong
type UpstreamMessage struct {
	AccessNodeId string          `json:"accessNodeId"`
	ConnId       int64           `json:"connId"`
	Platform     string          `json:"platform"`
	Payload      UpstreamPayload `json:"payload"`
}

// UpstreamPayload 上行消息体，目前只有牌局请求
type UpstreamPayload struct {
	GameRequest *GameRequest `json:"gameRequest,omitempty"`
}

// GameRequest 玩家的牌局请求
type GameRequest struct {
	ReqId        string          `json:"reqId,omitempty"`
	UserId       string          `json:"userId"`
	RoomId       string          `json:"roomId"`
	Action       string          `json:"action"`
	Tile         string          `json:"tile,omitempty"`         // discard
	Tiles        []string        `json:"tiles,omitempty"`        // claim_chow 指定的两张手牌
	Kind         string          `json:"kind,omitempty"`         // self_kong: ankan / kakan
	SpecialHands map[string]bool `json:"specialHands,omitempty"` // join: 建房时的番种开关
}

// DownstreamMessage Mahjong -> Access
type DownstreamMessage struct {
	UserId   string            `json:"userId"`
	ConnId   int64             `json:"connId"`
	Platform string            `json:"platform"`
	Payload  DownstreamPayload `json:"payload"`
}

// DownstreamPayload 下行消息体
type DownstreamPayload struct {
	GamePush *GamePush `json:"gamePush,omitempty"`
}

// GamePush 推送给玩家的牌局事件
type GamePush struct {
	RoomId   string          `json:"roomId"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data,omitempty"`
	ToUserId string          `json:"toUserId"`
	ReqId    string          `json:"reqId,omitempty"`
}
