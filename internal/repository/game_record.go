package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"sudooom.im.mahjong/internal/game"
	"sudooom.im.mahjong/internal/game/mahjong/core"
	"sudooom.im.mahjong/pkg/snowflake"
)

// ErrRecordNotFound 记录不存在
var ErrRecordNotFound = errors.New("game record not found")

// Schema 牌局记录表
const Schema = `
CREATE TABLE IF NOT EXISTS mahjong_game_records (
	id            BIGINT PRIMARY KEY,
	room_id       VARCHAR(64) NOT NULL,
	players       JSONB NOT NULL,
	winner        VARCHAR(64) NOT NULL DEFAULT '',
	discarder     VARCHAR(64) NOT NULL DEFAULT '',
	self_drawn    BOOLEAN NOT NULL DEFAULT FALSE,
	exhausted     BOOLEAN NOT NULL DEFAULT FALSE,
	result        JSONB NOT NULL,
	history       JSONB NOT NULL,
	special_hands JSONB NOT NULL DEFAULT '{}',
	policy        VARCHAR(16) NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mahjong_game_records_room ON mahjong_game_records (room_id, finished_at DESC);
`

// GameRecord 已保存的牌局
type GameRecord struct {
	Id           int64               `json:"id,string"`
	RoomId       string              `json:"roomId"`
	Players      []string            `json:"players"`
	Result       core.Result         `json:"result"`
	History      []core.HistoryEntry `json:"history"`
	SpecialHands map[string]bool     `json:"specialHands"`
	Policy       string              `json:"policy"`
	StartedAt    time.Time           `json:"startedAt"`
	FinishedAt   time.Time           `json:"finishedAt"`
}

// GameRecordRepository 牌局记录仓库，实现 game.RecordStore
type GameRecordRepository struct {
	db *pgxpool.Pool
	sf *snowflake.Node
}

// NewGameRecordRepository 创建牌局记录仓库
func NewGameRecordRepository(db *pgxpool.Pool, sf *snowflake.Node) *GameRecordRepository {
	return &GameRecordRepository{db: db, sf: sf}
}

// EnsureSchema 建表
func (r *GameRecordRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, Schema)
	return err
}

// SaveRecord 保存结束的牌局
func (r *GameRecordRepository) SaveRecord(ctx context.Context, rec *game.Record) error {
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return err
	}
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return err
	}
	history, err := json.Marshal(rec.History)
	if err != nil {
		return err
	}
	hands, err := json.Marshal(rec.SpecialHands)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO mahjong_game_records
			(id, room_id, players, winner, discarder, self_drawn, exhausted, result, history, special_hands, policy, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.Exec(ctx, query,
		r.sf.Generate().Int64(),
		rec.RoomID,
		players,
		rec.Result.Winner,
		rec.Result.Discarder,
		rec.Result.SelfDrawn,
		rec.Result.Exhausted,
		result,
		history,
		hands,
		rec.Policy,
		rec.StartedAt,
		rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert game record %s: %w", rec.RoomID, err)
	}
	return nil
}

const selectColumns = `id, room_id, players, result, history, special_hands, policy, started_at, finished_at`

// FindByID 根据 ID 查找
func (r *GameRecordRepository) FindByID(ctx context.Context, id int64) (*GameRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM mahjong_game_records WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return rec, err
}

// ListByRoom 房间最近的牌局，按结束时间倒序
func (r *GameRecordRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]*GameRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+selectColumns+` FROM mahjong_game_records WHERE room_id = $1 ORDER BY finished_at DESC LIMIT $2`,
		roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*GameRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (*GameRecord, error) {
	var (
		rec                                   GameRecord
		players, result, history, specialHand []byte
	)
	err := row.Scan(
		&rec.Id,
		&rec.RoomId,
		&players,
		&result,
		&history,
		&specialHand,
		&rec.Policy,
		&rec.StartedAt,
		&rec.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(players, &rec.Players); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(result, &rec.Result); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(history, &rec.History); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(specialHand, &rec.SpecialHands); err != nil {
		return nil, err
	}
	return &rec, nil
}
