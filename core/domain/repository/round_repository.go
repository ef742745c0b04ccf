package repository

import (
	"context"
	"errors"

	"github.com/NHFNHF/zhuanghe-majiang/core/domain/entity"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
)

var (
	ErrRoundRecordNotFound = errors.New("round record not found")
	ErrStorage             = errors.New("storage failure")
)

// RoundArchive 牌局归档
type RoundArchive interface {
	SaveRoundRecord(ctx context.Context, record *entity.RoundRecord) error
	// FindRoundRecords 按局数升序
	FindRoundRecords(ctx context.Context, tableID string) ([]*entity.RoundRecord, error)
}

// ScoreBoard 每桌每座位的累计输赢
type ScoreBoard interface {
	Apply(ctx context.Context, tableID string, delta [mahjong.SeatCount]int) error
	Totals(ctx context.Context, tableID string) ([mahjong.SeatCount]int, error)
}

// ResultPublisher 结算事件广播
type ResultPublisher interface {
	Publish(ctx context.Context, record *entity.RoundRecord) error
}
