package entity

import (
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoundRecord 一局一个文档：动作流、终局手牌与结算
type RoundRecord struct {
	ID          primitive.ObjectID          `bson:"_id" json:"id"`
	TableID     string                      `bson:"table_id" json:"tableId"`
	RoundNumber int                         `bson:"round_number" json:"roundNumber"`
	Dealer      int                         `bson:"dealer" json:"dealer"`
	Events      []RoundEvent                `bson:"events" json:"events"`
	Hands       [mahjong.SeatCount][]string `bson:"hands" json:"hands"` // 终局手牌，牌码
	Result      *mahjong.RoundResult        `bson:"result" json:"result"`
	Delta       [mahjong.SeatCount]int      `bson:"delta" json:"delta"`   // 本局输赢
	Totals      [mahjong.SeatCount]int      `bson:"totals" json:"totals"` // 本桌累计
	StartTime   time.Time                   `bson:"start_time" json:"startTime"`
	EndTime     time.Time                   `bson:"end_time" json:"endTime"`
	Duration    int                         `bson:"duration" json:"duration"` // 秒
	CreatedAt   time.Time                   `bson:"created_at" json:"createdAt"`
}

// RoundEvent 被接受的动作，只存事件不存快照
type RoundEvent struct {
	Sequence  int            `bson:"sequence" json:"sequence"`
	Seat      int            `bson:"seat" json:"seat"`
	Action    mahjong.Action `bson:"action" json:"action"`
	Tile      string         `bson:"tile,omitempty" json:"tile,omitempty"`
	Kind      string         `bson:"kind,omitempty" json:"kind,omitempty"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
}

func NewRoundRecord(tableID string, roundNumber, dealer int) *RoundRecord {
	now := time.Now()
	return &RoundRecord{
		ID:          primitive.NewObjectID(),
		TableID:     tableID,
		RoundNumber: roundNumber,
		Dealer:      dealer,
		Events:      make([]RoundEvent, 0, 128),
		StartTime:   now,
		CreatedAt:   now,
	}
}

func (rr *RoundRecord) AddEvent(seat int, cmd mahjong.Command) {
	rr.Events = append(rr.Events, RoundEvent{
		Sequence:  len(rr.Events),
		Seat:      seat,
		Action:    cmd.Action,
		Tile:      cmd.Tile,
		Kind:      cmd.Kind,
		Timestamp: time.Now(),
	})
}

// CompleteRound 写入结算；totals 为计入本局后的累计
func (rr *RoundRecord) CompleteRound(result *mahjong.RoundResult, hands [mahjong.SeatCount][]mahjong.Tile, totals [mahjong.SeatCount]int) {
	rr.EndTime = time.Now()
	rr.Duration = int(rr.EndTime.Sub(rr.StartTime).Seconds())
	rr.Result = result
	if result != nil {
		rr.Delta = result.Balances()
	}
	rr.Totals = totals
	for seat, hand := range hands {
		codes := make([]string, len(hand))
		for i, t := range hand {
			codes[i] = t.String()
		}
		rr.Hands[seat] = codes
	}
}
