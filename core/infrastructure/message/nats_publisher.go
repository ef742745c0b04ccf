package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/NHFNHF/zhuanghe-majiang/core/domain/entity"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
	"github.com/nats-io/nats.go"
)

const DefaultSubject = "mahjong.round.settled"

var ErrNotConnected = errors.New("nats not connected")

// RoundSettled 广播给其他服务的结算摘要
type RoundSettled struct {
	TableID     string                 `json:"tableId"`
	RoundNumber int                    `json:"roundNumber"`
	Dealer      int                    `json:"dealer"`
	Result      *mahjong.RoundResult   `json:"result"`
	Delta       [mahjong.SeatCount]int `json:"delta"`
	Totals      [mahjong.SeatCount]int `json:"totals"`
}

func encodeSettled(record *entity.RoundRecord) ([]byte, error) {
	return json.Marshal(RoundSettled{
		TableID:     record.TableID,
		RoundNumber: record.RoundNumber,
		Dealer:      record.Dealer,
		Result:      record.Result,
		Delta:       record.Delta,
		Totals:      record.Totals,
	})
}

// NatsPublisher 不能及时发现 nats 服务关闭，发送前检查连接
type NatsPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNatsPublisher(url, subject string) (*NatsPublisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	log.Info("nats 正在连接, url:%s", url)
	conn, err := nats.Connect(url, nats.Name("zhuanghe-table"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("nats 连接错误: %w", err)
	}
	log.Info("nats 连接成功, subject:%s", subject)
	return &NatsPublisher{conn: conn, subject: subject}, nil
}

func (p *NatsPublisher) Publish(ctx context.Context, record *entity.RoundRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.conn == nil || !p.conn.IsConnected() {
		return ErrNotConnected
	}
	data, err := encodeSettled(record)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, data)
}

func (p *NatsPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
	log.Info("NATS 连接已关闭")
}
