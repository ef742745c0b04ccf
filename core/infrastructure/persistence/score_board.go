package persistence

import (
	"context"
	"fmt"
	"strconv"

	"github.com/NHFNHF/zhuanghe-majiang/core/domain/repository"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
	"github.com/redis/go-redis/v9"
)

// RedisScoreBoard 每桌一个 hash，field 为座位号
type RedisScoreBoard struct {
	cli redis.Cmdable
}

func NewRedisScoreBoard(cli redis.Cmdable) *RedisScoreBoard {
	return &RedisScoreBoard{cli: cli}
}

func balanceKey(tableID string) string {
	return fmt.Sprintf("table:%s:balance", tableID)
}

// Apply 一次 pipeline 提交四个座位的增量
func (b *RedisScoreBoard) Apply(ctx context.Context, tableID string, delta [mahjong.SeatCount]int) error {
	key := balanceKey(tableID)
	_, err := b.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for seat, d := range delta {
			pipe.HIncrBy(ctx, key, strconv.Itoa(seat), int64(d))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}
	return nil
}

func (b *RedisScoreBoard) Totals(ctx context.Context, tableID string) ([mahjong.SeatCount]int, error) {
	var out [mahjong.SeatCount]int
	fields, err := b.cli.HGetAll(ctx, balanceKey(tableID)).Result()
	if err != nil {
		return out, fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}
	return parseTotals(fields), nil
}

func parseTotals(fields map[string]string) [mahjong.SeatCount]int {
	var out [mahjong.SeatCount]int
	for k, v := range fields {
		seat, err := strconv.Atoi(k)
		if err != nil || seat < 0 || seat >= mahjong.SeatCount {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		out[seat] = n
	}
	return out
}
