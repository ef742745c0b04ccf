package container

import (
	"context"
	"sync"
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/common/cache"
	"github.com/NHFNHF/zhuanghe-majiang/common/config"
	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/NHFNHF/zhuanghe-majiang/core/domain/repository"
	"github.com/NHFNHF/zhuanghe-majiang/core/infrastructure/message"
	"github.com/NHFNHF/zhuanghe-majiang/core/infrastructure/persistence"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/conn"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game"
	"github.com/NHFNHF/zhuanghe-majiang/runtime/game/engines/mahjong"
)

const monitorInterval = 5 * time.Second

// TableContainer 牌桌服务容器
// 在 BaseContainer 之上装配听牌缓存、结算下游、牌桌管理、websocket 与监控
type TableContainer struct {
	*BaseContainer
	Cache     *cache.GeneralCache
	Analyzer  *mahjong.Analyzer
	Archive   repository.RoundArchive
	Board     repository.ScoreBoard
	publisher *message.NatsPublisher
	Tables    *game.TableManager
	Hub       *conn.Hub
	Monitor   *game.Monitor

	closed bool
	mu     sync.Mutex
}

// RulesFromConf 配置转规则，空的钱数表沿用缺省
func RulesFromConf(conf config.RulesConf) mahjong.Rules {
	rules := mahjong.Rules{
		KongFeeConcealed:  conf.KongFeeConcealed,
		KongFeeExposed:    conf.KongFeeExposed,
		TreasureStrikeFan: conf.TreasureStrikeFan,
		AllConcealedFan:   conf.AllConcealedFan,
		FanCap:            conf.FanCap,
		MoneyTable:        append([]int(nil), conf.MoneyTable...),
	}
	if len(rules.MoneyTable) == 0 {
		rules.MoneyTable = mahjong.DefaultRules().MoneyTable
	}
	return rules
}

// NewTableContainer 创建牌桌服务容器
func NewTableContainer(ctx context.Context, cfg config.Config) (*TableContainer, error) {
	base, err := NewBase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	c := &TableContainer{BaseContainer: base}

	c.Cache, err = cache.NewGeneralCache(cache.Options{
		NumCounters: cfg.Cache.NumCounters,
		MaxCost:     cfg.Cache.MaxCost,
		TTL:         cfg.Cache.TTL,
	})
	if err != nil {
		_ = base.Close()
		return nil, err
	}
	c.Analyzer = mahjong.NewAnalyzer(c.Cache)

	if mongo := base.GetMongo(); mongo != nil {
		archive := persistence.NewMongoRoundArchive(mongo)
		if err := archive.EnsureIndexes(ctx); err != nil {
			log.Warn("创建 round_records 索引失败: %v", err)
		}
		c.Archive = archive
	}
	if redis := base.GetRedis(); redis != nil {
		cli, err := redis.GetClient()
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Board = persistence.NewRedisScoreBoard(cli)
	}
	if cfg.Nats.URL != "" {
		c.publisher, err = message.NewNatsPublisher(cfg.Nats.URL, cfg.Nats.Subject)
		if err != nil {
			c.Close()
			return nil, err
		}
	}

	opts := []game.TableOption{
		game.WithRules(RulesFromConf(cfg.Rules)),
		game.WithAnalyzer(c.Analyzer),
		game.WithSinkTimeout(cfg.Table.SinkTimeout),
		game.WithCommandBuffer(cfg.Table.CommandBuffer),
	}
	if sink := c.sink(); sink != nil {
		opts = append(opts, game.WithSink(sink))
	}
	c.Tables = game.NewTableManager(cfg.Table.MaxTables, opts...)
	c.Hub = conn.NewHub(c.Tables)
	c.Monitor = game.NewMonitor(c.Tables, c.Hub, monitorInterval)

	log.Info("TableContainer 初始化完成: archive=%t, board=%t, publisher=%t",
		c.Archive != nil, c.Board != nil, c.publisher != nil)
	return c, nil
}

// sink 只把已配置的下游放进 MultiSink，全部缺失时返回 nil
func (c *TableContainer) sink() game.RoundSink {
	var publisher repository.ResultPublisher
	if c.publisher != nil {
		publisher = c.publisher
	}
	multi := persistence.NewMultiSink(c.Archive, c.Board, publisher)
	if multi.Empty() {
		return nil
	}
	return multi
}

// Close 关闭容器资源（幂等操作，可以安全地多次调用）
// 关闭顺序：监控、连接、牌桌（等待结算下游）、nats、缓存、数据库
func (c *TableContainer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.Monitor != nil {
		c.Monitor.Stop()
	}
	if c.Hub != nil {
		c.Hub.Close()
	}
	if c.Tables != nil {
		c.Tables.Close()
	}
	if c.publisher != nil {
		c.publisher.Close()
	}
	if c.Cache != nil {
		c.Cache.Close()
	}
	return c.BaseContainer.Close()
}
