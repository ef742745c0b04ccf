package container

import (
	"context"
	"errors"

	"github.com/NHFNHF/zhuanghe-majiang/common/config"
	"github.com/NHFNHF/zhuanghe-majiang/common/database"
	"github.com/NHFNHF/zhuanghe-majiang/common/log"
)

// BaseContainer 基础容器，管理共享的数据库连接
// 未配置的数据库保持为 nil，对应的下游不启用
type BaseContainer struct {
	mongo *database.MongoManager
	redis *database.RedisManager
}

// NewBase 按配置连接 mongo 与 redis，配置了却连不上视为启动失败
func NewBase(ctx context.Context, conf config.DatabaseConf) (*BaseContainer, error) {
	base := &BaseContainer{}
	if conf.MongoConf.Url != "" {
		mongo, err := database.NewMongo(ctx, conf.MongoConf)
		if err != nil {
			return nil, err
		}
		base.mongo = mongo
		log.Info("mongodb 连接成功, db=%s", conf.MongoConf.Db)
	}
	if conf.RedisConf.Enabled() {
		redis, err := database.NewRedis(ctx, conf.RedisConf)
		if err != nil {
			_ = base.Close()
			return nil, err
		}
		base.redis = redis
		log.Info("redis 连接成功, addr=%s", conf.RedisConf.Address())
	}
	return base, nil
}

func (c *BaseContainer) GetMongo() *database.MongoManager {
	return c.mongo
}

func (c *BaseContainer) GetRedis() *database.RedisManager {
	return c.redis
}

// Close 关闭所有资源
func (c *BaseContainer) Close() error {
	e1 := c.mongo.Close()
	e2 := c.redis.Close()
	if e1 != nil {
		log.Error("mongo 关闭失败: %v", e1)
	}
	if e2 != nil {
		log.Error("redis 关闭失败: %v", e2)
	}
	return errors.Join(e1, e2)
}
