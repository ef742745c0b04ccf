package database

import (
	"context"
	"fmt"
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/common/config"
	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/redis/go-redis/v9"
)

type RedisManager struct {
	Cli *redis.Client
}

func NewRedis(ctx context.Context, conf config.RedisConf) (*RedisManager, error) {
	if !conf.Enabled() {
		return nil, fmt.Errorf("redis 配置出错: 缺少地址")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cli := redis.NewClient(&redis.Options{
		Addr:         conf.Address(),
		Password:     conf.Password, // 为空时 Redis 忽略
		PoolSize:     conf.PoolSize,
		MinIdleConns: conf.MinIdleConns,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis 连接错误: %w", err)
	}
	return &RedisManager{Cli: cli}, nil
}

// GetClient 供仓储层使用，只暴露命令接口
func (r *RedisManager) GetClient() (redis.Cmdable, error) {
	if r == nil || r.Cli == nil {
		return nil, fmt.Errorf("redis 客户端未初始化")
	}
	return r.Cli, nil
}

func (r *RedisManager) Close() error {
	if r == nil || r.Cli == nil {
		return nil
	}
	if err := r.Cli.Close(); err != nil {
		log.Error("redis 关闭出错: %v", err)
		return err
	}
	return nil
}
