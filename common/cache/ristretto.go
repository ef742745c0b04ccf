package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// GeneralCache 进程内缓存，支持 TTL，并发安全
type GeneralCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

type Options struct {
	NumCounters int64         // 频率计数器个数，约为期望条目数的 10 倍
	MaxCost     int64         // 最大成本，每个条目成本按 1 计
	TTL         time.Duration // 默认过期时间，0 表示不过期
}

func DefaultOptions() Options {
	return Options{
		NumCounters: 1e6,
		MaxCost:     1e5,
		TTL:         30 * time.Minute,
	}
}

// NewGeneralCache 创建通用缓存
func NewGeneralCache(opts Options) (*GeneralCache, error) {
	if opts.NumCounters <= 0 || opts.MaxCost <= 0 {
		return nil, fmt.Errorf("缓存参数非法: numCounters=%d maxCost=%d", opts.NumCounters, opts.MaxCost)
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: opts.NumCounters,
		MaxCost:     opts.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 ristretto 缓存失败: %w", err)
	}

	return &GeneralCache{
		cache: cache,
		ttl:   opts.TTL,
	}, nil
}

// Set 使用默认 TTL 写入，写入是异步的，紧接着的 Get 可能未命中
func (c *GeneralCache) Set(key string, value interface{}) bool {
	return c.cache.SetWithTTL(key, value, 1, c.ttl)
}

func (c *GeneralCache) Get(key string) (interface{}, bool) {
	return c.cache.Get(key)
}

// Wait 等待缓冲区中的写入生效
func (c *GeneralCache) Wait() {
	c.cache.Wait()
}

func (c *GeneralCache) Delete(key string) {
	c.cache.Del(key)
}

func (c *GeneralCache) Close() {
	c.cache.Close()
}
