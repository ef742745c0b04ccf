package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/NHFNHF/zhuanghe-majiang/common/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Conf 进程级配置，InitConfig 之后可用
var Conf *Config

type Config struct {
	AppName    string       `mapstructure:"appName"`
	HttpPort   int          `mapstructure:"httpPort"`
	MetricPort int          `mapstructure:"metricPort"`
	Log        log.LogConf  `mapstructure:"log"`
	Rules      RulesConf    `mapstructure:"rules"`
	Cache      CacheConf    `mapstructure:"cache"`
	Table      TableConf    `mapstructure:"table"`
	Database   DatabaseConf `mapstructure:"database"`
	Nats       NatsConf     `mapstructure:"nats"`
}

// RulesConf 庄河规则常量，缺省与 mahjong.DefaultRules 一致
type RulesConf struct {
	KongFeeConcealed  int   `mapstructure:"kongFeeConcealed"`
	KongFeeExposed    int   `mapstructure:"kongFeeExposed"`
	TreasureStrikeFan int   `mapstructure:"treasureStrikeFan"`
	AllConcealedFan   int   `mapstructure:"allConcealedFan"`
	FanCap            int   `mapstructure:"fanCap"`
	MoneyTable        []int `mapstructure:"moneyTable"`
}

type CacheConf struct {
	NumCounters int64         `mapstructure:"numCounters"`
	MaxCost     int64         `mapstructure:"maxCost"`
	TTL         time.Duration `mapstructure:"ttl"`
}

type TableConf struct {
	MaxTables     int           `mapstructure:"maxTables"`
	CommandBuffer int           `mapstructure:"commandBuffer"`
	SinkTimeout   time.Duration `mapstructure:"sinkTimeout"`
}

type DatabaseConf struct {
	MongoConf MongoConf `mapstructure:"mongo"`
	RedisConf RedisConf `mapstructure:"redis"`
}

// MongoConf Url 为空时不归档牌局
type MongoConf struct {
	Url         string `mapstructure:"url"`
	Db          string `mapstructure:"db"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	MinPoolSize int    `mapstructure:"minPoolSize"`
	MaxPoolSize int    `mapstructure:"maxPoolSize"`
}

// RedisConf Addr 与 Host 都为空时不记分
type RedisConf struct {
	Addr         string `mapstructure:"addr"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	PoolSize     int    `mapstructure:"poolSize"`
	MinIdleConns int    `mapstructure:"minIdleConns"`
}

func (c RedisConf) Enabled() bool {
	return c.Addr != "" || (c.Host != "" && c.Port > 0)
}

func (c RedisConf) Address() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NatsConf struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

var mu sync.RWMutex

func setDefaults(v *viper.Viper) {
	v.SetDefault("appName", "zhuanghe-table")
	v.SetDefault("httpPort", 8080)
	v.SetDefault("metricPort", 5854)
	v.SetDefault("log.level", "info")
	v.SetDefault("rules.kongFeeConcealed", 10)
	v.SetDefault("rules.kongFeeExposed", 5)
	v.SetDefault("rules.treasureStrikeFan", 3)
	v.SetDefault("rules.allConcealedFan", 5)
	v.SetDefault("rules.fanCap", 5)
	v.SetDefault("rules.moneyTable", []int{0, 5, 5, 10, 20, 40})
	v.SetDefault("cache.numCounters", int64(1_000_000))
	v.SetDefault("cache.maxCost", int64(100_000))
	v.SetDefault("cache.ttl", 30*time.Minute)
	v.SetDefault("table.maxTables", 1024)
	v.SetDefault("table.commandBuffer", 64)
	v.SetDefault("table.sinkTimeout", 5*time.Second)
	v.SetDefault("database.mongo.db", "zhuanghe")
	v.SetDefault("database.mongo.maxPoolSize", 20)
	v.SetDefault("database.redis.poolSize", 10)
	v.SetDefault("nats.subject", "mahjong.round.settled")
}

// Load 读取 yaml 配置，环境变量可覆盖（rules.fanCap -> RULES_FANCAP），文件变化时重新加载
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if cfg.HttpPort <= 0 {
		return nil, fmt.Errorf("httpPort 非法: %d", cfg.HttpPort)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		if err := v.Unmarshal(next); err != nil {
			log.Error("配置热加载失败 %s: %v", e.Name, err)
			return
		}
		mu.Lock()
		*cfg = *next
		mu.Unlock()
		log.Info("配置已重新加载: %s", e.Name)
	})
	v.WatchConfig()
	return cfg, nil
}

// InitConfig 加载失败直接退出
func InitConfig(configFile string) {
	cfg, err := Load(configFile)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}

// Snapshot 热加载期间读取配置的一致副本
func (c *Config) Snapshot() Config {
	mu.RLock()
	defer mu.RUnlock()
	out := *c
	out.Rules.MoneyTable = append([]int(nil), c.Rules.MoneyTable...)
	return out
}
