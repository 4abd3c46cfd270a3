package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/Hozymaister/Workshift-sub001/config"
)

// ErrUnavailable Redis 不可用（熔断打开或调用失败），调用方应降级放行
var ErrUnavailable = errors.New("Redis 暂不可用")

// Client Redis 客户端封装
// 仅保存限流计数；所有调用经过熔断器，Redis 故障时快速失败
type Client struct {
	rdb    *goredis.Client
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return New(rdb, logger), nil
}

// New 基于已有连接构造客户端（不做健康检查）
func New(rdb *goredis.Client, logger *zap.Logger) *Client {
	settings := gobreaker.Settings{
		Name:        "redis",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Redis 熔断器状态变化",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &Client{
		rdb:    rdb,
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: logger,
	}
}

// ── 滑动窗口限流 ──

const rateLimitPrefix = "rate_limit:"

// CheckRateLimit 判断 key 在 window 内的请求数是否未超过 limit
// 使用有序集合记录每次请求的时间戳，窗口外的记录在每次调用时清理
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		now := time.Now()
		fullKey := rateLimitPrefix + key
		minScore := strconv.FormatInt(now.Add(-window).UnixMicro(), 10)

		var card *goredis.IntCmd
		_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.ZRemRangeByScore(ctx, fullKey, "0", minScore)
			pipe.ZAdd(ctx, fullKey, goredis.Z{
				Score:  float64(now.UnixMicro()),
				Member: uuid.NewString(),
			})
			card = pipe.ZCard(ctx, fullKey)
			pipe.PExpire(ctx, fullKey, window)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return card.Val(), nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return res.(int64) <= int64(limit), nil
}

// BreakerState 熔断器当前状态
func (c *Client) BreakerState() gobreaker.State {
	return c.cb.State()
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
