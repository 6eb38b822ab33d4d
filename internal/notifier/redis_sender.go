package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

// DefaultChannelPrefix is prepended to the alert category to form the pub/sub channel.
const DefaultChannelPrefix = "fleet:alerts:"

const defaultPublishTimeout = 2 * time.Second

// Publisher is the subset of *redis.Client the sender needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSender publishes notifications as JSON to a per-category Redis channel,
// e.g. fleet:alerts:compliance. Delivery workers subscribe there.
type RedisSender struct {
	client      Publisher
	logger      *zap.Logger
	prefix      string
	minPriority types.Priority
	timeout     time.Duration
}

// RedisSenderConfig holds the configuration for creating a RedisSender.
type RedisSenderConfig struct {
	ChannelPrefix string
	MinPriority   string
}

// NewRedisSender creates a RedisSender over an existing client.
func NewRedisSender(client Publisher, logger *zap.Logger, cfg RedisSenderConfig) *RedisSender {
	prefix := cfg.ChannelPrefix
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisSender{
		client:      client,
		logger:      logger.Named("redis-sender"),
		prefix:      prefix,
		minPriority: ParsePriority(cfg.MinPriority, types.PriorityLow),
		timeout:     defaultPublishTimeout,
	}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Name implements Sender.
func (rs *RedisSender) Name() string { return "redis" }

// ShouldSend implements Sender.
func (rs *RedisSender) ShouldSend(priority types.Priority) bool {
	return priority.Rank() >= rs.minPriority.Rank()
}

// Start implements Sender. Publishing is synchronous, so there is nothing to start.
func (rs *RedisSender) Start(_ context.Context) {
	rs.logger.Info("Redis sender started", zap.String("prefix", rs.prefix))
}

// Channel returns the pub/sub channel for a category.
func (rs *RedisSender) Channel(c types.Category) string {
	return rs.prefix + string(c)
}

// Send implements Sender.
func (rs *RedisSender) Send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, rs.timeout)
	defer cancel()

	channel := rs.Channel(n.Alert.Category)
	if err := rs.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	rs.logger.Debug("Published notification", zap.String("channel", channel), zap.String("alert", n.Alert.ID))
	return nil
}
