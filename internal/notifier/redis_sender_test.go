package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

type publishCall struct {
	channel string
	payload []byte
}

// fakePublisher records PUBLISH calls without a Redis server.
type fakePublisher struct {
	calls []publishCall
	err   error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "publish", channel, message)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.calls = append(f.calls, publishCall{channel: channel, payload: message.([]byte)})
	cmd.SetVal(1)
	return cmd
}

func TestRedisSender_PublishesPerCategory(t *testing.T) {
	pub := &fakePublisher{}
	rs := NewRedisSender(pub, zap.NewNop(), RedisSenderConfig{})
	assert.Equal(t, "redis", rs.Name())

	require.NoError(t, rs.Send(context.Background(), testNotification()))

	maint := testNotification()
	maint.Alert.Category = types.CategoryMaintenance
	require.NoError(t, rs.Send(context.Background(), maint))

	require.Len(t, pub.calls, 2)
	assert.Equal(t, "fleet:alerts:compliance", pub.calls[0].channel)
	assert.Equal(t, "fleet:alerts:maintenance", pub.calls[1].channel)

	var decoded Notification
	require.NoError(t, json.Unmarshal(pub.calls[0].payload, &decoded))
	assert.Equal(t, "alert-001", decoded.Alert.ID)
	assert.Len(t, decoded.Channels, 3)
}

func TestRedisSender_CustomPrefixAndPriority(t *testing.T) {
	rs := NewRedisSender(&fakePublisher{}, zap.NewNop(), RedisSenderConfig{
		ChannelPrefix: "ops:",
		MinPriority:   "high",
	})
	assert.Equal(t, "ops:general", rs.Channel(types.CategoryGeneral))
	assert.True(t, rs.ShouldSend(types.PriorityCritical))
	assert.False(t, rs.ShouldSend(types.PriorityMedium))
}

func TestRedisSender_PublishError(t *testing.T) {
	rs := NewRedisSender(&fakePublisher{err: errors.New("connection refused")}, zap.NewNop(), RedisSenderConfig{})
	err := rs.Send(context.Background(), testNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fleet:alerts:compliance")
	assert.Contains(t, err.Error(), "connection refused")
}
