package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/testutil"
	"github.com/sonaligoyal925/FlePort/internal/types"
)

// recordingSender captures hand-offs in memory.
type recordingSender struct {
	name        string
	minPriority types.Priority
	err         error

	mu      sync.Mutex
	sent    []Notification
	started bool
}

func (r *recordingSender) Name() string { return r.name }

func (r *recordingSender) ShouldSend(p types.Priority) bool {
	return p.Rank() >= r.minPriority.Rank()
}

func (r *recordingSender) Start(context.Context) {
	r.mu.Lock()
	r.started = true
	r.mu.Unlock()
}

func (r *recordingSender) Send(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingSender) notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

func TestEligibleChannels(t *testing.T) {
	all := types.DefaultSettings()
	all.EarningsMilestones = true

	tests := []struct {
		name     string
		category types.Category
		settings func(types.Settings) types.Settings
		want     []types.Channel
	}{
		{"compliance gets sms", types.CategoryCompliance, nil,
			[]types.Channel{types.ChannelEmail, types.ChannelSMS, types.ChannelPush}},
		{"maintenance", types.CategoryMaintenance, nil,
			[]types.Channel{types.ChannelEmail, types.ChannelPush}},
		{"performance", types.CategoryPerformance, nil,
			[]types.Channel{types.ChannelEmail, types.ChannelPush}},
		{"achievement", types.CategoryAchievement, nil,
			[]types.Channel{types.ChannelEmail, types.ChannelPush}},
		{"general", types.CategoryGeneral, nil,
			[]types.Channel{types.ChannelEmail, types.ChannelPush}},
		{"category disabled", types.CategoryCompliance,
			func(s types.Settings) types.Settings { s.DocumentExpiry = false; return s }, nil},
		{"sms off", types.CategoryCompliance,
			func(s types.Settings) types.Settings { s.SMSNotifications = false; return s },
			[]types.Channel{types.ChannelEmail, types.ChannelPush}},
		{"only sms on but not applicable", types.CategoryMaintenance,
			func(s types.Settings) types.Settings {
				s.EmailNotifications, s.PushNotifications = false, false
				return s
			}, nil},
		{"unknown category", types.Category("weather"), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := all
			if tt.settings != nil {
				s = tt.settings(s)
			}
			got := EligibleChannels(types.Alert{Category: tt.category}, s)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEligibleChannels_SubsetOfEnabled(t *testing.T) {
	// Every combination of the three channel toggles.
	for mask := 0; mask < 8; mask++ {
		s := types.DefaultSettings()
		s.EmailNotifications = mask&1 != 0
		s.SMSNotifications = mask&2 != 0
		s.PushNotifications = mask&4 != 0
		for _, c := range types.Categories() {
			for _, ch := range EligibleChannels(types.Alert{Category: c}, s) {
				assert.True(t, s.ChannelEnabled(ch), "mask=%d category=%s channel=%s", mask, c, ch)
			}
		}
	}
}

func TestDispatch_HandsOffToSenders(t *testing.T) {
	all := &recordingSender{name: "all", minPriority: types.PriorityLow}
	urgent := &recordingSender{name: "urgent", minPriority: types.PriorityHigh}
	d := NewDispatcher(zap.NewNop(), DispatcherOptions{RateLimitPerMinute: 600, Senders: []Sender{all, urgent}})

	critical := testAlert()
	low := testAlert()
	low.ID = "alert-002"
	low.EntityID = "DR001"
	low.Priority = types.PriorityLow
	low.Category = types.CategoryGeneral

	n := d.Dispatch(context.Background(), []types.Alert{critical, low}, types.DefaultSettings())
	assert.Equal(t, 2, n)

	require.Len(t, all.notifications(), 2)
	assert.Equal(t, []types.Channel{types.ChannelEmail, types.ChannelSMS, types.ChannelPush}, all.notifications()[0].Channels)
	assert.Equal(t, []types.Channel{types.ChannelEmail, types.ChannelPush}, all.notifications()[1].Channels)

	require.Len(t, urgent.notifications(), 1)
	assert.Equal(t, "alert-001", urgent.notifications()[0].Alert.ID)
}

func TestDispatch_SkipsAlertsWithoutChannels(t *testing.T) {
	s := &recordingSender{name: "rec", minPriority: types.PriorityLow}
	d := NewDispatcher(zap.NewNop(), DispatcherOptions{Senders: []Sender{s}})

	settings := types.DefaultSettings()
	settings.EmailNotifications = false
	settings.SMSNotifications = false
	settings.PushNotifications = false

	assert.Equal(t, 0, d.Dispatch(context.Background(), []types.Alert{testAlert()}, settings))
	assert.Empty(t, s.notifications())
}

func TestDispatch_SenderErrorDoesNotStopOthers(t *testing.T) {
	broken := &recordingSender{name: "broken", minPriority: types.PriorityLow, err: errors.New("redis down")}
	ok := &recordingSender{name: "ok", minPriority: types.PriorityLow}
	d := NewDispatcher(zap.NewNop(), DispatcherOptions{Senders: []Sender{broken, ok}})

	n := d.Dispatch(context.Background(), []types.Alert{testAlert()}, types.DefaultSettings())
	assert.Equal(t, 1, n)
	assert.Len(t, ok.notifications(), 1)
}

func TestDispatch_RateLimitedPerEntity(t *testing.T) {
	s := &recordingSender{name: "rec", minPriority: types.PriorityLow}
	// 10 per minute gives a burst of one.
	d := NewDispatcher(zap.NewNop(), DispatcherOptions{RateLimitPerMinute: 10, Senders: []Sender{s}})

	var batch []types.Alert
	for i := 0; i < 3; i++ {
		a := testAlert()
		a.ID = fmt.Sprintf("alert-%d", i)
		batch = append(batch, a)
	}
	other := testAlert()
	other.ID = "other"
	other.EntityID = "VH002"
	batch = append(batch, other)

	n := d.Dispatch(context.Background(), batch, types.DefaultSettings())
	assert.Equal(t, 2, n, "one per entity within the burst")

	ids := []string{}
	for _, n := range s.notifications() {
		ids = append(ids, n.Alert.ID)
	}
	assert.Equal(t, []string{"alert-0", "other"}, ids)
}

func TestDispatcher_StartStartsSenders(t *testing.T) {
	s := &recordingSender{name: "rec"}
	late := &recordingSender{name: "late"}
	d := NewDispatcher(zap.NewNop(), DefaultDispatcherOptions())
	d.AddSender(s)
	d.AddSender(late)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	assert.True(t, s.started)
	assert.True(t, late.started)
}

func TestDispatcher_BucketsRefillAndEvict(t *testing.T) {
	now := testutil.Now
	d := NewDispatcher(zap.NewNop(), DispatcherOptions{RateLimitPerMinute: 10})
	d.now = func() time.Time { return now }

	a := testAlert()
	assert.True(t, d.allow(a))
	assert.False(t, d.allow(a), "burst of one is spent")

	sameIDOtherType := a
	sameIDOtherType.EntityType = types.EntityTypeDriver
	assert.True(t, d.allow(sameIDOtherType), "buckets are per entity type and id")

	now = now.Add(6 * time.Second) // 10/min refills one token every 6s
	assert.True(t, d.allow(a))

	assert.Zero(t, d.evictIdle(time.Minute))
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, d.evictIdle(time.Minute))
	assert.Empty(t, d.buckets)
	assert.True(t, d.allow(a), "an evicted bucket comes back full")
}
