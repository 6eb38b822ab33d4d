package notifier

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

// DispatcherOptions configures the Dispatcher behavior.
type DispatcherOptions struct {
	RateLimitPerMinute int      // per entity, default 30
	Senders            []Sender // hand-off targets (webhook, redis, live feed)
}

// DefaultDispatcherOptions returns sensible defaults.
func DefaultDispatcherOptions() DispatcherOptions {
	return DispatcherOptions{
		RateLimitPerMinute: defaultPerMinute,
	}
}

// bucket is the token bucket of one entity. Manual alerts without an entity
// share the zero key.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type bucketKey struct {
	entityType types.EntityType
	entityID   string
}

const (
	bucketIdleTTL    = time.Hour
	bucketEvictEvery = 5 * time.Minute
	defaultPerMinute = 30
)

// Dispatcher routes new alerts to their eligible channels and hands them to senders.
// Each entity gets its own token bucket so one flapping record cannot flood the
// delivery collaborators.
type Dispatcher struct {
	logger *zap.Logger
	now    func() time.Time

	perSecond rate.Limit
	burst     int
	bucketsMu sync.Mutex
	buckets   map[bucketKey]*bucket

	mu      sync.RWMutex
	senders []Sender
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(logger *zap.Logger, opts DispatcherOptions) *Dispatcher {
	perMinute := opts.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}
	return &Dispatcher{
		logger:    logger.Named("dispatcher"),
		now:       time.Now,
		perSecond: rate.Limit(float64(perMinute) / 60),
		burst:     max(1, perMinute/10),
		buckets:   make(map[bucketKey]*bucket),
		senders:   append([]Sender(nil), opts.Senders...),
	}
}

// allow takes one token from the bucket of a's entity.
func (d *Dispatcher) allow(a types.Alert) bool {
	key := bucketKey{entityType: a.EntityType, entityID: a.EntityID}
	now := d.now()

	d.bucketsMu.Lock()
	defer d.bucketsMu.Unlock()
	b, ok := d.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(d.perSecond, d.burst)}
		d.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// evictIdle drops buckets unused for longer than ttl. A dropped bucket comes back full.
func (d *Dispatcher) evictIdle(ttl time.Duration) int {
	cutoff := d.now().Add(-ttl)

	d.bucketsMu.Lock()
	defer d.bucketsMu.Unlock()
	evicted := 0
	for key, b := range d.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(d.buckets, key)
			evicted++
		}
	}
	return evicted
}

// AddSender registers an extra sender. Call before Start to have it started too.
func (d *Dispatcher) AddSender(s Sender) {
	d.mu.Lock()
	d.senders = append(d.senders, s)
	d.mu.Unlock()
}

// Start begins background routines for limiter cleanup and senders. Non-blocking.
func (d *Dispatcher) Start(ctx context.Context) {
	go d.evictLoop(ctx)
	for _, s := range d.snapshotSenders() {
		s.Start(ctx)
		d.logger.Info("Started sender", zap.String("sender", s.Name()))
	}
}

// Dispatch routes each alert and hands it to every interested sender. Alerts with no
// eligible channel, or whose entity is over its rate limit, are skipped. Sender errors
// are logged, never returned. Returns the number of notifications dispatched.
func (d *Dispatcher) Dispatch(ctx context.Context, alerts []types.Alert, settings types.Settings) int {
	senders := d.snapshotSenders()
	dispatched := 0
	for _, a := range alerts {
		channels := EligibleChannels(a, settings)
		if len(channels) == 0 {
			notificationsTotal.WithLabelValues("no_channels").Inc()
			continue
		}

		if !d.allow(a) {
			notificationsTotal.WithLabelValues("rate_limited").Inc()
			d.logger.Debug("Entity rate limited", zap.String("entity", a.EntityID), zap.String("alert", a.ID))
			continue
		}

		n := Notification{Alert: a, Channels: channels}
		for _, s := range senders {
			if !s.ShouldSend(a.Priority) {
				continue
			}
			if err := s.Send(ctx, n); err != nil {
				senderHandoffTotal.WithLabelValues(s.Name(), "error").Inc()
				d.logger.Error("Sender hand-off failed",
					zap.String("sender", s.Name()),
					zap.String("alert", a.ID),
					zap.Error(err),
				)
				continue
			}
			senderHandoffTotal.WithLabelValues(s.Name(), "ok").Inc()
		}

		dispatched++
		notificationsTotal.WithLabelValues("dispatched").Inc()
		d.logger.Info("Dispatched notification",
			zap.String("alert", a.ID),
			zap.String("category", string(a.Category)),
			zap.Int("channels", len(channels)),
		)
	}
	return dispatched
}

func (d *Dispatcher) snapshotSenders() []Sender {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Sender(nil), d.senders...)
}

// evictLoop periodically drops the buckets of entities that went quiet.
func (d *Dispatcher) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(bucketEvictEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := d.evictIdle(bucketIdleTTL); n > 0 {
				d.logger.Debug("Evicted idle rate-limit buckets", zap.Int("buckets", n))
			}
		}
	}
}
