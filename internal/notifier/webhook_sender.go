package notifier

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

const (
	defaultWebhookTimeout   = 10 * time.Second
	defaultWebhookWorkers   = 3
	defaultWebhookQueueSize = 100
	webhookAttempts         = 3
	maxWebhookBackoff       = 30 * time.Second

	webhookEventAlertCreated = "alert.created"
	userAgent                = "fleportd/v1"

	headerEvent     = "X-FlePort-Event"
	headerDelivery  = "X-FlePort-Delivery"
	headerSignature = "X-FlePort-Signature"
)

// AlertEvent is the JSON body POSTed to the webhook. The receiver owns the
// actual email, SMS and push delivery for the listed channels.
type AlertEvent struct {
	Event      string          `json:"event"`
	DeliveryID string          `json:"deliveryId"`
	SentAt     time.Time       `json:"sentAt"`
	Alert      types.Alert     `json:"alert"`
	Channels   []types.Channel `json:"channels"`
}

// WebhookSenderConfig holds the configuration for creating a WebhookSender.
type WebhookSenderConfig struct {
	URL                string
	Timeout            time.Duration
	InsecureSkipVerify bool
	MinPriority        string
	// AuthToken is sent as a bearer token when set.
	AuthToken string
	// SigningSecret enables the X-FlePort-Signature HMAC-SHA256 header.
	SigningSecret string
	Workers       int
	QueueSize     int
}

type delivery struct {
	id      string
	alertID string
	body    []byte
}

// WebhookSender posts alert events to one HTTP endpoint from a small worker pool.
type WebhookSender struct {
	logger      *zap.Logger
	client      *http.Client
	endpoint    string
	authToken   string
	secret      []byte
	minPriority types.Priority
	workers     int
	queue       chan delivery
	backoff     time.Duration
	now         func() time.Time
	wg          sync.WaitGroup
}

// NewWebhookSender validates cfg and returns a sender. Workers run after Start.
func NewWebhookSender(logger *zap.Logger, cfg WebhookSenderConfig) (*WebhookSender, error) {
	if err := validateWebhookURL(cfg.URL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWebhookWorkers
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultWebhookQueueSize
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // operator opt-in
		logger.Warn("Webhook TLS certificate verification is disabled",
			zap.String("url", RedactURL(cfg.URL)))
	}

	var secret []byte
	if cfg.SigningSecret != "" {
		secret = []byte(cfg.SigningSecret)
	}

	return &WebhookSender{
		logger:      logger.Named("webhook-sender"),
		client:      &http.Client{Timeout: timeout, Transport: transport},
		endpoint:    cfg.URL,
		authToken:   cfg.AuthToken,
		secret:      secret,
		minPriority: ParsePriority(cfg.MinPriority, types.PriorityLow),
		workers:     workers,
		queue:       make(chan delivery, queueSize),
		backoff:     time.Second,
		now:         time.Now,
	}, nil
}

func validateWebhookURL(raw string) error {
	if raw == "" {
		return errors.New("webhook URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("webhook URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("webhook URL must include a host")
	}
	return nil
}

// Name implements Sender.
func (ws *WebhookSender) Name() string { return "webhook" }

// ShouldSend implements Sender.
func (ws *WebhookSender) ShouldSend(priority types.Priority) bool {
	return priority.Rank() >= ws.minPriority.Rank()
}

// Start implements Sender.
func (ws *WebhookSender) Start(ctx context.Context) {
	ws.wg.Add(ws.workers)
	for range ws.workers {
		go ws.run(ctx)
	}
	ws.logger.Info("Webhook sender started",
		zap.String("url", RedactURL(ws.endpoint)),
		zap.Int("workers", ws.workers),
		zap.String("min_priority", string(ws.minPriority)),
	)
}

// Close blocks until every worker has exited. Workers exit once the Start
// context is cancelled and the queue is empty.
func (ws *WebhookSender) Close() {
	ws.wg.Wait()
}

// Send implements Sender. The event is encoded immediately and queued; a full
// queue drops it.
func (ws *WebhookSender) Send(ctx context.Context, n Notification) error {
	d, err := ws.newDelivery(n)
	if err != nil {
		webhookSendTotal.WithLabelValues("error").Inc()
		return err
	}

	select {
	case ws.queue <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		webhookSendTotal.WithLabelValues("dropped").Inc()
		ws.logger.Warn("Webhook queue full, dropping alert event", zap.String("alert", n.Alert.ID))
		return errors.New("webhook queue full")
	}
}

func (ws *WebhookSender) newDelivery(n Notification) (delivery, error) {
	event := AlertEvent{
		Event:      webhookEventAlertCreated,
		DeliveryID: uuid.NewString(),
		SentAt:     ws.now().UTC(),
		Alert:      n.Alert,
		Channels:   n.Channels,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return delivery{}, fmt.Errorf("encode alert event: %w", err)
	}
	return delivery{id: event.DeliveryID, alertID: n.Alert.ID, body: body}, nil
}

func (ws *WebhookSender) run(ctx context.Context) {
	defer ws.wg.Done()
	for {
		select {
		case d := <-ws.queue:
			ws.deliverAndLog(ctx, d)
		case <-ctx.Done():
			ws.drain()
			return
		}
	}
}

// drain flushes whatever is still queued, giving each delivery a fresh
// timeout since the run context is already done.
func (ws *WebhookSender) drain() {
	for {
		select {
		case d := <-ws.queue:
			ctx, cancel := context.WithTimeout(context.Background(), ws.client.Timeout)
			ws.deliverAndLog(ctx, d)
			cancel()
		default:
			return
		}
	}
}

func (ws *WebhookSender) deliverAndLog(ctx context.Context, d delivery) {
	if err := ws.deliver(ctx, d); err != nil {
		ws.logger.Error("Webhook delivery failed",
			zap.String("alert", d.alertID),
			zap.String("delivery", d.id),
			zap.String("url", RedactURL(ws.endpoint)),
			zap.Error(err),
		)
	}
}

// deliver POSTs d, retrying transport errors, 429 and 5xx with exponential
// backoff. A Retry-After header from the receiver replaces the computed wait.
func (ws *WebhookSender) deliver(ctx context.Context, d delivery) error {
	var lastErr error
	for attempt := 1; attempt <= webhookAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, ws.retryDelay(attempt, lastErr)); err != nil {
				webhookSendTotal.WithLabelValues("error").Inc()
				return fmt.Errorf("gave up waiting to retry: %w", err)
			}
			webhookSendTotal.WithLabelValues("retry").Inc()
		}

		lastErr = ws.post(ctx, d)
		if lastErr == nil {
			return nil
		}
		var re *responseError
		if errors.As(lastErr, &re) && !re.retryable() {
			webhookSendTotal.WithLabelValues("error").Inc()
			return lastErr
		}
		ws.logger.Debug("Webhook delivery attempt failed",
			zap.String("delivery", d.id),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
	}

	webhookSendTotal.WithLabelValues("error").Inc()
	return fmt.Errorf("webhook delivery failed after %d attempts: %w", webhookAttempts, lastErr)
}

func (ws *WebhookSender) retryDelay(attempt int, lastErr error) time.Duration {
	var re *responseError
	if errors.As(lastErr, &re) && re.retryAfter > 0 {
		return min(re.retryAfter, maxWebhookBackoff)
	}
	return min(ws.backoff<<(attempt-2), maxWebhookBackoff)
}

func (ws *WebhookSender) post(ctx context.Context, d delivery) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.endpoint, bytes.NewReader(d.body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(headerEvent, webhookEventAlertCreated)
	req.Header.Set(headerDelivery, d.id)
	if ws.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+ws.authToken)
	}
	if ws.secret != nil {
		req.Header.Set(headerSignature, Sign(ws.secret, d.body))
	}

	start := time.Now()
	resp, err := ws.client.Do(req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		webhookSendDuration.WithLabelValues("error").Observe(elapsed)
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		webhookSendTotal.WithLabelValues("success").Inc()
		webhookSendDuration.WithLabelValues("success").Observe(elapsed)
		return nil
	}
	webhookSendDuration.WithLabelValues("error").Observe(elapsed)
	return &responseError{
		status:     resp.StatusCode,
		retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// Sign returns the X-FlePort-Signature value for body: "sha256=" followed by
// the hex HMAC-SHA256 of body under secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// responseError is a non-2xx reply from the receiver.
type responseError struct {
	status     int
	retryAfter time.Duration
}

func (e *responseError) Error() string {
	return fmt.Sprintf("webhook returned HTTP %d", e.status)
}

func (e *responseError) retryable() bool {
	return e.status == http.StatusTooManyRequests || e.status >= 500
}

// parseRetryAfter understands the delta-seconds form only.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RedactURL hides the password and every query value of rawURL for logging.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			q.Set(key, "REDACTED")
		}
		u.RawQuery = q.Encode()
	}
	return u.Redacted()
}
