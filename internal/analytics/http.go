package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/logger"
)

const (
	defaultQueueSize = 64
	requestTimeout   = 5 * time.Second
	tokenLifetime    = 5 * time.Minute
)

// Event is the JSON body posted to the capture endpoint
type Event struct {
	Event      string         `json:"event"`
	DistinctID string         `json:"distinct_id"`
	Properties map[string]any `json:"properties,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// HTTPObserver posts events to a capture endpoint from a background worker.
// Capture enqueues and returns; a full queue drops the event with a warning.
type HTTPObserver struct {
	endpoint   string
	distinctID string
	signingKey []byte
	client     *http.Client
	now        func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

type HTTPOption func(*HTTPObserver)

// WithSigningKey authenticates each request with a short-lived HS256 bearer token.
func WithSigningKey(key []byte) HTTPOption {
	return func(o *HTTPObserver) { o.signingKey = key }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(o *HTTPObserver) { o.client = c }
}

// WithQueueSize sets how many events may wait for delivery.
func WithQueueSize(n int) HTTPOption {
	return func(o *HTTPObserver) {
		if n > 0 {
			o.queue = make(chan Event, n)
		}
	}
}

// NewHTTPObserver starts the delivery worker. Call Close to flush and stop it.
func NewHTTPObserver(endpoint, distinctID string, opts ...HTTPOption) *HTTPObserver {
	o := &HTTPObserver{
		endpoint:   endpoint,
		distinctID: distinctID,
		client:     &http.Client{Timeout: requestTimeout},
		now:        time.Now,
		queue:      make(chan Event, defaultQueueSize),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	go o.run()
	return o
}

func (o *HTTPObserver) Capture(event string, props map[string]any) {
	ev := Event{Event: event, DistinctID: o.distinctID, Properties: props, Timestamp: o.now().UTC()}

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		logger.Debug("analytics observer closed, dropping event", "event", event)
		return
	}
	select {
	case o.queue <- ev:
	default:
		logger.Warn("analytics queue full, dropping event", "event", event)
	}
}

func (o *HTTPObserver) run() {
	defer close(o.done)
	for ev := range o.queue {
		if err := o.post(ev); err != nil {
			logger.Warn("analytics delivery failed", "event", ev.Event, "error", err)
		}
	}
}

func (o *HTTPObserver) post(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constants.AppName+"/"+constants.Version)

	if len(o.signingKey) > 0 {
		token, err := o.token()
		if err != nil {
			return fmt.Errorf("signing request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("capture endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func (o *HTTPObserver) token() (string, error) {
	now := o.now()
	claims := jwt.RegisteredClaims{
		Subject:   o.distinctID,
		Issuer:    constants.AppName,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(o.signingKey)
}

// Close stops accepting events and waits for queued ones to be sent, or ctx to end.
func (o *HTTPObserver) Close(ctx context.Context) error {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()

	select {
	case <-o.done:
		o.client.CloseIdleConnections()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
