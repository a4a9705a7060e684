package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/socialdistribution/node/pkg/internal/models"
)

// FederationSink is the outbound delivery port of the dispatcher. HTTPSink
// delivers synchronously; QueueSink trades delivery-before-response for
// request latency. Tests substitute a fake.
type FederationSink interface {
	Deliver(node models.RemoteNode, inboxURL string, payload any) error
}

const deliverTimeout = 10 * time.Second

// HTTPSink POSTs payloads to peer inboxes with the peer's shared-secret
// Basic Auth credential, pacing requests per peer.
type HTTPSink struct {
	client   *http.Client
	limiters sync.Map
}

func NewHTTPSink() *HTTPSink {
	return &HTTPSink{
		client: &http.Client{Timeout: deliverTimeout},
	}
}

func (v *HTTPSink) limiter(baseURL string) *rate.Limiter {
	if cached, ok := v.limiters.Load(baseURL); ok {
		return cached.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rate.Every(200*time.Millisecond), 5)
	actual, _ := v.limiters.LoadOrStore(baseURL, limiter)
	return actual.(*rate.Limiter)
}

func (v *HTTPSink) Deliver(node models.RemoteNode, inboxURL string, payload any) error {
	body, err := jsoniter.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()
	if err := v.limiter(node.BaseURL).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait aborted: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inboxURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(node.Username, node.Password)

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("peer returned status %d", resp.StatusCode)
	}

	log.Debug().Str("url", inboxURL).Int("status", resp.StatusCode).Msg("Delivered payload to peer inbox.")
	return nil
}

type deliveryJob struct {
	node     models.RemoteNode
	inboxURL string
	payload  any
}

// QueueSink hands deliveries to a background worker through a bounded
// buffer. Enqueueing never fails; overflow is dropped with a log line,
// keeping the same best-effort contract as the synchronous sink.
type QueueSink struct {
	inner FederationSink
	queue chan deliveryJob
	done  chan struct{}
}

func NewQueueSink(inner FederationSink, size int) *QueueSink {
	sink := &QueueSink{
		inner: inner,
		queue: make(chan deliveryJob, size),
		done:  make(chan struct{}),
	}
	go sink.run()
	return sink
}

func (v *QueueSink) run() {
	for job := range v.queue {
		if err := v.inner.Deliver(job.node, job.inboxURL, job.payload); err != nil {
			log.Warn().Err(err).Str("url", job.inboxURL).Msg("Queued delivery to peer failed...")
		}
	}
	close(v.done)
}

func (v *QueueSink) Deliver(node models.RemoteNode, inboxURL string, payload any) error {
	select {
	case v.queue <- deliveryJob{node: node, inboxURL: inboxURL, payload: payload}:
	default:
		log.Warn().Str("url", inboxURL).Msg("Delivery queue is full, dropping payload...")
	}
	return nil
}

// Close drains the queue and stops the worker.
func (v *QueueSink) Close() {
	close(v.queue)
	<-v.done
}

var (
	httpSink     = NewHTTPSink()
	defaultSink  FederationSink
	sinkInitOnce sync.Once
)

// DefaultSink returns the sink selected by the dispatcher.mode setting,
// either "sync" (default) or "queue".
func DefaultSink() FederationSink {
	sinkInitOnce.Do(func() {
		if viper.GetString("dispatcher.mode") == "queue" {
			defaultSink = NewQueueSink(httpSink, 256)
		} else {
			defaultSink = httpSink
		}
	})
	return defaultSink
}
