// Package marketing delivers outbound webhooks to the marketing-automation
// platform. Deliveries are best-effort by policy: enqueue never blocks the
// request path, failed deliveries are retried with backoff, and exhausted
// deliveries end up as dead-letter log entries rather than errors.
package marketing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/salesreport/pkg/config"
)

const (
	queueSize    = 256
	maxAttempts  = 3
	baseBackoff  = 500 * time.Millisecond
	sendTimeout  = 10 * time.Second
	drainTimeout = 5 * time.Second
)

// Event is one outbound delivery.
type Event struct {
	// Kind selects the destination URL: "signup" or "verification".
	Kind    string
	Payload map[string]any

	attempt int
}

// Dispatcher is the enqueue-only surface exposed to services.
type Dispatcher interface {
	// Enqueue schedules a delivery and returns immediately. Deliveries to
	// unconfigured destinations are dropped silently.
	Enqueue(ev *Event)
}

type dispatcher struct {
	cfg  cfgpkg.MarketingConfig
	log  *zap.SugaredLogger
	http *http.Client

	ch   chan *Event
	wg   sync.WaitGroup
	stop chan struct{}
}

func NewDispatcher(lc fx.Lifecycle, cfg *cfgpkg.Config, log *zap.SugaredLogger) Dispatcher {
	d := &dispatcher{
		cfg:  cfg.Marketing,
		log:  log,
		http: &http.Client{Timeout: sendTimeout},
		ch:   make(chan *Event, queueSize),
		stop: make(chan struct{}),
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			d.wg.Add(1)
			go d.run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(d.stop)
			done := make(chan struct{})
			go func() {
				d.wg.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(drainTimeout):
				d.log.Warnw("marketing dispatcher drain timed out")
			case <-ctx.Done():
			}
			return nil
		},
	})

	return d
}

func (d *dispatcher) urlFor(kind string) string {
	switch kind {
	case "verification":
		return d.cfg.VerificationWebhookURL
	default:
		return d.cfg.WebhookURL
	}
}

func (d *dispatcher) Enqueue(ev *Event) {
	if ev == nil || d.urlFor(ev.Kind) == "" {
		return
	}
	select {
	case d.ch <- ev:
	default:
		// Queue full: this channel is best-effort, dropping beats blocking
		// a user request.
		d.log.Warnw("marketing queue full, dropping event", "kind", ev.Kind)
	}
}

func (d *dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case ev := <-d.ch:
			d.deliver(ev)
		case <-d.stop:
			// drain what is already queued
			for {
				select {
				case ev := <-d.ch:
					d.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (d *dispatcher) deliver(ev *Event) {
	url := d.urlFor(ev.Kind)
	for ev.attempt < maxAttempts {
		ev.attempt++
		err := d.post(url, ev.Payload)
		if err == nil {
			d.log.Infow("marketing webhook delivered", "kind", ev.Kind, "attempt", ev.attempt)
			return
		}
		d.log.Warnw("marketing webhook delivery failed",
			"kind", ev.Kind, "attempt", ev.attempt, "err", err)
		if ev.attempt < maxAttempts {
			time.Sleep(baseBackoff << (ev.attempt - 1))
		}
	}
	// Dead letter: keep the full payload in the log so the delivery can be
	// replayed by hand.
	payload, _ := json.Marshal(ev.Payload)
	d.log.Errorw("marketing webhook dead-lettered",
		"kind", ev.Kind, "attempts", ev.attempt, "payload", string(payload))
}

func (d *dispatcher) post(url string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	resp, err := d.http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(NewDispatcher),
)
