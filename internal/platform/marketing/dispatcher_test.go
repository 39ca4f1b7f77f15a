package marketing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/salesreport/pkg/config"
)

func startDispatcher(t *testing.T, cfg cfgpkg.MarketingConfig) (Dispatcher, func()) {
	t.Helper()
	lc := fxtest.NewLifecycle(t)
	d := NewDispatcher(lc, &cfgpkg.Config{Marketing: cfg}, zap.NewNop().Sugar())
	require.NoError(t, lc.Start(context.Background()))
	return d, func() { _ = lc.Stop(context.Background()) }
}

func TestEnqueue_DeliversSignupEvent(t *testing.T) {
	got := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		got <- body
	}))
	defer srv.Close()

	d, stop := startDispatcher(t, cfgpkg.MarketingConfig{WebhookURL: srv.URL})
	defer stop()

	d.Enqueue(&Event{Kind: "signup", Payload: map[string]any{"email": "a@b.com", "source": "salesreport-ai"}})

	select {
	case body := <-got:
		require.Equal(t, "a@b.com", body["email"])
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestEnqueue_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
	}))
	defer srv.Close()

	d, stop := startDispatcher(t, cfgpkg.MarketingConfig{VerificationWebhookURL: srv.URL})
	defer stop()

	d.Enqueue(&Event{Kind: "verification", Payload: map[string]any{"verification_code": "123456"}})

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
}

func TestEnqueue_UnconfiguredDestinationDropped(t *testing.T) {
	d, stop := startDispatcher(t, cfgpkg.MarketingConfig{})
	defer stop()

	// must not panic or block
	d.Enqueue(&Event{Kind: "signup", Payload: map[string]any{"email": "x@y.com"}})
}
