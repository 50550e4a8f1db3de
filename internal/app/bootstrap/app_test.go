package bootstrap

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/cuddles-booking/internal/config"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		MapsProvider:         "static",
		EmailProvider:        "stub",
		NotifyRecipients:     []string{"contact@cuddlesandcut.com"},
		DistanceTimeout:      time.Second,
		LookupDebounce:       10 * time.Millisecond,
		SessionTTL:           time.Minute,
		SessionSweepInterval: 10 * time.Millisecond,
		RateLimitRPS:         100,
		RateLimitBurst:       100,
	}
}

func TestBuildRequiresConfig(t *testing.T) {
	if _, err := Build(context.Background(), nil, nil, logging.Discard()); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildServesAPI(t *testing.T) {
	cfg := testConfig()
	cfg.RedisAddr = miniredis.RunT(t).Addr()

	app, err := Build(context.Background(), cfg, nil, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(app.Close)
	require.NotNil(t, app.Redis)

	rec := httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","dependencies":{"redis":"ok"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, app.Sessions.Len())

	rec = httptest.NewRecorder()
	body := bytes.NewBufferString(`{"name":"Dana Reyes","phone":"5125550142"}`)
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", body))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestBuildRejectsInvalidRateCard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.toml")
	require.NoError(t, os.WriteFile(path, []byte("[fulfillment.IN_HOME]\ntrip_multiplier = -1.0\n"), 0o600))
	cfg := testConfig()
	cfg.RateCardFile = path

	_, err := Build(context.Background(), cfg, nil, logging.Discard())
	assert.Error(t, err)
}

func TestAppRunStopsWithContext(t *testing.T) {
	app, err := Build(context.Background(), testConfig(), nil, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()
	app.Sessions.Create()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	assert.Equal(t, 0, app.Sessions.Len())
	app.Close()
}
