package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/cuddles-booking/internal/config"
	"github.com/wolfman30/cuddles-booking/internal/travel"
	"github.com/wolfman30/cuddles-booking/internal/travel/distcache"
	"github.com/wolfman30/cuddles-booking/internal/travel/googlemaps"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

func TestBuildRedisClientDisabledWithoutAddr(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, logging.Discard(), true); client != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
	if client := BuildRedisClient(context.Background(), nil, logging.Discard(), true); client != nil {
		t.Fatalf("expected nil client for nil config")
	}
}

func TestBuildRedisClientVerifiesConnection(t *testing.T) {
	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.Discard(), true)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logging.Discard(), true))
}

func TestBuildDistanceProviderSelection(t *testing.T) {
	cases := []struct {
		name     string
		cfg      appconfig.Config
		wantName string
		check    func(t *testing.T, p travel.Provider)
	}{
		{
			name:     "auto without key is static",
			cfg:      appconfig.Config{MapsProvider: "auto"},
			wantName: "static",
			check: func(t *testing.T, p travel.Provider) {
				_, ok := p.(*travel.StaticProvider)
				assert.True(t, ok, "got %T", p)
			},
		},
		{
			name:     "auto with key is google",
			cfg:      appconfig.Config{MapsProvider: "auto", GoogleMapsAPIKey: "AIza-test", MapsRequestsPerSecond: 5, MapsBurst: 5},
			wantName: "google",
			check: func(t *testing.T, p travel.Provider) {
				_, ok := p.(*googlemaps.Client)
				assert.True(t, ok, "got %T", p)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, name, err := BuildDistanceProvider(&tc.cfg, nil, logging.Discard(), nil)
			require.NoError(t, err)
			assert.Equal(t, tc.wantName, name)
			tc.check(t, p)
		})
	}
}

func TestBuildDistanceProviderErrors(t *testing.T) {
	_, _, err := BuildDistanceProvider(&appconfig.Config{MapsProvider: "google"}, nil, logging.Discard(), nil)
	assert.Error(t, err, "google without a key")

	_, _, err = BuildDistanceProvider(&appconfig.Config{MapsProvider: "bing"}, nil, logging.Discard(), nil)
	assert.Error(t, err)

	_, _, err = BuildDistanceProvider(nil, nil, logging.Discard(), nil)
	assert.Error(t, err)
}

func TestBuildDistanceProviderWrapsCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.Discard(), false)
	t.Cleanup(func() { _ = client.Close() })

	p, name, err := BuildDistanceProvider(&appconfig.Config{}, client, logging.Discard(), nil)
	require.NoError(t, err)
	assert.Equal(t, "static+redis", name)
	_, ok := p.(*distcache.Provider)
	assert.True(t, ok, "got %T", p)
}
