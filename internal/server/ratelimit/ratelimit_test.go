package ratelimit

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	defer goleak.VerifyTestMain(m)
	os.Exit(m.Run())
}

func testConfig(endpoints ...EndpointConfig) *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    5,
		DefaultWindow:   time.Minute,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: endpoints,
	}
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 5; i++ {
		ok, info := l.Allow("10.0.0.1", "/public-resumes", "GET")
		require.True(t, ok, "request %d", i+1)
		assert.Equal(t, 5, info.Limit)
	}

	ok, info := l.Allow("10.0.0.1", "/public-resumes", "GET")
	assert.False(t, ok)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.True(t, info.ResetTime.After(time.Now()))

	ok, _ = l.Allow("10.0.0.2", "/public-resumes", "GET")
	assert.True(t, ok, "buckets are per client")
}

func TestLimiter_EndpointBucketsSharedAcrossIDs(t *testing.T) {
	l := NewLimiter(testConfig(EndpointConfig{Path: "/resumes/", Method: "DELETE", Limit: 2, Window: time.Minute}))
	defer l.Stop()

	ok, _ := l.Allow("c", "/resumes/1", "DELETE")
	assert.True(t, ok)
	ok, _ = l.Allow("c", "/resumes/2", "DELETE")
	assert.True(t, ok)
	ok, _ = l.Allow("c", "/resumes/3", "DELETE")
	assert.False(t, ok)

	ok, _ = l.Allow("c", "/resumes/3", "GET")
	assert.True(t, ok, "other methods use their own bucket")
}

func TestLimiter_Burst(t *testing.T) {
	l := NewLimiter(testConfig(EndpointConfig{Path: "/auth/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 2}))
	defer l.Stop()

	for i := 0; i < 2; i++ {
		ok, _ := l.Allow("c", "/auth/login", "POST")
		require.True(t, ok)
	}
	ok, _ := l.Allow("c", "/auth/login", "POST")
	assert.False(t, ok)
}

func TestLimiter_DeniedRequestsDoNotConsume(t *testing.T) {
	l := NewLimiter(testConfig(EndpointConfig{Path: "/x", Method: "POST", Limit: 60, Window: time.Minute, Burst: 1}))
	defer l.Stop()

	ok, _ := l.Allow("c", "/x", "POST")
	require.True(t, ok)
	_, first := l.Allow("c", "/x", "POST")
	_, second := l.Allow("c", "/x", "POST")
	assert.InDelta(t, first.RetryAfter.Seconds(), second.RetryAfter.Seconds(), 0.1)
}

func TestLimiter_Lists(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 1
	cfg.Whitelist["trusted"] = true
	cfg.Blacklist["banned"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("trusted", "/resumes", "GET")
		assert.True(t, ok)
	}
	ok, _ := l.Allow("banned", "/health", "GET")
	assert.False(t, ok)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false, CleanupInterval: time.Millisecond})
	defer l.Stop()

	ok, info := l.Allow("c", "/resumes", "POST")
	assert.True(t, ok)
	assert.Equal(t, 0, info.Limit)
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 1
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		ok, _ := l.Allow("c", "/health", "GET")
		assert.True(t, ok)
	}
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_EvictIdle(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	l.Allow("a", "/resumes", "GET")
	l.Allow("b", "/resumes", "GET")
	require.Equal(t, 2, l.Len())

	l.evictIdle(time.Now().Add(30 * time.Minute))
	assert.Equal(t, 2, l.Len())
	l.evictIdle(time.Now().Add(2 * time.Hour))
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_CleanupStops(t *testing.T) {
	cfg := testConfig()
	cfg.CleanupInterval = time.Millisecond
	l := NewLimiter(cfg)
	l.Stop()
	l.Stop()
}

func TestLimiter_Concurrent(t *testing.T) {
	l := NewLimiter(testConfig(EndpointConfig{Path: "/resumes", Method: "POST", Limit: 50, Window: time.Hour}))
	defer l.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/resumes", "POST"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		name   string
		path   string
		method string
		want   string
	}{
		{"exact", "/auth/login", "POST", "/auth/login"},
		{"collection create", "/resumes", "POST", "/resumes"},
		{"prefix", "/resumes/7/favorite", "POST", "/resumes/"},
		{"method mismatch", "/auth/login", "GET", ""},
		{"no match", "/favorites", "GET", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Path)
		})
	}

	health := MatchEndpoint("/health", "GET", configs)
	require.NotNil(t, health)
	assert.Equal(t, 0, health.Limit)
}

func TestMatchEndpoint_LongestPrefix(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/a/", Method: "GET", Limit: 1},
		{Path: "/a/b/", Method: "GET", Limit: 2},
	}
	got := MatchEndpoint("/a/b/c", "GET", configs)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Limit)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_WHITELIST", "1.1.1.1, 2.2.2.2")
	t.Setenv("RATE_LIMIT_ENABLED", "not-a-bool")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, map[string]bool{"1.1.1.1": true, "2.2.2.2": true}, cfg.Whitelist)
	assert.NotEmpty(t, cfg.EndpointConfigs)
}
