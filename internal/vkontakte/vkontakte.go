package vkontakte

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"
	"github.com/spigell/vkinder/internal/profile"
	"github.com/spigell/vkinder/internal/utils"
	"go.uber.org/zap"
)

const (
	apiURL    = "https://api.vk.com/method"
	userAgent = "spigell/vkinder"

	DefaultVersion  = "5.199"
	DefaultThrottle = 340 * time.Millisecond
	DefaultTimeout  = 10 * time.Second

	// Max value for users.search count per request.
	perPage = 1000
)

type Config struct {
	Version  string        `mapstructure:"version"`
	Throttle time.Duration `mapstructure:"throttle"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// groupCache keeps raw groups.get responses per user. Concurrent misses for one key share a fetch.
type groupCache interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
}

// Client talks to the VK API. It is safe for concurrent use; calls are spaced by the throttle.
type Client struct {
	token    string
	version  string
	throttle time.Duration
	logger   *zap.Logger
	adapter  *profile.Adapter
	groups   groupCache

	mu   sync.Mutex
	last time.Time

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	// PageSize is the users.search batch size.
	PageSize int
}

func New(logger *zap.Logger, token string, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cache, err := sfcache.NewTiered[string, []byte](null.New[string, []byte]())
	if err != nil {
		return nil, fmt.Errorf("creating groups cache: %w", err)
	}

	return &Client{
		token:    token,
		version:  version,
		throttle: cfg.Throttle,
		logger:   logger,
		adapter:  profile.NewAdapter(),
		groups:   cache,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: userAgent,
		APIURL:    apiURL,
		PageSize:  perPage,
	}, nil
}

// wait reserves the next send slot and sleeps until it comes. Concurrent callers
// get consecutive slots, so sleeping happens outside the lock.
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	slot := now
	if next := c.last.Add(c.throttle); next.After(now) {
		slot = next
	}
	c.last = slot
	c.mu.Unlock()

	return utils.WaitFor(ctx, slot.Sub(now))
}
