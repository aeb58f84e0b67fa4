package connector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Konsultn-Engineering/sqlgen/dialect"
)

var ErrUnknownProvider = errors.New("provider not registered")

type standardConnector struct {
	provider Provider
	config   Config
}

var globalManager = &Manager{
	providers: make(map[string]Provider),
}

type Manager struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

func Register(name string, provider Provider) {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.providers[name] = provider
}

// Names returns the registered provider names in sorted order.
func Names() []string {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()

	names := make([]string, 0, len(globalManager.providers))
	for name := range globalManager.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(driver string) (Provider, error) {
	globalManager.mu.RLock()
	provider, ok := globalManager.providers[driver]
	globalManager.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, driver)
	}
	return provider, nil
}

// DialectOf returns the SQL dialect of a registered driver.
func DialectOf(driver string) (dialect.Dialect, error) {
	provider, err := lookup(driver)
	if err != nil {
		return nil, err
	}
	return provider.Dialect(), nil
}

func New(config Config) (Connector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	provider, err := lookup(config.Driver)
	if err != nil {
		return nil, err
	}
	return &standardConnector{provider: provider, config: config}, nil
}

// Open creates a connector for config and connects it.
func Open(ctx context.Context, config Config) (Connection, error) {
	c, err := New(config)
	if err != nil {
		return nil, err
	}
	return c.Connect(ctx)
}

// Connect connects once, or with backoff when the config carries retry
// settings. ConnectTimeout bounds every attempt.
func (c *standardConnector) Connect(ctx context.Context) (Connection, error) {
	if c.config.Retry == nil {
		return c.connectOnce(ctx)
	}
	conn, err := retryConnect(ctx, *c.config.Retry, c.connectOnce)
	if err != nil {
		return nil, fmt.Errorf("failed to connect after %d retries: %w", c.config.Retry.MaxRetries, err)
	}
	return conn, nil
}

func (c *standardConnector) connectOnce(ctx context.Context) (Connection, error) {
	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}
	return c.provider.Connect(ctx, c.config)
}

func (c *standardConnector) Close() error {
	return nil
}
