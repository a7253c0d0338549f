package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/config"
	"github.com/Sanalemba991/digiallink-sa/internal/metrics"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"golang.org/x/sync/singleflight"
)

var (
	ErrConnection = errors.New("database connection failed")
	ErrMissingURI = errors.New("database uri is not configured")
)

const (
	defaultMaxPoolSize            = 10
	defaultServerSelectionTimeout = 30 * time.Second
	defaultSocketTimeout          = 45 * time.Second
)

// Connector opens and verifies a new database handle.
type Connector func(ctx context.Context) (*bun.DB, error)

// Provider hands out one shared *bun.DB per process. The handle is created
// on first use; concurrent first callers wait on the same attempt.
type Provider struct {
	cfg       config.DatabaseConfig
	logger    *slog.Logger
	metrics   *metrics.DatabaseMetrics
	connect   Connector
	onConnect func(ctx context.Context, db *bun.DB) error

	mu     sync.RWMutex
	conn   *bun.DB
	flight singleflight.Group
}

type Option func(*Provider)

// WithConnector replaces the pgdriver dialer.
func WithConnector(c Connector) Option {
	return func(p *Provider) { p.connect = c }
}

// WithOnConnect runs fn against every freshly opened handle before it is
// cached. An error discards the handle.
func WithOnConnect(fn func(ctx context.Context, db *bun.DB) error) Option {
	return func(p *Provider) { p.onConnect = fn }
}

func WithMetrics(m *metrics.DatabaseMetrics) Option {
	return func(p *Provider) { p.metrics = m }
}

func NewProvider(cfg config.DatabaseConfig, logger *slog.Logger, opts ...Option) (*Provider, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, fmt.Errorf("%w: %w", ErrConnection, ErrMissingURI)
	}
	u, err := url.Parse(cfg.URI)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return nil, fmt.Errorf("%w: database uri must be a postgres:// url", ErrConnection)
	}

	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = defaultMaxPoolSize
	}
	if cfg.ServerSelectionTimeout <= 0 {
		cfg.ServerSelectionTimeout = defaultServerSelectionTimeout
	}
	if cfg.SocketTimeout <= 0 {
		cfg.SocketTimeout = defaultSocketTimeout
	}

	p := &Provider{
		cfg:    cfg,
		logger: logger,
	}
	p.connect = p.dial

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Static wraps an already open handle. Acquire never dials.
func Static(db *bun.DB) *Provider {
	return &Provider{conn: db, logger: slog.Default()}
}

// Acquire returns the live handle, establishing it if needed. A failed
// establishment is not cached: the next call tries again.
func (p *Provider) Acquire(ctx context.Context) (*bun.DB, error) {
	if conn := p.cached(); conn != nil {
		return conn, nil
	}

	// The attempt outlives any single caller so that one cancelled request
	// does not fail the others waiting on it.
	ch := p.flight.DoChan("connect", func() (interface{}, error) {
		return p.establish(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*bun.DB), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrConnection, ctx.Err())
	}
}

// Ping verifies the database is reachable, connecting first if needed.
func (p *Provider) Ping(ctx context.Context) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return nil
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *Provider) cached() *bun.DB {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.conn
}

func (p *Provider) establish(ctx context.Context) (*bun.DB, error) {
	// A caller may have missed the cache just before a previous attempt
	// finished and started a new flight.
	if conn := p.cached(); conn != nil {
		return conn, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.ServerSelectionTimeout)
	defer cancel()

	p.logger.InfoContext(ctx, "creating new database connection", "uri", Redact(p.cfg.URI))

	conn, err := p.connect(ctx)
	if err == nil && p.onConnect != nil {
		if err = p.onConnect(ctx, conn); err != nil {
			_ = conn.Close()
		}
	}
	p.metrics.RecordConnectAttempt(ctx, err)

	if err != nil {
		p.logger.ErrorContext(ctx, "database connection error", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "database connection established successfully")
	return conn, nil
}

func (p *Provider) dial(ctx context.Context) (*bun.DB, error) {
	opts := []pgdriver.Option{
		pgdriver.WithDSN(p.cfg.URI),
		pgdriver.WithDialTimeout(p.cfg.ServerSelectionTimeout),
		pgdriver.WithReadTimeout(p.cfg.SocketTimeout),
		pgdriver.WithWriteTimeout(p.cfg.SocketTimeout),
	}
	if p.cfg.ForceIPv4 {
		opts = append(opts, pgdriver.WithNetwork("tcp4"))
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	configurePool(sqldb, p.cfg, p.logger)

	conn := bun.NewDB(sqldb, pgdialect.New())
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func configurePool(sqlDB *sql.DB, cfg config.DatabaseConfig, logger *slog.Logger) {
	sqlDB.SetMaxOpenConns(cfg.MaxPoolSize)
	sqlDB.SetMaxIdleConns(cfg.MaxPoolSize)
	sqlDB.SetConnMaxIdleTime(cfg.SocketTimeout)

	logger.Info("database pool configured",
		"max_pool_size", cfg.MaxPoolSize,
		"server_selection_timeout", cfg.ServerSelectionTimeout.String(),
		"socket_timeout", cfg.SocketTimeout.String(),
		"force_ipv4", cfg.ForceIPv4,
	)
}

var credentialsPattern = regexp.MustCompile(`//.*@`)

// Redact hides credentials in a connection string before it is logged.
func Redact(uri string) string {
	return credentialsPattern.ReplaceAllString(uri, "//***:***@")
}
