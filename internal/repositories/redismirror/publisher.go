package redismirror

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/payments_engine/internal/core/domain"
	"github.com/redis/rueidis"
)

// DefaultKey is the hash the account snapshot is written to.
const DefaultKey = "ledger:accounts"

// Config configures the Redis connection.
type Config struct {
	Addr         string
	Username     string
	Password     string
	DB           int
	Key          string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisPublisher writes each account as a JSON field of one Redis hash keyed
// by client id.
type RedisPublisher struct {
	client rueidis.Client
	key    string
}

// NewRedisPublisher connects and pings the server.
func NewRedisPublisher(cfg Config) (*RedisPublisher, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis: no address configured")
	}
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      []string{cfg.Addr},
		Username:         cfg.Username,
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		ConnWriteTimeout: cfg.WriteTimeout,
		DisableCache:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: failed to create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}

	return &RedisPublisher{client: client, key: cfg.Key}, nil
}

// Publish stores acc under its client id.
func (p *RedisPublisher) Publish(ctx context.Context, acc domain.Account) error {
	data, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("redis publish: failed to marshal: %w", err)
	}

	cmd := p.client.B().Hset().Key(p.key).FieldValue().
		FieldValue(strconv.FormatUint(uint64(acc.ClientID), 10), string(data)).
		Build()
	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Clear drops the mirrored hash. A ledger that starts empty calls it so the
// mirror does not outlive the data it copied.
func (p *RedisPublisher) Clear(ctx context.Context) error {
	return p.client.Do(ctx, p.client.B().Del().Key(p.key).Build()).Error()
}

// Close closes the client.
func (p *RedisPublisher) Close() {
	p.client.Close()
}
