// Package credstore provides credential sources for the MQTT client.
package credstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned when no credentials are stored for a client.
var ErrNotFound = errors.New("credstore: credentials not found")

// Record is the stored form of one client's credentials.
type Record struct {
	Username string `msgpack:"u"`
	Password string `msgpack:"p"`
}

// Redis reads client credentials from Redis. Each client's record is kept
// msgpack-encoded under "<prefix>cred:<clientID>".
type Redis struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	log       *slog.Logger
}

// Config configures the Redis credential store.
type Config struct {
	// Addr is the Redis server address (default: "localhost:6379").
	Addr string

	// Addrs is a list of addresses for cluster mode.
	Addrs []string

	// Password for authentication.
	Password string

	// DB is the database number (ignored in cluster mode).
	DB int

	// KeyPrefix is prepended to all keys (default: "mqttc:").
	KeyPrefix string

	// TTL is the expiry set by Put (0 = no expiry).
	TTL time.Duration

	// Client allows providing a pre-configured Redis client.
	Client redis.UniversalClient

	// Logger for logging. If nil, uses slog.Default().
	Logger *slog.Logger
}

// NewRedis creates a Redis-backed credential store.
func NewRedis(cfg *Config) *Redis {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Addr == "" && len(cfg.Addrs) == 0 {
		cfg.Addr = "localhost:6379"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "mqttc:"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var client redis.UniversalClient
	if cfg.Client != nil {
		client = cfg.Client
	} else if len(cfg.Addrs) > 0 {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	return &Redis{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
		log:       cfg.Logger,
	}
}

// Ping checks the Redis connection.
func (s *Redis) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("credstore: redis connection failed: %w", err)
	}
	return nil
}

func (s *Redis) key(clientID string) string {
	return s.keyPrefix + "cred:" + clientID
}

// Credentials returns the username and password stored for clientID.
func (s *Redis) Credentials(ctx context.Context, clientID string) (username, password string, err error) {
	data, err := s.client.Get(ctx, s.key(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", "", fmt.Errorf("%w: %q", ErrNotFound, clientID)
	}
	if err != nil {
		return "", "", fmt.Errorf("credstore: get %q: %w", clientID, err)
	}

	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		s.log.Warn("corrupt credential record",
			"client_id", clientID,
			"error", err.Error(),
		)
		return "", "", fmt.Errorf("credstore: decode %q: %w", clientID, err)
	}
	return rec.Username, rec.Password, nil
}

// Put stores the credentials for clientID.
func (s *Redis) Put(ctx context.Context, clientID string, rec Record) error {
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("credstore: encode %q: %w", clientID, err)
	}
	if err := s.client.Set(ctx, s.key(clientID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("credstore: set %q: %w", clientID, err)
	}
	s.log.Debug("credentials stored", "client_id", clientID)
	return nil
}

// Delete removes the credentials for clientID.
func (s *Redis) Delete(ctx context.Context, clientID string) error {
	if err := s.client.Del(ctx, s.key(clientID)).Err(); err != nil {
		return fmt.Errorf("credstore: delete %q: %w", clientID, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *Redis) Close() error {
	return s.client.Close()
}
