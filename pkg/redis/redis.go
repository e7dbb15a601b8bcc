package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

// Blacklist records revoked access tokens by their token id until the token
// would have expired anyway. A nil *Blacklist revokes nothing and reports
// every token as live, which is how the service runs without Redis.
type Blacklist struct {
	client *redis.Client
}

// Init connects to Redis and verifies the connection.
func Init(cfg *config.RedisConfig) (*Blacklist, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return &Blacklist{client: client}, nil
}

// NewBlacklist wraps an existing client.
func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

// Close closes the Redis connection
func (b *Blacklist) Close() error {
	if b == nil || b.client == nil {
		return nil
	}
	logger.Info("Closing Redis connection")
	return b.client.Close()
}

// Revoke blacklists tokenID for ttl. Non-positive ttls are skipped because the
// token is already expired.
func (b *Blacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if b == nil || b.client == nil || ttl <= 0 {
		return nil
	}

	logger.Debug("Adding token to blacklist", map[string]interface{}{
		"token_id": tokenID,
		"expiry":   ttl.String(),
	})

	if err := b.client.Set(ctx, blacklistPrefix+tokenID, "revoked", ttl).Err(); err != nil {
		logger.Error("Failed to blacklist token", err, map[string]interface{}{
			"token_id": tokenID,
		})
		return err
	}

	logger.Debug("Token successfully blacklisted", map[string]interface{}{
		"token_id": tokenID,
	})
	return nil
}

// IsRevoked checks whether tokenID was blacklisted.
func (b *Blacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if b == nil || b.client == nil {
		return false, nil
	}

	val, err := b.client.Get(ctx, blacklistPrefix+tokenID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err, map[string]interface{}{
			"token_id": tokenID,
		})
		return false, err
	}
	return val == "revoked", nil
}
