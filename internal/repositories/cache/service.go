package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carepay/internal/models"

	"github.com/redis/go-redis/v9"
)

// CacheService wraps Redis for read-side caching. Wallet rows are the only
// cached financial entity, and callers must invalidate on every write path;
// available balance for withdrawals is always computed from the database.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Wallet caching
func (s *CacheService) CacheWallet(ctx context.Context, wallet *models.Wallet) error {
	key := s.GenerateKey("wallet", "caregiver", wallet.CaregiverID)
	return s.Set(ctx, key, wallet)
}

func (s *CacheService) GetWallet(ctx context.Context, caregiverID uint) (*models.Wallet, error) {
	key := s.GenerateKey("wallet", "caregiver", caregiverID)
	var wallet models.Wallet
	found, err := s.Get(ctx, key, &wallet)
	if err != nil || !found {
		return nil, err
	}
	return &wallet, nil
}

func (s *CacheService) InvalidateWallet(ctx context.Context, caregiverID uint) error {
	return s.Delete(ctx, s.GenerateKey("wallet", "caregiver", caregiverID))
}

// Dispute stats caching for the admin dashboard.
func (s *CacheService) CacheDisputeStats(ctx context.Context, stats interface{}) error {
	return s.SetWithTTL(ctx, "dispute:stats", stats, 5*time.Minute)
}

func (s *CacheService) GetDisputeStats(ctx context.Context, dest interface{}) (bool, error) {
	return s.Get(ctx, "dispute:stats", dest)
}

func (s *CacheService) InvalidateDisputeStats(ctx context.Context) error {
	return s.Delete(ctx, "dispute:stats")
}

// HealthCheck pings Redis.
func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
