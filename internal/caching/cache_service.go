package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"torqbay/internal/models"
)

type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	// Installation rule caching, keyed by the rule key triple
	GetRule(ctx context.Context, category string, subCategory, subSubCategory *string) (*models.InstallationRule, error)
	SetRule(ctx context.Context, rule *models.InstallationRule, ttl time.Duration) error
	InvalidateRules(ctx context.Context) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	key := fmt.Sprintf("torqbay:product:%s", productID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	key := fmt.Sprintf("torqbay:product:%s", product.ID.String())
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	key := fmt.Sprintf("torqbay:product:%s", productID.String())
	return r.client.Del(ctx, key).Err()
}

// ruleKey flattens the key triple; absent levels render as "-" so partial and
// full keys never collide.
func ruleKey(category string, subCategory, subSubCategory *string) string {
	sub, subSub := "-", "-"
	if subCategory != nil {
		sub = *subCategory
	}
	if subSubCategory != nil {
		subSub = *subSubCategory
	}
	return fmt.Sprintf("torqbay:rule:%s:%s:%s", category, sub, subSub)
}

func (r *redisCacheService) GetRule(ctx context.Context, category string, subCategory, subSubCategory *string) (*models.InstallationRule, error) {
	data, err := r.client.Get(ctx, ruleKey(category, subCategory, subSubCategory)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var rule models.InstallationRule
	if err := json.Unmarshal(data, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *redisCacheService) SetRule(ctx context.Context, rule *models.InstallationRule, ttl time.Duration) error {
	data, err := json.Marshal(rule)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, ruleKey(rule.Category, rule.SubCategory, rule.SubSubCategory), data, ttl).Err()
}

func (r *redisCacheService) InvalidateRules(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, "torqbay:rule:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("torqbay:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
