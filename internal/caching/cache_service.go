package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"harborlink/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	organizationTTL = 10 * time.Minute
	permissionsTTL  = 5 * time.Minute
)

// CacheService fronts hot authorization and directory reads. Cache
// misses and transport errors are indistinguishable to callers on
// purpose; every caller falls through to the database.
type CacheService interface {
	GetOrganization(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
	SetOrganization(ctx context.Context, org *models.Organization) error
	DeleteOrganization(ctx context.Context, orgID uuid.UUID) error

	GetPermissions(ctx context.Context, userID uuid.UUID) ([]string, error)
	SetPermissions(ctx context.Context, userID uuid.UUID, perms []string) error
	DeletePermissions(ctx context.Context, userID uuid.UUID) error

	// Generic string operations for token bookkeeping
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	addr = strings.TrimPrefix(addr, "redis://")
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCacheService{client: client}
}

func orgKey(orgID uuid.UUID) string {
	return fmt.Sprintf("org:%s", orgID)
}

func permsKey(userID uuid.UUID) string {
	return fmt.Sprintf("perms:%s", userID)
}

func (s *redisCacheService) GetOrganization(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	data, err := s.client.Get(ctx, orgKey(orgID)).Bytes()
	if err != nil {
		return nil, err
	}
	org := &models.Organization{}
	if err := json.Unmarshal(data, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *redisCacheService) SetOrganization(ctx context.Context, org *models.Organization) error {
	data, err := json.Marshal(org)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, orgKey(org.ID), data, organizationTTL).Err()
}

func (s *redisCacheService) DeleteOrganization(ctx context.Context, orgID uuid.UUID) error {
	return s.client.Del(ctx, orgKey(orgID)).Err()
}

func (s *redisCacheService) GetPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	data, err := s.client.Get(ctx, permsKey(userID)).Bytes()
	if err != nil {
		return nil, err
	}
	var perms []string
	if err := json.Unmarshal(data, &perms); err != nil {
		return nil, err
	}
	if perms == nil {
		perms = []string{}
	}
	return perms, nil
}

func (s *redisCacheService) SetPermissions(ctx context.Context, userID uuid.UUID, perms []string) error {
	if perms == nil {
		perms = []string{}
	}
	data, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, permsKey(userID), data, permissionsTTL).Err()
}

func (s *redisCacheService) DeletePermissions(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, permsKey(userID)).Err()
}

func (s *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *redisCacheService) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
