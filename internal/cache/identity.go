package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flashdeck/flashdeck/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for resolved users.
	identityCachePrefix = "identity:user:"
	defaultIdentityTTL  = 5 * time.Minute
)

// cachedUser is the JSON form of a user stored in Redis.
type cachedUser struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name,omitempty"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

// GetUser returns the cached user for an email.
// A miss or a corrupted entry returns (nil, nil); only transport errors are reported.
func (c *Cache) GetUser(ctx context.Context, email string) (*model.User, error) {
	data, err := c.client.Get(ctx, identityKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached user: %w", err)
	}

	var cached cachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, nil //nolint:nilerr
	}
	// Lookups are exact-match in the store, so the cache must be too.
	if cached.Email != email {
		return nil, nil
	}

	return &model.User{
		ID:        cached.ID,
		Email:     cached.Email,
		Name:      cached.Name,
		CreatedAt: time.UnixMilli(cached.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(cached.UpdatedAt).UTC(),
	}, nil
}

// SetUser caches a resolved user under its email.
func (c *Cache) SetUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.UnixMilli(),
		UpdatedAt: user.UpdatedAt.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return c.client.Set(ctx, identityKey(user.Email), data, c.identityTTL).Err()
}

// DeleteUser drops the cached entry for an email.
func (c *Cache) DeleteUser(ctx context.Context, email string) error {
	return c.client.Del(ctx, identityKey(email)).Err()
}

// identityKey hashes the email as given so raw addresses never appear in
// key names. No case folding: users.email is matched exactly.
func identityKey(email string) string {
	hash := sha256.Sum256([]byte(email))
	return identityCachePrefix + hex.EncodeToString(hash[:])
}
