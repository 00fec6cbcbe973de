package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// The four persisted remember-me keys. They are written together on an
// opted-in login and always cleared together.
const (
	keyRememberMe     = "rememberMe"
	keyUserEmail      = "userEmail"
	keyUserPassword   = "userPassword"
	keyAuthExpiration = "authExpiration"
)

// Credentials is the persisted remember-me state for one device.
type Credentials struct {
	RememberMe bool
	Email      string
	Password   string
	// Expiration is the moment the stored credentials stop being usable,
	// fixed at 30 days from the login that enabled remember-me.
	Expiration time.Time
}

// Expired compares against the given instant as a single duration-since-epoch
// comparison. A zero expiration counts as expired.
func (c Credentials) Expired(now time.Time) bool {
	if c.Expiration.IsZero() {
		return true
	}
	return c.Expiration.Unix() < now.Unix()
}

// CredentialStore persists the four remember-me keys per device.
type CredentialStore interface {
	Save(ctx context.Context, deviceID string, creds Credentials) error
	Load(ctx context.Context, deviceID string) (Credentials, error)
	Clear(ctx context.Context, deviceID string) error
}

// RedisCredentialStore implements CredentialStore on Redis, one hash per
// device.
type RedisCredentialStore struct {
	client *redis.Client
}

// NewRedisCredentialStore creates a new RedisCredentialStore
func NewRedisCredentialStore(client *redis.Client) *RedisCredentialStore {
	return &RedisCredentialStore{client: client}
}

func credentialKey(deviceID string) string {
	return "auth:remember:" + deviceID
}

// Save writes all four keys for the device.
func (s *RedisCredentialStore) Save(ctx context.Context, deviceID string, creds Credentials) error {
	fields := map[string]any{
		keyRememberMe:     strconv.FormatBool(creds.RememberMe),
		keyUserEmail:      creds.Email,
		keyUserPassword:   creds.Password,
		keyAuthExpiration: strconv.FormatInt(creds.Expiration.Unix(), 10),
	}
	if err := s.client.HSet(ctx, credentialKey(deviceID), fields).Err(); err != nil {
		return fmt.Errorf("saving remember-me credentials: %w", err)
	}
	return nil
}

// Load reads the device's stored credentials. A device with nothing stored
// yields zero-value Credentials, which read as disabled and expired.
func (s *RedisCredentialStore) Load(ctx context.Context, deviceID string) (Credentials, error) {
	fields, err := s.client.HGetAll(ctx, credentialKey(deviceID)).Result()
	if err != nil {
		return Credentials{}, fmt.Errorf("loading remember-me credentials: %w", err)
	}

	creds := Credentials{
		RememberMe: fields[keyRememberMe] == "true",
		Email:      fields[keyUserEmail],
		Password:   fields[keyUserPassword],
	}
	if raw := fields[keyAuthExpiration]; raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			creds.Expiration = time.Unix(secs, 0)
		}
	}
	return creds, nil
}

// Clear removes all four keys for the device.
func (s *RedisCredentialStore) Clear(ctx context.Context, deviceID string) error {
	if err := s.client.Del(ctx, credentialKey(deviceID)).Err(); err != nil {
		return fmt.Errorf("clearing remember-me credentials: %w", err)
	}
	return nil
}
