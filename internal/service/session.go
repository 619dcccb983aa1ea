package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	customError "github.com/lumapay/paylink/pkg/errors"
	"github.com/lumapay/paylink/pkg/utils"
)

// Session scopes. Client and admin sessions live in separate namespaces so
// a merchant token can never reach the back-office surface.
const (
	SessionScopeClient = "client"
	SessionScopeAdmin  = "admin"
)

// SessionStore keeps opaque session tokens in Redis with a sliding TTL
type SessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewSessionStore(redisClient *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{redis: redisClient, ttl: ttl}
}

func sessionKey(scope, token string) string {
	return "session:" + scope + ":" + token
}

// Create issues a fresh token for a principal
func (s *SessionStore) Create(ctx context.Context, scope string, principalID uuid.UUID) (string, error) {
	token := utils.NewSessionToken()
	if err := s.redis.Set(ctx, sessionKey(scope, token), principalID.String(), s.ttl).Err(); err != nil {
		return "", customError.WrapCacheError(err)
	}
	return token, nil
}

// Resolve maps a token back to its principal and refreshes the TTL
func (s *SessionStore) Resolve(ctx context.Context, scope, token string) (uuid.UUID, error) {
	key := sessionKey(scope, token)

	val, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, customError.ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, customError.WrapCacheError(err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, customError.ErrSessionNotFound
	}

	s.redis.Expire(ctx, key, s.ttl)
	return id, nil
}

// Destroy removes a token; destroying an unknown token is a no-op
func (s *SessionStore) Destroy(ctx context.Context, scope, token string) error {
	return s.redis.Del(ctx, sessionKey(scope, token)).Err()
}
