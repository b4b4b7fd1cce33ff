package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"schoolauth/internal/domain"

	"github.com/redis/go-redis/v9"
)

// expiredRetention keeps a record readable past its expiry so the first
// probe after expiry can still tell "expired" from "unknown".
const expiredRetention = 24 * time.Hour

// saveTokenScript swaps the user's pointer to the new token hash and drops
// the token it used to point at, in one step.
//
// KEYS[1] user key, KEYS[2] new token key
// ARGV[1] new hash, ARGV[2] record json, ARGV[3] ttl ms, ARGV[4] token key prefix
const saveTokenScript = `
local old = redis.call("GET", KEYS[1])
if old and old ~= ARGV[1] then
  redis.call("DEL", ARGV[4] .. old)
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
return 1
`

// deleteTokenScript removes a token and clears the user pointer only when it
// still refers to that token.
//
// KEYS[1] token key, KEYS[2] user key; ARGV[1] hash
const deleteTokenScript = `
local removed = redis.call("DEL", KEYS[1])
if redis.call("GET", KEYS[2]) == ARGV[1] then
  redis.call("DEL", KEYS[2])
end
return removed
`

// deleteByUserScript: KEYS[1] user key; ARGV[1] token key prefix
const deleteByUserScript = `
local hash = redis.call("GET", KEYS[1])
if not hash then
  return 0
end
redis.call("DEL", KEYS[1])
return redis.call("DEL", ARGV[1] .. hash)
`

var (
	saveTokenLua    = redis.NewScript(saveTokenScript)
	deleteTokenLua  = redis.NewScript(deleteTokenScript)
	deleteByUserLua = redis.NewScript(deleteByUserScript)
)

// RedisRefreshTokenRepository stores refresh tokens as JSON records keyed by
// token hash, with a per-user pointer enforcing one live token per user.
type RedisRefreshTokenRepository struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisRefreshTokenRepository(client redis.UniversalClient, prefix string) *RedisRefreshTokenRepository {
	return &RedisRefreshTokenRepository{
		client: client,
		prefix: prefix + ":rt:",
		now:    time.Now,
	}
}

type redisRefreshRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *RedisRefreshTokenRepository) tokenPrefix() string {
	return r.prefix + "token:"
}

func (r *RedisRefreshTokenRepository) tokenKey(hash string) string {
	return r.tokenPrefix() + hash
}

func (r *RedisRefreshTokenRepository) userKey(userID int64) string {
	return r.prefix + "user:" + strconv.FormatInt(userID, 10)
}

func (r *RedisRefreshTokenRepository) Save(ctx context.Context, t *domain.RefreshToken) error {
	id, err := r.client.Incr(ctx, r.prefix+"seq").Result()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(redisRefreshRecord{
		ID:        id,
		UserID:    t.UserID,
		ExpiresAt: t.ExpiresAt.UTC(),
		CreatedAt: t.CreatedAt.UTC(),
	})
	if err != nil {
		return err
	}

	ttl := t.ExpiresAt.Sub(r.now()) + expiredRetention
	if ttl <= 0 {
		ttl = expiredRetention
	}

	err = saveTokenLua.Run(ctx, r.client,
		[]string{r.userKey(t.UserID), r.tokenKey(t.TokenHash)},
		t.TokenHash, payload, ttl.Milliseconds(), r.tokenPrefix(),
	).Err()
	if err != nil {
		return err
	}

	t.ID = id
	return nil
}

func (r *RedisRefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	raw, err := r.client.Get(ctx, r.tokenKey(hash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rec redisRefreshRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}

	return &domain.RefreshToken{
		ID:        rec.ID,
		UserID:    rec.UserID,
		TokenHash: hash,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (r *RedisRefreshTokenRepository) Delete(ctx context.Context, t *domain.RefreshToken) error {
	return deleteTokenLua.Run(ctx, r.client,
		[]string{r.tokenKey(t.TokenHash), r.userKey(t.UserID)},
		t.TokenHash,
	).Err()
}

func (r *RedisRefreshTokenRepository) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	return deleteByUserLua.Run(ctx, r.client,
		[]string{r.userKey(userID)},
		r.tokenPrefix(),
	).Int64()
}

// DeleteExpired is a no-op: Redis evicts records once their retention ends.
func (r *RedisRefreshTokenRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
