package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const pendingSuffix = ":pending"

// compareAndPut sets the hash field ARGV[1] to ARGV[3] if it currently
// holds ARGV[2], a missing field counting as "". ARGV[4] is the TTL in ms.
var compareAndPut = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if not cur then cur = '' end
if cur ~= ARGV[2] then return 0 end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
if tonumber(ARGV[4]) > 0 then redis.call('PEXPIRE', KEYS[1], ARGV[4]) end
return 1
`)

// RedisLedger stores a session's entries in one Redis hash that expires
// with the session.
type RedisLedger struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

func NewRedisLedger(client redis.Cmdable, sessionID string, ttl time.Duration) *RedisLedger {
	return &RedisLedger{
		client: client,
		key:    fmt.Sprintf("session:%s:likes", sessionID),
		ttl:    ttl,
	}
}

func field(recipeID, userID uuid.UUID) string {
	return recipeID.String() + ":" + userID.String()
}

func (l *RedisLedger) Get(ctx context.Context, recipeID, userID uuid.UUID) (Entry, error) {
	v, err := l.client.HGet(ctx, l.key, field(recipeID, userID)).Result()
	if err == redis.Nil {
		return Entry{}, nil
	}
	if err != nil {
		return Entry{}, err
	}
	e := Entry{State: LikeState(strings.TrimSuffix(v, pendingSuffix))}
	e.Pending = strings.HasSuffix(v, pendingSuffix)
	return e, nil
}

func encode(e Entry) string {
	if e.Pending {
		return string(e.State) + pendingSuffix
	}
	return string(e.State)
}

func (l *RedisLedger) Put(ctx context.Context, recipeID, userID uuid.UUID, e Entry) error {
	pipe := l.client.TxPipeline()
	pipe.HSet(ctx, l.key, field(recipeID, userID), encode(e))
	if l.ttl > 0 {
		pipe.Expire(ctx, l.key, l.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (l *RedisLedger) CompareAndPut(ctx context.Context, recipeID, userID uuid.UUID, old, next Entry) (bool, error) {
	n, err := compareAndPut.Run(ctx, l.client, []string{l.key},
		field(recipeID, userID), encode(old), encode(next), l.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RedisRegistry builds RedisLedgers sharing one client.
type RedisRegistry struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisRegistry(client redis.Cmdable, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{client: client, ttl: ttl}
}

func (r *RedisRegistry) Ledger(sessionID string) Ledger {
	return NewRedisLedger(r.client, sessionID, r.ttl)
}
