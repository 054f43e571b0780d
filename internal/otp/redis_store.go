package otp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// takeScript compares and deletes in one step so a code can only be redeemed once.
var takeScript = redis.NewScript(`
local code = redis.call('HGET', KEYS[1], 'code')
if not code then
	return 0
end
if code ~= ARGV[1] then
	local n = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
	if n >= tonumber(ARGV[2]) then
		redis.call('DEL', KEYS[1])
	end
	return 0
end
local token = redis.call('HMGET', KEYS[1], 'id', 'expires_at')
redis.call('DEL', KEYS[1])
return token
`)

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Put(ctx context.Context, tok Token, keep time.Duration) error {
	k := key(tok.Subject, tok.Purpose)

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k,
			"id", tok.ID,
			"code", tok.Code,
			"expires_at", tok.ExpiresAt.Unix(),
			"attempts", 0,
		)
		pipe.Expire(ctx, k, keep)
		return nil
	})
	return err
}

func (s *RedisStore) Take(ctx context.Context, subject, purpose, code string) (*Token, error) {
	res, err := takeScript.Run(ctx, s.rdb, []string{key(subject, purpose)}, code, MaxAttempts).Result()
	if err != nil {
		return nil, fmt.Errorf("redeem otp: %w", err)
	}

	fields, ok := res.([]interface{})
	if !ok || len(fields) != 2 {
		return nil, ErrInvalid
	}

	id, _ := fields[0].(string)
	expStr, _ := fields[1].(string)
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt otp expiry %q: %w", expStr, err)
	}

	return &Token{
		ID:        id,
		Subject:   subject,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: time.Unix(exp, 0),
	}, nil
}

var _ Store = (*RedisStore)(nil)
