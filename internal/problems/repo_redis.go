package problems

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisRepo stores problems in three keys under a prefix:
// - <prefix>:problems:next_id  last assigned id (INCR gives the next one)
// - <prefix>:problems:order    sorted set, member and score are the id
// - <prefix>:problems:data     hash, id -> JSON body without the id
//
// Mutations run as Lua scripts so the counter, order and data move together.
type RedisRepo struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisRepo(rdb redis.UniversalClient, prefix string) *RedisRepo {
	if prefix == "" {
		prefix = "dsa"
	}
	return &RedisRepo{rdb: rdb, prefix: prefix}
}

func (r *RedisRepo) keys() []string {
	return []string{
		r.prefix + ":problems:next_id",
		r.prefix + ":problems:order",
		r.prefix + ":problems:data",
	}
}

type redisBody struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Difficulty string `json:"difficulty"`
	Status     string `json:"status"`
}

var seedScript = redis.NewScript(`
-- KEYS: next_id, order, data
-- ARGV[1] = last seed id, then id/body pairs
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
for i = 2, #ARGV, 2 do
  redis.call('HSET', KEYS[3], ARGV[i], ARGV[i + 1])
  redis.call('ZADD', KEYS[2], ARGV[i], ARGV[i])
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

var createScript = redis.NewScript(`
-- KEYS: next_id, order, data
-- ARGV[1] = body
local id = tostring(redis.call('INCR', KEYS[1]))
redis.call('HSET', KEYS[3], id, ARGV[1])
redis.call('ZADD', KEYS[2], id, id)
return id
`)

var deleteScript = redis.NewScript(`
-- KEYS: order, data
-- ARGV[1] = id
if redis.call('HDEL', KEYS[2], ARGV[1]) == 0 then
  return 0
end
redis.call('ZREM', KEYS[1], ARGV[1])
return 1
`)

// EnsureSeeded writes the seed problems if the counter key does not exist yet.
// It reports whether seeding happened.
func (r *RedisRepo) EnsureSeeded(ctx context.Context) (bool, error) {
	seeds := SeedProblems()
	args := []any{firstFreeID - 1}
	for _, p := range seeds {
		b, err := json.Marshal(toRedisBody(p.Name, p.URL, p.Difficulty, p.Status))
		if err != nil {
			return false, err
		}
		args = append(args, strconv.Itoa(p.ID), string(b))
	}
	res, err := seedScript.Run(ctx, r.rdb, r.keys(), args...).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (r *RedisRepo) List(ctx context.Context) ([]Problem, error) {
	k := r.keys()
	ids, err := r.rdb.ZRange(ctx, k[1], 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Problem, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	vals, err := r.rdb.HMGet(ctx, k[2], ids...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// deleted between ZRANGE and HMGET
			continue
		}
		p, err := decodeRedisProblem(ids[i], s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *RedisRepo) Create(ctx context.Context, req CreateProblemRequest) (Problem, error) {
	b, err := json.Marshal(toRedisBody(req.Name, req.URL, req.Difficulty, req.Status))
	if err != nil {
		return Problem{}, err
	}
	idStr, err := createScript.Run(ctx, r.rdb, r.keys(), string(b)).Text()
	if err != nil {
		return Problem{}, err
	}
	return decodeRedisProblem(idStr, string(b))
}

func (r *RedisRepo) Get(ctx context.Context, id int) (Problem, error) {
	s, err := r.rdb.HGet(ctx, r.keys()[2], strconv.Itoa(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Problem{}, ErrNotFound
		}
		return Problem{}, err
	}
	return decodeRedisProblem(strconv.Itoa(id), s)
}

func (r *RedisRepo) Delete(ctx context.Context, id int) error {
	k := r.keys()
	res, err := deleteScript.Run(ctx, r.rdb, []string{k[1], k[2]}, strconv.Itoa(id)).Int()
	if err != nil {
		return err
	}
	if res == 0 {
		return ErrNotFound
	}
	return nil
}

func toRedisBody(name, url, difficulty, status string) redisBody {
	return redisBody{Name: name, URL: url, Difficulty: difficulty, Status: status}
}

func decodeRedisProblem(idStr, body string) (Problem, error) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return Problem{}, fmt.Errorf("redis: bad problem id %q: %w", idStr, err)
	}
	var b redisBody
	if err := json.Unmarshal([]byte(body), &b); err != nil {
		return Problem{}, fmt.Errorf("redis: bad problem body for %d: %w", id, err)
	}
	return Problem{ID: id, Name: b.Name, URL: b.URL, Difficulty: b.Difficulty, Status: b.Status}, nil
}
