package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisTable keeps every row in its own hash and tracks the row keys of a
// partition in a set. Optimistic writes use WATCH/MULTI on the row hash.
type RedisTable struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisTable(rdb *redis.Client, prefix string) *RedisTable {
	if prefix == "" {
		prefix = "wordle"
	}
	return &RedisTable{rdb: rdb, prefix: prefix}
}

func (s *RedisTable) rowKey(partitionKey, rowKey string) string {
	return fmt.Sprintf("%s:entity:%s:%s", s.prefix, url.QueryEscape(partitionKey), url.QueryEscape(rowKey))
}

func (s *RedisTable) partitionKey(partitionKey string) string {
	return fmt.Sprintf("%s:partition:%s", s.prefix, url.QueryEscape(partitionKey))
}

func (s *RedisTable) Get(ctx context.Context, partitionKey, rowKey string) (Entity, bool, error) {
	vals, err := s.rdb.HGetAll(ctx, s.rowKey(partitionKey, rowKey)).Result()
	if err != nil {
		return Entity{}, false, fmt.Errorf("get entity: %w", err)
	}
	if len(vals) == 0 {
		return Entity{}, false, nil
	}

	e := Entity{PartitionKey: partitionKey, RowKey: rowKey, ETag: vals["version"]}
	if v, ok := vals["answer"]; ok {
		e.Answer = strPtr(v)
	}
	if v, ok := vals["score"]; ok {
		e.Score = strPtr(v)
	}
	return e, true, nil
}

// insertChecked runs between the existence check and EXEC in Insert.
var insertChecked = func(ctx context.Context, key string) {}

const insertAttempts = 3

// Insert retries when WATCH aborts. A delete aborts it too, so only the
// Exists check reports ErrAlreadyExists.
func (s *RedisTable) Insert(ctx context.Context, e Entity) error {
	key := s.rowKey(e.PartitionKey, e.RowKey)

	var err error
	for attempt := 0; attempt < insertAttempts; attempt++ {
		err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			n, err := tx.Exists(ctx, key).Result()
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrAlreadyExists
			}
			insertChecked(ctx, key)
			_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				s.writeRow(ctx, p, key, e, 1)
				return nil
			})
			return err
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAlreadyExists):
		return ErrAlreadyExists
	default:
		return fmt.Errorf("insert entity: %w", err)
	}
}

func (s *RedisTable) Update(ctx context.Context, e Entity) error {
	key := s.rowKey(e.PartitionKey, e.RowKey)

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.HGet(ctx, key, "version").Result()
		if err == redis.Nil {
			cur = ""
		} else if err != nil {
			return err
		}
		if cur != e.ETag {
			return ErrConflict
		}

		var next int64 = 1
		if cur != "" {
			v, err := strconv.ParseInt(cur, 10, 64)
			if err != nil {
				return fmt.Errorf("bad version %q: %w", cur, err)
			}
			next = v + 1
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			s.writeRow(ctx, p, key, e, next)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict), errors.Is(err, redis.TxFailedErr):
		return ErrConflict
	default:
		return fmt.Errorf("update entity: %w", err)
	}
}

func (s *RedisTable) Delete(ctx context.Context, partitionKey, rowKey string) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.rowKey(partitionKey, rowKey))
		p.SRem(ctx, s.partitionKey(partitionKey), rowKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete entity: %w", err)
	}
	return nil
}

func (s *RedisTable) DeleteAll(ctx context.Context, partitionKey string, keepScore bool) error {
	members, err := s.rdb.SMembers(ctx, s.partitionKey(partitionKey)).Result()
	if err != nil {
		return fmt.Errorf("list partition: %w", err)
	}

	var keys []string
	var rows []any
	for _, rk := range members {
		if keepScore && rk == partitionKey {
			continue
		}
		keys = append(keys, s.rowKey(partitionKey, rk))
		rows = append(rows, rk)
	}
	if len(keys) == 0 {
		return nil
	}

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, keys...)
		p.SRem(ctx, s.partitionKey(partitionKey), rows...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete partition: %w", err)
	}
	return nil
}

func (s *RedisTable) writeRow(ctx context.Context, p redis.Pipeliner, key string, e Entity, version int64) {
	fields := map[string]any{"version": strconv.FormatInt(version, 10)}
	if e.Answer != nil {
		fields["answer"] = *e.Answer
	}
	if e.Score != nil {
		fields["score"] = *e.Score
	}
	p.Del(ctx, key)
	p.HSet(ctx, key, fields)
	p.SAdd(ctx, s.partitionKey(e.PartitionKey), e.RowKey)
}
