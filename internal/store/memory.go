package store

import (
	"context"
	"strconv"
	"sync"
)

type memKey struct {
	pk string
	rk string
}

type memRow struct {
	answer  *string
	score   *string
	version int64
}

// MemoryTable keeps rows in process memory. Used by tests and STORAGE_BACKEND=memory.
type MemoryTable struct {
	mu      sync.Mutex
	rows    map[memKey]memRow
	version int64
}

func NewMemoryTable() *MemoryTable {
	return &MemoryTable{
		rows: make(map[memKey]memRow),
	}
}

func (t *MemoryTable) Get(ctx context.Context, partitionKey, rowKey string) (Entity, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entity{}, false, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rows[memKey{partitionKey, rowKey}]
	if !ok {
		return Entity{}, false, nil
	}
	return Entity{
		PartitionKey: partitionKey,
		RowKey:       rowKey,
		Answer:       copyStr(r.answer),
		Score:        copyStr(r.score),
		ETag:         strconv.FormatInt(r.version, 10),
	}, true, nil
}

func (t *MemoryTable) Insert(ctx context.Context, e Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	k := memKey{e.PartitionKey, e.RowKey}
	if _, ok := t.rows[k]; ok {
		return ErrAlreadyExists
	}
	t.putLocked(k, e)
	return nil
}

func (t *MemoryTable) Update(ctx context.Context, e Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	k := memKey{e.PartitionKey, e.RowKey}
	cur, ok := t.rows[k]
	switch {
	case !ok && e.ETag != "":
		return ErrConflict
	case ok && e.ETag != strconv.FormatInt(cur.version, 10):
		return ErrConflict
	}
	t.putLocked(k, e)
	return nil
}

func (t *MemoryTable) Delete(ctx context.Context, partitionKey, rowKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rows, memKey{partitionKey, rowKey})
	return nil
}

func (t *MemoryTable) DeleteAll(ctx context.Context, partitionKey string, keepScore bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.rows {
		if k.pk != partitionKey {
			continue
		}
		if keepScore && k.rk == partitionKey {
			continue
		}
		delete(t.rows, k)
	}
	return nil
}

// Len returns the number of stored rows.
func (t *MemoryTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

func (t *MemoryTable) putLocked(k memKey, e Entity) {
	t.version++
	t.rows[k] = memRow{
		answer:  copyStr(e.Answer),
		score:   copyStr(e.Score),
		version: t.version,
	}
}

func copyStr(p *string) *string {
	if p == nil {
		return nil
	}
	return strPtr(*p)
}
