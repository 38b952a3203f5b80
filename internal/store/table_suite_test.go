package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runTableSuite checks the Table contract against any implementation.
// newTable must return an empty table.
func runTableSuite(t *testing.T, newTable func(t *testing.T) Table) {
	t.Helper()

	t.Run("get_absent", func(t *testing.T) {
		tbl := newTable(t)
		e, ok, err := tbl.Get(context.Background(), "alice", "s1")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, e.Answer)
		assert.Nil(t, e.Score)
	})

	t.Run("insert_then_get", func(t *testing.T) {
		ctx := context.Background()
		tbl := newTable(t)

		require.NoError(t, tbl.Insert(ctx, Entity{PartitionKey: "alice", RowKey: "s1", Answer: strPtr("CRANE")}))

		e, ok, err := tbl.Get(ctx, "alice", "s1")
		require.NoError(t, err)
		require.True(t, ok)
		require.NotNil(t, e.Answer)
		assert.Equal(t, "CRANE", *e.Answer)
		assert.Nil(t, e.Score)
		assert.NotEmpty(t, e.ETag)
	})

	t.Run("insert_existing", func(t *testing.T) {
		ctx := context.Background()
		tbl := newTable(t)

		require.NoError(t, tbl.Insert(ctx, Entity{PartitionKey: "alice", RowKey: "s1", Answer: strPtr("CRANE")}))
		err := tbl.Insert(ctx, Entity{PartitionKey: "alice", RowKey: "s1", Answer: strPtr("SLATE")})
		require.ErrorIs(t, err, ErrAlreadyExists)

		e, _, err := tbl.Get(ctx, "alice", "s1")
		require.NoError(t, err)
		assert.Equal(t, "CRANE", *e.Answer)
	})

	t.Run("update_inserts_when_absent", func(t *testing.T) {
		ctx := context.Background()
		tbl := newTable(t)

		require.NoError(t, tbl.Update(ctx, Entity{PartitionKey: "bob", RowKey: "bob", Score: strPtr("1/0")}))

		e, ok, err := tbl.Get(ctx, "bob", "bob")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "1/0", *e.Score)
	})

	t.Run("update_replaces_with_matching_etag", func(t *testing.T) {
		ctx := context.Background()
		tbl := newTable(t)

		require.NoError(t, tbl.Update(ctx, Entity{PartitionKey: "bob", RowKey: "bob", Score: strPtr("1/0")}))
		cur, _, err := tbl.Get(ctx, "bob", "bob")
		require.NoError(t, err)

		cur.Score = strPtr("2/0")
		require.NoError(t, tbl.Update(ctx, cur))

		next, _, err := tbl.Get(ctx, "bob", "bob")
		require.NoError(t, err)
		assert.Equal(t, "2/0", *next.Score)
		assert.NotEqual(t, cur.ETag, next.ETag)
	})

	t.Run("update_stale_etag_conflicts", func(t *testing.T) {
		ctx := context.Background()
		tbl := newTable(t)

		require.NoError(t, tbl.Update(ctx, Entity{PartitionKey: "bob", RowKey: "bob", Score: strPtr("0/1")}))
		stale, _, err := tbl.Get(ctx, "bob", "bob")
		require.NoError(t, err)

		fresh := stale
		fresh.Score = strPtr("1/1")
		require.NoError(t, tbl.Update(ctx, fresh))

		stale.Score = strPtr("0/2")
		require.ErrorIs(t, tbl.Update(ctx, stale), ErrConflict)

		e, _, err := tbl.Get(ctx, "bob", "bob")
		require.NoError(t, err)
		assert.Equal(t, "1/1", *e.Score)
	})

	t.Run("update_empty_etag_on_existing_conflicts", func(t *testing.T) {
		ctx := context.Background()
		tbl := newTable(t)

		require.NoError(t, tbl.Update(ctx, Entity{PartitionKey: "bob", RowKey: "bob", Score: strPtr("1/0")}))
		require.ErrorIs(t, tbl.Update(ctx, Entity{PartitionKey: "bob", RowKey: "bob", Score: strPtr("1/0")}), ErrConflict)
	})

	t.Run("update_etag_on_vanished_row_conflicts", func(t *testing.T) {
		ctx := context.Background()
		tbl := newTable(t)

		require.NoError(t, tbl.Update(ctx, Entity{PartitionKey: "bob", RowKey: "bob", Score: strPtr("1/0")}))
		cur, _, err := tbl.Get(ctx, "bob", "bob")
		require.NoError(t, err)
		require.NoError(t, tbl.Delete(ctx, "bob", "bob"))

		require.ErrorIs(t, tbl.Update(ctx, cur), ErrConflict)
	})

	t.Run("delete_absent_is_noop", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.Delete(context.Background(), "nobody", "nothing"))
	})

	t.Run("delete_all_keep_score", func(t *testing.T) {
		ctx := context.Background()
		tbl := newTable(t)

		require.NoError(t, tbl.Insert(ctx, Entity{PartitionKey: "alice", RowKey: "s1", Answer: strPtr("CRANE")}))
		require.NoError(t, tbl.Insert(ctx, Entity{PartitionKey: "alice", RowKey: "s2", Answer: strPtr("SLATE")}))
		require.NoError(t, tbl.Insert(ctx, Entity{PartitionKey: "alice", RowKey: "alice", Score: strPtr("3/5")}))
		require.NoError(t, tbl.Insert(ctx, Entity{PartitionKey: "carol", RowKey: "s1", Answer: strPtr("PIANO")}))

		require.NoError(t, tbl.DeleteAll(ctx, "alice", true))

		for _, rk := range []string{"s1", "s2"} {
			_, ok, err := tbl.Get(ctx, "alice", rk)
			require.NoError(t, err)
			assert.False(t, ok, "row %s should be gone", rk)
		}
		score, ok, err := tbl.Get(ctx, "alice", "alice")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "3/5", *score.Score)

		_, ok, err = tbl.Get(ctx, "carol", "s1")
		require.NoError(t, err)
		assert.True(t, ok, "other partitions are untouched")
	})

	t.Run("delete_all_drop_score", func(t *testing.T) {
		ctx := context.Background()
		tbl := newTable(t)

		require.NoError(t, tbl.Insert(ctx, Entity{PartitionKey: "alice", RowKey: "s1", Answer: strPtr("CRANE")}))
		require.NoError(t, tbl.Insert(ctx, Entity{PartitionKey: "alice", RowKey: "alice", Score: strPtr("3/5")}))

		require.NoError(t, tbl.DeleteAll(ctx, "alice", false))

		_, ok, err := tbl.Get(ctx, "alice", "alice")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete_all_empty_partition", func(t *testing.T) {
		tbl := newTable(t)
		require.NoError(t, tbl.DeleteAll(context.Background(), "nobody", true))
	})

	t.Run("concurrent_updates_one_winner", func(t *testing.T) {
		ctx := context.Background()
		tbl := newTable(t)

		require.NoError(t, tbl.Update(ctx, Entity{PartitionKey: "bob", RowKey: "bob", Score: strPtr("0/0")}))
		base, _, err := tbl.Get(ctx, "bob", "bob")
		require.NoError(t, err)

		const writers = 8
		errs := make([]error, writers)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				e := base
				e.Score = strPtr("1/0")
				errs[i] = tbl.Update(ctx, e)
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			require.ErrorIs(t, err, ErrConflict)
		}
		assert.Equal(t, 1, wins)
	})
}
