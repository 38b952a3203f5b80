package store

import (
	"context"
	"errors"
)

var (
	ErrAlreadyExists = errors.New("entity already exists")
	// ErrConflict means the row changed (or appeared, or vanished) since the
	// ETag passed to Update was read.
	ErrConflict = errors.New("entity version conflict")
)

// Entity is one row of the game table.
//
// Sessions live at (userID, sessionID) and carry Answer.
// The score record lives at (userID, userID) and carries Score.
type Entity struct {
	PartitionKey string
	RowKey       string

	Answer *string
	Score  *string

	// ETag is the opaque version token of the row as read by Get.
	// Empty on a row that has not been read from the table.
	ETag string
}

// IsScoreRow reports whether the row is the self-keyed score record.
func (e Entity) IsScoreRow() bool {
	return e.PartitionKey == e.RowKey
}

// Table is the durable key-value store behind the game.
type Table interface {
	// Get returns found=false and a zero Entity when the row is absent.
	Get(ctx context.Context, partitionKey, rowKey string) (Entity, bool, error)

	// Insert fails with ErrAlreadyExists if the row exists.
	Insert(ctx context.Context, e Entity) error

	// Update is an upsert guarded by e.ETag:
	//   - ETag == "": the row must not exist yet, it is inserted;
	//   - ETag != "": the row is replaced only if its version still matches.
	// Any mismatch yields ErrConflict.
	Update(ctx context.Context, e Entity) error

	// Delete is a no-op when the row is absent.
	Delete(ctx context.Context, partitionKey, rowKey string) error

	// DeleteAll removes every row of the partition. With keepScore the
	// self-keyed score row survives.
	DeleteAll(ctx context.Context, partitionKey string, keepScore bool) error
}

func strPtr(s string) *string { return &s }
