package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"example.com/wordle-server/internal/store"
)

// WordSource is the dictionary behind the game.
type WordSource interface {
	IsValidWord(word string) bool
	PickRandomAnswer(ctx context.Context) (string, error)
}

// Manager binds secret answers to (user, session) pairs and keeps the
// per-user win/attempt ratio. It holds no state of its own; everything
// lives in the table.
type Manager struct {
	table store.Table
	words WordSource
	log   *slog.Logger
}

func NewManager(table store.Table, words WordSource, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{table: table, words: words, log: log}
}

// CreateSession picks a random answer and binds it to (userID, sessionID).
// An existing binding is left untouched and ErrSessionExists is returned.
func (m *Manager) CreateSession(ctx context.Context, userID, sessionID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if err := checkSessionID(userID, sessionID); err != nil {
		return err
	}

	answer, err := m.words.PickRandomAnswer(ctx)
	if err != nil {
		return fmt.Errorf("pick answer: %w", err)
	}

	err = m.table.Insert(ctx, store.Entity{
		PartitionKey: userID,
		RowKey:       sessionID,
		Answer:       &answer,
	})
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrSessionExists
	case err != nil:
		return storageErr(err)
	}

	m.log.Info("session created", "user", userID, "session", sessionID)
	return nil
}

func (m *Manager) GetAnswer(ctx context.Context, userID, sessionID string) (string, error) {
	if err := checkSessionID(userID, sessionID); err != nil {
		return "", err
	}
	e, found, err := m.table.Get(ctx, userID, sessionID)
	if err != nil {
		return "", storageErr(err)
	}
	if !found || e.Answer == nil {
		return "", ErrSessionNotFound
	}
	return *e.Answer, nil
}

func (m *Manager) ValidateGuess(word string) bool {
	return m.words.IsValidWord(word)
}

// CheckGuess colours guess against the session's answer without revealing it.
func (m *Manager) CheckGuess(ctx context.Context, userID, sessionID, guess string) (Result, error) {
	answer, err := m.GetAnswer(ctx, userID, sessionID)
	if err != nil {
		return Result{}, err
	}
	return Evaluate(guess, answer)
}

// GetRatio returns 0/0 for an empty userID or a user with no score yet.
func (m *Manager) GetRatio(ctx context.Context, userID string) (Ratio, error) {
	if userID == "" {
		return Ratio{}, nil
	}
	r, _, err := m.readRatio(ctx, userID)
	return r, err
}

func (m *Manager) IncrementNumerator(ctx context.Context, userID string) (Ratio, error) {
	return m.increment(ctx, userID, func(r *Ratio) { r.Wins++ })
}

func (m *Manager) IncrementDenominator(ctx context.Context, userID string) (Ratio, error) {
	return m.increment(ctx, userID, func(r *Ratio) { r.Attempts++ })
}

func (m *Manager) RemoveAllSessions(ctx context.Context, userID string, keepScore bool) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if err := m.table.DeleteAll(ctx, userID, keepScore); err != nil {
		return storageErr(err)
	}
	m.log.Info("sessions removed", "user", userID, "keep_score", keepScore)
	return nil
}

// RemoveSession is a no-op when the binding does not exist.
func (m *Manager) RemoveSession(ctx context.Context, userID, sessionID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if err := checkSessionID(userID, sessionID); err != nil {
		return err
	}
	if err := m.table.Delete(ctx, userID, sessionID); err != nil {
		return storageErr(err)
	}
	m.log.Info("session removed", "user", userID, "session", sessionID)
	return nil
}

// increment runs the read-modify-write on the score row, retrying once
// if another writer got there first.
func (m *Manager) increment(ctx context.Context, userID string, bump func(*Ratio)) (Ratio, error) {
	if userID == "" {
		return Ratio{}, ErrMissingUserID
	}

	for attempt := 0; attempt < 2; attempt++ {
		r, etag, err := m.readRatio(ctx, userID)
		if err != nil {
			return Ratio{}, err
		}
		bump(&r)

		score := r.String()
		err = m.table.Update(ctx, store.Entity{
			PartitionKey: userID,
			RowKey:       userID,
			Score:        &score,
			ETag:         etag,
		})
		if err == nil {
			m.log.Debug("score updated", "user", userID, "score", score)
			return r, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return Ratio{}, storageErr(err)
		}
		m.log.Debug("score update conflict", "user", userID, "attempt", attempt+1)
	}

	m.log.Warn("score update gave up", "user", userID)
	return Ratio{}, ErrConcurrentUpdateConflict
}

func (m *Manager) readRatio(ctx context.Context, userID string) (Ratio, string, error) {
	e, found, err := m.table.Get(ctx, userID, userID)
	if err != nil {
		return Ratio{}, "", storageErr(err)
	}
	if !found || e.Score == nil {
		return Ratio{}, e.ETag, nil
	}
	r, err := ParseRatio(*e.Score)
	if err != nil {
		return Ratio{}, "", err
	}
	return r, e.ETag, nil
}

// checkSessionID keeps sessions off the score row, which is keyed (userID, userID).
func checkSessionID(userID, sessionID string) error {
	if userID != "" && sessionID == userID {
		return ErrInvalidSessionID
	}
	return nil
}

func storageErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
