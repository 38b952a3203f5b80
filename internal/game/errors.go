package game

import "errors"

var (
	ErrInvalidInputLength       = errors.New("guess and answer must be 5 letters")
	ErrSessionNotFound          = errors.New("session not found")
	ErrSessionExists            = errors.New("session already exists")
	ErrInvalidSessionID         = errors.New("session id must differ from user id")
	ErrStorageUnavailable       = errors.New("storage unavailable")
	ErrConcurrentUpdateConflict = errors.New("concurrent update conflict")
	ErrMalformedScoreRecord     = errors.New("malformed score record")
	ErrMissingUserID            = errors.New("missing user id")
)
