package corpus

import (
	"context"
	"fmt"
	"os"
)

// Source fetches the two raw word lists.
type Source interface {
	ValidWords(ctx context.Context) ([]byte, error)
	Answers(ctx context.Context) ([]byte, error)
}

// Load reads both lists from src and builds the corpus.
func Load(ctx context.Context, src Source) (*Corpus, error) {
	valid, err := src.ValidWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("corpus: valid words: %w", err)
	}
	answers, err := src.Answers(ctx)
	if err != nil {
		return nil, fmt.Errorf("corpus: answers: %w", err)
	}
	return New(Parse(valid), Parse(answers))
}

// FileSource reads the lists from local files.
type FileSource struct {
	ValidPath   string
	AnswersPath string
}

func (s FileSource) ValidWords(ctx context.Context) ([]byte, error) {
	return readFile(ctx, s.ValidPath)
}

func (s FileSource) Answers(ctx context.Context) ([]byte, error) {
	return readFile(ctx, s.AnswersPath)
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
