package corpus

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

const wordLength = 5

var ErrEmptyCorpus = errors.New("corpus: no answers")

// Corpus is the dictionary: every word a player may guess, and the subset
// that can be drawn as a secret answer. Safe for concurrent reads.
type Corpus struct {
	valid   map[string]struct{}
	answers []string
}

// New builds a corpus. Answers are always valid guesses.
func New(valid, answers []string) (*Corpus, error) {
	answers = lo.Uniq(lo.Filter(answers, isWord))
	if len(answers) == 0 {
		return nil, ErrEmptyCorpus
	}

	set := make(map[string]struct{}, len(valid)+len(answers))
	for _, w := range lo.Filter(valid, isWord) {
		set[w] = struct{}{}
	}
	for _, w := range answers {
		set[w] = struct{}{}
	}

	return &Corpus{valid: set, answers: answers}, nil
}

// Parse splits a newline-separated list, dropping blanks and anything that
// is not a five letter word.
func Parse(data []byte) []string {
	lines := strings.Split(string(data), "\n")
	words := lo.Map(lines, func(l string, _ int) string {
		return strings.TrimSpace(l)
	})
	return lo.Filter(words, isWord)
}

func isWord(w string, _ int) bool {
	return utf8.RuneCountInString(w) == wordLength
}

func (c *Corpus) IsValidWord(word string) bool {
	_, ok := c.valid[word]
	return ok
}

// PickRandomAnswer draws uniformly from the answer list.
func (c *Corpus) PickRandomAnswer(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(c.answers))))
	if err != nil {
		return "", fmt.Errorf("corpus: random: %w", err)
	}
	return c.answers[n.Int64()], nil
}

func (c *Corpus) ValidCount() int  { return len(c.valid) }
func (c *Corpus) AnswerCount() int { return len(c.answers) }

// Answers returns a copy of the answer list.
func (c *Corpus) Answers() []string {
	return append([]string(nil), c.answers...)
}
