package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name   string
		guess  string
		answer string
		want   Result
	}{
		{
			name:   "exact match",
			guess:  "CRANE",
			answer: "CRANE",
			want:   Result{Green, Green, Green, Green, Green},
		},
		{
			name:   "no common letters",
			guess:  "QUICK",
			answer: "DWELT",
			want:   Result{Grey, Grey, Grey, Grey, Grey},
		},
		{
			name:   "repeated letter capped by answer count",
			guess:  "HARSH",
			answer: "FLUSH",
			want:   Result{Grey, Grey, Grey, Green, Green},
		},
		{
			name:   "two yellows for a doubled answer letter",
			guess:  "SPEED",
			answer: "ERASE",
			want:   Result{Yellow, Grey, Yellow, Yellow, Grey},
		},
		{
			name:   "later green takes back the leftmost yellow",
			guess:  "EERIE",
			answer: "THERE",
			want:   Result{Grey, Yellow, Yellow, Grey, Green},
		},
		{
			name:   "single yellow when answer has the letter once",
			guess:  "LLAMA",
			answer: "HELLO",
			want:   Result{Yellow, Yellow, Grey, Grey, Grey},
		},
		{
			name:   "case sensitive",
			guess:  "crane",
			answer: "CRANE",
			want:   Result{Grey, Grey, Grey, Grey, Grey},
		},
		{
			name:   "non ascii letters count as one",
			guess:  "ÅBÇDE",
			answer: "ÅBÇDE",
			want:   Result{Green, Green, Green, Green, Green},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.guess, tc.answer)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_InvalidLength(t *testing.T) {
	cases := []struct {
		guess  string
		answer string
	}{
		{"ABCD", "CRANE"},
		{"ABCDEF", "CRANE"},
		{"CRANE", "CRAN"},
		{"", ""},
	}

	for _, tc := range cases {
		_, err := Evaluate(tc.guess, tc.answer)
		assert.ErrorIs(t, err, ErrInvalidInputLength, "guess=%q answer=%q", tc.guess, tc.answer)
	}
}

func TestResult_Solved(t *testing.T) {
	assert.True(t, allGreen().Solved())
	assert.False(t, Result{Green, Green, Green, Green, Yellow}.Solved())
	assert.Equal(t, []string{"green", "grey", "yellow", "grey", "grey"},
		Result{Green, Grey, Yellow, Grey, Grey}.Strings())
}

func drawWord(rt *rapid.T, label string) string {
	// a tiny alphabet makes repeated letters common
	letters := rapid.SliceOfN(rapid.SampledFrom([]rune("ABCDE")), WordLength, WordLength).Draw(rt, label)
	return string(letters)
}

func TestEvaluate_OccurrenceCap(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		guess := drawWord(rt, "guess")
		answer := drawWord(rt, "answer")

		res, err := Evaluate(guess, answer)
		require.NoError(rt, err)

		for i := 0; i < WordLength; i++ {
			if guess[i] == answer[i] {
				assert.Equal(rt, Green, res[i], "position %d", i)
			} else {
				assert.NotEqual(rt, Green, res[i], "position %d", i)
			}
		}

		for _, ch := range "ABCDE" {
			marked := 0
			for i, g := range guess {
				if g == ch && res[i] != Grey {
					marked++
				}
			}
			want := min(strings.Count(guess, string(ch)), strings.Count(answer, string(ch)))
			assert.Equal(rt, want, marked, "letter %c", ch)
		}
	})
}

func TestEvaluate_SelfIsSolved(t *testing.T) {
	words := []string{"CRANE", "FLUSH", "ERASE", "THERE", "HELLO", "SPEED", "ABBEY"}

	rapid.Check(t, func(rt *rapid.T) {
		w := rapid.SampledFrom(words).Draw(rt, "word")
		res, err := Evaluate(w, w)
		require.NoError(rt, err)
		assert.True(rt, res.Solved())
	})

	rapid.Check(t, func(rt *rapid.T) {
		w := drawWord(rt, "word")
		res, err := Evaluate(w, w)
		require.NoError(rt, err)
		assert.True(rt, res.Solved())
	})
}
