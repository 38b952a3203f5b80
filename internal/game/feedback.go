package game

// WordLength is the number of letters in every guess and answer.
const WordLength = 5

type Colour string

const (
	Green  Colour = "green"
	Yellow Colour = "yellow"
	Grey   Colour = "grey"
)

// Result holds one colour per letter of the guess, in guess order.
type Result [WordLength]Colour

// Solved reports whether every letter is green.
func (r Result) Solved() bool {
	for _, c := range r {
		if c != Green {
			return false
		}
	}
	return true
}

// Strings returns the colours as plain strings, for the wire.
func (r Result) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = string(c)
	}
	return out
}

func allGreen() Result {
	var r Result
	for i := range r {
		r[i] = Green
	}
	return r
}

// Evaluate colours guess against answer. Both must be exactly WordLength
// letters; comparison is case-sensitive.
//
// A letter gets at most as many green/yellow marks as it occurs in the answer.
// Greens always win; when yellows have to be given back the leftmost go first.
func Evaluate(guess, answer string) (Result, error) {
	g := []rune(guess)
	a := []rune(answer)
	if len(g) != WordLength || len(a) != WordLength {
		return Result{}, ErrInvalidInputLength
	}

	if guess == answer {
		return allGreen(), nil
	}

	remaining := make(map[rune]int, WordLength)
	for _, ch := range a {
		remaining[ch]++
	}

	var res Result
	for i := 0; i < WordLength; i++ {
		switch {
		case g[i] == a[i]:
			res[i] = Green
			remaining[g[i]]--
		case remaining[g[i]] > 0:
			res[i] = Yellow
			remaining[g[i]]--
		default:
			res[i] = Grey
		}
	}

	// a green found after a yellow for the same letter can push the count
	// below zero; hand those yellows back, leftmost first
	for i := 0; i < WordLength; i++ {
		if res[i] == Yellow && remaining[g[i]] < 0 {
			res[i] = Grey
			remaining[g[i]]++
		}
	}

	return res, nil
}
