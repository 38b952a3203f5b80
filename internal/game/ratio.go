package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Ratio is a player's wins over attempts, stored as "n/d".
type Ratio struct {
	Wins     int
	Attempts int
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d/%d", r.Wins, r.Attempts)
}

// ParseRatio parses "n/d" where both parts are non-negative integers.
func ParseRatio(s string) (Ratio, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return Ratio{}, fmt.Errorf("%w: %q", ErrMalformedScoreRecord, s)
	}
	n, err := parseCount(num)
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: %q", ErrMalformedScoreRecord, s)
	}
	d, err := parseCount(den)
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: %q", ErrMalformedScoreRecord, s)
	}
	return Ratio{Wins: n, Attempts: d}, nil
}

func parseCount(s string) (int, error) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}
