package value_objects

import (
	"errors"
	"strings"
)

// Difficulty represents how demanding a task is.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

var ErrInvalidDifficulty = errors.New("invalid difficulty value")

var difficultyNames = map[Difficulty]string{
	DifficultyEasy:   "easy",
	DifficultyMedium: "medium",
	DifficultyHard:   "hard",
}

var difficultyValues = map[string]Difficulty{
	"easy":   DifficultyEasy,
	"medium": DifficultyMedium,
	"hard":   DifficultyHard,
}

// ParseDifficulty creates a Difficulty from a string.
func ParseDifficulty(s string) (Difficulty, error) {
	d, ok := difficultyValues[strings.ToLower(s)]
	if !ok {
		return DifficultyEasy, ErrInvalidDifficulty
	}
	return d, nil
}

// String returns the string representation of the difficulty.
func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if the difficulty is a valid value.
func (d Difficulty) IsValid() bool {
	_, ok := difficultyNames[d]
	return ok
}
