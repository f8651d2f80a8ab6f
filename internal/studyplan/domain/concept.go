package domain

// Difficulty grades how demanding a concept is to study. Values match
// the coursework difficulty scale.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) String() string { return string(d) }

// Concept is a unit of study material identified in course text. Concepts
// are planning input only; they are never persisted on their own.
type Concept struct {
	Title            string
	Summary          string
	Difficulty       Difficulty
	EstimatedMinutes int
}
