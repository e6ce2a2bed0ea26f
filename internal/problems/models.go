package problems

// Problem is a tracked practice exercise.
//
// Invariants:
// - ID is assigned by the repository and never changes.
// - IDs are never reused, even after the record is deleted.
type Problem struct {
	ID         int    `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	URL        string `json:"url" db:"url"`
	Difficulty string `json:"difficulty" db:"difficulty"`
	Status     string `json:"status" db:"status"`
}

// CreateProblemRequest is the client-supplied candidate for a new Problem.
// Difficulty and Status are free-form (empty allowed); observed values are listed
// below but not enforced. Field presence is checked where the body is decoded.
type CreateProblemRequest struct {
	Name       string `json:"name" validate:"required"`
	URL        string `json:"url" validate:"required,absurl"`
	Difficulty string `json:"difficulty"`
	Status     string `json:"status"`
}

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"

	StatusSolved  = "Solved"
	StatusSolving = "Solving"
	StatusToDo    = "To Do"
)

// SeedProblems returns the records every fresh store starts with (ids 1..3).
func SeedProblems() []Problem {
	return []Problem{
		{ID: 1, Name: "Two Sum", URL: "https://leetcode.com/problems/two-sum/", Difficulty: DifficultyEasy, Status: StatusSolved},
		{ID: 2, Name: "Add Two Numbers", URL: "https://leetcode.com/problems/add-two-numbers/", Difficulty: DifficultyMedium, Status: StatusSolving},
		{ID: 3, Name: "Longest Substring Without Repeating Characters", URL: "https://leetcode.com/problems/longest-substring-without-repeating-characters/", Difficulty: DifficultyMedium, Status: StatusToDo},
	}
}

// firstFreeID is the counter value right after seeding.
const firstFreeID = 4
