package quiz

// Question is a single entry in the shuffled question feed. Questions are
// loaded once at startup and never mutated afterwards.
type Question struct {
	Number int    `json:"number"` // 1-based position in the feed
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// Team groups players under a shared score. A user belongs to at most one
// team at a time; membership moves are handled by the registry.
type Team struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
	Score   int      `json:"score"`
}

// HasMember reports whether the given user is on the team.
func (t *Team) HasMember(user string) bool {
	for _, m := range t.Members {
		if m == user {
			return true
		}
	}
	return false
}
