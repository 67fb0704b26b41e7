package models

// VoteType is a user's reaction to a day's content
type VoteType string

const (
	VoteLike    VoteType = "like"
	VoteDislike VoteType = "dislike"
	VoteNone    VoteType = ""
)

// ParseVoteType accepts "like", "dislike" and "none"/"" for clearing a vote
func ParseVoteType(s string) (VoteType, bool) {
	switch s {
	case "like":
		return VoteLike, true
	case "dislike":
		return VoteDislike, true
	case "", "none":
		return VoteNone, true
	}
	return "", false
}

// VoteTally holds the counters for one date and the caller's own vote
type VoteTally struct {
	DateKey      string   `json:"date_key" db:"date_key"`
	LikeCount    int      `json:"like_count" db:"like_count"`
	DislikeCount int      `json:"dislike_count" db:"dislike_count"`
	UserVote     VoteType `json:"user_vote,omitempty" db:"-"`
}
