package models

import (
	"time"
)

// Comment lifecycle belongs to the comment system; the comment-summary
// pipeline only reads a bounded recent window of them.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentSummary is derived from the most recent comments of a video;
// regenerating replaces the prior summary entirely.
type CommentSummary struct {
	Summary          string    `json:"summary"`
	ConfusionPoints  []string  `json:"confusionPoints"`
	ValuableInsights []string  `json:"valuableInsights"`
	Sentiment        string    `json:"sentiment"`
	LastUpdated      time.Time `json:"lastUpdated"`
	CommentCount     int       `json:"commentCount"`
}

// CommentSummaryResult is the tagged result the comment-summary endpoint
// returns instead of raising: callers treat failure ("Not enough comments")
// as a routine outcome and branch on Success.
type CommentSummaryResult struct {
	Success bool            `json:"success"`
	Summary *CommentSummary `json:"summary,omitempty"`
	Reason  string          `json:"reason,omitempty"`
}
