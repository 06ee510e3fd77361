package models

import (
	"time"
)

type Quiz struct {
	ID          string         `json:"id"`
	VideoID     string         `json:"videoId"`
	Questions   []QuizQuestion `json:"questions"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// QuizQuestion always carries exactly 4 options with CorrectOptionIndex in
// [0,3]; the quiz parser filters out anything that doesn't satisfy that.
type QuizQuestion struct {
	ID                 string   `json:"id"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
	Explanation        string   `json:"explanation"`
}
