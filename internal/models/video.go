package models

import (
	"time"
)

// Transcription status values set by the upstream speech-to-text pipeline.
const (
	TranscriptionPending    = "pending"
	TranscriptionProcessing = "processing"
	TranscriptionCompleted  = "completed"
	TranscriptionFailed     = "failed"
)

type Video struct {
	ID                  string           `json:"id"`
	Title               string           `json:"title"`
	Subject             string           `json:"subject"`
	VideoURL            string           `json:"videoUrl"`
	ThumbnailURL        *string          `json:"thumbnailUrl"`
	Transcript          *string          `json:"transcript"`
	TranscriptionStatus string           `json:"transcriptionStatus"` // "pending" | "processing" | "completed" | "failed"
	Summary             *VideoSummary    `json:"summary"`
	FurtherReading      []FurtherReading `json:"furtherReading"`
	CommentSummary      *CommentSummary  `json:"commentSummary"`
	LikeCount           int              `json:"likeCount"`
	CommentCount        int              `json:"commentCount"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// VideoSummary is produced by the summary pipeline and overwritten on
// regeneration. Both lists are non-empty by the time it is persisted.
type VideoSummary struct {
	KeyPoints    []string  `json:"key_points"`
	MainConcepts []string  `json:"main_concepts"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// FurtherReading is one book/paper recommendation. The pipeline writes the
// full list onto the video record, replacing any prior value.
type FurtherReading struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}
