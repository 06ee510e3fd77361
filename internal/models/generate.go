package models

// Request bodies for the generation endpoints. Field names match what the
// mobile client sends.

type GenerateSummaryRequest struct {
	VideoID       string `json:"videoId"`
	Transcription string `json:"transcription"`
}

type GenerateQuizRequest struct {
	VideoID       string `json:"videoId"`
	Transcription string `json:"transcription"`
}

type GenerateFurtherReadingRequest struct {
	VideoID       string        `json:"videoId"`
	Transcription string        `json:"transcription"`
	Summary       *VideoSummary `json:"summary,omitempty"`
}

type GenerateCommentSummaryRequest struct {
	VideoID string `json:"videoId"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}
