package models

// API error response envelope.

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WebSocket event pushed to clients watching a video when a generation
// pipeline lands a new artifact on it.
type VideoEvent struct {
	Type    string `json:"type"` // "summary_updated" | "quiz_updated" | "further_reading_updated" | "comment_summary_updated"
	VideoID string `json:"video_id"`
}
