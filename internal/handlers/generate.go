package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"reelearn-backend/internal/models"
)

// Pipeline interfaces, narrowed to what this handler drives so tests can
// fake them.

type summaryGenerator interface {
	Generate(ctx context.Context, videoID, transcript string) (*models.VideoSummary, error)
}

type quizGenerator interface {
	Generate(ctx context.Context, videoID, transcript string) (*models.Quiz, error)
}

type readingGenerator interface {
	Generate(ctx context.Context, videoID, transcript string, summary *models.VideoSummary) ([]models.FurtherReading, error)
}

type commentSummarizer interface {
	Generate(ctx context.Context, videoID string) models.CommentSummaryResult
}

type summaryWriter interface {
	UpdateSummary(ctx context.Context, videoID string, summary models.VideoSummary) error
}

type quizWriter interface {
	Upsert(ctx context.Context, q *models.Quiz) error
}

// GenerateHandler is the trigger boundary for the four generation pipelines.
// Each invocation is one request/response unit of work under a wall-clock
// budget; there is no queueing and no retry here.
type GenerateHandler struct {
	summaries summaryGenerator
	quizzes   quizGenerator
	readings  readingGenerator
	comments  commentSummarizer
	videoRepo summaryWriter
	quizRepo  quizWriter
	redis     *redis.Client
	timeout   time.Duration
}

func NewGenerateHandler(
	summaries summaryGenerator,
	quizzes quizGenerator,
	readings readingGenerator,
	comments commentSummarizer,
	videoRepo summaryWriter,
	quizRepo quizWriter,
	redisClient *redis.Client,
	timeout time.Duration,
) *GenerateHandler {
	return &GenerateHandler{
		summaries: summaries,
		quizzes:   quizzes,
		readings:  readings,
		comments:  comments,
		videoRepo: videoRepo,
		quizRepo:  quizRepo,
		redis:     redisClient,
		timeout:   timeout,
	}
}

func (h *GenerateHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.VideoID) == "" || strings.TrimSpace(req.Transcription) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "videoId and transcription are required", r))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	summary, err := h.summaries.Generate(ctx, req.VideoID, req.Transcription)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.videoRepo.UpdateSummary(ctx, req.VideoID, *summary); err != nil {
		log.Printf("failed to persist summary for video %s: %v", req.VideoID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save summary", r))
		return
	}

	h.publishVideoEvent(ctx, req.VideoID, "summary_updated")
	writeJSON(w, http.StatusOK, summary)
}

func (h *GenerateHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.VideoID) == "" || strings.TrimSpace(req.Transcription) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "videoId and transcription are required", r))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	quiz, err := h.quizzes.Generate(ctx, req.VideoID, req.Transcription)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.quizRepo.Upsert(ctx, quiz); err != nil {
		log.Printf("failed to persist quiz for video %s: %v", req.VideoID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save quiz", r))
		return
	}

	h.publishVideoEvent(ctx, req.VideoID, "quiz_updated")
	writeJSON(w, http.StatusOK, quiz)
}

func (h *GenerateHandler) FurtherReading(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateFurtherReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.VideoID) == "" || strings.TrimSpace(req.Transcription) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "videoId and transcription are required", r))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	// This pipeline persists as part of itself.
	items, err := h.readings.Generate(ctx, req.VideoID, req.Transcription, req.Summary)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.publishVideoEvent(ctx, req.VideoID, "further_reading_updated")
	writeJSON(w, http.StatusOK, items)
}

// CommentSummary never surfaces an error status: the pipeline reports every
// failure mode through the tagged result and callers branch on success.
func (h *GenerateHandler) CommentSummary(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateCommentSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, models.CommentSummaryResult{Success: false, Reason: "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result := h.comments.Generate(ctx, req.VideoID)
	if result.Success {
		h.publishVideoEvent(ctx, req.VideoID, "comment_summary_updated")
	}
	writeJSON(w, http.StatusOK, result)
}

// publishVideoEvent nudges clients watching this video to refetch.
// Best-effort: a lost event only delays a refresh.
func (h *GenerateHandler) publishVideoEvent(ctx context.Context, videoID, eventType string) {
	if h.redis == nil {
		return
	}
	data, _ := json.Marshal(models.VideoEvent{Type: eventType, VideoID: videoID})
	h.redis.Publish(ctx, "video_updates:"+videoID, string(data))
}
