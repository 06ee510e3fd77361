package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"reelearn-backend/internal/middleware"
	"reelearn-backend/internal/models"
	"reelearn-backend/internal/repository"
)

type CommentHandler struct {
	commentRepo *repository.CommentRepo
	videoRepo   *repository.VideoRepo
}

func NewCommentHandler(commentRepo *repository.CommentRepo, videoRepo *repository.VideoRepo) *CommentHandler {
	return &CommentHandler{commentRepo: commentRepo, videoRepo: videoRepo}
}

// List returns the newest comments for a video, capped at the same window
// the comment-summary pipeline reads.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	if videoID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	comments, err := h.commentRepo.ListRecentByVideo(r.Context(), videoID, 50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch comments", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	if videoID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Comment content is required", r))
		return
	}

	if _, err := h.videoRepo.GetByID(r.Context(), videoID); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Video not found", r))
		return
	}

	comment := &models.Comment{
		VideoID: videoID,
		UserID:  middleware.GetUserID(r.Context()),
		Content: strings.TrimSpace(req.Content),
	}

	if err := h.commentRepo.Create(r.Context(), comment); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create comment", r))
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}
