package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"reelearn-backend/internal/repository"
)

type VideoHandler struct {
	videoRepo *repository.VideoRepo
	quizRepo  *repository.QuizRepo
}

func NewVideoHandler(videoRepo *repository.VideoRepo, quizRepo *repository.QuizRepo) *VideoHandler {
	return &VideoHandler{videoRepo: videoRepo, quizRepo: quizRepo}
}

// Feed returns a page of the vertical video feed, newest first.
func (h *VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	if limit <= 0 || limit > 50 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	videos, err := h.videoRepo.ListFeed(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch feed", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos": videos,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	video, err := h.videoRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Video not found", r))
		return
	}

	writeJSON(w, http.StatusOK, video)
}

// GetQuiz returns the current quiz for a video, if one has been generated.
func (h *VideoHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	quiz, err := h.quizRepo.GetByVideoID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No quiz for this video", r))
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}
