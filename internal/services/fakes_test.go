package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"reelearn-backend/internal/models"
)

// Shared test doubles for the pipeline tests.

type fakeGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeVideoStore struct {
	video  *models.Video
	getErr error

	furtherReading      []models.FurtherReading
	furtherReadingCalls int

	commentSummary      *models.CommentSummary
	commentSummaryCalls int

	updateErr error
}

func (f *fakeVideoStore) GetByID(ctx context.Context, id string) (*models.Video, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.video == nil || f.video.ID != id {
		return nil, pgx.ErrNoRows
	}
	return f.video, nil
}

func (f *fakeVideoStore) UpdateFurtherReading(ctx context.Context, videoID string, items []models.FurtherReading) error {
	f.furtherReadingCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	f.furtherReading = items
	return nil
}

func (f *fakeVideoStore) UpdateCommentSummary(ctx context.Context, videoID string, summary models.CommentSummary) error {
	f.commentSummaryCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	f.commentSummary = &summary
	return nil
}

type fakeCommentStore struct {
	comments []models.Comment
	err      error
	calls    int
}

func (f *fakeCommentStore) ListRecentByVideo(ctx context.Context, videoID string, limit int) ([]models.Comment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.comments) > limit {
		return f.comments[:limit], nil
	}
	return f.comments, nil
}

func completedVideo(id string) *models.Video {
	return &models.Video{
		ID:                  id,
		Title:               "Intro to Sorting",
		TranscriptionStatus: models.TranscriptionCompleted,
		CreatedAt:           time.Now(),
	}
}

func makeComments(n int) []models.Comment {
	comments := make([]models.Comment, n)
	for i := range comments {
		comments[i] = models.Comment{
			ID:      fmt.Sprintf("c%d", i),
			VideoID: "vid1",
			Content: fmt.Sprintf("comment %d", i),
			Likes:   i,
		}
	}
	return comments
}
