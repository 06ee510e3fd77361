package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"reelearn-backend/internal/models"
)

const furtherReadingMin = 2

// furtherReadingStore is the store slice this pipeline needs: the
// precondition read plus its own replace-in-place write.
type furtherReadingStore interface {
	videoStore
	UpdateFurtherReading(ctx context.Context, videoID string, items []models.FurtherReading) error
}

type FurtherReadingService struct {
	gen    TextGenerator
	videos furtherReadingStore
}

func NewFurtherReadingService(gen TextGenerator, videos furtherReadingStore) *FurtherReadingService {
	return &FurtherReadingService{gen: gen, videos: videos}
}

// Generate produces book/paper recommendations and persists them onto the
// video record itself; unlike the summary and quiz pipelines this write is
// part of the pipeline because it is always paired with the generation.
func (s *FurtherReadingService) Generate(ctx context.Context, videoID, transcript string, summary *models.VideoSummary) ([]models.FurtherReading, error) {
	if err := checkTranscription(ctx, s.videos, videoID, transcript); err != nil {
		return nil, err
	}

	raw, err := s.gen.GenerateText(ctx, buildFurtherReadingPrompt(transcript, summary), GenerateOptions{
		Temperature:     0.5,
		MaxOutputTokens: 1024,
		JSONResponse:    true,
	})
	if err != nil {
		return nil, err
	}

	items, err := parseFurtherReading(raw)
	if err != nil {
		return nil, err
	}

	if err := s.videos.UpdateFurtherReading(ctx, videoID, items); err != nil {
		return nil, fmt.Errorf("failed to save further reading: %w", err)
	}
	return items, nil
}

func buildFurtherReadingPrompt(transcript string, summary *models.VideoSummary) string {
	var b strings.Builder

	b.WriteString("You are an expert academic librarian. Recommend books or papers a learner should read after watching the video transcribed below.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown, no backticks.\n\n")
	b.WriteString("Recommend 2 to 3 real, well-known works.\n\n")
	b.WriteString(`JSON shape:
{"recommendations": [{"title": "string", "author": "string", "description": "one sentence on why it deepens the video's topic"}]}
`)

	if summary != nil && len(summary.MainConcepts) > 0 {
		b.WriteString(fmt.Sprintf("\nFocus the recommendations on these concepts: %s\n", strings.Join(summary.MainConcepts, ", ")))
	}

	b.WriteString("\n---TRANSCRIPT START---\n")
	b.WriteString(transcript)
	b.WriteString("\n---TRANSCRIPT END---\n")

	return b.String()
}

// parseFurtherReading accepts strict JSON only. There is no text fallback
// here: an unparseable response is fatal.
func parseFurtherReading(raw string) ([]models.FurtherReading, error) {
	raw = stripCodeFences(raw)

	var resp struct {
		Recommendations []models.FurtherReading `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &ParseError{Message: "Failed to parse response"}
	}

	var valid []models.FurtherReading
	for _, rec := range resp.Recommendations {
		rec.Title = strings.TrimSpace(rec.Title)
		rec.Author = strings.TrimSpace(rec.Author)
		rec.Description = strings.TrimSpace(rec.Description)
		if rec.Title == "" || rec.Author == "" || rec.Description == "" {
			continue
		}
		valid = append(valid, rec)
	}

	if len(valid) < furtherReadingMin {
		return nil, &ParseError{Message: "not enough valid recommendations generated"}
	}
	return valid, nil
}
