package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"reelearn-backend/internal/models"
)

// videoStore is the slice of the video repository the pipelines need for
// their preconditions.
type videoStore interface {
	GetByID(ctx context.Context, id string) (*models.Video, error)
}

type SummaryService struct {
	gen    TextGenerator
	videos videoStore
}

func NewSummaryService(gen TextGenerator, videos videoStore) *SummaryService {
	return &SummaryService{gen: gen, videos: videos}
}

// Generate produces a VideoSummary from the transcript. The caller persists
// it onto the video record, replacing any prior summary.
func (s *SummaryService) Generate(ctx context.Context, videoID, transcript string) (*models.VideoSummary, error) {
	if err := s.checkTranscription(ctx, videoID, transcript); err != nil {
		return nil, err
	}

	raw, err := s.gen.GenerateText(ctx, buildSummaryPrompt(transcript), GenerateOptions{
		Temperature:     0.3,
		MaxOutputTokens: 1024,
	})
	if err != nil {
		return nil, err
	}

	keyPoints, mainConcepts, err := parseSummarySections(raw)
	if err != nil {
		return nil, err
	}

	return &models.VideoSummary{
		KeyPoints:    keyPoints,
		MainConcepts: mainConcepts,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

func (s *SummaryService) checkTranscription(ctx context.Context, videoID, transcript string) error {
	return checkTranscription(ctx, s.videos, videoID, transcript)
}

// checkTranscription enforces the shared precondition of the transcript-fed
// pipelines: a non-empty transcript and a video whose transcription finished.
// It runs before any model call.
func checkTranscription(ctx context.Context, videos videoStore, videoID, transcript string) error {
	if strings.TrimSpace(transcript) == "" {
		return &PreconditionError{Message: "Transcription is empty or unavailable"}
	}

	video, err := videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Video not found"}
		}
		return fmt.Errorf("failed to load video %s: %w", videoID, err)
	}
	if video.TranscriptionStatus != models.TranscriptionCompleted {
		return &PreconditionError{Message: "Transcription is not completed for this video"}
	}
	return nil
}

func buildSummaryPrompt(transcript string) string {
	var b strings.Builder

	b.WriteString("You are an expert educational content analyst. Summarize the following short-video transcript for a learner.\n\n")
	b.WriteString("Respond in plain text with exactly two sections, in this order and with these exact headers:\n")
	b.WriteString("Key Points:\n- one bullet per key takeaway (3 to 5 bullets)\n\n")
	b.WriteString("Main Concepts:\n- one bullet per core concept the video teaches (2 to 4 bullets)\n\n")
	b.WriteString("Do not use markdown headings, tables, or any other sections.\n\n")
	b.WriteString("---TRANSCRIPT START---\n")
	b.WriteString(transcript)
	b.WriteString("\n---TRANSCRIPT END---\n")

	return b.String()
}

var (
	bulletMarkerRe       = regexp.MustCompile(`^\s*(?:[•\-*]|\d+[.)])\s*`)
	keyPointsHeaderRe    = regexp.MustCompile(`(?i)key\s*points`)
	mainConceptsHeaderRe = regexp.MustCompile(`(?i)main\s*concepts`)
)

// parseSummarySections splits the model response on the two expected section
// headers, matched case-insensitively, and normalizes each section into a
// list of items. A merged or garbled response fails closed rather than
// producing a partial summary. Headers are located on raw itself; uppercasing
// the text first would shift byte offsets for runes whose case folding
// changes length.
func parseSummarySections(raw string) (keyPoints, mainConcepts []string, err error) {
	kpLoc := keyPointsHeaderRe.FindStringIndex(raw)
	mcLoc := mainConceptsHeaderRe.FindStringIndex(raw)
	if kpLoc == nil || mcLoc == nil {
		return nil, nil, &ParseError{Message: "Failed to parse response"}
	}

	section := func(header, other []int) string {
		end := len(raw)
		if other[0] > header[0] {
			end = other[0]
		}
		return raw[header[1]:end]
	}

	keyPoints = splitSectionItems(section(kpLoc, mcLoc))
	mainConcepts = splitSectionItems(section(mcLoc, kpLoc))

	if len(keyPoints) == 0 || len(mainConcepts) == 0 {
		return nil, nil, &ParseError{Message: "Failed to parse response"}
	}
	return keyPoints, mainConcepts, nil
}

// splitSectionItems turns one section body into trimmed items, stripping
// leading bullet or numbering markers and dropping empty lines.
func splitSectionItems(text string) []string {
	text = strings.TrimLeft(text, ": \t\r\n")

	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = bulletMarkerRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}
