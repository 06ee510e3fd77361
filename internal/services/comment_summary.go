package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"reelearn-backend/internal/models"
)

const (
	recentCommentWindow   = 50
	minCommentsForSummary = 5
)

type commentStore interface {
	ListRecentByVideo(ctx context.Context, videoID string, limit int) ([]models.Comment, error)
}

type commentSummaryStore interface {
	UpdateCommentSummary(ctx context.Context, videoID string, summary models.CommentSummary) error
}

// CommentSummaryService distills a video's recent comment thread. Unlike the
// transcript-fed pipelines it loads its own input and never lets an error
// cross its boundary: every failure mode becomes a reason string in the
// tagged result, because callers treat failure (a video with few comments)
// as a routine outcome.
type CommentSummaryService struct {
	gen      TextGenerator
	comments commentStore
	videos   commentSummaryStore
}

func NewCommentSummaryService(gen TextGenerator, comments commentStore, videos commentSummaryStore) *CommentSummaryService {
	return &CommentSummaryService{gen: gen, comments: comments, videos: videos}
}

func (s *CommentSummaryService) Generate(ctx context.Context, videoID string) models.CommentSummaryResult {
	if strings.TrimSpace(videoID) == "" {
		return failedSummary("Missing video id")
	}

	comments, err := s.comments.ListRecentByVideo(ctx, videoID, recentCommentWindow)
	if err != nil {
		log.Printf("comment summary: failed to load comments for video %s: %v", videoID, err)
		return failedSummary("Failed to load comments")
	}
	if len(comments) < minCommentsForSummary {
		return failedSummary("Not enough comments")
	}

	raw, err := s.gen.GenerateText(ctx, buildCommentSummaryPrompt(comments), GenerateOptions{
		Temperature:     0.3,
		MaxOutputTokens: 1024,
		JSONResponse:    true,
	})
	if err != nil {
		log.Printf("comment summary: model call failed for video %s: %v", videoID, err)
		return failedSummary("Failed to generate summary")
	}

	fields, ok := parseCommentSummary(raw)
	if !ok {
		return failedSummary("Failed to parse response")
	}

	summary := models.CommentSummary{
		Summary:          fields.Summary,
		ConfusionPoints:  fields.ConfusionPoints,
		ValuableInsights: fields.ValuableInsights,
		Sentiment:        fields.Sentiment,
		LastUpdated:      time.Now().UTC(),
		CommentCount:     len(comments),
	}

	if err := s.videos.UpdateCommentSummary(ctx, videoID, summary); err != nil {
		log.Printf("comment summary: failed to persist for video %s: %v", videoID, err)
		return failedSummary("Failed to save summary")
	}

	return models.CommentSummaryResult{Success: true, Summary: &summary}
}

func failedSummary(reason string) models.CommentSummaryResult {
	return models.CommentSummaryResult{Success: false, Reason: reason}
}

func buildCommentSummaryPrompt(comments []models.Comment) string {
	var b strings.Builder

	b.WriteString("You are analyzing learner comments on an educational short video.\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON object with exactly these four fields. No preamble, no markdown, no backticks.\n\n")
	b.WriteString(`{"summary": "2-3 sentence overview of the discussion", "confusionPoints": ["things learners found confusing"], "valuableInsights": ["insights learners added"], "sentiment": "one short phrase describing overall sentiment"}
`)
	b.WriteString("\nComments, newest first (with like counts):\n")
	for _, c := range comments {
		b.WriteString(fmt.Sprintf("- (%d likes) %s\n", c.Likes, c.Content))
	}

	return b.String()
}

type commentSummaryFields struct {
	Summary          string
	ConfusionPoints  []string
	ValuableInsights []string
	Sentiment        string
}

// parseCommentSummary tries, in order: the response already being the right
// JSON shape, a JSON object embedded in surrounding text, and finally four
// labeled plain-text sections. The full type shape must hold or parsing
// fails; nothing is guessed.
func parseCommentSummary(raw string) (*commentSummaryFields, bool) {
	raw = stripCodeFences(raw)

	if fields, ok := parseCommentSummaryJSON(raw); ok {
		return fields, true
	}

	// The shape may be buried in explanatory text.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if fields, ok := parseCommentSummaryJSON(raw[start : end+1]); ok {
			return fields, true
		}
	}

	return parseCommentSummaryText(raw)
}

func parseCommentSummaryJSON(raw string) (*commentSummaryFields, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		// A doubly-encoded response: a JSON string whose content is the
		// JSON object.
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err != nil {
			return nil, false
		}
		if err := json.Unmarshal([]byte(inner), &obj); err != nil {
			return nil, false
		}
	}
	return asCommentSummaryFields(obj)
}

// asCommentSummaryFields narrows an untyped JSON object: all four fields
// must be present with the right types.
func asCommentSummaryFields(obj map[string]interface{}) (*commentSummaryFields, bool) {
	summary, ok := obj["summary"].(string)
	if !ok || strings.TrimSpace(summary) == "" {
		return nil, false
	}
	confusion, ok := asStringSlice(obj["confusionPoints"])
	if !ok {
		return nil, false
	}
	insights, ok := asStringSlice(obj["valuableInsights"])
	if !ok {
		return nil, false
	}
	sentiment, ok := obj["sentiment"].(string)
	if !ok || strings.TrimSpace(sentiment) == "" {
		return nil, false
	}

	return &commentSummaryFields{
		Summary:          strings.TrimSpace(summary),
		ConfusionPoints:  confusion,
		ValuableInsights: insights,
		Sentiment:        strings.TrimSpace(sentiment),
	}, true
}

func asStringSlice(v interface{}) ([]string, bool) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	items := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		items = append(items, s)
	}
	return items, true
}

var commentSectionRes = map[string]*regexp.Regexp{
	"summary":   regexp.MustCompile(`(?i)summary\s*:`),
	"confusion": regexp.MustCompile(`(?i)confusion\s*points\s*:`),
	"insights":  regexp.MustCompile(`(?i)valuable\s*insights\s*:`),
	"sentiment": regexp.MustCompile(`(?i)sentiment\s*:`),
}

// parseCommentSummaryText extracts the four labeled sections from an
// unstructured response. All four must be found or the strategy fails.
func parseCommentSummaryText(raw string) (*commentSummaryFields, bool) {
	type section struct {
		name       string
		start, end int // label bounds within raw
	}

	var sections []section
	for name, re := range commentSectionRes {
		loc := re.FindStringIndex(raw)
		if loc == nil {
			return nil, false
		}
		sections = append(sections, section{name: name, start: loc[0], end: loc[1]})
	}

	sort.Slice(sections, func(i, j int) bool { return sections[i].start < sections[j].start })

	bodies := make(map[string]string, len(sections))
	for i, sec := range sections {
		end := len(raw)
		if i+1 < len(sections) {
			end = sections[i+1].start
		}
		bodies[sec.name] = strings.TrimSpace(raw[sec.end:end])
	}

	fields := &commentSummaryFields{
		Summary:          bodies["summary"],
		ConfusionPoints:  splitSectionItems(bodies["confusion"]),
		ValuableInsights: splitSectionItems(bodies["insights"]),
		Sentiment:        bodies["sentiment"],
	}
	if fields.Summary == "" || fields.Sentiment == "" {
		return nil, false
	}
	if fields.ConfusionPoints == nil {
		fields.ConfusionPoints = []string{}
	}
	if fields.ValuableInsights == nil {
		fields.ValuableInsights = []string{}
	}
	return fields, true
}
