package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const commentSummaryJSON = `{
	"summary": "Learners were mostly positive and asked clarifying questions.",
	"confusionPoints": ["big-O notation", "why the pivot matters"],
	"valuableInsights": ["a linked visualization helped several people"],
	"sentiment": "curious and engaged"
}`

func TestCommentSummaryService_Success(t *testing.T) {
	gen := &fakeGenerator{response: commentSummaryJSON}
	comments := &fakeCommentStore{comments: makeComments(8)}
	store := &fakeVideoStore{video: completedVideo("vid1")}
	svc := NewCommentSummaryService(gen, comments, store)

	result := svc.Generate(context.Background(), "vid1")
	if !result.Success {
		t.Fatalf("expected success, got reason %q", result.Reason)
	}
	if result.Summary == nil {
		t.Fatal("success result must carry a summary")
	}
	if result.Summary.CommentCount != 8 {
		t.Errorf("expected comment count 8, got %d", result.Summary.CommentCount)
	}
	if result.Summary.Sentiment != "curious and engaged" {
		t.Errorf("unexpected sentiment: %q", result.Summary.Sentiment)
	}
	if len(result.Summary.ConfusionPoints) != 2 {
		t.Errorf("expected 2 confusion points, got %d", len(result.Summary.ConfusionPoints))
	}
	if store.commentSummaryCalls != 1 {
		t.Errorf("expected one persist call, got %d", store.commentSummaryCalls)
	}
	if result.Summary.LastUpdated.IsZero() {
		t.Error("expected LastUpdated to be set")
	}
}

func TestCommentSummaryService_TooFewComments(t *testing.T) {
	gen := &fakeGenerator{response: commentSummaryJSON}
	svc := NewCommentSummaryService(gen, &fakeCommentStore{comments: makeComments(4)}, &fakeVideoStore{})

	result := svc.Generate(context.Background(), "vid1")
	if result.Success {
		t.Fatal("expected failure below the comment threshold")
	}
	if result.Reason != "Not enough comments" {
		t.Errorf("unexpected reason: %q", result.Reason)
	}
	if gen.calls != 0 {
		t.Errorf("model must not be called below the threshold, got %d calls", gen.calls)
	}
}

func TestCommentSummaryService_FailureReasons(t *testing.T) {
	tests := []struct {
		name       string
		videoID    string
		gen        *fakeGenerator
		comments   *fakeCommentStore
		store      *fakeVideoStore
		wantReason string
	}{
		{
			name:       "missing video id",
			videoID:    "  ",
			gen:        &fakeGenerator{response: commentSummaryJSON},
			comments:   &fakeCommentStore{comments: makeComments(8)},
			store:      &fakeVideoStore{},
			wantReason: "Missing video id",
		},
		{
			name:       "comment load failure",
			videoID:    "vid1",
			gen:        &fakeGenerator{response: commentSummaryJSON},
			comments:   &fakeCommentStore{err: errors.New("connection refused")},
			store:      &fakeVideoStore{},
			wantReason: "Failed to load comments",
		},
		{
			name:       "model failure",
			videoID:    "vid1",
			gen:        &fakeGenerator{err: &UpstreamError{Kind: UpstreamUnavailable, Message: "service unavailable"}},
			comments:   &fakeCommentStore{comments: makeComments(8)},
			store:      &fakeVideoStore{},
			wantReason: "Failed to generate summary",
		},
		{
			name:       "unparseable response",
			videoID:    "vid1",
			gen:        &fakeGenerator{response: "The comments were generally nice."},
			comments:   &fakeCommentStore{comments: makeComments(8)},
			store:      &fakeVideoStore{},
			wantReason: "Failed to parse response",
		},
		{
			name:       "persist failure",
			videoID:    "vid1",
			gen:        &fakeGenerator{response: commentSummaryJSON},
			comments:   &fakeCommentStore{comments: makeComments(8)},
			store:      &fakeVideoStore{updateErr: errors.New("deadlock detected")},
			wantReason: "Failed to save summary",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewCommentSummaryService(tc.gen, tc.comments, tc.store)
			result := svc.Generate(context.Background(), tc.videoID)
			if result.Success {
				t.Fatal("expected failure")
			}
			if result.Reason != tc.wantReason {
				t.Errorf("expected reason %q, got %q", tc.wantReason, result.Reason)
			}
			if result.Summary != nil {
				t.Error("failed result must not carry a summary")
			}
		})
	}
}

func TestParseCommentSummary_DoublyEncoded(t *testing.T) {
	encoded, _ := json.Marshal(commentSummaryJSON)

	fields, ok := parseCommentSummary(string(encoded))
	if !ok {
		t.Fatal("expected doubly-encoded JSON to parse")
	}
	if fields.Sentiment != "curious and engaged" {
		t.Errorf("unexpected sentiment: %q", fields.Sentiment)
	}
}

func TestParseCommentSummary_EmbeddedObject(t *testing.T) {
	raw := "Sure! Here is the analysis you asked for:\n" + commentSummaryJSON + "\nLet me know if you need more."

	fields, ok := parseCommentSummary(raw)
	if !ok {
		t.Fatal("expected embedded JSON object to parse")
	}
	if len(fields.ValuableInsights) != 1 {
		t.Errorf("expected 1 insight, got %d", len(fields.ValuableInsights))
	}
}

func TestParseCommentSummary_LabeledText(t *testing.T) {
	raw := `Summary: Viewers enjoyed the pacing and asked follow-up questions.
Confusion Points:
- the difference between stable and unstable sorts
- partition step
Valuable Insights:
- someone linked the original paper
Sentiment: upbeat`

	fields, ok := parseCommentSummary(raw)
	if !ok {
		t.Fatal("expected labeled text to parse")
	}
	if !strings.HasPrefix(fields.Summary, "Viewers enjoyed") {
		t.Errorf("unexpected summary: %q", fields.Summary)
	}
	if len(fields.ConfusionPoints) != 2 {
		t.Errorf("expected 2 confusion points, got %v", fields.ConfusionPoints)
	}
	if len(fields.ValuableInsights) != 1 {
		t.Errorf("expected 1 insight, got %v", fields.ValuableInsights)
	}
	if fields.Sentiment != "upbeat" {
		t.Errorf("unexpected sentiment: %q", fields.Sentiment)
	}
}

func TestParseCommentSummary_LabeledTextRequiresAllSections(t *testing.T) {
	raw := `Summary: fine discussion.
Sentiment: neutral`

	if _, ok := parseCommentSummary(raw); ok {
		t.Fatal("expected failure when sections are missing")
	}
}

func TestAsCommentSummaryFields_RejectsWrongShapes(t *testing.T) {
	tests := []struct {
		name string
		obj  map[string]interface{}
	}{
		{"summary not a string", map[string]interface{}{
			"summary": 5, "confusionPoints": []interface{}{}, "valuableInsights": []interface{}{}, "sentiment": "ok",
		}},
		{"non-string list element", map[string]interface{}{
			"summary": "s", "confusionPoints": []interface{}{"a", 3}, "valuableInsights": []interface{}{}, "sentiment": "ok",
		}},
		{"missing sentiment", map[string]interface{}{
			"summary": "s", "confusionPoints": []interface{}{}, "valuableInsights": []interface{}{},
		}},
		{"lists not arrays", map[string]interface{}{
			"summary": "s", "confusionPoints": "none", "valuableInsights": []interface{}{}, "sentiment": "ok",
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := asCommentSummaryFields(tc.obj); ok {
				t.Fatal("expected rejection")
			}
		})
	}
}

func TestBuildCommentSummaryPrompt_IncludesLikes(t *testing.T) {
	comments := makeComments(5)
	prompt := buildCommentSummaryPrompt(comments)
	if !strings.Contains(prompt, "- (4 likes) comment 4") {
		t.Errorf("expected like counts in prompt, got:\n%s", prompt)
	}
}
