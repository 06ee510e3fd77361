package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reelearn-backend/internal/models"
)

const readingJSON = `{"recommendations": [
	{"title": "The Art of Computer Programming",  "author": "Donald Knuth", "description": "The canonical deep dive into sorting."},
	{"title": "Algorithms", "author": "Sedgewick and Wayne", "description": "Accessible coverage of the same material."}
]}`

func TestFurtherReadingService_SuccessAndPersist(t *testing.T) {
	gen := &fakeGenerator{response: readingJSON}
	store := &fakeVideoStore{video: completedVideo("vid1")}
	svc := NewFurtherReadingService(gen, store)

	items, err := svc.Generate(context.Background(), "vid1", "transcript", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(items))
	}
	if store.furtherReadingCalls != 1 {
		t.Errorf("expected exactly one persist call, got %d", store.furtherReadingCalls)
	}
	if items[0].Author != "Donald Knuth" {
		t.Errorf("unexpected first recommendation: %+v", items[0])
	}
}

func TestFurtherReadingService_BelowMinimumNotPersisted(t *testing.T) {
	gen := &fakeGenerator{response: `{"recommendations": [{"title": "Only One", "author": "Someone", "description": "Not enough."}]}`}
	store := &fakeVideoStore{video: completedVideo("vid1")}
	svc := NewFurtherReadingService(gen, store)

	_, err := svc.Generate(context.Background(), "vid1", "transcript", nil)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if !strings.Contains(err.Error(), "not enough valid recommendations") {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if store.furtherReadingCalls != 0 {
		t.Errorf("rejected output must not be persisted, got %d calls", store.furtherReadingCalls)
	}
}

func TestFurtherReadingService_NonJSONIsFatal(t *testing.T) {
	gen := &fakeGenerator{response: "Here are some books you might enjoy:\n1. A book"}
	svc := NewFurtherReadingService(gen, &fakeVideoStore{video: completedVideo("vid1")})

	_, err := svc.Generate(context.Background(), "vid1", "transcript", nil)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if err.Error() != "Failed to parse response" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestFurtherReadingService_PersistFailure(t *testing.T) {
	gen := &fakeGenerator{response: readingJSON}
	store := &fakeVideoStore{video: completedVideo("vid1"), updateErr: errors.New("connection reset")}
	svc := NewFurtherReadingService(gen, store)

	_, err := svc.Generate(context.Background(), "vid1", "transcript", nil)
	if err == nil || !strings.Contains(err.Error(), "failed to save further reading") {
		t.Fatalf("expected wrapped persist error, got %v", err)
	}
}

func TestFurtherReadingService_ConceptsSteerPrompt(t *testing.T) {
	gen := &fakeGenerator{response: readingJSON}
	svc := NewFurtherReadingService(gen, &fakeVideoStore{video: completedVideo("vid1")})

	summary := &models.VideoSummary{MainConcepts: []string{"merge sort", "recursion"}}
	if _, err := svc.Generate(context.Background(), "vid1", "transcript", summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gen.lastPrompt, "merge sort, recursion") {
		t.Errorf("expected concepts in prompt, got:\n%s", gen.lastPrompt)
	}
}

func TestParseFurtherReading_FilteringAndFences(t *testing.T) {
	fenced := "```json\n" + `{"recommendations": [
		{"title": "  Kept  ", "author": "A", "description": "d"},
		{"title": "", "author": "B", "description": "d"},
		{"title": "No Author", "author": "   ", "description": "d"},
		{"title": "Also Kept", "author": "C", "description": "d"}
	]}` + "\n```"

	items, err := parseFurtherReading(fenced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected blank-field items dropped, got %d", len(items))
	}
	if items[0].Title != "Kept" {
		t.Errorf("expected trimmed title, got %q", items[0].Title)
	}
}
