package repository

import (
	"testing"
	"time"
)

// stubVideoRow feeds scanVideo a row with controllable JSONB payloads.
type stubVideoRow struct {
	summaryJSON        []byte
	furtherReadingJSON []byte
	commentSummaryJSON []byte
}

func (r stubVideoRow) Scan(dest ...any) error {
	*dest[0].(*string) = "vid1"
	*dest[1].(*string) = "Intro to Sorting"
	*dest[2].(*string) = "Computer Science"
	*dest[3].(*string) = "https://cdn.example.com/vid1.mp4"
	// thumbnail_url and transcript stay NULL
	*dest[6].(*string) = "completed"
	*dest[7].(*[]byte) = r.summaryJSON
	*dest[8].(*[]byte) = r.furtherReadingJSON
	*dest[9].(*[]byte) = r.commentSummaryJSON
	*dest[10].(*int) = 3
	*dest[11].(*int) = 7
	*dest[12].(*time.Time) = time.Now()
	*dest[13].(*time.Time) = time.Now()
	return nil
}

func TestScanVideo_ValidArtifacts(t *testing.T) {
	row := stubVideoRow{
		summaryJSON:        []byte(`{"key_points": ["a"], "main_concepts": ["b"], "generated_at": "2026-08-01T10:00:00Z"}`),
		furtherReadingJSON: []byte(`[{"title": "T", "author": "A", "description": "D"}]`),
		commentSummaryJSON: []byte(`{"summary": "fine", "confusionPoints": [], "valuableInsights": [], "sentiment": "ok", "lastUpdated": "2026-08-01T10:00:00Z", "commentCount": 6}`),
	}

	v, err := scanVideo(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Summary == nil || len(v.Summary.KeyPoints) != 1 {
		t.Errorf("expected decoded summary, got %+v", v.Summary)
	}
	if len(v.FurtherReading) != 1 || v.FurtherReading[0].Title != "T" {
		t.Errorf("expected decoded further reading, got %+v", v.FurtherReading)
	}
	if v.CommentSummary == nil || v.CommentSummary.CommentCount != 6 {
		t.Errorf("expected decoded comment summary, got %+v", v.CommentSummary)
	}
}

func TestScanVideo_MalformedArtifactsDropped(t *testing.T) {
	row := stubVideoRow{
		summaryJSON:        []byte(`{"key_points": "not an array"`),
		furtherReadingJSON: []byte(`{"title": "object, not array"}`),
		commentSummaryJSON: []byte(`[]`),
	}

	v, err := scanVideo(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Summary != nil {
		t.Errorf("malformed summary must be dropped, got %+v", v.Summary)
	}
	if v.FurtherReading != nil {
		t.Errorf("malformed further reading must be dropped, got %+v", v.FurtherReading)
	}
	if v.CommentSummary != nil {
		t.Errorf("malformed comment summary must be dropped, got %+v", v.CommentSummary)
	}
}

func TestScanVideo_EmptyArtifactsStayNil(t *testing.T) {
	v, err := scanVideo(stubVideoRow{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Summary != nil || v.FurtherReading != nil || v.CommentSummary != nil {
		t.Errorf("expected nil artifacts for NULL columns, got %+v", v)
	}
}
