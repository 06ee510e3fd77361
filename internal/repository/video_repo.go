package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"reelearn-backend/internal/models"
)

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

const videoColumns = `id, title, subject, video_url, thumbnail_url, transcript, transcription_status,
	summary_json, further_reading_json, comment_summary_json, like_count, comment_count, created_at, updated_at`

func (r *VideoRepo) GetByID(ctx context.Context, id string) (*models.Video, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
	return scanVideo(row)
}

// ListFeed returns the newest videos for the vertical feed.
func (r *VideoRepo) ListFeed(ctx context.Context, limit, offset int) ([]*models.Video, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+videoColumns+` FROM videos ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// UpdateSummary replaces the summary on the video record. Concurrent
// regenerations race with last-write-wins semantics.
func (r *VideoRepo) UpdateSummary(ctx context.Context, videoID string, summary models.VideoSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE videos SET summary_json = $1, updated_at = NOW() WHERE id = $2`,
		data, videoID,
	)
	return err
}

// UpdateFurtherReading replaces the full furtherReading array on the video
// record (the write is not additive).
func (r *VideoRepo) UpdateFurtherReading(ctx context.Context, videoID string, items []models.FurtherReading) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE videos SET further_reading_json = $1, updated_at = NOW() WHERE id = $2`,
		data, videoID,
	)
	return err
}

// UpdateCommentSummary replaces the comment summary on the video record.
func (r *VideoRepo) UpdateCommentSummary(ctx context.Context, videoID string, summary models.CommentSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE videos SET comment_summary_json = $1, updated_at = NOW() WHERE id = $2`,
		data, videoID,
	)
	return err
}

type pgxRow interface {
	Scan(dest ...any) error
}

func scanVideo(row pgxRow) (*models.Video, error) {
	var (
		v                  models.Video
		summaryJSON        []byte
		furtherReadingJSON []byte
		commentSummaryJSON []byte
	)

	err := row.Scan(
		&v.ID, &v.Title, &v.Subject, &v.VideoURL, &v.ThumbnailURL,
		&v.Transcript, &v.TranscriptionStatus,
		&summaryJSON, &furtherReadingJSON, &commentSummaryJSON,
		&v.LikeCount, &v.CommentCount, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(summaryJSON) > 0 {
		var s models.VideoSummary
		if json.Unmarshal(summaryJSON, &s) == nil && !s.GeneratedAt.IsZero() {
			v.Summary = &s
		}
	}
	if len(furtherReadingJSON) > 0 {
		var fr []models.FurtherReading
		if json.Unmarshal(furtherReadingJSON, &fr) == nil && len(fr) > 0 {
			v.FurtherReading = fr
		}
	}
	if len(commentSummaryJSON) > 0 {
		var cs models.CommentSummary
		if json.Unmarshal(commentSummaryJSON, &cs) == nil && cs.Summary != "" {
			v.CommentSummary = &cs
		}
	}

	return &v, nil
}
