package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"reelearn-backend/internal/models"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

// ListRecentByVideo returns up to limit comments for the video, newest
// first. The comment-summary pipeline reads its bounded window through this.
func (r *CommentRepo) ListRecentByVideo(ctx context.Context, videoID string, limit int) ([]models.Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, video_id, user_id, content, likes, created_at
		FROM comments WHERE video_id = $1
		ORDER BY created_at DESC LIMIT $2`,
		videoID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.VideoID, &c.UserID, &c.Content, &c.Likes, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Create inserts a comment and bumps the video's comment counter.
func (r *CommentRepo) Create(ctx context.Context, c *models.Comment) error {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO comments (id, video_id, user_id, content, likes, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)`,
		c.ID, c.VideoID, c.UserID, c.Content, c.CreatedAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE videos SET comment_count = comment_count + 1 WHERE id = $1`,
		c.VideoID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
