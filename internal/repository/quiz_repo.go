package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"reelearn-backend/internal/models"
)

type QuizRepo struct {
	pool *pgxpool.Pool
}

func NewQuizRepo(pool *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{pool: pool}
}

// Upsert stores the quiz for its video, replacing any previously generated
// one. One quiz row exists per video.
func (r *QuizRepo) Upsert(ctx context.Context, q *models.Quiz) error {
	questionsJSON, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO quizzes (id, video_id, questions_json, question_count, generated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (video_id) DO UPDATE SET
			id = EXCLUDED.id,
			questions_json = EXCLUDED.questions_json,
			question_count = EXCLUDED.question_count,
			generated_at = EXCLUDED.generated_at`,
		q.ID, q.VideoID, questionsJSON, len(q.Questions), q.GeneratedAt,
	)
	return err
}

func (r *QuizRepo) GetByVideoID(ctx context.Context, videoID string) (*models.Quiz, error) {
	var (
		q             models.Quiz
		questionsJSON []byte
	)

	err := r.pool.QueryRow(ctx,
		`SELECT id, video_id, questions_json, generated_at FROM quizzes WHERE video_id = $1`,
		videoID,
	).Scan(&q.ID, &q.VideoID, &questionsJSON, &q.GeneratedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(questionsJSON, &q.Questions); err != nil {
		return nil, err
	}
	return &q, nil
}
