package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"mcq-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader reads seed questions from the mcqs table.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, title, options, correct_answer, is_published, created_at, updated_at
		FROM mcqs
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("load mcqs: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			rawOptions []byte
		)
		if err := rows.Scan(&q.ID, &q.Title, &rawOptions, &q.CorrectAnswer, &q.IsPublished, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan mcq: %w", err)
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options for %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mcqs: %w", err)
	}
	return questions, nil
}
