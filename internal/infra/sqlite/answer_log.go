package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mcq-service/internal/domain"
	_ "modernc.org/sqlite" // driver: sqlite
)

const schema = `
CREATE TABLE IF NOT EXISTS answers (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	question_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	answer TEXT NOT NULL,
	submitted_at_unix_nano INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_answers_user ON answers(user_id, seq);
`

// AnswerLog keeps answer submissions in a local SQLite file.
type AnswerLog struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*AnswerLog, error) {
	if strings.TrimSpace(path) == "" {
		path = "mcq-answers.db"
	}
	dsn := "file:" + path + "?mode=rwc&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init answers schema: %w", err)
	}
	return &AnswerLog{db: db}, nil
}

func (l *AnswerLog) Close() error {
	return l.db.Close()
}

func (l *AnswerLog) Record(ctx context.Context, submission domain.AnswerSubmission) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO answers (question_id, user_id, answer, submitted_at_unix_nano) VALUES (?, ?, ?, ?)`,
		submission.QuestionID, submission.UserID, submission.Answer, submission.SubmittedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}

func (l *AnswerLog) History(ctx context.Context, userID string) ([]domain.AnswerSubmission, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT question_id, user_id, answer, submitted_at_unix_nano FROM answers WHERE user_id = ? ORDER BY seq`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	out := []domain.AnswerSubmission{}
	for rows.Next() {
		var (
			submission domain.AnswerSubmission
			unixNano   int64
		)
		if err := rows.Scan(&submission.QuestionID, &submission.UserID, &submission.Answer, &unixNano); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		submission.SubmittedAt = time.Unix(0, unixNano).UTC()
		out = append(out, submission)
	}
	return out, rows.Err()
}
