package memory

import (
	"context"
	"sync"

	"mcq-service/internal/domain"
)

// AnswerLog is an in-memory implementation of app.AnswerLog.
type AnswerLog struct {
	mu     sync.RWMutex
	byUser map[string][]domain.AnswerSubmission
}

func NewAnswerLog() *AnswerLog {
	return &AnswerLog{
		byUser: make(map[string][]domain.AnswerSubmission),
	}
}

func (l *AnswerLog) Record(_ context.Context, submission domain.AnswerSubmission) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byUser[submission.UserID] = append(l.byUser[submission.UserID], submission)
	return nil
}

func (l *AnswerLog) History(_ context.Context, userID string) ([]domain.AnswerSubmission, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := l.byUser[userID]
	out := make([]domain.AnswerSubmission, len(entries))
	copy(out, entries)
	return out, nil
}
