package memory

import (
	"context"
	"fmt"
	"sync"

	"mcq-service/internal/domain"
)

// QuestionLoader fetches seed questions from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionStore is the in-memory implementation of app.QuestionStore. One
// RWMutex guards the whole collection: readers share it, every mutation and
// its snapshot are taken under the write lock.
type QuestionStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]domain.Question
	retired map[string]struct{}
	version uint64
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{
		records: make(map[string]domain.Question),
		retired: make(map[string]struct{}),
	}
}

// Seed inserts every question the loader returns, rejecting records that break
// the question invariants. Nothing is inserted if any record is rejected.
func (s *QuestionStore) Seed(ctx context.Context, loader QuestionLoader) (int, error) {
	questions, err := loader.LoadQuestions(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if err := domain.ValidateQuestion(q); err != nil {
			return 0, fmt.Errorf("seed question %s: %w", q.ID, err)
		}
		if _, dup := seen[q.ID]; dup || s.usedLocked(q.ID) {
			return 0, fmt.Errorf("seed question %s: %w", q.ID, domain.ErrDuplicateID)
		}
		seen[q.ID] = struct{}{}
	}
	for _, q := range questions {
		s.records[q.ID] = q.Clone()
		s.order = append(s.order, q.ID)
	}
	if len(questions) > 0 {
		s.version++
	}
	return len(questions), nil
}

func (s *QuestionStore) Snapshot(_ context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), nil
}

func (s *QuestionStore) Find(_ context.Context, id string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.records[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q.Clone(), nil
}

func (s *QuestionStore) Insert(_ context.Context, q domain.Question) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == "" || s.usedLocked(q.ID) {
		return domain.Snapshot{}, domain.ErrDuplicateID
	}
	s.records[q.ID] = q.Clone()
	s.order = append(s.order, q.ID)
	s.version++
	return s.snapshotLocked(), nil
}

func (s *QuestionStore) Modify(_ context.Context, id string, fn func(domain.Question) (domain.Question, error)) (domain.Question, domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[id]
	if !ok {
		return domain.Question{}, domain.Snapshot{}, domain.ErrQuestionNotFound
	}
	next, err := fn(current.Clone())
	if err != nil {
		return domain.Question{}, domain.Snapshot{}, err
	}
	// id and createdAt are owned by the store.
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt

	s.records[id] = next.Clone()
	s.version++
	return next, s.snapshotLocked(), nil
}

func (s *QuestionStore) Remove(_ context.Context, id string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return domain.Snapshot{}, domain.ErrQuestionNotFound
	}
	delete(s.records, id)
	s.retired[id] = struct{}{}
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.version++
	return s.snapshotLocked(), nil
}

func (s *QuestionStore) usedLocked(id string) bool {
	if _, ok := s.records[id]; ok {
		return true
	}
	_, ok := s.retired[id]
	return ok
}

func (s *QuestionStore) snapshotLocked() domain.Snapshot {
	questions := make([]domain.Question, 0, len(s.order))
	for _, id := range s.order {
		questions = append(questions, s.records[id].Clone())
	}
	return domain.Snapshot{Version: s.version, Questions: questions}
}

// StaticQuestionLoader is a simple loader backed by a slice (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, len(l.questions))
	for i, q := range l.questions {
		out[i] = q.Clone()
	}
	return out, nil
}
