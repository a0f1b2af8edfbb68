package app

import (
	"context"
	"fmt"
	"time"

	"mcq-service/internal/domain"
	"github.com/google/uuid"
)

// QuestionStore owns the question collection. Every mutating method applies
// its change and captures the post-mutation snapshot atomically.
type QuestionStore interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	Find(ctx context.Context, id string) (domain.Question, error)
	Insert(ctx context.Context, q domain.Question) (domain.Snapshot, error)
	// Modify runs fn against the current record under the store's write lock.
	// If fn fails the record is left untouched.
	Modify(ctx context.Context, id string, fn func(domain.Question) (domain.Question, error)) (domain.Question, domain.Snapshot, error)
	Remove(ctx context.Context, id string) (domain.Snapshot, error)
}

// AnswerLog records answer submissions (in-memory, Redis, SQLite).
type AnswerLog interface {
	Record(ctx context.Context, submission domain.AnswerSubmission) error
	History(ctx context.Context, userID string) ([]domain.AnswerSubmission, error)
}

// QuestionService contains the role-gated question use cases.
type QuestionService struct {
	store   QuestionStore
	answers AnswerLog
	feed    *SnapshotFeed
	now     func() time.Time
	newID   func() string
}

func NewQuestionService(store QuestionStore, answers AnswerLog) *QuestionService {
	return NewQuestionServiceWithClock(store, answers, time.Now)
}

// NewQuestionServiceWithClock is test-only for deterministic timestamps.
func NewQuestionServiceWithClock(store QuestionStore, answers AnswerLog, now func() time.Time) *QuestionService {
	return &QuestionService{
		store:   store,
		answers: answers,
		feed:    NewSnapshotFeed(),
		now:     now,
		newID:   uuid.NewString,
	}
}

// List returns the records visible to principal in insertion order. An absent
// principal gets an empty list rather than an error.
func (s *QuestionService) List(ctx context.Context, principal domain.Principal) (domain.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return snap.Visible(principal), nil
}

// Published returns only published records, whatever the caller's role.
func (s *QuestionService) Published(ctx context.Context, principal domain.Principal) ([]domain.Question, error) {
	if !principal.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	// Visibility for a plain user is exactly "published".
	return domain.VisibleTo(domain.Principal{ID: principal.ID, Role: domain.RoleUser}, snap.Questions), nil
}

// Get fetches a single record, hiding unpublished records from non-admins.
func (s *QuestionService) Get(ctx context.Context, principal domain.Principal, id string) (domain.Question, error) {
	if !principal.Authenticated() {
		return domain.Question{}, domain.ErrUnauthorized
	}
	q, err := s.store.Find(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	if !q.IsPublished && !principal.IsAdmin() {
		return domain.Question{}, domain.ErrForbidden
	}
	return q, nil
}

// Create validates the draft, stores it and returns the record together with
// the refreshed snapshot visible to the caller.
func (s *QuestionService) Create(ctx context.Context, principal domain.Principal, draft domain.Draft) (domain.Question, domain.Snapshot, error) {
	if err := requireAdmin(principal); err != nil {
		return domain.Question{}, domain.Snapshot{}, err
	}

	now := s.now()
	q := domain.Question{
		ID:            s.newID(),
		Title:         draft.Title,
		Options:       append([]string(nil), draft.Options...),
		CorrectAnswer: draft.CorrectAnswer,
		IsPublished:   draft.IsPublished,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := domain.ValidateQuestion(q); err != nil {
		return domain.Question{}, domain.Snapshot{}, err
	}

	snap, err := s.store.Insert(ctx, q)
	if err != nil {
		return domain.Question{}, domain.Snapshot{}, err
	}
	s.feed.Publish(snap)
	return q, snap.Visible(principal), nil
}

// Update merges the patch and re-validates the merged record.
func (s *QuestionService) Update(ctx context.Context, principal domain.Principal, id string, patch domain.Patch) (domain.Question, domain.Snapshot, error) {
	if err := requireAdmin(principal); err != nil {
		return domain.Question{}, domain.Snapshot{}, err
	}

	updated, snap, err := s.store.Modify(ctx, id, func(current domain.Question) (domain.Question, error) {
		next := patch.Apply(current)
		if err := domain.ValidateQuestion(next); err != nil {
			return domain.Question{}, err
		}
		next.UpdatedAt = s.now()
		return next, nil
	})
	if err != nil {
		return domain.Question{}, domain.Snapshot{}, err
	}
	s.feed.Publish(snap)
	return updated, snap.Visible(principal), nil
}

// Delete removes the record; its id is never handed out again.
func (s *QuestionService) Delete(ctx context.Context, principal domain.Principal, id string) (domain.Snapshot, error) {
	if err := requireAdmin(principal); err != nil {
		return domain.Snapshot{}, err
	}
	snap, err := s.store.Remove(ctx, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	s.feed.Publish(snap)
	return snap.Visible(principal), nil
}

// SetPublished toggles visibility for non-admins. updatedAt moves on every call.
func (s *QuestionService) SetPublished(ctx context.Context, principal domain.Principal, id string, published bool) (domain.Question, domain.Snapshot, error) {
	if err := requireAdmin(principal); err != nil {
		return domain.Question{}, domain.Snapshot{}, err
	}

	updated, snap, err := s.store.Modify(ctx, id, func(current domain.Question) (domain.Question, error) {
		next := current.Clone()
		next.IsPublished = published
		next.UpdatedAt = s.now()
		return next, nil
	})
	if err != nil {
		return domain.Question{}, domain.Snapshot{}, err
	}
	s.feed.Publish(snap)
	return updated, snap.Visible(principal), nil
}

// SubmitAnswer records the principal's choice. Correctness is not evaluated here;
// scoring happens in the client's QuizSession.
func (s *QuestionService) SubmitAnswer(ctx context.Context, principal domain.Principal, id, answer string) (domain.AnswerSubmission, error) {
	q, err := s.Get(ctx, principal, id)
	if err != nil {
		return domain.AnswerSubmission{}, err
	}
	if !q.HasOption(answer) {
		return domain.AnswerSubmission{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, domain.ErrOptionNotFound)
	}

	submission := domain.AnswerSubmission{
		QuestionID:  q.ID,
		UserID:      principal.ID,
		Answer:      answer,
		SubmittedAt: s.now(),
	}
	if err := s.answers.Record(ctx, submission); err != nil {
		return domain.AnswerSubmission{}, fmt.Errorf("record answer: %w", err)
	}
	return submission, nil
}

// Answers lists the caller's own submissions, oldest first.
func (s *QuestionService) Answers(ctx context.Context, principal domain.Principal) ([]domain.AnswerSubmission, error) {
	if !principal.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	return s.answers.History(ctx, principal.ID)
}

// Subscribe returns a channel that receives the caller-visible snapshot after
// every mutation, starting with the current one. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *QuestionService) Subscribe(ctx context.Context, principal domain.Principal) (<-chan domain.Snapshot, func(), error) {
	if !principal.Authenticated() {
		return nil, nil, domain.ErrUnauthorized
	}
	current, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.Subscribe(principal, current)
	return ch, cancel, nil
}

func requireAdmin(principal domain.Principal) error {
	if !principal.Authenticated() {
		return domain.ErrUnauthorized
	}
	if !principal.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
