package app

import (
	"sync"

	"mcq-service/internal/domain"
)

// QuestionState is the per-question progress inside a QuizSession.
type QuestionState int

const (
	StateUnanswered QuestionState = iota
	StateAnswered
	StateRevealed
)

func (s QuestionState) String() string {
	switch s {
	case StateAnswered:
		return "answered"
	case StateRevealed:
		return "revealed"
	default:
		return "unanswered"
	}
}

// QuizSession accumulates one client's answers against a fixed question set.
// Nothing here is persisted; the score is recomputed on demand.
type QuizSession struct {
	mu        sync.RWMutex
	questions []domain.Question
	index     map[string]int
	answers   map[string]string
	revealed  bool
}

func NewQuizSession(questions []domain.Question) *QuizSession {
	s := &QuizSession{
		questions: make([]domain.Question, 0, len(questions)),
		index:     make(map[string]int, len(questions)),
		answers:   make(map[string]string, len(questions)),
	}
	for _, q := range questions {
		if _, dup := s.index[q.ID]; dup {
			continue
		}
		s.index[q.ID] = len(s.questions)
		s.questions = append(s.questions, q.Clone())
	}
	return s
}

// Questions returns the active set in presentation order.
func (s *QuizSession) Questions() []domain.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.Clone()
	}
	return out
}

// Select stores (or replaces) the chosen option for a question.
func (s *QuizSession) Select(questionID, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revealed {
		return domain.ErrQuizRevealed
	}
	i, ok := s.index[questionID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	if !s.questions[i].HasOption(option) {
		return domain.ErrOptionNotFound
	}
	s.answers[questionID] = option
	return nil
}

// Answer returns the stored choice for a question, if any.
func (s *QuizSession) Answer(questionID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.answers[questionID]
	return a, ok
}

// State reports the progress of one question; ok is false for ids outside
// the session.
func (s *QuizSession) State(questionID string) (state QuestionState, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.index[questionID]; !ok {
		return StateUnanswered, false
	}
	if s.revealed {
		return StateRevealed, true
	}
	if _, ok := s.answers[questionID]; ok {
		return StateAnswered, true
	}
	return StateUnanswered, true
}

// Progress reports how many questions have an answer out of the total.
func (s *QuizSession) Progress() (answered, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.answers), len(s.questions)
}

func (s *QuizSession) Revealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revealed
}

// Reveal moves every question to Revealed once all of them are answered.
// Calling it again after a successful reveal returns the same score.
func (s *QuizSession) Reveal() (domain.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.revealed {
		if len(s.questions) == 0 || len(s.answers) < len(s.questions) {
			return domain.Score{}, domain.ErrQuizIncomplete
		}
		s.revealed = true
	}
	return s.scoreLocked(), nil
}

// Score recomputes the current tally. The bool is false until Reveal succeeded.
func (s *QuizSession) Score() (domain.Score, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scoreLocked(), s.revealed
}

// Reset clears every answer and returns all questions to Unanswered.
func (s *QuizSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = make(map[string]string, len(s.questions))
	s.revealed = false
}

func (s *QuizSession) scoreLocked() domain.Score {
	score := domain.Score{Total: len(s.questions)}
	for _, q := range s.questions {
		if a, ok := s.answers[q.ID]; ok && a == q.CorrectAnswer {
			score.Correct++
		}
	}
	score.Percentage = Percentage(score.Correct, score.Total)
	return score
}

// Percentage rounds 100*correct/total half away from zero; 0 when total is 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}
