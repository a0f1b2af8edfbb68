package memory

import (
	"context"
	"testing"
	"time"

	"mcq-service/internal/domain"
)

func TestAnswerLogKeepsPerUserOrder(t *testing.T) {
	ctx := context.Background()
	log := NewAnswerLog()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = log.Record(ctx, domain.AnswerSubmission{QuestionID: "1", UserID: "u1", Answer: "Paris", SubmittedAt: now})
	_ = log.Record(ctx, domain.AnswerSubmission{QuestionID: "2", UserID: "u2", Answer: "Java", SubmittedAt: now})
	_ = log.Record(ctx, domain.AnswerSubmission{QuestionID: "2", UserID: "u1", Answer: "JavaScript", SubmittedAt: now.Add(time.Second)})

	got, err := log.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 2 || got[0].QuestionID != "1" || got[1].Answer != "JavaScript" {
		t.Fatalf("unexpected history %+v", got)
	}

	empty, _ := log.History(ctx, "nobody")
	if len(empty) != 0 {
		t.Fatalf("expected empty history, got %+v", empty)
	}
}
