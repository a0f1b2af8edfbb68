package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"mcq-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AnswerLog stores answer submissions in Redis, one list per user:
// RPUSH mcq:answers:{userID} {json submission}
// The list expires ttl after the latest submission; ttl <= 0 keeps it forever.
type AnswerLog struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAnswerLog(client *redis.Client, ttl time.Duration) *AnswerLog {
	return &AnswerLog{client: client, ttl: ttl}
}

func (l *AnswerLog) Record(ctx context.Context, submission domain.AnswerSubmission) error {
	payload, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	key := l.key(submission.UserID)
	pipe := l.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	if ttl := l.ttlWithJitter(); ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push answer: %w", err)
	}
	return nil
}

func (l *AnswerLog) History(ctx context.Context, userID string) ([]domain.AnswerSubmission, error) {
	raw, err := l.client.LRange(ctx, l.key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	out := make([]domain.AnswerSubmission, 0, len(raw))
	for _, item := range raw {
		var submission domain.AnswerSubmission
		if err := json.Unmarshal([]byte(item), &submission); err != nil {
			return nil, fmt.Errorf("unmarshal answer: %w", err)
		}
		out = append(out, submission)
	}
	return out, nil
}

func (l *AnswerLog) key(userID string) string {
	return "mcq:answers:" + userID
}

func (l *AnswerLog) ttlWithJitter() time.Duration {
	if l.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(l.ttl) / 10
	return l.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
