package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mcq-service/internal/app"
	"mcq-service/internal/auth"
	"mcq-service/internal/client"
	"mcq-service/internal/config"
	"mcq-service/internal/domain"
	"mcq-service/internal/infra/memory"
	transport "mcq-service/internal/transport/http"
	"golang.org/x/crypto/bcrypt"
)

func newPlayServer(t *testing.T) (*httptest.Server, *app.QuestionService) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewQuestionStore()
	if _, err := store.Seed(ctx, memory.NewStaticQuestionLoader(sampleQuestions())); err != nil {
		t.Fatalf("seed: %v", err)
	}
	service := app.NewQuestionService(store, memory.NewAnswerLog())
	directory := auth.NewDirectory(bcrypt.MinCost)
	if err := auth.SeedDemoAccounts(directory); err != nil {
		t.Fatalf("seed accounts: %v", err)
	}
	server := httptest.NewServer(transport.NewRouter(transport.RouterConfig{
		Service:   service,
		Directory: directory,
		Issuer:    auth.NewTokenIssuer("secret", time.Hour, memory.NewRevocationStore()),
	}))
	t.Cleanup(server.Close)
	return server, service
}

func TestPlayScoresPublishedQuestions(t *testing.T) {
	server, service := newPlayServer(t)

	// Question 1: "Paris" is option 2. Question 2: "Java" (wrong) after one bad entry.
	in := strings.NewReader("2\nnine\n1\n")
	var out bytes.Buffer
	c := client.New(server.URL, server.Client())
	if err := runPlay(context.Background(), c, "user@example.com", "password", in, &out); err != nil {
		t.Fatalf("play: %v\n%s", err, out.String())
	}

	text := out.String()
	if !strings.Contains(text, "Score: 1/2 (50%)") {
		t.Fatalf("unexpected transcript:\n%s", text)
	}
	if strings.Contains(text, "first iPhone") {
		t.Fatalf("unpublished question leaked into the quiz:\n%s", text)
	}
	if !strings.Contains(text, "pick a number between 1 and 4") {
		t.Fatalf("expected a retry prompt:\n%s", text)
	}

	history, err := service.Answers(context.Background(), domain.Principal{ID: "user-1", Role: domain.RoleUser})
	if err != nil || len(history) != 2 {
		t.Fatalf("expected both answers recorded, got %+v (%v)", history, err)
	}
}

func TestPlayStopsOnEarlyEOF(t *testing.T) {
	server, _ := newPlayServer(t)
	var out bytes.Buffer
	c := client.New(server.URL, server.Client())
	err := runPlay(context.Background(), c, "user@example.com", "password", strings.NewReader("2\n"), &out)
	if err == nil || !strings.Contains(err.Error(), "input ended") {
		t.Fatalf("expected early EOF error, got %v", err)
	}
}

func TestPlayRejectsBadLogin(t *testing.T) {
	server, _ := newPlayServer(t)
	c := client.New(server.URL, server.Client())
	err := runPlay(context.Background(), c, "user@example.com", "nope", strings.NewReader(""), &bytes.Buffer{})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 401 {
		t.Fatalf("expected 401 api error, got %v", err)
	}
}

func TestHashPasswordCommand(t *testing.T) {
	cmd := NewHashPasswordCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--cost", "4", "hunter22"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter22")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}

	short := NewHashPasswordCmd()
	short.SetOut(&bytes.Buffer{})
	short.SetErr(&bytes.Buffer{})
	short.SetArgs([]string{"abc"})
	if err := short.Execute(); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
}

func TestBuildDirectoryFromConfig(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("rootpass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cfg := config.Default()
	cfg.Auth.Users = []config.User{{ID: "a1", Name: "Root", Email: "root@example.com", Role: "admin", PasswordHash: string(hash)}}

	directory, err := buildDirectory(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	account, err := directory.Authenticate(auth.LoginRequest{Email: "root@example.com", Password: "rootpass"})
	if err != nil || account.Role != domain.RoleAdmin {
		t.Fatalf("configured admin login: %+v %v", account, err)
	}
	if _, err := directory.Authenticate(auth.LoginRequest{Email: "admin@example.com", Password: "password"}); err == nil {
		t.Fatalf("demo accounts must not exist when users are configured")
	}

	cfg.Auth.Users[0].Role = "superuser"
	if _, err := buildDirectory(cfg); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected unknown role rejected, got %v", err)
	}
}

func TestOpenAnswerLogDrivers(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Answers.Driver = config.AnswersSQLite
	cfg.Answers.SQLitePath = filepath.Join(t.TempDir(), "answers.db")

	answers, closeFn, err := openAnswerLog(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer closeFn()
	if err := answers.Record(ctx, domain.AnswerSubmission{QuestionID: "1", UserID: "u", Answer: "Paris", SubmittedAt: time.Now()}); err != nil {
		t.Fatalf("record: %v", err)
	}

	cfg.Answers.Driver = config.AnswersRedis
	if _, _, err := openAnswerLog(ctx, cfg, nil); err == nil {
		t.Fatalf("redis driver without a client should fail")
	}
}

func TestSampleQuestionsAreValid(t *testing.T) {
	for _, q := range sampleQuestions() {
		if err := domain.ValidateQuestion(q); err != nil {
			t.Fatalf("sample %s invalid: %v", q.ID, err)
		}
	}
}
