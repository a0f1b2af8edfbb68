package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mcq-service/internal/domain"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestDoJSONReturnsServiceUnavailable(t *testing.T) {
	c := New("http://example.test", &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial error")
		}),
	})

	_, err := c.Questions(context.Background())
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable wrapper, got %v", err)
	}
}

func TestDoJSONReturnsAPIErrorMessageFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "forbidden"})
	}))
	defer server.Close()

	c := New(server.URL, server.Client())
	_, err := c.Questions(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Message != "forbidden" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestLoginStoresTokenForLaterCalls(t *testing.T) {
	var seenAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "user@example.com" || req.Password != "password" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(sessionResponse{Token: "tok-1", User: domain.Account{ID: "user-1", Role: domain.RoleUser}})
	})
	mux.HandleFunc("/mcqs/published", func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(questionsResponse{Questions: []domain.Question{{ID: "q1", Title: "T", Options: []string{"A", "B"}, CorrectAnswer: "A"}}})
	})
	mux.HandleFunc("/mcqs/q1/answers", func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.AnswerSubmission{QuestionID: "q1", UserID: "user-1", Answer: req.Answer})
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	c := New(server.URL+"/", server.Client())
	account, err := c.Login(ctx, "user@example.com", "password")
	if err != nil || account.ID != "user-1" {
		t.Fatalf("login: %+v %v", account, err)
	}

	questions, err := c.PublishedQuestions(ctx)
	if err != nil || len(questions) != 1 {
		t.Fatalf("published: %+v %v", questions, err)
	}
	if seenAuth != "Bearer tok-1" {
		t.Fatalf("authorization header = %q", seenAuth)
	}

	submission, err := c.SubmitAnswer(ctx, "q1", "A")
	if err != nil || submission.Answer != "A" {
		t.Fatalf("submit: %+v %v", submission, err)
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
}
