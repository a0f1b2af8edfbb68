package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"mcq-service/internal/domain"
)

var ErrServiceUnavailable = errors.New("mcq service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// Client talks to the MCQ REST API on behalf of one logged-in account.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type errorResponse struct {
	Error string `json:"error"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string         `json:"token"`
	User  domain.Account `json:"user"`
}

type questionsResponse struct {
	Questions []domain.Question `json:"questions"`
	Version   uint64            `json:"version"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answersResponse struct {
	Answers []domain.AnswerSubmission `json:"answers"`
}

func New(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// Login exchanges credentials for a bearer token used by later calls.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Account, error) {
	var session sessionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &session); err != nil {
		return domain.Account{}, err
	}
	c.token = session.Token
	return session.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return nil
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Questions returns everything the account may see.
func (c *Client) Questions(ctx context.Context) ([]domain.Question, error) {
	var payload questionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/mcqs", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Questions, nil
}

// PublishedQuestions returns only published records, even for admins.
func (c *Client) PublishedQuestions(ctx context.Context) ([]domain.Question, error) {
	var payload questionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/mcqs/published", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Questions, nil
}

func (c *Client) SubmitAnswer(ctx context.Context, questionID, answer string) (domain.AnswerSubmission, error) {
	if strings.TrimSpace(questionID) == "" {
		return domain.AnswerSubmission{}, errors.New("question id is required")
	}
	var submission domain.AnswerSubmission
	path := "/mcqs/" + url.PathEscape(questionID) + "/answers"
	if err := c.doJSON(ctx, http.MethodPost, path, answerRequest{Answer: answer}, &submission); err != nil {
		return domain.AnswerSubmission{}, err
	}
	return submission, nil
}

func (c *Client) Answers(ctx context.Context) ([]domain.AnswerSubmission, error) {
	var payload answersResponse
	if err := c.doJSON(ctx, http.MethodGet, "/me/answers", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Answers, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
