// Package client provides a Go client for the questions and answers API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/alphabot-ai/qna/internal/model"
)

var ErrAlreadyRegistered = errors.New("already registered")

// Client is an API client. Token is sent as a bearer token once set, either
// directly or by Login.
type Client struct {
	BaseURL string
	Token   string
	http    *resty.Client
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second).
			SetAllowGetMethodPayload(true),
	}
}

func (c *Client) Register(ctx context.Context, email, password string) error {
	err := c.do(ctx, http.MethodPost, "/accounts", nil, model.Account{Email: email, Password: password}, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		return ErrAlreadyRegistered
	}
	return err
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"client_id": email, "client_secret": password}
	var result struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.do(ctx, http.MethodGet, "/login", nil, body, &result); err != nil {
		return "", err
	}
	c.Token = result.AccessToken
	return result.AccessToken, nil
}

func (c *Client) ListQuestions(ctx context.Context) ([]model.Question, error) {
	var out []model.Question
	if err := c.do(ctx, http.MethodGet, "/questions", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListQuestionRange(ctx context.Context, start, end model.ID) ([]model.Question, error) {
	query := map[string]string{"start": start.String(), "end": end.String()}
	var out []model.Question
	if err := c.do(ctx, http.MethodGet, "/questions", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetQuestion(ctx context.Context, id model.ID) (*model.Question, error) {
	var out model.Question
	if err := c.do(ctx, http.MethodGet, "/question", idQuery(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddQuestion(ctx context.Context, q model.Question) error {
	return c.do(ctx, http.MethodPost, "/questions", nil, q, nil)
}

func (c *Client) UpdateQuestion(ctx context.Context, id model.ID, q model.Question) error {
	return c.do(ctx, http.MethodPut, "/questions", idQuery(id), q, nil)
}

func (c *Client) DeleteQuestion(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, "/questions", idQuery(id), nil, nil)
}

func (c *Client) AddAnswer(ctx context.Context, questionID model.ID, content string) error {
	return c.do(ctx, http.MethodPost, "/answers", nil, model.Answer{QuestionID: questionID, Content: content}, nil)
}

func (c *Client) ListAnswers(ctx context.Context, questionID model.ID) ([]model.Answer, error) {
	var out []model.Answer
	if err := c.do(ctx, http.MethodGet, "/answers", idQuery(questionID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if c.Token != "" {
		req.SetAuthToken(c.Token)
	}
	if query != nil {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Message: errorMessage(resp.Body())}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resp.Body(), out)
}

// errorMessage pulls the message out of a {status, error} body, falling back
// to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}

func idQuery(id model.ID) map[string]string {
	return map[string]string{"id": id.String()}
}

// TestHelper provides utilities for creating authenticated clients in tests.
type TestHelper struct {
	BaseURL string
}

func NewTestHelper(baseURL string) *TestHelper {
	return &TestHelper{BaseURL: baseURL}
}

// CreateAuthenticatedClient registers email (if needed) and returns a client
// holding a token for it.
func (h *TestHelper) CreateAuthenticatedClient(ctx context.Context, email string) (*Client, error) {
	const password = "correct horse battery staple"
	c := New(h.BaseURL)
	if err := c.Register(ctx, email, password); err != nil && !errors.Is(err, ErrAlreadyRegistered) {
		return nil, fmt.Errorf("register: %w", err)
	}
	if _, err := c.Login(ctx, email, password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c, nil
}

func (h *TestHelper) GetToken(email string) (string, error) {
	c, err := h.CreateAuthenticatedClient(context.Background(), email)
	if err != nil {
		return "", err
	}
	return c.Token, nil
}
