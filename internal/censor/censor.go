// Package censor masks profanity in user-supplied text through the apilayer
// bad_words API.
package censor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrUnavailable = errors.New("profanity check unavailable")

type Checker interface {
	Censor(ctx context.Context, content string) (string, error)
}

// Nop returns content unchanged. It is used when no API key is configured.
type Nop struct{}

func (Nop) Censor(_ context.Context, content string) (string, error) {
	return content, nil
}

type Client struct {
	http   *resty.Client
	apiKey string
}

type badWordsResponse struct {
	Content         string `json:"content"`
	BadWordsTotal   int    `json:"bad_words_total"`
	CensoredContent string `json:"censored_content"`
}

func NewClient(baseURL, apiKey string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil || resp == nil {
				return true
			}
			return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500
		})
	return &Client{http: c, apiKey: apiKey}
}

func (c *Client) Censor(ctx context.Context, content string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("apikey", c.apiKey).
		SetQueryParam("censor_character", "*").
		SetBody(content).
		Post("/bad_words")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, resp.Status())
	}
	var out badWordsResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return out.CensoredContent, nil
}
