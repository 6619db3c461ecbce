package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alphabot-ai/qna/internal/auth"
	"github.com/alphabot-ai/qna/internal/client"
	"github.com/alphabot-ai/qna/internal/config"
	httpapp "github.com/alphabot-ai/qna/internal/http"
	"github.com/alphabot-ai/qna/internal/model"
	"github.com/alphabot-ai/qna/internal/store/memory"
)

func newServer(t *testing.T) string {
	t.Helper()
	st := memory.New()
	cfg := config.Config{BcryptCost: 4}
	authSvc := auth.NewService(st, auth.HMACKeys([]byte("test")), time.Hour)
	ts := httptest.NewServer(httpapp.NewServer(httpapp.Deps{Store: st, Auth: authSvc}, cfg))
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestQuestionLifecycle(t *testing.T) {
	ctx := context.Background()
	c, err := client.NewTestHelper(newServer(t)).CreateAuthenticatedClient(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, c.Token)

	require.NoError(t, c.AddQuestion(ctx, model.Question{ID: 1, Title: "What is Rust?", Content: "tell me", Tags: []string{"rust"}}))
	require.NoError(t, c.AddQuestion(ctx, model.Question{Title: "Second", Content: "body"}))

	all, err := c.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, model.ID(2), all[1].ID)

	ranged, err := c.ListQuestionRange(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	require.Equal(t, []string{"rust"}, ranged[0].Tags)

	require.NoError(t, c.UpdateQuestion(ctx, 1, model.Question{Title: "Renamed"}))
	got, err := c.GetQuestion(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Title)
	require.Empty(t, got.Content)
	require.Nil(t, got.Tags)

	require.NoError(t, c.AddAnswer(ctx, 1, "an answer"))
	answers, err := c.ListAnswers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	require.Equal(t, "an answer", answers[0].Content)

	require.NoError(t, c.DeleteQuestion(ctx, 1))
	_, err = c.GetQuestion(ctx, 1)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "Question not found", apiErr.Message)
}

func TestRegisterTwice(t *testing.T) {
	ctx := context.Background()
	c := client.New(newServer(t))
	require.NoError(t, c.Register(ctx, "ann@example.com", "pw"))
	require.ErrorIs(t, c.Register(ctx, "ann@example.com", "pw"), client.ErrAlreadyRegistered)
}

func TestLoginFailure(t *testing.T) {
	ctx := context.Background()
	c := client.New(newServer(t))
	require.NoError(t, c.Register(ctx, "ann@example.com", "pw"))

	_, err := c.Login(ctx, "ann@example.com", "nope")
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Wrong credentials", apiErr.Message)
	require.Empty(t, c.Token)
}

func TestWritesNeedToken(t *testing.T) {
	ctx := context.Background()
	c := client.New(newServer(t))

	err := c.AddQuestion(ctx, model.Question{Title: "t", Content: "c"})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "Invalid token", apiErr.Message)
}
