package httpapp_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/alphabot-ai/qna/internal/auth"
	"github.com/alphabot-ai/qna/internal/client"
	"github.com/alphabot-ai/qna/internal/config"
	httpapp "github.com/alphabot-ai/qna/internal/http"
	"github.com/alphabot-ai/qna/internal/model"
	"github.com/alphabot-ai/qna/internal/rate"
	"github.com/alphabot-ai/qna/internal/store/sqlite"
)

func TestEndToEndServer(t *testing.T) {
	st, err := sqlite.Open("file:e2e_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer st.Close()

	cfg := config.Config{
		Addr:       ":0",
		TokenTTL:   time.Hour,
		BcryptCost: 4,
		RateLimits: config.RateLimits{WritePerMinute: 1000},
	}
	logger, _ := test.NewNullLogger()
	authSvc := auth.NewService(st, auth.HMACKeys([]byte("e2e")), cfg.TokenTTL)
	server := httpapp.NewServer(httpapp.Deps{
		Store:   st,
		Auth:    authSvc,
		Limiter: rate.NewMemory(),
		Logger:  logger,
	}, cfg)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	httpServer := &http.Server{Handler: server}
	go func() {
		_ = httpServer.Serve(listener)
	}()
	defer httpServer.Close()

	baseURL := "http://" + listener.Addr().String()
	ctx := context.Background()

	c, err := client.NewTestHelper(baseURL).CreateAuthenticatedClient(ctx, "e2e@example.com")
	require.NoError(t, err)

	require.NoError(t, c.AddQuestion(ctx, model.Question{ID: 1, Title: "What is Rust?", Content: "...", Tags: []string{"rust", " rust ", ""}}))
	require.NoError(t, c.AddQuestion(ctx, model.Question{ID: 12, Title: "Twelve", Content: "..."}))
	require.NoError(t, c.AddAnswer(ctx, 1, "A language."))

	ranged, err := c.ListQuestionRange(ctx, 2, 12)
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	require.Equal(t, model.ID(12), ranged[0].ID)

	got, err := c.GetQuestion(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"rust"}, got.Tags)

	require.NoError(t, c.DeleteQuestion(ctx, 1))
	answers, err := c.ListAnswers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, answers, 1)
}
