package httpapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"

	"github.com/alphabot-ai/qna/internal/auth"
	"github.com/alphabot-ai/qna/internal/censor"
	"github.com/alphabot-ai/qna/internal/config"
	"github.com/alphabot-ai/qna/internal/metric"
	"github.com/alphabot-ai/qna/internal/model"
	"github.com/alphabot-ai/qna/internal/rate"
	"github.com/alphabot-ai/qna/internal/store"

	_ "github.com/alphabot-ai/qna/docs" // swagger docs
)

const (
	msgWelcome          = "Welcome to the questions and answers service!"
	msgNotFound         = "Not Found"
	msgMissingParameter = "Missing parameter"
	msgInvalidID        = "Invalid id"
	msgQuestionNotFound = "Question not found"
	msgAnswerNotFound   = "Answer not found"
	msgAccountNotFound  = "Account not found"
)

// Deps are the collaborators a Server is built from. Store and Auth are
// required; the rest fall back to defaults when nil.
type Deps struct {
	Store   store.Store
	Auth    *auth.Service
	Censor  censor.Checker
	Limiter rate.Limiter
	Metrics *metric.Metrics
	Logger  *logrus.Logger
}

type Server struct {
	store   store.Store
	auth    *auth.Service
	censor  censor.Checker
	limiter rate.Limiter
	metrics *metric.Metrics
	log     *logrus.Logger
	cfg     config.Config
	handler http.Handler
}

func NewServer(deps Deps, cfg config.Config) *Server {
	s := &Server{
		store:   deps.Store,
		auth:    deps.Auth,
		censor:  deps.Censor,
		limiter: deps.Limiter,
		metrics: deps.Metrics,
		log:     deps.Logger,
		cfg:     cfg,
	}
	if s.censor == nil {
		s.censor = censor.Nop{}
	}
	if s.limiter == nil {
		s.limiter = rate.NewMemory()
	}
	if s.metrics == nil {
		s.metrics = metric.New()
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.handler = s.withLogging(withCORS(http.HandlerFunc(s.route)))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch path {
	case "/":
		if r.Method == http.MethodGet {
			writeText(w, http.StatusOK, msgWelcome)
			return
		}
	case "/questions":
		switch r.Method {
		case http.MethodGet:
			s.handleListQuestions(w, r)
			return
		case http.MethodPost:
			s.handleCreateQuestion(w, r)
			return
		case http.MethodPut:
			s.handleUpdateQuestion(w, r)
			return
		case http.MethodDelete:
			s.handleDeleteQuestion(w, r)
			return
		}
	case "/question":
		if r.Method == http.MethodGet {
			s.handleGetQuestion(w, r)
			return
		}
	case "/answers":
		switch r.Method {
		case http.MethodGet:
			s.handleListAnswers(w, r)
			return
		case http.MethodPost:
			s.handleCreateAnswer(w, r)
			return
		case http.MethodPut:
			s.handleUpdateAnswers(w, r)
			return
		case http.MethodDelete:
			s.handleDeleteAnswers(w, r)
			return
		}
	case "/account", "/accounts":
		switch r.Method {
		case http.MethodGet:
			s.handleGetAccount(w, r)
			return
		case http.MethodPost:
			s.handleCreateAccount(w, r)
			return
		case http.MethodPut:
			s.handleUpdateAccount(w, r)
			return
		case http.MethodDelete:
			s.handleDeleteAccount(w, r)
			return
		}
	case "/login":
		if r.Method == http.MethodGet || r.Method == http.MethodPost {
			s.handleLogin(w, r)
			return
		}
	case "/metrics":
		if r.Method == http.MethodGet {
			s.metrics.Handler().ServeHTTP(w, r)
			return
		}
	case "/api-docs/openapi.json":
		if r.Method == http.MethodGet {
			s.serveOpenAPIJSON(w, r)
			return
		}
	default:
		if strings.HasPrefix(path, "/swagger/") && r.Method == http.MethodGet {
			httpSwagger.WrapHandler.ServeHTTP(w, r)
			return
		}
	}
	notFound(w)
}

func (s *Server) serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(doc))
}

// requireAuth checks the bearer token and writes the auth error response
// when it is missing or invalid.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		writeAuthError(w, auth.ErrInvalidToken)
		return auth.Claims{}, false
	}
	bearer := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	claims, err := s.auth.Authenticate(bearer)
	if err != nil {
		writeAuthError(w, err)
		return auth.Claims{}, false
	}
	return claims, true
}

func (s *Server) allowWrite(w http.ResponseWriter, r *http.Request) bool {
	limit := s.cfg.RateLimits.WritePerMinute
	if limit <= 0 {
		return true
	}
	key := fmt.Sprintf("write:ip:%s", clientIP(r))
	if ok, retry := s.limiter.Allow(key, limit, time.Minute); !ok {
		writeRateLimit(w, retry)
		return false
	}
	return true
}

// censorText runs content through the profanity check. It is called before
// any store mutation so no store lock is held while the check is in flight.
func (s *Server) censorText(r *http.Request, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return content, nil
	}
	return s.censor.Censor(r.Context(), content)
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	var (
		status int
		msg    string
		kind   string
	)
	switch {
	case errors.Is(err, store.ErrMissingParameters):
		status, msg, kind = http.StatusBadRequest, msgMissingParameter, "missing_parameter"
	case errors.Is(err, model.ErrInvalidID):
		status, msg, kind = http.StatusBadRequest, msgInvalidID, "invalid_id"
	case errors.Is(err, store.ErrNotFound):
		status, msg, kind = http.StatusNotFound, notFoundMsg, "not_found"
	case errors.Is(err, store.ErrDuplicateID):
		status, msg, kind = http.StatusConflict, "Duplicate id", "duplicate"
	case errors.Is(err, store.ErrDuplicateEmail):
		status, msg, kind = http.StatusConflict, "Duplicate email", "duplicate"
	default:
		status, msg, kind = http.StatusInternalServerError, err.Error(), "internal"
	}
	s.metrics.RecordStoreError(kind)
	writeText(w, status, msg)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// queryID parses a required id query parameter, writing the 400 response
// itself when it is absent or malformed.
func queryID(w http.ResponseWriter, r *http.Request, name string) (model.ID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeText(w, http.StatusBadRequest, msgMissingParameter)
		return 0, false
	}
	id, err := model.ParseID(raw)
	if err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidID)
		return 0, false
	}
	return id, true
}

func readJSON(body io.ReadCloser, dest any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writePretty renders records and collections as two-space indented JSON.
func writePretty(w http.ResponseWriter, status int, payload any) {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeBadBody(w http.ResponseWriter, err error) {
	writeText(w, http.StatusBadRequest, "Invalid body: "+err.Error())
}

func writeAuthError(w http.ResponseWriter, err error) {
	status, msg := http.StatusInternalServerError, "Token creation error"
	switch {
	case errors.Is(err, auth.ErrWrongCredentials):
		status, msg = http.StatusUnauthorized, "Wrong credentials"
	case errors.Is(err, auth.ErrMissingCredentials):
		status, msg = http.StatusBadRequest, "Missing credentials"
	case errors.Is(err, auth.ErrInvalidToken):
		status, msg = http.StatusBadRequest, "Invalid token"
	case errors.Is(err, auth.ErrTokenCreation):
	default:
		msg = err.Error()
	}
	writeJSON(w, status, map[string]any{"status": status, "error": msg})
}

func writeRateLimit(w http.ResponseWriter, retry time.Duration) {
	secs := int(retry.Seconds())
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeText(w, http.StatusTooManyRequests, "Rate limit exceeded")
}

func notFound(w http.ResponseWriter) {
	writeText(w, http.StatusNotFound, msgNotFound)
}
