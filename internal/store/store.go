package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/alphabot-ai/qna/internal/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrQuestionNotFound  = fmt.Errorf("question %w", ErrNotFound)
	ErrAnswerNotFound    = fmt.Errorf("answer %w", ErrNotFound)
	ErrAccountNotFound   = fmt.Errorf("account %w", ErrNotFound)
	ErrDuplicateID       = errors.New("duplicate id")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrMissingParameters = errors.New("missing parameter")
	ErrIDSpaceExhausted  = errors.New("id space exhausted")
)

type Store interface {
	QuestionStore
	AnswerStore
	AccountStore
	Close() error
}

// QuestionStore is the authority for the question collection. Lists are
// ordered by ascending id.
type QuestionStore interface {
	GetQuestion(ctx context.Context, id model.ID) (model.Question, error)
	ListQuestions(ctx context.Context) ([]model.Question, error)
	// ListQuestionRange returns the questions whose id lies in [start, end].
	// Both bounds are required; a nil bound yields ErrMissingParameters.
	ListQuestionRange(ctx context.Context, start, end *model.ID) ([]model.Question, error)
	// CreateQuestion stores q under q.ID, or under a fresh id when q.ID is zero.
	CreateQuestion(ctx context.Context, q *model.Question) (model.ID, error)
	// UpdateQuestion replaces the whole record; fields not supplied are lost.
	UpdateQuestion(ctx context.Context, id model.ID, q model.Question) error
	DeleteQuestion(ctx context.Context, id model.ID) error
}

// AnswerStore does not check that the owning question exists and deleting a
// question leaves its answers in place.
type AnswerStore interface {
	CreateAnswer(ctx context.Context, a *model.Answer) (model.ID, error)
	ListAnswers(ctx context.Context, questionID model.ID) ([]model.Answer, error)
	UpdateAnswers(ctx context.Context, questionID model.ID, content string) error
	DeleteAnswers(ctx context.Context, questionID model.ID) error
}

// AccountStore keys lookups by email; ids are assigned by the store.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *model.Account) (model.ID, error)
	GetAccountByEmail(ctx context.Context, email string) (model.Account, error)
	UpdateAccount(ctx context.Context, email string, account model.Account) error
	DeleteAccount(ctx context.Context, email string) error
}

// RangeBounds validates the pair of optional bounds given to
// ListQuestionRange.
func RangeBounds(start, end *model.ID) (model.ID, model.ID, error) {
	if start == nil || end == nil {
		return 0, 0, ErrMissingParameters
	}
	return *start, *end, nil
}
