// Package memory keeps every collection in process memory. Each collection
// has its own shared/exclusive lock; once a lock is held the operation runs
// to completion even if the caller's context is cancelled.
package memory

import (
	"context"
	"math"

	"github.com/alphabot-ai/qna/internal/model"
	"github.com/alphabot-ai/qna/internal/store"
)

type Store struct {
	questionsMu  *rwLock
	questions    map[model.ID]model.Question
	nextQuestion model.ID

	answersMu  *rwLock
	answers    map[model.ID]model.Answer
	nextAnswer model.ID

	accountsMu  *rwLock
	accounts    map[model.ID]model.Account
	byEmail     map[string]model.ID
	nextAccount model.ID
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		questionsMu:  newRWLock(),
		questions:    make(map[model.ID]model.Question),
		nextQuestion: 1,
		answersMu:    newRWLock(),
		answers:      make(map[model.ID]model.Answer),
		nextAnswer:   1,
		accountsMu:   newRWLock(),
		accounts:     make(map[model.ID]model.Account),
		byEmail:      make(map[string]model.ID),
		nextAccount:  1,
	}
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) GetQuestion(ctx context.Context, id model.ID) (model.Question, error) {
	if err := s.questionsMu.RLock(ctx); err != nil {
		return model.Question{}, err
	}
	defer s.questionsMu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return model.Question{}, store.ErrQuestionNotFound
	}
	return q.Clone(), nil
}

func (s *Store) ListQuestions(ctx context.Context) ([]model.Question, error) {
	return s.scanQuestions(ctx, func(model.ID) bool { return true })
}

func (s *Store) ListQuestionRange(ctx context.Context, start, end *model.ID) ([]model.Question, error) {
	lo, hi, err := store.RangeBounds(start, end)
	if err != nil {
		return nil, err
	}
	return s.scanQuestions(ctx, func(id model.ID) bool { return model.InRange(id, lo, hi) })
}

// scanQuestions copies the matching records under the shared lock and sorts
// the copy after releasing it.
func (s *Store) scanQuestions(ctx context.Context, match func(model.ID) bool) ([]model.Question, error) {
	if err := s.questionsMu.RLock(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Question, 0, len(s.questions))
	for id, q := range s.questions {
		if match(id) {
			out = append(out, q.Clone())
		}
	}
	s.questionsMu.RUnlock()

	model.SortQuestions(out)
	return out, nil
}

func (s *Store) CreateQuestion(ctx context.Context, q *model.Question) (model.ID, error) {
	if q.ID < 0 {
		return 0, model.ErrInvalidID
	}
	if err := s.questionsMu.Lock(ctx); err != nil {
		return 0, err
	}
	defer s.questionsMu.Unlock()

	id := q.ID
	if id == 0 {
		var err error
		if id, err = assign(&s.nextQuestion); err != nil {
			return 0, err
		}
	} else if _, ok := s.questions[id]; ok {
		return 0, store.ErrDuplicateID
	}
	bump(&s.nextQuestion, id)

	q.ID = id
	q.Tags = model.NormalizeTags(q.Tags)
	s.questions[id] = q.Clone()
	return id, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, id model.ID, q model.Question) error {
	if err := s.questionsMu.Lock(ctx); err != nil {
		return err
	}
	defer s.questionsMu.Unlock()

	if _, ok := s.questions[id]; !ok {
		return store.ErrQuestionNotFound
	}
	q = q.Clone()
	q.ID = id
	q.Tags = model.NormalizeTags(q.Tags)
	s.questions[id] = q
	return nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id model.ID) error {
	if err := s.questionsMu.Lock(ctx); err != nil {
		return err
	}
	defer s.questionsMu.Unlock()

	if _, ok := s.questions[id]; !ok {
		return store.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return nil
}

func (s *Store) CreateAnswer(ctx context.Context, a *model.Answer) (model.ID, error) {
	if err := s.answersMu.Lock(ctx); err != nil {
		return 0, err
	}
	defer s.answersMu.Unlock()

	id, err := assign(&s.nextAnswer)
	if err != nil {
		return 0, err
	}
	a.ID = id
	s.answers[id] = *a
	return id, nil
}

func (s *Store) ListAnswers(ctx context.Context, questionID model.ID) ([]model.Answer, error) {
	if err := s.answersMu.RLock(ctx); err != nil {
		return nil, err
	}
	var out []model.Answer
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	s.answersMu.RUnlock()

	model.SortAnswers(out)
	return out, nil
}

func (s *Store) UpdateAnswers(ctx context.Context, questionID model.ID, content string) error {
	if err := s.answersMu.Lock(ctx); err != nil {
		return err
	}
	defer s.answersMu.Unlock()

	found := false
	for id, a := range s.answers {
		if a.QuestionID == questionID {
			a.Content = content
			s.answers[id] = a
			found = true
		}
	}
	if !found {
		return store.ErrAnswerNotFound
	}
	return nil
}

func (s *Store) DeleteAnswers(ctx context.Context, questionID model.ID) error {
	if err := s.answersMu.Lock(ctx); err != nil {
		return err
	}
	defer s.answersMu.Unlock()

	found := false
	for id, a := range s.answers {
		if a.QuestionID == questionID {
			delete(s.answers, id)
			found = true
		}
	}
	if !found {
		return store.ErrAnswerNotFound
	}
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, account *model.Account) (model.ID, error) {
	if err := s.accountsMu.Lock(ctx); err != nil {
		return 0, err
	}
	defer s.accountsMu.Unlock()

	if _, ok := s.byEmail[account.Email]; ok {
		return 0, store.ErrDuplicateEmail
	}
	id, err := assign(&s.nextAccount)
	if err != nil {
		return 0, err
	}
	account.ID = id
	s.accounts[id] = *account
	s.byEmail[account.Email] = id
	return id, nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (model.Account, error) {
	if err := s.accountsMu.RLock(ctx); err != nil {
		return model.Account{}, err
	}
	defer s.accountsMu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return model.Account{}, store.ErrAccountNotFound
	}
	return s.accounts[id], nil
}

func (s *Store) UpdateAccount(ctx context.Context, email string, account model.Account) error {
	if err := s.accountsMu.Lock(ctx); err != nil {
		return err
	}
	defer s.accountsMu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return store.ErrAccountNotFound
	}
	if other, taken := s.byEmail[account.Email]; taken && other != id {
		return store.ErrDuplicateEmail
	}
	account.ID = id
	delete(s.byEmail, email)
	s.byEmail[account.Email] = id
	s.accounts[id] = account
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, email string) error {
	if err := s.accountsMu.Lock(ctx); err != nil {
		return err
	}
	defer s.accountsMu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return store.ErrAccountNotFound
	}
	delete(s.byEmail, email)
	delete(s.accounts, id)
	return nil
}

// assign hands out the next free id. Callers hold the collection's write lock.
func assign(next *model.ID) (model.ID, error) {
	if *next <= 0 {
		return 0, store.ErrIDSpaceExhausted
	}
	id := *next
	bump(next, id)
	return id, nil
}

func bump(next *model.ID, used model.ID) {
	if *next == 0 || used < *next {
		return
	}
	if used == math.MaxInt32 {
		*next = 0
		return
	}
	*next = used + 1
}
