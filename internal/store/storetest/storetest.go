// Package storetest holds the behaviour every store.Store backend must show.
// Backends call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/alphabot-ai/qna/internal/model"
	"github.com/alphabot-ai/qna/internal/store"
)

// Opener returns a fresh, empty store. The suite closes it.
type Opener func(t *testing.T) store.Store

func Run(t *testing.T, open Opener) {
	tests := []struct {
		name string
		fn   func(t *testing.T, st store.Store)
	}{
		{"InsertThenGet", testInsertThenGet},
		{"MissingRecords", testMissingRecords},
		{"AssignedIDs", testAssignedIDs},
		{"AssignedIDSpaceExhausted", testAssignedIDSpaceExhausted},
		{"DuplicateID", testDuplicateID},
		{"InvalidID", testInvalidID},
		{"Range", testRange},
		{"RangeNeedsBothBounds", testRangeNeedsBothBounds},
		{"DeleteTwice", testDeleteTwice},
		{"FullReplaceUpdate", testFullReplaceUpdate},
		{"TagNormalization", testTagNormalization},
		{"ConcurrentInserts", testConcurrentInserts},
		{"ConcurrentAssignedInserts", testConcurrentAssignedInserts},
		{"CancelledContext", testCancelledContext},
		{"Scenario", testScenario},
		{"Answers", testAnswers},
		{"AnswersSurviveQuestionDelete", testAnswersSurviveQuestionDelete},
		{"Accounts", testAccounts},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := open(t)
			t.Cleanup(func() { _ = st.Close() })
			tc.fn(t, st)
		})
	}
}

func idp(id model.ID) *model.ID {
	return &id
}

func mustCreate(t *testing.T, st store.Store, q model.Question) model.ID {
	t.Helper()
	id, err := st.CreateQuestion(context.Background(), &q)
	require.NoError(t, err)
	return id
}

func ids(questions []model.Question) []model.ID {
	out := make([]model.ID, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.ID)
	}
	return out
}

func testInsertThenGet(t *testing.T, st store.Store) {
	ctx := context.Background()
	q := model.Question{ID: 7, Title: "What is Go?", Content: "Tell me", Tags: []string{"go"}}
	id, err := st.CreateQuestion(ctx, &q)
	require.NoError(t, err)
	require.Equal(t, model.ID(7), id)

	got, err := st.GetQuestion(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, q, got)
}

func testMissingRecords(t *testing.T, st store.Store) {
	ctx := context.Background()
	mustCreate(t, st, model.Question{ID: 1, Title: "a", Content: "b"})

	_, err := st.GetQuestion(ctx, 2)
	require.ErrorIs(t, err, store.ErrQuestionNotFound)
	require.ErrorIs(t, err, store.ErrNotFound)

	err = st.UpdateQuestion(ctx, 2, model.Question{Title: "x"})
	require.ErrorIs(t, err, store.ErrQuestionNotFound)

	err = st.DeleteQuestion(ctx, 2)
	require.ErrorIs(t, err, store.ErrQuestionNotFound)

	all, err := st.ListQuestions(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.ID{1}, ids(all))
	require.Equal(t, "a", all[0].Title)
}

func testAssignedIDs(t *testing.T, st store.Store) {
	first := mustCreate(t, st, model.Question{Title: "one"})
	second := mustCreate(t, st, model.Question{Title: "two"})
	require.True(t, first.Valid())
	require.Greater(t, second, first)

	mustCreate(t, st, model.Question{ID: 100, Title: "hundred"})
	next := mustCreate(t, st, model.Question{Title: "after"})
	require.Greater(t, next, model.ID(100))
}

func testAssignedIDSpaceExhausted(t *testing.T, st store.Store) {
	ctx := context.Background()
	mustCreate(t, st, model.Question{ID: math.MaxInt32, Title: "last"})

	_, err := st.CreateQuestion(ctx, &model.Question{Title: "overflow"})
	require.ErrorIs(t, err, store.ErrIDSpaceExhausted)

	all, err := st.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, model.ID(math.MaxInt32), all[0].ID)

	ranged, err := st.ListQuestionRange(ctx, idp(1), idp(math.MaxInt32))
	require.NoError(t, err)
	require.Len(t, ranged, 1)

	// explicit ids below the maximum are still accepted
	mustCreate(t, st, model.Question{ID: 7, Title: "seven"})
}

func testDuplicateID(t *testing.T, st store.Store) {
	ctx := context.Background()
	mustCreate(t, st, model.Question{ID: 3, Title: "first"})

	_, err := st.CreateQuestion(ctx, &model.Question{ID: 3, Title: "second"})
	require.ErrorIs(t, err, store.ErrDuplicateID)

	got, err := st.GetQuestion(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, "first", got.Title)
}

func testInvalidID(t *testing.T, st store.Store) {
	_, err := st.CreateQuestion(context.Background(), &model.Question{ID: -4, Title: "neg"})
	require.ErrorIs(t, err, model.ErrInvalidID)
}

func testRange(t *testing.T, st store.Store) {
	ctx := context.Background()
	for _, id := range []model.ID{20, 3, 1, 10, 2} {
		mustCreate(t, st, model.Question{ID: id, Title: fmt.Sprintf("q%d", id)})
	}

	got, err := st.ListQuestionRange(ctx, idp(2), idp(10))
	require.NoError(t, err)
	require.Equal(t, []model.ID{2, 3, 10}, ids(got))

	all, err := st.ListQuestions(ctx)
	require.NoError(t, err)
	var want []model.ID
	for _, q := range all {
		if model.InRange(q.ID, 2, 10) {
			want = append(want, q.ID)
		}
	}
	require.Equal(t, want, ids(got))

	got, err = st.ListQuestionRange(ctx, idp(11), idp(19))
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = st.ListQuestionRange(ctx, idp(5), idp(1))
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = st.ListQuestionRange(ctx, idp(1), idp(1))
	require.NoError(t, err)
	require.Equal(t, []model.ID{1}, ids(got))
}

func testRangeNeedsBothBounds(t *testing.T, st store.Store) {
	ctx := context.Background()
	_, err := st.ListQuestionRange(ctx, idp(1), nil)
	require.ErrorIs(t, err, store.ErrMissingParameters)
	_, err = st.ListQuestionRange(ctx, nil, idp(1))
	require.ErrorIs(t, err, store.ErrMissingParameters)
	_, err = st.ListQuestionRange(ctx, nil, nil)
	require.ErrorIs(t, err, store.ErrMissingParameters)
}

func testDeleteTwice(t *testing.T, st store.Store) {
	ctx := context.Background()
	mustCreate(t, st, model.Question{ID: 1, Title: "a"})
	require.NoError(t, st.DeleteQuestion(ctx, 1))
	require.ErrorIs(t, st.DeleteQuestion(ctx, 1), store.ErrQuestionNotFound)
}

func testFullReplaceUpdate(t *testing.T, st store.Store) {
	ctx := context.Background()
	mustCreate(t, st, model.Question{ID: 1, Title: "old", Content: "old body", Tags: []string{"x"}})

	require.NoError(t, st.UpdateQuestion(ctx, 1, model.Question{ID: 99, Title: "new"}))

	got, err := st.GetQuestion(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, model.Question{ID: 1, Title: "new"}, got)

	_, err = st.GetQuestion(ctx, 99)
	require.ErrorIs(t, err, store.ErrQuestionNotFound)
}

func testTagNormalization(t *testing.T, st store.Store) {
	ctx := context.Background()
	mustCreate(t, st, model.Question{ID: 1, Tags: []string{"b", "a", "a", " "}})
	mustCreate(t, st, model.Question{ID: 2, Tags: []string{}})

	got, err := st.GetQuestion(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, got.Tags)

	got, err = st.GetQuestion(ctx, 2)
	require.NoError(t, err)
	require.Nil(t, got.Tags)

	require.NoError(t, st.UpdateQuestion(ctx, 1, model.Question{Tags: []string{""}}))
	got, err = st.GetQuestion(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, got.Tags)
}

func testConcurrentInserts(t *testing.T, st store.Store) {
	const n = 64
	g, ctx := errgroup.WithContext(context.Background())
	for i := 1; i <= n; i++ {
		g.Go(func() error {
			q := model.Question{ID: model.ID(i), Title: fmt.Sprintf("q%d", i)}
			_, err := st.CreateQuestion(ctx, &q)
			return err
		})
		g.Go(func() error {
			_, err := st.ListQuestions(ctx)
			return err
		})
	}
	require.NoError(t, g.Wait())

	all, err := st.ListQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, all, n)
	for i, q := range all {
		require.Equal(t, model.ID(i+1), q.ID)
	}
}

func testConcurrentAssignedInserts(t *testing.T, st store.Store) {
	const n = 32
	var g errgroup.Group
	got := make([]model.ID, n)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			id, err := st.CreateQuestion(context.Background(), &model.Question{Title: "auto"})
			got[i] = id
			return err
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[model.ID]bool, n)
	for _, id := range got {
		require.False(t, seen[id], "id %d handed out twice", id)
		seen[id] = true
	}
	all, err := st.ListQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, all, n)
}

func testCancelledContext(t *testing.T, st store.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.CreateQuestion(ctx, &model.Question{ID: 1, Title: "never"})
	require.ErrorIs(t, err, context.Canceled)

	all, err := st.ListQuestions(context.Background())
	require.NoError(t, err)
	require.Empty(t, all)
}

func testScenario(t *testing.T, st store.Store) {
	ctx := context.Background()
	q := model.Question{ID: 1, Title: "What is Rust?", Content: "...", Tags: []string{"rust"}}
	mustCreate(t, st, q)

	got, err := st.ListQuestionRange(ctx, idp(1), idp(1))
	require.NoError(t, err)
	require.Equal(t, []model.Question{q}, got)

	got, err = st.ListQuestionRange(ctx, idp(2), idp(5))
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, st.DeleteQuestion(ctx, 1))
	_, err = st.GetQuestion(ctx, 1)
	require.ErrorIs(t, err, store.ErrQuestionNotFound)
}

func testAnswers(t *testing.T, st store.Store) {
	ctx := context.Background()
	a1 := model.Answer{QuestionID: 1, Content: "first"}
	a2 := model.Answer{QuestionID: 1, Content: "second"}
	a3 := model.Answer{QuestionID: 2, Content: "other"}
	for _, a := range []*model.Answer{&a1, &a2, &a3} {
		id, err := st.CreateAnswer(ctx, a)
		require.NoError(t, err)
		require.True(t, id.Valid())
		require.Equal(t, id, a.ID)
	}

	got, err := st.ListAnswers(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []model.Answer{a1, a2}, got)

	require.NoError(t, st.UpdateAnswers(ctx, 1, "edited"))
	got, err = st.ListAnswers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, a := range got {
		require.Equal(t, "edited", a.Content)
	}

	other, err := st.ListAnswers(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []model.Answer{a3}, other)

	require.ErrorIs(t, st.UpdateAnswers(ctx, 9, "x"), store.ErrAnswerNotFound)

	require.NoError(t, st.DeleteAnswers(ctx, 1))
	got, err = st.ListAnswers(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, got)
	require.ErrorIs(t, st.DeleteAnswers(ctx, 1), store.ErrAnswerNotFound)
}

func testAnswersSurviveQuestionDelete(t *testing.T, st store.Store) {
	ctx := context.Background()
	mustCreate(t, st, model.Question{ID: 1, Title: "parent"})
	_, err := st.CreateAnswer(ctx, &model.Answer{QuestionID: 1, Content: "child"})
	require.NoError(t, err)

	require.NoError(t, st.DeleteQuestion(ctx, 1))

	got, err := st.ListAnswers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func testAccounts(t *testing.T, st store.Store) {
	ctx := context.Background()
	acc := model.Account{Email: "a@example.com", Password: "hash-a"}
	id, err := st.CreateAccount(ctx, &acc)
	require.NoError(t, err)
	require.True(t, id.Valid())

	_, err = st.CreateAccount(ctx, &model.Account{Email: "a@example.com", Password: "x"})
	require.ErrorIs(t, err, store.ErrDuplicateEmail)

	got, err := st.GetAccountByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, acc, got)

	_, err = st.CreateAccount(ctx, &model.Account{Email: "b@example.com", Password: "hash-b"})
	require.NoError(t, err)

	err = st.UpdateAccount(ctx, "a@example.com", model.Account{Email: "b@example.com", Password: "y"})
	require.ErrorIs(t, err, store.ErrDuplicateEmail)

	require.NoError(t, st.UpdateAccount(ctx, "a@example.com", model.Account{Email: "c@example.com", Password: "hash-c"}))
	_, err = st.GetAccountByEmail(ctx, "a@example.com")
	require.ErrorIs(t, err, store.ErrAccountNotFound)
	got, err = st.GetAccountByEmail(ctx, "c@example.com")
	require.NoError(t, err)
	require.Equal(t, model.Account{ID: id, Email: "c@example.com", Password: "hash-c"}, got)

	require.ErrorIs(t, st.UpdateAccount(ctx, "missing@example.com", model.Account{Email: "m"}), store.ErrAccountNotFound)

	require.NoError(t, st.DeleteAccount(ctx, "c@example.com"))
	require.ErrorIs(t, st.DeleteAccount(ctx, "c@example.com"), store.ErrAccountNotFound)
}
