package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabot-ai/qna/internal/model"
	"github.com/alphabot-ai/qna/internal/store"
	"github.com/alphabot-ai/qna/internal/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	path := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestReopenKeepsDataAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qna.db")
	st, err := Open(path)
	require.NoError(t, err)

	q := model.Question{ID: 4, Title: "persisted", Content: "body", Tags: []string{"db"}}
	_, err = st.CreateQuestion(context.Background(), &q)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	defer st.Close()

	var version int
	require.NoError(t, st.db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version))
	require.Equal(t, len(migrations), version)

	got, err := st.GetQuestion(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, q, got)
}

func TestNoTagsStoredAsNull(t *testing.T) {
	st := newTestStore(t)
	defer st.Close()

	_, err := st.CreateQuestion(context.Background(), &model.Question{ID: 1, Title: "t", Tags: []string{" "}})
	require.NoError(t, err)

	var isNull bool
	require.NoError(t, st.db.QueryRow(`SELECT tags IS NULL FROM questions WHERE id = 1`).Scan(&isNull))
	require.True(t, isNull)
}
