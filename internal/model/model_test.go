package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseID(t *testing.T) {
	cases := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{"1", 1, false},
		{" 42 ", 42, false},
		{"2147483647", 2147483647, false},
		{"", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"2147483648", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseID(tc.in)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrInvalidID, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		require.Equal(t, tc.want, got)
	}
}

func TestInRangeIsNumeric(t *testing.T) {
	// "10" sorts before "9" lexicographically; numerically it does not.
	require.False(t, InRange(10, 1, 9))
	require.True(t, InRange(9, 1, 9))
	require.True(t, InRange(1, 1, 1))
	require.False(t, InRange(2, 3, 1))
}

func TestQuestionJSONAcceptsStringAndNumberIDs(t *testing.T) {
	var q Question
	require.NoError(t, json.Unmarshal([]byte(`{"id":"3","title":"t","content":"c"}`), &q))
	require.Equal(t, ID(3), q.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"title":"t","content":"c"}`), &q))
	require.Equal(t, ID(4), q.ID)

	require.Error(t, json.Unmarshal([]byte(`{"id":-1}`), &q))
	require.Error(t, json.Unmarshal([]byte(`{"id":""}`), &q))

	out, err := json.Marshal(Question{ID: 5, Title: "t", Content: "c"})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":5,"title":"t","content":"c"}`, string(out))
}

func TestQuestionYAMLAcceptsStringIDs(t *testing.T) {
	var qs []Question
	src := "- id: \"1\"\n  title: a\n  content: b\n- id: 2\n  title: c\n  content: d\n  tags: [x]\n"
	require.NoError(t, yaml.Unmarshal([]byte(src), &qs))
	require.Len(t, qs, 2)
	require.Equal(t, ID(1), qs[0].ID)
	require.Equal(t, ID(2), qs[1].ID)
	require.Equal(t, []string{"x"}, qs[1].Tags)
}

func TestNormalizeTags(t *testing.T) {
	require.Nil(t, NormalizeTags(nil))
	require.Nil(t, NormalizeTags([]string{}))
	require.Nil(t, NormalizeTags([]string{" ", ""}))
	require.Equal(t, []string{"go", "rust"}, NormalizeTags([]string{"rust", " go", "rust", "go "}))
}

func TestQuestionCloneDoesNotShareTags(t *testing.T) {
	q := Question{ID: 1, Tags: []string{"a"}}
	c := q.Clone()
	c.Tags[0] = "b"
	require.Equal(t, "a", q.Tags[0])
}
