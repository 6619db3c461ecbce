package model

import (
	"sort"
	"strings"
)

type Question struct {
	ID      ID       `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Content string   `json:"content" yaml:"content"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

func (q Question) Clone() Question {
	if q.Tags != nil {
		q.Tags = append([]string(nil), q.Tags...)
	}
	return q
}

type Answer struct {
	ID         ID     `json:"id,omitempty"`
	QuestionID ID     `json:"question_id"`
	Content    string `json:"content"`
}

// Account holds credentials for login. Password is whatever the caller hands
// to the store; hashing happens before that.
type Account struct {
	ID       ID     `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// NormalizeTags trims, drops blanks, deduplicates and sorts tags. An empty
// result is nil so that "no tags" has a single representation.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

func SortQuestions(questions []Question) {
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
}

func SortAnswers(answers []Answer) {
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
}
