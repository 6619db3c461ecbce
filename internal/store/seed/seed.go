// Package seed loads a bundled set of questions into a store at startup.
//
// The file is YAML or JSON (JSON is read by the YAML decoder) and is either a
// list of questions or a mapping from id to question.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alphabot-ai/qna/internal/model"
	"github.com/alphabot-ai/qna/internal/store"
)

// Decode reads questions from r. In the mapping form an entry without an id
// takes its key.
func Decode(r io.Reader) ([]model.Question, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]

	switch root.Kind {
	case yaml.SequenceNode:
		var questions []model.Question
		if err := root.Decode(&questions); err != nil {
			return nil, fmt.Errorf("decode seed: %w", err)
		}
		return questions, nil
	case yaml.MappingNode:
		var questions []model.Question
		for i := 0; i+1 < len(root.Content); i += 2 {
			var key model.ID
			if err := root.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("decode seed key %q: %w", root.Content[i].Value, err)
			}
			var q model.Question
			if err := root.Content[i+1].Decode(&q); err != nil {
				return nil, fmt.Errorf("decode seed question %d: %w", key, err)
			}
			if q.ID == 0 {
				q.ID = key
			}
			questions = append(questions, q)
		}
		model.SortQuestions(questions)
		return questions, nil
	default:
		return nil, fmt.Errorf("decode seed: expected a list or a mapping, got %s", root.Tag)
	}
}

// Load inserts questions that are not already present and returns how many
// were added.
func Load(ctx context.Context, st store.QuestionStore, questions []model.Question) (int, error) {
	added := 0
	for _, q := range questions {
		if _, err := st.CreateQuestion(ctx, &q); err != nil {
			if errors.Is(err, store.ErrDuplicateID) {
				continue
			}
			return added, fmt.Errorf("seed question %d: %w", q.ID, err)
		}
		added++
	}
	return added, nil
}

func LoadFile(ctx context.Context, st store.QuestionStore, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	questions, err := Decode(f)
	if err != nil {
		return 0, err
	}
	return Load(ctx, st, questions)
}
