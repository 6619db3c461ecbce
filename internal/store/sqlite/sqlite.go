package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/alphabot-ai/qna/internal/model"
	"github.com/alphabot-ai/qna/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite has a single writer; one connection keeps writers queued in
	// database/sql instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// migrations is an ordered list of SQL migrations.
// Each migration runs exactly once, tracked by schema_version table.
var migrations = []string{
	// Migration 1: Initial schema
	`
CREATE TABLE IF NOT EXISTS questions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	tags TEXT
);

CREATE TABLE IF NOT EXISTS answers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question_id INTEGER NOT NULL,
	content TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_answers_question_id ON answers(question_id);

CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL,
	password TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);
`,
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return err
	}

	var currentVersion int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	for i := currentVersion; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
	}

	return nil
}

// withTx runs fn inside one transaction. Waiting for the connection honours
// ctx; once the transaction has begun it runs on a context that cannot be
// cancelled, so an admitted mutation always commits or fails on its own.
func (s *Store) withTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx = context.WithoutCancel(ctx)
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

func (s *Store) GetQuestion(ctx context.Context, id model.ID) (model.Question, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, title, content, tags
FROM questions
WHERE id = ?
`, id)
	return scanQuestion(row)
}

func (s *Store) ListQuestions(ctx context.Context) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, content, tags
FROM questions
ORDER BY id ASC
`)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

func (s *Store) ListQuestionRange(ctx context.Context, start, end *model.ID) ([]model.Question, error) {
	lo, hi, err := store.RangeBounds(start, end)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, content, tags
FROM questions
WHERE id BETWEEN ? AND ?
ORDER BY id ASC
`, lo, hi)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

func (s *Store) CreateQuestion(ctx context.Context, q *model.Question) (model.ID, error) {
	if q.ID < 0 {
		return 0, model.ErrInvalidID
	}
	tags := model.NormalizeTags(q.Tags)
	tagsCol, err := encodeTags(tags)
	if err != nil {
		return 0, err
	}

	var id model.ID
	err = s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var res sql.Result
		var err error
		if q.ID == 0 {
			res, err = tx.ExecContext(ctx, `
INSERT INTO questions (title, content, tags)
VALUES (?, ?, ?)
`, q.Title, q.Content, tagsCol)
		} else {
			res, err = tx.ExecContext(ctx, `
INSERT INTO questions (id, title, content, tags)
VALUES (?, ?, ?, ?)
`, q.ID, q.Title, q.Content, tagsCol)
		}
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicateID
			}
			return err
		}
		id, err = assignedID(res)
		return err
	})
	if err != nil {
		return 0, err
	}
	q.ID = id
	q.Tags = tags
	return id, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, id model.ID, q model.Question) error {
	tagsCol, err := encodeTags(model.NormalizeTags(q.Tags))
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE questions SET title = ?, content = ?, tags = ? WHERE id = ?
`, q.Title, q.Content, tagsCol, id)
		if err != nil {
			return err
		}
		return requireAffected(res, store.ErrQuestionNotFound)
	})
}

func (s *Store) DeleteQuestion(ctx context.Context, id model.ID) error {
	return s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(res, store.ErrQuestionNotFound)
	})
}

func (s *Store) CreateAnswer(ctx context.Context, a *model.Answer) (model.ID, error) {
	var id model.ID
	err := s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO answers (question_id, content)
VALUES (?, ?)
`, a.QuestionID, a.Content)
		if err != nil {
			return err
		}
		id, err = assignedID(res)
		return err
	})
	if err != nil {
		return 0, err
	}
	a.ID = id
	return id, nil
}

func (s *Store) ListAnswers(ctx context.Context, questionID model.ID) ([]model.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, question_id, content
FROM answers
WHERE question_id = ?
ORDER BY id ASC
`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Content); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (s *Store) UpdateAnswers(ctx context.Context, questionID model.ID, content string) error {
	return s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE answers SET content = ? WHERE question_id = ?`, content, questionID)
		if err != nil {
			return err
		}
		return requireAffected(res, store.ErrAnswerNotFound)
	})
}

func (s *Store) DeleteAnswers(ctx context.Context, questionID model.ID) error {
	return s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE question_id = ?`, questionID)
		if err != nil {
			return err
		}
		return requireAffected(res, store.ErrAnswerNotFound)
	})
}

func (s *Store) CreateAccount(ctx context.Context, account *model.Account) (model.ID, error) {
	var id model.ID
	err := s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO accounts (email, password)
VALUES (?, ?)
`, account.Email, account.Password)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicateEmail
			}
			return err
		}
		id, err = assignedID(res)
		return err
	})
	if err != nil {
		return 0, err
	}
	account.ID = id
	return id, nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (model.Account, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, email, password
FROM accounts
WHERE email = ?
`, email)
	var a model.Account
	if err := row.Scan(&a.ID, &a.Email, &a.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, store.ErrAccountNotFound
		}
		return model.Account{}, err
	}
	return a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, email string, account model.Account) error {
	return s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE accounts SET email = ?, password = ? WHERE email = ?
`, account.Email, account.Password, email)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicateEmail
			}
			return err
		}
		return requireAffected(res, store.ErrAccountNotFound)
	})
}

func (s *Store) DeleteAccount(ctx context.Context, email string) error {
	return s.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE email = ?`, email)
		if err != nil {
			return err
		}
		return requireAffected(res, store.ErrAccountNotFound)
	})
}

func collectQuestions(rows *sql.Rows) ([]model.Question, error) {
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}

func scanQuestion(scanner interface{ Scan(dest ...any) error }) (model.Question, error) {
	var q model.Question
	var tagsRaw sql.NullString
	if err := scanner.Scan(&q.ID, &q.Title, &q.Content, &tagsRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Question{}, store.ErrQuestionNotFound
		}
		return model.Question{}, err
	}
	if tagsRaw.Valid && tagsRaw.String != "" {
		if err := json.Unmarshal([]byte(tagsRaw.String), &q.Tags); err != nil {
			return model.Question{}, fmt.Errorf("decode tags of question %d: %w", q.ID, err)
		}
		q.Tags = model.NormalizeTags(q.Tags)
	}
	return q, nil
}

func encodeTags(tags []string) (any, error) {
	if tags == nil {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}

// assignedID reads the rowid sqlite picked. AUTOINCREMENT runs past the
// int32 range once MaxInt32 is taken; returning an error rolls the row back.
func assignedID(res sql.Result) (model.ID, error) {
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if lastID <= 0 || lastID > math.MaxInt32 {
		return 0, store.ErrIDSpaceExhausted
	}
	return model.ID(lastID), nil
}
