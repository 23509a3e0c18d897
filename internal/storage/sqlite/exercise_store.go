package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/codelab/internal/domain"
)

// ExerciseStore persists the exercise catalog in SQLite.
// Completion is session state and is never written here.
type ExerciseStore struct {
	db *DB
}

// NewExerciseStore creates a new SQLite-backed exercise store.
func NewExerciseStore(db *DB) *ExerciseStore {
	return &ExerciseStore{db: db}
}

const exerciseColumns = `id, title, description, difficulty, language,
	starter_code, expected_output, hints`

// Import replaces the whole catalog with exercises, in order, in one transaction.
func (s *ExerciseStore) Import(packID string, exercises []domain.Exercise) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM exercises"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear exercises: %w", err)
	}

	for i := range exercises {
		if err := exercises[i].Validate(); err != nil {
			tx.Rollback()
			return err
		}
		if err := saveExercise(tx, &exercises[i], packID, i); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func saveExercise(db execer, ex *domain.Exercise, packID string, position int) error {
	hints := ex.Hints
	if hints == nil {
		hints = []string{}
	}
	hintsJSON, err := json.Marshal(hints)
	if err != nil {
		return fmt.Errorf("marshal hints: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO exercises (id, position, title, description, difficulty, language,
			starter_code, expected_output, hints, pack_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			position=excluded.position, title=excluded.title,
			description=excluded.description, difficulty=excluded.difficulty,
			language=excluded.language, starter_code=excluded.starter_code,
			expected_output=excluded.expected_output, hints=excluded.hints,
			pack_id=excluded.pack_id`,
		ex.ID, position, ex.Title, ex.Description, string(ex.Difficulty), ex.Language,
		ex.StarterCode, ex.ExpectedOutput, string(hintsJSON), packID,
	)
	if err != nil {
		return fmt.Errorf("upsert exercise %s: %w", ex.ID, err)
	}
	return nil
}

// Exercises returns the catalog in list order.
func (s *ExerciseStore) Exercises(ctx context.Context) ([]domain.Exercise, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+exerciseColumns+` FROM exercises ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	var exercises []domain.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, *ex)
	}
	return exercises, rows.Err()
}

// Count returns the number of stored exercises.
func (s *ExerciseStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM exercises").Scan(&n); err != nil {
		return 0, fmt.Errorf("count exercises: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExercise(row scanner) (*domain.Exercise, error) {
	var ex domain.Exercise
	var difficulty, hintsJSON string

	err := row.Scan(
		&ex.ID, &ex.Title, &ex.Description, &difficulty, &ex.Language,
		&ex.StarterCode, &ex.ExpectedOutput, &hintsJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan exercise: %w", err)
	}

	ex.Difficulty = domain.Difficulty(difficulty)
	if err := json.Unmarshal([]byte(hintsJSON), &ex.Hints); err != nil {
		return nil, fmt.Errorf("unmarshal hints: %w", err)
	}
	if ex.Hints == nil {
		ex.Hints = []string{}
	}

	return &ex, nil
}
