package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexihop/lexihop/internal/assessment"
)

var (
	ErrParentNotFound = errors.New("parent not found")
	ErrChildNotFound  = errors.New("child not found")
	ErrEmailTaken     = errors.New("email already registered")
)

// Store persists parents and children. It implements the assessment engine's
// GradeResolver and ProfileSink.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) CreateParent(ctx context.Context, email, passHash string) (Parent, error) {
	p := Parent{ID: uuid.NewString(), Email: email, PassHash: passHash, CreatedAt: time.Now().Unix()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO parents (id, email, pass_hash, created_at) VALUES ($1,$2,$3,$4)`,
		p.ID, p.Email, p.PassHash, p.CreatedAt)
	if err != nil {
		// The UNIQUE(email) constraint is the arbiter. Error shapes differ per
		// driver, so check for the winning row instead of parsing the error.
		var exists int
		if scanErr := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM parents WHERE email=$1`, email).Scan(&exists); scanErr == nil {
			return Parent{}, ErrEmailTaken
		}
		return Parent{}, err
	}
	return p, nil
}

func (s *Store) ParentByEmail(ctx context.Context, email string) (Parent, error) {
	var p Parent
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, pass_hash, created_at FROM parents WHERE email=$1`, email).
		Scan(&p.ID, &p.Email, &p.PassHash, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Parent{}, ErrParentNotFound
	}
	return p, err
}

func (s *Store) CreateChild(ctx context.Context, parentID, name string, grade assessment.GradeKey) (Child, error) {
	if grade != "" && !grade.Valid() {
		return Child{}, fmt.Errorf("invalid grade key %q", grade)
	}
	c := Child{
		ID:        uuid.NewString(),
		ParentID:  parentID,
		Name:      name,
		Grade:     grade,
		CreatedAt: time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO children (id, parent_id, name, grade_key, reading_level, created_at)
		 VALUES ($1,$2,$3,$4,'',$5)`,
		c.ID, c.ParentID, c.Name, string(c.Grade), c.CreatedAt)
	if err != nil {
		return Child{}, err
	}
	return c, nil
}

func (s *Store) GetChild(ctx context.Context, id string) (Child, error) {
	var c Child
	var grade string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, parent_id, name, grade_key, reading_level, created_at FROM children WHERE id=$1`, id).
		Scan(&c.ID, &c.ParentID, &c.Name, &grade, &c.ReadingLevel, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Child{}, ErrChildNotFound
	}
	c.Grade = assessment.GradeKey(grade)
	return c, err
}

func (s *Store) ListChildren(ctx context.Context, parentID string) ([]Child, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent_id, name, grade_key, reading_level, created_at
		 FROM children WHERE parent_id=$1 ORDER BY created_at`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Child
	for rows.Next() {
		var c Child
		var grade string
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &grade, &c.ReadingLevel, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Grade = assessment.GradeKey(grade)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateGrade(ctx context.Context, childID string, grade assessment.GradeKey) error {
	if !grade.Valid() {
		return fmt.Errorf("invalid grade key %q", grade)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE children SET grade_key=$1 WHERE id=$2`, string(grade), childID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrChildNotFound
	}
	return nil
}

// GradeFor implements assessment.GradeResolver. ok is false while the child
// has no grade on file yet.
func (s *Store) GradeFor(ctx context.Context, childID string) (assessment.GradeKey, bool, error) {
	c, err := s.GetChild(ctx, childID)
	if err != nil {
		if errors.Is(err, ErrChildNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if c.Grade == "" {
		return "", false, nil
	}
	return c.Grade, true, nil
}

// UpdateReadingLevel implements assessment.ProfileSink.
func (s *Store) UpdateReadingLevel(ctx context.Context, childID, levelName string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE children SET reading_level=$1 WHERE id=$2`, levelName, childID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrChildNotFound
	}
	return nil
}
