package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

var ErrResultNotFound = errors.New("assessment result not found")

// SQLStore persists completed assessments. It implements ResultSink, so the
// Manager's fire-and-forget path writes through it. Works against both the
// sqlite and postgres schemas.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) SaveResult(ctx context.Context, res Result) error {
	aj, err := json.Marshal(res.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessment_results (id, child_id, grade_key, score_percent, level_name, answers_json, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		res.SessionID, res.ChildID, string(res.Grade), res.ScorePercent, res.LevelName, string(aj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetResult(ctx context.Context, sessionID string) (Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, child_id, grade_key, score_percent, level_name, answers_json
		 FROM assessment_results WHERE id=$1`, sessionID)
	return scanResult(row)
}

// LatestResult returns the child's most recent completed assessment.
func (s *SQLStore) LatestResult(ctx context.Context, childID string) (Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, child_id, grade_key, score_percent, level_name, answers_json
		 FROM assessment_results WHERE child_id=$1
		 ORDER BY completed_at DESC LIMIT 1`, childID)
	return scanResult(row)
}

func (s *SQLStore) ListResults(ctx context.Context, childID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, child_id, grade_key, score_percent, level_name, answers_json
		 FROM assessment_results WHERE child_id=$1
		 ORDER BY completed_at DESC`, childID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (Result, error) {
	var r Result
	var grade, aj string
	if err := row.Scan(&r.SessionID, &r.ChildID, &grade, &r.ScorePercent, &r.LevelName, &aj); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrResultNotFound
		}
		return Result{}, err
	}
	r.Grade = GradeKey(grade)
	if err := json.Unmarshal([]byte(aj), &r.Answers); err != nil {
		return Result{}, err
	}
	return r, nil
}
