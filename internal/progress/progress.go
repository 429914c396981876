// Package progress tracks per-question practice history: accuracy, streaks,
// per-variant stats, and a fixed-interval review schedule. The schedule is a
// small lookup table keyed by consecutive correct answers, not a full
// spaced-repetition model.
package progress

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Attempt is one recorded practice answer.
type Attempt struct {
	ID         string `json:"id"`
	ChildID    string `json:"child_id"`
	QuestionID string `json:"question_id"`
	Variant    string `json:"variant"`
	Answer     string `json:"answer"`
	IsCorrect  bool   `json:"is_correct"`
	AnsweredAt int64  `json:"answered_at"` // unix milliseconds
}

// VariantStat aggregates attempts for one widget variant.
type VariantStat struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// Stats summarizes a child's practice history.
type Stats struct {
	Answered  int                    `json:"answered"`
	Correct   int                    `json:"correct"`
	Accuracy  float64                `json:"accuracy"`
	Streak    int                    `json:"streak"`
	ByVariant map[string]VariantStat `json:"by_variant"`
}

// Review is one entry of the review queue.
type Review struct {
	ChildID            string `json:"child_id"`
	QuestionID         string `json:"question_id"`
	ConsecutiveCorrect int    `json:"consecutive_correct"`
	NextReviewAt       int64  `json:"next_review_at"`
}

// Fixed review intervals by consecutive-correct count; answers beyond the
// table reuse the last interval. A wrong answer resets to the first.
var reviewIntervals = []time.Duration{
	24 * time.Hour,
	72 * time.Hour,
	7 * 24 * time.Hour,
	14 * 24 * time.Hour,
}

// NextInterval returns the review delay after a streak of consecutive correct
// answers on a question.
func NextInterval(consecutiveCorrect int) time.Duration {
	if consecutiveCorrect < 1 {
		return reviewIntervals[0]
	}
	if consecutiveCorrect > len(reviewIntervals) {
		return reviewIntervals[len(reviewIntervals)-1]
	}
	return reviewIntervals[consecutiveCorrect-1]
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// RecordAttempt stores the attempt and moves the question's review entry:
// correct answers push the next review further out, a wrong answer resets the
// streak and schedules an early retry.
func (s *Store) RecordAttempt(ctx context.Context, childID, questionID, variant, answer string, correct bool) (Attempt, error) {
	now := time.Now()
	a := Attempt{
		ID:         uuid.NewString(),
		ChildID:    childID,
		QuestionID: questionID,
		Variant:    variant,
		Answer:     answer,
		IsCorrect:  correct,
		AnsweredAt: now.UnixMilli(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO practice_attempts (id, child_id, question_id, variant, answer, is_correct, answered_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.ChildID, a.QuestionID, a.Variant, a.Answer, a.IsCorrect, a.AnsweredAt)
	if err != nil {
		return Attempt{}, err
	}

	streak := 0
	if correct {
		var prev int
		err := s.db.QueryRowContext(ctx,
			`SELECT consecutive_correct FROM reviews WHERE child_id=$1 AND question_id=$2`,
			childID, questionID).Scan(&prev)
		if err != nil && err != sql.ErrNoRows {
			return Attempt{}, err
		}
		streak = prev + 1
	}
	next := now.Add(NextInterval(streak)).Unix()

	// Upsert works on both drivers; the composite key is the conflict target.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reviews (child_id, question_id, consecutive_correct, next_review_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (child_id, question_id)
		 DO UPDATE SET consecutive_correct=EXCLUDED.consecutive_correct, next_review_at=EXCLUDED.next_review_at`,
		childID, questionID, streak, next)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

// StatsFor aggregates a child's attempts. The streak counts backwards from the
// most recent attempt to the last incorrect one.
func (s *Store) StatsFor(ctx context.Context, childID string) (Stats, error) {
	st := Stats{ByVariant: map[string]VariantStat{}}

	rows, err := s.db.QueryContext(ctx,
		`SELECT variant, is_correct FROM practice_attempts
		 WHERE child_id=$1 ORDER BY answered_at DESC, id DESC`, childID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	streakBroken := false
	for rows.Next() {
		var variant string
		var correct bool
		if err := rows.Scan(&variant, &correct); err != nil {
			return Stats{}, err
		}
		st.Answered++
		vs := st.ByVariant[variant]
		vs.Answered++
		if correct {
			st.Correct++
			vs.Correct++
			if !streakBroken {
				st.Streak++
			}
		} else {
			streakBroken = true
		}
		st.ByVariant[variant] = vs
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}
	if st.Answered > 0 {
		st.Accuracy = float64(st.Correct) / float64(st.Answered)
	}
	return st, nil
}

// DueReviews lists the questions whose review time has arrived, soonest first.
func (s *Store) DueReviews(ctx context.Context, childID string, now time.Time) ([]Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT child_id, question_id, consecutive_correct, next_review_at
		 FROM reviews WHERE child_id=$1 AND next_review_at<=$2
		 ORDER BY next_review_at`, childID, now.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ChildID, &r.QuestionID, &r.ConsecutiveCorrect, &r.NextReviewAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
