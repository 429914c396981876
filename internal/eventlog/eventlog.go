// Package eventlog is an append-only record of notable domain events
// (completed assessments, shop purchases, mystery boxes). It backs operator
// visibility for the fire-and-forget write paths.
package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lexihop/lexihop/internal/assessment"
)

const (
	TypeAssessmentCompleted = "AssessmentCompleted"
	TypePurchaseMade        = "PurchaseMade"
	TypeMysteryBoxOpened    = "MysteryBoxOpened"
)

type Event struct {
	Seq       int64  `json:"seq"`
	Type      string `json:"type"`
	Key       string `json:"key"`
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Append(ctx context.Context, typ, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(data), time.Now().Unix())
	return err
}

// Since returns up to limit events after the given sequence number, oldest
// first. Operators page through the log with the last seq they saw.
func (r *Repo) Since(ctx context.Context, afterSeq int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, typ, key, data, created_at FROM event_log
		 WHERE seq>$1 ORDER BY seq LIMIT $2`, afterSeq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AssessmentSink adapts the repo to the engine's result sink so every
// completed assessment leaves an event alongside the durable row.
func AssessmentSink(r *Repo) assessment.ResultSink {
	return assessment.ResultSinkFunc(func(ctx context.Context, res assessment.Result) error {
		return r.Append(ctx, TypeAssessmentCompleted, res.SessionID, res)
	})
}
