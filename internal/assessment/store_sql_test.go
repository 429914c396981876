package assessment_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexihop/lexihop/internal/assessment"
	"github.com/lexihop/lexihop/internal/db"
)

func newTestResultStore(t *testing.T) (*assessment.SQLStore, context.Context) {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?cache=shared&mode=rwc"
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	return assessment.NewSQLStore(dbh), ctx
}

func TestSaveAndGetResult(t *testing.T) {
	store, ctx := newTestResultStore(t)

	res := assessment.Result{
		SessionID:    "s1",
		ChildID:      "child-1",
		Grade:        assessment.GradeFirst,
		ScorePercent: 80,
		LevelName:    "Sentence Starter",
		Answers: []assessment.AnswerRecord{
			{QuestionID: "q1", SelectedAnswer: "cat", CorrectAnswer: "cat", IsCorrect: true},
			{QuestionID: "q2", SelectedAnswer: "dgo", CorrectAnswer: "dog", IsCorrect: false},
		},
	}
	require.NoError(t, store.SaveResult(ctx, res))

	got, err := store.GetResult(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, res.ChildID, got.ChildID)
	require.Equal(t, res.Grade, got.Grade)
	require.Equal(t, res.ScorePercent, got.ScorePercent)
	require.Equal(t, res.Answers, got.Answers)
}

func TestGetResultNotFound(t *testing.T) {
	store, ctx := newTestResultStore(t)

	_, err := store.GetResult(ctx, "missing")
	require.ErrorIs(t, err, assessment.ErrResultNotFound)
}

func TestListResultsNewestFirst(t *testing.T) {
	store, ctx := newTestResultStore(t)

	for _, id := range []string{"s1", "s2"} {
		require.NoError(t, store.SaveResult(ctx, assessment.Result{
			SessionID: id, ChildID: "child-1", Grade: assessment.GradeKindergarten,
			LevelName: "Letter Explorer", Answers: []assessment.AnswerRecord{},
		}))
	}

	results, err := store.ListResults(ctx, "child-1")
	require.NoError(t, err)
	require.Len(t, results, 2)

	latest, err := store.LatestResult(ctx, "child-1")
	require.NoError(t, err)
	require.Contains(t, []string{"s1", "s2"}, latest.SessionID)
}
