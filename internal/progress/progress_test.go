package progress_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexihop/lexihop/internal/db"
	"github.com/lexihop/lexihop/internal/progress"
)

func newTestStore(t *testing.T) (*progress.Store, context.Context) {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?cache=shared&mode=rwc"
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	return progress.NewStore(dbh), ctx
}

func TestNextInterval(t *testing.T) {
	require.Equal(t, 24*time.Hour, progress.NextInterval(0))
	require.Equal(t, 24*time.Hour, progress.NextInterval(1))
	require.Equal(t, 72*time.Hour, progress.NextInterval(2))
	require.Equal(t, 7*24*time.Hour, progress.NextInterval(3))
	require.Equal(t, 14*24*time.Hour, progress.NextInterval(4))
	require.Equal(t, 14*24*time.Hour, progress.NextInterval(9), "past the table reuses the last interval")
}

func TestRecordAttemptSchedulesReview(t *testing.T) {
	store, ctx := newTestStore(t)

	before := time.Now()
	_, err := store.RecordAttempt(ctx, "child-1", "q1", "choice", "cat", true)
	require.NoError(t, err)

	due, err := store.DueReviews(ctx, "child-1", before.Add(25*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "q1", due[0].QuestionID)
	require.Equal(t, 1, due[0].ConsecutiveCorrect)

	// Not due yet at 23h.
	due, err = store.DueReviews(ctx, "child-1", before.Add(23*time.Hour))
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestConsecutiveCorrectLengthensInterval(t *testing.T) {
	store, ctx := newTestStore(t)

	before := time.Now()
	for i := 0; i < 2; i++ {
		_, err := store.RecordAttempt(ctx, "child-1", "q1", "choice", "cat", true)
		require.NoError(t, err)
	}

	// Second correct answer pushes the review out to 72h.
	due, err := store.DueReviews(ctx, "child-1", before.Add(25*time.Hour))
	require.NoError(t, err)
	require.Empty(t, due)

	due, err = store.DueReviews(ctx, "child-1", before.Add(73*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, 2, due[0].ConsecutiveCorrect)
}

func TestWrongAnswerResetsStreak(t *testing.T) {
	store, ctx := newTestStore(t)

	before := time.Now()
	for i := 0; i < 3; i++ {
		_, err := store.RecordAttempt(ctx, "child-1", "q1", "choice", "cat", true)
		require.NoError(t, err)
	}
	_, err := store.RecordAttempt(ctx, "child-1", "q1", "choice", "dog", false)
	require.NoError(t, err)

	// Back to the first interval for an early retry.
	due, err := store.DueReviews(ctx, "child-1", before.Add(25*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, 0, due[0].ConsecutiveCorrect)
}

func TestStatsFor(t *testing.T) {
	store, ctx := newTestStore(t)

	type step struct {
		qid, variant string
		correct      bool
	}
	steps := []step{
		{"q1", "choice", true},
		{"q2", "matching", false},
		{"q3", "choice", true},
		{"q4", "sentence", true},
	}
	for _, s := range steps {
		_, err := store.RecordAttempt(ctx, "child-1", s.qid, s.variant, "x", s.correct)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond) // distinct answered_at ordering
	}

	st, err := store.StatsFor(ctx, "child-1")
	require.NoError(t, err)
	require.Equal(t, 4, st.Answered)
	require.Equal(t, 3, st.Correct)
	require.InDelta(t, 0.75, st.Accuracy, 1e-9)
	require.Equal(t, 2, st.Streak, "streak counts back to the last wrong answer")
	require.Equal(t, progress.VariantStat{Answered: 2, Correct: 2}, st.ByVariant["choice"])
	require.Equal(t, progress.VariantStat{Answered: 1, Correct: 0}, st.ByVariant["matching"])
}

func TestStatsForEmptyHistory(t *testing.T) {
	store, ctx := newTestStore(t)

	st, err := store.StatsFor(ctx, "child-1")
	require.NoError(t, err)
	require.Equal(t, 0, st.Answered)
	require.Equal(t, 0.0, st.Accuracy)
	require.Empty(t, st.ByVariant)
}

func TestDueReviewsScopedToChild(t *testing.T) {
	store, ctx := newTestStore(t)

	_, err := store.RecordAttempt(ctx, "child-1", "q1", "choice", "cat", true)
	require.NoError(t, err)
	_, err = store.RecordAttempt(ctx, "child-2", "q1", "choice", "cat", true)
	require.NoError(t, err)

	due, err := store.DueReviews(ctx, "child-1", time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "child-1", due[0].ChildID)
}
