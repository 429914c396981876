package assessment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiveQuestionBattery() GradeBattery {
	qs := make([]Question, 5)
	for i := range qs {
		qs[i] = Question{
			ID:            string(rune('a' + i)),
			Variant:       VariantChoice,
			Prompt:        "pick the right sound",
			Choices:       []string{"yes", "no"},
			CorrectAnswer: "yes",
		}
	}
	return GradeBattery{Grade: GradeFirst, Label: "1st Grade", Questions: qs}
}

func runSession(t *testing.T, answers []string) *Session {
	t.Helper()
	s := NewSession("sess", "child")
	require.NoError(t, s.ResolveGrade(fiveQuestionBattery()))
	require.NoError(t, s.Begin())
	for _, a := range answers {
		_, ok := s.Commit(a)
		require.True(t, ok)
		s.Advance()
	}
	return s
}

func TestPerfectRun(t *testing.T) {
	s := runSession(t, []string{"yes", "yes", "yes", "yes", "yes"})
	require.Equal(t, StateResults, s.State())
	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, 100, res.ScorePercent)
	assert.Len(t, res.Answers, 5)
	for _, r := range res.Answers {
		assert.True(t, r.IsCorrect)
	}
	// Top-defined level for the grade.
	top := placementTables[GradeFirst][len(placementTables[GradeFirst])-1].Name
	assert.Equal(t, top, res.LevelName)
}

func TestAllWrongRun(t *testing.T) {
	s := runSession(t, []string{"no", "no", "no", "no", "no"})
	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, 0, res.ScorePercent)
	assert.Equal(t, placementTables[GradeFirst][0].Name, res.LevelName)
}

func TestAnswerComparisonIsCaseSensitive(t *testing.T) {
	s := NewSession("sess", "child")
	require.NoError(t, s.ResolveGrade(fiveQuestionBattery()))
	require.NoError(t, s.Begin())
	rec, ok := s.Commit("Yes")
	require.True(t, ok)
	assert.False(t, rec.IsCorrect)
}

func TestDoubleSubmissionIgnored(t *testing.T) {
	s := NewSession("sess", "child")
	require.NoError(t, s.ResolveGrade(fiveQuestionBattery()))
	require.NoError(t, s.Begin())

	_, ok := s.Commit("yes")
	require.True(t, ok)
	_, ok = s.Commit("no")
	assert.False(t, ok, "second commit before advance must be ignored")

	s.Advance()
	_, ok = s.Commit("no")
	assert.True(t, ok, "next question accepts a fresh answer")

	res := s.records
	require.Len(t, res, 2)
	assert.True(t, res[0].IsCorrect)
	assert.False(t, res[1].IsCorrect)
}

func TestAdvanceWithoutCommitIsNoOp(t *testing.T) {
	s := NewSession("sess", "child")
	require.NoError(t, s.ResolveGrade(fiveQuestionBattery()))
	require.NoError(t, s.Begin())
	s.Advance()
	assert.Equal(t, 0, s.index)
	assert.Equal(t, StateQuiz, s.State())
}

func TestEmptyBatteryScoresZero(t *testing.T) {
	s := NewSession("sess", "child")
	require.NoError(t, s.ResolveGrade(GradeBattery{Grade: GradeSecond, Label: "2nd Grade"}))
	require.NoError(t, s.Begin())
	require.Equal(t, StateResults, s.State())
	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, 0, res.ScorePercent)
	assert.Equal(t, placementTables[GradeSecond][0].Name, res.LevelName)
	assert.Empty(t, res.Answers)
}

func TestLinearFlowRejectsOutOfOrderCalls(t *testing.T) {
	s := NewSession("sess", "child")
	assert.ErrorIs(t, s.Begin(), ErrNotInIntro)
	_, ok := s.Commit("yes")
	assert.False(t, ok)
	_, err := s.Result()
	assert.ErrorIs(t, err, ErrNotFinished)

	require.NoError(t, s.ResolveGrade(fiveQuestionBattery()))
	assert.ErrorIs(t, s.ResolveGrade(fiveQuestionBattery()), ErrGradeKnown)
}

func TestSnapshotHidesAnswerKeys(t *testing.T) {
	s := NewSession("sess", "child")
	require.NoError(t, s.ResolveGrade(fiveQuestionBattery()))
	require.NoError(t, s.Begin())
	v := s.Snapshot()
	require.NotNil(t, v.Question)
	assert.Empty(t, v.Question.CorrectAnswer)
	assert.Equal(t, 5, v.BatterySize)
}

/* ---------------- Manager with fake collaborators ---------------- */

type fakeLibrary struct{ batteries map[GradeKey]GradeBattery }

func (f fakeLibrary) Battery(g GradeKey) (GradeBattery, bool) {
	b, ok := f.batteries[g]
	return b, ok
}

type fakeResolver struct {
	mu     sync.Mutex
	grades map[string]GradeKey
}

func (f *fakeResolver) GradeFor(_ context.Context, childID string) (GradeKey, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.grades[childID]
	return g, ok, nil
}

type fakeSinks struct {
	mu      sync.Mutex
	results []Result
	levels  map[string]string
	done    chan struct{}
}

func newFakeSinks() *fakeSinks {
	return &fakeSinks{levels: map[string]string{}, done: make(chan struct{}, 4)}
}

func (f *fakeSinks) SaveResult(_ context.Context, res Result) error {
	f.mu.Lock()
	f.results = append(f.results, res)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeSinks) UpdateReadingLevel(_ context.Context, childID, level string) error {
	f.mu.Lock()
	f.levels[childID] = level
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeSinks) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("sink call %d/%d never arrived", i+1, n)
		}
	}
}

func newTestManager(resolver *fakeResolver, sinks *fakeSinks) *Manager {
	lib := fakeLibrary{batteries: map[GradeKey]GradeBattery{GradeFirst: fiveQuestionBattery()}}
	return NewManager(lib, resolver, sinks, sinks, nil)
}

func TestManagerFullFlow(t *testing.T) {
	resolver := &fakeResolver{grades: map[string]GradeKey{"kid-1": GradeFirst}}
	sinks := newFakeSinks()
	m := newTestManager(resolver, sinks)

	ctx := context.Background()
	v, err := m.Start(ctx, "kid-1")
	require.NoError(t, err)
	assert.Equal(t, StateIntro, v.State)
	assert.Equal(t, "1st Grade", v.GradeLabel)

	v, err = m.Begin(v.ID)
	require.NoError(t, err)
	require.Equal(t, StateQuiz, v.State)

	answers := []string{"yes", "yes", "no", "yes", "yes"}
	for _, a := range answers {
		v, err = m.Answer(v.ID, a)
		require.NoError(t, err)
	}
	require.Equal(t, StateResults, v.State)
	require.NotNil(t, v.Result)
	assert.Equal(t, 80, v.Result.ScorePercent)

	// Both fire-and-forget sinks eventually observe the outcome.
	sinks.wait(t, 2)
	sinks.mu.Lock()
	defer sinks.mu.Unlock()
	require.Len(t, sinks.results, 1)
	assert.Equal(t, 80, sinks.results[0].ScorePercent)
	assert.Equal(t, sinks.results[0].LevelName, sinks.levels["kid-1"])
}

func TestManagerStaysLoadingWithoutGrade(t *testing.T) {
	resolver := &fakeResolver{grades: map[string]GradeKey{}}
	sinks := newFakeSinks()
	m := newTestManager(resolver, sinks)

	ctx := context.Background()
	v, err := m.Start(ctx, "kid-2")
	require.NoError(t, err)
	assert.Equal(t, StateLoading, v.State)

	// Answering in loading is rejected, not a crash.
	_, err = m.Answer(v.ID, "yes")
	assert.ErrorIs(t, err, ErrNotInQuiz)

	// Once the grade appears, Get picks it up.
	resolver.mu.Lock()
	resolver.grades["kid-2"] = GradeFirst
	resolver.mu.Unlock()
	v, err = m.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, StateIntro, v.State)
}

func TestManagerDuplicateAnswerKeepsIndex(t *testing.T) {
	resolver := &fakeResolver{grades: map[string]GradeKey{"kid-3": GradeFirst}}
	sinks := newFakeSinks()
	m := newTestManager(resolver, sinks)

	ctx := context.Background()
	v, _ := m.Start(ctx, "kid-3")
	v, _ = m.Begin(v.ID)

	v1, err := m.Answer(v.ID, "yes")
	require.NoError(t, err)
	v2, err := m.Answer(v.ID, "no")
	require.NoError(t, err)
	// Second call advanced to question 2 normally; indexes move one at a time.
	assert.Equal(t, v1.CurrentIndex+1, v2.CurrentIndex)
}

func TestManagerAbandonDiscardsSession(t *testing.T) {
	resolver := &fakeResolver{grades: map[string]GradeKey{"kid-4": GradeFirst}}
	m := newTestManager(resolver, newFakeSinks())

	v, _ := m.Start(context.Background(), "kid-4")
	m.Abandon(v.ID)
	_, err := m.Get(context.Background(), v.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerUnknownSession(t *testing.T) {
	m := newTestManager(&fakeResolver{grades: map[string]GradeKey{}}, newFakeSinks())
	_, err := m.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Begin("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Answer("nope", "yes")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
