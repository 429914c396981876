package assessment

import (
	"context"
	"errors"
)

// State is the session's position in the strictly linear flow
// loading -> intro -> quiz -> results.
type State string

const (
	StateLoading State = "loading"
	StateIntro   State = "intro"
	StateQuiz    State = "quiz"
	StateResults State = "results"
)

var (
	ErrNotInQuiz   = errors.New("session is not in the quiz state")
	ErrNotInIntro  = errors.New("session is not in the intro state")
	ErrGradeKnown  = errors.New("session already has a grade")
	ErrNotFinished = errors.New("session has not reached results")
)

// Result is what a finished session emits to the sinks: the immutable answer
// list plus the derived score and placement.
type Result struct {
	SessionID    string         `json:"session_id"`
	ChildID      string         `json:"child_id"`
	Grade        GradeKey       `json:"grade"`
	ScorePercent int            `json:"score_percent"`
	LevelName    string         `json:"level_name"`
	Answers      []AnswerRecord `json:"answers"`
}

// ResultSink durably records a completed assessment. The session flow never
// waits on it and never surfaces its failures to the learner.
type ResultSink interface {
	SaveResult(ctx context.Context, res Result) error
}

// ResultSinkFunc adapts a function to ResultSink.
type ResultSinkFunc func(ctx context.Context, res Result) error

func (f ResultSinkFunc) SaveResult(ctx context.Context, res Result) error { return f(ctx, res) }

// MultiResultSink fans a result out to several sinks. Each sink's error is
// returned joined so the caller can log them; none blocks the others.
func MultiResultSink(sinks ...ResultSink) ResultSink {
	return ResultSinkFunc(func(ctx context.Context, res Result) error {
		var errs []error
		for _, s := range sinks {
			if err := s.SaveResult(ctx, res); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// ProfileSink records the placement outcome on the child's profile.
type ProfileSink interface {
	UpdateReadingLevel(ctx context.Context, childID, levelName string) error
}

// GradeResolver reports a child's grade. ok is false while the grade is not
// yet known; a session stays in loading until it resolves.
type GradeResolver interface {
	GradeFor(ctx context.Context, childID string) (grade GradeKey, ok bool, err error)
}

// Session drives one child's assessment. It owns the growing AnswerRecord
// list exclusively; nothing else appends to it. Sessions are not safe for
// concurrent use — the Manager serializes access.
type Session struct {
	ID      string
	ChildID string

	state   State
	grade   GradeKey
	label   string
	battery []Question
	index   int
	records []AnswerRecord

	// answeredCurrent guards against double submission: once an answer is
	// committed for the current question, further commits are ignored until
	// Advance moves on.
	answeredCurrent bool
	result          *Result
	resultEmitted   bool
}

// NewSession starts a session in loading, waiting for the grade to resolve.
func NewSession(id, childID string) *Session {
	return &Session{ID: id, ChildID: childID, state: StateLoading}
}

// ResolveGrade supplies the grade and its battery, moving loading -> intro.
// A second call is rejected; the battery for a session never changes.
func (s *Session) ResolveGrade(b GradeBattery) error {
	if s.state != StateLoading {
		return ErrGradeKnown
	}
	s.grade = b.Grade
	s.label = b.Label
	s.battery = b.Questions
	s.state = StateIntro
	return nil
}

// Begin moves intro -> quiz. An empty battery is degenerate but valid: the
// session goes straight to results with a zero score.
func (s *Session) Begin() error {
	if s.state != StateIntro {
		return ErrNotInIntro
	}
	if len(s.battery) == 0 {
		s.finish()
		return nil
	}
	s.state = StateQuiz
	return nil
}

// Commit records the learner's answer for the current question, comparing it
// to the answer key with a case-sensitive exact match. It returns false when
// the commit was ignored: either the session is not in quiz, or an answer for
// this question already exists.
func (s *Session) Commit(selected string) (AnswerRecord, bool) {
	if s.state != StateQuiz || s.answeredCurrent {
		return AnswerRecord{}, false
	}
	q := s.battery[s.index]
	rec := AnswerRecord{
		QuestionID:     q.ID,
		SelectedAnswer: selected,
		CorrectAnswer:  q.CorrectAnswer,
		IsCorrect:      selected == q.CorrectAnswer,
	}
	s.records = append(s.records, rec)
	s.answeredCurrent = true
	return rec, true
}

// Advance moves past the committed question: to the next one, or to results
// after the last. Without a committed answer it does nothing, preserving the
// question order invariant.
func (s *Session) Advance() {
	if s.state != StateQuiz || !s.answeredCurrent {
		return
	}
	if s.index+1 < len(s.battery) {
		s.index++
		s.answeredCurrent = false
		return
	}
	s.finish()
}

func (s *Session) finish() {
	score := Score(s.records)
	placement, err := Place(score, s.grade)
	if err != nil {
		// Unknown grade means the session never resolved; finish is not
		// reachable in that state. Keep the score without a level name.
		placement = Placement{ScorePercent: score}
	}
	s.result = &Result{
		SessionID:    s.ID,
		ChildID:      s.ChildID,
		Grade:        s.grade,
		ScorePercent: placement.ScorePercent,
		LevelName:    placement.LevelName,
		Answers:      append([]AnswerRecord(nil), s.records...),
	}
	s.state = StateResults
}

// State returns the session's current lifecycle state.
func (s *Session) State() State { return s.state }

// Result returns the emitted result once the session reaches results.
func (s *Session) Result() (Result, error) {
	if s.result == nil {
		return Result{}, ErrNotFinished
	}
	return *s.result, nil
}

// CurrentQuestion returns the question awaiting an answer, sanitized for the
// client, and false outside the quiz state.
func (s *Session) CurrentQuestion() (Question, bool) {
	if s.state != StateQuiz {
		return Question{}, false
	}
	return s.battery[s.index].Sanitized(), true
}

// View is the client-facing snapshot of a session. Answer keys never appear
// in it.
type View struct {
	ID           string    `json:"id"`
	ChildID      string    `json:"child_id"`
	State        State     `json:"state"`
	Grade        GradeKey  `json:"grade,omitempty"`
	GradeLabel   string    `json:"grade_label,omitempty"`
	BatterySize  int       `json:"battery_size"`
	CurrentIndex int       `json:"current_index"`
	Question     *Question `json:"question,omitempty"`
	Result       *Result   `json:"result,omitempty"`
}

// Snapshot builds the client view for the session's current state.
func (s *Session) Snapshot() View {
	v := View{
		ID:           s.ID,
		ChildID:      s.ChildID,
		State:        s.state,
		Grade:        s.grade,
		GradeLabel:   s.label,
		BatterySize:  len(s.battery),
		CurrentIndex: s.index,
	}
	if q, ok := s.CurrentQuestion(); ok {
		v.Question = &q
	}
	if s.result != nil {
		r := *s.result
		v.Result = &r
	}
	return v
}
