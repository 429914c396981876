package assessment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatteryProvider supplies the fixed question battery for a grade. Content is
// preloaded; the lookup is synchronous.
type BatteryProvider interface {
	Battery(grade GradeKey) (GradeBattery, bool)
}

var ErrSessionNotFound = errors.New("session not found")

// sinkTimeout bounds the detached result write so a hung sink cannot leak
// goroutines forever.
const sinkTimeout = 10 * time.Second

// Manager owns the in-flight sessions. Completed results go to the sinks on a
// detached goroutine; the results view renders regardless of their outcome.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	batteries BatteryProvider
	grades    GradeResolver
	results   ResultSink
	profiles  ProfileSink
	log       *zap.Logger
}

func NewManager(batteries BatteryProvider, grades GradeResolver, results ResultSink, profiles ProfileSink, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		sessions:  map[string]*Session{},
		batteries: batteries,
		grades:    grades,
		results:   results,
		profiles:  profiles,
		log:       log,
	}
}

// Start creates a session for a child. When the grade resolves immediately
// the session lands in intro; otherwise it stays in loading and a later Start
// or Refresh can pick the grade up.
func (m *Manager) Start(ctx context.Context, childID string) (View, error) {
	s := NewSession(uuid.NewString(), childID)
	m.tryResolve(ctx, s)

	m.mu.Lock()
	m.sessions[s.ID] = s
	v := s.Snapshot()
	m.mu.Unlock()
	return v, nil
}

// Get returns the current session view, re-attempting grade resolution for
// sessions still in loading.
func (m *Manager) Get(ctx context.Context, id string) (View, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return View{}, ErrSessionNotFound
	}
	if s.State() == StateLoading {
		m.tryResolve(ctx, s)
	}
	v := s.Snapshot()
	m.mu.Unlock()
	return v, nil
}

// Begin moves a session from intro into the quiz. An empty battery completes
// immediately, so the result emission path runs here too.
func (m *Manager) Begin(id string) (View, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return View{}, ErrSessionNotFound
	}
	err := s.Begin()
	v := s.Snapshot()
	res := finishedResult(s)
	m.mu.Unlock()

	if res != nil {
		m.emit(*res)
	}
	return v, err
}

// Answer commits the learner's answer for the current question and advances.
// A duplicate submission for the same question is silently ignored and the
// unchanged view returned. Completing the last question scores the battery
// and hands the result to the sinks without blocking.
func (m *Manager) Answer(id, selected string) (View, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return View{}, ErrSessionNotFound
	}
	if s.State() != StateQuiz {
		v := s.Snapshot()
		m.mu.Unlock()
		return v, ErrNotInQuiz
	}
	if _, committed := s.Commit(selected); committed {
		s.Advance()
	}
	v := s.Snapshot()
	res := finishedResult(s)
	m.mu.Unlock()

	if res != nil {
		m.emit(*res)
	}
	return v, nil
}

// Abandon drops an in-flight session. In-memory state is simply discarded;
// nothing was persisted yet.
func (m *Manager) Abandon(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) tryResolve(ctx context.Context, s *Session) {
	grade, ok, err := m.grades.GradeFor(ctx, s.ChildID)
	if err != nil {
		m.log.Warn("grade resolution failed", zap.String("child_id", s.ChildID), zap.Error(err))
		return
	}
	if !ok || !grade.Valid() {
		return
	}
	b, found := m.batteries.Battery(grade)
	if !found {
		m.log.Warn("no battery for grade", zap.String("grade", string(grade)))
		return
	}
	if err := s.ResolveGrade(b); err != nil {
		m.log.Warn("grade resolve rejected", zap.String("session_id", s.ID), zap.Error(err))
	}
}

// finishedResult returns the result exactly once, the first time the session
// is observed in results. Callers must hold the manager lock.
func finishedResult(s *Session) *Result {
	if s.State() != StateResults || s.result == nil || s.resultEmitted {
		return nil
	}
	s.resultEmitted = true
	r := *s.result
	return &r
}

// emit performs the fire-and-forget writes: the durable result record and the
// child's new reading level. Failures are logged for operators and never
// shown to the learner.
func (m *Manager) emit(res Result) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		defer cancel()
		if m.results != nil {
			if err := m.results.SaveResult(ctx, res); err != nil {
				m.log.Warn("result sink failed",
					zap.String("session_id", res.SessionID),
					zap.String("child_id", res.ChildID),
					zap.Error(err))
			}
		}
		if m.profiles != nil {
			if err := m.profiles.UpdateReadingLevel(ctx, res.ChildID, res.LevelName); err != nil {
				m.log.Warn("profile sink failed",
					zap.String("child_id", res.ChildID),
					zap.Error(err))
			}
		}
	}()
}
