// Package widget implements the scored practice interactions: one shared
// answer lifecycle (unanswered -> verdict -> locked) plus a variant per
// exercise type (single choice, matching pairs, category sort, sentence
// building, phoneme slot fill). Every variant reports its outcome through a
// single AnswerFunc, exactly once per instance.
package widget

// Verdict is the terminal outcome of one widget instance.
type Verdict struct {
	Correct bool   `json:"correct"`
	Answer  string `json:"answer"` // free-form representation, handed to the host for persistence
}

// AnswerFunc receives the verdict the first time the learner's input satisfies
// the variant's completion condition. It is never called twice for the same
// instance.
type AnswerFunc func(Verdict)

// AttemptFunc observes individual placement/pairing attempts. Hosts use it for
// streak and combo feedback; it is independent of the terminal verdict.
type AttemptFunc func(correct bool)

// Option configures a widget instance at construction.
type Option func(*options)

type options struct {
	answered  bool
	onAttempt AttemptFunc
}

// WithAnswered marks the instance as externally resolved. A widget built with
// this option ignores all input and never fires its AnswerFunc.
func WithAnswered(b bool) Option { return func(o *options) { o.answered = b } }

// WithAttemptHook installs a per-attempt observer.
func WithAttemptHook(f AttemptFunc) Option { return func(o *options) { o.onAttempt = f } }

func buildOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// lifecycle is the state every variant embeds. Input handlers must check
// locked() first and call resolve at most once; resolve flips the instance to
// locked so later input is a no-op even if more events arrive.
type lifecycle struct {
	lockedFlag bool
	onAnswer   AnswerFunc
	onAttempt  AttemptFunc
}

func newLifecycle(onAnswer AnswerFunc, o options) lifecycle {
	return lifecycle{lockedFlag: o.answered, onAnswer: onAnswer, onAttempt: o.onAttempt}
}

func (l *lifecycle) locked() bool { return l.lockedFlag }

// Resolved reports whether the instance has reached its terminal state.
func (l *lifecycle) Resolved() bool { return l.lockedFlag }

func (l *lifecycle) resolve(v Verdict) {
	if l.lockedFlag {
		return
	}
	l.lockedFlag = true
	if l.onAnswer != nil {
		l.onAnswer(v)
	}
}

func (l *lifecycle) attempt(correct bool) {
	if l.onAttempt != nil {
		l.onAttempt(correct)
	}
}
