package widget

import "strings"

// Choice is the single-selection variant used for phoneme questions, word
// recognition and fill-in-the-blank. The first selection resolves the
// instance.
//
// Case handling differs by exercise type in the shipped content: phoneme and
// word questions compare case-sensitively, fill-in-the-blank does not. The
// flag keeps that behavior explicit instead of baking one rule in.
type Choice struct {
	lifecycle
	choices    []string
	correct    string
	ignoreCase bool
}

// NewChoice builds a case-sensitive single-choice widget.
func NewChoice(choices []string, correct string, onAnswer AnswerFunc, opts ...Option) *Choice {
	return newChoice(choices, correct, false, onAnswer, opts)
}

// NewFillBlank builds the fill-in-the-blank flavor, which compares the
// selection case-insensitively.
func NewFillBlank(choices []string, correct string, onAnswer AnswerFunc, opts ...Option) *Choice {
	return newChoice(choices, correct, true, onAnswer, opts)
}

func newChoice(choices []string, correct string, ignoreCase bool, onAnswer AnswerFunc, opts []Option) *Choice {
	o := buildOptions(opts)
	return &Choice{
		lifecycle:  newLifecycle(onAnswer, o),
		choices:    append([]string(nil), choices...),
		correct:    correct,
		ignoreCase: ignoreCase,
	}
}

// Select commits the learner's pick. Ignored once the instance is locked.
func (c *Choice) Select(option string) {
	if c.locked() {
		return
	}
	ok := option == c.correct
	if c.ignoreCase {
		ok = strings.EqualFold(option, c.correct)
	}
	c.attempt(ok)
	c.resolve(Verdict{Correct: ok, Answer: option})
}
