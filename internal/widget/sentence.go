package widget

import "strings"

// SentenceBuilder assembles scrambled word tokens into a target sentence. The
// learner places tokens in order and confirms; the verdict compares the placed
// tokens joined with spaces, plus the trailing punctuation mark, against the
// target. Order-sensitive and case-sensitive.
type SentenceBuilder struct {
	lifecycle
	available map[string]int // remaining tokens, multiset
	total     int
	placed    []string
	target    string
	punct     string
}

// NewSentenceBuilder builds a sentence widget. punct is the fixed trailing
// punctuation appended before comparison; it defaults to a period.
func NewSentenceBuilder(tokens []string, target, punct string, onAnswer AnswerFunc, opts ...Option) *SentenceBuilder {
	o := buildOptions(opts)
	if punct == "" {
		punct = "."
	}
	avail := make(map[string]int, len(tokens))
	for _, t := range tokens {
		avail[t]++
	}
	return &SentenceBuilder{
		lifecycle: newLifecycle(onAnswer, o),
		available: avail,
		total:     len(tokens),
		target:    target,
		punct:     punct,
	}
}

// Place appends a token to the sentence under construction. Tokens not in the
// remaining pool are ignored.
func (b *SentenceBuilder) Place(token string) {
	if b.locked() {
		return
	}
	if b.available[token] == 0 {
		return
	}
	b.available[token]--
	b.placed = append(b.placed, token)
}

// RemoveLast returns the most recently placed token to the pool.
func (b *SentenceBuilder) RemoveLast() {
	if b.locked() || len(b.placed) == 0 {
		return
	}
	last := b.placed[len(b.placed)-1]
	b.placed = b.placed[:len(b.placed)-1]
	b.available[last]++
}

// Placed returns the current token order.
func (b *SentenceBuilder) Placed() []string { return append([]string(nil), b.placed...) }

// Confirm computes the verdict. It does nothing until every token is placed.
func (b *SentenceBuilder) Confirm() {
	if b.locked() || len(b.placed) < b.total {
		return
	}
	built := strings.Join(b.placed, " ") + b.punct
	ok := built == b.target
	b.attempt(ok)
	b.resolve(Verdict{Correct: ok, Answer: built})
}
