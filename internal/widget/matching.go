package widget

import (
	"sort"
	"strings"
)

// Matching is the tap-to-pair variant. The learner taps a left item, then a
// right item. A correct pair commits and removes both items from play; an
// incorrect pair rejects and both stay available. The verdict fires once every
// left item holds a committed pair.
//
// Because a wrong tap never commits, the verdict is always correct when it
// fires. Struggle shows up only through the attempt hook and the reported
// mapping.
type Matching struct {
	lifecycle
	pairs     map[string]string // left -> expected right
	committed map[string]string
	selected  string // tapped left item awaiting its right tap, "" when none
}

// NewMatching builds a matching widget from the authoritative left->right map.
func NewMatching(pairs map[string]string, onAnswer AnswerFunc, opts ...Option) *Matching {
	o := buildOptions(opts)
	p := make(map[string]string, len(pairs))
	for l, r := range pairs {
		p[l] = r
	}
	return &Matching{
		lifecycle: newLifecycle(onAnswer, o),
		pairs:     p,
		committed: make(map[string]string, len(p)),
	}
}

// TapLeft selects a left item. Taps on unknown or already-committed items are
// ignored.
func (m *Matching) TapLeft(left string) {
	if m.locked() {
		return
	}
	if _, done := m.committed[left]; done {
		return
	}
	if _, ok := m.pairs[left]; !ok {
		return
	}
	m.selected = left
}

// TapRight attempts to pair the selected left item with right. A wrong right
// item rejects the attempt; both items remain available.
func (m *Matching) TapRight(right string) {
	if m.locked() || m.selected == "" {
		return
	}
	left := m.selected
	m.selected = ""
	if m.pairs[left] != right {
		m.attempt(false)
		return
	}
	m.committed[left] = right
	m.attempt(true)
	if len(m.committed) == len(m.pairs) {
		m.resolve(Verdict{Correct: true, Answer: m.mapping()})
	}
}

// Remaining reports how many left items still need a pair.
func (m *Matching) Remaining() int { return len(m.pairs) - len(m.committed) }

func (m *Matching) mapping() string {
	keys := make([]string, 0, len(m.committed))
	for k := range m.committed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m.committed[k])
	}
	return strings.Join(parts, ",")
}
