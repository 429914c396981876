package widget

import (
	"sort"
	"strings"
)

// CategorySort distributes a shared item pool into named buckets. Unlike
// matching, wrong placements are allowed to stand until the learner confirms;
// the verdict is computed on Confirm and requires set equality per bucket.
// Confirm is a no-op while any item is still unplaced.
type CategorySort struct {
	lifecycle
	answer map[string]map[string]struct{} // category -> correct item set
	pool   map[string]struct{}            // unplaced items
	placed map[string]string              // item -> category
}

// NewCategorySort builds a sort widget from the authoritative category->items
// map. The item pool is the union of all category sets.
func NewCategorySort(categories map[string][]string, onAnswer AnswerFunc, opts ...Option) *CategorySort {
	o := buildOptions(opts)
	answer := make(map[string]map[string]struct{}, len(categories))
	pool := map[string]struct{}{}
	for cat, items := range categories {
		set := make(map[string]struct{}, len(items))
		for _, it := range items {
			set[it] = struct{}{}
			pool[it] = struct{}{}
		}
		answer[cat] = set
	}
	return &CategorySort{
		lifecycle: newLifecycle(onAnswer, o),
		answer:    answer,
		pool:      pool,
		placed:    map[string]string{},
	}
}

// Place moves an item from the pool into a bucket. Unknown items or buckets
// are ignored.
func (s *CategorySort) Place(item, category string) {
	if s.locked() {
		return
	}
	if _, ok := s.pool[item]; !ok {
		return
	}
	set, ok := s.answer[category]
	if !ok {
		return
	}
	delete(s.pool, item)
	s.placed[item] = category
	_, correct := set[item]
	s.attempt(correct)
}

// Remove returns a placed item to the pool so the learner can re-sort before
// confirming.
func (s *CategorySort) Remove(item string) {
	if s.locked() {
		return
	}
	if _, ok := s.placed[item]; !ok {
		return
	}
	delete(s.placed, item)
	s.pool[item] = struct{}{}
}

// Unplaced reports how many items are still in the pool.
func (s *CategorySort) Unplaced() int { return len(s.pool) }

// Confirm computes the verdict. It does nothing until every item is placed.
func (s *CategorySort) Confirm() {
	if s.locked() || len(s.pool) > 0 {
		return
	}
	correct := true
	for cat, want := range s.answer {
		got := 0
		for item, placedCat := range s.placed {
			if placedCat != cat {
				continue
			}
			if _, ok := want[item]; !ok {
				correct = false
			}
			got++
		}
		if got != len(want) {
			correct = false
		}
	}
	s.resolve(Verdict{Correct: correct, Answer: s.arrangement()})
}

func (s *CategorySort) arrangement() string {
	items := make([]string, 0, len(s.placed))
	for it := range s.placed {
		items = append(items, it)
	}
	sort.Strings(items)
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it+">"+s.placed[it])
	}
	return strings.Join(parts, ",")
}
