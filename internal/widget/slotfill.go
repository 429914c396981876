package widget

import "strings"

// SlotFill is the phoneme-slot variant: a word segmented into ordered slots,
// each expecting one sound token. The token tray includes distractors that
// belong to no slot. The verdict requires every slot to hold its expected
// token, computed on explicit confirmation.
type SlotFill struct {
	lifecycle
	expected  []string
	available map[string]int // tray tokens incl. distractors, multiset
	slots     []string       // "" while empty
}

// NewSlotFill builds a slot-fill widget. expected is the per-slot answer key;
// tokens is the full tray (answers plus distractors).
func NewSlotFill(expected, tokens []string, onAnswer AnswerFunc, opts ...Option) *SlotFill {
	o := buildOptions(opts)
	avail := make(map[string]int, len(tokens))
	for _, t := range tokens {
		avail[t]++
	}
	return &SlotFill{
		lifecycle: newLifecycle(onAnswer, o),
		expected:  append([]string(nil), expected...),
		available: avail,
		slots:     make([]string, len(expected)),
	}
}

// Assign drops a tray token into slot i, returning any token already there to
// the tray. Out-of-range slots and unavailable tokens are ignored.
func (f *SlotFill) Assign(i int, token string) {
	if f.locked() || i < 0 || i >= len(f.slots) {
		return
	}
	if f.available[token] == 0 {
		return
	}
	if prev := f.slots[i]; prev != "" {
		f.available[prev]++
	}
	f.available[token]--
	f.slots[i] = token
}

// Clear empties slot i back into the tray.
func (f *SlotFill) Clear(i int) {
	if f.locked() || i < 0 || i >= len(f.slots) || f.slots[i] == "" {
		return
	}
	f.available[f.slots[i]]++
	f.slots[i] = ""
}

// Filled reports whether every slot holds a token.
func (f *SlotFill) Filled() bool {
	for _, s := range f.slots {
		if s == "" {
			return false
		}
	}
	return true
}

// Confirm computes the verdict. It does nothing while any slot is empty.
func (f *SlotFill) Confirm() {
	if f.locked() || !f.Filled() {
		return
	}
	ok := true
	for i, s := range f.slots {
		if s != f.expected[i] {
			ok = false
			break
		}
	}
	f.attempt(ok)
	f.resolve(Verdict{Correct: ok, Answer: strings.Join(f.slots, "-")})
}
