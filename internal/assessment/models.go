// Package assessment implements the diagnostic reading placement: a fixed
// question battery per grade, a linear quiz session over it, and the
// score-to-reading-level lookup.
package assessment

import "sort"

// GradeKey identifies a school-grade band. It selects both the question
// battery and the placement threshold table.
type GradeKey string

const (
	GradeKindergarten GradeKey = "kindergarten"
	GradeFirst        GradeKey = "1st"
	GradeSecond       GradeKey = "2nd"
	GradeThird        GradeKey = "3rd"
	GradeFourth       GradeKey = "4th"
)

var gradeLabels = map[GradeKey]string{
	GradeKindergarten: "Kindergarten",
	GradeFirst:        "1st Grade",
	GradeSecond:       "2nd Grade",
	GradeThird:        "3rd Grade",
	GradeFourth:       "4th Grade",
}

func (g GradeKey) Valid() bool {
	_, ok := gradeLabels[g]
	return ok
}

func (g GradeKey) Label() string { return gradeLabels[g] }

// StimulusKind tells the client how to render a question's stimulus.
type StimulusKind string

const (
	StimulusLetter        StimulusKind = "letter-display"
	StimulusSegmentedWord StimulusKind = "segmented-word"
	StimulusWord          StimulusKind = "word-display"
	StimulusPassage       StimulusKind = "passage"
	StimulusSentence      StimulusKind = "sentence"
	StimulusGeneric       StimulusKind = "generic"
)

// Variant names the practice-widget interaction a question uses.
const (
	VariantChoice       = "choice"
	VariantFillBlank    = "fill-blank"
	VariantMatching     = "matching"
	VariantCategorySort = "category-sort"
	VariantSentence     = "sentence"
	VariantSlotFill     = "slot-fill"
)

// Question is one immutable content unit. CorrectAnswer covers the
// choice-based variants; the structured fields carry the answer key for
// matching, sorting, sentence building and slot filling.
type Question struct {
	ID           string       `json:"id" yaml:"id"`
	Variant      string       `json:"variant" yaml:"variant"`
	Prompt       string       `json:"prompt" yaml:"prompt"`
	Stimulus     string       `json:"stimulus,omitempty" yaml:"stimulus,omitempty"`
	StimulusKind StimulusKind `json:"stimulus_kind,omitempty" yaml:"stimulus_kind,omitempty"`

	Choices       []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty" yaml:"correct_answer,omitempty"`

	Pairs       map[string]string   `json:"pairs,omitempty" yaml:"pairs,omitempty"`
	Categories  map[string][]string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Tokens      []string            `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Slots       []string            `json:"slots,omitempty" yaml:"slots,omitempty"`
	Target      string              `json:"target,omitempty" yaml:"target,omitempty"`
	Punctuation string              `json:"punctuation,omitempty" yaml:"punctuation,omitempty"`

	// Render-only fields derived by Sanitized; never authored, never stored.
	LeftItems     []string `json:"left_items,omitempty" yaml:"-"`
	RightItems    []string `json:"right_items,omitempty" yaml:"-"`
	CategoryNames []string `json:"category_names,omitempty" yaml:"-"`
	Pool          []string `json:"pool,omitempty" yaml:"-"`
	SlotCount     int      `json:"slot_count,omitempty" yaml:"-"`
}

// Sanitized returns a copy with every answer-key field stripped, safe to serve
// to the learner's client. The keyed structures are replaced by flat lists the
// client can render: pair sides, category names plus the item pool, slot count.
func (q Question) Sanitized() Question {
	for l, r := range q.Pairs {
		q.LeftItems = append(q.LeftItems, l)
		q.RightItems = append(q.RightItems, r)
	}
	sort.Strings(q.LeftItems)
	sort.Strings(q.RightItems)
	for name, items := range q.Categories {
		q.CategoryNames = append(q.CategoryNames, name)
		q.Pool = append(q.Pool, items...)
	}
	sort.Strings(q.CategoryNames)
	sort.Strings(q.Pool)
	q.SlotCount = len(q.Slots)

	q.CorrectAnswer = ""
	q.Pairs = nil
	q.Categories = nil
	q.Slots = nil
	q.Target = ""
	return q
}

// GradeBattery is the fixed, ordered question set for one grade.
type GradeBattery struct {
	Grade     GradeKey   `json:"grade" yaml:"grade"`
	Label     string     `json:"label" yaml:"label"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// AnswerRecord is created exactly once per question, the instant the learner
// commits an answer, and never mutated afterwards.
type AnswerRecord struct {
	QuestionID     string `json:"question_id"`
	SelectedAnswer string `json:"selected_answer"`
	CorrectAnswer  string `json:"correct_answer"`
	IsCorrect      bool   `json:"is_correct"`
}

// Placement is the scored outcome of a completed battery.
type Placement struct {
	ScorePercent int    `json:"score_percent"`
	LevelName    string `json:"level_name"`
}
