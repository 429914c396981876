package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexihop/lexihop/internal/assessment"
)

func TestLoadEmbedded(t *testing.T) {
	lib, err := LoadEmbedded()
	require.NoError(t, err)

	grades := []assessment.GradeKey{
		assessment.GradeKindergarten,
		assessment.GradeFirst,
		assessment.GradeSecond,
		assessment.GradeThird,
		assessment.GradeFourth,
	}
	for _, g := range grades {
		b, ok := lib.Battery(g)
		require.True(t, ok, "battery for %s", g)
		assert.Equal(t, g, b.Grade)
		assert.NotEmpty(t, b.Label)
		assert.Len(t, b.Questions, 5, "battery size is fixed per grade")
		assert.NotEmpty(t, lib.Practice(g), "practice set for %s", g)
	}
}

func TestQuestionLookup(t *testing.T) {
	lib, err := LoadEmbedded()
	require.NoError(t, err)

	q, ok := lib.Question("g1-p2")
	require.True(t, ok)
	assert.Equal(t, assessment.VariantSentence, q.Variant)
	assert.Equal(t, "The dog ran.", q.Target)

	_, ok = lib.Question("missing")
	assert.False(t, ok)
}

func TestImportReplacesGrade(t *testing.T) {
	lib, err := LoadEmbedded()
	require.NoError(t, err)

	raw := []byte(`
grade: kindergarten
label: Kindergarten (custom)
battery:
  - id: custom-1
    variant: choice
    prompt: pick b
    choices: [b, d]
    correct_answer: b
practice: []
`)
	grade, err := lib.Import(raw)
	require.NoError(t, err)
	assert.Equal(t, assessment.GradeKindergarten, grade)

	b, ok := lib.Battery(assessment.GradeKindergarten)
	require.True(t, ok)
	assert.Equal(t, "Kindergarten (custom)", b.Label)
	assert.Len(t, b.Questions, 1)
}

func TestImportValidation(t *testing.T) {
	lib, err := LoadEmbedded()
	require.NoError(t, err)

	cases := map[string]string{
		"unknown grade": `
grade: 9th
battery: []
`,
		"correct answer not in choices": `
grade: 1st
battery:
  - id: x1
    variant: choice
    prompt: p
    choices: [a, b]
    correct_answer: c
`,
		"slot token missing from tray": `
grade: 1st
battery:
  - id: x2
    variant: slot-fill
    prompt: p
    slots: [sh, i, p]
    tokens: [sh, i]
`,
		"duplicate ids": `
grade: 1st
battery:
  - id: dup
    variant: choice
    prompt: p
    correct_answer: a
  - id: dup
    variant: choice
    prompt: p
    correct_answer: a
`,
		"unknown variant": `
grade: 1st
battery:
  - id: x3
    variant: drag-race
    prompt: p
`,
	}
	for name, raw := range cases {
		_, err := lib.Import([]byte(raw))
		assert.Error(t, err, name)
	}
}
