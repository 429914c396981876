package assessment

import (
	"fmt"
	"math"
)

// levelBand is one row of a grade's threshold table: an inclusive lower bound
// on the percentage score and the reading level it unlocks.
type levelBand struct {
	MinScore int
	Name     string
}

// Threshold tables per grade, lowest band first. Bands are cumulative: the
// highest band whose MinScore the score meets wins, so a boundary score
// resolves to the higher level.
var placementTables = map[GradeKey][]levelBand{
	GradeKindergarten: {
		{0, "Letter Explorer"},
		{40, "Sound Spotter"},
		{75, "Word Builder"},
	},
	GradeFirst: {
		{0, "Sound Spotter"},
		{40, "Word Builder"},
		{75, "Sentence Starter"},
	},
	GradeSecond: {
		{0, "Word Builder"},
		{40, "Sentence Starter"},
		{75, "Story Hopper"},
	},
	GradeThird: {
		{0, "Sentence Starter"},
		{40, "Story Hopper"},
		{75, "Fluent Reader"},
	},
	GradeFourth: {
		{0, "Story Hopper"},
		{40, "Fluent Reader"},
		{75, "Chapter Champion"},
	},
}

// Score returns the rounded percentage of correct records. An empty list
// scores zero; there is no division by zero for a degenerate battery.
func Score(records []AnswerRecord) int {
	if len(records) == 0 {
		return 0
	}
	correct := 0
	for _, r := range records {
		if r.IsCorrect {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(records))))
}

// Place maps a percentage score to the reading level for a grade. Pure and
// total over [0,100] for every valid grade; out-of-range scores are clamped.
func Place(scorePercent int, grade GradeKey) (Placement, error) {
	bands, ok := placementTables[grade]
	if !ok {
		return Placement{}, fmt.Errorf("unknown grade key %q", grade)
	}
	if scorePercent < 0 {
		scorePercent = 0
	}
	if scorePercent > 100 {
		scorePercent = 100
	}
	name := bands[0].Name
	for _, b := range bands {
		if scorePercent >= b.MinScore {
			name = b.Name
		}
	}
	return Placement{ScorePercent: scorePercent, LevelName: name}, nil
}

// LevelIndex returns the position of a level within a grade's table, or -1
// when the level is not defined for that grade. Higher index means a higher
// placement.
func LevelIndex(grade GradeKey, levelName string) int {
	for i, b := range placementTables[grade] {
		if b.Name == levelName {
			return i
		}
	}
	return -1
}
