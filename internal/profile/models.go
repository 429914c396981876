// Package profile owns parent accounts and child learner profiles: the grade
// key the assessment engine resolves against and the reading level it writes
// back.
package profile

import "github.com/lexihop/lexihop/internal/assessment"

type Parent struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	PassHash  string `json:"-"`
	CreatedAt int64  `json:"created_at"`
}

type Child struct {
	ID           string              `json:"id"`
	ParentID     string              `json:"parent_id"`
	Name         string              `json:"name"`
	Grade        assessment.GradeKey `json:"grade,omitempty"`
	ReadingLevel string              `json:"reading_level,omitempty"`
	CreatedAt    int64               `json:"created_at"`
}
