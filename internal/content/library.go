// Package content loads the static question banks: one file per grade holding
// the diagnostic battery and the practice exercise set. Default content ships
// embedded; an external directory can override it for custom curricula.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lexihop/lexihop/internal/assessment"
)

//go:embed grades/*.yaml
var embedded embed.FS

// gradeFile is the on-disk shape of one grade's content.
type gradeFile struct {
	Grade    assessment.GradeKey   `yaml:"grade"`
	Label    string                `yaml:"label"`
	Battery  []assessment.Question `yaml:"battery"`
	Practice []assessment.Question `yaml:"practice"`
}

// Library is the in-memory question bank, keyed by grade. Reads are
// concurrent; imports replace a grade wholesale.
type Library struct {
	mu        sync.RWMutex
	batteries map[assessment.GradeKey]assessment.GradeBattery
	practice  map[assessment.GradeKey][]assessment.Question
	questions map[string]assessment.Question // id -> question, across grades
}

// LoadEmbedded builds the library from the compiled-in content.
func LoadEmbedded() (*Library, error) {
	return load(embedded, "grades")
}

// LoadDir builds the library from an external content directory.
func LoadDir(dir string) (*Library, error) {
	return load(os.DirFS(dir), ".")
}

func load(fsys fs.FS, root string) (*Library, error) {
	lib := &Library{
		batteries: map[assessment.GradeKey]assessment.GradeBattery{},
		practice:  map[assessment.GradeKey][]assessment.Question{},
		questions: map[string]assessment.Question{},
	}
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(root, e.Name()))
		if err != nil {
			return nil, err
		}
		var gf gradeFile
		if err := yaml.Unmarshal(raw, &gf); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if err := lib.putLocked(gf); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
	}
	return lib, nil
}

// Battery returns the diagnostic battery for a grade.
func (l *Library) Battery(grade assessment.GradeKey) (assessment.GradeBattery, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.batteries[grade]
	return b, ok
}

// Practice returns the practice exercises for a grade.
func (l *Library) Practice(grade assessment.GradeKey) []assessment.Question {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]assessment.Question(nil), l.practice[grade]...)
}

// Question finds any question (battery or practice) by id.
func (l *Library) Question(id string) (assessment.Question, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	q, ok := l.questions[id]
	return q, ok
}

// Import validates and installs a grade's content, replacing what was loaded
// for that grade. Used by the admin import endpoint.
func (l *Library) Import(raw []byte) (assessment.GradeKey, error) {
	var gf gradeFile
	if err := yaml.Unmarshal(raw, &gf); err != nil {
		return "", err
	}
	if err := l.putLocked(gf); err != nil {
		return "", err
	}
	return gf.Grade, nil
}

func (l *Library) putLocked(gf gradeFile) error {
	if !gf.Grade.Valid() {
		return fmt.Errorf("unknown grade key %q", gf.Grade)
	}
	if gf.Label == "" {
		gf.Label = gf.Grade.Label()
	}
	all := make([]assessment.Question, 0, len(gf.Battery)+len(gf.Practice))
	all = append(all, gf.Battery...)
	all = append(all, gf.Practice...)
	seen := map[string]struct{}{}
	for _, q := range all {
		if err := validate(q); err != nil {
			return fmt.Errorf("question %q: %w", q.ID, err)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.batteries[gf.Grade] = assessment.GradeBattery{
		Grade:     gf.Grade,
		Label:     gf.Label,
		Questions: gf.Battery,
	}
	l.practice[gf.Grade] = gf.Practice
	for _, q := range all {
		l.questions[q.ID] = q
	}
	return nil
}

// validate checks the fields each variant's verdict rule depends on. Content
// errors surface at load time, not mid-session.
func validate(q assessment.Question) error {
	if q.ID == "" {
		return fmt.Errorf("missing id")
	}
	switch q.Variant {
	case assessment.VariantChoice, assessment.VariantFillBlank:
		if q.CorrectAnswer == "" {
			return fmt.Errorf("missing correct_answer")
		}
		if len(q.Choices) > 0 && !contains(q.Choices, q.CorrectAnswer) {
			return fmt.Errorf("correct_answer %q not among choices", q.CorrectAnswer)
		}
	case assessment.VariantMatching:
		if len(q.Pairs) == 0 {
			return fmt.Errorf("matching question needs pairs")
		}
	case assessment.VariantCategorySort:
		if len(q.Categories) == 0 {
			return fmt.Errorf("category-sort question needs categories")
		}
	case assessment.VariantSentence:
		if q.Target == "" || len(q.Tokens) == 0 {
			return fmt.Errorf("sentence question needs tokens and a target")
		}
	case assessment.VariantSlotFill:
		if len(q.Slots) == 0 || len(q.Tokens) == 0 {
			return fmt.Errorf("slot-fill question needs slots and tokens")
		}
		for _, s := range q.Slots {
			if !contains(q.Tokens, s) {
				return fmt.Errorf("slot token %q missing from tray", s)
			}
		}
	default:
		return fmt.Errorf("unknown variant %q", q.Variant)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
