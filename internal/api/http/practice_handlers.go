package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/lexihop/lexihop/internal/assessment"
	"github.com/lexihop/lexihop/internal/content"
	"github.com/lexihop/lexihop/internal/profile"
	"github.com/lexihop/lexihop/internal/progress"
	"github.com/lexihop/lexihop/internal/rewards"
	"github.com/lexihop/lexihop/internal/widget"
)

// practiceSubmission carries the learner's full input for one exercise. The
// variant decides which field applies; the server replays the input through
// the matching widget to compute the verdict, so answer keys never leave the
// backend.
type practiceSubmission struct {
	ChildID    string `json:"child_id"`
	QuestionID string `json:"question_id"`

	Selected   string            `json:"selected,omitempty"`    // choice, fill-blank
	Pairs      [][2]string       `json:"pairs,omitempty"`       // matching: tap sequence [left, right]
	Placements map[string]string `json:"placements,omitempty"`  // category-sort: item -> bucket
	TokenOrder []string          `json:"token_order,omitempty"` // sentence
	SlotTokens []string          `json:"slot_tokens,omitempty"` // slot-fill, by slot index
}

type practiceOutcome struct {
	Correct bool            `json:"correct"`
	Answer  string          `json:"answer"`
	Streak  int             `json:"streak"`
	Wallet  *rewards.Wallet `json:"wallet,omitempty"`
}

// ListPracticeHandler serves the sanitized practice set for a grade.
func ListPracticeHandler(lib *content.Library) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grade := assessment.GradeKey(r.URL.Query().Get("grade"))
		if !grade.Valid() {
			http.Error(w, "valid grade query param required", http.StatusBadRequest)
			return
		}
		qs := lib.Practice(grade)
		out := make([]assessment.Question, 0, len(qs))
		for _, q := range qs {
			out = append(out, q.Sanitized())
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// SubmitPracticeHandler scores one practice submission, records it, and
// credits the reward economy. Reward write failures are logged, not surfaced:
// the learner still gets the verdict.
func SubmitPracticeHandler(lib *content.Library, children *profile.Store, prog *progress.Store, rew *rewards.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub practiceSubmission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if sub.ChildID == "" || sub.QuestionID == "" {
			http.Error(w, "child_id and question_id required", http.StatusBadRequest)
			return
		}
		if err := authorizeChild(r.Context(), children, sub.ChildID); err != nil {
			writeChildAuthError(w, err)
			return
		}
		q, ok := lib.Question(sub.QuestionID)
		if !ok {
			http.Error(w, "question not found", http.StatusNotFound)
			return
		}
		verdict, fired := evaluate(q, sub)
		if !fired {
			http.Error(w, "incomplete submission", http.StatusUnprocessableEntity)
			return
		}

		ctx := r.Context()
		if _, err := prog.RecordAttempt(ctx, sub.ChildID, q.ID, q.Variant, verdict.Answer, verdict.Correct); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := practiceOutcome{Correct: verdict.Correct, Answer: verdict.Answer}
		if wallet, err := rew.AwardPractice(ctx, sub.ChildID, verdict.Correct); err != nil {
			log.Warn("practice reward failed", zap.String("child_id", sub.ChildID), zap.Error(err))
		} else {
			out.Wallet = &wallet
		}
		if stats, err := prog.StatsFor(ctx, sub.ChildID); err == nil {
			out.Streak = stats.Streak
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

// evaluate replays the submission through the question's widget variant.
// fired is false when the input never satisfied the completion condition.
func evaluate(q assessment.Question, sub practiceSubmission) (widget.Verdict, bool) {
	var verdict widget.Verdict
	fired := false
	capture := func(v widget.Verdict) {
		verdict = v
		fired = true
	}

	switch q.Variant {
	case assessment.VariantChoice:
		if sub.Selected != "" {
			widget.NewChoice(q.Choices, q.CorrectAnswer, capture).Select(sub.Selected)
		}
	case assessment.VariantFillBlank:
		if sub.Selected != "" {
			widget.NewFillBlank(q.Choices, q.CorrectAnswer, capture).Select(sub.Selected)
		}
	case assessment.VariantMatching:
		m := widget.NewMatching(q.Pairs, capture)
		for _, p := range sub.Pairs {
			m.TapLeft(p[0])
			m.TapRight(p[1])
		}
	case assessment.VariantCategorySort:
		s := widget.NewCategorySort(q.Categories, capture)
		for item, cat := range sub.Placements {
			s.Place(item, cat)
		}
		s.Confirm()
	case assessment.VariantSentence:
		b := widget.NewSentenceBuilder(q.Tokens, q.Target, q.Punctuation, capture)
		for _, tok := range sub.TokenOrder {
			b.Place(tok)
		}
		b.Confirm()
	case assessment.VariantSlotFill:
		f := widget.NewSlotFill(q.Slots, q.Tokens, capture)
		for i, tok := range sub.SlotTokens {
			f.Assign(i, tok)
		}
		f.Confirm()
	}
	return verdict, fired
}
