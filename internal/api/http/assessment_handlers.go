package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexihop/lexihop/internal/assessment"
	"github.com/lexihop/lexihop/internal/profile"
)

func StartAssessmentHandler(mgr *assessment.Manager, children *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ChildID string `json:"child_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.ChildID == "" {
			http.Error(w, "child_id required", http.StatusBadRequest)
			return
		}
		if err := authorizeChild(r.Context(), children, req.ChildID); err != nil {
			writeChildAuthError(w, err)
			return
		}
		v, err := mgr.Start(r.Context(), req.ChildID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(v)
	}
}

// authorizeSession resolves the session and checks the caller owns its child.
// A missing session reports not found; one owned by someone else's child
// reports forbidden.
func authorizeSession(r *http.Request, mgr *assessment.Manager, children *profile.Store, id string) error {
	v, err := mgr.Get(r.Context(), id)
	if err != nil {
		return err
	}
	return authorizeChild(r.Context(), children, v.ChildID)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assessment.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, errForbidden), errors.Is(err, profile.ErrChildNotFound):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusConflict)
	}
}

func GetAssessmentHandler(mgr *assessment.Manager, children *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		if err := authorizeSession(r, mgr, children, id); err != nil {
			writeSessionError(w, err)
			return
		}
		v, err := mgr.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(v)
	}
}

func BeginAssessmentHandler(mgr *assessment.Manager, children *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		if err := authorizeSession(r, mgr, children, id); err != nil {
			writeSessionError(w, err)
			return
		}
		v, err := mgr.Begin(id)
		if err != nil {
			status := http.StatusConflict
			if errors.Is(err, assessment.ErrSessionNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		_ = json.NewEncoder(w).Encode(v)
	}
}

func AnswerAssessmentHandler(mgr *assessment.Manager, children *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		var req struct {
			Answer string `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := authorizeSession(r, mgr, children, id); err != nil {
			writeSessionError(w, err)
			return
		}
		v, err := mgr.Answer(id, req.Answer)
		if err != nil {
			status := http.StatusConflict
			if errors.Is(err, assessment.ErrSessionNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		_ = json.NewEncoder(w).Encode(v)
	}
}

// AbandonAssessmentHandler discards an in-flight session without persisting
// anything.
func AbandonAssessmentHandler(mgr *assessment.Manager, children *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		if err := authorizeSession(r, mgr, children, id); err != nil {
			writeSessionError(w, err)
			return
		}
		mgr.Abandon(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

// AssessmentHistoryHandler lists a child's stored results.
func AssessmentHistoryHandler(store *assessment.SQLStore, children *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		childID := chi.URLParam(r, "childID")
		if err := authorizeChild(r.Context(), children, childID); err != nil {
			writeChildAuthError(w, err)
			return
		}
		results, err := store.ListResults(r.Context(), childID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if results == nil {
			results = []assessment.Result{}
		}
		_ = json.NewEncoder(w).Encode(results)
	}
}
