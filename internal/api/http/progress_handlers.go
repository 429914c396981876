package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lexihop/lexihop/internal/profile"
	"github.com/lexihop/lexihop/internal/progress"
)

func GetProgressHandler(store *progress.Store, children *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		childID := chi.URLParam(r, "childID")
		if err := authorizeChild(r.Context(), children, childID); err != nil {
			writeChildAuthError(w, err)
			return
		}
		stats, err := store.StatsFor(r.Context(), childID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(stats)
	}
}

func DueReviewsHandler(store *progress.Store, children *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		childID := chi.URLParam(r, "childID")
		if err := authorizeChild(r.Context(), children, childID); err != nil {
			writeChildAuthError(w, err)
			return
		}
		reviews, err := store.DueReviews(r.Context(), childID, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if reviews == nil {
			reviews = []progress.Review{}
		}
		_ = json.NewEncoder(w).Encode(reviews)
	}
}
