package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/lexihop/lexihop/internal/content"
	"github.com/lexihop/lexihop/internal/eventlog"
)

// ImportContentHandler installs a grade's content from an uploaded YAML
// document, replacing the loaded battery and practice set for that grade.
// Admin-only; validation errors come back verbatim for the content author.
func ImportContentHandler(lib *content.Library) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		grade, err := lib.Import(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"grade": string(grade)})
	}
}

// ListEventsHandler pages through the append-only event log. Admin-only.
// Query params: after (last seq seen), limit.
func ListEventsHandler(events *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		evs, err := events.Since(r.Context(), after, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if evs == nil {
			evs = []eventlog.Event{}
		}
		_ = json.NewEncoder(w).Encode(evs)
	}
}
