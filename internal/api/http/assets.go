package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lexihop/lexihop/internal/rbac"
	"github.com/lexihop/lexihop/internal/storage"
)

// MountAssets wires the stimulus blob routes: admin upload, learner download.
func MountAssets(r chi.Router, bs storage.BlobStore) {
	// POST /assets/{key} (multipart "file")
	r.With(rbac.Require("assets:upload")).Post("/{key}", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		stored, err := bs.Put(key, f)
		if err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"key": stored})
	})

	// GET /assets/* -> the blob at whatever follows /assets/
	r.With(rbac.Require("assets:view")).Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	})
}
