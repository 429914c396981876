package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lexihop/lexihop/internal/assessment"
	"github.com/lexihop/lexihop/internal/auth"
	"github.com/lexihop/lexihop/internal/profile"
)

// POST /auth/register  { "email": "...", "password": "..." }
func RegisterParentHandler(svc *auth.Service, store *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Email == "" || len(req.Password) < 8 {
			http.Error(w, "email and password (8+ chars) required", http.StatusBadRequest)
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			http.Error(w, "hash failure", http.StatusInternalServerError)
			return
		}
		p, err := store.CreateParent(r.Context(), req.Email, hash)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, profile.ErrEmailTaken) {
				status = http.StatusConflict
			}
			http.Error(w, err.Error(), status)
			return
		}
		tok, err := svc.Issue(p.ID, "parent")
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "parent_id": p.ID})
	}
}

// POST /auth/login  { "email": "...", "password": "..." }
func LoginHandler(svc *auth.Service, store *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		p, err := store.ParentByEmail(r.Context(), req.Email)
		if err != nil || !auth.CheckPassword(p.PassHash, req.Password) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := svc.Issue(p.ID, "parent")
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "parent_id": p.ID})
	}
}

// POST /children  { "name": "...", "grade": "1st" }
func CreateChildHandler(store *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name  string `json:"name"`
			Grade string `json:"grade"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		parentID := auth.SubjectFromContext(r.Context())
		c, err := store.CreateChild(r.Context(), parentID, req.Name, assessment.GradeKey(req.Grade))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

func GetChildHandler(store *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		childID := chi.URLParam(r, "childID")
		if err := authorizeChild(r.Context(), store, childID); err != nil {
			writeChildAuthError(w, err)
			return
		}
		c, err := store.GetChild(r.Context(), childID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

func ListChildrenHandler(store *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID := auth.SubjectFromContext(r.Context())
		children, err := store.ListChildren(r.Context(), parentID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if children == nil {
			children = []profile.Child{}
		}
		_ = json.NewEncoder(w).Encode(children)
	}
}

// PATCH /children/{childID}  { "grade": "2nd" }
func UpdateChildHandler(store *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Grade string `json:"grade"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		childID := chi.URLParam(r, "childID")
		if err := authorizeChild(r.Context(), store, childID); err != nil {
			writeChildAuthError(w, err)
			return
		}
		if err := store.UpdateGrade(r.Context(), childID, assessment.GradeKey(req.Grade)); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, profile.ErrChildNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		c, err := store.GetChild(r.Context(), childID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

// POST /children/{childID}/token mints a learner token for the child's
// device. Only the child's own parent may mint one.
func ChildTokenHandler(svc *auth.Service, store *profile.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		childID := chi.URLParam(r, "childID")
		c, err := store.GetChild(r.Context(), childID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if c.ParentID != auth.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		tok, err := svc.Issue(c.ID, "child")
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "child_id": c.ID})
	}
}
