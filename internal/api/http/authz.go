package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/lexihop/lexihop/internal/auth"
	"github.com/lexihop/lexihop/internal/profile"
	"github.com/lexihop/lexihop/internal/rbac"
)

var errForbidden = errors.New("forbidden")

// authorizeChild verifies the caller may act on the child's data: a child
// token only on its own id, a parent token only on its own children. Admin
// passes. RBAC covers what a role may do; this covers whose data it may do
// it to.
func authorizeChild(ctx context.Context, children *profile.Store, childID string) error {
	sub := auth.SubjectFromContext(ctx)
	switch rbac.RoleFromContext(ctx) {
	case "admin":
		return nil
	case "child":
		if sub != "" && sub == childID {
			return nil
		}
	case "parent":
		c, err := children.GetChild(ctx, childID)
		if err != nil {
			return err
		}
		if c.ParentID == sub {
			return nil
		}
	}
	return errForbidden
}

// writeChildAuthError maps authorizeChild failures onto the response.
func writeChildAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, profile.ErrChildNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, "forbidden", http.StatusForbidden)
}
